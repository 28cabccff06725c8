package renderer

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

// svgElements are the chart primitives. Names are lowercase because the
// HTML tokenizer folds case before the policy sees them.
var svgElements = []string{
	"svg", "defs", "lineargradient", "stop", "g",
	"line", "polygon", "polyline", "circle", "text",
}

var (
	svgNumber = regexp.MustCompile(`^-?[0-9.]+%?$`)
	svgPoints = regexp.MustCompile(`^[0-9., -]*$`)
	svgPaint  = regexp.MustCompile(`^(#[0-9A-Fa-f]{3,8}|[a-z]+|url\(#[A-Za-z]+\))$`)
	svgWord   = regexp.MustCompile(`^[a-zA-Z ]+$`)
	svgBox    = regexp.MustCompile(`^[0-9 .-]+$`)
)

// NewPolicy returns the sanitizer applied to mounted previews. It allows
// exactly the elements, attributes and inline styles the component catalog
// emits.
func NewPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()

	p.AllowElements(
		"div", "span", "nav", "aside", "h2", "h3",
		"button", "label", "input",
		"table", "thead", "tbody", "tr", "th", "td",
	)
	p.AllowElements(svgElements...)

	p.AllowAttrs("class").Globally()
	p.AllowAttrs("role").Matching(regexp.MustCompile(`^dialog$`)).OnElements("div")
	p.AllowAttrs("type").Matching(regexp.MustCompile(`^(button|text|email|password|number|tel)$`)).OnElements("button", "input")
	p.AllowAttrs("placeholder", "value").OnElements("input")
	p.AllowAttrs("colspan").Matching(bluemonday.Integer).OnElements("td", "th")

	p.AllowStyles("height").Matching(regexp.MustCompile(`^[0-9.]+(%|px)$`)).Globally()
	p.AllowStyles("background-color").Matching(regexp.MustCompile(`^#[0-9A-Fa-f]{3,8}$`)).Globally()

	p.AllowAttrs("viewbox").Matching(svgBox).OnElements("svg")
	p.AllowAttrs("preserveaspectratio").Matching(svgWord).OnElements("svg")
	p.AllowAttrs("id").Matching(regexp.MustCompile(`^[A-Za-z]+$`)).OnElements("lineargradient")
	p.AllowAttrs("x1", "x2", "y1", "y2").Matching(svgNumber).OnElements("lineargradient", "line")
	p.AllowAttrs("offset", "stop-opacity").Matching(svgNumber).OnElements("stop")
	p.AllowAttrs("stop-color").Matching(svgPaint).OnElements("stop")
	p.AllowAttrs("cx", "cy", "r", "x", "y", "stroke-width", "font-size", "font-weight", "stroke-dashoffset").
		Matching(svgNumber).OnElements(svgElements...)
	p.AllowAttrs("stroke-dasharray", "points").Matching(svgPoints).OnElements(svgElements...)
	p.AllowAttrs("fill", "stroke").Matching(svgPaint).OnElements(svgElements...)
	p.AllowAttrs("stroke-linecap", "stroke-linejoin", "text-anchor").Matching(svgWord).OnElements(svgElements...)

	return p
}
