package registry

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

func catalog() []*Descriptor {
	return []*Descriptor{
		{
			Kind:        KindNavbar,
			Name:        "Navbar",
			Description: "Top navigation bar with a title",
			Props: []PropSpec{
				{Name: "title", Type: PropString, Default: "App"},
				{Name: "variant", Type: PropEnum, Default: "default", Values: []string{"default", "dark"}},
			},
			render: navbar,
		},
		{
			Kind:        KindSidebar,
			Name:        "Sidebar",
			Description: "Vertical navigation list",
			Props: []PropSpec{
				{Name: "items", Type: PropNavItems, Default: []NavItem{}},
				{Name: "variant", Type: PropEnum, Default: "default", Values: []string{"default", "compact"}},
			},
			render: sidebar,
		},
		{
			Kind:        KindContainer,
			Name:        "Container",
			Description: "Centered page section with a maximum width",
			Props: []PropSpec{
				{Name: "maxWidth", Type: PropEnum, Default: "lg", Values: []string{"sm", "md", "lg", "xl", "full"}},
				{Name: "padding", Type: PropEnum, Default: "md", Values: []string{"none", "sm", "md", "lg"}},
				{Name: "grow", Type: PropBool, Default: false},
			},
			AcceptsChildren: true,
			render:          container,
		},
		{
			Kind:        KindGrid,
			Name:        "Grid",
			Description: "Responsive grid of children",
			Props: []PropSpec{
				{Name: "columns", Type: PropInt, Default: 2, Min: 1, Max: 6},
				{Name: "gap", Type: PropEnum, Default: "md", Values: []string{"none", "sm", "md", "lg"}},
			},
			AcceptsChildren: true,
			render:          grid,
		},
		{
			Kind:        KindButton,
			Name:        "Button",
			Description: "Clickable button",
			Props: []PropSpec{
				{Name: "variant", Type: PropEnum, Default: "primary", Values: []string{"primary", "secondary", "danger", "outline", "ghost"}},
				{Name: "size", Type: PropEnum, Default: "md", Values: []string{"sm", "md", "lg"}},
				{Name: "children", Type: PropString, Default: "Button"},
			},
			AcceptsChildren: true,
			render:          button,
		},
		{
			Kind:        KindInput,
			Name:        "Input",
			Description: "Labelled form input",
			Props: []PropSpec{
				{Name: "type", Type: PropEnum, Default: "text", Values: []string{"text", "email", "password", "number", "tel"}},
				{Name: "placeholder", Type: PropString, Default: ""},
				{Name: "label", Type: PropString, Default: ""},
				{Name: "value", Type: PropString, Default: ""},
			},
			render: input,
		},
		{
			Kind:        KindTable,
			Name:        "Table",
			Description: "Data table with header columns and rows",
			Props: []PropSpec{
				{Name: "columns", Type: PropStringList, Default: []string{}},
				{Name: "data", Type: PropRows, Default: [][]string{}},
			},
			render: table,
		},
		{
			Kind:        KindCard,
			Name:        "Card",
			Description: "Panel with an optional title",
			Props: []PropSpec{
				{Name: "title", Type: PropString, Default: ""},
				{Name: "variant", Type: PropEnum, Default: "default", Values: []string{"default", "bordered", "elevated"}},
			},
			AcceptsChildren: true,
			render:          card,
		},
		{
			Kind:        KindModal,
			Name:        "Modal",
			Description: "Dialog over a dimmed backdrop",
			Props: []PropSpec{
				{Name: "title", Type: PropString, Default: "Modal"},
				{Name: "open", Type: PropBool, Default: true},
			},
			AcceptsChildren: true,
			render:          modal,
		},
		{
			Kind:        KindChart,
			Name:        "Chart",
			Description: "Bar, line or pie chart",
			Props: []PropSpec{
				{Name: "type", Type: PropEnum, Default: "bar", Values: []string{"bar", "line", "pie"}},
				{Name: "data", Type: PropDataPoints, Default: []DataPoint{}},
				{Name: "title", Type: PropString, Default: ""},
			},
			render: chart,
		},
	}
}

// htmlWriter accumulates the first write error so render bodies stay flat.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(parts ...string) {
	for _, p := range parts {
		if h.err != nil {
			return
		}
		_, h.err = io.WriteString(h.w, p)
	}
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) child(ctx context.Context, c templ.Component) {
	if h.err != nil || c == nil {
		return
	}
	h.err = c.Render(ctx, h.w)
}

func component(fn func(ctx context.Context, h *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		fn(ctx, h)
		return h.err
	})
}

func classAttr(classes ...interface{}) string {
	return ` class="` + templ.EscapeString(templ.Classes(classes...).String()) + `"`
}

func navbar(p Props, _ templ.Component) templ.Component {
	variant := "bg-white text-gray-900 border-gray-200"
	if p.String("variant") == "dark" {
		variant = "bg-gray-900 text-white border-gray-700"
	}

	return component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<nav`, classAttr("w-full px-6 py-4 flex items-center justify-between border-b", variant), `>`)
		h.raw(`<span class="text-xl font-bold tracking-tight">`)
		h.text(p.String("title"))
		h.raw(`</span></nav>`)
	})
}

func sidebar(p Props, _ templ.Component) templ.Component {
	compact := p.String("variant") == "compact"
	width := "w-60"
	if compact {
		width = "w-16"
	}

	return component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<aside`, classAttr(width, "min-h-full bg-gray-50 border-r border-gray-200 py-4 flex flex-col gap-1"), `>`)
		for _, item := range p.NavItems("items") {
			h.raw(`<div class="px-4 py-2.5 text-sm text-gray-700 hover:bg-gray-100 cursor-pointer rounded-md mx-2 transition-colors">`)
			if compact {
				h.raw(`<span class="text-center block">`)
				if item.Icon != "" {
					h.text(item.Icon)
				} else if r := []rune(item.Label); len(r) > 0 {
					h.text(string(r[0]))
				}
			} else {
				h.raw(`<span>`)
				if item.Icon != "" {
					h.text(item.Icon + " ")
				}
				h.text(item.Label)
			}
			h.raw(`</span></div>`)
		}
		h.raw(`</aside>`)
	})
}

var (
	maxWidthClasses = map[string]string{
		"sm": "max-w-sm", "md": "max-w-2xl", "lg": "max-w-5xl", "xl": "max-w-7xl", "full": "max-w-full",
	}
	paddingClasses = map[string]string{
		"none": "p-0", "sm": "p-3", "md": "p-6", "lg": "p-10",
	}
	gapClasses = map[string]string{
		"none": "gap-0", "sm": "gap-2", "md": "gap-4", "lg": "gap-8",
	}
)

func container(p Props, children templ.Component) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<div`, classAttr(
			"mx-auto w-full",
			maxWidthClasses[p.String("maxWidth")],
			paddingClasses[p.String("padding")],
			templ.KV("flex-1", p.Bool("grow")),
		), `>`)
		h.child(ctx, children)
		h.raw(`</div>`)
	})
}

func grid(p Props, children templ.Component) templ.Component {
	cols := "grid-cols-" + strconv.Itoa(p.Int("columns"))

	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<div`, classAttr("grid", cols, gapClasses[p.String("gap")]), `>`)
		h.child(ctx, children)
		h.raw(`</div>`)
	})
}

var (
	buttonVariants = map[string]string{
		"primary":   "bg-blue-600 text-white hover:bg-blue-700 shadow-sm",
		"secondary": "bg-gray-600 text-white hover:bg-gray-700 shadow-sm",
		"danger":    "bg-red-600 text-white hover:bg-red-700 shadow-sm",
		"outline":   "border border-gray-300 text-gray-700 hover:bg-gray-50 bg-white",
		"ghost":     "text-gray-600 hover:bg-gray-100 hover:text-gray-900",
	}
	buttonSizes = map[string]string{
		"sm": "px-3 py-1.5 text-sm rounded-md",
		"md": "px-4 py-2 text-sm rounded-lg",
		"lg": "px-6 py-3 text-base rounded-lg",
	}
)

func button(p Props, children templ.Component) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<button type="button"`, classAttr(
			"inline-flex items-center justify-center font-medium transition-colors focus:outline-none focus:ring-2 focus:ring-[#D4A27F]/40 focus:ring-offset-2 cursor-pointer",
			buttonVariants[p.String("variant")],
			buttonSizes[p.String("size")],
		), `>`)
		if children != nil {
			h.child(ctx, children)
		} else {
			h.text(p.String("children"))
		}
		h.raw(`</button>`)
	})
}

func input(p Props, _ templ.Component) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<div class="flex flex-col gap-1.5 w-full">`)
		if label := p.String("label"); label != "" {
			h.raw(`<label class="text-sm font-medium text-gray-700">`)
			h.text(label)
			h.raw(`</label>`)
		}
		h.raw(`<input type="`, templ.EscapeString(p.String("type")), `" placeholder="`, templ.EscapeString(p.String("placeholder")), `"`)
		if value := p.String("value"); value != "" {
			h.raw(` value="`, templ.EscapeString(value), `"`)
		}
		h.raw(` class="w-full px-3 py-2 border border-gray-300 rounded-lg text-sm text-gray-900 placeholder-gray-400 focus:outline-none focus:ring-2 focus:ring-[#D4A27F]/30 focus:border-[#D4A27F] transition-colors bg-white">`)
		h.raw(`</div>`)
	})
}

func table(p Props, _ templ.Component) templ.Component {
	columns := p.Strings("columns")
	rows := p.Rows("data")

	return component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<div class="w-full overflow-x-auto rounded-lg border border-gray-200"><table class="w-full text-sm">`)
		if len(columns) > 0 {
			h.raw(`<thead class="bg-gray-50 border-b border-gray-200"><tr>`)
			for _, col := range columns {
				h.raw(`<th class="px-4 py-3 text-left text-xs font-semibold text-gray-500 uppercase tracking-wider">`)
				h.text(col)
				h.raw(`</th>`)
			}
			h.raw(`</tr></thead>`)
		}
		h.raw(`<tbody class="divide-y divide-gray-100">`)
		for _, row := range rows {
			h.raw(`<tr class="hover:bg-gray-50 transition-colors">`)
			for _, cell := range row {
				h.raw(`<td class="px-4 py-3 text-gray-700">`)
				h.text(cell)
				h.raw(`</td>`)
			}
			h.raw(`</tr>`)
		}
		if len(rows) == 0 {
			span := len(columns)
			if span == 0 {
				span = 1
			}
			h.raw(`<tr><td colspan="`, strconv.Itoa(span), `" class="px-4 py-8 text-center text-gray-400">No data available</td></tr>`)
		}
		h.raw(`</tbody></table></div>`)
	})
}

var cardVariants = map[string]string{
	"default":  "bg-white border border-gray-200 rounded-xl",
	"bordered": "bg-white border-2 border-gray-300 rounded-xl",
	"elevated": "bg-white rounded-xl shadow-lg shadow-gray-200/50",
}

func card(p Props, children templ.Component) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<div`, classAttr(cardVariants[p.String("variant")], "p-6"), `>`)
		if title := p.String("title"); title != "" {
			h.raw(`<h3 class="text-lg font-semibold text-gray-900 mb-4">`)
			h.text(title)
			h.raw(`</h3>`)
		}
		h.raw(`<div class="flex flex-col gap-3">`)
		h.child(ctx, children)
		h.raw(`</div></div>`)
	})
}

func modal(p Props, children templ.Component) templ.Component {
	if !p.Bool("open") {
		return templ.NopComponent
	}

	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<div class="fixed inset-0 z-50 flex items-center justify-center" role="dialog">`)
		h.raw(`<div class="absolute inset-0 bg-black/40 backdrop-blur-sm"></div>`)
		h.raw(`<div class="relative bg-white rounded-2xl shadow-2xl max-w-md w-full mx-4 overflow-hidden">`)
		h.raw(`<div class="px-6 py-4 border-b border-gray-100"><h2 class="text-lg font-semibold text-gray-900">`)
		h.text(p.String("title"))
		h.raw(`</h2></div><div class="px-6 py-5">`)
		h.child(ctx, children)
		h.raw(`</div></div></div>`)
	})
}
