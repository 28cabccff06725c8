package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/a-h/templ"
)

var chartColors = []string{
	"#5B8DEF",
	"#D4A27F",
	"#4FC4AA",
	"#E88D67",
	"#9B8FE8",
	"#E6C95D",
	"#E87DA0",
	"#6BC5D2",
}

func chartColor(i int) string {
	return chartColors[i%len(chartColors)]
}

func chart(p Props, _ templ.Component) templ.Component {
	points := p.DataPoints("data")
	peak := 1.0
	for _, pt := range points {
		if pt.Value > peak {
			peak = pt.Value
		}
	}

	return component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<div class="bg-white border border-gray-200 rounded-xl p-6">`)
		if title := p.String("title"); title != "" {
			h.raw(`<h3 class="text-sm font-semibold text-[#2D2B26] mb-5 tracking-[-0.01em]">`)
			h.text(title)
			h.raw(`</h3>`)
		}

		switch p.String("type") {
		case "line":
			lineChart(h, points, peak)
		case "pie":
			pieChart(h, points)
		default:
			barChart(h, points, peak)
		}

		h.raw(`</div>`)
	})
}

func barChart(h *htmlWriter, points []DataPoint, peak float64) {
	h.raw(`<div><div class="flex items-end gap-3 h-44">`)
	for i, pt := range points {
		height := pt.Value / peak * 100
		if height < 4 {
			height = 4
		}
		h.raw(`<div class="flex flex-col items-center flex-1 h-full justify-end gap-2">`)
		h.raw(`<span class="text-[11px] font-medium text-[#5C5850]">`, formatNumber(pt.Value), `</span>`)
		h.raw(`<div class="w-full rounded-md transition-all min-h-[6px]" style="`,
			fmt.Sprintf("height: %s%%; background-color: %s", formatNumber(height), chartColor(i)), `"></div>`)
		h.raw(`</div>`)
	}
	if len(points) == 0 {
		h.raw(`<div class="flex-1 flex items-center justify-center text-[#B5AFA5] text-sm">No data</div>`)
	}
	h.raw(`</div>`)

	if len(points) > 0 {
		h.raw(`<div class="flex gap-3 mt-2 border-t border-gray-100 pt-2">`)
		for _, pt := range points {
			h.raw(`<div class="flex-1 text-center"><span class="text-[11px] text-[#8C8780] truncate block">`)
			h.text(pt.Label)
			h.raw(`</span></div>`)
		}
		h.raw(`</div>`)
	}
	h.raw(`</div>`)
}

// linePoint maps a point onto the 200x100 viewBox.
func linePoint(i, n int, value, peak float64) (float64, float64) {
	span := n - 1
	if span < 1 {
		span = 1
	}

	return 10 + float64(i)/float64(span)*180, 85 - value/peak*70
}

func lineChart(h *htmlWriter, points []DataPoint, peak float64) {
	h.raw(`<div><div class="relative" style="height: 180px">`)
	h.raw(`<svg viewBox="0 0 200 100" class="w-full h-full" preserveAspectRatio="xMidYMid meet">`)
	h.raw(`<defs><linearGradient id="lineGrad" x1="0" x2="0" y1="0" y2="1">`,
		`<stop offset="0%" stop-color="#5B8DEF" stop-opacity="0.2"></stop>`,
		`<stop offset="100%" stop-color="#5B8DEF" stop-opacity="0.02"></stop>`,
		`</linearGradient></defs>`)

	for _, pct := range []float64{0, 25, 50, 75, 100} {
		y := formatNumber(85 - pct/100*70)
		h.raw(`<line x1="10" y1="`, y, `" x2="190" y2="`, y, `" stroke="#F0ECE4" stroke-width="0.4"></line>`)
	}

	if len(points) > 1 {
		coords := make([]string, len(points))
		for i, pt := range points {
			x, y := linePoint(i, len(points), pt.Value, peak)
			coords[i] = formatNumber(x) + "," + formatNumber(y)
		}
		line := strings.Join(coords, " ")
		h.raw(`<polygon fill="url(#lineGrad)" points="10,85 `, line, ` 190,85"></polygon>`)
		h.raw(`<polyline fill="none" stroke="#5B8DEF" stroke-width="2.5" stroke-linecap="round" stroke-linejoin="round" points="`, line, `"></polyline>`)
	}

	for i, pt := range points {
		x, y := linePoint(i, len(points), pt.Value, peak)
		cx, cy := formatNumber(x), formatNumber(y)
		h.raw(`<g><circle cx="`, cx, `" cy="`, cy, `" r="3.5" fill="white" stroke="#5B8DEF" stroke-width="2"></circle>`)
		h.raw(`<text x="`, cx, `" y="`, formatNumber(y-8), `" text-anchor="middle" fill="#5C5850" font-size="7" font-weight="500">`,
			formatNumber(pt.Value), `</text></g>`)
	}
	h.raw(`</svg></div>`)

	if len(points) > 0 {
		h.raw(`<div class="flex justify-between px-3 -mt-1">`)
		for _, pt := range points {
			h.raw(`<span class="text-[11px] text-[#8C8780]">`)
			h.text(pt.Label)
			h.raw(`</span>`)
		}
		h.raw(`</div>`)
	}
	h.raw(`</div>`)
}

func pieChart(h *htmlWriter, points []DataPoint) {
	total := 0.0
	for _, pt := range points {
		total += pt.Value
	}
	if total == 0 {
		total = 1
	}

	h.raw(`<div class="flex items-center gap-6"><div class="relative w-36 h-36 flex-shrink-0">`)
	h.raw(`<svg viewBox="0 0 36 36" class="w-full h-full -rotate-90">`)
	offset := 0.0
	for i, pt := range points {
		pct := pt.Value / total * 100
		h.raw(`<circle r="16" cx="18" cy="18" fill="transparent" stroke="`, chartColor(i),
			`" stroke-width="3.5" stroke-dasharray="`, formatNumber(pct), ` `, formatNumber(100-pct),
			`" stroke-dashoffset="`, formatNumber(-offset), `"></circle>`)
		offset += pct
	}
	h.raw(`<circle cx="18" cy="18" r="12" fill="white"></circle></svg></div>`)

	if len(points) > 0 {
		h.raw(`<div class="flex flex-col gap-2">`)
		for i, pt := range points {
			h.raw(`<div class="flex items-center gap-2">`)
			h.raw(`<span class="w-2.5 h-2.5 rounded-full flex-shrink-0" style="background-color: `, chartColor(i), `"></span>`)
			h.raw(`<span class="text-[12px] text-[#5C5850]">`)
			h.text(pt.Label)
			h.raw(`</span><span class="text-[11px] text-[#B5AFA5] ml-auto">`, formatNumber(pt.Value), `</span>`)
			h.raw(`</div>`)
		}
		h.raw(`</div>`)
	}
	h.raw(`</div>`)
}
