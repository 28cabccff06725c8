package registry

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, name string, raw map[string]interface{}, children templ.Component) string {
	t.Helper()
	d, ok := Default().Get(name)
	require.True(t, ok, name)
	props, err := d.Resolve(raw)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, d.Render(props, children).Render(context.Background(), &buf))
	return buf.String()
}

func TestCatalog(t *testing.T) {
	r := Default()
	assert.Equal(t, 10, r.Count())
	assert.Equal(t, []string{
		"Button", "Card", "Chart", "Container", "Grid",
		"Input", "Modal", "Navbar", "Sidebar", "Table",
	}, r.Names())

	for i, d := range r.GetAll() {
		assert.Equal(t, Kind(i), d.Kind)
		assert.Equal(t, d.Kind.String(), d.Name)
		for _, p := range d.Props {
			if p.Type == PropEnum {
				assert.Contains(t, p.Values, p.Default, "%s.%s default must be an allowed value", d.Name, p.Name)
			}
		}
	}
}

func TestGetIsCaseSensitive(t *testing.T) {
	_, ok := Default().Get("Button")
	assert.True(t, ok)
	_, ok = Default().Get("button")
	assert.False(t, ok)
	_, ok = Default().Get("Stack")
	assert.False(t, ok)
}

func TestResolveDefaults(t *testing.T) {
	d, _ := Default().Get("Button")
	props, err := d.Resolve(nil)
	require.NoError(t, err)
	assert.Equal(t, "primary", props.String("variant"))
	assert.Equal(t, "md", props.String("size"))
	assert.Equal(t, "Button", props.String("children"))
}

func TestResolveScalarFallbacks(t *testing.T) {
	tests := []struct {
		component string
		raw       map[string]interface{}
		prop      string
		want      interface{}
	}{
		{"Button", map[string]interface{}{"variant": "rainbow"}, "variant", "primary"},
		{"Button", map[string]interface{}{"variant": 3}, "variant", "primary"},
		{"Button", map[string]interface{}{"size": "lg"}, "size", "lg"},
		{"Grid", map[string]interface{}{"columns": 12}, "columns", 6},
		{"Grid", map[string]interface{}{"columns": 0}, "columns", 1},
		{"Grid", map[string]interface{}{"columns": "3"}, "columns", 3},
		{"Grid", map[string]interface{}{"columns": 2.7}, "columns", 2},
		{"Grid", map[string]interface{}{"columns": "many"}, "columns", 2},
		{"Container", map[string]interface{}{"grow": true}, "grow", true},
		{"Container", map[string]interface{}{"grow": "false"}, "grow", false},
		{"Modal", map[string]interface{}{"open": false}, "open", false},
		{"Modal", map[string]interface{}{"open": nil}, "open", true},
		{"Card", map[string]interface{}{"title": 42}, "title", "42"},
		{"Card", map[string]interface{}{"title": true}, "title", ""},
	}

	for _, tt := range tests {
		t.Run(tt.component+"."+tt.prop, func(t *testing.T) {
			d, _ := Default().Get(tt.component)
			props, err := d.Resolve(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, props[tt.prop])
		})
	}
}

func TestResolveIgnoresUnknownProps(t *testing.T) {
	d, _ := Default().Get("Navbar")
	props, err := d.Resolve(map[string]interface{}{"onClick": map[string]interface{}{}, "title": "Shop"})
	require.NoError(t, err)
	assert.Equal(t, "Shop", props.String("title"))
	_, present := props["onClick"]
	assert.False(t, present)
}

func TestResolveStructuredProps(t *testing.T) {
	table, _ := Default().Get("Table")
	props, err := table.Resolve(map[string]interface{}{
		"columns": []interface{}{"Name", "Age"},
		"data":    []interface{}{[]interface{}{"Ada", 36}, []interface{}{"Linus", 54.5}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Age"}, props.Strings("columns"))
	assert.Equal(t, [][]string{{"Ada", "36"}, {"Linus", "54.5"}}, props.Rows("data"))

	sidebar, _ := Default().Get("Sidebar")
	props, err = sidebar.Resolve(map[string]interface{}{
		"items": []interface{}{map[string]interface{}{"label": "Home", "icon": "🏠"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []NavItem{{Label: "Home", Icon: "🏠"}}, props.NavItems("items"))

	chart, _ := Default().Get("Chart")
	props, err = chart.Resolve(map[string]interface{}{
		"data": []interface{}{map[string]interface{}{"label": "Q1", "value": 10}},
	})
	require.NoError(t, err)
	assert.Equal(t, []DataPoint{{Label: "Q1", Value: 10}}, props.DataPoints("data"))
}

func TestResolveStructuredMismatch(t *testing.T) {
	tests := []struct {
		component string
		prop      string
		value     interface{}
	}{
		{"Table", "columns", "Name,Age"},
		{"Table", "data", []interface{}{"row"}},
		{"Table", "data", []interface{}{[]interface{}{map[string]interface{}{}}}},
		{"Sidebar", "items", []interface{}{"Home"}},
		{"Sidebar", "items", []interface{}{map[string]interface{}{"label": []interface{}{}}}},
		{"Chart", "data", []interface{}{map[string]interface{}{"label": "Q1"}}},
		{"Chart", "data", map[string]interface{}{"label": "Q1", "value": 1}},
		{"Card", "title", map[string]interface{}{"text": "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.component+"."+tt.prop, func(t *testing.T) {
			d, _ := Default().Get(tt.component)
			_, err := d.Resolve(map[string]interface{}{tt.prop: tt.value})
			require.Error(t, err)
			var pe *PropError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.component, pe.Component)
			assert.Equal(t, tt.prop, pe.Prop)
		})
	}
}

func TestRenderButton(t *testing.T) {
	html := render(t, "Button", nil, nil)
	assert.Contains(t, html, ">Button</button>")
	assert.Contains(t, html, "bg-blue-600")
	assert.Contains(t, html, "px-4 py-2")

	html = render(t, "Button", map[string]interface{}{"variant": "danger"}, templ.Raw("Delete"))
	assert.Contains(t, html, ">Delete</button>")
	assert.Contains(t, html, "bg-red-600")
}

func TestRenderEscapesText(t *testing.T) {
	html := render(t, "Card", map[string]interface{}{"title": `<script>alert("x")</script>`}, nil)
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestRenderDropsChildrenForLeafComponents(t *testing.T) {
	html := render(t, "Navbar", map[string]interface{}{"variant": "dark"}, templ.Raw("<p>ignored</p>"))
	assert.NotContains(t, html, "ignored")
	assert.Contains(t, html, "bg-gray-900")
	assert.Contains(t, html, ">App</span>")
}

func TestRenderContainerAndGrid(t *testing.T) {
	html := render(t, "Container", map[string]interface{}{"grow": true, "maxWidth": "sm"}, templ.Raw("<i>kid</i>"))
	assert.Contains(t, html, "max-w-sm")
	assert.Contains(t, html, "flex-1")
	assert.Contains(t, html, "<i>kid</i>")

	html = render(t, "Grid", map[string]interface{}{"columns": 9, "gap": "lg"}, nil)
	assert.Contains(t, html, "grid-cols-6")
	assert.Contains(t, html, "gap-8")
}

func TestRenderModalClosed(t *testing.T) {
	assert.Empty(t, render(t, "Modal", map[string]interface{}{"open": false}, templ.Raw("body")))
	assert.Contains(t, render(t, "Modal", nil, templ.Raw("body")), ">Modal</h2>")
}

func TestRenderTable(t *testing.T) {
	html := render(t, "Table", map[string]interface{}{"columns": []interface{}{"A", "B"}}, nil)
	assert.Contains(t, html, `colspan="2"`)
	assert.Contains(t, html, "No data available")

	html = render(t, "Table", map[string]interface{}{
		"data": []interface{}{[]interface{}{"x & y"}},
	}, nil)
	assert.NotContains(t, html, "<thead")
	assert.Contains(t, html, "x &amp; y")
	assert.NotContains(t, html, "No data available")
}

func TestRenderSidebarCompact(t *testing.T) {
	html := render(t, "Sidebar", map[string]interface{}{
		"variant": "compact",
		"items": []interface{}{
			map[string]interface{}{"label": "Settings"},
			map[string]interface{}{"label": "Home", "icon": "H"},
		},
	}, nil)
	assert.Contains(t, html, "w-16")
	assert.Contains(t, html, `block">S</span>`)
	assert.Contains(t, html, `block">H</span>`)
}

func TestRenderInput(t *testing.T) {
	html := render(t, "Input", map[string]interface{}{"type": "email", "label": "Email", "value": `a"b`}, nil)
	assert.Contains(t, html, `type="email"`)
	assert.Contains(t, html, ">Email</label>")
	assert.Contains(t, html, `value="a&#34;b"`)
}

func TestRenderChart(t *testing.T) {
	data := []interface{}{
		map[string]interface{}{"label": "Jan", "value": 5},
		map[string]interface{}{"label": "Feb", "value": 10},
	}

	bar := render(t, "Chart", map[string]interface{}{"data": data, "title": "Sales"}, nil)
	assert.Contains(t, bar, ">Sales</h3>")
	assert.Contains(t, bar, "height: 50%")
	assert.Contains(t, bar, "height: 100%")

	line := render(t, "Chart", map[string]interface{}{"type": "line", "data": data}, nil)
	assert.Contains(t, line, `points="10,50 190,15"`)

	pie := render(t, "Chart", map[string]interface{}{"type": "pie", "data": data}, nil)
	assert.Contains(t, pie, `stroke-dashoffset="0"`)
	assert.Contains(t, pie, ">Feb</span>")

	empty := render(t, "Chart", nil, nil)
	assert.Contains(t, empty, "No data")
}

func TestOverride(t *testing.T) {
	custom := Default().Override("Button", func(Props, templ.Component) templ.Component {
		return templ.Raw("<b>custom</b>")
	})

	d, _ := custom.Get("Button")
	var buf bytes.Buffer
	require.NoError(t, d.Render(Props{}, nil).Render(context.Background(), &buf))
	assert.Equal(t, "<b>custom</b>", buf.String())

	assert.Contains(t, render(t, "Button", nil, nil), ">Button</button>")
	assert.Equal(t, Default().Count(), custom.Count())
}
