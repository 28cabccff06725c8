package markup

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) []Node {
	t.Helper()
	nodes, err := Parse(src)
	require.NoError(t, err)
	return nodes
}

func element(t *testing.T, n Node) *Element {
	t.Helper()
	el, ok := n.(*Element)
	require.True(t, ok, "expected *Element, got %T", n)
	return el
}

func TestParseElementTree(t *testing.T) {
	nodes := mustParse(t, `<Container padding="md">
  <Card title='Login' bordered>
    <Input type="email" label="Email" />
    <Button variant="primary" size={"lg"}>Sign in</Button>
  </Card>
</Container>`)

	require.Len(t, nodes, 1)
	container := element(t, nodes[0])
	assert.Equal(t, "Container", container.Name)
	assert.Equal(t, Pos{Line: 1, Column: 1}, container.Pos)

	padding, ok := container.Attr("padding")
	require.True(t, ok)
	assert.Equal(t, AttrString, padding.Kind)
	assert.Equal(t, "md", padding.Value)

	require.Len(t, container.Children, 1)
	card := element(t, container.Children[0])
	assert.Equal(t, Pos{Line: 2, Column: 3}, card.Pos)

	title, _ := card.Attr("title")
	assert.Equal(t, "Login", title.Value)
	flag, ok := card.Attr("bordered")
	require.True(t, ok)
	assert.Equal(t, AttrFlag, flag.Kind)

	require.Len(t, card.Children, 2)
	input := element(t, card.Children[0])
	assert.Empty(t, input.Children)

	button := element(t, card.Children[1])
	size, _ := button.Attr("size")
	assert.Equal(t, AttrExpr, size.Kind)
	assert.Equal(t, `"lg"`, size.Value)
	require.Len(t, button.Children, 1)
	text, ok := button.Children[0].(*Text)
	require.True(t, ok)
	assert.Equal(t, "Sign in", text.Value)
}

func TestParseMultipleRoots(t *testing.T) {
	nodes := mustParse(t, `<Navbar title="A"/><Container/>`)
	require.Len(t, nodes, 2)
	assert.Equal(t, "Navbar", element(t, nodes[0]).Name)
	assert.Equal(t, "Container", element(t, nodes[1]).Name)
}

func TestParseFragmentsAreFlattened(t *testing.T) {
	nodes := mustParse(t, `<><Button/><React.Fragment><Card/></React.Fragment></>`)
	require.Len(t, nodes, 2)
	assert.Equal(t, "Button", element(t, nodes[0]).Name)
	assert.Equal(t, "Card", element(t, nodes[1]).Name)
}

func TestParseTextWhitespace(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"single line kept", `<Button>  Go  now </Button>`, []string{"  Go  now "}},
		{"multi line joined", "<Button>\n    Get\n    started\n  </Button>", []string{"Get started"}},
		{"blank lines dropped", "<Card>\n\n   Hello\n\n</Card>", []string{"Hello"}},
		{"whitespace only", "<Card>\n   \n</Card>", nil},
		{"entities decoded", `<Card>Fish &amp; Chips &lt;3</Card>`, []string{"Fish & Chips <3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes := mustParse(t, tt.src)
			require.Len(t, nodes, 1)
			var got []string
			for _, c := range element(t, nodes[0]).Children {
				got = append(got, c.(*Text).Value)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseExpressionChildren(t *testing.T) {
	nodes := mustParse(t, `<Card>{/* header */}{"Total: "}{ 42 }{}</Card>`)
	card := element(t, nodes[0])
	require.Len(t, card.Children, 2)
	assert.Equal(t, `"Total: "`, card.Children[0].(*Expr).Source)
	assert.Equal(t, `42`, card.Children[1].(*Expr).Source)
}

func TestParseBracesInsideStrings(t *testing.T) {
	nodes := mustParse(t, `<Table columns={["a}", "{b"]} data={[['x', '}']]} />`)
	table := element(t, nodes[0])
	cols, _ := table.Attr("columns")
	assert.Equal(t, `["a}", "{b"]`, cols.Value)
}

func TestParseAttributeEntities(t *testing.T) {
	nodes := mustParse(t, `<Card title="Terms &amp; Conditions"/>`)
	title, _ := element(t, nodes[0]).Attr("title")
	assert.Equal(t, "Terms & Conditions", title.Value)
}

func TestParseLastAttributeWins(t *testing.T) {
	nodes := mustParse(t, `<Button variant="primary" variant="danger"/>`)
	v, _ := element(t, nodes[0]).Attr("variant")
	assert.Equal(t, "danger", v.Value)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantPos Pos
		wantTag string
		wantMsg string
	}{
		{"unclosed element", "<Card>\n  <Button>Go</Button>", Pos{1, 1}, "Card", "unclosed element"},
		{"mismatched close", `<Card><Button></Card>`, Pos{1, 15}, "Button", "mismatched closing tag"},
		{"stray close", `<Button/></Card>`, Pos{1, 10}, "Card", "unexpected closing tag"},
		{"unterminated tag", `<Button variant="primary"`, Pos{1, 1}, "Button", "unterminated tag"},
		{"unterminated string", `<Button variant="primary>Go</Button>`, Pos{1, 17}, "Button", "unterminated string"},
		{"unterminated expression", `<Grid columns={3>`, Pos{1, 15}, "Grid", "unterminated expression"},
		{"spread attribute", `<Card {...props}/>`, Pos{1, 7}, "Card", "spread attributes"},
		{"unquoted value", `<Grid columns=3/>`, Pos{1, 15}, "Grid", "must be quoted"},
		{"missing name", `< />`, Pos{1, 3}, "", "expected a tag name"},
		{"unclosed fragment", `<><Card/>`, Pos{1, 1}, "<>", "unclosed element"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.src)
			require.Error(t, err)

			var se *SyntaxError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.wantPos, se.Pos)
			assert.Equal(t, tt.wantTag, se.Tag)
			assert.Contains(t, se.Msg, tt.wantMsg)
		})
	}
}

func TestParseNestingLimit(t *testing.T) {
	nest := func(n int) string {
		return strings.Repeat("<Card>", n) + strings.Repeat("</Card>", n)
	}

	nodes, err := Parse(nest(MaxDepth))
	require.NoError(t, err)
	require.Len(t, nodes, 1)

	_, err = Parse(nest(MaxDepth + 1))
	var se *SyntaxError
	require.True(t, errors.As(err, &se))
	assert.Contains(t, se.Msg, "nesting too deep")
	assert.Equal(t, Pos{Line: 1, Column: MaxDepth*len("<Card>") + 1}, se.Pos)

	// Fragments count toward the limit too.
	_, err = Parse(strings.Repeat("<>", MaxDepth+1) + strings.Repeat("</>", MaxDepth+1))
	require.True(t, errors.As(err, &se))
	assert.Contains(t, se.Msg, "nesting too deep")
}

func TestParseEmpty(t *testing.T) {
	nodes, err := Parse("")
	require.NoError(t, err)
	assert.Empty(t, nodes)

	nodes, err = Parse("   \n  ")
	require.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestDecodeExpr(t *testing.T) {
	tests := []struct {
		src  string
		want interface{}
	}{
		{`"lg"`, "lg"},
		{`'it\'s'`, "it's"},
		{"`plain`", "plain"},
		{`3`, 3},
		{`-2.5`, -2.5},
		{`1e3`, 1000.0},
		{`true`, true},
		{`null`, nil},
		{`undefined`, nil},
		{`["Name", "Email",]`, []interface{}{"Name", "Email"}},
		{`[["Ada", 36], ["Linus", 54]]`, []interface{}{
			[]interface{}{"Ada", 36},
			[]interface{}{"Linus", 54},
		}},
		{`[{label:"Home", icon: 'home'}, {"label": "Settings"}]`, []interface{}{
			map[string]interface{}{"label": "Home", "icon": "home"},
			map[string]interface{}{"label": "Settings"},
		}},
		{`{a: "x: y", /* note */ b: 2}`, map[string]interface{}{"a": "x: y", "b": 2}},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := DecodeExpr(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeExprRejectsNonLiterals(t *testing.T) {
	for _, src := range []string{
		`items`,
		`items.map(i => i)`,
		`() => alert(1)`,
		`a + b`,
		"`hi ${name}`",
		`[1, foo]`,
		`{a: bar}`,
		`count > 3 ? "a" : "b"`,
		`"unterminated`,
	} {
		t.Run(src, func(t *testing.T) {
			_, err := DecodeExpr(src)
			require.Error(t, err)
			var ee *ExprError
			assert.True(t, errors.As(err, &ee))
		})
	}
}
