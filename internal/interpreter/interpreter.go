// Package interpreter resolves a generated markup fragment against the
// component registry.
//
// Interpretation is all or nothing: it yields either a complete render tree
// or a single Diagnostic describing the first problem found. An Interpreter
// keeps no state between calls, so a bad fragment cannot affect the next one.
package interpreter

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/conneroisu/uiforge/internal/markup"
	"github.com/conneroisu/uiforge/internal/registry"
)

// Placeholder is interpreted in place of empty code.
const Placeholder = `<Container padding="md"><Card title="Welcome"><Button variant="primary">Get started by describing a UI in the chat</Button></Card></Container>`

// DiagnosticKind classifies why a fragment could not be rendered.
type DiagnosticKind string

const (
	UnknownComponent DiagnosticKind = "UnknownComponent"
	MalformedMarkup  DiagnosticKind = "MalformedMarkup"
	PropTypeMismatch DiagnosticKind = "PropTypeMismatch"
	// RenderFailure is reported by the render boundary when mounting a
	// resolved tree fails.
	RenderFailure DiagnosticKind = "RenderFailure"
)

// Diagnostic describes a fragment that could not be turned into a tree.
type Diagnostic struct {
	Kind         DiagnosticKind `json:"kind"`
	Message      string         `json:"message"`
	OffendingTag string         `json:"offendingTag,omitempty"`
	Line         int            `json:"line,omitempty"`
	Column       int            `json:"column,omitempty"`
}

func (d *Diagnostic) Error() string {
	var b strings.Builder
	b.WriteString(string(d.Kind))
	if d.Line > 0 {
		fmt.Fprintf(&b, " at %d:%d", d.Line, d.Column)
	}
	b.WriteString(": ")
	b.WriteString(d.Message)

	return b.String()
}

// Node is one resolved element or a run of text.
type Node struct {
	Descriptor *registry.Descriptor
	Props      registry.Props
	Children   []*Node
	Text       string
}

// IsText reports whether n is a text node.
func (n *Node) IsText() bool {
	return n.Descriptor == nil
}

// Tree is a fully resolved fragment.
type Tree struct {
	Roots       []*Node
	Placeholder bool
}

// Component returns the templ component that mounts the tree.
func (t *Tree) Component() templ.Component {
	return nodesComponent(t.Roots)
}

func nodesComponent(nodes []*Node) templ.Component {
	if len(nodes) == 0 {
		return nil
	}

	components := make([]templ.Component, len(nodes))
	for i, n := range nodes {
		components[i] = n.component()
	}

	return templ.Join(components...)
}

func (n *Node) component() templ.Component {
	if n.IsText() {
		text := n.Text
		return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
			_, err := io.WriteString(w, templ.EscapeString(text))
			return err
		})
	}

	return n.Descriptor.Render(n.Props, nodesComponent(n.Children))
}

// Interpreter resolves markup against a registry
type Interpreter struct {
	registry *registry.ComponentRegistry
}

// New creates an interpreter over reg. A nil reg uses the default catalog.
func New(reg *registry.ComponentRegistry) *Interpreter {
	if reg == nil {
		reg = registry.Default()
	}

	return &Interpreter{registry: reg}
}

// Interpret parses code and resolves every element. Blank code yields the
// placeholder tree.
func (in *Interpreter) Interpret(code string) (*Tree, *Diagnostic) {
	placeholder := strings.TrimSpace(code) == ""
	if placeholder {
		code = Placeholder
	}

	nodes, err := markup.Parse(code)
	if err != nil {
		return nil, syntaxDiagnostic(err)
	}

	roots, diag := in.resolveAll(nodes)
	if diag != nil {
		return nil, diag
	}

	return &Tree{Roots: roots, Placeholder: placeholder}, nil
}

func syntaxDiagnostic(err error) *Diagnostic {
	var se *markup.SyntaxError
	if stderrors.As(err, &se) {
		return &Diagnostic{
			Kind:         MalformedMarkup,
			Message:      se.Msg,
			OffendingTag: se.Tag,
			Line:         se.Pos.Line,
			Column:       se.Pos.Column,
		}
	}

	return &Diagnostic{Kind: MalformedMarkup, Message: err.Error()}
}

func (in *Interpreter) resolveAll(nodes []markup.Node) ([]*Node, *Diagnostic) {
	var out []*Node
	for _, n := range nodes {
		resolved, diag := in.resolve(n)
		if diag != nil {
			return nil, diag
		}
		out = append(out, resolved...)
	}

	return out, nil
}

func (in *Interpreter) resolve(n markup.Node) ([]*Node, *Diagnostic) {
	switch n := n.(type) {
	case *markup.Text:
		return []*Node{{Text: n.Value}}, nil

	case *markup.Expr:
		return exprChildren(n)

	case *markup.Element:
		return in.resolveElement(n)

	default:
		return nil, &Diagnostic{Kind: MalformedMarkup, Message: fmt.Sprintf("unexpected node %T", n)}
	}
}

func (in *Interpreter) resolveElement(el *markup.Element) ([]*Node, *Diagnostic) {
	desc, ok := in.registry.Get(el.Name)
	if !ok {
		return nil, &Diagnostic{
			Kind:         UnknownComponent,
			Message:      fmt.Sprintf("%s is not an available component", el.Name),
			OffendingTag: el.Name,
			Line:         el.Pos.Line,
			Column:       el.Pos.Column,
		}
	}

	raw := make(map[string]interface{}, len(el.Attrs))
	for _, attr := range el.Attrs {
		if _, declared := desc.Prop(attr.Name); !declared {
			continue
		}
		switch attr.Kind {
		case markup.AttrString:
			raw[attr.Name] = attr.Value
		case markup.AttrFlag:
			raw[attr.Name] = true
		case markup.AttrExpr:
			v, err := markup.DecodeExpr(attr.Value)
			if err != nil {
				return nil, &Diagnostic{
					Kind:         PropTypeMismatch,
					Message:      fmt.Sprintf("prop %s: %v", attr.Name, err),
					OffendingTag: el.Name,
					Line:         attr.Pos.Line,
					Column:       attr.Pos.Column,
				}
			}
			raw[attr.Name] = v
		}
	}

	props, err := desc.Resolve(raw)
	if err != nil {
		return nil, &Diagnostic{
			Kind:         PropTypeMismatch,
			Message:      err.Error(),
			OffendingTag: el.Name,
			Line:         el.Pos.Line,
			Column:       el.Pos.Column,
		}
	}

	children, diag := in.resolveAll(el.Children)
	if diag != nil {
		return nil, diag
	}

	return []*Node{{Descriptor: desc, Props: props, Children: children}}, nil
}

// exprChildren turns a {literal} child into text. Booleans and null render
// nothing; arrays render their elements in order.
func exprChildren(e *markup.Expr) ([]*Node, *Diagnostic) {
	v, err := markup.DecodeExpr(e.Source)
	if err != nil {
		return nil, &Diagnostic{
			Kind:    MalformedMarkup,
			Message: err.Error(),
			Line:    e.Pos.Line,
			Column:  e.Pos.Column,
		}
	}

	var out []*Node
	var walk func(v interface{}) error
	walk = func(v interface{}) error {
		switch v := v.(type) {
		case nil, bool:
		case string:
			out = append(out, &Node{Text: v})
		case int:
			out = append(out, &Node{Text: fmt.Sprint(v)})
		case float64:
			out = append(out, &Node{Text: formatFloat(v)})
		case []interface{}:
			for _, item := range v {
				if err := walk(item); err != nil {
					return err
				}
			}
		default:
			return fmt.Errorf("objects are not valid as children")
		}
		return nil
	}

	if err := walk(v); err != nil {
		return nil, &Diagnostic{
			Kind:    MalformedMarkup,
			Message: fmt.Sprintf("{%s}: %v", e.Source, err),
			Line:    e.Pos.Line,
			Column:  e.Pos.Column,
		}
	}

	return out, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
