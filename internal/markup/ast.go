// Package markup parses the JSX subset generated interfaces are written in.
//
// Supported: elements with string, expression and flag attributes,
// self-closing elements, fragments (which are flattened into their parent),
// text with JSX whitespace rules and HTML entities, expression children and
// comment expressions. Anything else is a SyntaxError carrying the position
// and the tag being parsed.
package markup

import "fmt"

// Pos is a 1-based line and column.
type Pos struct {
	Line   int
	Column int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Node is an Element, Text or Expr.
type Node interface {
	Position() Pos
	node()
}

// Element is a tag with attributes and children.
type Element struct {
	Name     string
	Attrs    []Attr
	Children []Node
	Pos      Pos
}

// Attr returns the attribute named name, if present. The last occurrence
// wins, as it does for JSX props.
func (e *Element) Attr(name string) (Attr, bool) {
	for i := len(e.Attrs) - 1; i >= 0; i-- {
		if e.Attrs[i].Name == name {
			return e.Attrs[i], true
		}
	}

	return Attr{}, false
}

// Text is literal character data with entities already decoded.
type Text struct {
	Value string
	Pos   Pos
}

// Expr is a {...} child holding a JavaScript expression.
type Expr struct {
	Source string
	Pos    Pos
}

func (e *Element) Position() Pos { return e.Pos }
func (t *Text) Position() Pos    { return t.Pos }
func (x *Expr) Position() Pos    { return x.Pos }

func (*Element) node() {}
func (*Text) node()    {}
func (*Expr) node()    {}

// AttrKind says how an attribute value was written.
type AttrKind int

const (
	// AttrString is name="value" or name='value'.
	AttrString AttrKind = iota
	// AttrExpr is name={expression}.
	AttrExpr
	// AttrFlag is a bare name, equivalent to name={true}.
	AttrFlag
)

func (k AttrKind) String() string {
	switch k {
	case AttrString:
		return "string"
	case AttrExpr:
		return "expression"
	case AttrFlag:
		return "flag"
	default:
		return "unknown"
	}
}

// Attr is one attribute. Value holds decoded text for AttrString and the raw
// source for AttrExpr.
type Attr struct {
	Name  string
	Kind  AttrKind
	Value string
	Pos   Pos
}
