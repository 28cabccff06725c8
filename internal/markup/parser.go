package markup

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// fragmentNames are element names treated like <>...</>.
var fragmentNames = map[string]bool{
	"":               true,
	"Fragment":       true,
	"React.Fragment": true,
}

// IsFragment reports whether name denotes a fragment.
func IsFragment(name string) bool {
	return fragmentNames[name]
}

// MaxDepth is the deepest element nesting Parse accepts.
const MaxDepth = 256

type parser struct {
	src   []rune
	i     int
	line  int
	col   int
	depth int
}

// Parse reads src as the children of an implicit fragment and returns the
// top-level nodes. Fragments anywhere in the tree are flattened.
func Parse(src string) ([]Node, error) {
	p := &parser{
		src:  []rune(src),
		line: 1,
		col:  1,
	}

	nodes, err := p.parseChildren(nil)
	if err != nil {
		return nil, err
	}

	return nodes, nil
}

func (p *parser) pos() Pos {
	return Pos{Line: p.line, Column: p.col}
}

func (p *parser) eof() bool {
	return p.i >= len(p.src)
}

func (p *parser) peek() rune {
	if p.eof() {
		return 0
	}

	return p.src[p.i]
}

func (p *parser) peekAt(off int) rune {
	if p.i+off >= len(p.src) {
		return 0
	}

	return p.src[p.i+off]
}

func (p *parser) next() rune {
	r := p.src[p.i]
	p.i++
	if r == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}

	return r
}

func (p *parser) skipSpace() {
	for !p.eof() && unicode.IsSpace(p.peek()) {
		p.next()
	}
}

func (p *parser) errorf(at Pos, tag, msg string) *SyntaxError {
	return &SyntaxError{Pos: at, Msg: msg, Tag: tag}
}

// openTag is the element whose children are being parsed; nil at top level.
type openTag struct {
	name string
	pos  Pos
}

func (p *parser) parseChildren(open *openTag) ([]Node, error) {
	var nodes []Node
	tagName := func() string {
		if open == nil {
			return ""
		}
		if open.name == "" {
			return "<>"
		}
		return open.name
	}

	for {
		if p.eof() {
			if open != nil {
				return nil, p.errorf(open.pos, tagName(), "unclosed element at end of input")
			}
			return nodes, nil
		}

		switch p.peek() {
		case '<':
			if p.peekAt(1) == '/' {
				closePos := p.pos()
				name, err := p.parseClosingTag()
				if err != nil {
					return nil, err
				}
				if open == nil {
					return nil, p.errorf(closePos, displayName(name), "unexpected closing tag")
				}
				if name != open.name {
					return nil, p.errorf(closePos, tagName(),
						"mismatched closing tag </"+name+">, expected </"+open.name+">")
				}
				return nodes, nil
			}

			children, err := p.parseElement()
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, children...)

		case '{':
			exprPos := p.pos()
			src, err := p.parseBraced(tagName())
			if err != nil {
				return nil, err
			}
			trimmed := strings.TrimSpace(src)
			if trimmed == "" || isComment(trimmed) {
				continue
			}
			nodes = append(nodes, &Expr{Source: trimmed, Pos: exprPos})

		default:
			textPos := p.pos()
			raw := p.readText()
			if value := cleanText(raw); value != "" {
				nodes = append(nodes, &Text{Value: html.UnescapeString(value), Pos: textPos})
			}
		}
	}
}

func displayName(name string) string {
	if name == "" {
		return "<>"
	}

	return name
}

// parseElement parses from '<' through the matching close. A fragment
// returns its children so the caller can splice them in place.
func (p *parser) parseElement() ([]Node, error) {
	start := p.pos()
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > MaxDepth {
		return nil, p.errorf(start, "", fmt.Sprintf("nesting too deep (more than %d levels)", MaxDepth))
	}
	p.next() // '<'
	p.skipSpace()

	if p.peek() == '>' {
		p.next()
		children, err := p.parseChildren(&openTag{name: "", pos: start})
		if err != nil {
			return nil, err
		}
		return children, nil
	}

	name := p.readName()
	if name == "" {
		if p.eof() {
			return nil, p.errorf(start, "", "unterminated tag")
		}
		return nil, p.errorf(p.pos(), "", "expected a tag name after '<'")
	}

	el := &Element{Name: name, Pos: start}
	for {
		p.skipSpace()
		if p.eof() {
			return nil, p.errorf(start, name, "unterminated tag")
		}

		switch r := p.peek(); {
		case r == '/':
			p.next()
			p.skipSpace()
			if p.eof() {
				return nil, p.errorf(start, name, "unterminated tag")
			}
			if p.peek() != '>' {
				return nil, p.errorf(p.pos(), name, "expected '>' after '/'")
			}
			p.next()
			return p.finish(el, nil), nil

		case r == '>':
			p.next()
			children, err := p.parseChildren(&openTag{name: name, pos: start})
			if err != nil {
				return nil, err
			}
			return p.finish(el, children), nil

		case r == '{':
			return nil, p.errorf(p.pos(), name, "spread attributes are not supported")

		default:
			attr, err := p.parseAttr(name)
			if err != nil {
				return nil, err
			}
			el.Attrs = append(el.Attrs, attr)
		}
	}
}

func (p *parser) finish(el *Element, children []Node) []Node {
	if IsFragment(el.Name) {
		return children
	}
	el.Children = children

	return []Node{el}
}

func (p *parser) parseClosingTag() (string, error) {
	start := p.pos()
	p.next() // '<'
	p.next() // '/'
	p.skipSpace()
	name := p.readName()
	p.skipSpace()
	if p.eof() {
		return "", p.errorf(start, displayName(name), "unterminated closing tag")
	}
	if p.peek() != '>' {
		return "", p.errorf(p.pos(), displayName(name), "expected '>' in closing tag")
	}
	p.next()

	return name, nil
}

func (p *parser) parseAttr(tag string) (Attr, error) {
	at := p.pos()
	name := p.readAttrName()
	if name == "" {
		return Attr{}, p.errorf(at, tag, "unexpected character '"+string(p.peek())+"' in tag")
	}

	p.skipSpace()
	if p.peek() != '=' {
		return Attr{Name: name, Kind: AttrFlag, Value: "true", Pos: at}, nil
	}
	p.next()
	p.skipSpace()

	switch q := p.peek(); q {
	case '"', '\'':
		valuePos := p.pos()
		p.next()
		var b strings.Builder
		for {
			if p.eof() {
				return Attr{}, p.errorf(valuePos, tag, "unterminated string in attribute "+name)
			}
			r := p.next()
			if r == q {
				break
			}
			b.WriteRune(r)
		}
		return Attr{Name: name, Kind: AttrString, Value: html.UnescapeString(b.String()), Pos: at}, nil

	case '{':
		src, err := p.parseBraced(tag)
		if err != nil {
			return Attr{}, err
		}
		src = strings.TrimSpace(src)
		if src == "" {
			return Attr{}, p.errorf(at, tag, "empty expression in attribute "+name)
		}
		return Attr{Name: name, Kind: AttrExpr, Value: src, Pos: at}, nil

	case 0:
		return Attr{}, p.errorf(at, tag, "unterminated tag")

	default:
		return Attr{}, p.errorf(p.pos(), tag, "attribute "+name+" value must be quoted or wrapped in {}")
	}
}

// parseBraced consumes a balanced {...} and returns the inner source.
// Braces inside string and template literals and comments do not count.
func (p *parser) parseBraced(tag string) (string, error) {
	start := p.pos()
	p.next() // '{'
	begin := p.i
	depth := 1

	for !p.eof() {
		r := p.next()
		switch r {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return string(p.src[begin : p.i-1]), nil
			}
		case '"', '\'', '`':
			if !p.skipQuoted(r) {
				return "", p.errorf(start, tag, "unterminated string in expression")
			}
		case '/':
			if p.peek() == '*' {
				if !p.skipBlockComment() {
					return "", p.errorf(start, tag, "unterminated comment")
				}
			}
		}
	}

	return "", p.errorf(start, tag, "unterminated expression")
}

func (p *parser) skipQuoted(q rune) bool {
	for !p.eof() {
		r := p.next()
		switch {
		case r == '\\':
			if p.eof() {
				return false
			}
			p.next()
		case r == q:
			return true
		}
	}

	return false
}

func (p *parser) skipBlockComment() bool {
	p.next() // '*'
	for !p.eof() {
		if p.next() == '*' && p.peek() == '/' {
			p.next()
			return true
		}
	}

	return false
}

func isComment(s string) bool {
	if len(s) < 4 || !strings.HasPrefix(s, "/*") || !strings.HasSuffix(s, "*/") {
		return false
	}

	return !strings.Contains(s[2:len(s)-2], "*/")
}

func (p *parser) readName() string {
	start := p.i
	for !p.eof() {
		r := p.peek()
		if p.i == start {
			if !unicode.IsLetter(r) && r != '_' && r != '$' {
				break
			}
		} else if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '$' && r != '.' && r != '-' {
			break
		}
		p.next()
	}

	return string(p.src[start:p.i])
}

func (p *parser) readAttrName() string {
	start := p.i
	for !p.eof() {
		r := p.peek()
		if p.i == start {
			if !unicode.IsLetter(r) && r != '_' && r != '$' {
				break
			}
		} else if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '$' && r != '-' && r != ':' {
			break
		}
		p.next()
	}

	return string(p.src[start:p.i])
}

func (p *parser) readText() string {
	start := p.i
	for !p.eof() && p.peek() != '<' && p.peek() != '{' {
		p.next()
	}

	return string(p.src[start:p.i])
}

// cleanText applies JSX whitespace handling: each line is trimmed at its
// inner edges, whitespace-only lines disappear and the remaining lines join
// with single spaces.
func cleanText(raw string) string {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")

	lastNonEmpty := 0
	for i, line := range lines {
		if strings.TrimFunc(line, isJSXSpace) != "" {
			lastNonEmpty = i
		}
	}

	var b strings.Builder
	for i, line := range lines {
		line = strings.ReplaceAll(line, "\t", " ")
		if i > 0 {
			line = strings.TrimLeftFunc(line, isJSXSpace)
		}
		if i < len(lines)-1 {
			line = strings.TrimRightFunc(line, isJSXSpace)
		}
		if line == "" {
			continue
		}
		b.WriteString(line)
		if i != lastNonEmpty {
			b.WriteByte(' ')
		}
	}

	return b.String()
}

func isJSXSpace(r rune) bool {
	return r == ' ' || r == '\t'
}
