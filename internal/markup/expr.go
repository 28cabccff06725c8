package markup

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// ExprError reports an expression that is not a plain literal.
type ExprError struct {
	Source string
	Msg    string
}

func (e *ExprError) Error() string {
	return fmt.Sprintf("unsupported expression {%s}: %s", e.Source, e.Msg)
}

// DecodeExpr evaluates a literal JavaScript expression: strings, numbers,
// booleans, null, undefined, and arrays or objects built from them. Object
// keys may be bare identifiers. Identifiers in value position, calls and
// operators are rejected since nothing is in scope to evaluate them against.
//
// The literal is rewritten into YAML flow syntax, which shares its shape
// with JavaScript literals, and decoded with yaml.v3.
func DecodeExpr(src string) (interface{}, error) {
	normalized, err := normalizeJS(src)
	if err != nil {
		return nil, &ExprError{Source: src, Msg: err.Error()}
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(normalized), &doc); err != nil {
		return nil, &ExprError{Source: src, Msg: "not a literal"}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 {
		return nil, &ExprError{Source: src, Msg: "empty expression"}
	}
	root := doc.Content[0]
	if err := checkLiteral(root); err != nil {
		return nil, &ExprError{Source: src, Msg: err.Error()}
	}

	var out interface{}
	if err := root.Decode(&out); err != nil {
		return nil, &ExprError{Source: src, Msg: err.Error()}
	}

	return out, nil
}

func checkLiteral(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Style == 0 {
			switch n.Tag {
			case "!!bool", "!!null", "!!int", "!!float":
				return nil
			default:
				return fmt.Errorf("%q is not defined", n.Value)
			}
		}
		return nil
	case yaml.SequenceNode:
		if n.Style&yaml.FlowStyle == 0 {
			return fmt.Errorf("not a literal")
		}
		for _, c := range n.Content {
			if err := checkLiteral(c); err != nil {
				return err
			}
		}
		return nil
	case yaml.MappingNode:
		if n.Style&yaml.FlowStyle == 0 {
			return fmt.Errorf("not a literal")
		}
		for i := 1; i < len(n.Content); i += 2 {
			if err := checkLiteral(n.Content[i]); err != nil {
				return err
			}
		}
		return nil
	case yaml.AliasNode:
		return fmt.Errorf("not a literal")
	default:
		return fmt.Errorf("not a literal")
	}
}

// normalizeJS converts a JavaScript literal into YAML flow text: strings
// become JSON strings, a space follows every ':' and ',', trailing commas
// and comments disappear and undefined becomes null.
func normalizeJS(src string) (string, error) {
	var b strings.Builder
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == '"' || c == '\'' || c == '`':
			s, n, err := readJSString(src[i:])
			if err != nil {
				return "", err
			}
			quoted, _ := json.Marshal(s)
			b.Write(quoted)
			i += n

		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				return "", fmt.Errorf("unterminated comment")
			}
			i += end + 4

		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			end := strings.IndexByte(src[i:], '\n')
			if end < 0 {
				i = len(src)
			} else {
				i += end
			}

		case c == ',':
			j := i + 1
			for j < len(src) && isSpaceByte(src[j]) {
				j++
			}
			if j < len(src) && (src[j] == ']' || src[j] == '}') {
				i++
				continue
			}
			b.WriteString(", ")
			i++

		case c == ':':
			b.WriteString(": ")
			i++

		case c >= '0' && c <= '9':
			j := i + 1
			for j < len(src) {
				d := src[j]
				if isIdentPart(d) || d == '.' {
					j++
					continue
				}
				if (d == '+' || d == '-') && (src[j-1] == 'e' || src[j-1] == 'E') {
					j++
					continue
				}
				break
			}
			b.WriteString(src[i:j])
			i = j

		case isIdentStart(c):
			j := i + 1
			for j < len(src) && isIdentPart(src[j]) {
				j++
			}
			word := src[i:j]
			switch word {
			case "undefined":
				b.WriteString("null")
			default:
				k := j
				for k < len(src) && isSpaceByte(src[k]) {
					k++
				}
				if k < len(src) && (src[k] == '(' || src[k] == '.' || src[k] == '[') {
					return "", fmt.Errorf("%q is not a literal", word)
				}
				b.WriteString(word)
			}
			i = j

		case strings.IndexByte("+*=<>!?&|%()", c) >= 0 && !(c == '+' && i == 0):
			return "", fmt.Errorf("operator %q is not supported", string(c))

		default:
			b.WriteByte(c)
			i++
		}
	}

	return b.String(), nil
}

// readJSString decodes the string literal at the start of s and returns the
// value and the number of bytes consumed.
func readJSString(s string) (string, int, error) {
	q := s[0]
	var b strings.Builder
	i := 1
	for i < len(s) {
		c := s[i]
		switch {
		case c == q:
			return b.String(), i + 1, nil
		case c == '$' && q == '`' && i+1 < len(s) && s[i+1] == '{':
			return "", 0, fmt.Errorf("template substitutions are not supported")
		case c == '\\':
			if i+1 >= len(s) {
				return "", 0, fmt.Errorf("unterminated string")
			}
			n, err := writeEscape(&b, s[i+1:])
			if err != nil {
				return "", 0, err
			}
			i += 1 + n
		case c == '\n' && q != '`':
			return "", 0, fmt.Errorf("unterminated string")
		default:
			r, size := utf8.DecodeRuneInString(s[i:])
			b.WriteRune(r)
			i += size
		}
	}

	return "", 0, fmt.Errorf("unterminated string")
}

func writeEscape(b *strings.Builder, s string) (int, error) {
	switch s[0] {
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 'v':
		b.WriteByte('\v')
	case '0':
		b.WriteByte(0)
	case '\n':
		// line continuation
	case 'x':
		if len(s) < 3 {
			return 0, fmt.Errorf("bad \\x escape")
		}
		v, err := strconv.ParseUint(s[1:3], 16, 8)
		if err != nil {
			return 0, fmt.Errorf("bad \\x escape")
		}
		b.WriteRune(rune(v))
		return 3, nil
	case 'u':
		if len(s) > 1 && s[1] == '{' {
			end := strings.IndexByte(s, '}')
			if end < 0 {
				return 0, fmt.Errorf("bad \\u escape")
			}
			v, err := strconv.ParseUint(s[2:end], 16, 32)
			if err != nil {
				return 0, fmt.Errorf("bad \\u escape")
			}
			b.WriteRune(rune(v))
			return end + 1, nil
		}
		if len(s) < 5 {
			return 0, fmt.Errorf("bad \\u escape")
		}
		v, err := strconv.ParseUint(s[1:5], 16, 16)
		if err != nil {
			return 0, fmt.Errorf("bad \\u escape")
		}
		b.WriteRune(rune(v))
		return 5, nil
	default:
		r, size := utf8.DecodeRuneInString(s)
		b.WriteRune(r)
		return size, nil
	}

	return 1, nil
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
