package markup

import "fmt"

// SyntaxError describes malformed markup.
type SyntaxError struct {
	Pos Pos
	Msg string
	// Tag is the element being parsed when the error occurred, if any.
	Tag string
}

func (e *SyntaxError) Error() string {
	if e.Tag != "" {
		return fmt.Sprintf("%s: %s (in <%s>)", e.Pos, e.Msg, e.Tag)
	}

	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}
