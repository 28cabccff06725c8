// Package renderer turns the current version's code into what the preview
// surface shows.
//
// A LiveRenderer holds the view mode (rendered preview or raw source) and
// the transient copy acknowledgment. Preview rendering runs inside a single
// render boundary: interpreter diagnostics, mount errors and panics all come
// back as an Outcome carrying a Diagnostic, never as a panic or an error that
// escapes to the caller. The renderer only reads code; it never touches
// version history.
package renderer

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/conneroisu/uiforge/internal/errors"
	"github.com/conneroisu/uiforge/internal/interpreter"
	"github.com/conneroisu/uiforge/internal/logging"
)

// SourcePlaceholder is shown in source mode when there is no code.
const SourcePlaceholder = "// No code generated yet"

// DefaultCopyAck is how long Copied reports true after a copy.
const DefaultCopyAck = 2 * time.Second

// Mode selects what the preview surface shows
type Mode string

const (
	ModePreview Mode = "preview"
	ModeSource  Mode = "source"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModePreview, ModeSource:
		return Mode(s), nil
	default:
		return "", errors.NewValidationError(errors.ErrCodeValidationFailed,
			fmt.Sprintf("unknown view mode %q", s))
	}
}

// Outcome is the result of rendering code in the current mode.
type Outcome struct {
	Mode        Mode                    `json:"mode"`
	HTML        string                  `json:"html,omitempty"`
	Source      string                  `json:"source,omitempty"`
	Diagnostic  *interpreter.Diagnostic `json:"diagnostic,omitempty"`
	Placeholder bool                    `json:"placeholder,omitempty"`
}

// OK reports whether the outcome has no diagnostic.
func (o Outcome) OK() bool {
	return o.Diagnostic == nil
}

// LiveRenderer renders code for the preview surface
type LiveRenderer struct {
	interp    *interpreter.Interpreter
	policy    *bluemonday.Policy
	clipboard Clipboard
	copyAck   time.Duration
	now       func() time.Time
	logger    logging.Logger

	mu       sync.RWMutex
	mode     Mode
	copiedAt time.Time
}

// Option configures a LiveRenderer
type Option func(*LiveRenderer)

// WithInterpreter sets the interpreter used for preview mode.
func WithInterpreter(in *interpreter.Interpreter) Option {
	return func(r *LiveRenderer) { r.interp = in }
}

// WithSanitize enables or disables HTML sanitization of mounted output.
func WithSanitize(enabled bool) Option {
	return func(r *LiveRenderer) {
		if enabled {
			r.policy = NewPolicy()
		} else {
			r.policy = nil
		}
	}
}

// WithClipboard sets the sink used by Copy.
func WithClipboard(c Clipboard) Option {
	return func(r *LiveRenderer) { r.clipboard = c }
}

// WithCopyAck sets how long the copy acknowledgment lasts.
func WithCopyAck(d time.Duration) Option {
	return func(r *LiveRenderer) {
		if d > 0 {
			r.copyAck = d
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *LiveRenderer) { r.now = now }
}

// WithMode sets the initial view mode.
func WithMode(m Mode) Option {
	return func(r *LiveRenderer) { r.mode = m }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(r *LiveRenderer) { r.logger = l.WithComponent("renderer") }
}

// New creates a LiveRenderer in preview mode with sanitization on.
func New(opts ...Option) *LiveRenderer {
	r := &LiveRenderer{
		interp:    interpreter.New(nil),
		policy:    NewPolicy(),
		clipboard: NewSystemClipboard(),
		copyAck:   DefaultCopyAck,
		now:       time.Now,
		logger:    logging.NewNop(),
		mode:      ModePreview,
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Mode returns the current view mode.
func (r *LiveRenderer) Mode() Mode {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.mode
}

// SetMode switches the view mode. It has no other effect.
func (r *LiveRenderer) SetMode(m Mode) error {
	if _, err := ParseMode(string(m)); err != nil {
		return err
	}

	r.mu.Lock()
	r.mode = m
	r.mu.Unlock()

	return nil
}

// Toggle flips between preview and source and returns the new mode.
func (r *LiveRenderer) Toggle() Mode {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.mode == ModePreview {
		r.mode = ModeSource
	} else {
		r.mode = ModePreview
	}

	return r.mode
}

// Render renders code in the current mode.
func (r *LiveRenderer) Render(ctx context.Context, code string) Outcome {
	if r.Mode() == ModeSource {
		return Outcome{Mode: ModeSource, Source: Source(code), Placeholder: code == ""}
	}

	return r.Preview(ctx, code)
}

// Source returns code verbatim, or the placeholder when it is empty.
func Source(code string) string {
	if code == "" {
		return SourcePlaceholder
	}

	return code
}

// Preview interprets and mounts code. This is the render boundary: every
// failure, including a panic while mounting, becomes a Diagnostic.
func (r *LiveRenderer) Preview(ctx context.Context, code string) (out Outcome) {
	out.Mode = ModePreview

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error(ctx, fmt.Errorf("%v", rec), "Recovered panic while rendering preview",
				"code", logging.SanitizeForLog(code))
			out = Outcome{
				Mode: ModePreview,
				Diagnostic: &interpreter.Diagnostic{
					Kind:    interpreter.RenderFailure,
					Message: fmt.Sprintf("render panicked: %v", rec),
				},
			}
		}
	}()

	tree, diag := r.interp.Interpret(code)
	if diag != nil {
		r.logger.Debug(ctx, "Preview diagnostic", "kind", string(diag.Kind), "message", diag.Message)
		out.Diagnostic = diag
		return out
	}
	out.Placeholder = tree.Placeholder

	var buf bytes.Buffer
	if c := tree.Component(); c != nil {
		if err := c.Render(ctx, &buf); err != nil {
			r.logger.Warn(ctx, err, "Mounting preview failed")
			out.Diagnostic = &interpreter.Diagnostic{
				Kind:    interpreter.RenderFailure,
				Message: err.Error(),
			}
			return out
		}
	}

	html := buf.String()
	if r.policy != nil {
		html = r.policy.Sanitize(html)
	}
	out.HTML = html

	return out
}

// Copy writes code to the clipboard and starts the acknowledgment window.
// It does not change any version or chat state.
func (r *LiveRenderer) Copy(code string) error {
	if r.clipboard == nil {
		return errors.NewInternalError(errors.ErrCodeInternalError, "clipboard unavailable", nil)
	}
	if err := r.clipboard.WriteText(code); err != nil {
		return errors.NewIOError(errors.ErrCodeInternalError, "copy to clipboard", err)
	}

	r.mu.Lock()
	r.copiedAt = r.now()
	r.mu.Unlock()

	return nil
}

// Copied reports whether a copy happened within the acknowledgment window.
func (r *LiveRenderer) Copied() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.copiedAt.IsZero() {
		return false
	}

	return r.now().Sub(r.copiedAt) < r.copyAck
}
