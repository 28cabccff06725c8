// Package orchestrator coordinates one generation request end to end and is
// the only writer of the version history and chat timeline.
//
// A submission moves through Idle → Pending → Committing → Idle. At most one
// submission is in flight; a second Submit while Pending is rejected. Each
// submission carries a generation token. ClearAll bumps the token so that a
// response arriving after the clear is discarded instead of being applied to
// the reset state.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/conneroisu/uiforge/internal/errors"
	"github.com/conneroisu/uiforge/internal/generator"
	"github.com/conneroisu/uiforge/internal/history"
	"github.com/conneroisu/uiforge/internal/logging"
	"github.com/conneroisu/uiforge/internal/types"
	"github.com/conneroisu/uiforge/internal/workspace"
)

// Phase is the state of the in-flight generation.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhasePending    Phase = "pending"
	PhaseCommitting Phase = "committing"
)

// Status reports what Submit did.
type Status string

const (
	StatusRejectedEmpty Status = "rejected_empty"
	StatusRejectedBusy  Status = "rejected_busy"
	StatusCommitted     Status = "committed"
	StatusFailed        Status = "failed"
	StatusDiscarded     Status = "discarded"
)

// SubmitResult is returned by Submit.
type SubmitResult struct {
	Status     Status                  `json:"status"`
	Version    *types.GenerationResult `json:"version,omitempty"`
	Violations []string                `json:"violations,omitempty"`
	Message    string                  `json:"message,omitempty"`
}

// State is a read-only copy of the orchestrated state.
type State struct {
	Messages     []types.ChatEntry        `json:"messages"`
	Versions     []types.GenerationResult `json:"versions"`
	CurrentIndex int                      `json:"currentVersionIndex"`
	Loading      bool                     `json:"isLoading"`
	Phase        Phase                    `json:"phase"`
}

// Current returns the active version.
func (s State) Current() (types.GenerationResult, bool) {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Versions) {
		return types.GenerationResult{}, false
	}

	return s.Versions[s.CurrentIndex], true
}

// CurrentCode returns the active version's code, or "" when there is none.
func (s State) CurrentCode() string {
	v, _ := s.Current()
	return v.Code
}

// EventType names a change notification.
type EventType string

const (
	EventStateChanged EventType = "state_changed"
	EventPhaseChanged EventType = "phase_changed"
)

// Event is delivered to subscribers after a change.
type Event struct {
	Type  EventType `json:"type"`
	State State     `json:"state"`
}

const (
	messageViolations = "⚠️ Safety check: %s"
	messageFailure    = "❌ Error: %s"
	messageRollback   = "🔄 Rolled back to version %d: \"%s\""
)

// Orchestrator owns the version store and chat timeline.
type Orchestrator struct {
	client    generator.Client
	workspace *workspace.Workspace
	timeout   time.Duration
	logger    logging.Logger
	now       func() time.Time
	newID     func() string

	mu       sync.Mutex
	versions *history.VersionStore
	timeline *history.Timeline
	phase    Phase
	token    uint64

	subMu       sync.RWMutex
	subscribers map[int]func(Event)
	nextSub     int
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithWorkspace persists every mutation through ws.
func WithWorkspace(ws *workspace.Workspace) Option {
	return func(o *Orchestrator) { o.workspace = ws }
}

// WithSnapshot seeds the stores with previously persisted state.
func WithSnapshot(snap workspace.Snapshot) Option {
	return func(o *Orchestrator) {
		o.timeline.Restore(snap.Messages)
		o.versions.Restore(snap.Versions, snap.CurrentIndex)
	}
}

// WithTimeout bounds each generation call.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.timeout = d }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(o *Orchestrator) { o.logger = l.WithComponent("orchestrator") }
}

// WithClock replaces time.Now for entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithIDGenerator replaces the uuid generator.
func WithIDGenerator(fn func() string) Option {
	return func(o *Orchestrator) { o.newID = fn }
}

// New creates an orchestrator around a generation client.
func New(client generator.Client, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		client:      client,
		logger:      logging.NewNop(),
		now:         time.Now,
		newID:       uuid.NewString,
		versions:    history.NewVersionStore(),
		timeline:    history.NewTimeline(),
		phase:       PhaseIdle,
		subscribers: make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Subscribe registers fn for change events and returns a function that
// removes it. fn runs on the goroutine that made the change and must not
// call back into the orchestrator synchronously.
func (o *Orchestrator) Subscribe(fn func(Event)) func() {
	o.subMu.Lock()
	id := o.nextSub
	o.nextSub++
	o.subscribers[id] = fn
	o.subMu.Unlock()

	return func() {
		o.subMu.Lock()
		delete(o.subscribers, id)
		o.subMu.Unlock()
	}
}

func (o *Orchestrator) notify(t EventType) {
	event := Event{Type: t, State: o.Snapshot()}

	o.subMu.RLock()
	subs := make([]func(Event), 0, len(o.subscribers))
	for _, fn := range o.subscribers {
		subs = append(subs, fn)
	}
	o.subMu.RUnlock()

	for _, fn := range subs {
		fn(event)
	}
}

// Snapshot returns a copy of the current state.
func (o *Orchestrator) Snapshot() State {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.stateLocked()
}

func (o *Orchestrator) stateLocked() State {
	return State{
		Messages:     o.timeline.Entries(),
		Versions:     o.versions.Versions(),
		CurrentIndex: o.versions.CurrentIndex(),
		Loading:      o.phase != PhaseIdle,
		Phase:        o.phase,
	}
}

func (o *Orchestrator) entry(role types.Role, content string) types.ChatEntry {
	return types.ChatEntry{
		ID:        o.newID(),
		Role:      role,
		Content:   content,
		CreatedAt: o.now(),
	}
}

// persistLocked writes the whole state. Failures are logged by the
// workspace; memory stays authoritative.
func (o *Orchestrator) persistLocked(ctx context.Context) {
	if o.workspace == nil {
		return
	}
	_ = o.workspace.Save(ctx, workspace.Snapshot{
		Messages:     o.timeline.Entries(),
		Versions:     o.versions.Versions(),
		CurrentIndex: o.versions.CurrentIndex(),
	})
}

// Submit runs one generation for prompt. The call to the generation backend
// is detached from ctx cancellation and bounded by the configured timeout so
// the in-flight flag is always cleared.
func (o *Orchestrator) Submit(ctx context.Context, prompt string) SubmitResult {
	trimmed := strings.TrimSpace(prompt)
	if trimmed == "" {
		return SubmitResult{Status: StatusRejectedEmpty}
	}

	o.mu.Lock()
	if o.phase != PhaseIdle {
		o.mu.Unlock()
		o.logger.Debug(ctx, "Submit rejected while a generation is in flight")
		return SubmitResult{Status: StatusRejectedBusy}
	}

	o.timeline.Append(o.entry(types.RoleUser, trimmed))
	o.phase = PhasePending
	o.token++
	token := o.token

	var current *types.GenerationResult
	if v, ok := o.versions.Current(); ok {
		current = &v
	}
	req := types.NewGenerateRequest(trimmed, current)
	o.persistLocked(ctx)
	o.mu.Unlock()
	o.notify(EventPhaseChanged)

	detached := context.WithoutCancel(ctx)
	callCtx := detached
	if o.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(callCtx, o.timeout)
		defer cancel()
	}

	op := logging.StartOperation(o.logger, "generate")
	resp, err := o.client.Generate(callCtx, req)
	switch {
	case err != nil:
		op.EndWithError(ctx, err, "prompt", logging.SanitizeForLog(trimmed))
	case resp != nil:
		op.End(ctx, "violations", len(resp.Violations))
	}

	return o.apply(detached, token, trimmed, resp, err)
}

func (o *Orchestrator) apply(ctx context.Context, token uint64, prompt string, resp *types.GenerateResponse, callErr error) SubmitResult {
	o.mu.Lock()

	if token != o.token {
		o.phase = PhaseIdle
		o.mu.Unlock()
		o.logger.Info(ctx, "Discarded generation response after history was cleared")
		o.notify(EventPhaseChanged)
		return SubmitResult{Status: StatusDiscarded}
	}

	o.phase = PhaseCommitting
	var result SubmitResult

	if callErr != nil || resp == nil {
		if callErr == nil {
			callErr = errors.NewGenerationError(errors.ErrCodeGenerationPayload, "The generation service returned an empty response", nil)
		}
		msg := errors.UserMessage(callErr, errors.DefaultUserMessage)
		o.timeline.Append(o.entry(types.RoleSystem, fmt.Sprintf(messageFailure, msg)))
		result = SubmitResult{Status: StatusFailed, Message: msg}
	} else {
		version := types.GenerationResult{
			ID:           o.newID(),
			Code:         resp.Code,
			Description:  resp.Blueprint,
			SourcePrompt: prompt,
			Explanation:  resp.Explanation,
			CreatedAt:    o.now(),
		}
		o.versions.Append(version)
		o.timeline.Append(o.entry(types.RoleAssistant, resp.Explanation))
		if len(resp.Violations) > 0 {
			o.timeline.Append(o.entry(types.RoleSystem,
				fmt.Sprintf(messageViolations, strings.Join(resp.Violations, " "))))
		}

		committed, _ := o.versions.Current()
		result = SubmitResult{Status: StatusCommitted, Version: &committed, Violations: resp.Violations}
	}

	o.persistLocked(ctx)
	o.phase = PhaseIdle
	o.mu.Unlock()
	o.notify(EventStateChanged)

	return result
}

// Rollback makes the version at index current and records it in the chat.
// It fails with an index-out-of-range error for an invalid index, leaving
// both stores untouched.
func (o *Orchestrator) Rollback(ctx context.Context, index int) error {
	o.mu.Lock()
	if err := o.versions.Rollback(index); err != nil {
		o.mu.Unlock()
		return err
	}
	version, _ := o.versions.At(index)
	o.timeline.Append(o.entry(types.RoleSystem, fmt.Sprintf(messageRollback, index+1, version.SourcePrompt)))
	o.persistLocked(ctx)
	o.mu.Unlock()

	o.logger.Info(ctx, "Rolled back", "index", index)
	o.notify(EventStateChanged)

	return nil
}

// ClearAll empties the chat and version history together. A generation in
// flight is invalidated; its response will be discarded.
func (o *Orchestrator) ClearAll(ctx context.Context) {
	o.mu.Lock()
	o.timeline.Clear()
	o.versions.Clear()
	o.token++
	if o.workspace != nil {
		_ = o.workspace.Reset(ctx)
	}
	o.mu.Unlock()

	o.logger.Info(ctx, "Cleared history")
	o.notify(EventStateChanged)
}
