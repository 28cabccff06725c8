// Package workspace persists the chat timeline and version history of a
// single workspace through a kv.Store. Loading is forgiving: a key that is
// missing, unreadable or malformed yields its empty default and a log line.
package workspace

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	uierrors "github.com/conneroisu/uiforge/internal/errors"
	"github.com/conneroisu/uiforge/internal/kv"
	"github.com/conneroisu/uiforge/internal/logging"
	"github.com/conneroisu/uiforge/internal/types"
)

// DefaultNamespace prefixes every key when none is configured.
const DefaultNamespace = "ui-gen"

// Keys names the three persisted values.
type Keys struct {
	Messages       string
	Versions       string
	CurrentVersion string
}

// KeysFor derives the keys for a namespace.
func KeysFor(namespace string) Keys {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	return Keys{
		Messages:       namespace + "-messages",
		Versions:       namespace + "-versions",
		CurrentVersion: namespace + "-current-version",
	}
}

// Snapshot is the state read back at startup.
type Snapshot struct {
	Messages     []types.ChatEntry
	Versions     []types.GenerationResult
	CurrentIndex int
}

// Workspace writes state changes to the store.
type Workspace struct {
	store  kv.Store
	keys   Keys
	logger logging.Logger
}

// Open loads persisted state. Each key is read independently.
func Open(ctx context.Context, store kv.Store, namespace string, logger logging.Logger) (*Workspace, Snapshot) {
	if logger == nil {
		logger = logging.NewNop()
	}
	w := &Workspace{
		store:  store,
		keys:   KeysFor(namespace),
		logger: logger.WithComponent("workspace"),
	}

	snap := Snapshot{
		Messages:     []types.ChatEntry{},
		Versions:     []types.GenerationResult{},
		CurrentIndex: -1,
	}

	var messages []types.ChatEntry
	if w.load(ctx, w.keys.Messages, &messages) && messages != nil {
		snap.Messages = messages
	}

	var versions []types.GenerationResult
	if w.load(ctx, w.keys.Versions, &versions) && versions != nil {
		snap.Versions = versions
	}

	var index int
	if w.load(ctx, w.keys.CurrentVersion, &index) {
		snap.CurrentIndex = index
	}

	w.logger.Debug(ctx, "Workspace loaded",
		"messages", len(snap.Messages),
		"versions", len(snap.Versions),
		"current_index", snap.CurrentIndex)

	return w, snap
}

// Keys returns the keys this workspace writes.
func (w *Workspace) Keys() Keys {
	return w.keys
}

func (w *Workspace) load(ctx context.Context, key string, dst interface{}) bool {
	raw, err := w.store.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return false
	}
	if err != nil {
		w.logger.Warn(ctx, err, "Failed to read persisted state", "key", key)
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		w.logger.Warn(ctx, err, "Discarding malformed persisted state", "key", key)
		return false
	}

	return true
}

// Save writes all three keys in one batch.
func (w *Workspace) Save(ctx context.Context, snap Snapshot) error {
	msgs, err := marshalList(snap.Messages)
	if err != nil {
		return w.fail(ctx, err, w.keys.Messages)
	}
	versions, err := marshalList(snap.Versions)
	if err != nil {
		return w.fail(ctx, err, w.keys.Versions)
	}

	batch := kv.NewBatch().
		Set(w.keys.Messages, msgs).
		Set(w.keys.Versions, versions).
		Set(w.keys.CurrentVersion, []byte(strconv.Itoa(snap.CurrentIndex)))

	if err := w.store.Commit(ctx, batch); err != nil {
		return w.fail(ctx, err, "all")
	}

	return nil
}

// Reset persists the empty state for every key at once.
func (w *Workspace) Reset(ctx context.Context) error {
	return w.Save(ctx, Snapshot{CurrentIndex: -1})
}

func (w *Workspace) fail(ctx context.Context, err error, key string) error {
	w.logger.Error(ctx, err, "Failed to persist workspace state", "key", key)

	return uierrors.NewIOError(uierrors.ErrCodeStorage, "persist "+key, err)
}

// marshalList encodes nil slices as [] rather than null.
func marshalList[T any](items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}

	return json.Marshal(items)
}
