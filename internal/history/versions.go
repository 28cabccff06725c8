// Package history holds the in-memory version list and chat timeline of a
// workspace. Neither type performs I/O and neither is safe for concurrent use;
// callers serialize access.
package history

import (
	"github.com/conneroisu/uiforge/internal/errors"
	"github.com/conneroisu/uiforge/internal/types"
)

// VersionStore is an append-only list of generation results with a pointer
// to the active one. Rollback moves the pointer and never removes entries.
type VersionStore struct {
	versions []types.GenerationResult
	current  int
}

// NewVersionStore returns an empty store with no active version.
func NewVersionStore() *VersionStore {
	return &VersionStore{current: -1}
}

// Append adds a result after the last stored version and makes it active,
// even when the pointer had been rolled back to an earlier entry.
func (s *VersionStore) Append(result types.GenerationResult) {
	if n := len(s.versions); n > 0 {
		if last := s.versions[n-1].CreatedAt; result.CreatedAt.Before(last) {
			result.CreatedAt = last
		}
	}
	s.versions = append(s.versions, result)
	s.current = len(s.versions) - 1
}

// Rollback makes the version at index active.
func (s *VersionStore) Rollback(index int) error {
	if index < 0 || index >= len(s.versions) {
		return errors.ErrIndexOutOfRange(index, len(s.versions))
	}
	s.current = index

	return nil
}

// Current returns the active version, if any.
func (s *VersionStore) Current() (types.GenerationResult, bool) {
	if s.current < 0 || s.current >= len(s.versions) {
		return types.GenerationResult{}, false
	}

	return s.versions[s.current], true
}

// At returns the version at index.
func (s *VersionStore) At(index int) (types.GenerationResult, bool) {
	if index < 0 || index >= len(s.versions) {
		return types.GenerationResult{}, false
	}

	return s.versions[index], true
}

// CurrentIndex returns the active index, -1 when the store is empty.
func (s *VersionStore) CurrentIndex() int {
	return s.current
}

// Len returns the number of stored versions.
func (s *VersionStore) Len() int {
	return len(s.versions)
}

// Versions returns a copy of every stored version in append order.
func (s *VersionStore) Versions() []types.GenerationResult {
	out := make([]types.GenerationResult, len(s.versions))
	copy(out, s.versions)

	return out
}

// Clear removes every version and resets the pointer.
func (s *VersionStore) Clear() {
	s.versions = nil
	s.current = -1
}

// Restore replaces the contents with previously persisted state. An index
// outside [-1, len) is pulled back into range.
func (s *VersionStore) Restore(versions []types.GenerationResult, index int) {
	s.versions = make([]types.GenerationResult, len(versions))
	copy(s.versions, versions)

	switch {
	case index < -1:
		index = -1
	case index >= len(s.versions):
		index = len(s.versions) - 1
	}
	s.current = index
}
