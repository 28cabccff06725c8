package history

import "github.com/conneroisu/uiforge/internal/types"

// Timeline is the append-only chat log.
type Timeline struct {
	entries []types.ChatEntry
}

// NewTimeline returns an empty timeline.
func NewTimeline() *Timeline {
	return &Timeline{}
}

// Append adds an entry. Timestamps never go backwards.
func (t *Timeline) Append(entry types.ChatEntry) {
	if n := len(t.entries); n > 0 {
		if last := t.entries[n-1].CreatedAt; entry.CreatedAt.Before(last) {
			entry.CreatedAt = last
		}
	}
	t.entries = append(t.entries, entry)
}

// Entries returns a copy of the log in order.
func (t *Timeline) Entries() []types.ChatEntry {
	out := make([]types.ChatEntry, len(t.entries))
	copy(out, t.entries)

	return out
}

// Len returns the number of entries.
func (t *Timeline) Len() int {
	return len(t.entries)
}

// Clear empties the log.
func (t *Timeline) Clear() {
	t.entries = nil
}

// Restore replaces the log with persisted entries.
func (t *Timeline) Restore(entries []types.ChatEntry) {
	t.entries = make([]types.ChatEntry, len(entries))
	copy(t.entries, entries)
}
