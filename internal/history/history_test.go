package history

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/uiforge/internal/errors"
	"github.com/conneroisu/uiforge/internal/types"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func result(n int) types.GenerationResult {
	return types.GenerationResult{
		ID:           fmt.Sprintf("v%d", n),
		Code:         fmt.Sprintf(`<Card title="%d"/>`, n),
		SourcePrompt: fmt.Sprintf("prompt %d", n),
		CreatedAt:    t0.Add(time.Duration(n) * time.Second),
	}
}

func TestVersionStoreEmpty(t *testing.T) {
	s := NewVersionStore()

	assert.Equal(t, -1, s.CurrentIndex())
	assert.Equal(t, 0, s.Len())
	_, ok := s.Current()
	assert.False(t, ok)
}

func TestVersionStoreAppendAdvancesPointer(t *testing.T) {
	s := NewVersionStore()
	s.Append(result(1))
	s.Append(result(2))

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 1, s.CurrentIndex())
	cur, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "v2", cur.ID)
}

func TestVersionStoreRollbackThenAppend(t *testing.T) {
	s := NewVersionStore()
	s.Append(result(1))
	s.Append(result(2))

	require.NoError(t, s.Rollback(0))
	cur, _ := s.Current()
	assert.Equal(t, "v1", cur.ID)
	assert.Equal(t, 2, s.Len(), "rollback must not truncate")

	s.Append(result(3))
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, 2, s.CurrentIndex())
	mid, ok := s.At(1)
	require.True(t, ok)
	assert.Equal(t, "v2", mid.ID)
}

func TestVersionStoreRollbackOutOfRange(t *testing.T) {
	s := NewVersionStore()
	s.Append(result(1))

	for _, idx := range []int{-1, 1, 5} {
		err := s.Rollback(idx)
		require.Error(t, err)
		assert.True(t, errors.IsIndexOutOfRange(err))
	}
	assert.Equal(t, 0, s.CurrentIndex())
}

func TestVersionStoreClear(t *testing.T) {
	s := NewVersionStore()
	s.Append(result(1))
	s.Clear()

	assert.Equal(t, 0, s.Len())
	assert.Equal(t, -1, s.CurrentIndex())
}

func TestVersionStoreTimestampsNonDecreasing(t *testing.T) {
	s := NewVersionStore()
	s.Append(result(5))
	s.Append(result(1))

	versions := s.Versions()
	assert.False(t, versions[1].CreatedAt.Before(versions[0].CreatedAt))
}

func TestVersionsReturnsCopy(t *testing.T) {
	s := NewVersionStore()
	s.Append(result(1))

	vs := s.Versions()
	vs[0].Code = "mutated"

	cur, _ := s.Current()
	assert.NotEqual(t, "mutated", cur.Code)
}

func TestVersionStoreRestore(t *testing.T) {
	tests := []struct {
		name     string
		versions []types.GenerationResult
		index    int
		want     int
	}{
		{"valid index", []types.GenerationResult{result(1), result(2)}, 0, 0},
		{"no current version", []types.GenerationResult{result(1)}, -1, -1},
		{"below range", []types.GenerationResult{result(1)}, -7, -1},
		{"beyond end", []types.GenerationResult{result(1), result(2)}, 9, 1},
		{"empty with stale pointer", nil, 3, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewVersionStore()
			s.Restore(tt.versions, tt.index)
			assert.Equal(t, tt.want, s.CurrentIndex())
			assert.Equal(t, len(tt.versions), s.Len())
		})
	}
}

func TestTimeline(t *testing.T) {
	tl := NewTimeline()
	tl.Append(types.ChatEntry{ID: "1", Role: types.RoleUser, Content: "hi", CreatedAt: t0.Add(time.Minute)})
	tl.Append(types.ChatEntry{ID: "2", Role: types.RoleAssistant, Content: "ok", CreatedAt: t0})

	entries := tl.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "1", entries[0].ID)
	assert.Equal(t, entries[0].CreatedAt, entries[1].CreatedAt)

	entries[0].Content = "changed"
	assert.Equal(t, "hi", tl.Entries()[0].Content)

	tl.Clear()
	assert.Equal(t, 0, tl.Len())

	tl.Restore([]types.ChatEntry{{ID: "x"}})
	assert.Equal(t, 1, tl.Len())
}
