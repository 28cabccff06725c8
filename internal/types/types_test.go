package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGenerateRequest(t *testing.T) {
	t.Run("no current version", func(t *testing.T) {
		req := NewGenerateRequest("A login page", nil)

		data, err := json.Marshal(req)
		require.NoError(t, err)
		assert.JSONEq(t, `{"prompt":"A login page","currentCode":null,"currentBlueprint":null}`, string(data))
	})

	t.Run("current version with blueprint", func(t *testing.T) {
		current := &GenerationResult{
			Code:        `<Card title="Login"/>`,
			Description: json.RawMessage(`{"root":"Card"}`),
		}
		req := NewGenerateRequest("add a footer", current)

		require.NotNil(t, req.CurrentCode)
		assert.Equal(t, `<Card title="Login"/>`, *req.CurrentCode)
		assert.JSONEq(t, `{"root":"Card"}`, string(req.CurrentBlueprint))
	})

	t.Run("null blueprint stays absent", func(t *testing.T) {
		current := &GenerationResult{Code: "<Card/>", Description: json.RawMessage("null")}
		req := NewGenerateRequest("p", current)
		assert.Nil(t, req.CurrentBlueprint)
	})
}

func TestGenerationResultJSONShape(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	v := GenerationResult{
		ID:           "v1",
		Code:         "<Card/>",
		SourcePrompt: "a card",
		Explanation:  "Built it",
		CreatedAt:    ts,
	}

	data, err := json.Marshal(v)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "a card", raw["prompt"])
	assert.Nil(t, raw["blueprint"])
	assert.Equal(t, "2026-01-02T03:04:05Z", raw["timestamp"])
	assert.False(t, v.HasDescription())
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleUser.Valid())
	assert.True(t, RoleAssistant.Valid())
	assert.True(t, RoleSystem.Valid())
	assert.False(t, Role("tool").Valid())
}
