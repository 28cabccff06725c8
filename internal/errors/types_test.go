package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUIErrorError(t *testing.T) {
	tests := []struct {
		name     string
		err      *UIError
		expected string
	}{
		{
			name:     "message only",
			err:      &UIError{Message: "boom"},
			expected: "boom",
		},
		{
			name:     "code and message",
			err:      &UIError{Code: ErrCodeStorage, Message: "write failed"},
			expected: "[ERR_STORAGE] write failed",
		},
		{
			name: "with cause",
			err: &UIError{
				Code:    ErrCodeStorage,
				Message: "write failed",
				Cause:   fmt.Errorf("disk full"),
			},
			expected: "[ERR_STORAGE] write failed: disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestUIErrorUnwrapAndIs(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := NewIOError(ErrCodeStorage, "persist", cause)

	assert.ErrorIs(t, err, cause)
	assert.True(t, errors.Is(err, &UIError{Type: ErrorTypeIO, Code: ErrCodeStorage}))
	assert.False(t, errors.Is(err, &UIError{Type: ErrorTypeIO, Code: ErrCodeInternalError}))

	wrapped := fmt.Errorf("outer: %w", err)
	var ue *UIError
	require.True(t, errors.As(wrapped, &ue))
	assert.Equal(t, "persist", ue.Message)
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		fallback string
		expected string
	}{
		{
			name:     "generation error surfaces its message",
			err:      NewGenerationError(ErrCodeGenerationFailed, "Model quota exceeded", nil),
			expected: "Model quota exceeded",
		},
		{
			name:     "wrapped generation error",
			err:      fmt.Errorf("submit: %w", NewGenerationError(ErrCodeGenerationStatus, "Server error: 500", nil)),
			expected: "Server error: 500",
		},
		{
			name:     "network error falls back",
			err:      NewNetworkError(ErrCodeGenerationFailed, "dial tcp: refused", nil),
			expected: DefaultUserMessage,
		},
		{
			name:     "plain error falls back",
			err:      fmt.Errorf("whatever"),
			expected: DefaultUserMessage,
		},
		{
			name:     "blank user-facing message falls back",
			err:      NewGenerationError(ErrCodeGenerationFailed, "   ", nil),
			expected: DefaultUserMessage,
		},
		{
			name:     "custom fallback",
			err:      fmt.Errorf("whatever"),
			fallback: "try again",
			expected: "try again",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, UserMessage(tt.err, tt.fallback))
		})
	}
}

func TestErrIndexOutOfRange(t *testing.T) {
	err := ErrIndexOutOfRange(5, 3)

	assert.True(t, IsIndexOutOfRange(err))
	assert.True(t, IsIndexOutOfRange(fmt.Errorf("rollback: %w", err)))
	assert.False(t, IsIndexOutOfRange(fmt.Errorf("other")))
	assert.Equal(t, 5, err.Context["index"])
	assert.Equal(t, 3, err.Context["length"])
	assert.Contains(t, err.Error(), "out of range")
	assert.True(t, IsType(err, ErrorTypeHistory))
}

func TestValidationErrorCollection(t *testing.T) {
	var vec ValidationErrorCollection
	assert.False(t, vec.HasErrors())
	assert.Nil(t, vec.ToUIError())
	assert.Equal(t, "no validation errors", vec.Error())

	vec.AddField("server.port", 0, "port must be between 1 and 65535", "use 8080")
	assert.Contains(t, vec.Error(), "server.port")

	vec.AddField("storage.driver", "mongo", "unknown driver")
	assert.Equal(t, "validation failed with 2 errors", vec.Error())

	ue := vec.ToUIError()
	require.NotNil(t, ue)
	assert.Equal(t, ErrCodeValidationFailed, ue.Code)
	assert.Contains(t, ue.Message, "; ")
	assert.Contains(t, ue.Context, "storage.driver")
}

type recordingLogger struct {
	errors []string
	warns  []string
	fields [][]interface{}
}

func (r *recordingLogger) Error(_ context.Context, _ error, msg string, fields ...interface{}) {
	r.errors = append(r.errors, msg)
	r.fields = append(r.fields, fields)
}

func (r *recordingLogger) Warn(_ context.Context, _ error, msg string, fields ...interface{}) {
	r.warns = append(r.warns, msg)
	r.fields = append(r.fields, fields)
}

func TestErrorHandlerHandle(t *testing.T) {
	logger := &recordingLogger{}
	h := NewErrorHandler(logger)
	ctx := context.Background()

	h.Handle(ctx, nil, "ignored")
	h.Handle(ctx, NewGenerationError(ErrCodeGenerationFailed, "bad", nil), "generate", "prompt", "x")
	h.Handle(ctx, NewIOError(ErrCodeStorage, "bad", nil), "persist")
	h.Handle(ctx, fmt.Errorf("plain"), "plain")

	assert.Equal(t, []string{"generate"}, logger.warns)
	assert.Equal(t, []string{"persist", "plain"}, logger.errors)
	require.Len(t, logger.fields, 3)
	assert.Equal(t, []interface{}{"prompt", "x", "type", ErrorTypeGeneration, "code", ErrCodeGenerationFailed}, logger.fields[0])
	assert.Equal(t, []interface{}{"type", ErrorTypeIO, "code", ErrCodeStorage}, logger.fields[1])
	assert.Empty(t, logger.fields[2])

	NewErrorHandler(nil).Handle(ctx, fmt.Errorf("dropped"), "nil logger")
}

func TestIsRecoverable(t *testing.T) {
	assert.True(t, IsRecoverable(NewValidationError(ErrCodeValidationFailed, "bad")))
	assert.True(t, IsRecoverable(fmt.Errorf("wrapped: %w", NewNetworkError(ErrCodeGenerationFailed, "down", nil))))
	assert.False(t, IsRecoverable(ErrIndexOutOfRange(1, 0)))
	assert.False(t, IsRecoverable(fmt.Errorf("plain")))
}

func TestErrComponentNotFound(t *testing.T) {
	err := ErrComponentNotFound("Carousel")
	assert.Equal(t, "[ERR_COMPONENT_NOT_FOUND] component not found: Carousel", err.Error())
	assert.True(t, errors.Is(fmt.Errorf("lookup: %w", err), ErrComponentNotFound("Grid")))
	assert.True(t, IsType(err, ErrorTypeValidation))
}
