package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeGeneration ErrorType = "generation"
	ErrorTypeHistory    ErrorType = "history"
	ErrorTypeRender     ErrorType = "render"
	ErrorTypeInternal   ErrorType = "internal"
)

// UIError is a structured error type with context.
type UIError struct {
	Type    ErrorType
	Code    string
	Message string
	Cause   error
	Context map[string]interface{}
	// UserFacing marks Message as safe to show in the chat timeline
	UserFacing  bool
	Recoverable bool
}

// Error implements the error interface.
func (e *UIError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *UIError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *UIError) Is(target error) bool {
	var t *UIError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *UIError) WithContext(key string, value interface{}) *UIError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// Error creation functions

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *UIError {
	return &UIError{
		Type:        ErrorTypeValidation,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *UIError {
	return &UIError{
		Type:        ErrorTypeConfig,
		Code:        code,
		Message:     message,
		Recoverable: false,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *UIError {
	return &UIError{
		Type:        ErrorTypeIO,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// NewNetworkError creates a transport-level error. Its message is not meant
// for end users.
func NewNetworkError(code, message string, cause error) *UIError {
	return &UIError{
		Type:        ErrorTypeNetwork,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewGenerationError creates an error reported by the generation backend.
// The message is shown to the user verbatim.
func NewGenerationError(code, message string, cause error) *UIError {
	return &UIError{
		Type:        ErrorTypeGeneration,
		Code:        code,
		Message:     message,
		Cause:       cause,
		UserFacing:  true,
		Recoverable: true,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *UIError {
	return &UIError{
		Type:        ErrorTypeInternal,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// Error recovery and handling utilities

// IsRecoverable checks if an error is recoverable.
func IsRecoverable(err error) bool {
	var ue *UIError
	if errors.As(err, &ue) {
		return ue.Recoverable
	}

	return false
}

// IsType reports whether err is a UIError of the given type.
func IsType(err error, t ErrorType) bool {
	var ue *UIError
	if errors.As(err, &ue) {
		return ue.Type == t
	}

	return false
}

// DefaultUserMessage is shown when a failure carries no user-facing text.
const DefaultUserMessage = "Something went wrong. Is the backend running?"

// UserMessage extracts a message suitable for the chat timeline. Only errors
// explicitly marked user-facing contribute their text; everything else maps
// to fallback, or DefaultUserMessage when fallback is empty.
func UserMessage(err error, fallback string) string {
	if fallback == "" {
		fallback = DefaultUserMessage
	}
	var ue *UIError
	if errors.As(err, &ue) && ue.UserFacing && strings.TrimSpace(ue.Message) != "" {
		return ue.Message
	}

	return fallback
}

// ErrorHandler provides centralized error handling.
type ErrorHandler struct {
	logger Logger
}

// Logger interface for error logging.
type Logger interface {
	Error(ctx context.Context, err error, msg string, fields ...interface{})
	Warn(ctx context.Context, err error, msg string, fields ...interface{})
}

// NewErrorHandler creates a new error handler.
func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle logs err under msg, at Warn when it is recoverable and at Error
// otherwise. UIErrors add their type and code to fields.
func (h *ErrorHandler) Handle(ctx context.Context, err error, msg string, fields ...interface{}) {
	if err == nil || h.logger == nil {
		return
	}

	var ue *UIError
	if errors.As(err, &ue) {
		fields = append(fields[:len(fields):len(fields)], "type", ue.Type, "code", ue.Code)
	}

	if IsRecoverable(err) {
		h.logger.Warn(ctx, err, msg, fields...)
		return
	}
	h.logger.Error(ctx, err, msg, fields...)
}

// Common error codes.
const (
	ErrCodeIndexOutOfRange   = "ERR_INDEX_OUT_OF_RANGE"
	ErrCodeGenerationFailed  = "ERR_GENERATION_FAILED"
	ErrCodeGenerationStatus  = "ERR_GENERATION_STATUS"
	ErrCodeGenerationPayload = "ERR_GENERATION_PAYLOAD"
	ErrCodeStorage           = "ERR_STORAGE"
	ErrCodeConfigInvalid     = "ERR_CONFIG_INVALID"
	ErrCodeValidationFailed  = "ERR_VALIDATION_FAILED"
	ErrCodeComponentNotFound = "ERR_COMPONENT_NOT_FOUND"
	ErrCodeInternalError     = "ERR_INTERNAL"
)

// ErrIndexOutOfRange creates the error returned by an invalid rollback.
func ErrIndexOutOfRange(index, length int) *UIError {
	return (&UIError{
		Type:        ErrorTypeHistory,
		Code:        ErrCodeIndexOutOfRange,
		Message:     fmt.Sprintf("version index %d out of range [0, %d)", index, length),
		Recoverable: false,
	}).WithContext("index", index).WithContext("length", length)
}

// IsIndexOutOfRange reports whether err came from an invalid rollback.
func IsIndexOutOfRange(err error) bool {
	var ue *UIError
	if errors.As(err, &ue) {
		return ue.Code == ErrCodeIndexOutOfRange
	}

	return false
}

// ErrComponentNotFound creates a component not found error.
func ErrComponentNotFound(name string) *UIError {
	return NewValidationError(
		ErrCodeComponentNotFound,
		"component not found: "+name,
	)
}

// FieldValidationError is a field-specific validation error.
type FieldValidationError struct {
	FieldName    string
	FieldValue   interface{}
	ErrorMessage string
	HelpText     []string
}

// Error implements the error interface.
func (fve *FieldValidationError) Error() string {
	return fmt.Sprintf("validation error in field '%s': %s", fve.FieldName, fve.ErrorMessage)
}

// ValidationErrorCollection represents a collection of validation errors.
type ValidationErrorCollection struct {
	Errors []*FieldValidationError
}

// Error implements the error interface.
func (vec *ValidationErrorCollection) Error() string {
	if len(vec.Errors) == 0 {
		return "no validation errors"
	}
	if len(vec.Errors) == 1 {
		return vec.Errors[0].Error()
	}

	return fmt.Sprintf("validation failed with %d errors", len(vec.Errors))
}

// AddField adds a field validation error to the collection.
func (vec *ValidationErrorCollection) AddField(
	field string,
	value interface{},
	message string,
	suggestions ...string,
) {
	vec.Errors = append(vec.Errors, &FieldValidationError{
		FieldName:    field,
		FieldValue:   value,
		ErrorMessage: message,
		HelpText:     suggestions,
	})
}

// HasErrors returns true if there are any validation errors.
func (vec *ValidationErrorCollection) HasErrors() bool {
	return len(vec.Errors) > 0
}

// ToUIError converts the validation collection to a UIError.
func (vec *ValidationErrorCollection) ToUIError() *UIError {
	if !vec.HasErrors() {
		return nil
	}

	var messages []string
	context := make(map[string]interface{})

	for _, err := range vec.Errors {
		messages = append(messages, err.Error())
		context[err.FieldName] = map[string]interface{}{
			"value":       err.FieldValue,
			"suggestions": err.HelpText,
		}
	}

	return &UIError{
		Type:        ErrorTypeValidation,
		Code:        ErrCodeValidationFailed,
		Message:     strings.Join(messages, "; "),
		Context:     context,
		Recoverable: true,
	}
}
