// Package types provides the shared data model of uiforge: chat timeline
// entries, generation results (versions), and the request/response shapes of
// the external generation call.
//
// The JSON field names match the persisted shape so that stored histories
// stay readable across releases.
package types

import (
	"encoding/json"
	"time"
)

// Role identifies who produced a chat entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	default:
		return false
	}
}

// ChatEntry is one immutable line of the chat timeline.
type ChatEntry struct {
	// ID is an opaque unique identifier
	ID string `json:"id"`
	// Role is the author of the entry
	Role Role `json:"role"`
	// Content is the text shown to the user
	Content string `json:"content"`
	// CreatedAt orders entries; non-decreasing in append order
	CreatedAt time.Time `json:"timestamp"`
}

// GenerationResult is a single version produced by one successful generation
// call. Versions are never mutated after they are appended to the history.
type GenerationResult struct {
	// ID is an opaque unique identifier
	ID string `json:"id"`
	// Code is the generated markup fragment
	Code string `json:"code"`
	// Description is the structured blueprint returned by the backend; nil when absent
	Description json.RawMessage `json:"blueprint"`
	// SourcePrompt is the trimmed prompt that produced this version
	SourcePrompt string `json:"prompt"`
	// Explanation is the assistant's narration of the change
	Explanation string `json:"explanation"`
	// CreatedAt orders versions; non-decreasing in append order
	CreatedAt time.Time `json:"timestamp"`
}

// HasDescription reports whether the version carries a blueprint.
func (g GenerationResult) HasDescription() bool {
	return len(g.Description) > 0 && string(g.Description) != "null"
}
