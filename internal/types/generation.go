package types

import "encoding/json"

// GenerateRequest is sent to the external generation backend.
type GenerateRequest struct {
	Prompt           string          `json:"prompt"`
	CurrentCode      *string         `json:"currentCode"`
	CurrentBlueprint json.RawMessage `json:"currentBlueprint"`
}

// GenerateResponse is the successful answer of the generation backend.
type GenerateResponse struct {
	Code        string          `json:"code"`
	Blueprint   json.RawMessage `json:"blueprint"`
	Explanation string          `json:"explanation"`
	Violations  []string        `json:"violations"`
}

// NewGenerateRequest builds a request carrying the current version as
// context. A nil current version, empty code, or absent blueprint encode as
// null.
func NewGenerateRequest(prompt string, current *GenerationResult) GenerateRequest {
	req := GenerateRequest{Prompt: prompt}
	if current == nil {
		return req
	}
	if current.Code != "" {
		code := current.Code
		req.CurrentCode = &code
	}
	if current.HasDescription() {
		req.CurrentBlueprint = current.Description
	}
	return req
}
