// Package generator talks to the remote service that turns a prompt into
// component markup. The call is opaque: a prompt plus the active version's
// code and description go out, code, description, explanation and safety
// violations come back.
package generator

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/conneroisu/uiforge/internal/config"
	"github.com/conneroisu/uiforge/internal/errors"
	"github.com/conneroisu/uiforge/internal/logging"
	"github.com/conneroisu/uiforge/internal/types"
)

// Client performs one generation round trip.
type Client interface {
	Generate(ctx context.Context, req types.GenerateRequest) (*types.GenerateResponse, error)
}

// ClientFunc adapts a function to Client.
type ClientFunc func(ctx context.Context, req types.GenerateRequest) (*types.GenerateResponse, error)

// Generate calls f.
func (f ClientFunc) Generate(ctx context.Context, req types.GenerateRequest) (*types.GenerateResponse, error) {
	return f(ctx, req)
}

// New builds the client selected by cfg.Provider. vocabulary lists the
// component names the model may use.
func New(cfg config.GeneratorConfig, vocabulary []string, logger logging.Logger) (Client, error) {
	switch cfg.Provider {
	case "", "http":
		return NewHTTPClient(cfg.BaseURL, WithTimeout(cfg.Timeout), WithLogger(logger)), nil
	case "openai":
		return NewOpenAIClient(cfg, vocabulary, logger), nil
	default:
		return nil, fmt.Errorf("generator: unknown provider %q", cfg.Provider)
	}
}

const invalidResponse = "The generation service returned an invalid response"

// decodeResponse parses a success body. The body must be a JSON object with
// a string "code" field; anything else is a payload error.
func decodeResponse(body []byte) (*types.GenerateResponse, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, errors.NewGenerationError(errors.ErrCodeGenerationPayload, invalidResponse, err)
	}
	if fields == nil {
		return nil, errors.NewGenerationError(errors.ErrCodeGenerationPayload, invalidResponse,
			fmt.Errorf("response body is null"))
	}

	var code string
	raw, ok := fields["code"]
	if !ok {
		return nil, errors.NewGenerationError(errors.ErrCodeGenerationPayload, invalidResponse,
			fmt.Errorf("response has no code field"))
	}
	if err := json.Unmarshal(raw, &code); err != nil || string(raw) == "null" {
		return nil, errors.NewGenerationError(errors.ErrCodeGenerationPayload, invalidResponse,
			fmt.Errorf("response code is not a string: %s", raw))
	}

	var out types.GenerateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, errors.NewGenerationError(errors.ErrCodeGenerationPayload, invalidResponse, err)
	}

	return normalize(&out), nil
}

func normalize(resp *types.GenerateResponse) *types.GenerateResponse {
	if resp.Violations == nil {
		resp.Violations = []string{}
	}

	return resp
}
