package generator

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/conneroisu/uiforge/internal/config"
	"github.com/conneroisu/uiforge/internal/errors"
	"github.com/conneroisu/uiforge/internal/logging"
	"github.com/conneroisu/uiforge/internal/types"
)

// OpenAIClient asks an OpenAI-compatible chat completion endpoint for the
// generation directly, without a separate backend service.
type OpenAIClient struct {
	client     *openai.Client
	model      string
	vocabulary []string
	logger     logging.Logger
}

// NewOpenAIClient builds a client from generator configuration. A non-empty
// BaseURL points it at a compatible server.
func NewOpenAIClient(cfg config.GeneratorConfig, vocabulary []string, logger logging.Logger) *OpenAIClient {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	return &OpenAIClient{
		client:     openai.NewClientWithConfig(clientConfig),
		model:      cfg.Model,
		vocabulary: vocabulary,
		logger:     logger.WithComponent("generator"),
	}
}

// Generate sends the prompt and current version as chat messages and decodes
// the JSON reply.
func (c *OpenAIClient) Generate(ctx context.Context, req types.GenerateRequest) (*types.GenerateResponse, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt(c.vocabulary)},
		{Role: openai.ChatMessageRoleUser, Content: userMessage(req)},
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		var apiErr *openai.APIError
		if stderrors.As(err, &apiErr) {
			return nil, errors.NewGenerationError(errors.ErrCodeGenerationStatus, apiErr.Message, err).
				WithContext("status", apiErr.HTTPStatusCode)
		}
		return nil, errors.NewNetworkError(errors.ErrCodeGenerationFailed, "chat completion failed", err)
	}

	if len(resp.Choices) == 0 {
		return nil, errors.NewGenerationError(
			errors.ErrCodeGenerationPayload,
			invalidResponse,
			fmt.Errorf("no choices in completion"),
		)
	}

	content := stripFences(resp.Choices[0].Message.Content)
	c.logger.Debug(ctx, "Completion received",
		"model", resp.Model,
		"total_tokens", resp.Usage.TotalTokens)

	return decodeResponse([]byte(content))
}

// SystemPrompt describes the output contract and the allowed components.
func SystemPrompt(vocabulary []string) string {
	var b strings.Builder
	b.WriteString("You generate user interfaces as JSX-like markup.\n")
	b.WriteString("Use only these components: ")
	b.WriteString(strings.Join(vocabulary, ", "))
	b.WriteString(".\nNever use HTML tags, scripts, event handlers or components outside that list.\n")
	b.WriteString("When current code is provided, modify it incrementally instead of starting over.\n")
	b.WriteString(`Reply with a JSON object: {"code": string, "blueprint": object, "explanation": string, "violations": [string]}.`)
	b.WriteString("\nList in violations any part of the request you refused for safety reasons.")

	return b.String()
}

func userMessage(req types.GenerateRequest) string {
	var b strings.Builder
	b.WriteString("Request: ")
	b.WriteString(req.Prompt)
	if req.CurrentCode != nil {
		b.WriteString("\n\nCurrent code:\n")
		b.WriteString(*req.CurrentCode)
	}
	if len(req.CurrentBlueprint) > 0 && string(req.CurrentBlueprint) != "null" {
		b.WriteString("\n\nCurrent blueprint:\n")
		b.Write(req.CurrentBlueprint)
	}

	return b.String()
}

// stripFences removes a surrounding ```json fence some models add despite
// the response format.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}

	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}
