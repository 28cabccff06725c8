package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/conneroisu/uiforge/internal/errors"
	"github.com/conneroisu/uiforge/internal/logging"
	"github.com/conneroisu/uiforge/internal/types"
)

const (
	generatePath   = "/api/generate"
	maxErrorBody   = 64 << 10
	maxSuccessBody = 8 << 20
)

// HTTPClient posts requests to {baseURL}/api/generate.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	logger  logging.Logger
}

// HTTPOption configures an HTTPClient.
type HTTPOption func(*HTTPClient)

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) HTTPOption {
	return func(c *HTTPClient) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) HTTPOption {
	return func(c *HTTPClient) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) HTTPOption {
	return func(c *HTTPClient) {
		if l != nil {
			c.logger = l.WithComponent("generator")
		}
	}
}

// NewHTTPClient returns a client for the service at baseURL.
func NewHTTPClient(baseURL string, opts ...HTTPOption) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Generate sends the request. Non-success statuses become generation errors
// whose message is the body's "error" field, "Server error: <status>" when
// the field is absent, or "Unknown error" when the body is not JSON.
func (c *HTTPClient) Generate(ctx context.Context, req types.GenerateRequest) (*types.GenerateResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, errors.NewInternalError(errors.ErrCodeInternalError, "encode generate request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+generatePath, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.NewNetworkError(errors.ErrCodeGenerationFailed, "build generate request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	c.logger.Debug(ctx, "Calling generation service",
		"url", c.baseURL+generatePath,
		"prompt", logging.SanitizeForLog(req.Prompt))

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, errors.NewNetworkError(errors.ErrCodeGenerationFailed, "generation service unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSuccessBody))
	if err != nil {
		return nil, errors.NewNetworkError(errors.ErrCodeGenerationFailed, "read generate response", err)
	}

	return decodeResponse(body)
}

func statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	msg := fmt.Sprintf("Server error: %d", resp.StatusCode)
	var body interface{}
	if err := json.Unmarshal(raw, &body); err != nil {
		msg = "Unknown error"
	} else if obj, ok := body.(map[string]interface{}); ok {
		if s, ok := obj["error"].(string); ok && s != "" {
			msg = s
		}
	}

	return errors.NewGenerationError(errors.ErrCodeGenerationStatus, msg, nil).
		WithContext("status", resp.StatusCode)
}
