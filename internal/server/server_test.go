package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/uiforge/internal/config"
	"github.com/conneroisu/uiforge/internal/generator"
	"github.com/conneroisu/uiforge/internal/logging"
	"github.com/conneroisu/uiforge/internal/orchestrator"
	"github.com/conneroisu/uiforge/internal/renderer"
	"github.com/conneroisu/uiforge/internal/types"
)

func newTestServer(t *testing.T, client generator.Client) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Server.RateLimit = 0

	orch := orchestrator.New(client)
	lr := renderer.New(renderer.WithClipboard(&renderer.MemoryClipboard{}))
	s := New(cfg, orch, lr, nil)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
	})

	return s
}

func cardClient() generator.Client {
	return generator.ClientFunc(func(_ context.Context, req types.GenerateRequest) (*types.GenerateResponse, error) {
		return &types.GenerateResponse{
			Code:        `<Card title="` + req.Prompt + `"><Button>Go</Button></Card>`,
			Explanation: "Built a card",
		}, nil
	})
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestSubmitAndState(t *testing.T) {
	s := newTestServer(t, cardClient())

	rec := do(t, s, http.MethodPost, "/api/submit", `{"prompt": "Login"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var result orchestrator.SubmitResult
	decode(t, rec, &result)
	assert.Equal(t, orchestrator.StatusCommitted, result.Status)

	rec = do(t, s, http.MethodGet, "/api/state", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var st StateResponse
	decode(t, rec, &st)
	assert.Len(t, st.Messages, 2)
	assert.Len(t, st.Versions, 1)
	assert.Equal(t, 0, st.CurrentIndex)
	assert.Equal(t, renderer.ModePreview, st.Mode)
	assert.False(t, st.Loading)
}

func TestSubmitStatusCodes(t *testing.T) {
	s := newTestServer(t, generator.ClientFunc(func(context.Context, types.GenerateRequest) (*types.GenerateResponse, error) {
		return nil, errors.New("connection refused")
	}))

	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPost, "/api/submit", `{"prompt": "   "}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPost, "/api/submit", `not json`).Code)

	rec := do(t, s, http.MethodPost, "/api/submit", `{"prompt": "x"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	var result orchestrator.SubmitResult
	decode(t, rec, &result)
	assert.Equal(t, orchestrator.StatusFailed, result.Status)
	assert.Equal(t, "Something went wrong. Is the backend running?", result.Message)
}

func TestRollbackAndClear(t *testing.T) {
	s := newTestServer(t, cardClient())
	do(t, s, http.MethodPost, "/api/submit", `{"prompt": "one"}`)
	do(t, s, http.MethodPost, "/api/submit", `{"prompt": "two"}`)

	rec := do(t, s, http.MethodPost, "/api/rollback", `{"index": 0}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var st StateResponse
	decode(t, rec, &st)
	assert.Equal(t, 0, st.CurrentIndex)

	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPost, "/api/rollback", `{"index": 7}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPost, "/api/rollback", `{}`).Code)

	rec = do(t, s, http.MethodPost, "/api/clear", "")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &st)
	assert.Empty(t, st.Versions)
	assert.Empty(t, st.Messages)
	assert.Equal(t, -1, st.CurrentIndex)
}

func TestViewAndCopy(t *testing.T) {
	s := newTestServer(t, cardClient())
	do(t, s, http.MethodPost, "/api/submit", `{"prompt": "Hi"}`)

	rec := do(t, s, http.MethodPost, "/api/view", `{"mode": "source"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var st StateResponse
	decode(t, rec, &st)
	assert.Equal(t, renderer.ModeSource, st.Mode)

	rec = do(t, s, http.MethodPost, "/api/view", "")
	decode(t, rec, &st)
	assert.Equal(t, renderer.ModePreview, st.Mode)

	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPost, "/api/view", `{"mode": "split"}`).Code)

	rec = do(t, s, http.MethodPost, "/api/copy", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var copied map[string]interface{}
	decode(t, rec, &copied)
	assert.Equal(t, `<Card title="Hi"><Button>Go</Button></Card>`, copied["code"])

	rec = do(t, s, http.MethodGet, "/api/state", "")
	decode(t, rec, &st)
	assert.True(t, st.Copied)
}

type brokenClipboard struct{}

func (brokenClipboard) WriteText(string) error { return errors.New("no display") }

func TestCopyFailureIsLogged(t *testing.T) {
	var logs bytes.Buffer
	logger := logging.NewLogger(&logging.LoggerConfig{Level: logging.LevelDebug, Format: "json", Output: &logs})

	cfg := config.Default()
	cfg.Server.RateLimit = 0
	s := New(cfg, orchestrator.New(cardClient()), renderer.New(renderer.WithClipboard(brokenClipboard{})), logger)
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })

	rec := do(t, s, http.MethodPost, "/api/copy", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var entry map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(logs.String()), "\n") {
		var e map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &e))
		if e["msg"] == "Copy failed" {
			entry = e
		}
	}
	require.NotNil(t, entry, logs.String())
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "io", entry["type"])
	assert.Equal(t, "ERR_INTERNAL", entry["code"])
	assert.Equal(t, "server", entry["component"])
	assert.Contains(t, entry["error"], "no display")
}

func TestRenderEndpoint(t *testing.T) {
	s := newTestServer(t, cardClient())

	rec := do(t, s, http.MethodGet, "/api/render", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var out renderer.Outcome
	decode(t, rec, &out)
	assert.True(t, out.Placeholder)

	do(t, s, http.MethodPost, "/api/submit", `{"prompt": "Team"}`)

	rec = do(t, s, http.MethodGet, "/api/render", "")
	decode(t, rec, &out)
	assert.False(t, out.Placeholder)
	assert.Contains(t, out.HTML, "Team")

	rec = do(t, s, http.MethodGet, "/api/render?format=markdown", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/markdown")
	assert.Contains(t, rec.Body.String(), "Team")
}

func TestComponentsEndpoint(t *testing.T) {
	s := newTestServer(t, cardClient())

	rec := do(t, s, http.MethodGet, "/api/components", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var comps []ComponentInfo
	decode(t, rec, &comps)
	require.Len(t, comps, 10)
	assert.Equal(t, "Navbar", comps[0].Name)

	var grid ComponentInfo
	for _, c := range comps {
		if c.Name == "Grid" {
			grid = c
		}
	}
	require.NotEmpty(t, grid.Props)
	for _, p := range grid.Props {
		if p.Name == "columns" {
			require.NotNil(t, p.Max)
			assert.Equal(t, 6, *p.Max)
		}
	}
}

func TestPages(t *testing.T) {
	s := newTestServer(t, cardClient())

	rec := do(t, s, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Start by describing a UI you'd like to build.")
	assert.Contains(t, body, `src="/preview"`)
	assert.NotContains(t, body, "Versions (")

	do(t, s, http.MethodPost, "/api/submit", `{"prompt": "one <b>"}`)
	do(t, s, http.MethodPost, "/api/submit", `{"prompt": "two"}`)

	body = do(t, s, http.MethodGet, "/", "").Body.String()
	assert.Contains(t, body, "Versions (2)")
	assert.Contains(t, body, "one &lt;b&gt;")
	assert.Contains(t, body, `data-index="0"`)
	assert.NotContains(t, body, `data-index="1"`)
	assert.Contains(t, body, `title="Assistant"`)
	assert.Equal(t, 1, strings.Count(body, ">Active</span>"))

	rec = do(t, s, http.MethodGet, "/preview", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<button")
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, cardClient())
	rec := do(t, s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var health map[string]interface{}
	decode(t, rec, &health)
	assert.Equal(t, "ok", health["status"])
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, cardClient())

	req := httptest.NewRequest(http.MethodOptions, "/api/submit", nil)
	req.Header.Set("Origin", "http://localhost:8080")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:8080", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/state", nil)
	req.Header.Set("Origin", "http://evil.test")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, nil)
	defer rl.Stop()
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Check("a").Allowed)
	assert.True(t, rl.Check("a").Allowed)
	res := rl.Check("a")
	assert.False(t, res.Allowed)
	assert.InDelta(t, 30, res.RetryAfter.Seconds(), 0.001)
	assert.True(t, rl.Check("b").Allowed)

	now = now.Add(30 * time.Second)
	assert.True(t, rl.Check("a").Allowed)

	off := NewRateLimiter(0, nil)
	for i := 0; i < 100; i++ {
		assert.True(t, off.Check("a").Allowed)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	cfg := config.Default()
	cfg.Server.RateLimit = 1
	s := New(cfg, orchestrator.New(cardClient()), renderer.New(), nil)
	defer func() { _ = s.Shutdown(context.Background()) }()

	assert.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/api/clear", "").Code)
	rec := do(t, s, http.MethodPost, "/api/clear", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// Reads are not limited.
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/api/state", "").Code)
}
