package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/uiforge/internal/config"
	uierrors "github.com/conneroisu/uiforge/internal/errors"
	"github.com/conneroisu/uiforge/internal/generator"
	"github.com/conneroisu/uiforge/internal/interpreter"
	"github.com/conneroisu/uiforge/internal/orchestrator"
	"github.com/conneroisu/uiforge/internal/renderer"
	"github.com/conneroisu/uiforge/internal/server"
	"github.com/conneroisu/uiforge/internal/types"
)

func testCommand() (*cobra.Command, *bytes.Buffer) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetContext(context.Background())

	return cmd, &out
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	return out.String(), err
}

func echoClient(violations ...string) generator.Client {
	return generator.ClientFunc(func(_ context.Context, req types.GenerateRequest) (*types.GenerateResponse, error) {
		return &types.GenerateResponse{
			Code:        `<Card title="` + req.Prompt + `"/>`,
			Explanation: "Made a card",
			Violations:  violations,
		}, nil
	})
}

func TestSubmitPrompt(t *testing.T) {
	cmd, out := testCommand()
	orch := orchestrator.New(echoClient("Removed a script tag."))

	require.NoError(t, submitPrompt(cmd, orch, "Pricing", true))
	text := out.String()
	assert.Contains(t, text, "✓ Created v1")
	assert.Contains(t, text, "Made a card")
	assert.Contains(t, text, "Removed a script tag.")
	assert.Contains(t, text, `<Card title="Pricing"/>`)

	assert.EqualError(t, submitPrompt(cmd, orch, "  ", false), "prompt is empty")
}

func TestSubmitPromptFailure(t *testing.T) {
	cmd, _ := testCommand()
	orch := orchestrator.New(generator.ClientFunc(func(context.Context, types.GenerateRequest) (*types.GenerateResponse, error) {
		return nil, errors.New("dial tcp: connection refused")
	}))

	err := submitPrompt(cmd, orch, "anything", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Is the backend running?")
	assert.Empty(t, orch.Snapshot().Versions)
}

func TestPrintHistory(t *testing.T) {
	orch := orchestrator.New(echoClient())
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, printHistory(&out, orch.Snapshot(), false, "text"))
	assert.Contains(t, out.String(), "No versions yet.")

	orch.Submit(ctx, "first")
	orch.Submit(ctx, "second")
	require.NoError(t, orch.Rollback(ctx, 0))

	out.Reset()
	require.NoError(t, printHistory(&out, orch.Snapshot(), false, "text"))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Versions (2)", lines[0])
	assert.Equal(t, "v1 [active] first", lines[1])
	assert.Equal(t, "v2 second", lines[2])

	out.Reset()
	require.NoError(t, printHistory(&out, orch.Snapshot(), true, "text"))
	assert.Contains(t, out.String(), "User")
	assert.Contains(t, out.String(), "Assistant")
	assert.Contains(t, out.String(), `Rolled back to version 1: "first"`)

	out.Reset()
	require.NoError(t, printHistory(&out, orch.Snapshot(), false, "json"))
	var st orchestrator.State
	require.NoError(t, json.Unmarshal(out.Bytes(), &st))
	assert.Equal(t, 0, st.CurrentIndex)
	assert.Len(t, st.Versions, 2)

	assert.Error(t, printHistory(&out, orch.Snapshot(), false, "xml"))
}

func TestRenderTo(t *testing.T) {
	code := `<Card title="Hello"><Button>Go</Button></Card>`

	tests := []struct {
		name     string
		mode     renderer.Mode
		format   string
		page     bool
		contains []string
	}{
		{name: "html", mode: renderer.ModePreview, format: "html", contains: []string{"Hello", "<button"}},
		{name: "page", mode: renderer.ModePreview, format: "html", page: true, contains: []string{"<!DOCTYPE html>", "Hello"}},
		{name: "markdown", mode: renderer.ModePreview, format: "markdown", contains: []string{"Hello", "Go"}},
		{name: "source", mode: renderer.ModeSource, format: "html", contains: []string{code}},
		{name: "source markdown", mode: renderer.ModeSource, format: "md", contains: []string{"```jsx", code}},
		{name: "json", mode: renderer.ModePreview, format: "json", contains: []string{`"mode": "preview"`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, out := testCommand()
			lr := renderer.New(renderer.WithMode(tt.mode))
			require.NoError(t, renderTo(cmd, lr, code, tt.format, tt.page, false))
			for _, s := range tt.contains {
				assert.Contains(t, out.String(), s)
			}
		})
	}
}

func TestRenderToDiagnostic(t *testing.T) {
	cmd, out := testCommand()
	err := renderTo(cmd, renderer.New(), `<Carousel/>`, "html", false, false)
	require.Error(t, err)

	var diag *interpreter.Diagnostic
	require.True(t, errors.As(err, &diag))
	assert.Equal(t, interpreter.UnknownComponent, diag.Kind)
	assert.NotEmpty(t, out.String())

	assert.Error(t, renderTo(cmd, renderer.New(), `<Carousel/>`, "markdown", false, false))
	assert.Error(t, renderTo(cmd, renderer.New(), `<Card/>`, "pdf", false, false))
}

func TestRenderToCopy(t *testing.T) {
	cmd, _ := testCommand()
	clip := &renderer.MemoryClipboard{}
	lr := renderer.New(renderer.WithClipboard(clip), renderer.WithMode(renderer.ModeSource))

	require.NoError(t, renderTo(cmd, lr, `<Badge>New</Badge>`, "html", false, true))
	assert.Equal(t, `<Badge>New</Badge>`, clip.Text())
	assert.True(t, lr.Copied())
}

func TestDescribeProps(t *testing.T) {
	lo, hi := 1, 6
	got := describeProps([]server.PropInfo{
		{Name: "columns", Type: "int", Min: &lo, Max: &hi},
		{Name: "variant", Type: "enum", Values: []string{"primary", "secondary"}},
		{Name: "title", Type: "string"},
	})
	assert.Equal(t, "columns:int[1-6] variant=primary|secondary title:string", got)
	assert.Equal(t, "-", describeProps(nil))
}

func TestComponentsCommand(t *testing.T) {
	out, err := runRoot(t, "components", "--format", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "Navbar")
	assert.Contains(t, out, "Grid")

	out, err = runRoot(t, "components", "Grid", "--format", "json")
	require.NoError(t, err)
	var infos []server.ComponentInfo
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	require.Len(t, infos, 1)
	assert.Equal(t, "Grid", infos[0].Name)

	_, err = runRoot(t, "components", "Carousel", "--format", "table")
	require.Error(t, err)
	assert.True(t, errors.Is(err, uierrors.ErrComponentNotFound("")))
	assert.Contains(t, err.Error(), "component not found: Carousel")
}

func TestVersionCommand(t *testing.T) {
	out, err := runRoot(t, "version", "--format", "text")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "uiforge "), out)

	out, err = runRoot(t, "version", "--format", "json")
	require.NoError(t, err)
	var info map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Contains(t, info, "version")
	assert.Contains(t, info, "go_version")

	versionFormat = "text"
}

func TestShowConfigMasksSecrets(t *testing.T) {
	cfg := config.Default()
	cfg.Generator.APIKey = "sk-secret-value-1234"
	cfg.Storage.Redis.Password = "hunter2hunter2"

	var out bytes.Buffer
	require.NoError(t, showConfig(&out, cfg, "yaml"))
	text := out.String()
	assert.NotContains(t, text, "sk-secret-value-1234")
	assert.Contains(t, text, "****1234")
	assert.NotContains(t, text, "hunter2hunter2")
	assert.Contains(t, text, "provider: http")
	assert.Equal(t, "sk-secret-value-1234", cfg.Generator.APIKey)

	out.Reset()
	require.NoError(t, showConfig(&out, cfg, "json"))
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))

	assert.Error(t, showConfig(&out, cfg, "toml"))
}

func TestValidateConfigFile(t *testing.T) {
	dir := t.TempDir()

	valid := filepath.Join(dir, "valid.yml")
	require.NoError(t, os.WriteFile(valid, []byte("server:\n  port: 9000\nstorage:\n  driver: memory\n"), 0o600))
	cfg, err := loadConfigFile(valid)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, config.DefaultHost, cfg.Server.Host)

	var out bytes.Buffer
	require.NoError(t, reportValidation(&out, valid, config.ValidateConfigWithDetails(cfg), false))
	assert.Contains(t, out.String(), "valid")

	invalid := filepath.Join(dir, "invalid.yml")
	require.NoError(t, os.WriteFile(invalid, []byte("server:\n  port: 70000\nstorage:\n  driver: mongo\n"), 0o600))
	cfg, err = loadConfigFile(invalid)
	require.NoError(t, err)

	out.Reset()
	err = reportValidation(&out, invalid, config.ValidateConfigWithDetails(cfg), false)
	require.Error(t, err)
	assert.Contains(t, out.String(), "server.port")
	assert.True(t, uierrors.IsType(err, uierrors.ErrorTypeValidation))

	_, err = loadConfigFile(filepath.Join(dir, "missing.yml"))
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "a b c", truncate("a\n  b\tc", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}

func TestSubmitTimeoutFromConfig(t *testing.T) {
	cmd, _ := testCommand()
	orch := orchestrator.New(generator.ClientFunc(func(ctx context.Context, _ types.GenerateRequest) (*types.GenerateResponse, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}), orchestrator.WithTimeout(20*time.Millisecond))

	err := submitPrompt(cmd, orch, "slow", false)
	require.Error(t, err)
	assert.Equal(t, orchestrator.PhaseIdle, orch.Snapshot().Phase)
}
