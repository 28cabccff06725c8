package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/conneroisu/uiforge/internal/renderer"
)

var renderCmd = &cobra.Command{
	Use:   "render [file|-]",
	Short: "Render markup to HTML or Markdown",
	Long: `Render component markup without a generation backend. With no argument the
active version of the workspace is rendered; "-" reads from stdin.

Examples:
  uiforge render page.jsx
  echo '<Card title="Hi"/>' | uiforge render - --format markdown
  uiforge render --source --copy`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringP("format", "f", "html", "output format (html, markdown, json)")
	renderCmd.Flags().Bool("source", false, "print the source view instead of the preview")
	renderCmd.Flags().Bool("copy", false, "copy the source to the system clipboard")
	renderCmd.Flags().Bool("page", false, "wrap HTML output in a standalone page")
	renderCmd.Flags().Bool("no-sanitize", false, "skip HTML sanitization")
}

func readMarkup(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 {
		a, err := openApp(cmd.Context())
		if err != nil {
			return "", err
		}
		defer a.Close()
		return a.orch.Snapshot().CurrentCode(), nil
	}

	var data []byte
	var err error
	if args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return "", fmt.Errorf("read markup: %w", err)
	}

	return string(data), nil
}

func runRender(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	source, _ := cmd.Flags().GetBool("source")
	doCopy, _ := cmd.Flags().GetBool("copy")
	page, _ := cmd.Flags().GetBool("page")
	noSanitize, _ := cmd.Flags().GetBool("no-sanitize")

	code, err := readMarkup(cmd, args)
	if err != nil {
		return err
	}

	mode := renderer.ModePreview
	if source {
		mode = renderer.ModeSource
	}
	lr := renderer.New(
		renderer.WithMode(mode),
		renderer.WithSanitize(!noSanitize),
		renderer.WithClipboard(renderer.NewSystemClipboard()),
	)

	return renderTo(cmd, lr, code, format, page, doCopy)
}

func renderTo(cmd *cobra.Command, lr *renderer.LiveRenderer, code, format string, page, doCopy bool) error {
	out := cmd.OutOrStdout()

	if doCopy {
		if err := lr.Copy(code); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "Copied!")
	}

	outcome := lr.Render(cmd.Context(), code)

	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(outcome)
	case "markdown", "md":
		if outcome.Mode == renderer.ModeSource {
			fmt.Fprintf(out, "```jsx\n%s\n```\n", outcome.Source)
			return nil
		}
		if outcome.Diagnostic != nil {
			return outcome.Diagnostic
		}
		md, err := renderer.ToMarkdown(outcome.HTML)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, md)
		return nil
	case "html":
		if outcome.Mode == renderer.ModeSource {
			fmt.Fprintln(out, outcome.Source)
			return nil
		}
		body := outcome.Body()
		if page {
			body = renderer.Page("Preview", body)
		}
		fmt.Fprintln(out, body)
		if outcome.Diagnostic != nil {
			return outcome.Diagnostic
		}
		return nil
	default:
		return fmt.Errorf("unsupported format: %s (supported: html, markdown, json)", format)
	}
}
