package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conneroisu/uiforge/internal/orchestrator"
)

var submitCmd = &cobra.Command{
	Use:   "submit <prompt>",
	Short: "Generate a new version from a prompt",
	Long: `Send a prompt to the generation backend. The active version's code is
sent along as context so follow-up prompts refine the current design.

Examples:
  uiforge submit "A pricing table with three tiers"
  uiforge submit "make the primary button red"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSubmit,
}

func init() {
	rootCmd.AddCommand(submitCmd)
	submitCmd.Flags().Bool("code", false, "print the generated code on success")
}

func runSubmit(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	showCode, _ := cmd.Flags().GetBool("code")

	return submitPrompt(cmd, a.orch, strings.Join(args, " "), showCode)
}

func submitPrompt(cmd *cobra.Command, orch *orchestrator.Orchestrator, prompt string, showCode bool) error {
	out := cmd.OutOrStdout()
	res := orch.Submit(cmd.Context(), prompt)

	switch res.Status {
	case orchestrator.StatusRejectedEmpty:
		return fmt.Errorf("prompt is empty")
	case orchestrator.StatusRejectedBusy:
		return fmt.Errorf("a generation is already in progress")
	case orchestrator.StatusFailed:
		return fmt.Errorf("generation failed: %s", res.Message)
	case orchestrator.StatusDiscarded:
		fmt.Fprintln(out, "History was cleared while generating; response discarded.")
		return nil
	}

	st := orch.Snapshot()
	fmt.Fprintf(out, "✓ Created v%d\n", st.CurrentIndex+1)
	if res.Version != nil && res.Version.Explanation != "" {
		fmt.Fprintln(out, res.Version.Explanation)
	}
	for _, v := range res.Violations {
		fmt.Fprintf(out, "⚠️  %s\n", v)
	}
	if showCode && res.Version != nil {
		fmt.Fprintln(out)
		fmt.Fprintln(out, res.Version.Code)
	}

	return nil
}
