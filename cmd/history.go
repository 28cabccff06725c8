package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/conneroisu/uiforge/internal/errors"
	"github.com/conneroisu/uiforge/internal/orchestrator"
)

var roleTitle = cases.Title(language.English)

var historyCmd = &cobra.Command{
	Use:     "history",
	Aliases: []string{"log"},
	Short:   "List versions and chat messages",
	Long: `List every generated version, oldest first, marking the active one.
With --chat the full conversation is printed instead.

Examples:
  uiforge history
  uiforge history --chat
  uiforge history --format json`,
	RunE: runHistory,
}

var rollbackCmd = &cobra.Command{
	Use:   "rollback <version>",
	Short: "Make an earlier version active",
	Long: `Make version <version> (as numbered by "uiforge history", starting at 1)
the active one. Later versions are kept.`,
	Args: cobra.ExactArgs(1),
	RunE: runRollback,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all versions and chat messages",
	RunE:  runClear,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(rollbackCmd)
	rootCmd.AddCommand(clearCmd)

	historyCmd.Flags().Bool("chat", false, "print the chat timeline")
	historyCmd.Flags().StringP("format", "f", "text", "output format (text, json)")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	chat, _ := cmd.Flags().GetBool("chat")
	format, _ := cmd.Flags().GetString("format")

	return printHistory(cmd.OutOrStdout(), a.orch.Snapshot(), chat, format)
}

func printHistory(w io.Writer, st orchestrator.State, chat bool, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	case "text":
	default:
		return fmt.Errorf("unsupported format: %s (supported: text, json)", format)
	}

	if chat {
		if len(st.Messages) == 0 {
			fmt.Fprintln(w, "No messages yet.")
			return nil
		}
		for _, m := range st.Messages {
			fmt.Fprintf(w, "%s  %-9s %s\n", m.CreatedAt.Local().Format("15:04:05"),
				roleTitle.String(string(m.Role)), m.Content)
		}
		return nil
	}

	if len(st.Versions) == 0 {
		fmt.Fprintln(w, "No versions yet. Try: uiforge submit \"a login form\"")
		return nil
	}
	fmt.Fprintf(w, "Versions (%d)\n", len(st.Versions))
	for i, v := range st.Versions {
		label := fmt.Sprintf("v%d", i+1)
		if i == st.CurrentIndex {
			label += " [active]"
		}
		fmt.Fprintf(w, "%s %s\n", label, truncate(v.SourcePrompt, 60))
	}

	return nil
}

func runRollback(cmd *cobra.Command, args []string) error {
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid version %q: expected a number", args[0])
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.orch.Rollback(cmd.Context(), n-1); err != nil {
		if errors.IsIndexOutOfRange(err) {
			return fmt.Errorf("no version %d (have %d)", n, len(a.orch.Snapshot().Versions))
		}
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Rolled back to v%d\n", n)

	return nil
}

func runClear(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	a.orch.ClearAll(cmd.Context())
	fmt.Fprintln(cmd.OutOrStdout(), "History cleared")

	return nil
}
