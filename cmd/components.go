package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/conneroisu/uiforge/internal/errors"
	"github.com/conneroisu/uiforge/internal/registry"
	"github.com/conneroisu/uiforge/internal/server"
)

var componentsCmd = &cobra.Command{
	Use:     "components [name]",
	Aliases: []string{"list", "ls"},
	Short:   "Show the component catalog",
	Long: `List the components generated markup may use, with their props.

Examples:
  uiforge components
  uiforge components Grid
  uiforge components --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runComponents,
}

func init() {
	rootCmd.AddCommand(componentsCmd)
	componentsCmd.Flags().StringP("format", "f", "table", "output format (table, json)")
}

func runComponents(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	infos := server.DescribeComponents(registry.Default())
	if len(args) == 1 {
		var found []server.ComponentInfo
		for _, c := range infos {
			if c.Name == args[0] {
				found = append(found, c)
			}
		}
		if len(found) == 0 {
			return errors.ErrComponentNotFound(args[0])
		}
		infos = found
	}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	case "table":
		return printComponentTable(out, infos)
	default:
		return fmt.Errorf("unsupported format: %s (supported: table, json)", format)
	}
}

func printComponentTable(w io.Writer, infos []server.ComponentInfo) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCHILDREN\tPROPS\tDESCRIPTION")
	for _, c := range infos {
		children := "no"
		if c.AcceptsChildren {
			children = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Name, children, describeProps(c.Props), c.Description)
	}

	return tw.Flush()
}

func describeProps(props []server.PropInfo) string {
	if len(props) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(props))
	for _, p := range props {
		switch {
		case len(p.Values) > 0:
			parts = append(parts, fmt.Sprintf("%s=%s", p.Name, strings.Join(p.Values, "|")))
		case p.Min != nil && p.Max != nil:
			parts = append(parts, fmt.Sprintf("%s:%s[%d-%d]", p.Name, p.Type, *p.Min, *p.Max))
		default:
			parts = append(parts, p.Name+":"+p.Type)
		}
	}

	return strings.Join(parts, " ")
}
