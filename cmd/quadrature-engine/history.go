// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/quadrature-engine/internal/history"
	"github.com/pdiddy/quadrature-engine/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect journaled analyses (list, show, export)",
	Long: `History reads the SQLite journal written by "serve --record" and
"analyze --record". Use subcommands to list entries, show one in full, or
export them.`,
}

// --- list subcommand ---

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent analyses, newest first",
	RunE:  runHistoryList,
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := history.NewStore(loadConfig().History)
	if err != nil {
		return err
	}
	defer store.Close()

	filter, err := filterFromFlags(cmd)
	if err != nil {
		return err
	}
	entries, err := store.List(context.Background(), filter)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatHistoryList(cmd.OutOrStdout(), entries, jsonOutput)
}

func formatHistoryList(w io.Writer, entries []types.HistoryEntry, jsonOutput bool) error {
	if jsonOutput {
		if entries == nil {
			entries = []types.HistoryEntry{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(w, "No analyses recorded.")
		return nil
	}

	fmt.Fprintf(w, "%-36s  %-20s  %-24s  %-6s  %s\n", "ID", "Recorded", "Function", "n", "Best method")
	fmt.Fprintln(w, strings.Repeat("-", 110))
	for _, e := range entries {
		fn := e.Function
		if len(fn) > 24 {
			fn = fn[:21] + "..."
		}
		best := e.BestMethod
		if best == "" {
			best = "-"
		}
		fmt.Fprintf(w, "%-36s  %-20s  %-24s  %-6d  %s\n",
			e.ID, e.CreatedAt.Format("2006-01-02 15:04:05"), fn, e.N, best)
	}
	fmt.Fprintf(w, "\n%d entries\n", len(entries))
	return nil
}

// --- show subcommand ---

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one journaled analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := history.NewStore(loadConfig().History)
		if err != nil {
			return err
		}
		defer store.Close()

		e, err := store.Get(context.Background(), args[0])
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(e)
	},
}

// --- export subcommand ---

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the journal to YAML or JSON",
	Long: `Export writes the journal (or a filtered subset) to export.yaml or
export.json in the history directory.`,
	RunE: runHistoryExport,
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	store, err := history.NewStore(loadConfig().History)
	if err != nil {
		return err
	}
	defer store.Close()

	filter, err := filterFromFlags(cmd)
	if err != nil {
		return err
	}

	var path string
	switch format {
	case "yaml", "":
		path, err = store.ExportYAML(context.Background(), filter)
	case "json":
		path, err = store.ExportJSON(context.Background(), filter)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
	return nil
}

// --- shared helpers ---

func filterFromFlags(cmd *cobra.Command) (history.Filter, error) {
	fn, _ := cmd.Flags().GetString("function")
	best, _ := cmd.Flags().GetString("best")
	limit, _ := cmd.Flags().GetInt("limit")
	since, _ := cmd.Flags().GetString("since")

	f := history.Filter{Function: fn, BestMethod: best, Limit: limit}
	if since != "" {
		t, err := time.Parse("2006-01-02", since)
		if err != nil {
			return f, fmt.Errorf("invalid --since %q: want YYYY-MM-DD", since)
		}
		f.Since = t
	}
	return f, nil
}

func init() {
	for _, c := range []*cobra.Command{historyListCmd, historyExportCmd} {
		c.Flags().String("function", "", "filter by substring of the function")
		c.Flags().String("best", "", "filter by winning method, e.g. \"Simpson 1/3\"")
		c.Flags().String("since", "", "only entries recorded on or after this date (YYYY-MM-DD)")
	}
	historyListCmd.Flags().Int("limit", 0, "maximum entries (0 = use history.max_results)")
	historyListCmd.Flags().Bool("json", false, "output entries as JSON")
	historyExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyExportCmd)

	rootCmd.AddCommand(historyCmd)
}
