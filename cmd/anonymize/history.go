package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/anonymize/pkg/anonymize/config"
	"github.com/jamesainslie/anonymize/pkg/anonymize/history"
	"github.com/jamesainslie/anonymize/pkg/anonymize/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View operation history",
	Long: `View past redact and run operations.

Each operation is stored as a JSON file in the history directory
(default: ~/.config/anonymize/.history).`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show details of an operation",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove entries older than the retention period",
	Args:  cobra.NoArgs,
	RunE:  runHistoryClean,
}

var historyLimit int

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "maximum number of entries to show (0 for all)")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyCleanCmd)
	rootCmd.AddCommand(historyCmd)
}

func openHistory() (*history.History, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	h, err := history.New(cfg.History.Path)
	if err != nil {
		return nil, nil, err
	}
	return h, cfg, nil
}

func runHistory(cmd *cobra.Command, _ []string) error {
	h, _, err := openHistory()
	if err != nil {
		return err
	}

	entries, err := h.List(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, "No history entries found.")
		return nil
	}

	writeHistoryTable(out, entries)
	printInfo("Use 'anonymize history show <id>' for details.")
	return nil
}

func writeHistoryTable(w io.Writer, entries []history.Entry) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tWHEN\tFILES\tPROCESSED\tNOT FOUND\tFAILED")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\n",
			e.ID,
			e.Timestamp.Local().Format("2006-01-02 15:04"),
			e.Summary.Total,
			e.Summary.Processed,
			e.Summary.NotFound,
			e.Summary.Failed)
	}
	_ = tw.Flush()
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	h, _, err := openHistory()
	if err != nil {
		return err
	}

	entry, err := h.Get(args[0])
	if err != nil {
		return err
	}

	writeHistoryEntry(cmd.OutOrStdout(), entry)
	return nil
}

func writeHistoryEntry(w io.Writer, e *history.Entry) {
	fmt.Fprintf(w, "ID:         %s\n", e.ID)
	fmt.Fprintf(w, "Timestamp:  %s\n", e.Timestamp.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(w, "Operation:  %s\n", e.Operation)
	if e.Manifest != "" {
		fmt.Fprintf(w, "Manifest:   %s\n", e.Manifest)
	}
	if e.Redacted != "" {
		fmt.Fprintf(w, "Redacted:   %s\n", e.Redacted)
	}
	if e.Root != "" {
		fmt.Fprintf(w, "Root:       %s\n", e.Root)
	}
	fmt.Fprintf(w, "Files:      %d\n", e.Summary.Total)

	if len(e.Files) == 0 {
		return
	}

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STATUS\tSIZE\tFILE")
	for _, f := range e.Files {
		target := f.Filename
		if f.Path != "" {
			target = f.Path
		}
		if f.Detail != "" {
			target += " (" + f.Detail + ")"
		}
		size := ""
		if f.Size > 0 {
			size = types.FormatSize(f.Size)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", f.Status, size, strings.TrimSpace(target))
	}
	_ = tw.Flush()
}

func runHistoryClean(cmd *cobra.Command, _ []string) error {
	h, cfg, err := openHistory()
	if err != nil {
		return err
	}

	days := cfg.History.RetentionDays
	if days <= 0 {
		days = config.DefaultRetentionDays
	}

	removed, err := h.Cleanup(days)
	if err != nil {
		return fmt.Errorf("failed to clean history: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries older than %d days.\n", removed, days)
	return nil
}
