package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/anonymize/pkg/anonymize/config"
	"github.com/jamesainslie/anonymize/pkg/anonymize/ledger"
	"github.com/jamesainslie/anonymize/pkg/anonymize/types"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect the record of anonymized files",
	Long: `The ledger records every file anonymized, keyed by absolute path, with the
digest written and how many times the file has been processed. A count above
one means the file now holds a digest of a digest.`,
}

var ledgerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded files",
	Args:  cobra.NoArgs,
	RunE:  runLedgerList,
}

var ledgerShowCmd = &cobra.Command{
	Use:   "show <path>",
	Short: "Show the record for a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runLedgerShow,
}

var ledgerForgetCmd = &cobra.Command{
	Use:   "forget <path>",
	Short: "Remove a file's record (with --under, every record below a directory)",
	Args:  cobra.ExactArgs(1),
	RunE:  runLedgerForget,
}

var ledgerForgetUnder bool

func init() {
	ledgerForgetCmd.Flags().BoolVar(&ledgerForgetUnder, "under", false, "treat <path> as a directory and forget everything below it")

	ledgerCmd.AddCommand(ledgerListCmd, ledgerShowCmd, ledgerForgetCmd)
	rootCmd.AddCommand(ledgerCmd)
}

func withLedger(fn func(*ledger.Ledger) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := ledger.Open(cfg.Ledger.Path)
	if err != nil {
		return err
	}
	defer l.Close()

	return fn(l)
}

func runLedgerList(cmd *cobra.Command, _ []string) error {
	return withLedger(func(l *ledger.Ledger) error {
		records, err := l.List()
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No files recorded.")
			return nil
		}
		writeLedgerTable(cmd.OutOrStdout(), records)
		return nil
	})
}

func writeLedgerTable(w io.Writer, records []ledger.Record) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "COUNT\tLAST\tORIGINAL\tPATH")
	for _, r := range records {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n",
			r.Count,
			r.AnonymizedAt.Local().Format("2006-01-02 15:04"),
			types.FormatSize(r.OriginalSize),
			r.Path)
	}
	_ = tw.Flush()
}

func runLedgerShow(cmd *cobra.Command, args []string) error {
	return withLedger(func(l *ledger.Ledger) error {
		r, err := l.Get(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Path:       %s\n", r.Path)
		fmt.Fprintf(out, "Digest:     %s\n", r.Digest)
		fmt.Fprintf(out, "Original:   %s\n", types.FormatSize(r.OriginalSize))
		fmt.Fprintf(out, "Count:      %d\n", r.Count)
		fmt.Fprintf(out, "Last run:   %s\n", r.RunID)
		fmt.Fprintf(out, "Last time:  %s\n", r.AnonymizedAt.Local().Format("2006-01-02 15:04:05 MST"))
		return nil
	})
}

func runLedgerForget(cmd *cobra.Command, args []string) error {
	return withLedger(func(l *ledger.Ledger) error {
		if ledgerForgetUnder {
			n, err := l.ForgetUnder(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Forgot %d records.\n", n)
			return nil
		}
		if err := l.Forget(args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Forgot 1 record.")
		return nil
	})
}
