package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/anonymize/pkg/anonymize/manifest"
)

var redactPreview bool

var redactCmd = &cobra.Command{
	Use:   "redact <manifest>",
	Short: "Write the redacted manifest only",
	Long: `Redact reads a Shift_JIS manifest and writes <name>_anonymized<ext> next to it,
encoded as UTF-8, with column 2 replaced by its SHA-256 hex digest and every
column after it dropped. The filenames from column 0 are printed one per line.

With --preview the redacted manifest is printed instead and nothing is written.`,
	Args: cobra.ExactArgs(1),
	RunE: runRedact,
}

func init() {
	redactCmd.Flags().BoolVarP(&redactPreview, "preview", "p", false, "print the redacted manifest without writing it")
	rootCmd.AddCommand(redactCmd)
}

func runRedact(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if redactPreview {
		res, err := manifest.Preview(args[0])
		if err != nil {
			return err
		}
		return manifest.Encode(out, res.Rows)
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := s.redact(args[0])
	if res == nil {
		return err
	}

	for _, name := range res.Filenames {
		fmt.Fprintln(out, name)
	}

	if err != nil {
		return err
	}

	printInfo("redacted manifest written: %s (%d rows)", res.OutputPath, len(res.Rows))
	if res.Dropped > 0 {
		printInfo("skipped %d empty rows", res.Dropped)
	}
	return nil
}
