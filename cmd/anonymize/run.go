package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/anonymize/pkg/anonymize/manifest"
)

var runFrom string

var runCmd = &cobra.Command{
	Use:   "run <dir> [filename...]",
	Short: "Anonymize named files without redacting a manifest",
	Long: `Run finds each named file under <dir> and replaces its content with its
SHA-256 digest, writing a copy of the digest to ./anonymized-data.

Filenames are taken from the arguments or, with --from, from column 0 of a
manifest. --from reads the manifest but does not write a redacted copy.`,
	Example: `  anonymize run /data a.mwf b.mwf
  anonymize run /data --from list.csv -o plain`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runFrom, "from", "f", "", "take filenames from a manifest")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	root, filenames := args[0], args[1:]

	var src *manifest.Result
	if runFrom != "" {
		res, err := manifest.Preview(runFrom)
		if err != nil {
			return err
		}
		src = res
		filenames = append(filenames, res.Filenames...)
	}

	if len(filenames) == 0 {
		return errors.New("no filenames given: pass names after <dir> or use --from")
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	useTUI := interactive()
	report, err := s.execute(runFrom, "", root, filenames)
	if err != nil {
		return err
	}

	return s.finish(cmd.OutOrStdout(), report, src, false, useTUI)
}
