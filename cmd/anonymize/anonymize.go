package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// runAnonymize redacts the manifest then anonymizes every file it names.
func runAnonymize(cmd *cobra.Command, args []string) error {
	manifestPath, root := args[0], args[1]

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	res, redactErr := s.redact(manifestPath)
	if res == nil {
		return fmt.Errorf("redacting manifest: %w", redactErr)
	}

	redacted := ""
	if redactErr == nil {
		redacted = res.OutputPath
	}

	useTUI := interactive()
	report, err := s.execute(res.Source, redacted, root, res.Filenames)
	if err != nil {
		return err
	}

	return s.finish(cmd.OutOrStdout(), report, res, redactErr == nil, useTUI)
}
