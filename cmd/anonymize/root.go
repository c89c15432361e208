package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/anonymize/pkg/anonymize/config"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "anonymize <manifest> <dir>",
		Short: "Redact a manifest and anonymize the files it names",
		Long: `Anonymize reads a Shift_JIS manifest, writes a redacted UTF-8 copy next to it,
then finds every file the manifest names under <dir> and replaces its content
with its SHA-256 digest. A copy of each digest is written to ./anonymized-data.

Column 0 of each manifest row names a file. Column 2, when present, is
replaced by its SHA-256 hex digest, and columns after it are dropped.

Examples:
  anonymize list.csv /data             # Redact and anonymize, TUI on a terminal
  anonymize -o plain list.csv /data    # One status line per file
  anonymize redact list.csv            # Only write list_anonymized.csv
  anonymize run /data a.mwf b.mwf      # Anonymize named files
  anonymize history                    # Past operations`,
		Args:              cobra.ExactArgs(2),
		PersistentPreRunE: initializeLogging,
		PersistentPostRun: func(*cobra.Command, []string) { closeLogging() },
		RunE:              runAnonymize,
		SilenceUsage:      true,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ~/.config/anonymize/config.yaml)")
	flags.StringP("output", "o", "", "output format: pretty, plain, json, jsonl, yaml, csv, tsv, markdown, paths")
	flags.StringSliceP("exclude", "e", nil, "search patterns to skip (can be specified multiple times)")
	flags.String("copy-dir", "", "directory receiving a copy of each digest (default: anonymized-data)")
	flags.BoolP("no-interactive", "n", false, "disable TUI, use formatted output")
	flags.Bool("no-history", false, "do not record this operation in the history")
	flags.Bool("no-ledger", false, "do not record anonymized files in the ledger")
	flags.BoolP("quiet", "q", false, "minimal output")
	flags.BoolP("verbose", "v", false, "debug output on stderr")

	for key, flag := range map[string]string{
		"output":         "output",
		"exclude":        "exclude",
		"copy_dir":       "copy-dir",
		"no_interactive": "no-interactive",
		"no_history":     "no-history",
		"no_ledger":      "no-ledger",
		"quiet":          "quiet",
		"verbose":        "verbose",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}
}

// initConfig reads in config file and environment variables.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")

		if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
			viper.AddConfigPath(filepath.Join(xdgConfigHome, "anonymize"))
		}
		if homeDir, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(homeDir, ".config", "anonymize"))
		}
	}

	viper.SetEnvPrefix("ANONYMIZE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	setDefaults()

	_ = viper.ReadInConfig()
}

func setDefaults() {
	viper.SetDefault("output", config.DefaultOutput)
	viper.SetDefault("exclude", config.DefaultExclusions)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func getVerbose() bool { return viper.GetBool("verbose") }

func getQuiet() bool { return viper.GetBool("quiet") }

// printInfo prints to stderr unless quiet mode is enabled. Stdout is kept
// for formatted output.
func printInfo(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
