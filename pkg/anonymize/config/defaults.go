// Package config provides configuration management for the anonymize CLI.
package config

// Default configuration values.
const (
	// DefaultOutput is the formatter used when none is requested.
	DefaultOutput = "pretty"

	// DefaultRetentionDays is how long history entries are kept.
	DefaultRetentionDays = 90

	// DefaultLogLevel is the log level used when none is configured.
	DefaultLogLevel = "info"

	appName = "anonymize"
)

// DefaultExclusions are search patterns skipped by default. None: every
// directory under the search root is visited unless the user excludes it.
var DefaultExclusions = []string{}
