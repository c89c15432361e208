// Package manifest reads an anonymization manifest, redacts its sensitive
// column, and writes the redacted copy next to the original.
//
// A manifest is comma-delimited text encoded in Shift_JIS. Column 0 names a
// file to locate, column 2 (when present) holds a sensitive value that is
// replaced by its SHA-256 hex digest. Only the first three columns survive.
package manifest

import "fmt"

const (
	// Suffix is inserted before the extension of the redacted manifest path.
	Suffix = "_anonymized"

	// FilenameColumn is the index of the column naming the file to locate.
	FilenameColumn = 0

	// SensitiveColumn is the index of the column replaced by its digest.
	SensitiveColumn = 2

	// MaxColumns is the number of leading columns retained per row.
	MaxColumns = 3
)

// Row is one parsed manifest line.
type Row []string

// Filename returns the file name referenced by the row.
func (r Row) Filename() string {
	if len(r) == 0 {
		return ""
	}
	return r[FilenameColumn]
}

// Result is the outcome of redacting a manifest.
type Result struct {
	// Source is the manifest that was read.
	Source string

	// OutputPath is where the redacted manifest was (or would have been) written.
	OutputPath string

	// Rows are the redacted rows in manifest order.
	Rows []Row

	// Filenames lists column 0 of every retained row, in order.
	// Duplicates are preserved.
	Filenames []string

	// Dropped is the number of zero-field rows that were skipped, blank
	// lines included.
	Dropped int
}

// ReadError reports that the manifest could not be opened, decoded or parsed.
// No filename list is available when Redact returns a ReadError.
type ReadError struct {
	Path string
	Line int // 0 when the failure is not tied to a line
	Err  error
}

func (e *ReadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("reading manifest %s: line %d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("reading manifest %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// WriteError reports that the redacted manifest could not be written.
// The filename list extracted before the failure is still usable.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing redacted manifest %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
