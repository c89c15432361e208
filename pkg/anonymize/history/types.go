// Package history keeps a JSON record of every redact and run operation.
package history

import "time"

// Operation is the kind of operation an entry records.
type Operation string

const (
	// OpRedact records a manifest redaction.
	OpRedact Operation = "redact"
	// OpRun records an anonymization run.
	OpRun Operation = "run"
)

// Entry is one recorded operation.
type Entry struct {
	ID        string       `json:"id"`
	Timestamp time.Time    `json:"timestamp"`
	Operation Operation    `json:"operation"`
	Manifest  string       `json:"manifest,omitempty"`
	Redacted  string       `json:"redacted,omitempty"`
	Root      string       `json:"root,omitempty"`
	Files     []FileRecord `json:"files"`
	Summary   Summary      `json:"summary"`
}

// FileRecord is one filename handled by the operation.
type FileRecord struct {
	Filename string `json:"filename"`
	Path     string `json:"path,omitempty"`
	Status   string `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Size     int64  `json:"size,omitempty"`
	Digest   string `json:"digest,omitempty"` // hex of the written payload
}

// Summary counts file records by status.
type Summary struct {
	Total     int `json:"total"`
	Processed int `json:"processed"`
	NotFound  int `json:"not_found"`
	Failed    int `json:"failed"`
}

// StatusListed marks filenames extracted by a redact operation.
const StatusListed = "listed"
