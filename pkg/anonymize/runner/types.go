package runner

import (
	"fmt"
	"time"
)

// Status classifies the outcome of one filename.
type Status int

const (
	// StatusProcessed means the file was found and anonymized.
	StatusProcessed Status = iota
	// StatusNotFound means no file with that name exists under the root.
	StatusNotFound
	// StatusFailed means locating, reading or writing the file failed.
	StatusFailed
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusProcessed:
		return "processed"
	case StatusNotFound:
		return "not_found"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the result of locating and anonymizing one filename.
type Outcome struct {
	// Filename is the name from the manifest.
	Filename string

	// Path is the located file, empty when the file was never located.
	Path string

	// Status classifies the outcome.
	Status Status

	// Err holds the failure detail for StatusFailed.
	Err error

	// Size is the original size in bytes of a processed file.
	Size int64

	// Digest is the payload written over a processed file.
	Digest []byte
}

// Subject returns the path when the file was located, otherwise the filename.
func (o Outcome) Subject() string {
	if o.Path != "" {
		return o.Path
	}
	return o.Filename
}

// String returns the human-readable status line for the outcome.
func (o Outcome) String() string {
	switch o.Status {
	case StatusProcessed:
		return "found & processed: " + o.Path
	case StatusNotFound:
		return "not found: " + o.Filename
	default:
		return fmt.Sprintf("processing failed: %s (%v)", o.Subject(), o.Err)
	}
}

// Report collects the outcomes of one run, in filename-list order.
type Report struct {
	Root     string
	Outcomes []Outcome
	Started  time.Time
	Elapsed  time.Duration
}

// Processed returns the number of files that were anonymized.
func (r *Report) Processed() int { return r.count(StatusProcessed) }

// NotFound returns the number of filenames that were not located.
func (r *Report) NotFound() int { return r.count(StatusNotFound) }

// Failed returns the number of filenames whose processing failed.
func (r *Report) Failed() int { return r.count(StatusFailed) }

func (r *Report) count(s Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == s {
			n++
		}
	}
	return n
}

// Lines returns one status line per outcome followed by the processed count.
func (r *Report) Lines() []string {
	lines := make([]string, 0, len(r.Outcomes)+1)
	for _, o := range r.Outcomes {
		lines = append(lines, o.String())
	}
	return append(lines, SummaryLine(r.Processed()))
}

// SummaryLine formats the final processed count.
func SummaryLine(processed int) string {
	if processed == 1 {
		return "1 file processed"
	}
	return fmt.Sprintf("%d files processed", processed)
}
