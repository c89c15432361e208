// Package output renders anonymization results in the formats offered by the
// CLI (pretty, plain, json, jsonl, yaml, csv, tsv, markdown, paths).
//
// Formatters are registered by name and selected at runtime:
//
//	formatter, err := output.Get("plain")
//	if err != nil {
//	    return err
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, output.FromReport(report)); err != nil {
//	    return err
//	}
package output

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/jamesainslie/anonymize/pkg/anonymize/manifest"
	"github.com/jamesainslie/anonymize/pkg/anonymize/runner"
	"github.com/jamesainslie/anonymize/pkg/anonymize/types"
)

// FileResult is the outcome for one manifest filename.
type FileResult struct {
	Filename  string `json:"filename" yaml:"filename"`
	Path      string `json:"path,omitempty" yaml:"path,omitempty"`
	Status    string `json:"status" yaml:"status"`
	Detail    string `json:"detail,omitempty" yaml:"detail,omitempty"`
	Size      int64  `json:"size,omitempty" yaml:"size,omitempty"`
	SizeHuman string `json:"size_human,omitempty" yaml:"size_human,omitempty"`
	Digest    string `json:"digest,omitempty" yaml:"digest,omitempty"`

	// Message is the status line shown to the operator.
	Message string `json:"message" yaml:"message"`
}

// Subject returns the path when known, otherwise the filename.
func (f FileResult) Subject() string {
	if f.Path != "" {
		return f.Path
	}
	return f.Filename
}

// Stats summarizes a run.
type Stats struct {
	Total     int           `json:"total" yaml:"total"`
	Processed int           `json:"processed" yaml:"processed"`
	NotFound  int           `json:"not_found" yaml:"not_found"`
	Failed    int           `json:"failed" yaml:"failed"`
	Bytes     int64         `json:"bytes" yaml:"bytes"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
}

// Result is everything a formatter can render.
type Result struct {
	// Manifest is the manifest that was read, if any.
	Manifest string `json:"manifest,omitempty" yaml:"manifest,omitempty"`

	// RedactedManifest is where the redacted copy was written.
	RedactedManifest string `json:"redacted_manifest,omitempty" yaml:"redacted_manifest,omitempty"`

	// Root is the searched directory.
	Root string `json:"root" yaml:"root"`

	// Rows is the number of rows kept in the redacted manifest.
	Rows int `json:"rows" yaml:"rows"`

	// Dropped is the number of empty manifest rows skipped.
	Dropped int `json:"dropped,omitempty" yaml:"dropped,omitempty"`

	Files    []FileResult `json:"files" yaml:"files"`
	Stats    Stats        `json:"stats" yaml:"stats"`
	Warnings []string     `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Summary returns the final processed-count line.
func (r *Result) Summary() string {
	return runner.SummaryLine(r.Stats.Processed)
}

// FromReport converts a runner report into a Result.
func FromReport(report *runner.Report) *Result {
	files := lo.Map(report.Outcomes, func(o runner.Outcome, _ int) FileResult {
		fr := FileResult{
			Filename: o.Filename,
			Path:     o.Path,
			Status:   o.Status.String(),
			Message:  o.String(),
		}
		if o.Err != nil {
			fr.Detail = o.Err.Error()
		}
		if o.Status == runner.StatusProcessed {
			fr.Size = o.Size
			fr.SizeHuman = types.FormatSize(o.Size)
			fr.Digest = hex.EncodeToString(o.Digest)
		}
		return fr
	})

	counts := lo.CountValuesBy(report.Outcomes, func(o runner.Outcome) runner.Status {
		return o.Status
	})

	return &Result{
		Root:  report.Root,
		Files: files,
		Stats: Stats{
			Total:     len(report.Outcomes),
			Processed: counts[runner.StatusProcessed],
			NotFound:  counts[runner.StatusNotFound],
			Failed:    counts[runner.StatusFailed],
			Bytes:     lo.SumBy(files, func(f FileResult) int64 { return f.Size }),
			Duration:  report.Elapsed,
		},
	}
}

// SetManifest records the redact step on the result.
func (r *Result) SetManifest(m *manifest.Result) {
	if m == nil {
		return
	}
	r.Manifest = m.Source
	r.RedactedManifest = m.OutputPath
	r.Rows = len(m.Rows)
	r.Dropped = m.Dropped
}

// Formatter renders a Result.
type Formatter interface {
	Format(w *bytes.Buffer, r *Result) error
}

// FormatterFactory creates a Formatter.
type FormatterFactory func() Formatter

// Registry maps formatter names to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]FormatterFactory)}
}

// Register adds or replaces a formatter.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter by name.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown formatter: %s", name)
	}
	return factory(), nil
}

// Available returns the registered names, sorted.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := lo.Keys(r.factories)
	sort.Strings(names)
	return names
}

// DefaultRegistry holds the built-in formatters.
var DefaultRegistry = NewRegistry()

// Register adds a formatter to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a formatter from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available lists the default registry's formatters.
func Available() []string {
	return DefaultRegistry.Available()
}
