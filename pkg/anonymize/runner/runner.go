// Package runner locates the files named by a manifest and replaces their
// contents with a SHA-256 digest.
//
// A run is synchronous and processes one filename at a time. Individual
// failures become Outcome values; a run as a whole never fails.
package runner

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jamesainslie/anonymize/pkg/anonymize/digest"
	"github.com/jamesainslie/anonymize/pkg/anonymize/locate"
	"github.com/jamesainslie/anonymize/pkg/anonymize/logging"
)

// DefaultCopyDir is where a copy of each anonymized payload is written,
// relative to the working directory.
const DefaultCopyDir = "anonymized-data"

var logger = logging.Get("runner")

// Options configures a Runner.
type Options struct {
	// CopyDir receives a copy of every anonymized payload under the file's
	// base name. Empty means DefaultCopyDir.
	CopyDir string

	// Exclude is passed to the locator. See locate.Options.
	Exclude []string

	// OnOutcome is called after each filename is handled, in order.
	OnOutcome func(Outcome)
}

// Runner anonymizes files found beneath a root directory.
type Runner struct {
	opts   Options
	finder *locate.Finder
}

// New creates a Runner with the given options.
func New(opts Options) *Runner {
	if opts.CopyDir == "" {
		opts.CopyDir = DefaultCopyDir
	}
	return &Runner{
		opts:   opts,
		finder: locate.New(locate.Options{Exclude: opts.Exclude}),
	}
}

// Run handles each filename in order and returns one outcome per filename.
// A filename that appears twice is searched for and processed twice.
func (r *Runner) Run(root string, filenames []string) *Report {
	report := &Report{
		Root:     root,
		Outcomes: make([]Outcome, 0, len(filenames)),
		Started:  time.Now(),
	}

	logger.Info("run started", "root", root, "files", len(filenames))

	for _, name := range filenames {
		outcome := r.process(root, name)
		report.Outcomes = append(report.Outcomes, outcome)

		if r.opts.OnOutcome != nil {
			r.opts.OnOutcome(outcome)
		}
	}

	report.Elapsed = time.Since(report.Started)
	logger.Info("run finished",
		"root", root,
		"processed", report.Processed(),
		"not_found", report.NotFound(),
		"failed", report.Failed(),
		"elapsed", report.Elapsed)

	return report
}

// process locates and anonymizes a single filename.
func (r *Runner) process(root, name string) Outcome {
	path, err := r.finder.Find(root, name)
	if errors.Is(err, locate.ErrNotFound) {
		logger.Debug("file not found", "name", name)
		return Outcome{Filename: name, Status: StatusNotFound}
	}
	if err != nil {
		logger.Warn("locate failed", "name", name, "error", err)
		return Outcome{Filename: name, Status: StatusFailed, Err: err}
	}

	size, sum, err := r.anonymize(path)
	if err != nil {
		logger.Warn("anonymize failed", "path", path, "error", err)
		return Outcome{Filename: name, Path: path, Status: StatusFailed, Err: err}
	}

	logger.Debug("file anonymized", "path", path, "size", size)
	return Outcome{
		Filename: name,
		Path:     path,
		Status:   StatusProcessed,
		Size:     size,
		Digest:   sum,
	}
}

// anonymize replaces the content of path with its digest and writes a copy
// of the digest to the copy directory.
func (r *Runner) anonymize(path string) (int64, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, nil, fmt.Errorf("reading file: %w", err)
	}

	sum := digest.Sum(data)

	if err := overwrite(path, sum); err != nil {
		return 0, nil, err
	}

	if err := os.MkdirAll(r.opts.CopyDir, 0o755); err != nil {
		return 0, nil, fmt.Errorf("creating copy directory: %w", err)
	}

	copyPath := filepath.Join(r.opts.CopyDir, filepath.Base(path))
	if err := os.WriteFile(copyPath, sum, 0o644); err != nil {
		return 0, nil, fmt.Errorf("writing copy: %w", err)
	}

	return int64(len(data)), sum, nil
}

// overwrite truncates path and writes payload in its place. If the write
// fails after truncation, the file is left empty rather than partially written.
func overwrite(path string, payload []byte) (err error) {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return fmt.Errorf("opening file for overwrite: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing file: %w", closeErr)
		}
	}()

	return writeOrTruncate(file, payload)
}

// truncateWriter is the part of *os.File used by writeOrTruncate.
type truncateWriter interface {
	io.Writer
	Truncate(size int64) error
}

// writeOrTruncate writes payload to f, emptying f if the write fails. When
// the truncate fails as well the file may hold a partial payload, and both
// errors are returned.
func writeOrTruncate(f truncateWriter, payload []byte) error {
	_, err := f.Write(payload)
	if err == nil {
		return nil
	}
	if truncErr := f.Truncate(0); truncErr != nil {
		return fmt.Errorf("overwriting file: %w", errors.Join(err, fmt.Errorf("truncating after failed write: %w", truncErr)))
	}
	return fmt.Errorf("overwriting file: %w", err)
}
