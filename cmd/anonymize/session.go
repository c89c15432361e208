package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/viper"

	"github.com/jamesainslie/anonymize/cmd/anonymize/tui"
	"github.com/jamesainslie/anonymize/pkg/anonymize/config"
	"github.com/jamesainslie/anonymize/pkg/anonymize/history"
	"github.com/jamesainslie/anonymize/pkg/anonymize/ledger"
	"github.com/jamesainslie/anonymize/pkg/anonymize/manifest"
	"github.com/jamesainslie/anonymize/pkg/anonymize/output"
	"github.com/jamesainslie/anonymize/pkg/anonymize/runner"
)

// session carries the optional history and ledger through one command.
// Either may be nil when disabled or unavailable; neither can fail a run.
type session struct {
	cfg    *config.Config
	hist   *history.History
	ledger *ledger.Ledger
	runID  string

	mu       sync.Mutex
	warnings []string
}

func openSession() (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	s := &session{cfg: cfg, runID: uuid.NewString()}

	if cfg.History.Enabled && !viper.GetBool("no_history") {
		h, err := history.New(cfg.History.Path)
		if err == nil {
			err = h.EnsureDir()
		}
		if err != nil {
			logger.Warn("history disabled", "path", cfg.History.Path, "error", err)
		} else {
			s.hist = h
		}
	}

	if cfg.Ledger.Enabled && !viper.GetBool("no_ledger") {
		l, err := ledger.Open(cfg.Ledger.Path)
		if err != nil {
			logger.Warn("ledger disabled", "path", cfg.Ledger.Path, "error", err)
		} else {
			s.ledger = l
		}
	}

	return s, nil
}

func (s *session) Close() {
	if s.ledger != nil {
		if err := s.ledger.Close(); err != nil {
			logger.Warn("closing ledger", "error", err)
		}
	}
}

func (s *session) warn(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Warn(msg)

	s.mu.Lock()
	s.warnings = append(s.warnings, msg)
	s.mu.Unlock()
}

// Warnings returns the warnings collected so far.
func (s *session) Warnings() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.warnings...)
}

// redact runs the redact step. A nil result means the manifest could not be
// read. A non-nil result with an error means the redacted copy was not
// written but the filename list is usable.
func (s *session) redact(path string) (*manifest.Result, error) {
	res, err := manifest.Redact(path)
	if res == nil {
		return nil, err
	}

	var writeErr *manifest.WriteError
	if errors.As(err, &writeErr) {
		s.warn("redacted manifest not written: %v", writeErr)
	}

	if s.hist != nil {
		if _, herr := s.hist.LogRedact(res, err); herr != nil {
			logger.Warn("recording redact history", "error", herr)
		}
	}
	return res, err
}

// runnerOptions builds runner options from flags and config. Every outcome
// is logged and recorded in the ledger before being passed to next.
func (s *session) runnerOptions(next func(runner.Outcome)) runner.Options {
	return runner.Options{
		CopyDir: viper.GetString("copy_dir"),
		Exclude: viper.GetStringSlice("exclude"),
		OnOutcome: func(o runner.Outcome) {
			s.record(o)
			if next != nil {
				next(o)
			}
		},
	}
}

func (s *session) record(o runner.Outcome) {
	switch o.Status {
	case runner.StatusProcessed:
		logger.Info("file anonymized", "filename", o.Filename, "path", o.Path, "size", o.Size)
	case runner.StatusNotFound:
		logger.Info("file not found", "filename", o.Filename)
	default:
		logger.Warn("file failed", "filename", o.Filename, "path", o.Path, "error", o.Err)
	}

	if s.ledger == nil {
		return
	}
	rec, err := s.ledger.Record(s.runID, o)
	if err != nil {
		logger.Warn("recording ledger entry", "error", err)
		return
	}
	if rec != nil && rec.Repeated() {
		s.warn("%s was already anonymized (%d runs); its content is now a digest of a digest", rec.Path, rec.Count-1)
	}
}

// execute runs the batch, in the TUI when interactive, and records it.
func (s *session) execute(manifestPath, redacted, root string, filenames []string) (*runner.Report, error) {
	var report *runner.Report

	if interactive() {
		var err error
		report, err = tui.Run(tui.Options{
			Manifest:  manifestPath,
			Redacted:  redacted,
			Root:      root,
			Filenames: filenames,
			Runner:    s.runnerOptions(nil),
		})
		if err != nil {
			return nil, fmt.Errorf("running interactive session: %w", err)
		}
	} else {
		report = runner.New(s.runnerOptions(nil)).Run(root, filenames)
	}

	if s.hist != nil {
		if _, err := s.hist.LogRun(manifestPath, report); err != nil {
			logger.Warn("recording run history", "error", err)
		}
	}
	return report, nil
}

// interactive reports whether the TUI should be used.
func interactive() bool {
	if viper.GetBool("no_interactive") || outputFormat() != config.DefaultOutput {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

func outputFormat() string {
	if f := viper.GetString("output"); f != "" {
		return f
	}
	return config.DefaultOutput
}

// emit renders res with the selected formatter.
func emit(w io.Writer, res *output.Result) error {
	format := outputFormat()
	formatter, err := output.Get(format)
	if err != nil {
		return fmt.Errorf("unknown output format %q: available formats are %v", format, output.Available())
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, res); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}
	_, err = w.Write(buf.Bytes())
	return err
}

// finish prints the result of a batch. After the TUI only the summary is
// printed; the screen already showed each line.
func (s *session) finish(w io.Writer, report *runner.Report, m *manifest.Result, written bool, wasInteractive bool) error {
	res := output.FromReport(report)
	res.SetManifest(m)
	if !written {
		res.RedactedManifest = ""
	}
	res.Warnings = s.Warnings()

	if wasInteractive {
		for _, warning := range res.Warnings {
			printInfo("warning: %s", warning)
		}
		_, err := fmt.Fprintln(w, res.Summary())
		return err
	}
	return emit(w, res)
}
