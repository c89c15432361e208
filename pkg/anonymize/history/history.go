package history

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jamesainslie/anonymize/pkg/anonymize/logging"
	"github.com/jamesainslie/anonymize/pkg/anonymize/manifest"
	"github.com/jamesainslie/anonymize/pkg/anonymize/runner"
)

var logger = logging.Get("history")

// ErrEntryNotFound is returned by Get for an unknown ID.
var ErrEntryNotFound = errors.New("history entry not found")

// History stores entries as one JSON file each in a directory.
type History struct {
	dir string
	mu  sync.Mutex
}

// New creates a History rooted at dir. The directory is created lazily by
// EnsureDir.
func New(dir string) (*History, error) {
	if dir == "" {
		return nil, errors.New("history directory cannot be empty")
	}
	return &History{dir: dir}, nil
}

// Dir returns the directory entries are stored in.
func (h *History) Dir() string { return h.dir }

// EnsureDir creates the history directory if it does not exist.
func (h *History) EnsureDir() error {
	return os.MkdirAll(h.dir, 0o755)
}

// LogRedact records a redact operation. res may carry a partially
// successful redaction whose output was not written; writeErr describes why.
func (h *History) LogRedact(res *manifest.Result, writeErr error) (*Entry, error) {
	if res == nil {
		return nil, errors.New("nil redact result")
	}

	files := make([]FileRecord, len(res.Filenames))
	for i, name := range res.Filenames {
		files[i] = FileRecord{Filename: name, Status: StatusListed}
	}

	entry := &Entry{
		Operation: OpRedact,
		Manifest:  res.Source,
		Files:     files,
		Summary:   Summary{Total: len(files)},
	}
	if writeErr == nil {
		entry.Redacted = res.OutputPath
	}

	if err := h.save(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// LogRun records an anonymization run. manifestPath may be empty when the
// filenames were given directly.
func (h *History) LogRun(manifestPath string, report *runner.Report) (*Entry, error) {
	if report == nil {
		return nil, errors.New("nil run report")
	}

	files := make([]FileRecord, len(report.Outcomes))
	for i, o := range report.Outcomes {
		rec := FileRecord{
			Filename: o.Filename,
			Path:     o.Path,
			Status:   o.Status.String(),
			Size:     o.Size,
		}
		if o.Err != nil {
			rec.Detail = o.Err.Error()
		}
		if len(o.Digest) > 0 {
			rec.Digest = hex.EncodeToString(o.Digest)
		}
		files[i] = rec
	}

	entry := &Entry{
		Operation: OpRun,
		Manifest:  manifestPath,
		Root:      report.Root,
		Files:     files,
		Summary: Summary{
			Total:     len(files),
			Processed: report.Processed(),
			NotFound:  report.NotFound(),
			Failed:    report.Failed(),
		},
	}

	if err := h.save(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (h *History) save(entry *Entry) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	entry.Timestamp = time.Now().UTC()
	entry.ID = newID(entry.Operation, entry.Timestamp)

	if err := h.writeEntry(entry); err != nil {
		return fmt.Errorf("failed to write history entry: %w", err)
	}
	logger.Debug("history entry written", "id", entry.ID, "files", len(entry.Files))
	return nil
}

// writeEntry writes via a temp file and rename so readers never see a
// partial entry.
func (h *History) writeEntry(entry *Entry) error {
	path := filepath.Join(h.dir, entry.ID+".json")

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// List returns entries newest first. A limit of zero or less returns all.
func (h *History) List(limit int) ([]Entry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	names, err := h.entryFiles()
	if err != nil {
		return nil, err
	}

	entries := []Entry{}
	for _, name := range names {
		entry, err := h.readEntry(name)
		if err != nil {
			logger.Warn("skipping unreadable history entry", "file", name, "error", err)
			continue
		}
		entries = append(entries, *entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Get returns the entry with the given ID.
func (h *History) Get(id string) (*Entry, error) {
	if id == "" || strings.ContainsAny(id, `/\`) {
		return nil, fmt.Errorf("%w: %q", ErrEntryNotFound, id)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	entry, err := h.readEntry(id + ".json")
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, id)
		}
		return nil, err
	}
	return entry, nil
}

// Cleanup removes entries last modified more than retentionDays ago and
// returns how many were removed. A non-positive retention keeps everything.
func (h *History) Cleanup(retentionDays int) (int, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	names, err := h.entryFiles()
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	removed := 0
	for _, name := range names {
		path := filepath.Join(h.dir, name)
		info, err := os.Stat(path)
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			logger.Warn("failed to remove history entry", "file", name, "error", err)
			continue
		}
		removed++
	}
	return removed, nil
}

func (h *History) entryFiles() ([]string, error) {
	dirEntries, err := os.ReadDir(h.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read history directory: %w", err)
	}

	var names []string
	for _, d := range dirEntries {
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".json") {
			names = append(names, d.Name())
		}
	}
	return names, nil
}

func (h *History) readEntry(name string) (*Entry, error) {
	data, err := os.ReadFile(filepath.Join(h.dir, name))
	if err != nil {
		return nil, err
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entry: %w", err)
	}
	return &entry, nil
}

// newID builds IDs like "run-2026-10-18T10-30-00-1b4e28ba".
func newID(op Operation, ts time.Time) string {
	return fmt.Sprintf("%s-%s-%s", op, ts.Format("2006-01-02T15-04-05"), uuid.NewString()[:8])
}
