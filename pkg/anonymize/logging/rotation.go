package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RotationConfig configures log file rotation.
type RotationConfig struct {
	// MaxSize is the size in bytes at which the file is rotated.
	// Zero uses the default of 10MB.
	MaxSize int64

	// MaxAge is the number of days to keep backups. Zero keeps them.
	MaxAge int

	// MaxBackups is the number of backups to keep. Zero keeps all.
	MaxBackups int
}

// DefaultRotationConfig returns a 10MB limit with five backups kept for 30 days.
func DefaultRotationConfig() RotationConfig {
	return RotationConfig{
		MaxSize:    10 * 1024 * 1024,
		MaxAge:     30,
		MaxBackups: 5,
	}
}

// RotatingWriter appends to a log file and moves it aside once it grows past
// MaxSize. Backups are numbered: <path>.1 is the most recent.
type RotatingWriter struct {
	path string
	cfg  RotationConfig

	mu   sync.Mutex
	file *os.File
	size int64
}

// NewRotatingWriter opens path for appending, creating parent directories,
// and prunes expired backups.
func NewRotatingWriter(path string, cfg RotationConfig) (*RotatingWriter, error) {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultRotationConfig().MaxSize
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	w := &RotatingWriter{path: path, cfg: cfg}
	if err := w.open(); err != nil {
		return nil, err
	}
	w.prune()
	return w, nil
}

// Write appends p, rotating first when p would push the file past MaxSize.
// An empty file is never rotated, so a single oversized write still lands.
func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return 0, os.ErrClosed
	}
	if w.size > 0 && w.size+int64(len(p)) > w.cfg.MaxSize {
		if err := w.rotate(); err != nil {
			return 0, fmt.Errorf("rotating %s: %w", w.path, err)
		}
	}

	if err := lockFile(w.file); err != nil {
		return 0, fmt.Errorf("locking %s: %w", w.path, err)
	}
	defer unlockFile(w.file)

	n, err := w.file.Write(p)
	w.size += int64(n)
	return n, err
}

// Close syncs and closes the file. Further writes fail with os.ErrClosed.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	f := w.file
	w.file = nil

	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (w *RotatingWriter) open() error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("stat log file: %w", err)
	}
	w.file, w.size = f, info.Size()
	return nil
}

// rotate shifts every backup up by one, drops those past MaxBackups, moves
// the live file to <path>.1 and reopens it empty.
func (w *RotatingWriter) rotate() error {
	if err := w.file.Close(); err != nil {
		return err
	}
	w.file = nil

	backups := w.backups()
	for i := len(backups) - 1; i >= 0; i-- {
		b := backups[i]
		if w.cfg.MaxBackups > 0 && b.index >= w.cfg.MaxBackups {
			_ = os.Remove(b.path)
			continue
		}
		if err := os.Rename(b.path, w.backupPath(b.index+1)); err != nil {
			return err
		}
	}

	if err := os.Rename(w.path, w.backupPath(1)); err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := w.open(); err != nil {
		return err
	}
	w.prune()
	return nil
}

type backup struct {
	path    string
	index   int
	modTime time.Time
}

func (w *RotatingWriter) backupPath(index int) string {
	return w.path + "." + strconv.Itoa(index)
}

// backups lists numbered backups of the log file, lowest index first.
func (w *RotatingWriter) backups() []backup {
	dir := filepath.Dir(w.path)
	prefix := filepath.Base(w.path) + "."

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var out []backup
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		index, err := strconv.Atoi(strings.TrimPrefix(e.Name(), prefix))
		if err != nil || index < 1 {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, backup{path: filepath.Join(dir, e.Name()), index: index, modTime: info.ModTime()})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].index < out[j].index })
	return out
}

// prune removes backups past MaxBackups or older than MaxAge days.
func (w *RotatingWriter) prune() {
	cutoff := time.Now().AddDate(0, 0, -w.cfg.MaxAge)
	for _, b := range w.backups() {
		if (w.cfg.MaxBackups > 0 && b.index > w.cfg.MaxBackups) || (w.cfg.MaxAge > 0 && b.modTime.Before(cutoff)) {
			_ = os.Remove(b.path)
		}
	}
}
