// Package locate finds files by exact base name beneath a directory tree.
package locate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
)

// ErrNotFound is returned by Find when no entry matches the name.
var ErrNotFound = errors.New("file not found")

// ErrNotDirectory is returned by Find when the root is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// Options configures a Finder.
type Options struct {
	// Exclude contains doublestar patterns matched against the slash-separated
	// path relative to the root. Matching directories are not descended.
	Exclude []string
}

// Finder locates files by base name.
type Finder struct {
	opts Options
}

// New creates a Finder with the given options.
func New(opts Options) *Finder {
	return &Finder{opts: opts}
}

// match is a candidate found during a walk.
type match struct {
	path  string
	depth int
}

// Find walks root and returns the path of a non-directory entry whose base
// name is exactly name. When several entries match, the shallowest one wins
// and ties are broken by lexical path order. This is a deliberate choice over
// "first hit of a depth-first walk": fastwalk visits directories concurrently,
// so a first-hit rule would depend on scheduling, and a depth-first rule would
// depend on the order in which the operating system lists directory entries.
//
// Find returns ErrNotFound on a miss. A missing, unreadable or non-directory
// root is reported as a different error.
func (f *Finder) Find(root, name string) (string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return "", fmt.Errorf("search root: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("search root %s: %w", root, ErrNotDirectory)
	}
	if _, err := os.ReadDir(root); err != nil {
		return "", fmt.Errorf("search root: %w", err)
	}

	var (
		best *match
		mu   sync.Mutex
	)

	conf := fastwalk.Config{
		Follow: false,
	}

	walkErr := fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error {
		// Unreadable subtrees are skipped.
		if err != nil {
			return nil //nolint:nilerr // keep walking past unreadable entries
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil || rel == "." {
			return nil //nolint:nilerr // the root itself never matches
		}

		if f.isExcluded(rel) {
			if d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		}

		if d.IsDir() || d.Name() != name || isDirSymlink(path, d) {
			return nil
		}

		candidate := match{path: path, depth: strings.Count(filepath.ToSlash(rel), "/")}

		mu.Lock()
		if best == nil || candidate.less(*best) {
			best = &candidate
		}
		mu.Unlock()

		return nil
	})
	if walkErr != nil {
		return "", fmt.Errorf("walking %s: %w", root, walkErr)
	}

	if best == nil {
		return "", ErrNotFound
	}
	return best.path, nil
}

// less orders matches by depth, then by path.
func (m match) less(other match) bool {
	if m.depth != other.depth {
		return m.depth < other.depth
	}
	return m.path < other.path
}

// isDirSymlink reports whether d is a symlink that resolves to a directory.
func isDirSymlink(path string, d fs.DirEntry) bool {
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// isExcluded reports whether a root-relative path matches an exclude pattern.
func (f *Finder) isExcluded(rel string) bool {
	slashed := filepath.ToSlash(rel)
	for _, pattern := range f.opts.Exclude {
		if matched, err := doublestar.Match(pattern, slashed); err == nil && matched {
			return true
		}
	}
	return false
}
