// Package ledger remembers every file the tool has anonymized so repeated
// runs over the same tree can be spotted.
//
// The ledger is advisory. It never prevents a file from being processed.
package ledger

import (
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/jamesainslie/anonymize/pkg/anonymize/logging"
	"github.com/jamesainslie/anonymize/pkg/anonymize/runner"
)

var logger = logging.Get("ledger")

// ErrNotFound is returned when the ledger has no record for a path.
var ErrNotFound = errors.New("ledger record not found")

// Ledger is a badger-backed store of Records keyed by absolute path.
type Ledger struct {
	db *badger.DB
}

// Open opens or creates a ledger in dir.
func Open(dir string) (*Ledger, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening ledger at %s: %w", dir, err)
	}
	return &Ledger{db: db}, nil
}

// Close closes the ledger.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Get returns the record for path.
func (l *Ledger) Get(path string) (*Record, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	var rec Record
	err = l.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(makeKey(abs))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(rec.decode)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Record stores a processed outcome and returns the updated record. Outcomes
// that were not processed are ignored and return a nil record.
func (l *Ledger) Record(runID string, o runner.Outcome) (*Record, error) {
	if o.Status != runner.StatusProcessed {
		return nil, nil
	}

	abs, err := filepath.Abs(o.Path)
	if err != nil {
		return nil, err
	}
	key := makeKey(abs)

	rec := Record{
		Path:         abs,
		Digest:       hex.EncodeToString(o.Digest),
		OriginalSize: o.Size,
		RunID:        runID,
		AnonymizedAt: time.Now().UTC(),
		Count:        1,
	}

	err = l.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
		case err != nil:
			return err
		default:
			var prev Record
			if err := item.Value(prev.decode); err != nil {
				return err
			}
			rec.Count = prev.Count + 1
		}

		value, err := rec.encode()
		if err != nil {
			return err
		}
		return txn.Set(key, value)
	})
	if err != nil {
		return nil, fmt.Errorf("recording %s: %w", abs, err)
	}

	if rec.Repeated() {
		logger.Warn("file anonymized again", "path", abs, "count", rec.Count)
	}
	return &rec, nil
}

// List returns all records sorted by path.
func (l *Ledger) List() ([]Record, error) {
	prefix := []byte(keyPrefix)
	records := []Record{}

	err := l.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rec Record
			if err := it.Item().Value(rec.decode); err != nil {
				return err
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Path < records[j].Path })
	return records, nil
}

// Forget removes the record for path.
func (l *Ledger) Forget(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	key := makeKey(abs)

	return l.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, abs)
		} else if err != nil {
			return err
		}
		return txn.Delete(key)
	})
}

// ForgetUnder removes every record beneath dir and returns how many were
// removed.
func (l *Ledger) ForgetUnder(dir string) (int, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return 0, err
	}
	prefix := makeKey(strings.TrimSuffix(abs, string(filepath.Separator)) + string(filepath.Separator))

	removed := 0
	err = l.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		var keys [][]byte
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		for _, key := range keys {
			if err := txn.Delete(key); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	return removed, err
}
