package ledger

import (
	"bytes"
	"encoding/gob"
	"time"
)

// keyPrefix namespaces file records inside the store.
const keyPrefix = "file\x00"

// Record describes the last anonymization of one file.
type Record struct {
	// Path is the absolute path of the file.
	Path string

	// Digest is the hex digest that was written over the file.
	Digest string

	// OriginalSize is the size of the file before its last anonymization.
	OriginalSize int64

	// RunID identifies the run that last anonymized the file.
	RunID string

	// AnonymizedAt is when the file was last anonymized.
	AnonymizedAt time.Time

	// Count is how many times the file has been anonymized.
	Count int
}

// Repeated reports whether the file had already been anonymized before its
// most recent run. Its content is then a digest of a digest.
func (r *Record) Repeated() bool {
	return r.Count > 1
}

func (r *Record) encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *Record) decode(data []byte) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(r)
}

func makeKey(path string) []byte {
	return []byte(keyPrefix + path)
}
