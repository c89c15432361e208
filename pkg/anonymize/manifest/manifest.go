package manifest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/jamesainslie/anonymize/pkg/anonymize/digest"
	"github.com/jamesainslie/anonymize/pkg/anonymize/logging"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

var logger = logging.Get("manifest")

// ErrUndecodable is wrapped by a ReadError when the manifest contains bytes
// that are not valid Shift_JIS.
var ErrUndecodable = errors.New("invalid Shift_JIS byte sequence")

// Redact reads the manifest at path, redacts it and writes the result to
// OutputPathFor(path).
//
// A *ReadError means nothing usable was produced. A *WriteError is returned
// together with a non-nil Result so the caller can still use Filenames.
func Redact(path string) (*Result, error) {
	result, err := Preview(path)
	if err != nil {
		return nil, err
	}

	if err := writeFile(result.OutputPath, result.Rows); err != nil {
		logger.Error("redacted manifest not written", "path", result.OutputPath, "error", err)
		return result, err
	}

	logger.Info("redacted manifest written", "path", result.OutputPath, "rows", len(result.Rows))
	return result, nil
}

// Preview reads and redacts the manifest at path without writing anything.
// Errors are always *ReadError.
func Preview(path string) (*Result, error) {
	records, blank, err := readFile(path)
	if err != nil {
		return nil, err
	}

	rows, filenames := RedactRows(records)
	result := &Result{
		Source:     path,
		OutputPath: OutputPathFor(path),
		Rows:       rows,
		Filenames:  filenames,
		Dropped:    blank + len(records) - len(rows),
	}

	logger.Debug("manifest redacted",
		"path", path,
		"rows", len(rows),
		"dropped", result.Dropped)

	return result, nil
}

// RedactRows applies the redaction rules to parsed records: zero-field rows
// are dropped, column 0 is collected as a filename, column 2 is replaced by
// its hex digest, and each row is cut to its first three columns.
// The input is not modified.
func RedactRows(records [][]string) ([]Row, []string) {
	rows := make([]Row, 0, len(records))
	filenames := make([]string, 0, len(records))

	for _, record := range records {
		if len(record) == 0 {
			continue
		}

		n := min(len(record), MaxColumns)
		row := make(Row, n)
		copy(row, record[:n])

		if len(row) > SensitiveColumn {
			row[SensitiveColumn] = digest.Hex(row[SensitiveColumn])
		}

		filenames = append(filenames, row[FilenameColumn])
		rows = append(rows, row)
	}

	return rows, filenames
}

// OutputPathFor returns the redacted manifest path for a manifest path,
// inserting Suffix before the extension.
func OutputPathFor(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + Suffix + ext
}

// Decode parses Shift_JIS encoded, comma-delimited records from r.
// Rows may have any number of fields. Blank lines yield no record; their
// number is returned as blank.
func Decode(r io.Reader) (records [][]string, blank int, err error) {
	counter := &lineCounter{r: transform.NewReader(r, japanese.ShiftJIS.NewDecoder())}
	reader := csv.NewReader(counter)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	// next is the first line not yet accounted for by a record.
	next := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				return nil, 0, &ReadError{Line: parseErr.Line, Err: parseErr.Err}
			}
			return nil, 0, &ReadError{Err: err}
		}

		for i, field := range record {
			if strings.ContainsRune(field, utf8.RuneError) {
				line, _ := reader.FieldPos(i)
				return nil, 0, &ReadError{Line: line, Err: ErrUndecodable}
			}
		}

		first, _ := reader.FieldPos(0)
		last := len(record) - 1
		end, _ := reader.FieldPos(last)
		end += strings.Count(record[last], "\n")

		blank += first - next
		next = end + 1
		records = append(records, record)
	}

	// The reader also skips blank lines after the last record.
	blank += max(counter.lines()-(next-1), 0)
	return records, blank, nil
}

// lineCounter counts the lines read through it.
type lineCounter struct {
	r        io.Reader
	newlines int
	last     byte
	read     bool
}

func (c *lineCounter) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.newlines += bytes.Count(p[:n], []byte{'\n'})
		c.last = p[n-1]
		c.read = true
	}
	return n, err
}

// lines returns the number of lines seen, counting an unterminated last line.
func (c *lineCounter) lines() int {
	if c.read && c.last != '\n' {
		return c.newlines + 1
	}
	return c.newlines
}

// Encode writes rows to w as UTF-8, comma-delimited text.
func Encode(w io.Writer, rows []Row) error {
	writer := csv.NewWriter(w)
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// readFile opens and decodes the manifest at path.
func readFile(path string) ([][]string, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, &ReadError{Path: path, Err: err}
	}
	defer file.Close()

	records, blank, err := Decode(file)
	if err != nil {
		var readErr *ReadError
		if errors.As(err, &readErr) {
			readErr.Path = path
			return nil, 0, readErr
		}
		return nil, 0, &ReadError{Path: path, Err: err}
	}

	return records, blank, nil
}

// writeFile writes rows to path, replacing any existing file.
func writeFile(path string, rows []Row) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = &WriteError{Path: path, Err: fmt.Errorf("closing file: %w", closeErr)}
		}
	}()

	if err := Encode(file, rows); err != nil {
		return &WriteError{Path: path, Err: err}
	}

	return nil
}
