package output

import "bytes"

// PlainFormatter prints one status line per filename followed by the
// processed count. No styling is applied.
type PlainFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *Result) error {
	for _, file := range r.Files {
		w.WriteString(file.Message)
		w.WriteByte('\n')
	}
	w.WriteString(r.Summary())
	w.WriteByte('\n')
	return nil
}

// PathsFormatter prints the path of every processed file, one per line.
type PathsFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PathsFormatter) Format(w *bytes.Buffer, r *Result) error {
	for _, file := range r.Files {
		if file.Status != "processed" {
			continue
		}
		w.WriteString(file.Path)
		w.WriteByte('\n')
	}
	return nil
}

func init() {
	Register("plain", func() Formatter { return &PlainFormatter{} })
	Register("paths", func() Formatter { return &PathsFormatter{} })
}

var (
	_ Formatter = (*PlainFormatter)(nil)
	_ Formatter = (*PathsFormatter)(nil)
)
