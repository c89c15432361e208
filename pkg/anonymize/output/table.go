package output

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
)

var tableHeader = []string{"STATUS", "FILENAME", "PATH", "SIZE", "DIGEST", "DETAIL"}

func tableRow(f FileResult) []string {
	size := ""
	if f.Status == "processed" {
		size = strconv.FormatInt(f.Size, 10)
	}
	return []string{f.Status, f.Filename, f.Path, size, f.Digest, f.Detail}
}

// CSVFormatter writes RFC 4180 comma-separated values.
type CSVFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *CSVFormatter) Format(w *bytes.Buffer, r *Result) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(tableHeader); err != nil {
		return err
	}
	for _, file := range r.Files {
		if err := writer.Write(tableRow(file)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// TSVFormatter writes tab-separated values. Tabs and newlines inside fields
// are replaced with spaces.
type TSVFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *TSVFormatter) Format(w *bytes.Buffer, r *Result) error {
	clean := strings.NewReplacer("\t", " ", "\n", " ", "\r", " ")
	writeRow := func(fields []string) {
		for i, field := range fields {
			if i > 0 {
				w.WriteByte('\t')
			}
			w.WriteString(clean.Replace(field))
		}
		w.WriteByte('\n')
	}

	writeRow(tableHeader)
	for _, file := range r.Files {
		writeRow(tableRow(file))
	}
	return nil
}

// MarkdownFormatter writes a GitHub-flavored Markdown table.
type MarkdownFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *MarkdownFormatter) Format(w *bytes.Buffer, r *Result) error {
	w.WriteString("| STATUS | FILE | SIZE | DETAIL |\n")
	w.WriteString("|--------|------|------|--------|\n")
	for _, file := range r.Files {
		fmt.Fprintf(w, "| %s | %s | %s | %s |\n",
			file.Status,
			escapeMarkdownPipe(file.Subject()),
			file.SizeHuman,
			escapeMarkdownPipe(file.Detail))
	}
	fmt.Fprintf(w, "\n%s\n", r.Summary())
	return nil
}

func escapeMarkdownPipe(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func init() {
	Register("csv", func() Formatter { return &CSVFormatter{} })
	Register("tsv", func() Formatter { return &TSVFormatter{} })
	Register("markdown", func() Formatter { return &MarkdownFormatter{} })
}

var (
	_ Formatter = (*CSVFormatter)(nil)
	_ Formatter = (*TSVFormatter)(nil)
	_ Formatter = (*MarkdownFormatter)(nil)
)
