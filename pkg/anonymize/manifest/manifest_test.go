package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/jamesainslie/anonymize/pkg/anonymize/digest"
	"golang.org/x/text/encoding/japanese"
)

// writeShiftJIS writes content to a file in dir, encoded as Shift_JIS.
func writeShiftJIS(t *testing.T, dir, name, content string) string {
	t.Helper()

	encoded, err := japanese.ShiftJIS.NewEncoder().String(content)
	if err != nil {
		t.Fatalf("failed to encode fixture: %v", err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(encoded), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

func TestRedactRows(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		records       [][]string
		wantRows      []Row
		wantFilenames []string
	}{
		{
			name:    "mixed column counts with an empty row",
			records: [][]string{{"a.txt", "x", "secret1"}, {"b.txt", "y"}, {}},
			wantRows: []Row{
				{"a.txt", "x", digest.Hex("secret1")},
				{"b.txt", "y"},
			},
			wantFilenames: []string{"a.txt", "b.txt"},
		},
		{
			name:          "extra columns are dropped",
			records:       [][]string{{"c.bin", "1", "name", "dob", "notes"}},
			wantRows:      []Row{{"c.bin", "1", digest.Hex("name")}},
			wantFilenames: []string{"c.bin"},
		},
		{
			name:          "empty sensitive field is still digested",
			records:       [][]string{{"d.bin", "", ""}},
			wantRows:      []Row{{"d.bin", "", digest.Hex("")}},
			wantFilenames: []string{"d.bin"},
		},
		{
			name:          "single column row",
			records:       [][]string{{"e.bin"}},
			wantRows:      []Row{{"e.bin"}},
			wantFilenames: []string{"e.bin"},
		},
		{
			name:          "duplicates preserved in order",
			records:       [][]string{{"f.bin"}, {"g.bin"}, {"f.bin"}},
			wantRows:      []Row{{"f.bin"}, {"g.bin"}, {"f.bin"}},
			wantFilenames: []string{"f.bin", "g.bin", "f.bin"},
		},
		{
			name:          "only empty rows",
			records:       [][]string{{}, {}},
			wantRows:      []Row{},
			wantFilenames: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rows, filenames := RedactRows(tt.records)

			if !reflect.DeepEqual(rows, tt.wantRows) {
				t.Errorf("rows = %v, want %v", rows, tt.wantRows)
			}
			if !reflect.DeepEqual(filenames, tt.wantFilenames) {
				t.Errorf("filenames = %v, want %v", filenames, tt.wantFilenames)
			}
		})
	}
}

func TestRedactRows_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	records := [][]string{{"a.txt", "x", "secret1", "extra"}}
	RedactRows(records)

	if records[0][2] != "secret1" {
		t.Errorf("input field mutated to %q", records[0][2])
	}
	if len(records[0]) != 4 {
		t.Errorf("input row truncated to %d fields", len(records[0]))
	}
}

func TestRedactRows_SensitiveFieldIsFixedLengthHex(t *testing.T) {
	t.Parallel()

	plaintexts := []string{"secret1", "山田太郎", "", "a much longer value with spaces"}
	records := make([][]string, 0, len(plaintexts))
	for _, p := range plaintexts {
		records = append(records, []string{"f", "x", p})
	}

	rows, _ := RedactRows(records)
	for i, row := range rows {
		if !digest.IsHex(row[2]) {
			t.Errorf("row %d field 2 = %q, want fixed-length hex", i, row[2])
		}
		if row[2] == plaintexts[i] {
			t.Errorf("row %d field 2 equals plaintext", i)
		}
	}
}

func TestOutputPathFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"foo.csv", "foo_anonymized.csv"},
		{"/data/list.CSV", "/data/list_anonymized.CSV"},
		{"noext", "noext_anonymized"},
		{"dir.v2/patients.txt", "dir.v2/patients_anonymized.txt"},
	}

	for _, tt := range tests {
		if got := OutputPathFor(tt.in); got != tt.want {
			t.Errorf("OutputPathFor(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDecode_VariableColumns(t *testing.T) {
	t.Parallel()

	input := "a.txt,x,secret1\nb.txt,y\n\nc.txt,1,2,3,4\n"
	records, blank, err := Decode(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if blank != 1 {
		t.Errorf("blank = %d, want 1", blank)
	}

	want := [][]string{
		{"a.txt", "x", "secret1"},
		{"b.txt", "y"},
		{"c.txt", "1", "2", "3", "4"},
	}
	if !reflect.DeepEqual(records, want) {
		t.Errorf("Decode() = %v, want %v", records, want)
	}
}

func TestDecode_InvalidShiftJIS(t *testing.T) {
	t.Parallel()

	input := "a.txt,x,ok\nb.txt,y,\xff\n"
	_, _, err := Decode(strings.NewReader(input))
	if err == nil {
		t.Fatal("Decode() error = nil, want error")
	}

	var readErr *ReadError
	if !errors.As(err, &readErr) {
		t.Fatalf("error = %T, want *ReadError", err)
	}
	if readErr.Line != 2 {
		t.Errorf("Line = %d, want 2", readErr.Line)
	}
	if !errors.Is(err, ErrUndecodable) {
		t.Errorf("errors.Is(err, ErrUndecodable) = false")
	}
}

func TestRedact(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeShiftJIS(t, dir, "patients.csv",
		"a.mwf,2024-01-01,山田太郎\nb.mwf,2024-01-02\n\nc.mwf,2024-01-03,佐藤花子,extra\n")

	result, err := Redact(path)
	if err != nil {
		t.Fatalf("Redact() error = %v", err)
	}

	wantFilenames := []string{"a.mwf", "b.mwf", "c.mwf"}
	if !reflect.DeepEqual(result.Filenames, wantFilenames) {
		t.Errorf("Filenames = %v, want %v", result.Filenames, wantFilenames)
	}

	wantOutput := filepath.Join(dir, "patients_anonymized.csv")
	if result.OutputPath != wantOutput {
		t.Errorf("OutputPath = %q, want %q", result.OutputPath, wantOutput)
	}

	data, err := os.ReadFile(wantOutput)
	if err != nil {
		t.Fatalf("redacted manifest not written: %v", err)
	}

	want := "a.mwf,2024-01-01," + digest.Hex("山田太郎") + "\n" +
		"b.mwf,2024-01-02\n" +
		"c.mwf,2024-01-03," + digest.Hex("佐藤花子") + "\n"
	if string(data) != want {
		t.Errorf("redacted manifest =\n%s\nwant\n%s", data, want)
	}

	if strings.Contains(string(data), "山田") {
		t.Error("redacted manifest still contains plaintext")
	}
}

func TestRedact_RowCount(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeShiftJIS(t, dir, "m.csv", "a,1,s\n\nb,2,t\n\n\nc\n")

	result, err := Redact(path)
	if err != nil {
		t.Fatalf("Redact() error = %v", err)
	}

	if len(result.Rows) != 3 {
		t.Errorf("len(Rows) = %d, want 3", len(result.Rows))
	}
	if len(result.Filenames) != len(result.Rows) {
		t.Errorf("len(Filenames) = %d, want %d", len(result.Filenames), len(result.Rows))
	}
	if result.Dropped != 3 {
		t.Errorf("Dropped = %d, want 3", result.Dropped)
	}
}

func TestDecode_BlankLines(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		wantRows  int
		wantBlank int
	}{
		{name: "none", input: "a,1\nb,2\n", wantRows: 2, wantBlank: 0},
		{name: "no trailing newline", input: "a,1\nb,2", wantRows: 2, wantBlank: 0},
		{name: "leading", input: "\n\na,1\n", wantRows: 1, wantBlank: 2},
		{name: "between", input: "a\n\nb\n\n\nc\n", wantRows: 3, wantBlank: 3},
		{name: "trailing", input: "a\n\n\n", wantRows: 1, wantBlank: 2},
		{name: "crlf", input: "a\r\n\r\nb\r\n", wantRows: 2, wantBlank: 1},
		{name: "quoted newlines are not blank", input: "a,\"x\n\ny\"\n\nb\n", wantRows: 2, wantBlank: 1},
		{name: "empty input", input: "", wantRows: 0, wantBlank: 0},
		{name: "only blank lines", input: "\n\n", wantRows: 0, wantBlank: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			records, blank, err := Decode(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if len(records) != tt.wantRows {
				t.Errorf("len(records) = %d, want %d", len(records), tt.wantRows)
			}
			if blank != tt.wantBlank {
				t.Errorf("blank = %d, want %d", blank, tt.wantBlank)
			}
		})
	}
}

func TestPreview_CountsBlankLines(t *testing.T) {
	t.Parallel()

	path := writeShiftJIS(t, t.TempDir(), "m.csv", "a,1,s\n\nb,2,t\n\n\nc\n")

	result, err := Preview(path)
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	if result.Dropped != 3 {
		t.Errorf("Dropped = %d, want 3", result.Dropped)
	}
	if !reflect.DeepEqual(result.Filenames, []string{"a", "b", "c"}) {
		t.Errorf("Filenames = %v, want [a b c]", result.Filenames)
	}
}

func TestRedact_MissingManifest(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing.csv")
	result, err := Redact(path)
	if err == nil {
		t.Fatal("Redact() error = nil, want error")
	}
	if result != nil {
		t.Errorf("Redact() result = %v, want nil", result)
	}

	var readErr *ReadError
	if !errors.As(err, &readErr) {
		t.Fatalf("error = %T, want *ReadError", err)
	}
	if readErr.Path != path {
		t.Errorf("Path = %q, want %q", readErr.Path, path)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Error("errors.Is(err, os.ErrNotExist) = false")
	}
}

func TestRedact_UndecodableManifest(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "bad.csv")
	if err := os.WriteFile(path, []byte("a.txt,x,\xfe\xff\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := Redact(path)
	var readErr *ReadError
	if !errors.As(err, &readErr) {
		t.Fatalf("error = %v, want *ReadError", err)
	}
	if readErr.Path != path {
		t.Errorf("Path = %q, want %q", readErr.Path, path)
	}
	if result != nil {
		t.Error("Redact() returned a result on read failure")
	}

	if _, err := os.Stat(OutputPathFor(path)); !os.IsNotExist(err) {
		t.Error("redacted manifest written despite read failure")
	}
}

func TestRedact_WriteFailureKeepsFilenames(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeShiftJIS(t, dir, "m.csv", "a.txt,x,secret1\nb.txt,y\n")

	// A directory at the output path makes the create fail.
	if err := os.Mkdir(OutputPathFor(path), 0o755); err != nil {
		t.Fatal(err)
	}

	result, err := Redact(path)
	var writeErr *WriteError
	if !errors.As(err, &writeErr) {
		t.Fatalf("error = %v, want *WriteError", err)
	}
	if result == nil {
		t.Fatal("Redact() result = nil, want filenames despite write failure")
	}
	if !reflect.DeepEqual(result.Filenames, []string{"a.txt", "b.txt"}) {
		t.Errorf("Filenames = %v", result.Filenames)
	}
}

func TestPreview_WritesNothing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeShiftJIS(t, dir, "m.csv", "a.txt,x,secret1,extra\n\nb.txt\n")

	result, err := Preview(path)
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	if !reflect.DeepEqual(result.Filenames, []string{"a.txt", "b.txt"}) {
		t.Errorf("Filenames = %v", result.Filenames)
	}
	if got := result.Rows[0]; len(got) != MaxColumns || got[SensitiveColumn] != digest.Hex("secret1") {
		t.Errorf("Rows[0] = %v", got)
	}
	if result.OutputPath != OutputPathFor(path) {
		t.Errorf("OutputPath = %q", result.OutputPath)
	}
	if _, err := os.Stat(OutputPathFor(path)); !os.IsNotExist(err) {
		t.Error("Preview() wrote the redacted manifest")
	}
}

func TestPreview_MissingManifest(t *testing.T) {
	t.Parallel()

	_, err := Preview(filepath.Join(t.TempDir(), "none.csv"))
	var readErr *ReadError
	if !errors.As(err, &readErr) {
		t.Fatalf("error = %v, want *ReadError", err)
	}
}

func TestEncode(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	rows := []Row{{"a.txt", "x, y", "h"}, {"b.txt"}}
	if err := Encode(&sb, rows); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	want := "a.txt,\"x, y\",h\nb.txt\n"
	if sb.String() != want {
		t.Errorf("Encode() = %q, want %q", sb.String(), want)
	}
}

func TestRow_Filename(t *testing.T) {
	t.Parallel()

	if got := (Row{"a", "b"}).Filename(); got != "a" {
		t.Errorf("Filename() = %q, want a", got)
	}
	if got := (Row{}).Filename(); got != "" {
		t.Errorf("Filename() = %q, want empty", got)
	}
}
