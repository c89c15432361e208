package types

import (
	"errors"
	"testing"
)

func TestParseSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "0", want: 0},
		{in: "1024", want: 1024},
		{in: "512B", want: 512},
		{in: "100K", want: 100 * KiB},
		{in: "10MB", want: 10 * MiB},
		{in: "10mib", want: 10 * MiB},
		{in: " 2G ", want: 2 * GiB},
		{in: "1.5M", want: MiB + MiB/2},
		{in: "", wantErr: true},
		{in: "-1", wantErr: true},
		{in: "10X", wantErr: true},
		{in: "MB", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParseSize(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidSize) {
					t.Errorf("ParseSize(%q) error = %v, want ErrInvalidSize", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSize(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseSize(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{32, "32 B"},
		{KiB, "1.0 KiB"},
		{MiB + MiB/2, "1.5 MiB"},
		{-5, "0 B"},
	}

	for _, tt := range tests {
		if got := FormatSize(tt.in); got != tt.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
