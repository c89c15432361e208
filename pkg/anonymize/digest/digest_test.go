package digest

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"
)

func TestSum(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input []byte
	}{
		{name: "hello", input: []byte("hello")},
		{name: "empty", input: []byte{}},
		{name: "binary", input: []byte{0x00, 0xff, 0x10, 0x80}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Sum(tt.input)
			if len(got) != Size {
				t.Fatalf("len(Sum()) = %d, want %d", len(got), Size)
			}

			want := sha256.Sum256(tt.input)
			if !bytes.Equal(got, want[:]) {
				t.Errorf("Sum() = %x, want %x", got, want)
			}

			if again := Sum(tt.input); !bytes.Equal(got, again) {
				t.Errorf("Sum() not deterministic: %x != %x", got, again)
			}
		})
	}
}

func TestSum_KnownValue(t *testing.T) {
	t.Parallel()

	want := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if got := hex.EncodeToString(Sum([]byte("hello"))); got != want {
		t.Errorf("Sum(hello) = %s, want %s", got, want)
	}
}

func TestSum_DistinctInputs(t *testing.T) {
	t.Parallel()

	a := Sum([]byte("secret1"))
	b := Sum([]byte("secret2"))
	if bytes.Equal(a, b) {
		t.Error("Sum() produced equal digests for distinct inputs")
	}
}

func TestSum_DigestOfDigest(t *testing.T) {
	t.Parallel()

	first := Sum([]byte("hello"))
	second := Sum(first)
	if bytes.Equal(first, second) {
		t.Error("digest of a digest should differ from the digest")
	}
	if len(second) != Size {
		t.Errorf("len = %d, want %d", len(second), Size)
	}
}

func TestHex(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "empty string",
			input: "",
			want:  "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
		{
			name:  "ascii",
			input: "hello",
			want:  "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Hex(tt.input)
			if got != tt.want {
				t.Errorf("Hex(%q) = %s, want %s", tt.input, got, tt.want)
			}
			if !IsHex(got) {
				t.Errorf("IsHex(%s) = false, want true", got)
			}
		})
	}
}

func TestHex_MatchesSum(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"secret1", "山田太郎", ""} {
		if got, want := Hex(s), hex.EncodeToString(Sum([]byte(s))); got != want {
			t.Errorf("Hex(%q) = %s, want %s", s, got, want)
		}
	}
}

func TestIsHex(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"valid", Hex("x"), true},
		{"too short", "abc", false},
		{"uppercase", strings.ToUpper(Hex("x")), false},
		{"non hex", strings.Repeat("g", HexSize), false},
		{"plaintext", "secret1", false},
	}

	for _, tt := range tests {
		if got := IsHex(tt.in); got != tt.want {
			t.Errorf("%s: IsHex(%q) = %v, want %v", tt.name, tt.in, got, tt.want)
		}
	}
}
