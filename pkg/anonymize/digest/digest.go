// Package digest provides the one-way anonymization primitive shared by the
// manifest redactor and the file runner. The algorithm is fixed to SHA-256.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
)

// Size is the length in bytes of a raw digest.
const Size = sha256.Size

// HexSize is the length in characters of a hex-encoded digest.
const HexSize = 2 * Size

// Sum returns the raw SHA-256 digest of data. The result is always Size bytes.
func Sum(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

// Hex returns the lowercase hex SHA-256 digest of the UTF-8 bytes of text.
// The empty string is digested like any other value.
func Hex(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// IsHex reports whether s looks like a value produced by Hex.
func IsHex(s string) bool {
	if len(s) != HexSize {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
