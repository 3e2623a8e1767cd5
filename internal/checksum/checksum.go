package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Matches reports whether two hex digests refer to the same content.
// Servers are not consistent about hex casing, so the comparison is
// case-insensitive.
func Matches(a, b string) bool {
	return strings.EqualFold(a, b)
}
