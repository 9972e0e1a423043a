// Package digest derives content digests and record identifiers.
package digest

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"regexp"
)

// Size is the length of a hex encoded digest.
const Size = sha256.Size * 2

var digestRegex = regexp.MustCompile(`^[a-f0-9]{64}$`)

// Sum returns the lowercase hex SHA-256 of data.
func Sum(data []byte) string {
	sum := sha256.Sum256(data)

	return hex.EncodeToString(sum[:])
}

// Valid reports whether s is a lowercase hex SHA-256 digest.
func Valid(s string) bool {
	return digestRegex.MatchString(s)
}

// RecordID hashes fields in order. Every field is length prefixed so that
// ("ab", "c") and ("a", "bc") never collide.
func RecordID(fields ...string) string {
	h := sha256.New()

	var prefix [8]byte
	for _, f := range fields {
		binary.BigEndian.PutUint64(prefix[:], uint64(len(f)))
		_, _ = h.Write(prefix[:])
		_, _ = h.Write([]byte(f))
	}

	return hex.EncodeToString(h.Sum(nil))
}
