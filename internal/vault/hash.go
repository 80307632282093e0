package vault

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// Hash returns the lowercase hex SHA-256 of content.
func Hash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Verify reports whether content hashes to expected. Hex case is ignored.
func Verify(content []byte, expected string) bool {
	actual := Hash(content)
	expected = strings.ToLower(strings.TrimSpace(expected))
	return subtle.ConstantTimeCompare([]byte(actual), []byte(expected)) == 1
}
