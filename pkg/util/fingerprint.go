package util

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// Fingerprint returns a hex SHA3-256 digest of a sensitive value.
// Verification records store these instead of raw document numbers.
func Fingerprint(value string) string {
	if value == "" {
		return ""
	}
	sum := sha3.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
