package sumsub

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"strings"
)

// Webhook digest header names.
const (
	HeaderDigestAlg = "x-payload-digest-alg"
	HeaderDigest    = "x-payload-digest"
)

var (
	ErrUnsupportedDigestAlg = errors.New("unsupported payload digest algorithm")
	ErrDigestMismatch       = errors.New("payload digest mismatch")
)

// ComputeDigest returns the hex HMAC digest of body for one of the three
// supported webhook algorithms.
func ComputeDigest(alg string, secret, body []byte) (string, error) {
	var newHash func() hash.Hash
	switch strings.ToUpper(alg) {
	case "HMAC_SHA1_HEX":
		newHash = sha1.New
	case "HMAC_SHA256_HEX":
		newHash = sha256.New
	case "HMAC_SHA512_HEX":
		newHash = sha512.New
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedDigestAlg, alg)
	}

	mac := hmac.New(newHash, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// VerifyDigest recomputes the digest over the raw request body and compares
// it to the received header value in constant time.
func VerifyDigest(alg, digest string, secret, body []byte) error {
	computed, err := ComputeDigest(alg, secret, body)
	if err != nil {
		return err
	}
	if !hmac.Equal([]byte(computed), []byte(strings.ToLower(digest))) {
		return ErrDigestMismatch
	}
	return nil
}
