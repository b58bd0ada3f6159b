package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint(t *testing.T) {
	a := Fingerprint("12345678901")
	b := Fingerprint("12345678901")
	c := Fingerprint("12345678902")

	assert.Len(t, a, 64)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotContains(t, a, "12345678901")
}

func TestFingerprint_Empty(t *testing.T) {
	assert.Empty(t, Fingerprint(""))
}
