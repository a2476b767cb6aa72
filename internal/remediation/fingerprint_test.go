package remediation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint(t *testing.T) {
	first := Fingerprint("https://example.com/page", "/page.html")
	second := Fingerprint("https://example.com/page", "/page.html")

	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
}

func TestFingerprintDistinguishesInputs(t *testing.T) {
	base := Fingerprint("https://example.com/page", "/page.html")

	assert.NotEqual(t, base, Fingerprint("https://example.com/other", "/page.html"))
	assert.NotEqual(t, base, Fingerprint("https://example.com/page", "/other.html"))
}

func TestFingerprintSeparatorIsUnambiguous(t *testing.T) {
	// Shifting characters across the url/source boundary must change
	// the fingerprint.
	assert.NotEqual(t, Fingerprint("a|b", "c"), Fingerprint("a", "b|c"))
}
