package remediation

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint derives the stable grouping key for a suggestion from its
// page URL and source document. Suggestions sharing both values always
// land in the same remediation unit.
func Fingerprint(url, source string) string {
	sum := sha256.Sum256([]byte(url + "|" + source))
	return hex.EncodeToString(sum[:])
}
