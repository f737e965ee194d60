// Package checksum fingerprints source files so rebuild and index sync
// can skip unchanged content.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Short returns the first 12 hex characters of Sum(data), enough to
// tell files apart in logs and reports.
func Short(data []byte) string {
	s := Sum(data)
	return s[:12]
}
