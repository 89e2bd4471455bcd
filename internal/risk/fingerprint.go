package risk

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Fingerprint returns a deterministic content hash of the canonical request.
// Struct marshaling fixes top-level field order, and encoding/json sorts map
// keys, so equal requests always hash the same.
func Fingerprint(req Request) string {
	b, err := json.Marshal(req)
	if err != nil {
		// Request contains only JSON-safe types; this cannot happen in
		// practice, but an empty key must never alias real entries.
		return ""
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
