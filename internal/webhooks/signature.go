// Package webhooks handles the two webhook directions: signed callbacks from
// the risk system inbound, and best-effort order lifecycle notifications
// outbound.
package webhooks

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"strings"
)

// VerifySignature checks an HMAC signature header of the form "<algo>=<hex>"
// against the raw request body. It fails closed: a missing secret, missing
// header, unknown algorithm, or malformed hex all return false. Callers must
// run this before parsing the body.
func VerifySignature(body []byte, header, secret string) bool {
	if secret == "" || header == "" {
		return false
	}

	algo, hexDigest, ok := strings.Cut(header, "=")
	if !ok || hexDigest == "" {
		return false
	}

	var newHash func() hash.Hash
	switch strings.ToLower(algo) {
	case "sha256":
		newHash = sha256.New
	case "sha1":
		newHash = sha1.New
	default:
		return false
	}

	provided, err := hex.DecodeString(hexDigest)
	if err != nil {
		return false
	}

	mac := hmac.New(newHash, []byte(secret))
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), provided)
}
