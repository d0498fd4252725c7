// internal/utils/signature.go
package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// ComputeHMAC returns the hex-encoded HMAC-SHA256 of the payload. Webhook
// signatures are computed over the raw request body, so callers must pass
// the bytes exactly as received.
func ComputeHMAC(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// SecureCompare reports whether two signatures match without leaking timing
// information about where they diverge.
func SecureCompare(a, b string) bool {
	return hmac.Equal([]byte(a), []byte(b))
}
