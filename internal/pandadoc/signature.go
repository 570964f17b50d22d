package pandadoc

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// VerifySignature recomputes the HMAC-SHA256 digest of the exact raw request
// body and compares it, constant-time and case-insensitively, against the
// header-supplied hex signature. A missing secret fails closed; a malformed
// signature is a failed comparison, not an error.
func VerifySignature(payload []byte, signature, secret string) bool {
	if secret == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := mac.Sum(nil)

	supplied, err := hex.DecodeString(strings.ToLower(signature))
	if err != nil {
		return false
	}

	return hmac.Equal(supplied, expected)
}
