package payment

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"strings"
)

// signHMACSHA512 returns the lowercase hex HMAC-SHA512 of body keyed by secret
func signHMACSHA512(body []byte, secret string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// validHMACSHA512 compares signature against the expected HMAC in constant time.
// An empty secret or signature never validates.
func validHMACSHA512(body []byte, signature, secret string) bool {
	signature = strings.ToLower(strings.TrimSpace(signature))
	if secret == "" || signature == "" {
		return false
	}
	expected := signHMACSHA512(body, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}
