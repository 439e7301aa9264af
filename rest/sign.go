package rest

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

func signPayload(payload, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
