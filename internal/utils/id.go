package utils

import (
	"crypto/rand"
	"encoding/base64"
)

// GenerateSecureToken creates a URL-safe random token of length random
// bytes. Backup job ids are minted with it.
func GenerateSecureToken(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
