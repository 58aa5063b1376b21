package utils

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
)

// GenerateToken returns the per-request unique token that names a job and
// its private temp-file namespace.
func GenerateToken() (string, error) {
	const tokenLength = 12
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	byteArray := make([]byte, tokenLength)
	_, err := rand.Read(byteArray)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, by := range byteArray {
		b.WriteByte(charset[int(by)%len(charset)])
	}

	token := b.String()
	if len(token) != tokenLength {
		return "", errors.New("failed to generate token of correct length")
	}
	return token, nil
}

// GenerateRandomHex returns n random bytes hex-encoded, used for
// credential access keys.
func GenerateRandomHex(n int) (string, error) {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
