package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// Random bytes per token kind, before encoding.
const (
	refreshTokenBytes = 32
	resetTokenBytes   = 24
)

func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// NewRefreshToken returns an opaque token for the refresh rotation flow.
func NewRefreshToken() (string, error) {
	return randomToken(refreshTokenBytes)
}

// NewResetToken returns the opaque token embedded in password reset links.
func NewResetToken() (string, error) {
	return randomToken(resetTokenBytes)
}
