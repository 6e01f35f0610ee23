package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// NewResetToken generates a cryptographically random URL-safe token
// suitable for embedding in a password-reset link. 32 bytes of entropy,
// encoded to 43 characters.
func NewResetToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
