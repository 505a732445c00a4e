package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

const opaqueByteLength = 32

// NewOpaque generates a URL-safe opaque credential (refresh token or client
// secret) and the hex SHA-256 digest stored in its place.
func NewOpaque() (value, hash string, err error) {
	b := make([]byte, opaqueByteLength)
	if _, err := rand.Read(b); err != nil {
		return "", "", fmt.Errorf("generate opaque token: %w", err)
	}
	value = base64.RawURLEncoding.EncodeToString(b)
	return value, HashOpaque(value), nil
}

// HashOpaque returns the hex SHA-256 digest of an opaque credential.
func HashOpaque(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

// NewClientID generates a public OAuth client identifier with the
// conventional "client_" prefix.
func NewClientID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate client id: %w", err)
	}
	return "client_" + hex.EncodeToString(b)[:16], nil
}
