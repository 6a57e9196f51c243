package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

// SignedURLSigner creates and validates signed download tokens for stored
// objects. Tokens are bound to one key and carry no expiry: the signed URL is
// the durable reference persisted with a profile. Rotating the secret revokes
// every issued token.
type SignedURLSigner struct {
	secret []byte
}

// NewSignedURLSigner constructs a signer with the provided secret.
func NewSignedURLSigner(secret string) *SignedURLSigner {
	return &SignedURLSigner{secret: []byte(secret)}
}

// Generate returns a signed token referencing the object key.
func (s *SignedURLSigner) Generate(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("object key required")
	}
	if len(s.secret) == 0 {
		return "", fmt.Errorf("signing secret missing")
	}
	encodedKey := base64.RawURLEncoding.EncodeToString([]byte(key))
	return encodedKey + "." + s.sign(encodedKey), nil
}

// Parse validates a token and returns the embedded object key.
func (s *SignedURLSigner) Parse(token string) (string, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid token format")
	}
	encodedKey, signature := parts[0], parts[1]

	rawKey, err := base64.RawURLEncoding.DecodeString(encodedKey)
	if err != nil {
		return "", fmt.Errorf("decode key: %w", err)
	}
	if len(s.secret) == 0 || !hmac.Equal([]byte(s.sign(encodedKey)), []byte(signature)) {
		return "", fmt.Errorf("invalid token signature")
	}
	return string(rawKey), nil
}

func (s *SignedURLSigner) sign(encodedKey string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(encodedKey))
	return hex.EncodeToString(mac.Sum(nil))
}
