// Package auth issues and verifies the signed session token that gates the
// API, and checks the shared login password.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const tokenSeparator = "."

// ErrInvalidToken covers every way a token can be rejected: malformed,
// forged or expired. Callers must not be able to tell them apart.
var ErrInvalidToken = errors.New("invalid session token")

// SessionPayload is the signed body of a session token.
type SessionPayload struct {
	IssuedAt  int64 `json:"iat"`
	ExpiresAt int64 `json:"exp"`
}

// Remaining returns how long the session is still valid at now.
func (p SessionPayload) Remaining(now int64) time.Duration {
	if p.ExpiresAt <= now {
		return 0
	}
	return time.Duration(p.ExpiresAt-now) * time.Second
}

// Issue signs a payload valid from now for ttl.
func Issue(secret []byte, now int64, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("session secret is empty")
	}
	return Sign(SessionPayload{IssuedAt: now, ExpiresAt: now + int64(ttl/time.Second)}, secret)
}

// Sign encodes payload as base64url(json) "." base64url(hmac-sha256).
func Sign(payload SessionPayload, secret []byte) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode session payload: %w", err)
	}
	return encode(body) + tokenSeparator + encode(mac(secret, body)), nil
}

// Verify checks structure, signature and expiry of token at now.
func Verify(token string, secret []byte, now int64) (SessionPayload, error) {
	body64, sig64, ok := strings.Cut(token, tokenSeparator)
	if !ok || body64 == "" || sig64 == "" || strings.Contains(sig64, tokenSeparator) {
		return SessionPayload{}, ErrInvalidToken
	}

	body, err := decode(body64)
	if err != nil {
		return SessionPayload{}, ErrInvalidToken
	}
	given, err := decode(sig64)
	if err != nil {
		return SessionPayload{}, ErrInvalidToken
	}
	if !hmac.Equal(mac(secret, body), given) {
		return SessionPayload{}, ErrInvalidToken
	}

	var payload SessionPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return SessionPayload{}, ErrInvalidToken
	}
	if payload.ExpiresAt < now {
		return SessionPayload{}, ErrInvalidToken
	}
	return payload, nil
}

// CheckPassword compares the supplied login password with the shared one.
func CheckPassword(supplied, expected string) bool {
	if supplied == "" || expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(supplied), []byte(expected)) == 1
}

func mac(secret, body []byte) []byte {
	h := hmac.New(sha256.New, secret)
	h.Write(body)
	return h.Sum(nil)
}

func encode(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

// decode rejects padding and non-canonical trailing bits, so every
// accepted token has exactly one encoding.
func decode(s string) ([]byte, error) {
	return base64.RawURLEncoding.Strict().DecodeString(s)
}
