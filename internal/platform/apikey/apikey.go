// Package apikey generates and verifies the admin API keys that gate
// operational endpoints. Only bcrypt hashes are configured on the server;
// plaintext keys exist on the operator's side alone.
package apikey

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	dErrors "labfhir/pkg/domain-errors"
)

// Generate creates a cryptographically secure random key, base64-encoded.
// Meant for operator tooling; the server only ever sees hashes.
func Generate() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("could not generate api key: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Hash creates a bcrypt hash of the provided key for configuration storage.
func Hash(key string) (string, error) {
	if key == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "api key cannot be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", dErrors.New(dErrors.CodeInvalidInput, "api key is too long")
		}
		return "", fmt.Errorf("could not hash api key: %w", err)
	}
	return string(hashed), nil
}

// Verifier checks presented keys against a configured set of bcrypt hashes.
// Multiple hashes allow key rotation without downtime.
type Verifier struct {
	hashes []string
}

func NewVerifier(hashes []string) *Verifier {
	return &Verifier{hashes: hashes}
}

// Verify reports whether the key matches any configured hash.
func (v *Verifier) Verify(key string) bool {
	if key == "" {
		return false
	}
	for _, hash := range v.hashes {
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) == nil {
			return true
		}
	}
	return false
}
