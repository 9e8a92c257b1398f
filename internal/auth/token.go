// Package auth finds the bearer token sent to the todo service.
package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Makepad-fr/tada/internal/config"
)

// EnvVar overrides the stored token.
const EnvVar = "TADA_TOKEN"

const credFileName = "credentials.json"

// TokenInfo describes where the token came from.
type TokenInfo struct {
	Token     string     `json:"token"`
	Source    string     `json:"source"`     // "env" | "file"
	CreatedAt time.Time  `json:"created_at"` // when we saved to file
	ExpiresAt *time.Time `json:"expires_at"` // optional (JWT or server-provided)
}

func credFilePath() (string, error) {
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, credFileName), nil
}

// GetToken returns the token from the environment or the credentials
// file. No token is (nil, nil).
func GetToken() (*TokenInfo, error) {
	// 1) env override
	env := strings.TrimSpace(os.Getenv(EnvVar))
	if env != "" {
		return &TokenInfo{Token: stripBearer(env), Source: "env"}, nil
	}

	// 2) file
	p, err := credFilePath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil // not logged in
		}
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	var ti TokenInfo
	if err := json.Unmarshal(b, &ti); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	ti.Token = stripBearer(ti.Token)
	return &ti, nil
}

// Token is GetToken reduced to the token string; errors read as "none".
func Token() string {
	ti, err := GetToken()
	if err != nil || ti == nil {
		return ""
	}
	return ti.Token
}

// SetToken stores token in ~/.tada/credentials.json (0600). A JWT's exp
// claim is used when expires is nil.
func SetToken(token string, expires *time.Time) error {
	token = stripBearer(strings.TrimSpace(token))
	if token == "" {
		return fmt.Errorf("empty token")
	}
	dir, err := config.Dir()
	if err != nil {
		return err
	}
	// ensure ~/.tada exists with 0700
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	if expires == nil {
		expires = jwtExpiry(token)
	}
	ti := TokenInfo{
		Token:     token,
		Source:    "file",
		CreatedAt: time.Now(),
		ExpiresAt: expires,
	}
	b, err := json.MarshalIndent(ti, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	p := filepath.Join(dir, credFileName)
	// write with 0600 (owner-only)
	if err := os.WriteFile(p, b, 0o600); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// DeleteToken removes the credentials file; missing is fine.
func DeleteToken() error {
	p, err := credFilePath()
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}

// JWTPayload decodes the (unverified) payload of a JWT.
func JWTPayload(token string) (string, bool) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", false
	}
	p, err := decodeB64URL(parts[1])
	if err != nil {
		return "", false
	}
	return p, true
}

func jwtExpiry(token string) *time.Time {
	payload, ok := JWTPayload(token)
	if !ok {
		return nil
	}
	var claims struct {
		Exp int64 `json:"exp"`
	}
	if json.Unmarshal([]byte(payload), &claims) != nil || claims.Exp == 0 {
		return nil
	}
	t := time.Unix(claims.Exp, 0).UTC()
	return &t
}

func decodeB64URL(s string) (string, error) {
	dec, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
	if err != nil {
		return "", err
	}
	return string(dec), nil
}

func stripBearer(s string) string {
	if strings.HasPrefix(strings.ToLower(s), "bearer ") {
		return strings.TrimSpace(s[7:])
	}
	return s
}
