package supabase

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// KeyInfo is what the project key says about itself.
type KeyInfo struct {
	Role      string
	Ref       string
	ExpiresAt *time.Time
}

type keyClaims struct {
	Role string `json:"role"`
	Ref  string `json:"ref"`
	jwt.RegisteredClaims
}

// InspectKey decodes the claims of a Supabase API key without verifying the
// signature; the project secret is never available here.
func InspectKey(key string) (KeyInfo, error) {
	claims := &keyClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(key, claims); err != nil {
		return KeyInfo{}, fmt.Errorf("parse supabase key: %w", err)
	}
	if claims.Role == "" {
		return KeyInfo{}, errors.New("supabase key has no role claim")
	}
	info := KeyInfo{Role: claims.Role, Ref: claims.Ref}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time
		info.ExpiresAt = &exp
	}
	return info, nil
}

// Problems lists reasons the key should not be used by a public reader.
func (k KeyInfo) Problems(now time.Time) []string {
	var problems []string
	if k.Role == "service_role" {
		problems = append(problems, "service_role key bypasses row level security; use the anon key")
	}
	if k.ExpiresAt != nil && now.After(*k.ExpiresAt) {
		problems = append(problems, fmt.Sprintf("key expired at %s", k.ExpiresAt.Format(time.RFC3339)))
	}
	return problems
}
