// Package token models the short-lived access credential issued by the
// rendering service and its proactive refresh lifecycle.
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token is a short-lived access credential with an expiry instant.
// Invariant: ExpiresAt == CreatedAt + ExpiresIn.
type Token struct {
	Value     string
	ExpiresIn time.Duration
	CreatedAt time.Time
	ExpiresAt time.Time
}

// New creates a token stamped with an expiry of now + expiresIn.
func New(value string, expiresIn time.Duration) Token {
	now := time.Now()
	return Token{
		Value:     value,
		ExpiresIn: expiresIn,
		CreatedAt: now,
		ExpiresAt: now.Add(expiresIn),
	}
}

// NewFromJWT creates a token whose expiry is read from the JWT exp claim.
// The signature is not verified; the client is not the token's verifier and
// only needs the expiry for refresh scheduling. Tokens without a readable
// exp claim produce an error.
func NewFromJWT(value string) (Token, error) {
	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(value, &claims); err != nil {
		return Token{}, fmt.Errorf("token: parse jwt: %w", err)
	}
	if claims.ExpiresAt == nil {
		return Token{}, fmt.Errorf("token: jwt has no exp claim")
	}
	now := time.Now()
	return Token{
		Value:     value,
		ExpiresIn: claims.ExpiresAt.Time.Sub(now),
		CreatedAt: now,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// IsZero reports whether the token is the zero value.
func (t Token) IsZero() bool {
	return t.Value == "" && t.ExpiresAt.IsZero()
}

// Expired reports whether the token's expiry has passed. The comparison is
// against the wall clock at call time, never a cached instant.
func (t Token) Expired() bool {
	return !time.Now().Before(t.ExpiresAt)
}

// RemainingTime returns how long until the token must be refreshed, where
// offset is subtracted from the expiry to leave headroom for the refresh
// round trip. A non-positive result means refresh immediately; callers must
// never arm a timer with a negative delay.
func (t Token) RemainingTime(offset time.Duration) time.Duration {
	return t.ExpiresAt.Add(-offset).Sub(time.Now())
}
