package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStampsExpiry(t *testing.T) {
	before := time.Now()
	tok := New("abc", 30*time.Second)
	after := time.Now()

	assert.Equal(t, "abc", tok.Value)
	assert.Equal(t, 30*time.Second, tok.ExpiresIn)
	assert.Equal(t, tok.CreatedAt.Add(tok.ExpiresIn), tok.ExpiresAt)
	assert.False(t, tok.ExpiresAt.Before(before.Add(30*time.Second)))
	assert.False(t, tok.ExpiresAt.After(after.Add(30*time.Second)))
}

func TestExpired(t *testing.T) {
	assert.False(t, New("abc", time.Minute).Expired())
	assert.True(t, New("abc", -time.Second).Expired())
}

func TestRemainingTime(t *testing.T) {
	tok := New("abc", time.Minute)

	remaining := tok.RemainingTime(10 * time.Second)
	assert.Greater(t, remaining, 49*time.Second)
	assert.LessOrEqual(t, remaining, 50*time.Second)

	// Offset past the expiry means refresh immediately.
	assert.LessOrEqual(t, tok.RemainingTime(2*time.Minute), time.Duration(0))
}

func TestIsZero(t *testing.T) {
	assert.True(t, Token{}.IsZero())
	assert.False(t, New("abc", time.Minute).IsZero())
}

func TestNewFromJWT(t *testing.T) {
	expiry := time.Now().Add(5 * time.Minute).Truncate(time.Second)
	claims := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(expiry)}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tok, err := NewFromJWT(signed)
	require.NoError(t, err)
	assert.Equal(t, signed, tok.Value)
	assert.True(t, tok.ExpiresAt.Equal(expiry))
	assert.False(t, tok.Expired())
}

func TestNewFromJWT_Invalid(t *testing.T) {
	_, err := NewFromJWT("not-a-jwt")
	assert.Error(t, err)

	// Valid JWT but no exp claim.
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{}).
		SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = NewFromJWT(signed)
	assert.Error(t, err)
}
