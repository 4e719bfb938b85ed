package auth_test

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go-profile-backend/pkg/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifierHS256(t *testing.T) {
	v := auth.NewVerifier("top-secret", nil)

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "user-1",
		"email": "ada@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
		"user_metadata": map[string]any{
			"first_name": "Ada",
			"last_name":  "Lovelace",
		},
	}).SignedString([]byte("top-secret"))
	require.NoError(t, err)

	claims, err := v.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, &auth.Claims{Subject: "user-1", Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace"}, claims)

	t.Run("Should reject a wrong secret", func(t *testing.T) {
		_, err := auth.NewVerifier("other", nil).Verify(signed)
		assert.Error(t, err)
	})

	t.Run("Should reject expired tokens", func(t *testing.T) {
		expired, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "user-1",
			"exp": time.Now().Add(-time.Minute).Unix(),
		}).SignedString([]byte("top-secret"))
		_, err := v.Verify(expired)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("Should reject tokens without subject", func(t *testing.T) {
		anon, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"email": "x@y.z"}).SignedString([]byte("top-secret"))
		_, err := v.Verify(anon)
		assert.Error(t, err)
	})

	t.Run("Should reject RS256 when no JWKS is configured", func(t *testing.T) {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		signed, _ := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{"sub": "u"}).SignedString(key)
		_, err = v.Verify(signed)
		assert.ErrorIs(t, err, auth.ErrNoVerificationKey)
	})
}

func TestVerifierRS256(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_ = json.NewEncoder(w).Encode(auth.JWKS{Keys: []auth.JSONWebKey{{
			Kid: "k1",
			Kty: "RSA",
			Alg: "RS256",
			N:   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
			E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
		}}})
	}))
	defer server.Close()

	v := auth.NewVerifier("", auth.NewProvider(server.URL))

	sign := func(kid string) string {
		tok := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
			"sub":                "user-2",
			"preferred_username": "grace",
		})
		tok.Header["kid"] = kid
		s, err := tok.SignedString(key)
		require.NoError(t, err)
		return s
	}

	claims, err := v.Verify(sign("k1"))
	require.NoError(t, err)
	assert.Equal(t, "user-2", claims.Subject)
	assert.Equal(t, "grace", claims.UserName)

	_, err = v.Verify(sign("k1"))
	require.NoError(t, err)
	assert.EqualValues(t, 1, hits.Load())

	_, err = v.Verify(sign("unknown"))
	assert.Error(t, err)
	assert.EqualValues(t, 1, hits.Load())
}
