package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNoVerificationKey = errors.New("no token verification key configured")

// Claims are the identity claims the API reads from a verified token
type Claims struct {
	Subject   string
	Email     string
	FirstName string
	LastName  string
	UserName  string
}

// Verifier checks HS256 tokens against a shared secret and RS256 tokens
// against a JWKS provider.
type Verifier struct {
	secret []byte
	jwks   *Provider
}

// NewVerifier accepts an empty secret or a nil provider to disable that algorithm family
func NewVerifier(secret string, jwks *Provider) *Verifier {
	v := &Verifier{jwks: jwks}
	if secret != "" {
		v.secret = []byte(secret)
	}
	return v
}

func (v *Verifier) keyFunc(token *jwt.Token) (interface{}, error) {
	switch token.Method.(type) {
	case *jwt.SigningMethodHMAC:
		if v.secret == nil {
			return nil, fmt.Errorf("HS256 token received: %w", ErrNoVerificationKey)
		}
		return v.secret, nil
	case *jwt.SigningMethodRSA:
		if v.jwks == nil {
			return nil, fmt.Errorf("RS256 token received: %w", ErrNoVerificationKey)
		}
		return v.jwks.KeyFunc(token)
	default:
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
}

// Verify parses and validates a token and extracts its identity claims
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, v.keyFunc,
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512", "RS256", "RS384", "RS512"}),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token is invalid")
	}

	sub, _ := claims.GetSubject()
	if sub == "" {
		return nil, errors.New("token has no subject")
	}

	meta, _ := claims["user_metadata"].(map[string]interface{})
	return &Claims{
		Subject:   sub,
		Email:     claimString(claims, meta, "email"),
		FirstName: claimString(claims, meta, "first_name", "given_name", "firstName"),
		LastName:  claimString(claims, meta, "last_name", "family_name", "lastName"),
		UserName:  claimString(claims, meta, "username", "preferred_username", "userName"),
	}, nil
}

// claimString returns the first non-empty string among names, checking the
// top-level claims before user_metadata.
func claimString(claims jwt.MapClaims, meta map[string]interface{}, names ...string) string {
	for _, source := range []map[string]interface{}{claims, meta} {
		for _, name := range names {
			if s, ok := source[name].(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}
