package security

import (
	"crypto"
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when a token is malformed, expired, or signed
// for a different issuer/audience.
var ErrInvalidToken = errors.New("invalid token")

// AccessClaims holds the JWT claims of a platform access token. The subject is
// the user id; issuance happens in the platform's auth service, this backend
// only verifies.
type AccessClaims struct {
	jwt.RegisteredClaims
}

// Verifier validates RS256/ES256 access tokens against a public key.
type Verifier struct {
	publicKey crypto.PublicKey
	issuer    string
	audience  string
}

// NewVerifier returns a Verifier for the given public key, issuer, and audience.
func NewVerifier(publicKey crypto.PublicKey, issuer, audience string) *Verifier {
	return &Verifier{publicKey: publicKey, issuer: issuer, audience: audience}
}

// ValidateAccess parses and validates the access token (signature, exp, iss,
// aud) and returns the subject user id.
func (v *Verifier) ValidateAccess(tokenString string) (userID string, err error) {
	token, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		switch token.Method.(type) {
		case *jwt.SigningMethodRSA, *jwt.SigningMethodECDSA:
			return v.publicKey, nil
		}
		return nil, ErrInvalidToken
	})
	if err != nil {
		return "", ErrInvalidToken
	}
	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.Issuer != v.issuer {
		return "", ErrInvalidToken
	}
	audOk := false
	for _, a := range claims.Audience {
		if a == v.audience {
			audOk = true
			break
		}
	}
	if !audOk {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
