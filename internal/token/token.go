// Package token mints and verifies the signed identity tokens used for login.
// Tokens bind an email and a validity window only; the holder's role is
// resolved fresh on every request because an admin can change it at any time
// after issuance.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenValidity is the fixed expiry horizon for issued tokens.
// Expiry is the only termination mechanism; tokens are never revoked
// individually.
const TokenValidity = 350 * 24 * time.Hour

var (
	// ErrInvalidToken covers absent, malformed, tampered, and expired tokens.
	// Callers answer 401 for all of these; distinguishing them would only
	// leak signature internals.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Claims carries the identity bound into a token. The email is the stable
// identifier; no role claim exists on purpose.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies identity tokens with a process-wide HMAC secret.
type Issuer struct {
	signingKey []byte
	issuer     string
}

// NewIssuer creates an Issuer. The signing key is configuration, loaded once
// at startup.
func NewIssuer(signingKey, issuer string) *Issuer {
	return &Issuer{
		signingKey: []byte(signingKey),
		issuer:     issuer,
	}
}

// Issue produces a signed token for the given email with the fixed validity
// window. No side effects beyond signing.
func (i *Issuer) Issue(email string) (string, error) {
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenValidity)),
			Issuer:    i.issuer,
			ID:        uuid.NewString(),
		},
	})

	return t.SignedString(i.signingKey)
}

// Verify validates signature and expiry and returns the resolved claims.
// It never rejects a structurally valid token for carrying an unknown
// identity; authorization decides that downstream.
func (i *Issuer) Verify(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return i.signingKey, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || claims.Email == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
