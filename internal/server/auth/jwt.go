// Package auth implements the signed-token codec for the session protocol.
// Access and refresh tokens are two explicitly-typed kinds: each gets its own
// Signer with its own HMAC secret and lifetime, selected by call site.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dkotenko/authflow/internal/common"
)

// Claims carries the registered claims plus the account email. Subject is the
// account ID.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// Signer signs and verifies one token kind (HS256).
type Signer struct {
	secret   []byte
	validity time.Duration
}

// NewSigner returns a Signer for one token kind with its own secret and TTL.
func NewSigner(secret string, validity time.Duration) *Signer {
	return &Signer{secret: []byte(secret), validity: validity}
}

// Sign mints a token for the account with expiry now+TTL.
func (s *Signer) Sign(accountID, email string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.validity)),
		},
		Email: email,
	})

	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return tokenString, nil
}

// Verify checks signature and expiry and returns the claims. Any parse or
// validation failure maps to common.ErrInvalidToken.
func (s *Signer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, errors.Join(common.ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

// Validity is the configured lifetime of tokens minted by this Signer.
func (s *Signer) Validity() time.Duration {
	return s.validity
}
