// Package cryptox implements the credential-hashing primitives used by the
// auth flow: slow salted password hashes and refresh-token hashes, both
// verified through bcrypt's own comparator.
package cryptox

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes and verifies passwords and refresh tokens with bcrypt.
// The zero value is not usable; construct with NewHasher.
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher with the given bcrypt cost factor.
func NewHasher(cost int) (*Hasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &Hasher{cost: cost}, nil
}

// HashPassword returns the bcrypt hash of the plaintext password.
func (h *Hasher) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored bcrypt hash.
func (h *Hasher) CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// HashToken returns the bcrypt hash of an opaque token. The token is reduced
// to a sha256 digest first: bcrypt only consumes the first 72 bytes of its
// input, and two JWTs minted for the same subject share a far longer common
// prefix than that.
func (h *Hasher) HashToken(token string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(tokenDigest(token), h.cost)
	if err != nil {
		return "", fmt.Errorf("hashing token: %w", err)
	}
	return string(hash), nil
}

// CheckToken reports whether token matches the stored bcrypt hash.
func (h *Hasher) CheckToken(token, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), tokenDigest(token)) == nil
}

func tokenDigest(token string) []byte {
	sum := sha256.Sum256([]byte(token))
	digest := make([]byte, base64.RawStdEncoding.EncodedLen(len(sum)))
	base64.RawStdEncoding.Encode(digest, sum[:])
	return digest
}
