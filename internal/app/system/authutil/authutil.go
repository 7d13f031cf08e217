// Package authutil wraps password hashing and verification.
//
// All credential comparison goes through bcrypt, which is salted and
// constant-time, so a mismatch reveals nothing about the stored hash.
package authutil

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost for password and verification-code hashing.
const BcryptCost = 10

// MinPasswordLength enforced at registration.
const MinPasswordLength = 6

// HashPassword returns a bcrypt hash of the plaintext password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether the plaintext matches the stored hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
