package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordMismatch is returned when a password does not match its hash.
var ErrPasswordMismatch = errors.New("password does not match")

// PasswordVerifier defines the interface for comparing a plaintext password
// against a stored hash.
type PasswordVerifier interface {
	// Compare checks whether password matches hashedPassword.
	// Returns nil on match, ErrPasswordMismatch on mismatch, and a wrapped
	// error for any other failure (e.g. malformed hash).
	Compare(ctx context.Context, hashedPassword, password string) error
}

// BcryptVerifier implements PasswordVerifier using bcrypt.
type BcryptVerifier struct{}

// NewBcryptVerifier creates a new BcryptVerifier.
func NewBcryptVerifier() *BcryptVerifier {
	return &BcryptVerifier{}
}

var _ PasswordVerifier = (*BcryptVerifier)(nil)

// Compare checks a plaintext password against a bcrypt hash.
func (v *BcryptVerifier) Compare(_ context.Context, hashedPassword, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrPasswordMismatch
		}
		return fmt.Errorf("failed to compare password hash: %w", err)
	}
	return nil
}
