package mocks

import (
	"context"

	"github.com/planora/planora-api/internal/service/auth"
)

// MockPasswordVerifier implements auth.PasswordVerifier for testing.
type MockPasswordVerifier struct {
	CompareFn func(ctx context.Context, hashedPassword, password string) error

	// Err is returned by the default implementation; nil means match.
	Err error
}

var _ auth.PasswordVerifier = (*MockPasswordVerifier)(nil)

// Compare implements the auth.PasswordVerifier interface.
func (m *MockPasswordVerifier) Compare(ctx context.Context, hashedPassword, password string) error {
	if m.CompareFn != nil {
		return m.CompareFn(ctx, hashedPassword, password)
	}
	return m.Err
}
