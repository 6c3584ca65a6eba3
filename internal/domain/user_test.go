package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	user, err := NewUser("Ada Lovelace", "Ada@Example.COM", "securepassword")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if user.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	if user.Email != "ada@example.com" {
		t.Errorf("Expected lowercased email, got %q", user.Email)
	}

	if user.CreatedAt.IsZero() || user.UpdatedAt.IsZero() {
		t.Error("Expected non-zero timestamps")
	}

	// Empty name
	_, err = NewUser("", "ada@example.com", "securepassword")
	if err != ErrEmptyName {
		t.Errorf("Expected error %v, got %v", ErrEmptyName, err)
	}

	// Malformed email
	_, err = NewUser("Ada", "not-an-email", "securepassword")
	if err != ErrInvalidEmail {
		t.Errorf("Expected error %v, got %v", ErrInvalidEmail, err)
	}

	// Password too short
	_, err = NewUser("Ada", "ada@example.com", "short")
	if err != ErrPasswordTooShort {
		t.Errorf("Expected error %v, got %v", ErrPasswordTooShort, err)
	}
}

func TestUserValidateExisting(t *testing.T) {
	t.Parallel()

	// A user loaded from the store has no plaintext password, only a hash.
	user := User{
		ID:             uuid.New(),
		Name:           "Ada Lovelace",
		Email:          "ada@example.com",
		HashedPassword: "$2a$10$abcdefghijklmnopqrstuv",
	}

	if err := user.Validate(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	user.HashedPassword = ""
	if err := user.Validate(); err != ErrEmptyPassword {
		t.Errorf("Expected error %v, got %v", ErrEmptyPassword, err)
	}
}

func TestValidateEmailFormat(t *testing.T) {
	t.Parallel()

	valid := []string{"a@b.co", "user.name@example.com", "x@sub.domain.org"}
	for _, email := range valid {
		if !validateEmailFormat(email) {
			t.Errorf("Expected %q to be valid", email)
		}
	}

	invalid := []string{"", "plain", "@example.com", "user@", "user@.com", "user@com", "user@example."}
	for _, email := range invalid {
		if validateEmailFormat(email) {
			t.Errorf("Expected %q to be invalid", email)
		}
	}
}
