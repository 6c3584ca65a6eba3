package api

import (
	"time"

	"github.com/google/uuid"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Name     string `json:"name"     validate:"required,min=1,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// UserID is the unique identifier for the authenticated user
	UserID uuid.UUID `json:"user_id"`

	// Name is the user's display name
	Name string `json:"name"`

	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"token"`

	// RefreshToken is the JWT token used to obtain new access tokens
	RefreshToken string `json:"refresh_token,omitempty"`

	// ExpiresAt is the ISO 8601 timestamp when the access token expires
	ExpiresAt string `json:"expires_at,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token
// refresh endpoint.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    string `json:"expires_at"`
}

// TaskRequest defines the payload for task create and update endpoints.
// An omitted priority defaults to medium; duration is in hours.
type TaskRequest struct {
	Name         string      `json:"name"         validate:"required,min=1,max=200"`
	Description  string      `json:"description"  validate:"max=2000"`
	Priority     string      `json:"priority"     validate:"omitempty,oneof=high medium low"`
	Deadline     time.Time   `json:"deadline"     validate:"required"`
	Duration     float64     `json:"duration"     validate:"required,gte=0.5,lte=24"`
	Category     string      `json:"category"     validate:"max=100"`
	Dependencies []uuid.UUID `json:"dependencies"`
	Tags         []string    `json:"tags"         validate:"max=20,dive,min=1,max=50"`
	ReminderAt   *time.Time  `json:"reminder_at"`
}

// TaskStatusRequest defines the payload for the completion toggle endpoint.
// Completed is a pointer so an absent field fails validation instead of
// silently reading as false.
type TaskStatusRequest struct {
	Completed *bool `json:"completed" validate:"required"`
}

// SuggestionRequest defines the payload for the task suggestion endpoint.
type SuggestionRequest struct {
	Name string `json:"name" validate:"required,min=1,max=200"`
}

// CategoriesResponse wraps the distinct category list.
type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

// TagsResponse wraps the distinct tag list.
type TagsResponse struct {
	Tags []string `json:"tags"`
}
