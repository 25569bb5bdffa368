package http

import (
	"time"

	"github.com/AlexandreFrancony/Bartending-Back/internal/domain"
)

// ErrorResponse represents a generic error payload.
type ErrorResponse struct {
	Error string `json:"error" example:"invalid credentials"`
}

// MessageResponse carries a human readable confirmation.
type MessageResponse struct {
	Message string `json:"message" example:"password updated"`
}

// UserResponse is the public representation of an account.
type UserResponse struct {
	ID        string    `json:"id" example:"9fd13fd2-63c5-4f29-a210-4a1a8e285f74"`
	Username  string    `json:"username" example:"alice"`
	Email     string    `json:"email" example:"alice@example.com"`
	Role      string    `json:"role" example:"user"`
	CreatedAt time.Time `json:"createdAt" example:"2024-01-01T12:00:00Z"`
	UpdatedAt time.Time `json:"updatedAt" example:"2024-01-02T09:30:00Z"`
}

// AuthTokenResponse is returned by endpoints that issue JWT tokens.
type AuthTokenResponse struct {
	User      UserResponse `json:"user"`
	Token     string       `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	ExpiresAt time.Time    `json:"expiresAt" example:"2024-01-08T09:30:00Z"`
}

// UserEnvelope wraps a user object.
type UserEnvelope struct {
	User UserResponse `json:"user"`
}

// AuthStatusResponse reports whether the caller presented a valid token.
type AuthStatusResponse struct {
	Authenticated bool          `json:"authenticated" example:"true"`
	User          *UserResponse `json:"user,omitempty"`
}

// UsersMeta describes pagination metadata for user listings.
type UsersMeta struct {
	Limit  int `json:"limit" example:"20"`
	Offset int `json:"offset" example:"0"`
	Count  int `json:"count" example:"2"`
}

// UsersListResponse is returned by the admin users listing.
type UsersListResponse struct {
	Users []UserResponse `json:"users"`
	Meta  UsersMeta      `json:"meta"`
}

// StatsResponse wraps account statistics.
type StatsResponse struct {
	Stats domain.UserStats `json:"stats"`
}

// RegisterRequest carries registration fields.
type RegisterRequest struct {
	Username string `json:"username" example:"alice"`
	Email    string `json:"email" example:"alice@example.com"`
	Password string `json:"password" example:"password1"`
}

// LoginRequest accepts a username or an email in Login.
type LoginRequest struct {
	Login    string `json:"login" example:"alice"`
	Password string `json:"password" example:"password1"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" example:"password1"`
	NewPassword     string `json:"newPassword" example:"password2"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" example:"alice@example.com"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" example:"5f2b...e9"`
	Password string `json:"password" example:"password2"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" example:"admin"`
}

func toUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID.String(),
		Username:  user.Username,
		Email:     user.Email,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
