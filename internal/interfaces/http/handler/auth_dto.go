package handler

import (
	"time"

	"github.com/fincore/backend/internal/application/identity"
	"github.com/google/uuid"
)

// LoginRequest represents the request body for user login
type LoginRequest struct {
	Username string `json:"username" binding:"required,min=3,max=100"`
	Password string `json:"password" binding:"required,max=128"`
}

// RefreshTokenRequest represents the request body for token refresh
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutRequest optionally names the refresh token to revoke with the session
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ChangePasswordRequest represents the request body for password change
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=128"`
}

// CreateUserRequest creates an app user
type CreateUserRequest struct {
	Username    string     `json:"username" binding:"required,min=3,max=100"`
	Password    string     `json:"password" binding:"required,min=8,max=128"`
	Firstname   string     `json:"firstname" binding:"max=100"`
	Lastname    string     `json:"lastname" binding:"max=100"`
	Email       string     `json:"email" binding:"omitempty,email,max=100"`
	OfficeID    uuid.UUID  `json:"office_id" binding:"required"`
	StaffID     *uuid.UUID `json:"staff_id"`
	Permissions []string   `json:"permissions" binding:"required,min=1"`
}

// PermissionsRequest replaces the permission codes of a user
type PermissionsRequest struct {
	Permissions []string `json:"permissions" binding:"required,min=1"`
}

// TokenResponse represents the token data in auth responses
type TokenResponse struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// UserResponse represents an app user in API responses
type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	TenantID    uuid.UUID  `json:"tenant_id"`
	OfficeID    uuid.UUID  `json:"office_id"`
	StaffID     *uuid.UUID `json:"staff_id,omitempty"`
	Username    string     `json:"username"`
	DisplayName string     `json:"display_name"`
	Email       string     `json:"email,omitempty"`
	Permissions []string   `json:"permissions"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// LoginResponse represents the response body for successful login
type LoginResponse struct {
	Token TokenResponse `json:"token"`
	User  UserResponse  `json:"user"`
}

// RefreshTokenResponse represents the response body for successful token refresh
type RefreshTokenResponse struct {
	Token TokenResponse `json:"token"`
}

func toUserResponse(u identity.UserInfo) UserResponse {
	perms := u.Permissions
	if perms == nil {
		perms = []string{}
	}
	return UserResponse{
		ID:          u.ID,
		TenantID:    u.TenantID,
		OfficeID:    u.OfficeID,
		StaffID:     u.StaffID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Email:       u.Email,
		Permissions: perms,
		LastLoginAt: u.LastLoginAt,
	}
}
