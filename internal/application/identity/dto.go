package identity

import (
	"time"

	"github.com/fincore/backend/internal/domain/identity"
	"github.com/fincore/backend/internal/infrastructure/auth"
	"github.com/google/uuid"
)

// LoginInput carries the credentials typed at the back-office login screen
type LoginInput struct {
	Username string
	Password string
}

// LoginResult is the opened session and who it belongs to
type LoginResult struct {
	auth.TokenPair
	User UserInfo
}

// UserInfo is the public view of an app user
type UserInfo struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	OfficeID    uuid.UUID
	StaffID     *uuid.UUID
	Username    string
	DisplayName string
	Email       string
	Permissions []string
	LastLoginAt *time.Time
}

func toUserInfo(u *identity.AppUser) UserInfo {
	return UserInfo{
		ID:          u.ID,
		TenantID:    u.TenantID,
		OfficeID:    u.OfficeID,
		StaffID:     u.StaffID,
		Username:    u.Username,
		DisplayName: u.DisplayName(),
		Email:       u.Email,
		Permissions: u.Permissions,
		LastLoginAt: u.LastLoginAt,
	}
}

// RefreshTokenInput names the refresh token to exchange
type RefreshTokenInput struct {
	RefreshToken string
}

// LogoutInput identifies the session being closed
type LogoutInput struct {
	UserID       uuid.UUID
	TenantID     uuid.UUID
	TokenJTI     string        // access token ID to revoke
	TokenTTL     time.Duration // remaining lifetime of the access token
	RefreshToken string        // optional, revoked too when present
}

// ChangePasswordInput requires the current password next to the new one
type ChangePasswordInput struct {
	TenantID    uuid.UUID
	UserID      uuid.UUID
	OldPassword string
	NewPassword string
}

// CreateUserInput holds the attributes of a new app user
type CreateUserInput struct {
	Username    string
	Password    string
	Firstname   string
	Lastname    string
	Email       string
	OfficeID    uuid.UUID
	StaffID     *uuid.UUID
	Permissions []string
}
