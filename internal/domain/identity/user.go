package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// PermissionAll grants every action on every entity
const PermissionAll = "ALL_FUNCTIONS"

// PermissionAllRead grants every READ_ action
const PermissionAllRead = "ALL_FUNCTIONS_READ"

// Password cost for bcrypt
const bcryptCost = 12

var (
	usernamePattern   = regexp.MustCompile(`^[a-zA-Z0-9_\-.]+$`)
	permissionPattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)
	hasLetter         = regexp.MustCompile(`[a-zA-Z]`)
	hasNumber         = regexp.MustCompile(`[0-9]`)
)

// AppUser is a back-office user. Permissions are ALL_FUNCTIONS or
// <ACTION>_<ENTITY> codes such as CREATE_LOAN.
type AppUser struct {
	shared.TenantAggregateRoot
	Username       string
	PasswordHash   string
	Firstname      string
	Lastname       string
	Email          string
	OfficeID       uuid.UUID
	StaffID        *uuid.UUID
	Permissions    []string
	Enabled        bool
	LastLoginAt    *time.Time
	FailedAttempts int
	LockedUntil    *time.Time
}

// NewAppUser creates an enabled user
func NewAppUser(tenantID, officeID uuid.UUID, username, password string, permissions []string) (*AppUser, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if officeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OFFICE", "Office is required")
	}
	u := &AppUser{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Username:            strings.ToLower(strings.TrimSpace(username)),
		OfficeID:            officeID,
		Enabled:             true,
	}
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}
	if err := u.SetPermissions(permissions); err != nil {
		return nil, err
	}
	u.Version = 1
	return u, nil
}

// SetPassword replaces the password hash
func (u *AppUser) SetPassword(password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	u.PasswordHash = string(hash)
	u.Touch()
	u.IncrementVersion()
	return nil
}

// VerifyPassword checks password against the stored hash
func (u *AppUser) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// SetPermissions replaces the permission codes, deduplicated
func (u *AppUser) SetPermissions(permissions []string) error {
	seen := make(map[string]bool, len(permissions))
	out := make([]string, 0, len(permissions))
	for _, p := range permissions {
		p = strings.ToUpper(strings.TrimSpace(p))
		if !permissionPattern.MatchString(p) {
			return shared.NewDomainError("INVALID_PERMISSION", "Invalid permission code: "+p)
		}
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	u.Permissions = out
	u.Touch()
	return nil
}

// HasPermission reports whether the user may perform action on entity
func (u *AppUser) HasPermission(action, entity string) bool {
	code := strings.ToUpper(action + "_" + entity)
	for _, p := range u.Permissions {
		switch {
		case p == PermissionAll, p == code:
			return true
		case p == PermissionAllRead && strings.EqualFold(action, "READ"):
			return true
		}
	}
	return false
}

// DisplayName returns the full name, or the username when unnamed
func (u *AppUser) DisplayName() string {
	name := strings.TrimSpace(u.Firstname + " " + u.Lastname)
	if name == "" {
		return u.Username
	}
	return name
}

// Disable prevents further logins
func (u *AppUser) Disable() {
	u.Enabled = false
	u.Touch()
	u.IncrementVersion()
}

// Enable re-allows logins and clears any lock
func (u *AppUser) Enable() {
	u.Enabled = true
	u.FailedAttempts = 0
	u.LockedUntil = nil
	u.Touch()
	u.IncrementVersion()
}

// IsLocked reports whether a lock from failed logins is still in force
func (u *AppUser) IsLocked() bool {
	return u.LockedUntil != nil && time.Now().Before(*u.LockedUntil)
}

// CanLogin returns true if the user is enabled and not locked
func (u *AppUser) CanLogin() bool {
	return u.Enabled && !u.IsLocked()
}

// RecordLoginSuccess records a successful login
func (u *AppUser) RecordLoginSuccess() {
	now := time.Now()
	u.LastLoginAt = &now
	u.FailedAttempts = 0
	u.LockedUntil = nil
	u.Touch()
}

// RecordLoginFailure records a failed login attempt
// Returns true if the account got locked
func (u *AppUser) RecordLoginFailure(maxAttempts int, lockDuration time.Duration) bool {
	u.FailedAttempts++
	u.Touch()
	if maxAttempts > 0 && u.FailedAttempts >= maxAttempts {
		until := time.Now().Add(lockDuration)
		u.LockedUntil = &until
		u.FailedAttempts = 0
		return true
	}
	return false
}

func validateUsername(username string) error {
	username = strings.TrimSpace(username)
	if len(username) < 3 || len(username) > 100 {
		return shared.NewDomainError("INVALID_USERNAME", "Username must be 3 to 100 characters")
	}
	if !usernamePattern.MatchString(username) {
		return shared.NewDomainError("INVALID_USERNAME", "Username can only contain letters, numbers, underscores, hyphens, and dots")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 72 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	if !hasLetter.MatchString(password) || !hasNumber.MatchString(password) {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must contain at least one letter and one number")
	}
	return nil
}
