package identity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppUser(t *testing.T) {
	tenantID, officeID := uuid.New(), uuid.New()

	t.Run("creates user with valid username and password", func(t *testing.T) {
		user, err := NewAppUser(tenantID, officeID, "  Teller.One ", "Password123", []string{"create_loan", "READ_LOAN", "CREATE_LOAN"})
		require.NoError(t, err)
		assert.Equal(t, "teller.one", user.Username)
		assert.NotEqual(t, "Password123", user.PasswordHash)
		assert.True(t, user.VerifyPassword("Password123"))
		assert.False(t, user.VerifyPassword("password123"))
		assert.Equal(t, []string{"CREATE_LOAN", "READ_LOAN"}, user.Permissions)
		assert.True(t, user.CanLogin())
	})

	tests := []struct {
		name     string
		username string
		password string
		perms    []string
		contains string
	}{
		{"short username", "ab", "Password123", nil, "3 to 100"},
		{"bad characters", "test@user", "Password123", nil, "only contain letters"},
		{"short password", "testuser", "Pass1", nil, "at least 8"},
		{"password without digits", "testuser", "Passwordxx", nil, "one number"},
		{"bad permission", "testuser", "Password123", []string{"create loan"}, "Invalid permission"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAppUser(tenantID, officeID, tt.username, tt.password, tt.perms)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestAppUser_HasPermission(t *testing.T) {
	user, err := NewAppUser(uuid.New(), uuid.New(), "officer", "Password123", []string{"APPROVE_LOAN", PermissionAllRead})
	require.NoError(t, err)
	assert.True(t, user.HasPermission("APPROVE", "LOAN"))
	assert.True(t, user.HasPermission("read", "glaccount"))
	assert.False(t, user.HasPermission("DISBURSE", "LOAN"))

	require.NoError(t, user.SetPermissions([]string{PermissionAll}))
	assert.True(t, user.HasPermission("DISBURSE", "LOAN"))
}

func TestAppUser_LoginOperations(t *testing.T) {
	user, err := NewAppUser(uuid.New(), uuid.New(), "officer", "Password123", nil)
	require.NoError(t, err)

	assert.False(t, user.RecordLoginFailure(3, time.Minute))
	assert.False(t, user.RecordLoginFailure(3, time.Minute))
	assert.True(t, user.RecordLoginFailure(3, time.Minute))
	assert.True(t, user.IsLocked())
	assert.False(t, user.CanLogin())

	user.Enable()
	assert.True(t, user.CanLogin())
	user.RecordLoginSuccess()
	assert.NotNil(t, user.LastLoginAt)

	user.Disable()
	assert.False(t, user.CanLogin())
	assert.Equal(t, "officer", user.DisplayName())
}
