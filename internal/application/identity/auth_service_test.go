package identity

import (
	"context"
	"testing"
	"time"

	"github.com/fincore/backend/internal/domain/identity"
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/fincore/backend/internal/infrastructure/auth"
	"github.com/fincore/backend/internal/infrastructure/config"
	"github.com/fincore/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "test",
		MaxRefreshCount:        3,
	})
}

func newTestUser(t *testing.T, tenantID uuid.UUID) *identity.AppUser {
	t.Helper()
	user, err := identity.NewAppUser(tenantID, uuid.New(), "teller1", "passw0rd!", []string{"READ_LOAN", "REPAYMENT_LOAN"})
	require.NoError(t, err)
	return user
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, code, de.Code)
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("issues tokens carrying the office", func(t *testing.T) {
		repo := new(testutil.MockUserRepository)
		user := newTestUser(t, tenantID)
		jwtSvc := newTestJWTService()
		repo.On("FindByUsername", ctx, tenantID, "teller1").Return(user, nil)
		repo.On("Save", ctx, user).Return(nil).Once()

		svc := NewAuthService(repo, jwtSvc, nil, DefaultAuthServiceConfig(), nil)
		result, err := svc.Login(ctx, tenantID, LoginInput{Username: "teller1", Password: "passw0rd!"})

		require.NoError(t, err)
		assert.Equal(t, "Bearer", result.TokenType)
		assert.Equal(t, user.OfficeID, result.User.OfficeID)
		assert.NotNil(t, user.LastLoginAt)

		claims, err := jwtSvc.ValidateAccessToken(result.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.OfficeID.String(), claims.OfficeID)
		assert.True(t, claims.HasPermission("REPAYMENT_LOAN"))
		repo.AssertExpectations(t)
	})

	t.Run("unknown user", func(t *testing.T) {
		repo := new(testutil.MockUserRepository)
		repo.On("FindByUsername", ctx, tenantID, "ghost").Return(nil, shared.NotFound("AppUser"))

		svc := NewAuthService(repo, newTestJWTService(), nil, DefaultAuthServiceConfig(), nil)
		_, err := svc.Login(ctx, tenantID, LoginInput{Username: "ghost", Password: "x"})

		assertCode(t, err, "INVALID_CREDENTIALS")
	})

	t.Run("wrong password locks after the limit", func(t *testing.T) {
		repo := new(testutil.MockUserRepository)
		user := newTestUser(t, tenantID)
		repo.On("FindByUsername", ctx, tenantID, "teller1").Return(user, nil)
		repo.On("Save", ctx, user).Return(nil)

		svc := NewAuthService(repo, newTestJWTService(), nil, AuthServiceConfig{MaxLoginAttempts: 2, LockDuration: time.Minute}, nil)
		_, err := svc.Login(ctx, tenantID, LoginInput{Username: "teller1", Password: "wrong1234"})
		assertCode(t, err, "INVALID_CREDENTIALS")

		_, err = svc.Login(ctx, tenantID, LoginInput{Username: "teller1", Password: "wrong1234"})
		assertCode(t, err, "ACCOUNT_LOCKED")

		_, err = svc.Login(ctx, tenantID, LoginInput{Username: "teller1", Password: "passw0rd!"})
		assertCode(t, err, "ACCOUNT_LOCKED")
	})

	t.Run("disabled user", func(t *testing.T) {
		repo := new(testutil.MockUserRepository)
		user := newTestUser(t, tenantID)
		user.Disable()
		repo.On("FindByUsername", ctx, tenantID, "teller1").Return(user, nil)

		svc := NewAuthService(repo, newTestJWTService(), nil, DefaultAuthServiceConfig(), nil)
		_, err := svc.Login(ctx, tenantID, LoginInput{Username: "teller1", Password: "passw0rd!"})

		assertCode(t, err, "ACCOUNT_DISABLED")
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestAuthService_RefreshAndLogout(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	repo := new(testutil.MockUserRepository)
	user := newTestUser(t, tenantID)
	jwtSvc := newTestJWTService()
	blacklist := auth.NewInMemoryTokenBlacklist()
	repo.On("FindByUsername", ctx, tenantID, "teller1").Return(user, nil)
	repo.On("FindByIDForTenant", ctx, tenantID, user.ID).Return(user, nil)
	repo.On("Save", ctx, user).Return(nil)
	svc := NewAuthService(repo, jwtSvc, blacklist, DefaultAuthServiceConfig(), nil)

	login, err := svc.Login(ctx, tenantID, LoginInput{Username: "teller1", Password: "passw0rd!"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(ctx, RefreshTokenInput{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	t.Run("refresh tokens are single use", func(t *testing.T) {
		_, err := svc.RefreshToken(ctx, RefreshTokenInput{RefreshToken: login.RefreshToken})
		assertCode(t, err, "TOKEN_REVOKED")
	})

	t.Run("logout revokes both tokens", func(t *testing.T) {
		claims, err := jwtSvc.ValidateAccessToken(refreshed.AccessToken)
		require.NoError(t, err)

		err = svc.Logout(ctx, LogoutInput{
			UserID:       user.ID,
			TenantID:     tenantID,
			TokenJTI:     claims.ID,
			TokenTTL:     claims.GetRemainingTTL(),
			RefreshToken: refreshed.RefreshToken,
		})
		require.NoError(t, err)

		revoked, err := blacklist.IsTokenRevoked(ctx, claims.ID)
		require.NoError(t, err)
		assert.True(t, revoked)

		_, err = svc.RefreshToken(ctx, RefreshTokenInput{RefreshToken: refreshed.RefreshToken})
		assertCode(t, err, "TOKEN_REVOKED")
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.RefreshToken(ctx, RefreshTokenInput{RefreshToken: "not-a-jwt"})
		assertCode(t, err, "TOKEN_INVALID")
	})
}

func TestAuthService_ChangePassword(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	repo := new(testutil.MockUserRepository)
	user := newTestUser(t, tenantID)
	repo.On("FindByIDForTenant", ctx, tenantID, user.ID).Return(user, nil)
	repo.On("Save", ctx, user).Return(nil).Once()
	svc := NewAuthService(repo, newTestJWTService(), nil, DefaultAuthServiceConfig(), nil)

	err := svc.ChangePassword(ctx, ChangePasswordInput{TenantID: tenantID, UserID: user.ID, OldPassword: "nope", NewPassword: "n3wpassword"})
	assertCode(t, err, "INVALID_PASSWORD")

	err = svc.ChangePassword(ctx, ChangePasswordInput{TenantID: tenantID, UserID: user.ID, OldPassword: "passw0rd!", NewPassword: "n3wpassword"})
	require.NoError(t, err)
	assert.True(t, user.VerifyPassword("n3wpassword"))
	repo.AssertExpectations(t)
}

func TestAuthService_ChangePasswordRevokesSessions(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	repo := new(testutil.MockUserRepository)
	user := newTestUser(t, tenantID)
	repo.On("FindByIDForTenant", ctx, tenantID, user.ID).Return(user, nil)
	repo.On("Save", ctx, user).Return(nil)
	blacklist := auth.NewInMemoryTokenBlacklist()
	svc := NewAuthService(repo, newTestJWTService(), blacklist, DefaultAuthServiceConfig(), nil)

	require.NoError(t, svc.ChangePassword(ctx, ChangePasswordInput{TenantID: tenantID, UserID: user.ID, OldPassword: "passw0rd!", NewPassword: "n3wpassword"}))

	revoked, err := blacklist.IsSessionRevoked(ctx, user.ID.String(), time.Now().Add(-time.Minute))
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestUserService_BootstrapAdmin(t *testing.T) {
	ctx := context.Background()
	tenantID, officeID := uuid.New(), uuid.New()

	repo := new(testutil.MockUserRepository)
	repo.On("ExistsByUsername", ctx, tenantID, DefaultAdminUsername).Return(false, nil).Twice()
	repo.On("Save", ctx, mock.MatchedBy(func(u *identity.AppUser) bool {
		return u.HasPermission("DISBURSE", "LOAN") && u.OfficeID == officeID
	})).Return(nil).Once()

	created, err := NewUserService(repo, nil).BootstrapAdmin(ctx, tenantID, officeID, "password1")
	require.NoError(t, err)
	assert.True(t, created)
	repo.AssertExpectations(t)

	again := new(testutil.MockUserRepository)
	again.On("ExistsByUsername", ctx, tenantID, DefaultAdminUsername).Return(true, nil)
	created, err = NewUserService(again, nil).BootstrapAdmin(ctx, tenantID, officeID, "password1")
	require.NoError(t, err)
	assert.False(t, created)
}
