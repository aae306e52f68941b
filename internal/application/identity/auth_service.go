package identity

import (
	"context"
	"errors"
	"time"

	"github.com/fincore/backend/internal/domain/identity"
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/fincore/backend/internal/infrastructure/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthServiceConfig controls the login lockout
type AuthServiceConfig struct {
	MaxLoginAttempts int
	LockDuration     time.Duration
}

// DefaultAuthServiceConfig locks a user for 15 minutes after 5 bad passwords
func DefaultAuthServiceConfig() AuthServiceConfig {
	return AuthServiceConfig{
		MaxLoginAttempts: 5,
		LockDuration:     15 * time.Minute,
	}
}

var (
	errBadCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	errUserNotFound   = shared.NewDomainError("USER_NOT_FOUND", "User not found")
	errTokenRevoked   = shared.NewDomainError("TOKEN_REVOKED", "Refresh token has been revoked")
)

// AuthService opens, renews and closes back-office sessions
type AuthService struct {
	users     identity.UserRepository
	tokens    *auth.JWTService
	blacklist auth.TokenBlacklist
	config    AuthServiceConfig
	logger    *zap.Logger
}

// NewAuthService creates an AuthService. Without a blacklist, logout only
// ends the session client-side and refresh tokens can be replayed.
func NewAuthService(
	users identity.UserRepository,
	tokens *auth.JWTService,
	blacklist auth.TokenBlacklist,
	config AuthServiceConfig,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:     users,
		tokens:    tokens,
		blacklist: blacklist,
		config:    config,
		logger:    logger.Named("auth"),
	}
}

// Login checks the credentials of a tenant user and opens a session
func (s *AuthService) Login(ctx context.Context, tenantID uuid.UUID, input LoginInput) (*LoginResult, error) {
	log := s.logger.With(zap.String("tenant_id", tenantID.String()), zap.String("username", input.Username))

	user, err := s.authenticate(ctx, tenantID, input, log)
	if err != nil {
		return nil, err
	}

	pair, err := s.tokens.GenerateTokenPair(auth.GenerateTokenInput{
		TenantID:    user.TenantID,
		UserID:      user.ID,
		OfficeID:    user.OfficeID,
		Username:    user.Username,
		Permissions: user.Permissions,
	})
	if err != nil {
		log.Error("Token issue failed", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}

	user.RecordLoginSuccess()
	if err := s.users.Save(ctx, user); err != nil {
		// the session is already open
		log.Error("Recording login failed", zap.Error(err))
	}
	log.Info("Session opened", zap.String("user_id", user.ID.String()))

	return &LoginResult{TokenPair: *pair, User: toUserInfo(user)}, nil
}

func (s *AuthService) authenticate(ctx context.Context, tenantID uuid.UUID, input LoginInput, log *zap.Logger) (*identity.AppUser, error) {
	user, err := s.users.FindByUsername(ctx, tenantID, input.Username)
	if err != nil {
		log.Warn("Login for unknown user")
		return nil, errBadCredentials
	}

	switch {
	case user.IsLocked():
		log.Warn("Login for locked user")
		return nil, shared.NewDomainError("ACCOUNT_LOCKED", "Account is locked. Please try again later or contact support")
	case !user.CanLogin():
		log.Warn("Login for disabled user")
		return nil, shared.NewDomainError("ACCOUNT_DISABLED", "Account has been disabled")
	}

	if user.VerifyPassword(input.Password) {
		return user, nil
	}

	locked := user.RecordLoginFailure(s.config.MaxLoginAttempts, s.config.LockDuration)
	if err := s.users.Save(ctx, user); err != nil {
		log.Error("Recording failed login failed", zap.Error(err))
	}
	if locked {
		log.Warn("User locked", zap.Int("attempts", s.config.MaxLoginAttempts))
		return nil, shared.NewDomainError("ACCOUNT_LOCKED", "Too many failed login attempts. Account has been locked")
	}
	log.Warn("Wrong password", zap.Int("failed_attempts", user.FailedAttempts))
	return nil, errBadCredentials
}

// RefreshToken exchanges a refresh token for a new pair. Permissions are
// reloaded from the user so revoked grants take effect on the next refresh.
func (s *AuthService) RefreshToken(ctx context.Context, input RefreshTokenInput) (*auth.TokenPair, error) {
	claims, err := s.tokens.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		s.logger.Warn("Refresh token rejected", zap.Error(err))
		return nil, tokenError(err)
	}
	if err := s.checkNotRevoked(ctx, claims); err != nil {
		return nil, err
	}

	tenantID, _ := claims.GetTenantUUID()
	userID, _ := claims.GetUserUUID()
	log := s.logger.With(zap.String("tenant_id", tenantID.String()), zap.String("user_id", userID.String()))

	user, err := s.users.FindByIDForTenant(ctx, tenantID, userID)
	if err != nil {
		log.Warn("Refresh for unknown user")
		return nil, errUserNotFound
	}
	if !user.CanLogin() {
		log.Warn("Refresh for inactive user")
		return nil, shared.NewDomainError("ACCOUNT_DISABLED", "Account is no longer active")
	}

	pair, err := s.tokens.RefreshTokenPair(input.RefreshToken, user.Permissions)
	if err != nil {
		log.Warn("Refresh failed", zap.Error(err))
		return nil, tokenError(err)
	}

	if s.blacklist != nil {
		if err := s.blacklist.RevokeToken(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
			log.Warn("Used refresh token not revoked", zap.Error(err))
		}
	}
	log.Info("Session refreshed")
	return pair, nil
}

// checkNotRevoked rejects a refresh token that was used, logged out or
// issued before the user's last password change
func (s *AuthService) checkNotRevoked(ctx context.Context, claims *auth.Claims) error {
	if s.blacklist == nil {
		return nil
	}
	revoked, err := s.blacklist.IsTokenRevoked(ctx, claims.ID)
	if err == nil && !revoked {
		revoked, err = s.blacklist.IsSessionRevoked(ctx, claims.UserID, claims.GetIssuedAtTime())
	}
	if err != nil {
		s.logger.Error("Revocation lookup failed", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to validate refresh token")
	}
	if revoked {
		return errTokenRevoked
	}
	return nil
}

// Logout revokes the access token and, when given, the refresh token
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	s.logger.Info("Session closed",
		zap.String("tenant_id", input.TenantID.String()),
		zap.String("user_id", input.UserID.String()))

	if s.blacklist == nil {
		return nil
	}
	if input.TokenJTI != "" {
		if err := s.revoke(ctx, input.TokenJTI, input.TokenTTL); err != nil {
			return err
		}
	}
	if input.RefreshToken == "" {
		return nil
	}
	claims, err := s.tokens.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		// an unusable refresh token needs no revocation
		return nil
	}
	return s.revoke(ctx, claims.ID, claims.GetRemainingTTL())
}

func (s *AuthService) revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if err := s.blacklist.RevokeToken(ctx, jti, ttl); err != nil {
		s.logger.Error("Token revocation failed", zap.String("jti", jti), zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to revoke token")
	}
	return nil
}

// GetCurrentUser returns the signed-in user
func (s *AuthService) GetCurrentUser(ctx context.Context, tenantID, userID uuid.UUID) (*UserInfo, error) {
	user, err := s.users.FindByIDForTenant(ctx, tenantID, userID)
	if err != nil {
		return nil, errUserNotFound
	}
	info := toUserInfo(user)
	return &info, nil
}

// ChangePassword replaces the password after checking the current one and
// ends every session opened before the change
func (s *AuthService) ChangePassword(ctx context.Context, input ChangePasswordInput) error {
	user, err := s.users.FindByIDForTenant(ctx, input.TenantID, input.UserID)
	if err != nil {
		return errUserNotFound
	}
	if !user.VerifyPassword(input.OldPassword) {
		return shared.NewDomainError("INVALID_PASSWORD", "Current password is incorrect")
	}
	if err := user.SetPassword(input.NewPassword); err != nil {
		return err
	}
	if err := s.users.Save(ctx, user); err != nil {
		s.logger.Error("Saving new password failed", zap.String("user_id", user.ID.String()), zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to update password")
	}

	if s.blacklist != nil {
		if err := s.blacklist.RevokeSessions(ctx, user.ID.String(), s.tokens.GetRefreshTokenExpiration()); err != nil {
			s.logger.Warn("Sessions not revoked after password change", zap.Error(err))
		}
	}
	s.logger.Info("Password changed", zap.String("user_id", user.ID.String()))
	return nil
}

func tokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		return shared.NewDomainError("TOKEN_MAX_REFRESH", "Maximum token refresh count exceeded. Please log in again")
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrInvalidTokenType), errors.Is(err, auth.ErrInvalidClaims):
		return shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	default:
		return shared.NewDomainError("TOKEN_ERROR", "Failed to validate refresh token")
	}
}
