package auth

import (
	"testing"
	"time"

	"github.com/fincore/backend/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "access-secret-for-fincore-tests-32",
		RefreshSecret:          "refresh-secret-for-fincore-tests-32",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "fincore",
		MaxRefreshCount:        10,
	}
}

func tellerSession() GenerateTokenInput {
	return GenerateTokenInput{
		TenantID:    uuid.New(),
		UserID:      uuid.New(),
		OfficeID:    uuid.New(),
		Username:    "teller1",
		Permissions: []string{"READ_LOAN", "REPAYMENT_LOAN", "READ_CLIENT"},
	}
}

func TestNewJWTService_RefreshSecretFallback(t *testing.T) {
	cfg := testJWTConfig()
	cfg.RefreshSecret = ""
	svc := NewJWTService(cfg)
	assert.Equal(t, []byte(cfg.Secret), svc.refreshSecret)
}

func TestGenerateTokenPair(t *testing.T) {
	svc := NewJWTService(testJWTConfig())
	in := tellerSession()

	pair, err := svc.GenerateTokenPair(in)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.True(t, pair.RefreshTokenExpiresAt.After(pair.AccessTokenExpiresAt))

	access, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, in.TenantID.String(), access.TenantID)
	assert.Equal(t, in.UserID.String(), access.Subject)
	assert.Equal(t, in.OfficeID.String(), access.OfficeID)
	assert.Equal(t, in.Permissions, access.Permissions)
	assert.Equal(t, TokenTypeAccess, access.TokenType)

	refresh, err := svc.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Empty(t, refresh.Permissions)
	assert.Zero(t, refresh.RefreshCount)
	assert.NotEqual(t, access.ID, refresh.ID)

	tenantID, err := access.GetTenantUUID()
	require.NoError(t, err)
	assert.Equal(t, in.TenantID, tenantID)
	userID, err := access.GetUserUUID()
	require.NoError(t, err)
	assert.Equal(t, in.UserID, userID)
}

func TestValidateToken_Rejections(t *testing.T) {
	svc := NewJWTService(testJWTConfig())
	pair, err := svc.GenerateTokenPair(tellerSession())
	require.NoError(t, err)

	sharedCfg := testJWTConfig()
	sharedCfg.RefreshSecret = sharedCfg.Secret
	shared := NewJWTService(sharedCfg)
	sharedPair, err := shared.GenerateTokenPair(tellerSession())
	require.NoError(t, err)

	expiredCfg := testJWTConfig()
	expiredCfg.AccessTokenExpiration = -time.Hour
	expiredPair, err := NewJWTService(expiredCfg).GenerateTokenPair(tellerSession())
	require.NoError(t, err)

	otherCfg := testJWTConfig()
	otherCfg.Secret = "another-secret-another-secret-32"
	other := NewJWTService(otherCfg)

	otherIssuerCfg := testJWTConfig()
	otherIssuerCfg.Issuer = "someone-else"
	otherIssuer := NewJWTService(otherIssuerCfg)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{TenantID: uuid.NewString(), UserID: uuid.NewString(), TokenType: TokenTypeAccess})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	badTenant, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "fincore"},
		TenantID:         "head-office",
		UserID:           uuid.NewString(),
		TokenType:        TokenTypeAccess,
	}).SignedString([]byte(testJWTConfig().Secret))
	require.NoError(t, err)

	tests := []struct {
		name     string
		validate func() (*Claims, error)
		want     error
	}{
		{"garbage", func() (*Claims, error) { return svc.ValidateAccessToken("not-a-token") }, ErrInvalidToken},
		{"expired", func() (*Claims, error) { return svc.ValidateAccessToken(expiredPair.AccessToken) }, ErrExpiredToken},
		{"other secret", func() (*Claims, error) { return other.ValidateAccessToken(pair.AccessToken) }, ErrInvalidToken},
		{"other issuer", func() (*Claims, error) { return otherIssuer.ValidateAccessToken(pair.AccessToken) }, ErrInvalidToken},
		{"alg none", func() (*Claims, error) { return svc.ValidateAccessToken(unsigned) }, ErrInvalidToken},
		{"refresh as access", func() (*Claims, error) { return shared.ValidateAccessToken(sharedPair.RefreshToken) }, ErrInvalidTokenType},
		{"access as refresh", func() (*Claims, error) { return shared.ValidateRefreshToken(sharedPair.AccessToken) }, ErrInvalidTokenType},
		{"malformed tenant", func() (*Claims, error) { return svc.ValidateAccessToken(badTenant) }, ErrInvalidClaims},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.validate()
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRefreshTokenPair(t *testing.T) {
	cfg := testJWTConfig()
	cfg.MaxRefreshCount = 2
	svc := NewJWTService(cfg)
	in := tellerSession()

	pair, err := svc.GenerateTokenPair(in)
	require.NoError(t, err)

	pair, err = svc.RefreshTokenPair(pair.RefreshToken, []string{"ALL_FUNCTIONS_READ"})
	require.NoError(t, err)

	access, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, []string{"ALL_FUNCTIONS_READ"}, access.Permissions, "permissions come from the caller")
	assert.Equal(t, in.OfficeID.String(), access.OfficeID)
	assert.Equal(t, in.Username, access.Username)

	refresh, err := svc.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, 1, refresh.RefreshCount)

	pair, err = svc.RefreshTokenPair(pair.RefreshToken, nil)
	require.NoError(t, err)
	_, err = svc.RefreshTokenPair(pair.RefreshToken, nil)
	assert.ErrorIs(t, err, ErrMaxRefreshExceeded)

	_, err = svc.RefreshTokenPair(pair.AccessToken, nil)
	assert.Error(t, err)
}

func TestRefreshTokenPair_Unlimited(t *testing.T) {
	cfg := testJWTConfig()
	cfg.MaxRefreshCount = 0
	svc := NewJWTService(cfg)

	pair, err := svc.GenerateTokenPair(tellerSession())
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		pair, err = svc.RefreshTokenPair(pair.RefreshToken, nil)
		require.NoError(t, err)
	}
}

func TestClaims_HasPermission(t *testing.T) {
	tests := []struct {
		granted    []string
		permission string
		want       bool
	}{
		{[]string{"READ_LOAN", "DISBURSE_LOAN"}, "DISBURSE_LOAN", true},
		{[]string{"READ_LOAN"}, "DISBURSE_LOAN", false},
		{[]string{PermissionAll}, "CREATE_JOURNALENTRY", true},
		{[]string{PermissionAllRead}, "READ_JOURNALENTRY", true},
		{[]string{PermissionAllRead}, "CREATE_JOURNALENTRY", false},
		{nil, "READ_OFFICE", false},
	}
	for _, tt := range tests {
		c := &Claims{Permissions: tt.granted}
		assert.Equal(t, tt.want, c.HasPermission(tt.permission), "%v -> %s", tt.granted, tt.permission)
	}
}

func TestClaims_Times(t *testing.T) {
	var c Claims
	assert.True(t, c.GetIssuedAtTime().IsZero())
	assert.Zero(t, c.GetRemainingTTL())

	c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	assert.Zero(t, c.GetRemainingTTL())

	c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))
	assert.InDelta(t, time.Hour.Seconds(), c.GetRemainingTTL().Seconds(), 2)
}
