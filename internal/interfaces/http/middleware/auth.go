package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/fincore/backend/internal/infrastructure/auth"
	"github.com/fincore/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// TenantHeader selects the tenant when no token carries one
	TenantHeader = "X-Tenant-ID"

	claimsKey   = "jwt_claims"
	tenantIDKey = "tenant_id"
	bearer      = "Bearer "
)

// AuthConfig configures JWTAuth
type AuthConfig struct {
	JWT       *auth.JWTService
	Blacklist auth.TokenBlacklist // optional
	Logger    *zap.Logger
}

// JWTAuth requires a valid, unrevoked bearer access token and stores its
// claims on the request
func JWTAuth(cfg AuthConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearer) || strings.TrimSpace(header[len(bearer):]) == "" {
			abortWithError(c, http.StatusUnauthorized, "ERR_UNAUTHORIZED", "Missing bearer token")
			return
		}
		claims, err := cfg.JWT.ValidateAccessToken(strings.TrimSpace(header[len(bearer):]))
		if err != nil {
			abortAuth(c, log, err)
			return
		}

		if cfg.Blacklist != nil {
			ctx := c.Request.Context()
			// a failing blacklist lookup lets the request through
			if revoked, err := cfg.Blacklist.IsTokenRevoked(ctx, claims.ID); err != nil {
				log.Error("Token blacklist lookup failed", zap.Error(err))
			} else if revoked {
				abortAuth(c, log, auth.ErrTokenBlacklisted)
				return
			}
			if revoked, err := cfg.Blacklist.IsSessionRevoked(ctx, claims.UserID, claims.GetIssuedAtTime()); err != nil {
				log.Error("Session revocation lookup failed", zap.Error(err))
			} else if revoked {
				abortAuth(c, log, auth.ErrTokenBlacklisted)
				return
			}
		}

		c.Set(claimsKey, claims)
		ctx := c.Request.Context()
		ctx, _ = logger.WithUserID(ctx, logger.FromContext(ctx), claims.UserID)
		if claims.OfficeID != "" {
			ctx, _ = logger.WithOfficeID(ctx, logger.FromContext(ctx), claims.OfficeID)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func abortAuth(c *gin.Context, log *zap.Logger, err error) {
	code, message := "ERR_TOKEN_INVALID", "Invalid token"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, message = "ERR_TOKEN_EXPIRED", "Token has expired"
	case errors.Is(err, auth.ErrTokenBlacklisted):
		code, message = "ERR_TOKEN_REVOKED", "Token has been revoked"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		message = "Token is not yet valid"
	}
	log.Debug("Authentication rejected", zap.String("path", c.Request.URL.Path), zap.Error(err))
	abortWithError(c, http.StatusUnauthorized, code, message)
}

// Tenant resolves the tenant from the token claim, falling back to the
// X-Tenant-ID header, and rejects the request when neither is usable
func Tenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := ""
		if claims := GetClaims(c); claims != nil {
			raw = claims.TenantID
		}
		if raw == "" {
			raw = c.GetHeader(TenantHeader)
		}
		if raw == "" {
			abortWithError(c, http.StatusBadRequest, "ERR_TENANT_REQUIRED", "Tenant could not be determined")
			return
		}
		id, err := uuid.Parse(raw)
		if err != nil || id == uuid.Nil {
			abortWithError(c, http.StatusBadRequest, "ERR_TENANT_INVALID", "Tenant id must be a UUID")
			return
		}

		c.Set(tenantIDKey, id)
		ctx := c.Request.Context()
		ctx, _ = logger.WithTenantID(ctx, logger.FromContext(ctx), id.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequirePermission allows the request only when the token grants code
func RequirePermission(code string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil || !claims.HasPermission(code) {
			abortWithError(c, http.StatusForbidden, "ERR_FORBIDDEN", "Missing permission "+code)
			return
		}
		c.Next()
	}
}

// GetClaims returns the validated token claims, nil on public routes
func GetClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(claimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// TenantID returns the tenant resolved by Tenant
func TenantID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(tenantIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// UserID returns the authenticated user, uuid.Nil on public routes
func UserID(c *gin.Context) uuid.UUID {
	if claims := GetClaims(c); claims != nil {
		if id, err := claims.GetUserUUID(); err == nil {
			return id
		}
	}
	return uuid.Nil
}
