package handler

import (
	"net/http"

	"github.com/fincore/backend/internal/application/identity"
	"github.com/fincore/backend/internal/infrastructure/auth"
	"github.com/fincore/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuthHandler serves login, refresh, logout and the signed-in user
type AuthHandler struct {
	BaseHandler
	authService *identity.AuthService
}

// NewAuthHandler creates an AuthHandler
func NewAuthHandler(base BaseHandler, authService *identity.AuthService) *AuthHandler {
	return &AuthHandler{BaseHandler: base, authService: authService}
}

// Login godoc
// @ID           login
// @Summary      Open a session
// @Description  Checks username and password of a tenant user. The tenant comes from the X-Tenant-ID header. Five wrong passwords lock the user for 15 minutes.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant"
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} APIResponse[LoginResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !h.bind(c, &req) {
		return
	}
	result, err := h.authService.Login(c.Request.Context(), tenant(c), identity.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, LoginResponse{Token: tokenResponse(result.TokenPair), User: toUserResponse(result.User)})
}

// RefreshToken godoc
// @ID           refreshToken
// @Summary      Renew a session
// @Description  Exchange a refresh token for a new pair. Each refresh token works once.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RefreshTokenRequest true "Refresh token"
// @Success      200 {object} APIResponse[RefreshTokenResponse]
// @Failure      401 {object} ErrorResponse
// @Router       /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if !h.bind(c, &req) {
		return
	}
	pair, err := h.authService.RefreshToken(c.Request.Context(), identity.RefreshTokenInput{RefreshToken: req.RefreshToken})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, RefreshTokenResponse{Token: tokenResponse(*pair)})
}

// Logout godoc
// @ID           logout
// @Summary      Close the session
// @Description  Revoke the current access token and, when given, the refresh token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LogoutRequest false "Refresh token to revoke"
// @Success      200 {object} APIResponse[MessageData]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		h.unauthenticated(c)
		return
	}
	var req LogoutRequest
	if !h.bindOptional(c, &req) {
		return
	}
	err := h.authService.Logout(c.Request.Context(), identity.LogoutInput{
		UserID:       middleware.UserID(c),
		TenantID:     tenant(c),
		TokenJTI:     claims.ID,
		TokenTTL:     claims.GetRemainingTTL(),
		RefreshToken: req.RefreshToken,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, MessageData{Message: "Session closed"})
}

// GetCurrentUser godoc
// @ID           currentUser
// @Summary      Signed-in user
// @Tags         auth
// @Produce      json
// @Success      200 {object} APIResponse[UserResponse]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /auth/me [get]
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	user, err := h.authService.GetCurrentUser(c.Request.Context(), tenant(c), middleware.UserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toUserResponse(*user))
}

// ChangePassword godoc
// @ID           changePassword
// @Summary      Change own password
// @Description  Every token issued before the change stops working
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body ChangePasswordRequest true "Password change request"
// @Success      200 {object} APIResponse[MessageData]
// @Failure      401 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /auth/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if !h.bind(c, &req) {
		return
	}
	userID := middleware.UserID(c)
	if userID == uuid.Nil {
		h.unauthenticated(c)
		return
	}
	err := h.authService.ChangePassword(c.Request.Context(), identity.ChangePasswordInput{
		TenantID:    tenant(c),
		UserID:      userID,
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, MessageData{Message: "Password changed; other sessions were signed out"})
}

func (h *AuthHandler) unauthenticated(c *gin.Context) {
	h.Error(c, http.StatusUnauthorized, "ERR_UNAUTHORIZED", "Authentication required")
}

func tokenResponse(p auth.TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:           p.AccessToken,
		RefreshToken:          p.RefreshToken,
		AccessTokenExpiresAt:  p.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: p.RefreshTokenExpiresAt,
		TokenType:             p.TokenType,
	}
}
