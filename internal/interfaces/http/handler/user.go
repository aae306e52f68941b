package handler

import (
	"context"
	"net/http"

	"github.com/fincore/backend/internal/application/identity"
	"github.com/fincore/backend/internal/domain/command"
	"github.com/gin-gonic/gin"
)

// UserHandler manages app users of the tenant
type UserHandler struct {
	BaseHandler
	users *identity.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(base BaseHandler, users *identity.UserService) *UserHandler {
	return &UserHandler{BaseHandler: base, users: users}
}

// CreateUser godoc
// @ID           createUser
// @Summary      Create an app user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body CreateUserRequest true "User"
// @Success      201 {object} APIResponse[UserResponse]
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if !h.bind(c, &req) {
		return
	}
	audited := req
	audited.Password = "***"
	tid := tenant(c)
	w := wrap(c, "USER", "CREATE", audited)
	w.OfficeID = &req.OfficeID
	h.execute(c, w, http.StatusCreated, func(ctx context.Context) (*command.Result, error) {
		user, err := h.users.Create(ctx, tid, identity.CreateUserInput{
			Username:    req.Username,
			Password:    req.Password,
			Firstname:   req.Firstname,
			Lastname:    req.Lastname,
			Email:       req.Email,
			OfficeID:    req.OfficeID,
			StaffID:     req.StaffID,
			Permissions: req.Permissions,
		})
		if err != nil {
			return nil, err
		}
		return result(user.ID, toUserResponse(*user)), nil
	})
}

// SetPermissions godoc
// @ID           setUserPermissions
// @Summary      Replace the permissions of an app user
// @Description  Takes effect on the user's next token
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id path string true "User ID"
// @Param        request body PermissionsRequest true "Permission codes"
// @Success      200 {object} APIResponse[UserResponse]
// @Security     BearerAuth
// @Router       /users/{id}/permissions [put]
func (h *UserHandler) SetPermissions(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req PermissionsRequest
	if !h.bind(c, &req) {
		return
	}
	tid := tenant(c)
	h.execute(c, wrap(c, "USER", "UPDATE", req).WithResource(id), http.StatusOK, func(ctx context.Context) (*command.Result, error) {
		user, err := h.users.SetPermissions(ctx, tid, id, req.Permissions)
		if err != nil {
			return nil, err
		}
		return result(user.ID, toUserResponse(*user)), nil
	})
}

// DisableUser godoc
// @ID           disableUser
// @Summary      Stop an app user from logging in
// @Tags         users
// @Param        id path string true "User ID"
// @Success      204
// @Security     BearerAuth
// @Router       /users/{id} [delete]
func (h *UserHandler) DisableUser(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	tid := tenant(c)
	h.execute(c, wrap(c, "USER", "DISABLE", nil).WithResource(id), http.StatusOK, func(ctx context.Context) (*command.Result, error) {
		return &command.Result{ResourceID: &id}, h.users.Disable(ctx, tid, id)
	})
}
