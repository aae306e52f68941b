package handler

import (
	"context"
	"net/http"

	hookapp "github.com/fincore/backend/internal/application/hook"
	"github.com/fincore/backend/internal/domain/command"
	"github.com/gin-gonic/gin"
)

// HookHandler manages webhook subscriptions
type HookHandler struct {
	BaseHandler
	hooks *hookapp.HookService
}

// NewHookHandler creates a new HookHandler
func NewHookHandler(base BaseHandler, hooks *hookapp.HookService) *HookHandler {
	return &HookHandler{BaseHandler: base, hooks: hooks}
}

// ListHooks godoc
// @ID           listHooks
// @Summary      List webhooks
// @Tags         hooks
// @Produce      json
// @Param        search query string false "Name fragment"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]hookapp.HookResponse]
// @Security     BearerAuth
// @Router       /hooks [get]
func (h *HookHandler) ListHooks(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}
	hooks, total, err := h.hooks.List(c.Request.Context(), tenant(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, hooks, total, filter.Page, filter.PageSize)
}

// GetHook godoc
// @ID           getHook
// @Summary      Get a webhook
// @Tags         hooks
// @Produce      json
// @Param        id path string true "Hook ID"
// @Success      200 {object} APIResponse[hookapp.HookResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /hooks/{id} [get]
func (h *HookHandler) GetHook(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	hook, err := h.hooks.GetByID(c.Request.Context(), tenant(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, hook)
}

// CreateHook godoc
// @ID           createHook
// @Summary      Subscribe a URL to command events
// @Tags         hooks
// @Accept       json
// @Produce      json
// @Param        request body hookapp.HookRequest true "Hook"
// @Success      201 {object} APIResponse[hookapp.HookResponse]
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /hooks [post]
func (h *HookHandler) CreateHook(c *gin.Context) {
	var req hookapp.HookRequest
	if !h.bind(c, &req) {
		return
	}
	tid := tenant(c)
	h.execute(c, wrap(c, "HOOK", "CREATE", redactSecret(req)), http.StatusCreated, func(ctx context.Context) (*command.Result, error) {
		hook, err := h.hooks.Create(ctx, tid, req)
		if err != nil {
			return nil, err
		}
		return result(hook.ID, hook), nil
	})
}

// UpdateHook godoc
// @ID           updateHook
// @Summary      Update a webhook
// @Description  An empty secret keeps the current one
// @Tags         hooks
// @Accept       json
// @Produce      json
// @Param        id path string true "Hook ID"
// @Param        request body hookapp.HookRequest true "Hook"
// @Success      200 {object} APIResponse[hookapp.HookResponse]
// @Security     BearerAuth
// @Router       /hooks/{id} [put]
func (h *HookHandler) UpdateHook(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req hookapp.HookRequest
	if !h.bind(c, &req) {
		return
	}
	tid := tenant(c)
	h.execute(c, wrap(c, "HOOK", "UPDATE", redactSecret(req)).WithResource(id), http.StatusOK, func(ctx context.Context) (*command.Result, error) {
		hook, err := h.hooks.Update(ctx, tid, id, req)
		if err != nil {
			return nil, err
		}
		return result(hook.ID, hook), nil
	})
}

// DeleteHook godoc
// @ID           deleteHook
// @Summary      Delete a webhook and its delivery log
// @Tags         hooks
// @Param        id path string true "Hook ID"
// @Success      204
// @Security     BearerAuth
// @Router       /hooks/{id} [delete]
func (h *HookHandler) DeleteHook(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	tid := tenant(c)
	h.execute(c, wrap(c, "HOOK", "DELETE", nil).WithResource(id), http.StatusOK, func(ctx context.Context) (*command.Result, error) {
		return &command.Result{ResourceID: &id}, h.hooks.Delete(ctx, tid, id)
	})
}

// ListDeliveries godoc
// @ID           listHookDeliveries
// @Summary      Delivery attempts of a webhook, newest first
// @Tags         hooks
// @Produce      json
// @Param        id path string true "Hook ID"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]hookapp.DeliveryResponse]
// @Security     BearerAuth
// @Router       /hooks/{id}/deliveries [get]
func (h *HookHandler) ListDeliveries(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}
	deliveries, total, err := h.hooks.Deliveries(c.Request.Context(), tenant(c), id, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, deliveries, total, filter.Page, filter.PageSize)
}

// redactSecret keeps signing secrets out of the audit trail
func redactSecret(req hookapp.HookRequest) hookapp.HookRequest {
	if req.Secret != "" {
		req.Secret = "***"
	}
	return req
}
