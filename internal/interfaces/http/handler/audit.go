package handler

import (
	commandapp "github.com/fincore/backend/internal/application/command"
	"github.com/gin-gonic/gin"
)

// AuditHandler exposes the command audit trail
type AuditHandler struct {
	BaseHandler
	audits *commandapp.AuditService
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(base BaseHandler, audits *commandapp.AuditService) *AuditHandler {
	return &AuditHandler{BaseHandler: base, audits: audits}
}

// ListAudits godoc
// @ID           listAudits
// @Summary      Search processed commands
// @Tags         audit
// @Produce      json
// @Param        entity_name query string false "Entity, e.g. LOAN"
// @Param        action_name query string false "Action, e.g. DISBURSE"
// @Param        maker_id query string false "User who issued the command"
// @Param        resource_id query string false "Affected resource"
// @Param        from query string false "Made on or after (YYYY-MM-DD)"
// @Param        to query string false "Made on or before (YYYY-MM-DD)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]commandapp.AuditResponse]
// @Security     BearerAuth
// @Router       /audits [get]
func (h *AuditHandler) ListAudits(c *gin.Context) {
	var q commandapp.AuditQuery
	if !h.bindQuery(c, &q) {
		return
	}
	audits, total, err := h.audits.List(c.Request.Context(), tenant(c), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := paging(c)
	h.SuccessWithMeta(c, audits, total, page, pageSize)
}

// GetAudit godoc
// @ID           getAudit
// @Summary      Get one processed command
// @Tags         audit
// @Produce      json
// @Param        id path string true "Command ID"
// @Success      200 {object} APIResponse[commandapp.AuditResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /audits/{id} [get]
func (h *AuditHandler) GetAudit(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	audit, err := h.audits.GetByID(c.Request.Context(), tenant(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, audit)
}
