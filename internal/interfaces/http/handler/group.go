package handler

import (
	"context"
	"net/http"
	"strings"

	portfolioapp "github.com/fincore/backend/internal/application/portfolio"
	"github.com/fincore/backend/internal/domain/command"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GroupHandler serves groups and centers. Both live in one hierarchy and
// share their operations, except that only centers hold groups and only
// groups hold clients.
type GroupHandler struct {
	BaseHandler
	groups *portfolioapp.GroupService
}

// NewGroupHandler creates a new GroupHandler
func NewGroupHandler(base BaseHandler, groups *portfolioapp.GroupService) *GroupHandler {
	return &GroupHandler{BaseHandler: base, groups: groups}
}

// ListGroups godoc
// @ID           listGroups
// @Summary      List groups
// @Tags         groups
// @Produce      json
// @Param        search query string false "Name fragment"
// @Param        office_id query string false "Office"
// @Param        center_id query string false "Parent center"
// @Param        status query string false "Status" Enums(PENDING, ACTIVE, CLOSED)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]portfolioapp.GroupResponse]
// @Security     BearerAuth
// @Router       /groups [get]
func (h *GroupHandler) ListGroups(c *gin.Context) {
	h.list(c, h.groups.ListGroups)
}

// ListCenters godoc
// @ID           listCenters
// @Summary      List centers
// @Tags         groups
// @Produce      json
// @Param        search query string false "Name fragment"
// @Param        office_id query string false "Office"
// @Param        status query string false "Status" Enums(PENDING, ACTIVE, CLOSED)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]portfolioapp.GroupResponse]
// @Security     BearerAuth
// @Router       /centers [get]
func (h *GroupHandler) ListCenters(c *gin.Context) {
	h.list(c, h.groups.ListCenters)
}

type groupLister func(ctx context.Context, tenantID uuid.UUID, filter portfolioapp.GroupListFilter) ([]portfolioapp.GroupResponse, int64, error)

func (h *GroupHandler) list(c *gin.Context, fn groupLister) {
	var filter portfolioapp.GroupListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	groups, total, err := fn(c.Request.Context(), tenant(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := paging(c)
	h.SuccessWithMeta(c, groups, total, page, pageSize)
}

// GetGroup godoc
// @ID           getGroup
// @Summary      Get a group or center with its members
// @Tags         groups
// @Produce      json
// @Param        id path string true "Group or center ID"
// @Success      200 {object} APIResponse[portfolioapp.GroupResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /groups/{id} [get]
// @Router       /centers/{id} [get]
func (h *GroupHandler) GetGroup(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	group, err := h.groups.GetByID(c.Request.Context(), tenant(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, group)
}

// CreateGroup godoc
// @ID           createGroup
// @Summary      Create a group
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        request body portfolioapp.CreateGroupRequest true "Group"
// @Success      201 {object} APIResponse[portfolioapp.GroupResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /groups [post]
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	h.create(c, "GROUP", h.groups.CreateGroup)
}

// CreateCenter godoc
// @ID           createCenter
// @Summary      Create a center
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        request body portfolioapp.CreateGroupRequest true "Center"
// @Success      201 {object} APIResponse[portfolioapp.GroupResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /centers [post]
func (h *GroupHandler) CreateCenter(c *gin.Context) {
	h.create(c, "CENTER", h.groups.CreateCenter)
}

type groupCreator func(ctx context.Context, tenantID uuid.UUID, req portfolioapp.CreateGroupRequest) (*portfolioapp.GroupResponse, error)

func (h *GroupHandler) create(c *gin.Context, entity string, fn groupCreator) {
	var req portfolioapp.CreateGroupRequest
	if !h.bind(c, &req) {
		return
	}
	tid := tenant(c)
	w := wrap(c, entity, "CREATE", req)
	w.OfficeID = &req.OfficeID
	h.execute(c, w, http.StatusCreated, func(ctx context.Context) (*command.Result, error) {
		group, err := fn(ctx, tid, req)
		if err != nil {
			return nil, err
		}
		return groupResult(group), nil
	})
}

// UpdateGroup godoc
// @ID           updateGroup
// @Summary      Rename a group or center
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        id path string true "Group or center ID"
// @Param        request body portfolioapp.UpdateGroupRequest true "Names"
// @Success      200 {object} APIResponse[portfolioapp.GroupResponse]
// @Security     BearerAuth
// @Router       /groups/{id} [put]
// @Router       /centers/{id} [put]
func (h *GroupHandler) UpdateGroup(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req portfolioapp.UpdateGroupRequest
	if !h.bind(c, &req) {
		return
	}
	tid := tenant(c)
	h.execute(c, h.groupWrap(c, "UPDATE", req, id), http.StatusOK, func(ctx context.Context) (*command.Result, error) {
		group, err := h.groups.Update(ctx, tid, id, req)
		if err != nil {
			return nil, err
		}
		return groupResult(group), nil
	})
}

// GroupAction godoc
// @ID           groupAction
// @Summary      Run a group or center command
// @Description  activate and close take a date; the membership commands take ids
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        id path string true "Group or center ID"
// @Param        command query string true "Command" Enums(activate, close, associateClients, disassociateClients, associateGroups, disassociateGroups, assignStaff)
// @Success      200 {object} APIResponse[portfolioapp.GroupResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /groups/{id} [post]
// @Router       /centers/{id} [post]
func (h *GroupHandler) GroupAction(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	tid := tenant(c)
	run := func(action string, req any, fn func(ctx context.Context) (*portfolioapp.GroupResponse, error)) {
		h.execute(c, h.groupWrap(c, action, req, id), http.StatusOK, func(ctx context.Context) (*command.Result, error) {
			group, err := fn(ctx)
			if err != nil {
				return nil, err
			}
			return groupResult(group), nil
		})
	}

	switch cmd := c.Query("command"); cmd {
	case "activate", "close":
		var req portfolioapp.GroupStateRequest
		if !h.bindOptional(c, &req) {
			return
		}
		if cmd == "activate" {
			run("ACTIVATE", req, func(ctx context.Context) (*portfolioapp.GroupResponse, error) {
				return h.groups.Activate(ctx, tid, id, req)
			})
			return
		}
		run("CLOSE", req, func(ctx context.Context) (*portfolioapp.GroupResponse, error) {
			return h.groups.Close(ctx, tid, id, req)
		})
	case "associateClients", "disassociateClients", "associateGroups", "disassociateGroups":
		var req portfolioapp.MembersRequest
		if !h.bind(c, &req) {
			return
		}
		membership := map[string]struct {
			action string
			fn     func(context.Context, uuid.UUID, uuid.UUID, portfolioapp.MembersRequest) (*portfolioapp.GroupResponse, error)
		}{
			"associateClients":    {"ASSOCIATECLIENTS", h.groups.AssociateClients},
			"disassociateClients": {"DISASSOCIATECLIENTS", h.groups.DisassociateClients},
			"associateGroups":     {"ASSOCIATEGROUPS", h.groups.AssociateGroups},
			"disassociateGroups":  {"DISASSOCIATEGROUPS", h.groups.DisassociateGroups},
		}[cmd]
		run(membership.action, req, func(ctx context.Context) (*portfolioapp.GroupResponse, error) {
			return membership.fn(ctx, tid, id, req)
		})
	case "assignStaff":
		var req portfolioapp.AssignStaffRequest
		if !h.bind(c, &req) {
			return
		}
		run("ASSIGNSTAFF", req, func(ctx context.Context) (*portfolioapp.GroupResponse, error) {
			return h.groups.AssignStaff(ctx, tid, id, req)
		})
	default:
		h.BadRequest(c, "Unknown group command "+cmd)
	}
}

// DeleteGroup godoc
// @ID           deleteGroup
// @Summary      Delete a pending group or center without members
// @Tags         groups
// @Param        id path string true "Group or center ID"
// @Success      204
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /groups/{id} [delete]
// @Router       /centers/{id} [delete]
func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	tid := tenant(c)
	h.execute(c, h.groupWrap(c, "DELETE", nil, id), http.StatusOK, func(ctx context.Context) (*command.Result, error) {
		return &command.Result{ResourceID: &id, GroupID: &id}, h.groups.Delete(ctx, tid, id)
	})
}

// groupWrap names the entity after the route so permissions can separate
// groups from centers
func (h *GroupHandler) groupWrap(c *gin.Context, action string, payload any, id uuid.UUID) command.Wrapper {
	entity := "GROUP"
	if strings.Contains(c.FullPath(), "/centers") {
		entity = "CENTER"
	}
	w := wrap(c, entity, action, payload).WithResource(id)
	w.GroupID = &id
	return w
}

func groupResult(group *portfolioapp.GroupResponse) *command.Result {
	res := result(group.ID, group)
	res.GroupID = &group.ID
	res.OfficeID = &group.OfficeID
	return res
}
