package portfolio

import (
	"context"

	"github.com/fincore/backend/internal/domain/organisation"
	"github.com/fincore/backend/internal/domain/portfolio"
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// GroupService manages groups and centers
type GroupService struct {
	groupRepo  portfolio.GroupRepository
	clientRepo portfolio.ClientRepository
	officeRepo organisation.OfficeRepository
	staffRepo  organisation.StaffRepository
	loanRepo   portfolio.LoanRepository
}

// NewGroupService creates a new GroupService
func NewGroupService(
	groupRepo portfolio.GroupRepository,
	clientRepo portfolio.ClientRepository,
	officeRepo organisation.OfficeRepository,
	staffRepo organisation.StaffRepository,
	loanRepo portfolio.LoanRepository,
) *GroupService {
	return &GroupService{
		groupRepo:  groupRepo,
		clientRepo: clientRepo,
		officeRepo: officeRepo,
		staffRepo:  staffRepo,
		loanRepo:   loanRepo,
	}
}

// CreateCenter creates a center
func (s *GroupService) CreateCenter(ctx context.Context, tenantID uuid.UUID, req CreateGroupRequest) (*GroupResponse, error) {
	if req.CenterID != nil || len(req.ClientIDs) > 0 {
		return nil, shared.NewDomainError("CENTER_HAS_NO_CLIENTS", "Centers contain groups, not clients")
	}
	return s.create(ctx, tenantID, portfolio.GroupLevelCenter, req)
}

// CreateGroup creates a group, optionally inside a center and with members
func (s *GroupService) CreateGroup(ctx context.Context, tenantID uuid.UUID, req CreateGroupRequest) (*GroupResponse, error) {
	return s.create(ctx, tenantID, portfolio.GroupLevelGroup, req)
}

func (s *GroupService) create(ctx context.Context, tenantID uuid.UUID, level portfolio.GroupLevel, req CreateGroupRequest) (*GroupResponse, error) {
	submitted, err := shared.ParseDateOr(req.SubmittedOn)
	if err != nil {
		return nil, err
	}
	office, err := s.officeRepo.FindByIDForTenant(ctx, tenantID, req.OfficeID)
	if err != nil {
		return nil, err
	}
	if err := s.checkName(ctx, tenantID, office.ID, level, req.Name, nil); err != nil {
		return nil, err
	}

	var center *portfolio.Group
	if req.CenterID != nil {
		center, err = s.groupRepo.FindByIDForTenant(ctx, tenantID, *req.CenterID)
		if err != nil {
			return nil, err
		}
	}

	var group *portfolio.Group
	if level == portfolio.GroupLevelCenter {
		group, err = portfolio.NewCenter(tenantID, office.ID, req.Name, req.ExternalID, submitted)
	} else {
		group, err = portfolio.NewGroup(tenantID, office.ID, center, req.Name, req.ExternalID, submitted)
	}
	if err != nil {
		return nil, err
	}
	if req.StaffID != nil {
		if err := s.assignStaff(ctx, group, office, *req.StaffID); err != nil {
			return nil, err
		}
	}
	if len(req.ClientIDs) > 0 {
		clients, err := s.loadClients(ctx, tenantID, req.ClientIDs)
		if err != nil {
			return nil, err
		}
		if err := group.AssociateClients(clients); err != nil {
			return nil, err
		}
	}
	if req.Active {
		activation, err := shared.ParseDateOr(req.ActivationDate)
		if err != nil {
			return nil, err
		}
		if err := group.Activate(activation, center); err != nil {
			return nil, err
		}
	}

	if err := s.groupRepo.Save(ctx, group); err != nil {
		return nil, err
	}
	return ToGroupResponse(group), nil
}

// Update renames a group or center
func (s *GroupService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateGroupRequest) (*GroupResponse, error) {
	group, err := s.groupRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if req.Name != group.Name {
		if err := s.checkName(ctx, tenantID, group.OfficeID, group.Level, req.Name, &id); err != nil {
			return nil, err
		}
	}
	if err := group.Rename(req.Name, req.ExternalID); err != nil {
		return nil, err
	}
	if err := s.groupRepo.Save(ctx, group); err != nil {
		return nil, err
	}
	return ToGroupResponse(group), nil
}

// Activate activates a pending group or center
func (s *GroupService) Activate(ctx context.Context, tenantID, id uuid.UUID, req GroupStateRequest) (*GroupResponse, error) {
	date, err := shared.ParseDateOr(req.Date)
	if err != nil {
		return nil, err
	}
	group, err := s.groupRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	var center *portfolio.Group
	if group.ParentID != nil {
		center, err = s.groupRepo.FindByIDForTenant(ctx, tenantID, *group.ParentID)
		if err != nil {
			return nil, err
		}
	}
	if err := group.Activate(date, center); err != nil {
		return nil, err
	}
	if err := s.groupRepo.Save(ctx, group); err != nil {
		return nil, err
	}
	return ToGroupResponse(group), nil
}

// Close closes a group without open loans, or a center without active groups
func (s *GroupService) Close(ctx context.Context, tenantID, id uuid.UUID, req GroupStateRequest) (*GroupResponse, error) {
	date, err := shared.ParseDateOr(req.Date)
	if err != nil {
		return nil, err
	}
	group, err := s.groupRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	active, err := s.activeMembers(ctx, group)
	if err != nil {
		return nil, err
	}
	if err := group.Close(date, active); err != nil {
		return nil, err
	}
	if err := s.groupRepo.Save(ctx, group); err != nil {
		return nil, err
	}
	return ToGroupResponse(group), nil
}

func (s *GroupService) activeMembers(ctx context.Context, group *portfolio.Group) (int, error) {
	if group.IsCenter() {
		children, err := s.groupRepo.FindByParent(ctx, group.TenantID, group.ID)
		if err != nil {
			return 0, err
		}
		active := 0
		for _, c := range children {
			if c.Status == portfolio.GroupStatusActive {
				active++
			}
		}
		return active, nil
	}
	n, err := s.loanRepo.CountActiveForGroup(ctx, group.TenantID, group.ID)
	return int(n), err
}

// Delete removes a pending group or center
func (s *GroupService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	group, err := s.groupRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := group.CanDelete(); err != nil {
		return err
	}
	if group.IsCenter() {
		children, err := s.groupRepo.FindByParent(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if len(children) > 0 {
			return shared.NewDomainError("CENTER_HAS_GROUPS", "Center still contains groups")
		}
	}
	return s.groupRepo.Delete(ctx, tenantID, id)
}

// AssociateClients adds clients to a group
func (s *GroupService) AssociateClients(ctx context.Context, tenantID, id uuid.UUID, req MembersRequest) (*GroupResponse, error) {
	group, err := s.groupRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	clients, err := s.loadClients(ctx, tenantID, req.IDs)
	if err != nil {
		return nil, err
	}
	if err := group.AssociateClients(clients); err != nil {
		return nil, err
	}
	if err := s.groupRepo.Save(ctx, group); err != nil {
		return nil, err
	}
	return ToGroupResponse(group), nil
}

// DisassociateClients removes clients from a group
func (s *GroupService) DisassociateClients(ctx context.Context, tenantID, id uuid.UUID, req MembersRequest) (*GroupResponse, error) {
	group, err := s.groupRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := group.DisassociateClients(req.IDs); err != nil {
		return nil, err
	}
	if err := s.groupRepo.Save(ctx, group); err != nil {
		return nil, err
	}
	return ToGroupResponse(group), nil
}

// AssociateGroups places groups inside a center
func (s *GroupService) AssociateGroups(ctx context.Context, tenantID, centerID uuid.UUID, req MembersRequest) (*GroupResponse, error) {
	center, err := s.loadCenter(ctx, tenantID, centerID)
	if err != nil {
		return nil, err
	}
	groups := make([]*portfolio.Group, 0, len(req.IDs))
	for _, id := range req.IDs {
		g, err := s.groupRepo.FindByIDForTenant(ctx, tenantID, id)
		if err != nil {
			return nil, err
		}
		if err := g.AttachToCenter(center); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	for _, g := range groups {
		if err := s.groupRepo.Save(ctx, g); err != nil {
			return nil, err
		}
	}
	return s.GetByID(ctx, tenantID, centerID)
}

// DisassociateGroups removes groups from a center
func (s *GroupService) DisassociateGroups(ctx context.Context, tenantID, centerID uuid.UUID, req MembersRequest) (*GroupResponse, error) {
	if _, err := s.loadCenter(ctx, tenantID, centerID); err != nil {
		return nil, err
	}
	groups := make([]*portfolio.Group, 0, len(req.IDs))
	for _, id := range req.IDs {
		g, err := s.groupRepo.FindByIDForTenant(ctx, tenantID, id)
		if err != nil {
			return nil, err
		}
		if err := g.DetachFromCenter(centerID); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	for _, g := range groups {
		if err := s.groupRepo.Save(ctx, g); err != nil {
			return nil, err
		}
	}
	return s.GetByID(ctx, tenantID, centerID)
}

// AssignStaff assigns a staff member from the group's office hierarchy
func (s *GroupService) AssignStaff(ctx context.Context, tenantID, id uuid.UUID, req AssignStaffRequest) (*GroupResponse, error) {
	group, err := s.groupRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	office, err := s.officeRepo.FindByIDForTenant(ctx, tenantID, group.OfficeID)
	if err != nil {
		return nil, err
	}
	if err := s.assignStaff(ctx, group, office, req.StaffID); err != nil {
		return nil, err
	}
	if err := s.groupRepo.Save(ctx, group); err != nil {
		return nil, err
	}
	return ToGroupResponse(group), nil
}

func (s *GroupService) assignStaff(ctx context.Context, group *portfolio.Group, groupOffice *organisation.Office, staffID uuid.UUID) error {
	staff, err := s.staffRepo.FindByIDForTenant(ctx, group.TenantID, staffID)
	if err != nil {
		return err
	}
	if !staff.Active {
		return shared.NewDomainError("STAFF_INACTIVE", "Staff member is not active")
	}
	staffOffice := groupOffice
	if staff.OfficeID != groupOffice.ID {
		staffOffice, err = s.officeRepo.FindByIDForTenant(ctx, group.TenantID, staff.OfficeID)
		if err != nil {
			return err
		}
	}
	return group.AssignStaff(staff.ID, staffOffice.Hierarchy, groupOffice.Hierarchy)
}

// GetByID retrieves a group with its clients, or a center with its groups
func (s *GroupService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*GroupResponse, error) {
	group, err := s.groupRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToGroupResponse(group)
	if group.IsCenter() {
		children, err := s.groupRepo.FindByParent(ctx, tenantID, id)
		if err != nil {
			return nil, err
		}
		resp.Groups = make([]GroupResponse, 0, len(children))
		for i := range children {
			resp.Groups = append(resp.Groups, *ToGroupResponse(&children[i]))
		}
		return resp, nil
	}
	if len(group.ClientIDs) > 0 {
		clients, err := s.clientRepo.FindByIDs(ctx, tenantID, group.ClientIDs)
		if err != nil {
			return nil, err
		}
		resp.Clients = make([]ClientResponse, 0, len(clients))
		for _, cid := range group.ClientIDs {
			if c, ok := clients[cid]; ok {
				resp.Clients = append(resp.Clients, *ToClientResponse(c))
			}
		}
	}
	return resp, nil
}

// ListCenters retrieves centers
func (s *GroupService) ListCenters(ctx context.Context, tenantID uuid.UUID, filter GroupListFilter) ([]GroupResponse, int64, error) {
	return s.list(ctx, tenantID, portfolio.GroupLevelCenter, filter)
}

// ListGroups retrieves groups, optionally of one center
func (s *GroupService) ListGroups(ctx context.Context, tenantID uuid.UUID, filter GroupListFilter) ([]GroupResponse, int64, error) {
	return s.list(ctx, tenantID, portfolio.GroupLevelGroup, filter)
}

func (s *GroupService) list(ctx context.Context, tenantID uuid.UUID, level portfolio.GroupLevel, filter GroupListFilter) ([]GroupResponse, int64, error) {
	domainFilter := portfolio.GroupFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  "name",
			OrderDir: "asc",
			Search:   filter.Search,
		},
		Level:    level,
		OfficeID: filter.OfficeID,
		ParentID: filter.CenterID,
	}
	if filter.Status != "" {
		status := portfolio.GroupStatus(filter.Status)
		domainFilter.Status = &status
	}
	groups, total, err := s.groupRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]GroupResponse, 0, len(groups))
	for i := range groups {
		out = append(out, *ToGroupResponse(&groups[i]))
	}
	return out, total, nil
}

func (s *GroupService) loadCenter(ctx context.Context, tenantID, id uuid.UUID) (*portfolio.Group, error) {
	center, err := s.groupRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if !center.IsCenter() {
		return nil, shared.NewDomainError("GROUP_PARENT_NOT_CENTER", "Groups can only belong to a center")
	}
	return center, nil
}

// loadClients resolves ids in order, failing on the first unknown client
func (s *GroupService) loadClients(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]portfolio.Client, error) {
	found, err := s.clientRepo.FindByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	clients := make([]portfolio.Client, 0, len(ids))
	for _, id := range ids {
		c, ok := found[id]
		if !ok {
			return nil, shared.NotFound("Client " + id.String())
		}
		clients = append(clients, *c)
	}
	return clients, nil
}

func (s *GroupService) checkName(ctx context.Context, tenantID, officeID uuid.UUID, level portfolio.GroupLevel, name string, excludeID *uuid.UUID) error {
	exists, err := s.groupRepo.ExistsByName(ctx, tenantID, officeID, level, name, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError("GROUP_NAME_EXISTS", "A "+string(level)+" with this name already exists in the office")
	}
	return nil
}
