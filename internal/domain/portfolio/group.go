package portfolio

import (
	"strings"
	"time"

	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// GroupLevel distinguishes centers from the groups they contain
type GroupLevel string

const (
	GroupLevelCenter GroupLevel = "CENTER"
	GroupLevelGroup  GroupLevel = "GROUP"
)

// GroupStatus is the lifecycle state of a group or center
type GroupStatus string

const (
	GroupStatusPending GroupStatus = "PENDING"
	GroupStatusActive  GroupStatus = "ACTIVE"
	GroupStatusClosed  GroupStatus = "CLOSED"
)

// Group is either a center (containing groups) or a group (containing
// clients, optionally under a center).
type Group struct {
	shared.TenantAggregateRoot
	Level          GroupLevel
	OfficeID       uuid.UUID
	StaffID        *uuid.UUID
	ParentID       *uuid.UUID // center of a group
	Name           string
	ExternalID     string
	Status         GroupStatus
	SubmittedOn    time.Time
	ActivationDate *time.Time
	ClosureDate    *time.Time
	ClientIDs      []uuid.UUID // members of a GROUP
}

// NewCenter creates a pending center
func NewCenter(tenantID, officeID uuid.UUID, name, externalID string, submittedOn time.Time) (*Group, error) {
	return newGroup(tenantID, GroupLevelCenter, officeID, nil, name, externalID, submittedOn)
}

// NewGroup creates a pending group, optionally inside center
func NewGroup(tenantID, officeID uuid.UUID, center *Group, name, externalID string, submittedOn time.Time) (*Group, error) {
	var parentID *uuid.UUID
	if center != nil {
		if center.Level != GroupLevelCenter {
			return nil, shared.NewDomainError("GROUP_PARENT_NOT_CENTER", "Groups can only belong to a center")
		}
		if center.OfficeID != officeID {
			return nil, shared.NewDomainError("GROUP_CENTER_OFFICE_MISMATCH", "Group office must match its center's office")
		}
		if center.Status == GroupStatusClosed {
			return nil, shared.NewDomainError("CENTER_CLOSED", "Center is closed")
		}
		parentID = &center.ID
	}
	return newGroup(tenantID, GroupLevelGroup, officeID, parentID, name, externalID, submittedOn)
}

func newGroup(tenantID uuid.UUID, level GroupLevel, officeID uuid.UUID, parentID *uuid.UUID, name, externalID string, submittedOn time.Time) (*Group, error) {
	if officeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OFFICE", "Office is required")
	}
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_NAME", "Name must be 1 to 100 characters")
	}
	if shared.IsAfterToday(submittedOn) {
		return nil, shared.NewDomainError("SUBMITTED_DATE_IN_FUTURE", "Submitted date cannot be in the future")
	}
	return &Group{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Level:               level,
		OfficeID:            officeID,
		ParentID:            parentID,
		Name:                name,
		ExternalID:          externalID,
		Status:              GroupStatusPending,
		SubmittedOn:         shared.Day(submittedOn),
	}, nil
}

// IsCenter reports whether the group is a center
func (g *Group) IsCenter() bool {
	return g.Level == GroupLevelCenter
}

// Rename updates the descriptive fields
func (g *Group) Rename(name, externalID string) error {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Name must be 1 to 100 characters")
	}
	g.Name, g.ExternalID = name, externalID
	g.Touch()
	g.IncrementVersion()
	return nil
}

// Activate moves a pending group to active. A group inside a center needs
// the center to be active first.
func (g *Group) Activate(date time.Time, center *Group) error {
	if g.Status != GroupStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending groups can be activated")
	}
	if shared.IsAfterToday(date) {
		return shared.NewDomainError("DATE_IN_FUTURE", "Activation date cannot be in the future")
	}
	if shared.Day(date).Before(g.SubmittedOn) {
		return shared.NewDomainError("DATE_BEFORE_SUBMITTAL", "Activation date cannot be before the submitted date")
	}
	if g.ParentID != nil {
		if center == nil || center.ID != *g.ParentID || center.Status != GroupStatusActive {
			return shared.NewDomainError("CENTER_NOT_ACTIVE", "Group cannot be activated before its center")
		}
		if center.ActivationDate != nil && shared.Day(date).Before(*center.ActivationDate) {
			return shared.NewDomainError("DATE_BEFORE_CENTER_ACTIVATION", "Group cannot be activated before its center's activation date")
		}
	}
	d := shared.Day(date)
	g.Status = GroupStatusActive
	g.ActivationDate = &d
	g.Touch()
	g.IncrementVersion()
	return nil
}

// Close closes an active group. activeMembers counts active loans or
// active child groups that block closure.
func (g *Group) Close(date time.Time, activeMembers int) error {
	if g.Status != GroupStatusActive {
		return shared.NewDomainError("INVALID_STATE", "Only active groups can be closed")
	}
	if activeMembers > 0 {
		return shared.NewDomainError("GROUP_HAS_ACTIVE_MEMBERS", "Group has active loans or active child groups")
	}
	if g.ActivationDate != nil && shared.Day(date).Before(*g.ActivationDate) {
		return shared.NewDomainError("DATE_BEFORE_ACTIVATION", "Closure date cannot be before activation")
	}
	d := shared.Day(date)
	g.Status = GroupStatusClosed
	g.ClosureDate = &d
	g.Touch()
	g.IncrementVersion()
	return nil
}

// CanDelete reports whether the group record may be removed
func (g *Group) CanDelete() error {
	if g.Status != GroupStatusPending {
		return shared.NewDomainError("GROUP_NOT_PENDING", "Only pending groups can be deleted")
	}
	return nil
}

// HasClient reports whether clientID is a member
func (g *Group) HasClient(clientID uuid.UUID) bool {
	for _, id := range g.ClientIDs {
		if id == clientID {
			return true
		}
	}
	return false
}

// AssociateClients adds clients to a group
func (g *Group) AssociateClients(clients []Client) error {
	if g.IsCenter() {
		return shared.NewDomainError("CENTER_HAS_NO_CLIENTS", "Clients join groups, not centers")
	}
	if g.Status == GroupStatusClosed {
		return shared.NewDomainError("GROUP_CLOSED", "Group is closed")
	}
	for _, c := range clients {
		if c.OfficeID != g.OfficeID {
			return shared.NewDomainError("CLIENT_OFFICE_MISMATCH", "Client "+c.AccountNo+" belongs to a different office")
		}
		if c.Status == ClientStatusClosed || c.Status == ClientStatusRejected || c.Status == ClientStatusWithdrawn {
			return shared.NewDomainError("CLIENT_NOT_ELIGIBLE", "Client "+c.AccountNo+" is not open")
		}
		if g.HasClient(c.ID) {
			return shared.NewDomainError("CLIENT_ALREADY_MEMBER", "Client "+c.AccountNo+" is already a member")
		}
	}
	for _, c := range clients {
		g.ClientIDs = append(g.ClientIDs, c.ID)
	}
	g.Touch()
	g.IncrementVersion()
	return nil
}

// DisassociateClients removes clients from a group
func (g *Group) DisassociateClients(clientIDs []uuid.UUID) error {
	remove := make(map[uuid.UUID]bool, len(clientIDs))
	for _, id := range clientIDs {
		if !g.HasClient(id) {
			return shared.NewDomainError("CLIENT_NOT_MEMBER", "Client "+id.String()+" is not a member")
		}
		remove[id] = true
	}
	kept := g.ClientIDs[:0]
	for _, id := range g.ClientIDs {
		if !remove[id] {
			kept = append(kept, id)
		}
	}
	g.ClientIDs = kept
	g.Touch()
	g.IncrementVersion()
	return nil
}

// AttachToCenter places a group inside a center
func (g *Group) AttachToCenter(center *Group) error {
	if g.IsCenter() || !center.IsCenter() {
		return shared.NewDomainError("GROUP_PARENT_NOT_CENTER", "Only groups can be attached to centers")
	}
	if g.OfficeID != center.OfficeID {
		return shared.NewDomainError("GROUP_CENTER_OFFICE_MISMATCH", "Group office must match its center's office")
	}
	if g.ParentID != nil {
		return shared.NewDomainError("GROUP_ALREADY_IN_CENTER", "Group already belongs to a center")
	}
	g.ParentID = &center.ID
	g.Touch()
	g.IncrementVersion()
	return nil
}

// DetachFromCenter removes a group from its center
func (g *Group) DetachFromCenter(centerID uuid.UUID) error {
	if g.ParentID == nil || *g.ParentID != centerID {
		return shared.NewDomainError("GROUP_NOT_IN_CENTER", "Group does not belong to this center")
	}
	g.ParentID = nil
	g.Touch()
	g.IncrementVersion()
	return nil
}

// AssignStaff sets the group's staff member
func (g *Group) AssignStaff(staffID uuid.UUID, staffOfficeHierarchy, groupOfficeHierarchy string) error {
	if !strings.HasPrefix(groupOfficeHierarchy, staffOfficeHierarchy) {
		return shared.NewDomainError("STAFF_OFFICE_MISMATCH", "Staff must belong to the group's office hierarchy")
	}
	g.StaffID = &staffID
	g.Touch()
	return nil
}
