package organisation

import (
	"strings"
	"time"

	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Office is a branch in the tenant's office tree. Exactly one office per
// tenant (the head office) has no parent.
type Office struct {
	shared.TenantAggregateRoot
	Name        string
	ParentID    *uuid.UUID
	Hierarchy   string // dot path of ancestor ids, e.g. ".<head>.<branch>."
	OpeningDate time.Time
	ExternalID  string
}

// NewHeadOffice creates the root office of a tenant
func NewHeadOffice(tenantID uuid.UUID, name string, openingDate time.Time, externalID string) (*Office, error) {
	if err := validateOfficeName(name); err != nil {
		return nil, err
	}
	o := &Office{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                strings.TrimSpace(name),
		OpeningDate:         shared.Day(openingDate),
		ExternalID:          externalID,
	}
	o.Hierarchy = "." + o.ID.String() + "."
	return o, nil
}

// NewOffice creates a branch office under parent
func NewOffice(tenantID uuid.UUID, name string, parent *Office, openingDate time.Time, externalID string) (*Office, error) {
	if parent == nil {
		return nil, shared.NewDomainError("OFFICE_PARENT_REQUIRED", "Parent office is required")
	}
	if err := validateOfficeName(name); err != nil {
		return nil, err
	}
	if shared.Day(openingDate).Before(parent.OpeningDate) {
		return nil, shared.NewDomainError("OFFICE_OPENING_BEFORE_PARENT", "Office cannot open before its parent office")
	}
	if shared.IsAfterToday(openingDate) {
		return nil, shared.NewDomainError("OFFICE_OPENING_IN_FUTURE", "Opening date cannot be in the future")
	}

	o := &Office{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                strings.TrimSpace(name),
		ParentID:            &parent.ID,
		OpeningDate:         shared.Day(openingDate),
		ExternalID:          externalID,
	}
	o.Hierarchy = parent.Hierarchy + o.ID.String() + "."
	return o, nil
}

func validateOfficeName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Office name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Office name cannot exceed 100 characters")
	}
	return nil
}

// IsHeadOffice returns true for the root office
func (o *Office) IsHeadOffice() bool {
	return o.ParentID == nil
}

// IsAncestorOf reports whether other is o or lies beneath o in the tree
func (o *Office) IsAncestorOf(other *Office) bool {
	return strings.HasPrefix(other.Hierarchy, o.Hierarchy)
}

// Update changes the descriptive fields of the office
func (o *Office) Update(name string, openingDate time.Time, externalID string) error {
	if err := validateOfficeName(name); err != nil {
		return err
	}
	o.Name = strings.TrimSpace(name)
	o.OpeningDate = shared.Day(openingDate)
	o.ExternalID = externalID
	o.Touch()
	o.IncrementVersion()
	return nil
}

// MoveUnder re-parents the office. It returns the previous hierarchy so the
// caller can rewrite the paths of descendants.
func (o *Office) MoveUnder(parent *Office) (string, error) {
	if o.IsHeadOffice() {
		return "", shared.NewDomainError("HEAD_OFFICE_IMMOVABLE", "Head office cannot have a parent")
	}
	if parent.ID == o.ID {
		return "", shared.NewDomainError("OFFICE_PARENT_SELF", "Office cannot be its own parent")
	}
	if o.IsAncestorOf(parent) {
		return "", shared.NewDomainError("OFFICE_PARENT_DESCENDANT", "Office cannot be moved under one of its descendants")
	}
	if o.OpeningDate.Before(parent.OpeningDate) {
		return "", shared.NewDomainError("OFFICE_OPENING_BEFORE_PARENT", "Office cannot open before its parent office")
	}
	old := o.Hierarchy
	o.ParentID = &parent.ID
	o.Hierarchy = parent.Hierarchy + o.ID.String() + "."
	o.Touch()
	o.IncrementVersion()
	return old, nil
}
