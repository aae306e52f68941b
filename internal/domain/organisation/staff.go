package organisation

import (
	"strings"
	"time"

	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Staff is an employee attached to an office. Loan officers are staff with
// IsLoanOfficer set.
type Staff struct {
	shared.TenantAggregateRoot
	OfficeID      uuid.UUID
	Firstname     string
	Lastname      string
	IsLoanOfficer bool
	Active        bool
	JoiningDate   *time.Time
	MobileNo      string
	ExternalID    string
}

// NewStaff creates an active staff member
func NewStaff(tenantID, officeID uuid.UUID, firstname, lastname string) (*Staff, error) {
	if officeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OFFICE", "Office is required")
	}
	firstname, lastname = strings.TrimSpace(firstname), strings.TrimSpace(lastname)
	if firstname == "" || lastname == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Staff firstname and lastname are required")
	}
	return &Staff{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		OfficeID:            officeID,
		Firstname:           firstname,
		Lastname:            lastname,
		Active:              true,
	}, nil
}

// DisplayName returns "Lastname, Firstname"
func (s *Staff) DisplayName() string {
	return s.Lastname + ", " + s.Firstname
}

// Rename changes the staff member's names
func (s *Staff) Rename(firstname, lastname string) error {
	firstname, lastname = strings.TrimSpace(firstname), strings.TrimSpace(lastname)
	if firstname == "" || lastname == "" {
		return shared.NewDomainError("INVALID_NAME", "Staff firstname and lastname are required")
	}
	s.Firstname, s.Lastname = firstname, lastname
	s.Touch()
	return nil
}

// SetActive toggles the active flag
func (s *Staff) SetActive(active bool) {
	s.Active = active
	s.Touch()
}

// CanServeLoans reports whether the staff member may be assigned as loan officer
func (s *Staff) CanServeLoans() bool {
	return s.Active && s.IsLoanOfficer
}
