package accounting

import (
	"time"

	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// GLClosure freezes the ledger of an office up to and including ClosingDate
type GLClosure struct {
	shared.TenantAggregateRoot
	OfficeID    uuid.UUID
	ClosingDate time.Time
	Comments    string
	Deleted     bool
}

// NewGLClosure closes the books of an office. latest is the office's most
// recent active closure, or nil.
func NewGLClosure(tenantID, officeID uuid.UUID, closingDate time.Time, comments string, latest *GLClosure) (*GLClosure, error) {
	if officeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OFFICE", "Office is required")
	}
	if closingDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Closing date is required")
	}
	if shared.IsAfterToday(closingDate) {
		return nil, shared.NewDomainError("GL_CLOSURE_IN_FUTURE", "Accounts cannot be closed for a future date")
	}
	if latest != nil && !shared.Day(closingDate).After(latest.ClosingDate) {
		return nil, shared.NewDomainError("GL_CLOSURE_NOT_AFTER_LATEST", "Closing date must be after the latest closure on "+latest.ClosingDate.Format(shared.DateLayout))
	}
	return &GLClosure{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		OfficeID:            officeID,
		ClosingDate:         shared.Day(closingDate),
		Comments:            comments,
	}, nil
}

// UpdateComments is the only change allowed on a closure
func (c *GLClosure) UpdateComments(comments string) {
	c.Comments = comments
	c.Touch()
	c.IncrementVersion()
}

// Delete reopens the period. Only the office's latest closure can go.
func (c *GLClosure) Delete(latest *GLClosure) error {
	if c.Deleted {
		return shared.NotFound("GL closure")
	}
	if latest == nil || latest.ID != c.ID {
		return shared.NewDomainError("GL_CLOSURE_NOT_LATEST", "Only the latest closure of an office can be deleted")
	}
	c.Deleted = true
	c.Touch()
	c.IncrementVersion()
	return nil
}

// EnsureOpenPeriod fails when date falls on or before the latest closure
func EnsureOpenPeriod(date time.Time, latest *GLClosure) error {
	if latest == nil || latest.Deleted {
		return nil
	}
	if !shared.Day(date).After(latest.ClosingDate) {
		return shared.NewDomainError("ACCOUNTING_PERIOD_CLOSED", "Accounts are closed up to "+latest.ClosingDate.Format(shared.DateLayout))
	}
	return nil
}
