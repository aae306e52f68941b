package organisation

import (
	"strings"
	"time"

	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// HolidayStatus is the lifecycle state of a holiday
type HolidayStatus string

const (
	HolidayStatusPending HolidayStatus = "PENDING_FOR_ACTIVATION"
	HolidayStatusActive  HolidayStatus = "ACTIVE"
	HolidayStatusDeleted HolidayStatus = "DELETED"
)

// Holiday closes a set of offices for a date range. Repayments due inside
// the range move to RepaymentsRescheduledTo once the holiday is active.
type Holiday struct {
	shared.TenantAggregateRoot
	Name                    string
	Description             string
	FromDate                time.Time
	ToDate                  time.Time
	RepaymentsRescheduledTo time.Time
	OfficeIDs               []uuid.UUID
	Status                  HolidayStatus
}

// NewHoliday creates a holiday pending activation
func NewHoliday(tenantID uuid.UUID, name, description string, from, to, rescheduledTo time.Time, officeIDs []uuid.UUID) (*Holiday, error) {
	h := &Holiday{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Status:              HolidayStatusPending,
	}
	if err := h.apply(name, description, from, to, rescheduledTo, officeIDs); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *Holiday) apply(name, description string, from, to, rescheduledTo time.Time, officeIDs []uuid.UUID) error {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Holiday name must be 1 to 100 characters")
	}
	from, to, rescheduledTo = shared.Day(from), shared.Day(to), shared.Day(rescheduledTo)
	if to.Before(from) {
		return shared.NewDomainError("HOLIDAY_TO_BEFORE_FROM", "Holiday to date cannot be before from date")
	}
	if !rescheduledTo.Before(from) && !rescheduledTo.After(to) {
		return shared.NewDomainError("HOLIDAY_RESCHEDULE_INSIDE", "Repayments cannot be rescheduled to a date inside the holiday")
	}
	if len(officeIDs) == 0 {
		return shared.NewDomainError("HOLIDAY_OFFICES_REQUIRED", "At least one office is required")
	}
	h.Name = name
	h.Description = description
	h.FromDate, h.ToDate, h.RepaymentsRescheduledTo = from, to, rescheduledTo
	h.OfficeIDs = dedupeIDs(officeIDs)
	return nil
}

// Update changes the holiday. Dates and offices of an active holiday are
// fixed; only name and description can change.
func (h *Holiday) Update(name, description string, from, to, rescheduledTo time.Time, officeIDs []uuid.UUID) error {
	switch h.Status {
	case HolidayStatusDeleted:
		return shared.NewDomainError("HOLIDAY_DELETED", "Deleted holidays cannot be updated")
	case HolidayStatusActive:
		from, to, rescheduledTo, officeIDs = h.FromDate, h.ToDate, h.RepaymentsRescheduledTo, h.OfficeIDs
	}
	if err := h.apply(name, description, from, to, rescheduledTo, officeIDs); err != nil {
		return err
	}
	h.Touch()
	h.IncrementVersion()
	return nil
}

// Activate makes the holiday effective for schedule generation
func (h *Holiday) Activate() error {
	if h.Status != HolidayStatusPending {
		return shared.NewDomainError("HOLIDAY_NOT_PENDING", "Only pending holidays can be activated")
	}
	h.Status = HolidayStatusActive
	h.Touch()
	h.IncrementVersion()
	return nil
}

// Delete soft-deletes the holiday
func (h *Holiday) Delete() error {
	if h.Status == HolidayStatusDeleted {
		return shared.NewDomainError("HOLIDAY_DELETED", "Holiday is already deleted")
	}
	h.Status = HolidayStatusDeleted
	h.Touch()
	h.IncrementVersion()
	return nil
}

// Contains reports whether date falls within the holiday
func (h *Holiday) Contains(date time.Time) bool {
	d := shared.Day(date)
	return !d.Before(h.FromDate) && !d.After(h.ToDate)
}

// AppliesTo reports whether the holiday covers officeID
func (h *Holiday) AppliesTo(officeID uuid.UUID) bool {
	for _, id := range h.OfficeIDs {
		if id == officeID {
			return true
		}
	}
	return false
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
