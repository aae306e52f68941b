package organisation

import (
	"strings"
	"time"

	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/teambition/rrule-go"
)

// RescheduleType says where a repayment falling on a non-working day goes
type RescheduleType string

const (
	RescheduleSameDay        RescheduleType = "SAME_DAY"
	RescheduleNextWorkingDay RescheduleType = "MOVE_TO_NEXT_WORKING_DAY"
	ReschedulePrevWorkingDay RescheduleType = "MOVE_TO_PREVIOUS_WORKING_DAY"
	DefaultWorkingDaysRRule                 = "FREQ=WEEKLY;INTERVAL=1;BYDAY=MO,TU,WE,TH,FR"
)

// IsValid checks the reschedule type
func (r RescheduleType) IsValid() bool {
	switch r {
	case RescheduleSameDay, RescheduleNextWorkingDay, ReschedulePrevWorkingDay:
		return true
	}
	return false
}

// WorkingDays is the tenant-wide working week expressed as a weekly RRULE
type WorkingDays struct {
	shared.TenantAggregateRoot
	Recurrence     string
	RescheduleType RescheduleType
	days           map[time.Weekday]bool
}

// NewWorkingDays parses and validates a working-week definition
func NewWorkingDays(tenantID uuid.UUID, recurrence string, rescheduleType RescheduleType) (*WorkingDays, error) {
	w := &WorkingDays{TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID)}
	if err := w.Update(recurrence, rescheduleType); err != nil {
		return nil, err
	}
	w.Version = 1
	return w, nil
}

// DefaultWorkingDays is Monday to Friday, moving repayments to the next working day
func DefaultWorkingDays(tenantID uuid.UUID) *WorkingDays {
	w, _ := NewWorkingDays(tenantID, DefaultWorkingDaysRRule, RescheduleNextWorkingDay)
	return w
}

// Update replaces the definition
func (w *WorkingDays) Update(recurrence string, rescheduleType RescheduleType) error {
	recurrence = strings.TrimPrefix(strings.TrimSpace(recurrence), "RRULE:")
	opt, err := rrule.StrToROption(recurrence)
	if err != nil {
		return shared.NewDomainError("INVALID_RECURRENCE", "Working days recurrence is not a valid RRULE: "+err.Error())
	}
	if opt.Freq != rrule.WEEKLY || len(opt.Byweekday) == 0 {
		return shared.NewDomainError("INVALID_RECURRENCE", "Working days must be a weekly rule with BYDAY")
	}
	if !rescheduleType.IsValid() {
		return shared.NewDomainError("INVALID_RESCHEDULE_TYPE", "Invalid repayment rescheduling type")
	}
	days := make(map[time.Weekday]bool, len(opt.Byweekday))
	for _, wd := range opt.Byweekday {
		// rrule weekdays start at Monday=0
		days[time.Weekday((wd.Day()+1)%7)] = true
	}
	w.Recurrence = recurrence
	w.RescheduleType = rescheduleType
	w.days = days
	w.Touch()
	w.IncrementVersion()
	return nil
}

// Load restores the parsed form after reading from storage
func (w *WorkingDays) Load() error {
	v, updated := w.Version, w.UpdatedAt
	if err := w.Update(w.Recurrence, w.RescheduleType); err != nil {
		return err
	}
	w.Version, w.UpdatedAt = v, updated
	return nil
}

// IsWorkingDay reports whether date is a working day
func (w *WorkingDays) IsWorkingDay(date time.Time) bool {
	return w.days[date.Weekday()]
}

// Adjust moves date according to the reschedule type when it is not a
// working day
func (w *WorkingDays) Adjust(date time.Time) time.Time {
	if w.IsWorkingDay(date) || len(w.days) == 0 {
		return date
	}
	step := 0
	switch w.RescheduleType {
	case RescheduleNextWorkingDay:
		step = 1
	case ReschedulePrevWorkingDay:
		step = -1
	default:
		return date
	}
	for i := 0; i < 7; i++ {
		date = date.AddDate(0, 0, step)
		if w.IsWorkingDay(date) {
			break
		}
	}
	return date
}
