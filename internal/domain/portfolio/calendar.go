package portfolio

import (
	"fmt"
	"strings"
	"time"

	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/teambition/rrule-go"
)

// CalendarFrequency is the repeat unit of a calendar
type CalendarFrequency string

const (
	FrequencyDaily   CalendarFrequency = "DAILY"
	FrequencyWeekly  CalendarFrequency = "WEEKLY"
	FrequencyMonthly CalendarFrequency = "MONTHLY"
	FrequencyYearly  CalendarFrequency = "YEARLY"
)

// IsValid checks the frequency
func (f CalendarFrequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

// CalendarType is the purpose of a calendar
type CalendarType string

const (
	CalendarTypeCollection CalendarType = "COLLECTION"
	CalendarTypeMeeting    CalendarType = "MEETING"
	CalendarTypeLoan       CalendarType = "LOAN"
)

// IsValid checks the calendar type
func (t CalendarType) IsValid() bool {
	return t == CalendarTypeCollection || t == CalendarTypeMeeting || t == CalendarTypeLoan
}

// CalendarEntityType is the kind of entity a calendar is attached to
type CalendarEntityType string

const (
	CalendarEntityCenter CalendarEntityType = "CENTER"
	CalendarEntityGroup  CalendarEntityType = "GROUP"
	CalendarEntityLoan   CalendarEntityType = "LOAN"
)

// IsValid checks the entity type
func (t CalendarEntityType) IsValid() bool {
	return t == CalendarEntityCenter || t == CalendarEntityGroup || t == CalendarEntityLoan
}

// MaxRecurringDates bounds a single expansion of a recurrence
const MaxRecurringDates = 400

var weekdayCodes = map[time.Weekday]string{
	time.Monday: "MO", time.Tuesday: "TU", time.Wednesday: "WE", time.Thursday: "TH",
	time.Friday: "FR", time.Saturday: "SA", time.Sunday: "SU",
}

// Calendar defines when meetings or collections happen
type Calendar struct {
	shared.TenantAggregateRoot
	Title                  string
	Description            string
	Location               string
	StartDate              time.Time
	EndDate                *time.Time
	Type                   CalendarType
	Repeating              bool
	Frequency              CalendarFrequency
	Interval               int
	RepeatsOnDay           *time.Weekday
	RepeatsOnNthDayOfMonth int
	Recurrence             string
	rule                   *rrule.RRule
}

// CalendarInput carries the editable attributes of a calendar
type CalendarInput struct {
	Title                  string
	Description            string
	Location               string
	StartDate              time.Time
	EndDate                *time.Time
	Type                   CalendarType
	Repeating              bool
	Frequency              CalendarFrequency
	Interval               int
	RepeatsOnDay           *time.Weekday
	RepeatsOnNthDayOfMonth int
}

// BuildRecurrence renders the RFC 5545 rule for a repeating calendar,
// e.g. FREQ=WEEKLY;INTERVAL=2;BYDAY=MO.
func BuildRecurrence(freq CalendarFrequency, interval int, repeatsOnDay *time.Weekday, nthDay int) (string, error) {
	if !freq.IsValid() {
		return "", shared.NewDomainError("INVALID_FREQUENCY", "Invalid calendar frequency")
	}
	if interval < 1 {
		return "", shared.NewDomainError("INVALID_INTERVAL", "Calendar interval must be at least 1")
	}
	parts := []string{"FREQ=" + string(freq), fmt.Sprintf("INTERVAL=%d", interval)}
	switch freq {
	case FrequencyWeekly:
		if repeatsOnDay != nil {
			parts = append(parts, "BYDAY="+weekdayCodes[*repeatsOnDay])
		}
	case FrequencyMonthly:
		if nthDay != 0 && (nthDay < -1 || nthDay > 28) {
			return "", shared.NewDomainError("INVALID_NTH_DAY", "Monthly repeat day must be 1 to 28, or -1 for the last")
		}
		if repeatsOnDay != nil {
			if nthDay == 0 {
				return "", shared.NewDomainError("INVALID_NTH_DAY", "Monthly weekday repeat needs the week of the month")
			}
			if nthDay > 4 {
				return "", shared.NewDomainError("INVALID_NTH_DAY", "Monthly weekday repeat must be in week 1 to 4, or -1 for the last")
			}
			parts = append(parts, "BYDAY="+weekdayCodes[*repeatsOnDay], fmt.Sprintf("BYSETPOS=%d", nthDay))
		} else if nthDay != 0 {
			parts = append(parts, fmt.Sprintf("BYMONTHDAY=%d", nthDay))
		}
	default:
		if repeatsOnDay != nil || nthDay != 0 {
			return "", shared.NewDomainError("INVALID_RECURRENCE", "Repeat day applies only to weekly or monthly calendars")
		}
	}
	return strings.Join(parts, ";"), nil
}

// NewCalendar validates and creates a calendar
func NewCalendar(tenantID uuid.UUID, in CalendarInput) (*Calendar, error) {
	c := &Calendar{TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID)}
	if err := c.apply(in); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Calendar) apply(in CalendarInput) error {
	title := strings.TrimSpace(in.Title)
	if title == "" || len(title) > 70 {
		return shared.NewDomainError("INVALID_TITLE", "Calendar title must be 1 to 70 characters")
	}
	if in.StartDate.IsZero() {
		return shared.NewDomainError("INVALID_DATE", "Calendar start date is required")
	}
	if in.EndDate != nil && shared.Day(*in.EndDate).Before(shared.Day(in.StartDate)) {
		return shared.NewDomainError("CALENDAR_END_BEFORE_START", "Calendar end date cannot be before start date")
	}
	if !in.Type.IsValid() {
		return shared.NewDomainError("INVALID_CALENDAR_TYPE", "Invalid calendar type")
	}
	recurrence := ""
	if in.Repeating {
		if in.Interval == 0 {
			in.Interval = 1
		}
		var err error
		if recurrence, err = BuildRecurrence(in.Frequency, in.Interval, in.RepeatsOnDay, in.RepeatsOnNthDayOfMonth); err != nil {
			return err
		}
	}
	c.Title = title
	c.Description = in.Description
	c.Location = in.Location
	c.StartDate = shared.Day(in.StartDate)
	c.EndDate = nil
	if in.EndDate != nil {
		d := shared.Day(*in.EndDate)
		c.EndDate = &d
	}
	c.Type = in.Type
	c.Repeating = in.Repeating
	c.Frequency = in.Frequency
	c.Interval = in.Interval
	c.RepeatsOnDay = in.RepeatsOnDay
	c.RepeatsOnNthDayOfMonth = in.RepeatsOnNthDayOfMonth
	c.Recurrence = recurrence
	c.rule = nil
	if !in.Repeating {
		c.Frequency, c.Interval, c.RepeatsOnDay, c.RepeatsOnNthDayOfMonth = "", 0, nil, 0
	}
	return nil
}

// CalendarHistory preserves a superseded recurrence so that meetings held
// under it remain valid.
type CalendarHistory struct {
	ID         uuid.UUID
	TenantID   uuid.UUID
	CalendarID uuid.UUID
	StartDate  time.Time
	EndDate    time.Time
	Recurrence string
	CreatedAt  time.Time
}

// Update changes the calendar. When the recurrence or start date changes
// on a calendar that already has meetings, the old definition is returned
// as a history row valid up to the day before the new start date.
func (c *Calendar) Update(in CalendarInput, hasMeetings bool) (*CalendarHistory, error) {
	next := *c
	if err := next.apply(in); err != nil {
		return nil, err
	}
	var history *CalendarHistory
	if hasMeetings && (!c.StartDate.Equal(next.StartDate) || c.Recurrence != next.Recurrence) {
		if !next.StartDate.After(c.StartDate) {
			return nil, shared.NewDomainError("CALENDAR_START_BEFORE_MEETINGS", "A calendar with meetings can only move its start date forward")
		}
		history = &CalendarHistory{
			ID:         uuid.New(),
			TenantID:   c.TenantID,
			CalendarID: c.ID,
			StartDate:  c.StartDate,
			EndDate:    next.StartDate.AddDate(0, 0, -1),
			Recurrence: c.Recurrence,
			CreatedAt:  time.Now(),
		}
	}
	*c = next
	c.Touch()
	c.IncrementVersion()
	return history, nil
}

func (c *Calendar) rrule() (*rrule.RRule, error) {
	if c.rule != nil {
		return c.rule, nil
	}
	r, err := recurrenceRule(c.Recurrence, c.StartDate, c.EndDate)
	if err != nil {
		return nil, err
	}
	c.rule = r
	return r, nil
}

func recurrenceRule(recurrence string, start time.Time, end *time.Time) (*rrule.RRule, error) {
	opt, err := rrule.StrToROption(recurrence)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_RECURRENCE", "Calendar recurrence is not a valid RRULE: "+err.Error())
	}
	opt.Dtstart = shared.Day(start)
	if end != nil {
		opt.Until = shared.Day(*end)
	}
	r, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_RECURRENCE", "Calendar recurrence is not a valid RRULE: "+err.Error())
	}
	return r, nil
}

// RecurringDates returns the calendar dates in [from, to], at most max
func (c *Calendar) RecurringDates(from, to time.Time, max int) ([]time.Time, error) {
	if max <= 0 || max > MaxRecurringDates {
		max = MaxRecurringDates
	}
	from, to = shared.Day(from), shared.Day(to)
	if !c.Repeating {
		if !c.StartDate.Before(from) && !c.StartDate.After(to) {
			return []time.Time{c.StartDate}, nil
		}
		return nil, nil
	}
	r, err := c.rrule()
	if err != nil {
		return nil, err
	}
	dates := make([]time.Time, 0)
	iter := r.Iterator()
	for {
		d, ok := iter()
		if !ok || d.After(to) || len(dates) >= max {
			break
		}
		if d.Before(from) {
			continue
		}
		dates = append(dates, d)
	}
	return dates, nil
}

// NextRecurringDate returns the first calendar date strictly after date
func (c *Calendar) NextRecurringDate(date time.Time) (time.Time, bool) {
	date = shared.Day(date)
	if !c.Repeating {
		return c.StartDate, c.StartDate.After(date)
	}
	r, err := c.rrule()
	if err != nil {
		return time.Time{}, false
	}
	next := r.After(date, false)
	return next, !next.IsZero()
}

// IsValidRecurringDate reports whether a meeting may be held on date.
// Dates generated by a recorded history are also valid.
func (c *Calendar) IsValidRecurringDate(date time.Time, history []CalendarHistory) bool {
	date = shared.Day(date)
	if !c.Repeating {
		return date.Equal(c.StartDate)
	}
	if !date.Before(c.StartDate) {
		r, err := c.rrule()
		return err == nil && r.After(date, true).Equal(date)
	}
	for _, h := range history {
		if date.Before(h.StartDate) || date.After(h.EndDate) {
			continue
		}
		end := h.EndDate
		r, err := recurrenceRule(h.Recurrence, h.StartDate, &end)
		if err == nil && r.After(date, true).Equal(date) {
			return true
		}
	}
	return false
}

// CalendarInstance attaches a calendar to a center, group or loan
type CalendarInstance struct {
	ID         uuid.UUID
	TenantID   uuid.UUID
	CalendarID uuid.UUID
	EntityType CalendarEntityType
	EntityID   uuid.UUID
	CreatedAt  time.Time
}

// NewCalendarInstance links a calendar to an entity
func NewCalendarInstance(c *Calendar, entityType CalendarEntityType, entityID uuid.UUID) (*CalendarInstance, error) {
	if !entityType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ENTITY_TYPE", "Calendars attach to centers, groups or loans")
	}
	if entityID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ENTITY", "Entity is required")
	}
	return &CalendarInstance{
		ID:         uuid.New(),
		TenantID:   c.TenantID,
		CalendarID: c.ID,
		EntityType: entityType,
		EntityID:   entityID,
		CreatedAt:  time.Now(),
	}, nil
}
