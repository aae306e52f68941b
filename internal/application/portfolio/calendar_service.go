package portfolio

import (
	"context"
	"time"

	"github.com/fincore/backend/internal/domain/portfolio"
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CalendarService manages calendars attached to centers, groups and loans
type CalendarService struct {
	calendarRepo portfolio.CalendarRepository
	meetingRepo  portfolio.MeetingRepository
	groupRepo    portfolio.GroupRepository
	loanRepo     portfolio.LoanRepository
}

// NewCalendarService creates a new CalendarService
func NewCalendarService(
	calendarRepo portfolio.CalendarRepository,
	meetingRepo portfolio.MeetingRepository,
	groupRepo portfolio.GroupRepository,
	loanRepo portfolio.LoanRepository,
) *CalendarService {
	return &CalendarService{
		calendarRepo: calendarRepo,
		meetingRepo:  meetingRepo,
		groupRepo:    groupRepo,
		loanRepo:     loanRepo,
	}
}

// Create creates a calendar and attaches it to an entity. An entity holds
// at most one calendar of each type.
func (s *CalendarService) Create(ctx context.Context, tenantID uuid.UUID, req CreateCalendarRequest) (*CalendarResponse, error) {
	in, err := req.input()
	if err != nil {
		return nil, err
	}
	entityType := portfolio.CalendarEntityType(req.EntityType)
	if err := s.checkEntity(ctx, tenantID, entityType, req.EntityID); err != nil {
		return nil, err
	}
	existing, _, err := s.calendarRepo.FindForEntity(ctx, tenantID, entityType, req.EntityID, in.Type)
	if err != nil && !shared.IsNotFound(err) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("CALENDAR_EXISTS_FOR_ENTITY", "Entity already has a "+string(in.Type)+" calendar")
	}

	cal, err := portfolio.NewCalendar(tenantID, in)
	if err != nil {
		return nil, err
	}
	inst, err := portfolio.NewCalendarInstance(cal, entityType, req.EntityID)
	if err != nil {
		return nil, err
	}
	if err := s.calendarRepo.Save(ctx, cal); err != nil {
		return nil, err
	}
	if err := s.calendarRepo.SaveInstance(ctx, inst); err != nil {
		return nil, err
	}
	return ToCalendarResponse(cal, inst), nil
}

func (s *CalendarService) checkEntity(ctx context.Context, tenantID uuid.UUID, entityType portfolio.CalendarEntityType, id uuid.UUID) error {
	switch entityType {
	case portfolio.CalendarEntityCenter, portfolio.CalendarEntityGroup:
		g, err := s.groupRepo.FindByIDForTenant(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if g.IsCenter() != (entityType == portfolio.CalendarEntityCenter) {
			return shared.NewDomainError("INVALID_ENTITY_TYPE", "Entity is not a "+string(entityType))
		}
		if g.Status == portfolio.GroupStatusClosed {
			return shared.NewDomainError("GROUP_CLOSED", "Calendars cannot be attached to closed groups")
		}
		return nil
	case portfolio.CalendarEntityLoan:
		_, err := s.loanRepo.FindByIDForTenant(ctx, tenantID, id)
		return err
	}
	return shared.NewDomainError("INVALID_ENTITY_TYPE", "Calendars attach to centers, groups or loans")
}

// Update changes a calendar. Changing the recurrence of a calendar that
// already has meetings keeps the old recurrence as history.
func (s *CalendarService) Update(ctx context.Context, tenantID, id uuid.UUID, req CalendarRequest) (*CalendarResponse, error) {
	in, err := req.input()
	if err != nil {
		return nil, err
	}
	cal, err := s.calendarRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	meetings, err := s.meetingRepo.CountForCalendar(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	history, err := cal.Update(in, meetings > 0)
	if err != nil {
		return nil, err
	}
	if err := s.calendarRepo.Save(ctx, cal); err != nil {
		return nil, err
	}
	if history != nil {
		if err := s.calendarRepo.SaveHistory(ctx, history); err != nil {
			return nil, err
		}
	}
	return ToCalendarResponse(cal, nil), nil
}

// Delete removes a calendar without meetings
func (s *CalendarService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.calendarRepo.FindByIDForTenant(ctx, tenantID, id); err != nil {
		return err
	}
	meetings, err := s.meetingRepo.CountForCalendar(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if meetings > 0 {
		return shared.NewDomainError("CALENDAR_HAS_MEETINGS", "Calendar has recorded meetings")
	}
	return s.calendarRepo.Delete(ctx, tenantID, id)
}

// GetByID retrieves a calendar
func (s *CalendarService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*CalendarResponse, error) {
	cal, err := s.calendarRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return ToCalendarResponse(cal, nil), nil
}

// GetForEntity retrieves the calendar of a type attached to an entity
func (s *CalendarService) GetForEntity(ctx context.Context, tenantID uuid.UUID, entityType string, entityID uuid.UUID, calType string) (*CalendarResponse, error) {
	cal, inst, err := s.calendarRepo.FindForEntity(ctx, tenantID, portfolio.CalendarEntityType(entityType), entityID, portfolio.CalendarType(calType))
	if err != nil {
		return nil, err
	}
	if cal == nil {
		return nil, shared.NotFound("Calendar")
	}
	return ToCalendarResponse(cal, inst), nil
}

// RecurringDates expands a calendar over [from, to] and reports the first
// date after the range
func (s *CalendarService) RecurringDates(ctx context.Context, tenantID, id uuid.UUID, q RecurringDatesQuery) (*RecurringDatesResponse, error) {
	from, err := shared.ParseDate(q.From)
	if err != nil {
		return nil, err
	}
	to, err := shared.ParseDate(q.To)
	if err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, shared.NewDomainError("INVALID_DATE_RANGE", "End of range is before its start")
	}
	cal, err := s.calendarRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	dates, err := cal.RecurringDates(from, to, q.Limit)
	if err != nil {
		return nil, err
	}
	resp := &RecurringDatesResponse{CalendarID: id, Dates: dates}
	if next, ok := cal.NextRecurringDate(to); ok {
		resp.Next = &next
	}
	return resp, nil
}

// NextDate returns the first calendar date strictly after after
func (s *CalendarService) NextDate(ctx context.Context, tenantID, id uuid.UUID, after string) (*RecurringDatesResponse, error) {
	date, err := shared.ParseDateOr(after)
	if err != nil {
		return nil, err
	}
	cal, err := s.calendarRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := &RecurringDatesResponse{CalendarID: id, Dates: []time.Time{}}
	if next, ok := cal.NextRecurringDate(date); ok {
		resp.Next = &next
	}
	return resp, nil
}

// IsValidDate reports whether a meeting may be held on date
func (s *CalendarService) IsValidDate(ctx context.Context, tenantID, id uuid.UUID, date string) (bool, error) {
	d, err := shared.ParseDate(date)
	if err != nil {
		return false, err
	}
	cal, err := s.calendarRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return false, err
	}
	history, err := s.calendarRepo.FindHistory(ctx, tenantID, id)
	if err != nil {
		return false, err
	}
	return cal.IsValidRecurringDate(d, history), nil
}
