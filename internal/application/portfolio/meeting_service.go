package portfolio

import (
	"context"
	"time"

	"github.com/fincore/backend/internal/domain/portfolio"
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// MeetingService records meetings of groups and centers
type MeetingService struct {
	meetingRepo  portfolio.MeetingRepository
	calendarRepo portfolio.CalendarRepository
	groupRepo    portfolio.GroupRepository
}

// NewMeetingService creates a new MeetingService
func NewMeetingService(
	meetingRepo portfolio.MeetingRepository,
	calendarRepo portfolio.CalendarRepository,
	groupRepo portfolio.GroupRepository,
) *MeetingService {
	return &MeetingService{meetingRepo: meetingRepo, calendarRepo: calendarRepo, groupRepo: groupRepo}
}

// meetingSlot is a group or center with the calendar it meets on
type meetingSlot struct {
	entity   *portfolio.Group
	groups   []portfolio.Group
	calendar *portfolio.Calendar
	instance *portfolio.CalendarInstance
	history  []portfolio.CalendarHistory
}

// members returns the clients of the slot's groups
func (m *meetingSlot) members() map[uuid.UUID]bool {
	out := make(map[uuid.UUID]bool)
	for _, g := range m.groups {
		for _, id := range g.ClientIDs {
			out[id] = true
		}
	}
	return out
}

// loadMeetingSlot resolves the entity, its groups and its collection
// calendar. A MEETING calendar is used when no COLLECTION calendar exists.
func loadMeetingSlot(ctx context.Context, groupRepo portfolio.GroupRepository, calendarRepo portfolio.CalendarRepository, tenantID uuid.UUID, entityType string, entityID uuid.UUID) (*meetingSlot, error) {
	entity, err := groupRepo.FindByIDForTenant(ctx, tenantID, entityID)
	if err != nil {
		return nil, err
	}
	et := portfolio.CalendarEntityType(entityType)
	if entity.IsCenter() != (et == portfolio.CalendarEntityCenter) {
		return nil, shared.NewDomainError("INVALID_ENTITY_TYPE", "Entity is not a "+entityType)
	}
	slot := &meetingSlot{entity: entity}
	if entity.IsCenter() {
		slot.groups, err = groupRepo.FindByParent(ctx, tenantID, entity.ID)
		if err != nil {
			return nil, err
		}
	} else {
		slot.groups = []portfolio.Group{*entity}
	}

	for _, calType := range []portfolio.CalendarType{portfolio.CalendarTypeCollection, portfolio.CalendarTypeMeeting} {
		cal, inst, err := calendarRepo.FindForEntity(ctx, tenantID, et, entityID, calType)
		if err != nil && !shared.IsNotFound(err) {
			return nil, err
		}
		if cal != nil {
			slot.calendar, slot.instance = cal, inst
			break
		}
	}
	if slot.calendar == nil {
		return nil, shared.NewDomainError("CALENDAR_NOT_ATTACHED", "The "+entityType+" has no meeting calendar")
	}
	slot.history, err = calendarRepo.FindHistory(ctx, tenantID, slot.calendar.ID)
	if err != nil {
		return nil, err
	}
	return slot, nil
}

// newMeeting validates date against the slot's calendar and checks that
// no meeting is recorded on it yet
func newMeeting(ctx context.Context, meetingRepo portfolio.MeetingRepository, slot *meetingSlot, date time.Time, attendance []portfolio.ClientAttendance) (*portfolio.Meeting, error) {
	existing, err := meetingRepo.FindByInstanceAndDate(ctx, slot.entity.TenantID, slot.instance.ID, date)
	if err != nil && !shared.IsNotFound(err) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("MEETING_EXISTS", "A meeting is already recorded on "+date.Format(shared.DateLayout))
	}
	meeting, err := portfolio.NewMeeting(slot.entity.TenantID, slot.instance, slot.calendar, slot.history, date)
	if err != nil {
		return nil, err
	}
	if err := meeting.RecordAttendance(attendance, slot.members()); err != nil {
		return nil, err
	}
	return meeting, nil
}

// Create records a meeting with its attendance
func (s *MeetingService) Create(ctx context.Context, tenantID uuid.UUID, req CreateMeetingRequest) (*MeetingResponse, error) {
	date, err := shared.ParseDate(req.MeetingDate)
	if err != nil {
		return nil, err
	}
	slot, err := loadMeetingSlot(ctx, s.groupRepo, s.calendarRepo, tenantID, req.EntityType, req.EntityID)
	if err != nil {
		return nil, err
	}
	meeting, err := newMeeting(ctx, s.meetingRepo, slot, date, attendanceRows(req.Attendance))
	if err != nil {
		return nil, err
	}
	if err := s.meetingRepo.Save(ctx, meeting); err != nil {
		return nil, err
	}
	return ToMeetingResponse(meeting), nil
}

// UpdateAttendance replaces the register of a meeting
func (s *MeetingService) UpdateAttendance(ctx context.Context, tenantID, id uuid.UUID, req AttendanceRequest) (*MeetingResponse, error) {
	meeting, err := s.meetingRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	members, err := s.membersOf(ctx, tenantID, meeting)
	if err != nil {
		return nil, err
	}
	if err := meeting.RecordAttendance(attendanceRows(req.Attendance), members); err != nil {
		return nil, err
	}
	if err := s.meetingRepo.Save(ctx, meeting); err != nil {
		return nil, err
	}
	return ToMeetingResponse(meeting), nil
}

func (s *MeetingService) membersOf(ctx context.Context, tenantID uuid.UUID, meeting *portfolio.Meeting) (map[uuid.UUID]bool, error) {
	inst, err := s.calendarRepo.FindInstance(ctx, tenantID, meeting.CalendarInstanceID)
	if err != nil {
		return nil, err
	}
	slot, err := loadMeetingSlot(ctx, s.groupRepo, s.calendarRepo, tenantID, string(inst.EntityType), inst.EntityID)
	if err != nil {
		return nil, err
	}
	return slot.members(), nil
}

// Delete removes a meeting
func (s *MeetingService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.meetingRepo.FindByIDForTenant(ctx, tenantID, id); err != nil {
		return err
	}
	return s.meetingRepo.Delete(ctx, tenantID, id)
}

// GetByID retrieves a meeting
func (s *MeetingService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*MeetingResponse, error) {
	meeting, err := s.meetingRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return ToMeetingResponse(meeting), nil
}

// ListForEntity lists the meetings of a group or center, newest first
func (s *MeetingService) ListForEntity(ctx context.Context, tenantID uuid.UUID, entityType string, entityID uuid.UUID) ([]MeetingResponse, error) {
	slot, err := loadMeetingSlot(ctx, s.groupRepo, s.calendarRepo, tenantID, entityType, entityID)
	if err != nil {
		return nil, err
	}
	meetings, err := s.meetingRepo.FindByInstance(ctx, tenantID, slot.instance.ID)
	if err != nil {
		return nil, err
	}
	out := make([]MeetingResponse, 0, len(meetings))
	for i := range meetings {
		out = append(out, *ToMeetingResponse(&meetings[i]))
	}
	return out, nil
}
