package portfolio

import (
	"time"

	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AttendanceType records a client's presence at a meeting
type AttendanceType string

const (
	AttendancePresent  AttendanceType = "PRESENT"
	AttendanceAbsent   AttendanceType = "ABSENT"
	AttendanceApproved AttendanceType = "APPROVED"
	AttendanceLeave    AttendanceType = "LEAVE"
	AttendanceLate     AttendanceType = "LATE"
)

// IsValid checks the attendance type
func (a AttendanceType) IsValid() bool {
	switch a {
	case AttendancePresent, AttendanceAbsent, AttendanceApproved, AttendanceLeave, AttendanceLate:
		return true
	}
	return false
}

// ClientAttendance is one row of a meeting's register
type ClientAttendance struct {
	ClientID   uuid.UUID
	Attendance AttendanceType
}

// Meeting is a held occurrence of a group or center calendar
type Meeting struct {
	shared.TenantAggregateRoot
	CalendarInstanceID uuid.UUID
	MeetingDate        time.Time
	Attendance         []ClientAttendance
}

// NewMeeting records a meeting on a valid calendar date
func NewMeeting(tenantID uuid.UUID, instance *CalendarInstance, cal *Calendar, history []CalendarHistory, date time.Time) (*Meeting, error) {
	if shared.IsAfterToday(date) {
		return nil, shared.NewDomainError("MEETING_DATE_IN_FUTURE", "Meetings cannot be recorded for a future date")
	}
	if !cal.IsValidRecurringDate(date, history) {
		return nil, shared.NewDomainError("MEETING_DATE_NOT_IN_CALENDAR", "Meeting date is not a valid date of the calendar")
	}
	return &Meeting{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		CalendarInstanceID:  instance.ID,
		MeetingDate:         shared.Day(date),
	}, nil
}

// RecordAttendance replaces the register. members is the set of clients
// belonging to the meeting's group or center.
func (m *Meeting) RecordAttendance(rows []ClientAttendance, members map[uuid.UUID]bool) error {
	seen := make(map[uuid.UUID]bool, len(rows))
	for _, r := range rows {
		if !r.Attendance.IsValid() {
			return shared.NewDomainError("INVALID_ATTENDANCE", "Invalid attendance type: "+string(r.Attendance))
		}
		if !members[r.ClientID] {
			return shared.NewDomainError("ATTENDANCE_CLIENT_NOT_MEMBER", "Client "+r.ClientID.String()+" is not a member")
		}
		if seen[r.ClientID] {
			return shared.NewDomainError("ATTENDANCE_DUPLICATE_CLIENT", "Client listed twice in attendance")
		}
		seen[r.ClientID] = true
	}
	m.Attendance = rows
	m.Touch()
	m.IncrementVersion()
	return nil
}

// AttendanceOf returns the recorded attendance of a client
func (m *Meeting) AttendanceOf(clientID uuid.UUID) (AttendanceType, bool) {
	for _, r := range m.Attendance {
		if r.ClientID == clientID {
			return r.Attendance, true
		}
	}
	return "", false
}
