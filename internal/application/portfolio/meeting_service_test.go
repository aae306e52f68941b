package portfolio

import (
	"context"
	"testing"

	"github.com/fincore/backend/internal/domain/portfolio"
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMeetingService_Create(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*sheetFixture, *MeetingService) {
		f := newSheetFixture(t)
		return f, NewMeetingService(f.m.meetings, f.m.calendars, f.m.groups)
	}

	t.Run("records attendance of members", func(t *testing.T) {
		f, svc := setup(t)
		f.m.meetings.On("FindByInstanceAndDate", ctx, f.tenantID, f.instance.ID, f.date).Return(nil, nil)
		f.m.meetings.On("Save", ctx, mock.AnythingOfType("*portfolio.Meeting")).Return(nil).Once()

		resp, err := svc.Create(ctx, f.tenantID, CreateMeetingRequest{
			EntityType:  "GROUP",
			EntityID:    f.group.ID,
			MeetingDate: "2024-02-05",
			Attendance:  []AttendanceRow{{ClientID: f.client.ID, Attendance: "ABSENT"}},
		})

		require.NoError(t, err)
		assert.Equal(t, f.date, resp.MeetingDate)
		f.m.meetings.AssertExpectations(t)
	})

	t.Run("stranger in the register", func(t *testing.T) {
		f, svc := setup(t)
		f.m.meetings.On("FindByInstanceAndDate", ctx, f.tenantID, f.instance.ID, f.date).Return(nil, nil)

		_, err := svc.Create(ctx, f.tenantID, CreateMeetingRequest{
			EntityType:  "GROUP",
			EntityID:    f.group.ID,
			MeetingDate: "2024-02-05",
			Attendance:  []AttendanceRow{{ClientID: uuid.New(), Attendance: "PRESENT"}},
		})

		require.Error(t, err)
		f.m.meetings.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("no calendar attached", func(t *testing.T) {
		m := newPortfolioMocks()
		tenantID := uuid.New()
		group := activeGroup(t, tenantID, uuid.New(), nil, "Lonely")
		m.groups.On("FindByIDForTenant", ctx, tenantID, group.ID).Return(group, nil)
		m.calendars.On("FindForEntity", ctx, tenantID, portfolio.CalendarEntityGroup, group.ID, mock.Anything).
			Return(nil, nil, shared.NotFound("Calendar"))

		_, err := NewMeetingService(m.meetings, m.calendars, m.groups).Create(ctx, tenantID, CreateMeetingRequest{
			EntityType: "GROUP", EntityID: group.ID, MeetingDate: "2024-02-05",
		})

		assert.Equal(t, "CALENDAR_NOT_ATTACHED", domainCode(t, err))
	})
}

func TestMeetingService_UpdateAttendance(t *testing.T) {
	ctx := context.Background()
	f := newSheetFixture(t)
	svc := NewMeetingService(f.m.meetings, f.m.calendars, f.m.groups)
	meeting, err := portfolio.NewMeeting(f.tenantID, f.instance, f.calendar, nil, f.date)
	require.NoError(t, err)
	f.m.meetings.On("FindByIDForTenant", ctx, f.tenantID, meeting.ID).Return(meeting, nil)
	f.m.calendars.On("FindInstance", ctx, f.tenantID, f.instance.ID).Return(f.instance, nil)
	f.m.meetings.On("Save", ctx, meeting).Return(nil).Once()

	resp, err := svc.UpdateAttendance(ctx, f.tenantID, meeting.ID, AttendanceRequest{
		Attendance: []AttendanceRow{{ClientID: f.client.ID, Attendance: "LEAVE"}},
	})

	require.NoError(t, err)
	require.Len(t, resp.Attendance, 1)
	a, ok := meeting.AttendanceOf(f.client.ID)
	assert.True(t, ok)
	assert.Equal(t, portfolio.AttendanceLeave, a)
}
