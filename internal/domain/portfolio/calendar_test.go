package portfolio

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func weekday(d time.Weekday) *time.Weekday { return &d }

func weeklyCalendar(t *testing.T, start time.Time, day time.Weekday) *Calendar {
	t.Helper()
	cal, err := NewCalendar(uuid.New(), CalendarInput{
		Title:        "Center meeting",
		StartDate:    start,
		Type:         CalendarTypeMeeting,
		Repeating:    true,
		Frequency:    FrequencyWeekly,
		Interval:     1,
		RepeatsOnDay: weekday(day),
	})
	require.NoError(t, err)
	return cal
}

func TestBuildRecurrence(t *testing.T) {
	tests := []struct {
		name    string
		freq    CalendarFrequency
		every   int
		day     *time.Weekday
		nth     int
		want    string
		wantErr bool
	}{
		{"weekly on monday", FrequencyWeekly, 2, weekday(time.Monday), 0, "FREQ=WEEKLY;INTERVAL=2;BYDAY=MO", false},
		{"last friday of month", FrequencyMonthly, 1, weekday(time.Friday), -1, "FREQ=MONTHLY;INTERVAL=1;BYDAY=FR;BYSETPOS=-1", false},
		{"15th of month", FrequencyMonthly, 1, nil, 15, "FREQ=MONTHLY;INTERVAL=1;BYMONTHDAY=15", false},
		{"daily", FrequencyDaily, 3, nil, 0, "FREQ=DAILY;INTERVAL=3", false},
		{"zero interval", FrequencyDaily, 0, nil, 0, "", true},
		{"nth out of range", FrequencyMonthly, 1, nil, 30, "", true},
		{"weekday in fifth week", FrequencyMonthly, 1, weekday(time.Monday), 5, "", true},
		{"day on yearly", FrequencyYearly, 1, weekday(time.Monday), 0, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildRecurrence(tt.freq, tt.every, tt.day, tt.nth)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCalendarRecurringDates(t *testing.T) {
	cal := weeklyCalendar(t, date(2024, 1, 1), time.Monday)

	dates, err := cal.RecurringDates(date(2024, 1, 1), date(2024, 1, 31), 0)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		date(2024, 1, 1), date(2024, 1, 8), date(2024, 1, 15), date(2024, 1, 22), date(2024, 1, 29),
	}, dates)

	limited, err := cal.RecurringDates(date(2024, 1, 1), date(2024, 12, 31), 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	next, ok := cal.NextRecurringDate(date(2024, 1, 1))
	assert.True(t, ok)
	assert.Equal(t, date(2024, 1, 8), next)

	assert.True(t, cal.IsValidRecurringDate(date(2024, 1, 15), nil))
	assert.False(t, cal.IsValidRecurringDate(date(2024, 1, 16), nil))
}

func TestCalendarMonthlyLastWeekday(t *testing.T) {
	cal, err := NewCalendar(uuid.New(), CalendarInput{
		Title:                  "Collection",
		StartDate:              date(2024, 1, 1),
		Type:                   CalendarTypeCollection,
		Repeating:              true,
		Frequency:              FrequencyMonthly,
		Interval:               1,
		RepeatsOnDay:           weekday(time.Friday),
		RepeatsOnNthDayOfMonth: -1,
	})
	require.NoError(t, err)
	dates, err := cal.RecurringDates(date(2024, 1, 1), date(2024, 2, 29), 0)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{date(2024, 1, 26), date(2024, 2, 23)}, dates)
}

func TestCalendarNonRepeating(t *testing.T) {
	cal, err := NewCalendar(uuid.New(), CalendarInput{Title: "One-off", StartDate: date(2024, 3, 5), Type: CalendarTypeMeeting})
	require.NoError(t, err)
	assert.Empty(t, cal.Recurrence)
	dates, err := cal.RecurringDates(date(2024, 3, 1), date(2024, 3, 31), 0)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{date(2024, 3, 5)}, dates)
	assert.True(t, cal.IsValidRecurringDate(date(2024, 3, 5), nil))
	assert.False(t, cal.IsValidRecurringDate(date(2024, 3, 6), nil))
}

func TestCalendarUpdateKeepsHistory(t *testing.T) {
	cal := weeklyCalendar(t, date(2024, 1, 1), time.Monday)
	in := CalendarInput{
		Title:        "Center meeting",
		StartDate:    date(2024, 2, 6),
		Type:         CalendarTypeMeeting,
		Repeating:    true,
		Frequency:    FrequencyWeekly,
		Interval:     1,
		RepeatsOnDay: weekday(time.Tuesday),
	}

	t.Run("no meetings means no history", func(t *testing.T) {
		c := weeklyCalendar(t, date(2024, 1, 1), time.Monday)
		h, err := c.Update(in, false)
		require.NoError(t, err)
		assert.Nil(t, h)
	})

	h, err := cal.Update(in, true)
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.Equal(t, date(2024, 1, 1), h.StartDate)
	assert.Equal(t, date(2024, 2, 5), h.EndDate)
	assert.Equal(t, "FREQ=WEEKLY;INTERVAL=1;BYDAY=MO", h.Recurrence)

	history := []CalendarHistory{*h}
	assert.True(t, cal.IsValidRecurringDate(date(2024, 1, 22), history), "monday under the old rule")
	assert.False(t, cal.IsValidRecurringDate(date(2024, 1, 22), nil))
	assert.True(t, cal.IsValidRecurringDate(date(2024, 2, 13), history), "tuesday under the new rule")

	t.Run("start cannot move back once meetings exist", func(t *testing.T) {
		back := in
		back.StartDate = date(2023, 12, 1)
		back.RepeatsOnDay = weekday(time.Friday)
		version := cal.Version
		_, err := cal.Update(back, true)
		assert.Error(t, err)

		assert.Equal(t, date(2024, 2, 6), cal.StartDate)
		assert.Equal(t, "FREQ=WEEKLY;INTERVAL=1;BYDAY=TU", cal.Recurrence)
		assert.Equal(t, version, cal.Version)
		assert.True(t, cal.IsValidRecurringDate(date(2024, 2, 13), nil))
	})

	t.Run("invalid input leaves the calendar as it was", func(t *testing.T) {
		bad := in
		before := date(2020, 1, 1)
		bad.Title = "Renamed"
		bad.EndDate = &before
		_, err := cal.Update(bad, false)
		assert.Error(t, err)
		assert.Equal(t, "Center meeting", cal.Title)
		assert.Nil(t, cal.EndDate)
	})
}

func TestMeetingAttendance(t *testing.T) {
	cal := weeklyCalendar(t, date(2024, 1, 1), time.Monday)
	instance, err := NewCalendarInstance(cal, CalendarEntityCenter, uuid.New())
	require.NoError(t, err)

	_, err = NewMeeting(cal.TenantID, instance, cal, nil, date(2024, 1, 2))
	assert.Error(t, err, "not a calendar date")
	_, err = NewMeeting(cal.TenantID, instance, cal, nil, time.Now().AddDate(0, 0, 14))
	assert.Error(t, err, "future")

	m, err := NewMeeting(cal.TenantID, instance, cal, nil, date(2024, 1, 8))
	require.NoError(t, err)

	member, outsider := uuid.New(), uuid.New()
	members := map[uuid.UUID]bool{member: true}
	assert.Error(t, m.RecordAttendance([]ClientAttendance{{ClientID: outsider, Attendance: AttendancePresent}}, members))
	assert.Error(t, m.RecordAttendance([]ClientAttendance{{ClientID: member, Attendance: "SLEEPING"}}, members))
	require.NoError(t, m.RecordAttendance([]ClientAttendance{{ClientID: member, Attendance: AttendanceLate}}, members))

	a, ok := m.AttendanceOf(member)
	assert.True(t, ok)
	assert.Equal(t, AttendanceLate, a)
	_, ok = m.AttendanceOf(outsider)
	assert.False(t, ok)
}
