package organisation

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHoliday(t *testing.T) {
	tenant := uuid.New()
	office := uuid.New()

	t.Run("valid holiday", func(t *testing.T) {
		h, err := NewHoliday(tenant, "Easter", "", date(2024, 3, 29), date(2024, 4, 1), date(2024, 4, 2), []uuid.UUID{office, office})
		require.NoError(t, err)
		assert.Equal(t, HolidayStatusPending, h.Status)
		assert.Len(t, h.OfficeIDs, 1)
		assert.True(t, h.Contains(date(2024, 3, 30)))
		assert.False(t, h.Contains(date(2024, 4, 2)))
		assert.True(t, h.AppliesTo(office))
	})

	t.Run("reschedule date inside holiday", func(t *testing.T) {
		_, err := NewHoliday(tenant, "Easter", "", date(2024, 3, 29), date(2024, 4, 1), date(2024, 3, 30), []uuid.UUID{office})
		assert.Error(t, err)
	})

	t.Run("to before from", func(t *testing.T) {
		_, err := NewHoliday(tenant, "Bad", "", date(2024, 4, 1), date(2024, 3, 29), date(2024, 4, 2), []uuid.UUID{office})
		assert.Error(t, err)
	})

	t.Run("offices required", func(t *testing.T) {
		_, err := NewHoliday(tenant, "None", "", date(2024, 4, 1), date(2024, 4, 1), date(2024, 4, 2), nil)
		assert.Error(t, err)
	})
}

func TestHolidayLifecycle(t *testing.T) {
	h, err := NewHoliday(uuid.New(), "Madaraka", "", date(2024, 6, 1), date(2024, 6, 1), date(2024, 6, 3), []uuid.UUID{uuid.New()})
	require.NoError(t, err)

	require.NoError(t, h.Activate())
	assert.Error(t, h.Activate())

	require.NoError(t, h.Update("Madaraka Day", "public", date(2025, 1, 1), date(2025, 1, 2), date(2025, 1, 3), []uuid.UUID{uuid.New()}))
	assert.Equal(t, "Madaraka Day", h.Name)
	assert.Equal(t, date(2024, 6, 1), h.FromDate, "active holiday keeps its dates")

	require.NoError(t, h.Delete())
	assert.Error(t, h.Delete())
	assert.Error(t, h.Update("x", "", time.Now(), time.Now(), time.Now().AddDate(0, 0, 1), []uuid.UUID{uuid.New()}))
}

func TestWorkingDays(t *testing.T) {
	tenant := uuid.New()
	wd := DefaultWorkingDays(tenant)
	require.NotNil(t, wd)

	saturday := date(2024, 6, 8)
	assert.False(t, wd.IsWorkingDay(saturday))
	assert.True(t, wd.IsWorkingDay(date(2024, 6, 7)))
	assert.Equal(t, date(2024, 6, 10), wd.Adjust(saturday))

	prev, err := NewWorkingDays(tenant, "RRULE:FREQ=WEEKLY;INTERVAL=1;BYDAY=MO,TU,WE,TH,FR,SA", ReschedulePrevWorkingDay)
	require.NoError(t, err)
	assert.Equal(t, saturday, prev.Adjust(saturday))
	assert.Equal(t, saturday, prev.Adjust(date(2024, 6, 9)))

	same, err := NewWorkingDays(tenant, DefaultWorkingDaysRRule, RescheduleSameDay)
	require.NoError(t, err)
	assert.Equal(t, saturday, same.Adjust(saturday))

	_, err = NewWorkingDays(tenant, "FREQ=DAILY;INTERVAL=1", RescheduleSameDay)
	assert.Error(t, err)
	_, err = NewWorkingDays(tenant, "nonsense", RescheduleSameDay)
	assert.Error(t, err)
}
