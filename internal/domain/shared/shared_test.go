package shared

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDomainErrorIs(t *testing.T) {
	err := fmt.Errorf("loading office: %w", NotFound("office"))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.True(t, IsNotFound(err))
	assert.NotErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, "loading office: office not found", err.Error())
}

func TestGenericErrors_MatchByCode(t *testing.T) {
	stale := fmt.Errorf("save loan: %w", NewDomainError("CONCURRENCY_CONFLICT", "Loan LN-1 changed"))
	assert.ErrorIs(t, stale, ErrConcurrencyConflict)
	assert.NotErrorIs(t, stale, ErrAlreadyExists)

	codes := map[string]bool{}
	for _, err := range []*DomainError{ErrNotFound, ErrAlreadyExists, ErrInvalidInput, ErrInvalidState, ErrForbidden, ErrConcurrencyConflict} {
		assert.False(t, codes[err.Code], "duplicate code %s", err.Code)
		codes[err.Code] = true
	}
}

func TestDay(t *testing.T) {
	loc := time.FixedZone("EAT", 3*3600)
	d := Day(time.Date(2024, 3, 9, 23, 30, 0, 0, loc))
	assert.Equal(t, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), d)
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	b := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 30, DaysBetween(a, b))
	assert.Equal(t, -30, DaysBetween(b, a))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	assert.NoError(t, err)
	assert.Equal(t, time.February, d.Month())

	_, err = ParseDate("29/02/2024")
	assert.Error(t, err)
}

func TestDateRangesOverlap(t *testing.T) {
	d := func(day int) time.Time { return time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC) }
	ptr := func(t time.Time) *time.Time { return &t }

	assert.True(t, DateRangesOverlap(d(1), ptr(d(10)), d(10), ptr(d(20))))
	assert.False(t, DateRangesOverlap(d(1), ptr(d(9)), d(10), ptr(d(20))))
	assert.True(t, DateRangesOverlap(d(1), nil, d(10), ptr(d(20))))
	assert.False(t, DateRangesOverlap(d(21), nil, d(10), ptr(d(20))))
}

func TestTenantAggregateRoot(t *testing.T) {
	tenant := uuid.New()
	root := NewTenantAggregateRoot(tenant)
	assert.Equal(t, 1, root.Version)
	assert.Equal(t, tenant, root.TenantID)
	assert.NotEqual(t, uuid.Nil, root.ID)

	root.IncrementVersion()
	assert.Equal(t, 2, root.Version)

	root.AddDomainEvent(&BaseDomainEvent{Type: "LoanStatusChanged"})
	assert.Len(t, root.PullEvents(), 1)
	assert.Empty(t, root.PullEvents())
}

func TestFilterNormalize(t *testing.T) {
	f := Filter{Page: 0, PageSize: 1000, OrderDir: "sideways"}.Normalize()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 200, f.PageSize)
	assert.Equal(t, "desc", f.OrderDir)
	assert.Equal(t, 0, f.Offset())
}
