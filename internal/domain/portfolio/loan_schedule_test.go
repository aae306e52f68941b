package portfolio

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func monthlyTerms(principal string, n int, rate string) LoanTerms {
	return LoanTerms{
		Currency:              "USD",
		Digits:                2,
		Principal:             dec(principal),
		NumberOfRepayments:    n,
		RepaymentEvery:        1,
		RepaymentFrequency:    PeriodMonths,
		InterestRatePerPeriod: dec(rate),
		InterestPeriod:        InterestPerYear,
		Amortization:          AmortizationEqualInstallments,
		InterestMethod:        InterestDecliningBalance,
		InterestCalculation:   InterestCalcSameAsRepayment,
	}
}

func single(principal string, on time.Time) []Disbursement {
	return []Disbursement{{ExpectedDate: on, Principal: dec(principal)}}
}

func assertDec(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), append([]interface{}{"want %s got %s", want, got.String()}, msgAndArgs...)...)
}

type saturdayToMonday struct{}

func (saturdayToMonday) Adjust(d time.Time) time.Time {
	if d.Weekday() == time.Saturday {
		return d.AddDate(0, 0, 2)
	}
	return d
}

func TestGenerateScheduleDecliningBalanceEMI(t *testing.T) {
	s, err := GenerateSchedule(monthlyTerms("1000", 2, "12"), single("1000", date(2024, 1, 1)), nil, ScheduleContext{})
	require.NoError(t, err)
	require.Len(t, s.Installments, 2)

	first, second := s.Installments[0], s.Installments[1]
	assert.Equal(t, date(2024, 2, 1), first.DueDate)
	assert.Equal(t, date(2024, 3, 1), second.DueDate)
	assertDec(t, "10", first.Interest)
	assertDec(t, "497.51", first.Principal)
	assertDec(t, "502.49", first.BalanceAfter)
	assertDec(t, "5.02", second.Interest)
	assertDec(t, "502.49", second.Principal)
	assertDec(t, "0", second.BalanceAfter)

	assertDec(t, "1000", s.TotalPrincipal)
	assertDec(t, "15.02", s.TotalInterest)
	assertDec(t, "1015.02", s.TotalRepayment())
}

func TestGenerateScheduleMethods(t *testing.T) {
	t.Run("zero rate splits evenly", func(t *testing.T) {
		s, err := GenerateSchedule(monthlyTerms("1200", 12, "0"), single("1200", date(2024, 1, 1)), nil, ScheduleContext{})
		require.NoError(t, err)
		for _, inst := range s.Installments {
			assertDec(t, "100", inst.Principal)
			assert.True(t, inst.Interest.IsZero())
		}
	})

	t.Run("equal principal", func(t *testing.T) {
		terms := monthlyTerms("1000", 4, "12")
		terms.Amortization = AmortizationEqualPrincipal
		s, err := GenerateSchedule(terms, single("1000", date(2024, 1, 1)), nil, ScheduleContext{})
		require.NoError(t, err)
		for i, want := range []string{"10", "7.5", "5", "2.5"} {
			assertDec(t, "250", s.Installments[i].Principal)
			assertDec(t, want, s.Installments[i].Interest)
		}
	})

	t.Run("flat interest on original principal", func(t *testing.T) {
		terms := monthlyTerms("1000", 4, "12")
		terms.InterestMethod = InterestFlat
		s, err := GenerateSchedule(terms, single("1000", date(2024, 1, 1)), nil, ScheduleContext{})
		require.NoError(t, err)
		for _, inst := range s.Installments {
			assertDec(t, "250", inst.Principal)
			assertDec(t, "10", inst.Interest)
		}
		assertDec(t, "40", s.TotalInterest)
	})

	t.Run("monthly rate", func(t *testing.T) {
		terms := monthlyTerms("1000", 1, "2")
		terms.InterestPeriod = InterestPerMonth
		s, err := GenerateSchedule(terms, single("1000", date(2024, 1, 1)), nil, ScheduleContext{})
		require.NoError(t, err)
		assertDec(t, "20", s.Installments[0].Interest)
	})

	t.Run("daily interest counts actual days", func(t *testing.T) {
		terms := monthlyTerms("3650", 1, "10")
		terms.InterestCalculation = InterestCalcDaily
		s, err := GenerateSchedule(terms, single("3650", date(2024, 1, 1)), nil, ScheduleContext{})
		require.NoError(t, err)
		// 3650 * 10% * 31 / 365
		assertDec(t, "31", s.Installments[0].Interest)
	})
}

func TestGenerateScheduleGrace(t *testing.T) {
	t.Run("principal grace", func(t *testing.T) {
		terms := monthlyTerms("1000", 3, "0")
		terms.GraceOnPrincipal = 1
		s, err := GenerateSchedule(terms, single("1000", date(2024, 1, 1)), nil, ScheduleContext{})
		require.NoError(t, err)
		assert.True(t, s.Installments[0].Principal.IsZero())
		assertDec(t, "500", s.Installments[1].Principal)
		assertDec(t, "500", s.Installments[2].Principal)
	})

	t.Run("interest grace defers onto first paying installment", func(t *testing.T) {
		terms := monthlyTerms("1000", 2, "12")
		terms.Amortization = AmortizationEqualPrincipal
		terms.GraceOnInterest = 1
		s, err := GenerateSchedule(terms, single("1000", date(2024, 1, 1)), nil, ScheduleContext{})
		require.NoError(t, err)
		assert.True(t, s.Installments[0].Interest.IsZero())
		assertDec(t, "15", s.Installments[1].Interest)
		assertDec(t, "15", s.TotalInterest)
	})

	t.Run("grace must leave a paying installment", func(t *testing.T) {
		terms := monthlyTerms("1000", 2, "12")
		terms.GraceOnPrincipal = 2
		_, err := GenerateSchedule(terms, single("1000", date(2024, 1, 1)), nil, ScheduleContext{})
		assert.Error(t, err)
	})
}

func TestGenerateScheduleDueDates(t *testing.T) {
	t.Run("month end clamps without drifting", func(t *testing.T) {
		s, err := GenerateSchedule(monthlyTerms("300", 3, "0"), single("300", date(2024, 1, 31)), nil, ScheduleContext{})
		require.NoError(t, err)
		assert.Equal(t, date(2024, 2, 29), s.Installments[0].DueDate)
		assert.Equal(t, date(2024, 3, 31), s.Installments[1].DueDate)
		assert.Equal(t, date(2024, 4, 30), s.Installments[2].DueDate)
	})

	t.Run("first repayment date", func(t *testing.T) {
		first := date(2024, 1, 20)
		s, err := GenerateSchedule(monthlyTerms("200", 2, "0"), single("200", date(2024, 1, 1)), &first, ScheduleContext{})
		require.NoError(t, err)
		assert.Equal(t, date(2024, 1, 20), s.Installments[0].DueDate)
		assert.Equal(t, date(2024, 2, 20), s.Installments[1].DueDate)

		early := date(2023, 12, 31)
		_, err = GenerateSchedule(monthlyTerms("200", 2, "0"), single("200", date(2024, 1, 1)), &early, ScheduleContext{})
		assert.Error(t, err)
	})

	t.Run("holiday takes precedence over working days", func(t *testing.T) {
		sctx := ScheduleContext{
			WorkingDays: saturdayToMonday{},
			Holidays:    []HolidayShift{{From: date(2024, 2, 10), To: date(2024, 2, 20), RescheduledTo: date(2024, 2, 21)}},
		}
		s, err := GenerateSchedule(monthlyTerms("200", 2, "0"), single("200", date(2024, 1, 15)), nil, sctx)
		require.NoError(t, err)
		assert.Equal(t, date(2024, 2, 21), s.Installments[0].DueDate)
		assert.Equal(t, date(2024, 3, 15), s.Installments[1].DueDate)
	})

	t.Run("non-working day moves", func(t *testing.T) {
		s, err := GenerateSchedule(monthlyTerms("100", 1, "0"), single("100", date(2024, 5, 1)), nil, ScheduleContext{WorkingDays: saturdayToMonday{}})
		require.NoError(t, err)
		assert.Equal(t, date(2024, 6, 3), s.Installments[0].DueDate)
	})

	t.Run("synced with meeting calendar", func(t *testing.T) {
		terms := monthlyTerms("300", 3, "0")
		terms.RepaymentFrequency = PeriodWeeks
		cal := weeklyCalendar(t, date(2024, 1, 1), time.Monday)
		s, err := GenerateSchedule(terms, single("300", date(2024, 1, 3)), nil, ScheduleContext{Meeting: cal})
		require.NoError(t, err)
		assert.Equal(t, date(2024, 1, 15), s.Installments[0].DueDate)
		assert.Equal(t, date(2024, 1, 22), s.Installments[1].DueDate)
		assert.Equal(t, date(2024, 1, 29), s.Installments[2].DueDate)

		_, err = GenerateSchedule(monthlyTerms("300", 3, "0"), single("300", date(2024, 1, 3)), nil, ScheduleContext{Meeting: cal})
		assert.Error(t, err, "monthly loan on a weekly meeting")
	})
}

func TestGenerateScheduleTranches(t *testing.T) {
	terms := monthlyTerms("1000", 3, "0")
	terms.Amortization = AmortizationEqualPrincipal
	tranches := []Disbursement{
		{ExpectedDate: date(2024, 2, 1), Principal: dec("500")},
		{ExpectedDate: date(2024, 1, 1), Principal: dec("500")},
	}
	s, err := GenerateSchedule(terms, tranches, nil, ScheduleContext{})
	require.NoError(t, err)
	assertDec(t, "166.67", s.Installments[0].Principal)
	assertDec(t, "416.66", s.Installments[1].Principal)
	assertDec(t, "416.67", s.Installments[2].Principal)
	assertDec(t, "1000", s.TotalPrincipal)

	t.Run("tranche after maturity", func(t *testing.T) {
		late := []Disbursement{
			{ExpectedDate: date(2024, 1, 1), Principal: dec("500")},
			{ExpectedDate: date(2024, 4, 1), Principal: dec("500")},
		}
		_, err := GenerateSchedule(terms, late, nil, ScheduleContext{})
		assert.Error(t, err)
	})
}
