package portfolio

import (
	"sort"
	"time"

	"github.com/fincore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var (
	daysInYear = decimal.NewFromInt(365)
	hundredPct = decimal.NewFromInt(100)
)

// Installment is one period of a repayment schedule together with what
// has been paid against it
type Installment struct {
	Number          int
	FromDate        time.Time
	DueDate         time.Time
	Principal       decimal.Decimal
	Interest        decimal.Decimal
	PrincipalPaid   decimal.Decimal
	InterestPaid    decimal.Decimal
	InterestWaived  decimal.Decimal
	InterestAccrued decimal.Decimal
	BalanceAfter    decimal.Decimal // scheduled principal outstanding after this installment
	CompletedOn     *time.Time
}

// PrincipalOutstanding is principal still owed on the installment
func (i *Installment) PrincipalOutstanding() decimal.Decimal {
	return i.Principal.Sub(i.PrincipalPaid)
}

// InterestOutstanding is interest still owed on the installment
func (i *Installment) InterestOutstanding() decimal.Decimal {
	return i.Interest.Sub(i.InterestPaid).Sub(i.InterestWaived)
}

// TotalDue is the amount the installment asks for after waivers
func (i *Installment) TotalDue() decimal.Decimal {
	return i.Principal.Add(i.Interest).Sub(i.InterestWaived)
}

// TotalOutstanding is everything still owed on the installment
func (i *Installment) TotalOutstanding() decimal.Decimal {
	return i.PrincipalOutstanding().Add(i.InterestOutstanding())
}

// IsComplete reports whether nothing is owed on the installment
func (i *Installment) IsComplete() bool {
	return !i.TotalOutstanding().IsPositive()
}

// Disbursement is a planned or completed tranche
type Disbursement struct {
	ExpectedDate time.Time
	Principal    decimal.Decimal
	ActualDate   *time.Time
}

// Date returns the actual date once disbursed, else the expected date
func (d Disbursement) Date() time.Time {
	if d.ActualDate != nil {
		return shared.Day(*d.ActualDate)
	}
	return shared.Day(d.ExpectedDate)
}

// DateAdjuster moves a due date off non-working days
type DateAdjuster interface {
	Adjust(date time.Time) time.Time
}

// HolidayShift moves due dates inside [From, To] to RescheduledTo
type HolidayShift struct {
	From          time.Time
	To            time.Time
	RescheduledTo time.Time
}

// ScheduleContext carries the office calendar a schedule is generated in
type ScheduleContext struct {
	WorkingDays DateAdjuster
	Holidays    []HolidayShift
	Meeting     *Calendar // due dates follow this calendar when set
}

// RepaymentSchedule is the generated amortization of a loan
type RepaymentSchedule struct {
	Currency       string
	Installments   []Installment
	TotalPrincipal decimal.Decimal
	TotalInterest  decimal.Decimal
}

// TotalRepayment is principal plus interest expected
func (s *RepaymentSchedule) TotalRepayment() decimal.Decimal {
	return s.TotalPrincipal.Add(s.TotalInterest)
}

// GenerateSchedule builds the repayment schedule for terms. Tranches join
// the outstanding balance on their date; installments after a tranche are
// re-amortized over the remaining periods.
func GenerateSchedule(terms LoanTerms, disbursements []Disbursement, firstRepaymentOn *time.Time, sctx ScheduleContext) (*RepaymentSchedule, error) {
	if err := terms.Validate(); err != nil {
		return nil, err
	}
	if len(disbursements) == 0 {
		return nil, shared.NewDomainError("LOAN_NO_DISBURSEMENT", "At least one disbursement is required")
	}
	tranches := make([]Disbursement, len(disbursements))
	copy(tranches, disbursements)
	sort.SliceStable(tranches, func(i, j int) bool { return tranches[i].Date().Before(tranches[j].Date()) })
	for _, t := range tranches {
		if !t.Principal.IsPositive() {
			return nil, shared.NewDomainError("INVALID_PRINCIPAL", "Tranche principal must be positive")
		}
	}

	start := tranches[0].Date()
	dues, err := dueDates(terms, start, firstRepaymentOn, sctx)
	if err != nil {
		return nil, err
	}
	n := terms.NumberOfRepayments
	if last := tranches[len(tranches)-1].Date(); !last.Before(dues[n-1]) {
		return nil, shared.NewDomainError("LOAN_TRANCHE_AFTER_MATURITY", "Tranches must be disbursed before the last repayment date")
	}

	calc := newInterestCalculator(terms)
	sched := &RepaymentSchedule{Currency: terms.Currency}
	balance := decimal.Zero
	disbursed := decimal.Zero
	deferred := decimal.Zero
	var emi *decimal.Decimal
	ti := 0
	from := start

	for i := 0; i < n; i++ {
		due := dues[i]
		joined := false
		for ti < len(tranches) && !tranches[ti].Date().After(from) {
			balance = balance.Add(tranches[ti].Principal)
			disbursed = disbursed.Add(tranches[ti].Principal)
			ti++
			joined = true
		}

		base := balance
		if terms.InterestMethod == InterestFlat {
			base = disbursed
		}
		interest := calc.interest(base, from, due, from, due)
		for ti < len(tranches) && tranches[ti].Date().Before(due) {
			t := tranches[ti]
			interest = interest.Add(calc.interest(t.Principal, t.Date(), due, from, due))
			balance = balance.Add(t.Principal)
			disbursed = disbursed.Add(t.Principal)
			ti++
			joined = true
		}
		interest = interest.RoundBank(terms.Digits)

		charged := interest
		if i < terms.GraceOnInterest {
			deferred = deferred.Add(interest)
			charged = decimal.Zero
		} else if deferred.IsPositive() {
			charged = charged.Add(deferred)
			deferred = decimal.Zero
		}

		principal := decimal.Zero
		if i >= terms.GraceOnPrincipal {
			remaining := int64(n - i)
			switch {
			case i == n-1:
				principal = balance
			case terms.Amortization == AmortizationEqualInstallments && terms.InterestMethod == InterestDecliningBalance:
				if emi == nil || joined || i == terms.GraceOnPrincipal {
					v := annuity(balance, calc.periodicRate, remaining).RoundBank(terms.Digits)
					emi = &v
				}
				principal = emi.Sub(interest)
			default:
				principal = balance.Div(decimal.NewFromInt(remaining)).RoundBank(terms.Digits)
			}
			if principal.IsNegative() {
				principal = decimal.Zero
			}
			if principal.GreaterThan(balance) {
				principal = balance
			}
		}
		balance = balance.Sub(principal)

		sched.Installments = append(sched.Installments, Installment{
			Number:       i + 1,
			FromDate:     from,
			DueDate:      due,
			Principal:    principal,
			Interest:     charged,
			BalanceAfter: balance,
		})
		sched.TotalPrincipal = sched.TotalPrincipal.Add(principal)
		sched.TotalInterest = sched.TotalInterest.Add(charged)
		from = due
	}
	return sched, nil
}

// annuity returns the level payment amortizing balance over n periods at rate r
func annuity(balance, r decimal.Decimal, n int64) decimal.Decimal {
	if n <= 0 {
		return balance
	}
	if r.IsZero() {
		return balance.Div(decimal.NewFromInt(n))
	}
	f := decimal.NewFromInt(1).Add(r).Pow(decimal.NewFromInt(n))
	return balance.Mul(r).Mul(f).Div(f.Sub(decimal.NewFromInt(1)))
}

type interestCalculator struct {
	terms        LoanTerms
	annualRate   decimal.Decimal
	periodicRate decimal.Decimal
}

func newInterestCalculator(terms LoanTerms) interestCalculator {
	annual := terms.InterestRatePerPeriod.Div(hundredPct)
	if terms.InterestPeriod == InterestPerMonth {
		annual = annual.Mul(decimal.NewFromInt(12))
	}
	every := decimal.NewFromInt(int64(terms.RepaymentEvery))
	var periodic decimal.Decimal
	switch terms.RepaymentFrequency {
	case PeriodDays:
		periodic = annual.Mul(every).Div(daysInYear)
	case PeriodWeeks:
		periodic = annual.Mul(every).Mul(decimal.NewFromInt(7)).Div(daysInYear)
	case PeriodMonths:
		periodic = annual.Mul(every).Div(decimal.NewFromInt(12))
	default:
		periodic = annual.Mul(every)
	}
	return interestCalculator{terms: terms, annualRate: annual, periodicRate: periodic}
}

// interest on amount outstanding over [from, to] inside the period
// [periodFrom, periodTo]
func (c interestCalculator) interest(amount decimal.Decimal, from, to, periodFrom, periodTo time.Time) decimal.Decimal {
	if !amount.IsPositive() {
		return decimal.Zero
	}
	days := shared.DaysBetween(from, to)
	if days <= 0 {
		return decimal.Zero
	}
	if c.terms.InterestCalculation == InterestCalcDaily {
		return amount.Mul(c.annualRate).Mul(decimal.NewFromInt(int64(days))).Div(daysInYear)
	}
	periodDays := shared.DaysBetween(periodFrom, periodTo)
	full := amount.Mul(c.periodicRate)
	if days >= periodDays {
		return full
	}
	return full.Mul(decimal.NewFromInt(int64(days))).Div(decimal.NewFromInt(int64(periodDays)))
}

func dueDates(terms LoanTerms, start time.Time, firstRepaymentOn *time.Time, sctx ScheduleContext) ([]time.Time, error) {
	n := terms.NumberOfRepayments
	// periods count from the anchor so month-end days are not lost to clamping
	anchor, offset := start, 1
	if firstRepaymentOn != nil {
		anchor, offset = shared.Day(*firstRepaymentOn), 0
		if !anchor.After(start) {
			return nil, shared.NewDomainError("LOAN_FIRST_REPAYMENT_BEFORE_DISBURSEMENT", "First repayment must fall after disbursement")
		}
	}
	first := addPeriods(anchor, offset, terms)

	raw := make([]time.Time, 0, n)
	if sctx.Meeting != nil && sctx.Meeting.Repeating {
		step, err := meetingStep(terms, sctx.Meeting)
		if err != nil {
			return nil, err
		}
		d := first.AddDate(0, 0, -1)
		for len(raw) < n {
			for s := 0; s < step; s++ {
				next, ok := sctx.Meeting.NextRecurringDate(d)
				if !ok {
					return nil, shared.NewDomainError("LOAN_MEETING_CALENDAR_EXHAUSTED", "Meeting calendar ends before the loan matures")
				}
				d = next
				if len(raw) == 0 {
					break
				}
			}
			raw = append(raw, d)
		}
	} else {
		for k := 0; k < n; k++ {
			raw = append(raw, addPeriods(anchor, k+offset, terms))
		}
	}

	out := make([]time.Time, n)
	prev := start
	for i, d := range raw {
		d = adjustDueDate(d, sctx)
		if !d.After(prev) {
			return nil, shared.NewDomainError("LOAN_DUE_DATES_COLLIDE", "Holiday or working-day rescheduling produced overlapping repayment dates")
		}
		out[i] = d
		prev = d
	}
	return out, nil
}

// meetingStep maps the loan's repayment frequency onto the meeting calendar:
// the loan is repaid every step-th meeting.
func meetingStep(terms LoanTerms, cal *Calendar) (int, error) {
	match := map[CalendarFrequency]PeriodFrequency{
		FrequencyDaily: PeriodDays, FrequencyWeekly: PeriodWeeks,
		FrequencyMonthly: PeriodMonths, FrequencyYearly: PeriodYears,
	}
	if match[cal.Frequency] != terms.RepaymentFrequency || terms.RepaymentEvery%cal.Interval != 0 {
		return 0, shared.NewDomainError("LOAN_MEETING_FREQUENCY_MISMATCH", "Loan repayment frequency must be a multiple of the meeting frequency")
	}
	return terms.RepaymentEvery / cal.Interval, nil
}

func adjustDueDate(d time.Time, sctx ScheduleContext) time.Time {
	for _, h := range sctx.Holidays {
		if !d.Before(shared.Day(h.From)) && !d.After(shared.Day(h.To)) {
			return shared.Day(h.RescheduledTo)
		}
	}
	if sctx.WorkingDays != nil {
		return sctx.WorkingDays.Adjust(d)
	}
	return d
}

func addPeriods(base time.Time, k int, terms LoanTerms) time.Time {
	n := k * terms.RepaymentEvery
	switch terms.RepaymentFrequency {
	case PeriodDays:
		return base.AddDate(0, 0, n)
	case PeriodWeeks:
		return base.AddDate(0, 0, 7*n)
	case PeriodMonths:
		return addMonthsClamped(base, n)
	default:
		return addMonthsClamped(base, 12*n)
	}
}

// addMonthsClamped adds months keeping the day of month, clamped to the
// last day of shorter months (Jan 31 + 1 month = Feb 28/29).
func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	firstOfTarget := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	last := firstOfTarget.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), d, 0, 0, 0, 0, time.UTC)
}
