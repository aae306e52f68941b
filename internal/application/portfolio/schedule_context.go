package portfolio

import (
	"context"
	"time"

	"github.com/fincore/backend/internal/domain/organisation"
	"github.com/fincore/backend/internal/domain/portfolio"
	"github.com/google/uuid"
)

// scheduleContextBuilder assembles the calendar a loan schedule is
// generated in: the tenant working week, the active holidays of the
// loan's office and an optional meeting calendar.
type scheduleContextBuilder struct {
	workingDays  WorkingDaysProvider
	holidayRepo  organisation.HolidayRepository
	calendarRepo portfolio.CalendarRepository
}

func (b *scheduleContextBuilder) build(ctx context.Context, tenantID, officeID uuid.UUID, from time.Time, calendarID *uuid.UUID) (portfolio.ScheduleContext, error) {
	var sctx portfolio.ScheduleContext
	if b.workingDays != nil {
		wd, err := b.workingDays.Load(ctx, tenantID)
		if err != nil {
			return sctx, err
		}
		sctx.WorkingDays = wd
	}
	if b.holidayRepo != nil {
		holidays, err := b.holidayRepo.FindActiveForOffice(ctx, tenantID, officeID, from)
		if err != nil {
			return sctx, err
		}
		for _, h := range holidays {
			sctx.Holidays = append(sctx.Holidays, portfolio.HolidayShift{
				From:          h.FromDate,
				To:            h.ToDate,
				RescheduledTo: h.RepaymentsRescheduledTo,
			})
		}
	}
	if calendarID != nil {
		cal, err := b.calendarRepo.FindByIDForTenant(ctx, tenantID, *calendarID)
		if err != nil {
			return sctx, err
		}
		sctx.Meeting = cal
	}
	return sctx, nil
}

// forLoan builds the context an existing loan regenerates its schedule in
func (b *scheduleContextBuilder) forLoan(ctx context.Context, loan *portfolio.Loan) (portfolio.ScheduleContext, error) {
	return b.build(ctx, loan.TenantID, loan.OfficeID, loan.ExpectedDisbursementDate, loan.CalendarID)
}
