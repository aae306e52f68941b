package organisation

import (
	"context"
	"time"

	"github.com/fincore/backend/internal/domain/organisation"
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LoanRescheduler regenerates the repayment schedules of open loans in the
// given offices after their holidays change
type LoanRescheduler interface {
	RescheduleOffices(ctx context.Context, tenantID uuid.UUID, officeIDs []uuid.UUID) (int, error)
}

// HolidayService manages office holidays
type HolidayService struct {
	holidayRepo organisation.HolidayRepository
	officeRepo  organisation.OfficeRepository
	rescheduler LoanRescheduler
	logger      *zap.Logger
}

// NewHolidayService creates a new HolidayService. rescheduler may be nil,
// in which case loan schedules are left untouched.
func NewHolidayService(
	holidayRepo organisation.HolidayRepository,
	officeRepo organisation.OfficeRepository,
	rescheduler LoanRescheduler,
	logger *zap.Logger,
) *HolidayService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HolidayService{
		holidayRepo: holidayRepo,
		officeRepo:  officeRepo,
		rescheduler: rescheduler,
		logger:      logger,
	}
}

// Create adds a holiday pending activation
func (s *HolidayService) Create(ctx context.Context, tenantID uuid.UUID, req HolidayRequest) (*HolidayResponse, error) {
	from, to, resched, err := holidayDates(req)
	if err != nil {
		return nil, err
	}
	if err := s.checkOffices(ctx, tenantID, req.OfficeIDs); err != nil {
		return nil, err
	}
	holiday, err := organisation.NewHoliday(tenantID, req.Name, req.Description, from, to, resched, req.OfficeIDs)
	if err != nil {
		return nil, err
	}
	if err := s.holidayRepo.Save(ctx, holiday); err != nil {
		return nil, err
	}
	return ToHolidayResponse(holiday), nil
}

// Update changes a holiday. Only the name and description of an active
// holiday can change.
func (s *HolidayService) Update(ctx context.Context, tenantID, id uuid.UUID, req HolidayRequest) (*HolidayResponse, error) {
	holiday, err := s.holidayRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	from, to, resched, err := holidayDates(req)
	if err != nil {
		return nil, err
	}
	if holiday.Status == organisation.HolidayStatusPending {
		if err := s.checkOffices(ctx, tenantID, req.OfficeIDs); err != nil {
			return nil, err
		}
	}
	if err := holiday.Update(req.Name, req.Description, from, to, resched, req.OfficeIDs); err != nil {
		return nil, err
	}
	if err := s.holidayRepo.Save(ctx, holiday); err != nil {
		return nil, err
	}
	return ToHolidayResponse(holiday), nil
}

// Activate makes a holiday effective and reschedules the open loans of its
// offices
func (s *HolidayService) Activate(ctx context.Context, tenantID, id uuid.UUID) (*HolidayResponse, error) {
	holiday, err := s.holidayRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := holiday.Activate(); err != nil {
		return nil, err
	}
	if err := s.holidayRepo.Save(ctx, holiday); err != nil {
		return nil, err
	}
	if err := s.reschedule(ctx, tenantID, holiday); err != nil {
		return nil, err
	}
	return ToHolidayResponse(holiday), nil
}

// Delete soft-deletes a holiday. Deleting an active holiday moves the
// affected repayments back.
func (s *HolidayService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	holiday, err := s.holidayRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return err
	}
	wasActive := holiday.Status == organisation.HolidayStatusActive
	if err := holiday.Delete(); err != nil {
		return err
	}
	if err := s.holidayRepo.Save(ctx, holiday); err != nil {
		return err
	}
	if wasActive {
		return s.reschedule(ctx, tenantID, holiday)
	}
	return nil
}

// GetByID retrieves a holiday
func (s *HolidayService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*HolidayResponse, error) {
	holiday, err := s.holidayRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return ToHolidayResponse(holiday), nil
}

// List retrieves holidays by office, status and date range
func (s *HolidayService) List(ctx context.Context, tenantID uuid.UUID, filter HolidayListFilter) ([]HolidayResponse, error) {
	domainFilter := organisation.HolidayFilter{OfficeID: filter.OfficeID}
	if filter.Status != "" {
		st := organisation.HolidayStatus(filter.Status)
		domainFilter.Status = &st
	}
	var err error
	if domainFilter.FromDate, err = shared.ParseOptionalDate(&filter.FromDate); err != nil {
		return nil, err
	}
	if domainFilter.ToDate, err = shared.ParseOptionalDate(&filter.ToDate); err != nil {
		return nil, err
	}
	holidays, err := s.holidayRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}
	out := make([]HolidayResponse, 0, len(holidays))
	for i := range holidays {
		out = append(out, *ToHolidayResponse(&holidays[i]))
	}
	return out, nil
}

func (s *HolidayService) reschedule(ctx context.Context, tenantID uuid.UUID, holiday *organisation.Holiday) error {
	if s.rescheduler == nil {
		return nil
	}
	n, err := s.rescheduler.RescheduleOffices(ctx, tenantID, holiday.OfficeIDs)
	if err != nil {
		return err
	}
	s.logger.Info("Loan schedules regenerated for holiday",
		zap.String("holiday_id", holiday.ID.String()),
		zap.String("status", string(holiday.Status)),
		zap.Int("loans", n),
	)
	return nil
}

func (s *HolidayService) checkOffices(ctx context.Context, tenantID uuid.UUID, officeIDs []uuid.UUID) error {
	for _, id := range officeIDs {
		if _, err := s.officeRepo.FindByIDForTenant(ctx, tenantID, id); err != nil {
			return err
		}
	}
	return nil
}

func holidayDates(req HolidayRequest) (from, to, resched time.Time, err error) {
	if from, err = shared.ParseDate(req.FromDate); err != nil {
		return
	}
	if to, err = shared.ParseDate(req.ToDate); err != nil {
		return
	}
	resched, err = shared.ParseDate(req.RepaymentsRescheduledTo)
	return
}
