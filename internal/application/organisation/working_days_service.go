package organisation

import (
	"context"
	"errors"

	"github.com/fincore/backend/internal/domain/organisation"
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// WorkingDaysService manages the tenant working week
type WorkingDaysService struct {
	repo organisation.WorkingDaysRepository
}

// NewWorkingDaysService creates a new WorkingDaysService
func NewWorkingDaysService(repo organisation.WorkingDaysRepository) *WorkingDaysService {
	return &WorkingDaysService{repo: repo}
}

// Load returns the tenant's working days, falling back to Monday to Friday
func (s *WorkingDaysService) Load(ctx context.Context, tenantID uuid.UUID) (*organisation.WorkingDays, error) {
	wd, err := s.repo.FindForTenant(ctx, tenantID)
	if errors.Is(err, shared.ErrNotFound) {
		return organisation.DefaultWorkingDays(tenantID), nil
	}
	if err != nil {
		return nil, err
	}
	if err := wd.Load(); err != nil {
		return nil, err
	}
	return wd, nil
}

// Get returns the working week
func (s *WorkingDaysService) Get(ctx context.Context, tenantID uuid.UUID) (*WorkingDaysResponse, error) {
	wd, err := s.Load(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return &WorkingDaysResponse{Recurrence: wd.Recurrence, RescheduleType: string(wd.RescheduleType)}, nil
}

// Update replaces the working week. Schedules already generated keep
// their dates.
func (s *WorkingDaysService) Update(ctx context.Context, tenantID uuid.UUID, req WorkingDaysRequest) (*WorkingDaysResponse, error) {
	wd, err := s.Load(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if err := wd.Update(req.Recurrence, organisation.RescheduleType(req.RescheduleType)); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, wd); err != nil {
		return nil, err
	}
	return &WorkingDaysResponse{Recurrence: wd.Recurrence, RescheduleType: string(wd.RescheduleType)}, nil
}
