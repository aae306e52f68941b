package accounting

import (
	"context"

	"github.com/fincore/backend/internal/domain/accounting"
	"github.com/fincore/backend/internal/domain/organisation"
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// GLClosureService closes and reopens accounting periods per office
type GLClosureService struct {
	closureRepo accounting.GLClosureRepository
	officeRepo  organisation.OfficeRepository
}

// NewGLClosureService creates a new GLClosureService
func NewGLClosureService(
	closureRepo accounting.GLClosureRepository,
	officeRepo organisation.OfficeRepository,
) *GLClosureService {
	return &GLClosureService{closureRepo: closureRepo, officeRepo: officeRepo}
}

// Create closes the books of an office up to a date
func (s *GLClosureService) Create(ctx context.Context, tenantID uuid.UUID, req CreateGLClosureRequest) (*GLClosureResponse, error) {
	date, err := shared.ParseDate(req.ClosingDate)
	if err != nil {
		return nil, err
	}
	if _, err := s.officeRepo.FindByIDForTenant(ctx, tenantID, req.OfficeID); err != nil {
		return nil, err
	}
	latest, err := s.closureRepo.FindLatestForOffice(ctx, tenantID, req.OfficeID)
	if err != nil {
		return nil, err
	}
	closure, err := accounting.NewGLClosure(tenantID, req.OfficeID, date, req.Comments, latest)
	if err != nil {
		return nil, err
	}
	if err := s.closureRepo.Save(ctx, closure); err != nil {
		return nil, err
	}
	return ToGLClosureResponse(closure), nil
}

// Update changes the comments of a closure
func (s *GLClosureService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateGLClosureRequest) (*GLClosureResponse, error) {
	closure, err := s.closureRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	closure.UpdateComments(req.Comments)
	if err := s.closureRepo.Save(ctx, closure); err != nil {
		return nil, err
	}
	return ToGLClosureResponse(closure), nil
}

// Delete reopens the period of the office's latest closure
func (s *GLClosureService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	closure, err := s.closureRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return err
	}
	latest, err := s.closureRepo.FindLatestForOffice(ctx, tenantID, closure.OfficeID)
	if err != nil {
		return err
	}
	if err := closure.Delete(latest); err != nil {
		return err
	}
	return s.closureRepo.Save(ctx, closure)
}

// GetByID retrieves a closure
func (s *GLClosureService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*GLClosureResponse, error) {
	closure, err := s.closureRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return ToGLClosureResponse(closure), nil
}

// List retrieves active closures, optionally for one office
func (s *GLClosureService) List(ctx context.Context, tenantID uuid.UUID, officeID *uuid.UUID) ([]GLClosureResponse, error) {
	closures, err := s.closureRepo.FindAllForTenant(ctx, tenantID, officeID)
	if err != nil {
		return nil, err
	}
	out := make([]GLClosureResponse, 0, len(closures))
	for i := range closures {
		out = append(out, *ToGLClosureResponse(&closures[i]))
	}
	return out, nil
}
