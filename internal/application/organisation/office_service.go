package organisation

import (
	"context"
	"errors"
	"time"

	"github.com/fincore/backend/internal/domain/organisation"
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// OfficeService manages the office tree
type OfficeService struct {
	officeRepo organisation.OfficeRepository
}

// NewOfficeService creates a new OfficeService
func NewOfficeService(officeRepo organisation.OfficeRepository) *OfficeService {
	return &OfficeService{officeRepo: officeRepo}
}

// Create adds an office. The first office of a tenant, created without a
// parent, becomes the head office.
func (s *OfficeService) Create(ctx context.Context, tenantID uuid.UUID, req CreateOfficeRequest) (*OfficeResponse, error) {
	openingDate, err := shared.ParseDate(req.OpeningDate)
	if err != nil {
		return nil, err
	}
	if err := s.checkName(ctx, tenantID, req.Name, nil); err != nil {
		return nil, err
	}

	var office *organisation.Office
	if req.ParentID == nil {
		_, err := s.officeRepo.FindHeadOffice(ctx, tenantID)
		switch {
		case err == nil:
			return nil, shared.NewDomainError("HEAD_OFFICE_EXISTS", "Tenant already has a head office; a parent office is required")
		case !errors.Is(err, shared.ErrNotFound):
			return nil, err
		}
		office, err = organisation.NewHeadOffice(tenantID, req.Name, openingDate, req.ExternalID)
		if err != nil {
			return nil, err
		}
	} else {
		parent, err := s.findParent(ctx, tenantID, *req.ParentID)
		if err != nil {
			return nil, err
		}
		office, err = organisation.NewOffice(tenantID, req.Name, parent, openingDate, req.ExternalID)
		if err != nil {
			return nil, err
		}
	}

	if err := s.officeRepo.Save(ctx, office); err != nil {
		return nil, err
	}
	return ToOfficeResponse(office), nil
}

// BootstrapHeadOffice returns the tenant's head office, creating it when
// the tenant has none. It reports whether an office was created.
func (s *OfficeService) BootstrapHeadOffice(ctx context.Context, tenantID uuid.UUID, name string, openingDate time.Time) (*OfficeResponse, bool, error) {
	head, err := s.officeRepo.FindHeadOffice(ctx, tenantID)
	switch {
	case err == nil:
		return ToOfficeResponse(head), false, nil
	case !errors.Is(err, shared.ErrNotFound):
		return nil, false, err
	}
	office, err := organisation.NewHeadOffice(tenantID, name, shared.Day(openingDate), "")
	if err != nil {
		return nil, false, err
	}
	if err := s.officeRepo.Save(ctx, office); err != nil {
		return nil, false, err
	}
	return ToOfficeResponse(office), true, nil
}

// Update changes an office. A new parent moves the office together with
// its subtree.
func (s *OfficeService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateOfficeRequest) (*OfficeResponse, error) {
	office, err := s.officeRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	openingDate, err := shared.ParseDate(req.OpeningDate)
	if err != nil {
		return nil, err
	}
	if req.Name != office.Name {
		if err := s.checkName(ctx, tenantID, req.Name, &id); err != nil {
			return nil, err
		}
	}
	if err := office.Update(req.Name, openingDate, req.ExternalID); err != nil {
		return nil, err
	}

	oldHierarchy := office.Hierarchy
	if req.ParentID != nil && (office.ParentID == nil || *office.ParentID != *req.ParentID) {
		parent, err := s.findParent(ctx, tenantID, *req.ParentID)
		if err != nil {
			return nil, err
		}
		if oldHierarchy, err = office.MoveUnder(parent); err != nil {
			return nil, err
		}
	}

	if err := s.officeRepo.Save(ctx, office); err != nil {
		return nil, err
	}
	if oldHierarchy != office.Hierarchy {
		if err := s.officeRepo.RewriteHierarchy(ctx, tenantID, oldHierarchy, office.Hierarchy); err != nil {
			return nil, err
		}
	}
	return ToOfficeResponse(office), nil
}

// GetByID retrieves an office
func (s *OfficeService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*OfficeResponse, error) {
	office, err := s.officeRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return ToOfficeResponse(office), nil
}

// List retrieves offices, optionally below one office
func (s *OfficeService) List(ctx context.Context, tenantID uuid.UUID, filter OfficeListFilter) ([]OfficeResponse, int64, error) {
	domainFilter := organisation.OfficeFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  "hierarchy",
			OrderDir: "asc",
			Search:   filter.Search,
		},
	}
	if filter.UnderID != nil {
		root, err := s.officeRepo.FindByIDForTenant(ctx, tenantID, *filter.UnderID)
		if err != nil {
			return nil, 0, err
		}
		domainFilter.UnderHierarchy = root.Hierarchy
	}

	offices, total, err := s.officeRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]OfficeResponse, 0, len(offices))
	for i := range offices {
		out = append(out, *ToOfficeResponse(&offices[i]))
	}
	return out, total, nil
}

func (s *OfficeService) checkName(ctx context.Context, tenantID uuid.UUID, name string, excludeID *uuid.UUID) error {
	exists, err := s.officeRepo.ExistsByName(ctx, tenantID, name, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError("OFFICE_NAME_EXISTS", "Office with this name already exists")
	}
	return nil
}

func (s *OfficeService) findParent(ctx context.Context, tenantID, parentID uuid.UUID) (*organisation.Office, error) {
	parent, err := s.officeRepo.FindByIDForTenant(ctx, tenantID, parentID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_PARENT", "Parent office not found")
		}
		return nil, err
	}
	return parent, nil
}
