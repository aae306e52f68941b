package organisation

import (
	"context"

	"github.com/fincore/backend/internal/domain/organisation"
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// StaffService manages staff members
type StaffService struct {
	staffRepo  organisation.StaffRepository
	officeRepo organisation.OfficeRepository
}

// NewStaffService creates a new StaffService
func NewStaffService(staffRepo organisation.StaffRepository, officeRepo organisation.OfficeRepository) *StaffService {
	return &StaffService{staffRepo: staffRepo, officeRepo: officeRepo}
}

// Create adds a staff member to an office
func (s *StaffService) Create(ctx context.Context, tenantID uuid.UUID, req StaffRequest) (*StaffResponse, error) {
	if _, err := s.officeRepo.FindByIDForTenant(ctx, tenantID, req.OfficeID); err != nil {
		return nil, err
	}
	staff, err := organisation.NewStaff(tenantID, req.OfficeID, req.Firstname, req.Lastname)
	if err != nil {
		return nil, err
	}
	if err := applyStaff(staff, req); err != nil {
		return nil, err
	}
	if err := s.staffRepo.Save(ctx, staff); err != nil {
		return nil, err
	}
	return ToStaffResponse(staff), nil
}

// Update changes a staff member
func (s *StaffService) Update(ctx context.Context, tenantID, id uuid.UUID, req StaffRequest) (*StaffResponse, error) {
	staff, err := s.staffRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if req.OfficeID != staff.OfficeID {
		if _, err := s.officeRepo.FindByIDForTenant(ctx, tenantID, req.OfficeID); err != nil {
			return nil, err
		}
		staff.OfficeID = req.OfficeID
	}
	if err := staff.Rename(req.Firstname, req.Lastname); err != nil {
		return nil, err
	}
	if err := applyStaff(staff, req); err != nil {
		return nil, err
	}
	if err := s.staffRepo.Save(ctx, staff); err != nil {
		return nil, err
	}
	return ToStaffResponse(staff), nil
}

func applyStaff(staff *organisation.Staff, req StaffRequest) error {
	joining, err := shared.ParseOptionalDate(req.JoiningDate)
	if err != nil {
		return err
	}
	staff.IsLoanOfficer = req.IsLoanOfficer
	staff.JoiningDate = joining
	staff.MobileNo = req.MobileNo
	staff.ExternalID = req.ExternalID
	if req.Active != nil {
		staff.SetActive(*req.Active)
	}
	return nil
}

// GetByID retrieves a staff member
func (s *StaffService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*StaffResponse, error) {
	staff, err := s.staffRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return ToStaffResponse(staff), nil
}

// List retrieves staff matching the filter
func (s *StaffService) List(ctx context.Context, tenantID uuid.UUID, filter StaffListFilter) ([]StaffResponse, int64, error) {
	staff, total, err := s.staffRepo.FindAllForTenant(ctx, tenantID, organisation.StaffFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  "lastname",
			OrderDir: "asc",
			Search:   filter.Search,
		},
		OfficeID:     filter.OfficeID,
		LoanOfficers: filter.LoanOfficers,
		Active:       filter.Active,
	})
	if err != nil {
		return nil, 0, err
	}
	out := make([]StaffResponse, 0, len(staff))
	for i := range staff {
		out = append(out, *ToStaffResponse(&staff[i]))
	}
	return out, total, nil
}
