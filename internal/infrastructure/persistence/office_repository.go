package persistence

import (
	"context"
	"errors"

	"github.com/fincore/backend/internal/domain/organisation"
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/fincore/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOfficeRepository implements OfficeRepository using GORM
type GormOfficeRepository struct {
	db *gorm.DB
}

// NewGormOfficeRepository creates a new GormOfficeRepository
func NewGormOfficeRepository(db *gorm.DB) *GormOfficeRepository {
	return &GormOfficeRepository{db: db}
}

// FindByIDForTenant finds an office by ID
func (r *GormOfficeRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*organisation.Office, error) {
	var model models.OfficeModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NotFound("Office")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindHeadOffice returns the tenant's root office
func (r *GormOfficeRepository) FindHeadOffice(ctx context.Context, tenantID uuid.UUID) (*organisation.Office, error) {
	var model models.OfficeModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND parent_id IS NULL", tenantID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NotFound("Head office")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindTenantIDs returns every tenant that has a head office
func (r *GormOfficeRepository) FindTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.OfficeModel{}).
		Where("parent_id IS NULL").
		Distinct("tenant_id").
		Order("tenant_id").
		Pluck("tenant_id", &ids).Error
	return ids, err
}

// FindAllForTenant lists offices ordered by hierarchy
func (r *GormOfficeRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter organisation.OfficeFilter) ([]organisation.Office, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.OfficeModel{}).Where("tenant_id = ?", tenantID)
	if filter.UnderHierarchy != "" {
		query = query.Where("hierarchy LIKE ?", filter.UnderHierarchy+"%")
	}
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.OfficeModel
	if err := paginate(query, filter.Filter, OfficeSortFields, "hierarchy asc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	offices := make([]organisation.Office, len(rows))
	for i := range rows {
		offices[i] = *rows[i].ToDomain()
	}
	return offices, total, nil
}

// ExistsByName checks for a duplicate office name
func (r *GormOfficeRepository) ExistsByName(ctx context.Context, tenantID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.OfficeModel{}).
		Where("tenant_id = ? AND LOWER(name) = LOWER(?)", tenantID, name)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates an office
func (r *GormOfficeRepository) Save(ctx context.Context, office *organisation.Office) error {
	return r.db.WithContext(ctx).Save(models.OfficeModelFromDomain(office)).Error
}

// RewriteHierarchy replaces the hierarchy prefix of every descendant
func (r *GormOfficeRepository) RewriteHierarchy(ctx context.Context, tenantID uuid.UUID, oldPrefix, newPrefix string) error {
	return rewriteHierarchy(ctx, r.db, &models.OfficeModel{}, tenantID, oldPrefix, newPrefix)
}

// GormStaffRepository implements StaffRepository using GORM
type GormStaffRepository struct {
	db *gorm.DB
}

// NewGormStaffRepository creates a new GormStaffRepository
func NewGormStaffRepository(db *gorm.DB) *GormStaffRepository {
	return &GormStaffRepository{db: db}
}

// FindByIDForTenant finds a staff member by ID
func (r *GormStaffRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*organisation.Staff, error) {
	var model models.StaffModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NotFound("Staff")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists staff
func (r *GormStaffRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter organisation.StaffFilter) ([]organisation.Staff, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.StaffModel{}).Where("tenant_id = ?", tenantID)
	if filter.OfficeID != nil {
		query = query.Where("office_id = ?", *filter.OfficeID)
	}
	if filter.LoanOfficers != nil {
		query = query.Where("is_loan_officer = ?", *filter.LoanOfficers)
	}
	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("firstname ILIKE ? OR lastname ILIKE ?", pattern, pattern)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.StaffModel
	if err := paginate(query, filter.Filter, StaffSortFields, "lastname asc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	staff := make([]organisation.Staff, len(rows))
	for i := range rows {
		staff[i] = *rows[i].ToDomain()
	}
	return staff, total, nil
}

// Save creates or updates a staff member
func (r *GormStaffRepository) Save(ctx context.Context, staff *organisation.Staff) error {
	return r.db.WithContext(ctx).Save(models.StaffModelFromDomain(staff)).Error
}
