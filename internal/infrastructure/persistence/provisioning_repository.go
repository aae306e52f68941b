package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/fincore/backend/internal/domain/accounting"
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/fincore/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProvisioningRepository implements ProvisioningRepository using GORM
type GormProvisioningRepository struct {
	db *gorm.DB
}

// NewGormProvisioningRepository creates a new GormProvisioningRepository
func NewGormProvisioningRepository(db *gorm.DB) *GormProvisioningRepository {
	return &GormProvisioningRepository{db: db}
}

// FindCategory finds a category by ID
func (r *GormProvisioningRepository) FindCategory(ctx context.Context, tenantID, id uuid.UUID) (*accounting.ProvisioningCategory, error) {
	var model models.ProvisioningCategoryModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NotFound("Provisioning category")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindCategories lists categories
func (r *GormProvisioningRepository) FindCategories(ctx context.Context, tenantID uuid.UUID) ([]accounting.ProvisioningCategory, error) {
	var rows []models.ProvisioningCategoryModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]accounting.ProvisioningCategory, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// SaveCategory creates or updates a category
func (r *GormProvisioningRepository) SaveCategory(ctx context.Context, category *accounting.ProvisioningCategory) error {
	return r.db.WithContext(ctx).Save(models.ProvisioningCategoryModelFromDomain(category)).Error
}

// DeleteCategory removes a category
func (r *GormProvisioningRepository) DeleteCategory(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ProvisioningCategoryModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NotFound("Provisioning category")
	}
	return nil
}

// CategoryInUse reports whether any criteria definition uses the category
func (r *GormProvisioningRepository) CategoryInUse(ctx context.Context, tenantID, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ProvisioningDefinitionModel{}).
		Where("tenant_id = ? AND category_id = ?", tenantID, id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindCriteria finds criteria by ID
func (r *GormProvisioningRepository) FindCriteria(ctx context.Context, tenantID, id uuid.UUID) (*accounting.ProvisioningCriteria, error) {
	var model models.ProvisioningCriteriaModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NotFound("Provisioning criteria")
		}
		return nil, err
	}
	defs, err := r.definitions(ctx, tenantID, []uuid.UUID{model.ID})
	if err != nil {
		return nil, err
	}
	return model.ToDomain(defs[model.ID]), nil
}

// FindAllCriteria lists criteria with their definitions
func (r *GormProvisioningRepository) FindAllCriteria(ctx context.Context, tenantID uuid.UUID) ([]accounting.ProvisioningCriteria, error) {
	var rows []models.ProvisioningCriteriaModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(rows))
	for i := range rows {
		ids[i] = rows[i].ID
	}
	defs, err := r.definitions(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	out := make([]accounting.ProvisioningCriteria, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain(defs[rows[i].ID])
	}
	return out, nil
}

// SaveCriteria creates or updates criteria and replaces its definitions
func (r *GormProvisioningRepository) SaveCriteria(ctx context.Context, criteria *accounting.ProvisioningCriteria) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(models.ProvisioningCriteriaModelFromDomain(criteria)).Error; err != nil {
			return err
		}
		if err := tx.Where("tenant_id = ? AND criteria_id = ?", criteria.TenantID, criteria.ID).
			Delete(&models.ProvisioningDefinitionModel{}).Error; err != nil {
			return err
		}
		defs := models.ProvisioningDefinitionModelsFromDomain(criteria)
		if len(defs) == 0 {
			return nil
		}
		return tx.Create(&defs).Error
	})
}

// DeleteCriteria removes criteria with its definitions
func (r *GormProvisioningRepository) DeleteCriteria(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ? AND criteria_id = ?", tenantID, id).
			Delete(&models.ProvisioningDefinitionModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.ProvisioningCriteriaModel{}, "tenant_id = ? AND id = ?", tenantID, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NotFound("Provisioning criteria")
		}
		return nil
	})
}

// FindEntry finds an entry by ID with its lines
func (r *GormProvisioningRepository) FindEntry(ctx context.Context, tenantID, id uuid.UUID) (*accounting.ProvisioningEntry, error) {
	return r.findEntry(ctx, r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id))
}

// FindEntryByDate finds the entry for a date, or NOT_FOUND
func (r *GormProvisioningRepository) FindEntryByDate(ctx context.Context, tenantID uuid.UUID, date time.Time) (*accounting.ProvisioningEntry, error) {
	return r.findEntry(ctx, r.db.WithContext(ctx).Where("tenant_id = ? AND entry_date = ?", tenantID, shared.Day(date)))
}

// FindEntries lists entries without lines, newest first
func (r *GormProvisioningRepository) FindEntries(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]accounting.ProvisioningEntry, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ProvisioningEntryModel{}).
		Where("tenant_id = ?", tenantID).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.ProvisioningEntryModel
	if err := paginate(query, filter, ProvisioningEntrySortFields, "entry_date").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]accounting.ProvisioningEntry, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain(nil)
	}
	return out, total, nil
}

// SaveEntry creates or updates an entry and replaces its lines
func (r *GormProvisioningRepository) SaveEntry(ctx context.Context, entry *accounting.ProvisioningEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(models.ProvisioningEntryModelFromDomain(entry)).Error; err != nil {
			return err
		}
		if err := tx.Where("tenant_id = ? AND entry_id = ?", entry.TenantID, entry.ID).
			Delete(&models.ProvisioningLineModel{}).Error; err != nil {
			return err
		}
		lines := models.ProvisioningLineModelsFromDomain(entry)
		if len(lines) == 0 {
			return nil
		}
		return tx.CreateInBatches(&lines, 500).Error
	})
}

func (r *GormProvisioningRepository) findEntry(ctx context.Context, query *gorm.DB) (*accounting.ProvisioningEntry, error) {
	var model models.ProvisioningEntryModel
	if err := query.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NotFound("Provisioning entry")
		}
		return nil, err
	}
	lines := []models.ProvisioningLineModel{}
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND entry_id = ?", model.TenantID, model.ID).
		Order("office_id, loan_product_id, category_id, currency").
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return model.ToDomain(lines), nil
}

func (r *GormProvisioningRepository) definitions(ctx context.Context, tenantID uuid.UUID, criteriaIDs []uuid.UUID) (map[uuid.UUID][]models.ProvisioningDefinitionModel, error) {
	out := make(map[uuid.UUID][]models.ProvisioningDefinitionModel, len(criteriaIDs))
	if len(criteriaIDs) == 0 {
		return out, nil
	}
	var rows []models.ProvisioningDefinitionModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND criteria_id IN ?", tenantID, criteriaIDs).
		Order("min_age ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.CriteriaID] = append(out[row.CriteriaID], row)
	}
	return out, nil
}
