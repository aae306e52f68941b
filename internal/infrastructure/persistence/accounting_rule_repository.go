package persistence

import (
	"context"
	"errors"

	"github.com/fincore/backend/internal/domain/accounting"
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/fincore/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAccountingRuleRepository implements AccountingRuleRepository using GORM
type GormAccountingRuleRepository struct {
	db *gorm.DB
}

// NewGormAccountingRuleRepository creates a new GormAccountingRuleRepository
func NewGormAccountingRuleRepository(db *gorm.DB) *GormAccountingRuleRepository {
	return &GormAccountingRuleRepository{db: db}
}

// FindByIDForTenant finds a rule by ID
func (r *GormAccountingRuleRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*accounting.AccountingRule, error) {
	var model models.AccountingRuleModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NotFound("Accounting rule")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists rules by name
func (r *GormAccountingRuleRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]accounting.AccountingRule, error) {
	var rows []models.AccountingRuleModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	rules := make([]accounting.AccountingRule, len(rows))
	for i := range rows {
		rules[i] = *rows[i].ToDomain()
	}
	return rules, nil
}

// ExistsByName checks for a duplicate rule name
func (r *GormAccountingRuleRepository) ExistsByName(ctx context.Context, tenantID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.AccountingRuleModel{}).
		Where("tenant_id = ? AND name = ?", tenantID, name)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a rule
func (r *GormAccountingRuleRepository) Save(ctx context.Context, rule *accounting.AccountingRule) error {
	return r.db.WithContext(ctx).Save(models.AccountingRuleModelFromDomain(rule)).Error
}

// Delete removes a rule
func (r *GormAccountingRuleRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.AccountingRuleModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NotFound("Accounting rule")
	}
	return nil
}

// GormGLClosureRepository implements GLClosureRepository using GORM
type GormGLClosureRepository struct {
	db *gorm.DB
}

// NewGormGLClosureRepository creates a new GormGLClosureRepository
func NewGormGLClosureRepository(db *gorm.DB) *GormGLClosureRepository {
	return &GormGLClosureRepository{db: db}
}

// FindByIDForTenant finds a closure by ID
func (r *GormGLClosureRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*accounting.GLClosure, error) {
	var model models.GLClosureModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NotFound("GL closure")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindLatestForOffice returns the latest active closure, or nil
func (r *GormGLClosureRepository) FindLatestForOffice(ctx context.Context, tenantID, officeID uuid.UUID) (*accounting.GLClosure, error) {
	var rows []models.GLClosureModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND office_id = ? AND deleted = ?", tenantID, officeID, false).
		Order("closing_date DESC").
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0].ToDomain(), nil
}

// FindAllForTenant lists active closures, optionally for one office
func (r *GormGLClosureRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, officeID *uuid.UUID) ([]accounting.GLClosure, error) {
	query := r.db.WithContext(ctx).Where("tenant_id = ? AND deleted = ?", tenantID, false)
	if officeID != nil {
		query = query.Where("office_id = ?", *officeID)
	}
	var rows []models.GLClosureModel
	if err := query.Order("closing_date DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	closures := make([]accounting.GLClosure, len(rows))
	for i := range rows {
		closures[i] = *rows[i].ToDomain()
	}
	return closures, nil
}

// Save creates or updates a closure
func (r *GormGLClosureRepository) Save(ctx context.Context, closure *accounting.GLClosure) error {
	return r.db.WithContext(ctx).Save(models.GLClosureModelFromDomain(closure)).Error
}
