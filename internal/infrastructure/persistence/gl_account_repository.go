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

// GormGLAccountRepository implements GLAccountRepository using GORM
type GormGLAccountRepository struct {
	db *gorm.DB
}

// NewGormGLAccountRepository creates a new GormGLAccountRepository
func NewGormGLAccountRepository(db *gorm.DB) *GormGLAccountRepository {
	return &GormGLAccountRepository{db: db}
}

// FindByIDForTenant finds an account by ID within a tenant
func (r *GormGLAccountRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*accounting.GLAccount, error) {
	var model models.GLAccountModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NotFound("GL account")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs loads several accounts keyed by ID
func (r *GormGLAccountRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*accounting.GLAccount, error) {
	out := make(map[uuid.UUID]*accounting.GLAccount, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.GLAccountModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		out[rows[i].ID] = rows[i].ToDomain()
	}
	return out, nil
}

// FindAllForTenant lists accounts, ordered by GL code by default
func (r *GormGLAccountRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter accounting.GLAccountFilter) ([]accounting.GLAccount, int64, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.GLAccountModel{}).Where("tenant_id = ?", tenantID), filter).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.GLAccountModel
	if err := paginate(query, filter.Filter, GLAccountSortFields, "gl_code asc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	accounts := make([]accounting.GLAccount, len(rows))
	for i := range rows {
		accounts[i] = *rows[i].ToDomain()
	}
	return accounts, total, nil
}

// ExistsByGLCode checks for a duplicate GL code
func (r *GormGLAccountRepository) ExistsByGLCode(ctx context.Context, tenantID uuid.UUID, glCode string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.GLAccountModel{}).
		Where("tenant_id = ? AND gl_code = ?", tenantID, glCode)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// HasChildren reports whether any account has this parent
func (r *GormGLAccountRepository) HasChildren(ctx context.Context, tenantID, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.GLAccountModel{}).
		Where("tenant_id = ? AND parent_id = ?", tenantID, id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates an account
func (r *GormGLAccountRepository) Save(ctx context.Context, account *accounting.GLAccount) error {
	return r.db.WithContext(ctx).Save(models.GLAccountModelFromDomain(account)).Error
}

// RewriteHierarchy replaces the hierarchy prefix of descendants
func (r *GormGLAccountRepository) RewriteHierarchy(ctx context.Context, tenantID uuid.UUID, oldPrefix, newPrefix string) error {
	return rewriteHierarchy(ctx, r.db, &models.GLAccountModel{}, tenantID, oldPrefix, newPrefix)
}

// Delete removes an account
func (r *GormGLAccountRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.GLAccountModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NotFound("GL account")
	}
	return nil
}

func (r *GormGLAccountRepository) applyFilter(query *gorm.DB, filter accounting.GLAccountFilter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR gl_code ILIKE ?", pattern, pattern)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.Usage != nil {
		query = query.Where("usage = ?", *filter.Usage)
	}
	if filter.Disabled != nil {
		query = query.Where("disabled = ?", *filter.Disabled)
	}
	if filter.ManualEntriesAllowed != nil {
		query = query.Where("manual_entries_allowed = ?", *filter.ManualEntriesAllowed)
	}
	if filter.Tag != "" {
		query = query.Where("tag = ?", filter.Tag)
	}
	return query
}

// rewriteHierarchy moves every strict descendant of oldPrefix under newPrefix.
func rewriteHierarchy(ctx context.Context, db *gorm.DB, model any, tenantID uuid.UUID, oldPrefix, newPrefix string) error {
	return db.WithContext(ctx).Model(model).
		Where("tenant_id = ? AND hierarchy LIKE ? AND hierarchy <> ?", tenantID, oldPrefix+"%", oldPrefix).
		UpdateColumn("hierarchy", gorm.Expr("? || SUBSTR(hierarchy, ?)", newPrefix, len(oldPrefix)+1)).Error
}
