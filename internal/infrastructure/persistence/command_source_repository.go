package persistence

import (
	"context"
	"errors"

	"github.com/fincore/backend/internal/domain/command"
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/fincore/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCommandSourceRepository implements command.SourceRepository using GORM.
// Rows are append-only audit records.
type GormCommandSourceRepository struct {
	db *gorm.DB
}

// NewGormCommandSourceRepository creates a new GormCommandSourceRepository
func NewGormCommandSourceRepository(db *gorm.DB) *GormCommandSourceRepository {
	return &GormCommandSourceRepository{db: db}
}

// Save records a command
func (r *GormCommandSourceRepository) Save(ctx context.Context, s *command.Source) error {
	return r.db.WithContext(ctx).Save(models.CommandSourceModelFromDomain(s)).Error
}

// FindByIdempotencyKey finds the processed command with a key
func (r *GormCommandSourceRepository) FindByIdempotencyKey(ctx context.Context, tenantID uuid.UUID, key string) (*command.Source, error) {
	var model models.CommandSourceModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND idempotency_key = ? AND status = ?", tenantID, key, command.StatusProcessed).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NotFound("Command")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds an audit row by ID
func (r *GormCommandSourceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*command.Source, error) {
	var model models.CommandSourceModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NotFound("Command")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists audit rows, newest first
func (r *GormCommandSourceRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter command.SourceFilter) ([]command.Source, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.CommandSourceModel{}).Where("tenant_id = ?", tenantID)
	if filter.EntityName != "" {
		query = query.Where("entity_name = ?", filter.EntityName)
	}
	if filter.ActionName != "" {
		query = query.Where("action_name = ?", filter.ActionName)
	}
	if filter.MakerID != nil {
		query = query.Where("maker_id = ?", *filter.MakerID)
	}
	if filter.ResourceID != nil {
		query = query.Where("resource_id = ?", *filter.ResourceID)
	}
	if filter.From != nil {
		query = query.Where("made_on >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("made_on <= ?", *filter.To)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.CommandSourceModel
	if err := paginate(query, filter.Filter, CommandSourceSortFields, "made_on").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	sources := make([]command.Source, len(rows))
	for i := range rows {
		sources[i] = *rows[i].ToDomain()
	}
	return sources, total, nil
}

var _ command.SourceRepository = (*GormCommandSourceRepository)(nil)
