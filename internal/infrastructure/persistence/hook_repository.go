package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/fincore/backend/internal/domain/hook"
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/fincore/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormHookRepository implements hook.Repository using GORM
type GormHookRepository struct {
	db *gorm.DB
}

// NewGormHookRepository creates a new GormHookRepository
func NewGormHookRepository(db *gorm.DB) *GormHookRepository {
	return &GormHookRepository{db: db}
}

// FindByIDForTenant finds a hook by ID
func (r *GormHookRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*hook.Hook, error) {
	var model models.HookModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NotFound("Hook")
		}
		return nil, err
	}
	hooks, err := r.hydrate(ctx, tenantID, []models.HookModel{model})
	if err != nil {
		return nil, err
	}
	return &hooks[0], nil
}

// FindAllForTenant lists hooks
func (r *GormHookRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]hook.Hook, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.HookModel{}).Where("tenant_id = ?", tenantID)
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("display_name ILIKE ? OR payload_url ILIKE ?", pattern, pattern)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.HookModel
	if err := paginate(query, filter, HookSortFields, "created_at").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	hooks, err := r.hydrate(ctx, tenantID, rows)
	if err != nil {
		return nil, 0, err
	}
	return hooks, total, nil
}

// FindActive lists the active hooks of a tenant
func (r *GormHookRepository) FindActive(ctx context.Context, tenantID uuid.UUID) ([]hook.Hook, error) {
	var rows []models.HookModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND active = ?", tenantID, true).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.hydrate(ctx, tenantID, rows)
}

// ExistsByDisplayName checks for a duplicate display name
func (r *GormHookRepository) ExistsByDisplayName(ctx context.Context, tenantID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.HookModel{}).
		Where("tenant_id = ? AND LOWER(display_name) = LOWER(?)", tenantID, name)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a hook and replaces its event subscriptions
func (r *GormHookRepository) Save(ctx context.Context, h *hook.Hook) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(models.HookModelFromDomain(h)).Error; err != nil {
			return err
		}
		if err := tx.Where("tenant_id = ? AND hook_id = ?", h.TenantID, h.ID).
			Delete(&models.HookEventModel{}).Error; err != nil {
			return err
		}
		events := models.HookEventModelsFromDomain(h)
		if len(events) == 0 {
			return nil
		}
		return tx.Create(&events).Error
	})
}

// Delete removes a hook with its events and deliveries
func (r *GormHookRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ? AND hook_id = ?", tenantID, id).
			Delete(&models.HookDeliveryModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("tenant_id = ? AND hook_id = ?", tenantID, id).
			Delete(&models.HookEventModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.HookModel{}, "tenant_id = ? AND id = ?", tenantID, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NotFound("Hook")
		}
		return nil
	})
}

func (r *GormHookRepository) hydrate(ctx context.Context, tenantID uuid.UUID, rows []models.HookModel) ([]hook.Hook, error) {
	hooks := make([]hook.Hook, len(rows))
	if len(rows) == 0 {
		return hooks, nil
	}
	ids := make([]uuid.UUID, len(rows))
	for i := range rows {
		ids[i] = rows[i].ID
	}
	var events []models.HookEventModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND hook_id IN ?", tenantID, ids).
		Order("entity_name, action_name").
		Find(&events).Error; err != nil {
		return nil, err
	}
	byHook := make(map[uuid.UUID][]models.HookEventModel, len(rows))
	for _, e := range events {
		byHook[e.HookID] = append(byHook[e.HookID], e)
	}
	for i := range rows {
		hooks[i] = *rows[i].ToDomain(byHook[rows[i].ID])
	}
	return hooks, nil
}

// GormHookDeliveryRepository implements hook.DeliveryRepository using GORM
type GormHookDeliveryRepository struct {
	db *gorm.DB
}

// NewGormHookDeliveryRepository creates a new GormHookDeliveryRepository
func NewGormHookDeliveryRepository(db *gorm.DB) *GormHookDeliveryRepository {
	return &GormHookDeliveryRepository{db: db}
}

// Save creates or updates a delivery
func (r *GormHookDeliveryRepository) Save(ctx context.Context, d *hook.Delivery) error {
	return r.db.WithContext(ctx).Save(models.HookDeliveryModelFromDomain(d)).Error
}

// FindDue returns deliveries of any tenant awaiting an attempt at now
func (r *GormHookDeliveryRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]hook.Delivery, error) {
	var rows []models.HookDeliveryModel
	if err := r.db.WithContext(ctx).
		Where("status IN ? AND next_attempt_at <= ?", []hook.DeliveryStatus{hook.DeliveryPending, hook.DeliveryFailed}, now).
		Order("next_attempt_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	deliveries := make([]hook.Delivery, len(rows))
	for i := range rows {
		deliveries[i] = *rows[i].ToDomain()
	}
	return deliveries, nil
}

// FindByHook lists the deliveries of a hook, newest first
func (r *GormHookDeliveryRepository) FindByHook(ctx context.Context, tenantID, hookID uuid.UUID, filter shared.Filter) ([]hook.Delivery, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.HookDeliveryModel{}).
		Where("tenant_id = ? AND hook_id = ?", tenantID, hookID).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.HookDeliveryModel
	if err := paginate(query, filter, HookDeliverySortFields, "created_at").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	deliveries := make([]hook.Delivery, len(rows))
	for i := range rows {
		deliveries[i] = *rows[i].ToDomain()
	}
	return deliveries, total, nil
}

var (
	_ hook.Repository         = (*GormHookRepository)(nil)
	_ hook.DeliveryRepository = (*GormHookDeliveryRepository)(nil)
)
