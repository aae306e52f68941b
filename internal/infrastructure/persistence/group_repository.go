package persistence

import (
	"context"
	"errors"

	"github.com/fincore/backend/internal/domain/portfolio"
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/fincore/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormGroupRepository implements GroupRepository using GORM.
// Centers and groups share the groups table, told apart by level.
type GormGroupRepository struct {
	db *gorm.DB
}

// NewGormGroupRepository creates a new GormGroupRepository
func NewGormGroupRepository(db *gorm.DB) *GormGroupRepository {
	return &GormGroupRepository{db: db}
}

// FindByIDForTenant finds a group or center by ID
func (r *GormGroupRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*portfolio.Group, error) {
	var model models.GroupModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NotFound("Group")
		}
		return nil, err
	}
	members, err := r.members(ctx, tenantID, []uuid.UUID{model.ID})
	if err != nil {
		return nil, err
	}
	return model.ToDomain(members[model.ID]), nil
}

// FindAllForTenant lists groups or centers
func (r *GormGroupRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter portfolio.GroupFilter) ([]portfolio.Group, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.GroupModel{}).Where("tenant_id = ?", tenantID)
	if filter.Level != "" {
		query = query.Where("level = ?", filter.Level)
	}
	if filter.OfficeID != nil {
		query = query.Where("office_id = ?", *filter.OfficeID)
	}
	if filter.ParentID != nil {
		query = query.Where("parent_id = ?", *filter.ParentID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR external_id ILIKE ?", pattern, pattern)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.GroupModel
	if err := paginate(query, filter.Filter, GroupSortFields, "created_at").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	groups, err := r.hydrate(ctx, tenantID, rows)
	if err != nil {
		return nil, 0, err
	}
	return groups, total, nil
}

// FindByParent lists the groups of a center
func (r *GormGroupRepository) FindByParent(ctx context.Context, tenantID, centerID uuid.UUID) ([]portfolio.Group, error) {
	var rows []models.GroupModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND parent_id = ?", tenantID, centerID).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.hydrate(ctx, tenantID, rows)
}

// FindByClient lists the groups a client belongs to
func (r *GormGroupRepository) FindByClient(ctx context.Context, tenantID, clientID uuid.UUID) ([]portfolio.Group, error) {
	var rows []models.GroupModel
	if err := r.db.WithContext(ctx).
		Joins("JOIN group_clients gc ON gc.group_id = groups.id").
		Where("groups.tenant_id = ? AND gc.client_id = ?", tenantID, clientID).
		Order("groups.name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.hydrate(ctx, tenantID, rows)
}

// ExistsByName checks for a duplicate name within an office and level
func (r *GormGroupRepository) ExistsByName(ctx context.Context, tenantID, officeID uuid.UUID, level portfolio.GroupLevel, name string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.GroupModel{}).
		Where("tenant_id = ? AND office_id = ? AND level = ? AND LOWER(name) = LOWER(?)", tenantID, officeID, level, name)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a group and replaces its memberships
func (r *GormGroupRepository) Save(ctx context.Context, group *portfolio.Group) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(models.GroupModelFromDomain(group)).Error; err != nil {
			return err
		}
		if err := tx.Where("tenant_id = ? AND group_id = ?", group.TenantID, group.ID).
			Delete(&models.GroupClientModel{}).Error; err != nil {
			return err
		}
		if len(group.ClientIDs) == 0 {
			return nil
		}
		rows := make([]models.GroupClientModel, len(group.ClientIDs))
		for i, clientID := range group.ClientIDs {
			rows[i] = models.GroupClientModel{GroupID: group.ID, ClientID: clientID, TenantID: group.TenantID, Position: i}
		}
		return tx.Create(&rows).Error
	})
}

// Delete removes a group with its memberships
func (r *GormGroupRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ? AND group_id = ?", tenantID, id).
			Delete(&models.GroupClientModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.GroupModel{}, "tenant_id = ? AND id = ?", tenantID, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NotFound("Group")
		}
		return nil
	})
}

func (r *GormGroupRepository) hydrate(ctx context.Context, tenantID uuid.UUID, rows []models.GroupModel) ([]portfolio.Group, error) {
	ids := make([]uuid.UUID, len(rows))
	for i := range rows {
		ids[i] = rows[i].ID
	}
	members, err := r.members(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	groups := make([]portfolio.Group, len(rows))
	for i := range rows {
		groups[i] = *rows[i].ToDomain(members[rows[i].ID])
	}
	return groups, nil
}

func (r *GormGroupRepository) members(ctx context.Context, tenantID uuid.UUID, groupIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	out := make(map[uuid.UUID][]uuid.UUID, len(groupIDs))
	if len(groupIDs) == 0 {
		return out, nil
	}
	var rows []models.GroupClientModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND group_id IN ?", tenantID, groupIDs).
		Order("group_id, position ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.GroupID] = append(out[row.GroupID], row.ClientID)
	}
	return out, nil
}
