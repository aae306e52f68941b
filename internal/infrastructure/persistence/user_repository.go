package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/fincore/backend/internal/domain/identity"
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/fincore/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormUserRepository stores back-office users. Usernames are unique per
// tenant regardless of case.
type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) tenant(ctx context.Context, tenantID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.AppUserModel{}).Where("tenant_id = ?", tenantID)
}

func withUsername(username string) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		return q.Where("LOWER(username) = ?", strings.ToLower(username))
	}
}

func (r *GormUserRepository) first(q *gorm.DB) (*identity.AppUser, error) {
	var row models.AppUserModel
	err := q.Take(&row).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, shared.NotFound("User")
	case err != nil:
		return nil, err
	}
	return row.ToDomain(), nil
}

func (r *GormUserRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*identity.AppUser, error) {
	return r.first(r.tenant(ctx, tenantID).Where("id = ?", id))
}

// FindByUsername matches the login name case-insensitively
func (r *GormUserRepository) FindByUsername(ctx context.Context, tenantID uuid.UUID, username string) (*identity.AppUser, error) {
	return r.first(r.tenant(ctx, tenantID).Scopes(withUsername(username)))
}

func (r *GormUserRepository) ExistsByUsername(ctx context.Context, tenantID uuid.UUID, username string) (bool, error) {
	var n int64
	err := r.tenant(ctx, tenantID).Scopes(withUsername(username)).Limit(1).Count(&n).Error
	return n > 0, err
}

// Save upserts the user row, including the failed-login counter and lock
func (r *GormUserRepository) Save(ctx context.Context, user *identity.AppUser) error {
	return r.db.WithContext(ctx).Save(models.AppUserModelFromDomain(user)).Error
}

var _ identity.UserRepository = (*GormUserRepository)(nil)
