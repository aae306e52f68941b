package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines persistence for app users
type UserRepository interface {
	// FindByIDForTenant finds a user by ID
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*AppUser, error)

	// FindByUsername finds a user by username within the tenant
	FindByUsername(ctx context.Context, tenantID uuid.UUID, username string) (*AppUser, error)

	// ExistsByUsername checks if a username already exists
	ExistsByUsername(ctx context.Context, tenantID uuid.UUID, username string) (bool, error)

	// Save creates or updates a user
	Save(ctx context.Context, user *AppUser) error
}
