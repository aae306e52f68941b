package hook

import (
	"context"
	"time"

	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository defines persistence for hooks
type Repository interface {
	// FindByIDForTenant finds a hook by ID
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Hook, error)

	// FindAllForTenant lists hooks
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Hook, int64, error)

	// FindActive lists the active hooks of a tenant
	FindActive(ctx context.Context, tenantID uuid.UUID) ([]Hook, error)

	// ExistsByDisplayName checks for a duplicate display name
	ExistsByDisplayName(ctx context.Context, tenantID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error)

	// Save creates or updates a hook with its events
	Save(ctx context.Context, h *Hook) error

	// Delete removes a hook and its deliveries
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// DeliveryRepository defines persistence for webhook deliveries
type DeliveryRepository interface {
	// Save creates or updates a delivery
	Save(ctx context.Context, d *Delivery) error

	// FindDue returns deliveries of any tenant awaiting an attempt at now
	FindDue(ctx context.Context, now time.Time, limit int) ([]Delivery, error)

	// FindByHook lists the deliveries of a hook, newest first
	FindByHook(ctx context.Context, tenantID, hookID uuid.UUID, filter shared.Filter) ([]Delivery, int64, error)
}
