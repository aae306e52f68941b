package command

import (
	"context"
	"time"

	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// SourceFilter defines filtering options for the audit trail
type SourceFilter struct {
	shared.Filter
	EntityName string
	ActionName string
	MakerID    *uuid.UUID
	ResourceID *uuid.UUID
	From       *time.Time
	To         *time.Time
}

// SourceRepository defines persistence for command audit rows
type SourceRepository interface {
	// Save records a command
	Save(ctx context.Context, s *Source) error

	// FindByIdempotencyKey finds the processed command with a key
	FindByIdempotencyKey(ctx context.Context, tenantID uuid.UUID, key string) (*Source, error)

	// FindByIDForTenant finds an audit row by ID
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Source, error)

	// FindAllForTenant lists audit rows, newest first
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter SourceFilter) ([]Source, int64, error)
}
