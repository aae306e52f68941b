package testutil

import (
	"context"
	"time"

	"github.com/fincore/backend/internal/domain/command"
	"github.com/fincore/backend/internal/domain/hook"
	"github.com/fincore/backend/internal/domain/identity"
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockHookRepository is a mock implementation of hook.Repository
type MockHookRepository struct {
	mock.Mock
}

func (m *MockHookRepository) FindByIDForTenant(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (*hook.Hook, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*hook.Hook), args.Error(1)
}

func (m *MockHookRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]hook.Hook, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]hook.Hook), args.Get(1).(int64), args.Error(2)
}

func (m *MockHookRepository) FindActive(ctx context.Context, tenantID uuid.UUID) ([]hook.Hook, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]hook.Hook), args.Error(1)
}

func (m *MockHookRepository) ExistsByDisplayName(ctx context.Context, tenantID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, name, excludeID)
	return args.Get(0).(bool), args.Error(1)
}

func (m *MockHookRepository) Save(ctx context.Context, h *hook.Hook) error {
	args := m.Called(ctx, h)
	return args.Error(0)
}

func (m *MockHookRepository) Delete(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

// MockHookDeliveryRepository is a mock implementation of hook.DeliveryRepository
type MockHookDeliveryRepository struct {
	mock.Mock
}

func (m *MockHookDeliveryRepository) Save(ctx context.Context, d *hook.Delivery) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockHookDeliveryRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]hook.Delivery, error) {
	args := m.Called(ctx, now, limit)
	return args.Get(0).([]hook.Delivery), args.Error(1)
}

func (m *MockHookDeliveryRepository) FindByHook(ctx context.Context, tenantID uuid.UUID, hookID uuid.UUID, filter shared.Filter) ([]hook.Delivery, int64, error) {
	args := m.Called(ctx, tenantID, hookID, filter)
	return args.Get(0).([]hook.Delivery), args.Get(1).(int64), args.Error(2)
}

// MockCommandSourceRepository is a mock implementation of command.SourceRepository
type MockCommandSourceRepository struct {
	mock.Mock
}

func (m *MockCommandSourceRepository) Save(ctx context.Context, s *command.Source) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockCommandSourceRepository) FindByIdempotencyKey(ctx context.Context, tenantID uuid.UUID, key string) (*command.Source, error) {
	args := m.Called(ctx, tenantID, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*command.Source), args.Error(1)
}

func (m *MockCommandSourceRepository) FindByIDForTenant(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (*command.Source, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*command.Source), args.Error(1)
}

func (m *MockCommandSourceRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter command.SourceFilter) ([]command.Source, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]command.Source), args.Get(1).(int64), args.Error(2)
}

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByIDForTenant(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (*identity.AppUser, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.AppUser), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, tenantID uuid.UUID, username string) (*identity.AppUser, error) {
	args := m.Called(ctx, tenantID, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.AppUser), args.Error(1)
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, tenantID uuid.UUID, username string) (bool, error) {
	args := m.Called(ctx, tenantID, username)
	return args.Get(0).(bool), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.AppUser) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockIdempotencyStore is a mock implementation of shared.IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Get(0).(bool), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(bool), args.Error(1)
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockIdempotencyStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
