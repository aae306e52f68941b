package hook

import (
	"context"

	"github.com/fincore/backend/internal/domain/hook"
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HookService manages web hook definitions
type HookService struct {
	hookRepo     hook.Repository
	deliveryRepo hook.DeliveryRepository
	logger       *zap.Logger
}

// NewHookService creates a new HookService
func NewHookService(hookRepo hook.Repository, deliveryRepo hook.DeliveryRepository, logger *zap.Logger) *HookService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HookService{hookRepo: hookRepo, deliveryRepo: deliveryRepo, logger: logger}
}

// Create registers a new hook
func (s *HookService) Create(ctx context.Context, tenantID uuid.UUID, req HookRequest) (*HookResponse, error) {
	if err := s.ensureUniqueName(ctx, tenantID, req.DisplayName, nil); err != nil {
		return nil, err
	}
	h, err := hook.NewHook(tenantID, req.input())
	if err != nil {
		return nil, err
	}
	if err := s.hookRepo.Save(ctx, h); err != nil {
		return nil, err
	}
	s.logger.Info("Hook created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("hook_id", h.ID.String()),
		zap.String("payload_url", h.PayloadURL))
	resp := toHookResponse(h)
	return &resp, nil
}

// Update replaces a hook definition
func (s *HookService) Update(ctx context.Context, tenantID, id uuid.UUID, req HookRequest) (*HookResponse, error) {
	h, err := s.hookRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(ctx, tenantID, req.DisplayName, &id); err != nil {
		return nil, err
	}
	in := req.input()
	if in.Secret == "" {
		// an omitted secret keeps the stored one
		in.Secret = h.Secret
	}
	if err := h.Update(in); err != nil {
		return nil, err
	}
	if err := s.hookRepo.Save(ctx, h); err != nil {
		return nil, err
	}
	resp := toHookResponse(h)
	return &resp, nil
}

// Delete removes a hook and its delivery history
func (s *HookService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.hookRepo.FindByIDForTenant(ctx, tenantID, id); err != nil {
		return err
	}
	return s.hookRepo.Delete(ctx, tenantID, id)
}

// GetByID returns one hook
func (s *HookService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*HookResponse, error) {
	h, err := s.hookRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := toHookResponse(h)
	return &resp, nil
}

// List pages the tenant's hooks
func (s *HookService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]HookResponse, int64, error) {
	hooks, total, err := s.hookRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]HookResponse, 0, len(hooks))
	for i := range hooks {
		out = append(out, toHookResponse(&hooks[i]))
	}
	return out, total, nil
}

// Deliveries pages the delivery history of a hook
func (s *HookService) Deliveries(ctx context.Context, tenantID, hookID uuid.UUID, filter shared.Filter) ([]DeliveryResponse, int64, error) {
	if _, err := s.hookRepo.FindByIDForTenant(ctx, tenantID, hookID); err != nil {
		return nil, 0, err
	}
	deliveries, total, err := s.deliveryRepo.FindByHook(ctx, tenantID, hookID, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]DeliveryResponse, 0, len(deliveries))
	for i := range deliveries {
		out = append(out, toDeliveryResponse(&deliveries[i]))
	}
	return out, total, nil
}

func (s *HookService) ensureUniqueName(ctx context.Context, tenantID uuid.UUID, name string, excludeID *uuid.UUID) error {
	exists, err := s.hookRepo.ExistsByDisplayName(ctx, tenantID, name, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError("HOOK_NAME_EXISTS", "A hook with this display name already exists")
	}
	return nil
}
