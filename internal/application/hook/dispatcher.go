package hook

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/fincore/backend/internal/domain/command"
	"github.com/fincore/backend/internal/domain/hook"
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Header names sent with every delivery
const (
	HeaderEntity    = "X-Hook-Entity"
	HeaderAction    = "X-Hook-Action"
	HeaderTenant    = "X-Hook-Tenant-Id"
	HeaderEndpoint  = "X-Hook-Endpoint"
	HeaderSignature = "X-Hook-Signature"
)

// DeliveryRequest is one outbound HTTP POST
type DeliveryRequest struct {
	URL         string
	ContentType string
	Headers     map[string]string
	Body        []byte
}

// Sender posts deliveries to payload URLs. It returns the response status
// and an error for transport failures or non-2xx responses.
type Sender interface {
	Send(ctx context.Context, req DeliveryRequest) (int, error)
}

// DispatcherConfig bounds delivery attempts
type DispatcherConfig struct {
	MaxAttempts int
	BatchSize   int
	ClaimTTL    time.Duration
}

// Dispatcher turns processed commands into webhook deliveries and sends them
type Dispatcher struct {
	hookRepo     hook.Repository
	deliveryRepo hook.DeliveryRepository
	sender       Sender
	claims       shared.IdempotencyStore
	config       DispatcherConfig
	logger       *zap.Logger
	now          func() time.Time
}

// NewDispatcher creates a Dispatcher. claims may be nil; when set it keeps
// two replicas from sending the same attempt.
func NewDispatcher(hookRepo hook.Repository, deliveryRepo hook.DeliveryRepository, sender Sender, claims shared.IdempotencyStore, config DispatcherConfig, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = hook.DefaultMaxAttempts
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 100
	}
	if config.ClaimTTL <= 0 {
		config.ClaimTTL = 5 * time.Minute
	}
	return &Dispatcher{
		hookRepo:     hookRepo,
		deliveryRepo: deliveryRepo,
		sender:       sender,
		claims:       claims,
		config:       config,
		logger:       logger,
		now:          time.Now,
	}
}

// EventTypes implements shared.EventHandler
func (d *Dispatcher) EventTypes() []string {
	return []string{command.EventTypeCommandProcessed}
}

// Handle queues a delivery for every active hook subscribed to the command
// and makes the first attempt straight away
func (d *Dispatcher) Handle(ctx context.Context, event shared.DomainEvent) error {
	processed, ok := event.(*command.ProcessedEvent)
	if !ok {
		return nil
	}
	hooks, err := d.hookRepo.FindActive(ctx, processed.TenantID())
	if err != nil {
		return fmt.Errorf("load active hooks: %w", err)
	}
	for i := range hooks {
		h := &hooks[i]
		if !h.Matches(processed.EntityName, processed.ActionName) {
			continue
		}
		delivery := hook.NewDelivery(h, processed.EntityName, processed.ActionName, processed.Href, processed.Result, d.config.MaxAttempts)
		if err := d.deliveryRepo.Save(ctx, delivery); err != nil {
			d.logger.Error("Failed to queue hook delivery",
				zap.String("hook_id", h.ID.String()),
				zap.Error(err))
			continue
		}
		d.attempt(ctx, h, delivery)
	}
	return nil
}

// DeliverDue retries every due delivery across tenants and returns how
// many were attempted
func (d *Dispatcher) DeliverDue(ctx context.Context) (int, error) {
	due, err := d.deliveryRepo.FindDue(ctx, d.now(), d.config.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("load due deliveries: %w", err)
	}
	hooks := make(map[uuid.UUID]*hook.Hook)
	attempted := 0
	for i := range due {
		if ctx.Err() != nil {
			return attempted, ctx.Err()
		}
		delivery := &due[i]
		h, ok := hooks[delivery.HookID]
		if !ok {
			h, err = d.hookRepo.FindByIDForTenant(ctx, delivery.TenantID, delivery.HookID)
			if err != nil && !shared.IsNotFound(err) {
				d.logger.Warn("Failed to load hook for delivery", zap.String("delivery_id", delivery.ID.String()), zap.Error(err))
				continue
			}
			hooks[delivery.HookID] = h
		}
		if h == nil || !h.Active {
			delivery.Abandon("hook removed or inactive", d.now())
			if err := d.deliveryRepo.Save(ctx, delivery); err != nil {
				d.logger.Warn("Failed to abandon delivery", zap.Error(err))
			}
			continue
		}
		if d.attempt(ctx, h, delivery) {
			attempted++
		}
	}
	return attempted, nil
}

// attempt sends one delivery and stores the outcome. It reports false when
// another worker already holds the attempt.
func (d *Dispatcher) attempt(ctx context.Context, h *hook.Hook, delivery *hook.Delivery) bool {
	if d.claims != nil {
		key := fmt.Sprintf("hook-delivery:%s:%d", delivery.ID, delivery.Attempts)
		claimed, err := d.claims.MarkProcessed(ctx, key, d.config.ClaimTTL)
		if err != nil {
			d.logger.Warn("Failed to claim delivery", zap.String("delivery_id", delivery.ID.String()), zap.Error(err))
			return false
		}
		if !claimed {
			return false
		}
	}

	req := buildRequest(h, delivery)
	status, err := d.sender.Send(ctx, req)
	now := d.now()
	if err != nil {
		delivery.MarkFailed(err.Error(), status, now)
		d.logger.Warn("Hook delivery failed",
			zap.String("hook_id", h.ID.String()),
			zap.String("delivery_id", delivery.ID.String()),
			zap.Int("attempt", delivery.Attempts),
			zap.String("status", string(delivery.Status)),
			zap.Error(err))
	} else {
		delivery.MarkSent(status, now)
		d.logger.Debug("Hook delivered",
			zap.String("hook_id", h.ID.String()),
			zap.String("delivery_id", delivery.ID.String()),
			zap.Int("response_status", status))
	}
	if err := d.deliveryRepo.Save(ctx, delivery); err != nil {
		d.logger.Error("Failed to record delivery outcome", zap.String("delivery_id", delivery.ID.String()), zap.Error(err))
	}
	return true
}

func buildRequest(h *hook.Hook, delivery *hook.Delivery) DeliveryRequest {
	body := delivery.Payload
	if len(body) == 0 {
		body = []byte("{}")
	}
	if h.ContentType == hook.ContentTypeForm {
		body = []byte(url.Values{"payload": {string(body)}}.Encode())
	}
	headers := map[string]string{
		HeaderEntity:   delivery.EntityName,
		HeaderAction:   delivery.ActionName,
		HeaderTenant:   delivery.TenantID.String(),
		HeaderEndpoint: delivery.Endpoint,
	}
	if sig := h.Sign(body); sig != "" {
		headers[HeaderSignature] = sig
	}
	return DeliveryRequest{
		URL:         h.PayloadURL,
		ContentType: h.ContentType.MIME(),
		Headers:     headers,
		Body:        body,
	}
}

var _ shared.EventHandler = (*Dispatcher)(nil)
