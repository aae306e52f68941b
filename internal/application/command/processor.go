package command

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fincore/backend/internal/domain/command"
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler runs the write service for one command
type Handler func(ctx context.Context) (*command.Result, error)

// Outcome is what the processor hands back to the transport layer
type Outcome struct {
	CommandID uuid.UUID
	// Body is the fresh result of the write service
	Body any
	// Replayed holds the stored result when an idempotency key was seen before
	Replayed json.RawMessage
}

// IsReplay reports whether the outcome came from an earlier run
func (o *Outcome) IsReplay() bool {
	return o.Replayed != nil
}

// Processor runs write commands with idempotency, an audit trail and a
// CommandProcessed event for every success
type Processor struct {
	sources   command.SourceRepository
	store     shared.IdempotencyStore
	publisher shared.EventPublisher
	ttl       time.Duration
	logger    *zap.Logger
}

// NewProcessor creates a Processor. store may be nil to disable idempotency keys.
func NewProcessor(sources command.SourceRepository, store shared.IdempotencyStore, publisher shared.EventPublisher, ttl time.Duration, logger *zap.Logger) *Processor {
	if ttl <= 0 {
		ttl = shared.DefaultIdempotencyTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{sources: sources, store: store, publisher: publisher, ttl: ttl, logger: logger}
}

// Execute runs fn for w. A repeated idempotency key returns the stored result
// without running fn again.
func (p *Processor) Execute(ctx context.Context, w command.Wrapper, fn Handler) (*Outcome, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}

	storeKey := ""
	if w.IdempotencyKey != "" && p.store != nil {
		storeKey = "command:" + w.TenantID.String() + ":" + w.IdempotencyKey
		claimed, err := p.store.MarkProcessed(ctx, storeKey, p.ttl)
		if err != nil {
			return nil, err
		}
		if !claimed {
			return p.replay(ctx, w)
		}
	}

	res, runErr := fn(ctx)

	src := command.NewSource(w, res, runErr)
	if runErr != nil {
		src.IdempotencyKey = ""
		if storeKey != "" {
			if err := p.store.Release(ctx, storeKey); err != nil {
				p.logger.Warn("Failed to release idempotency key", zap.String("key", w.IdempotencyKey), zap.Error(err))
			}
		}
	}
	if err := p.sources.Save(ctx, src); err != nil {
		// the write itself has already committed
		p.logger.Error("Failed to record command source",
			zap.String("entity", w.EntityName),
			zap.String("action", w.ActionName),
			zap.Error(err))
	}
	if runErr != nil {
		p.logger.Debug("Command failed",
			zap.String("entity", w.EntityName),
			zap.String("action", w.ActionName),
			zap.Error(runErr))
		return nil, runErr
	}

	if p.publisher != nil {
		if err := p.publisher.Publish(ctx, command.NewProcessedEvent(src)); err != nil {
			p.logger.Warn("Failed to publish command event", zap.String("command_id", src.ID.String()), zap.Error(err))
		}
	}

	p.logger.Info("Command processed",
		zap.String("tenant_id", w.TenantID.String()),
		zap.String("command_id", src.ID.String()),
		zap.String("entity", w.EntityName),
		zap.String("action", w.ActionName))

	out := &Outcome{CommandID: src.ID}
	if res != nil {
		out.Body = res.Body
	}
	return out, nil
}

func (p *Processor) replay(ctx context.Context, w command.Wrapper) (*Outcome, error) {
	src, err := p.sources.FindByIdempotencyKey(ctx, w.TenantID, w.IdempotencyKey)
	if err != nil && !shared.IsNotFound(err) {
		return nil, err
	}
	if src == nil || src.Status != command.StatusProcessed || len(src.Result) == 0 {
		return nil, shared.NewDomainError("COMMAND_ALREADY_PROCESSED", "A command with this idempotency key has already been submitted")
	}
	p.logger.Info("Replaying command result",
		zap.String("command_id", src.ID.String()),
		zap.String("idempotency_key", w.IdempotencyKey))
	return &Outcome{CommandID: src.ID, Replayed: json.RawMessage(src.Result)}, nil
}
