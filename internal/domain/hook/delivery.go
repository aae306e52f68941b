package hook

import (
	"time"

	"github.com/google/uuid"
)

// DeliveryStatus is the state of one webhook delivery
type DeliveryStatus string

const (
	DeliveryPending DeliveryStatus = "PENDING"
	DeliverySent    DeliveryStatus = "SENT"
	DeliveryFailed  DeliveryStatus = "FAILED"
	DeliveryDead    DeliveryStatus = "DEAD"
)

const (
	// DefaultMaxAttempts bounds deliveries when no limit is configured
	DefaultMaxAttempts = 5
	// DefaultBaseBackoff is the delay before the first retry
	DefaultBaseBackoff = 30 * time.Second
	maxBackoff         = time.Hour
)

// Delivery is an outbox row for one hook firing
type Delivery struct {
	ID             uuid.UUID
	TenantID       uuid.UUID
	HookID         uuid.UUID
	EntityName     string
	ActionName     string
	Endpoint       string
	Payload        []byte
	Status         DeliveryStatus
	Attempts       int
	MaxAttempts    int
	NextAttemptAt  time.Time
	LastError      string
	ResponseStatus int
	DeliveredAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewDelivery queues a payload for h
func NewDelivery(h *Hook, entity, action, endpoint string, payload []byte, maxAttempts int) *Delivery {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	now := time.Now()
	return &Delivery{
		ID:            uuid.New(),
		TenantID:      h.TenantID,
		HookID:        h.ID,
		EntityName:    entity,
		ActionName:    action,
		Endpoint:      endpoint,
		Payload:       payload,
		Status:        DeliveryPending,
		MaxAttempts:   maxAttempts,
		NextAttemptAt: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// IsDue reports whether the delivery should be attempted at now
func (d *Delivery) IsDue(now time.Time) bool {
	return (d.Status == DeliveryPending || d.Status == DeliveryFailed) && !d.NextAttemptAt.After(now)
}

// MarkSent records a 2xx response
func (d *Delivery) MarkSent(statusCode int, now time.Time) {
	d.Attempts++
	d.Status = DeliverySent
	d.ResponseStatus = statusCode
	d.LastError = ""
	d.DeliveredAt = &now
	d.UpdatedAt = now
}

// MarkFailed records a failed attempt and schedules the next with
// exponential backoff, or gives up once attempts are exhausted
func (d *Delivery) MarkFailed(errMsg string, statusCode int, now time.Time) {
	d.Attempts++
	d.LastError = errMsg
	d.ResponseStatus = statusCode
	d.UpdatedAt = now
	if d.Attempts >= d.MaxAttempts {
		d.Status = DeliveryDead
		return
	}
	d.Status = DeliveryFailed
	d.NextAttemptAt = now.Add(RetryBackoff(d.Attempts))
}

// RetryBackoff is the wait after the given number of failed attempts. It
// doubles from DefaultBaseBackoff and stays at one hour once it gets there.
func RetryBackoff(attempts int) time.Duration {
	backoff := DefaultBaseBackoff
	for i := 1; i < attempts && backoff < maxBackoff; i++ {
		backoff *= 2
	}
	return min(backoff, maxBackoff)
}

// Abandon gives up on the delivery without another attempt
func (d *Delivery) Abandon(reason string, now time.Time) {
	d.Status = DeliveryDead
	d.LastError = reason
	d.UpdatedAt = now
}
