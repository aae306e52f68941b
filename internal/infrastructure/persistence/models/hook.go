package models

import (
	"time"

	"github.com/fincore/backend/internal/domain/hook"
	"github.com/google/uuid"
)

// HookModel is the persistence model for the Hook aggregate root.
type HookModel struct {
	TenantAggregateModel
	Name        string           `gorm:"type:varchar(45);not null"`
	DisplayName string           `gorm:"type:varchar(100);not null"`
	Active      bool             `gorm:"not null;default:true;index"`
	PayloadURL  string           `gorm:"type:varchar(1000);not null"`
	ContentType hook.ContentType `gorm:"type:varchar(10);not null"`
	Secret      string           `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (HookModel) TableName() string {
	return "hooks"
}

// ToDomain converts the persistence model to a domain Hook.
func (m *HookModel) ToDomain(events []HookEventModel) *hook.Hook {
	h := &hook.Hook{
		Name:        m.Name,
		DisplayName: m.DisplayName,
		Active:      m.Active,
		PayloadURL:  m.PayloadURL,
		ContentType: m.ContentType,
		Secret:      m.Secret,
		Events:      make([]hook.Event, len(events)),
	}
	for i, e := range events {
		h.Events[i] = hook.Event{EntityName: e.EntityName, ActionName: e.ActionName}
	}
	m.loadRoot(&h.TenantAggregateRoot)
	return h
}

// HookModelFromDomain creates a persistence model from a domain Hook.
func HookModelFromDomain(h *hook.Hook) *HookModel {
	m := &HookModel{
		Name:        h.Name,
		DisplayName: h.DisplayName,
		Active:      h.Active,
		PayloadURL:  h.PayloadURL,
		ContentType: h.ContentType,
		Secret:      h.Secret,
	}
	m.setRoot(h.TenantAggregateRoot)
	return m
}

// HookEventModel is an entity/action pair a hook subscribes to.
type HookEventModel struct {
	HookID     uuid.UUID `gorm:"type:uuid;primary_key"`
	EntityName string    `gorm:"type:varchar(45);primary_key"`
	ActionName string    `gorm:"type:varchar(45);primary_key"`
	TenantID   uuid.UUID `gorm:"type:uuid;not null;index"`
}

// TableName returns the table name for GORM
func (HookEventModel) TableName() string {
	return "hook_events"
}

// HookEventModelsFromDomain maps the subscriptions of a hook.
func HookEventModelsFromDomain(h *hook.Hook) []HookEventModel {
	out := make([]HookEventModel, len(h.Events))
	for i, e := range h.Events {
		out[i] = HookEventModel{HookID: h.ID, EntityName: e.EntityName, ActionName: e.ActionName, TenantID: h.TenantID}
	}
	return out
}

// HookDeliveryModel is the outbox row for one hook firing. Rows are
// retried with backoff until sent or abandoned.
type HookDeliveryModel struct {
	ID             uuid.UUID           `gorm:"type:uuid;primaryKey"`
	TenantID       uuid.UUID           `gorm:"type:uuid;not null;index:idx_hook_deliveries_tenant_hook,priority:1"`
	HookID         uuid.UUID           `gorm:"type:uuid;not null;index:idx_hook_deliveries_tenant_hook,priority:2"`
	EntityName     string              `gorm:"type:varchar(45);not null"`
	ActionName     string              `gorm:"type:varchar(45);not null"`
	Endpoint       string              `gorm:"type:varchar(500)"`
	Payload        []byte              `gorm:"type:jsonb;not null"`
	Status         hook.DeliveryStatus `gorm:"type:varchar(20);default:PENDING;index:idx_hook_deliveries_due,priority:1"`
	Attempts       int                 `gorm:"default:0"`
	MaxAttempts    int                 `gorm:"default:5"`
	NextAttemptAt  time.Time           `gorm:"not null;index:idx_hook_deliveries_due,priority:2"`
	LastError      string              `gorm:"type:text"`
	ResponseStatus int                 `gorm:"default:0"`
	DeliveredAt    *time.Time
	CreatedAt      time.Time `gorm:"not null;default:now()"`
	UpdatedAt      time.Time `gorm:"not null;default:now()"`
}

// TableName returns the table name for GORM
func (HookDeliveryModel) TableName() string {
	return "hook_deliveries"
}

// ToDomain converts the persistence model to a domain Delivery.
func (m *HookDeliveryModel) ToDomain() *hook.Delivery {
	return &hook.Delivery{
		ID:             m.ID,
		TenantID:       m.TenantID,
		HookID:         m.HookID,
		EntityName:     m.EntityName,
		ActionName:     m.ActionName,
		Endpoint:       m.Endpoint,
		Payload:        m.Payload,
		Status:         m.Status,
		Attempts:       m.Attempts,
		MaxAttempts:    m.MaxAttempts,
		NextAttemptAt:  m.NextAttemptAt,
		LastError:      m.LastError,
		ResponseStatus: m.ResponseStatus,
		DeliveredAt:    m.DeliveredAt,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain Delivery.
func (m *HookDeliveryModel) FromDomain(d *hook.Delivery) {
	m.ID = d.ID
	m.TenantID = d.TenantID
	m.HookID = d.HookID
	m.EntityName = d.EntityName
	m.ActionName = d.ActionName
	m.Endpoint = d.Endpoint
	m.Payload = d.Payload
	m.Status = d.Status
	m.Attempts = d.Attempts
	m.MaxAttempts = d.MaxAttempts
	m.NextAttemptAt = d.NextAttemptAt
	m.LastError = d.LastError
	m.ResponseStatus = d.ResponseStatus
	m.DeliveredAt = d.DeliveredAt
	m.CreatedAt = d.CreatedAt
	m.UpdatedAt = d.UpdatedAt
}

// HookDeliveryModelFromDomain creates a persistence model from a domain Delivery.
func HookDeliveryModelFromDomain(d *hook.Delivery) *HookDeliveryModel {
	m := &HookDeliveryModel{}
	m.FromDomain(d)
	return m
}
