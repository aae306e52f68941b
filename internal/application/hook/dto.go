package hook

import (
	"time"

	"github.com/fincore/backend/internal/domain/hook"
	"github.com/google/uuid"
)

// EventRequest is one (entity, action) subscription
type EventRequest struct {
	EntityName string `json:"entity_name" binding:"required"`
	ActionName string `json:"action_name" binding:"required"`
}

// HookRequest creates or replaces a hook
type HookRequest struct {
	DisplayName string         `json:"display_name" binding:"required,max=100"`
	Active      bool           `json:"active"`
	Events      []EventRequest `json:"events" binding:"required,min=1,dive"`
	PayloadURL  string         `json:"payload_url" binding:"required,url"`
	ContentType string         `json:"content_type" binding:"omitempty,oneof=json form"`
	Secret      string         `json:"secret"`
}

func (r HookRequest) input() hook.Input {
	events := make([]hook.Event, 0, len(r.Events))
	for _, e := range r.Events {
		events = append(events, hook.Event{EntityName: e.EntityName, ActionName: e.ActionName})
	}
	return hook.Input{
		DisplayName: r.DisplayName,
		Active:      r.Active,
		Events:      events,
		PayloadURL:  r.PayloadURL,
		ContentType: hook.ContentType(r.ContentType),
		Secret:      r.Secret,
	}
}

// HookResponse is the API view of a hook. The secret is never returned.
type HookResponse struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name"`
	DisplayName string         `json:"display_name"`
	Active      bool           `json:"active"`
	Events      []EventRequest `json:"events"`
	PayloadURL  string         `json:"payload_url"`
	ContentType string         `json:"content_type"`
	Signed      bool           `json:"signed"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func toHookResponse(h *hook.Hook) HookResponse {
	events := make([]EventRequest, 0, len(h.Events))
	for _, e := range h.Events {
		events = append(events, EventRequest{EntityName: e.EntityName, ActionName: e.ActionName})
	}
	return HookResponse{
		ID:          h.ID,
		Name:        h.Name,
		DisplayName: h.DisplayName,
		Active:      h.Active,
		Events:      events,
		PayloadURL:  h.PayloadURL,
		ContentType: string(h.ContentType),
		Signed:      h.Secret != "",
		CreatedAt:   h.CreatedAt,
		UpdatedAt:   h.UpdatedAt,
	}
}

// DeliveryResponse is the API view of one delivery
type DeliveryResponse struct {
	ID             uuid.UUID  `json:"id"`
	HookID         uuid.UUID  `json:"hook_id"`
	EntityName     string     `json:"entity_name"`
	ActionName     string     `json:"action_name"`
	Endpoint       string     `json:"endpoint"`
	Status         string     `json:"status"`
	Attempts       int        `json:"attempts"`
	MaxAttempts    int        `json:"max_attempts"`
	NextAttemptAt  time.Time  `json:"next_attempt_at"`
	LastError      string     `json:"last_error,omitempty"`
	ResponseStatus int        `json:"response_status,omitempty"`
	DeliveredAt    *time.Time `json:"delivered_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func toDeliveryResponse(d *hook.Delivery) DeliveryResponse {
	return DeliveryResponse{
		ID:             d.ID,
		HookID:         d.HookID,
		EntityName:     d.EntityName,
		ActionName:     d.ActionName,
		Endpoint:       d.Endpoint,
		Status:         string(d.Status),
		Attempts:       d.Attempts,
		MaxAttempts:    d.MaxAttempts,
		NextAttemptAt:  d.NextAttemptAt,
		LastError:      d.LastError,
		ResponseStatus: d.ResponseStatus,
		DeliveredAt:    d.DeliveredAt,
		CreatedAt:      d.CreatedAt,
	}
}
