package command

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Wrapper describes one write request as it enters the pipeline
type Wrapper struct {
	TenantID       uuid.UUID
	UserID         uuid.UUID
	EntityName     string
	ActionName     string
	ResourceID     *uuid.UUID
	OfficeID       *uuid.UUID
	ClientID       *uuid.UUID
	GroupID        *uuid.UUID
	LoanID         *uuid.UUID
	Href           string
	Payload        []byte
	IdempotencyKey string
}

// NewWrapper builds a wrapper, encoding payload as JSON
func NewWrapper(tenantID, userID uuid.UUID, entity, action, href string, payload any) Wrapper {
	raw, _ := json.Marshal(payload)
	return Wrapper{
		TenantID:   tenantID,
		UserID:     userID,
		EntityName: strings.ToUpper(entity),
		ActionName: strings.ToUpper(action),
		Href:       href,
		Payload:    raw,
	}
}

// WithResource sets the resource the command acts on
func (w Wrapper) WithResource(id uuid.UUID) Wrapper {
	w.ResourceID = &id
	return w
}

// WithIdempotencyKey sets the client-supplied idempotency key
func (w Wrapper) WithIdempotencyKey(key string) Wrapper {
	w.IdempotencyKey = strings.TrimSpace(key)
	return w
}

// Validate checks the wrapper is routable
func (w Wrapper) Validate() error {
	if w.TenantID == uuid.Nil {
		return shared.NewDomainError("COMMAND_TENANT_REQUIRED", "Command has no tenant")
	}
	if w.EntityName == "" || w.ActionName == "" {
		return shared.NewDomainError("COMMAND_NOT_ROUTABLE", "Command needs an entity and an action")
	}
	return nil
}

// Permission is the permission code required to run the command
func (w Wrapper) Permission() string {
	return w.ActionName + "_" + w.EntityName
}

// Result is what a write service reports back to the pipeline
type Result struct {
	ResourceID    *uuid.UUID
	OfficeID      *uuid.UUID
	ClientID      *uuid.UUID
	GroupID       *uuid.UUID
	LoanID        *uuid.UUID
	TransactionID string
	Changes       map[string]any
	Body          any // response returned to the caller
}

// Status is the outcome of a command
type Status string

const (
	StatusProcessed Status = "PROCESSED"
	StatusError     Status = "ERROR"
)

// Source is the audit row kept for every processed command
type Source struct {
	ID             uuid.UUID
	TenantID       uuid.UUID
	EntityName     string
	ActionName     string
	ResourceID     *uuid.UUID
	OfficeID       *uuid.UUID
	ClientID       *uuid.UUID
	GroupID        *uuid.UUID
	LoanID         *uuid.UUID
	TransactionID  string
	Href           string
	Payload        []byte
	Result         []byte
	Status         Status
	Error          string
	MakerID        uuid.UUID
	MadeOn         time.Time
	IdempotencyKey string
}

// NewSource records the outcome of running w
func NewSource(w Wrapper, res *Result, runErr error) *Source {
	s := &Source{
		ID:             uuid.New(),
		TenantID:       w.TenantID,
		EntityName:     w.EntityName,
		ActionName:     w.ActionName,
		ResourceID:     w.ResourceID,
		OfficeID:       w.OfficeID,
		ClientID:       w.ClientID,
		GroupID:        w.GroupID,
		LoanID:         w.LoanID,
		Href:           w.Href,
		Payload:        w.Payload,
		Status:         StatusProcessed,
		MakerID:        w.UserID,
		MadeOn:         time.Now(),
		IdempotencyKey: w.IdempotencyKey,
	}
	if runErr != nil {
		s.Status = StatusError
		s.Error = runErr.Error()
		return s
	}
	if res != nil {
		s.ResourceID = firstNonNil(res.ResourceID, s.ResourceID)
		s.OfficeID = firstNonNil(res.OfficeID, s.OfficeID)
		s.ClientID = firstNonNil(res.ClientID, s.ClientID)
		s.GroupID = firstNonNil(res.GroupID, s.GroupID)
		s.LoanID = firstNonNil(res.LoanID, s.LoanID)
		s.TransactionID = res.TransactionID
		if res.Body != nil {
			s.Result, _ = json.Marshal(res.Body)
		}
	}
	return s
}

func firstNonNil(ids ...*uuid.UUID) *uuid.UUID {
	for _, id := range ids {
		if id != nil {
			return id
		}
	}
	return nil
}

// EventTypeCommandProcessed is published for every successful command
const EventTypeCommandProcessed = "CommandProcessed"

// ProcessedEvent carries a successful command to subscribers such as hooks
type ProcessedEvent struct {
	shared.BaseDomainEvent
	EntityName string     `json:"entity_name"`
	ActionName string     `json:"action_name"`
	Href       string     `json:"href"`
	ResourceID *uuid.UUID `json:"resource_id,omitempty"`
	MakerID    uuid.UUID  `json:"maker_id"`
	Result     []byte     `json:"result,omitempty"`
}

// NewProcessedEvent builds the event from an audit row
func NewProcessedEvent(s *Source) *ProcessedEvent {
	aggID := s.ID
	if s.ResourceID != nil {
		aggID = *s.ResourceID
	}
	return &ProcessedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCommandProcessed, s.EntityName, aggID, s.TenantID),
		EntityName:      s.EntityName,
		ActionName:      s.ActionName,
		Href:            s.Href,
		ResourceID:      s.ResourceID,
		MakerID:         s.MakerID,
		Result:          s.Result,
	}
}
