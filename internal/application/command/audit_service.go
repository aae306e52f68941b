package command

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fincore/backend/internal/domain/command"
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AuditQuery filters the command audit trail
type AuditQuery struct {
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
	EntityName string     `form:"entity_name"`
	ActionName string     `form:"action_name"`
	MakerID    *uuid.UUID `form:"maker_id"`
	ResourceID *uuid.UUID `form:"resource_id"`
	From       string     `form:"from"`
	To         string     `form:"to"`
}

// AuditResponse is the API view of one command source
type AuditResponse struct {
	ID            uuid.UUID       `json:"id"`
	EntityName    string          `json:"entity_name"`
	ActionName    string          `json:"action_name"`
	ResourceID    *uuid.UUID      `json:"resource_id,omitempty"`
	OfficeID      *uuid.UUID      `json:"office_id,omitempty"`
	ClientID      *uuid.UUID      `json:"client_id,omitempty"`
	GroupID       *uuid.UUID      `json:"group_id,omitempty"`
	LoanID        *uuid.UUID      `json:"loan_id,omitempty"`
	TransactionID string          `json:"transaction_id,omitempty"`
	Href          string          `json:"href"`
	Payload       json.RawMessage `json:"payload,omitempty"`
	Status        string          `json:"status"`
	Error         string          `json:"error,omitempty"`
	MakerID       uuid.UUID       `json:"maker_id"`
	MadeOn        time.Time       `json:"made_on"`
}

func toAuditResponse(s *command.Source) AuditResponse {
	resp := AuditResponse{
		ID:            s.ID,
		EntityName:    s.EntityName,
		ActionName:    s.ActionName,
		ResourceID:    s.ResourceID,
		OfficeID:      s.OfficeID,
		ClientID:      s.ClientID,
		GroupID:       s.GroupID,
		LoanID:        s.LoanID,
		TransactionID: s.TransactionID,
		Href:          s.Href,
		Status:        string(s.Status),
		Error:         s.Error,
		MakerID:       s.MakerID,
		MadeOn:        s.MadeOn,
	}
	if json.Valid(s.Payload) {
		resp.Payload = json.RawMessage(s.Payload)
	}
	return resp
}

// AuditService reads the command audit trail
type AuditService struct {
	sources command.SourceRepository
}

// NewAuditService creates an AuditService
func NewAuditService(sources command.SourceRepository) *AuditService {
	return &AuditService{sources: sources}
}

// List pages command sources, newest first
func (s *AuditService) List(ctx context.Context, tenantID uuid.UUID, q AuditQuery) ([]AuditResponse, int64, error) {
	filter := command.SourceFilter{
		Filter:     shared.DefaultFilter(),
		EntityName: q.EntityName,
		ActionName: q.ActionName,
		MakerID:    q.MakerID,
		ResourceID: q.ResourceID,
	}
	filter.OrderBy = "made_on"
	if q.Page > 0 {
		filter.Page = q.Page
	}
	if q.PageSize > 0 {
		filter.PageSize = q.PageSize
	}
	from, err := shared.ParseOptionalDate(&q.From)
	if err != nil {
		return nil, 0, err
	}
	to, err := shared.ParseOptionalDate(&q.To)
	if err != nil {
		return nil, 0, err
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, 0, shared.NewDomainError("INVALID_DATE_RANGE", "To date must not be before from date")
	}
	filter.From = from
	if to != nil {
		// inclusive of the whole day
		end := to.AddDate(0, 0, 1)
		filter.To = &end
	}

	sources, total, err := s.sources.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]AuditResponse, 0, len(sources))
	for i := range sources {
		out = append(out, toAuditResponse(&sources[i]))
	}
	return out, total, nil
}

// GetByID returns one audit row
func (s *AuditService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*AuditResponse, error) {
	src, err := s.sources.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := toAuditResponse(src)
	return &resp, nil
}
