package models

import (
	"time"

	"github.com/fincore/backend/internal/domain/command"
	"github.com/google/uuid"
)

// CommandSourceModel is the audit row of a processed command.
// idempotency_key is unique per tenant among PROCESSED rows only.
type CommandSourceModel struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey"`
	TenantID       uuid.UUID      `gorm:"type:uuid;not null;index"`
	EntityName     string         `gorm:"type:varchar(50);not null;index"`
	ActionName     string         `gorm:"type:varchar(50);not null"`
	ResourceID     *uuid.UUID     `gorm:"type:uuid;index"`
	OfficeID       *uuid.UUID     `gorm:"type:uuid"`
	ClientID       *uuid.UUID     `gorm:"type:uuid"`
	GroupID        *uuid.UUID     `gorm:"type:uuid"`
	LoanID         *uuid.UUID     `gorm:"type:uuid"`
	TransactionID  string         `gorm:"type:varchar(50)"`
	Href           string         `gorm:"type:varchar(200)"`
	Payload        []byte         `gorm:"type:jsonb"`
	Result         []byte         `gorm:"type:jsonb"`
	Status         command.Status `gorm:"type:varchar(20);not null"`
	Error          string         `gorm:"type:text"`
	MakerID        uuid.UUID      `gorm:"type:uuid;not null;index"`
	MadeOn         time.Time      `gorm:"not null;index"`
	IdempotencyKey *string        `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (CommandSourceModel) TableName() string {
	return "command_sources"
}

// ToDomain converts the persistence model to a domain Source.
func (m *CommandSourceModel) ToDomain() *command.Source {
	s := &command.Source{
		ID:            m.ID,
		TenantID:      m.TenantID,
		EntityName:    m.EntityName,
		ActionName:    m.ActionName,
		ResourceID:    m.ResourceID,
		OfficeID:      m.OfficeID,
		ClientID:      m.ClientID,
		GroupID:       m.GroupID,
		LoanID:        m.LoanID,
		TransactionID: m.TransactionID,
		Href:          m.Href,
		Payload:       m.Payload,
		Result:        m.Result,
		Status:        m.Status,
		Error:         m.Error,
		MakerID:       m.MakerID,
		MadeOn:        m.MadeOn,
	}
	if m.IdempotencyKey != nil {
		s.IdempotencyKey = *m.IdempotencyKey
	}
	return s
}

// CommandSourceModelFromDomain creates a persistence model from a domain Source.
// An empty idempotency key is stored as NULL.
func CommandSourceModelFromDomain(s *command.Source) *CommandSourceModel {
	m := &CommandSourceModel{
		ID:            s.ID,
		TenantID:      s.TenantID,
		EntityName:    s.EntityName,
		ActionName:    s.ActionName,
		ResourceID:    s.ResourceID,
		OfficeID:      s.OfficeID,
		ClientID:      s.ClientID,
		GroupID:       s.GroupID,
		LoanID:        s.LoanID,
		TransactionID: s.TransactionID,
		Href:          s.Href,
		Payload:       s.Payload,
		Result:        s.Result,
		Status:        s.Status,
		Error:         s.Error,
		MakerID:       s.MakerID,
		MadeOn:        s.MadeOn,
	}
	if s.IdempotencyKey != "" {
		key := s.IdempotencyKey
		m.IdempotencyKey = &key
	}
	return m
}
