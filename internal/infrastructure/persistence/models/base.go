package models

import (
	"time"

	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BaseModel holds the id and timestamps of append-only rows such as
// journal lines
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (m *BaseModel) entity() shared.BaseEntity {
	return shared.BaseEntity{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt}
}

func (m *BaseModel) setEntity(e shared.BaseEntity) {
	m.ID, m.CreatedAt, m.UpdatedAt = e.ID, e.CreatedAt, e.UpdatedAt
}

// TenantAggregateModel holds the columns shared by every tenant-owned
// aggregate table. Version backs optimistic locking in the repositories.
type TenantAggregateModel struct {
	BaseModel
	Version   int        `gorm:"not null;default:1"`
	TenantID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedBy *uuid.UUID `gorm:"type:uuid"`
}

func (m *TenantAggregateModel) setRoot(r shared.TenantAggregateRoot) {
	m.setEntity(r.BaseEntity)
	m.Version = r.Version
	m.TenantID = r.TenantID
	m.CreatedBy = r.CreatedBy
}

func (m *TenantAggregateModel) loadRoot(r *shared.TenantAggregateRoot) {
	r.BaseEntity = m.entity()
	r.Version = m.Version
	r.TenantID = m.TenantID
	r.CreatedBy = m.CreatedBy
}
