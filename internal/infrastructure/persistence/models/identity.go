package models

import (
	"time"

	"github.com/fincore/backend/internal/domain/identity"
	"github.com/google/uuid"
)

// AppUserModel is the persistence model for the AppUser domain entity.
type AppUserModel struct {
	TenantAggregateModel
	Username       string     `gorm:"type:varchar(100);not null"`
	PasswordHash   string     `gorm:"type:varchar(255);not null"`
	Firstname      string     `gorm:"type:varchar(100)"`
	Lastname       string     `gorm:"type:varchar(100)"`
	Email          string     `gorm:"type:varchar(200)"`
	OfficeID       uuid.UUID  `gorm:"type:uuid;not null;index"`
	StaffID        *uuid.UUID `gorm:"type:uuid"`
	Permissions    []string   `gorm:"type:jsonb;serializer:json"`
	Enabled        bool       `gorm:"not null;default:true"`
	LastLoginAt    *time.Time `gorm:"index"`
	FailedAttempts int        `gorm:"not null;default:0"`
	LockedUntil    *time.Time
}

// TableName returns the table name for GORM
func (AppUserModel) TableName() string {
	return "app_users"
}

// ToDomain converts the persistence model to a domain AppUser.
func (m *AppUserModel) ToDomain() *identity.AppUser {
	u := &identity.AppUser{
		Username:       m.Username,
		PasswordHash:   m.PasswordHash,
		Firstname:      m.Firstname,
		Lastname:       m.Lastname,
		Email:          m.Email,
		OfficeID:       m.OfficeID,
		StaffID:        m.StaffID,
		Permissions:    m.Permissions,
		Enabled:        m.Enabled,
		LastLoginAt:    m.LastLoginAt,
		FailedAttempts: m.FailedAttempts,
		LockedUntil:    m.LockedUntil,
	}
	m.loadRoot(&u.TenantAggregateRoot)
	return u
}

// FromDomain populates the persistence model from a domain AppUser.
func (m *AppUserModel) FromDomain(u *identity.AppUser) {
	m.setRoot(u.TenantAggregateRoot)
	m.Username = u.Username
	m.PasswordHash = u.PasswordHash
	m.Firstname = u.Firstname
	m.Lastname = u.Lastname
	m.Email = u.Email
	m.OfficeID = u.OfficeID
	m.StaffID = u.StaffID
	m.Permissions = u.Permissions
	m.Enabled = u.Enabled
	m.LastLoginAt = u.LastLoginAt
	m.FailedAttempts = u.FailedAttempts
	m.LockedUntil = u.LockedUntil
}

// AppUserModelFromDomain creates a new persistence model from a domain AppUser.
func AppUserModelFromDomain(u *identity.AppUser) *AppUserModel {
	m := &AppUserModel{}
	m.FromDomain(u)
	return m
}
