package models

import (
	"time"

	"github.com/fincore/backend/internal/domain/organisation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OfficeModel is the persistence model for the Office aggregate root.
type OfficeModel struct {
	TenantAggregateModel
	Name        string     `gorm:"type:varchar(100);not null"`
	ParentID    *uuid.UUID `gorm:"type:uuid;index"`
	Hierarchy   string     `gorm:"type:varchar(1000);not null;index"`
	OpeningDate time.Time  `gorm:"type:date;not null"`
	ExternalID  string     `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (OfficeModel) TableName() string {
	return "offices"
}

// ToDomain converts the persistence model to a domain Office.
func (m *OfficeModel) ToDomain() *organisation.Office {
	o := &organisation.Office{
		Name:        m.Name,
		ParentID:    m.ParentID,
		Hierarchy:   m.Hierarchy,
		OpeningDate: m.OpeningDate,
		ExternalID:  m.ExternalID,
	}
	m.loadRoot(&o.TenantAggregateRoot)
	return o
}

// OfficeModelFromDomain creates a persistence model from a domain Office.
func OfficeModelFromDomain(o *organisation.Office) *OfficeModel {
	m := &OfficeModel{
		Name:        o.Name,
		ParentID:    o.ParentID,
		Hierarchy:   o.Hierarchy,
		OpeningDate: o.OpeningDate,
		ExternalID:  o.ExternalID,
	}
	m.setRoot(o.TenantAggregateRoot)
	return m
}

// StaffModel is the persistence model for the Staff aggregate root.
type StaffModel struct {
	TenantAggregateModel
	OfficeID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	Firstname     string     `gorm:"type:varchar(50);not null"`
	Lastname      string     `gorm:"type:varchar(50);not null"`
	IsLoanOfficer bool       `gorm:"not null;default:false"`
	Active        bool       `gorm:"not null;default:true"`
	JoiningDate   *time.Time `gorm:"type:date"`
	MobileNo      string     `gorm:"type:varchar(50)"`
	ExternalID    string     `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (StaffModel) TableName() string {
	return "staff"
}

// ToDomain converts the persistence model to a domain Staff.
func (m *StaffModel) ToDomain() *organisation.Staff {
	s := &organisation.Staff{
		OfficeID:      m.OfficeID,
		Firstname:     m.Firstname,
		Lastname:      m.Lastname,
		IsLoanOfficer: m.IsLoanOfficer,
		Active:        m.Active,
		JoiningDate:   m.JoiningDate,
		MobileNo:      m.MobileNo,
		ExternalID:    m.ExternalID,
	}
	m.loadRoot(&s.TenantAggregateRoot)
	return s
}

// StaffModelFromDomain creates a persistence model from a domain Staff.
func StaffModelFromDomain(s *organisation.Staff) *StaffModel {
	m := &StaffModel{
		OfficeID:      s.OfficeID,
		Firstname:     s.Firstname,
		Lastname:      s.Lastname,
		IsLoanOfficer: s.IsLoanOfficer,
		Active:        s.Active,
		JoiningDate:   s.JoiningDate,
		MobileNo:      s.MobileNo,
		ExternalID:    s.ExternalID,
	}
	m.setRoot(s.TenantAggregateRoot)
	return m
}

// TellerModel is the persistence model for the Teller aggregate root.
type TellerModel struct {
	TenantAggregateModel
	OfficeID       uuid.UUID                 `gorm:"type:uuid;not null;index"`
	Name           string                    `gorm:"type:varchar(50);not null"`
	Description    string                    `gorm:"type:varchar(100)"`
	StartDate      time.Time                 `gorm:"type:date;not null"`
	EndDate        *time.Time                `gorm:"type:date"`
	Status         organisation.TellerStatus `gorm:"type:varchar(20);not null"`
	CashAccountID  *uuid.UUID                `gorm:"type:uuid"`
	VaultAccountID *uuid.UUID                `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (TellerModel) TableName() string {
	return "tellers"
}

// ToDomain converts the persistence model to a domain Teller.
func (m *TellerModel) ToDomain() *organisation.Teller {
	t := &organisation.Teller{
		OfficeID:       m.OfficeID,
		Name:           m.Name,
		Description:    m.Description,
		StartDate:      m.StartDate,
		EndDate:        m.EndDate,
		Status:         m.Status,
		CashAccountID:  m.CashAccountID,
		VaultAccountID: m.VaultAccountID,
	}
	m.loadRoot(&t.TenantAggregateRoot)
	return t
}

// TellerModelFromDomain creates a persistence model from a domain Teller.
func TellerModelFromDomain(t *organisation.Teller) *TellerModel {
	m := &TellerModel{
		OfficeID:       t.OfficeID,
		Name:           t.Name,
		Description:    t.Description,
		StartDate:      t.StartDate,
		EndDate:        t.EndDate,
		Status:         t.Status,
		CashAccountID:  t.CashAccountID,
		VaultAccountID: t.VaultAccountID,
	}
	m.setRoot(t.TenantAggregateRoot)
	return m
}

// CashierModel is the persistence model for a cashier of a teller.
type CashierModel struct {
	TenantAggregateModel
	TellerID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	StaffID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	Description string     `gorm:"type:varchar(100)"`
	StartDate   time.Time  `gorm:"type:date;not null"`
	EndDate     *time.Time `gorm:"type:date"`
	FullDay     bool       `gorm:"not null;default:true"`
	StartTime   string     `gorm:"type:varchar(5)"`
	EndTime     string     `gorm:"type:varchar(5)"`
}

// TableName returns the table name for GORM
func (CashierModel) TableName() string {
	return "cashiers"
}

// ToDomain converts the persistence model to a domain Cashier.
func (m *CashierModel) ToDomain() *organisation.Cashier {
	c := &organisation.Cashier{
		TellerID:    m.TellerID,
		StaffID:     m.StaffID,
		Description: m.Description,
		StartDate:   m.StartDate,
		EndDate:     m.EndDate,
		FullDay:     m.FullDay,
		StartTime:   m.StartTime,
		EndTime:     m.EndTime,
	}
	m.loadRoot(&c.TenantAggregateRoot)
	return c
}

// CashierModelFromDomain creates a persistence model from a domain Cashier.
func CashierModelFromDomain(c *organisation.Cashier) *CashierModel {
	m := &CashierModel{
		TellerID:    c.TellerID,
		StaffID:     c.StaffID,
		Description: c.Description,
		StartDate:   c.StartDate,
		EndDate:     c.EndDate,
		FullDay:     c.FullDay,
		StartTime:   c.StartTime,
		EndTime:     c.EndTime,
	}
	m.setRoot(c.TenantAggregateRoot)
	return m
}

// CashierTransactionModel is an allocation or settlement of cash.
type CashierTransactionModel struct {
	BaseModel
	TenantID  uuid.UUID                   `gorm:"type:uuid;not null;index"`
	CashierID uuid.UUID                   `gorm:"type:uuid;not null;index"`
	Type      organisation.CashierTxnType `gorm:"type:varchar(20);not null"`
	Amount    decimal.Decimal             `gorm:"type:decimal(19,6);not null"`
	Currency  string                      `gorm:"type:varchar(3);not null"`
	TxnDate   time.Time                   `gorm:"type:date;not null"`
	Note      string                      `gorm:"type:varchar(200)"`
	EntryRef  string                      `gorm:"type:varchar(50)"`
}

// TableName returns the table name for GORM
func (CashierTransactionModel) TableName() string {
	return "cashier_transactions"
}

// ToDomain converts the persistence model to a domain CashierTransaction.
func (m *CashierTransactionModel) ToDomain() organisation.CashierTransaction {
	return organisation.CashierTransaction{
		BaseEntity: m.BaseModel.entity(),
		TenantID:   m.TenantID,
		CashierID:  m.CashierID,
		Type:       m.Type,
		Amount:     m.Amount,
		Currency:   m.Currency,
		TxnDate:    m.TxnDate,
		Note:       m.Note,
		EntryRef:   m.EntryRef,
	}
}

// CashierTransactionModelFromDomain creates a persistence model from a domain cash movement.
func CashierTransactionModelFromDomain(t *organisation.CashierTransaction) *CashierTransactionModel {
	m := &CashierTransactionModel{
		TenantID:  t.TenantID,
		CashierID: t.CashierID,
		Type:      t.Type,
		Amount:    t.Amount,
		Currency:  t.Currency,
		TxnDate:   t.TxnDate,
		Note:      t.Note,
		EntryRef:  t.EntryRef,
	}
	m.setEntity(t.BaseEntity)
	return m
}

// CashierBalanceRow is the scan target of the per-currency cashier sum.
type CashierBalanceRow struct {
	Currency  string
	Allocated decimal.Decimal
	Settled   decimal.Decimal
}

// HolidayModel is the persistence model for the Holiday aggregate root.
// The offices it applies to live in holiday_offices.
type HolidayModel struct {
	TenantAggregateModel
	Name                    string                     `gorm:"type:varchar(100);not null"`
	Description             string                     `gorm:"type:varchar(500)"`
	FromDate                time.Time                  `gorm:"type:date;not null"`
	ToDate                  time.Time                  `gorm:"type:date;not null"`
	RepaymentsRescheduledTo time.Time                  `gorm:"type:date;not null"`
	Status                  organisation.HolidayStatus `gorm:"type:varchar(20);not null;index"`
}

// TableName returns the table name for GORM
func (HolidayModel) TableName() string {
	return "holidays"
}

// ToDomain converts the persistence model to a domain Holiday.
func (m *HolidayModel) ToDomain(officeIDs []uuid.UUID) *organisation.Holiday {
	h := &organisation.Holiday{
		Name:                    m.Name,
		Description:             m.Description,
		FromDate:                m.FromDate,
		ToDate:                  m.ToDate,
		RepaymentsRescheduledTo: m.RepaymentsRescheduledTo,
		OfficeIDs:               officeIDs,
		Status:                  m.Status,
	}
	m.loadRoot(&h.TenantAggregateRoot)
	return h
}

// HolidayModelFromDomain creates a persistence model from a domain Holiday.
func HolidayModelFromDomain(h *organisation.Holiday) *HolidayModel {
	m := &HolidayModel{
		Name:                    h.Name,
		Description:             h.Description,
		FromDate:                h.FromDate,
		ToDate:                  h.ToDate,
		RepaymentsRescheduledTo: h.RepaymentsRescheduledTo,
		Status:                  h.Status,
	}
	m.setRoot(h.TenantAggregateRoot)
	return m
}

// HolidayOfficeModel links a holiday to an office.
type HolidayOfficeModel struct {
	HolidayID uuid.UUID `gorm:"type:uuid;primary_key"`
	OfficeID  uuid.UUID `gorm:"type:uuid;primary_key"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index"`
}

// TableName returns the table name for GORM
func (HolidayOfficeModel) TableName() string {
	return "holiday_offices"
}

// WorkingDaysModel stores the tenant working week.
type WorkingDaysModel struct {
	TenantAggregateModel
	Recurrence     string                      `gorm:"type:varchar(100);not null"`
	RescheduleType organisation.RescheduleType `gorm:"type:varchar(30);not null"`
}

// TableName returns the table name for GORM
func (WorkingDaysModel) TableName() string {
	return "working_days"
}

// ToDomain converts the persistence model to domain WorkingDays and parses
// the recurrence.
func (m *WorkingDaysModel) ToDomain() (*organisation.WorkingDays, error) {
	w := &organisation.WorkingDays{
		Recurrence:     m.Recurrence,
		RescheduleType: m.RescheduleType,
	}
	m.loadRoot(&w.TenantAggregateRoot)
	if err := w.Load(); err != nil {
		return nil, err
	}
	return w, nil
}

// WorkingDaysModelFromDomain creates a persistence model from domain WorkingDays.
func WorkingDaysModelFromDomain(w *organisation.WorkingDays) *WorkingDaysModel {
	m := &WorkingDaysModel{
		Recurrence:     w.Recurrence,
		RescheduleType: w.RescheduleType,
	}
	m.setRoot(w.TenantAggregateRoot)
	return m
}
