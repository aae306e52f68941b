package organisation

import (
	"strings"
	"time"

	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TellerStatus is the lifecycle state of a teller
type TellerStatus string

const (
	TellerStatusActive   TellerStatus = "ACTIVE"
	TellerStatusInactive TellerStatus = "INACTIVE"
	TellerStatusClosed   TellerStatus = "CLOSED"
)

// IsValid checks the status value
func (s TellerStatus) IsValid() bool {
	switch s {
	case TellerStatusActive, TellerStatusInactive, TellerStatusClosed:
		return true
	}
	return false
}

// Teller is a cash point in an office. Cashiers are staff allocated to it
// for a period of time.
type Teller struct {
	shared.TenantAggregateRoot
	OfficeID       uuid.UUID
	Name           string
	Description    string
	StartDate      time.Time
	EndDate        *time.Time
	Status         TellerStatus
	CashAccountID  *uuid.UUID // GL account for teller cash
	VaultAccountID *uuid.UUID // GL account cash is drawn from
}

// NewTeller creates a teller
func NewTeller(tenantID, officeID uuid.UUID, name, description string, startDate time.Time, endDate *time.Time, status TellerStatus) (*Teller, error) {
	t := &Teller{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		OfficeID:            officeID,
	}
	if err := t.Update(name, description, startDate, endDate, status); err != nil {
		return nil, err
	}
	t.Version = 1
	return t, nil
}

// Update replaces the mutable fields of the teller
func (t *Teller) Update(name, description string, startDate time.Time, endDate *time.Time, status TellerStatus) error {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 50 {
		return shared.NewDomainError("INVALID_NAME", "Teller name must be 1 to 50 characters")
	}
	if status == "" {
		status = TellerStatusActive
	}
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Invalid teller status")
	}
	if endDate != nil && shared.Day(*endDate).Before(shared.Day(startDate)) {
		return shared.NewDomainError("TELLER_END_BEFORE_START", "Teller end date cannot be before start date")
	}
	t.Name = name
	t.Description = description
	t.StartDate = shared.Day(startDate)
	if endDate != nil {
		d := shared.Day(*endDate)
		endDate = &d
	}
	t.EndDate = endDate
	t.Status = status
	t.Touch()
	t.IncrementVersion()
	return nil
}

// MapAccounts sets the GL accounts used when cash moves through the teller.
// Both must be set or both cleared.
func (t *Teller) MapAccounts(cashAccountID, vaultAccountID *uuid.UUID) error {
	if (cashAccountID == nil) != (vaultAccountID == nil) {
		return shared.NewDomainError("TELLER_ACCOUNTS_INCOMPLETE", "Cash and vault accounts must be mapped together")
	}
	t.CashAccountID = cashAccountID
	t.VaultAccountID = vaultAccountID
	t.Touch()
	return nil
}

// PostsToLedger reports whether cashier movements generate journal entries
func (t *Teller) PostsToLedger() bool {
	return t.CashAccountID != nil && t.VaultAccountID != nil
}

// Covers reports whether [from, to] fits inside the teller's active period
func (t *Teller) Covers(from time.Time, to *time.Time) bool {
	if shared.Day(from).Before(t.StartDate) {
		return false
	}
	if t.EndDate == nil {
		return true
	}
	return to != nil && !shared.Day(*to).After(*t.EndDate)
}

// Cashier is a staff member allocated to a teller
type Cashier struct {
	shared.TenantAggregateRoot
	TellerID    uuid.UUID
	StaffID     uuid.UUID
	Description string
	StartDate   time.Time
	EndDate     *time.Time
	FullDay     bool
	StartTime   string // HH:MM, only when not full day
	EndTime     string
}

// CashierPeriod describes the allocation window of a cashier
type CashierPeriod struct {
	StartDate time.Time
	EndDate   *time.Time
	FullDay   bool
	StartTime string
	EndTime   string
}

// AllocateCashier validates and creates a cashier allocation. staffOffice is
// the office of the staff member and tellerOffice the teller's office; the
// staff must belong to the teller's office or one of its ancestors. existing
// lists the teller's current cashiers for overlap checks.
func AllocateCashier(teller *Teller, tellerOffice, staffOffice *Office, staff *Staff, description string, period CashierPeriod, existing []Cashier) (*Cashier, error) {
	if teller.Status != TellerStatusActive {
		return nil, shared.NewDomainError("TELLER_NOT_ACTIVE", "Cashiers can only be allocated to an active teller")
	}
	if !staff.Active {
		return nil, shared.NewDomainError("STAFF_NOT_ACTIVE", "Staff member is not active")
	}
	if !staffOffice.IsAncestorOf(tellerOffice) {
		return nil, shared.NewDomainError("CASHIER_OFFICE_MISMATCH", "Staff must belong to the teller's office hierarchy")
	}
	c := &Cashier{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(teller.TenantID),
		TellerID:            teller.ID,
		StaffID:             staff.ID,
	}
	if err := c.Reschedule(teller, description, period, existing); err != nil {
		return nil, err
	}
	c.Version = 1
	return c, nil
}

// Reschedule updates the allocation period
func (c *Cashier) Reschedule(teller *Teller, description string, period CashierPeriod, existing []Cashier) error {
	if period.EndDate != nil && shared.Day(*period.EndDate).Before(shared.Day(period.StartDate)) {
		return shared.NewDomainError("CASHIER_END_BEFORE_START", "Cashier end date cannot be before start date")
	}
	if !teller.Covers(period.StartDate, period.EndDate) {
		return shared.NewDomainError("CASHIER_OUTSIDE_TELLER_PERIOD", "Cashier period must fall within the teller's period")
	}
	if !period.FullDay {
		if !validClock(period.StartTime) || !validClock(period.EndTime) || period.StartTime >= period.EndTime {
			return shared.NewDomainError("CASHIER_INVALID_HOURS", "Start and end time must be HH:MM with start before end")
		}
	}
	for _, other := range existing {
		if other.ID == c.ID || other.StaffID != c.StaffID {
			continue
		}
		if shared.DateRangesOverlap(period.StartDate, period.EndDate, other.StartDate, other.EndDate) {
			return shared.NewDomainError("CASHIER_ALREADY_ALLOCATED", "Staff is already allocated to this teller for an overlapping period")
		}
	}
	c.Description = description
	c.StartDate = shared.Day(period.StartDate)
	c.EndDate = period.EndDate
	c.FullDay = period.FullDay
	if period.FullDay {
		c.StartTime, c.EndTime = "", ""
	} else {
		c.StartTime, c.EndTime = period.StartTime, period.EndTime
	}
	c.Touch()
	c.IncrementVersion()
	return nil
}

func validClock(s string) bool {
	_, err := time.Parse("15:04", s)
	return err == nil
}

// CashierTxnType distinguishes cash moving to or from a cashier
type CashierTxnType string

const (
	CashierTxnAllocate CashierTxnType = "ALLOCATE"
	CashierTxnSettle   CashierTxnType = "SETTLE"
)

// CashierTransaction is a cash movement between the vault and a cashier
type CashierTransaction struct {
	shared.BaseEntity
	TenantID  uuid.UUID
	CashierID uuid.UUID
	Type      CashierTxnType
	Amount    decimal.Decimal
	Currency  string
	TxnDate   time.Time
	Note      string
	EntryRef  string // journal transaction id when posted to the ledger
}

// CashierBalance summarises the cash held by a cashier in one currency
type CashierBalance struct {
	Currency  string
	Allocated decimal.Decimal
	Settled   decimal.Decimal
}

// Net returns cash currently held
func (b CashierBalance) Net() decimal.Decimal {
	return b.Allocated.Sub(b.Settled)
}

// NewCashierTransaction validates a cash movement. balance is the cashier's
// current position in the same currency; settlements cannot exceed it.
func NewCashierTransaction(c *Cashier, txnType CashierTxnType, amount decimal.Decimal, currency string, date time.Time, note string, balance CashierBalance) (*CashierTransaction, error) {
	if txnType != CashierTxnAllocate && txnType != CashierTxnSettle {
		return nil, shared.NewDomainError("INVALID_TXN_TYPE", "Transaction type must be ALLOCATE or SETTLE")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}
	if currency == "" {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Currency is required")
	}
	if shared.IsAfterToday(date) {
		return nil, shared.NewDomainError("TXN_DATE_IN_FUTURE", "Transaction date cannot be in the future")
	}
	d := shared.Day(date)
	if d.Before(c.StartDate) || (c.EndDate != nil && d.After(shared.Day(*c.EndDate))) {
		return nil, shared.NewDomainError("CASHIER_NOT_ON_DUTY", "Transaction date is outside the cashier's allocation")
	}
	if txnType == CashierTxnSettle && amount.GreaterThan(balance.Net()) {
		return nil, shared.NewDomainError("INSUFFICIENT_BALANCE", "Settlement exceeds cash held by the cashier")
	}
	return &CashierTransaction{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   c.TenantID,
		CashierID:  c.ID,
		Type:       txnType,
		Amount:     amount,
		Currency:   currency,
		TxnDate:    d,
		Note:       note,
	}, nil
}
