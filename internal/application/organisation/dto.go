package organisation

import (
	"time"

	"github.com/fincore/backend/internal/domain/organisation"
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Offices
// ---------------------------------------------------------------------------

// CreateOfficeRequest creates an office. Without a parent it creates the
// head office.
type CreateOfficeRequest struct {
	Name        string     `json:"name" binding:"required,min=1,max=100"`
	ParentID    *uuid.UUID `json:"parent_id"`
	OpeningDate string     `json:"opening_date" binding:"required,isodate"`
	ExternalID  string     `json:"external_id" binding:"max=100"`
}

// UpdateOfficeRequest changes an office and optionally moves it
type UpdateOfficeRequest struct {
	Name        string     `json:"name" binding:"required,min=1,max=100"`
	ParentID    *uuid.UUID `json:"parent_id"`
	OpeningDate string     `json:"opening_date" binding:"required,isodate"`
	ExternalID  string     `json:"external_id" binding:"max=100"`
}

// OfficeListFilter holds query parameters of the office list
type OfficeListFilter struct {
	Search   string     `form:"search"`
	UnderID  *uuid.UUID `form:"under"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=200"`
}

// OfficeResponse is an office in API responses
type OfficeResponse struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
	Hierarchy   string     `json:"hierarchy"`
	OpeningDate time.Time  `json:"opening_date"`
	ExternalID  string     `json:"external_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ToOfficeResponse converts a domain office
func ToOfficeResponse(o *organisation.Office) *OfficeResponse {
	return &OfficeResponse{
		ID:          o.ID,
		Name:        o.Name,
		ParentID:    o.ParentID,
		Hierarchy:   o.Hierarchy,
		OpeningDate: o.OpeningDate,
		ExternalID:  o.ExternalID,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

// ---------------------------------------------------------------------------
// Staff
// ---------------------------------------------------------------------------

// StaffRequest creates or updates a staff member
type StaffRequest struct {
	OfficeID      uuid.UUID `json:"office_id" binding:"required"`
	Firstname     string    `json:"firstname" binding:"required,max=50"`
	Lastname      string    `json:"lastname" binding:"required,max=50"`
	IsLoanOfficer bool      `json:"is_loan_officer"`
	Active        *bool     `json:"active"`
	JoiningDate   *string   `json:"joining_date"`
	MobileNo      string    `json:"mobile_no" binding:"max=50"`
	ExternalID    string    `json:"external_id" binding:"max=100"`
}

// StaffListFilter holds query parameters of the staff list
type StaffListFilter struct {
	OfficeID     *uuid.UUID `form:"office_id"`
	LoanOfficers *bool      `form:"loan_officers"`
	Active       *bool      `form:"active"`
	Search       string     `form:"search"`
	Page         int        `form:"page" binding:"omitempty,min=1"`
	PageSize     int        `form:"page_size" binding:"omitempty,min=1,max=200"`
}

// StaffResponse is a staff member in API responses
type StaffResponse struct {
	ID            uuid.UUID  `json:"id"`
	OfficeID      uuid.UUID  `json:"office_id"`
	Firstname     string     `json:"firstname"`
	Lastname      string     `json:"lastname"`
	DisplayName   string     `json:"display_name"`
	IsLoanOfficer bool       `json:"is_loan_officer"`
	Active        bool       `json:"active"`
	JoiningDate   *time.Time `json:"joining_date,omitempty"`
	MobileNo      string     `json:"mobile_no,omitempty"`
	ExternalID    string     `json:"external_id,omitempty"`
}

// ToStaffResponse converts a domain staff member
func ToStaffResponse(s *organisation.Staff) *StaffResponse {
	return &StaffResponse{
		ID:            s.ID,
		OfficeID:      s.OfficeID,
		Firstname:     s.Firstname,
		Lastname:      s.Lastname,
		DisplayName:   s.DisplayName(),
		IsLoanOfficer: s.IsLoanOfficer,
		Active:        s.Active,
		JoiningDate:   s.JoiningDate,
		MobileNo:      s.MobileNo,
		ExternalID:    s.ExternalID,
	}
}

// ---------------------------------------------------------------------------
// Tellers and cashiers
// ---------------------------------------------------------------------------

// TellerRequest creates or updates a teller
type TellerRequest struct {
	OfficeID       uuid.UUID  `json:"office_id" binding:"required"`
	Name           string     `json:"name" binding:"required,min=1,max=50"`
	Description    string     `json:"description" binding:"max=100"`
	StartDate      string     `json:"start_date" binding:"required,isodate"`
	EndDate        *string    `json:"end_date"`
	Status         string     `json:"status" binding:"omitempty,oneof=ACTIVE INACTIVE CLOSED"`
	CashAccountID  *uuid.UUID `json:"cash_account_id"`
	VaultAccountID *uuid.UUID `json:"vault_account_id"`
}

// TellerResponse is a teller in API responses
type TellerResponse struct {
	ID             uuid.UUID  `json:"id"`
	OfficeID       uuid.UUID  `json:"office_id"`
	Name           string     `json:"name"`
	Description    string     `json:"description,omitempty"`
	StartDate      time.Time  `json:"start_date"`
	EndDate        *time.Time `json:"end_date,omitempty"`
	Status         string     `json:"status"`
	CashAccountID  *uuid.UUID `json:"cash_account_id,omitempty"`
	VaultAccountID *uuid.UUID `json:"vault_account_id,omitempty"`
}

// ToTellerResponse converts a domain teller
func ToTellerResponse(t *organisation.Teller) *TellerResponse {
	return &TellerResponse{
		ID:             t.ID,
		OfficeID:       t.OfficeID,
		Name:           t.Name,
		Description:    t.Description,
		StartDate:      t.StartDate,
		EndDate:        t.EndDate,
		Status:         string(t.Status),
		CashAccountID:  t.CashAccountID,
		VaultAccountID: t.VaultAccountID,
	}
}

// CashierRequest allocates a staff member to a teller or changes the allocation
type CashierRequest struct {
	StaffID     uuid.UUID `json:"staff_id" binding:"required"`
	Description string    `json:"description" binding:"max=100"`
	StartDate   string    `json:"start_date" binding:"required,isodate"`
	EndDate     *string   `json:"end_date"`
	FullDay     bool      `json:"is_full_day"`
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
}

func (r CashierRequest) period() (organisation.CashierPeriod, error) {
	start, err := shared.ParseDate(r.StartDate)
	if err != nil {
		return organisation.CashierPeriod{}, err
	}
	end, err := shared.ParseOptionalDate(r.EndDate)
	if err != nil {
		return organisation.CashierPeriod{}, err
	}
	return organisation.CashierPeriod{
		StartDate: start,
		EndDate:   end,
		FullDay:   r.FullDay,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
	}, nil
}

// CashierResponse is a cashier in API responses
type CashierResponse struct {
	ID          uuid.UUID  `json:"id"`
	TellerID    uuid.UUID  `json:"teller_id"`
	StaffID     uuid.UUID  `json:"staff_id"`
	Description string     `json:"description,omitempty"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	FullDay     bool       `json:"is_full_day"`
	StartTime   string     `json:"start_time,omitempty"`
	EndTime     string     `json:"end_time,omitempty"`
}

// ToCashierResponse converts a domain cashier
func ToCashierResponse(c *organisation.Cashier) *CashierResponse {
	return &CashierResponse{
		ID:          c.ID,
		TellerID:    c.TellerID,
		StaffID:     c.StaffID,
		Description: c.Description,
		StartDate:   c.StartDate,
		EndDate:     c.EndDate,
		FullDay:     c.FullDay,
		StartTime:   c.StartTime,
		EndTime:     c.EndTime,
	}
}

// CashTransactionRequest moves cash to or from a cashier
type CashTransactionRequest struct {
	Amount    decimal.Decimal `json:"amount" binding:"required,positive_amount"`
	Currency  string          `json:"currency" binding:"omitempty,len=3"`
	TxnDate   string          `json:"txn_date" binding:"isodate"`
	Note      string          `json:"txn_note" binding:"max=200"`
	CreatedBy *uuid.UUID      `json:"-"`
}

// CashierTransactionResponse is a cash movement in API responses
type CashierTransactionResponse struct {
	ID        uuid.UUID       `json:"id"`
	CashierID uuid.UUID       `json:"cashier_id"`
	Type      string          `json:"txn_type"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	TxnDate   time.Time       `json:"txn_date"`
	Note      string          `json:"txn_note,omitempty"`
	EntryRef  string          `json:"entry_ref,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// ToCashierTransactionResponse converts a domain cash movement
func ToCashierTransactionResponse(t *organisation.CashierTransaction) *CashierTransactionResponse {
	return &CashierTransactionResponse{
		ID:        t.ID,
		CashierID: t.CashierID,
		Type:      string(t.Type),
		Amount:    t.Amount,
		Currency:  t.Currency,
		TxnDate:   t.TxnDate,
		Note:      t.Note,
		EntryRef:  t.EntryRef,
		CreatedAt: t.CreatedAt,
	}
}

// CashierBalanceResponse is the cash position of a cashier in one currency
type CashierBalanceResponse struct {
	Currency  string          `json:"currency"`
	Allocated decimal.Decimal `json:"allocated"`
	Settled   decimal.Decimal `json:"settled"`
	Net       decimal.Decimal `json:"net"`
}

// CashierSummaryResponse lists a cashier's movements and balances
type CashierSummaryResponse struct {
	Cashier      CashierResponse              `json:"cashier"`
	Balances     []CashierBalanceResponse     `json:"balances"`
	Transactions []CashierTransactionResponse `json:"transactions"`
}

// ---------------------------------------------------------------------------
// Holidays
// ---------------------------------------------------------------------------

// HolidayRequest creates or updates a holiday
type HolidayRequest struct {
	Name                    string      `json:"name" binding:"required,min=1,max=100"`
	Description             string      `json:"description" binding:"max=500"`
	FromDate                string      `json:"from_date" binding:"required,isodate"`
	ToDate                  string      `json:"to_date" binding:"required,isodate"`
	RepaymentsRescheduledTo string      `json:"repayments_rescheduled_to" binding:"required"`
	OfficeIDs               []uuid.UUID `json:"office_ids" binding:"required,min=1"`
}

// HolidayListFilter holds query parameters of the holiday list
type HolidayListFilter struct {
	OfficeID *uuid.UUID `form:"office_id"`
	Status   string     `form:"status" binding:"omitempty,oneof=PENDING_FOR_ACTIVATION ACTIVE DELETED"`
	FromDate string     `form:"from_date"`
	ToDate   string     `form:"to_date"`
}

// HolidayResponse is a holiday in API responses
type HolidayResponse struct {
	ID                      uuid.UUID   `json:"id"`
	Name                    string      `json:"name"`
	Description             string      `json:"description,omitempty"`
	FromDate                time.Time   `json:"from_date"`
	ToDate                  time.Time   `json:"to_date"`
	RepaymentsRescheduledTo time.Time   `json:"repayments_rescheduled_to"`
	OfficeIDs               []uuid.UUID `json:"office_ids"`
	Status                  string      `json:"status"`
}

// ToHolidayResponse converts a domain holiday
func ToHolidayResponse(h *organisation.Holiday) *HolidayResponse {
	return &HolidayResponse{
		ID:                      h.ID,
		Name:                    h.Name,
		Description:             h.Description,
		FromDate:                h.FromDate,
		ToDate:                  h.ToDate,
		RepaymentsRescheduledTo: h.RepaymentsRescheduledTo,
		OfficeIDs:               h.OfficeIDs,
		Status:                  string(h.Status),
	}
}

// ---------------------------------------------------------------------------
// Working days
// ---------------------------------------------------------------------------

// WorkingDaysRequest replaces the working week
type WorkingDaysRequest struct {
	Recurrence     string `json:"recurrence" binding:"required"`
	RescheduleType string `json:"repayment_rescheduling_type" binding:"required,oneof=SAME_DAY MOVE_TO_NEXT_WORKING_DAY MOVE_TO_PREVIOUS_WORKING_DAY"`
}

// WorkingDaysResponse is the working week in API responses
type WorkingDaysResponse struct {
	Recurrence     string `json:"recurrence"`
	RescheduleType string `json:"repayment_rescheduling_type"`
}
