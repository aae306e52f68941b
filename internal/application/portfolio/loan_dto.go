package portfolio

import (
	"time"

	"github.com/fincore/backend/internal/domain/portfolio"
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Loan products
// ---------------------------------------------------------------------------

// LoanTermsRequest holds schedule terms. On a product they are the defaults;
// on a loan zero values fall back to the product.
type LoanTermsRequest struct {
	Currency              string           `json:"currency" binding:"omitempty,len=3"`
	Digits                *int32           `json:"digits_after_decimal" binding:"omitempty,min=0,max=6"`
	Principal             decimal.Decimal  `json:"principal"`
	NumberOfRepayments    int              `json:"number_of_repayments" binding:"omitempty,min=1"`
	RepaymentEvery        int              `json:"repayment_every" binding:"omitempty,min=1"`
	RepaymentFrequency    string           `json:"repayment_frequency" binding:"omitempty,oneof=DAYS WEEKS MONTHS YEARS"`
	InterestRatePerPeriod *decimal.Decimal `json:"interest_rate_per_period"`
	InterestPeriod        string           `json:"interest_period" binding:"omitempty,oneof=PER_MONTH PER_YEAR"`
	Amortization          string           `json:"amortization" binding:"omitempty,oneof=EQUAL_INSTALLMENTS EQUAL_PRINCIPAL"`
	InterestMethod        string           `json:"interest_type" binding:"omitempty,oneof=DECLINING_BALANCE FLAT"`
	InterestCalculation   string           `json:"interest_calculation_period" binding:"omitempty,oneof=DAILY SAME_AS_REPAYMENT"`
	GraceOnPrincipal      *int             `json:"grace_on_principal" binding:"omitempty,min=0"`
	GraceOnInterest       *int             `json:"grace_on_interest" binding:"omitempty,min=0"`
}

// over returns base with every field set in r replacing it
func (r LoanTermsRequest) over(base portfolio.LoanTerms) portfolio.LoanTerms {
	t := base
	if r.Currency != "" {
		t.Currency = r.Currency
	}
	if r.Digits != nil {
		t.Digits = *r.Digits
	}
	if !r.Principal.IsZero() {
		t.Principal = r.Principal
	}
	if r.NumberOfRepayments != 0 {
		t.NumberOfRepayments = r.NumberOfRepayments
	}
	if r.RepaymentEvery != 0 {
		t.RepaymentEvery = r.RepaymentEvery
	}
	if r.RepaymentFrequency != "" {
		t.RepaymentFrequency = portfolio.PeriodFrequency(r.RepaymentFrequency)
	}
	if r.InterestRatePerPeriod != nil {
		t.InterestRatePerPeriod = *r.InterestRatePerPeriod
	}
	if r.InterestPeriod != "" {
		t.InterestPeriod = portfolio.InterestPeriod(r.InterestPeriod)
	}
	if r.Amortization != "" {
		t.Amortization = portfolio.AmortizationMethod(r.Amortization)
	}
	if r.InterestMethod != "" {
		t.InterestMethod = portfolio.InterestMethod(r.InterestMethod)
	}
	if r.InterestCalculation != "" {
		t.InterestCalculation = portfolio.InterestCalculationPeriod(r.InterestCalculation)
	}
	if r.GraceOnPrincipal != nil {
		t.GraceOnPrincipal = *r.GraceOnPrincipal
	}
	if r.GraceOnInterest != nil {
		t.GraceOnInterest = *r.GraceOnInterest
	}
	return t
}

// LoanTermsResponse is a set of terms in API responses
type LoanTermsResponse struct {
	Currency              string          `json:"currency"`
	Digits                int32           `json:"digits_after_decimal"`
	Principal             decimal.Decimal `json:"principal"`
	NumberOfRepayments    int             `json:"number_of_repayments"`
	RepaymentEvery        int             `json:"repayment_every"`
	RepaymentFrequency    string          `json:"repayment_frequency"`
	InterestRatePerPeriod decimal.Decimal `json:"interest_rate_per_period"`
	InterestPeriod        string          `json:"interest_period"`
	Amortization          string          `json:"amortization"`
	InterestMethod        string          `json:"interest_type"`
	InterestCalculation   string          `json:"interest_calculation_period"`
	GraceOnPrincipal      int             `json:"grace_on_principal"`
	GraceOnInterest       int             `json:"grace_on_interest"`
}

func toTermsResponse(t portfolio.LoanTerms) LoanTermsResponse {
	return LoanTermsResponse{
		Currency:              t.Currency,
		Digits:                t.Digits,
		Principal:             t.Principal,
		NumberOfRepayments:    t.NumberOfRepayments,
		RepaymentEvery:        t.RepaymentEvery,
		RepaymentFrequency:    string(t.RepaymentFrequency),
		InterestRatePerPeriod: t.InterestRatePerPeriod,
		InterestPeriod:        string(t.InterestPeriod),
		Amortization:          string(t.Amortization),
		InterestMethod:        string(t.InterestMethod),
		InterestCalculation:   string(t.InterestCalculation),
		GraceOnPrincipal:      t.GraceOnPrincipal,
		GraceOnInterest:       t.GraceOnInterest,
	}
}

// ProductAccountsRequest maps a product to GL accounts
type ProductAccountsRequest struct {
	FundSource         *uuid.UUID `json:"fund_source_account_id"`
	LoanPortfolio      *uuid.UUID `json:"loan_portfolio_account_id"`
	InterestReceivable *uuid.UUID `json:"interest_receivable_account_id"`
	InterestIncome     *uuid.UUID `json:"interest_income_account_id"`
	WriteOff           *uuid.UUID `json:"write_off_account_id"`
	Overpayment        *uuid.UUID `json:"overpayment_account_id"`
}

// LoanProductRequest creates or updates a loan product
type LoanProductRequest struct {
	Name            string                 `json:"name" binding:"required,max=100"`
	ShortName       string                 `json:"short_name" binding:"required,max=4"`
	Description     string                 `json:"description" binding:"max=500"`
	MinPrincipal    decimal.Decimal        `json:"min_principal"`
	MaxPrincipal    decimal.Decimal        `json:"max_principal"`
	Defaults        LoanTermsRequest       `json:"terms" binding:"required"`
	MultiDisburse   bool                   `json:"multi_disburse"`
	MaxTrancheCount int                    `json:"max_tranche_count" binding:"omitempty,min=1"`
	AccountingType  string                 `json:"accounting_type" binding:"omitempty,oneof=NONE CASH ACCRUAL_PERIODIC"`
	Accounts        ProductAccountsRequest `json:"accounts"`
}

func (r LoanProductRequest) input() portfolio.LoanProductInput {
	a := r.Accounts
	return portfolio.LoanProductInput{
		Name:            r.Name,
		ShortName:       r.ShortName,
		Description:     r.Description,
		MinPrincipal:    r.MinPrincipal,
		MaxPrincipal:    r.MaxPrincipal,
		Defaults:        r.Defaults.over(portfolio.LoanTerms{}),
		MultiDisburse:   r.MultiDisburse,
		MaxTrancheCount: r.MaxTrancheCount,
		AccountingType:  portfolio.AccountingType(r.AccountingType),
		Accounts: portfolio.ProductAccounts{
			FundSource:         a.FundSource,
			LoanPortfolio:      a.LoanPortfolio,
			InterestReceivable: a.InterestReceivable,
			InterestIncome:     a.InterestIncome,
			WriteOff:           a.WriteOff,
			Overpayment:        a.Overpayment,
		},
	}
}

// LoanProductResponse is a loan product in API responses
type LoanProductResponse struct {
	ID              uuid.UUID              `json:"id"`
	Name            string                 `json:"name"`
	ShortName       string                 `json:"short_name"`
	Description     string                 `json:"description,omitempty"`
	MinPrincipal    decimal.Decimal        `json:"min_principal"`
	MaxPrincipal    decimal.Decimal        `json:"max_principal"`
	Defaults        LoanTermsResponse      `json:"terms"`
	MultiDisburse   bool                   `json:"multi_disburse"`
	MaxTrancheCount int                    `json:"max_tranche_count,omitempty"`
	AccountingType  string                 `json:"accounting_type"`
	Accounts        ProductAccountsRequest `json:"accounts"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// ToLoanProductResponse converts a domain product
func ToLoanProductResponse(p *portfolio.LoanProduct) *LoanProductResponse {
	return &LoanProductResponse{
		ID:              p.ID,
		Name:            p.Name,
		ShortName:       p.ShortName,
		Description:     p.Description,
		MinPrincipal:    p.MinPrincipal,
		MaxPrincipal:    p.MaxPrincipal,
		Defaults:        toTermsResponse(p.Defaults),
		MultiDisburse:   p.MultiDisburse,
		MaxTrancheCount: p.MaxTrancheCount,
		AccountingType:  string(p.AccountingType),
		Accounts: ProductAccountsRequest{
			FundSource:         p.Accounts.FundSource,
			LoanPortfolio:      p.Accounts.LoanPortfolio,
			InterestReceivable: p.Accounts.InterestReceivable,
			InterestIncome:     p.Accounts.InterestIncome,
			WriteOff:           p.Accounts.WriteOff,
			Overpayment:        p.Accounts.Overpayment,
		},
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// ---------------------------------------------------------------------------
// Loans
// ---------------------------------------------------------------------------

// TrancheRequest is one planned disbursement
type TrancheRequest struct {
	ExpectedDate string          `json:"expected_disbursement_date" binding:"required,isodate"`
	Principal    decimal.Decimal `json:"principal" binding:"required,positive_amount"`
}

// LoanApplicationRequest submits, modifies or previews a loan
type LoanApplicationRequest struct {
	ProductID                uuid.UUID        `json:"product_id" binding:"required"`
	ClientID                 *uuid.UUID       `json:"client_id"`
	GroupID                  *uuid.UUID       `json:"group_id"`
	LoanOfficerID            *uuid.UUID       `json:"loan_officer_id"`
	ExternalID               string           `json:"external_id" binding:"max=100"`
	Terms                    LoanTermsRequest `json:"terms"`
	SubmittedOn              string           `json:"submitted_on_date"`
	ExpectedDisbursementDate string           `json:"expected_disbursement_date" binding:"required,isodate"`
	RepaymentsStartingFrom   string           `json:"repayments_starting_from_date"`
	SyncWithMeeting          *uuid.UUID       `json:"calendar_id"`
	Tranches                 []TrancheRequest `json:"disbursement_data" binding:"dive"`
}

// LoanActionRequest carries the date and optional note of a lifecycle step
type LoanActionRequest struct {
	Date              string          `json:"date" binding:"isodate"`
	ApprovedPrincipal decimal.Decimal `json:"approved_principal"`
	Note              string          `json:"note" binding:"max=500"`
	CreatedBy         *uuid.UUID      `json:"-"`
}

// LoanTransactionRequest records money moving on a loan
type LoanTransactionRequest struct {
	Date          string          `json:"transaction_date" binding:"isodate"`
	Amount        decimal.Decimal `json:"transaction_amount" binding:"required,positive_amount"`
	ReceiptNumber string          `json:"receipt_number" binding:"max=50"`
	Note          string          `json:"note" binding:"max=500"`
	CreatedBy     *uuid.UUID      `json:"-"`
}

// LoanListFilter holds query parameters of the loan list
type LoanListFilter struct {
	Search    string     `form:"search"`
	OfficeID  *uuid.UUID `form:"office_id"`
	ClientID  *uuid.UUID `form:"client_id"`
	GroupID   *uuid.UUID `form:"group_id"`
	ProductID *uuid.UUID `form:"product_id"`
	Status    string     `form:"status"`
	Page      int        `form:"page" binding:"omitempty,min=1"`
	PageSize  int        `form:"page_size" binding:"omitempty,min=1,max=200"`
}

// InstallmentResponse is one schedule period in API responses
type InstallmentResponse struct {
	Number           int             `json:"period"`
	FromDate         time.Time       `json:"from_date"`
	DueDate          time.Time       `json:"due_date"`
	Principal        decimal.Decimal `json:"principal_due"`
	Interest         decimal.Decimal `json:"interest_due"`
	TotalDue         decimal.Decimal `json:"total_due"`
	PrincipalPaid    decimal.Decimal `json:"principal_paid"`
	InterestPaid     decimal.Decimal `json:"interest_paid"`
	InterestWaived   decimal.Decimal `json:"interest_waived"`
	InterestAccrued  decimal.Decimal `json:"interest_accrued"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
	BalanceAfter     decimal.Decimal `json:"principal_loan_balance_outstanding"`
	CompletedOn      *time.Time      `json:"obligations_met_on_date,omitempty"`
}

// ScheduleResponse is a repayment schedule in API responses
type ScheduleResponse struct {
	Currency       string                `json:"currency"`
	Periods        []InstallmentResponse `json:"periods"`
	TotalPrincipal decimal.Decimal       `json:"total_principal_expected"`
	TotalInterest  decimal.Decimal       `json:"total_interest_charged"`
	TotalRepayment decimal.Decimal       `json:"total_repayment_expected"`
}

func toScheduleResponse(currency string, installments []portfolio.Installment) *ScheduleResponse {
	resp := &ScheduleResponse{Currency: currency, Periods: make([]InstallmentResponse, 0, len(installments))}
	for i := range installments {
		inst := &installments[i]
		resp.Periods = append(resp.Periods, InstallmentResponse{
			Number:           inst.Number,
			FromDate:         inst.FromDate,
			DueDate:          inst.DueDate,
			Principal:        inst.Principal,
			Interest:         inst.Interest,
			TotalDue:         inst.TotalDue(),
			PrincipalPaid:    inst.PrincipalPaid,
			InterestPaid:     inst.InterestPaid,
			InterestWaived:   inst.InterestWaived,
			InterestAccrued:  inst.InterestAccrued,
			TotalOutstanding: inst.TotalOutstanding(),
			BalanceAfter:     inst.BalanceAfter,
			CompletedOn:      inst.CompletedOn,
		})
		resp.TotalPrincipal = resp.TotalPrincipal.Add(inst.Principal)
		resp.TotalInterest = resp.TotalInterest.Add(inst.Interest)
	}
	resp.TotalRepayment = resp.TotalPrincipal.Add(resp.TotalInterest)
	return resp
}

// LoanTransactionResponse is a loan transaction in API responses
type LoanTransactionResponse struct {
	ID                   uuid.UUID       `json:"id"`
	Type                 string          `json:"type"`
	Date                 time.Time       `json:"date"`
	Amount               decimal.Decimal `json:"amount"`
	PrincipalPortion     decimal.Decimal `json:"principal_portion"`
	InterestPortion      decimal.Decimal `json:"interest_portion"`
	OverpaymentPortion   decimal.Decimal `json:"overpayment_portion"`
	OutstandingAfter     decimal.Decimal `json:"outstanding_loan_balance"`
	ReceiptNumber        string          `json:"receipt_number,omitempty"`
	Note                 string          `json:"note,omitempty"`
	Reversed             bool            `json:"reversed"`
	JournalTransactionID string          `json:"journal_transaction_id,omitempty"`
}

// ToLoanTransactionResponse converts a loan transaction
func ToLoanTransactionResponse(t *portfolio.LoanTransaction) *LoanTransactionResponse {
	return &LoanTransactionResponse{
		ID:                   t.ID,
		Type:                 string(t.Type),
		Date:                 t.TransactionDate,
		Amount:               t.Amount,
		PrincipalPortion:     t.PrincipalPortion,
		InterestPortion:      t.InterestPortion,
		OverpaymentPortion:   t.OverpaymentPortion,
		OutstandingAfter:     t.OutstandingAfter,
		ReceiptNumber:        t.ReceiptNumber,
		Note:                 t.Note,
		Reversed:             t.Reversed,
		JournalTransactionID: t.JournalTransactionID,
	}
}

// TrancheResponse is a disbursement in API responses
type TrancheResponse struct {
	ExpectedDate time.Time       `json:"expected_disbursement_date"`
	Principal    decimal.Decimal `json:"principal"`
	ActualDate   *time.Time      `json:"actual_disbursement_date,omitempty"`
}

// LoanSummary holds the running balances of a loan
type LoanSummary struct {
	PrincipalOutstanding decimal.Decimal `json:"principal_outstanding"`
	InterestOutstanding  decimal.Decimal `json:"interest_outstanding"`
	TotalOutstanding     decimal.Decimal `json:"total_outstanding"`
	OverpaidAmount       decimal.Decimal `json:"total_overpaid"`
	DaysOverdue          int             `json:"days_in_arrears"`
}

// LoanResponse is a loan in API responses
type LoanResponse struct {
	ID                       uuid.UUID                 `json:"id"`
	AccountNo                string                    `json:"account_no"`
	ClientID                 *uuid.UUID                `json:"client_id,omitempty"`
	GroupID                  *uuid.UUID                `json:"group_id,omitempty"`
	ProductID                uuid.UUID                 `json:"product_id"`
	OfficeID                 uuid.UUID                 `json:"office_id"`
	LoanOfficerID            *uuid.UUID                `json:"loan_officer_id,omitempty"`
	CalendarID               *uuid.UUID                `json:"calendar_id,omitempty"`
	ExternalID               string                    `json:"external_id,omitempty"`
	Status                   string                    `json:"status"`
	Terms                    LoanTermsResponse         `json:"terms"`
	ApprovedPrincipal        decimal.Decimal           `json:"approved_principal"`
	SubmittedOn              time.Time                 `json:"submitted_on_date"`
	ExpectedDisbursementDate time.Time                 `json:"expected_disbursement_date"`
	RepaymentsStartingFrom   *time.Time                `json:"repayments_starting_from_date,omitempty"`
	ApprovedOn               *time.Time                `json:"approved_on_date,omitempty"`
	DisbursedOn              *time.Time                `json:"disbursed_on_date,omitempty"`
	ClosedOn                 *time.Time                `json:"closed_on_date,omitempty"`
	AccruedTill              *time.Time                `json:"accrued_till,omitempty"`
	MaturityDate             time.Time                 `json:"expected_maturity_date"`
	Summary                  LoanSummary               `json:"summary"`
	Tranches                 []TrancheResponse         `json:"disbursement_details,omitempty"`
	Schedule                 *ScheduleResponse         `json:"repayment_schedule,omitempty"`
	Transactions             []LoanTransactionResponse `json:"transactions,omitempty"`
}

// ToLoanResponse converts a loan. full includes schedule and transactions.
func ToLoanResponse(l *portfolio.Loan, full bool) *LoanResponse {
	principal, interest := l.Outstanding()
	resp := &LoanResponse{
		ID:                       l.ID,
		AccountNo:                l.AccountNo,
		ClientID:                 l.ClientID,
		GroupID:                  l.GroupID,
		ProductID:                l.ProductID,
		OfficeID:                 l.OfficeID,
		LoanOfficerID:            l.LoanOfficerID,
		CalendarID:               l.CalendarID,
		ExternalID:               l.ExternalID,
		Status:                   string(l.Status),
		Terms:                    toTermsResponse(l.Terms),
		ApprovedPrincipal:        l.ApprovedPrincipal,
		SubmittedOn:              l.SubmittedOn,
		ExpectedDisbursementDate: l.ExpectedDisbursementDate,
		RepaymentsStartingFrom:   l.FirstRepaymentOn,
		ApprovedOn:               l.ApprovedOn,
		DisbursedOn:              l.DisbursedOn,
		ClosedOn:                 l.ClosedOn,
		AccruedTill:              l.AccruedTill,
		MaturityDate:             l.MaturityDate(),
		Summary: LoanSummary{
			PrincipalOutstanding: principal,
			InterestOutstanding:  interest,
			TotalOutstanding:     principal.Add(interest),
			OverpaidAmount:       l.OverpaidAmount,
			DaysOverdue:          l.DaysOverdue(shared.Today()),
		},
	}
	for _, d := range l.Disbursements {
		resp.Tranches = append(resp.Tranches, TrancheResponse{ExpectedDate: d.ExpectedDate, Principal: d.Principal, ActualDate: d.ActualDate})
	}
	if full {
		resp.Schedule = toScheduleResponse(l.Terms.Currency, l.Installments)
		resp.Transactions = make([]LoanTransactionResponse, 0, len(l.Transactions))
		for i := range l.Transactions {
			resp.Transactions = append(resp.Transactions, *ToLoanTransactionResponse(&l.Transactions[i]))
		}
	}
	return resp
}

// ---------------------------------------------------------------------------
// Collection sheets
// ---------------------------------------------------------------------------

// CollectionSheetRequest selects the entity and meeting date of a sheet
type CollectionSheetRequest struct {
	EntityType  string    `json:"entity_type" form:"entity_type" binding:"required,oneof=CENTER GROUP"`
	EntityID    uuid.UUID `json:"entity_id" form:"entity_id" binding:"required"`
	MeetingDate string    `json:"meeting_date" form:"meeting_date" binding:"required,isodate"`
}

// CollectedAmount is one repayment collected on a sheet
type CollectedAmount struct {
	LoanID        uuid.UUID       `json:"loan_id" binding:"required"`
	Amount        decimal.Decimal `json:"transaction_amount"`
	ReceiptNumber string          `json:"receipt_number" binding:"max=50"`
}

// SaveCollectionSheetRequest records a meeting with its attendance and repayments
type SaveCollectionSheetRequest struct {
	CollectionSheetRequest
	Attendance []AttendanceRow   `json:"client_attendance" binding:"dive"`
	Repayments []CollectedAmount `json:"bulk_repayment_transactions" binding:"dive"`
	Note       string            `json:"note" binding:"max=500"`
	CreatedBy  *uuid.UUID        `json:"-"`
}

// SheetLoanResponse is one loan line of a sheet
type SheetLoanResponse struct {
	LoanID       uuid.UUID       `json:"loan_id"`
	AccountNo    string          `json:"account_no"`
	Currency     string          `json:"currency"`
	PrincipalDue decimal.Decimal `json:"principal_due"`
	InterestDue  decimal.Decimal `json:"interest_due"`
	TotalDue     decimal.Decimal `json:"total_due"`
	TotalOverdue decimal.Decimal `json:"total_overdue"`
}

// SheetClientResponse is one member of a sheet
type SheetClientResponse struct {
	ClientID   uuid.UUID           `json:"client_id"`
	Name       string              `json:"client_name"`
	Attendance string              `json:"attendance_type"`
	Loans      []SheetLoanResponse `json:"loans"`
}

// SheetGroupResponse is one group block of a sheet
type SheetGroupResponse struct {
	GroupID  uuid.UUID                  `json:"group_id"`
	Name     string                     `json:"group_name"`
	Clients  []SheetClientResponse      `json:"clients"`
	Loans    []SheetLoanResponse        `json:"loans,omitempty"`
	TotalDue map[string]decimal.Decimal `json:"total_due"`
}

// CollectionSheetResponse is a collection sheet in API responses
type CollectionSheetResponse struct {
	EntityType   string                     `json:"entity_type"`
	EntityID     uuid.UUID                  `json:"entity_id"`
	EntityName   string                     `json:"entity_name"`
	MeetingDate  time.Time                  `json:"meeting_date"`
	Groups       []SheetGroupResponse       `json:"groups"`
	TotalDue     map[string]decimal.Decimal `json:"total_due"`
	TotalOverdue map[string]decimal.Decimal `json:"total_overdue"`
}

func toSheetLoans(lines []portfolio.CollectionSheetLoan) []SheetLoanResponse {
	out := make([]SheetLoanResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, SheetLoanResponse{
			LoanID:       l.LoanID,
			AccountNo:    l.AccountNo,
			Currency:     l.Currency,
			PrincipalDue: l.PrincipalDue,
			InterestDue:  l.InterestDue,
			TotalDue:     l.TotalDue,
			TotalOverdue: l.TotalOverdue,
		})
	}
	return out
}

// ToCollectionSheetResponse converts a domain sheet
func ToCollectionSheetResponse(s *portfolio.CollectionSheet) *CollectionSheetResponse {
	resp := &CollectionSheetResponse{
		EntityType:   string(s.EntityType),
		EntityID:     s.EntityID,
		EntityName:   s.EntityName,
		MeetingDate:  s.MeetingDate,
		Groups:       make([]SheetGroupResponse, 0, len(s.Groups)),
		TotalDue:     s.TotalDue,
		TotalOverdue: s.TotalOverdue,
	}
	for _, g := range s.Groups {
		block := SheetGroupResponse{
			GroupID:  g.GroupID,
			Name:     g.Name,
			Clients:  make([]SheetClientResponse, 0, len(g.Clients)),
			Loans:    toSheetLoans(g.Loans),
			TotalDue: g.TotalDue,
		}
		for _, c := range g.Clients {
			block.Clients = append(block.Clients, SheetClientResponse{
				ClientID:   c.ClientID,
				Name:       c.Name,
				Attendance: string(c.Attendance),
				Loans:      toSheetLoans(c.Loans),
			})
		}
		resp.Groups = append(resp.Groups, block)
	}
	return resp
}

// SaveCollectionSheetResponse reports what a saved sheet recorded
type SaveCollectionSheetResponse struct {
	MeetingID    uuid.UUID                 `json:"meeting_id"`
	Transactions []LoanTransactionResponse `json:"transactions"`
}
