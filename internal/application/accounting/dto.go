package accounting

import (
	"time"

	"github.com/fincore/backend/internal/domain/accounting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// GL accounts
// ---------------------------------------------------------------------------

// GLAccountRequest creates or updates a GL account
type GLAccountRequest struct {
	Name                 string     `json:"name" binding:"required,min=1,max=200"`
	GLCode               string     `json:"gl_code" binding:"required,min=1,max=45"`
	Type                 string     `json:"type" binding:"required,oneof=ASSET LIABILITY EQUITY INCOME EXPENSE"`
	Usage                string     `json:"usage" binding:"required,oneof=DETAIL HEADER"`
	ParentID             *uuid.UUID `json:"parent_id"`
	ManualEntriesAllowed bool       `json:"manual_entries_allowed"`
	Disabled             bool       `json:"disabled"`
	Tag                  string     `json:"tag" binding:"max=100"`
	Description          string     `json:"description" binding:"max=500"`
}

func (r GLAccountRequest) input() accounting.GLAccountInput {
	return accounting.GLAccountInput{
		Name:                 r.Name,
		GLCode:               r.GLCode,
		Type:                 accounting.GLAccountType(r.Type),
		Usage:                accounting.GLAccountUsage(r.Usage),
		ManualEntriesAllowed: r.ManualEntriesAllowed,
		Tag:                  r.Tag,
		Description:          r.Description,
	}
}

// GLAccountListFilter holds query parameters of the account list
type GLAccountListFilter struct {
	Search               string `form:"search"`
	Type                 string `form:"type" binding:"omitempty,oneof=ASSET LIABILITY EQUITY INCOME EXPENSE"`
	Usage                string `form:"usage" binding:"omitempty,oneof=DETAIL HEADER"`
	Disabled             *bool  `form:"disabled"`
	ManualEntriesAllowed *bool  `form:"manual_entries_allowed"`
	Tag                  string `form:"tag"`
	Page                 int    `form:"page" binding:"omitempty,min=1"`
	PageSize             int    `form:"page_size" binding:"omitempty,min=1,max=200"`
}

// GLAccountResponse is a GL account in API responses
type GLAccountResponse struct {
	ID                   uuid.UUID            `json:"id"`
	Name                 string               `json:"name"`
	GLCode               string               `json:"gl_code"`
	Type                 string               `json:"type"`
	Usage                string               `json:"usage"`
	ParentID             *uuid.UUID           `json:"parent_id,omitempty"`
	Hierarchy            string               `json:"hierarchy"`
	ManualEntriesAllowed bool                 `json:"manual_entries_allowed"`
	Disabled             bool                 `json:"disabled"`
	Tag                  string               `json:"tag,omitempty"`
	Description          string               `json:"description,omitempty"`
	Children             []*GLAccountResponse `json:"children,omitempty"`
	CreatedAt            time.Time            `json:"created_at"`
	UpdatedAt            time.Time            `json:"updated_at"`
}

// ToGLAccountResponse converts a domain account
func ToGLAccountResponse(a *accounting.GLAccount) *GLAccountResponse {
	return &GLAccountResponse{
		ID:                   a.ID,
		Name:                 a.Name,
		GLCode:               a.GLCode,
		Type:                 string(a.Type),
		Usage:                string(a.Usage),
		ParentID:             a.ParentID,
		Hierarchy:            a.Hierarchy,
		ManualEntriesAllowed: a.ManualEntriesAllowed,
		Disabled:             a.Disabled,
		Tag:                  a.Tag,
		Description:          a.Description,
		CreatedAt:            a.CreatedAt,
		UpdatedAt:            a.UpdatedAt,
	}
}

// ---------------------------------------------------------------------------
// Journal entries
// ---------------------------------------------------------------------------

// PostingLine is one debit or credit of a manual entry
type PostingLine struct {
	GLAccountID uuid.UUID       `json:"gl_account_id" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required,positive_amount"`
}

// CreateJournalEntryRequest posts a manual journal entry. Either explicit
// debit and credit lines or an accounting rule with an amount is given.
type CreateJournalEntryRequest struct {
	OfficeID         uuid.UUID        `json:"office_id" binding:"required"`
	TransactionDate  string           `json:"transaction_date" binding:"required,isodate"`
	Currency         string           `json:"currency" binding:"omitempty,len=3"`
	Debits           []PostingLine    `json:"debits" binding:"omitempty,dive"`
	Credits          []PostingLine    `json:"credits" binding:"omitempty,dive"`
	AccountingRuleID *uuid.UUID       `json:"accounting_rule_id"`
	Amount           *decimal.Decimal `json:"amount"`
	ReferenceNumber  string           `json:"reference_number" binding:"max=100"`
	Comments         string           `json:"comments" binding:"max=500"`
	CreatedBy        *uuid.UUID       `json:"-"`
}

// ReverseJournalEntryRequest reverses a transaction
type ReverseJournalEntryRequest struct {
	TransactionDate string     `json:"transaction_date" binding:"isodate"`
	Comments        string     `json:"comments" binding:"max=500"`
	CreatedBy       *uuid.UUID `json:"-"`
}

// JournalEntryListFilter holds query parameters of the journal list
type JournalEntryListFilter struct {
	GLAccountID   *uuid.UUID `form:"gl_account_id"`
	OfficeID      *uuid.UUID `form:"office_id"`
	FromDate      string     `form:"from_date"`
	ToDate        string     `form:"to_date"`
	TransactionID string     `form:"transaction_id"`
	ManualOnly    bool       `form:"manual_only"`
	EntityType    string     `form:"entity_type" binding:"omitempty,oneof=LOAN CLIENT CASHIER PROVISIONING"`
	EntityID      *uuid.UUID `form:"entity_id"`
	Page          int        `form:"page" binding:"omitempty,min=1"`
	PageSize      int        `form:"page_size" binding:"omitempty,min=1,max=200"`
}

// JournalEntryResponse is a journal line in API responses
type JournalEntryResponse struct {
	ID                    uuid.UUID       `json:"id"`
	TransactionID         string          `json:"transaction_id"`
	OfficeID              uuid.UUID       `json:"office_id"`
	GLAccountID           uuid.UUID       `json:"gl_account_id"`
	Currency              string          `json:"currency"`
	Amount                decimal.Decimal `json:"amount"`
	EntryType             string          `json:"entry_type"`
	TransactionDate       time.Time       `json:"transaction_date"`
	Manual                bool            `json:"manual"`
	Reversed              bool            `json:"reversed"`
	ReversalTransactionID string          `json:"reversal_transaction_id,omitempty"`
	EntityType            string          `json:"entity_type,omitempty"`
	EntityID              *uuid.UUID      `json:"entity_id,omitempty"`
	ReferenceNumber       string          `json:"reference_number,omitempty"`
	Description           string          `json:"description,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
}

// JournalTransactionResponse groups the lines of one transaction
type JournalTransactionResponse struct {
	TransactionID string                 `json:"transaction_id"`
	TotalDebits   decimal.Decimal        `json:"total_debits"`
	TotalCredits  decimal.Decimal        `json:"total_credits"`
	Reversed      bool                   `json:"reversed"`
	Lines         []JournalEntryResponse `json:"lines"`
}

// ToJournalEntryResponse converts a domain line
func ToJournalEntryResponse(e *accounting.JournalEntry) JournalEntryResponse {
	return JournalEntryResponse{
		ID:                    e.ID,
		TransactionID:         e.TransactionID,
		OfficeID:              e.OfficeID,
		GLAccountID:           e.GLAccountID,
		Currency:              e.Currency,
		Amount:                e.Amount,
		EntryType:             string(e.EntryType),
		TransactionDate:       e.TransactionDate,
		Manual:                e.Manual,
		Reversed:              e.Reversed,
		ReversalTransactionID: e.ReversalTransactionID,
		EntityType:            string(e.EntityType),
		EntityID:              e.EntityID,
		ReferenceNumber:       e.ReferenceNumber,
		Description:           e.Description,
		CreatedAt:             e.CreatedAt,
	}
}

// ToJournalTransactionResponse converts a domain transaction
func ToJournalTransactionResponse(t *accounting.JournalTransaction) *JournalTransactionResponse {
	debits, credits := t.Totals()
	resp := &JournalTransactionResponse{
		TransactionID: t.ID,
		TotalDebits:   debits,
		TotalCredits:  credits,
		Reversed:      t.IsReversed(),
		Lines:         make([]JournalEntryResponse, 0, len(t.Lines)),
	}
	for i := range t.Lines {
		resp.Lines = append(resp.Lines, ToJournalEntryResponse(&t.Lines[i]))
	}
	return resp
}

// TrialBalanceLineResponse is one account of a trial balance
type TrialBalanceLineResponse struct {
	GLAccountID uuid.UUID       `json:"gl_account_id"`
	GLCode      string          `json:"gl_code"`
	Name        string          `json:"name"`
	Type        string          `json:"type"`
	Debits      decimal.Decimal `json:"debits"`
	Credits     decimal.Decimal `json:"credits"`
	Balance     decimal.Decimal `json:"balance"`
}

// TrialBalanceResponse lists account positions as of a date
type TrialBalanceResponse struct {
	AsOf         time.Time                  `json:"as_of"`
	OfficeID     *uuid.UUID                 `json:"office_id,omitempty"`
	Lines        []TrialBalanceLineResponse `json:"lines"`
	TotalDebits  decimal.Decimal            `json:"total_debits"`
	TotalCredits decimal.Decimal            `json:"total_credits"`
	Balanced     bool                       `json:"balanced"`
}

// ---------------------------------------------------------------------------
// Accounting rules
// ---------------------------------------------------------------------------

// AccountingRuleRequest creates or updates an accounting rule
type AccountingRuleRequest struct {
	Name                 string     `json:"name" binding:"required,min=1,max=100"`
	OfficeID             *uuid.UUID `json:"office_id"`
	Description          string     `json:"description" binding:"max=500"`
	DebitAccountID       *uuid.UUID `json:"debit_account_id"`
	CreditAccountID      *uuid.UUID `json:"credit_account_id"`
	DebitTags            []string   `json:"debit_tags"`
	CreditTags           []string   `json:"credit_tags"`
	AllowMultipleDebits  bool       `json:"allow_multiple_debits"`
	AllowMultipleCredits bool       `json:"allow_multiple_credits"`
}

func (r AccountingRuleRequest) input() accounting.AccountingRuleInput {
	return accounting.AccountingRuleInput{
		Name:                 r.Name,
		OfficeID:             r.OfficeID,
		Description:          r.Description,
		DebitAccountID:       r.DebitAccountID,
		CreditAccountID:      r.CreditAccountID,
		DebitTags:            r.DebitTags,
		CreditTags:           r.CreditTags,
		AllowMultipleDebits:  r.AllowMultipleDebits,
		AllowMultipleCredits: r.AllowMultipleCredits,
	}
}

// AccountingRuleResponse is an accounting rule in API responses
type AccountingRuleResponse struct {
	ID                   uuid.UUID  `json:"id"`
	Name                 string     `json:"name"`
	OfficeID             *uuid.UUID `json:"office_id,omitempty"`
	Description          string     `json:"description,omitempty"`
	DebitAccountID       *uuid.UUID `json:"debit_account_id,omitempty"`
	CreditAccountID      *uuid.UUID `json:"credit_account_id,omitempty"`
	DebitTags            []string   `json:"debit_tags,omitempty"`
	CreditTags           []string   `json:"credit_tags,omitempty"`
	AllowMultipleDebits  bool       `json:"allow_multiple_debits"`
	AllowMultipleCredits bool       `json:"allow_multiple_credits"`
}

// ToAccountingRuleResponse converts a domain rule
func ToAccountingRuleResponse(r *accounting.AccountingRule) *AccountingRuleResponse {
	return &AccountingRuleResponse{
		ID:                   r.ID,
		Name:                 r.Name,
		OfficeID:             r.OfficeID,
		Description:          r.Description,
		DebitAccountID:       r.DebitAccountID,
		CreditAccountID:      r.CreditAccountID,
		DebitTags:            r.DebitTags,
		CreditTags:           r.CreditTags,
		AllowMultipleDebits:  r.AllowMultipleDebits,
		AllowMultipleCredits: r.AllowMultipleCredits,
	}
}

// ---------------------------------------------------------------------------
// GL closures
// ---------------------------------------------------------------------------

// CreateGLClosureRequest closes the books of an office
type CreateGLClosureRequest struct {
	OfficeID    uuid.UUID `json:"office_id" binding:"required"`
	ClosingDate string    `json:"closing_date" binding:"required,isodate"`
	Comments    string    `json:"comments" binding:"max=500"`
}

// UpdateGLClosureRequest changes closure comments
type UpdateGLClosureRequest struct {
	Comments string `json:"comments" binding:"max=500"`
}

// GLClosureResponse is a closure in API responses
type GLClosureResponse struct {
	ID          uuid.UUID `json:"id"`
	OfficeID    uuid.UUID `json:"office_id"`
	ClosingDate time.Time `json:"closing_date"`
	Comments    string    `json:"comments,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToGLClosureResponse converts a domain closure
func ToGLClosureResponse(c *accounting.GLClosure) *GLClosureResponse {
	return &GLClosureResponse{
		ID:          c.ID,
		OfficeID:    c.OfficeID,
		ClosingDate: c.ClosingDate,
		Comments:    c.Comments,
		CreatedAt:   c.CreatedAt,
	}
}

// ---------------------------------------------------------------------------
// Provisioning
// ---------------------------------------------------------------------------

// ProvisioningCategoryRequest creates or updates a category
type ProvisioningCategoryRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=500"`
}

// ProvisioningCategoryResponse is a category in API responses
type ProvisioningCategoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
}

// ProvisioningDefinitionRequest is one age band of criteria
type ProvisioningDefinitionRequest struct {
	CategoryID         uuid.UUID       `json:"category_id" binding:"required"`
	MinAge             int             `json:"min_age" binding:"min=0"`
	MaxAge             int             `json:"max_age" binding:"min=0"`
	Percentage         decimal.Decimal `json:"provisioning_pct"`
	LiabilityAccountID uuid.UUID       `json:"liability_account_id" binding:"required"`
	ExpenseAccountID   uuid.UUID       `json:"expense_account_id" binding:"required"`
}

// ProvisioningCriteriaRequest creates or updates criteria
type ProvisioningCriteriaRequest struct {
	Name           string                          `json:"name" binding:"required,min=1,max=200"`
	Definitions    []ProvisioningDefinitionRequest `json:"definitions" binding:"required,min=1,dive"`
	LoanProductIDs []uuid.UUID                     `json:"loan_product_ids"`
}

func (r ProvisioningCriteriaRequest) definitions() []accounting.ProvisioningDefinition {
	defs := make([]accounting.ProvisioningDefinition, 0, len(r.Definitions))
	for _, d := range r.Definitions {
		defs = append(defs, accounting.ProvisioningDefinition{
			CategoryID:         d.CategoryID,
			MinAge:             d.MinAge,
			MaxAge:             d.MaxAge,
			Percentage:         d.Percentage,
			LiabilityAccountID: d.LiabilityAccountID,
			ExpenseAccountID:   d.ExpenseAccountID,
		})
	}
	return defs
}

// ProvisioningCriteriaResponse is criteria in API responses
type ProvisioningCriteriaResponse struct {
	ID             uuid.UUID                       `json:"id"`
	Name           string                          `json:"name"`
	Definitions    []ProvisioningDefinitionRequest `json:"definitions"`
	LoanProductIDs []uuid.UUID                     `json:"loan_product_ids"`
}

// ToProvisioningCriteriaResponse converts domain criteria
func ToProvisioningCriteriaResponse(c *accounting.ProvisioningCriteria) *ProvisioningCriteriaResponse {
	resp := &ProvisioningCriteriaResponse{ID: c.ID, Name: c.Name, LoanProductIDs: c.LoanProductIDs}
	for _, d := range c.Definitions {
		resp.Definitions = append(resp.Definitions, ProvisioningDefinitionRequest{
			CategoryID:         d.CategoryID,
			MinAge:             d.MinAge,
			MaxAge:             d.MaxAge,
			Percentage:         d.Percentage,
			LiabilityAccountID: d.LiabilityAccountID,
			ExpenseAccountID:   d.ExpenseAccountID,
		})
	}
	return resp
}

// CreateProvisioningEntryRequest computes reserves for a date
type CreateProvisioningEntryRequest struct {
	Date                 string     `json:"date" binding:"isodate"`
	CreateJournalEntries bool       `json:"create_journal_entries"`
	CreatedBy            *uuid.UUID `json:"-"`
}

// ProvisioningLineResponse is one reserve line
type ProvisioningLineResponse struct {
	OfficeID      uuid.UUID       `json:"office_id"`
	LoanProductID uuid.UUID       `json:"loan_product_id"`
	CategoryID    uuid.UUID       `json:"category_id"`
	Currency      string          `json:"currency"`
	Percentage    decimal.Decimal `json:"provisioning_pct"`
	Outstanding   decimal.Decimal `json:"outstanding"`
	Reserve       decimal.Decimal `json:"reserve"`
}

// ProvisioningEntryResponse is an entry in API responses
type ProvisioningEntryResponse struct {
	ID                   uuid.UUID                  `json:"id"`
	EntryDate            time.Time                  `json:"entry_date"`
	JournalEntryCreated  bool                       `json:"journal_entry_created"`
	JournalTransactionID string                     `json:"journal_transaction_id,omitempty"`
	TotalReserve         map[string]decimal.Decimal `json:"total_reserve"`
	Lines                []ProvisioningLineResponse `json:"lines,omitempty"`
}

// ToProvisioningEntryResponse converts a domain entry
func ToProvisioningEntryResponse(e *accounting.ProvisioningEntry) *ProvisioningEntryResponse {
	resp := &ProvisioningEntryResponse{
		ID:                   e.ID,
		EntryDate:            e.EntryDate,
		JournalEntryCreated:  e.JournalEntryCreated,
		JournalTransactionID: e.JournalTransactionID,
		TotalReserve:         e.TotalReserve(),
	}
	for _, l := range e.Lines {
		resp.Lines = append(resp.Lines, ProvisioningLineResponse{
			OfficeID:      l.OfficeID,
			LoanProductID: l.LoanProductID,
			CategoryID:    l.CategoryID,
			Currency:      l.Currency,
			Percentage:    l.Percentage,
			Outstanding:   l.Outstanding,
			Reserve:       l.Reserve,
		})
	}
	return resp
}

// ---------------------------------------------------------------------------
// Accruals
// ---------------------------------------------------------------------------

// RunAccrualsRequest triggers periodic accrual up to a date
type RunAccrualsRequest struct {
	TillDate string `json:"till_date" binding:"isodate"`
}

// AccrualFailure reports a loan the run could not accrue
type AccrualFailure struct {
	LoanID    uuid.UUID `json:"loan_id"`
	AccountNo string    `json:"account_no"`
	Error     string    `json:"error"`
}

// AccrualRunResponse summarises an accrual run
type AccrualRunResponse struct {
	TillDate        time.Time                  `json:"till_date"`
	LoansProcessed  int                        `json:"loans_processed"`
	LoansAccrued    int                        `json:"loans_accrued"`
	AccruedInterest map[string]decimal.Decimal `json:"accrued_interest"`
	Failures        []AccrualFailure           `json:"failures,omitempty"`
}
