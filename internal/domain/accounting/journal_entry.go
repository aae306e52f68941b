package accounting

import (
	"crypto/rand"
	"math/big"
	"strings"
	"time"

	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryType is the side of a journal line
type EntryType string

const (
	EntryTypeDebit  EntryType = "DEBIT"
	EntryTypeCredit EntryType = "CREDIT"
)

// Opposite returns the other side
func (t EntryType) Opposite() EntryType {
	if t == EntryTypeDebit {
		return EntryTypeCredit
	}
	return EntryTypeDebit
}

// EntityType names the business object that produced a posting
type EntityType string

const (
	EntityTypeLoan         EntityType = "LOAN"
	EntityTypeClient       EntityType = "CLIENT"
	EntityTypeCashier      EntityType = "CASHIER"
	EntityTypeProvisioning EntityType = "PROVISIONING"
)

// JournalEntry is a single debit or credit line. Lines sharing a
// TransactionID form one balanced transaction.
type JournalEntry struct {
	shared.BaseEntity
	TenantID              uuid.UUID
	TransactionID         string
	OfficeID              uuid.UUID
	GLAccountID           uuid.UUID
	Currency              string
	Amount                decimal.Decimal
	EntryType             EntryType
	TransactionDate       time.Time
	Manual                bool
	Reversed              bool
	ReversalTransactionID string
	EntityType            EntityType
	EntityID              *uuid.UUID
	ReferenceNumber       string
	Description           string
	CreatedBy             *uuid.UUID
}

// Posting is one side of a transaction against an account
type Posting struct {
	GLAccountID uuid.UUID
	Amount      decimal.Decimal
}

// PostingRequest describes a transaction to be written to the ledger
type PostingRequest struct {
	OfficeID        uuid.UUID
	Currency        string
	TransactionDate time.Time
	Debits          []Posting
	Credits         []Posting
	Manual          bool
	EntityType      EntityType
	EntityID        *uuid.UUID
	ReferenceNumber string
	Description     string
	CreatedBy       *uuid.UUID
}

// JournalTransaction groups the lines of one balanced posting
type JournalTransaction struct {
	ID    string
	Lines []JournalEntry
}

const transactionIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewTransactionID returns "M" or "S" followed by 12 random alphanumerics
func NewTransactionID(manual bool) string {
	var b strings.Builder
	if manual {
		b.WriteByte('M')
	} else {
		b.WriteByte('S')
	}
	max := big.NewInt(int64(len(transactionIDAlphabet)))
	for i := 0; i < 12; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand does not fail on supported platforms
			panic(err)
		}
		b.WriteByte(transactionIDAlphabet[n.Int64()])
	}
	return b.String()
}

// NewJournalTransaction validates a posting request against the accounts
// it touches and the office's latest closure, and builds its lines.
func NewJournalTransaction(tenantID uuid.UUID, req PostingRequest, accounts map[uuid.UUID]*GLAccount, latestClosure *GLClosure) (*JournalTransaction, error) {
	if req.OfficeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OFFICE", "Office is required")
	}
	if strings.TrimSpace(req.Currency) == "" {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Currency is required")
	}
	if req.TransactionDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Transaction date is required")
	}
	if shared.IsAfterToday(req.TransactionDate) {
		return nil, shared.NewDomainError("JOURNAL_ENTRY_DATE_IN_FUTURE", "Journal entry cannot be dated in the future")
	}
	if err := EnsureOpenPeriod(req.TransactionDate, latestClosure); err != nil {
		return nil, err
	}
	if len(req.Debits) == 0 || len(req.Credits) == 0 {
		return nil, shared.NewDomainError("JOURNAL_ENTRY_MISSING_SIDE", "Journal entry needs at least one debit and one credit")
	}

	debitTotal, err := sumPostings(req.Debits, accounts, req.Manual)
	if err != nil {
		return nil, err
	}
	creditTotal, err := sumPostings(req.Credits, accounts, req.Manual)
	if err != nil {
		return nil, err
	}
	if !debitTotal.Equal(creditTotal) {
		return nil, shared.NewDomainError("JOURNAL_ENTRY_UNBALANCED", "Sum of debits "+debitTotal.String()+" does not equal sum of credits "+creditTotal.String())
	}

	txn := &JournalTransaction{ID: NewTransactionID(req.Manual)}
	date := shared.Day(req.TransactionDate)
	add := func(p Posting, side EntryType) {
		txn.Lines = append(txn.Lines, JournalEntry{
			BaseEntity:      shared.NewBaseEntity(),
			TenantID:        tenantID,
			TransactionID:   txn.ID,
			OfficeID:        req.OfficeID,
			GLAccountID:     p.GLAccountID,
			Currency:        strings.ToUpper(req.Currency),
			Amount:          p.Amount,
			EntryType:       side,
			TransactionDate: date,
			Manual:          req.Manual,
			EntityType:      req.EntityType,
			EntityID:        req.EntityID,
			ReferenceNumber: req.ReferenceNumber,
			Description:     req.Description,
			CreatedBy:       req.CreatedBy,
		})
	}
	for _, p := range req.Debits {
		add(p, EntryTypeDebit)
	}
	for _, p := range req.Credits {
		add(p, EntryTypeCredit)
	}
	return txn, nil
}

func sumPostings(postings []Posting, accounts map[uuid.UUID]*GLAccount, manual bool) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, p := range postings {
		if !p.Amount.IsPositive() {
			return decimal.Zero, shared.NewDomainError("INVALID_AMOUNT", "Journal entry amounts must be positive")
		}
		acct, ok := accounts[p.GLAccountID]
		if !ok {
			return decimal.Zero, shared.NotFound("GL account " + p.GLAccountID.String())
		}
		if err := acct.CheckPostable(manual); err != nil {
			return decimal.Zero, err
		}
		total = total.Add(p.Amount)
	}
	return total, nil
}

// Totals returns the debit and credit sums of the transaction
func (t *JournalTransaction) Totals() (debits, credits decimal.Decimal) {
	for _, l := range t.Lines {
		if l.EntryType == EntryTypeDebit {
			debits = debits.Add(l.Amount)
		} else {
			credits = credits.Add(l.Amount)
		}
	}
	return debits, credits
}

// IsReversed reports whether the transaction has already been reversed
func (t *JournalTransaction) IsReversed() bool {
	for _, l := range t.Lines {
		if l.Reversed {
			return true
		}
	}
	return false
}

// OwnedByLoan reports whether the transaction was posted for a loan
func (t *JournalTransaction) OwnedByLoan() bool {
	for _, l := range t.Lines {
		if l.EntityType == EntityTypeLoan {
			return true
		}
	}
	return false
}

// Reverse builds the mirror transaction dated on date and flags the
// original lines as reversed.
func (t *JournalTransaction) Reverse(date time.Time, comments string, createdBy *uuid.UUID, latestClosure *GLClosure) (*JournalTransaction, error) {
	if len(t.Lines) == 0 {
		return nil, shared.NotFound("journal transaction")
	}
	if t.IsReversed() {
		return nil, shared.NewDomainError("JOURNAL_ENTRY_ALREADY_REVERSED", "Journal transaction is already reversed")
	}
	if shared.IsAfterToday(date) {
		return nil, shared.NewDomainError("JOURNAL_ENTRY_DATE_IN_FUTURE", "Reversal cannot be dated in the future")
	}
	if err := EnsureOpenPeriod(date, latestClosure); err != nil {
		return nil, err
	}
	first := t.Lines[0]
	rev := &JournalTransaction{ID: NewTransactionID(first.Manual)}
	if comments == "" {
		comments = "Reversal entry for journal transaction " + t.ID
	}
	for i := range t.Lines {
		orig := &t.Lines[i]
		line := *orig
		line.BaseEntity = shared.NewBaseEntity()
		line.TransactionID = rev.ID
		line.EntryType = orig.EntryType.Opposite()
		line.TransactionDate = shared.Day(date)
		line.Reversed = true
		line.ReversalTransactionID = t.ID
		line.Description = comments
		line.CreatedBy = createdBy
		rev.Lines = append(rev.Lines, line)

		orig.Reversed = true
		orig.ReversalTransactionID = rev.ID
		orig.Touch()
	}
	return rev, nil
}

// TrialBalanceLine is the aggregated position of one account
type TrialBalanceLine struct {
	GLAccountID uuid.UUID
	GLCode      string
	Name        string
	Type        GLAccountType
	Debits      decimal.Decimal
	Credits     decimal.Decimal
}

// Balance returns the account balance on its normal side
func (l TrialBalanceLine) Balance() decimal.Decimal {
	if l.Type.DebitNormal() {
		return l.Debits.Sub(l.Credits)
	}
	return l.Credits.Sub(l.Debits)
}
