package portfolio

import (
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeLoanStatusChanged = "LoanStatusChanged"
	EventTypeLoanTransaction   = "LoanTransactionRecorded"
)

// AggregateTypeLoan names loans in events
const AggregateTypeLoan = "Loan"

// LoanStatusChangedEvent is raised on every lifecycle transition
type LoanStatusChangedEvent struct {
	shared.BaseDomainEvent
	AccountNo string          `json:"account_no"`
	From      LoanStatus      `json:"from"`
	To        LoanStatus      `json:"to"`
	Principal decimal.Decimal `json:"principal"`
	Currency  string          `json:"currency"`
}

// NewLoanStatusChangedEvent builds the event
func NewLoanStatusChangedEvent(l *Loan, from, to LoanStatus) *LoanStatusChangedEvent {
	return &LoanStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLoanStatusChanged, AggregateTypeLoan, l.ID, l.TenantID),
		AccountNo:       l.AccountNo,
		From:            from,
		To:              to,
		Principal:       l.Terms.Principal,
		Currency:        l.Terms.Currency,
	}
}

// LoanTransactionEvent is raised when money moves on a loan
type LoanTransactionEvent struct {
	shared.BaseDomainEvent
	TransactionType LoanTransactionType `json:"transaction_type"`
	Amount          decimal.Decimal     `json:"amount"`
	Currency        string              `json:"currency"`
}

// NewLoanTransactionEvent builds the event
func NewLoanTransactionEvent(l *Loan, txn *LoanTransaction) *LoanTransactionEvent {
	return &LoanTransactionEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLoanTransaction, AggregateTypeLoan, l.ID, l.TenantID),
		TransactionType: txn.Type,
		Amount:          txn.Amount,
		Currency:        l.Terms.Currency,
	}
}
