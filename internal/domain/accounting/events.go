package accounting

import (
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeJournalPosted   = "JournalTransactionPosted"
	EventTypeJournalReversed = "JournalTransactionReversed"
)

// AggregateTypeJournal names journal transactions in events
const AggregateTypeJournal = "JournalTransaction"

// JournalPostedEvent is raised after a balanced transaction is written
type JournalPostedEvent struct {
	shared.BaseDomainEvent
	TransactionID string          `json:"transaction_id"`
	OfficeID      uuid.UUID       `json:"office_id"`
	Currency      string          `json:"currency"`
	Amount        decimal.Decimal `json:"amount"`
	Manual        bool            `json:"manual"`
}

// NewJournalPostedEvent builds the event from a transaction
func NewJournalPostedEvent(tenantID uuid.UUID, txn *JournalTransaction) *JournalPostedEvent {
	debits, _ := txn.Totals()
	first := txn.Lines[0]
	return &JournalPostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeJournalPosted, AggregateTypeJournal, first.ID, tenantID),
		TransactionID:   txn.ID,
		OfficeID:        first.OfficeID,
		Currency:        first.Currency,
		Amount:          debits,
		Manual:          first.Manual,
	}
}

// JournalReversedEvent is raised when a transaction is reversed
type JournalReversedEvent struct {
	shared.BaseDomainEvent
	TransactionID         string `json:"transaction_id"`
	ReversalTransactionID string `json:"reversal_transaction_id"`
}

// NewJournalReversedEvent builds the event
func NewJournalReversedEvent(tenantID uuid.UUID, original, reversal *JournalTransaction) *JournalReversedEvent {
	return &JournalReversedEvent{
		BaseDomainEvent:       shared.NewBaseDomainEvent(EventTypeJournalReversed, AggregateTypeJournal, reversal.Lines[0].ID, tenantID),
		TransactionID:         original.ID,
		ReversalTransactionID: reversal.ID,
	}
}
