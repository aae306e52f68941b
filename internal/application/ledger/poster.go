package ledger

import (
	"context"
	"time"

	"github.com/fincore/backend/internal/domain/accounting"
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Post validates req against the accounts it touches and the office's
// latest closure, then writes its lines inside repos' transaction.
func Post(ctx context.Context, repos TransactionalRepositories, tenantID uuid.UUID, req accounting.PostingRequest) (*accounting.JournalTransaction, error) {
	accounts, err := repos.GLAccounts().FindByIDs(ctx, tenantID, postingAccountIDs(req))
	if err != nil {
		return nil, err
	}
	latest, err := repos.Closures().FindLatestForOffice(ctx, tenantID, req.OfficeID)
	if err != nil {
		return nil, err
	}
	txn, err := accounting.NewJournalTransaction(tenantID, req, accounts, latest)
	if err != nil {
		return nil, err
	}
	if err := repos.JournalEntries().SaveTransaction(ctx, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

// PostAll posts several requests, stopping at the first failure
func PostAll(ctx context.Context, repos TransactionalRepositories, tenantID uuid.UUID, reqs []accounting.PostingRequest) ([]*accounting.JournalTransaction, error) {
	out := make([]*accounting.JournalTransaction, 0, len(reqs))
	for _, req := range reqs {
		txn, err := Post(ctx, repos, tenantID, req)
		if err != nil {
			return nil, err
		}
		out = append(out, txn)
	}
	return out, nil
}

// Reverse mirrors a posted transaction on date and flags the original
// lines, inside repos' transaction.
func Reverse(ctx context.Context, repos TransactionalRepositories, tenantID uuid.UUID, transactionID string, date time.Time, comments string, createdBy *uuid.UUID) (original, reversal *accounting.JournalTransaction, err error) {
	if original, err = findPosted(ctx, repos, tenantID, transactionID); err != nil {
		return nil, nil, err
	}
	if reversal, err = reverse(ctx, repos, tenantID, original, date, comments, createdBy); err != nil {
		return nil, nil, err
	}
	return original, reversal, nil
}

// ReverseManual is Reverse on behalf of a user. Postings a loan owns are
// refused; they are undone through the loan so its balances follow.
func ReverseManual(ctx context.Context, repos TransactionalRepositories, tenantID uuid.UUID, transactionID string, date time.Time, comments string, createdBy *uuid.UUID) (original, reversal *accounting.JournalTransaction, err error) {
	if original, err = findPosted(ctx, repos, tenantID, transactionID); err != nil {
		return nil, nil, err
	}
	if original.OwnedByLoan() {
		return nil, nil, shared.NewDomainError("JOURNAL_ENTRY_SYSTEM_GENERATED",
			"Journal transaction "+transactionID+" belongs to a loan and can only be reversed through the loan")
	}
	if reversal, err = reverse(ctx, repos, tenantID, original, date, comments, createdBy); err != nil {
		return nil, nil, err
	}
	return original, reversal, nil
}

func findPosted(ctx context.Context, repos TransactionalRepositories, tenantID uuid.UUID, transactionID string) (*accounting.JournalTransaction, error) {
	txn, err := repos.JournalEntries().FindTransaction(ctx, tenantID, transactionID)
	if err != nil {
		return nil, err
	}
	if len(txn.Lines) == 0 {
		return nil, shared.NotFound("Journal transaction " + transactionID)
	}
	return txn, nil
}

func reverse(ctx context.Context, repos TransactionalRepositories, tenantID uuid.UUID, original *accounting.JournalTransaction, date time.Time, comments string, createdBy *uuid.UUID) (*accounting.JournalTransaction, error) {
	latest, err := repos.Closures().FindLatestForOffice(ctx, tenantID, original.Lines[0].OfficeID)
	if err != nil {
		return nil, err
	}
	reversal, err := original.Reverse(date, comments, createdBy, latest)
	if err != nil {
		return nil, err
	}
	if err := repos.JournalEntries().SaveReversal(ctx, original, reversal); err != nil {
		return nil, err
	}
	return reversal, nil
}

func postingAccountIDs(req accounting.PostingRequest) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(req.Debits)+len(req.Credits))
	ids := make([]uuid.UUID, 0, len(req.Debits)+len(req.Credits))
	for _, side := range [][]accounting.Posting{req.Debits, req.Credits} {
		for _, p := range side {
			if !seen[p.GLAccountID] {
				seen[p.GLAccountID] = true
				ids = append(ids, p.GLAccountID)
			}
		}
	}
	return ids
}

// Publish hands events to publisher, ignoring a nil publisher. Handler
// failures are logged by the bus and never undo the committed write.
func Publish(ctx context.Context, publisher shared.EventPublisher, events ...shared.DomainEvent) {
	if publisher == nil || len(events) == 0 {
		return
	}
	_ = publisher.Publish(ctx, events...)
}
