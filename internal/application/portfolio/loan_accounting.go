package portfolio

import (
	"context"
	"time"

	"github.com/fincore/backend/internal/application/ledger"
	"github.com/fincore/backend/internal/domain/accounting"
	"github.com/fincore/backend/internal/domain/portfolio"
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// loanJournal posts the ledger side of loan transactions inside a unit of
// work and keeps the resulting events for publishing after commit
type loanJournal struct {
	events []shared.DomainEvent
}

// post writes the journal of txn when the product accounts for loans and
// records the journal id on the loan's copy of the transaction
func (j *loanJournal) post(ctx context.Context, repos ledger.TransactionalRepositories, loan *portfolio.Loan, product *portfolio.LoanProduct, txn *portfolio.LoanTransaction, createdBy *uuid.UUID) error {
	if !product.PostsToLedger() {
		return nil
	}
	req, err := loanPosting(loan, product, txn)
	if err != nil || req == nil {
		return err
	}
	req.CreatedBy = createdBy
	posted, err := ledger.Post(ctx, repos, loan.TenantID, *req)
	if err != nil {
		return err
	}
	txn.JournalTransactionID = posted.ID
	for i := range loan.Transactions {
		if loan.Transactions[i].ID == txn.ID {
			loan.Transactions[i].JournalTransactionID = posted.ID
		}
	}
	j.events = append(j.events, accounting.NewJournalPostedEvent(loan.TenantID, posted))
	return nil
}

// reverse mirrors the journals of reversed loan transactions. Accruals of
// one run share a journal, so each journal is reversed once.
func (j *loanJournal) reverse(ctx context.Context, repos ledger.TransactionalRepositories, loan *portfolio.Loan, txns []portfolio.LoanTransaction, date time.Time, createdBy *uuid.UUID) error {
	done := make(map[string]bool, len(txns))
	for _, t := range txns {
		if t.JournalTransactionID == "" || done[t.JournalTransactionID] {
			continue
		}
		done[t.JournalTransactionID] = true
		original, reversal, err := ledger.Reverse(ctx, repos, loan.TenantID, t.JournalTransactionID, date,
			"Reversal of "+string(t.Type)+" on loan "+loan.AccountNo, createdBy)
		if err != nil {
			return err
		}
		j.events = append(j.events, accounting.NewJournalReversedEvent(loan.TenantID, original, reversal))
	}
	return nil
}

// loanPosting maps a loan transaction to its balanced journal. It returns
// nil when the transaction moves nothing on the ledger.
//
//	disbursement  Dr portfolio            Cr fund source
//	repayment     Dr fund source          Cr portfolio, income or receivable, overpayment
//	waiver        Dr interest income      Cr interest receivable (accrual only)
//	write-off     Dr write-off expense    Cr portfolio, receivable (accrual only)
func loanPosting(loan *portfolio.Loan, product *portfolio.LoanProduct, txn *portfolio.LoanTransaction) (*accounting.PostingRequest, error) {
	acc := product.Accounts
	accrual := product.AccountingType == portfolio.AccountingAccrualPeriodic
	var debits, credits []accounting.Posting
	add := func(side *[]accounting.Posting, id *uuid.UUID, amount decimal.Decimal) {
		if id != nil && amount.IsPositive() {
			*side = append(*side, accounting.Posting{GLAccountID: *id, Amount: amount})
		}
	}
	description := "Loan " + string(txn.Type)

	switch txn.Type {
	case portfolio.TxnDisbursement:
		add(&debits, acc.LoanPortfolio, txn.Amount)
		add(&credits, acc.FundSource, txn.Amount)
		description = "Loan disbursement"
	case portfolio.TxnRepayment:
		if txn.OverpaymentPortion.IsPositive() && acc.Overpayment == nil {
			return nil, shared.NewDomainError("LOAN_PRODUCT_ACCOUNTS_MISSING", "An overpayment liability account is required to accept overpayments")
		}
		add(&debits, acc.FundSource, txn.Amount)
		add(&credits, acc.LoanPortfolio, txn.PrincipalPortion)
		if accrual {
			add(&credits, acc.InterestReceivable, txn.InterestPortion)
		} else {
			add(&credits, acc.InterestIncome, txn.InterestPortion)
		}
		add(&credits, acc.Overpayment, txn.OverpaymentPortion)
		description = "Loan repayment"
	case portfolio.TxnWaiveInterest:
		if !accrual {
			return nil, nil
		}
		add(&debits, acc.InterestIncome, txn.InterestPortion)
		add(&credits, acc.InterestReceivable, txn.InterestPortion)
		description = "Loan interest waiver"
	case portfolio.TxnWriteOff:
		writtenOff := txn.PrincipalPortion
		add(&credits, acc.LoanPortfolio, txn.PrincipalPortion)
		if accrual {
			writtenOff = writtenOff.Add(txn.InterestPortion)
			add(&credits, acc.InterestReceivable, txn.InterestPortion)
		}
		add(&debits, acc.WriteOff, writtenOff)
		description = "Loan write-off"
	default:
		return nil, nil
	}
	if len(debits) == 0 || len(credits) == 0 {
		return nil, nil
	}

	loanID := loan.ID
	return &accounting.PostingRequest{
		OfficeID:        loan.OfficeID,
		Currency:        loan.Terms.Currency,
		TransactionDate: txn.TransactionDate,
		Debits:          debits,
		Credits:         credits,
		EntityType:      accounting.EntityTypeLoan,
		EntityID:        &loanID,
		ReferenceNumber: loan.AccountNo,
		Description:     description,
	}, nil
}

// loanEvents drains the events raised by the loan aggregate
func loanEvents(loan *portfolio.Loan) []shared.DomainEvent {
	return loan.PullEvents()
}
