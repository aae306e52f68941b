package accounting

import (
	"context"
	"errors"
	"strings"

	"github.com/fincore/backend/internal/application/ledger"
	"github.com/fincore/backend/internal/domain/accounting"
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// JournalEntryService posts, reverses and queries journal entries
type JournalEntryService struct {
	txScope         ledger.TransactionScope
	journalRepo     accounting.JournalEntryRepository
	accountRepo     accounting.GLAccountRepository
	ruleRepo        accounting.AccountingRuleRepository
	defaultCurrency string
	eventPublisher  shared.EventPublisher
}

// NewJournalEntryService creates a new JournalEntryService. defaultCurrency
// is used for manual entries that do not name one.
func NewJournalEntryService(
	txScope ledger.TransactionScope,
	journalRepo accounting.JournalEntryRepository,
	accountRepo accounting.GLAccountRepository,
	ruleRepo accounting.AccountingRuleRepository,
	defaultCurrency string,
) *JournalEntryService {
	return &JournalEntryService{
		txScope:         txScope,
		journalRepo:     journalRepo,
		accountRepo:     accountRepo,
		ruleRepo:        ruleRepo,
		defaultCurrency: strings.ToUpper(defaultCurrency),
	}
}

// SetEventPublisher sets the event publisher for the service
func (s *JournalEntryService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create posts a manual journal entry
func (s *JournalEntryService) Create(ctx context.Context, tenantID uuid.UUID, req CreateJournalEntryRequest) (*JournalTransactionResponse, error) {
	date, err := shared.ParseDate(req.TransactionDate)
	if err != nil {
		return nil, err
	}
	currency := req.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}

	debits, credits, err := s.resolveLines(ctx, tenantID, req)
	if err != nil {
		return nil, err
	}

	posting := accounting.PostingRequest{
		OfficeID:        req.OfficeID,
		Currency:        currency,
		TransactionDate: date,
		Debits:          debits,
		Credits:         credits,
		Manual:          true,
		ReferenceNumber: req.ReferenceNumber,
		Description:     req.Comments,
		CreatedBy:       req.CreatedBy,
	}

	var txn *accounting.JournalTransaction
	err = s.txScope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
		var postErr error
		txn, postErr = ledger.Post(ctx, repos, tenantID, posting)
		return postErr
	})
	if err != nil {
		return nil, err
	}

	ledger.Publish(ctx, s.eventPublisher, accounting.NewJournalPostedEvent(tenantID, txn))
	return ToJournalTransactionResponse(txn), nil
}

// resolveLines returns the explicit lines of the request, checked against
// its accounting rule when one is named, or the rule expanded for amount.
func (s *JournalEntryService) resolveLines(ctx context.Context, tenantID uuid.UUID, req CreateJournalEntryRequest) ([]accounting.Posting, []accounting.Posting, error) {
	debits := toPostings(req.Debits)
	credits := toPostings(req.Credits)

	if req.AccountingRuleID == nil {
		if req.Amount != nil {
			return nil, nil, shared.NewDomainError("ACCOUNTING_RULE_REQUIRED", "An amount can only be posted through an accounting rule")
		}
		return debits, credits, nil
	}

	rule, err := s.ruleRepo.FindByIDForTenant(ctx, tenantID, *req.AccountingRuleID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil, shared.NewDomainError("INVALID_ACCOUNTING_RULE", "Accounting rule not found")
		}
		return nil, nil, err
	}
	if rule.OfficeID != nil && *rule.OfficeID != req.OfficeID {
		return nil, nil, shared.NewDomainError("ACCOUNTING_RULE_OFFICE_MISMATCH", "Accounting rule belongs to another office")
	}

	if len(debits) == 0 && len(credits) == 0 {
		if req.Amount == nil {
			return nil, nil, shared.NewDomainError("INVALID_AMOUNT", "Amount is required when posting through an accounting rule")
		}
		return rule.Expand(*req.Amount)
	}

	ids := make([]uuid.UUID, 0, len(debits)+len(credits))
	for _, p := range append(append([]accounting.Posting{}, debits...), credits...) {
		ids = append(ids, p.GLAccountID)
	}
	accounts, err := s.accountRepo.FindByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, nil, err
	}
	if err := rule.CheckLines(debits, credits, accounts); err != nil {
		return nil, nil, err
	}
	return debits, credits, nil
}

func toPostings(lines []PostingLine) []accounting.Posting {
	out := make([]accounting.Posting, 0, len(lines))
	for _, l := range lines {
		out = append(out, accounting.Posting{GLAccountID: l.GLAccountID, Amount: l.Amount})
	}
	return out
}

// Reverse mirrors a transaction and flags the original lines
func (s *JournalEntryService) Reverse(ctx context.Context, tenantID uuid.UUID, transactionID string, req ReverseJournalEntryRequest) (*JournalTransactionResponse, error) {
	date, err := shared.ParseDateOr(req.TransactionDate)
	if err != nil {
		return nil, err
	}

	var original, reversal *accounting.JournalTransaction
	err = s.txScope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
		var revErr error
		original, reversal, revErr = ledger.ReverseManual(ctx, repos, tenantID, transactionID, date, req.Comments, req.CreatedBy)
		return revErr
	})
	if err != nil {
		return nil, err
	}

	ledger.Publish(ctx, s.eventPublisher, accounting.NewJournalReversedEvent(tenantID, original, reversal))
	return ToJournalTransactionResponse(reversal), nil
}

// GetTransaction returns every line of a transaction
func (s *JournalEntryService) GetTransaction(ctx context.Context, tenantID uuid.UUID, transactionID string) (*JournalTransactionResponse, error) {
	txn, err := s.journalRepo.FindTransaction(ctx, tenantID, transactionID)
	if err != nil {
		return nil, err
	}
	if len(txn.Lines) == 0 {
		return nil, shared.NotFound("Journal transaction " + transactionID)
	}
	return ToJournalTransactionResponse(txn), nil
}

// List retrieves journal lines matching the filter
func (s *JournalEntryService) List(ctx context.Context, tenantID uuid.UUID, filter JournalEntryListFilter) ([]JournalEntryResponse, int64, error) {
	domainFilter := accounting.JournalEntryFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  "transaction_date",
			OrderDir: "desc",
		},
		GLAccountID:   filter.GLAccountID,
		OfficeID:      filter.OfficeID,
		TransactionID: filter.TransactionID,
		ManualOnly:    filter.ManualOnly,
		EntityID:      filter.EntityID,
	}
	var err error
	if domainFilter.FromDate, err = shared.ParseOptionalDate(&filter.FromDate); err != nil {
		return nil, 0, err
	}
	if domainFilter.ToDate, err = shared.ParseOptionalDate(&filter.ToDate); err != nil {
		return nil, 0, err
	}
	if filter.EntityType != "" {
		et := accounting.EntityType(filter.EntityType)
		domainFilter.EntityType = &et
	}

	entries, total, err := s.journalRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]JournalEntryResponse, 0, len(entries))
	for i := range entries {
		out = append(out, ToJournalEntryResponse(&entries[i]))
	}
	return out, total, nil
}

// TrialBalance aggregates account positions as of a date
func (s *JournalEntryService) TrialBalance(ctx context.Context, tenantID uuid.UUID, asOf string, officeID *uuid.UUID) (*TrialBalanceResponse, error) {
	date, err := shared.ParseDateOr(asOf)
	if err != nil {
		return nil, err
	}
	lines, err := s.journalRepo.TrialBalance(ctx, tenantID, date, officeID)
	if err != nil {
		return nil, err
	}

	resp := &TrialBalanceResponse{
		AsOf:         date,
		OfficeID:     officeID,
		Lines:        make([]TrialBalanceLineResponse, 0, len(lines)),
		TotalDebits:  decimal.Zero,
		TotalCredits: decimal.Zero,
	}
	for _, l := range lines {
		resp.Lines = append(resp.Lines, TrialBalanceLineResponse{
			GLAccountID: l.GLAccountID,
			GLCode:      l.GLCode,
			Name:        l.Name,
			Type:        string(l.Type),
			Debits:      l.Debits,
			Credits:     l.Credits,
			Balance:     l.Balance(),
		})
		resp.TotalDebits = resp.TotalDebits.Add(l.Debits)
		resp.TotalCredits = resp.TotalCredits.Add(l.Credits)
	}
	resp.Balanced = resp.TotalDebits.Equal(resp.TotalCredits)
	return resp, nil
}
