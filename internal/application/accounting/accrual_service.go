package accounting

import (
	"context"
	"sync"
	"time"

	"github.com/fincore/backend/internal/application/ledger"
	"github.com/fincore/backend/internal/domain/accounting"
	"github.com/fincore/backend/internal/domain/portfolio"
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultAccrualConcurrency bounds the offices accrued in parallel
const DefaultAccrualConcurrency = 4

// AccrualService recognises interest income of periodic-accrual loans
type AccrualService struct {
	txScope        ledger.TransactionScope
	loanRepo       portfolio.LoanRepository
	productRepo    portfolio.LoanProductRepository
	logger         *zap.Logger
	concurrency    int
	eventPublisher shared.EventPublisher
}

// NewAccrualService creates a new AccrualService
func NewAccrualService(
	txScope ledger.TransactionScope,
	loanRepo portfolio.LoanRepository,
	productRepo portfolio.LoanProductRepository,
	logger *zap.Logger,
) *AccrualService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccrualService{
		txScope:     txScope,
		loanRepo:    loanRepo,
		productRepo: productRepo,
		logger:      logger,
		concurrency: DefaultAccrualConcurrency,
	}
}

// SetEventPublisher sets the event publisher for the service
func (s *AccrualService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetConcurrency changes how many offices are processed at once
func (s *AccrualService) SetConcurrency(n int) {
	if n > 0 {
		s.concurrency = n
	}
}

type accrualRun struct {
	mu       sync.Mutex
	products map[uuid.UUID]*portfolio.LoanProduct
	resp     *AccrualRunResponse
}

func (r *accrualRun) record(l *portfolio.Loan, accrued decimal.Decimal, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resp.LoansProcessed++
	if err != nil {
		r.resp.Failures = append(r.resp.Failures, AccrualFailure{LoanID: l.ID, AccountNo: l.AccountNo, Error: err.Error()})
		return
	}
	if accrued.IsPositive() {
		r.resp.LoansAccrued++
		cur := l.Terms.Currency
		r.resp.AccruedInterest[cur] = r.resp.AccruedInterest[cur].Add(accrued)
	}
}

// RunAccruals accrues interest up to tillDate on every active loan whose
// product uses periodic accrual. Offices run concurrently; a failing loan
// is reported and does not stop the run.
func (s *AccrualService) RunAccruals(ctx context.Context, tenantID uuid.UUID, req RunAccrualsRequest) (*AccrualRunResponse, error) {
	till, err := shared.ParseDateOr(req.TillDate)
	if err != nil {
		return nil, err
	}
	if shared.IsAfterToday(till) {
		return nil, shared.NewDomainError("ACCRUAL_DATE_IN_FUTURE", "Interest cannot be accrued to a future date")
	}

	officeIDs, err := s.loanRepo.FindActiveOfficeIDs(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	run := &accrualRun{
		products: map[uuid.UUID]*portfolio.LoanProduct{},
		resp:     &AccrualRunResponse{TillDate: till, AccruedInterest: map[string]decimal.Decimal{}},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, officeID := range officeIDs {
		officeID := officeID
		g.Go(func() error {
			return s.accrueOffice(gctx, tenantID, officeID, till, run)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Info("Accrual run finished",
		zap.String("tenant_id", tenantID.String()),
		zap.Time("till", till),
		zap.Int("processed", run.resp.LoansProcessed),
		zap.Int("accrued", run.resp.LoansAccrued),
		zap.Int("failed", len(run.resp.Failures)),
	)
	return run.resp, nil
}

func (s *AccrualService) accrueOffice(ctx context.Context, tenantID, officeID uuid.UUID, till time.Time, run *accrualRun) error {
	loans, err := s.loanRepo.FindActiveByOffice(ctx, tenantID, officeID)
	if err != nil {
		return err
	}
	for i := range loans {
		if err := ctx.Err(); err != nil {
			return err
		}
		loan := &loans[i]
		product, err := s.product(ctx, tenantID, loan.ProductID, run)
		if err != nil {
			run.record(loan, decimal.Zero, err)
			continue
		}
		if product.AccountingType != portfolio.AccountingAccrualPeriodic {
			continue
		}
		accrued, err := s.accrueLoan(ctx, tenantID, loan, product, till)
		if err != nil {
			s.logger.Warn("Accrual failed",
				zap.String("loan_id", loan.ID.String()),
				zap.Error(err),
			)
		}
		run.record(loan, accrued, err)
	}
	return nil
}

func (s *AccrualService) product(ctx context.Context, tenantID, id uuid.UUID, run *accrualRun) (*portfolio.LoanProduct, error) {
	run.mu.Lock()
	p, ok := run.products[id]
	run.mu.Unlock()
	if ok {
		return p, nil
	}
	p, err := s.productRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	run.mu.Lock()
	run.products[id] = p
	run.mu.Unlock()
	return p, nil
}

// accrueLoan records accrual transactions on the loan and posts their total
// in one journal transaction. The office listing is only a work list: the
// loan is reloaded under a row lock so repayments committed since then are
// kept, and a loan that has left ACTIVE is skipped.
func (s *AccrualService) accrueLoan(ctx context.Context, tenantID uuid.UUID, listed *portfolio.Loan, product *portfolio.LoanProduct, till time.Time) (decimal.Decimal, error) {
	if product.Accounts.InterestReceivable == nil || product.Accounts.InterestIncome == nil {
		return decimal.Zero, shared.NewDomainError("LOAN_PRODUCT_ACCOUNTS_MISSING", "Interest receivable and income accounts are required for periodic accrual")
	}

	var posted *accounting.JournalTransaction
	total := decimal.Zero
	err := s.txScope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
		loan, err := repos.Loans().FindByIDForTenant(ctx, tenantID, listed.ID)
		if err != nil {
			return err
		}
		if loan.Status != portfolio.LoanActive {
			return nil
		}
		accruals := loan.AccrueInterest(till)
		for _, a := range accruals {
			total = total.Add(a.Amount)
		}
		if total.IsPositive() {
			txn, err := ledger.Post(ctx, repos, tenantID, AccrualPosting(loan, product, till, total))
			if err != nil {
				return err
			}
			markJournalled(loan, accruals, txn.ID)
			posted = txn
		}
		return repos.Loans().Save(ctx, loan)
	})
	if err != nil {
		return decimal.Zero, err
	}
	if posted != nil {
		ledger.Publish(ctx, s.eventPublisher, accounting.NewJournalPostedEvent(tenantID, posted))
	}
	return total, nil
}

// AccrualPosting debits interest receivable and credits interest income
func AccrualPosting(loan *portfolio.Loan, product *portfolio.LoanProduct, date time.Time, amount decimal.Decimal) accounting.PostingRequest {
	loanID := loan.ID
	return accounting.PostingRequest{
		OfficeID:        loan.OfficeID,
		Currency:        loan.Terms.Currency,
		TransactionDate: date,
		Debits:          []accounting.Posting{{GLAccountID: *product.Accounts.InterestReceivable, Amount: amount}},
		Credits:         []accounting.Posting{{GLAccountID: *product.Accounts.InterestIncome, Amount: amount}},
		EntityType:      accounting.EntityTypeLoan,
		EntityID:        &loanID,
		ReferenceNumber: loan.AccountNo,
		Description:     "Interest accrual",
	}
}

func markJournalled(loan *portfolio.Loan, accruals []portfolio.LoanTransaction, journalID string) {
	ids := make(map[uuid.UUID]bool, len(accruals))
	for _, a := range accruals {
		ids[a.ID] = true
	}
	for i := range loan.Transactions {
		if ids[loan.Transactions[i].ID] {
			loan.Transactions[i].JournalTransactionID = journalID
		}
	}
}
