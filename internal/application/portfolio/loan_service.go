package portfolio

import (
	"context"
	"fmt"
	"time"

	"github.com/fincore/backend/internal/application/ledger"
	"github.com/fincore/backend/internal/domain/organisation"
	"github.com/fincore/backend/internal/domain/portfolio"
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LoanService runs the loan lifecycle and its ledger postings
type LoanService struct {
	txScope        ledger.TransactionScope
	loanRepo       portfolio.LoanRepository
	productRepo    portfolio.LoanProductRepository
	clientRepo     portfolio.ClientRepository
	groupRepo      portfolio.GroupRepository
	staffRepo      organisation.StaffRepository
	schedules      *scheduleContextBuilder
	renderer       DocumentRenderer
	logger         *zap.Logger
	eventPublisher shared.EventPublisher
}

// LoanServiceDeps bundles the collaborators of LoanService
type LoanServiceDeps struct {
	TxScope      ledger.TransactionScope
	LoanRepo     portfolio.LoanRepository
	ProductRepo  portfolio.LoanProductRepository
	ClientRepo   portfolio.ClientRepository
	GroupRepo    portfolio.GroupRepository
	StaffRepo    organisation.StaffRepository
	CalendarRepo portfolio.CalendarRepository
	HolidayRepo  organisation.HolidayRepository
	WorkingDays  WorkingDaysProvider
	Renderer     DocumentRenderer
	Logger       *zap.Logger
}

// NewLoanService creates a new LoanService
func NewLoanService(deps LoanServiceDeps) *LoanService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoanService{
		txScope:     deps.TxScope,
		loanRepo:    deps.LoanRepo,
		productRepo: deps.ProductRepo,
		clientRepo:  deps.ClientRepo,
		groupRepo:   deps.GroupRepo,
		staffRepo:   deps.StaffRepo,
		schedules: &scheduleContextBuilder{
			workingDays:  deps.WorkingDays,
			holidayRepo:  deps.HolidayRepo,
			calendarRepo: deps.CalendarRepo,
		},
		renderer: deps.Renderer,
		logger:   logger,
	}
}

// SetEventPublisher sets the event publisher for the service
func (s *LoanService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// =============================================================================
// Applications
// =============================================================================

// application resolves the product and borrower of a request into a
// domain application and the schedule context it is generated in
func (s *LoanService) application(ctx context.Context, tenantID uuid.UUID, req LoanApplicationRequest) (*portfolio.LoanProduct, portfolio.LoanApplication, portfolio.ScheduleContext, error) {
	var app portfolio.LoanApplication
	var sctx portfolio.ScheduleContext

	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, req.ProductID)
	if err != nil {
		return nil, app, sctx, err
	}
	officeID, err := s.borrowerOffice(ctx, tenantID, req.ClientID, req.GroupID)
	if err != nil {
		return nil, app, sctx, err
	}
	if req.LoanOfficerID != nil {
		staff, err := s.staffRepo.FindByIDForTenant(ctx, tenantID, *req.LoanOfficerID)
		if err != nil {
			return nil, app, sctx, err
		}
		if !staff.CanServeLoans() {
			return nil, app, sctx, shared.NewDomainError("STAFF_NOT_LOAN_OFFICER", "Staff member is not an active loan officer")
		}
	}

	submitted, err := shared.ParseDateOr(req.SubmittedOn)
	if err != nil {
		return nil, app, sctx, err
	}
	expected, err := shared.ParseDate(req.ExpectedDisbursementDate)
	if err != nil {
		return nil, app, sctx, err
	}
	firstRepayment, err := shared.ParseOptionalDate(&req.RepaymentsStartingFrom)
	if err != nil {
		return nil, app, sctx, err
	}
	terms := req.Terms.over(product.Defaults)
	tranches := make([]portfolio.Disbursement, 0, len(req.Tranches))
	for _, t := range req.Tranches {
		d, err := shared.ParseDate(t.ExpectedDate)
		if err != nil {
			return nil, app, sctx, err
		}
		tranches = append(tranches, portfolio.Disbursement{ExpectedDate: d, Principal: t.Principal})
	}

	app = portfolio.LoanApplication{
		ClientID:                 req.ClientID,
		GroupID:                  req.GroupID,
		OfficeID:                 officeID,
		LoanOfficerID:            req.LoanOfficerID,
		CalendarID:               req.SyncWithMeeting,
		ExternalID:               req.ExternalID,
		Terms:                    terms,
		SubmittedOn:              submitted,
		ExpectedDisbursementDate: expected,
		FirstRepaymentOn:         firstRepayment,
		Tranches:                 tranches,
	}
	sctx, err = s.schedules.build(ctx, tenantID, officeID, expected, req.SyncWithMeeting)
	if err != nil {
		return nil, app, sctx, err
	}
	return product, app, sctx, nil
}

// borrowerOffice checks the borrower is active and returns its office.
// A client borrowing within a group must be a member of it.
func (s *LoanService) borrowerOffice(ctx context.Context, tenantID uuid.UUID, clientID, groupID *uuid.UUID) (uuid.UUID, error) {
	if clientID == nil && groupID == nil {
		return uuid.Nil, shared.NewDomainError("LOAN_BORROWER_REQUIRED", "A loan needs a client, a group, or both")
	}
	var officeID uuid.UUID
	if groupID != nil {
		group, err := s.groupRepo.FindByIDForTenant(ctx, tenantID, *groupID)
		if err != nil {
			return uuid.Nil, err
		}
		if group.IsCenter() {
			return uuid.Nil, shared.NewDomainError("LOAN_BORROWER_INVALID", "Centers cannot borrow")
		}
		if group.Status != portfolio.GroupStatusActive {
			return uuid.Nil, shared.NewDomainError("GROUP_NOT_ACTIVE", "Group is not active")
		}
		if clientID != nil && !group.HasClient(*clientID) {
			return uuid.Nil, shared.NewDomainError("CLIENT_NOT_MEMBER", "Client is not a member of the group")
		}
		officeID = group.OfficeID
	}
	if clientID != nil {
		client, err := s.clientRepo.FindByIDForTenant(ctx, tenantID, *clientID)
		if err != nil {
			return uuid.Nil, err
		}
		if client.Status != portfolio.ClientStatusActive {
			return uuid.Nil, shared.NewDomainError("CLIENT_NOT_ACTIVE", "Client is not active")
		}
		officeID = client.OfficeID
	}
	return officeID, nil
}

// CalculateSchedule previews the repayment schedule of an application
// without saving anything
func (s *LoanService) CalculateSchedule(ctx context.Context, tenantID uuid.UUID, req LoanApplicationRequest) (*ScheduleResponse, error) {
	product, app, sctx, err := s.application(ctx, tenantID, req)
	if err != nil {
		return nil, err
	}
	preview, err := portfolio.SubmitLoan(tenantID, "", product, app, sctx)
	if err != nil {
		return nil, err
	}
	return toScheduleResponse(preview.Terms.Currency, preview.Installments), nil
}

// Submit records a loan application with its proposed schedule
func (s *LoanService) Submit(ctx context.Context, tenantID uuid.UUID, req LoanApplicationRequest) (*LoanResponse, error) {
	product, app, sctx, err := s.application(ctx, tenantID, req)
	if err != nil {
		return nil, err
	}
	accountNo, err := s.loanRepo.GenerateAccountNo(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate loan account number: %w", err)
	}
	loan, err := portfolio.SubmitLoan(tenantID, accountNo, product, app, sctx)
	if err != nil {
		return nil, err
	}
	if err := s.loanRepo.Save(ctx, loan); err != nil {
		return nil, err
	}
	ledger.Publish(ctx, s.eventPublisher, loanEvents(loan)...)
	s.logger.Info("Loan submitted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("loan_id", loan.ID.String()),
		zap.String("account_no", loan.AccountNo),
	)
	return ToLoanResponse(loan, true), nil
}

// Modify replaces a pending application
func (s *LoanService) Modify(ctx context.Context, tenantID, id uuid.UUID, req LoanApplicationRequest) (*LoanResponse, error) {
	loan, err := s.loanRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	product, app, sctx, err := s.application(ctx, tenantID, req)
	if err != nil {
		return nil, err
	}
	if product.ID != loan.ProductID {
		return nil, shared.NewDomainError("LOAN_PRODUCT_IMMUTABLE", "The product of a loan cannot change")
	}
	if err := loan.ModifyApplication(product, app, sctx); err != nil {
		return nil, err
	}
	if err := s.loanRepo.Save(ctx, loan); err != nil {
		return nil, err
	}
	return ToLoanResponse(loan, true), nil
}

// =============================================================================
// Lifecycle
// =============================================================================

// Approve approves a pending loan, optionally for a smaller principal
func (s *LoanService) Approve(ctx context.Context, tenantID, id uuid.UUID, req LoanActionRequest) (*LoanResponse, error) {
	date, err := shared.ParseDateOr(req.Date)
	if err != nil {
		return nil, err
	}
	return s.change(ctx, tenantID, id, func(loan *portfolio.Loan) error {
		sctx, err := s.schedules.forLoan(ctx, loan)
		if err != nil {
			return err
		}
		return loan.Approve(date, req.ApprovedPrincipal, sctx)
	})
}

// UndoApproval returns an approved loan to pending
func (s *LoanService) UndoApproval(ctx context.Context, tenantID, id uuid.UUID) (*LoanResponse, error) {
	return s.change(ctx, tenantID, id, func(loan *portfolio.Loan) error {
		return loan.UndoApproval()
	})
}

// Reject rejects a pending loan
func (s *LoanService) Reject(ctx context.Context, tenantID, id uuid.UUID, req LoanActionRequest) (*LoanResponse, error) {
	date, err := shared.ParseDateOr(req.Date)
	if err != nil {
		return nil, err
	}
	return s.change(ctx, tenantID, id, func(loan *portfolio.Loan) error {
		return loan.Reject(date)
	})
}

// Withdraw records the borrower withdrawing a pending loan
func (s *LoanService) Withdraw(ctx context.Context, tenantID, id uuid.UUID, req LoanActionRequest) (*LoanResponse, error) {
	date, err := shared.ParseDateOr(req.Date)
	if err != nil {
		return nil, err
	}
	return s.change(ctx, tenantID, id, func(loan *portfolio.Loan) error {
		return loan.Withdraw(date)
	})
}

// change applies a ledger-free transition and saves the loan
func (s *LoanService) change(ctx context.Context, tenantID, id uuid.UUID, fn func(*portfolio.Loan) error) (*LoanResponse, error) {
	loan, err := s.loanRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := fn(loan); err != nil {
		return nil, err
	}
	if err := s.loanRepo.Save(ctx, loan); err != nil {
		return nil, err
	}
	ledger.Publish(ctx, s.eventPublisher, loanEvents(loan)...)
	return ToLoanResponse(loan, true), nil
}

// =============================================================================
// Money movements
// =============================================================================

// moneyOp changes a loan inside a unit of work. It returns the loan
// transactions to post and those whose journals must be reversed.
type moneyOp func(loan *portfolio.Loan, sctx portfolio.ScheduleContext) (post []*portfolio.LoanTransaction, reverse []portfolio.LoanTransaction, err error)

// move loads the loan and its product, applies op and writes the loan and
// its journals in one transaction. Events are published after commit.
func (s *LoanService) move(ctx context.Context, tenantID, id uuid.UUID, createdBy *uuid.UUID, op moneyOp) (*portfolio.Loan, []*portfolio.LoanTransaction, error) {
	current, err := s.loanRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, nil, err
	}
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, current.ProductID)
	if err != nil {
		return nil, nil, err
	}
	sctx, err := s.schedules.forLoan(ctx, current)
	if err != nil {
		return nil, nil, err
	}

	var loan *portfolio.Loan
	var posted []*portfolio.LoanTransaction
	journal := &loanJournal{}
	err = s.txScope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
		var err error
		loan, err = repos.Loans().FindByIDForTenant(ctx, tenantID, id)
		if err != nil {
			return err
		}
		toPost, toReverse, err := op(loan, sctx)
		if err != nil {
			return err
		}
		if err := journal.reverse(ctx, repos, loan, toReverse, shared.Today(), createdBy); err != nil {
			return err
		}
		for _, txn := range toPost {
			if err := journal.post(ctx, repos, loan, product, txn, createdBy); err != nil {
				return err
			}
		}
		posted = toPost
		return repos.Loans().Save(ctx, loan)
	})
	if err != nil {
		return nil, nil, err
	}
	ledger.Publish(ctx, s.eventPublisher, append(loanEvents(loan), journal.events...)...)
	return loan, posted, nil
}

func (s *LoanService) moveOne(ctx context.Context, tenantID, id uuid.UUID, createdBy *uuid.UUID, op moneyOp) (*LoanTransactionResponse, error) {
	_, posted, err := s.move(ctx, tenantID, id, createdBy, op)
	if err != nil {
		return nil, err
	}
	if len(posted) == 0 {
		return nil, nil
	}
	return ToLoanTransactionResponse(posted[0]), nil
}

// Disburse pays out the next tranche, or the whole loan
func (s *LoanService) Disburse(ctx context.Context, tenantID, id uuid.UUID, req LoanActionRequest) (*LoanResponse, error) {
	date, err := shared.ParseDateOr(req.Date)
	if err != nil {
		return nil, err
	}
	loan, _, err := s.move(ctx, tenantID, id, req.CreatedBy, func(loan *portfolio.Loan, sctx portfolio.ScheduleContext) ([]*portfolio.LoanTransaction, []portfolio.LoanTransaction, error) {
		txn, err := loan.Disburse(date, sctx)
		if err != nil {
			return nil, nil, err
		}
		return []*portfolio.LoanTransaction{txn}, nil, nil
	})
	if err != nil {
		return nil, err
	}
	return ToLoanResponse(loan, true), nil
}

// UndoDisbursal reverses every disbursement of a loan without repayments
func (s *LoanService) UndoDisbursal(ctx context.Context, tenantID, id uuid.UUID, req LoanActionRequest) (*LoanResponse, error) {
	loan, _, err := s.move(ctx, tenantID, id, req.CreatedBy, func(loan *portfolio.Loan, sctx portfolio.ScheduleContext) ([]*portfolio.LoanTransaction, []portfolio.LoanTransaction, error) {
		reversed, err := loan.UndoDisbursal(sctx)
		return nil, reversed, err
	})
	if err != nil {
		return nil, err
	}
	return ToLoanResponse(loan, true), nil
}

// MakeRepayment records a repayment
func (s *LoanService) MakeRepayment(ctx context.Context, tenantID, id uuid.UUID, req LoanTransactionRequest) (*LoanTransactionResponse, error) {
	date, err := shared.ParseDateOr(req.Date)
	if err != nil {
		return nil, err
	}
	return s.moveOne(ctx, tenantID, id, req.CreatedBy, func(loan *portfolio.Loan, _ portfolio.ScheduleContext) ([]*portfolio.LoanTransaction, []portfolio.LoanTransaction, error) {
		txn, err := loan.MakeRepayment(date, req.Amount, req.ReceiptNumber, req.Note)
		if err != nil {
			return nil, nil, err
		}
		return []*portfolio.LoanTransaction{txn}, nil, nil
	})
}

// WaiveInterest forgives outstanding interest
func (s *LoanService) WaiveInterest(ctx context.Context, tenantID, id uuid.UUID, req LoanTransactionRequest) (*LoanTransactionResponse, error) {
	date, err := shared.ParseDateOr(req.Date)
	if err != nil {
		return nil, err
	}
	return s.moveOne(ctx, tenantID, id, req.CreatedBy, func(loan *portfolio.Loan, _ portfolio.ScheduleContext) ([]*portfolio.LoanTransaction, []portfolio.LoanTransaction, error) {
		txn, err := loan.WaiveInterest(date, req.Amount, req.Note)
		if err != nil {
			return nil, nil, err
		}
		return []*portfolio.LoanTransaction{txn}, nil, nil
	})
}

// WriteOff writes off everything outstanding and closes the loan
func (s *LoanService) WriteOff(ctx context.Context, tenantID, id uuid.UUID, req LoanActionRequest) (*LoanTransactionResponse, error) {
	date, err := shared.ParseDateOr(req.Date)
	if err != nil {
		return nil, err
	}
	return s.moveOne(ctx, tenantID, id, req.CreatedBy, func(loan *portfolio.Loan, _ portfolio.ScheduleContext) ([]*portfolio.LoanTransaction, []portfolio.LoanTransaction, error) {
		txn, err := loan.WriteOff(date, req.Note)
		if err != nil {
			return nil, nil, err
		}
		return []*portfolio.LoanTransaction{txn}, nil, nil
	})
}

// ReverseTransaction undoes a repayment or waiver and its journal
func (s *LoanService) ReverseTransaction(ctx context.Context, tenantID, id, txnID uuid.UUID, createdBy *uuid.UUID) (*LoanTransactionResponse, error) {
	var reversed *portfolio.LoanTransaction
	_, _, err := s.move(ctx, tenantID, id, createdBy, func(loan *portfolio.Loan, sctx portfolio.ScheduleContext) ([]*portfolio.LoanTransaction, []portfolio.LoanTransaction, error) {
		txn, err := loan.ReverseTransaction(txnID, sctx)
		if err != nil {
			return nil, nil, err
		}
		reversed = txn
		return nil, []portfolio.LoanTransaction{*txn}, nil
	})
	if err != nil {
		return nil, err
	}
	return ToLoanTransactionResponse(reversed), nil
}

// =============================================================================
// Queries
// =============================================================================

// GetByID retrieves a loan with its schedule and transactions
func (s *LoanService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*LoanResponse, error) {
	loan, err := s.loanRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return ToLoanResponse(loan, true), nil
}

// List retrieves loans without their schedules
func (s *LoanService) List(ctx context.Context, tenantID uuid.UUID, filter LoanListFilter) ([]LoanResponse, int64, error) {
	domainFilter := portfolio.LoanFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  "submitted_on",
			OrderDir: "desc",
			Search:   filter.Search,
		},
		OfficeID:  filter.OfficeID,
		ClientID:  filter.ClientID,
		GroupID:   filter.GroupID,
		ProductID: filter.ProductID,
	}
	if filter.Status != "" {
		status := portfolio.LoanStatus(filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_STATUS", "Invalid loan status: "+filter.Status)
		}
		domainFilter.Statuses = []portfolio.LoanStatus{status}
	}
	loans, total, err := s.loanRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]LoanResponse, 0, len(loans))
	for i := range loans {
		out = append(out, *ToLoanResponse(&loans[i], false))
	}
	return out, total, nil
}

// scheduleDocument is the data the loan schedule template renders
type scheduleDocument struct {
	Loan        *LoanResponse
	Borrower    string
	ProductName string
	GeneratedAt time.Time
}

// SchedulePDF renders the repayment schedule of a loan
func (s *LoanService) SchedulePDF(ctx context.Context, tenantID, id uuid.UUID) ([]byte, string, error) {
	if s.renderer == nil {
		return nil, "", shared.NewDomainError("PDF_UNAVAILABLE", "PDF rendering is not configured")
	}
	loan, err := s.loanRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, "", err
	}
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, loan.ProductID)
	if err != nil {
		return nil, "", err
	}
	doc := scheduleDocument{Loan: ToLoanResponse(loan, true), ProductName: product.Name, GeneratedAt: time.Now()}
	if loan.ClientID != nil {
		client, err := s.clientRepo.FindByIDForTenant(ctx, tenantID, *loan.ClientID)
		if err != nil {
			return nil, "", err
		}
		doc.Borrower = client.DisplayName()
	} else if loan.GroupID != nil {
		group, err := s.groupRepo.FindByIDForTenant(ctx, tenantID, *loan.GroupID)
		if err != nil {
			return nil, "", err
		}
		doc.Borrower = group.Name
	}
	pdf, err := s.renderer.RenderPDF(ctx, TemplateLoanSchedule, doc)
	if err != nil {
		return nil, "", fmt.Errorf("failed to render loan schedule: %w", err)
	}
	return pdf, loan.AccountNo + "-schedule.pdf", nil
}

// =============================================================================
// Rescheduling
// =============================================================================

// RescheduleOffices regenerates the schedules of every open loan in the
// given offices after their holidays changed. A loan that fails to
// regenerate is logged and skipped.
func (s *LoanService) RescheduleOffices(ctx context.Context, tenantID uuid.UUID, officeIDs []uuid.UUID) (int, error) {
	ids, err := s.loanRepo.FindOpenIDsByOffices(ctx, tenantID, officeIDs)
	if err != nil {
		return 0, err
	}
	rescheduled := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return rescheduled, err
		}
		if err := s.reschedule(ctx, tenantID, id); err != nil {
			s.logger.Warn("Failed to regenerate loan schedule",
				zap.String("loan_id", id.String()),
				zap.Error(err),
			)
			continue
		}
		rescheduled++
	}
	return rescheduled, nil
}

func (s *LoanService) reschedule(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.txScope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
		loan, err := repos.Loans().FindByIDForTenant(ctx, tenantID, id)
		if err != nil {
			return err
		}
		sctx, err := s.schedules.forLoan(ctx, loan)
		if err != nil {
			return err
		}
		if err := loan.RegenerateSchedule(sctx); err != nil {
			return err
		}
		return repos.Loans().Save(ctx, loan)
	})
}
