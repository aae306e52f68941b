package portfolio

import (
	"context"
	"fmt"
	"time"

	"github.com/fincore/backend/internal/application/ledger"
	"github.com/fincore/backend/internal/domain/portfolio"
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CollectionSheetService builds collection sheets for group meetings and
// records what field staff collected
type CollectionSheetService struct {
	txScope        ledger.TransactionScope
	groupRepo      portfolio.GroupRepository
	calendarRepo   portfolio.CalendarRepository
	meetingRepo    portfolio.MeetingRepository
	clientRepo     portfolio.ClientRepository
	loanRepo       portfolio.LoanRepository
	productRepo    portfolio.LoanProductRepository
	renderer       DocumentRenderer
	logger         *zap.Logger
	eventPublisher shared.EventPublisher
}

// CollectionSheetServiceDeps bundles the collaborators of CollectionSheetService
type CollectionSheetServiceDeps struct {
	TxScope      ledger.TransactionScope
	GroupRepo    portfolio.GroupRepository
	CalendarRepo portfolio.CalendarRepository
	MeetingRepo  portfolio.MeetingRepository
	ClientRepo   portfolio.ClientRepository
	LoanRepo     portfolio.LoanRepository
	ProductRepo  portfolio.LoanProductRepository
	Renderer     DocumentRenderer
	Logger       *zap.Logger
}

// NewCollectionSheetService creates a new CollectionSheetService
func NewCollectionSheetService(deps CollectionSheetServiceDeps) *CollectionSheetService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CollectionSheetService{
		txScope:      deps.TxScope,
		groupRepo:    deps.GroupRepo,
		calendarRepo: deps.CalendarRepo,
		meetingRepo:  deps.MeetingRepo,
		clientRepo:   deps.ClientRepo,
		loanRepo:     deps.LoanRepo,
		productRepo:  deps.ProductRepo,
		renderer:     deps.Renderer,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for the service
func (s *CollectionSheetService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// build assembles the sheet of an entity on a meeting date
func (s *CollectionSheetService) build(ctx context.Context, tenantID uuid.UUID, req CollectionSheetRequest) (*portfolio.CollectionSheet, *meetingSlot, time.Time, error) {
	date, err := shared.ParseDate(req.MeetingDate)
	if err != nil {
		return nil, nil, date, err
	}
	slot, err := loadMeetingSlot(ctx, s.groupRepo, s.calendarRepo, tenantID, req.EntityType, req.EntityID)
	if err != nil {
		return nil, nil, date, err
	}

	clientIDs := make([]uuid.UUID, 0)
	groupIDs := make([]uuid.UUID, 0, len(slot.groups))
	for _, g := range slot.groups {
		groupIDs = append(groupIDs, g.ID)
		clientIDs = append(clientIDs, g.ClientIDs...)
	}
	clients, err := s.clientRepo.FindByIDs(ctx, tenantID, clientIDs)
	if err != nil {
		return nil, nil, date, err
	}
	loans, err := s.loanRepo.FindActiveByBorrowers(ctx, tenantID, clientIDs, groupIDs)
	if err != nil {
		return nil, nil, date, err
	}
	meeting, err := s.meetingRepo.FindByInstanceAndDate(ctx, tenantID, slot.instance.ID, date)
	if err != nil && !shared.IsNotFound(err) {
		return nil, nil, date, err
	}

	sheet := portfolio.BuildCollectionSheet(portfolio.CollectionSheetInput{
		Entity:  slot.entity,
		Groups:  slot.groups,
		Clients: clients,
		Loans:   loans,
		Meeting: meeting,
		Date:    date,
	})
	return sheet, slot, date, nil
}

// Generate returns the dues of every active loan of a center or group as
// of a meeting date
func (s *CollectionSheetService) Generate(ctx context.Context, tenantID uuid.UUID, req CollectionSheetRequest) (*CollectionSheetResponse, error) {
	sheet, _, _, err := s.build(ctx, tenantID, req)
	if err != nil {
		return nil, err
	}
	return ToCollectionSheetResponse(sheet), nil
}

// Save records the meeting, its attendance and every collected repayment.
// Nothing is saved unless all of it succeeds.
func (s *CollectionSheetService) Save(ctx context.Context, tenantID uuid.UUID, req SaveCollectionSheetRequest) (*SaveCollectionSheetResponse, error) {
	sheet, slot, date, err := s.build(ctx, tenantID, req.CollectionSheetRequest)
	if err != nil {
		return nil, err
	}
	attendance := attendanceRows(req.Attendance)
	repayments := make([]portfolio.SheetRepayment, 0, len(req.Repayments))
	for _, r := range req.Repayments {
		repayments = append(repayments, portfolio.SheetRepayment{LoanID: r.LoanID, Amount: r.Amount, ReceiptNumber: r.ReceiptNumber})
	}
	if err := sheet.ValidateSubmission(repayments, attendance); err != nil {
		return nil, err
	}

	products := make(map[uuid.UUID]*portfolio.LoanProduct)
	journal := &loanJournal{}
	var events []shared.DomainEvent
	resp := &SaveCollectionSheetResponse{Transactions: []LoanTransactionResponse{}}

	err = s.txScope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
		meeting, err := newMeeting(ctx, repos.Meetings(), slot, date, attendance)
		if err != nil {
			return err
		}
		if err := repos.Meetings().Save(ctx, meeting); err != nil {
			return err
		}
		resp.MeetingID = meeting.ID

		for _, r := range repayments {
			if !r.Amount.IsPositive() {
				continue
			}
			loan, err := repos.Loans().FindByIDForTenant(ctx, tenantID, r.LoanID)
			if err != nil {
				return err
			}
			product, ok := products[loan.ProductID]
			if !ok {
				product, err = s.productRepo.FindByIDForTenant(ctx, tenantID, loan.ProductID)
				if err != nil {
					return err
				}
				products[loan.ProductID] = product
			}
			txn, err := loan.MakeRepayment(date, r.Amount, r.ReceiptNumber, req.Note)
			if err != nil {
				return fmt.Errorf("loan %s: %w", loan.AccountNo, err)
			}
			if err := journal.post(ctx, repos, loan, product, txn, req.CreatedBy); err != nil {
				return err
			}
			if err := repos.Loans().Save(ctx, loan); err != nil {
				return err
			}
			events = append(events, loanEvents(loan)...)
			resp.Transactions = append(resp.Transactions, *ToLoanTransactionResponse(txn))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ledger.Publish(ctx, s.eventPublisher, append(events, journal.events...)...)
	s.logger.Info("Collection sheet saved",
		zap.String("tenant_id", tenantID.String()),
		zap.String("entity_id", req.EntityID.String()),
		zap.String("meeting_date", date.Format(shared.DateLayout)),
		zap.Int("repayments", len(resp.Transactions)),
	)
	return resp, nil
}

// PDF renders a collection sheet for printing
func (s *CollectionSheetService) PDF(ctx context.Context, tenantID uuid.UUID, req CollectionSheetRequest) ([]byte, string, error) {
	if s.renderer == nil {
		return nil, "", shared.NewDomainError("PDF_UNAVAILABLE", "PDF rendering is not configured")
	}
	sheet, _, date, err := s.build(ctx, tenantID, req)
	if err != nil {
		return nil, "", err
	}
	pdf, err := s.renderer.RenderPDF(ctx, TemplateCollectionSheet, ToCollectionSheetResponse(sheet))
	if err != nil {
		return nil, "", fmt.Errorf("failed to render collection sheet: %w", err)
	}
	return pdf, "collection-sheet-" + date.Format(shared.DateLayout) + ".pdf", nil
}
