package accounting

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fincore/backend/internal/application/ledger"
	"github.com/fincore/backend/internal/domain/accounting"
	"github.com/fincore/backend/internal/domain/portfolio"
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ProvisioningService manages loan-loss provisioning
type ProvisioningService struct {
	txScope          ledger.TransactionScope
	provisioningRepo accounting.ProvisioningRepository
	accountRepo      accounting.GLAccountRepository
	loanRepo         portfolio.LoanRepository
	eventPublisher   shared.EventPublisher
}

// NewProvisioningService creates a new ProvisioningService
func NewProvisioningService(
	txScope ledger.TransactionScope,
	provisioningRepo accounting.ProvisioningRepository,
	accountRepo accounting.GLAccountRepository,
	loanRepo portfolio.LoanRepository,
) *ProvisioningService {
	return &ProvisioningService{
		txScope:          txScope,
		provisioningRepo: provisioningRepo,
		accountRepo:      accountRepo,
		loanRepo:         loanRepo,
	}
}

// SetEventPublisher sets the event publisher for the service
func (s *ProvisioningService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// ---------------------------------------------------------------------------
// Categories
// ---------------------------------------------------------------------------

// CreateCategory adds a category
func (s *ProvisioningService) CreateCategory(ctx context.Context, tenantID uuid.UUID, req ProvisioningCategoryRequest) (*ProvisioningCategoryResponse, error) {
	if err := s.checkCategoryName(ctx, tenantID, req.Name, uuid.Nil); err != nil {
		return nil, err
	}
	category, err := accounting.NewProvisioningCategory(tenantID, req.Name, req.Description)
	if err != nil {
		return nil, err
	}
	if err := s.provisioningRepo.SaveCategory(ctx, category); err != nil {
		return nil, err
	}
	return toCategoryResponse(category), nil
}

// UpdateCategory renames a category
func (s *ProvisioningService) UpdateCategory(ctx context.Context, tenantID, id uuid.UUID, req ProvisioningCategoryRequest) (*ProvisioningCategoryResponse, error) {
	category, err := s.provisioningRepo.FindCategory(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkCategoryName(ctx, tenantID, req.Name, id); err != nil {
		return nil, err
	}
	if err := category.Update(req.Name, req.Description); err != nil {
		return nil, err
	}
	if err := s.provisioningRepo.SaveCategory(ctx, category); err != nil {
		return nil, err
	}
	return toCategoryResponse(category), nil
}

// DeleteCategory removes a category no criteria refers to
func (s *ProvisioningService) DeleteCategory(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.provisioningRepo.FindCategory(ctx, tenantID, id); err != nil {
		return err
	}
	inUse, err := s.provisioningRepo.CategoryInUse(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if inUse {
		return shared.NewDomainError("PROVISIONING_CATEGORY_IN_USE", "Provisioning category is used by provisioning criteria")
	}
	return s.provisioningRepo.DeleteCategory(ctx, tenantID, id)
}

// ListCategories lists the tenant's categories
func (s *ProvisioningService) ListCategories(ctx context.Context, tenantID uuid.UUID) ([]ProvisioningCategoryResponse, error) {
	categories, err := s.provisioningRepo.FindCategories(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	out := make([]ProvisioningCategoryResponse, 0, len(categories))
	for i := range categories {
		out = append(out, *toCategoryResponse(&categories[i]))
	}
	return out, nil
}

func (s *ProvisioningService) checkCategoryName(ctx context.Context, tenantID uuid.UUID, name string, self uuid.UUID) error {
	categories, err := s.provisioningRepo.FindCategories(ctx, tenantID)
	if err != nil {
		return err
	}
	for _, c := range categories {
		if c.ID != self && strings.EqualFold(c.Name, strings.TrimSpace(name)) {
			return shared.NewDomainError("PROVISIONING_CATEGORY_EXISTS", "Provisioning category with this name already exists")
		}
	}
	return nil
}

func toCategoryResponse(c *accounting.ProvisioningCategory) *ProvisioningCategoryResponse {
	return &ProvisioningCategoryResponse{ID: c.ID, Name: c.Name, Description: c.Description}
}

// ---------------------------------------------------------------------------
// Criteria
// ---------------------------------------------------------------------------

// CreateCriteria adds provisioning criteria
func (s *ProvisioningService) CreateCriteria(ctx context.Context, tenantID uuid.UUID, req ProvisioningCriteriaRequest) (*ProvisioningCriteriaResponse, error) {
	criteria, err := accounting.NewProvisioningCriteria(tenantID, req.Name, req.definitions(), req.LoanProductIDs)
	if err != nil {
		return nil, err
	}
	if err := s.checkCriteria(ctx, tenantID, criteria); err != nil {
		return nil, err
	}
	if err := s.provisioningRepo.SaveCriteria(ctx, criteria); err != nil {
		return nil, err
	}
	return ToProvisioningCriteriaResponse(criteria), nil
}

// UpdateCriteria replaces the definitions and products of criteria
func (s *ProvisioningService) UpdateCriteria(ctx context.Context, tenantID, id uuid.UUID, req ProvisioningCriteriaRequest) (*ProvisioningCriteriaResponse, error) {
	criteria, err := s.provisioningRepo.FindCriteria(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := criteria.Update(req.Name, req.definitions(), req.LoanProductIDs); err != nil {
		return nil, err
	}
	if err := s.checkCriteria(ctx, tenantID, criteria); err != nil {
		return nil, err
	}
	if err := s.provisioningRepo.SaveCriteria(ctx, criteria); err != nil {
		return nil, err
	}
	return ToProvisioningCriteriaResponse(criteria), nil
}

// DeleteCriteria removes criteria
func (s *ProvisioningService) DeleteCriteria(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.provisioningRepo.FindCriteria(ctx, tenantID, id); err != nil {
		return err
	}
	return s.provisioningRepo.DeleteCriteria(ctx, tenantID, id)
}

// GetCriteria retrieves criteria
func (s *ProvisioningService) GetCriteria(ctx context.Context, tenantID, id uuid.UUID) (*ProvisioningCriteriaResponse, error) {
	criteria, err := s.provisioningRepo.FindCriteria(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return ToProvisioningCriteriaResponse(criteria), nil
}

// ListCriteria lists every criteria of the tenant
func (s *ProvisioningService) ListCriteria(ctx context.Context, tenantID uuid.UUID) ([]ProvisioningCriteriaResponse, error) {
	all, err := s.provisioningRepo.FindAllCriteria(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	out := make([]ProvisioningCriteriaResponse, 0, len(all))
	for i := range all {
		out = append(out, *ToProvisioningCriteriaResponse(&all[i]))
	}
	return out, nil
}

// checkCriteria verifies categories and accounts exist and that no product
// is already covered by other criteria
func (s *ProvisioningService) checkCriteria(ctx context.Context, tenantID uuid.UUID, criteria *accounting.ProvisioningCriteria) error {
	accountIDs := make([]uuid.UUID, 0, 2*len(criteria.Definitions))
	for _, d := range criteria.Definitions {
		if _, err := s.provisioningRepo.FindCategory(ctx, tenantID, d.CategoryID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError("INVALID_PROVISIONING_CATEGORY", "Provisioning category "+d.CategoryID.String()+" not found")
			}
			return err
		}
		accountIDs = append(accountIDs, d.LiabilityAccountID, d.ExpenseAccountID)
	}
	accounts, err := s.accountRepo.FindByIDs(ctx, tenantID, accountIDs)
	if err != nil {
		return err
	}
	for _, id := range accountIDs {
		acct, ok := accounts[id]
		if !ok {
			return shared.NewDomainError("INVALID_GL_ACCOUNT", "GL account "+id.String()+" not found")
		}
		if acct.Usage != accounting.GLAccountUsageDetail {
			return shared.NewDomainError("GL_ACCOUNT_NOT_DETAIL", "Provisioning can only post to DETAIL accounts: "+acct.GLCode)
		}
	}

	others, err := s.provisioningRepo.FindAllCriteria(ctx, tenantID)
	if err != nil {
		return err
	}
	for i := range others {
		if others[i].ID == criteria.ID {
			continue
		}
		for _, productID := range criteria.LoanProductIDs {
			if others[i].Covers(productID) {
				return shared.NewDomainError("PROVISIONING_PRODUCT_ALREADY_COVERED", "Loan product "+productID.String()+" already belongs to criteria "+others[i].Name)
			}
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Entries
// ---------------------------------------------------------------------------

// CreateEntry computes the reserves for a date, replacing an earlier
// un-journalled entry for the same date
func (s *ProvisioningService) CreateEntry(ctx context.Context, tenantID uuid.UUID, req CreateProvisioningEntryRequest) (*ProvisioningEntryResponse, error) {
	date, err := shared.ParseDateOr(req.Date)
	if err != nil {
		return nil, err
	}
	if shared.IsAfterToday(date) {
		return nil, shared.NewDomainError("PROVISIONING_DATE_IN_FUTURE", "Provisioning entries cannot be created for a future date")
	}

	entry, err := s.provisioningRepo.FindEntryByDate(ctx, tenantID, date)
	switch {
	case err == nil:
	case errors.Is(err, shared.ErrNotFound):
		entry = accounting.NewProvisioningEntry(tenantID, date)
	default:
		return nil, err
	}

	criteria, err := s.provisioningRepo.FindAllCriteria(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	exposures, err := s.exposures(ctx, tenantID, date)
	if err != nil {
		return nil, err
	}
	if err := entry.Replace(accounting.ComputeProvisioningLines(criteria, exposures)); err != nil {
		return nil, err
	}
	if req.CreatedBy != nil {
		entry.SetCreatedBy(*req.CreatedBy)
	}

	posted, err := s.saveEntry(ctx, tenantID, entry, req.CreateJournalEntries, req.CreatedBy)
	if err != nil {
		return nil, err
	}
	s.publishPosted(ctx, tenantID, posted)
	return ToProvisioningEntryResponse(entry), nil
}

// CreateJournalEntries posts an existing entry to the ledger
func (s *ProvisioningService) CreateJournalEntries(ctx context.Context, tenantID, id uuid.UUID, createdBy *uuid.UUID) (*ProvisioningEntryResponse, error) {
	entry, err := s.provisioningRepo.FindEntry(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if entry.JournalEntryCreated {
		return nil, shared.NewDomainError("PROVISIONING_ENTRY_JOURNALLED", "Provisioning entry already has journal entries")
	}
	posted, err := s.saveEntry(ctx, tenantID, entry, true, createdBy)
	if err != nil {
		return nil, err
	}
	s.publishPosted(ctx, tenantID, posted)
	return ToProvisioningEntryResponse(entry), nil
}

func (s *ProvisioningService) saveEntry(ctx context.Context, tenantID uuid.UUID, entry *accounting.ProvisioningEntry, journal bool, createdBy *uuid.UUID) ([]*accounting.JournalTransaction, error) {
	var posted []*accounting.JournalTransaction
	err := s.txScope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
		if journal {
			txns, err := ledger.PostAll(ctx, repos, tenantID, entry.PostingRequests(createdBy))
			if err != nil {
				return err
			}
			ids := make([]string, 0, len(txns))
			for _, t := range txns {
				ids = append(ids, t.ID)
			}
			entry.MarkJournalled(strings.Join(ids, ","))
			posted = txns
		}
		return repos.Provisioning().SaveEntry(ctx, entry)
	})
	return posted, err
}

func (s *ProvisioningService) publishPosted(ctx context.Context, tenantID uuid.UUID, txns []*accounting.JournalTransaction) {
	events := make([]shared.DomainEvent, 0, len(txns))
	for _, t := range txns {
		events = append(events, accounting.NewJournalPostedEvent(tenantID, t))
	}
	ledger.Publish(ctx, s.eventPublisher, events...)
}

// exposures collects the provisioning state of every active loan
func (s *ProvisioningService) exposures(ctx context.Context, tenantID uuid.UUID, date time.Time) ([]accounting.LoanExposure, error) {
	officeIDs, err := s.loanRepo.FindActiveOfficeIDs(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	var out []accounting.LoanExposure
	for _, officeID := range officeIDs {
		loans, err := s.loanRepo.FindActiveByOffice(ctx, tenantID, officeID)
		if err != nil {
			return nil, err
		}
		for i := range loans {
			out = append(out, ExposureOf(&loans[i], date))
		}
	}
	return out, nil
}

// ExposureOf reduces a loan to what provisioning needs
func ExposureOf(l *portfolio.Loan, date time.Time) accounting.LoanExposure {
	return accounting.LoanExposure{
		LoanID:               l.ID,
		OfficeID:             l.OfficeID,
		ProductID:            l.ProductID,
		Currency:             l.Terms.Currency,
		Digits:               l.Terms.Digits,
		OutstandingPrincipal: l.PrincipalOutstanding(),
		DaysOverdue:          l.DaysOverdue(date),
	}
}

// GetEntry retrieves an entry with its lines
func (s *ProvisioningService) GetEntry(ctx context.Context, tenantID, id uuid.UUID) (*ProvisioningEntryResponse, error) {
	entry, err := s.provisioningRepo.FindEntry(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return ToProvisioningEntryResponse(entry), nil
}

// ListEntries lists entries newest first
func (s *ProvisioningService) ListEntries(ctx context.Context, tenantID uuid.UUID, page, pageSize int) ([]ProvisioningEntryResponse, int64, error) {
	entries, total, err := s.provisioningRepo.FindEntries(ctx, tenantID, shared.Filter{Page: page, PageSize: pageSize})
	if err != nil {
		return nil, 0, err
	}
	out := make([]ProvisioningEntryResponse, 0, len(entries))
	for i := range entries {
		out = append(out, *ToProvisioningEntryResponse(&entries[i]))
	}
	return out, total, nil
}
