package accounting

import (
	"context"
	"errors"
	"sort"

	"github.com/fincore/backend/internal/domain/accounting"
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// GLAccountService manages the chart of accounts
type GLAccountService struct {
	accountRepo accounting.GLAccountRepository
	journalRepo accounting.JournalEntryRepository
}

// NewGLAccountService creates a new GLAccountService
func NewGLAccountService(
	accountRepo accounting.GLAccountRepository,
	journalRepo accounting.JournalEntryRepository,
) *GLAccountService {
	return &GLAccountService{
		accountRepo: accountRepo,
		journalRepo: journalRepo,
	}
}

// Create adds an account to the chart
func (s *GLAccountService) Create(ctx context.Context, tenantID uuid.UUID, req GLAccountRequest) (*GLAccountResponse, error) {
	exists, err := s.accountRepo.ExistsByGLCode(ctx, tenantID, req.GLCode, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("GL_CODE_EXISTS", "GL account with this code already exists")
	}

	parent, err := s.loadParent(ctx, tenantID, req.ParentID)
	if err != nil {
		return nil, err
	}

	account, err := accounting.NewGLAccount(tenantID, req.input(), parent)
	if err != nil {
		return nil, err
	}
	account.Disabled = req.Disabled

	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}
	return ToGLAccountResponse(account), nil
}

// Update changes an account. Moving an account rewrites the hierarchy of
// its descendants.
func (s *GLAccountService) Update(ctx context.Context, tenantID, id uuid.UUID, req GLAccountRequest) (*GLAccountResponse, error) {
	account, err := s.accountRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if req.GLCode != account.GLCode {
		exists, err := s.accountRepo.ExistsByGLCode(ctx, tenantID, req.GLCode, &id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("GL_CODE_EXISTS", "GL account with this code already exists")
		}
	}

	parent, err := s.loadParent(ctx, tenantID, req.ParentID)
	if err != nil {
		return nil, err
	}
	hasChildren, err := s.accountRepo.HasChildren(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	hasEntries, err := s.journalRepo.ExistsForAccount(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	oldHierarchy, err := account.Update(req.input(), parent, hasChildren, hasEntries)
	if err != nil {
		return nil, err
	}
	account.SetDisabled(req.Disabled)

	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}
	if hasChildren && oldHierarchy != account.Hierarchy {
		if err := s.accountRepo.RewriteHierarchy(ctx, tenantID, oldHierarchy, account.Hierarchy); err != nil {
			return nil, err
		}
	}
	return ToGLAccountResponse(account), nil
}

// Delete removes an account without children or journal entries
func (s *GLAccountService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	account, err := s.accountRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return err
	}
	hasChildren, err := s.accountRepo.HasChildren(ctx, tenantID, id)
	if err != nil {
		return err
	}
	hasEntries, err := s.journalRepo.ExistsForAccount(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := account.CheckDeletable(hasChildren, hasEntries); err != nil {
		return err
	}
	return s.accountRepo.Delete(ctx, tenantID, id)
}

// GetByID retrieves an account
func (s *GLAccountService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*GLAccountResponse, error) {
	account, err := s.accountRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return ToGLAccountResponse(account), nil
}

// List retrieves accounts matching the filter
func (s *GLAccountService) List(ctx context.Context, tenantID uuid.UUID, filter GLAccountListFilter) ([]GLAccountResponse, int64, error) {
	domainFilter := accounting.GLAccountFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  "gl_code",
			OrderDir: "asc",
			Search:   filter.Search,
		},
		Disabled:             filter.Disabled,
		ManualEntriesAllowed: filter.ManualEntriesAllowed,
		Tag:                  filter.Tag,
	}
	if filter.Type != "" {
		t := accounting.GLAccountType(filter.Type)
		domainFilter.Type = &t
	}
	if filter.Usage != "" {
		u := accounting.GLAccountUsage(filter.Usage)
		domainFilter.Usage = &u
	}

	accounts, total, err := s.accountRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]GLAccountResponse, 0, len(accounts))
	for i := range accounts {
		out = append(out, *ToGLAccountResponse(&accounts[i]))
	}
	return out, total, nil
}

// Tree returns the chart of accounts as nested nodes ordered by GL code
func (s *GLAccountService) Tree(ctx context.Context, tenantID uuid.UUID) ([]*GLAccountResponse, error) {
	var all []accounting.GLAccount
	filter := accounting.GLAccountFilter{Filter: shared.Filter{Page: 1, PageSize: 200, OrderBy: "gl_code", OrderDir: "asc"}}
	for {
		page, total, err := s.accountRepo.FindAllForTenant(ctx, tenantID, filter)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) == 0 || int64(len(all)) >= total {
			break
		}
		filter.Page++
	}
	return buildTree(all), nil
}

func buildTree(accounts []accounting.GLAccount) []*GLAccountResponse {
	nodes := make(map[uuid.UUID]*GLAccountResponse, len(accounts))
	for i := range accounts {
		nodes[accounts[i].ID] = ToGLAccountResponse(&accounts[i])
	}
	var roots []*GLAccountResponse
	for i := range accounts {
		node := nodes[accounts[i].ID]
		if p := accounts[i].ParentID; p != nil {
			if parent, ok := nodes[*p]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	sortNodes(roots)
	return roots
}

func sortNodes(nodes []*GLAccountResponse) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].GLCode < nodes[j].GLCode })
	for _, n := range nodes {
		sortNodes(n.Children)
	}
}

func (s *GLAccountService) loadParent(ctx context.Context, tenantID uuid.UUID, parentID *uuid.UUID) (*accounting.GLAccount, error) {
	if parentID == nil {
		return nil, nil
	}
	parent, err := s.accountRepo.FindByIDForTenant(ctx, tenantID, *parentID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_PARENT", "Parent GL account not found")
		}
		return nil, err
	}
	return parent, nil
}
