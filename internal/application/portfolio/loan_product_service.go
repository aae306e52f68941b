package portfolio

import (
	"context"

	"github.com/fincore/backend/internal/domain/accounting"
	"github.com/fincore/backend/internal/domain/portfolio"
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// LoanProductService manages loan products
type LoanProductService struct {
	productRepo portfolio.LoanProductRepository
	accountRepo accounting.GLAccountRepository
}

// NewLoanProductService creates a new LoanProductService
func NewLoanProductService(productRepo portfolio.LoanProductRepository, accountRepo accounting.GLAccountRepository) *LoanProductService {
	return &LoanProductService{productRepo: productRepo, accountRepo: accountRepo}
}

// Create defines a loan product
func (s *LoanProductService) Create(ctx context.Context, tenantID uuid.UUID, req LoanProductRequest) (*LoanProductResponse, error) {
	if err := s.checkName(ctx, tenantID, req.Name, nil); err != nil {
		return nil, err
	}
	in := req.input()
	if err := s.checkAccounts(ctx, tenantID, in); err != nil {
		return nil, err
	}
	product, err := portfolio.NewLoanProduct(tenantID, in)
	if err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	return ToLoanProductResponse(product), nil
}

// Update replaces a product definition. Existing loans keep the terms
// they were created with.
func (s *LoanProductService) Update(ctx context.Context, tenantID, id uuid.UUID, req LoanProductRequest) (*LoanProductResponse, error) {
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if req.Name != product.Name {
		if err := s.checkName(ctx, tenantID, req.Name, &id); err != nil {
			return nil, err
		}
	}
	in := req.input()
	if err := s.checkAccounts(ctx, tenantID, in); err != nil {
		return nil, err
	}
	if err := product.Update(in); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	return ToLoanProductResponse(product), nil
}

// GetByID retrieves a product
func (s *LoanProductService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*LoanProductResponse, error) {
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return ToLoanProductResponse(product), nil
}

// List retrieves products
func (s *LoanProductService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]LoanProductResponse, int64, error) {
	products, total, err := s.productRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]LoanProductResponse, 0, len(products))
	for i := range products {
		out = append(out, *ToLoanProductResponse(&products[i]))
	}
	return out, total, nil
}

func (s *LoanProductService) checkName(ctx context.Context, tenantID uuid.UUID, name string, excludeID *uuid.UUID) error {
	exists, err := s.productRepo.ExistsByName(ctx, tenantID, name, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError("LOAN_PRODUCT_NAME_EXISTS", "Loan product with this name already exists")
	}
	return nil
}

// checkAccounts verifies every mapped account exists, accepts postings and
// has the type its role requires
func (s *LoanProductService) checkAccounts(ctx context.Context, tenantID uuid.UUID, in portfolio.LoanProductInput) error {
	roles := []struct {
		id   *uuid.UUID
		typ  accounting.GLAccountType
		role string
	}{
		{in.Accounts.FundSource, accounting.GLAccountTypeAsset, "Fund source"},
		{in.Accounts.LoanPortfolio, accounting.GLAccountTypeAsset, "Loan portfolio"},
		{in.Accounts.InterestReceivable, accounting.GLAccountTypeAsset, "Interest receivable"},
		{in.Accounts.InterestIncome, accounting.GLAccountTypeIncome, "Interest income"},
		{in.Accounts.WriteOff, accounting.GLAccountTypeExpense, "Write-off"},
		{in.Accounts.Overpayment, accounting.GLAccountTypeLiability, "Overpayment"},
	}
	ids := make([]uuid.UUID, 0, len(roles))
	for _, r := range roles {
		if r.id != nil {
			ids = append(ids, *r.id)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	accounts, err := s.accountRepo.FindByIDs(ctx, tenantID, ids)
	if err != nil {
		return err
	}
	for _, r := range roles {
		if r.id == nil {
			continue
		}
		acc, ok := accounts[*r.id]
		if !ok {
			return shared.NotFound(r.role + " account")
		}
		if acc.Disabled || acc.Usage != accounting.GLAccountUsageDetail {
			return shared.NewDomainError("GL_ACCOUNT_NOT_POSTABLE", r.role+" account must be an enabled detail account")
		}
		if acc.Type != r.typ {
			return shared.NewDomainError("GL_ACCOUNT_TYPE_MISMATCH", r.role+" account must be of type "+string(r.typ))
		}
	}
	return nil
}
