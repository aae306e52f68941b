package portfolio

import (
	"context"
	"testing"

	"github.com/fincore/backend/internal/domain/accounting"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func productRequest(accountingType string, accounts ProductAccountsRequest) LoanProductRequest {
	rate := dec("18")
	return LoanProductRequest{
		Name:         "Solidarity loan",
		ShortName:    "SOL",
		MinPrincipal: dec("100"),
		MaxPrincipal: dec("2000"),
		Defaults: LoanTermsRequest{
			Currency:              "KES",
			Principal:             dec("500"),
			NumberOfRepayments:    12,
			RepaymentEvery:        1,
			RepaymentFrequency:    "WEEKS",
			InterestRatePerPeriod: &rate,
			InterestPeriod:        "PER_YEAR",
			Amortization:          "EQUAL_INSTALLMENTS",
			InterestMethod:        "FLAT",
			InterestCalculation:   "SAME_AS_REPAYMENT",
		},
		AccountingType: accountingType,
		Accounts:       accounts,
	}
}

func TestLoanProductService_Create(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	accounts := newLedgerAccounts(t, tenantID)
	cash := ProductAccountsRequest{
		FundSource:     &accounts.fund.ID,
		LoanPortfolio:  &accounts.portfolio.ID,
		InterestIncome: &accounts.income.ID,
		WriteOff:       &accounts.writeOff.ID,
	}

	t.Run("cash product", func(t *testing.T) {
		m := newPortfolioMocks()
		m.products.On("ExistsByName", ctx, tenantID, "Solidarity loan", (*uuid.UUID)(nil)).Return(false, nil)
		m.accounts.On("FindByIDs", ctx, tenantID, mock.Anything).Return(accounts.byID(), nil)
		m.products.On("Save", ctx, mock.AnythingOfType("*portfolio.LoanProduct")).Return(nil).Once()

		resp, err := NewLoanProductService(m.products, m.accounts).Create(ctx, tenantID, productRequest("CASH", cash))

		require.NoError(t, err)
		assert.Equal(t, "CASH", resp.AccountingType)
		assert.Equal(t, "KES", resp.Defaults.Currency)
		assert.Equal(t, &accounts.fund.ID, resp.Accounts.FundSource)
	})

	t.Run("account of the wrong type", func(t *testing.T) {
		m := newPortfolioMocks()
		swapped := cash
		swapped.InterestIncome = &accounts.writeOff.ID
		m.products.On("ExistsByName", ctx, tenantID, "Solidarity loan", (*uuid.UUID)(nil)).Return(false, nil)
		m.accounts.On("FindByIDs", ctx, tenantID, mock.Anything).Return(accounts.byID(), nil)

		_, err := NewLoanProductService(m.products, m.accounts).Create(ctx, tenantID, productRequest("CASH", swapped))

		assert.Equal(t, "GL_ACCOUNT_TYPE_MISMATCH", domainCode(t, err))
	})

	t.Run("header account", func(t *testing.T) {
		m := newPortfolioMocks()
		header, err := accounting.NewGLAccount(tenantID, accounting.GLAccountInput{
			Name: "Assets", GLCode: "1000", Type: accounting.GLAccountTypeAsset, Usage: accounting.GLAccountUsageHeader,
		}, nil)
		require.NoError(t, err)
		withHeader := cash
		withHeader.FundSource = &header.ID
		chart := accounts.byID()
		chart[header.ID] = header
		m.products.On("ExistsByName", ctx, tenantID, "Solidarity loan", (*uuid.UUID)(nil)).Return(false, nil)
		m.accounts.On("FindByIDs", ctx, tenantID, mock.Anything).Return(chart, nil)

		_, err = NewLoanProductService(m.products, m.accounts).Create(ctx, tenantID, productRequest("CASH", withHeader))

		assert.Equal(t, "GL_ACCOUNT_NOT_POSTABLE", domainCode(t, err))
	})

	t.Run("accrual needs a receivable account", func(t *testing.T) {
		m := newPortfolioMocks()
		m.products.On("ExistsByName", ctx, tenantID, "Solidarity loan", (*uuid.UUID)(nil)).Return(false, nil)
		m.accounts.On("FindByIDs", ctx, tenantID, mock.Anything).Return(accounts.byID(), nil)

		_, err := NewLoanProductService(m.products, m.accounts).Create(ctx, tenantID, productRequest("ACCRUAL_PERIODIC", cash))

		assert.Equal(t, "LOAN_PRODUCT_ACCOUNTS_REQUIRED", domainCode(t, err))
	})

	t.Run("duplicate name", func(t *testing.T) {
		m := newPortfolioMocks()
		m.products.On("ExistsByName", ctx, tenantID, "Solidarity loan", (*uuid.UUID)(nil)).Return(true, nil)

		_, err := NewLoanProductService(m.products, m.accounts).Create(ctx, tenantID, productRequest("NONE", ProductAccountsRequest{}))

		assert.Equal(t, "LOAN_PRODUCT_NAME_EXISTS", domainCode(t, err))
		m.accounts.AssertNotCalled(t, "FindByIDs", mock.Anything, mock.Anything, mock.Anything)
	})
}
