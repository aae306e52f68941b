package portfolio

import (
	"strings"

	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PeriodFrequency is the unit between repayments
type PeriodFrequency string

const (
	PeriodDays   PeriodFrequency = "DAYS"
	PeriodWeeks  PeriodFrequency = "WEEKS"
	PeriodMonths PeriodFrequency = "MONTHS"
	PeriodYears  PeriodFrequency = "YEARS"
)

// IsValid checks the frequency
func (p PeriodFrequency) IsValid() bool {
	switch p {
	case PeriodDays, PeriodWeeks, PeriodMonths, PeriodYears:
		return true
	}
	return false
}

// InterestPeriod is the period the nominal rate is quoted for
type InterestPeriod string

const (
	InterestPerMonth InterestPeriod = "PER_MONTH"
	InterestPerYear  InterestPeriod = "PER_YEAR"
)

// AmortizationMethod decides how principal is spread over installments
type AmortizationMethod string

const (
	AmortizationEqualInstallments AmortizationMethod = "EQUAL_INSTALLMENTS"
	AmortizationEqualPrincipal    AmortizationMethod = "EQUAL_PRINCIPAL"
)

// InterestMethod decides what balance interest is charged on
type InterestMethod string

const (
	InterestDecliningBalance InterestMethod = "DECLINING_BALANCE"
	InterestFlat             InterestMethod = "FLAT"
)

// InterestCalculationPeriod decides whether interest counts actual days
type InterestCalculationPeriod string

const (
	InterestCalcDaily           InterestCalculationPeriod = "DAILY"
	InterestCalcSameAsRepayment InterestCalculationPeriod = "SAME_AS_REPAYMENT"
)

// AccountingType decides how a product's loans post to the ledger
type AccountingType string

const (
	AccountingNone            AccountingType = "NONE"
	AccountingCash            AccountingType = "CASH"
	AccountingAccrualPeriodic AccountingType = "ACCRUAL_PERIODIC"
)

// LoanTerms are the numeric terms a repayment schedule is generated from
type LoanTerms struct {
	Currency              string
	Digits                int32
	Principal             decimal.Decimal
	NumberOfRepayments    int
	RepaymentEvery        int
	RepaymentFrequency    PeriodFrequency
	InterestRatePerPeriod decimal.Decimal
	InterestPeriod        InterestPeriod
	Amortization          AmortizationMethod
	InterestMethod        InterestMethod
	InterestCalculation   InterestCalculationPeriod
	GraceOnPrincipal      int
	GraceOnInterest       int
}

// Validate checks the terms are internally consistent
func (t LoanTerms) Validate() error {
	if len(t.Currency) != 3 {
		return shared.NewDomainError("INVALID_CURRENCY", "Currency must be a 3-letter code")
	}
	if t.Digits < 0 || t.Digits > 6 {
		return shared.NewDomainError("INVALID_DIGITS", "Digits after decimal must be 0 to 6")
	}
	if !t.Principal.IsPositive() {
		return shared.NewDomainError("INVALID_PRINCIPAL", "Principal must be positive")
	}
	if t.NumberOfRepayments < 1 {
		return shared.NewDomainError("INVALID_REPAYMENTS", "Number of repayments must be at least 1")
	}
	if t.RepaymentEvery < 1 || !t.RepaymentFrequency.IsValid() {
		return shared.NewDomainError("INVALID_REPAYMENT_FREQUENCY", "Repayment frequency is invalid")
	}
	if t.InterestRatePerPeriod.IsNegative() {
		return shared.NewDomainError("INVALID_INTEREST_RATE", "Interest rate cannot be negative")
	}
	if t.InterestPeriod != InterestPerMonth && t.InterestPeriod != InterestPerYear {
		return shared.NewDomainError("INVALID_INTEREST_PERIOD", "Interest period must be PER_MONTH or PER_YEAR")
	}
	if t.Amortization != AmortizationEqualInstallments && t.Amortization != AmortizationEqualPrincipal {
		return shared.NewDomainError("INVALID_AMORTIZATION", "Invalid amortization method")
	}
	if t.InterestMethod != InterestDecliningBalance && t.InterestMethod != InterestFlat {
		return shared.NewDomainError("INVALID_INTEREST_METHOD", "Invalid interest method")
	}
	if t.InterestCalculation != InterestCalcDaily && t.InterestCalculation != InterestCalcSameAsRepayment {
		return shared.NewDomainError("INVALID_INTEREST_CALCULATION", "Invalid interest calculation period")
	}
	if t.GraceOnPrincipal < 0 || t.GraceOnPrincipal >= t.NumberOfRepayments {
		return shared.NewDomainError("INVALID_GRACE", "Grace on principal must leave at least one principal installment")
	}
	if t.GraceOnInterest < 0 || t.GraceOnInterest >= t.NumberOfRepayments {
		return shared.NewDomainError("INVALID_GRACE", "Grace on interest must leave at least one interest installment")
	}
	return nil
}

// ProductAccounts maps a loan product to its GL accounts
type ProductAccounts struct {
	FundSource         *uuid.UUID
	LoanPortfolio      *uuid.UUID
	InterestReceivable *uuid.UUID
	InterestIncome     *uuid.UUID
	WriteOff           *uuid.UUID
	Overpayment        *uuid.UUID
}

// LoanProduct is the template loans are created from
type LoanProduct struct {
	shared.TenantAggregateRoot
	Name            string
	ShortName       string
	Description     string
	MinPrincipal    decimal.Decimal
	MaxPrincipal    decimal.Decimal
	Defaults        LoanTerms
	MultiDisburse   bool
	MaxTrancheCount int
	AccountingType  AccountingType
	Accounts        ProductAccounts
}

// LoanProductInput carries the editable attributes of a product
type LoanProductInput struct {
	Name            string
	ShortName       string
	Description     string
	MinPrincipal    decimal.Decimal
	MaxPrincipal    decimal.Decimal
	Defaults        LoanTerms
	MultiDisburse   bool
	MaxTrancheCount int
	AccountingType  AccountingType
	Accounts        ProductAccounts
}

// NewLoanProduct validates and creates a product
func NewLoanProduct(tenantID uuid.UUID, in LoanProductInput) (*LoanProduct, error) {
	p := &LoanProduct{TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID)}
	if err := p.Update(in); err != nil {
		return nil, err
	}
	p.Version = 1
	return p, nil
}

// Update replaces the product definition
func (p *LoanProduct) Update(in LoanProductInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" || len(in.Name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Loan product name must be 1 to 100 characters")
	}
	in.ShortName = strings.TrimSpace(in.ShortName)
	if in.ShortName == "" || len(in.ShortName) > 4 {
		return shared.NewDomainError("INVALID_SHORT_NAME", "Loan product short name must be 1 to 4 characters")
	}
	in.Defaults.Currency = strings.ToUpper(in.Defaults.Currency)
	if err := in.Defaults.Validate(); err != nil {
		return err
	}
	if in.MinPrincipal.IsNegative() || (in.MaxPrincipal.IsPositive() && in.MinPrincipal.GreaterThan(in.MaxPrincipal)) {
		return shared.NewDomainError("INVALID_PRINCIPAL_RANGE", "Minimum principal cannot exceed maximum principal")
	}
	if !p.principalWithin(in.MinPrincipal, in.MaxPrincipal, in.Defaults.Principal) {
		return shared.NewDomainError("INVALID_PRINCIPAL_RANGE", "Default principal must lie within the principal range")
	}
	if in.MultiDisburse && in.MaxTrancheCount < 1 {
		return shared.NewDomainError("INVALID_TRANCHE_COUNT", "Multi-disbursement products need a maximum tranche count")
	}
	if !in.MultiDisburse {
		in.MaxTrancheCount = 0
	}
	switch in.AccountingType {
	case "":
		in.AccountingType = AccountingNone
	case AccountingNone:
	case AccountingCash:
		if in.Accounts.FundSource == nil || in.Accounts.LoanPortfolio == nil || in.Accounts.InterestIncome == nil || in.Accounts.WriteOff == nil {
			return shared.NewDomainError("LOAN_PRODUCT_ACCOUNTS_REQUIRED", "Cash accounting needs fund source, portfolio, interest income and write-off accounts")
		}
	case AccountingAccrualPeriodic:
		if in.Accounts.FundSource == nil || in.Accounts.LoanPortfolio == nil || in.Accounts.InterestIncome == nil ||
			in.Accounts.InterestReceivable == nil || in.Accounts.WriteOff == nil {
			return shared.NewDomainError("LOAN_PRODUCT_ACCOUNTS_REQUIRED", "Accrual accounting also needs an interest receivable account")
		}
	default:
		return shared.NewDomainError("INVALID_ACCOUNTING_TYPE", "Invalid accounting type")
	}

	p.Name = in.Name
	p.ShortName = in.ShortName
	p.Description = in.Description
	p.MinPrincipal = in.MinPrincipal
	p.MaxPrincipal = in.MaxPrincipal
	p.Defaults = in.Defaults
	p.MultiDisburse = in.MultiDisburse
	p.MaxTrancheCount = in.MaxTrancheCount
	p.AccountingType = in.AccountingType
	p.Accounts = in.Accounts
	p.Touch()
	p.IncrementVersion()
	return nil
}

func (p *LoanProduct) principalWithin(min, max, principal decimal.Decimal) bool {
	if min.IsPositive() && principal.LessThan(min) {
		return false
	}
	if max.IsPositive() && principal.GreaterThan(max) {
		return false
	}
	return true
}

// AllowsPrincipal reports whether a requested principal fits the product
func (p *LoanProduct) AllowsPrincipal(principal decimal.Decimal) bool {
	return p.principalWithin(p.MinPrincipal, p.MaxPrincipal, principal)
}

// PostsToLedger reports whether loans of this product generate journal entries
func (p *LoanProduct) PostsToLedger() bool {
	return p.AccountingType == AccountingCash || p.AccountingType == AccountingAccrualPeriodic
}
