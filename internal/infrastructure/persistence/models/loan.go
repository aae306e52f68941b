package models

import (
	"time"

	"github.com/fincore/backend/internal/domain/portfolio"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LoanTermsColumns are the schedule-driving terms shared by products and loans.
type LoanTermsColumns struct {
	Currency              string                              `gorm:"type:varchar(3);not null"`
	Digits                int32                               `gorm:"not null;default:2"`
	Principal             decimal.Decimal                     `gorm:"type:decimal(19,6);not null"`
	NumberOfRepayments    int                                 `gorm:"not null"`
	RepaymentEvery        int                                 `gorm:"not null"`
	RepaymentFrequency    portfolio.PeriodFrequency           `gorm:"type:varchar(10);not null"`
	InterestRatePerPeriod decimal.Decimal                     `gorm:"type:decimal(19,6);not null"`
	InterestPeriod        portfolio.InterestPeriod            `gorm:"type:varchar(10);not null"`
	Amortization          portfolio.AmortizationMethod        `gorm:"type:varchar(30);not null"`
	InterestMethod        portfolio.InterestMethod            `gorm:"type:varchar(20);not null"`
	InterestCalculation   portfolio.InterestCalculationPeriod `gorm:"type:varchar(20);not null"`
	GraceOnPrincipal      int                                 `gorm:"not null;default:0"`
	GraceOnInterest       int                                 `gorm:"not null;default:0"`
}

func (c LoanTermsColumns) toDomain() portfolio.LoanTerms {
	return portfolio.LoanTerms{
		Currency:              c.Currency,
		Digits:                c.Digits,
		Principal:             c.Principal,
		NumberOfRepayments:    c.NumberOfRepayments,
		RepaymentEvery:        c.RepaymentEvery,
		RepaymentFrequency:    c.RepaymentFrequency,
		InterestRatePerPeriod: c.InterestRatePerPeriod,
		InterestPeriod:        c.InterestPeriod,
		Amortization:          c.Amortization,
		InterestMethod:        c.InterestMethod,
		InterestCalculation:   c.InterestCalculation,
		GraceOnPrincipal:      c.GraceOnPrincipal,
		GraceOnInterest:       c.GraceOnInterest,
	}
}

func loanTermsColumns(t portfolio.LoanTerms) LoanTermsColumns {
	return LoanTermsColumns{
		Currency:              t.Currency,
		Digits:                t.Digits,
		Principal:             t.Principal,
		NumberOfRepayments:    t.NumberOfRepayments,
		RepaymentEvery:        t.RepaymentEvery,
		RepaymentFrequency:    t.RepaymentFrequency,
		InterestRatePerPeriod: t.InterestRatePerPeriod,
		InterestPeriod:        t.InterestPeriod,
		Amortization:          t.Amortization,
		InterestMethod:        t.InterestMethod,
		InterestCalculation:   t.InterestCalculation,
		GraceOnPrincipal:      t.GraceOnPrincipal,
		GraceOnInterest:       t.GraceOnInterest,
	}
}

// LoanProductModel is the persistence model for the LoanProduct aggregate root.
type LoanProductModel struct {
	TenantAggregateModel
	Name                 string                   `gorm:"type:varchar(100);not null"`
	ShortName            string                   `gorm:"type:varchar(4)"`
	Description          string                   `gorm:"type:varchar(500)"`
	MinPrincipal         decimal.Decimal          `gorm:"type:decimal(19,6)"`
	MaxPrincipal         decimal.Decimal          `gorm:"type:decimal(19,6)"`
	Defaults             LoanTermsColumns         `gorm:"embedded"`
	MultiDisburse        bool                     `gorm:"not null;default:false"`
	MaxTrancheCount      int                      `gorm:"not null;default:0"`
	AccountingType       portfolio.AccountingType `gorm:"type:varchar(20);not null"`
	FundSourceAccountID  *uuid.UUID               `gorm:"type:uuid"`
	PortfolioAccountID   *uuid.UUID               `gorm:"type:uuid"`
	ReceivableAccountID  *uuid.UUID               `gorm:"type:uuid"`
	IncomeAccountID      *uuid.UUID               `gorm:"type:uuid"`
	WriteOffAccountID    *uuid.UUID               `gorm:"type:uuid"`
	OverpaymentAccountID *uuid.UUID               `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (LoanProductModel) TableName() string {
	return "loan_products"
}

// ToDomain converts the persistence model to a domain LoanProduct.
func (m *LoanProductModel) ToDomain() *portfolio.LoanProduct {
	p := &portfolio.LoanProduct{
		Name:            m.Name,
		ShortName:       m.ShortName,
		Description:     m.Description,
		MinPrincipal:    m.MinPrincipal,
		MaxPrincipal:    m.MaxPrincipal,
		Defaults:        m.Defaults.toDomain(),
		MultiDisburse:   m.MultiDisburse,
		MaxTrancheCount: m.MaxTrancheCount,
		AccountingType:  m.AccountingType,
		Accounts: portfolio.ProductAccounts{
			FundSource:         m.FundSourceAccountID,
			LoanPortfolio:      m.PortfolioAccountID,
			InterestReceivable: m.ReceivableAccountID,
			InterestIncome:     m.IncomeAccountID,
			WriteOff:           m.WriteOffAccountID,
			Overpayment:        m.OverpaymentAccountID,
		},
	}
	m.loadRoot(&p.TenantAggregateRoot)
	return p
}

// LoanProductModelFromDomain creates a persistence model from a domain LoanProduct.
func LoanProductModelFromDomain(p *portfolio.LoanProduct) *LoanProductModel {
	m := &LoanProductModel{
		Name:                 p.Name,
		ShortName:            p.ShortName,
		Description:          p.Description,
		MinPrincipal:         p.MinPrincipal,
		MaxPrincipal:         p.MaxPrincipal,
		Defaults:             loanTermsColumns(p.Defaults),
		MultiDisburse:        p.MultiDisburse,
		MaxTrancheCount:      p.MaxTrancheCount,
		AccountingType:       p.AccountingType,
		FundSourceAccountID:  p.Accounts.FundSource,
		PortfolioAccountID:   p.Accounts.LoanPortfolio,
		ReceivableAccountID:  p.Accounts.InterestReceivable,
		IncomeAccountID:      p.Accounts.InterestIncome,
		WriteOffAccountID:    p.Accounts.WriteOff,
		OverpaymentAccountID: p.Accounts.Overpayment,
	}
	m.setRoot(p.TenantAggregateRoot)
	return m
}

// LoanModel is the persistence model for the Loan aggregate root.
// Tranches, installments and transactions live in child tables.
type LoanModel struct {
	TenantAggregateModel
	AccountNo                string               `gorm:"type:varchar(30);not null"`
	ClientID                 *uuid.UUID           `gorm:"type:uuid;index"`
	GroupID                  *uuid.UUID           `gorm:"type:uuid;index"`
	ProductID                uuid.UUID            `gorm:"type:uuid;not null;index"`
	OfficeID                 uuid.UUID            `gorm:"type:uuid;not null;index"`
	LoanOfficerID            *uuid.UUID           `gorm:"type:uuid"`
	CalendarID               *uuid.UUID           `gorm:"type:uuid"`
	ExternalID               string               `gorm:"type:varchar(100)"`
	Status                   portfolio.LoanStatus `gorm:"type:varchar(40);not null;index"`
	Terms                    LoanTermsColumns     `gorm:"embedded"`
	ApprovedPrincipal        decimal.Decimal      `gorm:"type:decimal(19,6);not null"`
	SubmittedOn              time.Time            `gorm:"type:date;not null"`
	ExpectedDisbursementDate time.Time            `gorm:"type:date;not null"`
	FirstRepaymentOn         *time.Time           `gorm:"type:date"`
	ApprovedOn               *time.Time           `gorm:"type:date"`
	DisbursedOn              *time.Time           `gorm:"type:date"`
	ClosedOn                 *time.Time           `gorm:"type:date"`
	RejectedOn               *time.Time           `gorm:"type:date"`
	WithdrawnOn              *time.Time           `gorm:"type:date"`
	WrittenOffOn             *time.Time           `gorm:"type:date"`
	AccruedTill              *time.Time           `gorm:"type:date"`
	OverpaidAmount           decimal.Decimal      `gorm:"type:decimal(19,6);not null;default:0"`
}

// TableName returns the table name for GORM
func (LoanModel) TableName() string {
	return "loans"
}

// ToDomain converts the persistence model to a domain Loan. Child rows
// that were not loaded are passed as nil.
func (m *LoanModel) ToDomain(tranches []LoanDisbursementModel, installments []LoanInstallmentModel, txns []LoanTransactionModel) *portfolio.Loan {
	l := &portfolio.Loan{
		AccountNo:                m.AccountNo,
		ClientID:                 m.ClientID,
		GroupID:                  m.GroupID,
		ProductID:                m.ProductID,
		OfficeID:                 m.OfficeID,
		LoanOfficerID:            m.LoanOfficerID,
		CalendarID:               m.CalendarID,
		ExternalID:               m.ExternalID,
		Status:                   m.Status,
		Terms:                    m.Terms.toDomain(),
		ApprovedPrincipal:        m.ApprovedPrincipal,
		SubmittedOn:              m.SubmittedOn,
		ExpectedDisbursementDate: m.ExpectedDisbursementDate,
		FirstRepaymentOn:         m.FirstRepaymentOn,
		ApprovedOn:               m.ApprovedOn,
		DisbursedOn:              m.DisbursedOn,
		ClosedOn:                 m.ClosedOn,
		RejectedOn:               m.RejectedOn,
		WithdrawnOn:              m.WithdrawnOn,
		WrittenOffOn:             m.WrittenOffOn,
		AccruedTill:              m.AccruedTill,
		OverpaidAmount:           m.OverpaidAmount,
	}
	for _, d := range tranches {
		l.Disbursements = append(l.Disbursements, d.ToDomain())
	}
	for _, i := range installments {
		l.Installments = append(l.Installments, i.ToDomain())
	}
	for _, t := range txns {
		l.Transactions = append(l.Transactions, t.ToDomain())
	}
	m.loadRoot(&l.TenantAggregateRoot)
	return l
}

// LoanModelFromDomain creates a persistence model from a domain Loan.
func LoanModelFromDomain(l *portfolio.Loan) *LoanModel {
	m := &LoanModel{
		AccountNo:                l.AccountNo,
		ClientID:                 l.ClientID,
		GroupID:                  l.GroupID,
		ProductID:                l.ProductID,
		OfficeID:                 l.OfficeID,
		LoanOfficerID:            l.LoanOfficerID,
		CalendarID:               l.CalendarID,
		ExternalID:               l.ExternalID,
		Status:                   l.Status,
		Terms:                    loanTermsColumns(l.Terms),
		ApprovedPrincipal:        l.ApprovedPrincipal,
		SubmittedOn:              l.SubmittedOn,
		ExpectedDisbursementDate: l.ExpectedDisbursementDate,
		FirstRepaymentOn:         l.FirstRepaymentOn,
		ApprovedOn:               l.ApprovedOn,
		DisbursedOn:              l.DisbursedOn,
		ClosedOn:                 l.ClosedOn,
		RejectedOn:               l.RejectedOn,
		WithdrawnOn:              l.WithdrawnOn,
		WrittenOffOn:             l.WrittenOffOn,
		AccruedTill:              l.AccruedTill,
		OverpaidAmount:           l.OverpaidAmount,
	}
	m.setRoot(l.TenantAggregateRoot)
	return m
}

// LoanDisbursementModel is one planned tranche of a loan.
type LoanDisbursementModel struct {
	LoanID       uuid.UUID       `gorm:"type:uuid;primary_key"`
	Position     int             `gorm:"primary_key"`
	TenantID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ExpectedDate time.Time       `gorm:"type:date;not null"`
	Principal    decimal.Decimal `gorm:"type:decimal(19,6);not null"`
	ActualDate   *time.Time      `gorm:"type:date"`
}

// TableName returns the table name for GORM
func (LoanDisbursementModel) TableName() string {
	return "loan_disbursements"
}

// ToDomain converts the persistence model to a domain Disbursement.
func (m LoanDisbursementModel) ToDomain() portfolio.Disbursement {
	return portfolio.Disbursement{
		ExpectedDate: m.ExpectedDate,
		Principal:    m.Principal,
		ActualDate:   m.ActualDate,
	}
}

// LoanInstallmentModel is one row of a repayment schedule.
type LoanInstallmentModel struct {
	LoanID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	Number          int             `gorm:"primary_key"`
	TenantID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	FromDate        time.Time       `gorm:"type:date;not null"`
	DueDate         time.Time       `gorm:"type:date;not null;index"`
	Principal       decimal.Decimal `gorm:"type:decimal(19,6);not null"`
	Interest        decimal.Decimal `gorm:"type:decimal(19,6);not null"`
	PrincipalPaid   decimal.Decimal `gorm:"type:decimal(19,6);not null;default:0"`
	InterestPaid    decimal.Decimal `gorm:"type:decimal(19,6);not null;default:0"`
	InterestWaived  decimal.Decimal `gorm:"type:decimal(19,6);not null;default:0"`
	InterestAccrued decimal.Decimal `gorm:"type:decimal(19,6);not null;default:0"`
	BalanceAfter    decimal.Decimal `gorm:"type:decimal(19,6);not null"`
	CompletedOn     *time.Time      `gorm:"type:date"`
}

// TableName returns the table name for GORM
func (LoanInstallmentModel) TableName() string {
	return "loan_installments"
}

// ToDomain converts the persistence model to a domain Installment.
func (m LoanInstallmentModel) ToDomain() portfolio.Installment {
	return portfolio.Installment{
		Number:          m.Number,
		FromDate:        m.FromDate,
		DueDate:         m.DueDate,
		Principal:       m.Principal,
		Interest:        m.Interest,
		PrincipalPaid:   m.PrincipalPaid,
		InterestPaid:    m.InterestPaid,
		InterestWaived:  m.InterestWaived,
		InterestAccrued: m.InterestAccrued,
		BalanceAfter:    m.BalanceAfter,
		CompletedOn:     m.CompletedOn,
	}
}

// LoanTransactionModel is a monetary event on a loan.
type LoanTransactionModel struct {
	ID                   uuid.UUID                     `gorm:"type:uuid;primary_key"`
	TenantID             uuid.UUID                     `gorm:"type:uuid;not null;index"`
	LoanID               uuid.UUID                     `gorm:"type:uuid;not null;index"`
	Type                 portfolio.LoanTransactionType `gorm:"type:varchar(20);not null"`
	TransactionDate      time.Time                     `gorm:"type:date;not null"`
	Amount               decimal.Decimal               `gorm:"type:decimal(19,6);not null"`
	PrincipalPortion     decimal.Decimal               `gorm:"type:decimal(19,6);not null;default:0"`
	InterestPortion      decimal.Decimal               `gorm:"type:decimal(19,6);not null;default:0"`
	OverpaymentPortion   decimal.Decimal               `gorm:"type:decimal(19,6);not null;default:0"`
	OutstandingAfter     decimal.Decimal               `gorm:"type:decimal(19,6);not null;default:0"`
	InstallmentNumber    int                           `gorm:"not null;default:0"`
	ReceiptNumber        string                        `gorm:"type:varchar(50)"`
	Note                 string                        `gorm:"type:varchar(500)"`
	Reversed             bool                          `gorm:"not null;default:false"`
	JournalTransactionID string                        `gorm:"type:varchar(50)"`
	CreatedAt            time.Time                     `gorm:"not null"`
}

// TableName returns the table name for GORM
func (LoanTransactionModel) TableName() string {
	return "loan_transactions"
}

// ToDomain converts the persistence model to a domain LoanTransaction.
func (m LoanTransactionModel) ToDomain() portfolio.LoanTransaction {
	return portfolio.LoanTransaction{
		ID:                   m.ID,
		TenantID:             m.TenantID,
		LoanID:               m.LoanID,
		Type:                 m.Type,
		TransactionDate:      m.TransactionDate,
		Amount:               m.Amount,
		PrincipalPortion:     m.PrincipalPortion,
		InterestPortion:      m.InterestPortion,
		OverpaymentPortion:   m.OverpaymentPortion,
		OutstandingAfter:     m.OutstandingAfter,
		InstallmentNumber:    m.InstallmentNumber,
		ReceiptNumber:        m.ReceiptNumber,
		Note:                 m.Note,
		Reversed:             m.Reversed,
		JournalTransactionID: m.JournalTransactionID,
		CreatedAt:            m.CreatedAt,
	}
}

// LoanChildModelsFromDomain maps the tranches, schedule and transactions of a loan.
func LoanChildModelsFromDomain(l *portfolio.Loan) ([]LoanDisbursementModel, []LoanInstallmentModel, []LoanTransactionModel) {
	tranches := make([]LoanDisbursementModel, len(l.Disbursements))
	for i, d := range l.Disbursements {
		tranches[i] = LoanDisbursementModel{
			LoanID:       l.ID,
			Position:     i + 1,
			TenantID:     l.TenantID,
			ExpectedDate: d.ExpectedDate,
			Principal:    d.Principal,
			ActualDate:   d.ActualDate,
		}
	}
	installments := make([]LoanInstallmentModel, len(l.Installments))
	for i, in := range l.Installments {
		installments[i] = LoanInstallmentModel{
			LoanID:          l.ID,
			Number:          in.Number,
			TenantID:        l.TenantID,
			FromDate:        in.FromDate,
			DueDate:         in.DueDate,
			Principal:       in.Principal,
			Interest:        in.Interest,
			PrincipalPaid:   in.PrincipalPaid,
			InterestPaid:    in.InterestPaid,
			InterestWaived:  in.InterestWaived,
			InterestAccrued: in.InterestAccrued,
			BalanceAfter:    in.BalanceAfter,
			CompletedOn:     in.CompletedOn,
		}
	}
	txns := make([]LoanTransactionModel, len(l.Transactions))
	for i, t := range l.Transactions {
		txns[i] = LoanTransactionModel{
			ID:                   t.ID,
			TenantID:             l.TenantID,
			LoanID:               l.ID,
			Type:                 t.Type,
			TransactionDate:      t.TransactionDate,
			Amount:               t.Amount,
			PrincipalPortion:     t.PrincipalPortion,
			InterestPortion:      t.InterestPortion,
			OverpaymentPortion:   t.OverpaymentPortion,
			OutstandingAfter:     t.OutstandingAfter,
			InstallmentNumber:    t.InstallmentNumber,
			ReceiptNumber:        t.ReceiptNumber,
			Note:                 t.Note,
			Reversed:             t.Reversed,
			JournalTransactionID: t.JournalTransactionID,
			CreatedAt:            t.CreatedAt,
		}
	}
	return tranches, installments, txns
}
