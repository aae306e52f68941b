package models

import (
	"time"

	"github.com/fincore/backend/internal/domain/accounting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GLAccountModel is the persistence model for the GLAccount aggregate root.
type GLAccountModel struct {
	TenantAggregateModel
	Name                 string                    `gorm:"type:varchar(200);not null"`
	GLCode               string                    `gorm:"column:gl_code;type:varchar(45);not null"`
	Type                 accounting.GLAccountType  `gorm:"type:varchar(20);not null;index"`
	Usage                accounting.GLAccountUsage `gorm:"type:varchar(20);not null"`
	ParentID             *uuid.UUID                `gorm:"type:uuid;index"`
	Hierarchy            string                    `gorm:"type:varchar(1000);not null;index"`
	ManualEntriesAllowed bool                      `gorm:"not null;default:true"`
	Disabled             bool                      `gorm:"not null;default:false"`
	Tag                  string                    `gorm:"type:varchar(100)"`
	Description          string                    `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (GLAccountModel) TableName() string {
	return "gl_accounts"
}

// ToDomain converts the persistence model to a domain GLAccount.
func (m *GLAccountModel) ToDomain() *accounting.GLAccount {
	a := &accounting.GLAccount{
		Name:                 m.Name,
		GLCode:               m.GLCode,
		Type:                 m.Type,
		Usage:                m.Usage,
		ParentID:             m.ParentID,
		Hierarchy:            m.Hierarchy,
		ManualEntriesAllowed: m.ManualEntriesAllowed,
		Disabled:             m.Disabled,
		Tag:                  m.Tag,
		Description:          m.Description,
	}
	m.loadRoot(&a.TenantAggregateRoot)
	return a
}

// FromDomain populates the persistence model from a domain GLAccount.
func (m *GLAccountModel) FromDomain(a *accounting.GLAccount) {
	m.setRoot(a.TenantAggregateRoot)
	m.Name = a.Name
	m.GLCode = a.GLCode
	m.Type = a.Type
	m.Usage = a.Usage
	m.ParentID = a.ParentID
	m.Hierarchy = a.Hierarchy
	m.ManualEntriesAllowed = a.ManualEntriesAllowed
	m.Disabled = a.Disabled
	m.Tag = a.Tag
	m.Description = a.Description
}

// GLAccountModelFromDomain creates a persistence model from a domain GLAccount.
func GLAccountModelFromDomain(a *accounting.GLAccount) *GLAccountModel {
	m := &GLAccountModel{}
	m.FromDomain(a)
	return m
}

// JournalEntryModel is one debit or credit line of a journal transaction.
// Lines are append-only; only the reversal flags are ever updated.
type JournalEntryModel struct {
	BaseModel
	TenantID              uuid.UUID             `gorm:"type:uuid;not null;index"`
	TransactionID         string                `gorm:"type:varchar(50);not null;index"`
	OfficeID              uuid.UUID             `gorm:"type:uuid;not null;index"`
	GLAccountID           uuid.UUID             `gorm:"column:gl_account_id;type:uuid;not null;index"`
	Currency              string                `gorm:"type:varchar(3);not null"`
	Amount                decimal.Decimal       `gorm:"type:decimal(19,6);not null"`
	EntryType             accounting.EntryType  `gorm:"type:varchar(10);not null"`
	TransactionDate       time.Time             `gorm:"type:date;not null;index"`
	Manual                bool                  `gorm:"not null;default:false"`
	Reversed              bool                  `gorm:"not null;default:false"`
	ReversalTransactionID string                `gorm:"type:varchar(50)"`
	EntityType            accounting.EntityType `gorm:"type:varchar(30)"`
	EntityID              *uuid.UUID            `gorm:"type:uuid;index"`
	ReferenceNumber       string                `gorm:"type:varchar(100)"`
	Description           string                `gorm:"type:varchar(500)"`
	CreatedBy             *uuid.UUID            `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (JournalEntryModel) TableName() string {
	return "journal_entries"
}

// ToDomain converts the persistence model to a domain JournalEntry.
func (m *JournalEntryModel) ToDomain() accounting.JournalEntry {
	return accounting.JournalEntry{
		BaseEntity:            m.BaseModel.entity(),
		TenantID:              m.TenantID,
		TransactionID:         m.TransactionID,
		OfficeID:              m.OfficeID,
		GLAccountID:           m.GLAccountID,
		Currency:              m.Currency,
		Amount:                m.Amount,
		EntryType:             m.EntryType,
		TransactionDate:       m.TransactionDate,
		Manual:                m.Manual,
		Reversed:              m.Reversed,
		ReversalTransactionID: m.ReversalTransactionID,
		EntityType:            m.EntityType,
		EntityID:              m.EntityID,
		ReferenceNumber:       m.ReferenceNumber,
		Description:           m.Description,
		CreatedBy:             m.CreatedBy,
	}
}

// JournalEntryModelFromDomain creates a persistence model from a domain JournalEntry.
func JournalEntryModelFromDomain(e accounting.JournalEntry) JournalEntryModel {
	m := JournalEntryModel{
		TenantID:              e.TenantID,
		TransactionID:         e.TransactionID,
		OfficeID:              e.OfficeID,
		GLAccountID:           e.GLAccountID,
		Currency:              e.Currency,
		Amount:                e.Amount,
		EntryType:             e.EntryType,
		TransactionDate:       e.TransactionDate,
		Manual:                e.Manual,
		Reversed:              e.Reversed,
		ReversalTransactionID: e.ReversalTransactionID,
		EntityType:            e.EntityType,
		EntityID:              e.EntityID,
		ReferenceNumber:       e.ReferenceNumber,
		Description:           e.Description,
		CreatedBy:             e.CreatedBy,
	}
	m.setEntity(e.BaseEntity)
	return m
}

// AccountingRuleModel is the persistence model for the AccountingRule aggregate root.
type AccountingRuleModel struct {
	TenantAggregateModel
	Name                 string     `gorm:"type:varchar(100);not null"`
	OfficeID             *uuid.UUID `gorm:"type:uuid;index"`
	Description          string     `gorm:"type:varchar(500)"`
	DebitAccountID       *uuid.UUID `gorm:"type:uuid"`
	CreditAccountID      *uuid.UUID `gorm:"type:uuid"`
	DebitTags            []string   `gorm:"type:jsonb;serializer:json"`
	CreditTags           []string   `gorm:"type:jsonb;serializer:json"`
	AllowMultipleDebits  bool       `gorm:"not null;default:false"`
	AllowMultipleCredits bool       `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (AccountingRuleModel) TableName() string {
	return "accounting_rules"
}

// ToDomain converts the persistence model to a domain AccountingRule.
func (m *AccountingRuleModel) ToDomain() *accounting.AccountingRule {
	r := &accounting.AccountingRule{
		Name:                 m.Name,
		OfficeID:             m.OfficeID,
		Description:          m.Description,
		DebitAccountID:       m.DebitAccountID,
		CreditAccountID:      m.CreditAccountID,
		DebitTags:            m.DebitTags,
		CreditTags:           m.CreditTags,
		AllowMultipleDebits:  m.AllowMultipleDebits,
		AllowMultipleCredits: m.AllowMultipleCredits,
	}
	m.loadRoot(&r.TenantAggregateRoot)
	return r
}

// AccountingRuleModelFromDomain creates a persistence model from a domain AccountingRule.
func AccountingRuleModelFromDomain(r *accounting.AccountingRule) *AccountingRuleModel {
	m := &AccountingRuleModel{
		Name:                 r.Name,
		OfficeID:             r.OfficeID,
		Description:          r.Description,
		DebitAccountID:       r.DebitAccountID,
		CreditAccountID:      r.CreditAccountID,
		DebitTags:            r.DebitTags,
		CreditTags:           r.CreditTags,
		AllowMultipleDebits:  r.AllowMultipleDebits,
		AllowMultipleCredits: r.AllowMultipleCredits,
	}
	m.setRoot(r.TenantAggregateRoot)
	return m
}

// GLClosureModel is the persistence model for the GLClosure aggregate root.
type GLClosureModel struct {
	TenantAggregateModel
	OfficeID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ClosingDate time.Time `gorm:"type:date;not null"`
	Comments    string    `gorm:"type:varchar(500)"`
	Deleted     bool      `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (GLClosureModel) TableName() string {
	return "gl_closures"
}

// ToDomain converts the persistence model to a domain GLClosure.
func (m *GLClosureModel) ToDomain() *accounting.GLClosure {
	c := &accounting.GLClosure{
		OfficeID:    m.OfficeID,
		ClosingDate: m.ClosingDate,
		Comments:    m.Comments,
		Deleted:     m.Deleted,
	}
	m.loadRoot(&c.TenantAggregateRoot)
	return c
}

// GLClosureModelFromDomain creates a persistence model from a domain GLClosure.
func GLClosureModelFromDomain(c *accounting.GLClosure) *GLClosureModel {
	m := &GLClosureModel{
		OfficeID:    c.OfficeID,
		ClosingDate: c.ClosingDate,
		Comments:    c.Comments,
		Deleted:     c.Deleted,
	}
	m.setRoot(c.TenantAggregateRoot)
	return m
}

// ProvisioningCategoryModel is the persistence model for provisioning categories.
type ProvisioningCategoryModel struct {
	TenantAggregateModel
	Name        string `gorm:"type:varchar(100);not null"`
	Description string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (ProvisioningCategoryModel) TableName() string {
	return "provisioning_categories"
}

// ToDomain converts the persistence model to a domain ProvisioningCategory.
func (m *ProvisioningCategoryModel) ToDomain() *accounting.ProvisioningCategory {
	c := &accounting.ProvisioningCategory{Name: m.Name, Description: m.Description}
	m.loadRoot(&c.TenantAggregateRoot)
	return c
}

// ProvisioningCategoryModelFromDomain creates a persistence model from a domain category.
func ProvisioningCategoryModelFromDomain(c *accounting.ProvisioningCategory) *ProvisioningCategoryModel {
	m := &ProvisioningCategoryModel{Name: c.Name, Description: c.Description}
	m.setRoot(c.TenantAggregateRoot)
	return m
}

// ProvisioningCriteriaModel is the persistence model for provisioning criteria.
// Definitions live in their own table.
type ProvisioningCriteriaModel struct {
	TenantAggregateModel
	Name           string      `gorm:"type:varchar(200);not null"`
	LoanProductIDs []uuid.UUID `gorm:"type:jsonb;serializer:json"`
}

// TableName returns the table name for GORM
func (ProvisioningCriteriaModel) TableName() string {
	return "provisioning_criteria"
}

// ToDomain converts the persistence model to a domain ProvisioningCriteria.
func (m *ProvisioningCriteriaModel) ToDomain(defs []ProvisioningDefinitionModel) *accounting.ProvisioningCriteria {
	c := &accounting.ProvisioningCriteria{
		Name:           m.Name,
		LoanProductIDs: m.LoanProductIDs,
		Definitions:    make([]accounting.ProvisioningDefinition, len(defs)),
	}
	for i := range defs {
		c.Definitions[i] = defs[i].ToDomain()
	}
	m.loadRoot(&c.TenantAggregateRoot)
	return c
}

// ProvisioningCriteriaModelFromDomain creates a persistence model from domain criteria.
func ProvisioningCriteriaModelFromDomain(c *accounting.ProvisioningCriteria) *ProvisioningCriteriaModel {
	m := &ProvisioningCriteriaModel{Name: c.Name, LoanProductIDs: c.LoanProductIDs}
	m.setRoot(c.TenantAggregateRoot)
	return m
}

// ProvisioningDefinitionModel is one age band of a criteria.
type ProvisioningDefinitionModel struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primary_key"`
	TenantID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	CriteriaID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	CategoryID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	MinAge             int             `gorm:"not null"`
	MaxAge             int             `gorm:"not null"`
	Percentage         decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	LiabilityAccountID uuid.UUID       `gorm:"type:uuid;not null"`
	ExpenseAccountID   uuid.UUID       `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (ProvisioningDefinitionModel) TableName() string {
	return "provisioning_criteria_definitions"
}

// ToDomain converts the persistence model to a domain ProvisioningDefinition.
func (m *ProvisioningDefinitionModel) ToDomain() accounting.ProvisioningDefinition {
	return accounting.ProvisioningDefinition{
		CategoryID:         m.CategoryID,
		MinAge:             m.MinAge,
		MaxAge:             m.MaxAge,
		Percentage:         m.Percentage,
		LiabilityAccountID: m.LiabilityAccountID,
		ExpenseAccountID:   m.ExpenseAccountID,
	}
}

// ProvisioningDefinitionModelsFromDomain maps the definitions of criteria.
func ProvisioningDefinitionModelsFromDomain(c *accounting.ProvisioningCriteria) []ProvisioningDefinitionModel {
	out := make([]ProvisioningDefinitionModel, len(c.Definitions))
	for i, d := range c.Definitions {
		out[i] = ProvisioningDefinitionModel{
			ID:                 uuid.New(),
			TenantID:           c.TenantID,
			CriteriaID:         c.ID,
			CategoryID:         d.CategoryID,
			MinAge:             d.MinAge,
			MaxAge:             d.MaxAge,
			Percentage:         d.Percentage,
			LiabilityAccountID: d.LiabilityAccountID,
			ExpenseAccountID:   d.ExpenseAccountID,
		}
	}
	return out
}

// ProvisioningEntryModel is the persistence model for a provisioning run.
type ProvisioningEntryModel struct {
	TenantAggregateModel
	EntryDate            time.Time `gorm:"type:date;not null"`
	JournalEntryCreated  bool      `gorm:"not null;default:false"`
	JournalTransactionID string    `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (ProvisioningEntryModel) TableName() string {
	return "provisioning_entries"
}

// ToDomain converts the persistence model to a domain ProvisioningEntry.
func (m *ProvisioningEntryModel) ToDomain(lines []ProvisioningLineModel) *accounting.ProvisioningEntry {
	e := &accounting.ProvisioningEntry{
		EntryDate:            m.EntryDate,
		JournalEntryCreated:  m.JournalEntryCreated,
		JournalTransactionID: m.JournalTransactionID,
	}
	if lines != nil {
		e.Lines = make([]accounting.ProvisioningLine, len(lines))
		for i := range lines {
			e.Lines[i] = lines[i].ToDomain()
		}
	}
	m.loadRoot(&e.TenantAggregateRoot)
	return e
}

// ProvisioningEntryModelFromDomain creates a persistence model from a domain entry.
func ProvisioningEntryModelFromDomain(e *accounting.ProvisioningEntry) *ProvisioningEntryModel {
	m := &ProvisioningEntryModel{
		EntryDate:            e.EntryDate,
		JournalEntryCreated:  e.JournalEntryCreated,
		JournalTransactionID: e.JournalTransactionID,
	}
	m.setRoot(e.TenantAggregateRoot)
	return m
}

// ProvisioningLineModel is the reserve of one office, product and category.
type ProvisioningLineModel struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primary_key"`
	TenantID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	EntryID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	OfficeID           uuid.UUID       `gorm:"type:uuid;not null"`
	LoanProductID      uuid.UUID       `gorm:"type:uuid;not null"`
	CategoryID         uuid.UUID       `gorm:"type:uuid;not null"`
	Currency           string          `gorm:"type:varchar(3);not null"`
	Percentage         decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	Outstanding        decimal.Decimal `gorm:"type:decimal(19,6);not null"`
	Reserve            decimal.Decimal `gorm:"type:decimal(19,6);not null"`
	LiabilityAccountID uuid.UUID       `gorm:"type:uuid;not null"`
	ExpenseAccountID   uuid.UUID       `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (ProvisioningLineModel) TableName() string {
	return "provisioning_entry_lines"
}

// ToDomain converts the persistence model to a domain ProvisioningLine.
func (m *ProvisioningLineModel) ToDomain() accounting.ProvisioningLine {
	return accounting.ProvisioningLine{
		ID:                 m.ID,
		OfficeID:           m.OfficeID,
		LoanProductID:      m.LoanProductID,
		CategoryID:         m.CategoryID,
		Currency:           m.Currency,
		Percentage:         m.Percentage,
		Outstanding:        m.Outstanding,
		Reserve:            m.Reserve,
		LiabilityAccountID: m.LiabilityAccountID,
		ExpenseAccountID:   m.ExpenseAccountID,
	}
}

// ProvisioningLineModelsFromDomain maps the lines of an entry.
func ProvisioningLineModelsFromDomain(e *accounting.ProvisioningEntry) []ProvisioningLineModel {
	out := make([]ProvisioningLineModel, len(e.Lines))
	for i, l := range e.Lines {
		id := l.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		out[i] = ProvisioningLineModel{
			ID:                 id,
			TenantID:           e.TenantID,
			EntryID:            e.ID,
			OfficeID:           l.OfficeID,
			LoanProductID:      l.LoanProductID,
			CategoryID:         l.CategoryID,
			Currency:           l.Currency,
			Percentage:         l.Percentage,
			Outstanding:        l.Outstanding,
			Reserve:            l.Reserve,
			LiabilityAccountID: l.LiabilityAccountID,
			ExpenseAccountID:   l.ExpenseAccountID,
		}
	}
	return out
}

// TrialBalanceRow is the scan target of the trial balance aggregate.
type TrialBalanceRow struct {
	GLAccountID uuid.UUID `gorm:"column:gl_account_id"`
	GLCode      string    `gorm:"column:gl_code"`
	Name        string
	Type        accounting.GLAccountType
	Debits      decimal.Decimal
	Credits     decimal.Decimal
}

// ToDomain converts the row to a domain TrialBalanceLine.
func (r TrialBalanceRow) ToDomain() accounting.TrialBalanceLine {
	return accounting.TrialBalanceLine{
		GLAccountID: r.GLAccountID,
		GLCode:      r.GLCode,
		Name:        r.Name,
		Type:        r.Type,
		Debits:      r.Debits,
		Credits:     r.Credits,
	}
}
