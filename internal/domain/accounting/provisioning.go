package accounting

import (
	"sort"
	"strings"
	"time"

	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultProvisioningCategories are seeded for every tenant
var DefaultProvisioningCategories = []string{"STANDARD", "SUB-STANDARD", "DOUBTFUL", "LOSS"}

// ProvisioningCategory classifies loans by how far behind they are
type ProvisioningCategory struct {
	shared.TenantAggregateRoot
	Name        string
	Description string
}

// NewProvisioningCategory creates a category
func NewProvisioningCategory(tenantID uuid.UUID, name, description string) (*ProvisioningCategory, error) {
	c := &ProvisioningCategory{TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID)}
	if err := c.Update(name, description); err != nil {
		return nil, err
	}
	c.Version = 1
	return c, nil
}

// Update renames the category
func (c *ProvisioningCategory) Update(name, description string) error {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Provisioning category name must be 1 to 100 characters")
	}
	c.Name = name
	c.Description = description
	c.Touch()
	c.IncrementVersion()
	return nil
}

// ProvisioningDefinition maps an overdue age band to a reserve percentage
type ProvisioningDefinition struct {
	CategoryID         uuid.UUID
	MinAge             int
	MaxAge             int
	Percentage         decimal.Decimal
	LiabilityAccountID uuid.UUID
	ExpenseAccountID   uuid.UUID
}

// ProvisioningCriteria assigns age bands to a set of loan products
type ProvisioningCriteria struct {
	shared.TenantAggregateRoot
	Name           string
	Definitions    []ProvisioningDefinition
	LoanProductIDs []uuid.UUID
}

var hundred = decimal.NewFromInt(100)

// NewProvisioningCriteria validates and creates criteria
func NewProvisioningCriteria(tenantID uuid.UUID, name string, defs []ProvisioningDefinition, productIDs []uuid.UUID) (*ProvisioningCriteria, error) {
	c := &ProvisioningCriteria{TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID)}
	if err := c.Update(name, defs, productIDs); err != nil {
		return nil, err
	}
	c.Version = 1
	return c, nil
}

// Update replaces the definitions and products
func (c *ProvisioningCriteria) Update(name string, defs []ProvisioningDefinition, productIDs []uuid.UUID) error {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Provisioning criteria name must be 1 to 200 characters")
	}
	if len(defs) == 0 {
		return shared.NewDomainError("PROVISIONING_DEFINITIONS_REQUIRED", "At least one provisioning definition is required")
	}
	sorted := make([]ProvisioningDefinition, len(defs))
	copy(sorted, defs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinAge < sorted[j].MinAge })
	for i, d := range sorted {
		if d.MinAge < 0 || d.MinAge > d.MaxAge {
			return shared.NewDomainError("PROVISIONING_INVALID_AGE_RANGE", "Minimum age must be non-negative and not above maximum age")
		}
		if d.Percentage.IsNegative() || d.Percentage.GreaterThan(hundred) {
			return shared.NewDomainError("PROVISIONING_INVALID_PERCENTAGE", "Provisioning percentage must be between 0 and 100")
		}
		if d.CategoryID == uuid.Nil || d.LiabilityAccountID == uuid.Nil || d.ExpenseAccountID == uuid.Nil {
			return shared.NewDomainError("PROVISIONING_DEFINITION_INCOMPLETE", "Category, liability account and expense account are required")
		}
		if i > 0 && d.MinAge <= sorted[i-1].MaxAge {
			return shared.NewDomainError("PROVISIONING_OVERLAPPING_RANGES", "Provisioning age ranges must not overlap")
		}
	}
	c.Name = name
	c.Definitions = sorted
	c.LoanProductIDs = productIDsDedupe(productIDs)
	c.Touch()
	c.IncrementVersion()
	return nil
}

func productIDsDedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// Match returns the definition covering daysOverdue, or nil
func (c *ProvisioningCriteria) Match(daysOverdue int) *ProvisioningDefinition {
	for i := range c.Definitions {
		d := &c.Definitions[i]
		if daysOverdue >= d.MinAge && daysOverdue <= d.MaxAge {
			return d
		}
	}
	return nil
}

// Covers reports whether the criteria applies to a loan product
func (c *ProvisioningCriteria) Covers(productID uuid.UUID) bool {
	for _, id := range c.LoanProductIDs {
		if id == productID {
			return true
		}
	}
	return false
}

// LoanExposure is the provisioning-relevant state of an active loan
type LoanExposure struct {
	LoanID               uuid.UUID
	OfficeID             uuid.UUID
	ProductID            uuid.UUID
	Currency             string
	Digits               int32
	OutstandingPrincipal decimal.Decimal
	DaysOverdue          int
}

// ProvisioningLine is the reserve for one office, product, category and currency
type ProvisioningLine struct {
	ID                 uuid.UUID
	OfficeID           uuid.UUID
	LoanProductID      uuid.UUID
	CategoryID         uuid.UUID
	Currency           string
	Percentage         decimal.Decimal
	Outstanding        decimal.Decimal
	Reserve            decimal.Decimal
	LiabilityAccountID uuid.UUID
	ExpenseAccountID   uuid.UUID
}

// ProvisioningEntry holds the reserves computed for a date
type ProvisioningEntry struct {
	shared.TenantAggregateRoot
	EntryDate            time.Time
	JournalEntryCreated  bool
	JournalTransactionID string
	Lines                []ProvisioningLine
}

// NewProvisioningEntry creates an empty entry for date
func NewProvisioningEntry(tenantID uuid.UUID, date time.Time) *ProvisioningEntry {
	return &ProvisioningEntry{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		EntryDate:           shared.Day(date),
	}
}

type lineKey struct {
	office, product, category uuid.UUID
	currency                  string
}

// ComputeProvisioningLines reserves outstanding principal of each exposure
// according to the criteria covering its product, aggregated by office,
// product, category and currency.
func ComputeProvisioningLines(criteria []ProvisioningCriteria, exposures []LoanExposure) []ProvisioningLine {
	lines := map[lineKey]*ProvisioningLine{}
	var order []lineKey
	for _, e := range exposures {
		var def *ProvisioningDefinition
		for i := range criteria {
			if criteria[i].Covers(e.ProductID) {
				def = criteria[i].Match(e.DaysOverdue)
				break
			}
		}
		if def == nil || !e.OutstandingPrincipal.IsPositive() {
			continue
		}
		key := lineKey{e.OfficeID, e.ProductID, def.CategoryID, e.Currency}
		line, ok := lines[key]
		if !ok {
			line = &ProvisioningLine{
				ID:                 uuid.New(),
				OfficeID:           e.OfficeID,
				LoanProductID:      e.ProductID,
				CategoryID:         def.CategoryID,
				Currency:           e.Currency,
				Percentage:         def.Percentage,
				LiabilityAccountID: def.LiabilityAccountID,
				ExpenseAccountID:   def.ExpenseAccountID,
			}
			lines[key] = line
			order = append(order, key)
		}
		reserve := e.OutstandingPrincipal.Mul(def.Percentage).Div(hundred).RoundBank(e.Digits)
		line.Outstanding = line.Outstanding.Add(e.OutstandingPrincipal)
		line.Reserve = line.Reserve.Add(reserve)
	}
	out := make([]ProvisioningLine, 0, len(order))
	for _, k := range order {
		out = append(out, *lines[k])
	}
	return out
}

// Replace swaps in freshly computed lines. Journalled entries are final.
func (e *ProvisioningEntry) Replace(lines []ProvisioningLine) error {
	if e.JournalEntryCreated {
		return shared.NewDomainError("PROVISIONING_ENTRY_JOURNALLED", "Provisioning entry already has journal entries and cannot be recreated")
	}
	e.Lines = lines
	e.Touch()
	e.IncrementVersion()
	return nil
}

// MarkJournalled records the ledger transaction of the entry
func (e *ProvisioningEntry) MarkJournalled(transactionID string) {
	e.JournalEntryCreated = true
	e.JournalTransactionID = transactionID
	e.Touch()
}

// TotalReserve sums reserves per currency
func (e *ProvisioningEntry) TotalReserve() map[string]decimal.Decimal {
	totals := map[string]decimal.Decimal{}
	for _, l := range e.Lines {
		totals[l.Currency] = totals[l.Currency].Add(l.Reserve)
	}
	return totals
}

// PostingRequests groups lines into one balanced request per office and
// currency: debit the expense accounts, credit the liability accounts.
func (e *ProvisioningEntry) PostingRequests(createdBy *uuid.UUID) []PostingRequest {
	type key struct {
		office   uuid.UUID
		currency string
	}
	reqs := map[key]*PostingRequest{}
	var order []key
	for _, l := range e.Lines {
		if !l.Reserve.IsPositive() {
			continue
		}
		k := key{l.OfficeID, l.Currency}
		r, ok := reqs[k]
		if !ok {
			entryID := e.ID
			r = &PostingRequest{
				OfficeID:        l.OfficeID,
				Currency:        l.Currency,
				TransactionDate: e.EntryDate,
				EntityType:      EntityTypeProvisioning,
				EntityID:        &entryID,
				Description:     "Provisioning entry " + e.EntryDate.Format(shared.DateLayout),
				CreatedBy:       createdBy,
			}
			reqs[k] = r
			order = append(order, k)
		}
		r.Debits = append(r.Debits, Posting{GLAccountID: l.ExpenseAccountID, Amount: l.Reserve})
		r.Credits = append(r.Credits, Posting{GLAccountID: l.LiabilityAccountID, Amount: l.Reserve})
	}
	out := make([]PostingRequest, 0, len(order))
	for _, k := range order {
		out = append(out, *reqs[k])
	}
	return out
}
