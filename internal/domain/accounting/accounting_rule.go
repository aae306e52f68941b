package accounting

import (
	"strings"

	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountingRule is a reusable template for manual journal entries. Each
// side names either one fixed account or a set of account tags the user
// picks from when posting.
type AccountingRule struct {
	shared.TenantAggregateRoot
	Name                 string
	OfficeID             *uuid.UUID
	Description          string
	DebitAccountID       *uuid.UUID
	CreditAccountID      *uuid.UUID
	DebitTags            []string
	CreditTags           []string
	AllowMultipleDebits  bool
	AllowMultipleCredits bool
}

// AccountingRuleInput carries the editable attributes of a rule
type AccountingRuleInput struct {
	Name                 string
	OfficeID             *uuid.UUID
	Description          string
	DebitAccountID       *uuid.UUID
	CreditAccountID      *uuid.UUID
	DebitTags            []string
	CreditTags           []string
	AllowMultipleDebits  bool
	AllowMultipleCredits bool
}

func (in AccountingRuleInput) validate() error {
	if strings.TrimSpace(in.Name) == "" || len(in.Name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Accounting rule name must be 1 to 100 characters")
	}
	if err := validateRuleSide("debit", in.DebitAccountID, in.DebitTags); err != nil {
		return err
	}
	return validateRuleSide("credit", in.CreditAccountID, in.CreditTags)
}

func validateRuleSide(side string, account *uuid.UUID, tags []string) error {
	if account != nil && len(tags) > 0 {
		return shared.NewDomainError("ACCOUNTING_RULE_AMBIGUOUS_"+strings.ToUpper(side), "Accounting rule "+side+" side cannot have both an account and tags")
	}
	if account == nil && len(tags) == 0 {
		return shared.NewDomainError("ACCOUNTING_RULE_MISSING_"+strings.ToUpper(side), "Accounting rule "+side+" side needs an account or tags")
	}
	return nil
}

// NewAccountingRule creates a rule
func NewAccountingRule(tenantID uuid.UUID, in AccountingRuleInput) (*AccountingRule, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	r := &AccountingRule{TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID)}
	r.assign(in)
	return r, nil
}

// Update replaces the rule definition
func (r *AccountingRule) Update(in AccountingRuleInput) error {
	if err := in.validate(); err != nil {
		return err
	}
	r.assign(in)
	r.Touch()
	r.IncrementVersion()
	return nil
}

func (r *AccountingRule) assign(in AccountingRuleInput) {
	r.Name = strings.TrimSpace(in.Name)
	r.OfficeID = in.OfficeID
	r.Description = in.Description
	r.DebitAccountID = in.DebitAccountID
	r.CreditAccountID = in.CreditAccountID
	r.DebitTags = normalizeTags(in.DebitTags)
	r.CreditTags = normalizeTags(in.CreditTags)
	r.AllowMultipleDebits = in.AllowMultipleDebits
	r.AllowMultipleCredits = in.AllowMultipleCredits
}

func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	out := make([]string, 0, len(tags))
	seen := map[string]bool{}
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// ReferencedAccounts returns the fixed accounts named by the rule
func (r *AccountingRule) ReferencedAccounts() []uuid.UUID {
	var ids []uuid.UUID
	if r.DebitAccountID != nil {
		ids = append(ids, *r.DebitAccountID)
	}
	if r.CreditAccountID != nil {
		ids = append(ids, *r.CreditAccountID)
	}
	return ids
}

// Expand turns a single amount into postings. Only rules with fixed
// accounts on both sides can be expanded without explicit lines.
func (r *AccountingRule) Expand(amount decimal.Decimal) (debits, credits []Posting, err error) {
	if r.DebitAccountID == nil || r.CreditAccountID == nil {
		return nil, nil, shared.NewDomainError("ACCOUNTING_RULE_NEEDS_LINES", "Rule uses account tags; explicit debit and credit lines are required")
	}
	if !amount.IsPositive() {
		return nil, nil, shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}
	return []Posting{{GLAccountID: *r.DebitAccountID, Amount: amount}},
		[]Posting{{GLAccountID: *r.CreditAccountID, Amount: amount}}, nil
}

// CheckLines verifies explicit postings conform to the rule
func (r *AccountingRule) CheckLines(debits, credits []Posting, accounts map[uuid.UUID]*GLAccount) error {
	if err := checkRuleSide("debit", r.DebitAccountID, r.DebitTags, r.AllowMultipleDebits, debits, accounts); err != nil {
		return err
	}
	return checkRuleSide("credit", r.CreditAccountID, r.CreditTags, r.AllowMultipleCredits, credits, accounts)
}

func checkRuleSide(side string, account *uuid.UUID, tags []string, multiple bool, postings []Posting, accounts map[uuid.UUID]*GLAccount) error {
	if len(postings) > 1 && !multiple {
		return shared.NewDomainError("ACCOUNTING_RULE_SINGLE_"+strings.ToUpper(side), "Accounting rule allows only one "+side+" line")
	}
	for _, p := range postings {
		if account != nil {
			if p.GLAccountID != *account {
				return shared.NewDomainError("ACCOUNTING_RULE_ACCOUNT_MISMATCH", "The "+side+" account does not match the accounting rule")
			}
			continue
		}
		acct, ok := accounts[p.GLAccountID]
		if !ok || !containsTag(tags, acct.Tag) {
			return shared.NewDomainError("ACCOUNTING_RULE_TAG_MISMATCH", "The "+side+" account is not tagged for the accounting rule")
		}
	}
	return nil
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
