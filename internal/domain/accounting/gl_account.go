package accounting

import (
	"strings"

	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// GLAccountType is the ledger classification of an account
type GLAccountType string

const (
	GLAccountTypeAsset     GLAccountType = "ASSET"
	GLAccountTypeLiability GLAccountType = "LIABILITY"
	GLAccountTypeEquity    GLAccountType = "EQUITY"
	GLAccountTypeIncome    GLAccountType = "INCOME"
	GLAccountTypeExpense   GLAccountType = "EXPENSE"
)

// IsValid checks the account type
func (t GLAccountType) IsValid() bool {
	switch t {
	case GLAccountTypeAsset, GLAccountTypeLiability, GLAccountTypeEquity,
		GLAccountTypeIncome, GLAccountTypeExpense:
		return true
	}
	return false
}

// DebitNormal reports whether the account's balance grows with debits
func (t GLAccountType) DebitNormal() bool {
	return t == GLAccountTypeAsset || t == GLAccountTypeExpense
}

// GLAccountUsage separates posting accounts from grouping accounts
type GLAccountUsage string

const (
	GLAccountUsageDetail GLAccountUsage = "DETAIL"
	GLAccountUsageHeader GLAccountUsage = "HEADER"
)

// IsValid checks the account usage
func (u GLAccountUsage) IsValid() bool {
	return u == GLAccountUsageDetail || u == GLAccountUsageHeader
}

// GLAccount is a node in the chart of accounts. Only DETAIL accounts
// receive postings; HEADER accounts group children of the same type.
type GLAccount struct {
	shared.TenantAggregateRoot
	Name                 string
	GLCode               string
	Type                 GLAccountType
	Usage                GLAccountUsage
	ParentID             *uuid.UUID
	Hierarchy            string
	ManualEntriesAllowed bool
	Disabled             bool
	Tag                  string
	Description          string
}

// GLAccountInput carries the editable attributes of a GL account
type GLAccountInput struct {
	Name                 string
	GLCode               string
	Type                 GLAccountType
	Usage                GLAccountUsage
	ManualEntriesAllowed bool
	Tag                  string
	Description          string
}

func (in GLAccountInput) validate() error {
	if strings.TrimSpace(in.Name) == "" || len(in.Name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "GL account name must be 1 to 200 characters")
	}
	if strings.TrimSpace(in.GLCode) == "" || len(in.GLCode) > 45 {
		return shared.NewDomainError("INVALID_GL_CODE", "GL code must be 1 to 45 characters")
	}
	if !in.Type.IsValid() {
		return shared.NewDomainError("INVALID_ACCOUNT_TYPE", "Invalid GL account type")
	}
	if !in.Usage.IsValid() {
		return shared.NewDomainError("INVALID_ACCOUNT_USAGE", "Invalid GL account usage")
	}
	return nil
}

// NewGLAccount creates an account, optionally under a HEADER parent
func NewGLAccount(tenantID uuid.UUID, in GLAccountInput, parent *GLAccount) (*GLAccount, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	a := &GLAccount{TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID)}
	a.assign(in)
	if err := a.setParent(parent); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *GLAccount) assign(in GLAccountInput) {
	a.Name = strings.TrimSpace(in.Name)
	a.GLCode = strings.TrimSpace(in.GLCode)
	a.Type = in.Type
	a.Usage = in.Usage
	a.ManualEntriesAllowed = in.ManualEntriesAllowed
	a.Tag = strings.TrimSpace(in.Tag)
	a.Description = in.Description
}

func (a *GLAccount) setParent(parent *GLAccount) error {
	if parent == nil {
		a.ParentID = nil
		a.Hierarchy = "." + a.ID.String() + "."
		return nil
	}
	if parent.ID == a.ID {
		return shared.NewDomainError("GL_ACCOUNT_PARENT_SELF", "GL account cannot be its own parent")
	}
	if strings.HasPrefix(parent.Hierarchy, a.Hierarchy) && a.Hierarchy != "" {
		return shared.NewDomainError("GL_ACCOUNT_PARENT_DESCENDANT", "GL account cannot be placed under its own descendant")
	}
	if parent.Usage != GLAccountUsageHeader {
		return shared.NewDomainError("GL_ACCOUNT_PARENT_NOT_HEADER", "Parent GL account must be a HEADER account")
	}
	if parent.Type != a.Type {
		return shared.NewDomainError("GL_ACCOUNT_PARENT_TYPE_MISMATCH", "Parent GL account must be of the same type")
	}
	a.ParentID = &parent.ID
	a.Hierarchy = parent.Hierarchy + a.ID.String() + "."
	return nil
}

// Update changes the account. hasChildren and hasEntries describe the
// account's current position in the ledger and guard usage changes.
// It returns the previous hierarchy when the account moved.
func (a *GLAccount) Update(in GLAccountInput, parent *GLAccount, hasChildren, hasEntries bool) (string, error) {
	if err := in.validate(); err != nil {
		return "", err
	}
	if in.Usage != a.Usage {
		if a.Usage == GLAccountUsageHeader && hasChildren {
			return "", shared.NewDomainError("GL_ACCOUNT_HAS_CHILDREN", "A HEADER account with children cannot become DETAIL")
		}
		if a.Usage == GLAccountUsageDetail && hasEntries {
			return "", shared.NewDomainError("GL_ACCOUNT_HAS_ENTRIES", "A DETAIL account with journal entries cannot become HEADER")
		}
	}
	if in.Type != a.Type && (hasChildren || hasEntries) {
		return "", shared.NewDomainError("GL_ACCOUNT_TYPE_LOCKED", "Account type cannot change once the account is in use")
	}
	old := a.Hierarchy
	a.assign(in)
	if err := a.setParent(parent); err != nil {
		return "", err
	}
	a.Touch()
	a.IncrementVersion()
	return old, nil
}

// SetDisabled enables or disables postings to the account
func (a *GLAccount) SetDisabled(disabled bool) {
	a.Disabled = disabled
	a.Touch()
}

// CheckPostable returns an error unless the account can take a posting
func (a *GLAccount) CheckPostable(manual bool) error {
	if a.Usage != GLAccountUsageDetail {
		return shared.NewDomainError("GL_ACCOUNT_NOT_DETAIL", "Journal entries can only post to DETAIL accounts: "+a.GLCode)
	}
	if a.Disabled {
		return shared.NewDomainError("GL_ACCOUNT_DISABLED", "GL account is disabled: "+a.GLCode)
	}
	if manual && !a.ManualEntriesAllowed {
		return shared.NewDomainError("GL_ACCOUNT_MANUAL_NOT_ALLOWED", "Manual entries are not allowed on GL account: "+a.GLCode)
	}
	return nil
}

// CheckDeletable returns an error if the account is still in use
func (a *GLAccount) CheckDeletable(hasChildren, hasEntries bool) error {
	if hasChildren {
		return shared.NewDomainError("GL_ACCOUNT_HAS_CHILDREN", "GL account has child accounts")
	}
	if hasEntries {
		return shared.NewDomainError("GL_ACCOUNT_HAS_ENTRIES", "GL account has journal entries")
	}
	return nil
}
