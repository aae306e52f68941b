package accounting

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccountingRule(t *testing.T) {
	tenant := uuid.New()
	debit, credit := uuid.New(), uuid.New()

	t.Run("fixed accounts", func(t *testing.T) {
		r, err := NewAccountingRule(tenant, AccountingRuleInput{Name: "Cash sale", DebitAccountID: &debit, CreditAccountID: &credit})
		require.NoError(t, err)
		d, c, err := r.Expand(decimal.NewFromInt(10))
		require.NoError(t, err)
		assert.Equal(t, debit, d[0].GLAccountID)
		assert.Equal(t, credit, c[0].GLAccountID)
		assert.Len(t, r.ReferencedAccounts(), 2)
	})

	t.Run("account and tags are exclusive", func(t *testing.T) {
		_, err := NewAccountingRule(tenant, AccountingRuleInput{Name: "x", DebitAccountID: &debit, DebitTags: []string{"cash"}, CreditAccountID: &credit})
		assert.Error(t, err)
	})

	t.Run("each side required", func(t *testing.T) {
		_, err := NewAccountingRule(tenant, AccountingRuleInput{Name: "x", DebitAccountID: &debit})
		assert.Error(t, err)
	})

	t.Run("tagged rule cannot expand", func(t *testing.T) {
		r, err := NewAccountingRule(tenant, AccountingRuleInput{Name: "x", DebitTags: []string{"cash", "cash", " "}, CreditAccountID: &credit})
		require.NoError(t, err)
		assert.Equal(t, []string{"cash"}, r.DebitTags)
		_, _, err = r.Expand(decimal.NewFromInt(1))
		assert.Error(t, err)
	})
}

func TestAccountingRuleCheckLines(t *testing.T) {
	tenant := uuid.New()
	till := detail(t, tenant, "1001", GLAccountTypeAsset, nil)
	till.Tag = "cash"
	bank := detail(t, tenant, "1002", GLAccountTypeAsset, nil)
	bank.Tag = "bank"
	income := detail(t, tenant, "4001", GLAccountTypeIncome, nil)
	accounts := map[uuid.UUID]*GLAccount{till.ID: till, bank.ID: bank, income.ID: income}

	r, err := NewAccountingRule(tenant, AccountingRuleInput{Name: "Fees", DebitTags: []string{"cash"}, CreditAccountID: &income.ID})
	require.NoError(t, err)

	amt := decimal.NewFromInt(5)
	ok := []Posting{{GLAccountID: till.ID, Amount: amt}}
	credits := []Posting{{GLAccountID: income.ID, Amount: amt}}
	assert.NoError(t, r.CheckLines(ok, credits, accounts))

	assert.Error(t, r.CheckLines([]Posting{{GLAccountID: bank.ID, Amount: amt}}, credits, accounts))
	assert.Error(t, r.CheckLines(ok, []Posting{{GLAccountID: till.ID, Amount: amt}}, accounts))
	assert.Error(t, r.CheckLines(append(ok, ok...), credits, accounts), "multiple debits not allowed")
}
