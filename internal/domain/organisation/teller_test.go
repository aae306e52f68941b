package organisation

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateCashier(t *testing.T) {
	tenant := uuid.New()
	head, _ := NewHeadOffice(tenant, "Head Office", date(2020, 1, 1), "")
	branch, _ := NewOffice(tenant, "Branch", head, date(2020, 2, 1), "")
	other, _ := NewOffice(tenant, "Other", head, date(2020, 2, 1), "")

	teller, err := NewTeller(tenant, branch.ID, "Counter 1", "", date(2024, 1, 1), nil, TellerStatusActive)
	require.NoError(t, err)

	staff, err := NewStaff(tenant, head.ID, "Amina", "Otieno")
	require.NoError(t, err)

	period := CashierPeriod{StartDate: date(2024, 2, 1), FullDay: true}

	t.Run("head office staff can serve branch teller", func(t *testing.T) {
		c, err := AllocateCashier(teller, branch, head, staff, "", period, nil)
		require.NoError(t, err)
		assert.Equal(t, teller.ID, c.TellerID)
	})

	t.Run("staff from sibling office rejected", func(t *testing.T) {
		_, err := AllocateCashier(teller, branch, other, staff, "", period, nil)
		assert.Error(t, err)
	})

	t.Run("period before teller start rejected", func(t *testing.T) {
		_, err := AllocateCashier(teller, branch, head, staff, "", CashierPeriod{StartDate: date(2023, 12, 1), FullDay: true}, nil)
		assert.Error(t, err)
	})

	t.Run("overlapping allocation rejected", func(t *testing.T) {
		existing, err := AllocateCashier(teller, branch, head, staff, "", period, nil)
		require.NoError(t, err)
		_, err = AllocateCashier(teller, branch, head, staff, "", CashierPeriod{StartDate: date(2024, 3, 1), FullDay: true}, []Cashier{*existing})
		assert.Error(t, err)
	})

	t.Run("part day needs hours", func(t *testing.T) {
		_, err := AllocateCashier(teller, branch, head, staff, "", CashierPeriod{StartDate: date(2024, 2, 1), StartTime: "17:00", EndTime: "09:00"}, nil)
		assert.Error(t, err)
		c, err := AllocateCashier(teller, branch, head, staff, "", CashierPeriod{StartDate: date(2024, 2, 1), StartTime: "09:00", EndTime: "17:00"}, nil)
		require.NoError(t, err)
		assert.Equal(t, "09:00", c.StartTime)
	})
}

func TestCashierTransaction(t *testing.T) {
	tenant := uuid.New()
	c := &Cashier{StartDate: date(2024, 1, 1)}
	c.TenantID = tenant
	c.ID = uuid.New()

	empty := CashierBalance{Currency: "KES", Allocated: decimal.Zero, Settled: decimal.Zero}

	txn, err := NewCashierTransaction(c, CashierTxnAllocate, decimal.NewFromInt(500), "KES", date(2024, 1, 2), "float", empty)
	require.NoError(t, err)
	assert.Equal(t, CashierTxnAllocate, txn.Type)

	_, err = NewCashierTransaction(c, CashierTxnSettle, decimal.NewFromInt(1), "KES", date(2024, 1, 2), "", empty)
	assert.Error(t, err)

	held := CashierBalance{Currency: "KES", Allocated: decimal.NewFromInt(500), Settled: decimal.NewFromInt(100)}
	_, err = NewCashierTransaction(c, CashierTxnSettle, decimal.NewFromInt(400), "KES", date(2024, 1, 2), "", held)
	assert.NoError(t, err)

	_, err = NewCashierTransaction(c, CashierTxnAllocate, decimal.Zero, "KES", date(2024, 1, 2), "", empty)
	assert.Error(t, err)

	_, err = NewCashierTransaction(c, CashierTxnAllocate, decimal.NewFromInt(1), "KES", date(2023, 12, 31), "", empty)
	assert.Error(t, err)
}

func TestTellerMapAccounts(t *testing.T) {
	teller, err := NewTeller(uuid.New(), uuid.New(), "Counter", "", date(2024, 1, 1), nil, "")
	require.NoError(t, err)
	assert.Equal(t, TellerStatusActive, teller.Status)
	assert.False(t, teller.PostsToLedger())

	cash := uuid.New()
	assert.Error(t, teller.MapAccounts(&cash, nil))

	vault := uuid.New()
	require.NoError(t, teller.MapAccounts(&cash, &vault))
	assert.True(t, teller.PostsToLedger())
}
