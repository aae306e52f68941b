package portfolio

import (
	"slices"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProduct(t *testing.T, multi bool) *LoanProduct {
	t.Helper()
	p, err := NewLoanProduct(uuid.New(), LoanProductInput{
		Name:            "Working capital",
		ShortName:       "WC",
		MinPrincipal:    dec("100"),
		MaxPrincipal:    dec("5000"),
		Defaults:        monthlyTerms("1000", 2, "12"),
		MultiDisburse:   multi,
		MaxTrancheCount: 2,
	})
	require.NoError(t, err)
	return p
}

func submitTestLoan(t *testing.T, product *LoanProduct, terms LoanTerms, tranches []Disbursement) *Loan {
	t.Helper()
	clientID := uuid.New()
	l, err := SubmitLoan(product.TenantID, "LN-202401-00001", product, LoanApplication{
		ClientID:                 &clientID,
		OfficeID:                 uuid.New(),
		Terms:                    terms,
		SubmittedOn:              date(2024, 1, 1),
		ExpectedDisbursementDate: date(2024, 1, 1),
		Tranches:                 tranches,
	}, ScheduleContext{})
	require.NoError(t, err)
	return l
}

func activeTestLoan(t *testing.T) *Loan {
	t.Helper()
	l := submitTestLoan(t, testProduct(t, false), monthlyTerms("1000", 2, "12"), nil)
	require.NoError(t, l.Approve(date(2024, 1, 1), decimal.Zero, ScheduleContext{}))
	_, err := l.Disburse(date(2024, 1, 1), ScheduleContext{})
	require.NoError(t, err)
	return l
}

func TestSubmitLoanValidation(t *testing.T) {
	product := testProduct(t, false)

	t.Run("borrower required", func(t *testing.T) {
		_, err := SubmitLoan(product.TenantID, "LN", product, LoanApplication{
			OfficeID: uuid.New(), Terms: monthlyTerms("1000", 2, "12"),
			SubmittedOn: date(2024, 1, 1), ExpectedDisbursementDate: date(2024, 1, 1),
		}, ScheduleContext{})
		assert.Error(t, err)
	})

	t.Run("principal outside product range", func(t *testing.T) {
		clientID := uuid.New()
		_, err := SubmitLoan(product.TenantID, "LN", product, LoanApplication{
			ClientID: &clientID, OfficeID: uuid.New(), Terms: monthlyTerms("9000", 2, "12"),
			SubmittedOn: date(2024, 1, 1), ExpectedDisbursementDate: date(2024, 1, 1),
		}, ScheduleContext{})
		assert.Error(t, err)
	})

	t.Run("tranches need a multi-disburse product", func(t *testing.T) {
		clientID := uuid.New()
		_, err := SubmitLoan(product.TenantID, "LN", product, LoanApplication{
			ClientID: &clientID, OfficeID: uuid.New(), Terms: monthlyTerms("1000", 2, "12"),
			SubmittedOn: date(2024, 1, 1), ExpectedDisbursementDate: date(2024, 1, 1),
			Tranches: []Disbursement{
				{ExpectedDate: date(2024, 1, 1), Principal: dec("500")},
				{ExpectedDate: date(2024, 1, 15), Principal: dec("500")},
			},
		}, ScheduleContext{})
		assert.Error(t, err)
	})

	l := submitTestLoan(t, product, monthlyTerms("1000", 2, "12"), nil)
	assert.Equal(t, LoanSubmitted, l.Status)
	assert.Len(t, l.Installments, 2)
	assert.NotEmpty(t, l.PullEvents())
}

func TestLoanApprovalLifecycle(t *testing.T) {
	product := testProduct(t, false)
	l := submitTestLoan(t, product, monthlyTerms("1000", 2, "12"), nil)

	assert.Error(t, l.Approve(date(2024, 1, 1), dec("2000"), ScheduleContext{}), "more than requested")
	require.NoError(t, l.Approve(date(2024, 1, 1), dec("800"), ScheduleContext{}))
	assert.Equal(t, LoanApproved, l.Status)
	assertDec(t, "800", l.ApprovedPrincipal)
	assertDec(t, "800", l.PrincipalOutstanding())

	require.NoError(t, l.UndoApproval())
	assert.Equal(t, LoanSubmitted, l.Status)
	assert.Nil(t, l.ApprovedOn)

	require.NoError(t, l.Reject(date(2024, 1, 2)))
	assert.Equal(t, LoanRejected, l.Status)
	assert.Error(t, l.Withdraw(date(2024, 1, 2)))

	w := submitTestLoan(t, product, monthlyTerms("1000", 2, "12"), nil)
	require.NoError(t, w.Withdraw(date(2024, 1, 2)))
	assert.Equal(t, LoanWithdrawn, w.Status)
	assert.False(t, w.Status.IsOpen())
}

func TestLoanRepaymentAllocation(t *testing.T) {
	l := activeTestLoan(t)
	assert.Equal(t, LoanActive, l.Status)
	require.Len(t, l.Transactions, 1)
	assert.Equal(t, TxnDisbursement, l.Transactions[0].Type)

	_, err := l.MakeRepayment(date(2024, 2, 1), decimal.Zero, "", "")
	assert.Error(t, err)

	txn, err := l.MakeRepayment(date(2024, 2, 1), dec("100"), "R-1", "")
	require.NoError(t, err)
	assertDec(t, "10", txn.InterestPortion)
	assertDec(t, "90", txn.PrincipalPortion)

	principal, interest := l.Outstanding()
	assertDec(t, "910", principal)
	assertDec(t, "5.02", interest)
	assert.Equal(t, 10, l.DaysOverdue(date(2024, 2, 11)))

	p, i := l.DueAsOf(date(2024, 2, 1))
	assertDec(t, "407.51", p)
	assert.True(t, i.IsZero())

	_, err = l.MakeRepayment(date(2024, 1, 31), dec("10"), "", "")
	assert.Error(t, err, "backdated before the latest repayment")

	over, err := l.MakeRepayment(date(2024, 2, 11), dec("1000"), "R-2", "")
	require.NoError(t, err)
	assertDec(t, "84.98", over.OverpaymentPortion)
	assert.Equal(t, LoanOverpaid, l.Status)
	assertDec(t, "84.98", l.OverpaidAmount)
	assert.Equal(t, date(2024, 2, 11), *l.ClosedOn)
	for _, inst := range l.Installments {
		assert.True(t, inst.IsComplete())
		assert.NotNil(t, inst.CompletedOn)
	}

	t.Run("reversal reopens the loan", func(t *testing.T) {
		reversed, err := l.ReverseTransaction(over.ID, ScheduleContext{})
		require.NoError(t, err)
		assert.True(t, reversed.Reversed)
		assert.Equal(t, LoanActive, l.Status)
		assert.True(t, l.OverpaidAmount.IsZero())
		assertDec(t, "915.02", l.TotalOutstanding())

		_, err = l.ReverseTransaction(over.ID, ScheduleContext{})
		assert.Error(t, err)
		_, err = l.ReverseTransaction(l.Transactions[0].ID, ScheduleContext{})
		assert.Error(t, err, "disbursements are undone, not reversed")
	})
}

func TestLoanExactPayoffCloses(t *testing.T) {
	l := activeTestLoan(t)
	_, err := l.MakeRepayment(date(2024, 2, 1), dec("1015.02"), "", "")
	require.NoError(t, err)
	assert.Equal(t, LoanClosedObligationMet, l.Status)
	assert.True(t, l.OverpaidAmount.IsZero())

	_, err = l.MakeRepayment(date(2024, 2, 2), dec("1"), "", "")
	assert.Error(t, err)
}

func TestLoanWaiveAndWriteOff(t *testing.T) {
	l := activeTestLoan(t)
	_, err := l.WaiveInterest(date(2024, 1, 15), dec("20"), "")
	assert.Error(t, err, "more than outstanding interest")

	txn, err := l.WaiveInterest(date(2024, 1, 15), dec("12"), "hardship")
	require.NoError(t, err)
	assertDec(t, "12", txn.InterestPortion)
	assertDec(t, "10", l.Installments[0].InterestWaived)
	assertDec(t, "2", l.Installments[1].InterestWaived)

	wo, err := l.WriteOff(date(2024, 3, 15), "uncollectable")
	require.NoError(t, err)
	assertDec(t, "1000", wo.PrincipalPortion)
	assertDec(t, "3.02", wo.InterestPortion)
	assert.Equal(t, LoanWrittenOff, l.Status)
	assert.False(t, l.Status.IsOpen())

	// stored and exposed verbatim
	assert.Equal(t, "WRITEOFF", string(wo.Type))
	assert.Equal(t, "CLOSED_WRITTEN_OFF", string(l.Status))
}

func TestLoanUndoDisbursal(t *testing.T) {
	l := activeTestLoan(t)
	reversed, err := l.UndoDisbursal(ScheduleContext{})
	require.NoError(t, err)
	require.Len(t, reversed, 1)
	assert.Equal(t, TxnDisbursement, reversed[0].Type)
	assert.Equal(t, LoanApproved, l.Status)
	assert.Nil(t, l.DisbursedOn)
	assert.Equal(t, 0, l.NextTranche())

	l = activeTestLoan(t)
	_, err = l.MakeRepayment(date(2024, 2, 1), dec("50"), "", "")
	require.NoError(t, err)
	_, err = l.UndoDisbursal(ScheduleContext{})
	assert.Error(t, err)
}

func TestLoanUndoDisbursal_FailureLeavesLoanUntouched(t *testing.T) {
	l := activeTestLoan(t)
	disbursedOn := *l.DisbursedOn
	installments := slices.Clone(l.Installments)
	l.Terms.NumberOfRepayments = 0

	_, err := l.UndoDisbursal(ScheduleContext{})

	require.Error(t, err)
	assert.Equal(t, LoanActive, l.Status)
	require.NotNil(t, l.DisbursedOn)
	assert.Equal(t, disbursedOn, *l.DisbursedOn)
	assert.NotNil(t, l.Disbursements[0].ActualDate)
	for _, txn := range l.Transactions {
		assert.False(t, txn.Reversed, txn.Type)
	}
	assert.Equal(t, installments, l.Installments)
	assert.Equal(t, -1, l.NextTranche())
}

func TestLoanVersionIsLeftToTheRepository(t *testing.T) {
	l := activeTestLoan(t)
	assert.Equal(t, 1, l.Version)

	_, err := l.MakeRepayment(date(2024, 2, 1), dec("50"), "", "")
	require.NoError(t, err)
	_, err = l.WriteOff(date(2024, 3, 15), "")
	require.NoError(t, err)
	assert.Equal(t, 1, l.Version)
}

func TestLoanAccrual(t *testing.T) {
	l := activeTestLoan(t)

	txns := l.AccrueInterest(date(2024, 1, 16))
	require.Len(t, txns, 1)
	// 10.00 * 15 / 31 days
	assertDec(t, "4.84", txns[0].InterestPortion)
	assert.Equal(t, 1, txns[0].InstallmentNumber)

	txns = l.AccrueInterest(date(2024, 2, 1))
	require.Len(t, txns, 1)
	assertDec(t, "5.16", txns[0].InterestPortion)
	assertDec(t, "10", l.Installments[0].InterestAccrued)

	assert.Empty(t, l.AccrueInterest(date(2024, 2, 1)), "already accrued")
	assert.Equal(t, date(2024, 2, 1), *l.AccruedTill)
}

func TestLoanTranches(t *testing.T) {
	product := testProduct(t, true)
	terms := monthlyTerms("1000", 3, "0")
	terms.Amortization = AmortizationEqualPrincipal
	l := submitTestLoan(t, product, terms, []Disbursement{
		{ExpectedDate: date(2024, 1, 1), Principal: dec("500")},
		{ExpectedDate: date(2024, 2, 1), Principal: dec("500")},
	})
	require.NoError(t, l.Approve(date(2024, 1, 1), decimal.Zero, ScheduleContext{}))

	_, err := l.Disburse(date(2024, 1, 1), ScheduleContext{})
	require.NoError(t, err)
	assert.Equal(t, LoanActive, l.Status)
	assert.Equal(t, 1, l.NextTranche())
	assertDec(t, "500", l.PrincipalOutstanding())

	txn, err := l.Disburse(date(2024, 2, 1), ScheduleContext{})
	require.NoError(t, err)
	assertDec(t, "500", txn.Amount)
	assert.Equal(t, -1, l.NextTranche())
	assertDec(t, "1000", l.PrincipalOutstanding())

	_, err = l.Disburse(date(2024, 2, 2), ScheduleContext{})
	assert.Error(t, err, "no tranche left")
}
