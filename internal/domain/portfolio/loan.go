package portfolio

import (
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LoanStatus is the lifecycle state of a loan
type LoanStatus string

const (
	LoanSubmitted           LoanStatus = "SUBMITTED_AND_PENDING_APPROVAL"
	LoanApproved            LoanStatus = "APPROVED"
	LoanActive              LoanStatus = "ACTIVE"
	LoanClosedObligationMet LoanStatus = "CLOSED_OBLIGATIONS_MET"
	LoanWrittenOff          LoanStatus = "CLOSED_WRITTEN_OFF"
	LoanRejected            LoanStatus = "REJECTED"
	LoanWithdrawn           LoanStatus = "WITHDRAWN_BY_CLIENT"
	LoanOverpaid            LoanStatus = "OVERPAID"
)

// IsValid checks the status
func (s LoanStatus) IsValid() bool {
	switch s {
	case LoanSubmitted, LoanApproved, LoanActive, LoanClosedObligationMet,
		LoanWrittenOff, LoanRejected, LoanWithdrawn, LoanOverpaid:
		return true
	}
	return false
}

// IsOpen reports whether the loan still carries obligations or may still
// be disbursed
func (s LoanStatus) IsOpen() bool {
	return s == LoanSubmitted || s == LoanApproved || s == LoanActive || s == LoanOverpaid
}

// LoanTransactionType is the kind of monetary event on a loan
type LoanTransactionType string

const (
	TxnDisbursement  LoanTransactionType = "DISBURSEMENT"
	TxnRepayment     LoanTransactionType = "REPAYMENT"
	TxnWaiveInterest LoanTransactionType = "WAIVE_INTEREST"
	TxnWriteOff      LoanTransactionType = "WRITEOFF"
	TxnAccrual       LoanTransactionType = "ACCRUAL"
)

// LoanTransaction is a monetary event and its allocation
type LoanTransaction struct {
	ID                   uuid.UUID
	TenantID             uuid.UUID
	LoanID               uuid.UUID
	Type                 LoanTransactionType
	TransactionDate      time.Time
	Amount               decimal.Decimal
	PrincipalPortion     decimal.Decimal
	InterestPortion      decimal.Decimal
	OverpaymentPortion   decimal.Decimal
	OutstandingAfter     decimal.Decimal
	InstallmentNumber    int // accruals only
	ReceiptNumber        string
	Note                 string
	Reversed             bool
	JournalTransactionID string
	CreatedAt            time.Time
}

// LoanApplication carries what a borrower applies for
type LoanApplication struct {
	ClientID                 *uuid.UUID
	GroupID                  *uuid.UUID
	OfficeID                 uuid.UUID
	LoanOfficerID            *uuid.UUID
	CalendarID               *uuid.UUID
	ExternalID               string
	Terms                    LoanTerms
	SubmittedOn              time.Time
	ExpectedDisbursementDate time.Time
	FirstRepaymentOn         *time.Time
	Tranches                 []Disbursement
}

// Loan is a credit account of a client, a group, or a client within a group.
// Its Version is the stored one; only the repository advances it on save.
type Loan struct {
	shared.TenantAggregateRoot
	AccountNo                string
	ClientID                 *uuid.UUID
	GroupID                  *uuid.UUID
	ProductID                uuid.UUID
	OfficeID                 uuid.UUID
	LoanOfficerID            *uuid.UUID
	CalendarID               *uuid.UUID
	ExternalID               string
	Status                   LoanStatus
	Terms                    LoanTerms
	ApprovedPrincipal        decimal.Decimal
	SubmittedOn              time.Time
	ExpectedDisbursementDate time.Time
	FirstRepaymentOn         *time.Time
	ApprovedOn               *time.Time
	DisbursedOn              *time.Time
	ClosedOn                 *time.Time
	RejectedOn               *time.Time
	WithdrawnOn              *time.Time
	WrittenOffOn             *time.Time
	AccruedTill              *time.Time
	OverpaidAmount           decimal.Decimal
	Disbursements            []Disbursement
	Installments             []Installment
	Transactions             []LoanTransaction
}

// SubmitLoan validates an application against its product and generates
// the proposed schedule
func SubmitLoan(tenantID uuid.UUID, accountNo string, product *LoanProduct, in LoanApplication, sctx ScheduleContext) (*Loan, error) {
	l := &Loan{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		AccountNo:           accountNo,
		ProductID:           product.ID,
		Status:              LoanSubmitted,
	}
	if err := l.apply(product, in, sctx); err != nil {
		return nil, err
	}
	l.AddDomainEvent(NewLoanStatusChangedEvent(l, "", LoanSubmitted))
	return l, nil
}

// ModifyApplication replaces the terms of a pending application
func (l *Loan) ModifyApplication(product *LoanProduct, in LoanApplication, sctx ScheduleContext) error {
	if l.Status != LoanSubmitted {
		return shared.NewDomainError("LOAN_NOT_PENDING", "Only pending applications can be modified")
	}
	if err := l.apply(product, in, sctx); err != nil {
		return err
	}
	l.Touch()
	return nil
}

func (l *Loan) apply(product *LoanProduct, in LoanApplication, sctx ScheduleContext) error {
	if in.ClientID == nil && in.GroupID == nil {
		return shared.NewDomainError("LOAN_BORROWER_REQUIRED", "A loan needs a client, a group, or both")
	}
	if in.OfficeID == uuid.Nil {
		return shared.NewDomainError("INVALID_OFFICE", "Office is required")
	}
	in.Terms.Currency = strings.ToUpper(in.Terms.Currency)
	if in.Terms.Currency != product.Defaults.Currency {
		return shared.NewDomainError("LOAN_CURRENCY_MISMATCH", "Loan currency must match the product currency")
	}
	in.Terms.Digits = product.Defaults.Digits
	if !product.AllowsPrincipal(in.Terms.Principal) {
		return shared.NewDomainError("LOAN_PRINCIPAL_OUT_OF_RANGE", "Principal is outside the product's range")
	}
	submitted := shared.Day(in.SubmittedOn)
	expected := shared.Day(in.ExpectedDisbursementDate)
	if shared.IsAfterToday(submitted) {
		return shared.NewDomainError("LOAN_SUBMITTED_IN_FUTURE", "Submission date cannot be in the future")
	}
	if expected.Before(submitted) {
		return shared.NewDomainError("LOAN_DISBURSEMENT_BEFORE_SUBMISSION", "Expected disbursement cannot precede submission")
	}

	tranches := in.Tranches
	if len(tranches) == 0 {
		tranches = []Disbursement{{ExpectedDate: expected, Principal: in.Terms.Principal}}
	}
	if len(tranches) > 1 {
		if !product.MultiDisburse {
			return shared.NewDomainError("LOAN_TRANCHES_NOT_ALLOWED", "Product does not allow multiple disbursements")
		}
		if len(tranches) > product.MaxTrancheCount {
			return shared.NewDomainError("LOAN_TOO_MANY_TRANCHES", "Tranche count exceeds the product maximum")
		}
	}
	total := decimal.Zero
	for i := range tranches {
		tranches[i].ExpectedDate = shared.Day(tranches[i].ExpectedDate)
		tranches[i].ActualDate = nil
		if tranches[i].ExpectedDate.Before(expected) {
			return shared.NewDomainError("LOAN_TRANCHE_BEFORE_DISBURSEMENT", "Tranches cannot precede the expected disbursement date")
		}
		total = total.Add(tranches[i].Principal)
	}
	if !total.Equal(in.Terms.Principal) {
		return shared.NewDomainError("LOAN_TRANCHE_TOTAL_MISMATCH", "Tranche principals must add up to the loan principal")
	}
	sort.SliceStable(tranches, func(i, j int) bool { return tranches[i].ExpectedDate.Before(tranches[j].ExpectedDate) })
	if !tranches[0].ExpectedDate.Equal(expected) {
		return shared.NewDomainError("LOAN_TRANCHE_BEFORE_DISBURSEMENT", "The first tranche must fall on the expected disbursement date")
	}

	sched, err := GenerateSchedule(in.Terms, tranches, in.FirstRepaymentOn, sctx)
	if err != nil {
		return err
	}
	l.ClientID = in.ClientID
	l.GroupID = in.GroupID
	l.OfficeID = in.OfficeID
	l.LoanOfficerID = in.LoanOfficerID
	l.CalendarID = in.CalendarID
	l.ExternalID = in.ExternalID
	l.Terms = in.Terms
	l.SubmittedOn = submitted
	l.ExpectedDisbursementDate = expected
	l.FirstRepaymentOn = in.FirstRepaymentOn
	l.Disbursements = tranches
	l.Installments = sched.Installments
	return nil
}

func (l *Loan) setStatus(to LoanStatus) {
	from := l.Status
	l.Status = to
	l.Touch()
	l.AddDomainEvent(NewLoanStatusChangedEvent(l, from, to))
}

func checkBusinessDate(date time.Time, notBefore time.Time, what string) error {
	if shared.IsAfterToday(date) {
		return shared.NewDomainError("LOAN_DATE_IN_FUTURE", what+" date cannot be in the future")
	}
	if shared.Day(date).Before(shared.Day(notBefore)) {
		return shared.NewDomainError("LOAN_DATE_OUT_OF_ORDER", what+" date is before the previous lifecycle date")
	}
	return nil
}

// Approve approves the application, optionally for a smaller principal
func (l *Loan) Approve(date time.Time, principal decimal.Decimal, sctx ScheduleContext) error {
	if l.Status != LoanSubmitted {
		return shared.NewDomainError("LOAN_NOT_PENDING", "Only pending applications can be approved")
	}
	if err := checkBusinessDate(date, l.SubmittedOn, "Approval"); err != nil {
		return err
	}
	if principal.IsZero() {
		principal = l.Terms.Principal
	}
	if !principal.IsPositive() || principal.GreaterThan(l.Terms.Principal) {
		return shared.NewDomainError("LOAN_APPROVED_AMOUNT_INVALID", "Approved principal must be positive and at most the proposed principal")
	}
	if !principal.Equal(l.Terms.Principal) {
		if len(l.Disbursements) > 1 {
			return shared.NewDomainError("LOAN_APPROVED_AMOUNT_INVALID", "Tranche loans are approved for the full principal")
		}
		l.Terms.Principal = principal
		l.Disbursements[0].Principal = principal
		if err := l.rebuild(sctx); err != nil {
			return err
		}
	}
	d := shared.Day(date)
	l.ApprovedOn = &d
	l.ApprovedPrincipal = principal
	l.setStatus(LoanApproved)
	return nil
}

// UndoApproval returns an approved loan to pending
func (l *Loan) UndoApproval() error {
	if l.Status != LoanApproved {
		return shared.NewDomainError("LOAN_NOT_APPROVED", "Only approved loans can be returned to pending")
	}
	l.ApprovedOn = nil
	l.ApprovedPrincipal = decimal.Zero
	l.setStatus(LoanSubmitted)
	return nil
}

// Reject rejects a pending application
func (l *Loan) Reject(date time.Time) error {
	if l.Status != LoanSubmitted {
		return shared.NewDomainError("LOAN_NOT_PENDING", "Only pending applications can be rejected")
	}
	if err := checkBusinessDate(date, l.SubmittedOn, "Rejection"); err != nil {
		return err
	}
	d := shared.Day(date)
	l.RejectedOn = &d
	l.ClosedOn = &d
	l.setStatus(LoanRejected)
	return nil
}

// Withdraw records that the borrower withdrew a pending application
func (l *Loan) Withdraw(date time.Time) error {
	if l.Status != LoanSubmitted {
		return shared.NewDomainError("LOAN_NOT_PENDING", "Only pending applications can be withdrawn")
	}
	if err := checkBusinessDate(date, l.SubmittedOn, "Withdrawal"); err != nil {
		return err
	}
	d := shared.Day(date)
	l.WithdrawnOn = &d
	l.ClosedOn = &d
	l.setStatus(LoanWithdrawn)
	return nil
}

// NextTranche returns the index of the next undisbursed tranche, or -1
func (l *Loan) NextTranche() int {
	for i, d := range l.Disbursements {
		if d.ActualDate == nil {
			return i
		}
	}
	return -1
}

// Disburse pays out the next tranche on date. The schedule is rebuilt from
// the actual disbursement dates.
func (l *Loan) Disburse(date time.Time, sctx ScheduleContext) (*LoanTransaction, error) {
	idx := l.NextTranche()
	switch {
	case l.Status == LoanApproved:
	case l.Status == LoanActive && idx >= 0:
	default:
		return nil, shared.NewDomainError("LOAN_NOT_DISBURSABLE", "Loan has no tranche awaiting disbursement")
	}
	if idx < 0 {
		return nil, shared.NewDomainError("LOAN_NOT_DISBURSABLE", "Loan has no tranche awaiting disbursement")
	}
	notBefore := *l.ApprovedOn
	if idx > 0 {
		notBefore = *l.Disbursements[idx-1].ActualDate
	}
	if err := checkBusinessDate(date, notBefore, "Disbursement"); err != nil {
		return nil, err
	}
	d := shared.Day(date)
	l.Disbursements[idx].ActualDate = &d
	first := l.Status == LoanApproved
	if first {
		l.DisbursedOn = &d
		l.Status = LoanActive
	}
	if err := l.rebuild(sctx); err != nil {
		l.Disbursements[idx].ActualDate = nil
		if first {
			l.DisbursedOn = nil
			l.Status = LoanApproved
		}
		return nil, err
	}
	amount := l.Disbursements[idx].Principal
	txn := l.newTransaction(TxnDisbursement, d, amount)
	txn.PrincipalPortion = amount
	txn.OutstandingAfter = l.PrincipalOutstanding()
	l.Transactions = append(l.Transactions, *txn)
	if first {
		l.Status = LoanApproved
		l.setStatus(LoanActive)
	} else {
		l.Touch()
	}
	l.AddDomainEvent(NewLoanTransactionEvent(l, txn))
	return txn, nil
}

// UndoDisbursal reverses every disbursement of a loan that has no
// repayments and returns it to approved
func (l *Loan) UndoDisbursal(sctx ScheduleContext) ([]LoanTransaction, error) {
	if l.Status != LoanActive {
		return nil, shared.NewDomainError("LOAN_NOT_ACTIVE", "Only active loans can have their disbursement undone")
	}
	for _, t := range l.Transactions {
		if !t.Reversed && (t.Type == TxnRepayment || t.Type == TxnWaiveInterest) {
			return nil, shared.NewDomainError("LOAN_HAS_REPAYMENTS", "Reverse repayments before undoing the disbursement")
		}
	}
	txns, tranches := slices.Clone(l.Transactions), slices.Clone(l.Disbursements)
	disbursedOn, accruedTill := l.DisbursedOn, l.AccruedTill

	var reversed []LoanTransaction
	for i := range l.Transactions {
		t := &l.Transactions[i]
		if t.Reversed {
			continue
		}
		t.Reversed = true
		reversed = append(reversed, *t)
	}
	for i := range l.Disbursements {
		l.Disbursements[i].ActualDate = nil
	}
	l.DisbursedOn = nil
	l.AccruedTill = nil
	l.Status = LoanApproved
	if err := l.rebuild(sctx); err != nil {
		l.Transactions, l.Disbursements = txns, tranches
		l.DisbursedOn, l.AccruedTill = disbursedOn, accruedTill
		l.Status = LoanActive
		return nil, err
	}
	l.Status = LoanActive
	l.setStatus(LoanApproved)
	return reversed, nil
}

// MakeRepayment applies a repayment oldest installment first, interest
// before principal. Anything beyond the total outstanding is overpayment.
func (l *Loan) MakeRepayment(date time.Time, amount decimal.Decimal, receiptNumber, note string) (*LoanTransaction, error) {
	if l.Status != LoanActive {
		return nil, shared.NewDomainError("LOAN_NOT_ACTIVE", "Repayments can only be made on active loans")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Repayment amount must be positive")
	}
	if err := checkBusinessDate(date, *l.DisbursedOn, "Repayment"); err != nil {
		return nil, err
	}
	if err := l.checkAfterLastTransaction(date); err != nil {
		return nil, err
	}
	txn := l.newTransaction(TxnRepayment, shared.Day(date), amount.RoundBank(l.Terms.Digits))
	txn.ReceiptNumber = receiptNumber
	txn.Note = note
	l.applyRepayment(txn)
	l.Transactions = append(l.Transactions, *txn)
	l.refreshStatus(txn.TransactionDate)
	l.AddDomainEvent(NewLoanTransactionEvent(l, txn))
	return txn, nil
}

// WaiveInterest forgives outstanding interest oldest installment first
func (l *Loan) WaiveInterest(date time.Time, amount decimal.Decimal, note string) (*LoanTransaction, error) {
	if l.Status != LoanActive {
		return nil, shared.NewDomainError("LOAN_NOT_ACTIVE", "Interest can only be waived on active loans")
	}
	_, interest := l.Outstanding()
	if !amount.IsPositive() || amount.GreaterThan(interest) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Waived amount must be positive and at most the interest outstanding")
	}
	if err := checkBusinessDate(date, *l.DisbursedOn, "Waiver"); err != nil {
		return nil, err
	}
	if err := l.checkAfterLastTransaction(date); err != nil {
		return nil, err
	}
	txn := l.newTransaction(TxnWaiveInterest, shared.Day(date), amount.RoundBank(l.Terms.Digits))
	txn.Note = note
	l.applyWaiver(txn)
	l.Transactions = append(l.Transactions, *txn)
	l.refreshStatus(txn.TransactionDate)
	l.AddDomainEvent(NewLoanTransactionEvent(l, txn))
	return txn, nil
}

// WriteOff closes the loan, writing off everything outstanding
func (l *Loan) WriteOff(date time.Time, note string) (*LoanTransaction, error) {
	if l.Status != LoanActive {
		return nil, shared.NewDomainError("LOAN_NOT_ACTIVE", "Only active loans can be written off")
	}
	if err := checkBusinessDate(date, *l.DisbursedOn, "Write-off"); err != nil {
		return nil, err
	}
	if err := l.checkAfterLastTransaction(date); err != nil {
		return nil, err
	}
	principal, interest := l.Outstanding()
	txn := l.newTransaction(TxnWriteOff, shared.Day(date), principal.Add(interest))
	txn.PrincipalPortion = principal
	txn.InterestPortion = interest
	txn.Note = note
	l.Transactions = append(l.Transactions, *txn)
	d := shared.Day(date)
	l.WrittenOffOn = &d
	l.ClosedOn = &d
	l.setStatus(LoanWrittenOff)
	l.AddDomainEvent(NewLoanTransactionEvent(l, txn))
	return txn, nil
}

// ReverseTransaction undoes a repayment or waiver and reprocesses every
// later transaction against a fresh schedule
func (l *Loan) ReverseTransaction(txnID uuid.UUID, sctx ScheduleContext) (*LoanTransaction, error) {
	if l.Status != LoanActive && l.Status != LoanClosedObligationMet && l.Status != LoanOverpaid {
		return nil, shared.NewDomainError("LOAN_NOT_ACTIVE", "Transactions can only be reversed on active or repaid loans")
	}
	for i := range l.Transactions {
		t := &l.Transactions[i]
		if t.ID != txnID {
			continue
		}
		if t.Reversed {
			return nil, shared.NewDomainError("LOAN_TRANSACTION_REVERSED", "Transaction is already reversed")
		}
		if t.Type != TxnRepayment && t.Type != TxnWaiveInterest {
			return nil, shared.NewDomainError("LOAN_TRANSACTION_NOT_REVERSIBLE", "Only repayments and waivers can be reversed")
		}
		t.Reversed = true
		reversed := *t
		if l.Status != LoanActive {
			l.Status = LoanActive
			l.ClosedOn = nil
		}
		if err := l.rebuild(sctx); err != nil {
			return nil, err
		}
		l.Touch()
		return &reversed, nil
	}
	return nil, shared.NotFound("Loan transaction")
}

// RegenerateSchedule rebuilds the schedule after the calendar it depends
// on changed (holidays, working days or the linked meeting). Existing
// transactions are reprocessed against the new schedule.
func (l *Loan) RegenerateSchedule(sctx ScheduleContext) error {
	if !l.Status.IsOpen() {
		return shared.NewDomainError("LOAN_CLOSED", "Closed loans keep their schedule")
	}
	if err := l.rebuild(sctx); err != nil {
		return err
	}
	l.Touch()
	return nil
}

// AccrueInterest recognizes interest earned up to till. Each installment
// accrues pro rata by days elapsed in its period; one accrual transaction
// is produced per installment that moved.
func (l *Loan) AccrueInterest(till time.Time) []LoanTransaction {
	if l.Status != LoanActive {
		return nil
	}
	till = shared.Day(till)
	if l.AccruedTill != nil && !till.After(*l.AccruedTill) {
		return nil
	}
	var out []LoanTransaction
	for i := range l.Installments {
		inst := &l.Installments[i]
		target := decimal.Zero
		switch {
		case !inst.DueDate.After(till):
			target = inst.Interest
		case inst.FromDate.Before(till):
			elapsed := shared.DaysBetween(inst.FromDate, till)
			period := shared.DaysBetween(inst.FromDate, inst.DueDate)
			target = inst.Interest.Mul(decimal.NewFromInt(int64(elapsed))).
				Div(decimal.NewFromInt(int64(period))).RoundBank(l.Terms.Digits)
		}
		delta := target.Sub(inst.InterestAccrued)
		if !delta.IsPositive() {
			continue
		}
		inst.InterestAccrued = target
		txn := l.newTransaction(TxnAccrual, till, delta)
		txn.InterestPortion = delta
		txn.InstallmentNumber = inst.Number
		l.Transactions = append(l.Transactions, *txn)
		out = append(out, *txn)
	}
	l.AccruedTill = &till
	if len(out) > 0 {
		l.Touch()
	}
	return out
}

// Outstanding returns principal and interest still owed
func (l *Loan) Outstanding() (principal, interest decimal.Decimal) {
	for i := range l.Installments {
		principal = principal.Add(l.Installments[i].PrincipalOutstanding())
		interest = interest.Add(l.Installments[i].InterestOutstanding())
	}
	return principal, interest
}

// PrincipalOutstanding returns principal still owed
func (l *Loan) PrincipalOutstanding() decimal.Decimal {
	p, _ := l.Outstanding()
	return p
}

// TotalOutstanding returns principal plus interest still owed
func (l *Loan) TotalOutstanding() decimal.Decimal {
	p, i := l.Outstanding()
	return p.Add(i)
}

// DueAsOf returns the principal and interest owed on installments falling
// due on or before date
func (l *Loan) DueAsOf(date time.Time) (principal, interest decimal.Decimal) {
	date = shared.Day(date)
	for i := range l.Installments {
		inst := &l.Installments[i]
		if inst.DueDate.After(date) {
			break
		}
		principal = principal.Add(inst.PrincipalOutstanding())
		interest = interest.Add(inst.InterestOutstanding())
	}
	return principal, interest
}

// DueOn returns the installment due on date, if any
func (l *Loan) DueOn(date time.Time) *Installment {
	date = shared.Day(date)
	for i := range l.Installments {
		if l.Installments[i].DueDate.Equal(date) {
			return &l.Installments[i]
		}
	}
	return nil
}

// DaysOverdue counts days since the oldest unpaid installment fell due
func (l *Loan) DaysOverdue(asOf time.Time) int {
	asOf = shared.Day(asOf)
	for i := range l.Installments {
		inst := &l.Installments[i]
		if !inst.DueDate.Before(asOf) {
			return 0
		}
		if !inst.IsComplete() {
			return shared.DaysBetween(inst.DueDate, asOf)
		}
	}
	return 0
}

// MaturityDate is the due date of the last installment
func (l *Loan) MaturityDate() time.Time {
	if len(l.Installments) == 0 {
		return l.ExpectedDisbursementDate
	}
	return l.Installments[len(l.Installments)-1].DueDate
}

func (l *Loan) newTransaction(typ LoanTransactionType, date time.Time, amount decimal.Decimal) *LoanTransaction {
	return &LoanTransaction{
		ID:              uuid.New(),
		TenantID:        l.TenantID,
		LoanID:          l.ID,
		Type:            typ,
		TransactionDate: date,
		Amount:          amount,
		CreatedAt:       time.Now(),
	}
}

func (l *Loan) checkAfterLastTransaction(date time.Time) error {
	date = shared.Day(date)
	for _, t := range l.Transactions {
		if t.Reversed || t.Type == TxnAccrual {
			continue
		}
		if date.Before(t.TransactionDate) {
			return shared.NewDomainError("LOAN_TRANSACTION_BACKDATED", "Transaction date cannot precede the latest loan transaction")
		}
	}
	return nil
}

func (l *Loan) applyRepayment(txn *LoanTransaction) {
	remaining := txn.Amount
	txn.PrincipalPortion, txn.InterestPortion, txn.OverpaymentPortion = decimal.Zero, decimal.Zero, decimal.Zero
	for i := range l.Installments {
		if !remaining.IsPositive() {
			break
		}
		inst := &l.Installments[i]
		pay := decimal.Min(remaining, inst.InterestOutstanding())
		inst.InterestPaid = inst.InterestPaid.Add(pay)
		txn.InterestPortion = txn.InterestPortion.Add(pay)
		remaining = remaining.Sub(pay)

		pay = decimal.Min(remaining, inst.PrincipalOutstanding())
		inst.PrincipalPaid = inst.PrincipalPaid.Add(pay)
		txn.PrincipalPortion = txn.PrincipalPortion.Add(pay)
		remaining = remaining.Sub(pay)
		l.markCompleted(inst, txn.TransactionDate)
	}
	if remaining.IsPositive() {
		txn.OverpaymentPortion = remaining
		l.OverpaidAmount = l.OverpaidAmount.Add(remaining)
	}
	txn.OutstandingAfter = l.TotalOutstanding()
}

func (l *Loan) applyWaiver(txn *LoanTransaction) {
	remaining := txn.Amount
	txn.InterestPortion = decimal.Zero
	for i := range l.Installments {
		if !remaining.IsPositive() {
			break
		}
		inst := &l.Installments[i]
		w := decimal.Min(remaining, inst.InterestOutstanding())
		inst.InterestWaived = inst.InterestWaived.Add(w)
		txn.InterestPortion = txn.InterestPortion.Add(w)
		remaining = remaining.Sub(w)
		l.markCompleted(inst, txn.TransactionDate)
	}
	txn.OutstandingAfter = l.TotalOutstanding()
}

func (l *Loan) markCompleted(inst *Installment, date time.Time) {
	if inst.CompletedOn == nil && inst.IsComplete() {
		d := date
		inst.CompletedOn = &d
	}
}

// refreshStatus closes or reopens the loan after its balance changed
func (l *Loan) refreshStatus(date time.Time) {
	if l.Status != LoanActive && l.Status != LoanOverpaid && l.Status != LoanClosedObligationMet {
		return
	}
	target := LoanActive
	if l.TotalOutstanding().IsZero() && l.NextTranche() < 0 {
		target = LoanClosedObligationMet
		if l.OverpaidAmount.IsPositive() {
			target = LoanOverpaid
		}
	}
	if target == l.Status {
		l.Touch()
		return
	}
	if target == LoanActive {
		l.ClosedOn = nil
	} else {
		d := shared.Day(date)
		l.ClosedOn = &d
	}
	l.setStatus(target)
}

// rebuild regenerates the schedule and replays the live transactions on it.
// Once disbursed, only tranches actually paid out join the balance.
func (l *Loan) rebuild(sctx ScheduleContext) error {
	tranches := l.Disbursements
	if l.DisbursedOn != nil {
		tranches = make([]Disbursement, 0, len(l.Disbursements))
		for _, d := range l.Disbursements {
			if d.ActualDate != nil {
				tranches = append(tranches, d)
			}
		}
	}
	terms := l.Terms
	terms.Principal = decimal.Zero
	for _, d := range tranches {
		terms.Principal = terms.Principal.Add(d.Principal)
	}
	sched, err := GenerateSchedule(terms, tranches, l.FirstRepaymentOn, sctx)
	if err != nil {
		return err
	}
	l.Installments = sched.Installments
	l.OverpaidAmount = decimal.Zero

	sort.SliceStable(l.Transactions, func(i, j int) bool {
		a, b := l.Transactions[i], l.Transactions[j]
		if !a.TransactionDate.Equal(b.TransactionDate) {
			return a.TransactionDate.Before(b.TransactionDate)
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	var last time.Time
	for i := range l.Transactions {
		t := &l.Transactions[i]
		if t.Reversed {
			continue
		}
		switch t.Type {
		case TxnRepayment:
			l.applyRepayment(t)
			last = t.TransactionDate
		case TxnWaiveInterest:
			l.applyWaiver(t)
			last = t.TransactionDate
		case TxnAccrual:
			if n := t.InstallmentNumber; n >= 1 && n <= len(l.Installments) {
				inst := &l.Installments[n-1]
				inst.InterestAccrued = decimal.Min(inst.Interest, inst.InterestAccrued.Add(t.InterestPortion))
			}
		}
	}
	if l.Status == LoanActive || l.Status == LoanOverpaid || l.Status == LoanClosedObligationMet {
		target := LoanActive
		if l.TotalOutstanding().IsZero() && l.NextTranche() < 0 {
			target = LoanClosedObligationMet
			if l.OverpaidAmount.IsPositive() {
				target = LoanOverpaid
			}
		}
		if target != l.Status {
			if target == LoanActive {
				l.ClosedOn = nil
			} else {
				d := last
				l.ClosedOn = &d
			}
			from := l.Status
			l.Status = target
			l.AddDomainEvent(NewLoanStatusChangedEvent(l, from, target))
		}
	}
	return nil
}
