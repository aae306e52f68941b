package organisation

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fincore/backend/internal/application/ledger"
	"github.com/fincore/backend/internal/domain/accounting"
	"github.com/fincore/backend/internal/domain/organisation"
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// TellerService manages tellers, their cashiers and cash movements
type TellerService struct {
	txScope         ledger.TransactionScope
	tellerRepo      organisation.TellerRepository
	officeRepo      organisation.OfficeRepository
	staffRepo       organisation.StaffRepository
	accountRepo     accounting.GLAccountRepository
	defaultCurrency string
	eventPublisher  shared.EventPublisher
}

// NewTellerService creates a new TellerService
func NewTellerService(
	txScope ledger.TransactionScope,
	tellerRepo organisation.TellerRepository,
	officeRepo organisation.OfficeRepository,
	staffRepo organisation.StaffRepository,
	accountRepo accounting.GLAccountRepository,
	defaultCurrency string,
) *TellerService {
	return &TellerService{
		txScope:         txScope,
		tellerRepo:      tellerRepo,
		officeRepo:      officeRepo,
		staffRepo:       staffRepo,
		accountRepo:     accountRepo,
		defaultCurrency: strings.ToUpper(defaultCurrency),
	}
}

// SetEventPublisher sets the event publisher for the service
func (s *TellerService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create opens a teller in an office
func (s *TellerService) Create(ctx context.Context, tenantID uuid.UUID, req TellerRequest) (*TellerResponse, error) {
	start, end, err := tellerDates(req)
	if err != nil {
		return nil, err
	}
	if _, err := s.officeRepo.FindByIDForTenant(ctx, tenantID, req.OfficeID); err != nil {
		return nil, err
	}
	if err := s.checkName(ctx, tenantID, req.OfficeID, req.Name, nil); err != nil {
		return nil, err
	}
	teller, err := organisation.NewTeller(tenantID, req.OfficeID, req.Name, req.Description, start, end, organisation.TellerStatus(req.Status))
	if err != nil {
		return nil, err
	}
	if err := s.mapAccounts(ctx, tenantID, teller, req); err != nil {
		return nil, err
	}
	if err := s.tellerRepo.Save(ctx, teller); err != nil {
		return nil, err
	}
	return ToTellerResponse(teller), nil
}

// Update changes a teller. The office of a teller is fixed.
func (s *TellerService) Update(ctx context.Context, tenantID, id uuid.UUID, req TellerRequest) (*TellerResponse, error) {
	teller, err := s.tellerRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if req.OfficeID != teller.OfficeID {
		return nil, shared.NewDomainError("TELLER_OFFICE_IMMUTABLE", "A teller cannot move to another office")
	}
	start, end, err := tellerDates(req)
	if err != nil {
		return nil, err
	}
	if req.Name != teller.Name {
		if err := s.checkName(ctx, tenantID, teller.OfficeID, req.Name, &id); err != nil {
			return nil, err
		}
	}
	if err := teller.Update(req.Name, req.Description, start, end, organisation.TellerStatus(req.Status)); err != nil {
		return nil, err
	}
	if err := s.mapAccounts(ctx, tenantID, teller, req); err != nil {
		return nil, err
	}
	if err := s.tellerRepo.Save(ctx, teller); err != nil {
		return nil, err
	}
	return ToTellerResponse(teller), nil
}

// Delete removes a teller without cashiers
func (s *TellerService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.tellerRepo.FindByIDForTenant(ctx, tenantID, id); err != nil {
		return err
	}
	cashiers, err := s.tellerRepo.FindCashiers(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if len(cashiers) > 0 {
		return shared.NewDomainError("TELLER_HAS_CASHIERS", "Teller still has cashiers allocated")
	}
	return s.tellerRepo.Delete(ctx, tenantID, id)
}

// GetByID retrieves a teller
func (s *TellerService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*TellerResponse, error) {
	teller, err := s.tellerRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return ToTellerResponse(teller), nil
}

// List retrieves tellers, optionally for one office
func (s *TellerService) List(ctx context.Context, tenantID uuid.UUID, officeID *uuid.UUID) ([]TellerResponse, error) {
	tellers, err := s.tellerRepo.FindAllForTenant(ctx, tenantID, officeID)
	if err != nil {
		return nil, err
	}
	out := make([]TellerResponse, 0, len(tellers))
	for i := range tellers {
		out = append(out, *ToTellerResponse(&tellers[i]))
	}
	return out, nil
}

func tellerDates(req TellerRequest) (time.Time, *time.Time, error) {
	start, err := shared.ParseDate(req.StartDate)
	if err != nil {
		return time.Time{}, nil, err
	}
	end, err := shared.ParseOptionalDate(req.EndDate)
	if err != nil {
		return time.Time{}, nil, err
	}
	return start, end, nil
}

func (s *TellerService) checkName(ctx context.Context, tenantID, officeID uuid.UUID, name string, excludeID *uuid.UUID) error {
	exists, err := s.tellerRepo.ExistsByName(ctx, tenantID, officeID, name, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError("TELLER_NAME_EXISTS", "Teller with this name already exists in the office")
	}
	return nil
}

// mapAccounts validates and sets the teller's GL accounts
func (s *TellerService) mapAccounts(ctx context.Context, tenantID uuid.UUID, teller *organisation.Teller, req TellerRequest) error {
	if err := teller.MapAccounts(req.CashAccountID, req.VaultAccountID); err != nil {
		return err
	}
	if !teller.PostsToLedger() {
		return nil
	}
	ids := []uuid.UUID{*req.CashAccountID, *req.VaultAccountID}
	accounts, err := s.accountRepo.FindByIDs(ctx, tenantID, ids)
	if err != nil {
		return err
	}
	for _, id := range ids {
		acct, ok := accounts[id]
		if !ok {
			return shared.NewDomainError("INVALID_GL_ACCOUNT", "GL account "+id.String()+" not found")
		}
		if err := acct.CheckPostable(false); err != nil {
			return err
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Cashiers
// ---------------------------------------------------------------------------

// AllocateCashier assigns a staff member to the teller
func (s *TellerService) AllocateCashier(ctx context.Context, tenantID, tellerID uuid.UUID, req CashierRequest) (*CashierResponse, error) {
	period, err := req.period()
	if err != nil {
		return nil, err
	}
	teller, err := s.tellerRepo.FindByIDForTenant(ctx, tenantID, tellerID)
	if err != nil {
		return nil, err
	}
	tellerOffice, err := s.officeRepo.FindByIDForTenant(ctx, tenantID, teller.OfficeID)
	if err != nil {
		return nil, err
	}
	staff, err := s.staffRepo.FindByIDForTenant(ctx, tenantID, req.StaffID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_STAFF", "Staff member not found")
		}
		return nil, err
	}
	staffOffice, err := s.officeRepo.FindByIDForTenant(ctx, tenantID, staff.OfficeID)
	if err != nil {
		return nil, err
	}
	existing, err := s.tellerRepo.FindCashiers(ctx, tenantID, tellerID)
	if err != nil {
		return nil, err
	}

	cashier, err := organisation.AllocateCashier(teller, tellerOffice, staffOffice, staff, req.Description, period, existing)
	if err != nil {
		return nil, err
	}
	if err := s.tellerRepo.SaveCashier(ctx, cashier); err != nil {
		return nil, err
	}
	return ToCashierResponse(cashier), nil
}

// UpdateCashier reschedules a cashier allocation
func (s *TellerService) UpdateCashier(ctx context.Context, tenantID, tellerID, cashierID uuid.UUID, req CashierRequest) (*CashierResponse, error) {
	period, err := req.period()
	if err != nil {
		return nil, err
	}
	teller, err := s.tellerRepo.FindByIDForTenant(ctx, tenantID, tellerID)
	if err != nil {
		return nil, err
	}
	cashier, err := s.tellerRepo.FindCashier(ctx, tenantID, tellerID, cashierID)
	if err != nil {
		return nil, err
	}
	if req.StaffID != cashier.StaffID {
		return nil, shared.NewDomainError("CASHIER_STAFF_IMMUTABLE", "The staff member of a cashier cannot change")
	}
	existing, err := s.tellerRepo.FindCashiers(ctx, tenantID, tellerID)
	if err != nil {
		return nil, err
	}
	if err := cashier.Reschedule(teller, req.Description, period, existing); err != nil {
		return nil, err
	}
	if err := s.tellerRepo.SaveCashier(ctx, cashier); err != nil {
		return nil, err
	}
	return ToCashierResponse(cashier), nil
}

// DeleteCashier removes a cashier that never moved cash
func (s *TellerService) DeleteCashier(ctx context.Context, tenantID, tellerID, cashierID uuid.UUID) error {
	if _, err := s.tellerRepo.FindCashier(ctx, tenantID, tellerID, cashierID); err != nil {
		return err
	}
	txns, err := s.tellerRepo.FindCashierTransactions(ctx, tenantID, cashierID)
	if err != nil {
		return err
	}
	if len(txns) > 0 {
		return shared.NewDomainError("CASHIER_HAS_TRANSACTIONS", "Cashier has cash transactions and cannot be deleted")
	}
	return s.tellerRepo.DeleteCashier(ctx, tenantID, cashierID)
}

// ListCashiers lists the cashiers of a teller
func (s *TellerService) ListCashiers(ctx context.Context, tenantID, tellerID uuid.UUID) ([]CashierResponse, error) {
	if _, err := s.tellerRepo.FindByIDForTenant(ctx, tenantID, tellerID); err != nil {
		return nil, err
	}
	cashiers, err := s.tellerRepo.FindCashiers(ctx, tenantID, tellerID)
	if err != nil {
		return nil, err
	}
	out := make([]CashierResponse, 0, len(cashiers))
	for i := range cashiers {
		out = append(out, *ToCashierResponse(&cashiers[i]))
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Cash movements
// ---------------------------------------------------------------------------

// AllocateCash hands cash from the vault to a cashier
func (s *TellerService) AllocateCash(ctx context.Context, tenantID, tellerID, cashierID uuid.UUID, req CashTransactionRequest) (*CashierTransactionResponse, error) {
	return s.moveCash(ctx, tenantID, tellerID, cashierID, organisation.CashierTxnAllocate, req)
}

// SettleCash returns cash from a cashier to the vault
func (s *TellerService) SettleCash(ctx context.Context, tenantID, tellerID, cashierID uuid.UUID, req CashTransactionRequest) (*CashierTransactionResponse, error) {
	return s.moveCash(ctx, tenantID, tellerID, cashierID, organisation.CashierTxnSettle, req)
}

func (s *TellerService) moveCash(ctx context.Context, tenantID, tellerID, cashierID uuid.UUID, typ organisation.CashierTxnType, req CashTransactionRequest) (*CashierTransactionResponse, error) {
	date, err := shared.ParseDateOr(req.TxnDate)
	if err != nil {
		return nil, err
	}
	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = s.defaultCurrency
	}
	teller, err := s.tellerRepo.FindByIDForTenant(ctx, tenantID, tellerID)
	if err != nil {
		return nil, err
	}

	var (
		txn    *organisation.CashierTransaction
		posted *accounting.JournalTransaction
	)
	err = s.txScope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
		// the cashier row lock keeps the balance read below current until commit
		cashier, err := repos.Tellers().FindCashier(ctx, tenantID, tellerID, cashierID)
		if err != nil {
			return err
		}
		balances, err := repos.Tellers().CashierBalances(ctx, tenantID, cashierID)
		if err != nil {
			return err
		}
		txn, err = organisation.NewCashierTransaction(cashier, typ, req.Amount, currency, date, req.Note, balanceIn(balances, currency))
		if err != nil {
			return err
		}
		if teller.PostsToLedger() {
			posted, err = ledger.Post(ctx, repos, tenantID, cashPosting(teller, cashier, txn, req.CreatedBy))
			if err != nil {
				return err
			}
			txn.EntryRef = posted.ID
		}
		return repos.Tellers().SaveCashierTransaction(ctx, txn)
	})
	if err != nil {
		return nil, err
	}
	if posted != nil {
		ledger.Publish(ctx, s.eventPublisher, accounting.NewJournalPostedEvent(tenantID, posted))
	}
	return ToCashierTransactionResponse(txn), nil
}

func balanceIn(balances []organisation.CashierBalance, currency string) organisation.CashierBalance {
	for _, b := range balances {
		if b.Currency == currency {
			return b
		}
	}
	return organisation.CashierBalance{Currency: currency}
}

// cashPosting debits teller cash and credits the vault on allocation, and
// the reverse on settlement
func cashPosting(teller *organisation.Teller, cashier *organisation.Cashier, txn *organisation.CashierTransaction, createdBy *uuid.UUID) accounting.PostingRequest {
	debit, credit := *teller.CashAccountID, *teller.VaultAccountID
	desc := "Cash allocated to cashier"
	if txn.Type == organisation.CashierTxnSettle {
		debit, credit = credit, debit
		desc = "Cash settled from cashier"
	}
	cashierID := cashier.ID
	return accounting.PostingRequest{
		OfficeID:        teller.OfficeID,
		Currency:        txn.Currency,
		TransactionDate: txn.TxnDate,
		Debits:          []accounting.Posting{{GLAccountID: debit, Amount: txn.Amount}},
		Credits:         []accounting.Posting{{GLAccountID: credit, Amount: txn.Amount}},
		EntityType:      accounting.EntityTypeCashier,
		EntityID:        &cashierID,
		Description:     desc,
		CreatedBy:       createdBy,
	}
}

// Summary lists the cashier's movements with allocated, settled and net
// cash per currency
func (s *TellerService) Summary(ctx context.Context, tenantID, tellerID, cashierID uuid.UUID) (*CashierSummaryResponse, error) {
	cashier, err := s.tellerRepo.FindCashier(ctx, tenantID, tellerID, cashierID)
	if err != nil {
		return nil, err
	}
	balances, err := s.tellerRepo.CashierBalances(ctx, tenantID, cashierID)
	if err != nil {
		return nil, err
	}
	txns, err := s.tellerRepo.FindCashierTransactions(ctx, tenantID, cashierID)
	if err != nil {
		return nil, err
	}

	resp := &CashierSummaryResponse{
		Cashier:      *ToCashierResponse(cashier),
		Balances:     make([]CashierBalanceResponse, 0, len(balances)),
		Transactions: make([]CashierTransactionResponse, 0, len(txns)),
	}
	for _, b := range balances {
		resp.Balances = append(resp.Balances, CashierBalanceResponse{
			Currency:  b.Currency,
			Allocated: b.Allocated,
			Settled:   b.Settled,
			Net:       b.Net(),
		})
	}
	for i := range txns {
		resp.Transactions = append(resp.Transactions, *ToCashierTransactionResponse(&txns[i]))
	}
	return resp, nil
}
