package persistence

import (
	"context"
	"errors"

	"github.com/fincore/backend/internal/domain/organisation"
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/fincore/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTellerRepository implements TellerRepository using GORM
type GormTellerRepository struct {
	db *gorm.DB
	// lock takes a row lock on cashier loads; set inside a transaction scope
	lock bool
}

// NewGormTellerRepository creates a new GormTellerRepository
func NewGormTellerRepository(db *gorm.DB) *GormTellerRepository {
	return &GormTellerRepository{db: db}
}

// newLockingTellerRepository returns a repository whose FindCashier holds
// the cashier row FOR UPDATE until the surrounding transaction ends.
// Cash movements of one cashier are serialised on that lock.
func newLockingTellerRepository(tx *gorm.DB) *GormTellerRepository {
	return &GormTellerRepository{db: tx, lock: true}
}

// FindByIDForTenant finds a teller by ID
func (r *GormTellerRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*organisation.Teller, error) {
	var model models.TellerModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NotFound("Teller")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists tellers, optionally for one office
func (r *GormTellerRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, officeID *uuid.UUID) ([]organisation.Teller, error) {
	query := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if officeID != nil {
		query = query.Where("office_id = ?", *officeID)
	}
	var rows []models.TellerModel
	if err := query.Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	tellers := make([]organisation.Teller, len(rows))
	for i := range rows {
		tellers[i] = *rows[i].ToDomain()
	}
	return tellers, nil
}

// ExistsByName checks for a duplicate teller name in an office
func (r *GormTellerRepository) ExistsByName(ctx context.Context, tenantID, officeID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.TellerModel{}).
		Where("tenant_id = ? AND office_id = ? AND LOWER(name) = LOWER(?)", tenantID, officeID, name)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a teller
func (r *GormTellerRepository) Save(ctx context.Context, teller *organisation.Teller) error {
	return r.db.WithContext(ctx).Save(models.TellerModelFromDomain(teller)).Error
}

// Delete removes a teller
func (r *GormTellerRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.TellerModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NotFound("Teller")
	}
	return nil
}

// FindCashier finds a cashier of a teller
func (r *GormTellerRepository) FindCashier(ctx context.Context, tenantID, tellerID, cashierID uuid.UUID) (*organisation.Cashier, error) {
	query := r.db.WithContext(ctx)
	if r.lock {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var model models.CashierModel
	if err := query.
		Where("tenant_id = ? AND teller_id = ? AND id = ?", tenantID, tellerID, cashierID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NotFound("Cashier")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindCashiers lists the cashiers of a teller
func (r *GormTellerRepository) FindCashiers(ctx context.Context, tenantID, tellerID uuid.UUID) ([]organisation.Cashier, error) {
	var rows []models.CashierModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND teller_id = ?", tenantID, tellerID).
		Order("start_date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	cashiers := make([]organisation.Cashier, len(rows))
	for i := range rows {
		cashiers[i] = *rows[i].ToDomain()
	}
	return cashiers, nil
}

// SaveCashier creates or updates a cashier
func (r *GormTellerRepository) SaveCashier(ctx context.Context, cashier *organisation.Cashier) error {
	return r.db.WithContext(ctx).Save(models.CashierModelFromDomain(cashier)).Error
}

// DeleteCashier removes a cashier with no transactions
func (r *GormTellerRepository) DeleteCashier(ctx context.Context, tenantID, cashierID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.CashierTransactionModel{}).
			Where("tenant_id = ? AND cashier_id = ?", tenantID, cashierID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return shared.NewDomainError("CASHIER_HAS_TRANSACTIONS", "Cashier has cash transactions and cannot be deleted")
		}
		result := tx.Delete(&models.CashierModel{}, "tenant_id = ? AND id = ?", tenantID, cashierID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NotFound("Cashier")
		}
		return nil
	})
}

// SaveCashierTransaction records a cash movement
func (r *GormTellerRepository) SaveCashierTransaction(ctx context.Context, txn *organisation.CashierTransaction) error {
	return r.db.WithContext(ctx).Create(models.CashierTransactionModelFromDomain(txn)).Error
}

// FindCashierTransactions lists cash movements for a cashier, oldest first
func (r *GormTellerRepository) FindCashierTransactions(ctx context.Context, tenantID, cashierID uuid.UUID) ([]organisation.CashierTransaction, error) {
	var rows []models.CashierTransactionModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND cashier_id = ?", tenantID, cashierID).
		Order("txn_date ASC, created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	txns := make([]organisation.CashierTransaction, len(rows))
	for i := range rows {
		txns[i] = rows[i].ToDomain()
	}
	return txns, nil
}

// CashierBalances sums cash movements per currency
func (r *GormTellerRepository) CashierBalances(ctx context.Context, tenantID, cashierID uuid.UUID) ([]organisation.CashierBalance, error) {
	var rows []models.CashierBalanceRow
	if err := r.db.WithContext(ctx).Model(&models.CashierTransactionModel{}).
		Select(`currency,
			COALESCE(SUM(CASE WHEN type = ? THEN amount ELSE 0 END), 0) AS allocated,
			COALESCE(SUM(CASE WHEN type = ? THEN amount ELSE 0 END), 0) AS settled`,
			organisation.CashierTxnAllocate, organisation.CashierTxnSettle).
		Where("tenant_id = ? AND cashier_id = ?", tenantID, cashierID).
		Group("currency").
		Order("currency ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	balances := make([]organisation.CashierBalance, len(rows))
	for i, row := range rows {
		balances[i] = organisation.CashierBalance{
			Currency:  row.Currency,
			Allocated: row.Allocated,
			Settled:   row.Settled,
		}
	}
	return balances, nil
}
