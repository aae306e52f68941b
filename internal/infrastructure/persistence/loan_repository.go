package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/fincore/backend/internal/domain/portfolio"
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/fincore/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// openLoanStatuses are the statuses for which IsOpen holds
var openLoanStatuses = []portfolio.LoanStatus{
	portfolio.LoanSubmitted,
	portfolio.LoanApproved,
	portfolio.LoanActive,
	portfolio.LoanOverpaid,
}

// GormLoanRepository implements LoanRepository using GORM.
// A loan is stored across loans, loan_disbursements, loan_installments
// and loan_transactions.
type GormLoanRepository struct {
	db *gorm.DB
	// lock takes a row lock on loads; set inside a transaction scope
	lock bool
}

// NewGormLoanRepository creates a new GormLoanRepository
func NewGormLoanRepository(db *gorm.DB) *GormLoanRepository {
	return &GormLoanRepository{db: db}
}

// newLockingLoanRepository returns a repository that locks loaded loans
// FOR UPDATE until the surrounding transaction ends.
func newLockingLoanRepository(tx *gorm.DB) *GormLoanRepository {
	return &GormLoanRepository{db: tx, lock: true}
}

// FindByIDForTenant loads a loan with tranches, installments and transactions
func (r *GormLoanRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*portfolio.Loan, error) {
	query := r.db.WithContext(ctx)
	if r.lock {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var model models.LoanModel
	if err := query.Where("tenant_id = ? AND id = ?", tenantID, id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NotFound("Loan")
		}
		return nil, err
	}
	loans, err := r.hydrate(ctx, tenantID, []models.LoanModel{model})
	if err != nil {
		return nil, err
	}
	return &loans[0], nil
}

// FindAllForTenant lists loans without their installments
func (r *GormLoanRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter portfolio.LoanFilter) ([]portfolio.Loan, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.LoanModel{}).Where("tenant_id = ?", tenantID)
	if filter.OfficeID != nil {
		query = query.Where("office_id = ?", *filter.OfficeID)
	}
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.GroupID != nil {
		query = query.Where("group_id = ?", *filter.GroupID)
	}
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("account_no ILIKE ? OR external_id ILIKE ?", pattern, pattern)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.LoanModel
	if err := paginate(query, filter.Filter, LoanSortFields, "created_at").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	loans := make([]portfolio.Loan, len(rows))
	for i := range rows {
		loans[i] = *rows[i].ToDomain(nil, nil, nil)
	}
	return loans, total, nil
}

// FindActiveByOffice loads the fully hydrated active loans of an office
func (r *GormLoanRepository) FindActiveByOffice(ctx context.Context, tenantID, officeID uuid.UUID) ([]portfolio.Loan, error) {
	var rows []models.LoanModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND office_id = ? AND status = ?", tenantID, officeID, portfolio.LoanActive).
		Order("account_no ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.hydrate(ctx, tenantID, rows)
}

// FindActiveByBorrowers loads the active loans of the given clients and groups
func (r *GormLoanRepository) FindActiveByBorrowers(ctx context.Context, tenantID uuid.UUID, clientIDs, groupIDs []uuid.UUID) ([]portfolio.Loan, error) {
	if len(clientIDs) == 0 && len(groupIDs) == 0 {
		return nil, nil
	}
	borrowers := r.db.Where("1 = 0")
	if len(clientIDs) > 0 {
		borrowers = borrowers.Or("client_id IN ?", clientIDs)
	}
	if len(groupIDs) > 0 {
		borrowers = borrowers.Or("group_id IN ?", groupIDs)
	}
	var rows []models.LoanModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND status = ?", tenantID, portfolio.LoanActive).
		Where(borrowers).
		Order("account_no ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.hydrate(ctx, tenantID, rows)
}

// FindOpenIDsByOffices lists IDs of open loans in the given offices
func (r *GormLoanRepository) FindOpenIDsByOffices(ctx context.Context, tenantID uuid.UUID, officeIDs []uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if len(officeIDs) == 0 {
		return ids, nil
	}
	err := r.db.WithContext(ctx).Model(&models.LoanModel{}).
		Where("tenant_id = ? AND office_id IN ? AND status IN ?", tenantID, officeIDs, openLoanStatuses).
		Order("account_no ASC").
		Pluck("id", &ids).Error
	return ids, err
}

// FindActiveOfficeIDs lists offices holding at least one active loan
func (r *GormLoanRepository) FindActiveOfficeIDs(ctx context.Context, tenantID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&models.LoanModel{}).
		Where("tenant_id = ? AND status = ?", tenantID, portfolio.LoanActive).
		Distinct("office_id").
		Pluck("office_id", &ids).Error
	return ids, err
}

// CountActiveForClient counts open loans of a client
func (r *GormLoanRepository) CountActiveForClient(ctx context.Context, tenantID, clientID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.LoanModel{}).
		Where("tenant_id = ? AND client_id = ? AND status IN ?", tenantID, clientID, openLoanStatuses).
		Count(&count).Error
	return count, err
}

// CountActiveForGroup counts open loans of a group
func (r *GormLoanRepository) CountActiveForGroup(ctx context.Context, tenantID, groupID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.LoanModel{}).
		Where("tenant_id = ? AND group_id = ? AND status IN ?", tenantID, groupID, openLoanStatuses).
		Count(&count).Error
	return count, err
}

// GenerateAccountNo returns the next LN-YYYYMM-NNNNN number
func (r *GormLoanRepository) GenerateAccountNo(ctx context.Context, tenantID uuid.UUID) (string, error) {
	return nextAccountNumber(ctx, r.db, models.LoanModel{}.TableName(), "LN", tenantID, time.Now())
}

// Save writes the loan, replacing its schedule and upserting transactions.
// An existing row is only updated when its version still matches the one
// the loan was loaded with; otherwise ErrConcurrencyConflict is returned
// and nothing is written. The loan's version advances on success.
func (r *GormLoanRepository) Save(ctx context.Context, loan *portfolio.Loan) error {
	tranches, installments, txns := models.LoanChildModelsFromDomain(loan)
	saved := loan.Version
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if saved, err = saveVersioned(tx, models.LoanModelFromDomain(loan)); err != nil {
			return err
		}
		if err := tx.Where("tenant_id = ? AND loan_id = ?", loan.TenantID, loan.ID).
			Delete(&models.LoanDisbursementModel{}).Error; err != nil {
			return err
		}
		if len(tranches) > 0 {
			if err := tx.Create(&tranches).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("tenant_id = ? AND loan_id = ?", loan.TenantID, loan.ID).
			Delete(&models.LoanInstallmentModel{}).Error; err != nil {
			return err
		}
		if len(installments) > 0 {
			if err := tx.CreateInBatches(&installments, 200).Error; err != nil {
				return err
			}
		}
		if len(txns) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&txns).Error
	})
	if err != nil {
		return err
	}
	loan.Version = saved
	return nil
}

// saveVersioned updates the loan row if its stored version is row.Version,
// bumping it, or inserts the row when it does not exist yet. It returns the
// version now stored.
func saveVersioned(tx *gorm.DB, row *models.LoanModel) (int, error) {
	loaded := row.Version
	row.Version = loaded + 1
	res := tx.Model(&models.LoanModel{}).
		Where("tenant_id = ? AND id = ? AND version = ?", row.TenantID, row.ID, loaded).
		Select("*").Omit("id", "tenant_id", "created_at", "created_by").
		Updates(row)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 1 {
		return row.Version, nil
	}

	var exists int64
	if err := tx.Model(&models.LoanModel{}).
		Where("tenant_id = ? AND id = ?", row.TenantID, row.ID).
		Count(&exists).Error; err != nil {
		return 0, err
	}
	if exists > 0 {
		return 0, shared.NewDomainError(shared.ErrConcurrencyConflict.Code, "Loan "+row.AccountNo+" was changed by another request; reload and retry")
	}
	row.Version = max(loaded, 1)
	if err := tx.Create(row).Error; err != nil {
		return 0, err
	}
	return row.Version, nil
}

// hydrate loads the child rows of the given loans in three queries.
func (r *GormLoanRepository) hydrate(ctx context.Context, tenantID uuid.UUID, rows []models.LoanModel) ([]portfolio.Loan, error) {
	if len(rows) == 0 {
		return []portfolio.Loan{}, nil
	}
	ids := make([]uuid.UUID, len(rows))
	for i := range rows {
		ids[i] = rows[i].ID
	}
	db := r.db.WithContext(ctx)

	var tranches []models.LoanDisbursementModel
	if err := db.Where("tenant_id = ? AND loan_id IN ?", tenantID, ids).
		Order("loan_id, position ASC").
		Find(&tranches).Error; err != nil {
		return nil, err
	}
	var installments []models.LoanInstallmentModel
	if err := db.Where("tenant_id = ? AND loan_id IN ?", tenantID, ids).
		Order("loan_id, number ASC").
		Find(&installments).Error; err != nil {
		return nil, err
	}
	var txns []models.LoanTransactionModel
	if err := db.Where("tenant_id = ? AND loan_id IN ?", tenantID, ids).
		Order("loan_id, transaction_date ASC, created_at ASC").
		Find(&txns).Error; err != nil {
		return nil, err
	}

	tranchesByLoan := make(map[uuid.UUID][]models.LoanDisbursementModel, len(rows))
	for _, t := range tranches {
		tranchesByLoan[t.LoanID] = append(tranchesByLoan[t.LoanID], t)
	}
	installmentsByLoan := make(map[uuid.UUID][]models.LoanInstallmentModel, len(rows))
	for _, in := range installments {
		installmentsByLoan[in.LoanID] = append(installmentsByLoan[in.LoanID], in)
	}
	txnsByLoan := make(map[uuid.UUID][]models.LoanTransactionModel, len(rows))
	for _, t := range txns {
		txnsByLoan[t.LoanID] = append(txnsByLoan[t.LoanID], t)
	}

	loans := make([]portfolio.Loan, len(rows))
	for i := range rows {
		id := rows[i].ID
		loans[i] = *rows[i].ToDomain(tranchesByLoan[id], installmentsByLoan[id], txnsByLoan[id])
	}
	return loans, nil
}

// GormLoanProductRepository implements LoanProductRepository using GORM
type GormLoanProductRepository struct {
	db *gorm.DB
}

// NewGormLoanProductRepository creates a new GormLoanProductRepository
func NewGormLoanProductRepository(db *gorm.DB) *GormLoanProductRepository {
	return &GormLoanProductRepository{db: db}
}

// FindByIDForTenant finds a product by ID
func (r *GormLoanProductRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*portfolio.LoanProduct, error) {
	var model models.LoanProductModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NotFound("Loan product")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists products
func (r *GormLoanProductRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]portfolio.LoanProduct, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.LoanProductModel{}).Where("tenant_id = ?", tenantID)
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR short_name ILIKE ?", pattern, pattern)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.LoanProductModel
	if err := paginate(query, filter, LoanProductSortFields, "name asc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	products := make([]portfolio.LoanProduct, len(rows))
	for i := range rows {
		products[i] = *rows[i].ToDomain()
	}
	return products, total, nil
}

// ExistsByName checks for a duplicate product name
func (r *GormLoanProductRepository) ExistsByName(ctx context.Context, tenantID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.LoanProductModel{}).
		Where("tenant_id = ? AND LOWER(name) = LOWER(?)", tenantID, name)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a product
func (r *GormLoanProductRepository) Save(ctx context.Context, product *portfolio.LoanProduct) error {
	return r.db.WithContext(ctx).Save(models.LoanProductModelFromDomain(product)).Error
}
