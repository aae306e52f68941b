package persistence

import (
	"context"
	"time"

	"github.com/fincore/backend/internal/domain/accounting"
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/fincore/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormJournalEntryRepository implements JournalEntryRepository using GORM.
// Journal lines are never deleted.
type GormJournalEntryRepository struct {
	db *gorm.DB
}

// NewGormJournalEntryRepository creates a new GormJournalEntryRepository
func NewGormJournalEntryRepository(db *gorm.DB) *GormJournalEntryRepository {
	return &GormJournalEntryRepository{db: db}
}

// SaveTransaction inserts the lines of a new transaction
func (r *GormJournalEntryRepository) SaveTransaction(ctx context.Context, txn *accounting.JournalTransaction) error {
	if len(txn.Lines) == 0 {
		return nil
	}
	rows := make([]models.JournalEntryModel, len(txn.Lines))
	for i, line := range txn.Lines {
		rows[i] = models.JournalEntryModelFromDomain(line)
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// SaveReversal inserts the reversal and flags the original lines
func (r *GormJournalEntryRepository) SaveReversal(ctx context.Context, original, reversal *accounting.JournalTransaction) error {
	if len(original.Lines) == 0 {
		return shared.NotFound("Journal transaction")
	}
	tenantID := original.Lines[0].TenantID
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := NewGormJournalEntryRepository(tx).SaveTransaction(ctx, reversal); err != nil {
			return err
		}
		result := tx.Model(&models.JournalEntryModel{}).
			Where("tenant_id = ? AND transaction_id = ? AND reversed = ?", tenantID, original.ID, false).
			Updates(map[string]any{
				"reversed":                true,
				"reversal_transaction_id": reversal.ID,
				"updated_at":              time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("JOURNAL_ENTRY_ALREADY_REVERSED", "Journal transaction is already reversed")
		}
		return nil
	})
}

// FindTransaction loads every line of a transaction
func (r *GormJournalEntryRepository) FindTransaction(ctx context.Context, tenantID uuid.UUID, transactionID string) (*accounting.JournalTransaction, error) {
	var rows []models.JournalEntryModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND transaction_id = ?", tenantID, transactionID).
		Order("entry_type DESC, created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, shared.NotFound("Journal transaction")
	}
	txn := &accounting.JournalTransaction{ID: transactionID, Lines: make([]accounting.JournalEntry, len(rows))}
	for i := range rows {
		txn.Lines[i] = rows[i].ToDomain()
	}
	return txn, nil
}

// FindAllForTenant lists journal lines
func (r *GormJournalEntryRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter accounting.JournalEntryFilter) ([]accounting.JournalEntry, int64, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.JournalEntryModel{}).Where("tenant_id = ?", tenantID), filter).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.JournalEntryModel
	if err := paginate(query, filter.Filter, JournalEntrySortFields, "transaction_date").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	entries := make([]accounting.JournalEntry, len(rows))
	for i := range rows {
		entries[i] = rows[i].ToDomain()
	}
	return entries, total, nil
}

// ExistsForAccount reports whether any line posts to the account
func (r *GormJournalEntryRepository) ExistsForAccount(ctx context.Context, tenantID, glAccountID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.JournalEntryModel{}).
		Where("tenant_id = ? AND gl_account_id = ?", tenantID, glAccountID).
		Limit(1).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// TrialBalance aggregates debits and credits per account up to asOf
func (r *GormJournalEntryRepository) TrialBalance(ctx context.Context, tenantID uuid.UUID, asOf time.Time, officeID *uuid.UUID) ([]accounting.TrialBalanceLine, error) {
	query := r.db.WithContext(ctx).
		Table("journal_entries AS je").
		Select(`je.gl_account_id AS gl_account_id, ga.gl_code AS gl_code, ga.name AS name, ga.type AS type,
			COALESCE(SUM(CASE WHEN je.entry_type = ? THEN je.amount ELSE 0 END), 0) AS debits,
			COALESCE(SUM(CASE WHEN je.entry_type = ? THEN je.amount ELSE 0 END), 0) AS credits`,
			accounting.EntryTypeDebit, accounting.EntryTypeCredit).
		Joins("JOIN gl_accounts AS ga ON ga.id = je.gl_account_id").
		Where("je.tenant_id = ? AND je.transaction_date <= ?", tenantID, shared.Day(asOf))
	if officeID != nil {
		query = query.Where("je.office_id = ?", *officeID)
	}

	var rows []models.TrialBalanceRow
	if err := query.
		Group("je.gl_account_id, ga.gl_code, ga.name, ga.type").
		Order("ga.gl_code ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	lines := make([]accounting.TrialBalanceLine, len(rows))
	for i, row := range rows {
		lines[i] = row.ToDomain()
	}
	return lines, nil
}

func (r *GormJournalEntryRepository) applyFilter(query *gorm.DB, filter accounting.JournalEntryFilter) *gorm.DB {
	if filter.GLAccountID != nil {
		query = query.Where("gl_account_id = ?", *filter.GLAccountID)
	}
	if filter.OfficeID != nil {
		query = query.Where("office_id = ?", *filter.OfficeID)
	}
	if filter.FromDate != nil {
		query = query.Where("transaction_date >= ?", shared.Day(*filter.FromDate))
	}
	if filter.ToDate != nil {
		query = query.Where("transaction_date <= ?", shared.Day(*filter.ToDate))
	}
	if filter.TransactionID != "" {
		query = query.Where("transaction_id = ?", filter.TransactionID)
	}
	if filter.ManualOnly {
		query = query.Where("manual = ?", true)
	}
	if filter.EntityType != nil {
		query = query.Where("entity_type = ?", *filter.EntityType)
	}
	if filter.EntityID != nil {
		query = query.Where("entity_id = ?", *filter.EntityID)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("description ILIKE ? OR reference_number ILIKE ?", pattern, pattern)
	}
	return query
}
