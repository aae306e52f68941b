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
)

// GormClientRepository implements ClientRepository using GORM
type GormClientRepository struct {
	db *gorm.DB
}

// NewGormClientRepository creates a new GormClientRepository
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// FindByIDForTenant finds a client by ID
func (r *GormClientRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*portfolio.Client, error) {
	var model models.ClientModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NotFound("Client")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs loads clients keyed by ID; missing IDs are absent
func (r *GormClientRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*portfolio.Client, error) {
	out := make(map[uuid.UUID]*portfolio.Client, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.ClientModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		out[rows[i].ID] = rows[i].ToDomain()
	}
	return out, nil
}

// FindAllForTenant lists clients
func (r *GormClientRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter portfolio.ClientFilter) ([]portfolio.Client, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ClientModel{}).Where("tenant_id = ?", tenantID)
	if filter.OfficeID != nil {
		query = query.Where("office_id = ?", *filter.OfficeID)
	}
	if filter.StaffID != nil {
		query = query.Where("staff_id = ?", *filter.StaffID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("fullname ILIKE ? OR account_no ILIKE ? OR external_id ILIKE ? OR mobile_no ILIKE ?",
			pattern, pattern, pattern, pattern)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.ClientModel
	if err := paginate(query, filter.Filter, ClientSortFields, "created_at").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	clients := make([]portfolio.Client, len(rows))
	for i := range rows {
		clients[i] = *rows[i].ToDomain()
	}
	return clients, total, nil
}

// ExistsByExternalID checks for a duplicate external ID
func (r *GormClientRepository) ExistsByExternalID(ctx context.Context, tenantID uuid.UUID, externalID string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.ClientModel{}).
		Where("tenant_id = ? AND external_id = ?", tenantID, externalID)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GenerateAccountNo returns the next CL-YYYYMM-NNNNN number
func (r *GormClientRepository) GenerateAccountNo(ctx context.Context, tenantID uuid.UUID) (string, error) {
	return nextAccountNumber(ctx, r.db, models.ClientModel{}.TableName(), "CL", tenantID, time.Now())
}

// Save creates or updates a client
func (r *GormClientRepository) Save(ctx context.Context, client *portfolio.Client) error {
	return r.db.WithContext(ctx).Save(models.ClientModelFromDomain(client)).Error
}

// Delete removes a client with its document metadata
func (r *GormClientRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ? AND client_id = ?", tenantID, id).
			Delete(&models.ClientDocumentModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.ClientModel{}, "tenant_id = ? AND id = ?", tenantID, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NotFound("Client")
		}
		return nil
	})
}

// SaveDocument records document metadata
func (r *GormClientRepository) SaveDocument(ctx context.Context, doc *portfolio.ClientDocument) error {
	return r.db.WithContext(ctx).Save(models.ClientDocumentModelFromDomain(doc)).Error
}

// FindDocument finds a document of a client
func (r *GormClientRepository) FindDocument(ctx context.Context, tenantID, clientID, docID uuid.UUID) (*portfolio.ClientDocument, error) {
	var model models.ClientDocumentModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND client_id = ? AND id = ?", tenantID, clientID, docID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NotFound("Document")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindDocuments lists the documents of a client
func (r *GormClientRepository) FindDocuments(ctx context.Context, tenantID, clientID uuid.UUID) ([]portfolio.ClientDocument, error) {
	var rows []models.ClientDocumentModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND client_id = ?", tenantID, clientID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	docs := make([]portfolio.ClientDocument, len(rows))
	for i := range rows {
		docs[i] = *rows[i].ToDomain()
	}
	return docs, nil
}

// DeleteDocument removes document metadata
func (r *GormClientRepository) DeleteDocument(ctx context.Context, tenantID, docID uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ClientDocumentModel{}, "tenant_id = ? AND id = ?", tenantID, docID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NotFound("Document")
	}
	return nil
}
