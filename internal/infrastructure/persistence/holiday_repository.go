package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/fincore/backend/internal/domain/organisation"
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/fincore/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormHolidayRepository implements HolidayRepository using GORM
type GormHolidayRepository struct {
	db *gorm.DB
}

// NewGormHolidayRepository creates a new GormHolidayRepository
func NewGormHolidayRepository(db *gorm.DB) *GormHolidayRepository {
	return &GormHolidayRepository{db: db}
}

// FindByIDForTenant finds a holiday by ID
func (r *GormHolidayRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*organisation.Holiday, error) {
	var model models.HolidayModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NotFound("Holiday")
		}
		return nil, err
	}
	offices, err := r.offices(ctx, tenantID, []uuid.UUID{model.ID})
	if err != nil {
		return nil, err
	}
	return model.ToDomain(offices[model.ID]), nil
}

// FindAllForTenant lists holidays by start date
func (r *GormHolidayRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter organisation.HolidayFilter) ([]organisation.Holiday, error) {
	query := r.db.WithContext(ctx).Model(&models.HolidayModel{}).Where("holidays.tenant_id = ?", tenantID)
	if filter.OfficeID != nil {
		query = query.Where("EXISTS (SELECT 1 FROM holiday_offices ho WHERE ho.holiday_id = holidays.id AND ho.office_id = ?)", *filter.OfficeID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.FromDate != nil {
		query = query.Where("to_date >= ?", shared.Day(*filter.FromDate))
	}
	if filter.ToDate != nil {
		query = query.Where("from_date <= ?", shared.Day(*filter.ToDate))
	}
	var rows []models.HolidayModel
	if err := query.Order("from_date ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.hydrate(ctx, tenantID, rows)
}

// FindActiveForOffice returns active holidays of an office ending on or after from
func (r *GormHolidayRepository) FindActiveForOffice(ctx context.Context, tenantID, officeID uuid.UUID, from time.Time) ([]organisation.Holiday, error) {
	var rows []models.HolidayModel
	if err := r.db.WithContext(ctx).
		Joins("JOIN holiday_offices ho ON ho.holiday_id = holidays.id").
		Where("holidays.tenant_id = ? AND ho.office_id = ? AND holidays.status = ? AND holidays.to_date >= ?",
			tenantID, officeID, organisation.HolidayStatusActive, shared.Day(from)).
		Order("holidays.from_date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.hydrate(ctx, tenantID, rows)
}

// Save creates or updates a holiday and replaces its office links
func (r *GormHolidayRepository) Save(ctx context.Context, holiday *organisation.Holiday) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(models.HolidayModelFromDomain(holiday)).Error; err != nil {
			return err
		}
		if err := tx.Where("tenant_id = ? AND holiday_id = ?", holiday.TenantID, holiday.ID).
			Delete(&models.HolidayOfficeModel{}).Error; err != nil {
			return err
		}
		if len(holiday.OfficeIDs) == 0 {
			return nil
		}
		links := make([]models.HolidayOfficeModel, len(holiday.OfficeIDs))
		for i, officeID := range holiday.OfficeIDs {
			links[i] = models.HolidayOfficeModel{HolidayID: holiday.ID, OfficeID: officeID, TenantID: holiday.TenantID}
		}
		return tx.Create(&links).Error
	})
}

func (r *GormHolidayRepository) hydrate(ctx context.Context, tenantID uuid.UUID, rows []models.HolidayModel) ([]organisation.Holiday, error) {
	ids := make([]uuid.UUID, len(rows))
	for i := range rows {
		ids[i] = rows[i].ID
	}
	offices, err := r.offices(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	holidays := make([]organisation.Holiday, len(rows))
	for i := range rows {
		holidays[i] = *rows[i].ToDomain(offices[rows[i].ID])
	}
	return holidays, nil
}

func (r *GormHolidayRepository) offices(ctx context.Context, tenantID uuid.UUID, holidayIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	out := make(map[uuid.UUID][]uuid.UUID, len(holidayIDs))
	if len(holidayIDs) == 0 {
		return out, nil
	}
	var links []models.HolidayOfficeModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND holiday_id IN ?", tenantID, holidayIDs).
		Find(&links).Error; err != nil {
		return nil, err
	}
	for _, link := range links {
		out[link.HolidayID] = append(out[link.HolidayID], link.OfficeID)
	}
	return out, nil
}

// GormWorkingDaysRepository implements WorkingDaysRepository using GORM
type GormWorkingDaysRepository struct {
	db *gorm.DB
}

// NewGormWorkingDaysRepository creates a new GormWorkingDaysRepository
func NewGormWorkingDaysRepository(db *gorm.DB) *GormWorkingDaysRepository {
	return &GormWorkingDaysRepository{db: db}
}

// FindForTenant returns the working days, or NOT_FOUND when unset
func (r *GormWorkingDaysRepository) FindForTenant(ctx context.Context, tenantID uuid.UUID) (*organisation.WorkingDays, error) {
	var model models.WorkingDaysModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NotFound("Working days")
		}
		return nil, err
	}
	return model.ToDomain()
}

// Save creates or updates the working days
func (r *GormWorkingDaysRepository) Save(ctx context.Context, wd *organisation.WorkingDays) error {
	return r.db.WithContext(ctx).Save(models.WorkingDaysModelFromDomain(wd)).Error
}
