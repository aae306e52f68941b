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

// GormCalendarRepository implements CalendarRepository using GORM
type GormCalendarRepository struct {
	db *gorm.DB
}

// NewGormCalendarRepository creates a new GormCalendarRepository
func NewGormCalendarRepository(db *gorm.DB) *GormCalendarRepository {
	return &GormCalendarRepository{db: db}
}

// FindByIDForTenant finds a calendar by ID
func (r *GormCalendarRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*portfolio.Calendar, error) {
	var model models.CalendarModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NotFound("Calendar")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindForEntity returns the calendar of a type attached to an entity, or NOT_FOUND
func (r *GormCalendarRepository) FindForEntity(ctx context.Context, tenantID uuid.UUID, entityType portfolio.CalendarEntityType, entityID uuid.UUID, calType portfolio.CalendarType) (*portfolio.Calendar, *portfolio.CalendarInstance, error) {
	var instance models.CalendarInstanceModel
	if err := r.db.WithContext(ctx).
		Joins("JOIN calendars c ON c.id = calendar_instances.calendar_id").
		Where("calendar_instances.tenant_id = ? AND calendar_instances.entity_type = ? AND calendar_instances.entity_id = ? AND c.type = ?",
			tenantID, entityType, entityID, calType).
		Order("calendar_instances.created_at DESC").
		First(&instance).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, shared.NotFound("Calendar")
		}
		return nil, nil, err
	}
	cal, err := r.FindByIDForTenant(ctx, tenantID, instance.CalendarID)
	if err != nil {
		return nil, nil, err
	}
	return cal, instance.ToDomain(), nil
}

// FindInstances lists the attachments of a calendar
func (r *GormCalendarRepository) FindInstances(ctx context.Context, tenantID, calendarID uuid.UUID) ([]portfolio.CalendarInstance, error) {
	var rows []models.CalendarInstanceModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND calendar_id = ?", tenantID, calendarID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	instances := make([]portfolio.CalendarInstance, len(rows))
	for i := range rows {
		instances[i] = *rows[i].ToDomain()
	}
	return instances, nil
}

// FindInstance finds an attachment by ID
func (r *GormCalendarRepository) FindInstance(ctx context.Context, tenantID, instanceID uuid.UUID) (*portfolio.CalendarInstance, error) {
	var model models.CalendarInstanceModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, instanceID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NotFound("Calendar instance")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindHistory lists superseded recurrences of a calendar, oldest first
func (r *GormCalendarRepository) FindHistory(ctx context.Context, tenantID, calendarID uuid.UUID) ([]portfolio.CalendarHistory, error) {
	var rows []models.CalendarHistoryModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND calendar_id = ?", tenantID, calendarID).
		Order("start_date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	history := make([]portfolio.CalendarHistory, len(rows))
	for i := range rows {
		history[i] = rows[i].ToDomain()
	}
	return history, nil
}

// Save creates or updates a calendar
func (r *GormCalendarRepository) Save(ctx context.Context, cal *portfolio.Calendar) error {
	return r.db.WithContext(ctx).Save(models.CalendarModelFromDomain(cal)).Error
}

// SaveInstance attaches a calendar to an entity
func (r *GormCalendarRepository) SaveInstance(ctx context.Context, instance *portfolio.CalendarInstance) error {
	if instance.ID == uuid.Nil {
		instance.ID = uuid.New()
	}
	if instance.CreatedAt.IsZero() {
		instance.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Save(models.CalendarInstanceModelFromDomain(instance)).Error
}

// SaveHistory records a superseded recurrence
func (r *GormCalendarRepository) SaveHistory(ctx context.Context, history *portfolio.CalendarHistory) error {
	if history.ID == uuid.Nil {
		history.ID = uuid.New()
	}
	if history.CreatedAt.IsZero() {
		history.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(models.CalendarHistoryModelFromDomain(history)).Error
}

// Delete removes a calendar with its attachments and history
func (r *GormCalendarRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ? AND calendar_id = ?", tenantID, id).
			Delete(&models.CalendarInstanceModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("tenant_id = ? AND calendar_id = ?", tenantID, id).
			Delete(&models.CalendarHistoryModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.CalendarModel{}, "tenant_id = ? AND id = ?", tenantID, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NotFound("Calendar")
		}
		return nil
	})
}

// GormMeetingRepository implements MeetingRepository using GORM
type GormMeetingRepository struct {
	db *gorm.DB
}

// NewGormMeetingRepository creates a new GormMeetingRepository
func NewGormMeetingRepository(db *gorm.DB) *GormMeetingRepository {
	return &GormMeetingRepository{db: db}
}

// FindByIDForTenant finds a meeting by ID
func (r *GormMeetingRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*portfolio.Meeting, error) {
	return r.findOne(ctx, r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id))
}

// FindByInstanceAndDate finds the meeting of an attachment on a date, or NOT_FOUND
func (r *GormMeetingRepository) FindByInstanceAndDate(ctx context.Context, tenantID, instanceID uuid.UUID, date time.Time) (*portfolio.Meeting, error) {
	return r.findOne(ctx, r.db.WithContext(ctx).
		Where("tenant_id = ? AND calendar_instance_id = ? AND meeting_date = ?", tenantID, instanceID, shared.Day(date)))
}

// FindByInstance lists the meetings of an attachment, newest first
func (r *GormMeetingRepository) FindByInstance(ctx context.Context, tenantID, instanceID uuid.UUID) ([]portfolio.Meeting, error) {
	var rows []models.MeetingModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND calendar_instance_id = ?", tenantID, instanceID).
		Order("meeting_date DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(rows))
	for i := range rows {
		ids[i] = rows[i].ID
	}
	attendance, err := r.attendance(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	meetings := make([]portfolio.Meeting, len(rows))
	for i := range rows {
		meetings[i] = *rows[i].ToDomain(attendance[rows[i].ID])
	}
	return meetings, nil
}

// CountForCalendar counts meetings held on any attachment of a calendar
func (r *GormMeetingRepository) CountForCalendar(ctx context.Context, tenantID, calendarID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.MeetingModel{}).
		Joins("JOIN calendar_instances ci ON ci.id = meetings.calendar_instance_id").
		Where("meetings.tenant_id = ? AND ci.calendar_id = ?", tenantID, calendarID).
		Count(&count).Error
	return count, err
}

// Save creates or updates a meeting and replaces its attendance
func (r *GormMeetingRepository) Save(ctx context.Context, meeting *portfolio.Meeting) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(models.MeetingModelFromDomain(meeting)).Error; err != nil {
			return err
		}
		if err := tx.Where("tenant_id = ? AND meeting_id = ?", meeting.TenantID, meeting.ID).
			Delete(&models.AttendanceModel{}).Error; err != nil {
			return err
		}
		rows := models.AttendanceModelsFromDomain(meeting)
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

// Delete removes a meeting with its attendance
func (r *GormMeetingRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ? AND meeting_id = ?", tenantID, id).
			Delete(&models.AttendanceModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.MeetingModel{}, "tenant_id = ? AND id = ?", tenantID, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NotFound("Meeting")
		}
		return nil
	})
}

func (r *GormMeetingRepository) findOne(ctx context.Context, query *gorm.DB) (*portfolio.Meeting, error) {
	var model models.MeetingModel
	if err := query.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NotFound("Meeting")
		}
		return nil, err
	}
	attendance, err := r.attendance(ctx, model.TenantID, []uuid.UUID{model.ID})
	if err != nil {
		return nil, err
	}
	return model.ToDomain(attendance[model.ID]), nil
}

func (r *GormMeetingRepository) attendance(ctx context.Context, tenantID uuid.UUID, meetingIDs []uuid.UUID) (map[uuid.UUID][]models.AttendanceModel, error) {
	out := make(map[uuid.UUID][]models.AttendanceModel, len(meetingIDs))
	if len(meetingIDs) == 0 {
		return out, nil
	}
	var rows []models.AttendanceModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND meeting_id IN ?", tenantID, meetingIDs).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.MeetingID] = append(out[row.MeetingID], row)
	}
	return out, nil
}
