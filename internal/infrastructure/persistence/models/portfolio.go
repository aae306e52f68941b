package models

import (
	"time"

	"github.com/fincore/backend/internal/domain/portfolio"
	"github.com/google/uuid"
)

// ClientModel is the persistence model for the Client aggregate root.
type ClientModel struct {
	TenantAggregateModel
	AccountNo      string                 `gorm:"type:varchar(30);not null"`
	OfficeID       uuid.UUID              `gorm:"type:uuid;not null;index"`
	StaffID        *uuid.UUID             `gorm:"type:uuid;index"`
	Firstname      string                 `gorm:"type:varchar(50)"`
	Lastname       string                 `gorm:"type:varchar(50)"`
	Fullname       string                 `gorm:"type:varchar(160)"`
	ExternalID     string                 `gorm:"type:varchar(100)"`
	MobileNo       string                 `gorm:"type:varchar(50)"`
	DateOfBirth    *time.Time             `gorm:"type:date"`
	Gender         string                 `gorm:"type:varchar(20)"`
	Status         portfolio.ClientStatus `gorm:"type:varchar(20);not null;index"`
	SubmittedOn    time.Time              `gorm:"type:date;not null"`
	ActivationDate *time.Time             `gorm:"type:date"`
	ClosureDate    *time.Time             `gorm:"type:date"`
	ClosureReason  string                 `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (ClientModel) TableName() string {
	return "clients"
}

// ToDomain converts the persistence model to a domain Client.
func (m *ClientModel) ToDomain() *portfolio.Client {
	c := &portfolio.Client{
		AccountNo:      m.AccountNo,
		OfficeID:       m.OfficeID,
		StaffID:        m.StaffID,
		Firstname:      m.Firstname,
		Lastname:       m.Lastname,
		Fullname:       m.Fullname,
		ExternalID:     m.ExternalID,
		MobileNo:       m.MobileNo,
		DateOfBirth:    m.DateOfBirth,
		Gender:         m.Gender,
		Status:         m.Status,
		SubmittedOn:    m.SubmittedOn,
		ActivationDate: m.ActivationDate,
		ClosureDate:    m.ClosureDate,
		ClosureReason:  m.ClosureReason,
	}
	m.loadRoot(&c.TenantAggregateRoot)
	return c
}

// ClientModelFromDomain creates a persistence model from a domain Client.
func ClientModelFromDomain(c *portfolio.Client) *ClientModel {
	m := &ClientModel{
		AccountNo:      c.AccountNo,
		OfficeID:       c.OfficeID,
		StaffID:        c.StaffID,
		Firstname:      c.Firstname,
		Lastname:       c.Lastname,
		Fullname:       c.Fullname,
		ExternalID:     c.ExternalID,
		MobileNo:       c.MobileNo,
		DateOfBirth:    c.DateOfBirth,
		Gender:         c.Gender,
		Status:         c.Status,
		SubmittedOn:    c.SubmittedOn,
		ActivationDate: c.ActivationDate,
		ClosureDate:    c.ClosureDate,
		ClosureReason:  c.ClosureReason,
	}
	m.setRoot(c.TenantAggregateRoot)
	return m
}

// ClientDocumentModel holds the metadata of a stored client document.
type ClientDocumentModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	TenantID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ClientID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Name        string    `gorm:"type:varchar(250);not null"`
	FileName    string    `gorm:"type:varchar(250);not null"`
	ContentType string    `gorm:"type:varchar(100)"`
	Size        int64     `gorm:"not null"`
	StorageKey  string    `gorm:"type:varchar(500);not null"`
	Description string    `gorm:"type:varchar(1000)"`
	CreatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ClientDocumentModel) TableName() string {
	return "client_documents"
}

// ToDomain converts the persistence model to a domain ClientDocument.
func (m *ClientDocumentModel) ToDomain() *portfolio.ClientDocument {
	return &portfolio.ClientDocument{
		ID:          m.ID,
		TenantID:    m.TenantID,
		ClientID:    m.ClientID,
		Name:        m.Name,
		FileName:    m.FileName,
		ContentType: m.ContentType,
		Size:        m.Size,
		StorageKey:  m.StorageKey,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
	}
}

// ClientDocumentModelFromDomain creates a persistence model from a domain ClientDocument.
func ClientDocumentModelFromDomain(d *portfolio.ClientDocument) *ClientDocumentModel {
	return &ClientDocumentModel{
		ID:          d.ID,
		TenantID:    d.TenantID,
		ClientID:    d.ClientID,
		Name:        d.Name,
		FileName:    d.FileName,
		ContentType: d.ContentType,
		Size:        d.Size,
		StorageKey:  d.StorageKey,
		Description: d.Description,
		CreatedAt:   d.CreatedAt,
	}
}

// GroupModel is the persistence model for groups and centers.
// Group members live in group_clients.
type GroupModel struct {
	TenantAggregateModel
	Level          portfolio.GroupLevel  `gorm:"type:varchar(10);not null;index"`
	OfficeID       uuid.UUID             `gorm:"type:uuid;not null;index"`
	StaffID        *uuid.UUID            `gorm:"type:uuid"`
	ParentID       *uuid.UUID            `gorm:"type:uuid;index"`
	Name           string                `gorm:"type:varchar(100);not null"`
	ExternalID     string                `gorm:"type:varchar(100)"`
	Status         portfolio.GroupStatus `gorm:"type:varchar(20);not null;index"`
	SubmittedOn    time.Time             `gorm:"type:date;not null"`
	ActivationDate *time.Time            `gorm:"type:date"`
	ClosureDate    *time.Time            `gorm:"type:date"`
}

// TableName returns the table name for GORM
func (GroupModel) TableName() string {
	return "groups"
}

// ToDomain converts the persistence model to a domain Group.
func (m *GroupModel) ToDomain(clientIDs []uuid.UUID) *portfolio.Group {
	g := &portfolio.Group{
		Level:          m.Level,
		OfficeID:       m.OfficeID,
		StaffID:        m.StaffID,
		ParentID:       m.ParentID,
		Name:           m.Name,
		ExternalID:     m.ExternalID,
		Status:         m.Status,
		SubmittedOn:    m.SubmittedOn,
		ActivationDate: m.ActivationDate,
		ClosureDate:    m.ClosureDate,
		ClientIDs:      clientIDs,
	}
	m.loadRoot(&g.TenantAggregateRoot)
	return g
}

// GroupModelFromDomain creates a persistence model from a domain Group.
func GroupModelFromDomain(g *portfolio.Group) *GroupModel {
	m := &GroupModel{
		Level:          g.Level,
		OfficeID:       g.OfficeID,
		StaffID:        g.StaffID,
		ParentID:       g.ParentID,
		Name:           g.Name,
		ExternalID:     g.ExternalID,
		Status:         g.Status,
		SubmittedOn:    g.SubmittedOn,
		ActivationDate: g.ActivationDate,
		ClosureDate:    g.ClosureDate,
	}
	m.setRoot(g.TenantAggregateRoot)
	return m
}

// GroupClientModel is a membership of a client in a group.
type GroupClientModel struct {
	GroupID  uuid.UUID `gorm:"type:uuid;primary_key"`
	ClientID uuid.UUID `gorm:"type:uuid;primary_key;index"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;index"`
	Position int       `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (GroupClientModel) TableName() string {
	return "group_clients"
}

// CalendarModel is the persistence model for the Calendar aggregate root.
type CalendarModel struct {
	TenantAggregateModel
	Title                  string                      `gorm:"type:varchar(70);not null"`
	Description            string                      `gorm:"type:varchar(100)"`
	Location               string                      `gorm:"type:varchar(50)"`
	StartDate              time.Time                   `gorm:"type:date;not null"`
	EndDate                *time.Time                  `gorm:"type:date"`
	Type                   portfolio.CalendarType      `gorm:"type:varchar(20);not null"`
	Repeating              bool                        `gorm:"not null;default:false"`
	Frequency              portfolio.CalendarFrequency `gorm:"type:varchar(10)"`
	Interval               int                         `gorm:"column:repeat_interval;not null;default:1"`
	RepeatsOnDay           *int                        `gorm:"type:smallint"`
	RepeatsOnNthDayOfMonth int                         `gorm:"not null;default:0"`
	Recurrence             string                      `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (CalendarModel) TableName() string {
	return "calendars"
}

// ToDomain converts the persistence model to a domain Calendar.
func (m *CalendarModel) ToDomain() *portfolio.Calendar {
	c := &portfolio.Calendar{
		Title:                  m.Title,
		Description:            m.Description,
		Location:               m.Location,
		StartDate:              m.StartDate,
		EndDate:                m.EndDate,
		Type:                   m.Type,
		Repeating:              m.Repeating,
		Frequency:              m.Frequency,
		Interval:               m.Interval,
		RepeatsOnNthDayOfMonth: m.RepeatsOnNthDayOfMonth,
		Recurrence:             m.Recurrence,
	}
	if m.RepeatsOnDay != nil {
		wd := time.Weekday(*m.RepeatsOnDay)
		c.RepeatsOnDay = &wd
	}
	m.loadRoot(&c.TenantAggregateRoot)
	return c
}

// CalendarModelFromDomain creates a persistence model from a domain Calendar.
func CalendarModelFromDomain(c *portfolio.Calendar) *CalendarModel {
	m := &CalendarModel{
		Title:                  c.Title,
		Description:            c.Description,
		Location:               c.Location,
		StartDate:              c.StartDate,
		EndDate:                c.EndDate,
		Type:                   c.Type,
		Repeating:              c.Repeating,
		Frequency:              c.Frequency,
		Interval:               c.Interval,
		RepeatsOnNthDayOfMonth: c.RepeatsOnNthDayOfMonth,
		Recurrence:             c.Recurrence,
	}
	if c.RepeatsOnDay != nil {
		d := int(*c.RepeatsOnDay)
		m.RepeatsOnDay = &d
	}
	m.setRoot(c.TenantAggregateRoot)
	return m
}

// CalendarInstanceModel attaches a calendar to a group, center or loan.
type CalendarInstanceModel struct {
	ID         uuid.UUID                    `gorm:"type:uuid;primary_key"`
	TenantID   uuid.UUID                    `gorm:"type:uuid;not null;index"`
	CalendarID uuid.UUID                    `gorm:"type:uuid;not null;index"`
	EntityType portfolio.CalendarEntityType `gorm:"type:varchar(10);not null"`
	EntityID   uuid.UUID                    `gorm:"type:uuid;not null;index"`
	CreatedAt  time.Time                    `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CalendarInstanceModel) TableName() string {
	return "calendar_instances"
}

// ToDomain converts the persistence model to a domain CalendarInstance.
func (m *CalendarInstanceModel) ToDomain() *portfolio.CalendarInstance {
	return &portfolio.CalendarInstance{
		ID:         m.ID,
		TenantID:   m.TenantID,
		CalendarID: m.CalendarID,
		EntityType: m.EntityType,
		EntityID:   m.EntityID,
		CreatedAt:  m.CreatedAt,
	}
}

// CalendarInstanceModelFromDomain creates a persistence model from a domain CalendarInstance.
func CalendarInstanceModelFromDomain(i *portfolio.CalendarInstance) *CalendarInstanceModel {
	return &CalendarInstanceModel{
		ID:         i.ID,
		TenantID:   i.TenantID,
		CalendarID: i.CalendarID,
		EntityType: i.EntityType,
		EntityID:   i.EntityID,
		CreatedAt:  i.CreatedAt,
	}
}

// CalendarHistoryModel keeps a superseded recurrence of a calendar.
type CalendarHistoryModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	TenantID   uuid.UUID `gorm:"type:uuid;not null;index"`
	CalendarID uuid.UUID `gorm:"type:uuid;not null;index"`
	StartDate  time.Time `gorm:"type:date;not null"`
	EndDate    time.Time `gorm:"type:date;not null"`
	Recurrence string    `gorm:"type:varchar(100)"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CalendarHistoryModel) TableName() string {
	return "calendar_history"
}

// ToDomain converts the persistence model to a domain CalendarHistory.
func (m *CalendarHistoryModel) ToDomain() portfolio.CalendarHistory {
	return portfolio.CalendarHistory{
		ID:         m.ID,
		TenantID:   m.TenantID,
		CalendarID: m.CalendarID,
		StartDate:  m.StartDate,
		EndDate:    m.EndDate,
		Recurrence: m.Recurrence,
		CreatedAt:  m.CreatedAt,
	}
}

// CalendarHistoryModelFromDomain creates a persistence model from a domain CalendarHistory.
func CalendarHistoryModelFromDomain(h *portfolio.CalendarHistory) *CalendarHistoryModel {
	return &CalendarHistoryModel{
		ID:         h.ID,
		TenantID:   h.TenantID,
		CalendarID: h.CalendarID,
		StartDate:  h.StartDate,
		EndDate:    h.EndDate,
		Recurrence: h.Recurrence,
		CreatedAt:  h.CreatedAt,
	}
}

// MeetingModel is the persistence model for the Meeting aggregate root.
type MeetingModel struct {
	TenantAggregateModel
	CalendarInstanceID uuid.UUID `gorm:"type:uuid;not null;index"`
	MeetingDate        time.Time `gorm:"type:date;not null"`
}

// TableName returns the table name for GORM
func (MeetingModel) TableName() string {
	return "meetings"
}

// ToDomain converts the persistence model to a domain Meeting.
func (m *MeetingModel) ToDomain(rows []AttendanceModel) *portfolio.Meeting {
	meeting := &portfolio.Meeting{
		CalendarInstanceID: m.CalendarInstanceID,
		MeetingDate:        m.MeetingDate,
		Attendance:         make([]portfolio.ClientAttendance, len(rows)),
	}
	for i, r := range rows {
		meeting.Attendance[i] = portfolio.ClientAttendance{ClientID: r.ClientID, Attendance: r.Attendance}
	}
	m.loadRoot(&meeting.TenantAggregateRoot)
	return meeting
}

// MeetingModelFromDomain creates a persistence model from a domain Meeting.
func MeetingModelFromDomain(meeting *portfolio.Meeting) *MeetingModel {
	m := &MeetingModel{
		CalendarInstanceID: meeting.CalendarInstanceID,
		MeetingDate:        meeting.MeetingDate,
	}
	m.setRoot(meeting.TenantAggregateRoot)
	return m
}

// AttendanceModel records whether a client attended a meeting.
type AttendanceModel struct {
	MeetingID  uuid.UUID                `gorm:"type:uuid;primary_key"`
	ClientID   uuid.UUID                `gorm:"type:uuid;primary_key"`
	TenantID   uuid.UUID                `gorm:"type:uuid;not null;index"`
	Attendance portfolio.AttendanceType `gorm:"type:varchar(20);not null"`
}

// TableName returns the table name for GORM
func (AttendanceModel) TableName() string {
	return "client_attendance"
}

// AttendanceModelsFromDomain maps the attendance register of a meeting.
func AttendanceModelsFromDomain(meeting *portfolio.Meeting) []AttendanceModel {
	out := make([]AttendanceModel, len(meeting.Attendance))
	for i, a := range meeting.Attendance {
		out[i] = AttendanceModel{
			MeetingID:  meeting.ID,
			ClientID:   a.ClientID,
			TenantID:   meeting.TenantID,
			Attendance: a.Attendance,
		}
	}
	return out
}
