package portfolio

import (
	"time"

	"github.com/fincore/backend/internal/domain/portfolio"
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Clients
// ---------------------------------------------------------------------------

// ClientRequest holds the descriptive fields of a client
type ClientRequest struct {
	Firstname   string  `json:"firstname" binding:"max=50"`
	Lastname    string  `json:"lastname" binding:"max=50"`
	Fullname    string  `json:"fullname" binding:"max=160"`
	ExternalID  string  `json:"external_id" binding:"max=100"`
	MobileNo    string  `json:"mobile_no" binding:"max=50"`
	DateOfBirth *string `json:"date_of_birth"`
	Gender      string  `json:"gender" binding:"omitempty,oneof=MALE FEMALE OTHER"`
}

func (r ClientRequest) input() (portfolio.ClientInput, error) {
	dob, err := shared.ParseOptionalDate(r.DateOfBirth)
	if err != nil {
		return portfolio.ClientInput{}, err
	}
	return portfolio.ClientInput{
		Firstname:   r.Firstname,
		Lastname:    r.Lastname,
		Fullname:    r.Fullname,
		ExternalID:  r.ExternalID,
		MobileNo:    r.MobileNo,
		DateOfBirth: dob,
		Gender:      r.Gender,
	}, nil
}

// CreateClientRequest creates a client, optionally active right away
type CreateClientRequest struct {
	ClientRequest
	OfficeID       uuid.UUID  `json:"office_id" binding:"required"`
	StaffID        *uuid.UUID `json:"staff_id"`
	SubmittedOn    string     `json:"submitted_on"`
	Active         bool       `json:"active"`
	ActivationDate string     `json:"activation_date" binding:"isodate"`
}

// ClientStateRequest carries the date and reason of a client transition
type ClientStateRequest struct {
	Date   string `json:"date" binding:"isodate"`
	Reason string `json:"reason" binding:"max=500"`
}

// AssignStaffRequest assigns a staff member
type AssignStaffRequest struct {
	StaffID uuid.UUID `json:"staff_id" binding:"required"`
}

// ClientListFilter holds query parameters of the client list
type ClientListFilter struct {
	Search   string     `form:"search"`
	OfficeID *uuid.UUID `form:"office_id"`
	StaffID  *uuid.UUID `form:"staff_id"`
	Status   string     `form:"status" binding:"omitempty,oneof=PENDING ACTIVE CLOSED REJECTED WITHDRAWN"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=200"`
	OrderBy  string     `form:"order_by" binding:"omitempty,oneof=account_no display_name submitted_on created_at"`
	OrderDir string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ClientResponse is a client in API responses
type ClientResponse struct {
	ID             uuid.UUID  `json:"id"`
	AccountNo      string     `json:"account_no"`
	OfficeID       uuid.UUID  `json:"office_id"`
	StaffID        *uuid.UUID `json:"staff_id,omitempty"`
	Firstname      string     `json:"firstname,omitempty"`
	Lastname       string     `json:"lastname,omitempty"`
	Fullname       string     `json:"fullname,omitempty"`
	DisplayName    string     `json:"display_name"`
	ExternalID     string     `json:"external_id,omitempty"`
	MobileNo       string     `json:"mobile_no,omitempty"`
	DateOfBirth    *time.Time `json:"date_of_birth,omitempty"`
	Gender         string     `json:"gender,omitempty"`
	Status         string     `json:"status"`
	SubmittedOn    time.Time  `json:"submitted_on"`
	ActivationDate *time.Time `json:"activation_date,omitempty"`
	ClosureDate    *time.Time `json:"closure_date,omitempty"`
	ClosureReason  string     `json:"closure_reason,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ToClientResponse converts a domain client
func ToClientResponse(c *portfolio.Client) *ClientResponse {
	return &ClientResponse{
		ID:             c.ID,
		AccountNo:      c.AccountNo,
		OfficeID:       c.OfficeID,
		StaffID:        c.StaffID,
		Firstname:      c.Firstname,
		Lastname:       c.Lastname,
		Fullname:       c.Fullname,
		DisplayName:    c.DisplayName(),
		ExternalID:     c.ExternalID,
		MobileNo:       c.MobileNo,
		DateOfBirth:    c.DateOfBirth,
		Gender:         c.Gender,
		Status:         string(c.Status),
		SubmittedOn:    c.SubmittedOn,
		ActivationDate: c.ActivationDate,
		ClosureDate:    c.ClosureDate,
		ClosureReason:  c.ClosureReason,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

// UploadDocumentRequest is the metadata accompanying a document upload
type UploadDocumentRequest struct {
	Name        string `form:"name" binding:"required,max=250"`
	Description string `form:"description" binding:"max=1000"`
	FileName    string `form:"-"`
	ContentType string `form:"-"`
	Data        []byte `form:"-"`
}

// DocumentResponse is a client document in API responses
type DocumentResponse struct {
	ID          uuid.UUID `json:"id"`
	ClientID    uuid.UUID `json:"client_id"`
	Name        string    `json:"name"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToDocumentResponse converts document metadata
func ToDocumentResponse(d *portfolio.ClientDocument) *DocumentResponse {
	return &DocumentResponse{
		ID:          d.ID,
		ClientID:    d.ClientID,
		Name:        d.Name,
		FileName:    d.FileName,
		ContentType: d.ContentType,
		Size:        d.Size,
		Description: d.Description,
		CreatedAt:   d.CreatedAt,
	}
}

// DownloadURLResponse is a presigned link to a stored document
type DownloadURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ---------------------------------------------------------------------------
// Groups and centers
// ---------------------------------------------------------------------------

// CreateGroupRequest creates a group or a center
type CreateGroupRequest struct {
	OfficeID       uuid.UUID   `json:"office_id" binding:"required"`
	CenterID       *uuid.UUID  `json:"center_id"`
	StaffID        *uuid.UUID  `json:"staff_id"`
	Name           string      `json:"name" binding:"required,max=100"`
	ExternalID     string      `json:"external_id" binding:"max=100"`
	SubmittedOn    string      `json:"submitted_on"`
	Active         bool        `json:"active"`
	ActivationDate string      `json:"activation_date" binding:"isodate"`
	ClientIDs      []uuid.UUID `json:"client_members"`
}

// UpdateGroupRequest renames a group or center
type UpdateGroupRequest struct {
	Name       string `json:"name" binding:"required,max=100"`
	ExternalID string `json:"external_id" binding:"max=100"`
}

// GroupStateRequest carries the date of an activation or closure
type GroupStateRequest struct {
	Date string `json:"date" binding:"isodate"`
}

// MembersRequest lists clients or groups to associate or disassociate
type MembersRequest struct {
	IDs []uuid.UUID `json:"ids" binding:"required,min=1,dive,required"`
}

// GroupListFilter holds query parameters of group and center lists
type GroupListFilter struct {
	Search   string     `form:"search"`
	OfficeID *uuid.UUID `form:"office_id"`
	CenterID *uuid.UUID `form:"center_id"`
	Status   string     `form:"status" binding:"omitempty,oneof=PENDING ACTIVE CLOSED"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=200"`
}

// GroupResponse is a group or center in API responses
type GroupResponse struct {
	ID             uuid.UUID        `json:"id"`
	Level          string           `json:"level"`
	OfficeID       uuid.UUID        `json:"office_id"`
	StaffID        *uuid.UUID       `json:"staff_id,omitempty"`
	CenterID       *uuid.UUID       `json:"center_id,omitempty"`
	Name           string           `json:"name"`
	ExternalID     string           `json:"external_id,omitempty"`
	Status         string           `json:"status"`
	SubmittedOn    time.Time        `json:"submitted_on"`
	ActivationDate *time.Time       `json:"activation_date,omitempty"`
	ClosureDate    *time.Time       `json:"closure_date,omitempty"`
	ClientIDs      []uuid.UUID      `json:"client_ids,omitempty"`
	Clients        []ClientResponse `json:"clients,omitempty"`
	Groups         []GroupResponse  `json:"groups,omitempty"`
}

// ToGroupResponse converts a domain group
func ToGroupResponse(g *portfolio.Group) *GroupResponse {
	return &GroupResponse{
		ID:             g.ID,
		Level:          string(g.Level),
		OfficeID:       g.OfficeID,
		StaffID:        g.StaffID,
		CenterID:       g.ParentID,
		Name:           g.Name,
		ExternalID:     g.ExternalID,
		Status:         string(g.Status),
		SubmittedOn:    g.SubmittedOn,
		ActivationDate: g.ActivationDate,
		ClosureDate:    g.ClosureDate,
		ClientIDs:      g.ClientIDs,
	}
}

// ---------------------------------------------------------------------------
// Calendars
// ---------------------------------------------------------------------------

// CalendarRequest creates or updates a calendar
type CalendarRequest struct {
	Title                  string `json:"title" binding:"required,max=70"`
	Description            string `json:"description" binding:"max=100"`
	Location               string `json:"location" binding:"max=100"`
	StartDate              string `json:"start_date" binding:"required,isodate"`
	EndDate                string `json:"end_date" binding:"isodate"`
	Type                   string `json:"type_id" binding:"required,oneof=COLLECTION MEETING LOAN"`
	Repeating              bool   `json:"repeating"`
	Frequency              string `json:"frequency" binding:"omitempty,oneof=DAILY WEEKLY MONTHLY YEARLY"`
	Interval               int    `json:"interval" binding:"omitempty,min=1"`
	RepeatsOnDay           *int   `json:"repeats_on_day" binding:"omitempty,min=0,max=6"`
	RepeatsOnNthDayOfMonth int    `json:"repeats_on_nth_day_of_month"`
}

func (r CalendarRequest) input() (portfolio.CalendarInput, error) {
	start, err := shared.ParseDate(r.StartDate)
	if err != nil {
		return portfolio.CalendarInput{}, err
	}
	end, err := shared.ParseOptionalDate(&r.EndDate)
	if err != nil {
		return portfolio.CalendarInput{}, err
	}
	var day *time.Weekday
	if r.RepeatsOnDay != nil {
		wd := time.Weekday(*r.RepeatsOnDay)
		day = &wd
	}
	return portfolio.CalendarInput{
		Title:                  r.Title,
		Description:            r.Description,
		Location:               r.Location,
		StartDate:              start,
		EndDate:                end,
		Type:                   portfolio.CalendarType(r.Type),
		Repeating:              r.Repeating,
		Frequency:              portfolio.CalendarFrequency(r.Frequency),
		Interval:               r.Interval,
		RepeatsOnDay:           day,
		RepeatsOnNthDayOfMonth: r.RepeatsOnNthDayOfMonth,
	}, nil
}

// CreateCalendarRequest creates a calendar attached to an entity
type CreateCalendarRequest struct {
	CalendarRequest
	EntityType string    `json:"entity_type" binding:"required,oneof=CENTER GROUP LOAN"`
	EntityID   uuid.UUID `json:"entity_id" binding:"required"`
}

// RecurringDatesQuery bounds an expansion of a calendar
type RecurringDatesQuery struct {
	From  string `form:"from" binding:"required"`
	To    string `form:"to" binding:"required"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=400"`
}

// CalendarResponse is a calendar in API responses
type CalendarResponse struct {
	ID                     uuid.UUID  `json:"id"`
	Title                  string     `json:"title"`
	Description            string     `json:"description,omitempty"`
	Location               string     `json:"location,omitempty"`
	StartDate              time.Time  `json:"start_date"`
	EndDate                *time.Time `json:"end_date,omitempty"`
	Type                   string     `json:"type"`
	Repeating              bool       `json:"repeating"`
	Frequency              string     `json:"frequency,omitempty"`
	Interval               int        `json:"interval,omitempty"`
	RepeatsOnDay           *int       `json:"repeats_on_day,omitempty"`
	RepeatsOnNthDayOfMonth int        `json:"repeats_on_nth_day_of_month,omitempty"`
	Recurrence             string     `json:"recurrence,omitempty"`
	InstanceID             *uuid.UUID `json:"calendar_instance_id,omitempty"`
	EntityType             string     `json:"entity_type,omitempty"`
	EntityID               *uuid.UUID `json:"entity_id,omitempty"`
}

// ToCalendarResponse converts a domain calendar and, when given, its attachment
func ToCalendarResponse(c *portfolio.Calendar, inst *portfolio.CalendarInstance) *CalendarResponse {
	resp := &CalendarResponse{
		ID:                     c.ID,
		Title:                  c.Title,
		Description:            c.Description,
		Location:               c.Location,
		StartDate:              c.StartDate,
		EndDate:                c.EndDate,
		Type:                   string(c.Type),
		Repeating:              c.Repeating,
		Frequency:              string(c.Frequency),
		Interval:               c.Interval,
		RepeatsOnNthDayOfMonth: c.RepeatsOnNthDayOfMonth,
		Recurrence:             c.Recurrence,
	}
	if c.RepeatsOnDay != nil {
		d := int(*c.RepeatsOnDay)
		resp.RepeatsOnDay = &d
	}
	if inst != nil {
		resp.InstanceID = &inst.ID
		resp.EntityType = string(inst.EntityType)
		resp.EntityID = &inst.EntityID
	}
	return resp
}

// RecurringDatesResponse lists expanded calendar dates
type RecurringDatesResponse struct {
	CalendarID uuid.UUID   `json:"calendar_id"`
	Dates      []time.Time `json:"dates"`
	Next       *time.Time  `json:"next_date,omitempty"`
}

// ---------------------------------------------------------------------------
// Meetings
// ---------------------------------------------------------------------------

// AttendanceRow is one client's attendance
type AttendanceRow struct {
	ClientID   uuid.UUID `json:"client_id" binding:"required"`
	Attendance string    `json:"attendance_type" binding:"required,oneof=PRESENT ABSENT APPROVED LEAVE LATE"`
}

func attendanceRows(rows []AttendanceRow) []portfolio.ClientAttendance {
	out := make([]portfolio.ClientAttendance, 0, len(rows))
	for _, r := range rows {
		out = append(out, portfolio.ClientAttendance{ClientID: r.ClientID, Attendance: portfolio.AttendanceType(r.Attendance)})
	}
	return out
}

// CreateMeetingRequest records a meeting of a group or center
type CreateMeetingRequest struct {
	EntityType  string          `json:"entity_type" binding:"required,oneof=CENTER GROUP"`
	EntityID    uuid.UUID       `json:"entity_id" binding:"required"`
	MeetingDate string          `json:"meeting_date" binding:"required,isodate"`
	Attendance  []AttendanceRow `json:"client_attendance" binding:"dive"`
}

// AttendanceRequest replaces a meeting's register
type AttendanceRequest struct {
	Attendance []AttendanceRow `json:"client_attendance" binding:"dive"`
}

// MeetingResponse is a meeting in API responses
type MeetingResponse struct {
	ID                 uuid.UUID       `json:"id"`
	CalendarInstanceID uuid.UUID       `json:"calendar_instance_id"`
	MeetingDate        time.Time       `json:"meeting_date"`
	Attendance         []AttendanceRow `json:"client_attendance"`
}

// ToMeetingResponse converts a domain meeting
func ToMeetingResponse(m *portfolio.Meeting) *MeetingResponse {
	rows := make([]AttendanceRow, 0, len(m.Attendance))
	for _, a := range m.Attendance {
		rows = append(rows, AttendanceRow{ClientID: a.ClientID, Attendance: string(a.Attendance)})
	}
	return &MeetingResponse{
		ID:                 m.ID,
		CalendarInstanceID: m.CalendarInstanceID,
		MeetingDate:        m.MeetingDate,
		Attendance:         rows,
	}
}
