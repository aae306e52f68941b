package handler

import (
	"context"
	"net/http"

	portfolioapp "github.com/fincore/backend/internal/application/portfolio"
	"github.com/fincore/backend/internal/domain/command"
	"github.com/gin-gonic/gin"
)

// CalendarHandler serves meeting calendars and the meetings held on them
type CalendarHandler struct {
	BaseHandler
	calendars *portfolioapp.CalendarService
	meetings  *portfolioapp.MeetingService
}

// NewCalendarHandler creates a new CalendarHandler
func NewCalendarHandler(base BaseHandler, calendars *portfolioapp.CalendarService, meetings *portfolioapp.MeetingService) *CalendarHandler {
	return &CalendarHandler{BaseHandler: base, calendars: calendars, meetings: meetings}
}

type entityQuery struct {
	EntityType   string `form:"entity_type" binding:"required,oneof=CENTER GROUP LOAN"`
	EntityID     string `form:"entity_id" binding:"required,uuid"`
	CalendarType string `form:"calendar_type" binding:"omitempty,oneof=COLLECTION MEETING LOAN"`
}

// FindCalendar godoc
// @ID           findCalendar
// @Summary      Get the calendar attached to an entity
// @Tags         calendars
// @Produce      json
// @Param        entity_type query string true "Entity type" Enums(CENTER, GROUP, LOAN)
// @Param        entity_id query string true "Entity ID"
// @Param        calendar_type query string false "Calendar type" Enums(COLLECTION, MEETING, LOAN)
// @Success      200 {object} APIResponse[portfolioapp.CalendarResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /calendars [get]
func (h *CalendarHandler) FindCalendar(c *gin.Context) {
	var q entityQuery
	if !h.bindQuery(c, &q) {
		return
	}
	entityID, ok := h.queryID(c, "entity_id")
	if !ok {
		return
	}
	calType := q.CalendarType
	if calType == "" {
		calType = "COLLECTION"
	}
	cal, err := h.calendars.GetForEntity(c.Request.Context(), tenant(c), q.EntityType, *entityID, calType)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cal)
}

// GetCalendar godoc
// @ID           getCalendar
// @Summary      Get a calendar
// @Tags         calendars
// @Produce      json
// @Param        id path string true "Calendar ID"
// @Success      200 {object} APIResponse[portfolioapp.CalendarResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /calendars/{id} [get]
func (h *CalendarHandler) GetCalendar(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	cal, err := h.calendars.GetByID(c.Request.Context(), tenant(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cal)
}

// CreateCalendar godoc
// @ID           createCalendar
// @Summary      Attach a calendar to a center, group or loan
// @Tags         calendars
// @Accept       json
// @Produce      json
// @Param        request body portfolioapp.CreateCalendarRequest true "Calendar"
// @Success      201 {object} APIResponse[portfolioapp.CalendarResponse]
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /calendars [post]
func (h *CalendarHandler) CreateCalendar(c *gin.Context) {
	var req portfolioapp.CreateCalendarRequest
	if !h.bind(c, &req) {
		return
	}
	tid := tenant(c)
	w := wrap(c, "CALENDAR", "CREATE", req)
	switch req.EntityType {
	case "LOAN":
		w.LoanID = &req.EntityID
	default:
		w.GroupID = &req.EntityID
	}
	h.execute(c, w, http.StatusCreated, func(ctx context.Context) (*command.Result, error) {
		cal, err := h.calendars.Create(ctx, tid, req)
		if err != nil {
			return nil, err
		}
		return result(cal.ID, cal), nil
	})
}

// UpdateCalendar godoc
// @ID           updateCalendar
// @Summary      Change a calendar's recurrence
// @Description  The previous recurrence is kept in the calendar history
// @Tags         calendars
// @Accept       json
// @Produce      json
// @Param        id path string true "Calendar ID"
// @Param        request body portfolioapp.CalendarRequest true "Calendar"
// @Success      200 {object} APIResponse[portfolioapp.CalendarResponse]
// @Security     BearerAuth
// @Router       /calendars/{id} [put]
func (h *CalendarHandler) UpdateCalendar(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req portfolioapp.CalendarRequest
	if !h.bind(c, &req) {
		return
	}
	tid := tenant(c)
	h.execute(c, wrap(c, "CALENDAR", "UPDATE", req).WithResource(id), http.StatusOK, func(ctx context.Context) (*command.Result, error) {
		cal, err := h.calendars.Update(ctx, tid, id, req)
		if err != nil {
			return nil, err
		}
		return result(cal.ID, cal), nil
	})
}

// DeleteCalendar godoc
// @ID           deleteCalendar
// @Summary      Delete a calendar without meetings
// @Tags         calendars
// @Param        id path string true "Calendar ID"
// @Success      204
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /calendars/{id} [delete]
func (h *CalendarHandler) DeleteCalendar(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	tid := tenant(c)
	h.execute(c, wrap(c, "CALENDAR", "DELETE", nil).WithResource(id), http.StatusOK, func(ctx context.Context) (*command.Result, error) {
		return &command.Result{ResourceID: &id}, h.calendars.Delete(ctx, tid, id)
	})
}

// RecurringDates godoc
// @ID           calendarRecurringDates
// @Summary      Expand a calendar over a date range
// @Tags         calendars
// @Produce      json
// @Param        id path string true "Calendar ID"
// @Param        from query string true "First date (YYYY-MM-DD)"
// @Param        to query string true "Last date (YYYY-MM-DD)"
// @Param        limit query int false "Maximum number of dates"
// @Success      200 {object} APIResponse[portfolioapp.RecurringDatesResponse]
// @Security     BearerAuth
// @Router       /calendars/{id}/dates [get]
func (h *CalendarHandler) RecurringDates(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var q portfolioapp.RecurringDatesQuery
	if !h.bindQuery(c, &q) {
		return
	}
	dates, err := h.calendars.RecurringDates(c.Request.Context(), tenant(c), id, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dates)
}

// NextDate godoc
// @ID           calendarNextDate
// @Summary      First calendar date after a given day
// @Tags         calendars
// @Produce      json
// @Param        id path string true "Calendar ID"
// @Param        after query string false "Reference date, today when omitted"
// @Success      200 {object} APIResponse[portfolioapp.RecurringDatesResponse]
// @Security     BearerAuth
// @Router       /calendars/{id}/next [get]
func (h *CalendarHandler) NextDate(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	next, err := h.calendars.NextDate(c.Request.Context(), tenant(c), id, c.Query("after"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, next)
}

// ValidateDate godoc
// @ID           calendarValidateDate
// @Summary      Whether a meeting may be held on a date
// @Tags         calendars
// @Produce      json
// @Param        id path string true "Calendar ID"
// @Param        date query string true "Date (YYYY-MM-DD)"
// @Success      200 {object} APIResponse[ValidityData]
// @Security     BearerAuth
// @Router       /calendars/{id}/validate [get]
func (h *CalendarHandler) ValidateDate(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	date := c.Query("date")
	valid, err := h.calendars.IsValidDate(c.Request.Context(), tenant(c), id, date)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ValidityData{Date: date, Valid: valid})
}

// ListMeetings godoc
// @ID           listMeetings
// @Summary      List the meetings of a group or center
// @Tags         calendars
// @Produce      json
// @Param        entity_type query string true "Entity type" Enums(CENTER, GROUP)
// @Param        entity_id query string true "Entity ID"
// @Success      200 {object} APIResponse[[]portfolioapp.MeetingResponse]
// @Security     BearerAuth
// @Router       /meetings [get]
func (h *CalendarHandler) ListMeetings(c *gin.Context) {
	var q entityQuery
	if !h.bindQuery(c, &q) {
		return
	}
	entityID, ok := h.queryID(c, "entity_id")
	if !ok {
		return
	}
	meetings, err := h.meetings.ListForEntity(c.Request.Context(), tenant(c), q.EntityType, *entityID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, meetings)
}

// GetMeeting godoc
// @ID           getMeeting
// @Summary      Get a meeting with its attendance
// @Tags         calendars
// @Produce      json
// @Param        id path string true "Meeting ID"
// @Success      200 {object} APIResponse[portfolioapp.MeetingResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /meetings/{id} [get]
func (h *CalendarHandler) GetMeeting(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	meeting, err := h.meetings.GetByID(c.Request.Context(), tenant(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, meeting)
}

// CreateMeeting godoc
// @ID           createMeeting
// @Summary      Record a meeting on a valid calendar date
// @Tags         calendars
// @Accept       json
// @Produce      json
// @Param        request body portfolioapp.CreateMeetingRequest true "Meeting"
// @Success      201 {object} APIResponse[portfolioapp.MeetingResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /meetings [post]
func (h *CalendarHandler) CreateMeeting(c *gin.Context) {
	var req portfolioapp.CreateMeetingRequest
	if !h.bind(c, &req) {
		return
	}
	tid := tenant(c)
	w := wrap(c, "MEETING", "CREATE", req)
	w.GroupID = &req.EntityID
	h.execute(c, w, http.StatusCreated, func(ctx context.Context) (*command.Result, error) {
		meeting, err := h.meetings.Create(ctx, tid, req)
		if err != nil {
			return nil, err
		}
		return result(meeting.ID, meeting), nil
	})
}

// UpdateAttendance godoc
// @ID           updateMeetingAttendance
// @Summary      Replace a meeting's attendance register
// @Tags         calendars
// @Accept       json
// @Produce      json
// @Param        id path string true "Meeting ID"
// @Param        request body portfolioapp.AttendanceRequest true "Attendance"
// @Success      200 {object} APIResponse[portfolioapp.MeetingResponse]
// @Security     BearerAuth
// @Router       /meetings/{id}/attendance [put]
func (h *CalendarHandler) UpdateAttendance(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req portfolioapp.AttendanceRequest
	if !h.bind(c, &req) {
		return
	}
	tid := tenant(c)
	h.execute(c, wrap(c, "MEETING", "SAVEORUPDATEATTENDANCE", req).WithResource(id), http.StatusOK, func(ctx context.Context) (*command.Result, error) {
		meeting, err := h.meetings.UpdateAttendance(ctx, tid, id, req)
		if err != nil {
			return nil, err
		}
		return result(meeting.ID, meeting), nil
	})
}

// DeleteMeeting godoc
// @ID           deleteMeeting
// @Summary      Delete a meeting
// @Tags         calendars
// @Param        id path string true "Meeting ID"
// @Success      204
// @Security     BearerAuth
// @Router       /meetings/{id} [delete]
func (h *CalendarHandler) DeleteMeeting(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	tid := tenant(c)
	h.execute(c, wrap(c, "MEETING", "DELETE", nil).WithResource(id), http.StatusOK, func(ctx context.Context) (*command.Result, error) {
		return &command.Result{ResourceID: &id}, h.meetings.Delete(ctx, tid, id)
	})
}
