package handler

import (
	"context"
	"net/http"

	orgapp "github.com/fincore/backend/internal/application/organisation"
	"github.com/fincore/backend/internal/domain/command"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OrganisationHandler serves offices, staff, tellers and cashiers, holidays
// and the working week
type OrganisationHandler struct {
	BaseHandler
	offices     *orgapp.OfficeService
	staff       *orgapp.StaffService
	tellers     *orgapp.TellerService
	holidays    *orgapp.HolidayService
	workingDays *orgapp.WorkingDaysService
}

// OrganisationServices groups the services behind OrganisationHandler
type OrganisationServices struct {
	Offices     *orgapp.OfficeService
	Staff       *orgapp.StaffService
	Tellers     *orgapp.TellerService
	Holidays    *orgapp.HolidayService
	WorkingDays *orgapp.WorkingDaysService
}

// NewOrganisationHandler creates a new OrganisationHandler
func NewOrganisationHandler(base BaseHandler, s OrganisationServices) *OrganisationHandler {
	return &OrganisationHandler{
		BaseHandler: base,
		offices:     s.Offices,
		staff:       s.Staff,
		tellers:     s.Tellers,
		holidays:    s.Holidays,
		workingDays: s.WorkingDays,
	}
}

// ListOffices godoc
// @ID           listOffices
// @Summary      List offices
// @Tags         organisation
// @Produce      json
// @Param        search query string false "Name fragment"
// @Param        under query string false "Only offices in this subtree"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]orgapp.OfficeResponse]
// @Security     BearerAuth
// @Router       /offices [get]
func (h *OrganisationHandler) ListOffices(c *gin.Context) {
	var filter orgapp.OfficeListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	offices, total, err := h.offices.List(c.Request.Context(), tenant(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := paging(c)
	h.SuccessWithMeta(c, offices, total, page, pageSize)
}

// GetOffice godoc
// @ID           getOffice
// @Summary      Get an office
// @Tags         organisation
// @Produce      json
// @Param        id path string true "Office ID"
// @Success      200 {object} APIResponse[orgapp.OfficeResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /offices/{id} [get]
func (h *OrganisationHandler) GetOffice(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	office, err := h.offices.GetByID(c.Request.Context(), tenant(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, office)
}

// CreateOffice godoc
// @ID           createOffice
// @Summary      Create an office
// @Description  An office opens no earlier than its parent
// @Tags         organisation
// @Accept       json
// @Produce      json
// @Param        request body orgapp.CreateOfficeRequest true "Office"
// @Success      201 {object} APIResponse[orgapp.OfficeResponse]
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /offices [post]
func (h *OrganisationHandler) CreateOffice(c *gin.Context) {
	var req orgapp.CreateOfficeRequest
	if !h.bind(c, &req) {
		return
	}
	tid := tenant(c)
	h.execute(c, wrap(c, "OFFICE", "CREATE", req), http.StatusCreated, func(ctx context.Context) (*command.Result, error) {
		office, err := h.offices.Create(ctx, tid, req)
		if err != nil {
			return nil, err
		}
		res := result(office.ID, office)
		res.OfficeID = &office.ID
		return res, nil
	})
}

// UpdateOffice godoc
// @ID           updateOffice
// @Summary      Update or move an office
// @Tags         organisation
// @Accept       json
// @Produce      json
// @Param        id path string true "Office ID"
// @Param        request body orgapp.UpdateOfficeRequest true "Office"
// @Success      200 {object} APIResponse[orgapp.OfficeResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /offices/{id} [put]
func (h *OrganisationHandler) UpdateOffice(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req orgapp.UpdateOfficeRequest
	if !h.bind(c, &req) {
		return
	}
	tid := tenant(c)
	w := wrap(c, "OFFICE", "UPDATE", req).WithResource(id)
	w.OfficeID = &id
	h.execute(c, w, http.StatusOK, func(ctx context.Context) (*command.Result, error) {
		office, err := h.offices.Update(ctx, tid, id, req)
		if err != nil {
			return nil, err
		}
		return result(office.ID, office), nil
	})
}

// ListStaff godoc
// @ID           listStaff
// @Summary      List staff
// @Tags         organisation
// @Produce      json
// @Param        office_id query string false "Office"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]orgapp.StaffResponse]
// @Security     BearerAuth
// @Router       /staff [get]
func (h *OrganisationHandler) ListStaff(c *gin.Context) {
	var filter orgapp.StaffListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	staff, total, err := h.staff.List(c.Request.Context(), tenant(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := paging(c)
	h.SuccessWithMeta(c, staff, total, page, pageSize)
}

// GetStaff godoc
// @ID           getStaff
// @Summary      Get a staff member
// @Tags         organisation
// @Produce      json
// @Param        id path string true "Staff ID"
// @Success      200 {object} APIResponse[orgapp.StaffResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /staff/{id} [get]
func (h *OrganisationHandler) GetStaff(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	staff, err := h.staff.GetByID(c.Request.Context(), tenant(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, staff)
}

// CreateStaff godoc
// @ID           createStaff
// @Summary      Create a staff member
// @Tags         organisation
// @Accept       json
// @Produce      json
// @Param        request body orgapp.StaffRequest true "Staff"
// @Success      201 {object} APIResponse[orgapp.StaffResponse]
// @Security     BearerAuth
// @Router       /staff [post]
func (h *OrganisationHandler) CreateStaff(c *gin.Context) {
	var req orgapp.StaffRequest
	if !h.bind(c, &req) {
		return
	}
	tid := tenant(c)
	w := wrap(c, "STAFF", "CREATE", req)
	w.OfficeID = &req.OfficeID
	h.execute(c, w, http.StatusCreated, func(ctx context.Context) (*command.Result, error) {
		staff, err := h.staff.Create(ctx, tid, req)
		if err != nil {
			return nil, err
		}
		return result(staff.ID, staff), nil
	})
}

// UpdateStaff godoc
// @ID           updateStaff
// @Summary      Update a staff member
// @Description  Moving staff between offices is refused while clients, groups or loans are assigned
// @Tags         organisation
// @Accept       json
// @Produce      json
// @Param        id path string true "Staff ID"
// @Param        request body orgapp.StaffRequest true "Staff"
// @Success      200 {object} APIResponse[orgapp.StaffResponse]
// @Security     BearerAuth
// @Router       /staff/{id} [put]
func (h *OrganisationHandler) UpdateStaff(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req orgapp.StaffRequest
	if !h.bind(c, &req) {
		return
	}
	tid := tenant(c)
	h.execute(c, wrap(c, "STAFF", "UPDATE", req).WithResource(id), http.StatusOK, func(ctx context.Context) (*command.Result, error) {
		staff, err := h.staff.Update(ctx, tid, id, req)
		if err != nil {
			return nil, err
		}
		return result(staff.ID, staff), nil
	})
}

// ListTellers godoc
// @ID           listTellers
// @Summary      List tellers
// @Tags         tellers
// @Produce      json
// @Param        office_id query string false "Office"
// @Success      200 {object} APIResponse[[]orgapp.TellerResponse]
// @Security     BearerAuth
// @Router       /tellers [get]
func (h *OrganisationHandler) ListTellers(c *gin.Context) {
	officeID, ok := h.queryID(c, "office_id")
	if !ok {
		return
	}
	tellers, err := h.tellers.List(c.Request.Context(), tenant(c), officeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tellers)
}

// GetTeller godoc
// @ID           getTeller
// @Summary      Get a teller
// @Tags         tellers
// @Produce      json
// @Param        id path string true "Teller ID"
// @Success      200 {object} APIResponse[orgapp.TellerResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tellers/{id} [get]
func (h *OrganisationHandler) GetTeller(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	teller, err := h.tellers.GetByID(c.Request.Context(), tenant(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, teller)
}

// CreateTeller godoc
// @ID           createTeller
// @Summary      Create a teller
// @Tags         tellers
// @Accept       json
// @Produce      json
// @Param        request body orgapp.TellerRequest true "Teller"
// @Success      201 {object} APIResponse[orgapp.TellerResponse]
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tellers [post]
func (h *OrganisationHandler) CreateTeller(c *gin.Context) {
	var req orgapp.TellerRequest
	if !h.bind(c, &req) {
		return
	}
	tid := tenant(c)
	w := wrap(c, "TELLER", "CREATE", req)
	w.OfficeID = &req.OfficeID
	h.execute(c, w, http.StatusCreated, func(ctx context.Context) (*command.Result, error) {
		teller, err := h.tellers.Create(ctx, tid, req)
		if err != nil {
			return nil, err
		}
		return result(teller.ID, teller), nil
	})
}

// UpdateTeller godoc
// @ID           updateTeller
// @Summary      Update a teller
// @Tags         tellers
// @Accept       json
// @Produce      json
// @Param        id path string true "Teller ID"
// @Param        request body orgapp.TellerRequest true "Teller"
// @Success      200 {object} APIResponse[orgapp.TellerResponse]
// @Security     BearerAuth
// @Router       /tellers/{id} [put]
func (h *OrganisationHandler) UpdateTeller(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req orgapp.TellerRequest
	if !h.bind(c, &req) {
		return
	}
	tid := tenant(c)
	h.execute(c, wrap(c, "TELLER", "UPDATE", req).WithResource(id), http.StatusOK, func(ctx context.Context) (*command.Result, error) {
		teller, err := h.tellers.Update(ctx, tid, id, req)
		if err != nil {
			return nil, err
		}
		return result(teller.ID, teller), nil
	})
}

// DeleteTeller godoc
// @ID           deleteTeller
// @Summary      Delete a teller without cashiers
// @Tags         tellers
// @Param        id path string true "Teller ID"
// @Success      204
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tellers/{id} [delete]
func (h *OrganisationHandler) DeleteTeller(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	tid := tenant(c)
	h.execute(c, wrap(c, "TELLER", "DELETE", nil).WithResource(id), http.StatusOK, func(ctx context.Context) (*command.Result, error) {
		return &command.Result{ResourceID: &id}, h.tellers.Delete(ctx, tid, id)
	})
}

// ListCashiers godoc
// @ID           listCashiers
// @Summary      List the cashiers of a teller
// @Tags         tellers
// @Produce      json
// @Param        id path string true "Teller ID"
// @Success      200 {object} APIResponse[[]orgapp.CashierResponse]
// @Security     BearerAuth
// @Router       /tellers/{id}/cashiers [get]
func (h *OrganisationHandler) ListCashiers(c *gin.Context) {
	tellerID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	cashiers, err := h.tellers.ListCashiers(c.Request.Context(), tenant(c), tellerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cashiers)
}

// AllocateCashier godoc
// @ID           allocateCashier
// @Summary      Assign a staff member as cashier of a teller
// @Tags         tellers
// @Accept       json
// @Produce      json
// @Param        id path string true "Teller ID"
// @Param        request body orgapp.CashierRequest true "Cashier"
// @Success      201 {object} APIResponse[orgapp.CashierResponse]
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tellers/{id}/cashiers [post]
func (h *OrganisationHandler) AllocateCashier(c *gin.Context) {
	tellerID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req orgapp.CashierRequest
	if !h.bind(c, &req) {
		return
	}
	tid := tenant(c)
	h.execute(c, wrap(c, "CASHIER", "CREATE", req).WithResource(tellerID), http.StatusCreated, func(ctx context.Context) (*command.Result, error) {
		cashier, err := h.tellers.AllocateCashier(ctx, tid, tellerID, req)
		if err != nil {
			return nil, err
		}
		return result(cashier.ID, cashier), nil
	})
}

// UpdateCashier godoc
// @ID           updateCashier
// @Summary      Update a cashier assignment
// @Tags         tellers
// @Accept       json
// @Produce      json
// @Param        id path string true "Teller ID"
// @Param        cid path string true "Cashier ID"
// @Param        request body orgapp.CashierRequest true "Cashier"
// @Success      200 {object} APIResponse[orgapp.CashierResponse]
// @Security     BearerAuth
// @Router       /tellers/{id}/cashiers/{cid} [put]
func (h *OrganisationHandler) UpdateCashier(c *gin.Context) {
	tellerID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	cashierID, ok := h.pathID(c, "cid")
	if !ok {
		return
	}
	var req orgapp.CashierRequest
	if !h.bind(c, &req) {
		return
	}
	tid := tenant(c)
	h.execute(c, wrap(c, "CASHIER", "UPDATE", req).WithResource(cashierID), http.StatusOK, func(ctx context.Context) (*command.Result, error) {
		cashier, err := h.tellers.UpdateCashier(ctx, tid, tellerID, cashierID, req)
		if err != nil {
			return nil, err
		}
		return result(cashier.ID, cashier), nil
	})
}

// DeleteCashier godoc
// @ID           deleteCashier
// @Summary      Remove a cashier without cash movements
// @Tags         tellers
// @Param        id path string true "Teller ID"
// @Param        cid path string true "Cashier ID"
// @Success      204
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tellers/{id}/cashiers/{cid} [delete]
func (h *OrganisationHandler) DeleteCashier(c *gin.Context) {
	tellerID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	cashierID, ok := h.pathID(c, "cid")
	if !ok {
		return
	}
	tid := tenant(c)
	h.execute(c, wrap(c, "CASHIER", "DELETE", nil).WithResource(cashierID), http.StatusOK, func(ctx context.Context) (*command.Result, error) {
		return &command.Result{ResourceID: &cashierID}, h.tellers.DeleteCashier(ctx, tid, tellerID, cashierID)
	})
}

// AllocateCash godoc
// @ID           allocateCashToCashier
// @Summary      Hand cash from the vault to a cashier
// @Description  Debits the teller's cashier account and credits the vault
// @Tags         tellers
// @Accept       json
// @Produce      json
// @Param        id path string true "Teller ID"
// @Param        cid path string true "Cashier ID"
// @Param        request body orgapp.CashTransactionRequest true "Cash movement"
// @Success      201 {object} APIResponse[orgapp.CashierTransactionResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tellers/{id}/cashiers/{cid}/allocate [post]
func (h *OrganisationHandler) AllocateCash(c *gin.Context) {
	h.moveCash(c, "ALLOCATECASHTOCASHIER", h.tellers.AllocateCash)
}

// SettleCash godoc
// @ID           settleCashFromCashier
// @Summary      Return cash from a cashier to the vault
// @Tags         tellers
// @Accept       json
// @Produce      json
// @Param        id path string true "Teller ID"
// @Param        cid path string true "Cashier ID"
// @Param        request body orgapp.CashTransactionRequest true "Cash movement"
// @Success      201 {object} APIResponse[orgapp.CashierTransactionResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tellers/{id}/cashiers/{cid}/settle [post]
func (h *OrganisationHandler) SettleCash(c *gin.Context) {
	h.moveCash(c, "SETTLECASHFROMCASHIER", h.tellers.SettleCash)
}

type cashMover func(ctx context.Context, tenantID, tellerID, cashierID uuid.UUID, req orgapp.CashTransactionRequest) (*orgapp.CashierTransactionResponse, error)

func (h *OrganisationHandler) moveCash(c *gin.Context, entity string, move cashMover) {
	tellerID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	cashierID, ok := h.pathID(c, "cid")
	if !ok {
		return
	}
	var req orgapp.CashTransactionRequest
	if !h.bind(c, &req) {
		return
	}
	req.CreatedBy = maker(c)
	tid := tenant(c)
	h.execute(c, wrap(c, entity, "CREATE", req).WithResource(cashierID), http.StatusCreated, func(ctx context.Context) (*command.Result, error) {
		txn, err := move(ctx, tid, tellerID, cashierID, req)
		if err != nil {
			return nil, err
		}
		res := result(cashierID, txn)
		res.TransactionID = txn.EntryRef
		return res, nil
	})
}

// CashierSummary godoc
// @ID           cashierSummary
// @Summary      Cash allocated, settled and on hand for a cashier
// @Tags         tellers
// @Produce      json
// @Param        id path string true "Teller ID"
// @Param        cid path string true "Cashier ID"
// @Success      200 {object} APIResponse[orgapp.CashierSummaryResponse]
// @Security     BearerAuth
// @Router       /tellers/{id}/cashiers/{cid}/summary [get]
func (h *OrganisationHandler) CashierSummary(c *gin.Context) {
	tellerID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	cashierID, ok := h.pathID(c, "cid")
	if !ok {
		return
	}
	summary, err := h.tellers.Summary(c.Request.Context(), tenant(c), tellerID, cashierID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// ListHolidays godoc
// @ID           listHolidays
// @Summary      List holidays
// @Tags         organisation
// @Produce      json
// @Param        office_id query string false "Office"
// @Success      200 {object} APIResponse[[]orgapp.HolidayResponse]
// @Security     BearerAuth
// @Router       /holidays [get]
func (h *OrganisationHandler) ListHolidays(c *gin.Context) {
	var filter orgapp.HolidayListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	holidays, err := h.holidays.List(c.Request.Context(), tenant(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, holidays)
}

// GetHoliday godoc
// @ID           getHoliday
// @Summary      Get a holiday
// @Tags         organisation
// @Produce      json
// @Param        id path string true "Holiday ID"
// @Success      200 {object} APIResponse[orgapp.HolidayResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /holidays/{id} [get]
func (h *OrganisationHandler) GetHoliday(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	holiday, err := h.holidays.GetByID(c.Request.Context(), tenant(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, holiday)
}

// CreateHoliday godoc
// @ID           createHoliday
// @Summary      Create a pending holiday
// @Tags         organisation
// @Accept       json
// @Produce      json
// @Param        request body orgapp.HolidayRequest true "Holiday"
// @Success      201 {object} APIResponse[orgapp.HolidayResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /holidays [post]
func (h *OrganisationHandler) CreateHoliday(c *gin.Context) {
	var req orgapp.HolidayRequest
	if !h.bind(c, &req) {
		return
	}
	tid := tenant(c)
	h.execute(c, wrap(c, "HOLIDAY", "CREATE", req), http.StatusCreated, func(ctx context.Context) (*command.Result, error) {
		holiday, err := h.holidays.Create(ctx, tid, req)
		if err != nil {
			return nil, err
		}
		return result(holiday.ID, holiday), nil
	})
}

// UpdateHoliday godoc
// @ID           updateHoliday
// @Summary      Update a pending holiday
// @Tags         organisation
// @Accept       json
// @Produce      json
// @Param        id path string true "Holiday ID"
// @Param        request body orgapp.HolidayRequest true "Holiday"
// @Success      200 {object} APIResponse[orgapp.HolidayResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /holidays/{id} [put]
func (h *OrganisationHandler) UpdateHoliday(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req orgapp.HolidayRequest
	if !h.bind(c, &req) {
		return
	}
	tid := tenant(c)
	h.execute(c, wrap(c, "HOLIDAY", "UPDATE", req).WithResource(id), http.StatusOK, func(ctx context.Context) (*command.Result, error) {
		holiday, err := h.holidays.Update(ctx, tid, id, req)
		if err != nil {
			return nil, err
		}
		return result(holiday.ID, holiday), nil
	})
}

// ActivateHoliday godoc
// @ID           activateHoliday
// @Summary      Activate a holiday
// @Description  Repayments falling on the holiday move to its reschedule date
// @Tags         organisation
// @Produce      json
// @Param        id path string true "Holiday ID"
// @Success      200 {object} APIResponse[orgapp.HolidayResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /holidays/{id}/activate [post]
func (h *OrganisationHandler) ActivateHoliday(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	tid := tenant(c)
	h.execute(c, wrap(c, "HOLIDAY", "ACTIVATE", nil).WithResource(id), http.StatusOK, func(ctx context.Context) (*command.Result, error) {
		holiday, err := h.holidays.Activate(ctx, tid, id)
		if err != nil {
			return nil, err
		}
		return result(holiday.ID, holiday), nil
	})
}

// DeleteHoliday godoc
// @ID           deleteHoliday
// @Summary      Delete a holiday
// @Tags         organisation
// @Param        id path string true "Holiday ID"
// @Success      204
// @Security     BearerAuth
// @Router       /holidays/{id} [delete]
func (h *OrganisationHandler) DeleteHoliday(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	tid := tenant(c)
	h.execute(c, wrap(c, "HOLIDAY", "DELETE", nil).WithResource(id), http.StatusOK, func(ctx context.Context) (*command.Result, error) {
		return &command.Result{ResourceID: &id}, h.holidays.Delete(ctx, tid, id)
	})
}

// GetWorkingDays godoc
// @ID           getWorkingDays
// @Summary      Get the working week
// @Tags         organisation
// @Produce      json
// @Success      200 {object} APIResponse[orgapp.WorkingDaysResponse]
// @Security     BearerAuth
// @Router       /workingdays [get]
func (h *OrganisationHandler) GetWorkingDays(c *gin.Context) {
	days, err := h.workingDays.Get(c.Request.Context(), tenant(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, days)
}

// UpdateWorkingDays godoc
// @ID           updateWorkingDays
// @Summary      Update the working week
// @Tags         organisation
// @Accept       json
// @Produce      json
// @Param        request body orgapp.WorkingDaysRequest true "Working days"
// @Success      200 {object} APIResponse[orgapp.WorkingDaysResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /workingdays [put]
func (h *OrganisationHandler) UpdateWorkingDays(c *gin.Context) {
	var req orgapp.WorkingDaysRequest
	if !h.bind(c, &req) {
		return
	}
	tid := tenant(c)
	h.execute(c, wrap(c, "WORKINGDAYS", "UPDATE", req), http.StatusOK, func(ctx context.Context) (*command.Result, error) {
		days, err := h.workingDays.Update(ctx, tid, req)
		if err != nil {
			return nil, err
		}
		return &command.Result{Body: days}, nil
	})
}
