package handler

import (
	"context"
	"net/http"

	portfolioapp "github.com/fincore/backend/internal/application/portfolio"
	"github.com/fincore/backend/internal/domain/command"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LoanHandler serves loan products, loans and their transactions, and the
// collection sheet
type LoanHandler struct {
	BaseHandler
	products    *portfolioapp.LoanProductService
	loans       *portfolioapp.LoanService
	collections *portfolioapp.CollectionSheetService
}

// NewLoanHandler creates a new LoanHandler
func NewLoanHandler(base BaseHandler, products *portfolioapp.LoanProductService, loans *portfolioapp.LoanService, collections *portfolioapp.CollectionSheetService) *LoanHandler {
	return &LoanHandler{BaseHandler: base, products: products, loans: loans, collections: collections}
}

// ListLoanProducts godoc
// @ID           listLoanProducts
// @Summary      List loan products
// @Tags         loans
// @Produce      json
// @Param        search query string false "Name fragment"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]portfolioapp.LoanProductResponse]
// @Security     BearerAuth
// @Router       /loanproducts [get]
func (h *LoanHandler) ListLoanProducts(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}
	products, total, err := h.products.List(c.Request.Context(), tenant(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, products, total, filter.Page, filter.PageSize)
}

// GetLoanProduct godoc
// @ID           getLoanProduct
// @Summary      Get a loan product
// @Tags         loans
// @Produce      json
// @Param        id path string true "Loan product ID"
// @Success      200 {object} APIResponse[portfolioapp.LoanProductResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /loanproducts/{id} [get]
func (h *LoanHandler) GetLoanProduct(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	product, err := h.products.GetByID(c.Request.Context(), tenant(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// CreateLoanProduct godoc
// @ID           createLoanProduct
// @Summary      Create a loan product
// @Tags         loans
// @Accept       json
// @Produce      json
// @Param        request body portfolioapp.LoanProductRequest true "Loan product"
// @Success      201 {object} APIResponse[portfolioapp.LoanProductResponse]
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /loanproducts [post]
func (h *LoanHandler) CreateLoanProduct(c *gin.Context) {
	var req portfolioapp.LoanProductRequest
	if !h.bind(c, &req) {
		return
	}
	tid := tenant(c)
	h.execute(c, wrap(c, "LOANPRODUCT", "CREATE", req), http.StatusCreated, func(ctx context.Context) (*command.Result, error) {
		product, err := h.products.Create(ctx, tid, req)
		if err != nil {
			return nil, err
		}
		return result(product.ID, product), nil
	})
}

// UpdateLoanProduct godoc
// @ID           updateLoanProduct
// @Summary      Update a loan product
// @Description  Existing loans keep the terms they were created with
// @Tags         loans
// @Accept       json
// @Produce      json
// @Param        id path string true "Loan product ID"
// @Param        request body portfolioapp.LoanProductRequest true "Loan product"
// @Success      200 {object} APIResponse[portfolioapp.LoanProductResponse]
// @Security     BearerAuth
// @Router       /loanproducts/{id} [put]
func (h *LoanHandler) UpdateLoanProduct(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req portfolioapp.LoanProductRequest
	if !h.bind(c, &req) {
		return
	}
	tid := tenant(c)
	h.execute(c, wrap(c, "LOANPRODUCT", "UPDATE", req).WithResource(id), http.StatusOK, func(ctx context.Context) (*command.Result, error) {
		product, err := h.products.Update(ctx, tid, id, req)
		if err != nil {
			return nil, err
		}
		return result(product.ID, product), nil
	})
}

// CalculateSchedule godoc
// @ID           calculateLoanSchedule
// @Summary      Preview the repayment schedule of a loan application
// @Tags         loans
// @Accept       json
// @Produce      json
// @Param        request body portfolioapp.LoanApplicationRequest true "Application"
// @Success      200 {object} APIResponse[portfolioapp.ScheduleResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /loans/schedule/calculate [post]
func (h *LoanHandler) CalculateSchedule(c *gin.Context) {
	var req portfolioapp.LoanApplicationRequest
	if !h.bind(c, &req) {
		return
	}
	schedule, err := h.loans.CalculateSchedule(c.Request.Context(), tenant(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, schedule)
}

// ListLoans godoc
// @ID           listLoans
// @Summary      List loans
// @Tags         loans
// @Produce      json
// @Param        search query string false "Account or external id"
// @Param        office_id query string false "Office"
// @Param        client_id query string false "Client"
// @Param        group_id query string false "Group"
// @Param        product_id query string false "Loan product"
// @Param        status query string false "Status"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]portfolioapp.LoanResponse]
// @Security     BearerAuth
// @Router       /loans [get]
func (h *LoanHandler) ListLoans(c *gin.Context) {
	var filter portfolioapp.LoanListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	loans, total, err := h.loans.List(c.Request.Context(), tenant(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := paging(c)
	h.SuccessWithMeta(c, loans, total, page, pageSize)
}

// GetLoan godoc
// @ID           getLoan
// @Summary      Get a loan with its schedule and transactions
// @Tags         loans
// @Produce      json
// @Param        id path string true "Loan ID"
// @Success      200 {object} APIResponse[portfolioapp.LoanResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /loans/{id} [get]
func (h *LoanHandler) GetLoan(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	loan, err := h.loans.GetByID(c.Request.Context(), tenant(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, loan)
}

// SchedulePDF godoc
// @ID           loanSchedulePDF
// @Summary      Repayment schedule of a loan as PDF
// @Tags         loans
// @Produce      application/pdf
// @Param        id path string true "Loan ID"
// @Success      200 {file} binary
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /loans/{id}/schedule.pdf [get]
func (h *LoanHandler) SchedulePDF(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	pdf, name, err := h.loans.SchedulePDF(c.Request.Context(), tenant(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	sendPDF(c, pdf, name)
}

// SubmitLoan godoc
// @ID           submitLoan
// @Summary      Submit a loan application
// @Tags         loans
// @Accept       json
// @Produce      json
// @Param        request body portfolioapp.LoanApplicationRequest true "Application"
// @Success      201 {object} APIResponse[portfolioapp.LoanResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /loans [post]
func (h *LoanHandler) SubmitLoan(c *gin.Context) {
	var req portfolioapp.LoanApplicationRequest
	if !h.bind(c, &req) {
		return
	}
	tid := tenant(c)
	w := wrap(c, "LOAN", "CREATE", req)
	w.ClientID, w.GroupID = req.ClientID, req.GroupID
	h.execute(c, w, http.StatusCreated, func(ctx context.Context) (*command.Result, error) {
		loan, err := h.loans.Submit(ctx, tid, req)
		if err != nil {
			return nil, err
		}
		return loanResult(loan), nil
	})
}

// ModifyLoan godoc
// @ID           modifyLoan
// @Summary      Modify a submitted loan application
// @Tags         loans
// @Accept       json
// @Produce      json
// @Param        id path string true "Loan ID"
// @Param        request body portfolioapp.LoanApplicationRequest true "Application"
// @Success      200 {object} APIResponse[portfolioapp.LoanResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /loans/{id} [put]
func (h *LoanHandler) ModifyLoan(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req portfolioapp.LoanApplicationRequest
	if !h.bind(c, &req) {
		return
	}
	tid := tenant(c)
	h.execute(c, loanWrap(c, "UPDATE", req, id), http.StatusOK, func(ctx context.Context) (*command.Result, error) {
		loan, err := h.loans.Modify(ctx, tid, id, req)
		if err != nil {
			return nil, err
		}
		return loanResult(loan), nil
	})
}

type loanStep func(ctx context.Context, tenantID, id uuid.UUID, req portfolioapp.LoanActionRequest) (*portfolioapp.LoanResponse, error)

// LoanAction godoc
// @ID           loanAction
// @Summary      Move a loan through its lifecycle
// @Description  Commands: approve, undoapproval, reject, withdrawnByApplicant, disburse, undodisbursal, writeoff
// @Tags         loans
// @Accept       json
// @Produce      json
// @Param        id path string true "Loan ID"
// @Param        command query string true "Command" Enums(approve, undoapproval, reject, withdrawnByApplicant, disburse, undodisbursal, writeoff)
// @Param        request body portfolioapp.LoanActionRequest false "Date and note"
// @Success      200 {object} APIResponse[portfolioapp.LoanResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /loans/{id} [post]
func (h *LoanHandler) LoanAction(c *gin.Context) {
	undoApproval := func(ctx context.Context, tenantID, id uuid.UUID, _ portfolioapp.LoanActionRequest) (*portfolioapp.LoanResponse, error) {
		return h.loans.UndoApproval(ctx, tenantID, id)
	}
	steps := map[string]struct {
		action string
		fn     loanStep
	}{
		"approve":              {"APPROVE", h.loans.Approve},
		"undoapproval":         {"APPROVALUNDO", undoApproval},
		"reject":               {"REJECT", h.loans.Reject},
		"withdrawnByApplicant": {"WITHDRAW", h.loans.Withdraw},
		"disburse":             {"DISBURSE", h.loans.Disburse},
		"undodisbursal":        {"DISBURSALUNDO", h.loans.UndoDisbursal},
	}

	cmd := c.Query("command")
	step, found := steps[cmd]
	if !found && cmd != "writeoff" {
		h.BadRequest(c, "Unknown loan command "+cmd)
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req portfolioapp.LoanActionRequest
	if !h.bindOptional(c, &req) {
		return
	}
	req.CreatedBy = maker(c)
	tid := tenant(c)

	if cmd == "writeoff" {
		h.execute(c, loanWrap(c, "WRITEOFF", req, id), http.StatusOK, func(ctx context.Context) (*command.Result, error) {
			txn, err := h.loans.WriteOff(ctx, tid, id, req)
			if err != nil {
				return nil, err
			}
			return loanTxnResult(id, txn), nil
		})
		return
	}
	h.execute(c, loanWrap(c, step.action, req, id), http.StatusOK, func(ctx context.Context) (*command.Result, error) {
		loan, err := step.fn(ctx, tid, id, req)
		if err != nil {
			return nil, err
		}
		return loanResult(loan), nil
	})
}

// LoanTransaction godoc
// @ID           loanTransaction
// @Summary      Record a repayment or interest waiver
// @Tags         loans
// @Accept       json
// @Produce      json
// @Param        id path string true "Loan ID"
// @Param        command query string true "Command" Enums(repayment, waiveinterest)
// @Param        request body portfolioapp.LoanTransactionRequest true "Transaction"
// @Success      201 {object} APIResponse[portfolioapp.LoanTransactionResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /loans/{id}/transactions [post]
func (h *LoanHandler) LoanTransaction(c *gin.Context) {
	var (
		action string
		fn     func(context.Context, uuid.UUID, uuid.UUID, portfolioapp.LoanTransactionRequest) (*portfolioapp.LoanTransactionResponse, error)
	)
	switch cmd := c.Query("command"); cmd {
	case "repayment":
		action, fn = "REPAYMENT", h.loans.MakeRepayment
	case "waiveinterest":
		action, fn = "WAIVEINTERESTPORTION", h.loans.WaiveInterest
	default:
		h.BadRequest(c, "Unknown loan transaction command "+cmd)
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req portfolioapp.LoanTransactionRequest
	if !h.bind(c, &req) {
		return
	}
	req.CreatedBy = maker(c)
	tid := tenant(c)
	h.execute(c, loanWrap(c, action, req, id), http.StatusCreated, func(ctx context.Context) (*command.Result, error) {
		txn, err := fn(ctx, tid, id, req)
		if err != nil {
			return nil, err
		}
		return loanTxnResult(id, txn), nil
	})
}

// ReverseLoanTransaction godoc
// @ID           reverseLoanTransaction
// @Summary      Reverse a loan transaction
// @Description  Later transactions are replayed against the restored balances
// @Tags         loans
// @Produce      json
// @Param        id path string true "Loan ID"
// @Param        txnId path string true "Transaction ID"
// @Success      200 {object} APIResponse[portfolioapp.LoanTransactionResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /loans/{id}/transactions/{txnId}/reverse [post]
func (h *LoanHandler) ReverseLoanTransaction(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	txnID, ok := h.pathID(c, "txnId")
	if !ok {
		return
	}
	createdBy := maker(c)
	tid := tenant(c)
	h.execute(c, loanWrap(c, "ADJUST", gin.H{"transaction_id": txnID}, id), http.StatusOK, func(ctx context.Context) (*command.Result, error) {
		txn, err := h.loans.ReverseTransaction(ctx, tid, id, txnID, createdBy)
		if err != nil {
			return nil, err
		}
		return loanTxnResult(id, txn), nil
	})
}

// GenerateCollectionSheet godoc
// @ID           generateCollectionSheet
// @Summary      Dues of every active loan in a center or group on a meeting date
// @Tags         collectionsheet
// @Accept       json
// @Produce      json
// @Param        request body portfolioapp.CollectionSheetRequest true "Sheet"
// @Success      200 {object} APIResponse[portfolioapp.CollectionSheetResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /collectionsheet [post]
func (h *LoanHandler) GenerateCollectionSheet(c *gin.Context) {
	var req portfolioapp.CollectionSheetRequest
	if !h.bind(c, &req) {
		return
	}
	sheet, err := h.collections.Generate(c.Request.Context(), tenant(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sheet)
}

// SaveCollectionSheet godoc
// @ID           saveCollectionSheet
// @Summary      Record a meeting with its attendance and repayments
// @Description  Every repayment is recorded or none is
// @Tags         collectionsheet
// @Accept       json
// @Produce      json
// @Param        request body portfolioapp.SaveCollectionSheetRequest true "Sheet"
// @Success      201 {object} APIResponse[portfolioapp.SaveCollectionSheetResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /collectionsheet/save [post]
func (h *LoanHandler) SaveCollectionSheet(c *gin.Context) {
	var req portfolioapp.SaveCollectionSheetRequest
	if !h.bind(c, &req) {
		return
	}
	req.CreatedBy = maker(c)
	tid := tenant(c)
	w := wrap(c, "COLLECTIONSHEET", "SAVE", req)
	w.GroupID = &req.EntityID
	h.execute(c, w, http.StatusCreated, func(ctx context.Context) (*command.Result, error) {
		saved, err := h.collections.Save(ctx, tid, req)
		if err != nil {
			return nil, err
		}
		res := result(saved.MeetingID, saved)
		res.GroupID = &req.EntityID
		return res, nil
	})
}

// CollectionSheetPDF godoc
// @ID           collectionSheetPDF
// @Summary      Printable collection sheet
// @Tags         collectionsheet
// @Produce      application/pdf
// @Param        entity_type query string true "Entity type" Enums(CENTER, GROUP)
// @Param        entity_id query string true "Entity ID"
// @Param        meeting_date query string true "Meeting date (YYYY-MM-DD)"
// @Success      200 {file} binary
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /collectionsheet.pdf [get]
func (h *LoanHandler) CollectionSheetPDF(c *gin.Context) {
	var req portfolioapp.CollectionSheetRequest
	if !h.bindQuery(c, &req) {
		return
	}
	pdf, name, err := h.collections.PDF(c.Request.Context(), tenant(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	sendPDF(c, pdf, name)
}

func sendPDF(c *gin.Context, pdf []byte, name string) {
	c.Header("Content-Disposition", `inline; filename="`+name+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func loanWrap(c *gin.Context, action string, payload any, id uuid.UUID) command.Wrapper {
	w := wrap(c, "LOAN", action, payload).WithResource(id)
	w.LoanID = &id
	return w
}

func loanResult(loan *portfolioapp.LoanResponse) *command.Result {
	res := result(loan.ID, loan)
	res.LoanID = &loan.ID
	res.OfficeID = &loan.OfficeID
	res.ClientID = loan.ClientID
	res.GroupID = loan.GroupID
	return res
}

func loanTxnResult(loanID uuid.UUID, txn *portfolioapp.LoanTransactionResponse) *command.Result {
	res := result(txn.ID, txn)
	res.LoanID = &loanID
	res.TransactionID = txn.JournalTransactionID
	return res
}
