package handler

import (
	"context"
	"net/http"

	accountingapp "github.com/fincore/backend/internal/application/accounting"
	"github.com/fincore/backend/internal/domain/command"
	"github.com/gin-gonic/gin"
)

// AccountingHandler serves the chart of accounts, journal entries, closures,
// provisioning and accrual endpoints
type AccountingHandler struct {
	BaseHandler
	glAccounts   *accountingapp.GLAccountService
	journals     *accountingapp.JournalEntryService
	rules        *accountingapp.AccountingRuleService
	closures     *accountingapp.GLClosureService
	provisioning *accountingapp.ProvisioningService
	accruals     *accountingapp.AccrualService
}

// AccountingServices groups the services behind AccountingHandler
type AccountingServices struct {
	GLAccounts   *accountingapp.GLAccountService
	Journals     *accountingapp.JournalEntryService
	Rules        *accountingapp.AccountingRuleService
	Closures     *accountingapp.GLClosureService
	Provisioning *accountingapp.ProvisioningService
	Accruals     *accountingapp.AccrualService
}

// NewAccountingHandler creates a new AccountingHandler
func NewAccountingHandler(base BaseHandler, s AccountingServices) *AccountingHandler {
	return &AccountingHandler{
		BaseHandler:  base,
		glAccounts:   s.GLAccounts,
		journals:     s.Journals,
		rules:        s.Rules,
		closures:     s.Closures,
		provisioning: s.Provisioning,
		accruals:     s.Accruals,
	}
}

// ListGLAccounts godoc
// @ID           listGLAccounts
// @Summary      List GL accounts
// @Tags         accounting
// @Produce      json
// @Param        search query string false "Name or code fragment"
// @Param        type query string false "ASSET, LIABILITY, EQUITY, INCOME or EXPENSE"
// @Param        usage query string false "DETAIL or HEADER"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]accountingapp.GLAccountResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /glaccounts [get]
func (h *AccountingHandler) ListGLAccounts(c *gin.Context) {
	var filter accountingapp.GLAccountListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	accounts, total, err := h.glAccounts.List(c.Request.Context(), tenant(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := paging(c)
	h.SuccessWithMeta(c, accounts, total, page, pageSize)
}

// GLAccountTree godoc
// @ID           getGLAccountTree
// @Summary      Chart of accounts as a tree
// @Tags         accounting
// @Produce      json
// @Success      200 {object} APIResponse[[]accountingapp.GLAccountResponse]
// @Security     BearerAuth
// @Router       /glaccounts/tree [get]
func (h *AccountingHandler) GLAccountTree(c *gin.Context) {
	tree, err := h.glAccounts.Tree(c.Request.Context(), tenant(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tree)
}

// GetGLAccount godoc
// @ID           getGLAccount
// @Summary      Get a GL account
// @Tags         accounting
// @Produce      json
// @Param        id path string true "GL account ID"
// @Success      200 {object} APIResponse[accountingapp.GLAccountResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /glaccounts/{id} [get]
func (h *AccountingHandler) GetGLAccount(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	account, err := h.glAccounts.GetByID(c.Request.Context(), tenant(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}

// CreateGLAccount godoc
// @ID           createGLAccount
// @Summary      Create a GL account
// @Description  Header accounts group detail accounts; only detail accounts take postings
// @Tags         accounting
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Client key for safe retries"
// @Param        request body accountingapp.GLAccountRequest true "GL account"
// @Success      201 {object} APIResponse[accountingapp.GLAccountResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /glaccounts [post]
func (h *AccountingHandler) CreateGLAccount(c *gin.Context) {
	var req accountingapp.GLAccountRequest
	if !h.bind(c, &req) {
		return
	}
	tid := tenant(c)
	h.execute(c, wrap(c, "GLACCOUNT", "CREATE", req), http.StatusCreated, func(ctx context.Context) (*command.Result, error) {
		account, err := h.glAccounts.Create(ctx, tid, req)
		if err != nil {
			return nil, err
		}
		return result(account.ID, account), nil
	})
}

// UpdateGLAccount godoc
// @ID           updateGLAccount
// @Summary      Update a GL account
// @Tags         accounting
// @Accept       json
// @Produce      json
// @Param        id path string true "GL account ID"
// @Param        request body accountingapp.GLAccountRequest true "GL account"
// @Success      200 {object} APIResponse[accountingapp.GLAccountResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /glaccounts/{id} [put]
func (h *AccountingHandler) UpdateGLAccount(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req accountingapp.GLAccountRequest
	if !h.bind(c, &req) {
		return
	}
	tid := tenant(c)
	h.execute(c, wrap(c, "GLACCOUNT", "UPDATE", req).WithResource(id), http.StatusOK, func(ctx context.Context) (*command.Result, error) {
		account, err := h.glAccounts.Update(ctx, tid, id, req)
		if err != nil {
			return nil, err
		}
		return result(account.ID, account), nil
	})
}

// DeleteGLAccount godoc
// @ID           deleteGLAccount
// @Summary      Delete a GL account
// @Description  Accounts with children or journal entries cannot be deleted
// @Tags         accounting
// @Param        id path string true "GL account ID"
// @Success      204
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /glaccounts/{id} [delete]
func (h *AccountingHandler) DeleteGLAccount(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	tid := tenant(c)
	h.execute(c, wrap(c, "GLACCOUNT", "DELETE", nil).WithResource(id), http.StatusOK, func(ctx context.Context) (*command.Result, error) {
		return &command.Result{ResourceID: &id}, h.glAccounts.Delete(ctx, tid, id)
	})
}

// ListJournalEntries godoc
// @ID           listJournalEntries
// @Summary      Search journal entry lines
// @Tags         accounting
// @Produce      json
// @Param        gl_account_id query string false "GL account"
// @Param        office_id query string false "Office"
// @Param        from_date query string false "From date (YYYY-MM-DD)"
// @Param        to_date query string false "To date (YYYY-MM-DD)"
// @Param        transaction_id query string false "Transaction"
// @Param        manual_only query bool false "Only manual entries"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]accountingapp.JournalEntryResponse]
// @Security     BearerAuth
// @Router       /journalentries [get]
func (h *AccountingHandler) ListJournalEntries(c *gin.Context) {
	var filter accountingapp.JournalEntryListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	entries, total, err := h.journals.List(c.Request.Context(), tenant(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := paging(c)
	h.SuccessWithMeta(c, entries, total, page, pageSize)
}

// GetJournalTransaction godoc
// @ID           getJournalTransaction
// @Summary      Get all lines of a journal transaction
// @Tags         accounting
// @Produce      json
// @Param        transactionId path string true "Transaction ID"
// @Success      200 {object} APIResponse[accountingapp.JournalTransactionResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /journalentries/{transactionId} [get]
func (h *AccountingHandler) GetJournalTransaction(c *gin.Context) {
	txn, err := h.journals.GetTransaction(c.Request.Context(), tenant(c), c.Param("transactionId"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, txn)
}

// CreateJournalEntry godoc
// @ID           createJournalEntry
// @Summary      Post a manual journal entry
// @Description  Debits must equal credits. An accounting rule with an amount can stand in for explicit lines.
// @Tags         accounting
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Client key for safe retries"
// @Param        request body accountingapp.CreateJournalEntryRequest true "Journal entry"
// @Success      201 {object} APIResponse[accountingapp.JournalTransactionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /journalentries [post]
func (h *AccountingHandler) CreateJournalEntry(c *gin.Context) {
	var req accountingapp.CreateJournalEntryRequest
	if !h.bind(c, &req) {
		return
	}
	req.CreatedBy = maker(c)
	tid := tenant(c)
	w := wrap(c, "JOURNALENTRY", "CREATE", req)
	w.OfficeID = &req.OfficeID
	h.execute(c, w, http.StatusCreated, func(ctx context.Context) (*command.Result, error) {
		txn, err := h.journals.Create(ctx, tid, req)
		if err != nil {
			return nil, err
		}
		return &command.Result{OfficeID: &req.OfficeID, TransactionID: txn.TransactionID, Body: txn}, nil
	})
}

// ReverseJournalEntry godoc
// @ID           reverseJournalEntry
// @Summary      Reverse a journal transaction
// @Description  Posts mirror lines and flags the original lines as reversed
// @Tags         accounting
// @Accept       json
// @Produce      json
// @Param        transactionId path string true "Transaction ID"
// @Param        request body accountingapp.ReverseJournalEntryRequest false "Reversal"
// @Success      200 {object} APIResponse[accountingapp.JournalTransactionResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /journalentries/{transactionId}/reverse [post]
func (h *AccountingHandler) ReverseJournalEntry(c *gin.Context) {
	var req accountingapp.ReverseJournalEntryRequest
	if !h.bindOptional(c, &req) {
		return
	}
	req.CreatedBy = maker(c)
	tid, txnID := tenant(c), c.Param("transactionId")
	h.execute(c, wrap(c, "JOURNALENTRY", "REVERSE", req), http.StatusOK, func(ctx context.Context) (*command.Result, error) {
		txn, err := h.journals.Reverse(ctx, tid, txnID, req)
		if err != nil {
			return nil, err
		}
		return &command.Result{TransactionID: txn.TransactionID, Body: txn}, nil
	})
}

// TrialBalance godoc
// @ID           getTrialBalance
// @Summary      Trial balance as of a date
// @Tags         accounting
// @Produce      json
// @Param        as_of query string false "Date (YYYY-MM-DD), today by default"
// @Param        office_id query string false "Limit to one office and its branches"
// @Success      200 {object} APIResponse[accountingapp.TrialBalanceResponse]
// @Security     BearerAuth
// @Router       /trialbalance [get]
func (h *AccountingHandler) TrialBalance(c *gin.Context) {
	officeID, ok := h.queryID(c, "office_id")
	if !ok {
		return
	}
	tb, err := h.journals.TrialBalance(c.Request.Context(), tenant(c), c.Query("as_of"), officeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tb)
}

// ListAccountingRules godoc
// @ID           listAccountingRules
// @Summary      List accounting rules
// @Tags         accounting
// @Produce      json
// @Success      200 {object} APIResponse[[]accountingapp.AccountingRuleResponse]
// @Security     BearerAuth
// @Router       /accountingrules [get]
func (h *AccountingHandler) ListAccountingRules(c *gin.Context) {
	rules, err := h.rules.List(c.Request.Context(), tenant(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rules)
}

// GetAccountingRule godoc
// @ID           getAccountingRule
// @Summary      Get an accounting rule
// @Tags         accounting
// @Produce      json
// @Param        id path string true "Rule ID"
// @Success      200 {object} APIResponse[accountingapp.AccountingRuleResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /accountingrules/{id} [get]
func (h *AccountingHandler) GetAccountingRule(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	rule, err := h.rules.GetByID(c.Request.Context(), tenant(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rule)
}

// CreateAccountingRule godoc
// @ID           createAccountingRule
// @Summary      Create an accounting rule
// @Tags         accounting
// @Accept       json
// @Produce      json
// @Param        request body accountingapp.AccountingRuleRequest true "Accounting rule"
// @Success      201 {object} APIResponse[accountingapp.AccountingRuleResponse]
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /accountingrules [post]
func (h *AccountingHandler) CreateAccountingRule(c *gin.Context) {
	var req accountingapp.AccountingRuleRequest
	if !h.bind(c, &req) {
		return
	}
	tid := tenant(c)
	h.execute(c, wrap(c, "ACCOUNTINGRULE", "CREATE", req), http.StatusCreated, func(ctx context.Context) (*command.Result, error) {
		rule, err := h.rules.Create(ctx, tid, req)
		if err != nil {
			return nil, err
		}
		return result(rule.ID, rule), nil
	})
}

// UpdateAccountingRule godoc
// @ID           updateAccountingRule
// @Summary      Update an accounting rule
// @Tags         accounting
// @Accept       json
// @Produce      json
// @Param        id path string true "Rule ID"
// @Param        request body accountingapp.AccountingRuleRequest true "Accounting rule"
// @Success      200 {object} APIResponse[accountingapp.AccountingRuleResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /accountingrules/{id} [put]
func (h *AccountingHandler) UpdateAccountingRule(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req accountingapp.AccountingRuleRequest
	if !h.bind(c, &req) {
		return
	}
	tid := tenant(c)
	h.execute(c, wrap(c, "ACCOUNTINGRULE", "UPDATE", req).WithResource(id), http.StatusOK, func(ctx context.Context) (*command.Result, error) {
		rule, err := h.rules.Update(ctx, tid, id, req)
		if err != nil {
			return nil, err
		}
		return result(rule.ID, rule), nil
	})
}

// DeleteAccountingRule godoc
// @ID           deleteAccountingRule
// @Summary      Delete an accounting rule
// @Tags         accounting
// @Param        id path string true "Rule ID"
// @Success      204
// @Security     BearerAuth
// @Router       /accountingrules/{id} [delete]
func (h *AccountingHandler) DeleteAccountingRule(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	tid := tenant(c)
	h.execute(c, wrap(c, "ACCOUNTINGRULE", "DELETE", nil).WithResource(id), http.StatusOK, func(ctx context.Context) (*command.Result, error) {
		return &command.Result{ResourceID: &id}, h.rules.Delete(ctx, tid, id)
	})
}

// ListGLClosures godoc
// @ID           listGLClosures
// @Summary      List accounting closures
// @Tags         accounting
// @Produce      json
// @Param        office_id query string false "Office"
// @Success      200 {object} APIResponse[[]accountingapp.GLClosureResponse]
// @Security     BearerAuth
// @Router       /glclosures [get]
func (h *AccountingHandler) ListGLClosures(c *gin.Context) {
	officeID, ok := h.queryID(c, "office_id")
	if !ok {
		return
	}
	closures, err := h.closures.List(c.Request.Context(), tenant(c), officeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, closures)
}

// GetGLClosure godoc
// @ID           getGLClosure
// @Summary      Get an accounting closure
// @Tags         accounting
// @Produce      json
// @Param        id path string true "Closure ID"
// @Success      200 {object} APIResponse[accountingapp.GLClosureResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /glclosures/{id} [get]
func (h *AccountingHandler) GetGLClosure(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	closure, err := h.closures.GetByID(c.Request.Context(), tenant(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, closure)
}

// CreateGLClosure godoc
// @ID           createGLClosure
// @Summary      Close the books of an office up to a date
// @Tags         accounting
// @Accept       json
// @Produce      json
// @Param        request body accountingapp.CreateGLClosureRequest true "Closure"
// @Success      201 {object} APIResponse[accountingapp.GLClosureResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /glclosures [post]
func (h *AccountingHandler) CreateGLClosure(c *gin.Context) {
	var req accountingapp.CreateGLClosureRequest
	if !h.bind(c, &req) {
		return
	}
	tid := tenant(c)
	w := wrap(c, "GLCLOSURE", "CREATE", req)
	w.OfficeID = &req.OfficeID
	h.execute(c, w, http.StatusCreated, func(ctx context.Context) (*command.Result, error) {
		closure, err := h.closures.Create(ctx, tid, req)
		if err != nil {
			return nil, err
		}
		return result(closure.ID, closure), nil
	})
}

// UpdateGLClosure godoc
// @ID           updateGLClosure
// @Summary      Update closure comments
// @Tags         accounting
// @Accept       json
// @Produce      json
// @Param        id path string true "Closure ID"
// @Param        request body accountingapp.UpdateGLClosureRequest true "Closure"
// @Success      200 {object} APIResponse[accountingapp.GLClosureResponse]
// @Security     BearerAuth
// @Router       /glclosures/{id} [put]
func (h *AccountingHandler) UpdateGLClosure(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req accountingapp.UpdateGLClosureRequest
	if !h.bind(c, &req) {
		return
	}
	tid := tenant(c)
	h.execute(c, wrap(c, "GLCLOSURE", "UPDATE", req).WithResource(id), http.StatusOK, func(ctx context.Context) (*command.Result, error) {
		closure, err := h.closures.Update(ctx, tid, id, req)
		if err != nil {
			return nil, err
		}
		return result(closure.ID, closure), nil
	})
}

// DeleteGLClosure godoc
// @ID           deleteGLClosure
// @Summary      Delete the latest closure of an office
// @Tags         accounting
// @Param        id path string true "Closure ID"
// @Success      204
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /glclosures/{id} [delete]
func (h *AccountingHandler) DeleteGLClosure(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	tid := tenant(c)
	h.execute(c, wrap(c, "GLCLOSURE", "DELETE", nil).WithResource(id), http.StatusOK, func(ctx context.Context) (*command.Result, error) {
		return &command.Result{ResourceID: &id}, h.closures.Delete(ctx, tid, id)
	})
}

// ListProvisioningCategories godoc
// @ID           listProvisioningCategories
// @Summary      List provisioning categories
// @Tags         provisioning
// @Produce      json
// @Success      200 {object} APIResponse[[]accountingapp.ProvisioningCategoryResponse]
// @Security     BearerAuth
// @Router       /provisioningcategory [get]
func (h *AccountingHandler) ListProvisioningCategories(c *gin.Context) {
	categories, err := h.provisioning.ListCategories(c.Request.Context(), tenant(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, categories)
}

// CreateProvisioningCategory godoc
// @ID           createProvisioningCategory
// @Summary      Create a provisioning category
// @Tags         provisioning
// @Accept       json
// @Produce      json
// @Param        request body accountingapp.ProvisioningCategoryRequest true "Category"
// @Success      201 {object} APIResponse[accountingapp.ProvisioningCategoryResponse]
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /provisioningcategory [post]
func (h *AccountingHandler) CreateProvisioningCategory(c *gin.Context) {
	var req accountingapp.ProvisioningCategoryRequest
	if !h.bind(c, &req) {
		return
	}
	tid := tenant(c)
	h.execute(c, wrap(c, "PROVISIONCATEGORY", "CREATE", req), http.StatusCreated, func(ctx context.Context) (*command.Result, error) {
		category, err := h.provisioning.CreateCategory(ctx, tid, req)
		if err != nil {
			return nil, err
		}
		return result(category.ID, category), nil
	})
}

// UpdateProvisioningCategory godoc
// @ID           updateProvisioningCategory
// @Summary      Update a provisioning category
// @Tags         provisioning
// @Accept       json
// @Produce      json
// @Param        id path string true "Category ID"
// @Param        request body accountingapp.ProvisioningCategoryRequest true "Category"
// @Success      200 {object} APIResponse[accountingapp.ProvisioningCategoryResponse]
// @Security     BearerAuth
// @Router       /provisioningcategory/{id} [put]
func (h *AccountingHandler) UpdateProvisioningCategory(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req accountingapp.ProvisioningCategoryRequest
	if !h.bind(c, &req) {
		return
	}
	tid := tenant(c)
	h.execute(c, wrap(c, "PROVISIONCATEGORY", "UPDATE", req).WithResource(id), http.StatusOK, func(ctx context.Context) (*command.Result, error) {
		category, err := h.provisioning.UpdateCategory(ctx, tid, id, req)
		if err != nil {
			return nil, err
		}
		return result(category.ID, category), nil
	})
}

// DeleteProvisioningCategory godoc
// @ID           deleteProvisioningCategory
// @Summary      Delete an unused provisioning category
// @Tags         provisioning
// @Param        id path string true "Category ID"
// @Success      204
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /provisioningcategory/{id} [delete]
func (h *AccountingHandler) DeleteProvisioningCategory(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	tid := tenant(c)
	h.execute(c, wrap(c, "PROVISIONCATEGORY", "DELETE", nil).WithResource(id), http.StatusOK, func(ctx context.Context) (*command.Result, error) {
		return &command.Result{ResourceID: &id}, h.provisioning.DeleteCategory(ctx, tid, id)
	})
}

// ListProvisioningCriteria godoc
// @ID           listProvisioningCriteria
// @Summary      List provisioning criteria
// @Tags         provisioning
// @Produce      json
// @Success      200 {object} APIResponse[[]accountingapp.ProvisioningCriteriaResponse]
// @Security     BearerAuth
// @Router       /provisioningcriteria [get]
func (h *AccountingHandler) ListProvisioningCriteria(c *gin.Context) {
	criteria, err := h.provisioning.ListCriteria(c.Request.Context(), tenant(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, criteria)
}

// GetProvisioningCriteria godoc
// @ID           getProvisioningCriteria
// @Summary      Get provisioning criteria
// @Tags         provisioning
// @Produce      json
// @Param        id path string true "Criteria ID"
// @Success      200 {object} APIResponse[accountingapp.ProvisioningCriteriaResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /provisioningcriteria/{id} [get]
func (h *AccountingHandler) GetProvisioningCriteria(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	criteria, err := h.provisioning.GetCriteria(c.Request.Context(), tenant(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, criteria)
}

// CreateProvisioningCriteria godoc
// @ID           createProvisioningCriteria
// @Summary      Create provisioning criteria
// @Description  Age bands must not overlap and a loan product may belong to one criteria only
// @Tags         provisioning
// @Accept       json
// @Produce      json
// @Param        request body accountingapp.ProvisioningCriteriaRequest true "Criteria"
// @Success      201 {object} APIResponse[accountingapp.ProvisioningCriteriaResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /provisioningcriteria [post]
func (h *AccountingHandler) CreateProvisioningCriteria(c *gin.Context) {
	var req accountingapp.ProvisioningCriteriaRequest
	if !h.bind(c, &req) {
		return
	}
	tid := tenant(c)
	h.execute(c, wrap(c, "PROVISIONCRITERIA", "CREATE", req), http.StatusCreated, func(ctx context.Context) (*command.Result, error) {
		criteria, err := h.provisioning.CreateCriteria(ctx, tid, req)
		if err != nil {
			return nil, err
		}
		return result(criteria.ID, criteria), nil
	})
}

// UpdateProvisioningCriteria godoc
// @ID           updateProvisioningCriteria
// @Summary      Update provisioning criteria
// @Tags         provisioning
// @Accept       json
// @Produce      json
// @Param        id path string true "Criteria ID"
// @Param        request body accountingapp.ProvisioningCriteriaRequest true "Criteria"
// @Success      200 {object} APIResponse[accountingapp.ProvisioningCriteriaResponse]
// @Security     BearerAuth
// @Router       /provisioningcriteria/{id} [put]
func (h *AccountingHandler) UpdateProvisioningCriteria(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req accountingapp.ProvisioningCriteriaRequest
	if !h.bind(c, &req) {
		return
	}
	tid := tenant(c)
	h.execute(c, wrap(c, "PROVISIONCRITERIA", "UPDATE", req).WithResource(id), http.StatusOK, func(ctx context.Context) (*command.Result, error) {
		criteria, err := h.provisioning.UpdateCriteria(ctx, tid, id, req)
		if err != nil {
			return nil, err
		}
		return result(criteria.ID, criteria), nil
	})
}

// DeleteProvisioningCriteria godoc
// @ID           deleteProvisioningCriteria
// @Summary      Delete provisioning criteria
// @Tags         provisioning
// @Param        id path string true "Criteria ID"
// @Success      204
// @Security     BearerAuth
// @Router       /provisioningcriteria/{id} [delete]
func (h *AccountingHandler) DeleteProvisioningCriteria(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	tid := tenant(c)
	h.execute(c, wrap(c, "PROVISIONCRITERIA", "DELETE", nil).WithResource(id), http.StatusOK, func(ctx context.Context) (*command.Result, error) {
		return &command.Result{ResourceID: &id}, h.provisioning.DeleteCriteria(ctx, tid, id)
	})
}

// ListProvisioningEntries godoc
// @ID           listProvisioningEntries
// @Summary      List provisioning entries
// @Tags         provisioning
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]accountingapp.ProvisioningEntryResponse]
// @Security     BearerAuth
// @Router       /provisioningentries [get]
func (h *AccountingHandler) ListProvisioningEntries(c *gin.Context) {
	page, pageSize := paging(c)
	entries, total, err := h.provisioning.ListEntries(c.Request.Context(), tenant(c), page, pageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, entries, total, page, pageSize)
}

// GetProvisioningEntry godoc
// @ID           getProvisioningEntry
// @Summary      Get a provisioning entry with its reserve lines
// @Tags         provisioning
// @Produce      json
// @Param        id path string true "Entry ID"
// @Success      200 {object} APIResponse[accountingapp.ProvisioningEntryResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /provisioningentries/{id} [get]
func (h *AccountingHandler) GetProvisioningEntry(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	entry, err := h.provisioning.GetEntry(c.Request.Context(), tenant(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// CreateProvisioningEntry godoc
// @ID           createProvisioningEntry
// @Summary      Compute loan loss reserves for a date
// @Tags         provisioning
// @Accept       json
// @Produce      json
// @Param        request body accountingapp.CreateProvisioningEntryRequest false "Entry"
// @Success      201 {object} APIResponse[accountingapp.ProvisioningEntryResponse]
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /provisioningentries [post]
func (h *AccountingHandler) CreateProvisioningEntry(c *gin.Context) {
	var req accountingapp.CreateProvisioningEntryRequest
	if !h.bindOptional(c, &req) {
		return
	}
	req.CreatedBy = maker(c)
	tid := tenant(c)
	h.execute(c, wrap(c, "PROVISIONENTRIES", "CREATE", req), http.StatusCreated, func(ctx context.Context) (*command.Result, error) {
		entry, err := h.provisioning.CreateEntry(ctx, tid, req)
		if err != nil {
			return nil, err
		}
		res := result(entry.ID, entry)
		res.TransactionID = entry.JournalTransactionID
		return res, nil
	})
}

// JournalProvisioningEntry godoc
// @ID           journalProvisioningEntry
// @Summary      Post journal entries for an existing provisioning entry
// @Tags         provisioning
// @Produce      json
// @Param        id path string true "Entry ID"
// @Success      200 {object} APIResponse[accountingapp.ProvisioningEntryResponse]
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /provisioningentries/{id}/journalentries [post]
func (h *AccountingHandler) JournalProvisioningEntry(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	tid, by := tenant(c), maker(c)
	h.execute(c, wrap(c, "PROVISIONJOURNALENTRIES", "CREATE", nil).WithResource(id), http.StatusOK, func(ctx context.Context) (*command.Result, error) {
		entry, err := h.provisioning.CreateJournalEntries(ctx, tid, id, by)
		if err != nil {
			return nil, err
		}
		res := result(entry.ID, entry)
		res.TransactionID = entry.JournalTransactionID
		return res, nil
	})
}

// RunAccruals godoc
// @ID           runAccruals
// @Summary      Accrue interest on active loans up to a date
// @Tags         accounting
// @Accept       json
// @Produce      json
// @Param        request body accountingapp.RunAccrualsRequest false "Accrual run"
// @Success      200 {object} APIResponse[accountingapp.AccrualRunResponse]
// @Security     BearerAuth
// @Router       /accruals [post]
func (h *AccountingHandler) RunAccruals(c *gin.Context) {
	var req accountingapp.RunAccrualsRequest
	if !h.bindOptional(c, &req) {
		return
	}
	tid := tenant(c)
	h.execute(c, wrap(c, "PERIODICACCRUALACCOUNTING", "EXECUTE", req), http.StatusOK, func(ctx context.Context) (*command.Result, error) {
		run, err := h.accruals.RunAccruals(ctx, tid, req)
		if err != nil {
			return nil, err
		}
		return &command.Result{Body: run}, nil
	})
}
