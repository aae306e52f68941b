package handler

import (
	"context"
	"io"
	"net/http"

	portfolioapp "github.com/fincore/backend/internal/application/portfolio"
	"github.com/fincore/backend/internal/domain/command"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ClientHandler serves clients and their documents
type ClientHandler struct {
	BaseHandler
	clients       *portfolioapp.ClientService
	maxUploadSize int64
}

// NewClientHandler creates a new ClientHandler. Uploads above maxUploadSize
// bytes are refused.
func NewClientHandler(base BaseHandler, clients *portfolioapp.ClientService, maxUploadSize int64) *ClientHandler {
	return &ClientHandler{BaseHandler: base, clients: clients, maxUploadSize: maxUploadSize}
}

// ListClients godoc
// @ID           listClients
// @Summary      List clients
// @Tags         clients
// @Produce      json
// @Param        search query string false "Name, account or external id"
// @Param        office_id query string false "Office"
// @Param        staff_id query string false "Loan officer"
// @Param        status query string false "Status" Enums(PENDING, ACTIVE, CLOSED, REJECTED, WITHDRAWN)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        order_by query string false "Sort field" Enums(account_no, display_name, submitted_on, created_at)
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Success      200 {object} APIResponse[[]portfolioapp.ClientResponse]
// @Security     BearerAuth
// @Router       /clients [get]
func (h *ClientHandler) ListClients(c *gin.Context) {
	var filter portfolioapp.ClientListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	clients, total, err := h.clients.List(c.Request.Context(), tenant(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := paging(c)
	h.SuccessWithMeta(c, clients, total, page, pageSize)
}

// GetClient godoc
// @ID           getClient
// @Summary      Get a client
// @Tags         clients
// @Produce      json
// @Param        id path string true "Client ID"
// @Success      200 {object} APIResponse[portfolioapp.ClientResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clients/{id} [get]
func (h *ClientHandler) GetClient(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	client, err := h.clients.GetByID(c.Request.Context(), tenant(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, client)
}

// CreateClient godoc
// @ID           createClient
// @Summary      Create a client
// @Description  A client is created pending unless active is set
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        request body portfolioapp.CreateClientRequest true "Client"
// @Success      201 {object} APIResponse[portfolioapp.ClientResponse]
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clients [post]
func (h *ClientHandler) CreateClient(c *gin.Context) {
	var req portfolioapp.CreateClientRequest
	if !h.bind(c, &req) {
		return
	}
	tid := tenant(c)
	w := wrap(c, "CLIENT", "CREATE", req)
	w.OfficeID = &req.OfficeID
	h.execute(c, w, http.StatusCreated, func(ctx context.Context) (*command.Result, error) {
		client, err := h.clients.Create(ctx, tid, req)
		if err != nil {
			return nil, err
		}
		return clientResult(client), nil
	})
}

// UpdateClient godoc
// @ID           updateClient
// @Summary      Update a client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        id path string true "Client ID"
// @Param        request body portfolioapp.ClientRequest true "Client"
// @Success      200 {object} APIResponse[portfolioapp.ClientResponse]
// @Security     BearerAuth
// @Router       /clients/{id} [put]
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req portfolioapp.ClientRequest
	if !h.bind(c, &req) {
		return
	}
	tid := tenant(c)
	h.execute(c, h.clientWrap(c, "UPDATE", req, id), http.StatusOK, func(ctx context.Context) (*command.Result, error) {
		client, err := h.clients.Update(ctx, tid, id, req)
		if err != nil {
			return nil, err
		}
		return clientResult(client), nil
	})
}

type clientTransition func(ctx context.Context, tenantID, id uuid.UUID, req portfolioapp.ClientStateRequest) (*portfolioapp.ClientResponse, error)

// ClientAction godoc
// @ID           clientAction
// @Summary      Move a client through its lifecycle
// @Description  Commands: activate, reject, withdraw, close, reactivate
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        id path string true "Client ID"
// @Param        command query string true "Transition" Enums(activate, reject, withdraw, close, reactivate)
// @Param        request body portfolioapp.ClientStateRequest false "Date and reason"
// @Success      200 {object} APIResponse[portfolioapp.ClientResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clients/{id} [post]
func (h *ClientHandler) ClientAction(c *gin.Context) {
	transitions := map[string]struct {
		action string
		fn     clientTransition
	}{
		"activate":   {"ACTIVATE", h.clients.Activate},
		"reject":     {"REJECT", h.clients.Reject},
		"withdraw":   {"WITHDRAW", h.clients.Withdraw},
		"close":      {"CLOSE", h.clients.Close},
		"reactivate": {"REACTIVATE", h.clients.Reactivate},
	}
	t, found := transitions[c.Query("command")]
	if !found {
		h.BadRequest(c, "Unknown client command "+c.Query("command"))
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req portfolioapp.ClientStateRequest
	if !h.bindOptional(c, &req) {
		return
	}
	tid := tenant(c)
	h.execute(c, h.clientWrap(c, t.action, req, id), http.StatusOK, func(ctx context.Context) (*command.Result, error) {
		client, err := t.fn(ctx, tid, id, req)
		if err != nil {
			return nil, err
		}
		return clientResult(client), nil
	})
}

// AssignClientStaff godoc
// @ID           assignClientStaff
// @Summary      Assign a loan officer to a client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        id path string true "Client ID"
// @Param        request body portfolioapp.AssignStaffRequest true "Staff"
// @Success      200 {object} APIResponse[portfolioapp.ClientResponse]
// @Security     BearerAuth
// @Router       /clients/{id}/staff [put]
func (h *ClientHandler) AssignClientStaff(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req portfolioapp.AssignStaffRequest
	if !h.bind(c, &req) {
		return
	}
	tid := tenant(c)
	h.execute(c, h.clientWrap(c, "ASSIGNSTAFF", req, id), http.StatusOK, func(ctx context.Context) (*command.Result, error) {
		client, err := h.clients.AssignStaff(ctx, tid, id, req)
		if err != nil {
			return nil, err
		}
		return clientResult(client), nil
	})
}

// UnassignClientStaff godoc
// @ID           unassignClientStaff
// @Summary      Remove the loan officer of a client
// @Tags         clients
// @Produce      json
// @Param        id path string true "Client ID"
// @Success      200 {object} APIResponse[portfolioapp.ClientResponse]
// @Security     BearerAuth
// @Router       /clients/{id}/staff [delete]
func (h *ClientHandler) UnassignClientStaff(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	tid := tenant(c)
	h.execute(c, h.clientWrap(c, "UNASSIGNSTAFF", nil, id), http.StatusOK, func(ctx context.Context) (*command.Result, error) {
		client, err := h.clients.UnassignStaff(ctx, tid, id)
		if err != nil {
			return nil, err
		}
		return clientResult(client), nil
	})
}

// DeleteClient godoc
// @ID           deleteClient
// @Summary      Delete a pending client
// @Tags         clients
// @Param        id path string true "Client ID"
// @Success      204
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clients/{id} [delete]
func (h *ClientHandler) DeleteClient(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	tid := tenant(c)
	h.execute(c, h.clientWrap(c, "DELETE", nil, id), http.StatusOK, func(ctx context.Context) (*command.Result, error) {
		return &command.Result{ResourceID: &id, ClientID: &id}, h.clients.Delete(ctx, tid, id)
	})
}

// ListDocuments godoc
// @ID           listClientDocuments
// @Summary      List the documents of a client
// @Tags         clients
// @Produce      json
// @Param        id path string true "Client ID"
// @Success      200 {object} APIResponse[[]portfolioapp.DocumentResponse]
// @Security     BearerAuth
// @Router       /clients/{id}/documents [get]
func (h *ClientHandler) ListDocuments(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	docs, err := h.clients.ListDocuments(c.Request.Context(), tenant(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, docs)
}

// UploadDocument godoc
// @ID           uploadClientDocument
// @Summary      Upload a document for a client
// @Tags         clients
// @Accept       multipart/form-data
// @Produce      json
// @Param        id path string true "Client ID"
// @Param        name formData string true "Document name"
// @Param        description formData string false "Description"
// @Param        file formData file true "Document"
// @Success      201 {object} APIResponse[portfolioapp.DocumentResponse]
// @Failure      413 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clients/{id}/documents [post]
func (h *ClientHandler) UploadDocument(c *gin.Context) {
	clientID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req portfolioapp.UploadDocumentRequest
	if err := c.ShouldBind(&req); err != nil {
		h.BindError(c, err)
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "A file part is required")
		return
	}
	if h.maxUploadSize > 0 && file.Size > h.maxUploadSize {
		h.Error(c, http.StatusRequestEntityTooLarge, "ERR_REQUEST_TOO_LARGE", "Document exceeds maximum upload size")
		return
	}
	f, err := file.Open()
	if err != nil {
		h.BadRequest(c, "Could not read the uploaded file")
		return
	}
	defer f.Close()
	req.Data, err = io.ReadAll(f)
	if err != nil {
		h.BadRequest(c, "Could not read the uploaded file")
		return
	}
	req.FileName = file.Filename
	req.ContentType = file.Header.Get("Content-Type")

	payload := gin.H{"name": req.Name, "description": req.Description, "file_name": req.FileName, "size": file.Size}
	w := wrap(c, "DOCUMENT", "CREATE", payload)
	w.ClientID = &clientID
	tid := tenant(c)
	h.execute(c, w, http.StatusCreated, func(ctx context.Context) (*command.Result, error) {
		doc, err := h.clients.UploadDocument(ctx, tid, clientID, req)
		if err != nil {
			return nil, err
		}
		res := result(doc.ID, doc)
		res.ClientID = &clientID
		return res, nil
	})
}

// DocumentURL godoc
// @ID           clientDocumentURL
// @Summary      Presigned download link for a client document
// @Tags         clients
// @Produce      json
// @Param        id path string true "Client ID"
// @Param        docId path string true "Document ID"
// @Success      200 {object} APIResponse[portfolioapp.DownloadURLResponse]
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clients/{id}/documents/{docId}/attachment [get]
func (h *ClientHandler) DocumentURL(c *gin.Context) {
	clientID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	docID, ok := h.pathID(c, "docId")
	if !ok {
		return
	}
	url, err := h.clients.DocumentDownloadURL(c.Request.Context(), tenant(c), clientID, docID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, url)
}

// DeleteDocument godoc
// @ID           deleteClientDocument
// @Summary      Delete a client document
// @Tags         clients
// @Param        id path string true "Client ID"
// @Param        docId path string true "Document ID"
// @Success      204
// @Security     BearerAuth
// @Router       /clients/{id}/documents/{docId} [delete]
func (h *ClientHandler) DeleteDocument(c *gin.Context) {
	clientID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	docID, ok := h.pathID(c, "docId")
	if !ok {
		return
	}
	w := wrap(c, "DOCUMENT", "DELETE", nil).WithResource(docID)
	w.ClientID = &clientID
	tid := tenant(c)
	h.execute(c, w, http.StatusOK, func(ctx context.Context) (*command.Result, error) {
		return &command.Result{ResourceID: &docID, ClientID: &clientID}, h.clients.DeleteDocument(ctx, tid, clientID, docID)
	})
}

func (h *ClientHandler) clientWrap(c *gin.Context, action string, payload any, id uuid.UUID) command.Wrapper {
	w := wrap(c, "CLIENT", action, payload).WithResource(id)
	w.ClientID = &id
	return w
}

func clientResult(client *portfolioapp.ClientResponse) *command.Result {
	res := result(client.ID, client)
	res.ClientID = &client.ID
	res.OfficeID = &client.OfficeID
	return res
}
