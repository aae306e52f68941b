package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	commandapp "github.com/fincore/backend/internal/application/command"
	"github.com/fincore/backend/internal/domain/command"
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/fincore/backend/internal/infrastructure/logger"
	"github.com/fincore/backend/internal/interfaces/http/dto"
	"github.com/fincore/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// IdempotencyKeyHeader lets clients retry a write without running it twice
	IdempotencyKeyHeader = "Idempotency-Key"
	// CommandIDHeader carries the audit id of the command that served a write
	CommandIDHeader = "X-Command-ID"
	// ReplayedHeader is set when a stored result is returned for a repeated key
	ReplayedHeader = "Idempotency-Replayed"
)

// BaseHandler provides common handler utilities. Writes run through the
// command processor so every change is permission checked and audited.
type BaseHandler struct {
	commands *commandapp.Processor
}

// NewBaseHandler creates a BaseHandler running writes through processor
func NewBaseHandler(processor *commandapp.Processor) BaseHandler {
	return BaseHandler{commands: processor}
}

// tenant returns the tenant resolved by the Tenant middleware
func tenant(c *gin.Context) uuid.UUID {
	id, _ := middleware.TenantID(c)
	return id
}

// maker returns the authenticated user as an optional id
func maker(c *gin.Context) *uuid.UUID {
	id := middleware.UserID(c)
	if id == uuid.Nil {
		return nil
	}
	return &id
}

// wrap builds a command for the current request
func wrap(c *gin.Context, entity, action string, payload any) command.Wrapper {
	return command.NewWrapper(tenant(c), middleware.UserID(c), entity, action, c.Request.URL.RequestURI(), payload)
}

// result describes the outcome of a write that touched one resource
func result(id uuid.UUID, body any) *command.Result {
	return &command.Result{ResourceID: &id, Body: body}
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Error sends an error response with the given status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// Forbidden sends a 403 forbidden response
func (h *BaseHandler) Forbidden(c *gin.Context, message string) {
	h.Error(c, http.StatusForbidden, dto.ErrCodeForbidden, message)
}

// BindError reports a request that could not be decoded or validated
func (h *BaseHandler) BindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]dto.ValidationDetail, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, dto.ValidationDetail{Field: fe.Field(), Message: middleware.ValidationMessage(fe)})
		}
		c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse("Request validation failed", middleware.GetRequestID(c), details))
		return
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size")
		return
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Malformed JSON request body")
		return
	}
	h.BadRequest(c, err.Error())
}

// HandleError converts domain errors to HTTP responses. Anything else is
// logged and reported as an internal error.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		status := dto.DomainHTTPStatus(domainErr.Code)
		if status >= http.StatusInternalServerError {
			logger.L(c.Request.Context()).Error("Request failed", zap.String("code", domainErr.Code), zap.Error(err))
		}
		h.Error(c, status, domainErr.Code, domainErr.Message)
		return
	}
	logger.L(c.Request.Context()).Error("Unhandled error", zap.Error(err))
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
}

// execute runs a write command and writes its result with status. A
// repeated Idempotency-Key returns the stored result of the first run.
func (h *BaseHandler) execute(c *gin.Context, w command.Wrapper, status int, fn commandapp.Handler) {
	claims := middleware.GetClaims(c)
	if claims == nil || !claims.HasPermission(w.Permission()) {
		h.Forbidden(c, "Missing permission "+w.Permission())
		return
	}
	if key := c.GetHeader(IdempotencyKeyHeader); key != "" {
		w = w.WithIdempotencyKey(key)
	}

	out, err := h.commands.Execute(c.Request.Context(), w, fn)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header(CommandIDHeader, out.CommandID.String())
	if out.IsReplay() {
		c.Header(ReplayedHeader, "true")
		c.JSON(status, dto.NewSuccessResponse(out.Replayed))
		return
	}
	if out.Body == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(status, dto.NewSuccessResponse(out.Body))
}

// bind decodes the JSON body into req, writing the error response on failure
func (h *BaseHandler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.BindError(c, err)
		return false
	}
	return true
}

// bindOptional decodes the JSON body when one was sent
func (h *BaseHandler) bindOptional(c *gin.Context, req any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	return h.bind(c, req)
}

// bindQuery decodes query parameters into req
func (h *BaseHandler) bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		h.BindError(c, err)
		return false
	}
	return true
}

// pathID parses the UUID path parameter name
func (h *BaseHandler) pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.BadRequest(c, "Invalid "+name+": must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

// queryID parses an optional UUID query parameter
func (h *BaseHandler) queryID(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		h.BadRequest(c, "Invalid "+name+": must be a UUID")
		return nil, false
	}
	return &id, true
}

// paging reads page and page_size with defaults
func paging(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.Query("page"))
	pageSize, _ = strconv.Atoi(c.Query("page_size"))
	r := dto.ListRequest{Page: page, PageSize: pageSize}
	r.Normalize()
	return r.Page, min(r.PageSize, 200)
}

// bindFilter reads the common list parameters into a repository filter
func (h *BaseHandler) bindFilter(c *gin.Context) (shared.Filter, bool) {
	var req dto.ListRequest
	if !h.bindQuery(c, &req) {
		return shared.Filter{}, false
	}
	req.Normalize()
	return shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Search:   req.Search,
	}, true
}
