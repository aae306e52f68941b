package printing

import (
	"context"
	"time"

	"github.com/fincore/backend/internal/application/portfolio"
	"go.uber.org/zap"
)

// PageOptions controls page layout of a printed document
type PageOptions struct {
	Landscape bool
}

// HTMLConverter prints a complete HTML document to PDF
type HTMLConverter interface {
	HTMLToPDF(ctx context.Context, html string, opts PageOptions) ([]byte, error)
}

// RenderError is a failure to produce a document
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Error codes for rendering failures
const (
	ErrCodeRenderTimeout   = "RENDER_TIMEOUT"
	ErrCodeRenderFailed    = "RENDER_FAILED"
	ErrCodeInvalidTemplate = "INVALID_TEMPLATE"
	ErrCodeUnknownTemplate = "UNKNOWN_TEMPLATE"
)

// NewRenderError creates a RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{Code: code, Message: message, Cause: cause}
}

var _ portfolio.DocumentRenderer = (*DocumentRenderer)(nil)

// landscape documents
var landscape = map[string]bool{
	portfolio.TemplateCollectionSheet: true,
}

// DocumentRenderer fills a document template and prints it
type DocumentRenderer struct {
	engine    *TemplateEngine
	converter HTMLConverter
	logger    *zap.Logger
}

// NewDocumentRenderer creates a DocumentRenderer
func NewDocumentRenderer(engine *TemplateEngine, converter HTMLConverter, logger *zap.Logger) *DocumentRenderer {
	return &DocumentRenderer{engine: engine, converter: converter, logger: logger}
}

// RenderPDF renders the named template with data
func (r *DocumentRenderer) RenderPDF(ctx context.Context, template string, data any) ([]byte, error) {
	started := time.Now()
	html, err := r.engine.Render(template, data)
	if err != nil {
		return nil, err
	}
	pdf, err := r.converter.HTMLToPDF(ctx, html, PageOptions{Landscape: landscape[template]})
	if err != nil {
		r.logger.Error("Document rendering failed", zap.String("template", template), zap.Error(err))
		return nil, err
	}
	r.logger.Info("Document rendered",
		zap.String("template", template),
		zap.Int("bytes", len(pdf)),
		zap.Duration("duration", time.Since(started)),
	)
	return pdf, nil
}
