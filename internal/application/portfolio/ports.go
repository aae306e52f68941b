package portfolio

import (
	"context"
	"time"

	"github.com/fincore/backend/internal/domain/organisation"
	"github.com/google/uuid"
)

// WorkingDaysProvider returns the tenant working week, falling back to the
// default when none is configured
type WorkingDaysProvider interface {
	Load(ctx context.Context, tenantID uuid.UUID) (*organisation.WorkingDays, error)
}

// DocumentStorage stores client document content in object storage
type DocumentStorage interface {
	// Upload writes the object under storageKey
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error

	// GenerateDownloadURL returns a presigned GET URL and its expiry
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)

	// DeleteObject removes the object
	DeleteObject(ctx context.Context, storageKey string) error
}

// DocumentRenderer turns a named template and its data into a PDF
type DocumentRenderer interface {
	RenderPDF(ctx context.Context, template string, data any) ([]byte, error)
}

// Template names understood by DocumentRenderer
const (
	TemplateLoanSchedule    = "loan_schedule"
	TemplateCollectionSheet = "collection_sheet"
)
