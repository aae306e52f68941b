package portfolio

import (
	"context"
	"fmt"
	"time"

	"github.com/fincore/backend/internal/domain/organisation"
	"github.com/fincore/backend/internal/domain/portfolio"
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultDownloadURLExpiry is how long a document link stays valid
const DefaultDownloadURLExpiry = 15 * time.Minute

// ClientService manages clients and their documents
type ClientService struct {
	clientRepo portfolio.ClientRepository
	officeRepo organisation.OfficeRepository
	staffRepo  organisation.StaffRepository
	loanRepo   portfolio.LoanRepository
	storage    DocumentStorage
	logger     *zap.Logger
}

// NewClientService creates a new ClientService
func NewClientService(
	clientRepo portfolio.ClientRepository,
	officeRepo organisation.OfficeRepository,
	staffRepo organisation.StaffRepository,
	loanRepo portfolio.LoanRepository,
	storage DocumentStorage,
	logger *zap.Logger,
) *ClientService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClientService{
		clientRepo: clientRepo,
		officeRepo: officeRepo,
		staffRepo:  staffRepo,
		loanRepo:   loanRepo,
		storage:    storage,
		logger:     logger,
	}
}

// Create registers a client, activating it right away when asked
func (s *ClientService) Create(ctx context.Context, tenantID uuid.UUID, req CreateClientRequest) (*ClientResponse, error) {
	in, err := req.input()
	if err != nil {
		return nil, err
	}
	submitted, err := shared.ParseDateOr(req.SubmittedOn)
	if err != nil {
		return nil, err
	}
	office, err := s.officeRepo.FindByIDForTenant(ctx, tenantID, req.OfficeID)
	if err != nil {
		return nil, err
	}
	if err := s.checkExternalID(ctx, tenantID, in.ExternalID, nil); err != nil {
		return nil, err
	}

	accountNo, err := s.clientRepo.GenerateAccountNo(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate client account number: %w", err)
	}
	client, err := portfolio.NewClient(tenantID, office.ID, accountNo, in, submitted)
	if err != nil {
		return nil, err
	}
	if req.StaffID != nil {
		if err := s.assignStaff(ctx, client, office, *req.StaffID); err != nil {
			return nil, err
		}
	}
	if req.Active {
		activation, err := shared.ParseDateOr(req.ActivationDate)
		if err != nil {
			return nil, err
		}
		if err := client.Activate(activation); err != nil {
			return nil, err
		}
	}

	if err := s.clientRepo.Save(ctx, client); err != nil {
		return nil, err
	}
	return ToClientResponse(client), nil
}

// Update changes the descriptive fields of a client
func (s *ClientService) Update(ctx context.Context, tenantID, id uuid.UUID, req ClientRequest) (*ClientResponse, error) {
	client, err := s.clientRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	in, err := req.input()
	if err != nil {
		return nil, err
	}
	if in.ExternalID != "" && in.ExternalID != client.ExternalID {
		if err := s.checkExternalID(ctx, tenantID, in.ExternalID, &id); err != nil {
			return nil, err
		}
	}
	if err := client.Update(in); err != nil {
		return nil, err
	}
	if err := s.clientRepo.Save(ctx, client); err != nil {
		return nil, err
	}
	return ToClientResponse(client), nil
}

// Activate moves a pending client to active
func (s *ClientService) Activate(ctx context.Context, tenantID, id uuid.UUID, req ClientStateRequest) (*ClientResponse, error) {
	return s.transition(ctx, tenantID, id, req, func(c *portfolio.Client, date time.Time) error {
		return c.Activate(date)
	})
}

// Reject rejects a pending client
func (s *ClientService) Reject(ctx context.Context, tenantID, id uuid.UUID, req ClientStateRequest) (*ClientResponse, error) {
	return s.transition(ctx, tenantID, id, req, func(c *portfolio.Client, date time.Time) error {
		return c.Reject(date, req.Reason)
	})
}

// Withdraw records that a pending client withdrew
func (s *ClientService) Withdraw(ctx context.Context, tenantID, id uuid.UUID, req ClientStateRequest) (*ClientResponse, error) {
	return s.transition(ctx, tenantID, id, req, func(c *portfolio.Client, date time.Time) error {
		return c.Withdraw(date, req.Reason)
	})
}

// Close closes an active client without open loans
func (s *ClientService) Close(ctx context.Context, tenantID, id uuid.UUID, req ClientStateRequest) (*ClientResponse, error) {
	active, err := s.loanRepo.CountActiveForClient(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, tenantID, id, req, func(c *portfolio.Client, date time.Time) error {
		return c.Close(date, req.Reason, active > 0)
	})
}

// Reactivate returns a closed client to pending
func (s *ClientService) Reactivate(ctx context.Context, tenantID, id uuid.UUID, req ClientStateRequest) (*ClientResponse, error) {
	return s.transition(ctx, tenantID, id, req, func(c *portfolio.Client, date time.Time) error {
		return c.Reactivate(date)
	})
}

func (s *ClientService) transition(ctx context.Context, tenantID, id uuid.UUID, req ClientStateRequest, fn func(*portfolio.Client, time.Time) error) (*ClientResponse, error) {
	date, err := shared.ParseDateOr(req.Date)
	if err != nil {
		return nil, err
	}
	client, err := s.clientRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := fn(client, date); err != nil {
		return nil, err
	}
	if err := s.clientRepo.Save(ctx, client); err != nil {
		return nil, err
	}
	return ToClientResponse(client), nil
}

// AssignStaff assigns a staff member from the client's office hierarchy
func (s *ClientService) AssignStaff(ctx context.Context, tenantID, id uuid.UUID, req AssignStaffRequest) (*ClientResponse, error) {
	client, err := s.clientRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	office, err := s.officeRepo.FindByIDForTenant(ctx, tenantID, client.OfficeID)
	if err != nil {
		return nil, err
	}
	if err := s.assignStaff(ctx, client, office, req.StaffID); err != nil {
		return nil, err
	}
	if err := s.clientRepo.Save(ctx, client); err != nil {
		return nil, err
	}
	return ToClientResponse(client), nil
}

// UnassignStaff clears the client's staff member
func (s *ClientService) UnassignStaff(ctx context.Context, tenantID, id uuid.UUID) (*ClientResponse, error) {
	client, err := s.clientRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := client.UnassignStaff(); err != nil {
		return nil, err
	}
	if err := s.clientRepo.Save(ctx, client); err != nil {
		return nil, err
	}
	return ToClientResponse(client), nil
}

func (s *ClientService) assignStaff(ctx context.Context, client *portfolio.Client, clientOffice *organisation.Office, staffID uuid.UUID) error {
	staff, err := s.staffRepo.FindByIDForTenant(ctx, client.TenantID, staffID)
	if err != nil {
		return err
	}
	if !staff.Active {
		return shared.NewDomainError("STAFF_INACTIVE", "Staff member is not active")
	}
	staffOffice := clientOffice
	if staff.OfficeID != clientOffice.ID {
		staffOffice, err = s.officeRepo.FindByIDForTenant(ctx, client.TenantID, staff.OfficeID)
		if err != nil {
			return err
		}
	}
	return client.AssignStaff(staff.ID, staffOffice.Hierarchy, clientOffice.Hierarchy)
}

// Delete removes a pending client together with its documents
func (s *ClientService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	client, err := s.clientRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := client.CanDelete(); err != nil {
		return err
	}
	docs, err := s.clientRepo.FindDocuments(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := s.clientRepo.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	for i := range docs {
		s.removeObject(ctx, docs[i].StorageKey)
	}
	return nil
}

// GetByID retrieves a client
func (s *ClientService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*ClientResponse, error) {
	client, err := s.clientRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return ToClientResponse(client), nil
}

// List retrieves clients
func (s *ClientService) List(ctx context.Context, tenantID uuid.UUID, filter ClientListFilter) ([]ClientResponse, int64, error) {
	domainFilter := portfolio.ClientFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		},
		OfficeID: filter.OfficeID,
		StaffID:  filter.StaffID,
	}
	if filter.Status != "" {
		status := portfolio.ClientStatus(filter.Status)
		domainFilter.Status = &status
	}
	clients, total, err := s.clientRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]ClientResponse, 0, len(clients))
	for i := range clients {
		out = append(out, *ToClientResponse(&clients[i]))
	}
	return out, total, nil
}

func (s *ClientService) checkExternalID(ctx context.Context, tenantID uuid.UUID, externalID string, excludeID *uuid.UUID) error {
	if externalID == "" {
		return nil
	}
	exists, err := s.clientRepo.ExistsByExternalID(ctx, tenantID, externalID, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError("CLIENT_EXTERNAL_ID_EXISTS", "Client with this external ID already exists")
	}
	return nil
}

// =============================================================================
// Documents
// =============================================================================

// UploadDocument stores a file against a client. The object is written
// before its metadata so that a failed upload leaves no dangling record.
func (s *ClientService) UploadDocument(ctx context.Context, tenantID, clientID uuid.UUID, req UploadDocumentRequest) (*DocumentResponse, error) {
	if s.storage == nil {
		return nil, shared.NewDomainError("STORAGE_UNAVAILABLE", "Document storage is not configured")
	}
	client, err := s.clientRepo.FindByIDForTenant(ctx, tenantID, clientID)
	if err != nil {
		return nil, err
	}
	doc, err := portfolio.NewClientDocument(client, req.Name, req.FileName, req.ContentType, int64(len(req.Data)), req.Description)
	if err != nil {
		return nil, err
	}
	if err := s.storage.Upload(ctx, doc.StorageKey, req.Data, doc.ContentType); err != nil {
		return nil, fmt.Errorf("failed to upload document: %w", err)
	}
	if err := s.clientRepo.SaveDocument(ctx, doc); err != nil {
		s.removeObject(ctx, doc.StorageKey)
		return nil, err
	}
	s.logger.Info("Client document uploaded",
		zap.String("client_id", clientID.String()),
		zap.String("document_id", doc.ID.String()),
		zap.Int64("size", doc.Size),
	)
	return ToDocumentResponse(doc), nil
}

// ListDocuments lists the documents of a client
func (s *ClientService) ListDocuments(ctx context.Context, tenantID, clientID uuid.UUID) ([]DocumentResponse, error) {
	if _, err := s.clientRepo.FindByIDForTenant(ctx, tenantID, clientID); err != nil {
		return nil, err
	}
	docs, err := s.clientRepo.FindDocuments(ctx, tenantID, clientID)
	if err != nil {
		return nil, err
	}
	out := make([]DocumentResponse, 0, len(docs))
	for i := range docs {
		out = append(out, *ToDocumentResponse(&docs[i]))
	}
	return out, nil
}

// DocumentDownloadURL returns a presigned link to a document
func (s *ClientService) DocumentDownloadURL(ctx context.Context, tenantID, clientID, docID uuid.UUID) (*DownloadURLResponse, error) {
	if s.storage == nil {
		return nil, shared.NewDomainError("STORAGE_UNAVAILABLE", "Document storage is not configured")
	}
	doc, err := s.clientRepo.FindDocument(ctx, tenantID, clientID, docID)
	if err != nil {
		return nil, err
	}
	url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, doc.StorageKey, DefaultDownloadURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to generate download URL: %w", err)
	}
	return &DownloadURLResponse{URL: url, ExpiresAt: expiresAt}, nil
}

// DeleteDocument removes a document and its stored object
func (s *ClientService) DeleteDocument(ctx context.Context, tenantID, clientID, docID uuid.UUID) error {
	doc, err := s.clientRepo.FindDocument(ctx, tenantID, clientID, docID)
	if err != nil {
		return err
	}
	if err := s.clientRepo.DeleteDocument(ctx, tenantID, doc.ID); err != nil {
		return err
	}
	s.removeObject(ctx, doc.StorageKey)
	return nil
}

// removeObject deletes stored content, logging failures. Orphaned objects
// are harmless; metadata is the source of truth.
func (s *ClientService) removeObject(ctx context.Context, key string) {
	if s.storage == nil {
		return
	}
	if err := s.storage.DeleteObject(ctx, key); err != nil {
		s.logger.Warn("Failed to delete stored document",
			zap.String("storage_key", key),
			zap.Error(err),
		)
	}
}
