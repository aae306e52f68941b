package portfolio

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fincore/backend/internal/domain/organisation"
	"github.com/fincore/backend/internal/domain/portfolio"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStorage struct {
	mock.Mock
}

func (m *mockStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	args := m.Called(ctx, key, data, contentType)
	return args.Error(0)
}

func (m *mockStorage) GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, key, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *mockStorage) DeleteObject(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func offices(t *testing.T, tenantID uuid.UUID) (head, branch *organisation.Office) {
	t.Helper()
	head, err := organisation.NewHeadOffice(tenantID, "Head Office", day(2020, 1, 1), "")
	require.NoError(t, err)
	branch, err = organisation.NewOffice(tenantID, "Riverside", head, day(2020, 1, 1), "")
	require.NoError(t, err)
	return head, branch
}

func TestClientService_Create(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	_, branch := offices(t, tenantID)

	t.Run("active on creation", func(t *testing.T) {
		m := newPortfolioMocks()
		svc := NewClientService(m.clients, m.offices, m.staff, m.loans, nil, nil)
		m.offices.On("FindByIDForTenant", ctx, tenantID, branch.ID).Return(branch, nil)
		m.clients.On("ExistsByExternalID", ctx, tenantID, "EXT-9", (*uuid.UUID)(nil)).Return(false, nil)
		m.clients.On("GenerateAccountNo", ctx, tenantID).Return("CL-000001", nil)
		m.clients.On("Save", ctx, mock.AnythingOfType("*portfolio.Client")).Return(nil).Once()

		resp, err := svc.Create(ctx, tenantID, CreateClientRequest{
			ClientRequest:  ClientRequest{Firstname: "Grace", Lastname: "Hopper", ExternalID: "EXT-9"},
			OfficeID:       branch.ID,
			SubmittedOn:    "2024-01-01",
			Active:         true,
			ActivationDate: "2024-01-02",
		})

		require.NoError(t, err)
		assert.Equal(t, "CL-000001", resp.AccountNo)
		assert.Equal(t, string(portfolio.ClientStatusActive), resp.Status)
		m.clients.AssertExpectations(t)
	})

	t.Run("duplicate external id", func(t *testing.T) {
		m := newPortfolioMocks()
		svc := NewClientService(m.clients, m.offices, m.staff, m.loans, nil, nil)
		m.offices.On("FindByIDForTenant", ctx, tenantID, branch.ID).Return(branch, nil)
		m.clients.On("ExistsByExternalID", ctx, tenantID, "EXT-9", (*uuid.UUID)(nil)).Return(true, nil)

		_, err := svc.Create(ctx, tenantID, CreateClientRequest{
			ClientRequest: ClientRequest{Fullname: "Acme", ExternalID: "EXT-9"},
			OfficeID:      branch.ID,
		})

		assert.Equal(t, "CLIENT_EXTERNAL_ID_EXISTS", domainCode(t, err))
	})
}

func TestClientService_Close(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	m := newPortfolioMocks()
	svc := NewClientService(m.clients, m.offices, m.staff, m.loans, nil, nil)
	client := activeClient(t, tenantID, uuid.New(), "Ada")
	m.clients.On("FindByIDForTenant", ctx, tenantID, client.ID).Return(client, nil)

	m.loans.On("CountActiveForClient", ctx, tenantID, client.ID).Return(int64(1), nil).Once()
	_, err := svc.Close(ctx, tenantID, client.ID, ClientStateRequest{Date: "2024-06-01", Reason: "Moved"})
	assert.Equal(t, "CLIENT_HAS_ACTIVE_LOANS", domainCode(t, err))

	m.loans.On("CountActiveForClient", ctx, tenantID, client.ID).Return(int64(0), nil).Once()
	m.clients.On("Save", ctx, client).Return(nil).Once()
	resp, err := svc.Close(ctx, tenantID, client.ID, ClientStateRequest{Date: "2024-06-01", Reason: "Moved"})
	require.NoError(t, err)
	assert.Equal(t, string(portfolio.ClientStatusClosed), resp.Status)
}

func TestClientService_AssignStaff(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	head, branch := offices(t, tenantID)
	m := newPortfolioMocks()
	svc := NewClientService(m.clients, m.offices, m.staff, m.loans, nil, nil)
	client := activeClient(t, tenantID, branch.ID, "Ada")
	m.clients.On("FindByIDForTenant", ctx, tenantID, client.ID).Return(client, nil)
	m.offices.On("FindByIDForTenant", ctx, tenantID, branch.ID).Return(branch, nil)
	m.offices.On("FindByIDForTenant", ctx, tenantID, head.ID).Return(head, nil)

	t.Run("staff from a parent office", func(t *testing.T) {
		officer, err := organisation.NewStaff(tenantID, head.ID, "Head", "Officer")
		require.NoError(t, err)
		m.staff.On("FindByIDForTenant", ctx, tenantID, officer.ID).Return(officer, nil)
		m.clients.On("Save", ctx, client).Return(nil).Once()

		resp, err := svc.AssignStaff(ctx, tenantID, client.ID, AssignStaffRequest{StaffID: officer.ID})

		require.NoError(t, err)
		assert.Equal(t, &officer.ID, resp.StaffID)
	})

	t.Run("inactive staff", func(t *testing.T) {
		officer, err := organisation.NewStaff(tenantID, branch.ID, "Gone", "Away")
		require.NoError(t, err)
		officer.Active = false
		m.staff.On("FindByIDForTenant", ctx, tenantID, officer.ID).Return(officer, nil)

		_, err = svc.AssignStaff(ctx, tenantID, client.ID, AssignStaffRequest{StaffID: officer.ID})

		assert.Equal(t, "STAFF_INACTIVE", domainCode(t, err))
	})
}

func TestClientService_Documents(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	client := activeClient(t, tenantID, uuid.New(), "Ada")
	req := UploadDocumentRequest{Name: "ID card", FileName: "id.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4")}

	t.Run("upload stores object then metadata", func(t *testing.T) {
		m := newPortfolioMocks()
		storage := new(mockStorage)
		svc := NewClientService(m.clients, m.offices, m.staff, m.loans, storage, nil)
		m.clients.On("FindByIDForTenant", ctx, tenantID, client.ID).Return(client, nil)
		storage.On("Upload", ctx, mock.AnythingOfType("string"), req.Data, "application/pdf").Return(nil).Once()
		m.clients.On("SaveDocument", ctx, mock.AnythingOfType("*portfolio.ClientDocument")).Return(nil).Once()

		resp, err := svc.UploadDocument(ctx, tenantID, client.ID, req)

		require.NoError(t, err)
		assert.Equal(t, "id.pdf", resp.FileName)
		storage.AssertExpectations(t)
	})

	t.Run("failed metadata save removes the object", func(t *testing.T) {
		m := newPortfolioMocks()
		storage := new(mockStorage)
		svc := NewClientService(m.clients, m.offices, m.staff, m.loans, storage, nil)
		m.clients.On("FindByIDForTenant", ctx, tenantID, client.ID).Return(client, nil)
		storage.On("Upload", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
		m.clients.On("SaveDocument", ctx, mock.Anything).Return(errors.New("db down")).Once()
		storage.On("DeleteObject", ctx, mock.AnythingOfType("string")).Return(nil).Once()

		_, err := svc.UploadDocument(ctx, tenantID, client.ID, req)

		require.Error(t, err)
		storage.AssertExpectations(t)
	})

	t.Run("download link", func(t *testing.T) {
		m := newPortfolioMocks()
		storage := new(mockStorage)
		svc := NewClientService(m.clients, m.offices, m.staff, m.loans, storage, nil)
		doc, err := portfolio.NewClientDocument(client, "ID card", "id.pdf", "application/pdf", 8, "")
		require.NoError(t, err)
		expires := time.Now().Add(DefaultDownloadURLExpiry)
		m.clients.On("FindDocument", ctx, tenantID, client.ID, doc.ID).Return(doc, nil)
		storage.On("GenerateDownloadURL", ctx, doc.StorageKey, DefaultDownloadURLExpiry).Return("https://files.example/id.pdf", expires, nil)

		resp, err := svc.DocumentDownloadURL(ctx, tenantID, client.ID, doc.ID)

		require.NoError(t, err)
		assert.Equal(t, "https://files.example/id.pdf", resp.URL)
		assert.Equal(t, expires, resp.ExpiresAt)
	})

	t.Run("storage not configured", func(t *testing.T) {
		m := newPortfolioMocks()
		svc := NewClientService(m.clients, m.offices, m.staff, m.loans, nil, nil)

		_, err := svc.UploadDocument(ctx, tenantID, client.ID, req)

		assert.Equal(t, "STORAGE_UNAVAILABLE", domainCode(t, err))
	})
}
