package organisation

import (
	"context"
	"testing"
	"time"

	"github.com/fincore/backend/internal/domain/organisation"
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/fincore/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func domainCode(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	de, ok := err.(*shared.DomainError)
	require.True(t, ok, "expected domain error, got %T: %v", err, err)
	return de.Code
}

func TestOfficeService_Create(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	head, err := organisation.NewHeadOffice(tenantID, "Head Office", day(2020, 1, 1), "")
	require.NoError(t, err)

	t.Run("head office", func(t *testing.T) {
		repo := new(testutil.MockOfficeRepository)
		svc := NewOfficeService(repo)
		repo.On("ExistsByName", ctx, tenantID, "Head Office", (*uuid.UUID)(nil)).Return(false, nil).Once()
		repo.On("FindHeadOffice", ctx, tenantID).Return(nil, shared.ErrNotFound).Once()
		repo.On("Save", ctx, mock.AnythingOfType("*organisation.Office")).Return(nil).Once()

		resp, err := svc.Create(ctx, tenantID, CreateOfficeRequest{Name: "Head Office", OpeningDate: "2020-01-01"})

		require.NoError(t, err)
		assert.Nil(t, resp.ParentID)
		assert.Equal(t, "."+resp.ID.String()+".", resp.Hierarchy)
	})

	t.Run("second head office", func(t *testing.T) {
		repo := new(testutil.MockOfficeRepository)
		svc := NewOfficeService(repo)
		repo.On("ExistsByName", ctx, tenantID, "Another", (*uuid.UUID)(nil)).Return(false, nil).Once()
		repo.On("FindHeadOffice", ctx, tenantID).Return(head, nil).Once()

		_, err := svc.Create(ctx, tenantID, CreateOfficeRequest{Name: "Another", OpeningDate: "2020-01-01"})

		assert.Equal(t, "HEAD_OFFICE_EXISTS", domainCode(t, err))
	})

	t.Run("branch", func(t *testing.T) {
		repo := new(testutil.MockOfficeRepository)
		svc := NewOfficeService(repo)
		repo.On("ExistsByName", ctx, tenantID, "Branch", (*uuid.UUID)(nil)).Return(false, nil).Once()
		repo.On("FindByIDForTenant", ctx, tenantID, head.ID).Return(head, nil).Once()
		repo.On("Save", ctx, mock.AnythingOfType("*organisation.Office")).Return(nil).Once()

		resp, err := svc.Create(ctx, tenantID, CreateOfficeRequest{Name: "Branch", ParentID: &head.ID, OpeningDate: "2021-03-01"})

		require.NoError(t, err)
		assert.Equal(t, head.Hierarchy+resp.ID.String()+".", resp.Hierarchy)
	})
}

func TestOfficeService_BootstrapHeadOffice(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("creates the head office once", func(t *testing.T) {
		repo := new(testutil.MockOfficeRepository)
		svc := NewOfficeService(repo)
		repo.On("FindHeadOffice", ctx, tenantID).Return(nil, shared.ErrNotFound).Once()
		repo.On("Save", ctx, mock.AnythingOfType("*organisation.Office")).Return(nil).Once()

		resp, created, err := svc.BootstrapHeadOffice(ctx, tenantID, "Head Office", time.Date(2024, 5, 6, 13, 30, 0, 0, time.UTC))

		require.NoError(t, err)
		assert.True(t, created)
		assert.Nil(t, resp.ParentID)
		repo.AssertExpectations(t)
	})

	t.Run("returns the existing head office", func(t *testing.T) {
		head, err := organisation.NewHeadOffice(tenantID, "HQ", day(2020, 1, 1), "")
		require.NoError(t, err)
		repo := new(testutil.MockOfficeRepository)
		svc := NewOfficeService(repo)
		repo.On("FindHeadOffice", ctx, tenantID).Return(head, nil).Once()

		resp, created, err := svc.BootstrapHeadOffice(ctx, tenantID, "Head Office", day(2024, 1, 1))

		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, head.ID, resp.ID)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestOfficeService_UpdateMovesSubtree(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	head, _ := organisation.NewHeadOffice(tenantID, "Head Office", day(2020, 1, 1), "")
	region, _ := organisation.NewOffice(tenantID, "Region", head, day(2020, 2, 1), "")
	branch, _ := organisation.NewOffice(tenantID, "Branch", head, day(2020, 3, 1), "")
	old := branch.Hierarchy

	repo := new(testutil.MockOfficeRepository)
	svc := NewOfficeService(repo)
	repo.On("FindByIDForTenant", ctx, tenantID, branch.ID).Return(branch, nil).Once()
	repo.On("FindByIDForTenant", ctx, tenantID, region.ID).Return(region, nil).Once()
	repo.On("Save", ctx, branch).Return(nil).Once()
	repo.On("RewriteHierarchy", ctx, tenantID, old, region.Hierarchy+branch.ID.String()+".").Return(nil).Once()

	resp, err := svc.Update(ctx, tenantID, branch.ID, UpdateOfficeRequest{Name: "Branch", ParentID: &region.ID, OpeningDate: "2020-03-01"})

	require.NoError(t, err)
	assert.Equal(t, &region.ID, resp.ParentID)
	repo.AssertExpectations(t)

	t.Run("under own descendant", func(t *testing.T) {
		repo.On("FindByIDForTenant", ctx, tenantID, region.ID).Return(region, nil).Once()
		repo.On("FindByIDForTenant", ctx, tenantID, branch.ID).Return(branch, nil).Once()

		_, err := svc.Update(ctx, tenantID, region.ID, UpdateOfficeRequest{Name: "Region", ParentID: &branch.ID, OpeningDate: "2020-02-01"})

		assert.Equal(t, "OFFICE_PARENT_DESCENDANT", domainCode(t, err))
	})
}

func TestWorkingDaysService_DefaultsWhenUnset(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	repo := new(testutil.MockWorkingDaysRepository)
	svc := NewWorkingDaysService(repo)
	repo.On("FindForTenant", ctx, tenantID).Return(nil, shared.ErrNotFound)

	resp, err := svc.Get(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, organisation.DefaultWorkingDaysRRule, resp.Recurrence)

	repo.On("Save", ctx, mock.AnythingOfType("*organisation.WorkingDays")).Return(nil).Once()
	resp, err = svc.Update(ctx, tenantID, WorkingDaysRequest{
		Recurrence:     "FREQ=WEEKLY;INTERVAL=1;BYDAY=MO,TU,WE,TH,FR,SA",
		RescheduleType: "SAME_DAY",
	})
	require.NoError(t, err)
	assert.Equal(t, "SAME_DAY", resp.RescheduleType)

	_, err = svc.Update(ctx, tenantID, WorkingDaysRequest{Recurrence: "FREQ=DAILY", RescheduleType: "SAME_DAY"})
	assert.Equal(t, "INVALID_RECURRENCE", domainCode(t, err))
}
