package portfolio

import (
	"context"
	"testing"

	"github.com/fincore/backend/internal/domain/portfolio"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newGroupService(m *portfolioMocks) *GroupService {
	return NewGroupService(m.groups, m.clients, m.offices, m.staff, m.loans)
}

func TestGroupService_CreateGroup(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	_, branch := offices(t, tenantID)

	t.Run("active group with members inside a center", func(t *testing.T) {
		m := newPortfolioMocks()
		center, err := portfolio.NewCenter(tenantID, branch.ID, "North", "", day(2023, 12, 1))
		require.NoError(t, err)
		require.NoError(t, center.Activate(day(2023, 12, 1), nil))
		ada := activeClient(t, tenantID, branch.ID, "Ada")

		m.offices.On("FindByIDForTenant", ctx, tenantID, branch.ID).Return(branch, nil)
		m.groups.On("ExistsByName", ctx, tenantID, branch.ID, portfolio.GroupLevelGroup, "Sunrise", (*uuid.UUID)(nil)).Return(false, nil)
		m.groups.On("FindByIDForTenant", ctx, tenantID, center.ID).Return(center, nil)
		m.clients.On("FindByIDs", ctx, tenantID, []uuid.UUID{ada.ID}).Return(map[uuid.UUID]*portfolio.Client{ada.ID: ada}, nil)
		m.groups.On("Save", ctx, mock.AnythingOfType("*portfolio.Group")).Return(nil).Once()

		resp, err := newGroupService(m).CreateGroup(ctx, tenantID, CreateGroupRequest{
			OfficeID:       branch.ID,
			CenterID:       &center.ID,
			Name:           "Sunrise",
			SubmittedOn:    "2024-01-01",
			Active:         true,
			ActivationDate: "2024-01-01",
			ClientIDs:      []uuid.UUID{ada.ID},
		})

		require.NoError(t, err)
		assert.Equal(t, string(portfolio.GroupStatusActive), resp.Status)
		assert.Equal(t, []uuid.UUID{ada.ID}, resp.ClientIDs)
	})

	t.Run("unknown member", func(t *testing.T) {
		m := newPortfolioMocks()
		missing := uuid.New()
		m.offices.On("FindByIDForTenant", ctx, tenantID, branch.ID).Return(branch, nil)
		m.groups.On("ExistsByName", ctx, tenantID, branch.ID, portfolio.GroupLevelGroup, "Dawn", (*uuid.UUID)(nil)).Return(false, nil)
		m.clients.On("FindByIDs", ctx, tenantID, []uuid.UUID{missing}).Return(map[uuid.UUID]*portfolio.Client{}, nil)

		_, err := newGroupService(m).CreateGroup(ctx, tenantID, CreateGroupRequest{
			OfficeID: branch.ID, Name: "Dawn", ClientIDs: []uuid.UUID{missing},
		})

		assert.Equal(t, "NOT_FOUND", domainCode(t, err))
	})

	t.Run("duplicate name", func(t *testing.T) {
		m := newPortfolioMocks()
		m.offices.On("FindByIDForTenant", ctx, tenantID, branch.ID).Return(branch, nil)
		m.groups.On("ExistsByName", ctx, tenantID, branch.ID, portfolio.GroupLevelCenter, "North", (*uuid.UUID)(nil)).Return(true, nil)

		_, err := newGroupService(m).CreateCenter(ctx, tenantID, CreateGroupRequest{OfficeID: branch.ID, Name: "North"})

		assert.Equal(t, "GROUP_NAME_EXISTS", domainCode(t, err))
	})

	t.Run("centers take no clients", func(t *testing.T) {
		_, err := newGroupService(newPortfolioMocks()).CreateCenter(ctx, tenantID, CreateGroupRequest{
			OfficeID: branch.ID, Name: "North", ClientIDs: []uuid.UUID{uuid.New()},
		})

		assert.Equal(t, "CENTER_HAS_NO_CLIENTS", domainCode(t, err))
	})
}

func TestGroupService_Close(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	officeID := uuid.New()

	t.Run("group with active loans", func(t *testing.T) {
		m := newPortfolioMocks()
		group := activeGroup(t, tenantID, officeID, nil, "Sunrise")
		m.groups.On("FindByIDForTenant", ctx, tenantID, group.ID).Return(group, nil)
		m.loans.On("CountActiveForGroup", ctx, tenantID, group.ID).Return(int64(2), nil)

		_, err := newGroupService(m).Close(ctx, tenantID, group.ID, GroupStateRequest{Date: "2024-06-01"})

		assert.Equal(t, "GROUP_HAS_ACTIVE_MEMBERS", domainCode(t, err))
	})

	t.Run("center counts active groups only", func(t *testing.T) {
		m := newPortfolioMocks()
		center, err := portfolio.NewCenter(tenantID, officeID, "North", "", day(2023, 12, 1))
		require.NoError(t, err)
		require.NoError(t, center.Activate(day(2023, 12, 1), nil))
		closed := activeGroup(t, tenantID, officeID, center, "Old")
		require.NoError(t, closed.Close(day(2024, 1, 1), 0))

		m.groups.On("FindByIDForTenant", ctx, tenantID, center.ID).Return(center, nil)
		m.groups.On("FindByParent", ctx, tenantID, center.ID).Return([]portfolio.Group{*closed}, nil)
		m.groups.On("Save", ctx, center).Return(nil).Once()

		resp, err := newGroupService(m).Close(ctx, tenantID, center.ID, GroupStateRequest{Date: "2024-06-01"})

		require.NoError(t, err)
		assert.Equal(t, string(portfolio.GroupStatusClosed), resp.Status)
		m.loans.AssertNotCalled(t, "CountActiveForGroup", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestGroupService_DeleteCenterWithGroups(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	officeID := uuid.New()
	m := newPortfolioMocks()
	center, err := portfolio.NewCenter(tenantID, officeID, "North", "", day(2023, 12, 1))
	require.NoError(t, err)
	child, err := portfolio.NewGroup(tenantID, officeID, center, "Sunrise", "", day(2023, 12, 1))
	require.NoError(t, err)

	m.groups.On("FindByIDForTenant", ctx, tenantID, center.ID).Return(center, nil)
	m.groups.On("FindByParent", ctx, tenantID, center.ID).Return([]portfolio.Group{*child}, nil)

	err = newGroupService(m).Delete(ctx, tenantID, center.ID)

	assert.Equal(t, "CENTER_HAS_GROUPS", domainCode(t, err))
	m.groups.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}
