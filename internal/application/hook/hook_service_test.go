package hook

import (
	"context"
	"testing"

	"github.com/fincore/backend/internal/domain/hook"
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/fincore/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func hookRequest() HookRequest {
	return HookRequest{
		DisplayName: "Loan events",
		Active:      true,
		Events:      []EventRequest{{EntityName: "loan", ActionName: "disburse"}},
		PayloadURL:  "https://hooks.example.org/in",
		Secret:      "abc",
	}
}

func TestHookService_Create(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("success", func(t *testing.T) {
		hooks := new(testutil.MockHookRepository)
		hooks.On("ExistsByDisplayName", ctx, tenantID, "Loan events", (*uuid.UUID)(nil)).Return(false, nil)
		hooks.On("Save", ctx, mock.AnythingOfType("*hook.Hook")).Return(nil).Once()

		resp, err := NewHookService(hooks, nil, nil).Create(ctx, tenantID, hookRequest())

		require.NoError(t, err)
		assert.Equal(t, hook.TemplateWeb, resp.Name)
		assert.Equal(t, "json", resp.ContentType)
		assert.True(t, resp.Signed)
		assert.Equal(t, []EventRequest{{EntityName: "LOAN", ActionName: "DISBURSE"}}, resp.Events)
	})

	t.Run("duplicate display name", func(t *testing.T) {
		hooks := new(testutil.MockHookRepository)
		hooks.On("ExistsByDisplayName", ctx, tenantID, "Loan events", (*uuid.UUID)(nil)).Return(true, nil)

		_, err := NewHookService(hooks, nil, nil).Create(ctx, tenantID, hookRequest())

		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "HOOK_NAME_EXISTS", de.Code)
	})

	t.Run("relative url", func(t *testing.T) {
		hooks := new(testutil.MockHookRepository)
		hooks.On("ExistsByDisplayName", ctx, tenantID, "Loan events", (*uuid.UUID)(nil)).Return(false, nil)
		req := hookRequest()
		req.PayloadURL = "/callback"

		_, err := NewHookService(hooks, nil, nil).Create(ctx, tenantID, req)

		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "HOOK_INVALID_URL", de.Code)
		hooks.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestHookService_UpdateKeepsSecret(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	existing, err := hook.NewHook(tenantID, hookRequest().input())
	require.NoError(t, err)

	hooks := new(testutil.MockHookRepository)
	hooks.On("FindByIDForTenant", ctx, tenantID, existing.ID).Return(existing, nil)
	hooks.On("ExistsByDisplayName", ctx, tenantID, "Renamed", &existing.ID).Return(false, nil)
	hooks.On("Save", ctx, existing).Return(nil).Once()

	req := hookRequest()
	req.DisplayName = "Renamed"
	req.Secret = ""
	resp, err := NewHookService(hooks, nil, nil).Update(ctx, tenantID, existing.ID, req)

	require.NoError(t, err)
	assert.Equal(t, "Renamed", resp.DisplayName)
	assert.Equal(t, "abc", existing.Secret)
}

func TestHookService_Deliveries(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	h, err := hook.NewHook(tenantID, hookRequest().input())
	require.NoError(t, err)
	d := hook.NewDelivery(h, "LOAN", "DISBURSE", "/loans/1", nil, 3)

	hooks := new(testutil.MockHookRepository)
	deliveries := new(testutil.MockHookDeliveryRepository)
	filter := shared.DefaultFilter()
	hooks.On("FindByIDForTenant", ctx, tenantID, h.ID).Return(h, nil)
	deliveries.On("FindByHook", ctx, tenantID, h.ID, filter).Return([]hook.Delivery{*d}, int64(1), nil)

	out, total, err := NewHookService(hooks, deliveries, nil).Deliveries(ctx, tenantID, h.ID, filter)

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, out, 1)
	assert.Equal(t, "PENDING", out[0].Status)
	assert.Equal(t, 3, out[0].MaxAttempts)
}
