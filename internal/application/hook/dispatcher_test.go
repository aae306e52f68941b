package hook

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/fincore/backend/internal/domain/command"
	"github.com/fincore/backend/internal/domain/hook"
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/fincore/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stubSender struct {
	mu       sync.Mutex
	requests []DeliveryRequest
	status   int
	err      error
}

func (s *stubSender) Send(_ context.Context, req DeliveryRequest) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	return s.status, s.err
}

func newTestHook(t *testing.T, tenantID uuid.UUID, contentType hook.ContentType, events ...hook.Event) *hook.Hook {
	t.Helper()
	h, err := hook.NewHook(tenantID, hook.Input{
		DisplayName: "Core " + uuid.NewString()[:8],
		Active:      true,
		Events:      events,
		PayloadURL:  "https://hooks.example.org/fineract",
		ContentType: contentType,
		Secret:      "topsecret",
	})
	require.NoError(t, err)
	return h
}

func processedEvent(tenantID uuid.UUID, entity, action string) *command.ProcessedEvent {
	loanID := uuid.New()
	w := command.NewWrapper(tenantID, uuid.New(), entity, action, "/loans/"+loanID.String(), nil).WithResource(loanID)
	return command.NewProcessedEvent(command.NewSource(w, &command.Result{ResourceID: &loanID, Body: map[string]string{"status": "ok"}}, nil))
}

func TestDispatcher_Handle(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("delivers to matching hooks only", func(t *testing.T) {
		hooks := new(testutil.MockHookRepository)
		deliveries := new(testutil.MockHookDeliveryRepository)
		sender := &stubSender{status: 200}
		loanHook := newTestHook(t, tenantID, hook.ContentTypeJSON, hook.Event{EntityName: "LOAN", ActionName: "DISBURSE"})
		clientHook := newTestHook(t, tenantID, hook.ContentTypeJSON, hook.Event{EntityName: "CLIENT", ActionName: "*"})
		hooks.On("FindActive", ctx, tenantID).Return([]hook.Hook{*loanHook, *clientHook}, nil)

		var saved []hook.Delivery
		deliveries.On("Save", ctx, mock.AnythingOfType("*hook.Delivery")).Run(func(args mock.Arguments) {
			saved = append(saved, *args.Get(1).(*hook.Delivery))
		}).Return(nil)

		d := NewDispatcher(hooks, deliveries, sender, nil, DispatcherConfig{}, nil)
		require.NoError(t, d.Handle(ctx, processedEvent(tenantID, "loan", "disburse")))

		require.Len(t, sender.requests, 1)
		req := sender.requests[0]
		assert.Equal(t, loanHook.PayloadURL, req.URL)
		assert.Equal(t, "application/json", req.ContentType)
		assert.JSONEq(t, `{"status":"ok"}`, string(req.Body))
		assert.Equal(t, "LOAN", req.Headers[HeaderEntity])
		assert.Equal(t, "DISBURSE", req.Headers[HeaderAction])
		assert.Equal(t, tenantID.String(), req.Headers[HeaderTenant])
		assert.Contains(t, req.Headers[HeaderEndpoint], "/loans/")
		assert.Equal(t, hook.Sign("topsecret", req.Body), req.Headers[HeaderSignature])

		require.Len(t, saved, 2)
		assert.Equal(t, hook.DeliveryPending, saved[0].Status)
		assert.Equal(t, hook.DeliverySent, saved[1].Status)
	})

	t.Run("form hooks wrap the payload", func(t *testing.T) {
		hooks := new(testutil.MockHookRepository)
		deliveries := new(testutil.MockHookDeliveryRepository)
		sender := &stubSender{status: 204}
		h := newTestHook(t, tenantID, hook.ContentTypeForm, hook.Event{EntityName: "*", ActionName: "*"})
		hooks.On("FindActive", ctx, tenantID).Return([]hook.Hook{*h}, nil)
		deliveries.On("Save", ctx, mock.Anything).Return(nil)

		d := NewDispatcher(hooks, deliveries, sender, nil, DispatcherConfig{}, nil)
		require.NoError(t, d.Handle(ctx, processedEvent(tenantID, "CLIENT", "CREATE")))

		require.Len(t, sender.requests, 1)
		assert.Equal(t, "application/x-www-form-urlencoded", sender.requests[0].ContentType)
		values, err := url.ParseQuery(string(sender.requests[0].Body))
		require.NoError(t, err)
		assert.JSONEq(t, `{"status":"ok"}`, values.Get("payload"))
	})

	t.Run("failed send schedules a retry", func(t *testing.T) {
		hooks := new(testutil.MockHookRepository)
		deliveries := new(testutil.MockHookDeliveryRepository)
		sender := &stubSender{status: 502, err: errors.New("bad gateway")}
		h := newTestHook(t, tenantID, hook.ContentTypeJSON, hook.Event{EntityName: "LOAN", ActionName: "*"})
		hooks.On("FindActive", ctx, tenantID).Return([]hook.Hook{*h}, nil)
		var last hook.Delivery
		deliveries.On("Save", ctx, mock.Anything).Run(func(args mock.Arguments) {
			last = *args.Get(1).(*hook.Delivery)
		}).Return(nil)

		d := NewDispatcher(hooks, deliveries, sender, nil, DispatcherConfig{MaxAttempts: 3}, nil)
		require.NoError(t, d.Handle(ctx, processedEvent(tenantID, "LOAN", "REPAYMENT")))

		assert.Equal(t, hook.DeliveryFailed, last.Status)
		assert.Equal(t, 1, last.Attempts)
		assert.Equal(t, 502, last.ResponseStatus)
		assert.Equal(t, "bad gateway", last.LastError)
	})

	t.Run("other events are ignored", func(t *testing.T) {
		hooks := new(testutil.MockHookRepository)
		d := NewDispatcher(hooks, new(testutil.MockHookDeliveryRepository), &stubSender{}, nil, DispatcherConfig{}, nil)

		require.NoError(t, d.Handle(ctx, testutil.NewTestEvent("Other", tenantID)))
		hooks.AssertNotCalled(t, "FindActive", mock.Anything, mock.Anything)
	})
}

func TestDispatcher_DeliverDue(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	h := newTestHook(t, tenantID, hook.ContentTypeJSON, hook.Event{EntityName: "LOAN", ActionName: "*"})
	retry := hook.NewDelivery(h, "LOAN", "DISBURSE", "/loans/1", []byte(`{}`), 5)
	retry.MarkFailed("timeout", 0, now.Add(-time.Hour))

	gone := *hook.NewDelivery(h, "LOAN", "APPROVE", "/loans/2", nil, 5)
	gone.HookID = uuid.New()

	hooks := new(testutil.MockHookRepository)
	deliveries := new(testutil.MockHookDeliveryRepository)
	claims := new(testutil.MockIdempotencyStore)
	sender := &stubSender{status: 200}

	deliveries.On("FindDue", ctx, now, 100).Return([]hook.Delivery{*retry, gone}, nil)
	hooks.On("FindByIDForTenant", ctx, tenantID, h.ID).Return(h, nil)
	hooks.On("FindByIDForTenant", ctx, tenantID, gone.HookID).Return(nil, shared.NotFound("Hook"))
	claims.On("MarkProcessed", ctx, "hook-delivery:"+retry.ID.String()+":1", 5*time.Minute).Return(true, nil)

	var saved []hook.Delivery
	deliveries.On("Save", ctx, mock.Anything).Run(func(args mock.Arguments) {
		saved = append(saved, *args.Get(1).(*hook.Delivery))
	}).Return(nil)

	d := NewDispatcher(hooks, deliveries, sender, claims, DispatcherConfig{}, nil)
	d.now = func() time.Time { return now }

	attempted, err := d.DeliverDue(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, attempted)
	require.Len(t, saved, 2)
	assert.Equal(t, hook.DeliverySent, saved[0].Status)
	assert.Equal(t, 2, saved[0].Attempts)
	assert.Equal(t, hook.DeliveryDead, saved[1].Status)
	claims.AssertExpectations(t)
}

func TestDispatcher_ClaimedElsewhere(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	h := newTestHook(t, tenantID, hook.ContentTypeJSON, hook.Event{EntityName: "LOAN", ActionName: "*"})
	hooks := new(testutil.MockHookRepository)
	deliveries := new(testutil.MockHookDeliveryRepository)
	claims := new(testutil.MockIdempotencyStore)
	sender := &stubSender{status: 200}
	hooks.On("FindActive", ctx, tenantID).Return([]hook.Hook{*h}, nil)
	deliveries.On("Save", ctx, mock.Anything).Return(nil).Once()
	claims.On("MarkProcessed", ctx, mock.AnythingOfType("string"), mock.Anything).Return(false, nil)

	d := NewDispatcher(hooks, deliveries, sender, claims, DispatcherConfig{}, nil)
	require.NoError(t, d.Handle(ctx, processedEvent(tenantID, "LOAN", "DISBURSE")))

	assert.Empty(t, sender.requests)
	deliveries.AssertExpectations(t)
}
