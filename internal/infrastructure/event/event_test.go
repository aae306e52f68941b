package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fincore/backend/internal/domain/shared"
	"github.com/fincore/backend/internal/infrastructure/cache"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Loan", uuid.New(), uuid.New())}
}

type recordingHandler struct {
	types []string
	mu    sync.Mutex
	seen  []shared.DomainEvent
	err   error
	panic bool
}

func (h *recordingHandler) EventTypes() []string { return h.types }

func (h *recordingHandler) Handle(_ context.Context, e shared.DomainEvent) error {
	if h.panic {
		panic("handler exploded")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seen = append(h.seen, e)
	return h.err
}

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.seen)
}

func TestInMemoryEventBus_Sync(t *testing.T) {
	ctx := context.Background()
	bus := NewInMemoryEventBus(zap.NewNop())

	loans := &recordingHandler{types: []string{"LoanStatusChanged"}}
	all := &recordingHandler{}
	failing := &recordingHandler{types: []string{"LoanStatusChanged"}, err: errors.New("boom")}
	panicking := &recordingHandler{types: []string{"LoanStatusChanged"}, panic: true}
	bus.Subscribe(loans)
	bus.Subscribe(all)
	bus.Subscribe(failing)
	bus.Subscribe(panicking)

	t.Run("routes by type and to wildcard handlers", func(t *testing.T) {
		require.NoError(t, bus.Publish(ctx, newTestEvent("LoanStatusChanged"), newTestEvent("JournalTransactionPosted")))
		assert.Equal(t, 1, loans.count())
		assert.Equal(t, 2, all.count())
		assert.Equal(t, 1, failing.count())
	})

	t.Run("unsubscribed handlers stop receiving", func(t *testing.T) {
		bus.Unsubscribe(loans)
		require.NoError(t, bus.Publish(ctx, newTestEvent("LoanStatusChanged")))
		assert.Equal(t, 1, loans.count())
		assert.Equal(t, 3, all.count())
	})

	t.Run("explicit types override the handler's own", func(t *testing.T) {
		h := &recordingHandler{types: []string{"Ignored"}}
		bus.Subscribe(h, "CommandProcessed")
		require.NoError(t, bus.Publish(ctx, newTestEvent("CommandProcessed"), newTestEvent("Ignored")))
		assert.Equal(t, 1, h.count())
	})
}

func TestInMemoryEventBus_Async(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop(), WithAsyncDispatch(2, 16))
	h := &recordingHandler{types: []string{"LoanTransactionRecorded"}}
	bus.Subscribe(h)

	require.NoError(t, bus.Start(context.Background()))
	require.NoError(t, bus.Start(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	for i := 0; i < 10; i++ {
		require.NoError(t, bus.Publish(ctx, newTestEvent("LoanTransactionRecorded")))
	}
	// queued events outlive the publisher's context
	cancel()

	stopCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	require.NoError(t, bus.Stop(stopCtx))
	assert.Equal(t, 10, h.count())

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("LoanTransactionRecorded")))
	assert.Equal(t, 11, h.count(), "stopped bus dispatches inline")
	assert.NoError(t, bus.Stop(context.Background()))
}

func TestHandlerRegistry(t *testing.T) {
	r := NewHandlerRegistry()
	a := &recordingHandler{}
	b := &recordingHandler{}

	r.Register(a, "X", "Y")
	r.Register(a, "X")
	r.Register(b)

	assert.Equal(t, []shared.EventHandler{a, b}, r.GetHandlers("X"))
	assert.Equal(t, []shared.EventHandler{b}, r.GetHandlers("Z"))

	r.Unregister(a)
	assert.Equal(t, []shared.EventHandler{b}, r.GetHandlers("X"))
	assert.Empty(t, r.byType)
}

type brokenStore struct{ shared.IdempotencyStore }

func (brokenStore) MarkProcessed(context.Context, string, time.Duration) (bool, error) {
	return false, errors.New("redis down")
}

func TestIdempotentHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("handles each event once", func(t *testing.T) {
		store := cache.NewInMemoryIdempotencyStore()
		defer store.Close()
		inner := &recordingHandler{types: []string{"CommandProcessed"}}
		h := NewIdempotentHandler(inner, store, 0, zap.NewNop())

		e := newTestEvent("CommandProcessed")
		require.NoError(t, h.Handle(ctx, e))
		require.NoError(t, h.Handle(ctx, e))
		require.NoError(t, h.Handle(ctx, newTestEvent("CommandProcessed")))

		assert.Equal(t, 2, inner.count())
		assert.Equal(t, IdempotencyStats{Processed: 2, Duplicates: 1}, h.Stats())
		assert.Equal(t, []string{"CommandProcessed"}, h.EventTypes())
	})

	t.Run("failure releases the claim", func(t *testing.T) {
		store := cache.NewInMemoryIdempotencyStore()
		defer store.Close()
		inner := &recordingHandler{err: errors.New("hook endpoint down")}
		h := NewIdempotentHandler(inner, store, time.Hour, zap.NewNop())

		e := newTestEvent("CommandProcessed")
		require.Error(t, h.Handle(ctx, e))

		inner.err = nil
		require.NoError(t, h.Handle(ctx, e))
		assert.Equal(t, 2, inner.count())
		assert.Equal(t, int64(1), h.Stats().Failed)
	})

	t.Run("store errors do not drop events", func(t *testing.T) {
		inner := &recordingHandler{}
		h := NewIdempotentHandler(inner, brokenStore{}, time.Hour, zap.NewNop())
		require.NoError(t, h.Handle(ctx, newTestEvent("CommandProcessed")))
		assert.Equal(t, 1, inner.count())
	})
}
