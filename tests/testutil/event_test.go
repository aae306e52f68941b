package testutil

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTestEvent(t *testing.T) {
	tenantID := uuid.New()
	e := NewTestEvent("LoanStatusChanged", tenantID)

	assert.NotEqual(t, uuid.Nil, e.EventID())
	assert.Equal(t, "LoanStatusChanged", e.EventType())
	assert.Equal(t, tenantID, e.TenantID())
	assert.False(t, e.OccurredAt().IsZero())
}

func TestRecordingPublisher(t *testing.T) {
	p := NewRecordingPublisher()
	tenantID := uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, p.Publish(context.Background(), NewTestEvent("JournalTransactionPosted", tenantID)))
		}()
	}
	wg.Wait()

	require.Len(t, p.Events(), 10)
	for _, typ := range p.Types() {
		assert.Equal(t, "JournalTransactionPosted", typ)
	}

	events := p.Events()
	events[0] = nil
	assert.NotNil(t, p.Events()[0], "Events returns a copy")
}
