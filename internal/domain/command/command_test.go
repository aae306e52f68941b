package command

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapper(t *testing.T) {
	tenant, user := uuid.New(), uuid.New()
	w := NewWrapper(tenant, user, "loan", "disburse", "/loans/1/disburse", map[string]string{"date": "2024-01-01"})
	assert.Equal(t, "LOAN", w.EntityName)
	assert.Equal(t, "DISBURSE_LOAN", w.Permission())
	assert.JSONEq(t, `{"date":"2024-01-01"}`, string(w.Payload))
	require.NoError(t, w.Validate())

	w = w.WithIdempotencyKey("  abc  ")
	assert.Equal(t, "abc", w.IdempotencyKey)

	assert.Error(t, Wrapper{EntityName: "LOAN", ActionName: "CREATE"}.Validate())
	assert.Error(t, Wrapper{TenantID: tenant}.Validate())
}

func TestNewSource(t *testing.T) {
	loanID := uuid.New()
	w := NewWrapper(uuid.New(), uuid.New(), "LOAN", "CREATE", "/loans", nil)

	s := NewSource(w, &Result{ResourceID: &loanID, LoanID: &loanID, Body: map[string]string{"status": "ok"}}, nil)
	assert.Equal(t, StatusProcessed, s.Status)
	assert.Equal(t, loanID, *s.ResourceID)
	assert.JSONEq(t, `{"status":"ok"}`, string(s.Result))

	ev := NewProcessedEvent(s)
	assert.Equal(t, EventTypeCommandProcessed, ev.EventType())
	assert.Equal(t, loanID, ev.AggregateID())
	_, err := json.Marshal(ev)
	require.NoError(t, err)

	failed := NewSource(w, nil, errors.New("boom"))
	assert.Equal(t, StatusError, failed.Status)
	assert.Equal(t, "boom", failed.Error)
	assert.Nil(t, failed.ResourceID)
}
