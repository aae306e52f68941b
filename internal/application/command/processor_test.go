package command

import (
	"context"
	"errors"
	"testing"

	"github.com/fincore/backend/internal/domain/command"
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/fincore/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func disburseWrapper(tenantID uuid.UUID, key string) command.Wrapper {
	loanID := uuid.New()
	return command.NewWrapper(tenantID, uuid.New(), "LOAN", "DISBURSE", "/loans/"+loanID.String()+"/disburse",
		map[string]string{"actual_disbursement_date": "2024-01-01"}).
		WithResource(loanID).
		WithIdempotencyKey(key)
}

func TestProcessor_Execute(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("audits and publishes a success", func(t *testing.T) {
		sources := new(testutil.MockCommandSourceRepository)
		publisher := testutil.NewRecordingPublisher()
		w := disburseWrapper(tenantID, "")
		sources.On("Save", ctx, mock.MatchedBy(func(s *command.Source) bool {
			return s.Status == command.StatusProcessed && s.EntityName == "LOAN" && *s.LoanID == *w.ResourceID
		})).Return(nil).Once()

		out, err := NewProcessor(sources, nil, publisher, 0, nil).Execute(ctx, w, func(ctx context.Context) (*command.Result, error) {
			return &command.Result{LoanID: w.ResourceID, Body: map[string]string{"status": "ACTIVE"}}, nil
		})

		require.NoError(t, err)
		assert.False(t, out.IsReplay())
		assert.Equal(t, map[string]string{"status": "ACTIVE"}, out.Body)
		assert.Equal(t, []string{command.EventTypeCommandProcessed}, publisher.Types())
		ev := publisher.Events()[0].(*command.ProcessedEvent)
		assert.Equal(t, "DISBURSE", ev.ActionName)
		assert.JSONEq(t, `{"status":"ACTIVE"}`, string(ev.Result))
		sources.AssertExpectations(t)
	})

	t.Run("failure is audited and not published", func(t *testing.T) {
		sources := new(testutil.MockCommandSourceRepository)
		store := new(testutil.MockIdempotencyStore)
		publisher := testutil.NewRecordingPublisher()
		w := disburseWrapper(tenantID, "k-1")
		storeKey := "command:" + tenantID.String() + ":k-1"
		store.On("MarkProcessed", ctx, storeKey, shared.DefaultIdempotencyTTL).Return(true, nil)
		store.On("Release", ctx, storeKey).Return(nil).Once()
		sources.On("Save", ctx, mock.MatchedBy(func(s *command.Source) bool {
			return s.Status == command.StatusError && s.Error == "nope" && s.IdempotencyKey == ""
		})).Return(nil).Once()

		_, err := NewProcessor(sources, store, publisher, 0, nil).Execute(ctx, w, func(ctx context.Context) (*command.Result, error) {
			return nil, shared.NewDomainError("LOAN_DATE_IN_FUTURE", "nope")
		})

		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "LOAN_DATE_IN_FUTURE", de.Code)
		assert.Empty(t, publisher.Events())
		store.AssertExpectations(t)
		sources.AssertExpectations(t)
	})

	t.Run("repeated key replays the stored result", func(t *testing.T) {
		sources := new(testutil.MockCommandSourceRepository)
		store := new(testutil.MockIdempotencyStore)
		w := disburseWrapper(tenantID, "k-2")
		stored := command.NewSource(w, &command.Result{Body: map[string]int{"n": 1}}, nil)
		store.On("MarkProcessed", ctx, mock.Anything, shared.DefaultIdempotencyTTL).Return(false, nil)
		sources.On("FindByIdempotencyKey", ctx, tenantID, "k-2").Return(stored, nil)

		ran := false
		out, err := NewProcessor(sources, store, nil, 0, nil).Execute(ctx, w, func(ctx context.Context) (*command.Result, error) {
			ran = true
			return nil, nil
		})

		require.NoError(t, err)
		assert.False(t, ran)
		assert.True(t, out.IsReplay())
		assert.Equal(t, stored.ID, out.CommandID)
		assert.JSONEq(t, `{"n":1}`, string(out.Replayed))
		sources.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("key still in flight", func(t *testing.T) {
		sources := new(testutil.MockCommandSourceRepository)
		store := new(testutil.MockIdempotencyStore)
		w := disburseWrapper(tenantID, "k-3")
		store.On("MarkProcessed", ctx, mock.Anything, mock.Anything).Return(false, nil)
		sources.On("FindByIdempotencyKey", ctx, tenantID, "k-3").Return(nil, shared.NotFound("CommandSource"))

		_, err := NewProcessor(sources, store, nil, 0, nil).Execute(ctx, w, func(ctx context.Context) (*command.Result, error) {
			return nil, nil
		})

		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "COMMAND_ALREADY_PROCESSED", de.Code)
	})

	t.Run("audit failure does not fail the command", func(t *testing.T) {
		sources := new(testutil.MockCommandSourceRepository)
		sources.On("Save", ctx, mock.Anything).Return(errors.New("db gone"))

		out, err := NewProcessor(sources, nil, nil, 0, nil).Execute(ctx, disburseWrapper(tenantID, ""), func(ctx context.Context) (*command.Result, error) {
			return &command.Result{}, nil
		})

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, out.CommandID)
	})

	t.Run("unroutable wrapper", func(t *testing.T) {
		_, err := NewProcessor(nil, nil, nil, 0, nil).Execute(ctx, command.Wrapper{TenantID: tenantID}, nil)
		require.Error(t, err)
	})
}

func TestAuditService_List(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	sources := new(testutil.MockCommandSourceRepository)
	src := command.NewSource(disburseWrapper(tenantID, ""), nil, nil)
	sources.On("FindAllForTenant", ctx, tenantID, mock.MatchedBy(func(f command.SourceFilter) bool {
		return f.EntityName == "LOAN" && f.From != nil && f.To != nil && f.To.Day() == 1 && f.To.Month() == 2
	})).Return([]command.Source{*src}, int64(1), nil)

	out, total, err := NewAuditService(sources).List(ctx, tenantID, AuditQuery{EntityName: "LOAN", From: "2024-01-01", To: "2024-01-31"})

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, out, 1)
	assert.JSONEq(t, `{"actual_disbursement_date":"2024-01-01"}`, string(out[0].Payload))

	_, _, err = NewAuditService(sources).List(ctx, tenantID, AuditQuery{From: "2024-02-01", To: "2024-01-01"})
	require.Error(t, err)
}
