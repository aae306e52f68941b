package telemetry

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fincore/backend/internal/domain/accounting"
	"github.com/fincore/backend/internal/domain/portfolio"
	"github.com/fincore/backend/internal/infrastructure/config"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewProvider_AllSignalsDisabled(t *testing.T) {
	p, err := NewProvider(context.Background(), config.TelemetryConfig{ServiceName: "fincore-test"}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, p.TracingEnabled())
	assert.Nil(t, p.LoggerProvider())
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestNewProfiler(t *testing.T) {
	t.Run("disabled is a no-op", func(t *testing.T) {
		p, err := NewProfiler(ProfilerConfig{}, zap.NewNop())
		require.NoError(t, err)
		assert.False(t, p.IsEnabled())
		assert.NoError(t, p.Stop())
		assert.NoError(t, p.Stop())
	})

	t.Run("requires a server address", func(t *testing.T) {
		_, err := NewProfiler(ProfilerConfig{Enabled: true, ApplicationName: "fincore"}, zap.NewNop())
		assert.ErrorContains(t, err, "server address")
	})

	t.Run("requires an application name", func(t *testing.T) {
		_, err := NewProfiler(ProfilerConfig{Enabled: true, ServerAddress: "http://localhost:4040"}, zap.NewNop())
		assert.ErrorContains(t, err, "application name")
	})
}

func TestSampler(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), sampler(1).Description())
	assert.Equal(t, sdktrace.NeverSample().Description(), sampler(0).Description())
	assert.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased{0.25}")
}

type recordingExporter struct {
	mu     sync.Mutex
	bodies []string
}

func (e *recordingExporter) Export(_ context.Context, records []sdklog.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, r := range records {
		e.bodies = append(e.bodies, r.Body().AsString())
	}
	return nil
}

func (e *recordingExporter) Shutdown(context.Context) error   { return nil }
func (e *recordingExporter) ForceFlush(context.Context) error { return nil }

func TestBridgeLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	base := zap.New(core)

	assert.Same(t, base, BridgeLogger(base, nil, "fincore", zapcore.InfoLevel))

	exporter := &recordingExporter{}
	provider := sdklog.NewLoggerProvider(sdklog.WithProcessor(sdklog.NewSimpleProcessor(exporter)))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	logger := BridgeLogger(base, provider, "fincore", zapcore.WarnLevel)
	logger.Info("accrual run started")
	logger.Warn("accrual skipped closed period")

	assert.Equal(t, 2, logs.Len(), "local output keeps every level")
	exporter.mu.Lock()
	defer exporter.mu.Unlock()
	assert.Equal(t, []string{"accrual skipped closed period"}, exporter.bodies)
}

func TestStartSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	ctx, span := StartSpan(context.Background(), "accruals.run")
	assert.NotEmpty(t, TraceID(ctx))
	EndSpan(span, errors.New("boom"))

	_, second := StartSpan(context.Background(), "hooks.deliver")
	EndSpan(second, nil)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "accruals.run", spans[0].Name())
	assert.Equal(t, "Error", spans[0].Status().Code.String())
	assert.Equal(t, "Ok", spans[1].Status().Code.String())

	assert.Empty(t, TraceID(context.Background()))
}

func TestMetrics_HTTPAndJobs(t *testing.T) {
	m := NewMetrics()

	done := m.RequestStarted()
	assert.Equal(t, float64(1), testutil.ToFloat64(m.httpInFlight))
	done()
	assert.Equal(t, float64(0), testutil.ToFloat64(m.httpInFlight))

	m.ObserveHTTP("GET", "/api/v1/loans/:id", 200, 20*time.Millisecond)
	m.ObserveHTTP("GET", "/api/v1/loans/:id", 200, 30*time.Millisecond)
	m.ObserveHTTP("POST", "/api/v1/loans", 400, time.Millisecond)
	assert.Equal(t, float64(2), testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/v1/loans/:id", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.httpRequests.WithLabelValues("POST", "/api/v1/loans", "400")))

	m.ObserveJob("INTEREST_ACCRUAL", "COMPLETED", time.Second)
	m.ObserveJob("INTEREST_ACCRUAL", "FAILED", time.Second)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.jobRuns.WithLabelValues("INTEREST_ACCRUAL", "FAILED")))
}

func TestMetrics_ObserveDelivery(t *testing.T) {
	m := NewMetrics()
	m.ObserveDelivery(0, time.Second, errors.New("connection refused"))
	m.ObserveDelivery(204, time.Millisecond, nil)
	m.ObserveDelivery(302, time.Millisecond, nil)
	m.ObserveDelivery(410, time.Millisecond, errors.New("gone"))
	m.ObserveDelivery(503, time.Millisecond, errors.New("unavailable"))

	for _, result := range []string{"error", "2xx", "3xx", "4xx", "5xx"} {
		assert.Equal(t, float64(1), testutil.ToFloat64(m.hookDeliveries.WithLabelValues(result)), result)
	}
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, m.RegisterDB("fincore", db))
	m.ObserveHTTP("GET", "/health", 200, time.Millisecond)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "fincore_http_requests_total")
	assert.Contains(t, string(body), `go_sql_open_connections{db_name="fincore"}`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestBusinessMetrics_Handle(t *testing.T) {
	m := NewMetrics()
	h := NewBusinessMetrics(m)
	ctx := context.Background()

	assert.ElementsMatch(t, []string{
		portfolio.EventTypeLoanStatusChanged,
		portfolio.EventTypeLoanTransaction,
		accounting.EventTypeJournalPosted,
		accounting.EventTypeJournalReversed,
	}, h.EventTypes())

	require.NoError(t, h.Handle(ctx, &portfolio.LoanStatusChangedEvent{From: portfolio.LoanApproved, To: portfolio.LoanActive}))
	require.NoError(t, h.Handle(ctx, &portfolio.LoanTransactionEvent{
		TransactionType: portfolio.TxnRepayment, Amount: decimal.RequireFromString("250.50"), Currency: "KES",
	}))
	require.NoError(t, h.Handle(ctx, &portfolio.LoanTransactionEvent{
		TransactionType: portfolio.TxnRepayment, Amount: decimal.NewFromInt(100), Currency: "KES",
	}))
	require.NoError(t, h.Handle(ctx, &accounting.JournalPostedEvent{Currency: "KES", Amount: decimal.NewFromInt(1000), Manual: true}))
	require.NoError(t, h.Handle(ctx, &accounting.JournalPostedEvent{Currency: "KES", Amount: decimal.NewFromInt(50)}))
	require.NoError(t, h.Handle(ctx, &accounting.JournalReversedEvent{}))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.loanTransitions.WithLabelValues("APPROVED", "ACTIVE")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.loanTransactions.WithLabelValues("REPAYMENT", "KES")))
	assert.InDelta(t, 350.5, testutil.ToFloat64(m.loanAmounts.WithLabelValues("REPAYMENT", "KES")), 1e-9)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.journalsPosted.WithLabelValues("manual")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.journalsPosted.WithLabelValues("system")))
	assert.Equal(t, float64(1050), testutil.ToFloat64(m.journalAmounts.WithLabelValues("KES")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.journalsReversed))
}
