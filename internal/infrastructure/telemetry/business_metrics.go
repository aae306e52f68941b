package telemetry

import (
	"context"

	"github.com/fincore/backend/internal/domain/accounting"
	"github.com/fincore/backend/internal/domain/portfolio"
	"github.com/fincore/backend/internal/domain/shared"
)

var _ shared.EventHandler = (*BusinessMetrics)(nil)

// BusinessMetrics turns loan and journal events into Prometheus counters
type BusinessMetrics struct {
	metrics *Metrics
}

// NewBusinessMetrics creates the event handler
func NewBusinessMetrics(m *Metrics) *BusinessMetrics {
	return &BusinessMetrics{metrics: m}
}

// EventTypes implements shared.EventHandler
func (h *BusinessMetrics) EventTypes() []string {
	return []string{
		portfolio.EventTypeLoanStatusChanged,
		portfolio.EventTypeLoanTransaction,
		accounting.EventTypeJournalPosted,
		accounting.EventTypeJournalReversed,
	}
}

// Handle implements shared.EventHandler
func (h *BusinessMetrics) Handle(_ context.Context, event shared.DomainEvent) error {
	m := h.metrics
	switch e := event.(type) {
	case *portfolio.LoanStatusChangedEvent:
		m.loanTransitions.WithLabelValues(string(e.From), string(e.To)).Inc()
	case *portfolio.LoanTransactionEvent:
		m.loanTransactions.WithLabelValues(string(e.TransactionType), e.Currency).Inc()
		if amount, _ := e.Amount.Float64(); amount > 0 {
			m.loanAmounts.WithLabelValues(string(e.TransactionType), e.Currency).Add(amount)
		}
	case *accounting.JournalPostedEvent:
		m.journalsPosted.WithLabelValues(journalOrigin(e.Manual)).Inc()
		if amount, _ := e.Amount.Float64(); amount > 0 {
			m.journalAmounts.WithLabelValues(e.Currency).Add(amount)
		}
	case *accounting.JournalReversedEvent:
		m.journalsReversed.Inc()
	}
	return nil
}

func journalOrigin(manual bool) string {
	if manual {
		return "manual"
	}
	return "system"
}
