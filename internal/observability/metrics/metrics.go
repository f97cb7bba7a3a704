package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/fx"
)

// Metrics exposes prometheus instruments for the reconciliation flow.
type Metrics struct {
	webhookEvents *prometheus.CounterVec
	ledgerFailed  prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		webhookEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "timberbase",
			Subsystem: "billing",
			Name:      "webhook_events_total",
			Help:      "Webhook deliveries by normalized kind and processing outcome.",
		}, []string{"kind", "outcome"}),
		ledgerFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "timberbase",
			Subsystem: "billing",
			Name:      "ledger_write_failures_total",
			Help:      "Best-effort audit writes that failed and were dropped.",
		}),
	}
}

func (m *Metrics) RecordWebhookEvent(kind, outcome string) {
	if m == nil {
		return
	}
	m.webhookEvents.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) RecordLedgerFailure() {
	if m == nil {
		return
	}
	m.ledgerFailed.Inc()
}

var Module = fx.Module("observability.metrics",
	fx.Provide(New),
)
