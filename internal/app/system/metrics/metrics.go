// Package metrics exposes Prometheus counters for the reminder jobs so a
// cron run that quietly fails per-recipient is still visible on a dashboard.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the portal's counters on a private registry so tests can
// build isolated instances.
type Metrics struct {
	registry *prometheus.Registry

	RemindersSent    *prometheus.CounterVec
	RemindersFailed  *prometheus.CounterVec
	RemindersSkipped *prometheus.CounterVec
}

// New creates a Metrics instance with its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RemindersSent: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "researchdesk_reminders_sent_total",
			Help: "Reminder emails delivered, by job kind.",
		}, []string{"kind"}),
		RemindersFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "researchdesk_reminders_failed_total",
			Help: "Reminder emails that failed to send, by job kind.",
		}, []string{"kind"}),
		RemindersSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "researchdesk_reminders_skipped_total",
			Help: "Reminder emails skipped because they were already sent for the window, by job kind.",
		}, []string{"kind"}),
	}
}

// Handler returns the /metrics HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
