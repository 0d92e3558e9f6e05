// Package telemetry holds the Prometheus metrics of the service.
// Everything is registered against the default registry and served on GET /metrics.
package telemetry

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics are labelled by route template, never the raw URL.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed, by method, route template, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, by method and route template.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)
)

// BootstrapRunsTotal counts tenant bootstrap runs.
//
//	sum by (outcome) (rate(tenant_bootstrap_runs_total[1h]))
var BootstrapRunsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "tenant_bootstrap_runs_total",
		Help: "Tenant bootstrap runs, by pending intent kind and outcome.",
	},
	[]string{"intent", "outcome"},
)

// MailSentTotal counts outgoing mail by kind (contact, signup, recovery, ...) and result.
var MailSentTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "mail_sent_total",
		Help: "Outgoing mail attempts, by kind and result.",
	},
	[]string{"kind", "result"},
)

var DBOpenConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "db_open_connections",
		Help: "Current number of open connections in the pgx pool.",
	},
)

// StartDBStatsCollector samples the pool every 30s until ctx is done.
func StartDBStatsCollector(ctx context.Context, pool *pgxpool.Pool) {
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				DBOpenConnections.Set(float64(pool.Stat().TotalConns()))
			}
		}
	}()
}
