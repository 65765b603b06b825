// Package metrics は認証結果とガード判定の Prometheus メトリクスを提供します。
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yourusername/authgate/internal/auth"
	"github.com/yourusername/authgate/internal/guard"
)

// Metrics は authgate 固有のメトリクスです。
type Metrics struct {
	registry *prometheus.Registry

	AuthOutcomes   *prometheus.CounterVec
	AuthDuration   *prometheus.HistogramVec
	GuardDecisions *prometheus.CounterVec
}

// New は専用レジストリを作成してメトリクスを登録します。
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,
		AuthOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authgate_auth_outcomes_total",
				Help: "Total number of auth gateway outcomes by operation and status code",
			},
			[]string{"operation", "status"},
		),
		AuthDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "authgate_auth_duration_seconds",
				Help:    "Auth gateway call latency by operation",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		GuardDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authgate_guard_decisions_total",
				Help: "Total number of route guard decisions by page and state",
			},
			[]string{"page", "state"},
		),
	}
	registry.MustRegister(m.AuthOutcomes, m.AuthDuration, m.GuardDecisions)
	return m
}

// Handler は /metrics 用のハンドラーを返します。
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveDecision は guard.Observer を実装します。
func (m *Metrics) ObserveDecision(page guard.Page, state guard.State) {
	m.GuardDecisions.WithLabelValues(page.String(), state.String()).Inc()
}

// InstrumentGateway は Gateway の呼び出しを計測するラッパーを返します。
func (m *Metrics) InstrumentGateway(next auth.Gateway) auth.Gateway {
	return &instrumentedGateway{next: next, metrics: m}
}

type instrumentedGateway struct {
	next    auth.Gateway
	metrics *Metrics
}

func (g *instrumentedGateway) Execute(ctx context.Context, op auth.Operation, email, password string) auth.Outcome {
	start := time.Now()
	out := g.next.Execute(ctx, op, email, password)
	g.metrics.AuthDuration.WithLabelValues(string(op)).Observe(time.Since(start).Seconds())
	g.metrics.AuthOutcomes.WithLabelValues(string(op), strconv.Itoa(out.StatusCode)).Inc()
	return out
}

// SignOut は内側の Gateway が auth.SignOuter の場合のみ委譲します。
func (g *instrumentedGateway) SignOut(ctx context.Context, accessToken string) error {
	if so, ok := g.next.(auth.SignOuter); ok {
		return so.SignOut(ctx, accessToken)
	}
	return nil
}
