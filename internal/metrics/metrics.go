// Package metrics exposes engine activity to prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/LeJamon/goEscrowd/internal/core/ledger/entry"
	"github.com/LeJamon/goEscrowd/internal/core/tx"
)

const namespace = "escrowd"

// Metrics holds the escrowd collectors and the registry they live in.
type Metrics struct {
	registry *prometheus.Registry

	transactions *prometheus.CounterVec
	applySeconds *prometheus.HistogramVec
	openOffers   prometheus.Gauge
	wsClients    prometheus.Gauge
}

// New creates the collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_total",
			Help:      "Engine results by transaction type and result code.",
		}, []string{"type", "result"}),
		applySeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "apply_seconds",
			Help:      "Time from submission to engine result.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"type"}),
		openOffers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "open_offers",
			Help:      "Offers made and not yet taken.",
		}),
		wsClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ws_clients",
			Help:      "Connected websocket subscribers.",
		}),
	}
	m.registry.MustRegister(
		m.transactions,
		m.applySeconds,
		m.openOffers,
		m.wsClients,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry the collectors are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// OnResult implements tx.Listener.
func (m *Metrics) OnResult(t tx.Transaction, result tx.ApplyResult) {
	txType := t.TxType().String()
	m.transactions.WithLabelValues(txType, result.Result.String()).Inc()
	m.applySeconds.WithLabelValues(txType).Observe(result.Duration.Seconds())

	if !result.Applied || result.Metadata == nil {
		return
	}
	for _, node := range result.Metadata.AffectedNodes {
		if node.LedgerEntryType != entry.TypeOffer.String() {
			continue
		}
		switch node.NodeType {
		case "CreatedNode":
			m.openOffers.Inc()
		case "DeletedNode":
			m.openOffers.Dec()
		}
	}
}

// SetOpenOffers seeds the open offer gauge from stored state.
func (m *Metrics) SetOpenOffers(n int) {
	m.openOffers.Set(float64(n))
}

// WSClientConnected tracks a websocket subscriber joining.
func (m *Metrics) WSClientConnected() { m.wsClients.Inc() }

// WSClientDisconnected tracks a websocket subscriber leaving.
func (m *Metrics) WSClientDisconnected() { m.wsClients.Dec() }
