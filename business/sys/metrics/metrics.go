// Package metrics constructs the metrics the application will track.
package metrics

import (
	"net/http"
	"strings"

	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ledger"

// Metrics represents the set of metrics we gather. The registry is owned by
// the value so tests can construct as many as they need.
type Metrics struct {
	registry       *prometheus.Registry
	Requests       prometheus.Counter
	Errors         prometheus.Counter
	Panics         prometheus.Counter
	BlocksMined    prometheus.Counter
	BlocksAccepted prometheus.Counter
	ChainsReplaced prometheus.Counter
}

// New constructs the metrics and registers them along with the process and
// Go runtime collectors.
func New() *Metrics {
	counter := func(subsystem string, name string, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		})
	}

	m := Metrics{
		registry:       prometheus.NewRegistry(),
		Requests:       counter("http", "requests_total", "Total number of requests handled."),
		Errors:         counter("http", "errors_total", "Total number of requests that failed."),
		Panics:         counter("http", "panics_total", "Total number of handler panics recovered."),
		BlocksMined:    counter("chain", "blocks_mined_total", "Blocks mined by this node, on request or by the auto-miner."),
		BlocksAccepted: counter("chain", "blocks_accepted_total", "Blocks proposed by peers and appended."),
		ChainsReplaced: counter("chain", "replacements_total", "Times the chain was replaced by a peer's chain."),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Requests,
		m.Errors,
		m.Panics,
		m.BlocksMined,
		m.BlocksAccepted,
		m.ChainsReplaced,
	)

	return &m
}

// Observe updates the chain counters from the events raised by the state.
// It has the signature of the event handler so it can be called from the
// same handler the application logs with.
func (m *Metrics) Observe(v string, args ...any) {
	switch {
	case strings.HasPrefix(v, state.EventBlockMined):
		m.BlocksMined.Inc()
	case strings.HasPrefix(v, state.EventBlockAccepted):
		m.BlocksAccepted.Inc()
	case strings.HasPrefix(v, state.EventChainReplaced):
		m.ChainsReplaced.Inc()
	}
}

// Register adds the collector to the registry.
func (m *Metrics) Register(c prometheus.Collector) error {
	return m.registry.Register(c)
}

// Handler returns the handler serving the metrics in the Prometheus text
// format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// =============================================================================

// Ledger is the behavior the collector needs to read the node's state.
type Ledger interface {
	QueryChainLength() int
	QueryMempoolLength() int
	RetrieveKnownPeers() []peer.Peer
}

// LedgerCollector reports the current size of the chain, the pending pool
// and the peer set on every scrape.
type LedgerCollector struct {
	ledger      Ledger
	chainLength *prometheus.Desc
	poolSize    *prometheus.Desc
	knownPeers  *prometheus.Desc
}

// NewLedgerCollector constructs a collector for the specified ledger.
func NewLedgerCollector(ledger Ledger) *LedgerCollector {
	return &LedgerCollector{
		ledger: ledger,
		chainLength: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "chain", "length"),
			"Number of blocks in the chain, genesis included.",
			nil, nil,
		),
		poolSize: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "mempool", "size"),
			"Number of pending transactions.",
			nil, nil,
		),
		knownPeers: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "peers", "known"),
			"Number of known peers.",
			nil, nil,
		),
	}
}

// Describe implements the prometheus.Collector interface.
func (c *LedgerCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.chainLength
	ch <- c.poolSize
	ch <- c.knownPeers
}

// Collect implements the prometheus.Collector interface.
func (c *LedgerCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.chainLength, prometheus.GaugeValue, float64(c.ledger.QueryChainLength()))
	ch <- prometheus.MustNewConstMetric(c.poolSize, prometheus.GaugeValue, float64(c.ledger.QueryMempoolLength()))
	ch <- prometheus.MustNewConstMetric(c.knownPeers, prometheus.GaugeValue, float64(len(c.ledger.RetrieveKnownPeers())))
}
