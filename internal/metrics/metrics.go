package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ── HTTP request metrics (RED method) ──────────────────────────────────

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "apy_tracker",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "path", "status_code"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "apy_tracker",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})

	HTTPRequestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "apy_tracker",
		Subsystem: "http",
		Name:      "requests_in_flight",
		Help:      "Number of HTTP requests currently being processed.",
	})
)

// ── Ingestion metrics ──────────────────────────────────────────────────

var (
	IngestCyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "apy_tracker",
		Subsystem: "ingest",
		Name:      "cycles_total",
		Help:      "Total ingestion cycles by final outcome.",
	}, []string{"status"})

	IngestLastSuccess = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "apy_tracker",
		Subsystem: "ingest",
		Name:      "last_success_timestamp",
		Help:      "Unix timestamp of the last successful ingestion cycle.",
	})

	SamplesUpsertedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "apy_tracker",
		Subsystem: "ingest",
		Name:      "samples_upserted_total",
		Help:      "Metric samples written, split by insert vs update.",
	}, []string{"op"})

	SamplesSweptTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "apy_tracker",
		Subsystem: "ingest",
		Name:      "samples_swept_total",
		Help:      "Samples deleted by the retention sweep.",
	})

	SourceFetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "apy_tracker",
		Subsystem: "source",
		Name:      "fetch_total",
		Help:      "Per-source fetch outcomes.",
	}, []string{"source", "status"})
)

// ── Business metrics ───────────────────────────────────────────────────

var (
	DepositsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "apy_tracker",
		Subsystem: "business",
		Name:      "deposits_total",
		Help:      "Deposits recorded through the earnings endpoint.",
	})

	TrackedPools = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "apy_tracker",
		Subsystem: "business",
		Name:      "tracked_pools",
		Help:      "Distinct pools with at least one stored sample.",
	})
)

// Reporter adapts the prometheus counters to the reporting ports consumed by
// the ingest scheduler and the source fallback chain.
type Reporter struct{}

func NewReporter() *Reporter { return &Reporter{} }

func (Reporter) CycleSucceeded(source string, inserted, updated int) {
	IngestCyclesTotal.WithLabelValues("success").Inc()
	IngestLastSuccess.Set(float64(time.Now().Unix()))
	SamplesUpsertedTotal.WithLabelValues("insert").Add(float64(inserted))
	SamplesUpsertedTotal.WithLabelValues("update").Add(float64(updated))
}

func (Reporter) CycleFailed() {
	IngestCyclesTotal.WithLabelValues("failed").Inc()
}

func (Reporter) SamplesSwept(n int64) {
	SamplesSweptTotal.Add(float64(n))
}

func (Reporter) SourceSucceeded(name string, samples int) {
	SourceFetchTotal.WithLabelValues(name, "success").Inc()
}

func (Reporter) SourceFailed(name string) {
	SourceFetchTotal.WithLabelValues(name, "failed").Inc()
}
