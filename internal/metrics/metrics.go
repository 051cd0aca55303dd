// Package metrics records batch outcomes in a Prometheus registry and pushes
// them to a Pushgateway at the end of a run.
package metrics

import (
	"context"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/imamik/hsmv/internal/util/async"
)

// JobName is the Pushgateway job label.
const JobName = "hsmv"

const (
	resultSuccess = "success"
	resultError   = "error"
	resultSkipped = "skipped"
)

// Recorder owns a registry with the batch metrics. It implements
// async.Tracker so it can be combined with a progress tracker through
// async.MultiTracker.
type Recorder struct {
	registry *prometheus.Registry

	itemsTotal    *prometheus.CounterVec
	batchDuration *prometheus.HistogramVec
	batchesTotal  *prometheus.CounterVec

	mu   sync.Mutex
	kind string
}

var _ async.Tracker = (*Recorder)(nil)

// NewRecorder creates a Recorder with its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		itemsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "hsmv",
				Subsystem: "batch",
				Name:      "items_total",
				Help:      "Total number of batch items by kind and result",
			},
			[]string{"kind", "result"},
		),
		batchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "hsmv",
				Subsystem: "batch",
				Name:      "duration_seconds",
				Help:      "Duration of a batch in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~51s
			},
			[]string{"kind"},
		),
		batchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "hsmv",
				Subsystem: "batch",
				Name:      "runs_total",
				Help:      "Total number of batches by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
	}
	r.registry.MustRegister(r.itemsTotal, r.batchDuration, r.batchesTotal)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Begin implements async.Tracker.
func (r *Recorder) Begin(info async.BatchInfo) {
	r.mu.Lock()
	r.kind = info.Kind
	r.mu.Unlock()
}

// Step implements async.Tracker.
func (r *Recorder) Step(_ string, err error) {
	r.mu.Lock()
	kind := r.kind
	r.mu.Unlock()

	result := resultSuccess
	if err != nil {
		result = resultError
	}
	r.itemsTotal.WithLabelValues(kind, result).Inc()
}

// End implements async.Tracker.
func (r *Recorder) End(summary async.Summary) {
	if summary.Skipped > 0 {
		r.itemsTotal.WithLabelValues(summary.Kind, resultSkipped).Add(float64(summary.Skipped))
	}
	r.batchDuration.WithLabelValues(summary.Kind).Observe(summary.Duration.Seconds())

	outcome := resultSuccess
	if !summary.OK() {
		outcome = resultError
	}
	r.batchesTotal.WithLabelValues(summary.Kind, outcome).Inc()
}

// Push sends the registry to the Pushgateway at url, replacing earlier
// pushes of the same job.
func (r *Recorder) Push(ctx context.Context, url string) error {
	err := push.New(url, JobName).
		Gatherer(r.registry).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", url, err)
	}
	return nil
}
