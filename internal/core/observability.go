package core

import (
	"expvar"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsRecorder receives the outcome of each bulk positionlist operation.
type MetricsRecorder interface {
	Observe(op string, d time.Duration, err error)
}

// NopRecorder discards every observation.
type NopRecorder struct{}

// Observe implements MetricsRecorder.
func (NopRecorder) Observe(string, time.Duration, error) {}

// observe is deferred at the top of instrumented operations:
//
//	defer p.observe("matrix_copy", time.Now(), &err)
func (p *Positionlist) observe(op string, start time.Time, err *error) {
	p.metrics.Observe(op, time.Since(start), *err)
}

var expvarSeq uint64

// ExpvarRecorder publishes aggregate timing and result counters via expvar,
// for deployments that prefer process-local metrics without an external
// scrape target. Totals are kept in milliseconds per operation alongside
// success/error counters.
type ExpvarRecorder struct {
	name      string
	mu        sync.Mutex
	durations map[string]float64
	results   map[string]map[string]int64
}

// ExpvarSnapshot captures a read-only view of the recorded metrics.
type ExpvarSnapshot struct {
	DurationsMS map[string]float64          `json:"durations_ms_total"`
	Results     map[string]map[string]int64 `json:"results_total"`
	RecordedAt  time.Time                   `json:"recorded_at"`
}

// NewExpvarRecorder constructs an expvar-backed recorder and publishes it
// under the supplied name. When name is empty, a unique identifier is
// generated.
func NewExpvarRecorder(name string) *ExpvarRecorder {
	if name == "" {
		id := atomic.AddUint64(&expvarSeq, 1)
		name = fmt.Sprintf("positionlist_metrics_%d", id)
	}
	rec := &ExpvarRecorder{
		name:      name,
		durations: make(map[string]float64),
		results:   make(map[string]map[string]int64),
	}
	expvar.Publish(name, expvar.Func(func() any {
		return rec.Snapshot()
	}))
	return rec
}

// Name returns the expvar export name associated with the recorder.
func (r *ExpvarRecorder) Name() string {
	return r.name
}

// Snapshot returns an immutable copy of the aggregated metrics.
func (r *ExpvarRecorder) Snapshot() ExpvarSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	durations := make(map[string]float64, len(r.durations))
	for op, total := range r.durations {
		durations[op] = total
	}

	results := make(map[string]map[string]int64, len(r.results))
	for op, statusCounts := range r.results {
		cpy := make(map[string]int64, len(statusCounts))
		for status, count := range statusCounts {
			cpy[status] = count
		}
		results[op] = cpy
	}

	return ExpvarSnapshot{
		DurationsMS: durations,
		Results:     results,
		RecordedAt:  time.Now().UTC(),
	}
}

// Observe implements MetricsRecorder.
func (r *ExpvarRecorder) Observe(op string, d time.Duration, err error) {
	if op == "" {
		return
	}
	ms := float64(d) / float64(time.Millisecond)
	status := "success"
	if err != nil {
		status = "error"
	}

	r.mu.Lock()
	r.durations[op] += ms
	if _, ok := r.results[op]; !ok {
		r.results[op] = make(map[string]int64, 2)
	}
	r.results[op][status]++
	r.mu.Unlock()
}

// PrometheusRecorder exports operation timings and outcomes through a
// Prometheus registry.
type PrometheusRecorder struct {
	durations *prometheus.HistogramVec
	results   *prometheus.CounterVec
}

// NewPrometheusRecorder registers the operation metrics with reg. A nil
// registerer falls back to the default registry.
func NewPrometheusRecorder(reg prometheus.Registerer) (*PrometheusRecorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	rec := &PrometheusRecorder{
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "beamplan_operation_duration_seconds",
			Help:    "Duration of positionlist operations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "beamplan_operations_total",
			Help: "Positionlist operations by outcome.",
		}, []string{"op", "status"}),
	}
	if err := reg.Register(rec.durations); err != nil {
		return nil, fmt.Errorf("register duration histogram: %w", err)
	}
	if err := reg.Register(rec.results); err != nil {
		return nil, fmt.Errorf("register result counter: %w", err)
	}
	return rec, nil
}

// Observe implements MetricsRecorder.
func (r *PrometheusRecorder) Observe(op string, d time.Duration, err error) {
	if op == "" {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	r.durations.WithLabelValues(op).Observe(d.Seconds())
	r.results.WithLabelValues(op, status).Inc()
}
