package prometheus

import (
	"errors"
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/utkarsh5026/assistpool/pool"
)

// ExporterOptions controls collector configuration.
type ExporterOptions struct {
	// PoolName is the value of the "pool" label on every series. Defaults to "default".
	PoolName        string
	DurationBuckets []float64
}

// MetricsExporter adapts pool.Metrics to Prometheus collectors.
type MetricsExporter struct {
	poolName string

	taskDurationSeconds *prom.HistogramVec
	taskFailedTotal     *prom.CounterVec
	taskRejectedTotal   *prom.CounterVec
	taskAbandonedTotal  *prom.CounterVec
	queueDepth          *prom.GaugeVec
}

var _ pool.Metrics = (*MetricsExporter)(nil)

// NewMetricsExporter creates and registers Prometheus collectors for pool.Metrics.
// Exporters sharing a registerer and namespace share collectors, told apart by PoolName.
func NewMetricsExporter(namespace string, reg prom.Registerer, opts ExporterOptions) (*MetricsExporter, error) {
	if namespace == "" {
		namespace = "assistpool"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	buckets := opts.DurationBuckets
	if len(buckets) == 0 {
		buckets = prom.DefBuckets
	}

	durationVec := prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "task_duration_seconds",
		Help:      "Task execution duration in seconds.",
		Buckets:   buckets,
	}, []string{"pool", "runner"})
	failedVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "task_failed_total",
		Help:      "Total number of tasks that returned an error or panicked.",
	}, []string{"pool", "reason"})
	rejectedVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "task_rejected_total",
		Help:      "Total number of submissions rejected after shutdown.",
	}, []string{"pool"})
	abandonedVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "task_abandoned_total",
		Help:      "Total number of queued tasks discarded at shutdown.",
	}, []string{"pool"})
	queueDepthVec := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "queue_depth",
		Help:      "Queue depth observed at the last dequeue.",
	}, []string{"pool"})

	var err error
	if durationVec, err = registerCollector(reg, durationVec); err != nil {
		return nil, err
	}
	if failedVec, err = registerCollector(reg, failedVec); err != nil {
		return nil, err
	}
	if rejectedVec, err = registerCollector(reg, rejectedVec); err != nil {
		return nil, err
	}
	if abandonedVec, err = registerCollector(reg, abandonedVec); err != nil {
		return nil, err
	}
	if queueDepthVec, err = registerCollector(reg, queueDepthVec); err != nil {
		return nil, err
	}

	return &MetricsExporter{
		poolName:            normalizeLabel(opts.PoolName, "default"),
		taskDurationSeconds: durationVec,
		taskFailedTotal:     failedVec,
		taskRejectedTotal:   rejectedVec,
		taskAbandonedTotal:  abandonedVec,
		queueDepth:          queueDepthVec,
	}, nil
}

// RecordTaskDuration records task execution duration, labelled by who ran the task.
func (m *MetricsExporter) RecordTaskDuration(duration time.Duration, assisted bool) {
	if m == nil {
		return
	}
	m.taskDurationSeconds.WithLabelValues(m.poolName, runnerLabel(assisted)).Observe(duration.Seconds())
}

// RecordTaskFailed records a failed task.
func (m *MetricsExporter) RecordTaskFailed(panicked bool) {
	if m == nil {
		return
	}
	reason := "error"
	if panicked {
		reason = "panic"
	}
	m.taskFailedTotal.WithLabelValues(m.poolName, reason).Inc()
}

// RecordTaskRejected records a submission refused after shutdown.
func (m *MetricsExporter) RecordTaskRejected() {
	if m == nil {
		return
	}
	m.taskRejectedTotal.WithLabelValues(m.poolName).Inc()
}

// RecordTasksAbandoned records tasks discarded at shutdown.
func (m *MetricsExporter) RecordTasksAbandoned(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.taskAbandonedTotal.WithLabelValues(m.poolName).Add(float64(count))
}

// RecordQueueDepth records queue depth.
func (m *MetricsExporter) RecordQueueDepth(depth int) {
	if m == nil {
		return
	}
	m.queueDepth.WithLabelValues(m.poolName).Set(float64(depth))
}

func normalizeLabel(v string, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func runnerLabel(assisted bool) string {
	if assisted {
		return "assist"
	}
	return "worker"
}

func registerCollector[T prom.Collector](reg prom.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var alreadyRegisteredErr prom.AlreadyRegisteredError
	if errors.As(err, &alreadyRegisteredErr) {
		existing, ok := alreadyRegisteredErr.ExistingCollector.(T)
		if !ok {
			return collector, fmt.Errorf("collector type mismatch for %T", collector)
		}
		return existing, nil
	}

	return collector, err
}
