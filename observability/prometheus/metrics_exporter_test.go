package prometheus

import (
	"errors"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"

	"github.com/utkarsh5026/assistpool/pool"
)

func TestMetricsExporter_RecordMethods(t *testing.T) {
	reg := prom.NewRegistry()
	exporter, err := NewMetricsExporter("assistpool", reg, ExporterOptions{PoolName: "thumbs"})
	if err != nil {
		t.Fatalf("NewMetricsExporter failed: %v", err)
	}

	exporter.RecordTaskDuration(250*time.Millisecond, false)
	exporter.RecordTaskDuration(10*time.Millisecond, true)
	exporter.RecordTaskFailed(true)
	exporter.RecordTaskFailed(false)
	exporter.RecordTaskRejected()
	exporter.RecordTasksAbandoned(3)
	exporter.RecordQueueDepth(7)

	if got := testutil.ToFloat64(exporter.taskFailedTotal.WithLabelValues("thumbs", "panic")); got != 1 {
		t.Fatalf("panic total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(exporter.taskFailedTotal.WithLabelValues("thumbs", "error")); got != 1 {
		t.Fatalf("error total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(exporter.queueDepth.WithLabelValues("thumbs")); got != 7 {
		t.Fatalf("queue depth = %v, want 7", got)
	}
	if got := testutil.ToFloat64(exporter.taskRejectedTotal.WithLabelValues("thumbs")); got != 1 {
		t.Fatalf("rejected total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(exporter.taskAbandonedTotal.WithLabelValues("thumbs")); got != 3 {
		t.Fatalf("abandoned total = %v, want 3", got)
	}

	for _, runner := range []string{"worker", "assist"} {
		count, err := histogramSampleCount(exporter.taskDurationSeconds.WithLabelValues("thumbs", runner))
		if err != nil {
			t.Fatalf("histogramSampleCount failed: %v", err)
		}
		if count != 1 {
			t.Fatalf("%s duration sample count = %d, want 1", runner, count)
		}
	}
}

func TestMetricsExporter_AlreadyRegisteredReuse(t *testing.T) {
	reg := prom.NewRegistry()
	first, err := NewMetricsExporter("assistpool", reg, ExporterOptions{})
	if err != nil {
		t.Fatalf("first NewMetricsExporter failed: %v", err)
	}
	second, err := NewMetricsExporter("assistpool", reg, ExporterOptions{})
	if err != nil {
		t.Fatalf("second NewMetricsExporter failed: %v", err)
	}

	first.RecordTaskRejected()
	second.RecordTaskRejected()

	if got := testutil.ToFloat64(first.taskRejectedTotal.WithLabelValues("default")); got != 2 {
		t.Fatalf("shared rejected counter = %v, want 2", got)
	}
}

func TestMetricsExporter_NilSafe(t *testing.T) {
	var exporter *MetricsExporter
	exporter.RecordTaskDuration(time.Second, false)
	exporter.RecordTaskFailed(true)
	exporter.RecordTaskRejected()
	exporter.RecordTasksAbandoned(1)
	exporter.RecordQueueDepth(1)
}

func TestMetricsExporter_WithPool(t *testing.T) {
	reg := prom.NewRegistry()
	exporter, err := NewMetricsExporter("assistpool", reg, ExporterOptions{PoolName: "it"})
	if err != nil {
		t.Fatalf("NewMetricsExporter failed: %v", err)
	}

	p, err := pool.New(2, pool.WithMetrics(exporter))
	if err != nil {
		t.Fatalf("pool.New failed: %v", err)
	}

	futures := make([]*pool.Future[int], 10)
	for i := range futures {
		futures[i], _ = pool.Submit(p, func() (int, error) {
			if i == 0 {
				return 0, errors.New("bad input")
			}
			return i, nil
		})
	}
	for _, f := range futures {
		_, _ = f.Get()
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if _, err := pool.Submit(p, func() (int, error) { return 0, nil }); !errors.Is(err, pool.ErrSubmitAfterShutdown) {
		t.Fatalf("expected ErrSubmitAfterShutdown, got %v", err)
	}

	if got := testutil.ToFloat64(exporter.taskFailedTotal.WithLabelValues("it", "error")); got != 1 {
		t.Errorf("failed total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(exporter.taskRejectedTotal.WithLabelValues("it")); got != 1 {
		t.Errorf("rejected total = %v, want 1", got)
	}

	count, err := histogramSampleCount(exporter.taskDurationSeconds.WithLabelValues("it", "worker"))
	if err != nil {
		t.Fatalf("histogramSampleCount failed: %v", err)
	}
	if count != 10 {
		t.Errorf("duration sample count = %d, want 10", count)
	}
}

func histogramSampleCount(observer prom.Observer) (uint64, error) {
	collector, ok := observer.(prom.Collector)
	if !ok {
		return 0, nil
	}

	metricCh := make(chan prom.Metric, 1)
	collector.Collect(metricCh)
	close(metricCh)
	for metric := range metricCh {
		msg := &dto.Metric{}
		if err := metric.Write(msg); err != nil {
			return 0, err
		}
		if msg.Histogram != nil {
			return msg.Histogram.GetSampleCount(), nil
		}
	}
	return 0, nil
}
