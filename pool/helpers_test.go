package pool

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// poolSizes are the worker counts every size-independent test runs against.
var poolSizes = []int{1, 2, 8}

func runPoolSizeTest(t *testing.T, testFunc func(t *testing.T, size int)) {
	t.Helper()
	for _, size := range poolSizes {
		t.Run(sizeName(size), func(t *testing.T) {
			testFunc(t, size)
		})
	}
}

func sizeName(size int) string {
	if size == 1 {
		return "1 worker"
	}
	return fmt.Sprintf("%d workers", size)
}

// newTestPool creates a pool that is closed when the test ends.
func newTestPool(t *testing.T, size int, opts ...PoolOption) *Pool {
	t.Helper()
	p, err := New(size, opts...)
	if err != nil {
		t.Fatalf("New(%d) failed: %v", size, err)
	}
	t.Cleanup(func() {
		_ = p.Shutdown(5 * time.Second)
	})
	return p
}

// observedLogger returns a debug-level logger and the log entries it records.
func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

// blocker is a task body that signals when it starts and holds its worker until released.
type blocker struct {
	started chan struct{}
	release chan struct{}
}

func newBlocker() *blocker {
	return &blocker{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (b *blocker) run() (int, error) {
	close(b.started)
	<-b.release
	return 1, nil
}

// occupy submits a blocker and waits until a worker is running it.
func occupy(t *testing.T, p *Pool) (*blocker, *Future[int]) {
	t.Helper()
	b := newBlocker()
	f, err := Submit(p, b.run)
	if err != nil {
		t.Fatalf("submit blocker: %v", err)
	}
	select {
	case <-b.started:
	case <-time.After(5 * time.Second):
		t.Fatal("blocker did not start")
	}
	return b, f
}

// eventually polls cond until it holds or the deadline passes.
func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal(msg)
		}
		time.Sleep(time.Millisecond)
	}
}

// countingMetrics is a Metrics sink that only counts calls.
type countingMetrics struct {
	durations atomic.Int64
	assisted  atomic.Int64
	failed    atomic.Int64
	panicked  atomic.Int64
	rejected  atomic.Int64
	abandoned atomic.Int64
	depths    atomic.Int64
}

func (m *countingMetrics) RecordTaskDuration(_ time.Duration, assisted bool) {
	m.durations.Add(1)
	if assisted {
		m.assisted.Add(1)
	}
}

func (m *countingMetrics) RecordTaskFailed(panicked bool) {
	m.failed.Add(1)
	if panicked {
		m.panicked.Add(1)
	}
}

func (m *countingMetrics) RecordTaskRejected() {
	m.rejected.Add(1)
}

func (m *countingMetrics) RecordTasksAbandoned(count int) {
	m.abandoned.Add(int64(count))
}

func (m *countingMetrics) RecordQueueDepth(int) {
	m.depths.Add(1)
}
