package benchmarks

import (
	"image"
	"image/color"
	"testing"

	"github.com/utkarsh5026/assistpool/pool"
)

// poolConfig defines a benchmark configuration for a pool setup
type poolConfig struct {
	name string
	opts []pool.PoolOption
}

// getPoolConfigs returns the pool setups compared by the benchmarks
func getPoolConfigs() []poolConfig {
	return []poolConfig{
		{name: "Default"},
		{name: "LockOSThread", opts: []pool.PoolOption{pool.WithLockOSThread()}},
		{name: "NoAwaitBackoff", opts: []pool.PoolOption{
			pool.WithAwaitBackoff(0, pool.BackoffNone, 0, 0),
		}},
	}
}

func runPoolBenchmark(b *testing.B, workerCount int, benchFunc func(b *testing.B, p *pool.Pool)) {
	for _, cfg := range getPoolConfigs() {
		b.Run(cfg.name, func(b *testing.B) {
			p, err := pool.New(workerCount, cfg.opts...)
			if err != nil {
				b.Fatalf("pool.New failed: %v", err)
			}
			defer p.Close()

			benchFunc(b, p)
		})
	}
}

// =============================================================================
// Benchmark Workload Generators
// =============================================================================

// cpuBoundWork simulates a CPU-intensive operation
func cpuBoundWork(iterations, task int) func() (int, error) {
	return func() (int, error) {
		result := 0
		for i := range iterations {
			result += i * task
		}
		return result, nil
	}
}

// fib computes fibonacci numbers by recursively submitting the left branch and awaiting it.
func fib(p *pool.Pool, n, cutoff int) (int, error) {
	if n < cutoff {
		return serialFib(n), nil
	}
	left, err := pool.Submit(p, func() (int, error) { return fib(p, n-1, cutoff) })
	if err != nil {
		return 0, err
	}
	right, err := fib(p, n-2, cutoff)
	if err != nil {
		return 0, err
	}
	l, err := pool.Await(p, left)
	return l + right, err
}

func serialFib(n int) int {
	if n < 2 {
		return n
	}
	return serialFib(n-1) + serialFib(n-2)
}

func benchImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: uint8(x ^ y), A: 255})
		}
	}
	return img
}
