package imaging

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/utkarsh5026/assistpool/pool"
)

func gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: uint8((x + y) % 256), A: 255})
		}
	}
	return img
}

func newPool(t *testing.T, size int) *pool.Pool {
	t.Helper()
	p, err := pool.New(size)
	if err != nil {
		t.Fatalf("pool.New(%d) failed: %v", size, err)
	}
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestPartition(t *testing.T) {
	tests := []struct {
		name     string
		rows     int
		parts    int
		expected []RowRange
	}{
		{"even split", 8, 4, []RowRange{{0, 2}, {2, 4}, {4, 6}, {6, 8}}},
		{"remainder goes last", 10, 4, []RowRange{{0, 2}, {2, 4}, {4, 6}, {6, 10}}},
		{"single part", 5, 1, []RowRange{{0, 5}}},
		{"more parts than rows", 3, 8, []RowRange{{0, 1}, {1, 2}, {2, 3}}},
		{"zero parts treated as one", 4, 0, []RowRange{{0, 4}}},
		{"no rows", 0, 4, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Partition(tt.rows, tt.parts)
			if len(got) != len(tt.expected) {
				t.Fatalf("expected %v, got %v", tt.expected, got)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("range %d: expected %v, got %v", i, tt.expected[i], got[i])
				}
			}
		})
	}
}

func TestValidateSize(t *testing.T) {
	tests := []struct {
		name  string
		w, h  int
		valid bool
	}{
		{"minimum", 1, 1, true},
		{"maximum", MaxSize, MaxSize, true},
		{"zero width", 0, 10, false},
		{"negative height", 10, -1, false},
		{"too large", MaxSize + 1, 10, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSize(tt.w, tt.h)
			if tt.valid && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tt.valid && !errors.Is(err, ErrInvalidSize) {
				t.Errorf("expected ErrInvalidSize, got %v", err)
			}
		})
	}
}

func TestResizeVariantsAgree(t *testing.T) {
	src := gradient(97, 61)
	const w, h = 40, 23

	want, err := Resize(src, w, h)
	if err != nil {
		t.Fatalf("Resize failed: %v", err)
	}

	for _, size := range []int{1, 2, 8} {
		p := newPool(t, size)
		got, err := ResizeWithPool(p, src, w, h)
		if err != nil {
			t.Fatalf("ResizeWithPool(%d workers) failed: %v", size, err)
		}
		if !bytes.Equal(got.Pix, want.Pix) {
			t.Errorf("ResizeWithPool(%d workers) differs from a single-pass resize", size)
		}
	}

	threaded, err := ResizeThreads(src, w, h, 5)
	if err != nil {
		t.Fatalf("ResizeThreads failed: %v", err)
	}
	if !bytes.Equal(threaded.Pix, want.Pix) {
		t.Error("ResizeThreads differs from a single-pass resize")
	}

	async, err := ResizeAsync(context.Background(), src, w, h, 7)
	if err != nil {
		t.Fatalf("ResizeAsync failed: %v", err)
	}
	if !bytes.Equal(async.Pix, want.Pix) {
		t.Error("ResizeAsync differs from a single-pass resize")
	}
}

func TestResizeWithPool_NestedInTasks(t *testing.T) {
	// One top-level task per image, each fanning out row tasks on the same pool.
	for _, size := range []int{1, 2} {
		p := newPool(t, size)
		src := gradient(64, 48)
		want, _ := Resize(src, 16, 12)

		futures := make([]*pool.Future[*image.RGBA], 6)
		for i := range futures {
			f, err := pool.Submit(p, func() (*image.RGBA, error) {
				return ResizeWithPool(p, src, 16, 12)
			})
			if err != nil {
				t.Fatalf("submit failed: %v", err)
			}
			futures[i] = f
		}

		thumbs, err := pool.AwaitAll(p, futures)
		if err != nil {
			t.Fatalf("%d workers: nested resize failed: %v", size, err)
		}
		for i, thumb := range thumbs {
			if !bytes.Equal(thumb.Pix, want.Pix) {
				t.Errorf("%d workers: thumbnail %d is wrong", size, i)
			}
		}
	}
}

func TestResize_Errors(t *testing.T) {
	t.Run("empty source", func(t *testing.T) {
		if _, err := Resize(image.NewRGBA(image.Rect(0, 0, 0, 0)), 4, 4); !errors.Is(err, ErrEmptySource) {
			t.Errorf("expected ErrEmptySource, got %v", err)
		}
	})

	t.Run("invalid size", func(t *testing.T) {
		p := newPool(t, 1)
		if _, err := ResizeWithPool(p, gradient(4, 4), 0, 4); !errors.Is(err, ErrInvalidSize) {
			t.Errorf("expected ErrInvalidSize, got %v", err)
		}
	})

	t.Run("shut down pool", func(t *testing.T) {
		p, err := pool.New(2)
		if err != nil {
			t.Fatalf("pool.New failed: %v", err)
		}
		_ = p.Close()

		if _, err := ResizeWithPool(p, gradient(8, 8), 4, 8); !errors.Is(err, pool.ErrSubmitAfterShutdown) {
			t.Errorf("expected ErrSubmitAfterShutdown, got %v", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := ResizeAsync(ctx, gradient(8, 8), 4, 4, 2); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}
