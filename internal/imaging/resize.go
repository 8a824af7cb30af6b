// Package imaging resizes images by splitting the destination into disjoint row ranges and
// scaling each range independently.
//
// Three drivers share the same range worker: ResizeWithPool runs the ranges on a pool.Pool
// and waits with assistance, ResizeThreads starts one goroutine per range, and ResizeAsync
// joins the ranges through an errgroup. The last two exist for comparison.
package imaging

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/utkarsh5026/assistpool/pool"
)

const (
	MinSize = 1
	MaxSize = 10_000_000
)

var (
	ErrInvalidSize = fmt.Errorf("thumbnail size must be within [%d, %d]", MinSize, MaxSize)
	ErrEmptySource = errors.New("source image is empty")
)

// ValidateSize reports whether width and height are acceptable thumbnail dimensions.
func ValidateSize(width, height int) error {
	if width < MinSize || width > MaxSize || height < MinSize || height > MaxSize {
		return fmt.Errorf("%w: got %dx%d", ErrInvalidSize, width, height)
	}
	return nil
}

// Scaler is the interpolator used for every range. ApproxBiLinear is close to what a
// linear-interpolating resize produces and is much cheaper than CatmullRom.
var Scaler draw.Scaler = draw.ApproxBiLinear

// RowRange is a half-open range [Start, End) of destination rows.
type RowRange struct {
	Start, End int
}

// Partition splits rows into parts contiguous ranges. The first parts-1 ranges have
// rows/parts rows each; the last one also takes the remainder. Empty ranges are dropped, so
// fewer than parts ranges come back when rows < parts.
func Partition(rows, parts int) []RowRange {
	if rows <= 0 {
		return nil
	}
	parts = max(parts, 1)

	step := rows / parts
	if step == 0 {
		ranges := make([]RowRange, rows)
		for i := range ranges {
			ranges[i] = RowRange{Start: i, End: i + 1}
		}
		return ranges
	}

	ranges := make([]RowRange, 0, parts)
	for i := range parts - 1 {
		ranges = append(ranges, RowRange{Start: i * step, End: (i + 1) * step})
	}
	ranges = append(ranges, RowRange{Start: (parts - 1) * step, End: rows})
	return ranges
}

// resizeRange scales the whole of src into dst, writing only rows r of dst.
// Calls for disjoint ranges touch disjoint pixels and may run concurrently.
func resizeRange(dst *image.RGBA, src image.Image, r RowRange) {
	b := dst.Bounds()
	band := dst.SubImage(image.Rect(b.Min.X, b.Min.Y+r.Start, b.Max.X, b.Min.Y+r.End)).(*image.RGBA)
	Scaler.Scale(band, b, src, src.Bounds(), draw.Src, nil)
}

func prepare(src image.Image, width, height int) (*image.RGBA, error) {
	if src == nil || src.Bounds().Empty() {
		return nil, ErrEmptySource
	}
	if err := ValidateSize(width, height); err != nil {
		return nil, err
	}
	return image.NewRGBA(image.Rect(0, 0, width, height)), nil
}

// Resize scales src to width x height on the calling goroutine.
func Resize(src image.Image, width, height int) (*image.RGBA, error) {
	dst, err := prepare(src, width, height)
	if err != nil {
		return nil, err
	}
	resizeRange(dst, src, RowRange{Start: 0, End: height})
	return dst, nil
}

// ResizeWithPool scales src to width x height using p.
//
// The destination is cut into 2 x p.ThreadCount() row ranges. All ranges but the last are
// submitted to p, the last one is scaled on the calling goroutine, and then each submitted
// range is awaited in order with pool.Await. Calling it from inside a task running on p is
// safe for any pool size.
func ResizeWithPool(p *pool.Pool, src image.Image, width, height int) (*image.RGBA, error) {
	dst, err := prepare(src, width, height)
	if err != nil {
		return nil, err
	}

	ranges := Partition(height, 2*p.ThreadCount())
	if len(ranges) == 1 {
		resizeRange(dst, src, ranges[0])
		return dst, nil
	}

	last := len(ranges) - 1
	futures := make([]*pool.Future[struct{}], 0, last)
	for _, r := range ranges[:last] {
		f, err := pool.Run(p, func() error {
			resizeRange(dst, src, r)
			return nil
		})
		if err != nil {
			// Ranges already handed out write into dst; wait for them before giving up on it.
			_, _ = pool.AwaitAll(p, futures)
			return nil, fmt.Errorf("submit rows %d-%d: %w", r.Start, r.End, err)
		}
		futures = append(futures, f)
	}

	resizeRange(dst, src, ranges[last])

	if _, err := pool.AwaitAll(p, futures); err != nil {
		return nil, err
	}
	return dst, nil
}

// ResizeThreads scales src using one goroutine per row range, threads ranges in total.
func ResizeThreads(src image.Image, width, height, threads int) (*image.RGBA, error) {
	dst, err := prepare(src, width, height)
	if err != nil {
		return nil, err
	}

	var wg sync.WaitGroup
	for _, r := range Partition(height, threads) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resizeRange(dst, src, r)
		}()
	}
	wg.Wait()

	return dst, nil
}

// ResizeAsync scales src as parts row-range tasks joined through an errgroup.
// It stops handing out ranges once ctx is done and returns ctx's error.
func ResizeAsync(ctx context.Context, src image.Image, width, height, parts int) (*image.RGBA, error) {
	dst, err := prepare(src, width, height)
	if err != nil {
		return nil, err
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, r := range Partition(height, parts) {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			resizeRange(dst, src, r)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dst, nil
}
