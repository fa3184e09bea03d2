// Package kernel runs data-parallel kernels on host goroutines.
//
// A kernel is a function invoked once per thread index. The Launcher splits
// the index range into one contiguous chunk per worker, so neighbouring
// indices run on the same goroutine. Launch returns once every index has run
// or the context is cancelled.
//
// Usage:
//
//	l := kernel.NewLauncher(0)
//	view := owner.View()
//	err := l.Launch(ctx, view.ElementCount(), func(tid int) {
//	    view.SetBit(0, tid)
//	})
package kernel

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// cancelStride is how many indices a worker runs between context checks.
const cancelStride = 1024

// Launcher runs kernels on a bounded number of goroutines.
type Launcher struct {
	workers int
}

// NewLauncher creates a launcher with the given number of workers.
// If workers <= 0, uses GOMAXPROCS.
func NewLauncher(workers int) *Launcher {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Launcher{workers: workers}
}

// Workers returns the number of worker goroutines per launch.
func (l *Launcher) Workers() int {
	return l.workers
}

// Launch runs fn for every tid in [0, threads). Calls for different tids may
// run concurrently; calls within one chunk run in increasing order.
// If ctx is cancelled, workers stop at the next stride and Launch returns
// ctx.Err().
func (l *Launcher) Launch(ctx context.Context, threads int, fn func(tid int)) error {
	if threads < 0 {
		return fmt.Errorf("invalid thread count: %d", threads)
	}
	if threads == 0 {
		return ctx.Err()
	}

	workers := l.workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, threads)
	chunk := (threads + workers - 1) / workers

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for start := 0; start < threads; start += chunk {
		start, end := start, min(start+chunk, threads)
		g.Go(func() error {
			for i := start; i < end; i++ {
				if (i-start)%cancelStride == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				fn(i)
			}
			return nil
		})
	}

	return g.Wait()
}

// Dim is the shape of a launch grid.
type Dim struct {
	Blocks          int
	ThreadsPerBlock int
}

// Size returns the total number of threads in the grid.
func (d Dim) Size() int {
	return d.Blocks * d.ThreadsPerBlock
}

// Thread identifies one invocation within a grid.
type Thread struct {
	Block  int // block index
	Index  int // thread index within the block
	Global int // Block*ThreadsPerBlock + Index
}

// LaunchGrid runs fn once per thread of grid.
func (l *Launcher) LaunchGrid(ctx context.Context, grid Dim, fn func(Thread)) error {
	if grid.Blocks < 0 || grid.ThreadsPerBlock < 0 {
		return fmt.Errorf("invalid grid: %d blocks x %d threads", grid.Blocks, grid.ThreadsPerBlock)
	}
	if grid.ThreadsPerBlock == 0 {
		return ctx.Err()
	}

	tpb := grid.ThreadsPerBlock
	return l.Launch(ctx, grid.Size(), func(tid int) {
		fn(Thread{Block: tid / tpb, Index: tid % tpb, Global: tid})
	})
}
