// Package batch runs a task over many files with bounded concurrency, streaming progress and outcomes.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the number of files processed concurrently when Options.Workers is not set.
const DefaultWorkers = 2

// ErrSkipped is reported for files not started because the run was cancelled.
var ErrSkipped = errors.New("skipped")

// Options configures Run.
type Options struct {
	Workers int
}

// Progress reports a milestone of the current file.
type Progress func(percent int, label string)

// Task processes one file. The context it receives is never cancelled: once started, a file runs to completion.
type Task[T any] func(ctx context.Context, path string, progress Progress) (T, error)

// Update is a progress event or, when Done is set, the final outcome of one file.
type Update[T any] struct {
	Index   int
	Path    string
	Percent int
	Label   string
	Done    bool
	Result  T
	Err     error
}

// Run processes paths with at most Options.Workers tasks in flight.
// A failing file is reported in its own Update and never affects the others. Cancelling ctx stops new files from
// starting; they are reported with ErrSkipped. The channel is closed once every file has a final Update.
func Run[T any](ctx context.Context, paths []string, opts Options, task Task[T]) <-chan Update[T] {
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	updates := make(chan Update[T], workers*8)

	go func() {
		defer close(updates)

		group := new(errgroup.Group)
		group.SetLimit(workers)

		for index, path := range paths {
			if skipped(ctx, index, path, updates) {
				continue
			}

			group.Go(func() error {
				if skipped(ctx, index, path, updates) {
					return nil
				}

				slog.Debug("batch.Run", "file path", path, "stage", "start")

				progress := func(percent int, label string) {
					updates <- Update[T]{Index: index, Path: path, Percent: percent, Label: label}
				}

				result, err := task(context.WithoutCancel(ctx), path, progress)

				slog.Debug("batch.Run", "file path", path, "stage", "done", "error", err)

				updates <- Update[T]{Index: index, Path: path, Percent: 100, Done: true, Result: result, Err: err}

				return nil
			})
		}

		_ = group.Wait()
	}()

	return updates
}

func skipped[T any](ctx context.Context, index int, path string, updates chan<- Update[T]) bool {
	if ctx.Err() == nil {
		return false
	}

	updates <- Update[T]{
		Index: index,
		Path:  path,
		Done:  true,
		Err:   fmt.Errorf("%w: %w", ErrSkipped, context.Cause(ctx)),
	}

	return true
}
