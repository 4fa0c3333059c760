// Package executor drives a prepared toposort engine with a pool of
// concurrent workers. All parallelism policy lives here: the engine only
// reports readiness, the executor decides how many tasks run at once and
// what happens when one fails. Engine calls are confined to the
// coordinating goroutine, so the engine itself needs no locking.
package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vk/depflow/internal/ctxlog"
	"github.com/vk/depflow/internal/grid"
	"github.com/vk/depflow/internal/toposort"
)

// RunFunc executes the work for a single task. The default runs the
// task's shell command; tests inject their own.
type RunFunc func(ctx context.Context, task grid.Task) error

// Executor owns one engine instance for the duration of a run.
type Executor struct {
	sorter  *toposort.Sorter[string]
	grid    *grid.Grid
	workers int
	runTask RunFunc
}

// New creates an executor over a sorter built from the given grid. A nil
// run function selects RunShell.
func New(sorter *toposort.Sorter[string], g *grid.Grid, workers int, run RunFunc) *Executor {
	if workers < 1 {
		workers = 1
	}
	if run == nil {
		run = RunShell
	}
	return &Executor{sorter: sorter, grid: g, workers: workers, runTask: run}
}

// result reports one finished task back to the coordinator.
type result struct {
	name string
	err  error
}

// Run executes the whole grid and returns an error if any task fails.
// The first real failure cancels in-flight work and stops dispatching;
// tasks downstream of a failure are never surfaced because their
// predecessors are never marked done.
func (e *Executor) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	if e.sorter.Phase() == toposort.PhaseEditable {
		if err := e.sorter.Prepare(); err != nil {
			return err
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Buffers sized to the node count: neither side ever blocks, so the
	// coordinator can keep the engine moving.
	jobs := make(chan grid.Task, e.sorter.Len())
	results := make(chan result, e.sorter.Len())

	logger.Debug("Starting worker pool.", "workers", e.workers)
	for i := 0; i < e.workers; i++ {
		go e.worker(runCtx, jobs, results, i)
	}
	defer close(jobs)

	inFlight := 0
	var failed []string
	var rootCause error

	for {
		if rootCause == nil {
			batch, err := e.sorter.GetReady()
			if err != nil {
				return err
			}
			for _, name := range batch {
				task, ok := e.grid.TaskByName(name)
				if !ok {
					task = grid.Task{Name: name}
				}
				logger.Debug("Dispatching task.", "task", name)
				jobs <- task
				inFlight++
			}
		}
		if inFlight == 0 {
			break
		}

		r := <-results
		inFlight--
		if r.err != nil {
			if errors.Is(r.err, context.Canceled) {
				// A symptom of an earlier failure or an external cancel,
				// not a root cause of its own.
				if rootCause == nil {
					rootCause = r.err
				}
				continue
			}
			logger.Error("Task failed.", "task", r.name, "error", r.err)
			failed = append(failed, r.name)
			if rootCause == nil {
				rootCause = r.err
			}
			cancel()
			continue
		}
		if err := e.sorter.Done(r.name); err != nil {
			return err
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("execution failed for %s: %w", strings.Join(failed, ", "), rootCause)
	}
	if rootCause != nil {
		return rootCause
	}

	active, err := e.sorter.IsActive()
	if err != nil {
		return err
	}
	if active {
		return fmt.Errorf("execution stalled: tasks remain but none are ready")
	}
	logger.Info("All tasks completed.")
	return nil
}

// worker is the processing loop for a single concurrent worker.
func (e *Executor) worker(ctx context.Context, jobs <-chan grid.Task, results chan<- result, workerID int) {
	logger := ctxlog.FromContext(ctx).With("workerID", workerID)
	for task := range jobs {
		if ctx.Err() != nil {
			results <- result{name: task.Name, err: ctx.Err()}
			continue
		}
		logger.Debug("Worker picked up task.", "task", task.Name)
		err := e.runTask(ctx, task)
		if err != nil {
			logger.Debug("Task execution failed.", "task", task.Name, "error", err)
		} else {
			logger.Debug("Task execution succeeded.", "task", task.Name)
		}
		results <- result{name: task.Name, err: err}
	}
}
