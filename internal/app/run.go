package app

import (
	"context"
	"fmt"

	"github.com/vk/depflow/internal/ctxlog"
	"github.com/vk/depflow/internal/executor"
	"github.com/vk/depflow/internal/grid"
	"github.com/vk/depflow/internal/toposort"
)

// Run executes the main application logic based on the App's configuration.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	sorter, err := grid.NewSorter(a.grid)
	if err != nil {
		return fmt.Errorf("failed to build dependency graph: %w", err)
	}
	a.logger.Debug("Dependency graph built.", "node_count", sorter.Len())

	if a.config.OrderOnly {
		return a.printOrder(sorter)
	}

	if len(a.grid.Tasks) == 0 {
		a.logger.Warn("No tasks found in grid, execution not required.")
		return nil
	}

	// Validate once; replay runs execute on clones of the prepared sorter.
	if err := sorter.Prepare(); err != nil {
		return fmt.Errorf("failed to validate dependency graph: %w", err)
	}

	for i := 1; i <= a.config.Repeat; i++ {
		instance := sorter
		if a.config.Repeat > 1 {
			instance = sorter.Clone()
			a.logger.Info("Starting run.", "run", i, "total", a.config.Repeat)
		}
		exec := executor.New(instance, a.grid, a.config.WorkerCount, nil)
		if err := exec.Run(ctx); err != nil {
			return fmt.Errorf("execution failed: %w", err)
		}
	}
	a.logger.Info("Execution finished.")
	return nil
}

// printOrder writes the full topological order, one task per line.
func (a *App) printOrder(sorter *toposort.Sorter[string]) error {
	order, err := sorter.StaticOrder()
	if err != nil {
		return fmt.Errorf("failed to validate dependency graph: %w", err)
	}
	for name := range order {
		fmt.Fprintln(a.outW, name)
	}
	return nil
}
