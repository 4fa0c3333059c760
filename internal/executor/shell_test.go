package executor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/depflow/internal/grid"
)

func TestRunShell(t *testing.T) {
	t.Run("empty command succeeds immediately", func(t *testing.T) {
		assert.NoError(t, RunShell(context.Background(), grid.Task{Name: "noop"}))
	})

	t.Run("command runs through the shell", func(t *testing.T) {
		marker := filepath.Join(t.TempDir(), "ran")
		task := grid.Task{Name: "touch", Run: "echo done > " + marker}

		require.NoError(t, RunShell(context.Background(), task))
		_, err := os.Stat(marker)
		assert.NoError(t, err)
	})

	t.Run("failure is wrapped with the task name", func(t *testing.T) {
		err := RunShell(context.Background(), grid.Task{Name: "boom", Run: "exit 3"})
		require.Error(t, err)
		assert.ErrorContains(t, err, `task "boom"`)
	})

	t.Run("cancelled context stops the command", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := RunShell(ctx, grid.Task{Name: "sleep", Run: "sleep 30"})
		assert.Error(t, err)
	})
}
