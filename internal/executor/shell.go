package executor

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/vk/depflow/internal/ctxlog"
	"github.com/vk/depflow/internal/grid"
)

// RunShell is the default RunFunc: it executes the task's run command
// through the shell. Tasks without a command are pure ordering nodes and
// succeed immediately.
func RunShell(ctx context.Context, task grid.Task) error {
	if task.Run == "" {
		return nil
	}
	logger := ctxlog.FromContext(ctx)

	cmd := exec.CommandContext(ctx, "sh", "-c", task.Run)
	out, err := cmd.CombinedOutput()
	if trimmed := strings.TrimSpace(string(out)); trimmed != "" {
		logger.Debug("Task output.", "task", task.Name, "output", trimmed)
	}
	if err != nil {
		return fmt.Errorf("task %q: %w", task.Name, err)
	}
	return nil
}
