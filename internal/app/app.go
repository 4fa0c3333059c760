package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/depflow/internal/ctxlog"
	"github.com/vk/depflow/internal/grid"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logW   io.Writer
	logger *slog.Logger
	config *Config
	grid   *grid.Grid
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger and a loaded grid.
// A grid that cannot be loaded is a fatal startup error and panics; the
// entrypoint recovers and reports it.
func NewApp(outW, logW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	g, err := grid.Load(ctx, cfg.GridPath)
	if err != nil {
		panic(fmt.Errorf("failed to load grid: %w", err))
	}

	return &App{
		outW:   outW,
		logW:   logW,
		logger: logger,
		config: cfg,
		grid:   g,
	}
}

// Grid returns the loaded task graph. This is primarily for testing.
func (a *App) Grid() *grid.Grid {
	return a.grid
}

// newLogger creates a slog.Logger for this App instance. It does not set
// the global logger, allowing isolated instances per App.
func newLogger(levelStr, formatStr string, w io.Writer) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if formatStr == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
