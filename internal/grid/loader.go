package grid

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vk/depflow/internal/ctxlog"
	"github.com/vk/depflow/internal/fsutil"
)

// Load reads a grid definition from a single file or from every grid file
// under a directory. Directory loads merge files in sorted path order, so
// the resulting task declaration order is deterministic. Duplicate task
// names across files are rejected.
func Load(ctx context.Context, path string) (*Grid, error) {
	logger := ctxlog.FromContext(ctx)

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("grid path %s: %w", path, err)
	}

	files := []string{path}
	if info.IsDir() {
		files, err = fsutil.FindFilesByExtension(path, ".hcl", ".yaml", ".yml")
		if err != nil {
			return nil, fmt.Errorf("scanning grid directory %s: %w", path, err)
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("no grid files found under %s", path)
		}
	}
	logger.Debug("Loading grid files.", "count", len(files))

	g := &Grid{}
	for _, f := range files {
		sub, err := decodeFile(ctx, f)
		if err != nil {
			return nil, err
		}
		if err := g.merge(sub, f); err != nil {
			return nil, err
		}
	}
	logger.Info("Grid loaded.", "files", len(files), "tasks", len(g.Tasks))
	return g, nil
}

func decodeFile(ctx context.Context, path string) (*Grid, error) {
	switch filepath.Ext(path) {
	case ".hcl":
		return DecodeHCLFile(ctx, path)
	case ".yaml", ".yml":
		return DecodeYAMLFile(ctx, path)
	default:
		return nil, fmt.Errorf("unsupported grid file format: %s", path)
	}
}
