package grid

import (
	"context"
	"fmt"
	"os"

	"github.com/vk/depflow/internal/ctxlog"
	"gopkg.in/yaml.v3"
)

// YAML schema for a grid file:
//
//	tasks:
//	  - name: compile
//	    run: gcc -o build/app main.c
//	  - name: test
//	    depends_on: [compile]
//	    run: build/app --selftest
type yamlTask struct {
	Name      string   `yaml:"name"`
	DependsOn []string `yaml:"depends_on"`
	Run       string   `yaml:"run"`
}

type yamlGrid struct {
	Tasks []yamlTask `yaml:"tasks"`
}

// DecodeYAMLFile parses and decodes a single YAML grid file.
func DecodeYAMLFile(ctx context.Context, path string) (*Grid, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Decoding YAML grid file.", "path", path)

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read YAML file %s: %w", path, err)
	}

	var doc yamlGrid
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode YAML file %s: %w", path, err)
	}

	g := &Grid{}
	for _, t := range doc.Tasks {
		if t.Name == "" {
			return nil, fmt.Errorf("task with empty name in %s", path)
		}
		g.Tasks = append(g.Tasks, Task{Name: t.Name, DependsOn: t.DependsOn, Run: t.Run})
	}
	logger.Debug("Decoded YAML grid file.", "path", path, "tasks_found", len(g.Tasks))
	return g, nil
}
