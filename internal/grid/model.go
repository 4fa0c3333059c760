package grid

import (
	"fmt"

	"github.com/vk/depflow/internal/toposort"
)

// Task is a single unit of work in a grid: a name, the names of tasks it
// depends on, and an optional shell command. A task without a command is a
// pure ordering node.
type Task struct {
	Name      string
	DependsOn []string
	Run       string
}

// Grid is the complete task-graph definition, with tasks in declaration
// order. Declaration order is what makes engine ids, and therefore
// tie-breaks, reproducible across runs.
type Grid struct {
	Tasks []Task
}

// merge appends tasks from another grid, rejecting duplicate task names
// across files.
func (g *Grid) merge(other *Grid, source string) error {
	known := make(map[string]struct{}, len(g.Tasks))
	for _, t := range g.Tasks {
		known[t.Name] = struct{}{}
	}
	for _, t := range other.Tasks {
		if _, dup := known[t.Name]; dup {
			return fmt.Errorf("duplicate task %q in %s", t.Name, source)
		}
		known[t.Name] = struct{}{}
		g.Tasks = append(g.Tasks, t)
	}
	return nil
}

// TaskByName returns the named task.
func (g *Grid) TaskByName(name string) (Task, bool) {
	for _, t := range g.Tasks {
		if t.Name == name {
			return t, true
		}
	}
	return Task{}, false
}

// NewSorter feeds the grid into a fresh engine instance in declaration
// order. Every depends_on reference must name a defined task; the engine
// would happily create implicit nodes, but an implicit node has no command
// and almost always means a typo in the grid file.
func NewSorter(g *Grid) (*toposort.Sorter[string], error) {
	defined := make(map[string]struct{}, len(g.Tasks))
	for _, t := range g.Tasks {
		defined[t.Name] = struct{}{}
	}
	s := toposort.New[string]()
	for _, t := range g.Tasks {
		for _, dep := range t.DependsOn {
			if _, ok := defined[dep]; !ok {
				return nil, fmt.Errorf("task %q depends on undefined task %q", t.Name, dep)
			}
		}
		if err := s.Add(t.Name, t.DependsOn...); err != nil {
			return nil, err
		}
	}
	return s, nil
}
