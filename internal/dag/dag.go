// Package dag validates a task list into a dependency graph. Building fails
// fast on duplicate ids, unknown dependency references and cycles, so no
// execution ever starts on an invalid suite.
package dag

import (
	"fmt"

	"github.com/wrun/wrun/internal/model"
)

var (
	// ErrDuplicateID is returned when two tasks share an id.
	ErrDuplicateID = fmt.Errorf("duplicate task id: %w", model.ErrNotValid)
	// ErrUnknownDependency is returned when a task depends on an id absent
	// from the task list.
	ErrUnknownDependency = fmt.Errorf("unknown dependency: %w", model.ErrNotValid)
	// ErrCyclicDependency is returned when the dependency relation contains
	// a cycle.
	ErrCyclicDependency = fmt.Errorf("cyclic dependency: %w", model.ErrNotValid)
)

// Graph is a validated, immutable view over a task list.
type Graph struct {
	order      []string
	tasks      map[string]model.Task
	deps       map[string][]string
	dependents map[string][]string
}

// Build validates the task list and returns its dependency graph. It has no
// side effects: a returned error means nothing was executed.
func Build(tasks []model.Task) (*Graph, error) {
	g := &Graph{
		order:      make([]string, 0, len(tasks)),
		tasks:      make(map[string]model.Task, len(tasks)),
		deps:       make(map[string][]string, len(tasks)),
		dependents: map[string][]string{},
	}

	for _, t := range tasks {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if _, ok := g.tasks[t.ID]; ok {
			return nil, fmt.Errorf("task %q: %w", t.ID, ErrDuplicateID)
		}
		g.tasks[t.ID] = t
		g.order = append(g.order, t.ID)
		g.deps[t.ID] = append([]string(nil), t.DependsOn...)
	}

	for _, id := range g.order {
		for _, depID := range g.deps[id] {
			if _, ok := g.tasks[depID]; !ok {
				return nil, fmt.Errorf("task %q depends on %q: %w", id, depID, ErrUnknownDependency)
			}
			g.dependents[depID] = append(g.dependents[depID], id)
		}
	}

	if err := g.checkAcyclic(); err != nil {
		return nil, err
	}

	return g, nil
}

// Three-color depth-first traversal: a back-edge to an in-progress node is a
// cycle, reported with the task the edge originates from.
func (g *Graph) checkAcyclic() error {
	const (
		white = iota // unvisited
		grey         // in progress
		black        // done
	)

	color := make(map[string]int, len(g.tasks))

	var visit func(id string) error
	visit = func(id string) error {
		color[id] = grey
		for _, depID := range g.deps[id] {
			switch color[depID] {
			case grey:
				return fmt.Errorf("task %q: %w", id, ErrCyclicDependency)
			case white:
				if err := visit(depID); err != nil {
					return err
				}
			}
		}
		color[id] = black
		return nil
	}

	for _, id := range g.order {
		if color[id] == white {
			if err := visit(id); err != nil {
				return err
			}
		}
	}

	return nil
}

// Task returns a task by id.
func (g *Graph) Task(id string) (model.Task, bool) {
	t, ok := g.tasks[id]
	return t, ok
}

// Order returns the task ids in input order.
func (g *Graph) Order() []string {
	return append([]string(nil), g.order...)
}

// Deps returns the dependency ids of a task.
func (g *Graph) Deps(id string) []string {
	return append([]string(nil), g.deps[id]...)
}

// Dependents returns the ids of tasks that depend on the given id.
func (g *Graph) Dependents(id string) []string {
	return append([]string(nil), g.dependents[id]...)
}

// Len returns the number of tasks in the graph.
func (g *Graph) Len() int {
	return len(g.order)
}
