package dag

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/f2eflow/internal/stage"
)

// Mode controls how a task's prerequisites run.
type Mode int

const (
	// Series runs prerequisites one after another in declaration order.
	Series Mode = iota
	// Parallel runs prerequisites concurrently.
	Parallel
)

// String implements the fmt.Stringer interface for Mode.
func (m Mode) String() string {
	if m == Parallel {
		return "parallel"
	}
	return "series"
}

// Action is the work a task does after its prerequisites finished.
type Action func(ctx context.Context) stage.Result

// Task is a named unit of work. Tasks are declared once and never mutated.
type Task struct {
	Name        string
	Description string
	Deps        []string
	Mode        Mode
	// Action may be nil for pure compositions.
	Action Action
	// Clean marks tasks that delete output.
	Clean bool
}

// Tasks is a validated, immutable task set.
type Tasks struct {
	byName map[string]*Task
	order  []string
	graph  *Graph
}

// Build validates the declared tasks and returns the task set. Duplicate
// names, unknown prerequisites, self references and cycles are rejected.
func Build(tasks ...Task) (*Tasks, error) {
	ts := &Tasks{
		byName: make(map[string]*Task, len(tasks)),
		graph:  New(),
	}
	for i := range tasks {
		t := tasks[i]
		if t.Name == "" {
			return nil, fmt.Errorf("task #%d has no name", i)
		}
		if _, dup := ts.byName[t.Name]; dup {
			return nil, fmt.Errorf("task %q declared twice", t.Name)
		}
		t.Deps = append([]string(nil), t.Deps...)
		ts.byName[t.Name] = &t
		ts.order = append(ts.order, t.Name)
		ts.graph.AddNode(t.Name)
	}

	var errs []error
	for _, name := range ts.order {
		for _, dep := range ts.byName[name].Deps {
			if err := ts.graph.AddEdge(dep, name); err != nil {
				errs = append(errs, fmt.Errorf("task %q: %w", name, err))
			}
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if err := ts.graph.DetectCycles(); err != nil {
		return nil, fmt.Errorf("error validating task graph: %w", err)
	}
	return ts, nil
}

// Lookup returns the task declared under name.
func (ts *Tasks) Lookup(name string) (Task, bool) {
	t, ok := ts.byName[name]
	if !ok {
		return Task{}, false
	}
	return *t, true
}

// All returns every task in declaration order.
func (ts *Tasks) All() []Task {
	out := make([]Task, 0, len(ts.order))
	for _, name := range ts.order {
		out = append(out, *ts.byName[name])
	}
	return out
}
