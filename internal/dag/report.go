package dag

import (
	"sync"
	"time"
)

// TaskReport is the outcome of one task invocation.
type TaskReport struct {
	Name     string
	Duration time.Duration
	Written  int
	Failures []error
}

// Report collects task outcomes for one run. It is safe for concurrent use.
type Report struct {
	RunID string

	mu    sync.Mutex
	tasks []TaskReport
}

func (r *Report) add(tr TaskReport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = append(r.tasks, tr)
}

// Tasks returns the task reports in completion order.
func (r *Report) Tasks() []TaskReport {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]TaskReport(nil), r.tasks...)
}

// Ran returns the names of the tasks that ran, in completion order.
func (r *Report) Ran() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.tasks))
	for _, t := range r.tasks {
		names = append(names, t.Name)
	}
	return names
}

// Failures returns every recoverable failure of the run.
func (r *Report) Failures() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []error
	for _, t := range r.tasks {
		out = append(out, t.Failures...)
	}
	return out
}

// OK reports whether no task recorded a failure.
func (r *Report) OK() bool {
	return len(r.Failures()) == 0
}
