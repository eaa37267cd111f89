package testutil

import (
	"sync"
	"time"
)

// ExecutionRecord holds the start and end times of one recorded execution.
type ExecutionRecord struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether the two executions ran at the same time.
func (r ExecutionRecord) Overlaps(o ExecutionRecord) bool {
	return !r.Start.After(o.End) && !o.Start.After(r.End)
}

// Recorder collects execution order and timings from concurrently running
// test actions.
type Recorder struct {
	mu      sync.Mutex
	order   []string
	records map[string]ExecutionRecord
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{records: make(map[string]ExecutionRecord)}
}

// Record runs fn, noting name's start and end times and its completion order.
func (r *Recorder) Record(name string, fn func()) {
	start := time.Now()
	if fn != nil {
		fn()
	}
	end := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = append(r.order, name)
	r.records[name] = ExecutionRecord{Start: start, End: end}
}

// Order returns names in completion order.
func (r *Recorder) Order() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

// Get returns the record for name.
func (r *Recorder) Get(name string) (ExecutionRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[name]
	return rec, ok
}
