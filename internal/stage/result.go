package stage

import (
	"errors"
	"fmt"
)

// ErrLayoutModeUnsupported is recorded by the template stage when the
// raw-HTML layout mode (use_jade = false) is selected.
var ErrLayoutModeUnsupported = errors.New("raw HTML layout mode is not supported")

// Spec is one invocation of a stage: the input globs and the directory the
// stage owns.
type Spec struct {
	Inputs []string
	OutDir string
}

// Result is the outcome of a stage run.
type Result struct {
	// Written lists the files the stage created or replaced.
	Written []string
	// Failures are recoverable per-file errors.
	Failures []error
	// Fatal aborts the surrounding run when set.
	Fatal error
}

// Wrote records written files.
func (r *Result) Wrote(paths ...string) {
	r.Written = append(r.Written, paths...)
}

// Fail records a recoverable failure.
func (r *Result) Fail(err error) {
	if err != nil {
		r.Failures = append(r.Failures, err)
	}
}

// Failf records a formatted recoverable failure.
func (r *Result) Failf(format string, args ...any) {
	r.Failures = append(r.Failures, fmt.Errorf(format, args...))
}

// Merge folds o into r. The first fatal error wins.
func (r *Result) Merge(o Result) {
	r.Written = append(r.Written, o.Written...)
	r.Failures = append(r.Failures, o.Failures...)
	if r.Fatal == nil {
		r.Fatal = o.Fatal
	}
}

// OK reports whether the run had neither failures nor a fatal error.
func (r Result) OK() bool {
	return len(r.Failures) == 0 && r.Fatal == nil
}

// Fatalf builds a Result carrying only a fatal error.
func Fatalf(format string, args ...any) Result {
	return Result{Fatal: fmt.Errorf(format, args...)}
}
