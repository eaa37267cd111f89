package dag

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/f2eflow/internal/ctxlog"
	"golang.org/x/sync/errgroup"
)

// Executor runs tasks from a validated task set.
type Executor struct {
	tasks *Tasks
}

// NewExecutor creates an executor for tasks.
func NewExecutor(tasks *Tasks) *Executor {
	return &Executor{tasks: tasks}
}

// Run executes the named tasks in order, each with its prerequisites, and
// returns the run's report. The error is non-nil only for an unknown task
// name, a fatal task error or cancellation. Recoverable failures are in the
// report.
func (e *Executor) Run(ctx context.Context, names ...string) (*Report, error) {
	report := &Report{RunID: uuid.NewString()}
	for _, name := range names {
		if _, ok := e.tasks.Lookup(name); !ok {
			return report, fmt.Errorf("%w: %q", ErrUnknownTask, name)
		}
	}

	ctx = ctxlog.With(ctx, "run", report.RunID)
	logger := ctxlog.FromContext(ctx)
	logger.Info("🚀 Starting run.", "tasks", names)
	start := time.Now()

	for _, name := range names {
		if err := e.run(ctx, name, report); err != nil {
			logger.Error("Run aborted.", "task", name, "error", err)
			return report, err
		}
	}

	logger.Info("🏁 Run finished.", "duration", time.Since(start), "failures", len(report.Failures()))
	return report, nil
}

func (e *Executor) run(ctx context.Context, name string, report *Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t, ok := e.tasks.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTask, name)
	}

	if err := e.runDeps(ctx, t, report); err != nil {
		return err
	}
	if t.Action == nil {
		return nil
	}

	logger := ctxlog.FromContext(ctx).With("task", t.Name)
	logger.Info("▶️ Starting task", "clean", t.Clean)
	start := time.Now()

	res := t.Action(ctx)

	tr := TaskReport{
		Name:     t.Name,
		Duration: time.Since(start),
		Written:  len(res.Written),
		Failures: res.Failures,
	}
	report.add(tr)
	for _, f := range res.Failures {
		logger.Error("Task reported a failure.", "error", f)
	}
	if res.Fatal != nil {
		return fmt.Errorf("task %q failed: %w", t.Name, res.Fatal)
	}
	logger.Info("✅ Finished task", "duration", tr.Duration, "written", tr.Written, "failures", len(tr.Failures))
	return nil
}

func (e *Executor) runDeps(ctx context.Context, t Task, report *Report) error {
	if len(t.Deps) == 0 {
		return nil
	}
	if t.Mode == Series || len(t.Deps) == 1 {
		for _, dep := range t.Deps {
			if err := e.run(ctx, dep, report); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, dep := range t.Deps {
		g.Go(func() error {
			return e.run(gctx, dep, report)
		})
	}
	return g.Wait()
}
