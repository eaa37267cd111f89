package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/specialistvlad/f2eflow/internal/archive"
	"github.com/specialistvlad/f2eflow/internal/config"
	"github.com/specialistvlad/f2eflow/internal/ctxlog"
	"github.com/specialistvlad/f2eflow/internal/dag"
	"github.com/specialistvlad/f2eflow/internal/pipeline"
	"github.com/specialistvlad/f2eflow/internal/stage"
)

// ErrTaskFailures is returned by Run when tasks finished but reported
// recoverable failures.
var ErrTaskFailures = errors.New("tasks reported failures")

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	settings *config.Settings
	paths    *config.Paths
	styles   *stage.Sass
	tasks    *dag.Tasks
	executor *dag.Executor
}

// NewApp is the constructor for the main application. It loads the
// settings, resolves the project layout and declares the task set.
func NewApp(outW io.Writer, cfg *Config) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	settings, err := LoadSettings(ctx, cfg.Root, cfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	if cfg.Port != 0 {
		settings.Server.Port = cfg.Port
	}

	paths, err := config.Resolve(cfg.Root, settings)
	if err != nil {
		return nil, err
	}
	logger.Debug("Project layout resolved.", "root", paths.Root, "dist", paths.Dist)

	a := &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		settings: settings,
		paths:    paths,
		styles:   stage.NewSass(settings.Sass.Binary),
	}

	opts := pipeline.Options{
		Paths:    paths,
		Settings: settings,
		Styles:   a.styles,
		NodeEnv:  cfg.NodeEnv,
		Archiver: archive.New(paths.Archive),
		Serve:    a.serveAndWatch,
	}
	if u := settings.Archive.Upload; u != nil {
		uploader, err := archive.NewS3Uploader(u)
		if err != nil {
			return nil, err
		}
		opts.Uploader = uploader
	}

	a.tasks, err = pipeline.Tasks(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to declare tasks: %w", err)
	}
	a.executor = dag.NewExecutor(a.tasks)
	logger.Debug("Task graph built.", "tasks", len(a.tasks.All()))
	return a, nil
}

// Tasks returns the declared tasks.
func (a *App) Tasks() []dag.Task {
	return a.tasks.All()
}

// Settings returns the loaded settings.
func (a *App) Settings() *config.Settings {
	return a.settings
}

// Paths returns the resolved project layout.
func (a *App) Paths() *config.Paths {
	return a.paths
}

// Run executes the named tasks. A fatal task error is returned as is.
// Recoverable failures let every task finish and then yield
// ErrTaskFailures.
func (a *App) Run(ctx context.Context, names ...string) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "tasks", names)

	report, err := a.executor.Run(ctx, names...)
	if err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}
	if failures := report.Failures(); len(failures) > 0 {
		a.logger.Warn("Tasks finished with failures.", "run", report.RunID, "count", len(failures))
		return fmt.Errorf("%w: %d failure(s)", ErrTaskFailures, len(failures))
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

// Close releases the style compiler.
func (a *App) Close() error {
	return a.styles.Close()
}
