package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/specialistvlad/f2eflow/internal/ctxlog"
	"github.com/specialistvlad/f2eflow/internal/devserver"
	"github.com/specialistvlad/f2eflow/internal/pipeline"
	"github.com/specialistvlad/f2eflow/internal/reload"
	"github.com/specialistvlad/f2eflow/internal/stage"
	"github.com/specialistvlad/f2eflow/internal/watch"
)

// Serve runs the static server with single-page-app fallback until ctx is
// done.
func (a *App) Serve(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	srv := devserver.New(devserver.Options{Dir: a.paths.Dist, Port: a.settings.Server.Port})
	if err := srv.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return srv.Shutdown(ctx)
}

// serveAndWatch is the server task of the watch pipeline: the dev server
// with live reload plus the rebuild loop, until ctx is done.
func (a *App) serveAndWatch(ctx context.Context) stage.Result {
	logger := ctxlog.FromContext(ctx)

	hub := reload.NewHub(ctx)
	srv := devserver.New(devserver.Options{Dir: a.paths.Dist, Port: a.settings.Server.Port, Hub: hub})
	if err := srv.Start(ctx); err != nil {
		hub.Close()
		return stage.Result{Fatal: err}
	}
	defer srv.Shutdown(ctx)

	w, err := watch.New(watch.Options{
		Root:     a.paths.Root,
		Dirs:     []string{filepath.Join(a.paths.Root, "src")},
		Bindings: pipeline.Bindings(),
		Runner:   a.executor,
		Reload:   hub,
	})
	if err != nil {
		return stage.Result{Fatal: err}
	}
	if err := w.Run(ctx); err != nil {
		return stage.Result{Fatal: fmt.Errorf("watch: %w", err)}
	}
	logger.Info("Watch stopped.")
	return stage.Result{}
}
