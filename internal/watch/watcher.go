package watch

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/specialistvlad/f2eflow/internal/ctxlog"
	"github.com/specialistvlad/f2eflow/internal/dag"
	"github.com/specialistvlad/f2eflow/internal/fsutil"
	"golang.org/x/sync/errgroup"
)

// hashCacheSize bounds the number of file hashes kept for change detection.
const hashCacheSize = 1024

// Runner runs tasks by name.
type Runner interface {
	Run(ctx context.Context, names ...string) (*dag.Report, error)
}

// Broadcaster notifies connected browsers.
type Broadcaster interface {
	Broadcast(reason string)
}

// Options configures a Watcher.
type Options struct {
	// Root is the directory binding patterns are relative to.
	Root string
	// Dirs are watched recursively. Defaults to Root.
	Dirs     []string
	Bindings []Binding
	Runner   Runner
	// Reload may be nil.
	Reload Broadcaster
}

// Watcher turns filesystem events into task runs.
type Watcher struct {
	opts   Options
	queues map[string]chan struct{}
	hashes *lru.Cache[string, [sha256.Size]byte]
	fsw    *fsnotify.Watcher
}

// New creates a Watcher. Nothing is watched until Run.
func New(opts Options) (*Watcher, error) {
	if opts.Runner == nil {
		return nil, errors.New("watch: runner is required")
	}
	if len(opts.Dirs) == 0 {
		opts.Dirs = []string{opts.Root}
	}
	hashes, err := lru.New[string, [sha256.Size]byte](hashCacheSize)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		opts:   opts,
		queues: make(map[string]chan struct{}, len(opts.Bindings)),
		hashes: hashes,
	}
	for _, b := range opts.Bindings {
		if _, dup := w.queues[b.Name]; dup {
			return nil, fmt.Errorf("watch: binding %q declared twice", b.Name)
		}
		w.queues[b.Name] = make(chan struct{}, 1)
	}
	return w, nil
}

// Run watches until ctx is done. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fsw.Close()
	w.fsw = fsw

	for _, dir := range w.opts.Dirs {
		if err := w.addTree(dir); err != nil {
			return err
		}
	}
	logger.Info("👀 Watching for changes.", "dirs", w.opts.Dirs, "bindings", len(w.opts.Bindings))

	g, gctx := errgroup.WithContext(ctx)
	for _, b := range w.opts.Bindings {
		g.Go(func() error {
			w.loop(gctx, b)
			return nil
		})
	}
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case ev, ok := <-fsw.Events:
				if !ok {
					return nil
				}
				w.Handle(gctx, ev)
			case err, ok := <-fsw.Errors:
				if !ok {
					return nil
				}
				logger.Warn("File watcher error.", "error", err)
			}
		}
	})
	return g.Wait()
}

// Handle dispatches one filesystem event. It never blocks on a running
// task.
func (w *Watcher) Handle(ctx context.Context, ev fsnotify.Event) {
	logger := ctxlog.FromContext(ctx)
	if ev.Op == fsnotify.Chmod {
		return
	}

	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if w.fsw != nil {
				if err := w.addTree(ev.Name); err != nil {
					logger.Warn("Failed to watch new directory.", "dir", ev.Name, "error", err)
				}
			}
			return
		}
	}

	rel, err := filepath.Rel(w.opts.Root, ev.Name)
	if err != nil {
		return
	}
	matched := Match(w.opts.Bindings, filepath.ToSlash(rel))
	if len(matched) == 0 {
		return
	}

	if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
		w.hashes.Remove(ev.Name)
	} else if !w.changed(ev.Name) {
		logger.Debug("Content unchanged, ignoring event.", "path", rel)
		return
	}

	for _, b := range matched {
		select {
		case w.queues[b.Name] <- struct{}{}:
			logger.Debug("Queued rebuild.", "binding", b.Name, "path", rel, "op", ev.Op.String())
		default:
			logger.Debug("Rebuild already pending.", "binding", b.Name, "path", rel)
		}
	}
}

// changed reports whether path's content differs from the last seen
// version. Unreadable files count as changed.
func (w *Watcher) changed(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return true
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return true
	}
	var sum [sha256.Size]byte
	copy(sum[:], h.Sum(nil))

	if prev, ok := w.hashes.Get(path); ok && prev == sum {
		return false
	}
	w.hashes.Add(path, sum)
	return true
}

func (w *Watcher) loop(ctx context.Context, b Binding) {
	logger := ctxlog.FromContext(ctx).With("binding", b.Name, "task", b.Task)
	queue := w.queues[b.Name]
	for {
		select {
		case <-ctx.Done():
			return
		case <-queue:
		}

		logger.Info("🔁 Change detected, rebuilding.")
		_, err := w.opts.Runner.Run(ctx, b.Task)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("Rebuild failed.", "error", err)
			continue
		}
		if b.Reload && w.opts.Reload != nil {
			w.opts.Reload.Broadcast(b.Task)
		}
	}
}

func (w *Watcher) addTree(root string) error {
	dirs, err := fsutil.Dirs(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to list %s: %w", root, err)
	}
	for _, d := range dirs {
		if err := w.fsw.Add(d); err != nil {
			return fmt.Errorf("failed to watch %s: %w", d, err)
		}
	}
	return nil
}
