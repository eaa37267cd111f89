package stage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bep/godartsass/v2"
	"github.com/specialistvlad/f2eflow/internal/ctxlog"
	"github.com/specialistvlad/f2eflow/internal/fsutil"
)

// StyleCompiler turns one preprocessor source file into CSS.
type StyleCompiler interface {
	Compile(ctx context.Context, path string, includePaths []string) (string, error)
}

// Sass compiles .sass and .scss files through the dart-sass embedded
// protocol. The dart-sass process is started on first use and reused until
// Close.
type Sass struct {
	binary string

	mu         sync.Mutex
	transpiler *godartsass.Transpiler
}

// NewSass returns a compiler that runs binary, which must be a dart-sass
// executable supporting --embedded.
func NewSass(binary string) *Sass {
	return &Sass{binary: binary}
}

// Compile implements StyleCompiler.
func (s *Sass) Compile(ctx context.Context, path string, includePaths []string) (string, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	t, err := s.start(ctx)
	if err != nil {
		return "", err
	}

	syntax := godartsass.SourceSyntaxSCSS
	if strings.EqualFold(filepath.Ext(path), ".sass") {
		syntax = godartsass.SourceSyntaxSASS
	}
	out, err := t.Execute(godartsass.Args{
		Source:       string(source),
		URL:          "file://" + filepath.ToSlash(path),
		SourceSyntax: syntax,
		OutputStyle:  godartsass.OutputStyleExpanded,
		IncludePaths: includePaths,
	})
	if err != nil {
		return "", err
	}
	return out.CSS, nil
}

func (s *Sass) start(ctx context.Context) (*godartsass.Transpiler, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.transpiler != nil {
		return s.transpiler, nil
	}

	logger := ctxlog.FromContext(ctx)
	t, err := godartsass.Start(godartsass.Options{
		DartSassEmbeddedFilename: s.binary,
		LogEventHandler: func(e godartsass.LogEvent) {
			logger.Warn("Sass.", "message", e.Message)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start sass %q: %w", s.binary, err)
	}
	logger.Debug("Started sass compiler.", "binary", s.binary)
	s.transpiler = t
	return t, nil
}

// Close stops the dart-sass process if it was started.
func (s *Sass) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.transpiler == nil {
		return nil
	}
	err := s.transpiler.Close()
	s.transpiler = nil
	return err
}

// CompileStyles compiles every input through c into OutDir/<name>.css.
// Partials, whose names start with "_", are only reachable through imports
// and are skipped. A failing file does not stop the others.
func CompileStyles(ctx context.Context, c StyleCompiler, spec Spec) Result {
	var res Result
	logger := ctxlog.FromContext(ctx)

	matches, err := fsutil.Expand(spec.Inputs...)
	if err != nil {
		res.Fail(err)
		return res
	}

	for _, m := range matches {
		base := filepath.Base(m.Path)
		if strings.HasPrefix(base, "_") {
			continue
		}
		css, err := c.Compile(ctx, m.Path, []string{filepath.Dir(m.Path)})
		if err != nil {
			res.Failf("compile %s: %w", m.Path, err)
			continue
		}
		name := strings.TrimSuffix(filepath.ToSlash(m.Rel), filepath.Ext(base)) + ".css"
		dst := filepath.Join(spec.OutDir, filepath.FromSlash(name))
		if err := fsutil.WriteFile(dst, []byte(css), 0644); err != nil {
			res.Failf("write %s: %w", dst, err)
			continue
		}
		logger.Debug("Compiled stylesheet.", "source", m.Path, "output", dst)
		res.Wrote(dst)
	}
	return res
}
