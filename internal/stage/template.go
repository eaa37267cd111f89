package stage

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"path/filepath"
	"strings"

	"github.com/Joker/jade"
	"github.com/specialistvlad/f2eflow/internal/ctxlog"
	"github.com/specialistvlad/f2eflow/internal/fsutil"
)

// RenderOptions configures the template stage.
type RenderOptions struct {
	UseJade bool
	// Locals is the data every page is executed with.
	Locals map[string]string
}

// Render turns each Jade page into OutDir/<relative path>.html.
func Render(ctx context.Context, spec Spec, opts RenderOptions) Result {
	var res Result
	if !opts.UseJade {
		res.Fail(ErrLayoutModeUnsupported)
		return res
	}

	matches, err := fsutil.Expand(spec.Inputs...)
	if err != nil {
		res.Fail(err)
		return res
	}

	logger := ctxlog.FromContext(ctx)
	for _, m := range matches {
		html, err := renderPage(m.Path, opts.Locals)
		if err != nil {
			res.Failf("render %s: %w", m.Path, err)
			continue
		}
		rel := strings.TrimSuffix(m.Rel, filepath.Ext(m.Rel)) + ".html"
		dst := filepath.Join(spec.OutDir, rel)
		if err := fsutil.WriteFile(dst, html, 0644); err != nil {
			res.Failf("write %s: %w", dst, err)
			continue
		}
		logger.Debug("Rendered page.", "source", m.Path, "output", dst)
		res.Wrote(dst)
	}
	return res
}

func renderPage(path string, locals map[string]string) ([]byte, error) {
	text, err := jade.ParseFile(path)
	if err != nil {
		return nil, err
	}
	tpl, err := template.New(filepath.Base(path)).Option("missingkey=zero").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("compile template: %w", err)
	}
	data := locals
	if data == nil {
		data = map[string]string{}
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute template: %w", err)
	}
	return buf.Bytes(), nil
}
