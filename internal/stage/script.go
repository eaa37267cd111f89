package stage

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/specialistvlad/f2eflow/internal/ctxlog"
	"github.com/specialistvlad/f2eflow/internal/fsutil"
)

// BundleOptions configures the script stage.
type BundleOptions struct {
	// NodeEnv replaces process.env.NODE_ENV. Empty means undefined.
	NodeEnv string
	// Define holds extra compile-time replacements, identifier to JS
	// expression.
	Define map[string]string
	// WorkDir is the directory node_modules resolution starts from.
	WorkDir string
}

// Bundle writes one self-contained IIFE bundle per input file into OutDir.
// Each bundle exposes its exports through a global named after the file.
func Bundle(ctx context.Context, spec Spec, opts BundleOptions) Result {
	var res Result
	logger := ctxlog.FromContext(ctx)

	entries, err := fsutil.Expand(spec.Inputs...)
	if err != nil {
		res.Fail(err)
		return res
	}

	define := defines(opts)
	for _, entry := range entries {
		base := filepath.Base(entry.Path)
		outfile := filepath.Join(spec.OutDir, base)
		name := globalName(strings.TrimSuffix(base, filepath.Ext(base)))

		build := api.Build(api.BuildOptions{
			EntryPoints:   []string{entry.Path},
			Outfile:       outfile,
			Bundle:        true,
			Write:         true,
			Format:        api.FormatIIFE,
			GlobalName:    name,
			Platform:      api.PlatformBrowser,
			Target:        api.ES2015,
			Define:        define,
			AbsWorkingDir: opts.WorkDir,
			LogLevel:      api.LogLevelSilent,
		})
		if len(build.Errors) > 0 {
			res.Failf("bundle %s: %s", entry.Path, formatMessages(build.Errors))
			continue
		}
		for _, w := range build.Warnings {
			logger.Warn("Bundler warning.", "entry", entry.Path, "warning", w.Text)
		}
		logger.Debug("Bundled script.", "entry", entry.Path, "global", name)
		res.Wrote(outfile)
	}
	return res
}

func defines(opts BundleOptions) map[string]string {
	out := make(map[string]string, len(opts.Define)+1)
	for k, v := range opts.Define {
		out[k] = v
	}
	if opts.NodeEnv == "" {
		out["process.env.NODE_ENV"] = "undefined"
	} else {
		quoted, _ := json.Marshal(opts.NodeEnv)
		out["process.env.NODE_ENV"] = string(quoted)
	}
	return out
}

// globalName turns a file base name into a valid JS identifier.
func globalName(base string) string {
	var b strings.Builder
	for i, r := range base {
		switch {
		case r == '_' || r == '$' || unicode.IsLetter(r):
			b.WriteRune(r)
		case unicode.IsDigit(r):
			if i == 0 {
				b.WriteRune('_')
			}
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}

func formatMessages(msgs []api.Message) string {
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if m.Location != nil {
			parts = append(parts, fmt.Sprintf("%s:%d:%d: %s", m.Location.File, m.Location.Line, m.Location.Column, m.Text))
			continue
		}
		parts = append(parts, m.Text)
	}
	return strings.Join(parts, "; ")
}
