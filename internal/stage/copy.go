package stage

import (
	"context"
	"path/filepath"

	"github.com/specialistvlad/f2eflow/internal/ctxlog"
	"github.com/specialistvlad/f2eflow/internal/fsutil"
)

// Copy copies every input file verbatim to OutDir, keeping the tree shape
// below each glob's base directory.
func Copy(ctx context.Context, spec Spec) Result {
	var res Result
	matches, err := fsutil.Expand(spec.Inputs...)
	if err != nil {
		res.Fail(err)
		return res
	}
	if len(matches) == 0 {
		ctxlog.FromContext(ctx).Debug("Nothing to copy.", "outDir", spec.OutDir)
		return res
	}
	for _, m := range matches {
		dst := filepath.Join(spec.OutDir, m.Rel)
		if err := fsutil.CopyFile(m.Path, dst); err != nil {
			res.Failf("copy %s: %w", m.Path, err)
			continue
		}
		res.Wrote(dst)
	}
	return res
}

// Concat joins every input file, in declaration order, into OutDir/name.
// No file is written when the inputs match nothing.
func Concat(ctx context.Context, spec Spec, name string) Result {
	var res Result
	matches, err := fsutil.Expand(spec.Inputs...)
	if err != nil {
		res.Fail(err)
		return res
	}
	if len(matches) == 0 {
		ctxlog.FromContext(ctx).Debug("Nothing to concatenate.", "bundle", name)
		return res
	}
	dst := filepath.Join(spec.OutDir, name)
	if err := fsutil.Concat(matches, dst); err != nil {
		res.Failf("concat %s: %w", dst, err)
		return res
	}
	res.Wrote(dst)
	return res
}

// Clean removes dir entirely.
func Clean(ctx context.Context, dir string) Result {
	var res Result
	ctxlog.FromContext(ctx).Debug("Cleaning directory.", "dir", dir)
	if err := fsutil.CleanDir(dir); err != nil {
		res.Failf("clean %s: %w", dir, err)
	}
	return res
}

// CleanFiles removes every file matched by patterns.
func CleanFiles(ctx context.Context, patterns ...string) Result {
	var res Result
	removed, err := fsutil.CleanMatching(patterns...)
	if err != nil {
		res.Failf("clean: %w", err)
	}
	ctxlog.FromContext(ctx).Debug("Cleaned files.", "count", len(removed))
	return res
}

// ImagePatterns returns the image selection used by both the copy and the
// minify steps. Top-level PNGs inside icons/ and icons-2x/ are left out,
// those folders feed sprite generation. Other image types are taken at any
// depth.
func ImagePatterns(dir string) []string {
	return []string{
		fsutil.JoinPattern(dir, "*.png"),
		fsutil.JoinPattern(dir, "*", "*.png"),
		"!" + fsutil.JoinPattern(dir, "icons", "*.png"),
		"!" + fsutil.JoinPattern(dir, "icons-2x", "*.png"),
		fsutil.JoinPattern(dir, "**", "*.jpg"),
		fsutil.JoinPattern(dir, "**", "*.gif"),
		fsutil.JoinPattern(dir, "**", "*.svg"),
	}
}
