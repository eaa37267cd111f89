package stage

import (
	"bytes"
	"context"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/evanw/esbuild/pkg/api"
	"github.com/specialistvlad/f2eflow/internal/ctxlog"
	"github.com/specialistvlad/f2eflow/internal/fsutil"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/svg"
)

// JPEGQuality is the quality used when re-encoding JPEG images.
const JPEGQuality = 80

type transformFunc func(path string, in []byte) ([]byte, error)

// MinifyStyles minifies stylesheets into OutDir. With OutDir set to the
// inputs' base directory the files are minified in place.
func MinifyStyles(ctx context.Context, spec Spec) Result {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	return transform(ctx, spec, "css", func(_ string, in []byte) ([]byte, error) {
		return m.Bytes("text/css", in)
	})
}

// MinifyScripts minifies whitespace, syntax and identifiers of every input
// script.
func MinifyScripts(ctx context.Context, spec Spec) Result {
	return transform(ctx, spec, "js", func(path string, in []byte) ([]byte, error) {
		out := api.Transform(string(in), api.TransformOptions{
			Loader:            api.LoaderJS,
			MinifyWhitespace:  true,
			MinifySyntax:      true,
			MinifyIdentifiers: true,
			Sourcefile:        path,
			LogLevel:          api.LogLevelSilent,
		})
		if len(out.Errors) > 0 {
			return nil, &bundleError{msgs: out.Errors}
		}
		return out.Code, nil
	})
}

// MinifyImages recompresses images. PNG and JPEG are re-encoded and kept
// only when the result is smaller, SVG is minified, anything else is copied
// untouched.
func MinifyImages(ctx context.Context, spec Spec) Result {
	m := minify.New()
	m.AddFunc("image/svg+xml", svg.Minify)
	return transform(ctx, spec, "image", func(path string, in []byte) ([]byte, error) {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".svg":
			return m.Bytes("image/svg+xml", in)
		case ".png":
			return smaller(in, recompressPNG)
		case ".jpg", ".jpeg":
			return smaller(in, recompressJPEG)
		default:
			return in, nil
		}
	})
}

func recompressPNG(in []byte) ([]byte, error) {
	img, err := png.Decode(bytes.NewReader(in))
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func recompressJPEG(in []byte) ([]byte, error) {
	img, err := jpeg.Decode(bytes.NewReader(in))
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func smaller(in []byte, fn func([]byte) ([]byte, error)) ([]byte, error) {
	out, err := fn(in)
	if err != nil {
		return nil, err
	}
	if len(out) >= len(in) {
		return in, nil
	}
	return out, nil
}

func transform(ctx context.Context, spec Spec, kind string, fn transformFunc) Result {
	var res Result
	logger := ctxlog.FromContext(ctx)

	matches, err := fsutil.Expand(spec.Inputs...)
	if err != nil {
		res.Fail(err)
		return res
	}

	var before, after uint64
	for _, m := range matches {
		info, err := os.Stat(m.Path)
		if err != nil {
			res.Fail(err)
			continue
		}
		in, err := os.ReadFile(m.Path)
		if err != nil {
			res.Fail(err)
			continue
		}
		out, err := fn(m.Path, in)
		if err != nil {
			res.Failf("minify %s: %w", m.Path, err)
			continue
		}
		dst := filepath.Join(spec.OutDir, m.Rel)
		if err := fsutil.WriteFile(dst, out, info.Mode().Perm()); err != nil {
			res.Failf("write %s: %w", dst, err)
			continue
		}
		before += uint64(len(in))
		after += uint64(len(out))
		res.Wrote(dst)
	}
	if len(res.Written) > 0 {
		logger.Info("Minified.", "kind", kind, "files", len(res.Written),
			"before", humanize.Bytes(before), "after", humanize.Bytes(after))
	}
	return res
}

type bundleError struct {
	msgs []api.Message
}

func (e *bundleError) Error() string {
	return formatMessages(e.msgs)
}
