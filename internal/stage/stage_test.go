package stage

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/specialistvlad/f2eflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopy_ImageRuleSet(t *testing.T) {
	ctx, _ := testutil.Context(t)
	root := t.TempDir()
	src := filepath.Join(root, "images")
	out := filepath.Join(root, "dist")
	testutil.WriteTree(t, src, map[string]string{
		"logo.png":           "logo",
		"icons/home.png":     "sprite",
		"icons-2x/home.png":  "sprite2x",
		"banners/wide.png":   "wide",
		"banners/deep/x.png": "too deep",
		"icons/photo.jpg":    "jpg",
		"a/b/c/anim.gif":     "gif",
		"vector.svg":         "<svg/>",
		"notes.txt":          "ignored",
	})

	res := Copy(ctx, Spec{Inputs: ImagePatterns(src), OutDir: out})
	require.True(t, res.OK(), "failures: %v", res.Failures)

	got := testutil.ReadTree(t, out)
	assert.Equal(t, map[string]string{
		"logo.png":         "logo",
		"banners/wide.png": "wide",
		"icons/photo.jpg":  "jpg",
		"a/b/c/anim.gif":   "gif",
		"vector.svg":       "<svg/>",
	}, got)
}

func TestCopy_RootWithGlobSyntax(t *testing.T) {
	ctx, _ := testutil.Context(t)
	for _, dir := range []string{"site[v2]", "site{a,b}", "site*", "what?"} {
		t.Run(dir, func(t *testing.T) {
			root := filepath.Join(t.TempDir(), dir)
			src := filepath.Join(root, "src", "resources", "images")
			out := filepath.Join(root, "dist")
			testutil.WriteTree(t, src, map[string]string{
				"a.png":       "a",
				"icons/b.png": "sprite",
				"deep/c.jpg":  "c",
			})

			res := Copy(ctx, Spec{Inputs: ImagePatterns(src), OutDir: out})
			require.True(t, res.OK(), "failures: %v", res.Failures)

			assert.Len(t, res.Written, 2)
			assert.Equal(t, map[string]string{"a.png": "a", "deep/c.jpg": "c"}, testutil.ReadTree(t, out))
		})
	}
}

func TestEmptyGlobsAreNoOps(t *testing.T) {
	ctx, _ := testutil.Context(t)
	root := t.TempDir()
	out := filepath.Join(root, "out")
	none := []string{filepath.Join(root, "missing", "**", "*.x")}
	spec := Spec{Inputs: none, OutDir: out}

	results := map[string]Result{
		"copy":    Copy(ctx, spec),
		"concat":  Concat(ctx, spec, "lib.js"),
		"bundle":  Bundle(ctx, spec, BundleOptions{WorkDir: root}),
		"styles":  CompileStyles(ctx, &fakeCompiler{}, spec),
		"render":  Render(ctx, spec, RenderOptions{UseJade: true}),
		"min:css": MinifyStyles(ctx, spec),
		"min:js":  MinifyScripts(ctx, spec),
		"min:img": MinifyImages(ctx, spec),
		"clean":   CleanFiles(ctx, none...),
	}
	for name, res := range results {
		assert.True(t, res.OK(), "%s: %v", name, res.Failures)
		assert.Empty(t, res.Written, name)
	}
	assert.NoDirExists(t, out)
}

func TestConcat_DeclarationOrder(t *testing.T) {
	ctx, _ := testutil.Context(t)
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"vendor/z.css": "z{}",
		"vendor/a.css": "a{}",
	})
	spec := Spec{
		Inputs: []string{filepath.Join(root, "vendor/z.css"), filepath.Join(root, "vendor/a.css")},
		OutDir: filepath.Join(root, "dist"),
	}

	for i := 0; i < 2; i++ {
		res := Concat(ctx, spec, "lib.css")
		require.True(t, res.OK())
		content, err := os.ReadFile(filepath.Join(root, "dist", "lib.css"))
		require.NoError(t, err)
		assert.Equal(t, "z{}\na{}", string(content))
	}
}

type fakeCompiler struct {
	calls []string
}

func (f *fakeCompiler) Compile(_ context.Context, path string, _ []string) (string, error) {
	f.calls = append(f.calls, filepath.Base(path))
	if strings.Contains(path, "broken") {
		return "", errors.New("expected \"{\"")
	}
	return "/* " + filepath.Base(path) + " */", nil
}

func TestCompileStyles(t *testing.T) {
	ctx, _ := testutil.Context(t)
	root := t.TempDir()
	sass := filepath.Join(root, "src/css/sass")
	testutil.WriteTree(t, sass, map[string]string{
		"main.sass":       "body\n  margin: 0",
		"broken.scss":     "body {",
		"_mixins.scss":    "@mixin x {}",
		"theme/dark.scss": "a {}",
	})

	c := &fakeCompiler{}
	res := CompileStyles(ctx, c, Spec{
		Inputs: []string{filepath.Join(sass, "**/*.sass"), filepath.Join(sass, "**/*.scss")},
		OutDir: filepath.Join(root, "src/css"),
	})

	require.Len(t, res.Failures, 1)
	assert.ErrorContains(t, res.Failures[0], "broken.scss")
	assert.NoError(t, res.Fatal)
	assert.NotContains(t, c.calls, "_mixins.scss")

	got := testutil.ReadTree(t, filepath.Join(root, "src/css"))
	assert.Equal(t, "/* main.sass */", got["main.css"])
	assert.Equal(t, "/* dark.scss */", got["theme/dark.css"])
	assert.NotContains(t, got, "broken.css")
}

func TestRender(t *testing.T) {
	ctx, _ := testutil.Context(t)
	root := t.TempDir()
	pages := filepath.Join(root, "src/views/pages")
	testutil.WriteTree(t, pages, map[string]string{
		"index.jade":      "doctype html\nhtml\n  body\n    h1 Hello\n",
		"about/team.jade": "div.team\n  p team\n",
	})
	out := filepath.Join(root, "dist")
	spec := Spec{Inputs: []string{filepath.Join(pages, "**/*.jade")}, OutDir: out}

	t.Run("jade", func(t *testing.T) {
		res := Render(ctx, spec, RenderOptions{UseJade: true})
		require.True(t, res.OK(), "failures: %v", res.Failures)
		assert.Len(t, res.Written, 2)

		index, err := os.ReadFile(filepath.Join(out, "index.html"))
		require.NoError(t, err)
		assert.Contains(t, string(index), "<h1>Hello</h1>")
		assert.FileExists(t, filepath.Join(out, "about", "team.html"))
	})

	t.Run("raw html mode is unsupported", func(t *testing.T) {
		res := Render(ctx, spec, RenderOptions{UseJade: false})
		require.Len(t, res.Failures, 1)
		assert.ErrorIs(t, res.Failures[0], ErrLayoutModeUnsupported)
		assert.NoError(t, res.Fatal)
	})
}

func TestBundle(t *testing.T) {
	ctx, _ := testutil.Context(t)
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"src/js/app.js":       "import { greet } from './lib/greet';\nexport const env = process.env.NODE_ENV;\ngreet();\n",
		"src/js/lib/greet.js": "export function greet() { return 'hi'; }\n",
		"src/js/broken.js":    "export const = ;\n",
		"src/js/my-widget.js": "export default 1;\n",
	})
	out := filepath.Join(root, "dist/js")

	res := Bundle(ctx, Spec{Inputs: []string{filepath.Join(root, "src/js/*.js")}, OutDir: out},
		BundleOptions{NodeEnv: "production", WorkDir: root})

	require.Len(t, res.Failures, 1)
	assert.ErrorContains(t, res.Failures[0], "broken.js")

	app, err := os.ReadFile(filepath.Join(out, "app.js"))
	require.NoError(t, err)
	assert.Contains(t, string(app), "var app =")
	assert.Contains(t, string(app), `"production"`)
	assert.Contains(t, string(app), "hi")
	assert.NoFileExists(t, filepath.Join(out, "greet.js"))

	widget, err := os.ReadFile(filepath.Join(out, "my-widget.js"))
	require.NoError(t, err)
	assert.Contains(t, string(widget), "var my_widget =")
}

func TestGlobalName(t *testing.T) {
	tests := map[string]string{
		"app":       "app",
		"my-widget": "my_widget",
		"1st":       "_1st",
		"":          "_",
		"a.b":       "a_b",
	}
	for in, want := range tests {
		assert.Equal(t, want, globalName(in), in)
	}
}

func TestMinify(t *testing.T) {
	ctx, _ := testutil.Context(t)
	root := t.TempDir()
	dist := filepath.Join(root, "dist")
	testutil.WriteTree(t, dist, map[string]string{
		"css/app.css":               "a {\n  color: red;\n}\n",
		"css/lib.css":               "b {\n  color: blue;\n}\n",
		"js/app.js":                 "function add(first, second) {\n  return first + second;\n}\nconsole.log(add(1, 2));\n",
		"resources/images/anim.gif": "GIF89a",
		"resources/images/logo.svg": "<svg xmlns=\"http://www.w3.org/2000/svg\">\n  <!-- comment -->\n  <rect width=\"10\" height=\"10\"/>\n</svg>\n",
	})

	var raw bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for x := 0; x < 64; x++ {
		for y := 0; y < 64; y++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	require.NoError(t, (&png.Encoder{CompressionLevel: png.NoCompression}).Encode(&raw, img))
	pngPath := filepath.Join(dist, "resources/images/flat.png")
	require.NoError(t, os.WriteFile(pngPath, raw.Bytes(), 0644))

	cssDir := filepath.Join(dist, "css")
	res := MinifyStyles(ctx, Spec{
		Inputs: []string{filepath.Join(cssDir, "**/*.css"), "!" + filepath.Join(cssDir, "lib.css")},
		OutDir: cssDir,
	})
	require.True(t, res.OK(), "failures: %v", res.Failures)

	jsDir := filepath.Join(dist, "js")
	res = MinifyScripts(ctx, Spec{Inputs: []string{filepath.Join(jsDir, "**/*.js")}, OutDir: jsDir})
	require.True(t, res.OK(), "failures: %v", res.Failures)

	imgDir := filepath.Join(dist, "resources/images")
	res = MinifyImages(ctx, Spec{Inputs: ImagePatterns(imgDir), OutDir: imgDir})
	require.True(t, res.OK(), "failures: %v", res.Failures)

	got := testutil.ReadTree(t, dist)
	assert.Equal(t, "a{color:red}", got["css/app.css"])
	assert.Equal(t, "b {\n  color: blue;\n}\n", got["css/lib.css"], "library bundle is left alone")
	assert.NotContains(t, got["js/app.js"], "second")
	assert.Less(t, len(got["js/app.js"]), 60)
	assert.Equal(t, "GIF89a", got["resources/images/anim.gif"])
	assert.NotContains(t, got["resources/images/logo.svg"], "comment")
	assert.Less(t, len(got["resources/images/flat.png"]), raw.Len())

	_, err := png.Decode(strings.NewReader(got["resources/images/flat.png"]))
	assert.NoError(t, err)
}
