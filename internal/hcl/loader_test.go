package hcl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/f2eflow/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "f2e.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoader_Load(t *testing.T) {
	t.Parallel()
	path := writeSettings(t, `
project  = "my-site"
use_jade = true
assets   = ["node_modules/font-awesome/fonts/*"]
scripts  = ["node_modules/jquery/dist/jquery.js", "vendor/plugin.js"]
styles   = ["node_modules/normalize.css/normalize.css"]
define   = { API_URL = "\"https://api.example.com\"" }
locals   = { title = "Home" }

server {
  port = 8080
}

archive {
  dir = "out/archive"
  upload {
    endpoint   = "localhost:9000"
    bucket     = "bundles"
    secret_key = env.S3_SECRET
  }
}
`)
	l := &Loader{environ: func() []string { return []string{"S3_SECRET=hunter2", "=ignored", "1BAD=x"} }}

	got, err := l.Load(context.Background(), path)
	require.NoError(t, err)

	want := &config.Settings{
		Project: "my-site",
		UseJade: true,
		Assets:  []string{"node_modules/font-awesome/fonts/*"},
		Scripts: []string{"node_modules/jquery/dist/jquery.js", "vendor/plugin.js"},
		Styles:  []string{"node_modules/normalize.css/normalize.css"},
		Define:  map[string]string{"API_URL": `"https://api.example.com"`},
		Locals:  map[string]string{"title": "Home"},
		Server:  config.Server{Port: 8080},
		Archive: config.Archive{
			Dir:    "out/archive",
			Upload: &config.Upload{Endpoint: "localhost:9000", Bucket: "bundles", SecretKey: "hunter2"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("settings mismatch (-want +got):\n%s", diff)
	}
}

func TestLoader_Load_Minimal(t *testing.T) {
	t.Parallel()
	path := writeSettings(t, `
project  = "bare"
use_jade = false
`)
	got, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "bare", got.Project)
	assert.False(t, got.UseJade)
	assert.Empty(t, got.Assets)
	assert.Nil(t, got.Archive.Upload)
}

func TestLoader_Load_Errors(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name    string
		content string
		errMsg  string
	}{
		{name: "syntax error", content: `project = "x`, errMsg: "failed to parse HCL file"},
		{name: "missing use_jade", content: `project = "x"`, errMsg: "failed to decode HCL file"},
		{name: "wrong type", content: "project = \"x\"\nuse_jade = true\nassets = 3", errMsg: "failed to decode HCL file"},
		{name: "unknown env", content: "project = env.NOPE\nuse_jade = true", errMsg: "failed to decode HCL file"},
		{name: "misspelled attribute", content: "project = \"x\"\nuse_jade = true\nscirpts = [\"a.js\"]", errMsg: "Unsupported argument"},
		{name: "misspelled block", content: "project = \"x\"\nuse_jade = true\nsever {\n  port = 80\n}", errMsg: "Unsupported block type"},
		{name: "misspelled nested attribute", content: "project = \"x\"\nuse_jade = true\nserver {\n  prot = 80\n}", errMsg: "Unsupported argument"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeSettings(t, tc.content)
			l := &Loader{environ: func() []string { return nil }}
			_, err := l.Load(context.Background(), path)
			assert.ErrorContains(t, err, tc.errMsg)
		})
	}
}

func TestLoader_Load_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "nope.hcl"))
	assert.Error(t, err)
}

func TestNewEvalContext(t *testing.T) {
	t.Parallel()
	environ := []string{"S3_SECRET=a=b", "NO_VALUE", "=empty", "1BAD=x", "EMPTY="}

	ctx := newEvalContext(environ)

	env := ctx.Variables["env"].AsValueMap()
	require.Len(t, env, 2)
	assert.Equal(t, "a=b", env["S3_SECRET"].AsString())
	assert.Equal(t, "", env["EMPTY"].AsString())
}
