package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/f2eflow/internal/fsutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSettings() *Settings {
	s := &Settings{
		Project: "my-site",
		UseJade: true,
		Assets:  []string{"node_modules/font-awesome/fonts/*"},
		Scripts: []string{"lib/jquery.js", "!lib/skip.js"},
	}
	s.ApplyDefaults()
	return s
}

func TestApplyDefaults(t *testing.T) {
	s := &Settings{Project: "p", Archive: Archive{Upload: &Upload{Endpoint: "e", Bucket: "b"}}}
	s.ApplyDefaults()

	assert.Equal(t, DefaultPort, s.Server.Port)
	assert.Equal(t, DefaultSassBinary, s.Sass.Binary)
	assert.Equal(t, "archive", s.Archive.Dir)
	assert.Equal(t, "us-east-1", s.Archive.Upload.Region)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(s *Settings)
		errMsg string
	}{
		{name: "valid", mutate: func(s *Settings) {}},
		{name: "missing project", mutate: func(s *Settings) { s.Project = " " }, errMsg: "project name is required"},
		{name: "nested project", mutate: func(s *Settings) { s.Project = "a/b" }, errMsg: "single path segment"},
		{name: "bad port", mutate: func(s *Settings) { s.Server.Port = 70000 }, errMsg: "out of range"},
		{name: "empty glob", mutate: func(s *Settings) { s.Styles = []string{""} }, errMsg: "styles[0] is empty"},
		{name: "upload without bucket", mutate: func(s *Settings) {
			s.Archive.Upload = &Upload{Endpoint: "localhost:9000"}
		}, errMsg: "bucket is required"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := validSettings()
			tc.mutate(s)
			err := s.Validate()
			if tc.errMsg == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalidSettings)
			assert.ErrorContains(t, err, tc.errMsg)
		})
	}
}

func TestResolve(t *testing.T) {
	root := t.TempDir()
	p, err := Resolve(root, validSettings())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "dist"), p.Dist)
	assert.Equal(t, filepath.Join(root, "dist", "css"), p.DistCSS)
	assert.Equal(t, filepath.Join(root, "dist", "js"), p.DistJS)
	assert.Equal(t, filepath.Join(root, "dist", "resources", "images"), p.DistImages)
	assert.Equal(t, filepath.Join(root, "dist", "resources", "fonts"), p.DistFonts)
	assert.Equal(t, filepath.Join(root, "src", "css", "sass"), p.SrcSass)
	assert.Equal(t, filepath.Join(root, "archive"), p.Archive)

	want := []string{
		filepath.Join(root, "lib/jquery.js"),
		"!" + filepath.Join(root, "lib/skip.js"),
	}
	if diff := cmp.Diff(want, p.LibScripts); diff != "" {
		t.Errorf("LibScripts mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, p.LibStyles)
}

func TestResolve_LibraryGlobsUnderRootWithGlobSyntax(t *testing.T) {
	root := filepath.Join(t.TempDir(), "shop[v2]")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "lib"), 0755))
	for _, name := range []string{"jquery.js", "skip.js"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, "lib", name), []byte(name), 0644))
	}

	p, err := Resolve(root, validSettings())
	require.NoError(t, err)

	ms, err := fsutil.Expand(p.LibScripts...)
	require.NoError(t, err)
	require.Len(t, ms, 1)
	assert.Equal(t, filepath.Join(root, "lib", "jquery.js"), ms[0].Path)
}

func TestResolve_NilSettings(t *testing.T) {
	_, err := Resolve(t.TempDir(), nil)
	require.ErrorIs(t, err, ErrInvalidSettings)
}
