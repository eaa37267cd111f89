package hcl

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/f2eflow/internal/config"
	"github.com/specialistvlad/f2eflow/internal/ctxlog"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct {
	// environ is read once per Load; tests replace it.
	environ func() []string
}

// NewLoader creates a new HCL settings loader reading the process environment.
func NewLoader() *Loader {
	return &Loader{environ: os.Environ}
}

// Load parses and decodes the settings file at path.
func (l *Loader) Load(ctx context.Context, path string) (*config.Settings, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path", path)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}

	var root fileRoot
	diags = gohcl.DecodeBody(file.Body, newEvalContext(l.environ()), &root)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}

	settings := translate(&root)
	logger.Debug("HCL loading complete.", "project", settings.Project, "assets", len(settings.Assets), "scripts", len(settings.Scripts), "styles", len(settings.Styles))
	return settings, nil
}

// translate converts the HCL-specific schema into the agnostic model.
func translate(root *fileRoot) *config.Settings {
	s := &config.Settings{
		Project: root.Project,
		UseJade: root.UseJade,
		Assets:  root.Assets,
		Scripts: root.Scripts,
		Styles:  root.Styles,
		Define:  root.Define,
		Locals:  root.Locals,
	}
	if root.Server != nil {
		s.Server.Port = root.Server.Port
	}
	if root.Sass != nil {
		s.Sass.Binary = root.Sass.Binary
	}
	if a := root.Archive; a != nil {
		s.Archive.Dir = a.Dir
		if u := a.Upload; u != nil {
			s.Archive.Upload = &config.Upload{
				Endpoint:  u.Endpoint,
				Region:    u.Region,
				Bucket:    u.Bucket,
				Prefix:    u.Prefix,
				AccessKey: u.AccessKey,
				SecretKey: u.SecretKey,
				UseSSL:    u.UseSSL,
			}
		}
	}
	return s
}
