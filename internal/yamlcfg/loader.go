// Package yamlcfg implements config.Loader for YAML documents and for the
// package.json manifest of a Node project. Both use the same shape: the
// project name under `name` and the build settings under `f2e-configs`.
// JSON is valid YAML, so one decoder serves both.
package yamlcfg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/specialistvlad/f2eflow/internal/config"
	"github.com/specialistvlad/f2eflow/internal/ctxlog"
	"gopkg.in/yaml.v3"
)

// document mirrors a package.json (or f2e.yaml) file. Unknown top-level
// keys belong to npm and are ignored; the f2e-configs section is decoded
// strictly on its own.
type document struct {
	Name    string    `yaml:"name"`
	Configs yaml.Node `yaml:"f2e-configs"`
}

type settings struct {
	Assets  []string          `yaml:"assets"`
	Scripts []string          `yaml:"scripts"`
	Styles  []string          `yaml:"styles"`
	UseJade *bool             `yaml:"useJade"`
	Define  map[string]string `yaml:"define"`
	Locals  map[string]string `yaml:"locals"`
	Server  struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Sass struct {
		Binary string `yaml:"binary"`
	} `yaml:"sass"`
	Archive struct {
		Dir    string  `yaml:"dir"`
		Upload *upload `yaml:"upload"`
	} `yaml:"archive"`
}

type upload struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	UseSSL    bool   `yaml:"useSSL"`
}

// Loader is the YAML/JSON implementation of config.Loader.
type Loader struct{}

// NewLoader creates a new YAML settings loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads the document at path. A document without an `f2e-configs`
// section, or whose section omits useJade, is rejected.
func (l *Loader) Load(ctx context.Context, path string) (*config.Settings, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("YAML loader started.", "path", path)

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(content))
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse settings %s: %w", path, err)
	}
	if doc.Configs.Kind == 0 || doc.Configs.Tag == "!!null" {
		return nil, fmt.Errorf("%w: %s has no f2e-configs section", config.ErrInvalidSettings, path)
	}
	c, err := decodeSection(&doc.Configs)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: f2e-configs: %v", config.ErrInvalidSettings, path, err)
	}
	if c.UseJade == nil {
		return nil, fmt.Errorf("%w: %s: f2e-configs.useJade is required", config.ErrInvalidSettings, path)
	}

	s := &config.Settings{
		Project: doc.Name,
		UseJade: *c.UseJade,
		Assets:  c.Assets,
		Scripts: c.Scripts,
		Styles:  c.Styles,
		Define:  c.Define,
		Locals:  c.Locals,
		Server:  config.Server{Port: c.Server.Port},
		Sass:    config.Sass{Binary: c.Sass.Binary},
		Archive: config.Archive{Dir: c.Archive.Dir},
	}
	if u := c.Archive.Upload; u != nil {
		s.Archive.Upload = &config.Upload{
			Endpoint:  os.ExpandEnv(u.Endpoint),
			Region:    u.Region,
			Bucket:    u.Bucket,
			Prefix:    u.Prefix,
			AccessKey: os.ExpandEnv(u.AccessKey),
			SecretKey: os.ExpandEnv(u.SecretKey),
			UseSSL:    u.UseSSL,
		}
	}

	logger.Debug("YAML loading complete.", "project", s.Project)
	return s, nil
}

// decodeSection decodes the f2e-configs node, rejecting keys the settings
// do not declare.
func decodeSection(node *yaml.Node) (*settings, error) {
	raw, err := yaml.Marshal(node)
	if err != nil {
		return nil, err
	}
	var c settings
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}
