package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/f2eflow/internal/config"
	"github.com/specialistvlad/f2eflow/internal/ctxlog"
	"github.com/specialistvlad/f2eflow/internal/hcl"
	"github.com/specialistvlad/f2eflow/internal/yamlcfg"
)

// settingsFiles are tried in order when no settings file is given.
var settingsFiles = []string{"f2e.hcl", "f2e.yaml", "package.json"}

// ErrNoSettings is returned when discovery finds no settings file.
var ErrNoSettings = errors.New("no settings file found")

// loaderFor picks the settings loader by file extension.
func loaderFor(path string) (config.Loader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		return hcl.NewLoader(), nil
	case ".yaml", ".yml", ".json":
		return yamlcfg.NewLoader(), nil
	default:
		return nil, fmt.Errorf("%w: unsupported settings file %s", config.ErrInvalidSettings, path)
	}
}

// findSettings returns the settings file to load: explicit when set,
// otherwise the first of settingsFiles present in root.
func findSettings(root, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	for _, name := range settingsFiles {
		path := filepath.Join(root, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w in %s (looked for %s)", ErrNoSettings, root, strings.Join(settingsFiles, ", "))
}

// LoadSettings finds, loads, defaults and validates the project settings.
func LoadSettings(ctx context.Context, root, explicit string) (*config.Settings, error) {
	logger := ctxlog.FromContext(ctx)

	path, err := findSettings(root, explicit)
	if err != nil {
		return nil, err
	}
	loader, err := loaderFor(path)
	if err != nil {
		return nil, err
	}
	settings, err := loader.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	settings.ApplyDefaults()
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logger.Info("Settings loaded successfully.", "path", path, "project", settings.Project)
	return settings, nil
}
