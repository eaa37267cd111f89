package config

import "context"

// Loader is the interface for a format-specific settings loader.
type Loader interface {
	// Load reads the settings file at path and translates it into the
	// format-agnostic model. Implementations do not validate; callers run
	// Settings.Validate once the model is assembled.
	Load(ctx context.Context, path string) (*Settings, error)
}
