package config

// DefaultPort is the dev/static server port used when the settings omit one.
const DefaultPort = 3000

// DefaultSassBinary is the dart-sass executable looked up on PATH.
const DefaultSassBinary = "sass"

// Settings is the unified, format-agnostic representation of a project's
// build settings.
type Settings struct {
	// Project names the archive bundle ({project}_{date}.zip).
	Project string

	// UseJade selects the Jade template engine. The raw-HTML layout mode
	// selected by false is not supported.
	UseJade bool

	// Assets are passthrough font/static globs copied to dist/resources/fonts.
	Assets []string
	// Scripts are passthrough library scripts concatenated into dist/js/lib.js.
	Scripts []string
	// Styles are passthrough library stylesheets concatenated into dist/css/lib.css.
	Styles []string

	// Define holds extra compile-time constants for the script stage,
	// keyed by the identifier to replace. Values are JavaScript expressions.
	Define map[string]string
	// Locals is the data passed to every rendered template.
	Locals map[string]string

	Server  Server
	Sass    Sass
	Archive Archive
}

// Server configures the dev and static servers.
type Server struct {
	Port int
}

// Sass configures the style preprocessor.
type Sass struct {
	// Binary is the dart-sass executable speaking the embedded protocol.
	Binary string
}

// Archive configures the archive step.
type Archive struct {
	// Dir is the archive output directory, relative to the project root.
	Dir string
	// Upload, when set, publishes each finished bundle to S3-compatible storage.
	Upload *Upload
}

// Upload describes the bucket an archive bundle is published to.
type Upload struct {
	Endpoint  string
	Region    string
	Bucket    string
	Prefix    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// ApplyDefaults fills in optional fields left empty by a loader.
func (s *Settings) ApplyDefaults() {
	if s.Server.Port == 0 {
		s.Server.Port = DefaultPort
	}
	if s.Sass.Binary == "" {
		s.Sass.Binary = DefaultSassBinary
	}
	if s.Archive.Dir == "" {
		s.Archive.Dir = "archive"
	}
	if s.Archive.Upload != nil && s.Archive.Upload.Region == "" {
		s.Archive.Upload.Region = "us-east-1"
	}
}
