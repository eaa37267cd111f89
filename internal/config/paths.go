package config

import (
	"fmt"
	"path/filepath"

	"github.com/specialistvlad/f2eflow/internal/fsutil"
)

// Paths is the fixed source and destination layout of a project, resolved
// to absolute paths under Root.
type Paths struct {
	Root string

	SrcSass   string
	SrcCSS    string
	SrcJS     string
	SrcPages  string
	SrcImages string
	SrcFonts  string

	Dist       string
	DistCSS    string
	DistJS     string
	DistImages string
	DistFonts  string

	Archive string

	// Library globs from the settings, resolved against Root.
	LibAssets  []string
	LibScripts []string
	LibStyles  []string
}

// Resolve produces the directory layout for the project at root. It has no
// side effects; nothing is created on disk.
func Resolve(root string, s *Settings) (*Paths, error) {
	if s == nil {
		return nil, invalidf("settings are missing")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve project root %q: %w", root, err)
	}
	j := func(parts ...string) string { return filepath.Join(append([]string{abs}, parts...)...) }

	archiveDir := s.Archive.Dir
	if archiveDir == "" {
		archiveDir = "archive"
	}
	if !filepath.IsAbs(archiveDir) {
		archiveDir = j(archiveDir)
	}

	return &Paths{
		Root:       abs,
		SrcSass:    j("src", "css", "sass"),
		SrcCSS:     j("src", "css"),
		SrcJS:      j("src", "js"),
		SrcPages:   j("src", "views", "pages"),
		SrcImages:  j("src", "resources", "images"),
		SrcFonts:   j("src", "resources", "fonts"),
		Dist:       j("dist"),
		DistCSS:    j("dist", "css"),
		DistJS:     j("dist", "js"),
		DistImages: j("dist", "resources", "images"),
		DistFonts:  j("dist", "resources", "fonts"),
		Archive:    archiveDir,
		LibAssets:  resolveGlobs(abs, s.Assets),
		LibScripts: resolveGlobs(abs, s.Scripts),
		LibStyles:  resolveGlobs(abs, s.Styles),
	}, nil
}

// resolveGlobs anchors relative settings globs at root. Root is escaped so
// only the user's part of each glob is pattern syntax.
func resolveGlobs(root string, globs []string) []string {
	out := make([]string, 0, len(globs))
	for _, g := range globs {
		neg := len(g) > 0 && g[0] == '!'
		if neg {
			g = g[1:]
		}
		if !filepath.IsAbs(g) {
			g = fsutil.JoinPattern(root, g)
		}
		if neg {
			g = "!" + g
		}
		out = append(out, g)
	}
	return out
}
