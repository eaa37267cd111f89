package fsutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Match is a file selected by a glob, with its path relative to the glob's
// static base directory. Stages write outputs at OutDir/Rel so the source
// tree shape below the base is preserved.
type Match struct {
	Path string
	Rel  string
}

// Expand resolves patterns in declaration order. Patterns prefixed with "!"
// remove earlier and later matches. Each positive pattern's matches are
// sorted, and a file matched by several patterns is reported once, at its
// first position. Directories are never returned. A pattern that matches
// nothing, or whose base directory does not exist, contributes nothing.
func Expand(patterns ...string) ([]Match, error) {
	var include, exclude []string
	for _, p := range patterns {
		if strings.HasPrefix(p, "!") {
			exclude = append(exclude, filepath.ToSlash(p[1:]))
			continue
		}
		include = append(include, p)
	}

	var out []Match
	seen := make(map[string]struct{})
	for _, p := range include {
		slashed := filepath.ToSlash(p)
		if !doublestar.ValidatePattern(slashed) {
			return nil, fmt.Errorf("invalid glob %q: %w", p, doublestar.ErrBadPattern)
		}
		base, _ := doublestar.SplitPattern(slashed)

		found, err := doublestar.FilepathGlob(p)
		if err != nil {
			return nil, fmt.Errorf("expand glob %q: %w", p, err)
		}
		sort.Strings(found)

		for _, path := range found {
			if _, dup := seen[path]; dup {
				continue
			}
			info, err := os.Stat(path)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			if excluded(exclude, path) {
				continue
			}
			rel, err := filepath.Rel(filepath.FromSlash(base), path)
			if err != nil {
				return nil, err
			}
			seen[path] = struct{}{}
			out = append(out, Match{Path: path, Rel: rel})
		}
	}
	return out, nil
}

// metaEscaper escapes the characters doublestar treats as pattern syntax.
var metaEscaper = strings.NewReplacer(
	"*", `\*`, "?", `\?`, "[", `\[`, "]", `\]`, "{", `\{`, "}", `\}`,
)

// JoinPattern joins a literal directory with pattern elements. Glob syntax
// in dir (a project checked out under "site[v2]", say) is escaped so it
// matches itself. On Windows the backslash is a separator and cannot escape,
// so dir is used as is there.
func JoinPattern(dir string, elem ...string) string {
	if filepath.Separator != '\\' {
		dir = metaEscaper.Replace(dir)
	}
	return filepath.Join(append([]string{dir}, elem...)...)
}

func excluded(exclude []string, path string) bool {
	slashed := filepath.ToSlash(path)
	for _, x := range exclude {
		if ok, _ := doublestar.Match(x, slashed); ok {
			return true
		}
	}
	return false
}

// ListFiles recursively lists every regular file below root, hidden files
// included, as slash-separated paths relative to root in lexical order.
func ListFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// Dirs lists root and every directory below it.
func Dirs(root string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			dirs = append(dirs, path)
		}
		return nil
	})
	return dirs, err
}
