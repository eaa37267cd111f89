package watch

import (
	"github.com/bmatcuk/doublestar/v4"
)

// Binding subscribes a task to changes on a set of globs.
type Binding struct {
	Name string
	// Patterns are slash-separated globs relative to the watch root.
	Patterns []string
	Task     string
	// Reload broadcasts a browser reload after a run without fatal error.
	Reload bool
}

// Matches reports whether rel, a slash-separated path relative to the watch
// root, is selected by one of b's patterns.
func (b Binding) Matches(rel string) bool {
	for _, p := range b.Patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// Match returns the bindings whose patterns select rel, in binding order.
func Match(bindings []Binding, rel string) []Binding {
	var out []Binding
	for _, b := range bindings {
		if b.Matches(rel) {
			out = append(out, b)
		}
	}
	return out
}
