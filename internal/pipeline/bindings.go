package pipeline

import "github.com/specialistvlad/f2eflow/internal/watch"

// Bindings returns the watch bindings of the dev loop. Patterns are relative
// to the project root. Script and font rebuilds do not reload the browser.
func Bindings() []watch.Binding {
	return []watch.Binding{
		{
			Name: "css",
			Patterns: []string{
				"src/css/sass/**/*.sass",
				"src/css/sass/**/*.scss",
				"src/resources/images/**/*.{jpg,png,gif,svg}",
			},
			Task:   CompileCSS,
			Reload: true,
		},
		{
			Name:     "html",
			Patterns: []string{"src/views/pages/**/*.jade", "src/partials/**/*.jade"},
			Task:     CompileHTML,
			Reload:   true,
		},
		{
			Name:     "js",
			Patterns: []string{"src/js/**/*.js", "src/js/**/*.vue"},
			Task:     CompileJS,
		},
		{
			Name:     "fonts",
			Patterns: []string{"src/resources/fonts/*"},
			Task:     CompileAsset,
		},
	}
}
