// Package stage implements the file-set transformations of the build: script
// bundling, style compilation, template rendering, verbatim copies and
// minification.
//
// A stage reads the files selected by its input globs and writes into an
// output directory it owns. Stages never return an error for a single bad
// input. They record it in a Result and keep going, and the task executor
// decides what to log. Only Result.Fatal stops a run.
package stage
