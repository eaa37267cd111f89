// Package cli parses the f2e command line into an app.Config, maps each
// subcommand onto a pipeline task, and turns failures into process exit
// codes through ExitError.
package cli
