// Package app contains the core application logic. It loads the project
// settings, wires the task graph to its collaborators and runs tasks,
// decoupled from any specific entrypoint like a CLI.
package app
