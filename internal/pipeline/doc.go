// Package pipeline declares the front-end build: the concrete task set wired
// to the transform stages, and the watch bindings that re-run parts of it.
package pipeline
