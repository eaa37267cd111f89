// Package config defines the format-agnostic settings model for a front-end
// project, the Loader interface implemented by the HCL and YAML packages, and
// the fixed source/destination directory layout every other component reads.
//
// The `config.Settings` value is the single source of truth for the stage,
// pipeline and archive packages. Concrete loaders live in separate packages
// so this one stays free of parsing dependencies.
package config
