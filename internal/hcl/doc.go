// Package hcl provides the HCL implementation of config.Loader. It parses an
// f2e.hcl settings file, evaluates it against an `env` object holding the
// process environment, and translates the decoded schema into the
// format-agnostic config.Settings.
package hcl
