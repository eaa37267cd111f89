// Package fsutil provides the file-set primitives the transform stages are
// built from: ordered glob expansion, verbatim copy, concatenation and
// cleaning of output paths.
package fsutil
