// Package archive snapshots the build output into a dated zip bundle and can
// publish the bundle to S3-compatible storage.
package archive
