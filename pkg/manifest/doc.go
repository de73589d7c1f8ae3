// Package manifest records the artifacts of a build and serializes them as
// asset-manifest.json, the fixed-name index runtimes read to find hashed
// output paths.
//
// A Recorder collects artifacts while a build runs. Finalize freezes it once
// every referenced artifact is present and returns the Manifest. Load and
// Manifest.Resolve are the consumer side.
package manifest
