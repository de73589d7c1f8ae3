// Package core implements the build pipeline for one target.
//
// # Stages
//
// A build runs these stages in order, all in memory until the last one:
//
//  1. Environment: mode, target, public path and flags are frozen into a
//     buildenv.Context.
//  2. Entries: the target's entry configuration is resolved against the
//     context.
//  3. Rules: rules that apply to the context are compiled into a RuleSet.
//  4. Discovery: every module reachable from the entries is read from the
//     source root.
//  5. Resolution: each discovered path gets its transform chain. A path no
//     rule matches fails the build here.
//  6. Emission: chains run on a worker pool and the results are grouped into
//     content-addressed chunk and asset files.
//  7. Manifest: every artifact is recorded and the recorder is finalized.
//  8. Output: the output root is locked, cleaned and written. The manifest is
//     written last.
//
// # Failure Model
//
// Everything that can fail on bad input fails before stage 8 starts, so a
// failed build leaves the previous output and manifest untouched. A failure
// while writing leaves the output root without a manifest, which consumers
// treat as no build.
package core
