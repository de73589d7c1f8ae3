// Package config loads assetpipe configuration.
//
// Configuration is layered with koanf, later layers winning:
//
//  1. the embedded defaults (embedded/defaults.toml)
//  2. the project file: assetpipe.toml, .assetpipe.toml or assetpipe.yaml
//  3. ASSETPIPE_* environment variables, "__" separating nested keys
//  4. overrides passed by the caller, usually CLI flags
//
// Maps merge key by key. Lists such as rules and entries are replaced as a
// whole by the layer that sets them.
package config
