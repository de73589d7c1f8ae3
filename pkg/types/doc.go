// Package types holds interfaces shared across assetpipe packages.
package types
