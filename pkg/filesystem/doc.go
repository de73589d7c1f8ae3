// Package filesystem provides the OS implementation of types.FS.
package filesystem
