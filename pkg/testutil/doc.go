// Package testutil provides helpers for tests that build source trees and
// inspect output directories.
//
// Trees are described as FileTree maps of slash-separated paths to file
// content. The same tree can be written to a temp directory with WriteTree or
// turned into an in-memory fs.FS with MapFS.
package testutil
