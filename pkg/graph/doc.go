// Package graph discovers the modules reachable from a build's entries.
//
// Scripts are scanned for import, export-from, require() and dynamic
// import() specifiers; stylesheets for @import and url() references. Other
// files are leaves. Relative specifiers resolve against the importing file,
// root-relative ones ("/x") against the source root, and extension-less
// specifiers try the configured extensions and index files. Bare specifiers
// in scripts name packages and are never bundled.
package graph
