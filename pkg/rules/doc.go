// Package rules resolves the transform chain for a source path.
//
// A RuleSet is an ordered list of immutable rules. Rules that share a group
// id form an exclusive group: the group is scanned in declaration order and
// only the first matching rule contributes its chain. Rules without a group
// are standalone and every match contributes. The resolved chain is the
// concatenation of the group contributions, groups ordered by their first
// declaration, followed by the standalone contributions in declaration order.
//
// # Configuration
//
//	[[rules]]
//	name = "inline-svg"
//	group = "assets"
//	test = ['\.svg$']
//	include = ['dir:src/assets/inline']
//	chain = [{ name = "inline-svg" }]
//
//	[[rules]]
//	name = "file"
//	group = "assets"
//	chain = [{ name = "file" }]
//
// A rule without a test is a catch-all and must be the last rule of its
// group. A path that no rule matches is an error: configurations that want
// every file handled supply a catch-all.
//
// Rules may be limited to some modes or targets; Select drops the rules that
// do not apply to a build before the set is constructed.
package rules
