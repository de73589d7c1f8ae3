// Package commands implements the operations behind each CLI command. Every
// function takes an options struct and returns a result the ui package can
// render; none of them print.
package commands
