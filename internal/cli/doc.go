// Package cli implements the blockgen command line: argument parsing, logger
// setup and the list, render, new and serve subcommands.
package cli
