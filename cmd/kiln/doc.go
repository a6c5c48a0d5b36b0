// Package main hosts the kiln CLI entrypoint and command graph.
//
// The Cobra command tree reads spec files, previews the tag changes they
// imply and writes them to audio files. It centralizes configuration
// resolution and logger setup so subcommands only wire internal packages
// together and render their results.
//
// Keep this package thin: parsing, merging, diffing and tag I/O live under
// internal/, and commands here should stay declarative.
package main
