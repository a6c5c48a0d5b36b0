// Package logging assembles structured slog loggers for kiln.
//
// It owns the console and JSON handlers, level parsing, and a few attribute
// helpers so every component logs with the same keys. Logs default to stderr;
// stdout is left to command output such as diffs and listings. NewNop returns
// a logger for tests and wiring code that has nothing to report to.
package logging
