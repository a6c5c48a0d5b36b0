// Package journal records committed tag changes in SQLite.
//
// Every `kiln set` commit opens a run, records one row per diff operation for
// each file written, and closes the run with its final status. The history
// is append-only; nothing in kiln reads it back to undo changes. Cover
// images are stored as a summary (mime type and size), not as bytes.
//
// Schema changes go in a new file under migrations/; applied versions are
// tracked in schema_migrations.
package journal
