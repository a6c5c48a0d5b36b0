// Package specfile parses and writes the kiln spec language.
//
// A spec file is a sequence of sections. Each section starts with a
// `[pattern]` header and lists `ID = value` assignments, one per line:
//
//	# comment lines and blank lines are ignored
//	[songs/*.mp3]
//	TPE1 = The Artist
//	TALB = The Album
//	APIC = covers/front.png
//
// Parse reports three kinds of failures, each carrying the line and column
// of the offending input: SyntaxError, UnknownIdentifierError and
// ImageError.
package specfile
