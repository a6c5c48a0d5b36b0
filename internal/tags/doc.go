// Package tags defines the canonical tag model shared by the parser, the
// merge step, the diff engine and the ID3 store.
//
// Identifier is a closed enumeration of the eleven frames kiln manages, with
// a collision-free mapping to and from the ID3v2 frame tokens. Value is a
// sealed union of Text, CommentValue and Image. State holds at most one value
// per identifier, which keeps two conflicting assignments for the same frame
// from ever reaching the diff engine.
package tags
