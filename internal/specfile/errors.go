package specfile

import (
	"fmt"

	"kiln/internal/tags"
)

// Position locates a diagnostic in the original spec text. Lines and columns
// are 1-based and count the comment and blank lines stripped before parsing.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
}

// SyntaxError reports input that does not match the grammar.
type SyntaxError struct {
	Pos      Position
	Fragment string
	Message  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: %s: %q", e.Pos, e.Message, e.Fragment)
}

// UnknownIdentifierError reports an assignment whose identifier token is not
// a managed frame.
type UnknownIdentifierError struct {
	Pos   Position
	Token string
}

func (e *UnknownIdentifierError) Error() string {
	return fmt.Sprintf("%s: %q is not a valid id3 tag for kiln", e.Pos, e.Token)
}

func (e *UnknownIdentifierError) Unwrap() error { return tags.ErrUnknownIdentifier }

// ImageError reports a cover image that could not be loaded or decoded.
type ImageError struct {
	Pos  Position
	Path string
	Err  error
}

func (e *ImageError) Error() string {
	return fmt.Sprintf("%s: bad image %s: %v", e.Pos, e.Path, e.Err)
}

func (e *ImageError) Unwrap() error { return e.Err }
