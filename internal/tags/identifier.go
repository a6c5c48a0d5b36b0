package tags

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownIdentifier reports a frame token outside the managed set.
var ErrUnknownIdentifier = errors.New("unknown tag identifier")

// Identifier names one of the tag frames kiln manages.
type Identifier int

const (
	Artist Identifier = iota
	AlbumArtist
	Album
	Title
	TrackNumber
	Year
	RecordingDate
	Genre
	SourceID
	Comment
	CoverImage
)

type identifierInfo struct {
	frame string
	name  string
}

var identifierTable = [...]identifierInfo{
	Artist:        {frame: "TPE1", name: "artist"},
	AlbumArtist:   {frame: "TPE2", name: "album-artist"},
	Album:         {frame: "TALB", name: "album"},
	Title:         {frame: "TIT2", name: "title"},
	TrackNumber:   {frame: "TRCK", name: "track-number"},
	Year:          {frame: "TYER", name: "year"},
	RecordingDate: {frame: "TDRC", name: "recording-date"},
	Genre:         {frame: "TCON", name: "genre"},
	SourceID:      {frame: "TSRC", name: "source-id"},
	Comment:       {frame: "COMM", name: "comment"},
	CoverImage:    {frame: "APIC", name: "cover-image"},
}

var byFrame = func() map[string]Identifier {
	m := make(map[string]Identifier, len(identifierTable))
	for id, info := range identifierTable {
		m[info.frame] = Identifier(id)
	}
	return m
}()

// Identifiers returns every managed identifier in canonical order.
func Identifiers() []Identifier {
	out := make([]Identifier, len(identifierTable))
	for i := range identifierTable {
		out[i] = Identifier(i)
	}
	return out
}

// Valid reports whether id is one of the managed identifiers.
func (id Identifier) Valid() bool {
	return id >= 0 && int(id) < len(identifierTable)
}

// FrameID returns the canonical four-character ID3v2 frame token.
func (id Identifier) FrameID() string {
	if !id.Valid() {
		return fmt.Sprintf("Identifier(%d)", int(id))
	}
	return identifierTable[id].frame
}

// Name returns the human readable name (artist, album, ...).
func (id Identifier) Name() string {
	if !id.Valid() {
		return fmt.Sprintf("identifier-%d", int(id))
	}
	return identifierTable[id].name
}

func (id Identifier) String() string { return id.FrameID() }

// IsText reports whether values for id are plain text frames.
func (id Identifier) IsText() bool {
	return id.Valid() && id != Comment && id != CoverImage
}

// ParseIdentifier decodes an exact canonical frame token such as "TPE1".
func ParseIdentifier(token string) (Identifier, error) {
	if id, ok := byFrame[token]; ok {
		return id, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownIdentifier, token)
}

// LookupIdentifier accepts either a frame token or a name, ignoring case and
// surrounding whitespace. Intended for command line input.
func LookupIdentifier(value string) (Identifier, error) {
	trimmed := strings.TrimSpace(value)
	if id, ok := byFrame[strings.ToUpper(trimmed)]; ok {
		return id, nil
	}
	lower := strings.ToLower(trimmed)
	for i, info := range identifierTable {
		if info.name == lower {
			return Identifier(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownIdentifier, value)
}

// MarshalText encodes the identifier as its frame token.
func (id Identifier) MarshalText() ([]byte, error) {
	if !id.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownIdentifier, int(id))
	}
	return []byte(id.FrameID()), nil
}

// UnmarshalText decodes a frame token or name.
func (id *Identifier) UnmarshalText(text []byte) error {
	parsed, err := LookupIdentifier(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// IdentifierSet is a deduplicated set of identifiers.
type IdentifierSet map[Identifier]struct{}

// NewIdentifierSet builds a set from ids, dropping duplicates.
func NewIdentifierSet(ids ...Identifier) IdentifierSet {
	set := make(IdentifierSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Contains reports membership; a nil set contains nothing.
func (s IdentifierSet) Contains(id Identifier) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the members in canonical order.
func (s IdentifierSet) Sorted() []Identifier {
	out := make([]Identifier, 0, len(s))
	for _, id := range Identifiers() {
		if s.Contains(id) {
			out = append(out, id)
		}
	}
	return out
}
