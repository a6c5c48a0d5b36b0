package tags

import (
	"bytes"
	"fmt"
)

// ValueKind discriminates the Value variants.
type ValueKind int

const (
	KindText ValueKind = iota
	KindComment
	KindImage
)

func (k ValueKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindComment:
		return "comment"
	case KindImage:
		return "image"
	default:
		return fmt.Sprintf("kind-%d", int(k))
	}
}

// Value is the payload of a tag frame. The concrete types are Text,
// CommentValue and Image; the set is closed.
type Value interface {
	Kind() ValueKind
	Equal(other Value) bool
	String() string
	sealed()
}

// Text is the value of a plain text frame.
type Text string

func (Text) Kind() ValueKind { return KindText }

func (t Text) Equal(other Value) bool {
	o, ok := other.(Text)
	return ok && o == t
}

func (t Text) String() string { return string(t) }

func (Text) sealed() {}

// DefaultCommentLanguage is the language code attached to comments read from
// spec files.
const DefaultCommentLanguage = "eng"

// CommentValue is the value of a COMM frame.
type CommentValue struct {
	Language    string `json:"language" yaml:"language"`
	Description string `json:"description" yaml:"description"`
	Text        string `json:"text" yaml:"text"`
}

// NewComment builds a comment with the fixed default language and an empty
// description.
func NewComment(text string) CommentValue {
	return CommentValue{Language: DefaultCommentLanguage, Text: text}
}

func (CommentValue) Kind() ValueKind { return KindComment }

func (c CommentValue) Equal(other Value) bool {
	o, ok := other.(CommentValue)
	return ok && o == c
}

func (c CommentValue) String() string {
	if c.Description == "" {
		return fmt.Sprintf("%s (%s)", c.Text, c.Language)
	}
	return fmt.Sprintf("%s (%s, %s)", c.Text, c.Language, c.Description)
}

func (CommentValue) sealed() {}

// PictureKind mirrors the ID3v2 APIC picture type byte.
type PictureKind byte

const (
	PictureOther PictureKind = iota
	PictureFileIcon
	PictureOtherFileIcon
	PictureFrontCover
	PictureBackCover
	PictureLeaflet
	PictureMedia
	PictureLeadArtist
	PictureArtist
	PictureConductor
	PictureBand
	PictureComposer
	PictureLyricist
	PictureRecordingLocation
	PictureDuringRecording
	PictureDuringPerformance
	PictureVideoCapture
	PictureBrightFish
	PictureIllustration
	PictureBandLogo
	PicturePublisherLogo
)

var pictureKindNames = [...]string{
	"other", "file-icon", "other-file-icon", "front-cover", "back-cover", "leaflet",
	"media", "lead-artist", "artist", "conductor", "band", "composer", "lyricist",
	"recording-location", "during-recording", "during-performance", "video-capture",
	"bright-fish", "illustration", "band-logo", "publisher-logo",
}

func (k PictureKind) String() string {
	if int(k) < len(pictureKindNames) {
		return pictureKindNames[k]
	}
	return fmt.Sprintf("picture-%d", byte(k))
}

// Image is the value of an APIC frame.
type Image struct {
	MIME        string      `json:"mime" yaml:"mime"`
	Picture     PictureKind `json:"picture" yaml:"picture"`
	Description string      `json:"description" yaml:"description"`
	Data        []byte      `json:"-" yaml:"-"`
}

// NewImage wraps already-decoded bytes. It never fails; use LoadImage for
// paths.
func NewImage(mime string, kind PictureKind, description string, data []byte) Image {
	return Image{MIME: mime, Picture: kind, Description: description, Data: data}
}

func (Image) Kind() ValueKind { return KindImage }

func (img Image) Equal(other Value) bool {
	o, ok := other.(Image)
	if !ok {
		return false
	}
	return o.MIME == img.MIME &&
		o.Picture == img.Picture &&
		o.Description == img.Description &&
		bytes.Equal(o.Data, img.Data)
}

func (img Image) String() string {
	return fmt.Sprintf("<%s %s, %d bytes>", img.Picture, img.MIME, len(img.Data))
}

func (Image) sealed() {}

// Assignment pairs an identifier with its value.
type Assignment struct {
	ID    Identifier `json:"id" yaml:"id"`
	Value Value      `json:"value" yaml:"value"`
}

// Equal compares the full (identifier, value) pair.
func (a Assignment) Equal(other Assignment) bool {
	if a.ID != other.ID {
		return false
	}
	if a.Value == nil || other.Value == nil {
		return a.Value == nil && other.Value == nil
	}
	return a.Value.Equal(other.Value)
}

func (a Assignment) String() string {
	if a.Value == nil {
		return a.ID.FrameID() + ": <nil>"
	}
	return a.ID.FrameID() + ": " + a.Value.String()
}

// TextValue builds the value for id from spec text. Images are not text
// representable and must go through LoadImage.
func TextValue(id Identifier, raw string) (Value, error) {
	switch {
	case id == Comment:
		return NewComment(raw), nil
	case id.IsText():
		return Text(raw), nil
	case id == CoverImage:
		return nil, fmt.Errorf("%s values must be loaded from an image file", id.FrameID())
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownIdentifier, int(id))
	}
}

// MarshalText renders the picture kind by name.
func (k PictureKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}
