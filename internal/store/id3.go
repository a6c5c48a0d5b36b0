package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bogem/id3v2/v2"

	"kiln/internal/diff"
	"kiln/internal/logging"
	"kiln/internal/tags"
)

// ID3Store keeps kiln's identifiers in ID3v2 frames. Frames kiln does not
// manage are left untouched. Tags are saved as ID3v2.4 with UTF-8 text.
type ID3Store struct {
	logger *slog.Logger
}

// NewID3Store returns an ID3 backed store.
func NewID3Store(logger *slog.Logger) *ID3Store {
	return &ID3Store{logger: logging.NewComponentLogger(logger, "store")}
}

// Read implements Reader. The state is ordered by identifier; when a frame id
// repeats, the first frame is used.
func (s *ID3Store) Read(ctx context.Context, file string) (tags.State, error) {
	if err := ctx.Err(); err != nil {
		return tags.State{}, &ReadError{File: file, Err: err}
	}
	tag, err := id3v2.Open(file, id3v2.Options{Parse: true})
	if err != nil {
		return tags.State{}, &ReadError{File: file, Err: err}
	}
	defer tag.Close()

	var state tags.State
	managed := 0
	for _, id := range tags.Identifiers() {
		frames := tag.GetFrames(id.FrameID())
		if len(frames) == 0 {
			continue
		}
		managed += len(frames)
		value, err := frameValue(id, frames[0])
		if err != nil {
			return tags.State{}, &ReadError{File: file, Err: err}
		}
		state.Set(id, value)
		if len(frames) > 1 {
			s.logger.Debug("ignoring repeated frames",
				logging.String(logging.FieldFile, file),
				logging.String(logging.FieldIdentifier, id.FrameID()),
				logging.Int("count", len(frames)),
			)
		}
	}
	if unmanaged := tag.Count() - managed; unmanaged > 0 {
		s.logger.Debug("skipping unmanaged frames",
			logging.String(logging.FieldFile, file),
			logging.Int("count", unmanaged),
		)
	}
	return state, nil
}

// Write implements Writer. Add and Modify replace every frame of the
// identifier with the new value; Delete removes them.
func (s *ID3Store) Write(ctx context.Context, file string, ops []diff.Op) error {
	if len(ops) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return &WriteError{File: file, Err: err}
	}
	tag, err := id3v2.Open(file, id3v2.Options{Parse: true})
	if err != nil {
		return &WriteError{File: file, Err: err}
	}
	defer tag.Close()

	tag.SetVersion(4)
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	for _, op := range ops {
		frameID := op.ID().FrameID()
		tag.DeleteFrames(frameID)
		if op.Kind == diff.Delete {
			continue
		}
		if err := addFrame(tag, *op.New); err != nil {
			return &WriteError{File: file, Err: err}
		}
	}

	if err := tag.Save(); err != nil {
		return &WriteError{File: file, Err: err}
	}
	s.logger.Debug("tags written",
		logging.String(logging.FieldFile, file),
		logging.Int("ops", len(ops)),
	)
	return nil
}

func frameValue(id tags.Identifier, frame id3v2.Framer) (tags.Value, error) {
	switch f := frame.(type) {
	case id3v2.TextFrame:
		if !id.IsText() {
			break
		}
		return tags.Text(f.Text), nil
	case id3v2.CommentFrame:
		return tags.CommentValue{Language: f.Language, Description: f.Description, Text: f.Text}, nil
	case id3v2.PictureFrame:
		return tags.NewImage(f.MimeType, tags.PictureKind(f.PictureType), f.Description, f.Picture), nil
	}
	return nil, fmt.Errorf("frame %s has unexpected type %T", id.FrameID(), frame)
}

func addFrame(tag *id3v2.Tag, a tags.Assignment) error {
	switch v := a.Value.(type) {
	case tags.Text:
		tag.AddTextFrame(a.ID.FrameID(), id3v2.EncodingUTF8, string(v))
	case tags.CommentValue:
		language := v.Language
		if len(language) != 3 {
			language = tags.DefaultCommentLanguage
		}
		tag.AddCommentFrame(id3v2.CommentFrame{
			Encoding:    id3v2.EncodingUTF8,
			Language:    language,
			Description: v.Description,
			Text:        v.Text,
		})
	case tags.Image:
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    v.MIME,
			PictureType: byte(v.Picture),
			Description: v.Description,
			Picture:     v.Data,
		})
	default:
		return fmt.Errorf("cannot store %T as %s", a.Value, a.ID.FrameID())
	}
	return nil
}
