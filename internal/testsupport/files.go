package testsupport

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2/v2"

	"kiln/internal/tags"
)

// audioPayload stands in for MPEG audio. ID3 handling never decodes it.
var audioPayload = append([]byte{0xFF, 0xFB, 0x90, 0x64}, bytes.Repeat([]byte{0x42}, 124)...)

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path string, content []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteMP3 creates an audio file at path carrying the given assignments as
// ID3v2.4 frames. With no assignments the file is untagged.
func WriteMP3(t testing.TB, path string, assignments ...tags.Assignment) {
	t.Helper()

	WriteFile(t, path, audioPayload)
	if len(assignments) == 0 {
		return
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer tag.Close()
	tag.SetVersion(4)
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	for _, a := range assignments {
		switch v := a.Value.(type) {
		case tags.Text:
			tag.AddTextFrame(a.ID.FrameID(), id3v2.EncodingUTF8, string(v))
		case tags.CommentValue:
			tag.AddCommentFrame(id3v2.CommentFrame{
				Encoding:    id3v2.EncodingUTF8,
				Language:    v.Language,
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
			t.Fatalf("unsupported fixture value %T", a.Value)
		}
	}
	if err := tag.Save(); err != nil {
		t.Fatalf("save %s: %v", path, err)
	}
}

// WriteRawFrame adds a text frame to an existing file without touching the
// others. Useful for frames kiln does not manage, such as TPOS.
func WriteRawFrame(t testing.TB, path, frameID, text string) {
	t.Helper()

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer tag.Close()
	tag.SetVersion(4)
	tag.AddTextFrame(frameID, id3v2.EncodingUTF8, text)
	if err := tag.Save(); err != nil {
		t.Fatalf("save %s: %v", path, err)
	}
}

// RawFrameText returns the text of the first frameID frame in path, or "".
func RawFrameText(t testing.TB, path, frameID string) string {
	t.Helper()

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer tag.Close()
	for _, frame := range tag.GetFrames(frameID) {
		if tf, ok := frame.(id3v2.TextFrame); ok {
			return tf.Text
		}
	}
	return ""
}

// PNG returns a small encoded PNG image.
func PNG(t testing.TB) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 32), G: uint8(y * 32), B: 0x80, A: 0xFF})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// WritePNG writes a small PNG image to path.
func WritePNG(t testing.TB, path string) {
	t.Helper()
	WriteFile(t, path, PNG(t))
}
