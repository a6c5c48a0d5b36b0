package tags_test

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"kiln/internal/tags"
)

func TestIdentifierFrameRoundTrip(t *testing.T) {
	seen := map[string]bool{}
	for _, id := range tags.Identifiers() {
		frame := id.FrameID()
		if seen[frame] {
			t.Fatalf("duplicate frame token %q", frame)
		}
		seen[frame] = true

		parsed, err := tags.ParseIdentifier(frame)
		if err != nil {
			t.Fatalf("ParseIdentifier(%q): %v", frame, err)
		}
		if parsed != id {
			t.Fatalf("ParseIdentifier(%q) = %v, want %v", frame, parsed, id)
		}
	}
	if len(seen) != 11 {
		t.Fatalf("expected 11 identifiers, got %d", len(seen))
	}
}

func TestParseIdentifierRejectsUnknown(t *testing.T) {
	for _, token := range []string{"FOO", "tpe1", "", "TXXX"} {
		_, err := tags.ParseIdentifier(token)
		if !errors.Is(err, tags.ErrUnknownIdentifier) {
			t.Fatalf("ParseIdentifier(%q) error = %v, want ErrUnknownIdentifier", token, err)
		}
	}
}

func TestLookupIdentifierAcceptsNamesAndCase(t *testing.T) {
	cases := map[string]tags.Identifier{
		"tpe1":         tags.Artist,
		" COMM ":       tags.Comment,
		"album-artist": tags.AlbumArtist,
		"Genre":        tags.Genre,
		"apic":         tags.CoverImage,
	}
	for input, want := range cases {
		got, err := tags.LookupIdentifier(input)
		if err != nil {
			t.Fatalf("LookupIdentifier(%q): %v", input, err)
		}
		if got != want {
			t.Fatalf("LookupIdentifier(%q) = %v, want %v", input, got, want)
		}
	}
	if _, err := tags.LookupIdentifier("bogus"); err == nil {
		t.Fatal("expected error for bogus identifier")
	}
}

func TestTextValueEncodingPolicy(t *testing.T) {
	v, err := tags.TextValue(tags.Comment, "hello")
	if err != nil {
		t.Fatalf("TextValue: %v", err)
	}
	comment, ok := v.(tags.CommentValue)
	if !ok {
		t.Fatalf("expected CommentValue, got %T", v)
	}
	if comment.Language != "eng" || comment.Description != "" || comment.Text != "hello" {
		t.Fatalf("unexpected comment %#v", comment)
	}

	v, err = tags.TextValue(tags.Title, "Song")
	if err != nil {
		t.Fatalf("TextValue: %v", err)
	}
	if v != tags.Text("Song") {
		t.Fatalf("unexpected text value %#v", v)
	}

	if _, err := tags.TextValue(tags.CoverImage, "cover.png"); err == nil {
		t.Fatal("expected error building image from text")
	}
}

func TestStateHoldsOneValuePerIdentifier(t *testing.T) {
	var s tags.State
	s.Set(tags.Title, tags.Text("first"))
	s.Set(tags.Artist, tags.Text("artist"))
	prev, replaced := s.Set(tags.Title, tags.Text("second"))
	if !replaced || prev != tags.Text("first") {
		t.Fatalf("expected replacement of first, got %v %v", prev, replaced)
	}
	if s.Len() != 2 {
		t.Fatalf("expected 2 identifiers, got %d", s.Len())
	}
	ids := s.Identifiers()
	if ids[0] != tags.Title || ids[1] != tags.Artist {
		t.Fatalf("insertion order not kept: %v", ids)
	}
	if v, _ := s.Get(tags.Title); v != tags.Text("second") {
		t.Fatalf("expected second, got %v", v)
	}

	sorted := s.Sorted().Identifiers()
	if sorted[0] != tags.Artist || sorted[1] != tags.Title {
		t.Fatalf("sorted order wrong: %v", sorted)
	}

	s.Delete(tags.Title)
	if s.Has(tags.Title) || s.Len() != 1 {
		t.Fatalf("delete failed: %v", s.Identifiers())
	}
}

func TestStateEqualIgnoresOrder(t *testing.T) {
	a := tags.NewState(
		tags.Assignment{ID: tags.Title, Value: tags.Text("x")},
		tags.Assignment{ID: tags.Comment, Value: tags.NewComment("c")},
	)
	b := tags.NewState(
		tags.Assignment{ID: tags.Comment, Value: tags.NewComment("c")},
		tags.Assignment{ID: tags.Title, Value: tags.Text("x")},
	)
	if !a.Equal(b) {
		t.Fatal("expected equal states")
	}
	b.Set(tags.Title, tags.Text("y"))
	if a.Equal(b) {
		t.Fatal("expected states to differ")
	}
}

func TestImageEqualComparesBytes(t *testing.T) {
	a := tags.NewImage("image/jpeg", tags.PictureFrontCover, "cover", []byte{1, 2, 3})
	b := tags.NewImage("image/jpeg", tags.PictureFrontCover, "cover", []byte{1, 2, 3})
	c := tags.NewImage("image/jpeg", tags.PictureFrontCover, "cover", []byte{1, 2, 4})
	if !a.Equal(b) {
		t.Fatal("expected identical images to be equal")
	}
	if a.Equal(c) {
		t.Fatal("expected different bytes to differ")
	}
	if a.Equal(tags.Text("x")) {
		t.Fatal("image must not equal text")
	}
}

func samplePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 60), G: uint8(y * 60), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestLoadImageReencodesPerPolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cover.png")
	raw := samplePNG(t)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write png: %v", err)
	}

	img, err := tags.LoadImage(path, tags.DefaultImagePolicy)
	if err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	if img.MIME != "image/jpeg" || img.Picture != tags.PictureFrontCover || img.Description != "cover" {
		t.Fatalf("unexpected image header: %+v", img)
	}
	if _, _, err := image.Decode(bytes.NewReader(img.Data)); err != nil {
		t.Fatalf("re-encoded jpeg does not decode: %v", err)
	}

	original, err := tags.LoadImage(path, tags.ImagePolicy{Format: tags.FormatOriginal, Description: "front"})
	if err != nil {
		t.Fatalf("LoadImage original: %v", err)
	}
	if original.MIME != "image/png" || !bytes.Equal(original.Data, raw) {
		t.Fatalf("original policy altered bytes: mime=%s", original.MIME)
	}

	again, err := tags.LoadImage(path, tags.DefaultImagePolicy)
	if err != nil {
		t.Fatalf("LoadImage again: %v", err)
	}
	if !img.Equal(again) {
		t.Fatal("expected deterministic re-encoding")
	}
}

func TestLoadImageErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := tags.LoadImage(filepath.Join(dir, "missing.png"), tags.DefaultImagePolicy); err == nil {
		t.Fatal("expected error for missing file")
	}
	bogus := filepath.Join(dir, "bogus.png")
	if err := os.WriteFile(bogus, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := tags.LoadImage(bogus, tags.DefaultImagePolicy); err == nil {
		t.Fatal("expected decode error")
	}
	if _, err := tags.LoadImage(bogus, tags.ImagePolicy{Format: "tiff"}); err == nil {
		t.Fatal("expected policy error")
	}
}
