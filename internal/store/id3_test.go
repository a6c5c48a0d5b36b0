package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"kiln/internal/diff"
	"kiln/internal/logging"
	"kiln/internal/store"
	"kiln/internal/tags"
	"kiln/internal/testsupport"
)

func text(id tags.Identifier, v string) tags.Assignment {
	return tags.Assignment{ID: id, Value: tags.Text(v)}
}

func newStore() *store.ID3Store {
	return store.NewID3Store(logging.NewNop())
}

func TestReadUntaggedFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.mp3")
	testsupport.WriteMP3(t, path)

	state, err := newStore().Read(context.Background(), path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if state.Len() != 0 {
		t.Fatalf("expected empty state, got %v", state.Assignments())
	}
}

func TestReadMapsManagedFramesInCanonicalOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.mp3")
	cover := tags.NewImage("image/png", tags.PictureFrontCover, "cover", testsupport.PNG(t))
	testsupport.WriteMP3(t, path,
		text(tags.Title, "Song"),
		text(tags.Artist, "Artist"),
		tags.Assignment{ID: tags.Comment, Value: tags.NewComment("nice")},
		tags.Assignment{ID: tags.CoverImage, Value: cover},
	)
	testsupport.WriteRawFrame(t, path, "TPOS", "1/2")

	state, err := newStore().Read(context.Background(), path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	ids := state.Identifiers()
	want := []tags.Identifier{tags.Artist, tags.Title, tags.Comment, tags.CoverImage}
	if len(ids) != len(want) {
		t.Fatalf("identifiers = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("identifiers = %v, want %v", ids, want)
		}
	}
	if !state.Contains(text(tags.Title, "Song")) {
		t.Fatal("title missing")
	}
	if !state.Contains(tags.Assignment{ID: tags.Comment, Value: tags.NewComment("nice")}) {
		t.Fatalf("comment mismatch: %v", state.Assignments())
	}
	if !state.Contains(tags.Assignment{ID: tags.CoverImage, Value: cover}) {
		t.Fatal("cover image did not round trip")
	}
}

func TestWriteAppliesOpsAndLeavesUnmanagedFrames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.mp3")
	testsupport.WriteMP3(t, path, text(tags.Title, "Old"), text(tags.Genre, "Rock"))
	testsupport.WriteRawFrame(t, path, "TPOS", "1/2")

	s := newStore()
	ctx := context.Background()
	current, err := s.Read(ctx, path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	desired := tags.NewState(text(tags.Title, "New"), text(tags.Artist, "Someone"))
	ops := diff.Compute(desired, current, nil)

	if err := s.Write(ctx, path, ops); err != nil {
		t.Fatalf("Write: %v", err)
	}

	after, err := s.Read(ctx, path)
	if err != nil {
		t.Fatalf("Read after write: %v", err)
	}
	if !after.Equal(desired) {
		t.Fatalf("state after write = %v, want %v", after.Assignments(), desired.Assignments())
	}
	if got := testsupport.RawFrameText(t, path, "TPOS"); got != "1/2" {
		t.Fatalf("unmanaged frame lost, TPOS = %q", got)
	}
	if again := diff.Compute(desired, after, nil); len(again) != 0 {
		t.Fatalf("expected no further changes, got %v", again)
	}
}

func TestWriteWithNoOpsDoesNotTouchFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.mp3")
	if err := newStore().Write(context.Background(), path, nil); err != nil {
		t.Fatalf("Write with no ops: %v", err)
	}
}

func TestReadErrorCarriesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.mp3")
	_, err := newStore().Read(context.Background(), path)
	var readErr *store.ReadError
	if !errors.As(err, &readErr) || readErr.File != path {
		t.Fatalf("expected ReadError for %s, got %v", path, err)
	}
}

func TestWriteHonoursCancelledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.mp3")
	testsupport.WriteMP3(t, path, text(tags.Title, "Keep"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := newStore().Write(ctx, path, []diff.Op{diff.NewDelete(text(tags.Title, "Keep"))})
	var writeErr *store.WriteError
	if !errors.As(err, &writeErr) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancelled WriteError, got %v", err)
	}

	state, err := newStore().Read(context.Background(), path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !state.Contains(text(tags.Title, "Keep")) {
		t.Fatal("file modified despite cancelled context")
	}
}
