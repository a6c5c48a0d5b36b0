package listing_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"kiln/internal/listing"
	"kiln/internal/logging"
	"kiln/internal/resolve"
	"kiln/internal/store"
	"kiln/internal/tags"
	"kiln/internal/testsupport"
)

func text(id tags.Identifier, v string) tags.Assignment {
	return tags.Assignment{ID: id, Value: tags.Text(v)}
}

func TestBuildSplitsSharedAndDiffering(t *testing.T) {
	files := []listing.FileTags{
		{File: "a.mp3", Tags: tags.NewState(text(tags.Title, "One"), text(tags.Artist, "Band"), text(tags.Album, "LP"))},
		{File: "b.mp3", Tags: tags.NewState(text(tags.Artist, "Band"), text(tags.Album, "LP"), text(tags.Title, "Two"))},
	}

	report := listing.Build(files)
	if len(report.Shared) != 2 || report.Shared[0].ID != tags.Artist || report.Shared[1].ID != tags.Album {
		t.Fatalf("unexpected shared tags: %v", report.Shared)
	}
	if len(report.Files) != 2 {
		t.Fatalf("expected 2 file reports, got %d", len(report.Files))
	}
	for i, want := range []string{"One", "Two"} {
		fr := report.Files[i]
		if len(fr.Differing) != 1 || !fr.Differing[0].Equal(text(tags.Title, want)) {
			t.Fatalf("file %d differing = %v", i, fr.Differing)
		}
	}
}

func TestBuildWithNoFilesSharesNothing(t *testing.T) {
	report := listing.Build(nil)
	if len(report.Shared) != 0 || len(report.Files) != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestWriteRendersSpecSyntax(t *testing.T) {
	report := listing.Build([]listing.FileTags{
		{File: "a.mp3", Tags: tags.NewState(text(tags.Artist, "Band"), text(tags.Title, "One"))},
		{File: "b.mp3", Tags: tags.NewState(text(tags.Artist, "Band"), text(tags.Title, "Two"))},
	})

	var buf bytes.Buffer
	if err := listing.Write(&buf, "./*", report, listing.Options{}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := "# All files in pattern share the following tags:\n" +
		"[./*]\nTPE1 = Band\n\n" +
		"# The following file has these differing tags:\n" +
		"[a.mp3]\nTIT2 = One\n\n" +
		"# The following file has these differing tags:\n" +
		"[b.mp3]\nTIT2 = Two\n\n"
	if buf.String() != want {
		t.Fatalf("output mismatch\n got: %q\nwant: %q", buf.String(), want)
	}
}

func TestWriteWithoutComments(t *testing.T) {
	cover := tags.NewImage("image/png", tags.PictureFrontCover, "cover", []byte{1, 2, 3})
	report := listing.Build([]listing.FileTags{
		{File: "a.mp3", Tags: tags.NewState(text(tags.Album, "LP"), tags.Assignment{ID: tags.CoverImage, Value: cover})},
	})

	var buf bytes.Buffer
	if err := listing.Write(&buf, "*.mp3", report, listing.Options{NoComments: true}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if want := "[*.mp3]\nTALB = LP\n\n"; buf.String() != want {
		t.Fatalf("output = %q, want %q", buf.String(), want)
	}
}

func TestWriteForceEmpty(t *testing.T) {
	report := listing.Build([]listing.FileTags{{File: "a.mp3"}})

	var quiet bytes.Buffer
	if err := listing.Write(&quiet, "*", report, listing.Options{NoComments: true}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if quiet.Len() != 0 {
		t.Fatalf("expected no output, got %q", quiet.String())
	}

	var forced bytes.Buffer
	if err := listing.Write(&forced, "*", report, listing.Options{NoComments: true, ForceEmpty: true}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if want := "[*]\n\n[a.mp3]\n\n"; forced.String() != want {
		t.Fatalf("output = %q, want %q", forced.String(), want)
	}
}

func TestCollectReadsResolvedFiles(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteMP3(t, filepath.Join(dir, "a.mp3"), text(tags.Album, "LP"), text(tags.Title, "One"))
	testsupport.WriteMP3(t, filepath.Join(dir, "b.mp3"), text(tags.Album, "LP"))
	testsupport.WriteFile(t, filepath.Join(dir, "notes.txt"), []byte("skip"))

	files, err := listing.Collect(context.Background(), resolve.NewGlob(), store.NewID3Store(logging.NewNop()), filepath.Join(dir, "*"), 2)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %+v", files)
	}
	report := listing.Build(files)
	if len(report.Shared) != 1 || !report.Shared[0].Equal(text(tags.Album, "LP")) {
		t.Fatalf("unexpected shared: %v", report.Shared)
	}
	if len(report.Files[1].Differing) != 0 {
		t.Fatalf("b.mp3 should have no differing tags: %v", report.Files[1].Differing)
	}
}
