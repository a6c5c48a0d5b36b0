package resolve_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"kiln/internal/resolve"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestGlobFiltersExtensionsAndDirectories(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.mp3"))
	touch(t, filepath.Join(dir, "a.MP3"))
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, "cover.jpg"))
	if err := os.Mkdir(filepath.Join(dir, "folder.mp3"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	files, err := resolve.NewGlob().Resolve(filepath.Join(dir, "*"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := []string{filepath.Join(dir, "a.MP3"), filepath.Join(dir, "b.mp3")}
	if len(files) != len(want) {
		t.Fatalf("files = %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Fatalf("files[%d] = %q, want %q", i, files[i], want[i])
		}
	}
}

func TestGlobCustomExtensions(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.mp3"))
	touch(t, filepath.Join(dir, "b.flac"))

	files, err := resolve.NewGlob("flac").Resolve(filepath.Join(dir, "*"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "b.flac" {
		t.Fatalf("unexpected files %v", files)
	}
}

func TestGlobNoMatches(t *testing.T) {
	files, err := resolve.NewGlob().Resolve(filepath.Join(t.TempDir(), "*.mp3"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("expected no files, got %v", files)
	}
}

func TestGlobBadPattern(t *testing.T) {
	_, err := resolve.NewGlob().Resolve("[")
	var resolveErr *resolve.Error
	if !errors.As(err, &resolveErr) {
		t.Fatalf("expected resolve.Error, got %v", err)
	}
	if resolveErr.Pattern != "[" {
		t.Fatalf("pattern = %q", resolveErr.Pattern)
	}
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	if got := resolve.ExpandHome("~/music/*.mp3"); got != filepath.Join(home, "music", "*.mp3") {
		t.Fatalf("ExpandHome = %q", got)
	}
	if got := resolve.ExpandHome("~"); got != home {
		t.Fatalf("ExpandHome(~) = %q", got)
	}
	if got := resolve.ExpandHome("music/~x"); got != "music/~x" {
		t.Fatalf("ExpandHome changed relative path: %q", got)
	}
}
