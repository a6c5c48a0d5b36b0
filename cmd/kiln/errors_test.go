package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"kiln/internal/journal"
	"kiln/internal/merge"
	"kiln/internal/resolve"
	"kiln/internal/specfile"
	"kiln/internal/store"
	"kiln/internal/tags"
	"kiln/internal/workflow"
)

func TestDescribeError(t *testing.T) {
	writeFailure := &store.WriteError{File: "b.mp3", Err: errors.New("permission denied")}
	tests := []struct {
		name string
		err  error
		want []string
	}{
		{
			name: "syntax",
			err:  &specfile.SyntaxError{Pos: specfile.Position{Line: 3, Column: 1}, Fragment: "TIT2 New", Message: "unparsed input"},
			want: []string{"spec syntax error at line 3, column 1", "TIT2 New"},
		},
		{
			name: "unknown identifier",
			err:  &specfile.UnknownIdentifierError{Pos: specfile.Position{Line: 2, Column: 1}, Token: "FOO"},
			want: []string{`"FOO" is not a tag kiln manages`, "TPE1", "APIC"},
		},
		{
			name: "image",
			err:  &specfile.ImageError{Pos: specfile.Position{Line: 4, Column: 1}, Path: "cover.png", Err: errors.New("no such file")},
			want: []string{"bad image cover.png", "no such file"},
		},
		{
			name: "resolver",
			err:  &resolve.Error{Pattern: "[", Err: errors.New("syntax error in pattern")},
			want: []string{`invalid file pattern "["`},
		},
		{
			name: "conflict",
			err:  &merge.ConflictError{File: "a.mp3", ID: tags.Album, First: tags.Text("X"), Second: tags.Text("Y"), PrevLine: 1, Line: 5},
			want: []string{"conflicting values for TALB on a.mp3", `"X" (line 1)`, `"Y" (line 5)`},
		},
		{
			name: "read",
			err:  fmt.Errorf("plan: %w", &store.ReadError{File: "a.mp3", Err: errors.New("bad header")}),
			want: []string{"could not read tags from a.mp3: bad header", "no files were changed"},
		},
		{
			name: "partial commit",
			err:  &workflow.CommitError{Written: []string{"a.mp3"}, Failed: "b.mp3", Err: writeFailure},
			want: []string{"could not write tags to b.mp3: permission denied", "1 file was already written", "  a.mp3"},
		},
		{
			name: "write",
			err:  writeFailure,
			want: []string{"could not write tags to b.mp3: permission denied"},
		},
		{
			name: "locked",
			err:  fmt.Errorf("%w (lock file x)", workflow.ErrLocked),
			want: []string{"another kiln run", "retry"},
		},
		{
			name: "run not found",
			err:  fmt.Errorf("%w: abc", journal.ErrRunNotFound),
			want: []string{"kiln history"},
		},
		{
			name: "other",
			err:  errors.New("boom"),
			want: []string{"boom"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := describeError(tt.err)
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Fatalf("describeError() = %q, missing %q", got, want)
				}
			}
		})
	}
}

func TestShouldReport(t *testing.T) {
	interrupted := &store.WriteError{File: "03.mp3", Err: context.Canceled}
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"plain error", errors.New("boom"), true},
		{"cancelled", fmt.Errorf("plan: %w", context.Canceled), false},
		{"cancelled before any write", &workflow.CommitError{Failed: "01.mp3", Err: &store.WriteError{File: "01.mp3", Err: context.Canceled}}, false},
		{"cancelled after writes", &workflow.CommitError{Written: []string{"01.mp3", "02.mp3"}, Failed: "03.mp3", Err: interrupted}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shouldReport(tt.err); got != tt.want {
				t.Fatalf("shouldReport() = %v, want %v", got, tt.want)
			}
		})
	}

	msg := describeError(&workflow.CommitError{Written: []string{"01.mp3", "02.mp3"}, Failed: "03.mp3", Err: interrupted})
	for _, want := range []string{"2 files were already written", "  01.mp3", "  02.mp3"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("describeError() = %q, missing %q", msg, want)
		}
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"\n", true},
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"maybe\n", false},
		{"", false},
	}
	for _, tt := range tests {
		var out strings.Builder
		got, err := confirm(strings.NewReader(tt.input), &out, "? ")
		if err != nil {
			t.Fatalf("confirm(%q): %v", tt.input, err)
		}
		if got != tt.want {
			t.Fatalf("confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
		if out.String() != "? " {
			t.Fatalf("prompt = %q", out.String())
		}
	}
}
