package diff_test

import (
	"testing"

	"kiln/internal/diff"
	"kiln/internal/tags"
)

func text(id tags.Identifier, v string) tags.Assignment {
	return tags.Assignment{ID: id, Value: tags.Text(v)}
}

func assertOps(t *testing.T, got, want []diff.Op) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("ops = %v, want %v", got, want)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Fatalf("op %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestComputeModifyThenAdd(t *testing.T) {
	current := tags.NewState(text(tags.Title, "Old Title"))
	desired := tags.NewState(text(tags.Title, "New Title"), text(tags.Artist, "Artist"))

	got := diff.Compute(desired, current, nil)
	assertOps(t, got, []diff.Op{
		diff.NewModify(text(tags.Title, "Old Title"), text(tags.Title, "New Title")),
		diff.NewAdd(text(tags.Artist, "Artist")),
	})
}

func TestComputePreserveSkipsDelete(t *testing.T) {
	current := tags.NewState(text(tags.Album, "X"), text(tags.Genre, "Rock"))
	got := diff.Compute(tags.State{}, current, tags.NewIdentifierSet(tags.Genre))
	assertOps(t, got, []diff.Op{diff.NewDelete(text(tags.Album, "X"))})
}

func TestComputePreserveDoesNotBlockAddOrModify(t *testing.T) {
	current := tags.NewState(text(tags.Genre, "Rock"))
	desired := tags.NewState(text(tags.Genre, "Jazz"), text(tags.Year, "1999"))
	preserve := tags.NewIdentifierSet(tags.Genre, tags.Year)

	got := diff.Compute(desired, current, preserve)
	assertOps(t, got, []diff.Op{
		diff.NewModify(text(tags.Genre, "Rock"), text(tags.Genre, "Jazz")),
		diff.NewAdd(text(tags.Year, "1999")),
	})
}

func TestComputeIdenticalStateIsEmpty(t *testing.T) {
	state := tags.NewState(text(tags.Artist, "A"), tags.Assignment{ID: tags.Comment, Value: tags.NewComment("c")})
	if ops := diff.Compute(state, state.Clone(), nil); len(ops) != 0 {
		t.Fatalf("expected no ops, got %v", ops)
	}
}

func TestComputeDeletesFollowAddsAndModifies(t *testing.T) {
	current := tags.NewState(text(tags.Album, "gone"), text(tags.Title, "old"), text(tags.Genre, "gone too"))
	desired := tags.NewState(text(tags.Title, "new"), text(tags.Artist, "a"))

	got := diff.Compute(desired, current, nil)
	kinds := make([]diff.Kind, len(got))
	for i, op := range got {
		kinds[i] = op.Kind
	}
	want := []diff.Kind{diff.Modify, diff.Add, diff.Delete, diff.Delete}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("kinds = %v, want %v", kinds, want)
		}
	}
	if got[2].ID() != tags.Album || got[3].ID() != tags.Genre {
		t.Fatalf("deletes out of current order: %v", got[2:])
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	current := tags.NewState(text(tags.Album, "a"), text(tags.Year, "1"), text(tags.Genre, "g"), text(tags.Title, "t"))
	desired := tags.NewState(text(tags.Title, "T"), text(tags.Artist, "x"), text(tags.TrackNumber, "1"))
	preserve := tags.NewIdentifierSet(tags.Year)

	first := diff.Compute(desired, current, preserve)
	for i := 0; i < 50; i++ {
		assertOps(t, diff.Compute(desired, current, preserve), first)
	}
}

func TestComputePartitionCompleteness(t *testing.T) {
	current := tags.NewState(
		text(tags.Artist, "same"),
		text(tags.Album, "old"),
		text(tags.Genre, "drop"),
		text(tags.Year, "keep"),
	)
	desired := tags.NewState(
		text(tags.Artist, "same"),
		text(tags.Album, "new"),
		text(tags.Title, "added"),
	)
	preserve := tags.NewIdentifierSet(tags.Year)

	counts := map[tags.Identifier]int{}
	byKind := map[tags.Identifier]diff.Kind{}
	for _, op := range diff.Compute(desired, current, preserve) {
		counts[op.ID()]++
		byKind[op.ID()] = op.Kind
	}
	if counts[tags.Artist] != 0 || counts[tags.Year] != 0 {
		t.Fatalf("unexpected ops for unchanged or preserved ids: %v", counts)
	}
	expect := map[tags.Identifier]diff.Kind{tags.Album: diff.Modify, tags.Title: diff.Add, tags.Genre: diff.Delete}
	for id, kind := range expect {
		if counts[id] != 1 || byKind[id] != kind {
			t.Fatalf("%s: count %d kind %v, want one %v", id, counts[id], byKind[id], kind)
		}
	}
}

func TestApplyThenComputeIsIdempotent(t *testing.T) {
	cases := []struct {
		name     string
		desired  tags.State
		current  tags.State
		preserve tags.IdentifierSet
	}{
		{"empty", tags.State{}, tags.State{}, nil},
		{"fresh file", tags.NewState(text(tags.Artist, "a"), text(tags.Title, "t")), tags.State{}, nil},
		{"wipe", tags.State{}, tags.NewState(text(tags.Album, "x")), nil},
		{
			"mixed with preserve",
			tags.NewState(text(tags.Title, "new"), text(tags.Artist, "a")),
			tags.NewState(text(tags.Title, "old"), text(tags.Genre, "g"), text(tags.Year, "y")),
			tags.NewIdentifierSet(tags.Genre),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ops := diff.Compute(tc.desired, tc.current, tc.preserve)
			next := diff.Apply(tc.current, ops)
			if again := diff.Compute(tc.desired, next, tc.preserve); len(again) != 0 {
				t.Fatalf("second diff not empty: %v", again)
			}
			if tc.current.Len() > 0 && len(ops) > 0 && tc.current.Equal(next) {
				t.Fatal("Apply mutated nothing")
			}
		})
	}
}

func TestApplyLeavesInputUntouched(t *testing.T) {
	current := tags.NewState(text(tags.Album, "x"))
	_ = diff.Apply(current, []diff.Op{diff.NewDelete(text(tags.Album, "x"))})
	if !current.Has(tags.Album) {
		t.Fatal("Apply modified its input")
	}
}

func TestFileDiffHelpers(t *testing.T) {
	diffs := []diff.FileDiff{
		{File: "a.mp3"},
		{File: "b.mp3", Ops: []diff.Op{
			diff.NewAdd(text(tags.Artist, "a")),
			diff.NewDelete(text(tags.Genre, "g")),
			diff.NewDelete(text(tags.Year, "y")),
		}},
	}
	if !diffs[0].Empty() || diffs[1].Empty() {
		t.Fatal("Empty mismatch")
	}
	if !diff.AnyChanges(diffs) || diff.AnyChanges(diffs[:1]) {
		t.Fatal("AnyChanges mismatch")
	}
	added, modified, deleted := diffs[1].Counts()
	if added != 1 || modified != 0 || deleted != 2 {
		t.Fatalf("counts = %d %d %d", added, modified, deleted)
	}
}
