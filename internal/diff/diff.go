// Package diff compares desired and current tag state and produces the
// operations that turn one into the other.
package diff

import (
	"fmt"
	"strings"

	"kiln/internal/tags"
)

// Kind enumerates diff operations.
type Kind int

const (
	Add Kind = iota
	Modify
	Delete
)

func (k Kind) String() string {
	switch k {
	case Add:
		return "add"
	case Modify:
		return "modify"
	case Delete:
		return "delete"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalText renders the kind for JSON and YAML output.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Op is a single change to one identifier. Add carries only New, Delete only
// Old, Modify both.
type Op struct {
	Kind Kind             `json:"kind" yaml:"kind"`
	Old  *tags.Assignment `json:"old,omitempty" yaml:"old,omitempty"`
	New  *tags.Assignment `json:"new,omitempty" yaml:"new,omitempty"`
}

func NewAdd(a tags.Assignment) Op { return Op{Kind: Add, New: &a} }

func NewDelete(a tags.Assignment) Op { return Op{Kind: Delete, Old: &a} }

func NewModify(old, updated tags.Assignment) Op {
	return Op{Kind: Modify, Old: &old, New: &updated}
}

// ID returns the identifier the operation touches.
func (o Op) ID() tags.Identifier {
	if o.New != nil {
		return o.New.ID
	}
	return o.Old.ID
}

// Equal compares kind and both sides.
func (o Op) Equal(other Op) bool {
	return o.Kind == other.Kind && sameAssignment(o.Old, other.Old) && sameAssignment(o.New, other.New)
}

func (o Op) String() string {
	switch o.Kind {
	case Add:
		return "+ " + o.New.String()
	case Delete:
		return "- " + o.Old.String()
	case Modify:
		return fmt.Sprintf("~ %s: %s -> %s", o.New.ID.FrameID(), o.Old.Value, o.New.Value)
	default:
		return o.Kind.String()
	}
}

func sameAssignment(a, b *tags.Assignment) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// Compute returns the operations that turn current into desired.
//
// Identifiers present in desired produce Modify (different value) or Add
// (absent from current), in desired order. Identifiers present only in
// current produce Delete, in current order, unless they are in preserve.
// Compute has no side effects and depends only on its arguments.
func Compute(desired, current tags.State, preserve tags.IdentifierSet) []Op {
	var ops []Op
	for _, want := range desired.Assignments() {
		have, ok := current.Get(want.ID)
		switch {
		case !ok:
			ops = append(ops, NewAdd(want))
		case !have.Equal(want.Value):
			ops = append(ops, NewModify(tags.Assignment{ID: want.ID, Value: have}, want))
		}
	}
	for _, have := range current.Assignments() {
		if desired.Has(have.ID) || preserve.Contains(have.ID) {
			continue
		}
		ops = append(ops, NewDelete(have))
	}
	return ops
}

// Apply returns current with ops applied.
func Apply(current tags.State, ops []Op) tags.State {
	next := current.Clone()
	for _, op := range ops {
		switch op.Kind {
		case Add, Modify:
			next.Set(op.New.ID, op.New.Value)
		case Delete:
			next.Delete(op.Old.ID)
		}
	}
	return next
}

// FileDiff is the ordered set of operations for one file.
type FileDiff struct {
	File string `json:"file" yaml:"file"`
	Ops  []Op   `json:"ops" yaml:"ops"`
}

// Empty reports whether the file is already in the desired state.
func (d FileDiff) Empty() bool { return len(d.Ops) == 0 }

// Counts tallies operations by kind.
func (d FileDiff) Counts() (added, modified, deleted int) {
	for _, op := range d.Ops {
		switch op.Kind {
		case Add:
			added++
		case Modify:
			modified++
		case Delete:
			deleted++
		}
	}
	return added, modified, deleted
}

func (d FileDiff) String() string {
	var b strings.Builder
	b.WriteString(d.File)
	for _, op := range d.Ops {
		b.WriteString("\n  ")
		b.WriteString(op.String())
	}
	return b.String()
}

// AnyChanges reports whether at least one diff is non-empty.
func AnyChanges(diffs []FileDiff) bool {
	for _, d := range diffs {
		if !d.Empty() {
			return true
		}
	}
	return false
}
