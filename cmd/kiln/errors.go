package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"kiln/internal/journal"
	"kiln/internal/merge"
	"kiln/internal/resolve"
	"kiln/internal/specfile"
	"kiln/internal/store"
	"kiln/internal/tags"
	"kiln/internal/workflow"
)

// shouldReport reports whether err is worth printing. Cancellation stays
// quiet unless a commit already changed some files.
func shouldReport(err error) bool {
	var commitErr *workflow.CommitError
	if errors.As(err, &commitErr) && len(commitErr.Written) > 0 {
		return true
	}
	return !errors.Is(err, context.Canceled)
}

// describeError turns typed failures into the message shown to the user.
// Anything unrecognised falls back to err.Error().
func describeError(err error) string {
	var (
		syntaxErr   *specfile.SyntaxError
		unknownErr  *specfile.UnknownIdentifierError
		imageErr    *specfile.ImageError
		resolveErr  *resolve.Error
		conflictErr *merge.ConflictError
		readErr     *store.ReadError
		commitErr   *workflow.CommitError
		writeErr    *store.WriteError
	)

	switch {
	case errors.As(err, &syntaxErr):
		return fmt.Sprintf("spec syntax error at %s: %s\n  %s", syntaxErr.Pos, syntaxErr.Message, syntaxErr.Fragment)
	case errors.As(err, &unknownErr):
		return fmt.Sprintf("spec error at %s: %q is not a tag kiln manages (valid: %s)", unknownErr.Pos, unknownErr.Token, validIdentifiers())
	case errors.As(err, &imageErr):
		return fmt.Sprintf("spec error at %s: bad image %s: %v", imageErr.Pos, imageErr.Path, imageErr.Err)
	case errors.As(err, &resolveErr):
		return fmt.Sprintf("invalid file pattern %q: %v", resolveErr.Pattern, resolveErr.Err)
	case errors.As(err, &conflictErr):
		return fmt.Sprintf("conflicting values for %s on %s: %q (line %d) and %q (line %d); set merge.conflict to \"first\" or \"last\" to pick one",
			conflictErr.ID.FrameID(), conflictErr.File, conflictErr.First, conflictErr.PrevLine, conflictErr.Second, conflictErr.Line)
	case errors.As(err, &readErr):
		return fmt.Sprintf("could not read tags from %s: %v\nno files were changed", readErr.File, readErr.Err)
	case errors.As(err, &commitErr):
		return describeCommitError(commitErr)
	case errors.As(err, &writeErr):
		return fmt.Sprintf("could not write tags to %s: %v", writeErr.File, writeErr.Err)
	case errors.Is(err, workflow.ErrLocked):
		return err.Error() + "; wait for it to finish and retry"
	case errors.Is(err, journal.ErrRunNotFound):
		return err.Error() + "; see `kiln history` for recorded runs"
	default:
		return err.Error()
	}
}

func describeCommitError(err *workflow.CommitError) string {
	reason := err.Err
	var writeErr *store.WriteError
	if errors.As(reason, &writeErr) {
		reason = writeErr.Err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "could not write tags to %s: %v", err.Failed, reason)
	switch len(err.Written) {
	case 0:
		b.WriteString("\nno files were changed")
		return b.String()
	case 1:
		b.WriteString("\n1 file was already written and keeps its new tags:")
	default:
		fmt.Fprintf(&b, "\n%d files were already written and keep their new tags:", len(err.Written))
	}
	for _, file := range err.Written {
		b.WriteString("\n  ")
		b.WriteString(file)
	}
	return b.String()
}

func validIdentifiers() string {
	ids := tags.Identifiers()
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = id.FrameID()
	}
	return strings.Join(names, " ")
}
