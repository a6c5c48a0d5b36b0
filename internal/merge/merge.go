// Package merge combines spec sections into one desired tag state per file.
package merge

import (
	"fmt"
	"log/slog"
	"strings"

	"kiln/internal/logging"
	"kiln/internal/resolve"
	"kiln/internal/specfile"
	"kiln/internal/tags"
)

// Policy decides which value survives when sections disagree about an
// identifier for the same file.
type Policy string

const (
	LastWins  Policy = "last"
	FirstWins Policy = "first"
	Reject    Policy = "error"
)

// ParsePolicy accepts the configuration spelling of a policy.
func ParsePolicy(value string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(value))) {
	case LastWins, "":
		return LastWins, nil
	case FirstWins:
		return FirstWins, nil
	case Reject:
		return Reject, nil
	default:
		return "", fmt.Errorf("merge policy %q: expected last, first or error", value)
	}
}

// Options tunes Merge.
type Options struct {
	Policy Policy
	Logger *slog.Logger
}

// Target is the merged desired state of one file.
type Target struct {
	File    string
	Desired tags.State
}

// Override records a value that lost a conflict.
type Override struct {
	File     string
	ID       tags.Identifier
	Kept     tags.Value
	Dropped  tags.Value
	KeptLine int
	DropLine int
}

// Result is the outcome of Merge. Targets are in the order files first
// appeared while walking sections top to bottom.
type Result struct {
	Targets   []Target
	Overrides []Override
}

// Files returns the targeted file paths in order.
func (r *Result) Files() []string {
	files := make([]string, len(r.Targets))
	for i, target := range r.Targets {
		files[i] = target.File
	}
	return files
}

// ConflictError is returned under the Reject policy.
type ConflictError struct {
	File     string
	ID       tags.Identifier
	First    tags.Value
	Second   tags.Value
	Line     int
	PrevLine int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: conflicting values for %s: %q (section on line %d) and %q (section on line %d)",
		e.File, e.ID.FrameID(), e.First, e.PrevLine, e.Second, e.Line)
}

type slot struct {
	state tags.State
	lines map[tags.Identifier]int
}

// Merge resolves every section header and unions the assignments per file.
// Sections are applied in order; conflicts are settled by opts.Policy, and the
// resulting states hold at most one value per identifier.
func Merge(sections []specfile.Section, resolver resolve.Resolver, opts Options) (*Result, error) {
	policy := opts.Policy
	if policy == "" {
		policy = LastWins
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	result := &Result{}
	slots := make(map[string]*slot)
	var order []string

	for _, section := range sections {
		files, err := resolver.Resolve(section.Header)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			logger.Warn("section matched no files",
				logging.String(logging.FieldPattern, section.Header),
				logging.Int("line", section.Line),
			)
			continue
		}
		for _, file := range files {
			s, ok := slots[file]
			if !ok {
				s = &slot{lines: make(map[tags.Identifier]int)}
				slots[file] = s
				order = append(order, file)
			}
			for _, a := range section.Assignments {
				if err := apply(s, file, section.Line, a, policy, result, logger); err != nil {
					return nil, err
				}
			}
		}
	}

	result.Targets = make([]Target, 0, len(order))
	for _, file := range order {
		result.Targets = append(result.Targets, Target{File: file, Desired: slots[file].state})
	}
	return result, nil
}

func apply(s *slot, file string, line int, a tags.Assignment, policy Policy, result *Result, logger *slog.Logger) error {
	existing, ok := s.state.Get(a.ID)
	if !ok {
		s.state.Set(a.ID, a.Value)
		s.lines[a.ID] = line
		return nil
	}
	if existing.Equal(a.Value) {
		return nil
	}

	prevLine := s.lines[a.ID]
	switch policy {
	case Reject:
		return &ConflictError{File: file, ID: a.ID, First: existing, Second: a.Value, Line: line, PrevLine: prevLine}
	case FirstWins:
		result.Overrides = append(result.Overrides, Override{
			File: file, ID: a.ID, Kept: existing, Dropped: a.Value, KeptLine: prevLine, DropLine: line,
		})
	default:
		s.state.Set(a.ID, a.Value)
		s.lines[a.ID] = line
		result.Overrides = append(result.Overrides, Override{
			File: file, ID: a.ID, Kept: a.Value, Dropped: existing, KeptLine: line, DropLine: prevLine,
		})
	}
	last := result.Overrides[len(result.Overrides)-1]
	logger.Warn("conflicting tag values",
		logging.String(logging.FieldFile, file),
		logging.String(logging.FieldIdentifier, a.ID.FrameID()),
		logging.String("kept", last.Kept.String()),
		logging.String("dropped", last.Dropped.String()),
		logging.String("policy", string(policy)),
	)
	return nil
}
