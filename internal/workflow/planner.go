package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"kiln/internal/config"
	"kiln/internal/diff"
	"kiln/internal/logging"
	"kiln/internal/merge"
	"kiln/internal/resolve"
	"kiln/internal/specfile"
	"kiln/internal/store"
	"kiln/internal/tags"
)

// Planner computes the changes a spec requires.
type Planner struct {
	Resolver resolve.Resolver
	Store    store.Reader
	Policy   merge.Policy
	Preserve tags.IdentifierSet
	// Workers bounds parallel reads. Zero means one per CPU.
	Workers int
	Logger  *slog.Logger
}

// NewPlanner builds a planner from configuration. preserve is merged with
// set.preserve.
func NewPlanner(cfg *config.Config, reader store.Reader, preserve tags.IdentifierSet, logger *slog.Logger) (*Planner, error) {
	policy, err := merge.ParsePolicy(cfg.Merge.Conflict)
	if err != nil {
		return nil, err
	}
	configured, err := cfg.PreserveSet()
	if err != nil {
		return nil, err
	}
	for id := range preserve {
		configured[id] = struct{}{}
	}
	return &Planner{
		Resolver: resolve.NewGlob(cfg.Set.Extensions...),
		Store:    reader,
		Policy:   policy,
		Preserve: configured,
		Workers:  cfg.Set.Workers,
		Logger:   logger,
	}, nil
}

// Plan is the set of per-file diffs for one run, in the order files first
// appeared in the spec file.
type Plan struct {
	Files     []diff.FileDiff
	Overrides []merge.Override
}

// Changed reports whether any file needs writing.
func (p *Plan) Changed() bool {
	return diff.AnyChanges(p.Files)
}

// Pending returns the diffs that are not empty.
func (p *Plan) Pending() []diff.FileDiff {
	pending := make([]diff.FileDiff, 0, len(p.Files))
	for _, fd := range p.Files {
		if !fd.Empty() {
			pending = append(pending, fd)
		}
	}
	return pending
}

// Summary totals the plan.
type Summary struct {
	Files     int `json:"files" yaml:"files"`
	Changed   int `json:"changed" yaml:"changed"`
	Additions int `json:"additions" yaml:"additions"`
	Modified  int `json:"modified" yaml:"modified"`
	Deletions int `json:"deletions" yaml:"deletions"`
}

// Summary totals operations across files.
func (p *Plan) Summary() Summary {
	s := Summary{Files: len(p.Files)}
	for _, fd := range p.Files {
		if fd.Empty() {
			continue
		}
		s.Changed++
		added, modified, deleted := fd.Counts()
		s.Additions += added
		s.Modified += modified
		s.Deletions += deleted
	}
	return s
}

// Plan merges sections, reads every targeted file and diffs it against its
// desired state.
func (p *Planner) Plan(ctx context.Context, sections []specfile.Section) (*Plan, error) {
	logger := logging.NewComponentLogger(p.Logger, "plan")

	merged, err := merge.Merge(sections, p.Resolver, merge.Options{
		Policy: p.Policy,
		Logger: logging.NewComponentLogger(p.Logger, "merge"),
	})
	if err != nil {
		return nil, err
	}

	workers := p.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	files := make([]diff.FileDiff, len(merged.Targets))
	for i, target := range merged.Targets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			current, err := p.Store.Read(gctx, target.File)
			if err != nil {
				return err
			}
			files[i] = diff.FileDiff{
				File: target.File,
				Ops:  diff.Compute(target.Desired, current, p.Preserve),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	plan := &Plan{Files: files, Overrides: merged.Overrides}
	summary := plan.Summary()
	logger.Debug("plan computed",
		logging.Int("files", summary.Files),
		logging.Int("changed", summary.Changed),
		logging.Int("overrides", len(plan.Overrides)),
	)
	return plan, nil
}

// ParsePreserve turns command line values into identifiers. Each value may
// hold several comma separated identifiers, given as frame ids or names in
// any case.
func ParsePreserve(values []string) (tags.IdentifierSet, error) {
	set := make(tags.IdentifierSet)
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			id, err := tags.LookupIdentifier(part)
			if err != nil {
				return nil, fmt.Errorf("preserve: %w", err)
			}
			set[id] = struct{}{}
		}
	}
	return set, nil
}
