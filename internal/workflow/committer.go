package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"kiln/internal/diff"
	"kiln/internal/journal"
	"kiln/internal/logging"
	"kiln/internal/store"
)

// Recorder keeps a history of committed changes. *journal.Journal
// implements it.
type Recorder interface {
	BeginRun(ctx context.Context, info journal.RunInfo) (string, error)
	RecordFile(ctx context.Context, runID string, fd diff.FileDiff) error
	FinishRun(ctx context.Context, runID string, status journal.Status, runErr error) error
}

// Committer writes planned changes.
type Committer struct {
	Store store.Writer
	// Recorder is optional.
	Recorder Recorder
	Logger   *slog.Logger
}

// CommitResult describes a successful commit.
type CommitResult struct {
	RunID   string
	Written []string
}

// CommitError reports a commit that stopped part way. Files in Written were
// changed before Failed could not be; they are not rolled back.
type CommitError struct {
	RunID   string
	Written []string
	Failed  string
	Err     error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("commit stopped at %s after writing %d file(s): %v", e.Failed, len(e.Written), e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }

// Commit writes every pending file in plan order and stops at the first
// failure. specPath labels the journal run.
func (c *Committer) Commit(ctx context.Context, plan *Plan, specPath string) (*CommitResult, error) {
	pending := plan.Pending()
	result := &CommitResult{Written: make([]string, 0, len(pending))}
	if len(pending) == 0 {
		return result, nil
	}

	if c.Recorder != nil {
		runID, err := c.Recorder.BeginRun(ctx, journal.RunInfo{SpecPath: specPath, PlannedFiles: len(pending)})
		if err != nil {
			return nil, err
		}
		result.RunID = runID
		ctx = logging.WithRunID(ctx, runID)
	}
	logger := logging.WithContext(ctx, logging.NewComponentLogger(c.Logger, "commit"))

	for _, fd := range pending {
		if err := c.Store.Write(ctx, fd.File, fd.Ops); err != nil {
			logger.Error("tag write failed",
				logging.String(logging.FieldFile, fd.File),
				logging.Int("written", len(result.Written)),
				logging.Error(err),
			)
			commitErr := &CommitError{RunID: result.RunID, Written: result.Written, Failed: fd.File, Err: err}
			c.finish(ctx, logger, result.RunID, journal.StatusFailed, err)
			return nil, commitErr
		}
		result.Written = append(result.Written, fd.File)
		if c.Recorder != nil {
			if err := c.Recorder.RecordFile(ctx, result.RunID, fd); err != nil {
				logger.Warn("journal record failed",
					logging.String(logging.FieldFile, fd.File),
					logging.Error(err),
				)
			}
		}
		logger.Info("tags updated",
			logging.String(logging.FieldFile, fd.File),
			logging.Int("ops", len(fd.Ops)),
		)
	}

	c.finish(ctx, logger, result.RunID, journal.StatusCompleted, nil)
	return result, nil
}

func (c *Committer) finish(ctx context.Context, logger *slog.Logger, runID string, status journal.Status, runErr error) {
	if c.Recorder == nil {
		return
	}
	if err := c.Recorder.FinishRun(context.WithoutCancel(ctx), runID, status, runErr); err != nil {
		logger.Warn("journal finish failed", logging.Error(err))
	}
}
