package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"kiln/internal/diff"
)

// ErrRunNotFound is returned when no run matches an identifier.
var ErrRunNotFound = errors.New("run not found")

// Journal persists run history backed by SQLite.
type Journal struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond

	// timestampLayout is fixed width so stored timestamps sort lexically.
	timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// Open initializes or connects to the journal database at path and applies
// migrations.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	j := &Journal{db: db, path: path}
	if err := j.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

// Path returns the database location.
func (j *Journal) Path() string { return j.path }

// Close closes the underlying database connection.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// BeginRun opens a run and returns its identifier.
func (j *Journal) BeginRun(ctx context.Context, info RunInfo) (string, error) {
	id := uuid.NewString()
	err := j.exec(ctx,
		`INSERT INTO runs (id, spec_path, status, planned_files, started_at) VALUES (?, ?, ?, ?, ?)`,
		id, info.SpecPath, StatusRunning, info.PlannedFiles, now(),
	)
	if err != nil {
		return "", fmt.Errorf("begin run: %w", err)
	}
	return id, nil
}

// RecordFile stores the operations written to one file and counts the file
// as written.
func (j *Journal) RecordFile(ctx context.Context, runID string, fd diff.FileDiff) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin record tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	recorded := now()
	for seq, op := range fd.Ops {
		var oldValue, newValue sql.NullString
		if op.Old != nil {
			oldValue = sql.NullString{String: Summarize(op.Old.Value), Valid: true}
		}
		if op.New != nil {
			newValue = sql.NullString{String: Summarize(op.New.Value), Valid: true}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO changes (run_id, file_path, seq, kind, frame_id, old_value, new_value, recorded_at)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, fd.File, seq, op.Kind.String(), op.ID().FrameID(), oldValue, newValue, recorded,
		); err != nil {
			return fmt.Errorf("record change for %s: %w", fd.File, err)
		}
	}
	res, err := tx.ExecContext(ctx, `UPDATE runs SET written_files = written_files + 1 WHERE id = ?`, runID)
	if err != nil {
		return fmt.Errorf("update run %s: %w", runID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit record: %w", err)
	}
	return nil
}

// FinishRun closes a run with status. runErr, when set, is stored as the
// failure message.
func (j *Journal) FinishRun(ctx context.Context, runID string, status Status, runErr error) error {
	var message sql.NullString
	if runErr != nil {
		message = sql.NullString{String: runErr.Error(), Valid: true}
	}
	if err := j.exec(ctx,
		`UPDATE runs SET status = ?, error_message = ?, finished_at = ? WHERE id = ?`,
		status, message, now(), runID,
	); err != nil {
		return fmt.Errorf("finish run %s: %w", runID, err)
	}
	return nil
}

const runColumns = `id, spec_path, status, planned_files, written_files, error_message, started_at, finished_at`

// Runs lists the most recent runs first. limit <= 0 returns every run.
func (j *Journal) Runs(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Run fetches a run by identifier or unique identifier prefix.
func (j *Journal) Run(ctx context.Context, idOrPrefix string) (Run, error) {
	idOrPrefix = strings.TrimSpace(idOrPrefix)
	if idOrPrefix == "" {
		return Run{}, ErrRunNotFound
	}
	run, err := scanRun(j.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, idOrPrefix))
	if err == nil {
		return run, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Run{}, err
	}

	rows, err := j.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE substr(id, 1, ?) = ? LIMIT 2`,
		len(idOrPrefix), idOrPrefix,
	)
	if err != nil {
		return Run{}, fmt.Errorf("lookup run: %w", err)
	}
	defer rows.Close()

	var matches []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return Run{}, err
		}
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		return Run{}, err
	}
	switch len(matches) {
	case 0:
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, idOrPrefix)
	case 1:
		return matches[0], nil
	default:
		return Run{}, fmt.Errorf("run prefix %q is ambiguous", idOrPrefix)
	}
}

// Changes lists the operations recorded for a run in write order.
func (j *Journal) Changes(ctx context.Context, runID string) ([]Change, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT file_path, seq, kind, frame_id, old_value, new_value, recorded_at
         FROM changes WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list changes: %w", err)
	}
	defer rows.Close()

	var changes []Change
	for rows.Next() {
		var (
			c                  Change
			oldValue, newValue sql.NullString
			recorded           string
		)
		if err := rows.Scan(&c.File, &c.Seq, &c.Kind, &c.FrameID, &oldValue, &newValue, &recorded); err != nil {
			return nil, fmt.Errorf("scan change: %w", err)
		}
		c.OldValue = oldValue.String
		c.NewValue = newValue.String
		c.RecordedAt = parseTime(recorded)
		changes = append(changes, c)
	}
	return changes, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run      Run
		status   string
		message  sql.NullString
		started  string
		finished sql.NullString
	)
	if err := row.Scan(&run.ID, &run.SpecPath, &status, &run.PlannedFiles, &run.WrittenFiles, &message, &started, &finished); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.Status = Status(status)
	run.Error = message.String
	run.StartedAt = parseTime(started)
	if finished.Valid {
		t := parseTime(finished.String)
		run.FinishedAt = &t
	}
	return run, nil
}

func (j *Journal) exec(ctx context.Context, query string, args ...any) error {
	return retryOnBusy(ctx, func() error {
		_, err := j.db.ExecContext(ctx, query, args...)
		return err
	})
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func now() string {
	return time.Now().UTC().Format(timestampLayout)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(timestampLayout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
