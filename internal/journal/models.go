package journal

import (
	"fmt"
	"time"

	"kiln/internal/tags"
)

// Status is the lifecycle state of a run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// RunInfo describes a run when it begins.
type RunInfo struct {
	SpecPath     string
	PlannedFiles int
}

// Run is one recorded `kiln set` commit.
type Run struct {
	ID           string     `json:"id" yaml:"id"`
	SpecPath     string     `json:"spec_path" yaml:"spec_path"`
	Status       Status     `json:"status" yaml:"status"`
	PlannedFiles int        `json:"planned_files" yaml:"planned_files"`
	WrittenFiles int        `json:"written_files" yaml:"written_files"`
	Error        string     `json:"error,omitempty" yaml:"error,omitempty"`
	StartedAt    time.Time  `json:"started_at" yaml:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
}

// Change is one diff operation applied to one file.
type Change struct {
	File       string    `json:"file" yaml:"file"`
	Seq        int       `json:"seq" yaml:"seq"`
	Kind       string    `json:"kind" yaml:"kind"`
	FrameID    string    `json:"frame_id" yaml:"frame_id"`
	OldValue   string    `json:"old_value,omitempty" yaml:"old_value,omitempty"`
	NewValue   string    `json:"new_value,omitempty" yaml:"new_value,omitempty"`
	RecordedAt time.Time `json:"recorded_at" yaml:"recorded_at"`
}

// Summarize renders a value for storage. Images are reduced to their
// mime type and size.
func Summarize(v tags.Value) string {
	switch value := v.(type) {
	case nil:
		return ""
	case tags.Image:
		return fmt.Sprintf("%s, %d bytes", value.MIME, len(value.Data))
	default:
		return value.String()
	}
}
