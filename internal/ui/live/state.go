package live

import (
	"time"

	"flowtap/internal/stream"
)

// BlockRow holds UI state for a single execution block.
type BlockRow struct {
	Index       int
	StepID      string
	Status      stream.BlockStatus
	Reasoning   string
	Output      string
	Streaming   bool
	StartedAt   time.Time
	CompletedAt time.Time
	Error       string
}

// StatusCounts aggregates block counts by status bucket.
type StatusCounts struct {
	Executing int
	Completed int
	Failed    int
}

// State captures the live UI state for one run.
type State struct {
	RunID      string
	Workflow   string
	Status     stream.RunStatus
	RunError   string
	StartedAt  time.Time
	FinishedAt time.Time
	LastEvent  string
	Rows       []BlockRow
	Counts     StatusCounts
}
