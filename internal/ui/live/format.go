package live

import (
	"strings"
	"time"

	"flowtap/internal/stream"
)

// formatStepID returns the display id for a block row.
func formatStepID(row BlockRow) string {
	if row.StepID != "" {
		return row.StepID
	}
	return "run"
}

// formatStatus renders a status string for a row. A streaming marker is
// appended while live chunks are still arriving.
func formatStatus(row BlockRow) string {
	label := statusLabel(row.Status)
	if row.Status == stream.BlockExecuting && row.Streaming {
		return label + " *"
	}
	return label
}

// statusLabel maps block statuses to display labels.
func statusLabel(status stream.BlockStatus) string {
	switch status {
	case stream.BlockExecuting:
		return "executing"
	case stream.BlockCompleted:
		return "completed"
	case stream.BlockError:
		return "error"
	default:
		return string(status)
	}
}

// runStatusLabel maps run statuses to display labels.
func runStatusLabel(status stream.RunStatus) string {
	switch status {
	case stream.RunExecuting:
		return "executing"
	case stream.RunCompleted:
		return "completed"
	case stream.RunError:
		return "failed"
	case stream.RunAbandoned:
		return "cancelled"
	default:
		return string(status)
	}
}

// formatChannelText collapses whitespace and truncates text for display.
func formatChannelText(text string) string {
	normalized := strings.Join(strings.Fields(text), " ")
	if normalized == "" {
		return ""
	}
	const limit = 120
	if len(normalized) <= limit {
		return normalized
	}
	return normalized[:limit-3] + "..."
}

// formatRowDuration returns elapsed or total time for a row.
func formatRowDuration(row BlockRow, now time.Time) string {
	if !row.CompletedAt.IsZero() && !row.StartedAt.IsZero() {
		return formatDuration(row.CompletedAt.Sub(row.StartedAt))
	}
	if !row.StartedAt.IsZero() {
		return formatDuration(now.Sub(row.StartedAt))
	}
	return ""
}

// formatDuration renders a rounded duration for display.
func formatDuration(duration time.Duration) string {
	if duration <= 0 {
		return "0s"
	}
	return duration.Round(100 * time.Millisecond).String()
}

// formatRunEnd formats the terminal footer message for a run.
func formatRunEnd(snapshot stream.RunSnapshot) string {
	switch snapshot.Status {
	case stream.RunCompleted:
		return "Run completed"
	case stream.RunError:
		if snapshot.Err != "" {
			return "Run failed: " + snapshot.Err
		}
		return "Run failed"
	case stream.RunAbandoned:
		return "Run cancelled"
	default:
		return ""
	}
}
