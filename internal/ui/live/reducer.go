package live

import (
	"strings"

	"flowtap/internal/stream"
)

// Reduce projects a run snapshot onto the UI state. Block order follows the
// snapshot, which already lists blocks in first-seen order.
func Reduce(state State, snapshot stream.RunSnapshot) State {
	state.RunID = snapshot.RunID
	state.Status = snapshot.Status
	state.RunError = snapshot.Err
	if state.StartedAt.IsZero() {
		state.StartedAt = snapshot.StartedAt
	}
	state.FinishedAt = snapshot.FinishedAt

	rows := make([]BlockRow, 0, len(snapshot.Blocks))
	for i, block := range snapshot.Blocks {
		rows = append(rows, rowForBlock(i, block))
	}
	state.Rows = rows
	state.Counts = recount(rows)
	return state
}

// rowForBlock flattens one block into a display row. The reasoning and
// output columns show committed text with any live tail appended, so
// streaming chunks are visible before they finalize.
func rowForBlock(index int, block stream.ExecutionBlock) BlockRow {
	row := BlockRow{
		Index:       index,
		StepID:      block.StepID,
		Status:      block.Status,
		StartedAt:   block.StartedAt,
		CompletedAt: block.CompletedAt,
		Error:       block.Err,
	}
	row.Reasoning, _ = channelText(block, "reasoning")
	var streaming bool
	row.Output, streaming = channelText(block, "output")
	if !streaming {
		_, streaming = channelText(block, "reasoning")
	}
	row.Streaming = streaming
	return row
}

// channelText joins a channel's committed segments plus its live tail and
// reports whether a live tail is present.
func channelText(block stream.ExecutionBlock, name string) (string, bool) {
	channel, ok := block.Channels[name]
	if !ok {
		return "", false
	}
	text := strings.Join(channel.Committed, "")
	if channel.Live != "" {
		return text + channel.Live, true
	}
	return text, false
}

// recount recomputes status counts for the current rows.
func recount(rows []BlockRow) StatusCounts {
	var counts StatusCounts
	for _, row := range rows {
		switch row.Status {
		case stream.BlockExecuting:
			counts.Executing++
		case stream.BlockCompleted:
			counts.Completed++
		case stream.BlockError:
			counts.Failed++
		}
	}
	return counts
}

// formatLastEvent creates a short footer message for a block change.
func formatLastEvent(blockID string, snapshot stream.RunSnapshot) string {
	for _, block := range snapshot.Blocks {
		if block.BlockID != blockID {
			continue
		}
		step := block.StepID
		if step == "" {
			step = "run"
		}
		switch block.Status {
		case stream.BlockCompleted:
			return "Node " + step + " completed"
		case stream.BlockError:
			if block.Err != "" {
				return "Node " + step + " failed: " + block.Err
			}
			return "Node " + step + " failed"
		default:
			return "Node " + step + " streaming"
		}
	}
	return ""
}
