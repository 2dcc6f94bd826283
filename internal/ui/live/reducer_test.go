package live

import (
	"testing"
	"time"

	"flowtap/internal/stream"
	"flowtap/internal/testutil"
)

// TestReduceBlockLifecycle verifies block rows follow snapshot transitions.
func TestReduceBlockLifecycle(t *testing.T) {
	runWithTimeout(t, time.Second, func() {
		start := time.Now()
		state := State{}
		state = Reduce(state, snapshot(stream.RunExecuting, block("s1", stream.BlockExecuting, "Thinking", "", start)))
		if len(state.Rows) != 1 || state.Rows[0].Status != stream.BlockExecuting {
			t.Fatalf("expected one executing row, got %+v", state.Rows)
		}
		if state.Counts.Executing != 1 {
			t.Fatalf("expected executing count, got %+v", state.Counts)
		}

		state = Reduce(state, snapshot(stream.RunCompleted, block("s1", stream.BlockCompleted, "Thinking...done.", "42", start)))
		row := state.Rows[0]
		if row.Status != stream.BlockCompleted {
			t.Fatalf("expected completed status, got %s", row.Status)
		}
		if row.Reasoning != "Thinking...done." || row.Output != "42" {
			t.Fatalf("unexpected channel text: %+v", row)
		}
		if state.Counts.Completed != 1 || state.Counts.Executing != 0 {
			t.Fatalf("unexpected counts: %+v", state.Counts)
		}
		if state.Status != stream.RunCompleted {
			t.Fatalf("expected completed run status, got %s", state.Status)
		}
	})
}

// TestReduceLiveTailVisible verifies uncommitted chunks show in the row.
func TestReduceLiveTailVisible(t *testing.T) {
	runWithTimeout(t, time.Second, func() {
		b := block("s1", stream.BlockExecuting, "", "", time.Now())
		b.Channels["output"] = stream.Channel{Live: "partial"}
		state := Reduce(State{}, snapshot(stream.RunExecuting, b))
		if state.Rows[0].Output != "partial" {
			t.Fatalf("expected live tail in output, got %q", state.Rows[0].Output)
		}
		if !state.Rows[0].Streaming {
			t.Fatalf("expected streaming marker")
		}
	})
}

// TestReduceFailedBlock verifies error text and counts for failed nodes.
func TestReduceFailedBlock(t *testing.T) {
	runWithTimeout(t, time.Second, func() {
		b := block("s1", stream.BlockError, "", "", time.Now())
		b.Err = "tool exploded"
		state := Reduce(State{}, snapshot(stream.RunExecuting, b))
		if state.Rows[0].Error != "tool exploded" {
			t.Fatalf("expected error recorded, got %+v", state.Rows[0])
		}
		if state.Counts.Failed != 1 {
			t.Fatalf("expected failed count, got %+v", state.Counts)
		}
	})
}

// TestFormatLastEvent verifies footer messages for block changes.
func TestFormatLastEvent(t *testing.T) {
	runWithTimeout(t, time.Second, func() {
		done := block("s1", stream.BlockCompleted, "", "", time.Now())
		snap := snapshot(stream.RunExecuting, done)
		if got := formatLastEvent(done.BlockID, snap); got != "Node s1 completed" {
			t.Fatalf("unexpected message: %q", got)
		}
		failed := block("s2", stream.BlockError, "", "", time.Now())
		failed.Err = "boom"
		snap = snapshot(stream.RunExecuting, failed)
		if got := formatLastEvent(failed.BlockID, snap); got != "Node s2 failed: boom" {
			t.Fatalf("unexpected message: %q", got)
		}
	})
}

// TestFormatChannelTextTruncates verifies long text is normalized and cut.
func TestFormatChannelTextTruncates(t *testing.T) {
	long := ""
	for i := 0; i < 40; i++ {
		long += "chunk "
	}
	got := formatChannelText(long)
	if len(got) != 120 {
		t.Fatalf("expected 120 chars, got %d", len(got))
	}
	if got[117:] != "..." {
		t.Fatalf("expected ellipsis suffix, got %q", got[117:])
	}
}

// block builds an ExecutionBlock for testing.
func block(stepID string, status stream.BlockStatus, reasoning, output string, started time.Time) stream.ExecutionBlock {
	b := stream.ExecutionBlock{
		BlockID:   "run-1/" + stepID,
		RunID:     "run-1",
		StepID:    stepID,
		Status:    status,
		Channels:  map[string]stream.Channel{},
		StartedAt: started,
	}
	if reasoning != "" {
		b.Channels["reasoning"] = stream.Channel{Committed: []string{reasoning}}
		b.ChannelOrder = append(b.ChannelOrder, "reasoning")
	}
	if output != "" {
		b.Channels["output"] = stream.Channel{Committed: []string{output}}
		b.ChannelOrder = append(b.ChannelOrder, "output")
	}
	return b
}

// snapshot builds a single-block RunSnapshot for testing.
func snapshot(status stream.RunStatus, blocks ...stream.ExecutionBlock) stream.RunSnapshot {
	return stream.RunSnapshot{
		RunID:     "run-1",
		Status:    status,
		Blocks:    blocks,
		StartedAt: time.Now(),
	}
}

// runWithTimeout executes a test body with a timeout.
func runWithTimeout(t *testing.T, timeout time.Duration, fn func()) {
	t.Helper()
	ctx := testutil.Context(t, timeout)
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	select {
	case <-done:
	case <-ctx.Done():
		t.Fatalf("test timed out")
	}
}
