package stream

import (
	"encoding/json"
	"time"
)

// BlockStatus is the lifecycle state of one execution block.
type BlockStatus string

const (
	// BlockExecuting marks a node still producing events. A cancelled run
	// leaves its blocks executing; callers read that as abandoned, not failed.
	BlockExecuting BlockStatus = "executing"
	// BlockCompleted marks a node that reported completion.
	BlockCompleted BlockStatus = "completed"
	// BlockError marks a node that reported a failure. Error is sticky: a
	// later completion marker never downgrades it.
	BlockError BlockStatus = "error"
)

// RunStatus is the lifecycle state of a whole run.
type RunStatus string

const (
	// RunExecuting marks a run still consuming events.
	RunExecuting RunStatus = "executing"
	// RunCompleted marks a run closed by the terminal success signal.
	RunCompleted RunStatus = "completed"
	// RunError marks a run closed by a run-scoped failure.
	RunError RunStatus = "error"
	// RunAbandoned marks a run frozen by cancellation. Not an error.
	RunAbandoned RunStatus = "abandoned"
)

// Channel is the snapshot of one named text flow within a block.
type Channel struct {
	// Committed holds finalized text in commit order; it is never mutated
	// after commit.
	Committed []string
	// Live holds in-flight, not-yet-finalized text.
	Live string
}

// ExecutionBlock is the snapshot of one node's accumulated state within a
// run. Snapshots are deep copies; mutating one never touches reducer state.
type ExecutionBlock struct {
	BlockID  string
	RunID    string
	StepID   string
	Status   BlockStatus
	Channels map[string]Channel
	// ChannelOrder lists channel names in first-seen order for stable display.
	ChannelOrder []string
	Payloads     []json.RawMessage
	StartedAt    time.Time
	CompletedAt  time.Time
	Err          string
}

// RunSnapshot is the read-only view of one run handed to consumers.
type RunSnapshot struct {
	RunID      string
	Status     RunStatus
	Err        string
	Blocks     []ExecutionBlock
	Payloads   []json.RawMessage
	StartedAt  time.Time
	FinishedAt time.Time
}

// Terminal reports whether the run has reached a final state.
func (s RunSnapshot) Terminal() bool {
	return s.Status != RunExecuting
}

// channelState is the reducer-owned accumulator behind a Channel snapshot.
type channelState struct {
	committed []string
	live      string
	streamID  string
}

// blockState is the reducer-owned accumulator behind an ExecutionBlock.
type blockState struct {
	blockID      string
	runID        string
	stepID       string
	status       BlockStatus
	channels     map[string]*channelState
	channelOrder []string
	payloads     []json.RawMessage
	startedAt    time.Time
	completedAt  time.Time
	err          string
}

// terminal reports whether the block accepts no further channel mutation.
func (b *blockState) terminal() bool {
	return b.status != BlockExecuting
}

// channel returns the named channel, creating it on first reference.
func (b *blockState) channel(name string) *channelState {
	if existing, ok := b.channels[name]; ok {
		return existing
	}
	ch := &channelState{}
	b.channels[name] = ch
	b.channelOrder = append(b.channelOrder, name)
	return ch
}

// snapshot deep-copies the block, hiding channels the gating policy keeps
// back. Gating affects visibility only; the stored data is untouched.
func (b *blockState) snapshot(policy GatingPolicy) ExecutionBlock {
	out := ExecutionBlock{
		BlockID:     b.blockID,
		RunID:       b.runID,
		StepID:      b.stepID,
		Status:      b.status,
		Channels:    make(map[string]Channel, len(b.channels)),
		StartedAt:   b.startedAt,
		CompletedAt: b.completedAt,
		Err:         b.err,
	}
	if len(b.payloads) > 0 {
		out.Payloads = make([]json.RawMessage, len(b.payloads))
		copy(out.Payloads, b.payloads)
	}
	for _, name := range b.channelOrder {
		if policy.hides(b, name) {
			continue
		}
		ch := b.channels[name]
		committed := make([]string, len(ch.committed))
		copy(committed, ch.committed)
		out.Channels[name] = Channel{Committed: committed, Live: ch.live}
		out.ChannelOrder = append(out.ChannelOrder, name)
	}
	return out
}
