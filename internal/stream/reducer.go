package stream

import "time"

// Reducer folds run-scoped events into per-node execution blocks. It owns
// the block mapping exclusively; consumers only ever see deep-copied
// snapshots.
type Reducer struct {
	policy   GatingPolicy
	clock    func() time.Time
	runs     map[string]*runState
	runOrder []string
}

// runState accumulates one run's blocks and terminal status.
type runState struct {
	id         string
	status     RunStatus
	err        string
	blocks     map[string]*blockState
	blockOrder []string
	payloads   [][]byte
	startedAt  time.Time
	finishedAt time.Time
}

// NewReducer returns a reducer using the given gating policy. An invalid
// policy falls back to independent streaming.
func NewReducer(policy GatingPolicy) *Reducer {
	if !policy.Valid() {
		policy = GatingIndependent
	}
	return &Reducer{
		policy: policy,
		clock:  time.Now,
		runs:   make(map[string]*runState),
	}
}

// Apply folds one event into the blocks of its run and returns the affected
// block ID, or empty when no block changed. Events for a run that already
// reached a terminal state are discarded.
func (r *Reducer) Apply(event Event, runID string) string {
	run := r.run(runID)
	if run.status != RunExecuting {
		return ""
	}
	switch event.Category {
	case CategoryTextBlock:
		return r.applyTextBlock(run, event)
	case CategoryTextChunk:
		return r.applyTextChunk(run, event)
	case CategoryJSON:
		return r.applyJSON(run, event)
	case CategoryError:
		return r.applyError(run, event)
	case CategoryDone:
		run.status = RunCompleted
		run.finishedAt = r.clock()
		// A clean completion vouches for every node still in flight; the
		// producer does not always close each one with its own marker.
		for _, id := range run.blockOrder {
			block := run.blocks[id]
			if block.status == BlockExecuting {
				block.status = BlockCompleted
				block.completedAt = run.finishedAt
			}
		}
		return ""
	}
	return ""
}

// applyTextBlock handles atomic messages; completion and failure markers
// drive the owning block's lifecycle.
func (r *Reducer) applyTextBlock(run *runState, event Event) string {
	if event.RunScoped() {
		return ""
	}
	block := r.block(run, event.StepID)
	switch event.BaseName {
	case MarkerNodeComplete:
		// Error is sticky; completion never downgrades it.
		if block.status == BlockExecuting {
			block.status = BlockCompleted
			block.completedAt = r.clock()
		}
	case MarkerNodeError:
		if block.status != BlockError {
			block.status = BlockError
			block.err = event.Content
			block.completedAt = r.clock()
		}
	}
	return block.blockID
}

// applyTextChunk accumulates one channel fragment. Chunks without a node ID
// land in the synthetic run-level block, keyed by the empty step so it can
// never merge with a node whose ID happens to read like a label. A block
// already in a terminal state keeps its last live chunk frozen and accepts
// nothing further.
func (r *Reducer) applyTextChunk(run *runState, event Event) string {
	block := r.block(run, event.StepID)
	if block.terminal() {
		return ""
	}
	ch := block.channel(channelName(event.BaseName))
	if event.ChannelID != "" {
		ch.streamID = event.ChannelID
	}
	ch.live += event.Content
	if event.IsFinal {
		ch.committed = append(ch.committed, ch.live)
		ch.live = ""
	}
	return block.blockID
}

// applyJSON stores a structured payload on its block, or on the run itself
// when no node is addressed.
func (r *Reducer) applyJSON(run *runState, event Event) string {
	if event.RunScoped() {
		run.payloads = append(run.payloads, append([]byte(nil), event.Payload...))
		return ""
	}
	block := r.block(run, event.StepID)
	block.payloads = append(block.payloads, append([]byte(nil), event.Payload...))
	return block.blockID
}

// applyError marks one block failed, or terminates the run when the error
// carries no node ID. A node failure leaves the rest of the run executing.
func (r *Reducer) applyError(run *runState, event Event) string {
	if event.RunScoped() {
		run.status = RunError
		run.err = event.ErrMessage
		run.finishedAt = r.clock()
		return ""
	}
	block := r.block(run, event.StepID)
	if block.status != BlockError {
		block.status = BlockError
		block.err = event.ErrMessage
		block.completedAt = r.clock()
	}
	return block.blockID
}

// Abandon freezes a still-executing run after cancellation. Blocks keep
// their status and partial content; only the run is marked abandoned.
func (r *Reducer) Abandon(runID string) {
	run, ok := r.runs[runID]
	if !ok || run.status != RunExecuting {
		return
	}
	run.status = RunAbandoned
	run.finishedAt = r.clock()
}

// Snapshot returns a deep copy of one run's state, with the gating policy
// applied to channel visibility. An unknown run yields a zero snapshot.
func (r *Reducer) Snapshot(runID string) RunSnapshot {
	run, ok := r.runs[runID]
	if !ok {
		return RunSnapshot{RunID: runID}
	}
	snap := RunSnapshot{
		RunID:      run.id,
		Status:     run.status,
		Err:        run.err,
		StartedAt:  run.startedAt,
		FinishedAt: run.finishedAt,
	}
	for _, id := range run.blockOrder {
		snap.Blocks = append(snap.Blocks, run.blocks[id].snapshot(r.policy))
	}
	for _, payload := range run.payloads {
		snap.Payloads = append(snap.Payloads, append([]byte(nil), payload...))
	}
	return snap
}

// Runs lists run IDs in first-seen order.
func (r *Reducer) Runs() []string {
	out := make([]string, len(r.runOrder))
	copy(out, r.runOrder)
	return out
}

// Clear discards every run's accumulated state.
func (r *Reducer) Clear() {
	r.runs = make(map[string]*runState)
	r.runOrder = nil
}

// run returns the state for a run, creating it on first reference.
func (r *Reducer) run(runID string) *runState {
	if existing, ok := r.runs[runID]; ok {
		return existing
	}
	run := &runState{
		id:        runID,
		status:    RunExecuting,
		blocks:    make(map[string]*blockState),
		startedAt: r.clock(),
	}
	r.runs[runID] = run
	r.runOrder = append(r.runOrder, runID)
	return run
}

// block returns the state for a (run, step) pair, creating it on first
// reference. Block identity derives from both so runs never share blocks.
func (r *Reducer) block(run *runState, stepID string) *blockState {
	blockID := run.id + "/" + stepID
	if existing, ok := run.blocks[blockID]; ok {
		return existing
	}
	block := &blockState{
		blockID:   blockID,
		runID:     run.id,
		stepID:    stepID,
		status:    BlockExecuting,
		channels:  make(map[string]*channelState),
		startedAt: r.clock(),
	}
	run.blocks[blockID] = block
	run.blockOrder = append(run.blockOrder, blockID)
	return block
}
