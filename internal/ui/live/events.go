package live

import "flowtap/internal/stream"

// EventKind identifies the type of live UI event.
type EventKind int

const (
	// EventRunStart signals that stream events began resolving to a run.
	EventRunStart EventKind = iota
	// EventBlockUpdate delivers a refreshed run snapshot after a block changed.
	EventBlockUpdate
	// EventRunEnd signals that the run reached a terminal state.
	EventRunEnd
)

// Event carries a UI update payload.
type Event struct {
	Kind     EventKind
	RunID    string
	BlockID  string
	Snapshot stream.RunSnapshot
}
