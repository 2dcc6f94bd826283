package stream

import "github.com/google/uuid"

// Tracker partitions the flat event sequence into runs. The wire carries no
// run identifier, so identity is inferred: a run-start text block opens a new
// run and everything after it belongs there until the next start marker.
type Tracker struct {
	current string
	newID   func() string
}

// NewTracker returns a tracker that mints uuid run identifiers.
func NewTracker() *Tracker {
	return &Tracker{newID: uuid.NewString}
}

// Assign tags an event with the run it belongs to, opening a new run on a
// start marker. Events arriving before any start marker get an implicit run
// so no event is ever unassigned. Terminal events do not clear the current
// run: late frames from a just-finished run must still resolve to it.
func (t *Tracker) Assign(event Event) string {
	if event.Category == CategoryTextBlock && event.BaseName == MarkerRunStart {
		t.current = t.newID()
		return t.current
	}
	if t.current == "" {
		t.current = t.newID()
	}
	return t.current
}

// Current returns the active run ID, or empty before any event.
func (t *Tracker) Current() string {
	return t.current
}

// Reset forgets all run assignment state.
func (t *Tracker) Reset() {
	t.current = ""
}
