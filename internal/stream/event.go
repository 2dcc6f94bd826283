// Package stream consumes the workflow engine's execution event stream and
// maintains a structured model of what every node is doing. Bytes become
// frames, frames become typed events, events fold into per-node execution
// blocks scoped to an inferred run.
package stream

import (
	"encoding/json"
	"strings"
)

// Category discriminates the typed event variants on the wire.
type Category string

const (
	// CategoryTextBlock is an atomic one-shot message.
	CategoryTextBlock Category = "atomic.textblock"
	// CategoryTextChunk is one fragment of an ongoing text channel.
	CategoryTextChunk Category = "chunked.text"
	// CategoryJSON is an atomic structured payload.
	CategoryJSON Category = "atomic.json"
	// CategoryError is a terminal error signal.
	CategoryError Category = "atomic.error"
	// CategoryDone is the terminal success signal for a run.
	CategoryDone Category = "atomic.done"
)

// Wire event names emitted by the engine. A name may carry a node identifier
// as "<name>::<nodeID>".
const (
	MarkerRunStart     = "WORKFLOW_START"
	MarkerRunComplete  = "WORKFLOW_COMPLETE"
	MarkerNodeStart    = "NODE_START"
	MarkerNodeComplete = "NODE_COMPLETE"
	MarkerNodeError    = "NODE_ERROR"
	MarkerFinalContext = "FINAL_CONTEXT"

	channelThinking = "AGENT_THINKING"
	channelResponse = "AGENT_RESPONSE"
)

// nameSeparator splits a wire event name into its base name and node ID.
const nameSeparator = "::"

// Event is a decoded protocol event. Exactly the fields implied by Category
// are meaningful; the rest stay zero.
type Event struct {
	Category Category
	RawName  string
	BaseName string
	StepID   string
	// Sequence is the local arrival-order number, never read from the wire.
	Sequence uint64

	// Content carries text for text blocks and chunk fragments.
	Content string
	// ChannelID identifies the channel instance for chunk fragments.
	ChannelID string
	// IsFinal marks the closing fragment of a channel.
	IsFinal bool

	// Payload holds the structured body of atomic.json events.
	Payload json.RawMessage

	// ErrMessage and ErrCode describe atomic.error events, including the
	// synthetic ones the decoder fabricates for undecodable frames.
	ErrMessage string
	ErrCode    int
}

// RunScoped reports whether the event addresses the whole run rather than a
// single node.
func (e Event) RunScoped() bool {
	return e.StepID == ""
}

// splitName separates a wire event name on the first "::". A node ID that
// itself contains the separator keeps its remainder intact.
func splitName(rawName string) (baseName, stepID string) {
	if idx := strings.Index(rawName, nameSeparator); idx >= 0 {
		return rawName[:idx], rawName[idx+len(nameSeparator):]
	}
	return rawName, ""
}

// channelName maps a wire event name to the channel it feeds.
func channelName(baseName string) string {
	switch baseName {
	case channelThinking:
		return "reasoning"
	case channelResponse:
		return "output"
	default:
		return strings.ToLower(baseName)
	}
}
