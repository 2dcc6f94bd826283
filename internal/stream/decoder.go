package stream

import (
	"encoding/json"
	"fmt"
)

// Local error codes for failures fabricated on the client side. Engine codes
// pass through untouched, so these stay outside the HTTP range.
const (
	// CodeDecodeFailure marks a frame whose payload was not valid JSON.
	CodeDecodeFailure = 1001
	// CodeUnknownCategory marks a payload with an unrecognized discriminator.
	CodeUnknownCategory = 1002
	// CodeTransportFailure marks a connection drop reported by the transport.
	CodeTransportFailure = 1003
)

// envelope is the JSON body shared by every frame payload.
type envelope struct {
	Category   Category        `json:"contentCategory"`
	Content    string          `json:"content"`
	StreamID   string          `json:"streamId"`
	IsComplete bool            `json:"isComplete"`
	Payload    json.RawMessage `json:"payload"`
	ErrMessage string          `json:"errorMessage"`
	ErrCode    int             `json:"errorCode"`
}

// Decode parses a frame's payload into a typed event. It never fails into
// the caller: an undecodable payload or unknown category becomes a synthetic
// error event so one malformed frame cannot take down the stream.
func Decode(frame Frame, sequence uint64) Event {
	baseName, stepID := splitName(frame.Name)
	event := Event{
		RawName:  frame.Name,
		BaseName: baseName,
		StepID:   stepID,
		Sequence: sequence,
	}

	var body envelope
	if err := json.Unmarshal([]byte(frame.Data), &body); err != nil {
		event.Category = CategoryError
		event.ErrMessage = fmt.Sprintf("undecodable frame %q: %v", frame.Name, err)
		event.ErrCode = CodeDecodeFailure
		return event
	}

	switch body.Category {
	case CategoryTextBlock:
		event.Category = CategoryTextBlock
		event.Content = body.Content
	case CategoryTextChunk:
		event.Category = CategoryTextChunk
		event.Content = body.Content
		event.ChannelID = body.StreamID
		event.IsFinal = body.IsComplete
	case CategoryJSON:
		event.Category = CategoryJSON
		event.Payload = body.Payload
	case CategoryError:
		event.Category = CategoryError
		event.ErrMessage = body.ErrMessage
		event.ErrCode = body.ErrCode
	case CategoryDone:
		event.Category = CategoryDone
	default:
		event.Category = CategoryError
		event.ErrMessage = fmt.Sprintf("unknown content category %q on frame %q", body.Category, frame.Name)
		event.ErrCode = CodeUnknownCategory
	}
	return event
}
