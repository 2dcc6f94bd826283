package stream

import "strings"

// Frame is one complete unit of the wire protocol: an event name and a payload.
type Frame struct {
	Name string
	Data string
}

// Tokenizer reassembles SSE frames from arbitrarily fragmented chunks.
// Feed may be called with chunks split at any byte boundary; partial lines
// carry over to the next call.
type Tokenizer struct {
	buf      strings.Builder
	name     string
	data     strings.Builder
	seenName bool
	seenData bool
}

// NewTokenizer returns an empty tokenizer.
func NewTokenizer() *Tokenizer {
	return &Tokenizer{}
}

// Feed appends a chunk to the carry-over buffer and returns every frame
// completed by it, in arrival order. Lines matching neither significant
// prefix are ignored so protocol comments and keep-alives pass through.
func (t *Tokenizer) Feed(chunk string) []Frame {
	t.buf.WriteString(chunk)
	pending := t.buf.String()
	t.buf.Reset()

	var frames []Frame
	for {
		idx := strings.IndexByte(pending, '\n')
		if idx < 0 {
			break
		}
		line := strings.TrimSuffix(pending[:idx], "\r")
		pending = pending[idx+1:]
		if frame, ok := t.consumeLine(line); ok {
			frames = append(frames, frame)
		}
	}
	t.buf.WriteString(pending)
	return frames
}

// consumeLine folds one complete line into the in-progress frame. A blank
// line terminates the frame; it is emitted only if both a name and a data
// line were seen.
func (t *Tokenizer) consumeLine(line string) (Frame, bool) {
	if line == "" {
		frame := Frame{Name: t.name, Data: t.data.String()}
		complete := t.seenName && t.seenData
		t.name = ""
		t.data.Reset()
		t.seenName = false
		t.seenData = false
		return frame, complete
	}
	switch {
	case strings.HasPrefix(line, "event:"):
		t.name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		t.seenName = true
	case strings.HasPrefix(line, "data:"):
		value := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if t.seenData {
			t.data.WriteByte('\n')
		}
		t.data.WriteString(value)
		t.seenData = true
	}
	return Frame{}, false
}

// Pending reports whether an incomplete frame or partial line is buffered.
func (t *Tokenizer) Pending() bool {
	return t.buf.Len() > 0 || t.seenName || t.seenData
}
