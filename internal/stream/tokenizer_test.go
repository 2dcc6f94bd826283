package stream

import (
	"fmt"
	"reflect"
	"testing"
)

const twoFrameStream = "event: WORKFLOW_START::start-1\n" +
	"data: {\"contentCategory\":\"atomic.textblock\",\"content\":\"hi\"}\n" +
	"\n" +
	"event: NODE_START::agent-1\n" +
	"data: {\"contentCategory\":\"atomic.textblock\",\"content\":\"go\"}\n" +
	"\n"

// TestFeedSplitAtEveryBoundary verifies that splitting a well-formed stream
// at any byte boundary across two calls yields the same frames as one call.
func TestFeedSplitAtEveryBoundary(t *testing.T) {
	want := NewTokenizer().Feed(twoFrameStream)
	if len(want) != 2 {
		t.Fatalf("expected 2 frames from whole stream, got %d", len(want))
	}
	for cut := 0; cut <= len(twoFrameStream); cut++ {
		tok := NewTokenizer()
		got := append(tok.Feed(twoFrameStream[:cut]), tok.Feed(twoFrameStream[cut:])...)
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("cut at %d: got %+v, want %+v", cut, got, want)
		}
	}
}

// TestFeedByteAtATime verifies no characters are lost or duplicated under
// pathological fragmentation.
func TestFeedByteAtATime(t *testing.T) {
	want := NewTokenizer().Feed(twoFrameStream)
	tok := NewTokenizer()
	var got []Frame
	for i := 0; i < len(twoFrameStream); i++ {
		got = append(got, tok.Feed(twoFrameStream[i:i+1])...)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("byte-at-a-time framing diverged: got %+v, want %+v", got, want)
	}
}

// TestFeedEmptyDataValue verifies an empty data value yields the empty
// string rather than dropping the frame.
func TestFeedEmptyDataValue(t *testing.T) {
	frames := NewTokenizer().Feed("event: PING\ndata:\n\n")
	if len(frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(frames))
	}
	if frames[0].Name != "PING" || frames[0].Data != "" {
		t.Fatalf("unexpected frame %+v", frames[0])
	}
}

// TestFeedIgnoresUnknownLines verifies keep-alives and comments between
// frames do not disturb framing.
func TestFeedIgnoresUnknownLines(t *testing.T) {
	input := ": keep-alive\nretry: 3000\n" + twoFrameStream
	frames := NewTokenizer().Feed(input)
	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d: %+v", len(frames), frames)
	}
}

// TestFeedIncompleteFrameNotEmitted verifies a blank line without both a
// name and a data line emits nothing.
func TestFeedIncompleteFrameNotEmitted(t *testing.T) {
	tok := NewTokenizer()
	if frames := tok.Feed("event: LONELY\n\n"); len(frames) != 0 {
		t.Fatalf("expected no frames for name-only input, got %+v", frames)
	}
	if frames := tok.Feed("data: {}\n\n"); len(frames) != 0 {
		t.Fatalf("expected no frames for data-only input, got %+v", frames)
	}
}

// TestFeedRetainsTrailingPartialLine verifies a line without its newline is
// kept and re-parsed on the next call.
func TestFeedRetainsTrailingPartialLine(t *testing.T) {
	tok := NewTokenizer()
	if frames := tok.Feed("event: PART"); len(frames) != 0 {
		t.Fatalf("expected no frames, got %+v", frames)
	}
	if !tok.Pending() {
		t.Fatalf("expected pending buffered input")
	}
	frames := tok.Feed("IAL\ndata: x\n\n")
	if len(frames) != 1 || frames[0].Name != "PARTIAL" {
		t.Fatalf("unexpected frames %+v", frames)
	}
}

// TestFeedCRLFLines verifies carriage returns are stripped from line ends.
func TestFeedCRLFLines(t *testing.T) {
	frames := NewTokenizer().Feed("event: A\r\ndata: b\r\n\r\n")
	if len(frames) != 1 || frames[0].Name != "A" || frames[0].Data != "b" {
		t.Fatalf("unexpected frames %+v", frames)
	}
}

// TestFeedManyFramesOneChunk verifies several frames in one chunk come out
// in arrival order.
func TestFeedManyFramesOneChunk(t *testing.T) {
	var input string
	for i := 0; i < 5; i++ {
		input += fmt.Sprintf("event: E%d\ndata: d%d\n\n", i, i)
	}
	frames := NewTokenizer().Feed(input)
	if len(frames) != 5 {
		t.Fatalf("expected 5 frames, got %d", len(frames))
	}
	for i, frame := range frames {
		if frame.Name != fmt.Sprintf("E%d", i) {
			t.Fatalf("frame %d out of order: %+v", i, frame)
		}
	}
}
