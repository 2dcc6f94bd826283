package replay

import (
	"fmt"
	"os"
	"time"

	"flowtap/internal/stream"
)

// Options controls how a recording is pushed through the pipeline.
type Options struct {
	// ChunkSize is the number of bytes fed per step. Zero means the whole
	// recording at once. Small sizes reproduce fragmented delivery.
	ChunkSize int
	// Delay is an optional pause between chunks, for paced playback in
	// the live view. Zero replays as fast as possible.
	Delay time.Duration
	// Step, when set, is called after each chunk has been applied.
	Step func()
}

// Replay feeds a recorded stream file through the processor. The processor
// observes the same chunk boundaries the options describe, so reassembly
// behaves exactly as it would against a live transport.
func Replay(path string, proc *stream.Processor, opts Options) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read recording: %w", err)
	}
	if len(data) == 0 {
		return fmt.Errorf("recording %s is empty", path)
	}
	size := opts.ChunkSize
	if size <= 0 {
		size = len(data)
	}
	for start := 0; start < len(data); start += size {
		end := start + size
		if end > len(data) {
			end = len(data)
		}
		proc.Feed(string(data[start:end]))
		if opts.Step != nil {
			opts.Step()
		}
		if opts.Delay > 0 && end < len(data) {
			time.Sleep(opts.Delay)
		}
	}
	return nil
}
