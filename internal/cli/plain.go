package cli

import (
	"fmt"
	"io"
	"sync"

	"flowtap/internal/stream"
)

// plainObserver prints run progress as plain lines for non-TTY output.
type plainObserver struct {
	mu     sync.Mutex
	stdout io.Writer
	seen   map[string]stream.BlockStatus
}

func newPlainObserver(stdout io.Writer) *plainObserver {
	return &plainObserver{stdout: stdout, seen: map[string]stream.BlockStatus{}}
}

func (o *plainObserver) OnRunStart(runID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fmt.Fprintf(o.stdout, "Run %s started\n", runID)
}

// OnBlockUpdate prints one line per block status transition. Streaming chunk
// arrivals are deliberately silent; only lifecycle changes are worth a line.
func (o *plainObserver) OnBlockUpdate(runID, blockID string, snapshot stream.RunSnapshot) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, block := range snapshot.Blocks {
		if block.BlockID != blockID {
			continue
		}
		previous, known := o.seen[blockID]
		if known && previous == block.Status {
			return
		}
		o.seen[blockID] = block.Status
		step := block.StepID
		if step == "" {
			step = "run"
		}
		switch block.Status {
		case stream.BlockExecuting:
			fmt.Fprintf(o.stdout, "Node %s executing\n", step)
		case stream.BlockCompleted:
			fmt.Fprintf(o.stdout, "Node %s completed\n", step)
		case stream.BlockError:
			if block.Err != "" {
				fmt.Fprintf(o.stdout, "Node %s failed: %s\n", step, block.Err)
			} else {
				fmt.Fprintf(o.stdout, "Node %s failed\n", step)
			}
		}
		return
	}
}

func (o *plainObserver) OnRunEnd(snapshot stream.RunSnapshot) {
	o.mu.Lock()
	defer o.mu.Unlock()
	switch snapshot.Status {
	case stream.RunCompleted:
		fmt.Fprintf(o.stdout, "Run %s completed\n", snapshot.RunID)
	case stream.RunError:
		if snapshot.Err != "" {
			fmt.Fprintf(o.stdout, "Run %s failed: %s\n", snapshot.RunID, snapshot.Err)
		} else {
			fmt.Fprintf(o.stdout, "Run %s failed\n", snapshot.RunID)
		}
	case stream.RunAbandoned:
		fmt.Fprintf(o.stdout, "Run %s cancelled\n", snapshot.RunID)
	}
}
