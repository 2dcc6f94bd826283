package live

import (
	"io"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"flowtap/internal/stream"
)

// Controller runs the live UI and implements stream.Observer.
type Controller struct {
	mu      sync.Mutex
	closed  bool
	events  chan Event
	program *tea.Program
	done    chan struct{}
}

// Start launches a live UI controller that writes to stdout.
func Start(stdout io.Writer, opts Options) *Controller {
	if stdout == nil {
		stdout = os.Stdout
	}
	events := make(chan Event, 256)
	model := NewModel(events, opts)
	program := tea.NewProgram(model, tea.WithOutput(stdout), tea.WithAltScreen())
	controller := &Controller{
		events:  events,
		program: program,
		done:    make(chan struct{}),
	}
	go func() {
		_, _ = program.Run()
		close(controller.done)
	}()
	return controller
}

// Close signals the UI to stop. Later notifications are discarded.
func (c *Controller) Close() {
	if c == nil {
		return
	}
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.events)
	}
	c.mu.Unlock()
}

// Wait blocks until the UI has exited.
func (c *Controller) Wait() {
	if c == nil {
		return
	}
	<-c.done
}

// OnRunStart forwards run start notifications to the UI.
func (c *Controller) OnRunStart(runID string) {
	c.send(Event{Kind: EventRunStart, RunID: runID})
}

// OnBlockUpdate forwards refreshed snapshots to the UI.
func (c *Controller) OnBlockUpdate(runID, blockID string, snapshot stream.RunSnapshot) {
	c.send(Event{Kind: EventBlockUpdate, RunID: runID, BlockID: blockID, Snapshot: snapshot})
}

// OnRunEnd forwards the terminal snapshot to the UI and closes it.
func (c *Controller) OnRunEnd(snapshot stream.RunSnapshot) {
	c.send(Event{Kind: EventRunEnd, RunID: snapshot.RunID, Snapshot: snapshot})
	c.Close()
}

// send enqueues an event without blocking the caller. Events arriving after
// Close are discarded, and snapshot events may be dropped under
// backpressure; a later snapshot supersedes them anyway.
func (c *Controller) send(event Event) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.events <- event:
	default:
	}
}
