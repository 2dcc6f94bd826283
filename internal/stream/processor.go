package stream

import (
	"context"
	"errors"
	"io"
	"sync"
)

// Observer receives processing notifications for UI or logging. Callbacks
// run on the processor's consuming goroutine and must not block.
type Observer interface {
	// OnRunStart fires when events begin resolving to a new run.
	OnRunStart(runID string)
	// OnBlockUpdate fires after an event mutated a block.
	OnBlockUpdate(runID, blockID string, snapshot RunSnapshot)
	// OnRunEnd fires once when the run reaches a terminal state.
	OnRunEnd(snapshot RunSnapshot)
}

// Options configures a Processor.
type Options struct {
	// Gating selects the channel visibility policy. Defaults to independent.
	Gating GatingPolicy
	// Observer receives notifications. May be nil.
	Observer Observer
	// ReadBuffer sets the transport read size. Defaults to 4096.
	ReadBuffer int
}

// Processor owns the full pipeline for one execution invocation at a time:
// tokenizer, decoder, run tracker and reducer, plus cancellation and
// snapshot access. All mutation happens on one goroutine; snapshots are
// served under the same lock and returned as deep copies.
type Processor struct {
	mu       sync.Mutex
	observer Observer
	readSize int

	tokenizer *Tokenizer
	tracker   *Tracker
	reducer   *Reducer
	sequence  uint64

	activeRun string
	ended     map[string]bool
	cancelled bool
	cancel    context.CancelFunc
	source    io.Reader
	done      chan struct{}
}

// NewProcessor builds an idle processor.
func NewProcessor(opts Options) *Processor {
	readSize := opts.ReadBuffer
	if readSize <= 0 {
		readSize = 4096
	}
	return &Processor{
		observer:  opts.Observer,
		readSize:  readSize,
		tokenizer: NewTokenizer(),
		tracker:   NewTracker(),
		reducer:   NewReducer(opts.Gating),
		ended:     make(map[string]bool),
	}
}

// Start begins consuming a byte source. A still-active previous session is
// cancelled first; concurrent runs are never interleaved through one
// processor. The source is closed when consumption ends if it is a Closer.
func (p *Processor) Start(ctx context.Context, source io.Reader) error {
	if source == nil {
		return errors.New("stream: source is nil")
	}
	p.Cancel()
	p.Wait()

	runCtx, cancel := context.WithCancel(ctx)
	p.mu.Lock()
	p.cancelled = false
	p.cancel = cancel
	p.source = source
	p.tokenizer = NewTokenizer()
	p.done = make(chan struct{})
	done := p.done
	p.mu.Unlock()

	go p.consume(runCtx, source, done)
	return nil
}

// Cancel aborts the transport and freezes the active run. Blocks keep their
// last partial content with status executing; the run reads as abandoned.
func (p *Processor) Cancel() {
	p.mu.Lock()
	if p.cancelled {
		p.mu.Unlock()
		return
	}
	p.cancelled = true
	if p.cancel != nil {
		p.cancel()
	}
	if closer, ok := p.source.(io.Closer); ok {
		_ = closer.Close()
	}
	p.reducer.Abandon(p.activeRun)
	p.mu.Unlock()
}

// Wait blocks until the consuming goroutine has exited.
func (p *Processor) Wait() {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Feed pushes a chunk through the pipeline directly, bypassing transport.
// Replay and tests use it; Start and Feed must not be mixed concurrently.
func (p *Processor) Feed(chunk string) {
	p.ingest(chunk)
}

// Snapshot returns a deep copy of one run's blocks. An empty runID selects
// the active or most recent run.
func (p *Processor) Snapshot(runID string) RunSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	if runID == "" {
		runID = p.activeRun
	}
	return p.reducer.Snapshot(runID)
}

// Runs lists known run IDs in first-seen order.
func (p *Processor) Runs() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reducer.Runs()
}

// Clear discards all runs' accumulated state.
func (p *Processor) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reducer.Clear()
	p.tracker.Reset()
	p.activeRun = ""
	p.ended = make(map[string]bool)
}

// consume reads the source until the run closes, the stream ends, or the
// session is cancelled. Transport errors surface as a run-scoped failure so
// the terminal state is always reachable from the snapshot.
func (p *Processor) consume(ctx context.Context, source io.Reader, done chan struct{}) {
	defer close(done)
	if closer, ok := source.(io.Closer); ok {
		defer closer.Close()
	}

	buf := make([]byte, p.readSize)
	for {
		if ctx.Err() != nil {
			return
		}
		n, err := source.Read(buf)
		if n > 0 {
			if finished := p.ingest(string(buf[:n])); finished {
				return
			}
		}
		if err == nil {
			continue
		}
		if p.isCancelled() || errors.Is(err, context.Canceled) {
			return
		}
		if errors.Is(err, io.EOF) {
			p.finishEOF()
		} else {
			p.failTransport(err)
		}
		return
	}
}

// ingest runs chunks through tokenizer, decoder, tracker and reducer in
// arrival order. It reports whether the active run reached a terminal state,
// at which point reading stops and leaked frames are discarded.
func (p *Processor) ingest(chunk string) bool {
	p.mu.Lock()
	if p.cancelled {
		p.mu.Unlock()
		return true
	}
	var notes []func(Observer)
	finished := false
	for _, frame := range p.tokenizer.Feed(chunk) {
		p.sequence++
		event := Decode(frame, p.sequence)
		runID := p.tracker.Assign(event)
		if runID != p.activeRun {
			p.activeRun = runID
			id := runID
			notes = append(notes, func(o Observer) { o.OnRunStart(id) })
		}
		blockID := p.reducer.Apply(event, runID)
		snap := p.reducer.Snapshot(runID)
		if blockID != "" {
			id, block := runID, blockID
			notes = append(notes, func(o Observer) { o.OnBlockUpdate(id, block, snap) })
		}
		if snap.Terminal() {
			finished = true
			if !p.ended[runID] {
				p.ended[runID] = true
				notes = append(notes, func(o Observer) { o.OnRunEnd(snap) })
			}
			break
		}
	}
	observer := p.observer
	p.mu.Unlock()

	if observer != nil {
		for _, note := range notes {
			note(observer)
		}
	}
	return finished
}

// finishEOF handles a stream that ended without a terminal event: the run
// did not complete, so the drop reads as a transport failure.
func (p *Processor) finishEOF() {
	p.mu.Lock()
	active := p.activeRun
	snap := p.reducer.Snapshot(active)
	p.mu.Unlock()
	if active == "" || snap.Terminal() {
		return
	}
	p.failTransport(errors.New("stream closed before completion"))
}

// failTransport injects a synthetic run-scoped failure for a transport
// error, reusing the normal pipeline path so ordering rules hold.
func (p *Processor) failTransport(cause error) {
	p.mu.Lock()
	if p.cancelled {
		p.mu.Unlock()
		return
	}
	p.sequence++
	event := Event{
		Category:   CategoryError,
		Sequence:   p.sequence,
		ErrMessage: "transport failure: " + cause.Error(),
		ErrCode:    CodeTransportFailure,
	}
	runID := p.tracker.Assign(event)
	if runID != p.activeRun {
		p.activeRun = runID
	}
	p.reducer.Apply(event, runID)
	snap := p.reducer.Snapshot(runID)
	observer := p.observer
	notify := snap.Terminal() && !p.ended[runID]
	if notify {
		p.ended[runID] = true
	}
	p.mu.Unlock()

	if observer != nil && notify {
		observer.OnRunEnd(snap)
	}
}

// isCancelled reports the cancellation flag under lock.
func (p *Processor) isCancelled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancelled
}
