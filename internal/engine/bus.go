package engine

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/tesler-ui/datasync/internal/action"
	"github.com/tesler-ui/datasync/internal/state"
)

// Journal receives every action processed by the bus, stamped with its seq.
// Implemented by journal.Store; nil disables journaling.
type Journal interface {
	Append(ctx context.Context, seq int64, actionType string, payload any) error
}

// Pipeline is one reactive processor over the action stream. Handle is
// called on the bus loop goroutine with the post-reduction snapshot of the
// store; the returned actions are enqueued as one atomic batch.
//
// A pipeline that performs network I/O must not block Handle: it registers
// its cancellation watchers synchronously, captures what it needs from the
// snapshot, and hands the call off to a request goroutine (see raceRequest).
type Pipeline interface {
	Name() string
	Handle(ctx context.Context, act action.Action, sn *state.Snapshot) []action.Action
}

// Bus is the single-writer action loop at the center of the engine.
//
// The bus replaces the process-wide action-stream singleton of older
// renditions of this design: it is an explicit instance passed by reference
// into each pipeline, with its lifecycle tied to session start and shutdown.
//
// Thread-safety model:
//   - Dispatch / DispatchAll: safe from any goroutine
//   - Run: must be called from exactly one goroutine
//   - Watch: safe from any goroutine (mutex-guarded registry)
//
// INVARIANTS:
//   - pipelines slice order never changes after construction; pipelines run
//     in registration order for every action
//   - reducers run before pipelines, watchers fire between the two
//   - a batch passed to DispatchAll is never interleaved with other dispatches
type Bus struct {
	store     *state.Store
	queue     *actionQueue
	clock     *Clock
	journal   Journal
	pipelines []Pipeline
	logger    *slog.Logger

	watchMu  sync.Mutex
	watchers map[int64]*Watcher
	watchSeq int64

	// Idle accounting for tests and graceful drain: pending counts queued
	// actions, inflight counts request goroutines.
	pending  atomic.Int64
	inflight atomic.Int64
	idleCh   chan struct{}
}

// NewBus creates a bus over a store. Pipelines are registered with Register
// before Run is called.
func NewBus(store *state.Store, clock *Clock, journal Journal, logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		store:    store,
		queue:    newActionQueue(),
		clock:    clock,
		journal:  journal,
		logger:   logger,
		watchers: make(map[int64]*Watcher),
		idleCh:   make(chan struct{}, 1),
	}
}

// Register appends a pipeline. Not safe after Run has started.
func (b *Bus) Register(p Pipeline) {
	b.pipelines = append(b.pipelines, p)
}

// Dispatch submits one action for processing.
// Thread-safe; returns false if the bus has been stopped.
func (b *Bus) Dispatch(a action.Action) bool {
	return b.DispatchAll(a)
}

// DispatchAll submits a batch of actions atomically, preserving order.
// Thread-safe; returns false if the bus has been stopped.
func (b *Bus) DispatchAll(actions ...action.Action) bool {
	if len(actions) == 0 {
		return true
	}
	b.pending.Add(int64(len(actions)))
	if !b.queue.EnqueueAll(actions...) {
		b.pending.Add(-int64(len(actions)))
		return false
	}
	return true
}

// Run starts the single-writer loop. Blocks until the context is cancelled
// or Stop is called.
//
// CRITICAL: must be called from exactly one goroutine. All reducer writes,
// pipeline evaluation, and watcher notification happen here.
//
// ERROR HANDLING: journal failures are logged and processing continues;
// pipelines cannot fail (they convert their errors into actions). One bad
// action must never terminate the loop - a dead loop breaks the whole
// application.
func (b *Bus) Run(ctx context.Context) error {
	b.logger.Info("bus starting")

	for {
		act, ok := b.queue.TryDequeue()
		if ok {
			b.process(ctx, act)
			continue
		}

		select {
		case <-ctx.Done():
			b.logger.Info("bus stopping: context cancelled")
			b.queue.Close()
			return ctx.Err()

		case <-b.queue.Wait():
			if b.queue.Len() == 0 {
				b.logger.Info("bus stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop gracefully shuts down the bus. Closes the queue, which causes Run to
// return once drained.
func (b *Bus) Stop() {
	b.queue.Close()
}

// process handles one action: stamp, journal, reduce, notify watchers, run
// pipelines in registration order.
func (b *Bus) process(ctx context.Context, act action.Action) {
	defer b.workDone(1)

	seq := b.clock.Next()

	b.logger.Debug("processing action",
		"type", act.Type(),
		"seq", seq,
	)

	if b.journal != nil {
		if err := b.journal.Append(ctx, seq, string(act.Type()), act); err != nil {
			// Log and continue: the journal is diagnostics, not correctness.
			b.logger.Error("journal append failed",
				"error", err,
				"type", act.Type(),
				"seq", seq,
			)
		}
	}

	b.store.Apply(act)

	b.notifyWatchers(act)

	sn := b.store.Snapshot()
	for _, p := range b.pipelines {
		follow := p.Handle(ctx, act, sn)
		if len(follow) > 0 {
			b.DispatchAll(follow...)
		}
	}
}

// workDone decrements the pending counter and pokes idle waiters.
func (b *Bus) workDone(n int64) {
	b.pending.Add(-n)
	select {
	case b.idleCh <- struct{}{}:
	default:
	}
}

// trackRequest accounts for one request goroutine. done must be called
// exactly once, after the goroutine has dispatched its final actions.
func (b *Bus) trackRequest() (done func()) {
	b.inflight.Add(1)
	var once sync.Once
	return func() {
		once.Do(func() {
			b.inflight.Add(-1)
			select {
			case b.idleCh <- struct{}{}:
			default:
			}
		})
	}
}

// WaitIdle blocks until no actions are queued and no requests are in
// flight, or the context expires. Intended for tests and for draining on
// shutdown; a quiescent bus cannot generate further work by itself.
func (b *Bus) WaitIdle(ctx context.Context) error {
	for {
		if b.pending.Load() == 0 && b.inflight.Load() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-b.idleCh:
		}
	}
}

// QueueLen returns the number of queued actions. Monitoring/tests only.
func (b *Bus) QueueLen() int {
	return b.queue.Len()
}

// Clock returns the bus's logical clock.
func (b *Bus) Clock() *Clock {
	return b.clock
}
