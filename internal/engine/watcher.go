package engine

import (
	"github.com/tesler-ui/datasync/internal/action"
)

// Watcher is an ephemeral take-1 subscription to the action stream, used by
// in-flight requests to observe their cancellation triggers.
//
// On the first processed action satisfying the predicate, the matching
// action is delivered on C and the watcher unsubscribes itself: at most one
// delivery ever happens. A watcher that never matches delivers nothing;
// Close releases it.
type Watcher struct {
	id   int64
	bus  *Bus
	pred func(action.Action) bool
	ch   chan action.Action
}

// Watch registers a take-1 watcher for actions satisfying pred.
//
// Registration is synchronous: a pipeline registering a watcher while
// handling action X is guaranteed to observe any matching action dispatched
// after X, with no gap in between.
func (b *Bus) Watch(pred func(action.Action) bool) *Watcher {
	w := &Watcher{
		bus:  b,
		pred: pred,
		ch:   make(chan action.Action, 1),
	}
	b.watchMu.Lock()
	b.watchSeq++
	w.id = b.watchSeq
	b.watchers[w.id] = w
	b.watchMu.Unlock()
	return w
}

// C delivers the first matching action. Never delivers more than once.
func (w *Watcher) C() <-chan action.Action {
	if w == nil {
		return nil
	}
	return w.ch
}

// Close unsubscribes the watcher. Idempotent; safe from any goroutine.
func (w *Watcher) Close() {
	if w == nil {
		return
	}
	w.bus.watchMu.Lock()
	delete(w.bus.watchers, w.id)
	w.bus.watchMu.Unlock()
}

// notifyWatchers delivers act to every matching watcher and removes the
// matched ones (take-1 semantics). Called from the loop between reduction
// and pipeline evaluation so cancellation triggers win promptly.
func (b *Bus) notifyWatchers(act action.Action) {
	b.watchMu.Lock()
	defer b.watchMu.Unlock()

	for id, w := range b.watchers {
		if w.pred(act) {
			w.ch <- act // buffered size 1; a watcher matches at most once
			delete(b.watchers, id)
		}
	}
}
