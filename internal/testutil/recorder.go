// Package testutil provides deterministic helpers for engine tests: an
// action recorder, a full engine fixture over the stub client, and screen
// metadata builders.
package testutil

import (
	"context"
	"sync"

	"github.com/tesler-ui/datasync/internal/action"
	"github.com/tesler-ui/datasync/internal/state"
)

// Recorder is a bus pipeline that records every processed action in order.
// Registered last, it observes the full stream including actions emitted by
// the standard pipelines.
//
// Thread-safety: safe for concurrent use; Handle runs on the bus loop while
// assertions read from the test goroutine.
type Recorder struct {
	mu      sync.Mutex
	actions []action.Action
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Name() string { return "recorder" }

// Handle implements the bus Pipeline interface. Emits nothing.
func (r *Recorder) Handle(ctx context.Context, act action.Action, sn *state.Snapshot) []action.Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, act)
	return nil
}

// Actions returns a copy of all recorded actions in processing order.
func (r *Recorder) Actions() []action.Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]action.Action, len(r.actions))
	copy(out, r.actions)
	return out
}

// Types returns the type tags of all recorded actions in processing order.
func (r *Recorder) Types() []action.Type {
	acts := r.Actions()
	out := make([]action.Type, len(acts))
	for i, a := range acts {
		out[i] = a.Type()
	}
	return out
}

// OfType returns recorded actions with the given type tag, in order.
func (r *Recorder) OfType(t action.Type) []action.Action {
	var out []action.Action
	for _, a := range r.Actions() {
		if a.Type() == t {
			out = append(out, a)
		}
	}
	return out
}

// Count returns how many recorded actions carry the given type tag.
func (r *Recorder) Count(t action.Type) int {
	return len(r.OfType(t))
}

// Reset discards recorded actions.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = nil
}
