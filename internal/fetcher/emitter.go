package fetcher

import (
	"sync"

	"grabtune/internal/entity"
)

// emitter serializes event delivery and enforces the sequence
// invariants: phases never regress, and exactly one terminal event is
// sent. Engine progress callbacks may arrive from another goroutine,
// hence the lock.
type emitter struct {
	mu       sync.Mutex
	onEvent  EventFunc
	lastRank int
	done     bool
}

func newEmitter(onEvent EventFunc) *emitter {
	return &emitter{onEvent: onEvent, lastRank: -1}
}

// phase announces a lifecycle transition. Repeats and regressions are
// dropped, which keeps re-entry into downloading after a retry silent.
func (e *emitter) phase(p entity.Phase) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.done || p.Rank() <= e.lastRank {
		return
	}

	e.send(entity.ProgressEvent{Phase: p})
}

// progress delivers an engine progress snapshot. Equal-rank events are
// allowed so percent updates flow within a phase; stale events from an
// earlier phase are dropped.
func (e *emitter) progress(ev entity.ProgressEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.done || ev.Phase.Rank() < e.lastRank {
		return
	}

	e.send(ev)
}

// terminal delivers the final event exactly once.
func (e *emitter) terminal(ev entity.ProgressEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.done {
		return
	}

	e.send(ev)
	e.done = true
}

func (e *emitter) send(ev entity.ProgressEvent) {
	e.lastRank = ev.Phase.Rank()

	if e.onEvent != nil {
		e.onEvent(ev)
	}
}
