package gridstore

import (
	"context"
	"sync"
)

// MutationState tracks one optimistic mutation through its lifecycle:
// Idle until the local apply, Applied while the remote call is in flight,
// then Confirmed on success or RolledBack on failure.
type MutationState int

const (
	// MutationIdle means the mutation has not been applied locally yet
	MutationIdle MutationState = iota
	// MutationApplied means the optimistic local apply happened and the
	// remote call is in flight
	MutationApplied
	// MutationConfirmed means the remote accepted the mutation. The store
	// already matched, so confirmation changes nothing locally.
	MutationConfirmed
	// MutationRolledBack means the remote call failed and the local apply
	// was reverted (where the mutation kind rolls back at all)
	MutationRolledBack
)

// String returns the string representation of the MutationState
func (st MutationState) String() string {
	switch st {
	case MutationIdle:
		return "idle"
	case MutationApplied:
		return "applied"
	case MutationConfirmed:
		return "confirmed"
	case MutationRolledBack:
		return "rolled back"
	default:
		return "unknown"
	}
}

// Mutation is the handle returned by engine entry points: the Go rendering
// of a promise that resolves on confirmation or rejects with a structured
// error. The optimistic apply has already happened by the time the caller
// holds one; Wait only covers remote settlement.
type Mutation struct {
	mu    sync.Mutex
	state MutationState
	err   error
	done  chan struct{}
}

func newMutation() *Mutation {
	return &Mutation{done: make(chan struct{})}
}

// State returns the current lifecycle state
func (m *Mutation) State() MutationState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Err returns the settlement error, or nil. Only meaningful once Done is
// closed.
func (m *Mutation) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// Done is closed when the mutation settles either way
func (m *Mutation) Done() <-chan struct{} {
	return m.done
}

// Wait blocks until the mutation settles or the context is cancelled, and
// returns the settlement error
func (m *Mutation) Wait(ctx context.Context) error {
	select {
	case <-m.done:
		return m.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Mutation) markApplied() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = MutationApplied
}

func (m *Mutation) confirm() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != MutationApplied {
		return
	}
	m.state = MutationConfirmed
	close(m.done)
}

func (m *Mutation) rollback(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != MutationApplied {
		return
	}
	m.state = MutationRolledBack
	m.err = err
	close(m.done)
}

// confirmedMutation returns an already-settled handle, used for local
// no-ops (e.g. reordering to the same index) that need no remote call.
func confirmedMutation() *Mutation {
	m := newMutation()
	m.markApplied()
	m.confirm()
	return m
}
