package gridstore

import (
	"time"

	"github.com/gridbase/gridstore/types"
)

// Scheduler schedules deferred work. The default implementation delegates
// to time.AfterFunc; tests inject a manual scheduler so debounce behavior
// is checked without wall-clock waits.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// Timer is a stoppable pending callback
type Timer interface {
	// Stop cancels the callback, reporting whether it was still pending
	Stop() bool
}

type wallScheduler struct{}

func (wallScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// fieldBatch is the pending state of one sheet's debounced field updates:
// at most one payload (the latest full field list) and one scheduled flush.
// A new edit before the deadline replaces the payload and resets the
// deadline (trailing debounce). Waiters are the futures of every coalesced
// edit; they all settle with the single flush's outcome.
type fieldBatch struct {
	fields  []types.Field
	waiters []*Mutation
	timer   Timer
}
