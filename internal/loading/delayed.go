// Package loading implements a loading flag that stays visible for a
// minimum duration and clears itself if nobody stops it.
package loading

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// DelayedAction runs a function once after a delay unless cancelled first
type DelayedAction struct {
	mu    sync.Mutex
	timer *clock.Timer
	done  bool
}

// After schedules fn to run after d on the given clock
func After(c clock.Clock, d time.Duration, fn func()) *DelayedAction {
	a := &DelayedAction{}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.timer = c.AfterFunc(d, func() {
		a.mu.Lock()
		if a.done {
			a.mu.Unlock()
			return
		}
		a.done = true
		a.mu.Unlock()
		fn()
	})
	return a
}

// Cancel stops the action. It reports whether the call prevented fn from
// running.
func (a *DelayedAction) Cancel() bool {
	if a == nil {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.done {
		return false
	}
	a.done = true
	a.timer.Stop()
	return true
}
