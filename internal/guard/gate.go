package guard

import (
	"errors"
	"sync/atomic"
)

// ErrActionInFlight is returned by Gate.Acquire while an action is pending.
var ErrActionInFlight = errors.New("an action is already in flight")

// Gate enforces the single-flight discipline of one interactive session: a
// second user-triggered action is rejected at this boundary while one is
// pending. The dispatcher itself stays stateless; independent sessions each
// carry their own Gate.
type Gate struct {
	busy atomic.Bool
}

// Acquire claims the gate, or reports ErrActionInFlight.
func (g *Gate) Acquire() error {
	if !g.busy.CompareAndSwap(false, true) {
		return ErrActionInFlight
	}
	return nil
}

// Release reopens the gate after the action reaches a terminal state.
func (g *Gate) Release() {
	g.busy.Store(false)
}
