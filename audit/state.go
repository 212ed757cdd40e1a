package audit

import "fmt"

// State is the position of a run in its lifecycle:
//
//	Idle → Polling → Processing → Committing → Polling … → Draining → Closed
//
// Any failure moves the run to Failed.
type State int

const (
	StateIdle State = iota
	StatePolling
	StateProcessing
	StateCommitting
	StateDraining
	StateClosed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePolling:
		return "polling"
	case StateProcessing:
		return "processing"
	case StateCommitting:
		return "committing"
	case StateDraining:
		return "draining"
	case StateClosed:
		return "closed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	return s == StateClosed || s == StateFailed
}
