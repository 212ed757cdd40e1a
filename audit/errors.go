package audit

import "errors"

var (
	// ErrDecodeFault is returned when a key or value cannot be read or
	// decoded. The run aborts on the first fault.
	ErrDecodeFault = errors.New("record decode fault")

	// ErrCommitFault is returned when the positions of a batch cannot be committed.
	ErrCommitFault = errors.New("commit fault")

	// ErrMissingTopic is returned by NewRunner when no topic is configured
	ErrMissingTopic = errors.New("no topic configured")

	// ErrNegativeDayOffset is returned by NewRunner for a day offset below zero
	ErrNegativeDayOffset = errors.New("day offset must not be negative")

	// ErrAlreadyRun is returned by Run on a runner that has left the idle state.
	// A runner owns its client and closes it, so it runs once.
	ErrAlreadyRun = errors.New("runner has already run")
)
