package collection

import "github.com/kbukum/liveview/change"

// Stage is an ordered sequence that announces its changes: a Source or a
// derived stage. Downstream stages and views attach to a Stage.
type Stage[T any] interface {
	// Len returns the length of the sequence.
	Len() int
	// Snapshot returns a copy of the sequence.
	Snapshot() []T

	scope() *scope
	// items returns the current sequence. The pipeline must be held.
	items() []T
	// attach registers l for every later event. The pipeline must be held
	// for writing.
	attach(l change.Listener[change.Event[T]]) (detach func())
}
