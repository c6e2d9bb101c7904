// Package change describes how an ordered sequence changed and fans those
// descriptions out to listeners.
//
// An Event is a tagged variant (Added, Removed, Replaced, Moved, Reset)
// whose indices always refer to positions in the output of whoever emitted
// it. GroupEvent is the two-level counterpart emitted by grouping stages.
// Apply and ApplyGroup replay events against a plain slice; replaying every
// event a stage ever emitted, in order, against an empty slice reconstructs
// that stage's snapshot.
package change
