// Package collection maintains live derived views over a mutable source
// sequence.
//
// A Source owns the items. Filter, Sort and Grouping stages subscribe to an
// upstream stage and keep their own derived sequence consistent
// incrementally, emitting change.Events in their own coordinates. A View
// (or GroupedView) is the read handle at the end of a chain: it snapshots
// the terminal stage and forwards its events to subscribers.
//
//	src := collection.NewSource[*Member]()
//	active, _ := collection.CreateView(src, collection.Spec[*Member]{
//		Name:    "active",
//		Filter:  func(m *Member) bool { return m.Active },
//		Compare: func(a, b *Member) int { return strings.Compare(a.Name, b.Name) },
//	})
//	active.Subscribe(func(ev change.Event[*Member]) error { ... })
//	src.Add(&Member{Name: "ada", Active: true})
//
// Every mutation is validated, applied to the source, pushed through all
// stages, and only then delivered to view subscribers, in subscription
// order, before the mutator returns. Subscribers may read any snapshot but
// may not mutate the source while being notified: that fails with
// REENTRANT_MUTATION.
//
// By default a pipeline must be used from one goroutine at a time. Sources
// built WithSynchronization guard the whole pipeline with one RWMutex.
//
// Predicates, comparators and key functions must be pure and deterministic.
// WithInvariantChecks makes the engine look for comparator antisymmetry
// violations and unstable group keys and report them as
// NON_DETERMINISTIC_CALLBACK through the error handler.
package collection
