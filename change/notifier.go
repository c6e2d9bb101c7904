package change

import "sync"

// Listener receives events synchronously.
type Listener[E any] func(E)

type listenerEntry[E any] struct {
	fn Listener[E]
}

// Notifier fans events out to attached listeners in attachment order.
// Attaching and detaching are safe from any goroutine and from inside a
// listener; a listener attached during a round first hears the next event.
type Notifier[E any] struct {
	mu        sync.Mutex
	listeners []*listenerEntry[E]
}

// Attach registers l and returns a function that detaches it. Detaching
// more than once is a no-op.
func (n *Notifier[E]) Attach(l Listener[E]) (detach func()) {
	entry := &listenerEntry[E]{fn: l}
	n.mu.Lock()
	next := make([]*listenerEntry[E], len(n.listeners), len(n.listeners)+1)
	copy(next, n.listeners)
	n.listeners = append(next, entry)
	n.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { n.remove(entry) })
	}
}

// Notify delivers ev to every listener attached when the call starts.
func (n *Notifier[E]) Notify(ev E) {
	n.mu.Lock()
	listeners := n.listeners
	n.mu.Unlock()
	for _, l := range listeners {
		l.fn(ev)
	}
}

// Len returns the number of attached listeners.
func (n *Notifier[E]) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.listeners)
}

func (n *Notifier[E]) remove(entry *listenerEntry[E]) {
	n.mu.Lock()
	defer n.mu.Unlock()
	next := make([]*listenerEntry[E], 0, len(n.listeners))
	for _, l := range n.listeners {
		if l != entry {
			next = append(next, l)
		}
	}
	n.listeners = next
}
