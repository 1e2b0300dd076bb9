package mongostore

import "sync"

// notifier is the store's notification registry: a "connected" event fired
// exactly once when the store becomes ready, and an "error" event fired on
// every failure. Both support persistent and one-shot subscriptions.
type notifier struct {
	mu sync.Mutex

	connected     []func()
	connectedOnce []func()
	errors        []func(error)
	errorsOnce    []func(error)

	// connectedFired records that the connected event already happened so
	// late subscribers still observe readiness.
	connectedFired bool
}

// onConnected registers a persistent connected listener. A listener added
// after the store became ready is invoked immediately.
func (n *notifier) onConnected(fn func()) {
	n.mu.Lock()
	fired := n.connectedFired
	if !fired {
		n.connected = append(n.connected, fn)
	}
	n.mu.Unlock()

	if fired {
		fn()
	}
}

// onceConnected registers a connected listener that fires at most once.
func (n *notifier) onceConnected(fn func()) {
	n.mu.Lock()
	fired := n.connectedFired
	if !fired {
		n.connectedOnce = append(n.connectedOnce, fn)
	}
	n.mu.Unlock()

	if fired {
		fn()
	}
}

// onError registers a persistent error listener.
func (n *notifier) onError(fn func(error)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, fn)
}

// onceError registers an error listener that fires at most once.
func (n *notifier) onceError(fn func(error)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errorsOnce = append(n.errorsOnce, fn)
}

// fireConnected invokes all connected listeners. Subsequent calls are no-ops;
// the event fires exactly once.
func (n *notifier) fireConnected() {
	n.mu.Lock()
	if n.connectedFired {
		n.mu.Unlock()
		return
	}
	n.connectedFired = true
	persistent := n.connected
	once := n.connectedOnce
	n.connected = nil
	n.connectedOnce = nil
	n.mu.Unlock()

	for _, fn := range persistent {
		fn()
	}
	for _, fn := range once {
		fn()
	}
}

// fireError invokes all error listeners with the failure.
func (n *notifier) fireError(err error) {
	n.mu.Lock()
	persistent := make([]func(error), len(n.errors))
	copy(persistent, n.errors)
	once := n.errorsOnce
	n.errorsOnce = nil
	n.mu.Unlock()

	for _, fn := range persistent {
		fn(err)
	}
	for _, fn := range once {
		fn(err)
	}
}

// hasErrorListeners reports whether any error listener is registered.
func (n *notifier) hasErrorListeners() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.errors) > 0 || len(n.errorsOnce) > 0
}
