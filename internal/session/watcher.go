package session

import "sync"

// Watcher is the integrity monitor capability. The engine installs a callback
// on start and uninstalls it on every termination path; between those two
// points the watcher invokes the callback whenever the monitored environment
// reports a suspected violation (loss of foreground focus, copy attempts, and
// the like — the engine does not care which).
type Watcher interface {
	Install(onSuspectedViolation func())
	Uninstall()
}

// NopWatcher performs no monitoring. Used for headless and test contexts.
type NopWatcher struct{}

func (NopWatcher) Install(func()) {}
func (NopWatcher) Uninstall()     {}

// SignalWatcher relays violation signals reported by an external adapter
// (typically the HTTP layer forwarding a client-side focus-loss event) to the
// installed callback. Reports before installation or after uninstallation are
// dropped.
type SignalWatcher struct {
	mu sync.Mutex
	cb func()
}

// Install registers the engine callback.
func (w *SignalWatcher) Install(onSuspectedViolation func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cb = onSuspectedViolation
}

// Uninstall drops the callback; later reports are ignored.
func (w *SignalWatcher) Uninstall() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cb = nil
}

// Report forwards one suspected violation to the engine, if installed.
func (w *SignalWatcher) Report() {
	w.mu.Lock()
	cb := w.cb
	w.mu.Unlock()
	if cb != nil {
		cb()
	}
}
