package workspace

import "github.com/corey/pddl/internal/domain/model"

// EventKind identifies a file lifecycle transition.
type EventKind int

const (
	// Inserted fires once per URI, on its first parse.
	Inserted EventKind = iota
	// Updated fires after a parse whose version is newer than the last
	// Updated version of that URI.
	Updated
	// Removing fires before a file leaves the workspace.
	Removing
)

// String returns the event name.
func (k EventKind) String() string {
	switch k {
	case Inserted:
		return "inserted"
	case Updated:
		return "updated"
	default:
		return "removing"
	}
}

// Event is delivered to listeners after the transition that caused it.
type Event struct {
	Kind    EventKind
	URI     string
	Version int
	File    model.FileInfo
}

// Listener receives events synchronously. It may call back into the
// workspace.
type Listener func(Event)

type subscription struct {
	id int
	fn Listener
}

// Subscribe registers l and returns a func that unregisters it.
func (w *Workspace) Subscribe(l Listener) (unsubscribe func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.nextListener++
	id := w.nextListener
	w.listeners = append(w.listeners, subscription{id: id, fn: l})
	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		for i, s := range w.listeners {
			if s.id == id {
				w.listeners = append(w.listeners[:i:i], w.listeners[i+1:]...)
				return
			}
		}
	}
}

// emitLocked queues an event. Queued events are delivered by flush once
// the state lock is released.
func (w *Workspace) emitLocked(kind EventKind, f model.FileInfo) {
	b := f.Base()
	w.pending = append(w.pending, Event{Kind: kind, URI: b.URI, Version: b.Version(), File: f})
}

// emitParsedLocked queues Inserted and Updated for a fresh parse of f.
func (w *Workspace) emitParsedLocked(f model.FileInfo) {
	b := f.Base()
	if !w.inserted[b.URI] {
		w.inserted[b.URI] = true
		w.emitLocked(Inserted, f)
	}
	if last, ok := w.lastUpdated[b.URI]; ok && b.Version() <= last {
		return
	}
	w.lastUpdated[b.URI] = b.Version()
	w.emitLocked(Updated, f)
}

// flush delivers queued events in order. Must be called without w.mu.
// Only one goroutine dispatches at a time; a flush that finds another in
// progress returns and leaves its events to that dispatcher, which also
// covers listeners calling back into the workspace.
func (w *Workspace) flush() {
	w.mu.Lock()
	if w.dispatching {
		w.mu.Unlock()
		return
	}
	w.dispatching = true
	for len(w.pending) > 0 {
		events := w.pending
		w.pending = nil
		listeners := append([]subscription(nil), w.listeners...)
		w.mu.Unlock()
		for _, e := range events {
			for _, s := range listeners {
				s.fn(e)
			}
		}
		w.mu.Lock()
	}
	w.dispatching = false
	w.mu.Unlock()
}
