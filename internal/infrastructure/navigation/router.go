// Package navigation holds the app's current location.
package navigation

import (
	"sync"

	"github.com/google/uuid"

	"github.com/lalaba/merchant-app/internal/core/domain"
)

// Router is an in-process location holder. Every Replace creates a new
// route entry, even for the current path, and notifies enter listeners in
// registration order. Replaces are serialised with their notifications, so a
// listener always sees the entry that is current and entries arrive in the
// order they were made. Listeners must not call Replace synchronously.
type Router struct {
	dispatch sync.Mutex

	mu        sync.RWMutex
	entry     domain.RouteEntry
	listeners map[uint64]func(domain.RouteEntry)
	order     []uint64
	next      uint64
}

// NewRouter starts at path.
func NewRouter(path string) *Router {
	return &Router{
		entry:     newEntry(path),
		listeners: make(map[uint64]func(domain.RouteEntry)),
	}
}

func (r *Router) Location() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entry.Path
}

func (r *Router) Entry() domain.RouteEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entry
}

// Replace moves to path and returns the new entry.
func (r *Router) Replace(path string) domain.RouteEntry {
	r.dispatch.Lock()
	defer r.dispatch.Unlock()

	r.mu.Lock()
	r.entry = newEntry(path)
	e := r.entry
	fns := make([]func(domain.RouteEntry), 0, len(r.order))
	for _, id := range r.order {
		fns = append(fns, r.listeners[id])
	}
	r.mu.Unlock()

	for _, fn := range fns {
		fn(e)
	}
	return e
}

// OnEnter registers fn and returns a disposer.
func (r *Router) OnEnter(fn func(domain.RouteEntry)) func() {
	r.mu.Lock()
	id := r.next
	r.next++
	r.listeners[id] = fn
	r.order = append(r.order, id)
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			delete(r.listeners, id)
			for i, v := range r.order {
				if v == id {
					r.order = append(r.order[:i], r.order[i+1:]...)
					break
				}
			}
		})
	}
}

func newEntry(path string) domain.RouteEntry {
	if path == "" {
		path = domain.RouteHome
	}
	return domain.RouteEntry{ID: uuid.NewString(), Path: path}
}
