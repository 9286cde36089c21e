package host

import "sync"

// Emitter fans a notification out to registered listeners.
type Emitter struct {
	mu        sync.Mutex
	nextID    uint64
	listeners map[uint64]func()
	order     []uint64
}

// NewEmitter creates an Emitter with no listeners.
func NewEmitter() *Emitter {
	return &Emitter{
		listeners: make(map[uint64]func()),
	}
}

// Subscribe adds listener. Disposing the result removes it.
func (e *Emitter) Subscribe(listener func()) Disposable {
	e.mu.Lock()
	e.nextID++
	id := e.nextID
	e.listeners[id] = listener
	e.order = append(e.order, id)
	e.mu.Unlock()

	return DisposableFunc(func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.listeners, id)
		for i, existing := range e.order {
			if existing == id {
				e.order = append(e.order[:i], e.order[i+1:]...)
				break
			}
		}
	})
}

// Fire calls every listener in subscription order.
// Listeners are collected before any is called, so a listener may dispose itself.
func (e *Emitter) Fire() {
	e.mu.Lock()
	listeners := make([]func(), 0, len(e.order))
	for _, id := range e.order {
		listeners = append(listeners, e.listeners[id])
	}
	e.mu.Unlock()

	for _, listener := range listeners {
		listener()
	}
}

// Len returns the number of active listeners.
func (e *Emitter) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.order)
}
