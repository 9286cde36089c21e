package host

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

type registration struct {
	handler CommandHandler
}

// CommandRegistry is an in-memory Commands implementation.
type CommandRegistry struct {
	mu            sync.RWMutex
	registrations map[string]*registration
}

// NewCommandRegistry creates an empty registry.
func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{
		registrations: make(map[string]*registration),
	}
}

// Register binds id to handler. A later registration of the same id replaces
// the earlier one; disposing the earlier registration then has no effect.
func (r *CommandRegistry) Register(id string, handler CommandHandler) Disposable {
	reg := &registration{handler: handler}

	r.mu.Lock()
	r.registrations[id] = reg
	r.mu.Unlock()

	return DisposableFunc(func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.registrations[id] == reg {
			delete(r.registrations, id)
		}
	})
}

// Execute runs the handler registered for id.
func (r *CommandRegistry) Execute(ctx context.Context, id string) error {
	r.mu.RLock()
	reg, ok := r.registrations[id]
	r.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, id)
	}
	return reg.handler(ctx)
}

// Has reports whether id is registered.
func (r *CommandRegistry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.registrations[id]
	return ok
}

// IDs returns the registered command ids in sorted order.
func (r *CommandRegistry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.registrations))
	for id := range r.registrations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
