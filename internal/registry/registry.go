// Package registry implements the Registry & Handle component of spec §4.8:
// a process-wide mapping of service_id to configured provider instance, and
// a reference-counted handle that prevents the registry from being rebuilt
// while a translation is in flight.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/transgate/gatewaycore/sdk/translate"
)

// Registry owns exactly one instance of each configured provider. It is
// safe for concurrent use; Get and List take only the read lock and do not
// block on each other, AcquireHandle and Release briefly take the write
// lock, and Reconfigure and ReplaceProvider block until outstanding handles
// drain.
type Registry struct {
	mu         sync.RWMutex
	cond       *sync.Cond
	providers  map[string]translate.Translator
	refCount   int
	generation uint64
}

// New builds a Registry pre-populated with providers, keyed by each
// Translator's Capability().ServiceID.
func New(providers ...translate.Translator) *Registry {
	r := &Registry{providers: make(map[string]translate.Translator, len(providers))}
	r.cond = sync.NewCond(&r.mu)
	for _, p := range providers {
		r.providers[p.Capability().ServiceID] = p
	}
	return r
}

// Handle is a reference-counted lease on a Registry snapshot. Callers
// acquire one before selecting and invoking a provider, and Release it
// when the translation completes (success or failure), per spec §4.8's
// "handle-count invariant".
type Handle struct {
	reg        *Registry
	released   bool
	mu         sync.Mutex
	generation uint64
}

// AcquireHandle increments the registry's outstanding-handle count and
// returns a Handle bound to the current provider snapshot. Reconfigure
// cannot swap the snapshot while any Handle acquired against it is
// outstanding.
func (r *Registry) AcquireHandle() *Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refCount++
	return &Handle{reg: r, generation: r.generation}
}

// Get resolves a provider by service_id against the snapshot the Handle was
// acquired on.
func (h *Handle) Get(serviceID string) (translate.Translator, bool) {
	h.reg.mu.RLock()
	defer h.reg.mu.RUnlock()
	p, ok := h.reg.providers[serviceID]
	return p, ok
}

// List returns every registered provider's Capability, sorted by service_id
// for deterministic output.
func (h *Handle) List() []translate.Capability {
	h.reg.mu.RLock()
	defer h.reg.mu.RUnlock()
	out := make([]translate.Capability, 0, len(h.reg.providers))
	for _, p := range h.reg.providers {
		out = append(out, p.Capability())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ServiceID < out[j].ServiceID })
	return out
}

// Release decrements the registry's outstanding-handle count. Idempotent:
// calling Release more than once on the same Handle is a no-op after the
// first call, so defer h.Release() is always safe even alongside an
// explicit early Release.
func (h *Handle) Release() {
	h.mu.Lock()
	if h.released {
		h.mu.Unlock()
		return
	}
	h.released = true
	h.mu.Unlock()

	h.reg.mu.Lock()
	h.reg.refCount--
	if h.reg.refCount == 0 {
		h.reg.cond.Broadcast()
	}
	h.reg.mu.Unlock()
}

// Reconfigure waits for every outstanding Handle to Release, then swaps the
// provider snapshot atomically to next, per spec §4.8: "replacement may
// proceed only when the handle count reaches zero". It blocks the calling
// goroutine — callers typically invoke it from a dedicated config-reload
// goroutine, never from inside a translation.
func (r *Registry) Reconfigure(next map[string]translate.Translator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for r.refCount > 0 {
		r.cond.Wait()
	}
	r.providers = next
	r.generation++
}

// ReplaceProvider swaps a single provider entry for an entirely new
// instance, leaving the other entries untouched. Like Reconfigure it waits
// for the handle count to reach zero before making the swap.
func (r *Registry) ReplaceProvider(serviceID string, next translate.Translator) error {
	if next == nil {
		return fmt.Errorf("registry: cannot replace %s with a nil provider", serviceID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for r.refCount > 0 {
		r.cond.Wait()
	}
	r.providers[serviceID] = next
	r.generation++
	return nil
}

// Count reports the current outstanding-handle count (for tests/metrics).
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.refCount
}
