// Package adapter defines the Source Adapter Framework: the uniform shape
// every source adapter takes, a registry routing source names to adapter
// constructors, and the per-instance memo table adapters use for raw fetched
// payloads.
//
// Adapters are the only components that know a source's URL templates,
// selectors, JSON paths, and field renamings. Every method is idempotent,
// blocking, and returns either a fully-populated canonical value or a typed
// fault; no method returns partial data silently. A single adapter instance
// is not safe for concurrent use (it owns a memo table and, for
// browser-driven sources, one browser session); run distinct instances from
// distinct goroutines instead.
package adapter

import (
	"context"
	"sort"
	"sync"

	"github.com/quantfetch/quantfetch/config"
	"github.com/quantfetch/quantfetch/pkg/fault"
)

// Adapter is implemented once per source.
type Adapter interface {
	// Name returns the source name, e.g. "yahoo", "sec".
	Name() string

	// Close releases any resources the instance owns (browser sessions,
	// memoized payloads). The instance is unusable afterwards.
	Close(ctx context.Context) error
}

// Constructor builds an adapter bound to the process identity.
type Constructor func(config.Identity) (Adapter, error)

// Registry maps source names to constructors. The zero registry is unusable;
// use NewRegistry or the package-level default.
type Registry struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{constructors: make(map[string]Constructor)}
}

// Register adds a constructor. Duplicate names overwrite.
func (r *Registry) Register(name string, c Constructor) {
	r.mu.Lock()
	r.constructors[name] = c
	r.mu.Unlock()
}

// New constructs a fresh adapter instance for the source.
func (r *Registry) New(name string, id config.Identity) (Adapter, error) {
	r.mu.RLock()
	c, ok := r.constructors[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fault.Newf(fault.NotFound, "adapter", "new", "no adapter registered for source %q", name)
	}
	return c(id)
}

// Names lists registered sources, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.constructors))
	for n := range r.constructors {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

var defaultRegistry = NewRegistry()

// Default returns the package-level registry adapters register into.
func Default() *Registry { return defaultRegistry }

// Register adds a constructor to the default registry.
func Register(name string, c Constructor) { defaultRegistry.Register(name, c) }

// Memo is the deliberate per-instance memo table for raw fetched payloads,
// keyed by sub-page id. It lives exactly as long as its adapter instance:
// asking for the balance sheet and then the cash-flow statement reuses one
// fetch, but a fresh instance always refetches. Not safe for concurrent use,
// matching the adapter instance contract.
type Memo struct {
	entries map[string]any
}

// NewMemo creates an empty memo table.
func NewMemo() *Memo { return &Memo{entries: make(map[string]any)} }

// Get returns the memoized payload for a sub-page id.
func (m *Memo) Get(key string) (any, bool) {
	v, ok := m.entries[key]
	return v, ok
}

// Put memoizes a payload.
func (m *Memo) Put(key string, v any) { m.entries[key] = v }

// Drop removes everything; called from Close.
func (m *Memo) Drop() { m.entries = make(map[string]any) }
