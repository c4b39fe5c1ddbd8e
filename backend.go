package ggsurface

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/gogpu/ggsurface/platform"
)

// Standard backend priorities.
const (
	PriorityGPU      = 100
	PrioritySoftware = 10
)

// ErrNoBackend is returned when no registered backend is available.
var ErrNoBackend = errors.New("ggsurface: no presenter backend available")

// BackendNotFoundError is returned for an unknown backend name.
type BackendNotFoundError struct {
	Name string
}

func (e *BackendNotFoundError) Error() string {
	return fmt.Sprintf("ggsurface: backend %q not registered", e.Name)
}

// BackendEntry is one registered presenter backend.
type BackendEntry struct {
	// Name is the unique identifier of the backend.
	Name string

	// Priority orders automatic selection, higher first.
	Priority int

	// Factory creates the presenters.
	Factory PresenterFactory

	// Available reports whether the backend can work on this system.
	Available func() bool
}

var globalRegistry = &registry{}

func init() {
	RegisterBackend("gpu", PriorityGPU, GPUBackend(), nil)
	RegisterBackend("software", PrioritySoftware, SoftwareBackend(), nil)
}

type registry struct {
	mu sync.RWMutex
	m  map[string]*BackendEntry
}

// RegisterBackend adds a backend to the global registry. A nil available
// means always available. Registering an existing name replaces it.
func RegisterBackend(name string, priority int, factory PresenterFactory, available func() bool) {
	if available == nil {
		available = func() bool { return true }
	}
	globalRegistry.mu.Lock()
	if globalRegistry.m == nil {
		globalRegistry.m = make(map[string]*BackendEntry)
	}
	globalRegistry.m[name] = &BackendEntry{Name: name, Priority: priority, Factory: factory, Available: available}
	globalRegistry.mu.Unlock()

	propagateLogger(factory, Logger())
}

// UnregisterBackend removes a backend from the global registry.
func UnregisterBackend(name string) {
	globalRegistry.mu.Lock()
	delete(globalRegistry.m, name)
	globalRegistry.mu.Unlock()
}

// Backends returns the registered backend names, highest priority first.
func Backends() []string {
	return names(globalRegistry.entries())
}

// AvailableBackends returns the names of the available backends, highest
// priority first.
func AvailableBackends() []string {
	return names(globalRegistry.available())
}

// LookupBackend returns a copy of the named entry.
func LookupBackend(name string) (BackendEntry, bool) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	e, ok := globalRegistry.m[name]
	if !ok {
		return BackendEntry{}, false
	}
	return *e, true
}

// NamedBackend returns a factory that creates presenters with the named
// backend, looked up when a presenter is requested.
func NamedBackend(name string) PresenterFactory {
	return PresenterFunc(func(win platform.Window, cfg PresenterConfig) (Presenter, error) {
		e, ok := LookupBackend(name)
		if !ok {
			return nil, &BackendNotFoundError{Name: name}
		}
		if !e.Available() {
			return nil, fmt.Errorf("%w: %s", ErrNoBackend, name)
		}
		return e.Factory.NewPresenter(win, cfg)
	})
}

// AutoBackend returns a factory that tries every available backend from
// the highest priority down and returns the first presenter created.
func AutoBackend() PresenterFactory {
	return PresenterFunc(func(win platform.Window, cfg PresenterConfig) (Presenter, error) {
		entries := globalRegistry.available()
		if len(entries) == 0 {
			return nil, ErrNoBackend
		}
		var errs []error
		for _, e := range entries {
			p, err := e.Factory.NewPresenter(win, cfg)
			if err == nil {
				slogger().Info("ggsurface: presenter created", "backend", e.Name, "window", win.ID())
				return p, nil
			}
			slogger().Warn("ggsurface: backend failed, trying next", "backend", e.Name, "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", e.Name, err))
		}
		return nil, errors.Join(errs...)
	})
}

// entries returns the entries sorted by priority.
func (r *registry) entries() []*BackendEntry {
	r.mu.RLock()
	list := make([]*BackendEntry, 0, len(r.m))
	for _, e := range r.m {
		list = append(list, e)
	}
	r.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		if list[i].Priority != list[j].Priority {
			return list[i].Priority > list[j].Priority
		}
		return list[i].Name < list[j].Name
	})
	return list
}

func (r *registry) available() []*BackendEntry {
	all := r.entries()
	list := all[:0]
	for _, e := range all {
		if e.Available() {
			list = append(list, e)
		}
	}
	return list
}

func names(entries []*BackendEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}
