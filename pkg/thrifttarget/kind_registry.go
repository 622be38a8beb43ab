package thrifttarget

import (
	"sort"
	"sync"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// KindRegistry represents a library of rule kinds.
type KindRegistry interface {
	// KindNames returns a sorted list of kind names.
	KindNames() []string
	// LookupKind returns the kind under the given name.  If not known, a
	// NotFound status error is returned.
	LookupKind(name string) (Kind, error)
	// RegisterKind installs a Kind under its name.  Registering the same name
	// twice is an AlreadyExists status error.
	RegisterKind(kind Kind) error
}

// globalKindRegistry is the default registry singleton.
var globalKindRegistry = NewKindRegistryMap()

// GlobalKindRegistry returns a reference to the global KindRegistry
// implementation.
func GlobalKindRegistry() KindRegistry {
	return globalKindRegistry
}

// KindRegistryMap implements KindRegistry using a map.
type KindRegistryMap struct {
	mu    sync.RWMutex
	kinds map[string]Kind
}

func NewKindRegistryMap() *KindRegistryMap {
	return &KindRegistryMap{
		kinds: make(map[string]Kind),
	}
}

// KindNames implements part of the KindRegistry interface.
func (r *KindRegistryMap) KindNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.kinds))
	for name := range r.kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupKind implements part of the KindRegistry interface.
func (r *KindRegistryMap) LookupKind(name string) (Kind, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kind, ok := r.kinds[name]
	if !ok {
		return nil, status.Errorf(codes.NotFound, "rule kind not found: %q", name)
	}
	return kind, nil
}

// RegisterKind implements part of the KindRegistry interface.
func (r *KindRegistryMap) RegisterKind(kind Kind) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.kinds[kind.Name()]; ok {
		return status.Errorf(codes.AlreadyExists, "duplicate rule kind registration: %q", kind.Name())
	}
	r.kinds[kind.Name()] = kind
	return nil
}
