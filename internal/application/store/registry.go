package store

import (
	"sort"
	"sync"

	"github.com/alem-hub/wellness-hub/internal/application/command"
	"github.com/alem-hub/wellness-hub/internal/domain/profile"
	"github.com/alem-hub/wellness-hub/internal/domain/shared"
)

// Registry keeps one Store per student profile. The registry lock only
// guards the map; commands on different profiles never contend.
type Registry struct {
	mu     sync.RWMutex
	stores map[string]*Store
	deps   Dependencies
}

// NewRegistry creates an empty registry sharing deps across all stores.
func NewRegistry(deps Dependencies) *Registry {
	return &Registry{
		stores: make(map[string]*Store),
		deps:   deps.withDefaults(),
	}
}

// CreateProfile creates a profile and registers its store. profile.created is
// published only after the store can be found through Get.
func (r *Registry) CreateProfile(cmd command.CreateProfileCommand) (*profile.StudentProfile, error) {
	s, snapshot, announce, err := create(cmd, r.deps)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.stores[s.ID()] = s
	r.mu.Unlock()

	announce()
	return snapshot, nil
}

// Get returns the store of profile id.
func (r *Registry) Get(id string) (*Store, error) {
	r.mu.RLock()
	s, ok := r.stores[id]
	r.mu.RUnlock()

	if !ok {
		return nil, shared.WrapError("profile", "Get", shared.ErrNotFound, "unknown profile",
			shared.NewKeyNotFoundError("profile", id))
	}
	return s, nil
}

// IDs returns the registered profile IDs in ascending order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.stores))
	for id := range r.stores {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	sort.Strings(ids)
	return ids
}

// Len returns the number of profiles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.stores)
}
