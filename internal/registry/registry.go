// Package registry maintains the in-memory set of discovered roles and
// broadcasts change events to interested watchers (the scan command output
// and the watch loop).
package registry

import (
	"sync"
	"time"

	"github.com/galaxykit/rolefix/internal/types"
)

// RoleRegistry manages all discovered roles
type RoleRegistry struct {
	roles    map[string]*types.Role
	mutex    sync.RWMutex
	watchers []chan types.RoleEvent
}

// NewRoleRegistry creates a new role registry
func NewRoleRegistry() *RoleRegistry {
	return &RoleRegistry{
		roles:    make(map[string]*types.Role),
		watchers: make([]chan types.RoleEvent, 0),
	}
}

// Register adds or updates a role in the registry. Roles are keyed by path,
// so nested roles sharing a name with an ancestor stay distinct.
func (r *RoleRegistry) Register(role *types.Role) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	eventType := types.EventTypeAdded
	if _, exists := r.roles[role.Path]; exists {
		eventType = types.EventTypeUpdated
	}

	r.roles[role.Path] = role

	r.notify(types.RoleEvent{
		Type:      eventType,
		Role:      role,
		Timestamp: time.Now(),
	})
}

// Get retrieves a role by path
func (r *RoleRegistry) Get(path string) (*types.Role, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	role, exists := r.roles[path]
	return role, exists
}

// GetAll returns all registered roles
func (r *RoleRegistry) GetAll() map[string]*types.Role {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make(map[string]*types.Role)
	for path, role := range r.roles {
		result[path] = role
	}
	return result
}

// Remove removes a role from the registry
func (r *RoleRegistry) Remove(path string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	role, exists := r.roles[path]
	if !exists {
		return
	}

	delete(r.roles, path)

	r.notify(types.RoleEvent{
		Type:      types.EventTypeRemoved,
		Role:      role,
		Timestamp: time.Now(),
	})
}

// Clear drops all registered roles without notifying watchers. Used before
// a full rescan.
func (r *RoleRegistry) Clear() {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.roles = make(map[string]*types.Role)
}

// Watch returns a channel that receives role events
func (r *RoleRegistry) Watch() <-chan types.RoleEvent {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	ch := make(chan types.RoleEvent, 100)
	r.watchers = append(r.watchers, ch)
	return ch
}

// UnWatch removes a watcher channel and closes it
func (r *RoleRegistry) UnWatch(ch <-chan types.RoleEvent) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for i, watcher := range r.watchers {
		if watcher == ch {
			close(watcher)
			r.watchers = append(r.watchers[:i], r.watchers[i+1:]...)
			break
		}
	}
}

// Count returns the number of registered roles
func (r *RoleRegistry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.roles)
}

// notify sends an event to all watchers. Callers must hold the mutex.
func (r *RoleRegistry) notify(event types.RoleEvent) {
	for _, watcher := range r.watchers {
		select {
		case watcher <- event:
		default:
			// Skip if channel is full
		}
	}
}
