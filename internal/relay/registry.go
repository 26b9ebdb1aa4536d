// Package relay tracks the mapping from live connection ids to the
// application user identity each client announced.
package relay

import "sync"

// Registry associates each live connection with an application user identity.
// A connection that never identifies itself simply has no entry; lookups fall
// back to the connection id so envelope construction never fails. A user may
// hold several simultaneous connections (multiple tabs), each tracked
// independently.
type Registry struct {
	mu         sync.RWMutex
	identities map[string]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		identities: make(map[string]string),
	}
}

// Register records the identity for a connection, overwriting any prior
// mapping for the same connection id.
func (r *Registry) Register(connID, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.identities[connID] = userID
}

// Unregister removes the mapping for a connection. It is a no-op when the
// connection never identified itself.
func (r *Registry) Unregister(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.identities, connID)
}

// Lookup returns the registered identity and whether one exists.
func (r *Registry) Lookup(connID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	userID, ok := r.identities[connID]
	return userID, ok
}

// Identity returns the registered identity for a connection, or the
// connection id itself when the client never sent a join event.
func (r *Registry) Identity(connID string) string {
	if userID, ok := r.Lookup(connID); ok {
		return userID
	}
	return connID
}

// Len reports how many connections currently have a registered identity.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.identities)
}
