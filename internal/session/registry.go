// Package session binds live connections to anonymous display names.
package session

import (
	"fmt"
	"sync"
)

// ConnID is the opaque handle of a single transport connection.
type ConnID string

// Registry maps connections to their assigned display names. The name
// counter only increases, so a name is never handed out twice during the
// life of the process.
type Registry struct {
	mu      sync.Mutex
	names   map[ConnID]string
	counter uint64
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		names: make(map[ConnID]string),
	}
}

// ResolveOrAssign returns the name bound to conn, binding the next
// "anonymous <n>" on first contact.
func (r *Registry) ResolveOrAssign(conn ConnID) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if name, ok := r.names[conn]; ok {
		return name
	}

	r.counter++
	name := fmt.Sprintf("anonymous %d", r.counter)
	r.names[conn] = name
	return name
}

// Lookup returns the name bound to conn without assigning one.
func (r *Registry) Lookup(conn ConnID) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name, ok := r.names[conn]
	return name, ok
}

// Remove deletes the binding for conn. The boolean reports whether one
// existed.
func (r *Registry) Remove(conn ConnID) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name, ok := r.names[conn]
	if ok {
		delete(r.names, conn)
	}
	return name, ok
}

// Len reports the number of registered connections.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.names)
}
