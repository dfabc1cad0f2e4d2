// Package store provides persistence for wire definitions.
package store

import "nickandperla.net/wires/internal/expr"

// Store is the interface for gate persistence.
type Store interface {
	// Get retrieves the gate bound to a wire. Returns nil if not found.
	Get(name string) (expr.Gate, error)
	// Put stores a gate by wire name, overwriting if it exists.
	Put(name string, g expr.Gate) error
	// Delete removes a wire.
	Delete(name string) error
	// Names lists all stored wires in sorted order.
	Names() ([]string, error)
	// Close releases resources.
	Close() error
}
