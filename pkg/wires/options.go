package wires

import (
	"strings"

	"github.com/sirupsen/logrus"

	"nickandperla.net/wires/internal/store"
)

// Option configures a Runtime.
type Option func(*Runtime)

// WithSQLiteStore configures SQLite persistence at the given path.
func WithSQLiteStore(path string) Option {
	return func(r *Runtime) {
		s, err := store.NewSQLite(path)
		if err != nil {
			r.err = err
			return
		}
		r.store = s
	}
}

// WithMemoryStore configures an in-memory store (for testing).
func WithMemoryStore() Option {
	return func(r *Runtime) {
		r.store = store.NewMemory()
	}
}

// WithStore configures a custom store.
func WithStore(s Store) Option {
	return func(r *Runtime) {
		r.store = s
	}
}

// WithLogger sets the logger for the runtime and its circuit.
func WithLogger(l logrus.FieldLogger) Option {
	return func(r *Runtime) {
		r.log = l
	}
}

// WithPersistMode sets the persistence mode.
func WithPersistMode(mode PersistMode) Option {
	return func(r *Runtime) {
		r.persistMode = mode
	}
}

// Store interface for custom stores.
type Store = store.Store

// PersistMode controls when wire definitions are persisted.
type PersistMode int

const (
	// PersistOnDemand is the default - explicit Persist/Restore calls only.
	PersistOnDemand PersistMode = iota
	// PersistAlways restores on startup and writes every assignment through.
	PersistAlways
	// PersistNever makes Persist a no-op (memory-only mode).
	PersistNever
)

// String returns the string representation of a PersistMode.
func (m PersistMode) String() string {
	switch m {
	case PersistOnDemand:
		return "ON_DEMAND"
	case PersistAlways:
		return "ALWAYS"
	case PersistNever:
		return "NEVER"
	default:
		return "UNKNOWN"
	}
}

// ParsePersistMode parses a string into a PersistMode.
func ParsePersistMode(s string) (PersistMode, bool) {
	switch strings.ToUpper(s) {
	case "ON_DEMAND":
		return PersistOnDemand, true
	case "ALWAYS":
		return PersistAlways, true
	case "NEVER":
		return PersistNever, true
	default:
		return PersistOnDemand, false
	}
}
