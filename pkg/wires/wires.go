// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package wires provides the public API for building and evaluating wire circuits.
package wires

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"nickandperla.net/wires/internal/circuit"
	"nickandperla.net/wires/internal/expr"
	"nickandperla.net/wires/internal/parser"
	"nickandperla.net/wires/internal/token"
)

// Errors surfaced by the runtime. They can be matched with errors.Is.
var (
	ErrMalformedExpression = parser.ErrMalformedExpression
	ErrMalformedAssignment = parser.ErrMalformedAssignment
	ErrUnknownWire         = circuit.ErrUnknownWire
	ErrCycle               = circuit.ErrCycle
	ErrNoStore             = errors.New("no store configured")
)

// Stats counts cache hits and gate computations.
type Stats = circuit.Stats

// Runtime owns a circuit and its optional persistence.
type Runtime struct {
	circuit     *circuit.Circuit
	store       Store
	log         logrus.FieldLogger
	persistMode PersistMode
	err         error // First option error, reported by New
}

// New creates a new runtime with the given options. In PersistAlways mode
// the stored circuit is restored before New returns.
func New(opts ...Option) (*Runtime, error) {
	r := &Runtime{}
	for _, opt := range opts {
		opt(r)
	}
	if r.err != nil {
		if r.store != nil {
			r.store.Close()
		}
		return nil, r.err
	}
	if r.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		r.log = l
	}
	r.circuit = circuit.New(circuit.WithLogger(r.log))

	if r.persistMode == PersistAlways && r.store != nil {
		if err := r.Restore(); err != nil {
			r.store.Close()
			return nil, err
		}
	}
	return r, nil
}

// Load parses r one assignment per line and binds every gate. Lines before
// a malformed one stay bound. In PersistAlways mode each binding is also
// written to the store; write failures are joined with any parse error.
func (r *Runtime) Load(reader io.Reader) error {
	if !r.writeThrough() {
		if err := r.circuit.Load(reader); err != nil {
			return err
		}
		r.warnUnbound()
		return nil
	}

	assignments, err := parser.Parse(reader)
	errs := []error{err}
	for _, a := range assignments {
		errs = append(errs, r.bind(a.Wire, a.Gate))
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	r.log.WithField("wires", len(assignments)).Debug("circuit loaded")
	r.warnUnbound()
	return nil
}

// LoadFile loads a circuit source file.
func (r *Runtime) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := r.Load(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Assign parses one "<expression> -> <wire>" line and binds it.
// Cached signals are not flushed.
func (r *Runtime) Assign(line string) error {
	a, err := parser.ParseLine(line)
	if err != nil {
		return err
	}
	return r.bind(a.Wire, a.Gate)
}

// Eval returns the signal on the named wire.
func (r *Runtime) Eval(name string) (uint16, error) {
	return r.circuit.Evaluate(name)
}

// Override rewires name to a constant signal and flushes every cached
// signal so the next Eval reflects the change.
func (r *Runtime) Override(name string, signal uint16) error {
	if !token.IsIdent(name) {
		return fmt.Errorf("%w: invalid wire name %q", ErrMalformedAssignment, name)
	}
	if err := r.bind(name, expr.Direct{In: expr.Literal(signal)}); err != nil {
		return err
	}
	r.circuit.InvalidateAll()
	r.log.WithFields(logrus.Fields{"wire": name, "signal": signal}).Info("wire overridden")
	return nil
}

// Flush discards every cached signal.
func (r *Runtime) Flush() {
	r.circuit.InvalidateAll()
}

// Wires returns all bound wire names in sorted order.
func (r *Runtime) Wires() []string {
	return r.circuit.Names()
}

// Definition returns the source form of the gate driving name.
func (r *Runtime) Definition(name string) (string, bool) {
	g, ok := r.circuit.Get(name)
	if !ok {
		return "", false
	}
	return g.String(), true
}

// Unbound returns wires that gates reference but nothing drives.
func (r *Runtime) Unbound() []string {
	return r.circuit.Unbound()
}

// Stats returns the circuit's cache counters.
func (r *Runtime) Stats() Stats {
	return r.circuit.Stats()
}

// Persist writes every wire definition to the store.
func (r *Runtime) Persist() error {
	if r.persistMode == PersistNever {
		return nil
	}
	if r.store == nil {
		return ErrNoStore
	}
	for _, name := range r.circuit.Names() {
		g, _ := r.circuit.Get(name)
		if err := r.store.Put(name, g); err != nil {
			return fmt.Errorf("persist %s: %w", name, err)
		}
	}
	r.log.WithField("wires", r.circuit.Len()).Info("circuit persisted")
	return nil
}

// Restore binds every wire definition from the store, replacing gates with
// the same name, and flushes the cache. Nothing is bound unless every
// stored gate reads back cleanly.
func (r *Runtime) Restore() error {
	if r.store == nil {
		return ErrNoStore
	}
	names, err := r.store.Names()
	if err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	restored := make([]expr.Assignment, 0, len(names))
	for _, name := range names {
		g, err := r.store.Get(name)
		if err != nil {
			return fmt.Errorf("restore %s: %w", name, err)
		}
		if g == nil {
			continue
		}
		restored = append(restored, expr.Assignment{Wire: name, Gate: g})
	}
	for _, a := range restored {
		r.circuit.Assign(a.Wire, a.Gate)
	}
	r.circuit.InvalidateAll()
	r.log.WithField("wires", len(names)).Info("circuit restored")
	return nil
}

// Dump writes "name: signal" for every wire, or "name: error" for wires
// that cannot be evaluated.
func (r *Runtime) Dump(w io.Writer) error {
	var sb strings.Builder
	for _, name := range r.circuit.Names() {
		v, err := r.circuit.Evaluate(name)
		if err != nil {
			fmt.Fprintf(&sb, "%s: %v\n", name, err)
			continue
		}
		fmt.Fprintf(&sb, "%s: %d\n", name, v)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// Close releases resources.
func (r *Runtime) Close() error {
	if r.store != nil {
		return r.store.Close()
	}
	return nil
}

func (r *Runtime) writeThrough() bool {
	return r.persistMode == PersistAlways && r.store != nil
}

func (r *Runtime) warnUnbound() {
	if missing := r.circuit.Unbound(); len(missing) > 0 {
		r.log.WithField("wires", strings.Join(missing, ",")).Warn("referenced wires are not driven")
	}
}

// bind assigns a gate and writes it through in PersistAlways mode.
func (r *Runtime) bind(name string, g expr.Gate) error {
	r.circuit.Assign(name, g)
	if r.writeThrough() {
		if err := r.store.Put(name, g); err != nil {
			return fmt.Errorf("persist %s: %w", name, err)
		}
	}
	return nil
}
