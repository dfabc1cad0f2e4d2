// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package circuit implements lazy, memoized evaluation of a wire circuit.
//
// A Circuit maps wire names to gate expressions and caches each wire's
// signal the first time it is computed. Cached signals stay valid until
// InvalidateAll is called; Assign never touches the cache, so callers that
// rewire a circuit after evaluating it must flush before evaluating again.
//
// A Circuit is not safe for concurrent use.
package circuit

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"nickandperla.net/wires/internal/expr"
	"nickandperla.net/wires/internal/parser"
)

var (
	// ErrUnknownWire is returned when a wire has no gate bound to it.
	ErrUnknownWire = errors.New("unknown wire")
	// ErrCycle is returned when a wire depends on itself.
	ErrCycle = errors.New("cyclic wire reference")
)

// Stats counts cache behaviour since the circuit was created.
type Stats struct {
	Hits         int // Evaluate calls answered from the cache
	Computations int // Gates actually computed
}

// Circuit is a named set of gates with a signal cache.
type Circuit struct {
	gates    map[string]expr.Gate
	signals  map[string]uint16
	visiting map[string]bool // Wires on the current evaluation path
	path     []string
	stats    Stats
	log      logrus.FieldLogger
}

// Option configures a Circuit.
type Option func(*Circuit)

// WithLogger sets the logger used for debug tracing of evaluation.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Circuit) { c.log = l }
}

// New creates an empty Circuit.
func New(opts ...Option) *Circuit {
	c := &Circuit{
		gates:    make(map[string]expr.Gate),
		signals:  make(map[string]uint16),
		visiting: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		c.log = l
	}
	return c
}

// Load parses r one assignment per line and binds every gate.
// On error, assignments before the failing line remain bound.
func (c *Circuit) Load(r io.Reader) error {
	assignments, err := parser.Parse(r)
	for _, a := range assignments {
		c.Assign(a.Wire, a.Gate)
	}
	if err != nil {
		return err
	}
	c.log.WithField("gates", len(assignments)).Debug("circuit loaded")
	return nil
}

// Assign binds g to name, replacing any previous gate. Cached signals are
// left alone; call InvalidateAll before evaluating a rewired circuit.
func (c *Circuit) Assign(name string, g expr.Gate) {
	c.gates[name] = g
}

// Wire parses src as a gate expression and binds it to name.
func (c *Circuit) Wire(name, src string) error {
	g, err := parser.ParseExpr(src)
	if err != nil {
		return fmt.Errorf("wire %s: %w", name, err)
	}
	c.Assign(name, g)
	return nil
}

// Get returns the gate bound to name.
func (c *Circuit) Get(name string) (expr.Gate, bool) {
	g, ok := c.gates[name]
	return g, ok
}

// Has returns true if a gate is bound to name.
func (c *Circuit) Has(name string) bool {
	_, ok := c.gates[name]
	return ok
}

// Names returns all bound wire names in sorted order.
func (c *Circuit) Names() []string {
	names := make([]string, 0, len(c.gates))
	for name := range c.gates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of bound wires.
func (c *Circuit) Len() int {
	return len(c.gates)
}

// Unbound returns, in sorted order, the wires referenced by some gate but
// not bound themselves. Evaluating anything that reaches them fails with
// ErrUnknownWire.
func (c *Circuit) Unbound() []string {
	seen := make(map[string]bool)
	var names []string
	for _, g := range c.gates {
		for _, ref := range expr.Refs(g) {
			if _, ok := c.gates[ref]; ok || seen[ref] {
				continue
			}
			seen[ref] = true
			names = append(names, ref)
		}
	}
	sort.Strings(names)
	return names
}

// Cached returns the cached signal for name, if any.
func (c *Circuit) Cached(name string) (uint16, bool) {
	v, ok := c.signals[name]
	return v, ok
}

// Stats returns the cache counters.
func (c *Circuit) Stats() Stats {
	return c.stats
}

// InvalidateAll discards every cached signal. Gate bindings are untouched.
func (c *Circuit) InvalidateAll() *Circuit {
	c.log.WithField("signals", len(c.signals)).Debug("cache flushed")
	clear(c.signals)
	return c
}

// Evaluate returns the signal on name, computing and caching it and every
// wire it depends on if needed.
func (c *Circuit) Evaluate(name string) (uint16, error) {
	if v, ok := c.signals[name]; ok {
		c.stats.Hits++
		return v, nil
	}

	g, ok := c.gates[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownWire, name)
	}

	if c.visiting[name] {
		return 0, fmt.Errorf("%w: %s -> %s", ErrCycle, strings.Join(c.path, " -> "), name)
	}
	c.visiting[name] = true
	c.path = append(c.path, name)
	defer func() {
		delete(c.visiting, name)
		c.path = c.path[:len(c.path)-1]
	}()

	v, err := c.compute(g)
	if err != nil {
		return 0, err
	}

	c.stats.Computations++
	c.signals[name] = v
	c.log.WithFields(logrus.Fields{"wire": name, "gate": g.String(), "signal": v}).Debug("computed")
	return v, nil
}

// compute applies g to its resolved operands.
func (c *Circuit) compute(g expr.Gate) (uint16, error) {
	switch g := g.(type) {
	case expr.Direct:
		return c.resolve(g.In)

	case expr.Not:
		v, err := c.resolve(g.In)
		if err != nil {
			return 0, err
		}
		return ^v, nil

	case expr.And:
		l, r, err := c.resolve2(g.L, g.R)
		if err != nil {
			return 0, err
		}
		return l & r, nil

	case expr.Or:
		l, r, err := c.resolve2(g.L, g.R)
		if err != nil {
			return 0, err
		}
		return l | r, nil

	case expr.LShift:
		v, n, err := c.resolve2(g.In, g.By)
		if err != nil {
			return 0, err
		}
		return v << n, nil

	case expr.RShift:
		v, n, err := c.resolve2(g.In, g.By)
		if err != nil {
			return 0, err
		}
		return v >> n, nil
	}
	return 0, fmt.Errorf("unsupported gate %T", g)
}

// resolve returns a literal's value or evaluates a referenced wire.
func (c *Circuit) resolve(op expr.Operand) (uint16, error) {
	switch op := op.(type) {
	case expr.Literal:
		return uint16(op), nil
	case expr.Ref:
		return c.Evaluate(string(op))
	}
	return 0, fmt.Errorf("unsupported operand %T", op)
}

func (c *Circuit) resolve2(a, b expr.Operand) (uint16, uint16, error) {
	x, err := c.resolve(a)
	if err != nil {
		return 0, 0, err
	}
	y, err := c.resolve(b)
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}
