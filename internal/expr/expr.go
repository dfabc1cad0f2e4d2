// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package expr defines gate expression types.
package expr

import (
	"strconv"
	"strings"

	"nickandperla.net/wires/internal/token"
)

// Operand is a value source inside a gate: a Literal or a Ref.
type Operand interface {
	// String returns the source form of the operand.
	String() string
	operand()
}

// Literal is a constant 16-bit signal.
type Literal uint16

func (l Literal) String() string { return strconv.FormatUint(uint64(l), 10) }
func (Literal) operand()         {}

// Ref names another wire whose signal is used as the value.
type Ref string

func (r Ref) String() string { return string(r) }
func (Ref) operand()         {}

// Gate is the interface all gate expressions implement.
// The set of gates is closed: Direct, Not, And, Or, LShift and RShift.
type Gate interface {
	// String returns the serializable representation of the gate.
	String() string
	// Operands returns the gate inputs in source order.
	Operands() []Operand
	gate()
}

// Direct passes its input through unchanged (x -> y).
type Direct struct {
	In Operand
}

func (d Direct) String() string      { return d.In.String() }
func (d Direct) Operands() []Operand { return []Operand{d.In} }
func (Direct) gate()                 {}

// Not is the bitwise complement of its input.
type Not struct {
	In Operand
}

func (n Not) String() string      { return unary(token.NOT, n.In) }
func (n Not) Operands() []Operand { return []Operand{n.In} }
func (Not) gate()                 {}

// And is the bitwise conjunction of two inputs.
type And struct {
	L, R Operand
}

func (a And) String() string      { return binary(a.L, token.AND, a.R) }
func (a And) Operands() []Operand { return []Operand{a.L, a.R} }
func (And) gate()                 {}

// Or is the bitwise disjunction of two inputs.
type Or struct {
	L, R Operand
}

func (o Or) String() string      { return binary(o.L, token.OR, o.R) }
func (o Or) Operands() []Operand { return []Operand{o.L, o.R} }
func (Or) gate()                 {}

// LShift shifts In left by By bits.
type LShift struct {
	In, By Operand
}

func (s LShift) String() string      { return binary(s.In, token.LSHIFT, s.By) }
func (s LShift) Operands() []Operand { return []Operand{s.In, s.By} }
func (LShift) gate()                 {}

// RShift shifts In right by By bits.
type RShift struct {
	In, By Operand
}

func (s RShift) String() string      { return binary(s.In, token.RSHIFT, s.By) }
func (s RShift) Operands() []Operand { return []Operand{s.In, s.By} }
func (RShift) gate()                 {}

func unary(op token.Token, in Operand) string {
	return op.String() + " " + in.String()
}

func binary(l Operand, op token.Token, r Operand) string {
	var sb strings.Builder
	sb.WriteString(l.String())
	sb.WriteString(" ")
	sb.WriteString(op.String())
	sb.WriteString(" ")
	sb.WriteString(r.String())
	return sb.String()
}

// Refs returns the wire names a gate depends on, in source order.
func Refs(g Gate) []string {
	var names []string
	for _, op := range g.Operands() {
		if r, ok := op.(Ref); ok {
			names = append(names, string(r))
		}
	}
	return names
}

// Assignment binds a gate to the wire it drives.
type Assignment struct {
	Wire string
	Gate Gate
	Line int
}

func (a Assignment) String() string {
	if a.Gate == nil {
		return token.Arrow + " " + a.Wire
	}
	return a.Gate.String() + " " + token.Arrow + " " + a.Wire
}
