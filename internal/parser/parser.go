// Package parser turns wire assignment lines into gate expressions.
package parser

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"nickandperla.net/wires/internal/expr"
	"nickandperla.net/wires/internal/scanner"
	"nickandperla.net/wires/internal/token"
)

var (
	// ErrMalformedExpression reports a left-hand side that matches none of
	// the six gate shapes.
	ErrMalformedExpression = errors.New("malformed expression")
	// ErrMalformedAssignment reports a missing "-> name" suffix or an
	// invalid target name.
	ErrMalformedAssignment = errors.New("malformed assignment")
)

// ParseLine parses a single "<expression> -> <wire>" line.
func ParseLine(line string) (expr.Assignment, error) {
	items, err := collect(scanner.NewFromString(line))
	if err != nil {
		return expr.Assignment{}, err
	}
	if len(items) > 1 {
		return expr.Assignment{}, fmt.Errorf("%w: %q spans more than one line", ErrMalformedAssignment, line)
	}
	var stmt []*scanner.Item
	if len(items) == 1 {
		stmt = items[0]
	}
	return assignment(stmt, line)
}

// ParseExpr parses the left-hand side of an assignment on its own.
func ParseExpr(src string) (expr.Gate, error) {
	sc := scanner.NewFromString(src)
	var lhs []*scanner.Item
	for {
		item, err := sc.Next()
		if err != nil {
			return nil, err
		}
		if item.Token == token.EOF {
			break
		}
		if item.Token == token.NEWLINE {
			continue
		}
		lhs = append(lhs, item)
	}
	return gate(lhs, src)
}

// Parse reads one assignment per line from r. Blank lines are skipped.
// Errors are prefixed with the 1-based line number.
func Parse(r io.Reader) ([]expr.Assignment, error) {
	statements, err := collect(scanner.New(r))
	if err != nil {
		return nil, err
	}
	var out []expr.Assignment
	for _, stmt := range statements {
		a, err := assignment(stmt, source(stmt))
		if err != nil {
			return out, fmt.Errorf("line %d: %w", stmt[0].Line, err)
		}
		out = append(out, a)
	}
	return out, nil
}

// collect splits the token stream into non-empty statements, one per line.
func collect(sc *scanner.Scanner) ([][]*scanner.Item, error) {
	var (
		statements [][]*scanner.Item
		cur        []*scanner.Item
	)
	for {
		item, err := sc.Next()
		if err != nil {
			return nil, err
		}
		switch item.Token {
		case token.EOF:
			if len(cur) > 0 {
				statements = append(statements, cur)
			}
			return statements, nil
		case token.NEWLINE:
			if len(cur) > 0 {
				statements = append(statements, cur)
				cur = nil
			}
		default:
			cur = append(cur, item)
		}
	}
}

// assignment matches "<lhs> -> <ident>".
func assignment(items []*scanner.Item, src string) (expr.Assignment, error) {
	arrow := -1
	for i, it := range items {
		if it.Token == token.ARROW {
			arrow = i
			break
		}
	}
	if arrow < 0 {
		return expr.Assignment{}, fmt.Errorf("%w: missing %q in %q", ErrMalformedAssignment, token.Arrow, src)
	}
	target := items[arrow+1:]
	if len(target) != 1 || target[0].Token != token.IDENT {
		return expr.Assignment{}, fmt.Errorf("%w: invalid wire name after %q in %q", ErrMalformedAssignment, token.Arrow, src)
	}
	g, err := gate(items[:arrow], src)
	if err != nil {
		return expr.Assignment{}, err
	}
	return expr.Assignment{Wire: target[0].Value, Gate: g, Line: target[0].Line}, nil
}

// gate matches the left-hand side positionally against the six shapes.
func gate(lhs []*scanner.Item, src string) (expr.Gate, error) {
	switch len(lhs) {
	case 1:
		in, err := operand(lhs[0], src)
		if err != nil {
			return nil, err
		}
		return expr.Direct{In: in}, nil

	case 2:
		if lhs[0].Token != token.NOT {
			break
		}
		in, err := operand(lhs[1], src)
		if err != nil {
			return nil, err
		}
		return expr.Not{In: in}, nil

	case 3:
		if !lhs[1].Token.IsBinary() {
			break
		}
		l, err := operand(lhs[0], src)
		if err != nil {
			return nil, err
		}
		r, err := operand(lhs[2], src)
		if err != nil {
			return nil, err
		}
		switch lhs[1].Token {
		case token.AND:
			return expr.And{L: l, R: r}, nil
		case token.OR:
			return expr.Or{L: l, R: r}, nil
		case token.LSHIFT:
			return expr.LShift{In: l, By: r}, nil
		case token.RSHIFT:
			return expr.RShift{In: l, By: r}, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrMalformedExpression, strings.TrimSpace(src))
}

func operand(it *scanner.Item, src string) (expr.Operand, error) {
	switch it.Token {
	case token.NUMBER:
		v, err := strconv.ParseUint(it.Value, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("%w: literal %s does not fit in 16 bits in %q", ErrMalformedExpression, it.Value, src)
		}
		return expr.Literal(v), nil
	case token.IDENT:
		return expr.Ref(it.Value), nil
	}
	return nil, fmt.Errorf("%w: unexpected %q in %q", ErrMalformedExpression, it.Value, strings.TrimSpace(src))
}

// source rebuilds a readable form of a statement for error messages.
func source(items []*scanner.Item) string {
	words := make([]string, len(items))
	for i, it := range items {
		words[i] = it.Value
	}
	return strings.Join(words, " ")
}
