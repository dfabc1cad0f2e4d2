// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package token defines the token types of the wire assignment language.
package token

// Token represents a wire language token type.
type Token int

const (
	EOF Token = iota
	NEWLINE
	NUMBER // 123
	IDENT  // x, lf
	WORD   // anything else that is not whitespace

	// Operators
	NOT
	AND
	OR
	LSHIFT
	RSHIFT
	ARROW // ->
)

// Arrow separates an expression from the wire it drives.
const Arrow = "->"

var keywords = map[string]Token{
	"NOT":    NOT,
	"AND":    AND,
	"OR":     OR,
	"LSHIFT": LSHIFT,
	"RSHIFT": RSHIFT,
}

// Lookup classifies a whitespace-delimited word.
func Lookup(word string) Token {
	if word == Arrow {
		return ARROW
	}
	if tok, ok := keywords[word]; ok {
		return tok
	}
	if IsNumber(word) {
		return NUMBER
	}
	if IsIdent(word) {
		return IDENT
	}
	return WORD
}

// IsNumber returns true if s is a non-empty run of decimal digits.
func IsNumber(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// IsIdent returns true if s is a valid wire name: one or more lowercase ASCII letters.
func IsIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'a' || s[i] > 'z' {
			return false
		}
	}
	return true
}

// String returns the string representation of a token.
func (t Token) String() string {
	switch t {
	case EOF:
		return "EOF"
	case NEWLINE:
		return "NEWLINE"
	case NUMBER:
		return "NUMBER"
	case IDENT:
		return "IDENT"
	case WORD:
		return "WORD"
	case NOT:
		return "NOT"
	case AND:
		return "AND"
	case OR:
		return "OR"
	case LSHIFT:
		return "LSHIFT"
	case RSHIFT:
		return "RSHIFT"
	case ARROW:
		return "ARROW"
	}
	return "UNKNOWN"
}

// IsBinary returns true if the token is an infix gate operator.
func (t Token) IsBinary() bool {
	switch t {
	case AND, OR, LSHIFT, RSHIFT:
		return true
	}
	return false
}
