// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package scanner provides a streaming lexer for wire assignment lines.
package scanner

import (
	"bufio"
	"io"
	"strings"
	"unicode"

	"nickandperla.net/wires/internal/token"
)

// Scanner tokenizes wire source word-by-word.
type Scanner struct {
	reader *bufio.Reader
	buf    strings.Builder
	arrow  bool // An arrow was read while flushing the previous word
	line   int  // Current line number (1-based)
}

// Item represents a scanned token with its value.
type Item struct {
	Token token.Token
	Value string
	Line  int // Line number where this token started
}

// New creates a new Scanner from an io.Reader.
func New(r io.Reader) *Scanner {
	return &Scanner{
		reader: bufio.NewReader(r),
		line:   1,
	}
}

// NewFromString creates a new Scanner from a string.
func NewFromString(s string) *Scanner {
	return New(strings.NewReader(s))
}

// Next returns the next token from the input. Newlines are reported as
// NEWLINE items so callers can split statements; other whitespace is skipped.
func (s *Scanner) Next() (*Item, error) {
	if s.arrow {
		s.arrow = false
		return &Item{Token: token.ARROW, Value: token.Arrow, Line: s.line}, nil
	}

	s.buf.Reset()

	for {
		r, _, err := s.reader.ReadRune()
		if err == io.EOF {
			if s.buf.Len() > 0 {
				return s.word(), nil
			}
			return &Item{Token: token.EOF, Line: s.line}, nil
		}
		if err != nil {
			return nil, err
		}

		if r == '\n' {
			if s.buf.Len() > 0 {
				s.reader.UnreadRune()
				return s.word(), nil
			}
			item := &Item{Token: token.NEWLINE, Value: "\n", Line: s.line}
			s.line++
			return item, nil
		}

		if unicode.IsSpace(r) {
			if s.buf.Len() > 0 {
				return s.word(), nil
			}
			continue
		}

		// An arrow ends the current word even without surrounding spaces.
		if r == '-' {
			next, _, err := s.reader.ReadRune()
			if err != nil && err != io.EOF {
				return nil, err
			}
			if err == nil && next == '>' {
				if s.buf.Len() > 0 {
					s.arrow = true
					return s.word(), nil
				}
				return &Item{Token: token.ARROW, Value: token.Arrow, Line: s.line}, nil
			}
			if err == nil {
				s.reader.UnreadRune()
			}
		}

		s.buf.WriteRune(r)
	}
}

// word returns the accumulated buffer as a classified item.
func (s *Scanner) word() *Item {
	v := s.buf.String()
	return &Item{Token: token.Lookup(v), Value: v, Line: s.line}
}
