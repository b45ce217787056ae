// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	errParse      = errors.New("expression syntax error")
	errDivideZero = errors.New("division by zero")
)

type tokenKind byte

const (
	tokenEnd tokenKind = iota
	tokenNumber
	tokenIdentifier
	tokenOp
	tokenLParen
	tokenRParen
)

type token struct {
	kind  tokenKind
	text  string
	value int64
}

// Binary operators by precedence. All are left-associative.
type binaryOp struct {
	prec int
	eval func(a, b int64) (int64, error)
}

var binaryOps = map[string]binaryOp{
	"|":  {1, func(a, b int64) (int64, error) { return a | b, nil }},
	"^":  {2, func(a, b int64) (int64, error) { return a ^ b, nil }},
	"&":  {3, func(a, b int64) (int64, error) { return a & b, nil }},
	"<<": {4, func(a, b int64) (int64, error) { return a << uint(b&63), nil }},
	">>": {4, func(a, b int64) (int64, error) { return a >> uint(b&63), nil }},
	"+":  {5, func(a, b int64) (int64, error) { return a + b, nil }},
	"-":  {5, func(a, b int64) (int64, error) { return a - b, nil }},
	"*":  {6, func(a, b int64) (int64, error) { return a * b, nil }},
	"/":  {6, divide(func(a, b int64) int64 { return a / b })},
	"%":  {6, divide(func(a, b int64) int64 { return a % b })},
}

func divide(fn func(a, b int64) int64) func(a, b int64) (int64, error) {
	return func(a, b int64) (int64, error) {
		if b == 0 {
			return 0, errDivideZero
		}
		return fn(a, b), nil
	}
}

// Prefix operators. '<' and '>' select the low and high byte.
var unaryOps = map[string]func(v int64) int64{
	"-": func(v int64) int64 { return -v },
	"+": func(v int64) int64 { return v },
	"~": func(v int64) int64 { return ^v },
	"<": func(v int64) int64 { return v & 0xff },
	">": func(v int64) int64 { return (v >> 8) & 0xff },
}

type resolver interface {
	resolveIdentifier(s string) (int64, error)
}

// An exprParser evaluates integer expressions typed at the monitor prompt.
type exprParser struct {
	hexMode bool
}

func newExprParser() *exprParser {
	return &exprParser{}
}

// Parse evaluates expr, looking up identifiers with r.
func (p *exprParser) Parse(expr string, r resolver) (int64, error) {
	e := &evaluation{scanner: scanner{src: expr, hexMode: p.hexMode}, r: r}
	if err := e.advance(true); err != nil {
		return 0, err
	}
	v, err := e.binary(1)
	if err != nil {
		return 0, err
	}
	if e.tok.kind != tokenEnd {
		return 0, fmt.Errorf("unexpected %q: %w", e.tok.text, errParse)
	}
	return v, nil
}

type evaluation struct {
	scanner
	r resolver
}

func (e *evaluation) binary(minPrec int) (int64, error) {
	lhs, err := e.unary()
	if err != nil {
		return 0, err
	}
	for {
		op, ok := binaryOps[e.tok.text]
		if e.tok.kind != tokenOp || !ok || op.prec < minPrec {
			return lhs, nil
		}
		if err := e.advance(true); err != nil {
			return 0, err
		}
		rhs, err := e.binary(op.prec + 1)
		if err != nil {
			return 0, err
		}
		if lhs, err = op.eval(lhs, rhs); err != nil {
			return 0, err
		}
	}
}

func (e *evaluation) unary() (int64, error) {
	tok := e.tok
	switch tok.kind {
	case tokenOp:
		fn, ok := unaryOps[tok.text]
		if !ok {
			return 0, fmt.Errorf("unexpected %q: %w", tok.text, errParse)
		}
		if err := e.advance(true); err != nil {
			return 0, err
		}
		v, err := e.unary()
		if err != nil {
			return 0, err
		}
		return fn(v), nil

	case tokenLParen:
		if err := e.advance(true); err != nil {
			return 0, err
		}
		v, err := e.binary(1)
		if err != nil {
			return 0, err
		}
		if e.tok.kind != tokenRParen {
			return 0, fmt.Errorf("missing ')': %w", errParse)
		}
		return v, e.advance(false)

	case tokenNumber:
		return tok.value, e.advance(false)

	case tokenIdentifier:
		v, err := e.r.resolveIdentifier(tok.text)
		if err != nil {
			return 0, err
		}
		return v, e.advance(false)
	}
	return 0, fmt.Errorf("unexpected end of expression: %w", errParse)
}

// A scanner splits an expression into tokens. Whether an operand or an
// operator is expected decides how '%' is read: as a binary literal
// prefix or as the modulo operator.
type scanner struct {
	src     string
	pos     int
	hexMode bool
	tok     token
}

func (s *scanner) advance(operand bool) error {
	for s.pos < len(s.src) && (s.src[s.pos] == ' ' || s.src[s.pos] == '\t') {
		s.pos++
	}
	if s.pos >= len(s.src) {
		s.tok = token{kind: tokenEnd}
		return nil
	}

	rest := s.src[s.pos:]
	c := rest[0]
	switch {
	case c == '(':
		s.emit(tokenLParen, 1)
	case c == ')':
		s.emit(tokenRParen, 1)
	case c == '$':
		return s.number(1, 16, isHex)
	case c == '%' && operand && len(rest) > 1 && isBinary(rest[1]):
		return s.number(1, 2, isBinary)
	case c == '\'':
		if len(rest) < 3 || rest[2] != '\'' {
			return fmt.Errorf("bad character literal: %w", errParse)
		}
		s.tok = token{kind: tokenNumber, text: rest[:3], value: int64(rest[1])}
		s.pos += 3
	case strings.HasPrefix(rest, "<<"), strings.HasPrefix(rest, ">>"):
		s.emit(tokenOp, 2)
	case strings.ContainsRune("+-*/%&|^~<>", rune(c)):
		s.emit(tokenOp, 1)
	case isDecimal(c):
		return s.decimalNumber(rest)
	case isIdentifier(c):
		return s.identifier()
	default:
		return fmt.Errorf("unexpected %q: %w", c, errParse)
	}
	return nil
}

func (s *scanner) emit(kind tokenKind, n int) {
	s.tok = token{kind: kind, text: s.src[s.pos : s.pos+n]}
	s.pos += n
}

func (s *scanner) decimalNumber(rest string) error {
	if len(rest) > 2 && rest[0] == '0' {
		switch rest[1] {
		case 'x', 'X':
			return s.number(2, 16, isHex)
		case 'b', 'B':
			if isBinary(rest[2]) {
				return s.number(2, 2, isBinary)
			}
		case 'd', 'D':
			return s.number(2, 10, isDecimal)
		}
	}
	if s.hexMode {
		return s.number(0, 16, isHex)
	}
	return s.number(0, 10, isDecimal)
}

// Scan a number after skipping a prefix of the given length.
func (s *scanner) number(prefix, base int, digit func(c byte) bool) error {
	start := s.pos + prefix
	end := start
	for end < len(s.src) && digit(s.src[end]) {
		end++
	}
	if end == start {
		return fmt.Errorf("missing digits: %w", errParse)
	}
	v, err := strconv.ParseInt(s.src[start:end], base, 64)
	if err != nil {
		return fmt.Errorf("bad number %q: %w", s.src[s.pos:end], errParse)
	}
	s.tok = token{kind: tokenNumber, text: s.src[s.pos:end], value: v}
	s.pos = end
	return nil
}

// Scan an identifier. In hex mode a word made only of hex digits is a
// number, so "ff" means $FF.
func (s *scanner) identifier() error {
	end := s.pos
	for end < len(s.src) && (isIdentifier(s.src[end]) || isDecimal(s.src[end])) {
		end++
	}
	word := s.src[s.pos:end]
	if s.hexMode && strings.IndexFunc(word, func(r rune) bool { return !isHex(byte(r)) }) < 0 {
		return s.number(0, 16, isHex)
	}
	s.tok = token{kind: tokenIdentifier, text: word}
	s.pos = end
	return nil
}

func isDecimal(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHex(c byte) bool {
	return isDecimal(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isBinary(c byte) bool {
	return c == '0' || c == '1'
}

func isIdentifier(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' || c == '.'
}
