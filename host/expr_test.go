// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"errors"
	"fmt"
	"testing"
)

type testResolver map[string]int64

func (r testResolver) resolveIdentifier(s string) (int64, error) {
	v, ok := r[s]
	if !ok {
		return 0, fmt.Errorf("identifier '%s' not found", s)
	}
	return v, nil
}

var exprRegs = testResolver{"a": 5, "x": 0x80, "pc": 0x0600}

func TestExpressions(t *testing.T) {
	tests := []struct {
		expr string
		want int64
	}{
		{"1+2*3", 7},
		{"(1+2)*3", 9},
		{"10 - 2 - 3", 5},
		{"100 / 7 / 2", 7},
		{"7 % 4", 3},
		{"$10 + 0x10", 32},
		{"%1010", 10},
		{"0b11 + 0d9", 12},
		{"'A'", 65},
		{"<$1234", 0x34},
		{">$1234", 0x12},
		{"-1", -1},
		{"~0", -1},
		{"-(2+3)", -5},
		{"1 << 4 | 1", 17},
		{"$ff & $0f ^ $03", 0x0c},
		{"a + 1", 6},
		{"pc + x * 2", 0x0700},
	}

	p := newExprParser()
	for _, tt := range tests {
		got, err := p.Parse(tt.expr, exprRegs)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tt.expr, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%q: exp: %d, got: %d", tt.expr, tt.want, got)
		}
	}
}

func TestExpressionsHexMode(t *testing.T) {
	tests := []struct {
		expr string
		want int64
	}{
		{"10", 0x10},
		{"ff + 1", 0x100},
		{"$10", 0x10},
		{"0d10", 10},
		{"x", 0x80},
		{"pc + 2", 0x0602},
	}

	p := newExprParser()
	p.hexMode = true
	for _, tt := range tests {
		got, err := p.Parse(tt.expr, exprRegs)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tt.expr, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%q: exp: $%X, got: $%X", tt.expr, tt.want, got)
		}
	}
}

func TestExpressionErrors(t *testing.T) {
	tests := []struct {
		expr string
		want error
	}{
		{"1 +", errParse},
		{"(1", errParse},
		{"1 2", errParse},
		{"'A", errParse},
		{"$", errParse},
		{"1 / 0", errDivideZero},
		{"5 % (2-2)", errDivideZero},
		{"1 # 2", errParse},
	}

	p := newExprParser()
	for _, tt := range tests {
		_, err := p.Parse(tt.expr, exprRegs)
		if !errors.Is(err, tt.want) {
			t.Errorf("%q: exp error %v, got %v", tt.expr, tt.want, err)
		}
	}

	if _, err := p.Parse("foo", exprRegs); err == nil {
		t.Error("unknown identifier: expected an error")
	}
}
