// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package harte loads single-step processor test vectors and checks a cpu
// variant against them. Each vector gives the machine state before and
// after one instruction together with the bus activity of every cycle:
//
//	{"name": "a9 42 00", "initial": {"pc": 512, "s": 253, "a": 0, "x": 0,
//	 "y": 0, "p": 36, "ram": [[512, 169], [513, 66]]}, "final": {...},
//	 "cycles": [[512, 169, "read"], [513, 66, "read"]]}
package harte

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-faster/jx"

	"github.com/beevik/fake6502/cpu"
	"github.com/beevik/fake6502/log"
)

// ErrFormat is returned for JSON that is well formed but does not have
// the shape of a test vector.
var ErrFormat = errors.New("malformed test vector")

// A Cell is one initialized or expected byte of memory.
type Cell struct {
	Addr  uint16
	Value byte
}

// A BusCycle is the bus activity of one clock cycle.
type BusCycle struct {
	Addr  uint16
	Value byte
	Write bool
}

// State is a snapshot of the registers and the memory cells a test
// touches.
type State struct {
	PC            uint16
	S, A, X, Y, P byte
	RAM           []Cell
}

// A Test is a single-instruction test vector.
type Test struct {
	Name    string
	Initial State
	Final   State
	Bus     []BusCycle
	Cycles  int // number of bus cycles
}

// A MismatchError reports the first difference between the expected
// final state of a test and the state the cpu reached.
type MismatchError struct {
	Test  string
	Field string
	Want  int
	Got   int
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s: %s is $%X, want $%X", e.Test, e.Field, e.Got, e.Want)
}

// Load reads and decodes a file of test vectors.
func Load(path string) ([]Test, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	tests, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tests, nil
}

// Decode parses a JSON array of test vectors.
func Decode(data []byte) ([]Test, error) {
	return decode(jx.DecodeBytes(data))
}

// DecodeReader parses a JSON array of test vectors from r.
func DecodeReader(r io.Reader) ([]Test, error) {
	return decode(jx.Decode(r, 64*1024))
}

func decode(d *jx.Decoder) ([]Test, error) {
	var tests []Test
	err := d.Arr(func(d *jx.Decoder) error {
		t, err := decodeTest(d)
		if err != nil {
			return fmt.Errorf("test %d: %w", len(tests), err)
		}
		tests = append(tests, t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tests, nil
}

func decodeTest(d *jx.Decoder) (Test, error) {
	var t Test
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "name":
			t.Name, err = d.Str()
		case "initial":
			t.Initial, err = decodeState(d)
		case "final":
			t.Final, err = decodeState(d)
		case "cycles":
			err = d.Arr(func(d *jx.Decoder) error {
				c, err := decodeBusCycle(d)
				t.Bus = append(t.Bus, c)
				return err
			})
			t.Cycles = len(t.Bus)
		default:
			err = d.Skip()
		}
		return err
	})
	return t, err
}

func decodeState(d *jx.Decoder) (State, error) {
	var s State
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "pc":
			s.PC, err = decodeWord(d)
		case "s":
			s.S, err = decodeByte(d)
		case "a":
			s.A, err = decodeByte(d)
		case "x":
			s.X, err = decodeByte(d)
		case "y":
			s.Y, err = decodeByte(d)
		case "p":
			s.P, err = decodeByte(d)
		case "ram":
			err = d.Arr(func(d *jx.Decoder) error {
				var c Cell
				err := decodeTuple(d,
					func(d *jx.Decoder) (err error) { c.Addr, err = decodeWord(d); return },
					func(d *jx.Decoder) (err error) { c.Value, err = decodeByte(d); return },
				)
				s.RAM = append(s.RAM, c)
				return err
			})
		default:
			err = d.Skip()
		}
		return err
	})
	return s, err
}

func decodeBusCycle(d *jx.Decoder) (BusCycle, error) {
	var c BusCycle
	err := decodeTuple(d,
		func(d *jx.Decoder) (err error) { c.Addr, err = decodeWord(d); return },
		func(d *jx.Decoder) (err error) { c.Value, err = decodeByte(d); return },
		func(d *jx.Decoder) error {
			kind, err := d.Str()
			if err != nil {
				return err
			}
			switch kind {
			case "read":
			case "write":
				c.Write = true
			default:
				return fmt.Errorf("bus cycle kind %q: %w", kind, ErrFormat)
			}
			return nil
		},
	)
	return c, err
}

func decodeByte(d *jx.Decoder) (byte, error) {
	v, err := decodeUint(d, 0xff)
	return byte(v), err
}

func decodeWord(d *jx.Decoder) (uint16, error) {
	v, err := decodeUint(d, 0xffff)
	return uint16(v), err
}

// decodeUint reads an unsigned integer at full width and rejects values
// above limit. The narrow jx decoders truncate instead.
func decodeUint(d *jx.Decoder, limit uint64) (uint64, error) {
	v, err := d.UInt64()
	if err != nil {
		return 0, err
	}
	if v > limit {
		return 0, fmt.Errorf("%d exceeds $%X: %w", v, limit, ErrFormat)
	}
	return v, nil
}

// decodeTuple decodes a fixed-length JSON array, one element per field.
func decodeTuple(d *jx.Decoder, fields ...func(d *jx.Decoder) error) error {
	n := 0
	err := d.Arr(func(d *jx.Decoder) error {
		if n >= len(fields) {
			n++
			return d.Skip()
		}
		err := fields[n](d)
		n++
		return err
	})
	if err != nil {
		return err
	}
	if n != len(fields) {
		return fmt.Errorf("%d elements, want %d: %w", n, len(fields), ErrFormat)
	}
	return nil
}

// writeRecorder is a flat memory that logs every store.
type writeRecorder struct {
	*cpu.FlatMemory
	writes []BusCycle
}

func (m *writeRecorder) StoreByte(addr uint16, v byte) {
	m.writes = append(m.writes, BusCycle{Addr: addr, Value: v, Write: true})
	m.FlatMemory.StoreByte(addr, v)
}

// Run executes the test's instruction on a fresh cpu of variant v. It
// checks the final registers and memory, the cycle count and the sequence
// of bus writes, and returns a *MismatchError for the first difference.
func (t *Test) Run(v cpu.Variant) error {
	mem := &writeRecorder{FlatMemory: cpu.NewFlatMemory()}
	for _, c := range t.Initial.RAM {
		mem.FlatMemory.StoreByte(c.Addr, c.Value)
	}

	c := cpu.NewCPU(v, mem)
	c.Reg = cpu.Registers{
		A:  t.Initial.A,
		X:  t.Initial.X,
		Y:  t.Initial.Y,
		SP: t.Initial.S,
		PC: t.Initial.PC,
		PS: t.Initial.P,
	}
	c.Step()

	mismatch := func(field string, want, got int) error {
		err := &MismatchError{Test: t.Name, Field: field, Want: want, Got: got}
		log.ModHarte.WithField("variant", v.Name).Debugf("%v", err)
		return err
	}

	f := &t.Final
	regs := []struct {
		name      string
		want, got int
	}{
		{"PC", int(f.PC), int(c.Reg.PC)},
		{"S", int(f.S), int(c.Reg.SP)},
		{"A", int(f.A), int(c.Reg.A)},
		{"X", int(f.X), int(c.Reg.X)},
		{"Y", int(f.Y), int(c.Reg.Y)},
		{"P", int(f.P), int(c.Reg.PS)},
	}
	for _, r := range regs {
		if r.want != r.got {
			return mismatch(r.name, r.want, r.got)
		}
	}

	for _, cell := range f.RAM {
		if got := mem.LoadByte(cell.Addr); got != cell.Value {
			return mismatch(fmt.Sprintf("$%04X", cell.Addr), int(cell.Value), int(got))
		}
	}

	if int(c.Cycles) != t.Cycles {
		return mismatch("cycles", t.Cycles, int(c.Cycles))
	}

	var want []BusCycle
	for _, b := range t.Bus {
		if b.Write {
			want = append(want, b)
		}
	}
	if len(want) != len(mem.writes) {
		return mismatch("writes", len(want), len(mem.writes))
	}
	for i, w := range want {
		got := mem.writes[i]
		if got.Addr != w.Addr {
			return mismatch(fmt.Sprintf("write %d address", i), int(w.Addr), int(got.Addr))
		}
		if got.Value != w.Value {
			return mismatch(fmt.Sprintf("write %d value", i), int(w.Value), int(got.Value))
		}
	}
	return nil
}

// RunAll runs every test and joins the failures. It returns the number of
// tests that passed.
func RunAll(tests []Test, v cpu.Variant) (passed int, err error) {
	var errs []error
	for i := range tests {
		if err := tests[i].Run(v); err != nil {
			errs = append(errs, err)
			continue
		}
		passed++
	}
	return passed, errors.Join(errs...)
}
