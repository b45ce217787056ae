// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu_test

import (
	"testing"

	"github.com/beevik/fake6502/cpu"
	"github.com/beevik/fake6502/image"
)

// busMemory is a flat memory that records the address of every bus read
// and write the CPU performs.
type busMemory struct {
	*cpu.FlatMemory
	reads  []uint16
	writes []uint16
}

func newBusMemory() *busMemory {
	return &busMemory{FlatMemory: cpu.NewFlatMemory()}
}

func (m *busMemory) LoadByte(addr uint16) byte {
	m.reads = append(m.reads, addr)
	return m.FlatMemory.LoadByte(addr)
}

func (m *busMemory) StoreByte(addr uint16, v byte) {
	m.writes = append(m.writes, addr)
	m.FlatMemory.StoreByte(addr, v)
}

func (m *busMemory) clear() {
	m.reads = m.reads[:0]
	m.writes = m.writes[:0]
}

// poke stores bytes without recording bus activity.
func (m *busMemory) poke(addr uint16, b ...byte) {
	m.FlatMemory.StoreBytes(addr, b)
}

// newCPU creates a reset CPU of the given variant whose memory holds the
// hex dump. Bus activity from the reset is discarded.
func newCPU(t *testing.T, v cpu.Variant, dump string) (*cpu.CPU, *busMemory) {
	t.Helper()

	mem := newBusMemory()
	image.Load(mem.FlatMemory, image.MustParseHexDump(dump)...)
	c := cpu.NewCPU(v, mem)
	c.Reset()
	mem.clear()
	return c, mem
}

// exec writes one instruction at PC, clears the cycle and bus counters
// and steps the CPU once.
func exec(c *cpu.CPU, mem *busMemory, code ...byte) {
	mem.poke(c.Reg.PC, code...)
	c.Cycles = 0
	c.Instructions = 0
	mem.clear()
	c.Step()
}

func stepCPU(c *cpu.CPU, steps int) {
	for i := 0; i < steps; i++ {
		c.Step()
	}
}

func expectPC(t *testing.T, c *cpu.CPU, pc uint16) {
	t.Helper()
	if c.Reg.PC != pc {
		t.Errorf("PC incorrect. exp: $%04X, got: $%04X", pc, c.Reg.PC)
	}
}

func expectEA(t *testing.T, c *cpu.CPU, ea uint16) {
	t.Helper()
	if c.EA != ea {
		t.Errorf("EA incorrect. exp: $%04X, got: $%04X", ea, c.EA)
	}
}

func expectCycles(t *testing.T, c *cpu.CPU, cycles uint64) {
	t.Helper()
	if c.Cycles != cycles {
		t.Errorf("Cycles incorrect. exp: %d, got: %d", cycles, c.Cycles)
	}
}

func expectACC(t *testing.T, c *cpu.CPU, acc byte) {
	t.Helper()
	if c.Reg.A != acc {
		t.Errorf("Accumulator incorrect. exp: $%02X, got: $%02X", acc, c.Reg.A)
	}
}

func expectX(t *testing.T, c *cpu.CPU, x byte) {
	t.Helper()
	if c.Reg.X != x {
		t.Errorf("X incorrect. exp: $%02X, got: $%02X", x, c.Reg.X)
	}
}

func expectY(t *testing.T, c *cpu.CPU, y byte) {
	t.Helper()
	if c.Reg.Y != y {
		t.Errorf("Y incorrect. exp: $%02X, got: $%02X", y, c.Reg.Y)
	}
}

func expectSP(t *testing.T, c *cpu.CPU, sp byte) {
	t.Helper()
	if c.Reg.SP != sp {
		t.Errorf("stack pointer incorrect. exp: $%02X, got $%02X", sp, c.Reg.SP)
	}
}

func expectMem(t *testing.T, c *cpu.CPU, addr uint16, v byte) {
	t.Helper()
	got := c.Mem.(*busMemory).FlatMemory.LoadByte(addr)
	if got != v {
		t.Errorf("Memory at $%04X incorrect. exp: $%02X, got: $%02X", addr, v, got)
	}
}

var flagNames = []struct {
	bit  byte
	name string
}{
	{cpu.CarryBit, "carry"},
	{cpu.ZeroBit, "zero"},
	{cpu.InterruptDisableBit, "interrupt"},
	{cpu.DecimalBit, "decimal"},
	{cpu.OverflowBit, "overflow"},
	{cpu.SignBit, "sign"},
}

// expectFlags checks that exactly the bits in 'set' are on among the
// bits in 'mask'.
func expectFlags(t *testing.T, c *cpu.CPU, mask, set byte) {
	t.Helper()
	for _, f := range flagNames {
		if mask&f.bit == 0 {
			continue
		}
		want := set&f.bit != 0
		if got := c.Reg.Test(f.bit); got != want {
			t.Errorf("%s flag incorrect. exp: %v, got: %v (PS=$%02X)", f.name, want, got, c.Reg.PS)
		}
	}
}
