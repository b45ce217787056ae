// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

// Registers contains the state of all 6502 registers.
type Registers struct {
	A  byte   // accumulator
	X  byte   // X indexing register
	Y  byte   // Y indexing register
	SP byte   // stack pointer ($100 + SP = stack memory location)
	PC uint16 // program counter
	PS byte   // processor status flags
}

// Bits assigned to the processor status byte
const (
	CarryBit            = 1 << 0
	ZeroBit             = 1 << 1
	InterruptDisableBit = 1 << 2
	DecimalBit          = 1 << 3
	BreakBit            = 1 << 4
	ReservedBit         = 1 << 5 // reads as 1; forced on by every fetch
	OverflowBit         = 1 << 6
	SignBit             = 1 << 7
)

// Init initializes all registers. A, X, Y = 0. SP = 0xff. PC = 0. Only the
// reserved status bit is set.
func (r *Registers) Init() {
	r.A = 0
	r.X = 0
	r.Y = 0
	r.SP = 0xff
	r.PC = 0
	r.PS = ReservedBit
}

// Set turns on the status bits in mask.
func (r *Registers) Set(mask byte) {
	r.PS |= mask
}

// Clear turns off the status bits in mask.
func (r *Registers) Clear(mask byte) {
	r.PS &^= mask
}

// Test returns true if any of the status bits in mask is set.
func (r *Registers) Test(mask byte) bool {
	return r.PS&mask != 0
}

// Put sets or clears the status bits in mask.
func (r *Registers) Put(mask byte, on bool) {
	if on {
		r.PS |= mask
	} else {
		r.PS &^= mask
	}
}

// The flag derivations below take the unmasked 16-bit result of an 8-bit
// operation, so bit 8 still holds the carry out.

func (r *Registers) zeroFrom(result uint16) {
	r.Put(ZeroBit, result&0xff == 0)
}

func (r *Registers) signFrom(result uint16) {
	r.Put(SignBit, result&0x80 != 0)
}

func (r *Registers) carryFrom(result uint16) {
	r.Put(CarryBit, result&0xff00 != 0)
}

func (r *Registers) overflowFrom(result, a, b uint16) {
	r.Put(OverflowBit, (result^a)&(result^b)&0x80 != 0)
}

func (r *Registers) updateNZ(result uint16) {
	r.zeroFrom(result)
	r.signFrom(result)
}

func (r *Registers) carry() uint16 {
	return uint16(r.PS & CarryBit)
}
