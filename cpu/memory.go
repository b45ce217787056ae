// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

// Memory is the bus seen by the CPU. Every read and write the chip would
// put on the bus becomes exactly one LoadByte or StoreByte call, so an
// implementation may attach side effects to addresses (memory-mapped I/O).
type Memory interface {
	LoadByte(addr uint16) byte
	StoreByte(addr uint16, v byte)
}

// FlatMemory is 64K of plain RAM with no mapped devices.
type FlatMemory struct {
	b [64 * 1024]byte
}

// NewFlatMemory returns zeroed RAM.
func NewFlatMemory() *FlatMemory {
	return &FlatMemory{}
}

func (m *FlatMemory) LoadByte(addr uint16) byte {
	return m.b[addr]
}

// LoadBytes fills b with the bytes starting at addr, wrapping past $FFFF
// to $0000.
func (m *FlatMemory) LoadBytes(addr uint16, b []byte) {
	for i := range b {
		b[i] = m.b[addr+uint16(i)]
	}
}

// LoadAddress loads a little-endian 16-bit value from addr and addr+1.
func (m *FlatMemory) LoadAddress(addr uint16) uint16 {
	return uint16(m.b[addr]) | uint16(m.b[addr+1])<<8
}

func (m *FlatMemory) StoreByte(addr uint16, v byte) {
	m.b[addr] = v
}

// StoreBytes copies b to memory at addr, wrapping like LoadBytes.
func (m *FlatMemory) StoreBytes(addr uint16, b []byte) {
	for i, v := range b {
		m.b[addr+uint16(i)] = v
	}
}

// StoreAddress stores a little-endian 16-bit value at addr and addr+1.
func (m *FlatMemory) StoreAddress(addr uint16, v uint16) {
	m.b[addr] = byte(v)
	m.b[addr+1] = byte(v >> 8)
}

// stackAddress maps a stack pointer value into page one.
func stackAddress(sp byte) uint16 {
	return 0x0100 | uint16(sp)
}
