// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cpu implements a cycle-counting 6502 CPU instruction
// set and emulator.
package cpu

import (
	"fmt"
	"strings"
)

// Architecture selects the CPU chip: 6502 or 65c02
type Architecture byte

const (
	// NMOS 6502 CPU
	NMOS Architecture = iota

	// CMOS 65c02 CPU
	CMOS
)

func (a Architecture) String() string {
	switch a {
	case NMOS:
		return "NMOS"
	case CMOS:
		return "CMOS"
	}
	return fmt.Sprintf("Architecture(%d)", a)
}

// A Variant selects the instruction set and the arithmetic behavior of
// an emulated chip.
type Variant struct {
	Name    string       // short name, e.g. "65c02"
	Arch    Architecture // opcode table and resolver behavior
	Decimal bool         // whether ADC and SBC honor the decimal flag
}

// Supported chip variants.
var (
	MOS6502  = Variant{Name: "6502", Arch: NMOS, Decimal: true}
	WDC65C02 = Variant{Name: "65c02", Arch: CMOS, Decimal: true}
	RP2A03   = Variant{Name: "2a03", Arch: NMOS, Decimal: false} // NES, no BCD
)

// Variants lists every supported variant.
var Variants = []Variant{MOS6502, WDC65C02, RP2A03}

// LookupVariant returns the variant with the given name. Names are
// matched case-insensitively; "nmos", "cmos" and "nes" are accepted as
// aliases.
func LookupVariant(name string) (Variant, error) {
	switch strings.ToLower(name) {
	case "6502", "nmos":
		return MOS6502, nil
	case "65c02", "cmos":
		return WDC65C02, nil
	case "2a03", "nes":
		return RP2A03, nil
	}
	return Variant{}, fmt.Errorf("unknown cpu variant %q", name)
}

// BrkHandler is an interface implemented by types that wish to be notified
// when a BRK instruction is about to be executed.
type BrkHandler interface {
	OnBrk(cpu *CPU)
}

// CPU represents a single 6502 CPU. It contains a pointer to the
// memory associated with the CPU.
type CPU struct {
	Reg          Registers       // CPU registers
	Mem          Memory          // assigned memory
	InstSet      *InstructionSet // Instruction set used by the CPU
	EA           uint16          // effective address of the last instruction
	Opcode       byte            // opcode of the last instruction
	Cycles       uint64          // total executed CPU cycles
	Instructions uint64          // total executed instructions
	LastPC       uint16          // Previous program counter
	variant      Variant
	debugger     *Debugger
	brkHandler   BrkHandler
	storeByte    func(cpu *CPU, addr uint16, v byte)
}

// Interrupt vectors
const (
	vectorNMI   = 0xfffa
	vectorReset = 0xfffc
	vectorIRQ   = 0xfffe
	vectorBRK   = 0xfffe
)

// NewCPU creates an emulated 6502 CPU bound to the specified memory.
func NewCPU(v Variant, m Memory) *CPU {
	cpu := &CPU{
		Mem:       m,
		InstSet:   GetInstructionSet(v.Arch),
		variant:   v,
		storeByte: (*CPU).storeByteNormal,
	}

	cpu.Reg.Init()
	return cpu
}

// Variant returns the chip variant the CPU emulates.
func (cpu *CPU) Variant() Variant {
	return cpu.variant
}

// SetPC updates the CPU program counter to 'addr'.
func (cpu *CPU) SetPC(addr uint16) {
	cpu.Reg.PC = addr
}

// GetInstruction returns the instruction opcode at the requested address.
func (cpu *CPU) GetInstruction(addr uint16) *Instruction {
	opcode := cpu.Mem.LoadByte(addr)
	return cpu.InstSet.Lookup(opcode)
}

// NextAddr returns the address of the next instruction following the
// instruction at addr.
func (cpu *CPU) NextAddr(addr uint16) uint16 {
	opcode := cpu.Mem.LoadByte(addr)
	inst := cpu.InstSet.Lookup(opcode)
	return addr + uint16(inst.Length)
}

// Step the cpu by one instruction.
func (cpu *CPU) Step() {
	cpu.LastPC = cpu.Reg.PC
	cpu.Opcode = cpu.Mem.LoadByte(cpu.Reg.PC)
	cpu.Reg.PC++
	cpu.Reg.PS |= ReservedBit

	inst := &cpu.InstSet.instructions[cpu.Opcode]

	// If a BRK handler has been installed, it replaces the BRK instruction.
	// The program counter is left pointing at the BRK.
	if inst.sym == symBRK && cpu.brkHandler != nil {
		cpu.Reg.PC = cpu.LastPC
		cpu.brkHandler.OnBrk(cpu)
		return
	}

	op := cpu.resolve(inst)
	inst.fn(cpu, inst, op)

	cpu.Cycles += uint64(inst.Cycles)
	cpu.Instructions++

	// Update the debugger so it can handle breakpoints.
	if cpu.debugger != nil {
		cpu.debugger.onUpdatePC(cpu, cpu.Reg.PC)
	}
}

// Reset runs the reset sequence: six discarded bus reads, then the reset
// vector is loaded. A, X, Y and the remaining status bits are untouched.
func (cpu *CPU) Reset() {
	for _, addr := range [...]uint16{0x00ff, 0x00ff, 0x00ff, 0x0100, 0x01ff, 0x01fe} {
		cpu.Mem.LoadByte(addr)
	}
	cpu.Reg.PC = cpu.read16(vectorReset)
	cpu.Reg.SP = 0xfd
	cpu.Reg.PS |= InterruptDisableBit | ReservedBit
	cpu.Cycles = 0
	cpu.Instructions = 0
}

// IRQ raises a maskable interrupt. It is ignored while the interrupt
// disable flag is set. No cycles are charged.
func (cpu *CPU) IRQ() {
	if cpu.Reg.PS&InterruptDisableBit == 0 {
		cpu.interrupt(vectorIRQ)
	}
}

// NMI raises a non-maskable interrupt. No cycles are charged.
func (cpu *CPU) NMI() {
	cpu.interrupt(vectorNMI)
}

// Enter a hardware interrupt handler. The debugger sees the handler's
// address before its first instruction runs.
func (cpu *CPU) interrupt(addr uint16) {
	cpu.handleInterrupt(false, addr)
	if cpu.debugger != nil {
		cpu.debugger.onUpdatePC(cpu, cpu.Reg.PC)
	}
}

// AttachBrkHandler attaches a handler that is called whenever the BRK
// instruction is executed.
func (cpu *CPU) AttachBrkHandler(handler BrkHandler) {
	cpu.brkHandler = handler
}

// AttachDebugger attaches a debugger to the CPU. The debugger receives
// notifications whenever the CPU executes an instruction or stores a byte
// to memory.
func (cpu *CPU) AttachDebugger(debugger *Debugger) {
	cpu.debugger = debugger
	cpu.storeByte = (*CPU).storeByteDebugger
}

// DetachDebugger detaches the currently debugger from the CPU.
func (cpu *CPU) DetachDebugger() {
	cpu.debugger = nil
	cpu.storeByte = (*CPU).storeByteNormal
}

type operandKind byte

const (
	implied operandKind = iota
	accumulator
	address
)

// An operand is the result of resolving an instruction's addressing mode.
type operand struct {
	kind operandKind
	addr uint16
}

// Consume the operand bytes of inst, advance the program counter and
// compute the effective address.
func (cpu *CPU) resolve(inst *Instruction) operand {
	pc := cpu.Reg.PC
	var ea uint16

	switch inst.Mode {
	case IMP:
		return operand{kind: implied}

	case ACC:
		return operand{kind: accumulator}

	case IMM:
		ea = pc
		cpu.Reg.PC++

	case ZPG:
		ea = uint16(cpu.Mem.LoadByte(pc))
		cpu.Reg.PC++

	case ZPX:
		ea = uint16(cpu.Mem.LoadByte(pc) + cpu.Reg.X)
		cpu.Reg.PC++

	case ZPY:
		ea = uint16(cpu.Mem.LoadByte(pc) + cpu.Reg.Y)
		cpu.Reg.PC++

	case REL:
		offset := cpu.Mem.LoadByte(pc)
		cpu.Reg.PC++
		ea = cpu.Reg.PC + uint16(int8(offset))

	case ABS:
		ea = cpu.read16(pc)
		cpu.Reg.PC += 2

	case ABX:
		base := cpu.read16(pc)
		cpu.Reg.PC += 2
		ea = cpu.offset(inst, base, cpu.Reg.X)

	case ABY:
		base := cpu.read16(pc)
		cpu.Reg.PC += 2
		ea = cpu.offset(inst, base, cpu.Reg.Y)

	case IND:
		ptr := cpu.read16(pc)
		cpu.Reg.PC += 2
		if cpu.variant.Arch == NMOS {
			// The high byte is fetched without carrying into the page.
			lo := cpu.Mem.LoadByte(ptr)
			hi := cpu.Mem.LoadByte(ptr&0xff00 | (ptr+1)&0x00ff)
			ea = uint16(lo) | uint16(hi)<<8
		} else {
			if ptr&0xff == 0xff {
				cpu.Cycles++
			}
			ea = cpu.read16(ptr)
		}

	case AXI:
		ptr := cpu.read16(pc) + uint16(cpu.Reg.X)
		cpu.Reg.PC += 2
		ea = cpu.read16(ptr)

	case IDX:
		zp := cpu.Mem.LoadByte(pc) + cpu.Reg.X
		cpu.Reg.PC++
		ea = cpu.read16ZeroPage(zp)

	case IDY:
		zp := cpu.Mem.LoadByte(pc)
		cpu.Reg.PC++
		ea = cpu.offset(inst, cpu.read16ZeroPage(zp), cpu.Reg.Y)

	case ZPI:
		zp := cpu.Mem.LoadByte(pc)
		cpu.Reg.PC++
		ea = cpu.read16ZeroPage(zp)

	default:
		panic(fmt.Sprintf("cpu: invalid addressing mode %v", inst.Mode))
	}

	cpu.EA = ea
	return operand{kind: address, addr: ea}
}

// Add an index register to a base address, charging the instruction's
// page-crossing penalty when the high byte changes.
func (cpu *CPU) offset(inst *Instruction, base uint16, index byte) uint16 {
	addr := base + uint16(index)
	if (addr^base)&0xff00 != 0 {
		cpu.Cycles += uint64(inst.BPCycles)
	}
	return addr
}

// Read a little-endian 16-bit value from two consecutive addresses.
func (cpu *CPU) read16(addr uint16) uint16 {
	lo := cpu.Mem.LoadByte(addr)
	hi := cpu.Mem.LoadByte(addr + 1)
	return uint16(lo) | uint16(hi)<<8
}

// Read a 16-bit pointer from the zero page, wrapping within page 0.
func (cpu *CPU) read16ZeroPage(zp byte) uint16 {
	lo := cpu.Mem.LoadByte(uint16(zp))
	hi := cpu.Mem.LoadByte(uint16(zp + 1))
	return uint16(lo) | uint16(hi)<<8
}

// Load the value an operand refers to.
func (cpu *CPU) load(op operand) byte {
	switch op.kind {
	case accumulator:
		return cpu.Reg.A
	case address:
		return cpu.Mem.LoadByte(op.addr)
	}
	panic("cpu: load from implied operand")
}

// Store a value to the location an operand refers to.
func (cpu *CPU) store(op operand, v byte) {
	switch op.kind {
	case accumulator:
		cpu.Reg.A = v
	case address:
		cpu.storeByte(cpu, op.addr, v)
	default:
		panic("cpu: store to implied operand")
	}
}

// Store the result of a read-modify-write instruction. The NMOS chip
// writes the unmodified value back before writing the result.
func (cpu *CPU) storeRMW(op operand, orig, v byte) {
	if op.kind == address && cpu.variant.Arch == NMOS {
		cpu.storeByte(cpu, op.addr, orig)
	}
	cpu.store(op, v)
}

// Store the byte value 'v' add the address 'addr'.
func (cpu *CPU) storeByteNormal(addr uint16, v byte) {
	cpu.Mem.StoreByte(addr, v)
}

// Store the byte value 'v' add the address 'addr'.
func (cpu *CPU) storeByteDebugger(addr uint16, v byte) {
	cpu.debugger.onDataStore(cpu, addr, v)
	cpu.Mem.StoreByte(addr, v)
}

// Push a value 'v' onto the stack.
func (cpu *CPU) push(v byte) {
	cpu.storeByte(cpu, stackAddress(cpu.Reg.SP), v)
	cpu.Reg.SP--
}

// Push the address 'addr' onto the stack.
func (cpu *CPU) pushAddress(addr uint16) {
	cpu.push(byte(addr >> 8))
	cpu.push(byte(addr))
}

// Pop a value from the stack and return it.
func (cpu *CPU) pop() byte {
	cpu.Reg.SP++
	return cpu.Mem.LoadByte(stackAddress(cpu.Reg.SP))
}

// Pop a 16-bit address off the stack.
func (cpu *CPU) popAddress() uint16 {
	lo := cpu.pop()
	hi := cpu.pop()
	return uint16(lo) | (uint16(hi) << 8)
}

// Handle an interrupt by storing the program counter and status flags on
// the stack. Then switch the program counter to the requested address.
func (cpu *CPU) handleInterrupt(brk bool, addr uint16) {
	cpu.pushAddress(cpu.Reg.PC)
	if brk {
		cpu.push(cpu.Reg.PS | BreakBit)
	} else {
		cpu.push(cpu.Reg.PS &^ BreakBit)
	}

	cpu.Reg.PS |= InterruptDisableBit
	if cpu.variant.Arch == CMOS {
		cpu.Reg.PS &^= DecimalBit
	}

	cpu.Reg.PC = cpu.read16(addr)
}
