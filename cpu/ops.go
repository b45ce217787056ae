// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

// Add 'v' and the carry to the accumulator. SBC passes the one's
// complement of its operand. Flags come from the binary result; decimal
// correction, when enabled, is applied afterward and costs a cycle.
func (cpu *CPU) add(v byte, subtract bool) {
	a := uint16(cpu.Reg.A)
	b := uint16(v)
	if subtract {
		b ^= 0xff
	}
	c := cpu.Reg.carry()
	r := a + b + c

	cpu.Reg.carryFrom(r)
	cpu.Reg.zeroFrom(r)
	cpu.Reg.overflowFrom(r, a, b)
	cpu.Reg.signFrom(r)

	if cpu.Reg.PS&DecimalBit != 0 && cpu.variant.Decimal {
		if subtract {
			r = decimalSub(a, b, c, r, r&0x100 != 0)
		} else {
			r = cpu.decimalAdd(a, b, c)
		}
		if cpu.variant.Arch == CMOS {
			cpu.Reg.updateNZ(r)
		}
		cpu.Cycles++
	}

	cpu.Reg.A = byte(r)
}

// Digit-wise BCD addition. Sets the carry from the high digit.
func (cpu *CPU) decimalAdd(a, b, c uint16) uint16 {
	lo := a&0x0f + b&0x0f + c
	if lo > 0x09 {
		lo += 0x06
	}
	hi := a>>4 + b>>4
	if lo > 0x0f {
		hi++
	}
	if hi > 0x09 {
		hi += 0x06
	}
	cpu.Reg.Put(CarryBit, hi > 0x0f)
	return hi<<4 | lo&0x0f
}

// BCD subtraction correction of the binary sum r = a + ^v + c. Each digit
// that borrowed is reduced by 6; the carry is kept from the binary result.
func decimalSub(a, b, c, r uint16, carry bool) uint16 {
	if a&0x0f+b&0x0f+c <= 0x0f {
		r -= 0x06
	}
	if !carry {
		r -= 0x60
	}
	return r
}

// Compare a register with a value: carry set if reg >= v.
func (cpu *CPU) compare(reg, v byte) {
	r := uint16(reg) + uint16(^v) + 1
	cpu.Reg.carryFrom(r)
	cpu.Reg.updateNZ(r)
}

// Execute a branch to the effective address.
func (cpu *CPU) branch(op operand) {
	oldPC := cpu.Reg.PC
	cpu.Reg.PC = op.addr
	cpu.Cycles++
	if (cpu.Reg.PC^oldPC)&0xff00 != 0 {
		cpu.Cycles++
	}
}

func (cpu *CPU) shiftLeft(v byte, in uint16) byte {
	r := uint16(v)<<1 | in
	cpu.Reg.carryFrom(r)
	cpu.Reg.updateNZ(r)
	return byte(r)
}

func (cpu *CPU) shiftRight(v byte, in uint16) byte {
	r := uint16(v)>>1 | in<<7
	cpu.Reg.Put(CarryBit, v&1 != 0)
	cpu.Reg.updateNZ(r)
	return byte(r)
}

func (cpu *CPU) setA(v byte) {
	cpu.Reg.A = v
	cpu.Reg.updateNZ(uint16(v))
}

// Add with carry
func (cpu *CPU) adc(inst *Instruction, op operand) {
	cpu.add(cpu.load(op), false)
}

// Boolean AND
func (cpu *CPU) and(inst *Instruction, op operand) {
	cpu.setA(cpu.Reg.A & cpu.load(op))
}

// Arithmetic Shift Left
func (cpu *CPU) asl(inst *Instruction, op operand) {
	v := cpu.load(op)
	cpu.storeRMW(op, v, cpu.shiftLeft(v, 0))
}

// Branch if Carry Clear
func (cpu *CPU) bcc(inst *Instruction, op operand) {
	if cpu.Reg.PS&CarryBit == 0 {
		cpu.branch(op)
	}
}

// Branch if Carry Set
func (cpu *CPU) bcs(inst *Instruction, op operand) {
	if cpu.Reg.PS&CarryBit != 0 {
		cpu.branch(op)
	}
}

// Branch if EQual (to zero)
func (cpu *CPU) beq(inst *Instruction, op operand) {
	if cpu.Reg.PS&ZeroBit != 0 {
		cpu.branch(op)
	}
}

// Bit Test. The immediate form only affects the zero flag.
func (cpu *CPU) bit(inst *Instruction, op operand) {
	v := cpu.load(op)
	cpu.Reg.zeroFrom(uint16(cpu.Reg.A & v))
	if inst.Mode != IMM {
		cpu.Reg.PS = cpu.Reg.PS&0x3f | v&0xc0
	}
}

// Branch if MInus (negative)
func (cpu *CPU) bmi(inst *Instruction, op operand) {
	if cpu.Reg.PS&SignBit != 0 {
		cpu.branch(op)
	}
}

// Branch if Not Equal (not zero)
func (cpu *CPU) bne(inst *Instruction, op operand) {
	if cpu.Reg.PS&ZeroBit == 0 {
		cpu.branch(op)
	}
}

// Branch if PLus (positive)
func (cpu *CPU) bpl(inst *Instruction, op operand) {
	if cpu.Reg.PS&SignBit == 0 {
		cpu.branch(op)
	}
}

// Branch always (65c02 only)
func (cpu *CPU) bra(inst *Instruction, op operand) {
	cpu.branch(op)
}

// Break
func (cpu *CPU) brk(inst *Instruction, op operand) {
	cpu.Reg.PC++
	cpu.handleInterrupt(true, vectorBRK)
}

// Branch if oVerflow Clear
func (cpu *CPU) bvc(inst *Instruction, op operand) {
	if cpu.Reg.PS&OverflowBit == 0 {
		cpu.branch(op)
	}
}

// Branch if oVerflow Set
func (cpu *CPU) bvs(inst *Instruction, op operand) {
	if cpu.Reg.PS&OverflowBit != 0 {
		cpu.branch(op)
	}
}

// Clear Carry flag
func (cpu *CPU) clc(inst *Instruction, op operand) {
	cpu.Reg.Clear(CarryBit)
}

// Clear Decimal flag
func (cpu *CPU) cld(inst *Instruction, op operand) {
	cpu.Reg.Clear(DecimalBit)
}

// Clear InterruptDisable flag
func (cpu *CPU) cli(inst *Instruction, op operand) {
	cpu.Reg.Clear(InterruptDisableBit)
}

// Clear oVerflow flag
func (cpu *CPU) clv(inst *Instruction, op operand) {
	cpu.Reg.Clear(OverflowBit)
}

// Compare to accumulator
func (cpu *CPU) cmp(inst *Instruction, op operand) {
	cpu.compare(cpu.Reg.A, cpu.load(op))
}

// Compare to X register
func (cpu *CPU) cpx(inst *Instruction, op operand) {
	cpu.compare(cpu.Reg.X, cpu.load(op))
}

// Compare to Y register
func (cpu *CPU) cpy(inst *Instruction, op operand) {
	cpu.compare(cpu.Reg.Y, cpu.load(op))
}

// Decrement memory, then compare it to the accumulator (undocumented)
func (cpu *CPU) dcp(inst *Instruction, op operand) {
	v := cpu.load(op)
	r := v - 1
	cpu.storeRMW(op, v, r)
	cpu.compare(cpu.Reg.A, r)
}

// Decrement
func (cpu *CPU) dec(inst *Instruction, op operand) {
	v := cpu.load(op)
	r := v - 1
	cpu.Reg.updateNZ(uint16(r))
	cpu.storeRMW(op, v, r)
}

// Decrement X register
func (cpu *CPU) dex(inst *Instruction, op operand) {
	cpu.Reg.X--
	cpu.Reg.updateNZ(uint16(cpu.Reg.X))
}

// Decrement Y register
func (cpu *CPU) dey(inst *Instruction, op operand) {
	cpu.Reg.Y--
	cpu.Reg.updateNZ(uint16(cpu.Reg.Y))
}

// Boolean XOR
func (cpu *CPU) eor(inst *Instruction, op operand) {
	cpu.setA(cpu.Reg.A ^ cpu.load(op))
}

// Increment
func (cpu *CPU) inc(inst *Instruction, op operand) {
	v := cpu.load(op)
	r := v + 1
	cpu.Reg.updateNZ(uint16(r))
	cpu.storeRMW(op, v, r)
}

// Increment X register
func (cpu *CPU) inx(inst *Instruction, op operand) {
	cpu.Reg.X++
	cpu.Reg.updateNZ(uint16(cpu.Reg.X))
}

// Increment Y register
func (cpu *CPU) iny(inst *Instruction, op operand) {
	cpu.Reg.Y++
	cpu.Reg.updateNZ(uint16(cpu.Reg.Y))
}

// Increment memory, then subtract it from the accumulator (undocumented)
func (cpu *CPU) isb(inst *Instruction, op operand) {
	v := cpu.load(op)
	r := v + 1
	cpu.storeRMW(op, v, r)
	cpu.add(r, true)
}

// Jump to memory address
func (cpu *CPU) jmp(inst *Instruction, op operand) {
	cpu.Reg.PC = op.addr
}

// Jump to subroutine
func (cpu *CPU) jsr(inst *Instruction, op operand) {
	cpu.pushAddress(cpu.Reg.PC - 1)
	cpu.Reg.PC = op.addr
}

// Load accumulator and X register (undocumented)
func (cpu *CPU) lax(inst *Instruction, op operand) {
	cpu.setA(cpu.load(op))
	cpu.Reg.X = cpu.Reg.A
}

// load Accumulator
func (cpu *CPU) lda(inst *Instruction, op operand) {
	cpu.setA(cpu.load(op))
}

// load the X register
func (cpu *CPU) ldx(inst *Instruction, op operand) {
	cpu.Reg.X = cpu.load(op)
	cpu.Reg.updateNZ(uint16(cpu.Reg.X))
}

// load the Y register
func (cpu *CPU) ldy(inst *Instruction, op operand) {
	cpu.Reg.Y = cpu.load(op)
	cpu.Reg.updateNZ(uint16(cpu.Reg.Y))
}

// Logical Shift Right
func (cpu *CPU) lsr(inst *Instruction, op operand) {
	v := cpu.load(op)
	cpu.storeRMW(op, v, cpu.shiftRight(v, 0))
}

// No-operation. Undocumented opcodes land here too; their operand bytes
// have already been consumed.
func (cpu *CPU) nop(inst *Instruction, op operand) {
}

// Boolean OR
func (cpu *CPU) ora(inst *Instruction, op operand) {
	cpu.setA(cpu.Reg.A | cpu.load(op))
}

// Push Accumulator
func (cpu *CPU) pha(inst *Instruction, op operand) {
	cpu.push(cpu.Reg.A)
}

// Push Processor flags
func (cpu *CPU) php(inst *Instruction, op operand) {
	cpu.push(cpu.Reg.PS | BreakBit)
}

// Push X register (65c02 only)
func (cpu *CPU) phx(inst *Instruction, op operand) {
	cpu.push(cpu.Reg.X)
}

// Push Y register (65c02 only)
func (cpu *CPU) phy(inst *Instruction, op operand) {
	cpu.push(cpu.Reg.Y)
}

// Pull (pop) Accumulator
func (cpu *CPU) pla(inst *Instruction, op operand) {
	cpu.setA(cpu.pop())
}

// Pull (pop) Processor flags
func (cpu *CPU) plp(inst *Instruction, op operand) {
	cpu.Reg.PS = cpu.pop() | BreakBit | ReservedBit
}

// Pull (pop) X register (65c02 only)
func (cpu *CPU) plx(inst *Instruction, op operand) {
	cpu.Reg.X = cpu.pop()
	cpu.Reg.updateNZ(uint16(cpu.Reg.X))
}

// Pull (pop) Y register (65c02 only)
func (cpu *CPU) ply(inst *Instruction, op operand) {
	cpu.Reg.Y = cpu.pop()
	cpu.Reg.updateNZ(uint16(cpu.Reg.Y))
}

// Rotate left, then AND with the accumulator (undocumented)
func (cpu *CPU) rla(inst *Instruction, op operand) {
	v := cpu.load(op)
	r := cpu.shiftLeft(v, cpu.Reg.carry())
	cpu.storeRMW(op, v, r)
	cpu.setA(cpu.Reg.A & r)
}

// Rotate Left
func (cpu *CPU) rol(inst *Instruction, op operand) {
	v := cpu.load(op)
	cpu.storeRMW(op, v, cpu.shiftLeft(v, cpu.Reg.carry()))
}

// Rotate Right
func (cpu *CPU) ror(inst *Instruction, op operand) {
	v := cpu.load(op)
	cpu.storeRMW(op, v, cpu.shiftRight(v, cpu.Reg.carry()))
}

// Rotate right, then add to the accumulator (undocumented)
func (cpu *CPU) rra(inst *Instruction, op operand) {
	v := cpu.load(op)
	r := cpu.shiftRight(v, cpu.Reg.carry())
	cpu.storeRMW(op, v, r)
	cpu.add(r, false)
}

// Return from interrupt
func (cpu *CPU) rti(inst *Instruction, op operand) {
	cpu.Reg.PS = cpu.pop() | BreakBit | ReservedBit
	cpu.Reg.PC = cpu.popAddress()
}

// Return from Subroutine
func (cpu *CPU) rts(inst *Instruction, op operand) {
	cpu.Reg.PC = cpu.popAddress() + 1
}

// Store accumulator AND X register (undocumented)
func (cpu *CPU) sax(inst *Instruction, op operand) {
	cpu.store(op, cpu.Reg.A&cpu.Reg.X)
}

// Subtract with Carry
func (cpu *CPU) sbc(inst *Instruction, op operand) {
	cpu.add(cpu.load(op), true)
}

// Set Carry flag
func (cpu *CPU) sec(inst *Instruction, op operand) {
	cpu.Reg.Set(CarryBit)
}

// Set Decimal flag
func (cpu *CPU) sed(inst *Instruction, op operand) {
	cpu.Reg.Set(DecimalBit)
}

// Set InterruptDisable flag
func (cpu *CPU) sei(inst *Instruction, op operand) {
	cpu.Reg.Set(InterruptDisableBit)
}

// Shift left, then OR with the accumulator (undocumented)
func (cpu *CPU) slo(inst *Instruction, op operand) {
	v := cpu.load(op)
	r := cpu.shiftLeft(v, 0)
	cpu.storeRMW(op, v, r)
	cpu.setA(cpu.Reg.A | r)
}

// Shift right, then XOR with the accumulator (undocumented)
func (cpu *CPU) sre(inst *Instruction, op operand) {
	v := cpu.load(op)
	r := cpu.shiftRight(v, 0)
	cpu.storeRMW(op, v, r)
	cpu.setA(cpu.Reg.A ^ r)
}

// Store Accumulator
func (cpu *CPU) sta(inst *Instruction, op operand) {
	cpu.store(op, cpu.Reg.A)
}

// Store X register
func (cpu *CPU) stx(inst *Instruction, op operand) {
	cpu.store(op, cpu.Reg.X)
}

// Store Y register
func (cpu *CPU) sty(inst *Instruction, op operand) {
	cpu.store(op, cpu.Reg.Y)
}

// Store Zero (65c02 only)
func (cpu *CPU) stz(inst *Instruction, op operand) {
	cpu.store(op, 0)
}

// Transfer Accumulator to X register
func (cpu *CPU) tax(inst *Instruction, op operand) {
	cpu.Reg.X = cpu.Reg.A
	cpu.Reg.updateNZ(uint16(cpu.Reg.X))
}

// Transfer Accumulator to Y register
func (cpu *CPU) tay(inst *Instruction, op operand) {
	cpu.Reg.Y = cpu.Reg.A
	cpu.Reg.updateNZ(uint16(cpu.Reg.Y))
}

// Test and Reset Bits (65c02 only)
func (cpu *CPU) trb(inst *Instruction, op operand) {
	v := cpu.load(op)
	cpu.Reg.zeroFrom(uint16(v & cpu.Reg.A))
	cpu.store(op, v&^cpu.Reg.A)
}

// Test and Set Bits (65c02 only)
func (cpu *CPU) tsb(inst *Instruction, op operand) {
	v := cpu.load(op)
	cpu.Reg.zeroFrom(uint16(v & cpu.Reg.A))
	cpu.store(op, v|cpu.Reg.A)
}

// Transfer stack pointer to X register
func (cpu *CPU) tsx(inst *Instruction, op operand) {
	cpu.Reg.X = cpu.Reg.SP
	cpu.Reg.updateNZ(uint16(cpu.Reg.X))
}

// Transfer X register to Accumulator
func (cpu *CPU) txa(inst *Instruction, op operand) {
	cpu.setA(cpu.Reg.X)
}

// Transfer X register to the stack pointer
func (cpu *CPU) txs(inst *Instruction, op operand) {
	cpu.Reg.SP = cpu.Reg.X
}

// Transfer Y register to the Accumulator
func (cpu *CPU) tya(inst *Instruction, op operand) {
	cpu.setA(cpu.Reg.Y)
}
