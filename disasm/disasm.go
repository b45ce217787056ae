// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package disasm implements a 6502 instruction set
// disassembler.
package disasm

import (
	"fmt"
	"strings"

	"github.com/beevik/fake6502/cpu"
)

// Disassembler formatting for addressing modes
var modeFormat = [...]string{
	cpu.IMM: "#$%s",
	cpu.IMP: "%s",
	cpu.REL: "$%s",
	cpu.ZPG: "$%s",
	cpu.ZPX: "$%s,X",
	cpu.ZPY: "$%s,Y",
	cpu.ABS: "$%s",
	cpu.ABX: "$%s,X",
	cpu.ABY: "$%s,Y",
	cpu.IND: "($%s)",
	cpu.IDX: "($%s,X)",
	cpu.IDY: "($%s),Y",
	cpu.ACC: "A",
	cpu.ZPI: "($%s)",
	cpu.AXI: "($%s,X)",
}

var hex = "0123456789ABCDEF"

// Return a big-endian hexadecimal string representation of the
// little-endian operand bytes.
func hexString(b []byte) string {
	hexlen := len(b) * 2
	hexbuf := make([]byte, hexlen)
	j := hexlen - 1
	for _, n := range b {
		hexbuf[j] = hex[n&0xf]
		hexbuf[j-1] = hex[n>>4]
		j -= 2
	}
	return string(hexbuf)
}

// Disassemble the machine code in memory 'm' at address 'addr' using the
// instruction set 'set'. Return a 'line' string representing the
// disassembled instruction and a 'next' address that starts the following
// line of machine code. Memory is only read, through LoadByte.
func Disassemble(m cpu.Memory, set *cpu.InstructionSet, addr uint16) (line string, next uint16) {
	inst := set.Lookup(m.LoadByte(addr))
	operand := make([]byte, inst.Length-1)
	for i := range operand {
		operand[i] = m.LoadByte(addr + 1 + uint16(i))
	}
	next = addr + uint16(inst.Length)

	switch inst.Mode {
	case cpu.IMP:
		return inst.Name, next
	case cpu.ACC:
		return inst.Name + " A", next
	case cpu.REL:
		// Show the branch target rather than the offset.
		target := next + uint16(int8(operand[0]))
		operand = []byte{byte(target), byte(target >> 8)}
	}

	line = inst.Name + " " + fmt.Sprintf(modeFormat[inst.Mode], hexString(operand))
	return line, next
}

// GetRegisterString returns a string describing the contents of the 6502
// registers. Status flags that are set are shown in upper case.
func GetRegisterString(r *cpu.Registers) string {
	return fmt.Sprintf("A=%02X X=%02X Y=%02X PS=[%s] SP=%02X PC=%04X",
		r.A, r.X, r.Y, flagString(r.PS), r.SP, r.PC)
}

// GetCompactRegisterString returns a shorter register summary suitable
// for trace output.
func GetCompactRegisterString(r *cpu.Registers) string {
	return fmt.Sprintf("A=%02X X=%02X Y=%02X PS=%02X SP=%02X", r.A, r.X, r.Y, r.PS, r.SP)
}

func flagString(ps byte) string {
	const names = "NV-BDIZC"
	var b strings.Builder
	for i := 0; i < 8; i++ {
		c := names[i]
		if ps&(0x80>>i) == 0 && c != '-' {
			c += 'a' - 'A'
		}
		b.WriteByte(c)
	}
	return b.String()
}
