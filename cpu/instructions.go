// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

import (
	"fmt"
	"strings"
)

// An opsym is an internal symbol used to associate an opcode's data
// with its instructions.
type opsym byte

const (
	symADC opsym = iota
	symAND
	symASL
	symBCC
	symBCS
	symBEQ
	symBIT
	symBMI
	symBNE
	symBPL
	symBRA
	symBRK
	symBVC
	symBVS
	symCLC
	symCLD
	symCLI
	symCLV
	symCMP
	symCPX
	symCPY
	symDCP
	symDEC
	symDEX
	symDEY
	symEOR
	symINC
	symINX
	symINY
	symISB
	symJMP
	symJSR
	symLAX
	symLDA
	symLDX
	symLDY
	symLSR
	symNOP
	symORA
	symPHA
	symPHP
	symPHX
	symPHY
	symPLA
	symPLP
	symPLX
	symPLY
	symRLA
	symROL
	symROR
	symRRA
	symRTI
	symRTS
	symSAX
	symSBC
	symSEC
	symSED
	symSEI
	symSLO
	symSRE
	symSTA
	symSTX
	symSTY
	symSTZ
	symTAX
	symTAY
	symTRB
	symTSB
	symTSX
	symTXA
	symTXS
	symTYA
)

type instfunc func(c *CPU, inst *Instruction, op operand)

// Emulator implementation for each opcode
type opcodeImpl struct {
	sym  opsym
	name string
	fn   instfunc
}

var impl = []opcodeImpl{
	{symADC, "ADC", (*CPU).adc},
	{symAND, "AND", (*CPU).and},
	{symASL, "ASL", (*CPU).asl},
	{symBCC, "BCC", (*CPU).bcc},
	{symBCS, "BCS", (*CPU).bcs},
	{symBEQ, "BEQ", (*CPU).beq},
	{symBIT, "BIT", (*CPU).bit},
	{symBMI, "BMI", (*CPU).bmi},
	{symBNE, "BNE", (*CPU).bne},
	{symBPL, "BPL", (*CPU).bpl},
	{symBRA, "BRA", (*CPU).bra},
	{symBRK, "BRK", (*CPU).brk},
	{symBVC, "BVC", (*CPU).bvc},
	{symBVS, "BVS", (*CPU).bvs},
	{symCLC, "CLC", (*CPU).clc},
	{symCLD, "CLD", (*CPU).cld},
	{symCLI, "CLI", (*CPU).cli},
	{symCLV, "CLV", (*CPU).clv},
	{symCMP, "CMP", (*CPU).cmp},
	{symCPX, "CPX", (*CPU).cpx},
	{symCPY, "CPY", (*CPU).cpy},
	{symDCP, "DCP", (*CPU).dcp},
	{symDEC, "DEC", (*CPU).dec},
	{symDEX, "DEX", (*CPU).dex},
	{symDEY, "DEY", (*CPU).dey},
	{symEOR, "EOR", (*CPU).eor},
	{symINC, "INC", (*CPU).inc},
	{symINX, "INX", (*CPU).inx},
	{symINY, "INY", (*CPU).iny},
	{symISB, "ISB", (*CPU).isb},
	{symJMP, "JMP", (*CPU).jmp},
	{symJSR, "JSR", (*CPU).jsr},
	{symLAX, "LAX", (*CPU).lax},
	{symLDA, "LDA", (*CPU).lda},
	{symLDX, "LDX", (*CPU).ldx},
	{symLDY, "LDY", (*CPU).ldy},
	{symLSR, "LSR", (*CPU).lsr},
	{symNOP, "NOP", (*CPU).nop},
	{symORA, "ORA", (*CPU).ora},
	{symPHA, "PHA", (*CPU).pha},
	{symPHP, "PHP", (*CPU).php},
	{symPHX, "PHX", (*CPU).phx},
	{symPHY, "PHY", (*CPU).phy},
	{symPLA, "PLA", (*CPU).pla},
	{symPLP, "PLP", (*CPU).plp},
	{symPLX, "PLX", (*CPU).plx},
	{symPLY, "PLY", (*CPU).ply},
	{symRLA, "RLA", (*CPU).rla},
	{symROL, "ROL", (*CPU).rol},
	{symROR, "ROR", (*CPU).ror},
	{symRRA, "RRA", (*CPU).rra},
	{symRTI, "RTI", (*CPU).rti},
	{symRTS, "RTS", (*CPU).rts},
	{symSAX, "SAX", (*CPU).sax},
	{symSBC, "SBC", (*CPU).sbc},
	{symSEC, "SEC", (*CPU).sec},
	{symSED, "SED", (*CPU).sed},
	{symSEI, "SEI", (*CPU).sei},
	{symSLO, "SLO", (*CPU).slo},
	{symSRE, "SRE", (*CPU).sre},
	{symSTA, "STA", (*CPU).sta},
	{symSTX, "STX", (*CPU).stx},
	{symSTY, "STY", (*CPU).sty},
	{symSTZ, "STZ", (*CPU).stz},
	{symTAX, "TAX", (*CPU).tax},
	{symTAY, "TAY", (*CPU).tay},
	{symTRB, "TRB", (*CPU).trb},
	{symTSB, "TSB", (*CPU).tsb},
	{symTSX, "TSX", (*CPU).tsx},
	{symTXA, "TXA", (*CPU).txa},
	{symTXS, "TXS", (*CPU).txs},
	{symTYA, "TYA", (*CPU).tya},
}

// Mode describes a memory addressing mode.
type Mode byte

// All possible memory addressing modes
const (
	IMM Mode = iota // Immediate
	IMP             // Implied (no operand)
	REL             // Relative
	ZPG             // Zero Page
	ZPX             // Zero Page,X
	ZPY             // Zero Page,Y
	ABS             // Absolute
	ABX             // Absolute,X
	ABY             // Absolute,Y
	IND             // (Indirect)
	IDX             // (Indirect,X)
	IDY             // (Indirect),Y
	ACC             // Accumulator (no operand)
	ZPI             // (Zero Page), 65c02 only
	AXI             // (Absolute,X), 65c02 JMP only
)

var modeNames = [...]string{
	IMM: "IMM", IMP: "IMP", REL: "REL", ZPG: "ZPG", ZPX: "ZPX", ZPY: "ZPY",
	ABS: "ABS", ABX: "ABX", ABY: "ABY", IND: "IND", IDX: "IDX", IDY: "IDY",
	ACC: "ACC", ZPI: "ZPI", AXI: "AXI",
}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", m)
}

// Combined size of opcode and operand for each addressing mode.
var modeLength = [...]byte{
	IMM: 2, IMP: 1, REL: 2, ZPG: 2, ZPX: 2, ZPY: 2, ABS: 3, ABX: 3, ABY: 3,
	IND: 3, IDX: 2, IDY: 2, ACC: 1, ZPI: 2, AXI: 3,
}

// Architectures an opcode/mode pair exists on.
type archMask byte

const (
	onNMOS archMask = 1 << NMOS
	onCMOS archMask = 1 << CMOS
	onBoth          = onNMOS | onCMOS
)

// Opcode data for an (opcode, mode) pair
type opcodeData struct {
	sym      opsym    // internal opcode symbol
	mode     Mode     // addressing mode
	opcode   byte     // opcode hex value
	cycles   byte     // number of CPU cycles to execute command
	bpcycles byte     // additional CPU cycles if command crosses page boundary
	arch     archMask // chips on which the pair is valid
}

// All valid (opcode, mode) pairs. Stores and read-modify-write
// instructions always pay the indexed cost, so they carry no bpcycles.
var data = []opcodeData{
	{symLDA, IMM, 0xa9, 2, 0, onBoth},
	{symLDA, ZPG, 0xa5, 3, 0, onBoth},
	{symLDA, ZPX, 0xb5, 4, 0, onBoth},
	{symLDA, ABS, 0xad, 4, 0, onBoth},
	{symLDA, ABX, 0xbd, 4, 1, onBoth},
	{symLDA, ABY, 0xb9, 4, 1, onBoth},
	{symLDA, IDX, 0xa1, 6, 0, onBoth},
	{symLDA, IDY, 0xb1, 5, 1, onBoth},
	{symLDA, ZPI, 0xb2, 5, 0, onCMOS},

	{symLDX, IMM, 0xa2, 2, 0, onBoth},
	{symLDX, ZPG, 0xa6, 3, 0, onBoth},
	{symLDX, ZPY, 0xb6, 4, 0, onBoth},
	{symLDX, ABS, 0xae, 4, 0, onBoth},
	{symLDX, ABY, 0xbe, 4, 1, onBoth},

	{symLDY, IMM, 0xa0, 2, 0, onBoth},
	{symLDY, ZPG, 0xa4, 3, 0, onBoth},
	{symLDY, ZPX, 0xb4, 4, 0, onBoth},
	{symLDY, ABS, 0xac, 4, 0, onBoth},
	{symLDY, ABX, 0xbc, 4, 1, onBoth},

	{symSTA, ZPG, 0x85, 3, 0, onBoth},
	{symSTA, ZPX, 0x95, 4, 0, onBoth},
	{symSTA, ABS, 0x8d, 4, 0, onBoth},
	{symSTA, ABX, 0x9d, 5, 0, onBoth},
	{symSTA, ABY, 0x99, 5, 0, onBoth},
	{symSTA, IDX, 0x81, 6, 0, onBoth},
	{symSTA, IDY, 0x91, 6, 0, onBoth},
	{symSTA, ZPI, 0x92, 5, 0, onCMOS},

	{symSTX, ZPG, 0x86, 3, 0, onBoth},
	{symSTX, ZPY, 0x96, 4, 0, onBoth},
	{symSTX, ABS, 0x8e, 4, 0, onBoth},

	{symSTY, ZPG, 0x84, 3, 0, onBoth},
	{symSTY, ZPX, 0x94, 4, 0, onBoth},
	{symSTY, ABS, 0x8c, 4, 0, onBoth},

	{symSTZ, ZPG, 0x64, 3, 0, onCMOS},
	{symSTZ, ZPX, 0x74, 4, 0, onCMOS},
	{symSTZ, ABS, 0x9c, 4, 0, onCMOS},
	{symSTZ, ABX, 0x9e, 5, 0, onCMOS},

	{symADC, IMM, 0x69, 2, 0, onBoth},
	{symADC, ZPG, 0x65, 3, 0, onBoth},
	{symADC, ZPX, 0x75, 4, 0, onBoth},
	{symADC, ABS, 0x6d, 4, 0, onBoth},
	{symADC, ABX, 0x7d, 4, 1, onBoth},
	{symADC, ABY, 0x79, 4, 1, onBoth},
	{symADC, IDX, 0x61, 6, 0, onBoth},
	{symADC, IDY, 0x71, 5, 1, onBoth},
	{symADC, ZPI, 0x72, 5, 0, onCMOS},

	{symSBC, IMM, 0xe9, 2, 0, onBoth},
	{symSBC, ZPG, 0xe5, 3, 0, onBoth},
	{symSBC, ZPX, 0xf5, 4, 0, onBoth},
	{symSBC, ABS, 0xed, 4, 0, onBoth},
	{symSBC, ABX, 0xfd, 4, 1, onBoth},
	{symSBC, ABY, 0xf9, 4, 1, onBoth},
	{symSBC, IDX, 0xe1, 6, 0, onBoth},
	{symSBC, IDY, 0xf1, 5, 1, onBoth},
	{symSBC, ZPI, 0xf2, 5, 0, onCMOS},
	{symSBC, IMM, 0xeb, 2, 0, onNMOS},

	{symCMP, IMM, 0xc9, 2, 0, onBoth},
	{symCMP, ZPG, 0xc5, 3, 0, onBoth},
	{symCMP, ZPX, 0xd5, 4, 0, onBoth},
	{symCMP, ABS, 0xcd, 4, 0, onBoth},
	{symCMP, ABX, 0xdd, 4, 1, onBoth},
	{symCMP, ABY, 0xd9, 4, 1, onBoth},
	{symCMP, IDX, 0xc1, 6, 0, onBoth},
	{symCMP, IDY, 0xd1, 5, 1, onBoth},
	{symCMP, ZPI, 0xd2, 5, 0, onCMOS},

	{symCPX, IMM, 0xe0, 2, 0, onBoth},
	{symCPX, ZPG, 0xe4, 3, 0, onBoth},
	{symCPX, ABS, 0xec, 4, 0, onBoth},

	{symCPY, IMM, 0xc0, 2, 0, onBoth},
	{symCPY, ZPG, 0xc4, 3, 0, onBoth},
	{symCPY, ABS, 0xcc, 4, 0, onBoth},

	{symBIT, ZPG, 0x24, 3, 0, onBoth},
	{symBIT, ABS, 0x2c, 4, 0, onBoth},
	{symBIT, IMM, 0x89, 2, 0, onCMOS},
	{symBIT, ZPX, 0x34, 4, 0, onCMOS},
	{symBIT, ABX, 0x3c, 4, 1, onCMOS},

	{symCLC, IMP, 0x18, 2, 0, onBoth},
	{symSEC, IMP, 0x38, 2, 0, onBoth},
	{symCLI, IMP, 0x58, 2, 0, onBoth},
	{symSEI, IMP, 0x78, 2, 0, onBoth},
	{symCLD, IMP, 0xd8, 2, 0, onBoth},
	{symSED, IMP, 0xf8, 2, 0, onBoth},
	{symCLV, IMP, 0xb8, 2, 0, onBoth},

	{symBCC, REL, 0x90, 2, 0, onBoth},
	{symBCS, REL, 0xb0, 2, 0, onBoth},
	{symBEQ, REL, 0xf0, 2, 0, onBoth},
	{symBNE, REL, 0xd0, 2, 0, onBoth},
	{symBMI, REL, 0x30, 2, 0, onBoth},
	{symBPL, REL, 0x10, 2, 0, onBoth},
	{symBVC, REL, 0x50, 2, 0, onBoth},
	{symBVS, REL, 0x70, 2, 0, onBoth},
	{symBRA, REL, 0x80, 2, 0, onCMOS},

	{symBRK, IMP, 0x00, 7, 0, onBoth},

	{symAND, IMM, 0x29, 2, 0, onBoth},
	{symAND, ZPG, 0x25, 3, 0, onBoth},
	{symAND, ZPX, 0x35, 4, 0, onBoth},
	{symAND, ABS, 0x2d, 4, 0, onBoth},
	{symAND, ABX, 0x3d, 4, 1, onBoth},
	{symAND, ABY, 0x39, 4, 1, onBoth},
	{symAND, IDX, 0x21, 6, 0, onBoth},
	{symAND, IDY, 0x31, 5, 1, onBoth},
	{symAND, ZPI, 0x32, 5, 0, onCMOS},

	{symORA, IMM, 0x09, 2, 0, onBoth},
	{symORA, ZPG, 0x05, 3, 0, onBoth},
	{symORA, ZPX, 0x15, 4, 0, onBoth},
	{symORA, ABS, 0x0d, 4, 0, onBoth},
	{symORA, ABX, 0x1d, 4, 1, onBoth},
	{symORA, ABY, 0x19, 4, 1, onBoth},
	{symORA, IDX, 0x01, 6, 0, onBoth},
	{symORA, IDY, 0x11, 5, 1, onBoth},
	{symORA, ZPI, 0x12, 5, 0, onCMOS},

	{symEOR, IMM, 0x49, 2, 0, onBoth},
	{symEOR, ZPG, 0x45, 3, 0, onBoth},
	{symEOR, ZPX, 0x55, 4, 0, onBoth},
	{symEOR, ABS, 0x4d, 4, 0, onBoth},
	{symEOR, ABX, 0x5d, 4, 1, onBoth},
	{symEOR, ABY, 0x59, 4, 1, onBoth},
	{symEOR, IDX, 0x41, 6, 0, onBoth},
	{symEOR, IDY, 0x51, 5, 1, onBoth},
	{symEOR, ZPI, 0x52, 5, 0, onCMOS},

	{symINC, ZPG, 0xe6, 5, 0, onBoth},
	{symINC, ZPX, 0xf6, 6, 0, onBoth},
	{symINC, ABS, 0xee, 6, 0, onBoth},
	{symINC, ABX, 0xfe, 7, 0, onBoth},
	{symINC, ACC, 0x1a, 2, 0, onCMOS},

	{symDEC, ZPG, 0xc6, 5, 0, onBoth},
	{symDEC, ZPX, 0xd6, 6, 0, onBoth},
	{symDEC, ABS, 0xce, 6, 0, onBoth},
	{symDEC, ABX, 0xde, 7, 0, onBoth},
	{symDEC, ACC, 0x3a, 2, 0, onCMOS},

	{symINX, IMP, 0xe8, 2, 0, onBoth},
	{symINY, IMP, 0xc8, 2, 0, onBoth},
	{symDEX, IMP, 0xca, 2, 0, onBoth},
	{symDEY, IMP, 0x88, 2, 0, onBoth},

	{symJMP, ABS, 0x4c, 3, 0, onBoth},
	{symJMP, IND, 0x6c, 5, 0, onBoth},
	{symJMP, AXI, 0x7c, 6, 0, onCMOS},

	{symJSR, ABS, 0x20, 6, 0, onBoth},
	{symRTS, IMP, 0x60, 6, 0, onBoth},
	{symRTI, IMP, 0x40, 6, 0, onBoth},

	{symNOP, IMP, 0xea, 2, 0, onBoth},

	{symTAX, IMP, 0xaa, 2, 0, onBoth},
	{symTXA, IMP, 0x8a, 2, 0, onBoth},
	{symTAY, IMP, 0xa8, 2, 0, onBoth},
	{symTYA, IMP, 0x98, 2, 0, onBoth},
	{symTXS, IMP, 0x9a, 2, 0, onBoth},
	{symTSX, IMP, 0xba, 2, 0, onBoth},

	{symTRB, ZPG, 0x14, 5, 0, onCMOS},
	{symTRB, ABS, 0x1c, 6, 0, onCMOS},
	{symTSB, ZPG, 0x04, 5, 0, onCMOS},
	{symTSB, ABS, 0x0c, 6, 0, onCMOS},

	{symPHA, IMP, 0x48, 3, 0, onBoth},
	{symPLA, IMP, 0x68, 4, 0, onBoth},
	{symPHP, IMP, 0x08, 3, 0, onBoth},
	{symPLP, IMP, 0x28, 4, 0, onBoth},
	{symPHX, IMP, 0xda, 3, 0, onCMOS},
	{symPLX, IMP, 0xfa, 4, 0, onCMOS},
	{symPHY, IMP, 0x5a, 3, 0, onCMOS},
	{symPLY, IMP, 0x7a, 4, 0, onCMOS},

	{symASL, ACC, 0x0a, 2, 0, onBoth},
	{symASL, ZPG, 0x06, 5, 0, onBoth},
	{symASL, ZPX, 0x16, 6, 0, onBoth},
	{symASL, ABS, 0x0e, 6, 0, onBoth},
	{symASL, ABX, 0x1e, 7, 0, onBoth},

	{symLSR, ACC, 0x4a, 2, 0, onBoth},
	{symLSR, ZPG, 0x46, 5, 0, onBoth},
	{symLSR, ZPX, 0x56, 6, 0, onBoth},
	{symLSR, ABS, 0x4e, 6, 0, onBoth},
	{symLSR, ABX, 0x5e, 7, 0, onBoth},

	{symROL, ACC, 0x2a, 2, 0, onBoth},
	{symROL, ZPG, 0x26, 5, 0, onBoth},
	{symROL, ZPX, 0x36, 6, 0, onBoth},
	{symROL, ABS, 0x2e, 6, 0, onBoth},
	{symROL, ABX, 0x3e, 7, 0, onBoth},

	{symROR, ACC, 0x6a, 2, 0, onBoth},
	{symROR, ZPG, 0x66, 5, 0, onBoth},
	{symROR, ZPX, 0x76, 6, 0, onBoth},
	{symROR, ABS, 0x6e, 6, 0, onBoth},
	{symROR, ABX, 0x7e, 7, 0, onBoth},

	// Undocumented NMOS combined operations
	{symSLO, IDX, 0x03, 8, 0, onNMOS},
	{symSLO, ZPG, 0x07, 5, 0, onNMOS},
	{symSLO, ABS, 0x0f, 6, 0, onNMOS},
	{symSLO, IDY, 0x13, 8, 0, onNMOS},
	{symSLO, ZPX, 0x17, 6, 0, onNMOS},
	{symSLO, ABY, 0x1b, 7, 0, onNMOS},
	{symSLO, ABX, 0x1f, 7, 0, onNMOS},

	{symRLA, IDX, 0x23, 8, 0, onNMOS},
	{symRLA, ZPG, 0x27, 5, 0, onNMOS},
	{symRLA, ABS, 0x2f, 6, 0, onNMOS},
	{symRLA, IDY, 0x33, 8, 0, onNMOS},
	{symRLA, ZPX, 0x37, 6, 0, onNMOS},
	{symRLA, ABY, 0x3b, 7, 0, onNMOS},
	{symRLA, ABX, 0x3f, 7, 0, onNMOS},

	{symSRE, IDX, 0x43, 8, 0, onNMOS},
	{symSRE, ZPG, 0x47, 5, 0, onNMOS},
	{symSRE, ABS, 0x4f, 6, 0, onNMOS},
	{symSRE, IDY, 0x53, 8, 0, onNMOS},
	{symSRE, ZPX, 0x57, 6, 0, onNMOS},
	{symSRE, ABY, 0x5b, 7, 0, onNMOS},
	{symSRE, ABX, 0x5f, 7, 0, onNMOS},

	{symRRA, IDX, 0x63, 8, 0, onNMOS},
	{symRRA, ZPG, 0x67, 5, 0, onNMOS},
	{symRRA, ABS, 0x6f, 6, 0, onNMOS},
	{symRRA, IDY, 0x73, 8, 0, onNMOS},
	{symRRA, ZPX, 0x77, 6, 0, onNMOS},
	{symRRA, ABY, 0x7b, 7, 0, onNMOS},
	{symRRA, ABX, 0x7f, 7, 0, onNMOS},

	{symDCP, IDX, 0xc3, 8, 0, onNMOS},
	{symDCP, ZPG, 0xc7, 5, 0, onNMOS},
	{symDCP, ABS, 0xcf, 6, 0, onNMOS},
	{symDCP, IDY, 0xd3, 8, 0, onNMOS},
	{symDCP, ZPX, 0xd7, 6, 0, onNMOS},
	{symDCP, ABY, 0xdb, 7, 0, onNMOS},
	{symDCP, ABX, 0xdf, 7, 0, onNMOS},

	{symISB, IDX, 0xe3, 8, 0, onNMOS},
	{symISB, ZPG, 0xe7, 5, 0, onNMOS},
	{symISB, ABS, 0xef, 6, 0, onNMOS},
	{symISB, IDY, 0xf3, 8, 0, onNMOS},
	{symISB, ZPX, 0xf7, 6, 0, onNMOS},
	{symISB, ABY, 0xfb, 7, 0, onNMOS},
	{symISB, ABX, 0xff, 7, 0, onNMOS},

	{symSAX, IDX, 0x83, 6, 0, onNMOS},
	{symSAX, ZPG, 0x87, 3, 0, onNMOS},
	{symSAX, ABS, 0x8f, 4, 0, onNMOS},
	{symSAX, ZPY, 0x97, 4, 0, onNMOS},

	{symLAX, IDX, 0xa3, 6, 0, onNMOS},
	{symLAX, ZPG, 0xa7, 3, 0, onNMOS},
	{symLAX, ABS, 0xaf, 4, 0, onNMOS},
	{symLAX, IDY, 0xb3, 5, 1, onNMOS},
	{symLAX, ZPY, 0xb7, 4, 0, onNMOS},
	{symLAX, ABY, 0xbb, 4, 1, onNMOS},
	{symLAX, ABY, 0xbf, 4, 1, onNMOS},
}

// Opcodes with no documented behavior. They consume their operand bytes
// and cycles and do nothing else.
type unusedData struct {
	opcode byte
	mode   Mode
	cycles byte
}

var unusedNMOS = []unusedData{
	{0x02, IMP, 2}, {0x12, IMP, 2}, {0x22, IMP, 2}, {0x32, IMP, 2},
	{0x42, IMP, 2}, {0x52, IMP, 2}, {0x62, IMP, 2}, {0x72, IMP, 2},
	{0x92, IMP, 2}, {0xb2, IMP, 2}, {0xd2, IMP, 2}, {0xf2, IMP, 2},
	{0x1a, IMP, 2}, {0x3a, IMP, 2}, {0x5a, IMP, 2}, {0x7a, IMP, 2},
	{0xda, IMP, 2}, {0xfa, IMP, 2},
	{0x0b, IMM, 2}, {0x2b, IMM, 2}, {0x4b, IMM, 2}, {0x6b, IMM, 2},
	{0x8b, IMM, 2}, {0xab, IMM, 2}, {0xcb, IMM, 2},
	{0x80, IMM, 2}, {0x82, IMM, 2}, {0x89, IMM, 2}, {0xc2, IMM, 2},
	{0xe2, IMM, 2},
	{0x04, ZPG, 3}, {0x44, ZPG, 3}, {0x64, ZPG, 3},
	{0x14, ZPX, 4}, {0x34, ZPX, 4}, {0x54, ZPX, 4}, {0x74, ZPX, 4},
	{0xd4, ZPX, 4}, {0xf4, ZPX, 4},
	{0x0c, ABS, 4},
	{0x1c, ABX, 4}, {0x3c, ABX, 4}, {0x5c, ABX, 4}, {0x7c, ABX, 4},
	{0xdc, ABX, 4}, {0xfc, ABX, 4},
	{0x9c, ABX, 5}, {0x9b, ABY, 5}, {0x9e, ABY, 5}, {0x9f, ABY, 5},
	{0x93, IDY, 6},
}

var unusedCMOS = []unusedData{
	{0x02, IMM, 2}, {0x22, IMM, 2}, {0x42, IMM, 2}, {0x62, IMM, 2},
	{0x82, IMM, 2}, {0xc2, IMM, 2}, {0xe2, IMM, 2},
	{0x44, ZPG, 3},
	{0x54, ZPX, 4}, {0xd4, ZPX, 4}, {0xf4, ZPX, 4},
	{0x5c, ABS, 8}, {0xdc, ABS, 4}, {0xfc, ABS, 4},
}

func init() {
	// Every opcode ending in 3, 7, B or F is a single-byte, two-cycle
	// no-op on the 65c02.
	for hi := 0; hi < 16; hi++ {
		for _, lo := range []int{0x3, 0x7, 0xb, 0xf} {
			unusedCMOS = append(unusedCMOS, unusedData{byte(hi<<4 | lo), IMP, 2})
		}
	}
	instructionSets = [2]*InstructionSet{
		newInstructionSet(NMOS),
		newInstructionSet(CMOS),
	}
}

// An Instruction describes a CPU instruction, including its name,
// its addressing mode, its opcode value, its operand size, and its CPU cycle
// cost.
type Instruction struct {
	Name     string   // all-caps name of the instruction
	Mode     Mode     // addressing mode
	Opcode   byte     // hexadecimal opcode value
	Length   byte     // combined size of opcode and operand, in bytes
	Cycles   byte     // number of CPU cycles to execute the instruction
	BPCycles byte     // additional cycles required if boundary page crossed
	sym      opsym    // internal symbol
	fn       instfunc // emulator implementation of the function
}

// An InstructionSet defines the set of all possible instructions that
// can run on the emulated CPU. Instruction sets are built once and never
// modified, so one set may be shared by any number of CPUs.
type InstructionSet struct {
	Arch         Architecture
	instructions [256]Instruction          // all instructions by opcode
	variants     map[string][]*Instruction // variants of each instruction
}

// Lookup retrieves a CPU instruction corresponding to the requested opcode.
func (s *InstructionSet) Lookup(opcode byte) *Instruction {
	return &s.instructions[opcode]
}

// GetInstructions returns all CPU instructions whose name matches the
// provided string.
func (s *InstructionSet) GetInstructions(name string) []*Instruction {
	return s.variants[strings.ToUpper(name)]
}

// Create an instruction set for a CPU architecture.
func newInstructionSet(arch Architecture) *InstructionSet {
	set := &InstructionSet{
		Arch:     arch,
		variants: make(map[string][]*Instruction),
	}

	symToImpl := make(map[opsym]*opcodeImpl, len(impl))
	for i := range impl {
		symToImpl[impl[i].sym] = &impl[i]
	}

	defined := make([]bool, 256)
	define := func(op byte, sym opsym, mode Mode, cycles, bpcycles byte) {
		if defined[op] {
			panic(fmt.Sprintf("cpu: opcode $%02X defined twice", op))
		}
		defined[op] = true

		im := symToImpl[sym]
		inst := &set.instructions[op]
		inst.Name = im.name
		inst.Mode = mode
		inst.Opcode = op
		inst.Length = modeLength[mode]
		inst.Cycles = cycles
		inst.BPCycles = bpcycles
		inst.sym = sym
		inst.fn = im.fn
		set.variants[inst.Name] = append(set.variants[inst.Name], inst)
	}

	mask := archMask(1 << arch)
	for _, d := range data {
		if d.arch&mask != 0 {
			define(d.opcode, d.sym, d.mode, d.cycles, d.bpcycles)
		}
	}

	unused := unusedNMOS
	if arch == CMOS {
		unused = unusedCMOS
	}
	for _, u := range unused {
		define(u.opcode, symNOP, u.mode, u.cycles, 0)
	}

	for i, ok := range defined {
		if !ok {
			panic(fmt.Sprintf("cpu: opcode $%02X missing", i))
		}
	}
	return set
}

var instructionSets [2]*InstructionSet

// GetInstructionSet returns the instruction set for the requested CPU
// architecture.
func GetInstructionSet(arch Architecture) *InstructionSet {
	return instructionSets[arch]
}
