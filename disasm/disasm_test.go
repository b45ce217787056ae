// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package disasm

import (
	"testing"

	"github.com/beevik/fake6502/cpu"
	"github.com/beevik/fake6502/image"
)

func TestDisassemble(t *testing.T) {
	mem := cpu.NewFlatMemory()
	image.Load(mem, image.MustParseHexDump(`
0600: a9 01 8d 00 02 b5 10 b1 20 a1 30 6c fe 12 0a d0 fa ea
0700: b2 40 7c 34 12 1a 03`)...)

	tests := []struct {
		arch  cpu.Architecture
		addr  uint16
		lines []string
	}{
		{cpu.NMOS, 0x0600, []string{
			"LDA #$01",
			"STA $0200",
			"LDA $10,X",
			"LDA ($20),Y",
			"LDA ($30,X)",
			"JMP ($12FE)",
			"ASL A",
			"BNE $060B",
			"NOP",
		}},
		{cpu.CMOS, 0x0700, []string{
			"LDA ($40)",
			"JMP ($1234,X)",
			"INC A",
			"NOP",
		}},
	}

	for _, tt := range tests {
		set := cpu.GetInstructionSet(tt.arch)
		addr := tt.addr
		for _, want := range tt.lines {
			got, next := Disassemble(mem, set, addr)
			if got != want {
				t.Errorf("%v $%04X: got %q, want %q", tt.arch, addr, got, want)
			}
			addr = next
		}
	}
}

func TestGetRegisterString(t *testing.T) {
	r := cpu.Registers{A: 0x12, X: 0x34, Y: 0x56, SP: 0xfd, PC: 0x0600,
		PS: cpu.SignBit | cpu.ReservedBit | cpu.CarryBit}
	got := GetRegisterString(&r)
	want := "A=12 X=34 Y=56 PS=[Nv-bdizC] SP=FD PC=0600"
	if got != want {
		t.Errorf("GetRegisterString:\n got %q\nwant %q", got, want)
	}
}
