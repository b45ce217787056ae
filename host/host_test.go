// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"bytes"
	"strings"
	"testing"

	"github.com/beevik/fake6502/cpu"
	"github.com/beevik/fake6502/log"
)

// Counts X up to 5, then calls a subroutine that stores $42 at $0200
// and traps in a jump to itself.
//
//	0600  LDX #$00
//	0602  INX
//	0603  CPX #$05
//	0605  BNE $0602
//	0607  JSR $060D
//	060A  JMP $060A
//	060D  LDA #$42
//	060F  STA $0200
//	0612  RTS
const testProgram = `
0600: a2 00 e8 e0 05 d0 fb
0607: 20 0d 06
060a: 4c 0a 06
# subroutine
060d: a9 42 8d 00 02 60
`

func newTestHost(t *testing.T) *Host {
	t.Helper()
	log.Disable()

	cfg := DefaultConfig()
	cfg.ResetVector = 0x0600
	cfg.Load = []LoadSpec{{Path: writeFile(t, "prog.hex", testProgram)}}
	h, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return h
}

func runScript(t *testing.T, h *Host, script string) string {
	t.Helper()
	var out bytes.Buffer
	if err := h.RunCommands(strings.NewReader(script), &out, false); err != nil {
		t.Fatal(err)
	}
	return out.String()
}

func expectOutput(t *testing.T, out string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Errorf("output missing %q:\n%s", w, out)
		}
	}
}

func expectPC(t *testing.T, h *Host, pc uint16) {
	t.Helper()
	if h.cpu.Reg.PC != pc {
		t.Errorf("PC incorrect. exp: $%04X, got: $%04X", pc, h.cpu.Reg.PC)
	}
}

func TestNewHost(t *testing.T) {
	h := newTestHost(t)
	expectPC(t, h, 0x0600)
	if h.cpu.Variant() != cpu.WDC65C02 {
		t.Errorf("variant incorrect. exp: %s, got: %s", cpu.WDC65C02.Name, h.cpu.Variant().Name)
	}
	if h.cpu.Reg.SP != 0xfd {
		t.Errorf("SP incorrect. exp: $FD, got: $%02X", h.cpu.Reg.SP)
	}
}

func TestRunUntilTrap(t *testing.T) {
	h := newTestHost(t)
	out := runScript(t, h, "run\n")

	expectOutput(t, out, "Running from $0600.", "Trap at $060A.")
	expectPC(t, h, 0x060a)
	if h.cpu.Reg.A != 0x42 || h.cpu.Reg.X != 0x05 {
		t.Errorf("registers incorrect: A=$%02X X=$%02X", h.cpu.Reg.A, h.cpu.Reg.X)
	}
	if got := h.mem.LoadByte(0x0200); got != 0x42 {
		t.Errorf("$0200 incorrect. exp: $42, got: $%02X", got)
	}
	if h.cpu.Cycles != 57 {
		t.Errorf("Cycles incorrect. exp: 57, got: %d", h.cpu.Cycles)
	}
	if h.cpu.Instructions != 21 {
		t.Errorf("Instructions incorrect. exp: 21, got: %d", h.cpu.Instructions)
	}
}

func TestBreakpointThenStep(t *testing.T) {
	h := newTestHost(t)
	out := runScript(t, h, "breakpoint add $060D\nrun\nstep in\nbreakpoint list\n")

	expectOutput(t, out,
		"Breakpoint added at $060D.",
		"Breakpoint hit at $060D.",
		"060F-   8D 00 02    STA $0200",
		"$060D true     1",
	)
	expectPC(t, h, 0x060f)
}

func TestDisabledBreakpoint(t *testing.T) {
	h := newTestHost(t)
	out := runScript(t, h, "ba $060D\nbd $060D\nrun\n")

	expectOutput(t, out, "Breakpoint at $060D disabled.", "Trap at $060A.")
	if strings.Contains(out, "Breakpoint hit") {
		t.Errorf("disabled breakpoint was hit:\n%s", out)
	}
}

func TestDataBreakpoint(t *testing.T) {
	h := newTestHost(t)
	out := runScript(t, h, "databreakpoint add $0200 $42\nrun\n")

	expectOutput(t, out,
		"Conditional data breakpoint added at $0200 for value $42.",
		"Data breakpoint hit on address $0200.",
		"060F-   8D 00 02    STA $0200",
	)
	expectPC(t, h, 0x0612)
}

func TestStepOverAndOut(t *testing.T) {
	h := newTestHost(t)
	runScript(t, h, "register pc $0607\nstep over\n")
	expectPC(t, h, 0x060a)
	if h.cpu.Reg.A != 0x42 || h.cpu.Reg.SP != 0xfd {
		t.Errorf("registers incorrect: A=$%02X SP=$%02X", h.cpu.Reg.A, h.cpu.Reg.SP)
	}

	h = newTestHost(t)
	runScript(t, h, "register pc $0607\nstep in\n")
	expectPC(t, h, 0x060d)
	runScript(t, h, "step out\n")
	expectPC(t, h, 0x060a)
	if h.cpu.Reg.SP != 0xfd {
		t.Errorf("SP incorrect. exp: $FD, got: $%02X", h.cpu.Reg.SP)
	}
}

func TestStepCount(t *testing.T) {
	h := newTestHost(t)
	runScript(t, h, "step in 4\n")
	expectPC(t, h, 0x0602)
	if h.cpu.Reg.X != 1 {
		t.Errorf("X incorrect. exp: $01, got: $%02X", h.cpu.Reg.X)
	}
}

func TestDisassembleCommand(t *testing.T) {
	h := newTestHost(t)
	out := runScript(t, h, "disassemble $0600 3\n\n")

	expectOutput(t, out,
		"0600-   A2 00       LDX #$00",
		"0602-   E8          INX",
		"0603-   E0 05       CPX #$05",
		// Empty line repeats from where the last one ended.
		"0605-   D0 FB       BNE $0602",
		"0607-   20 0D 06    JSR $060D",
		"060A-   4C 0A 06    JMP $060A",
	)
}

func TestMemoryCommands(t *testing.T) {
	h := newTestHost(t)
	out := runScript(t, h, `memory set $0300 1 2 'A'
memory copy $0310 $0300 $0302
memory dump $0310 3
memory dump $0600 8

`)

	expectOutput(t, out,
		"0300- 01 02 41",
		"Copied $0300..$0302 to $0310..$0312.",
		"0310- 01 02 41",
		"0600- A2 00 E8 E0 05 D0 FB 20",
		"0608- 0D 06 4C 0A 06 A9 42 8D",
	)
	for i, want := range []byte{1, 2, 'A'} {
		if got := h.mem.LoadByte(0x0310 + uint16(i)); got != want {
			t.Errorf("$%04X incorrect. exp: $%02X, got: $%02X", 0x0310+i, want, got)
		}
	}
}

func TestMemoryDumpAligned(t *testing.T) {
	h := newTestHost(t)
	out := runScript(t, h, "memory dump $0602 16\n")

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	want := []string{
		"0600-       E8 E0 05 D0 FB 20",
		"0608- 0D 06 4C 0A 06 A9 42 8D",
		"0610- 00 02",
	}
	if len(lines) != len(want) {
		t.Fatalf("exp %d lines, got %d:\n%s", len(want), len(lines), out)
	}
	for i := range want {
		if !strings.HasPrefix(lines[i], want[i]) {
			t.Errorf("line %d: exp prefix %q, got %q", i, want[i], lines[i])
		}
	}
}

func TestRegisterCommand(t *testing.T) {
	h := newTestHost(t)
	out := runScript(t, h, "register a $12\nregister x 7\nregister c true\nregister sp $80\nregister\n")

	expectOutput(t, out,
		"Register A set to $12.",
		"Register X set to $07.",
		"Flag C set to true.",
		"Register SP set to $80.",
		"A=12 X=07 Y=00 PS=[nv-bdIzC] SP=80 PC=0600",
	)
}

func TestEvaluateAndSet(t *testing.T) {
	h := newTestHost(t)
	out := runScript(t, h, "evaluate 2+3*4\nset hexmode true\nevaluate 10\nevaluate pc + 1\nset bogus 1\n")

	expectOutput(t, out,
		"$000E (14)",
		"Setting updated.",
		"$0010 (16)",
		"$0601 (1537)",
		"setting 'bogus' not found",
	)
	if !h.settings.HexMode || !h.exprParser.hexMode {
		t.Error("hex mode not enabled")
	}
}

func TestInterruptCommands(t *testing.T) {
	h := newTestHost(t)
	out := runScript(t, h, `memory set $fffe $00 $07
memory set $fffa $00 $08
irq
register i 0
irq
nmi
`)

	expectOutput(t, out,
		"IRQ ignored: interrupts are disabled.",
		"Flag I set to false.",
		"IRQ taken. PC=$0700.",
		"NMI taken. PC=$0800.",
	)
	expectPC(t, h, 0x0800)
	// Two frames of three bytes each.
	if h.cpu.Reg.SP != 0xf7 {
		t.Errorf("SP incorrect. exp: $F7, got: $%02X", h.cpu.Reg.SP)
	}
}

func TestResetCommand(t *testing.T) {
	h := newTestHost(t)
	out := runScript(t, h, "run\nreset\n")
	expectOutput(t, out, "CPU reset. PC=$0600.")
	expectPC(t, h, 0x0600)
	if h.cpu.Cycles != 0 {
		t.Errorf("Cycles incorrect. exp: 0, got: %d", h.cpu.Cycles)
	}
}

func TestBrkStopsRun(t *testing.T) {
	h := newTestHost(t)
	out := runScript(t, h, "memory set $0620 $ea $00\nrun $0620\n")

	expectOutput(t, out, "BRK at $0621.")
	expectPC(t, h, 0x0621)
	if h.cpu.Cycles != 2 {
		t.Errorf("Cycles incorrect. exp: 2, got: %d", h.cpu.Cycles)
	}
}

func TestVariantCommand(t *testing.T) {
	h := newTestHost(t)
	out := runScript(t, h, "register a $33\nvariant 2a03\nvariant\nvariant z80\n")

	expectOutput(t, out,
		"CPU variant set to 2a03.",
		"  * 2a03   NMOS, no decimal",
		"    65c02  CMOS, decimal",
		`unknown cpu variant "z80"`,
	)
	if h.cpu.Variant() != cpu.RP2A03 {
		t.Errorf("variant incorrect. exp: 2a03, got: %s", h.cpu.Variant().Name)
	}
	if h.cpu.Reg.A != 0x33 {
		t.Errorf("A not preserved. exp: $33, got: $%02X", h.cpu.Reg.A)
	}

	// The debugger follows the CPU to its new variant.
	out = runScript(t, h, "ba $060D\nrun\n")
	expectOutput(t, out, "Breakpoint hit at $060D.")
}

func TestLoadCommand(t *testing.T) {
	h := newTestHost(t)
	bin := writeFile(t, "data.bin", "\xa9\x07\x00")
	out := runScript(t, h, "load "+bin+"\nload "+bin+" $0900\n")

	expectOutput(t, out,
		"Failed to load 'data.bin'",
		"Loaded 'data.bin' to $0900..$0902.",
	)
	expectPC(t, h, 0x0900)
}

func TestCommandErrors(t *testing.T) {
	h := newTestHost(t)
	out := runScript(t, h, "bogus\nre\nbreakpoint remove $1234\nbreakpoint add\nquit\nregister\n")

	expectOutput(t, out,
		"Command not found.",
		"Command is ambiguous.",
		"No breakpoint was set on $1234.",
		"Usage: breakpoint add <address>",
	)
	if strings.Contains(out, "PC=0600") {
		t.Errorf("command ran after quit:\n%s", out)
	}
}

func TestHelpCommand(t *testing.T) {
	h := newTestHost(t)
	out := runScript(t, h, "help\nhelp step\nhelp memory copy\n? bogus\nmemory\n")

	expectOutput(t, out,
		"fake6502 commands:",
		"    breakpoint      Breakpoint commands",
		"    databreakpoint  Data breakpoint commands",
		"step commands:",
		"    out   Step out of the current subroutine",
		"Usage: memory copy <dst addr> <src addr begin> <src addr end>",
		"Description:\n   Copy memory from one range of addresses to another.",
		"Shortcut: mc",
		"Command not found.",
		"memory commands:",
		"    dump  Dump memory at address",
	)
}

func TestShortcuts(t *testing.T) {
	h := newTestHost(t)
	out := runScript(t, h, "ms $0300 $99\nm $0300 1\nba $0602\nbl\nr x 3\n. a 4\ne x+a\nsi\n")

	expectOutput(t, out,
		"0300- 99",
		"Breakpoint added at $0602.",
		"$0602 true     0",
		"Register X set to $03.",
		"Register A set to $04.",
		"$0007 (7)",
	)
	expectPC(t, h, 0x0602)
}

func TestTraceLogging(t *testing.T) {
	h := newTestHost(t)
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.Disable()

	runScript(t, h, "set trace true\nsi\nset trace false\nsi\n")
	out := buf.String()
	for _, want := range []string{"_mod=cpu", "LDX #$00", "regs="} {
		if !strings.Contains(out, want) {
			t.Errorf("trace output %q missing %q", out, want)
		}
	}
	if strings.Contains(out, "INX") {
		t.Errorf("instruction traced after trace was turned off: %q", out)
	}

	// Enabling the cpu module directly traces without the setting.
	buf.Reset()
	log.EnableDebugModules(log.ModCPU.Mask())
	runScript(t, h, "si\n")
	if !strings.Contains(buf.String(), "CPX #$05") {
		t.Errorf("cpu module trace missing: %q", buf.String())
	}
	expectPC(t, h, 0x0605)
}

func TestBreak(t *testing.T) {
	h := newTestHost(t)
	h.Break()

	// A pending break from before a run is discarded when the run starts,
	// so the program still reaches its trap.
	out := runScript(t, h, "run\n")
	expectOutput(t, out, "Trap at $060A.")
}
