// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package host implements an interactive monitor around an emulated 6502
// system: a CPU of a selectable variant, 64K of memory, a debugger with
// address and data breakpoints, and an expression evaluator.
//
// Within the host it is possible to load memory images, step through or
// run machine code, count elapsed CPU cycles, raise interrupts, dump,
// modify and disassemble memory, and manipulate CPU registers.
package host

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/beevik/cmd"

	"github.com/beevik/fake6502/cpu"
	"github.com/beevik/fake6502/disasm"
	"github.com/beevik/fake6502/image"
	"github.com/beevik/fake6502/log"
)

type displayFlags uint8

const (
	displayRegisters displayFlags = 1 << iota
	displayCycles

	displayAll = displayRegisters | displayCycles
)

type state byte

const (
	stateProcessingCommands state = iota
	stateRunning
	stateStopped
)

var errQuit = errors.New("exiting program")

// lastCommand is repeated when an empty line is entered.
type lastCommand struct {
	cmd  *cmd.Command
	args []string
}

// A Host represents a fully emulated 6502 system with 64K of memory and a
// built-in debugger.
type Host struct {
	input       *bufio.Scanner
	output      *bufio.Writer
	interactive bool
	mem         *cpu.FlatMemory
	cpu         *cpu.CPU
	debugger    *cpu.Debugger
	handler     *debugHandler
	lastCmd     *lastCommand
	state       state
	interrupted atomic.Bool
	exprParser  *exprParser
	settings    Settings
	tracing     bool // cpu debug logging was enabled by the trace setting
}

// New creates a host from a configuration. Images listed in the
// configuration are loaded and the CPU is reset.
func New(cfg Config) (*Host, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	v, _ := cpu.LookupVariant(cfg.Variant)

	h := &Host{
		output:     bufio.NewWriter(io.Discard),
		state:      stateProcessingCommands,
		exprParser: newExprParser(),
		settings:   cfg.Settings,
		mem:        cpu.NewFlatMemory(),
	}
	if cfg.Trace {
		h.settings.Trace = true
	}
	h.handler = newDebugHandler(h)
	h.debugger = cpu.NewDebugger(h.handler)
	h.attachCPU(cpu.NewCPU(v, h.mem))

	for _, l := range cfg.Load {
		if _, err := h.load(l.Path, l.Format, l.Addr); err != nil {
			return nil, err
		}
	}
	if cfg.ResetVector >= 0 {
		h.mem.StoreAddress(0xfffc, uint16(cfg.ResetVector))
	}
	h.cpu.Reset()

	h.onSettingsUpdate()
	return h, nil
}

// CPU returns the emulated CPU.
func (h *Host) CPU() *cpu.CPU {
	return h.cpu
}

func (h *Host) attachCPU(c *cpu.CPU) {
	h.cpu = c
	c.AttachDebugger(h.debugger)
	c.AttachBrkHandler(h.handler)
}

// RunCommands accepts host commands from a reader and outputs the results
// to a writer. If the commands are interactive, a prompt is displayed while
// the host waits for the next command to be entered. It returns when the
// input is exhausted or the quit command is entered.
func (h *Host) RunCommands(r io.Reader, w io.Writer, interactive bool) error {
	h.input = bufio.NewScanner(r)
	h.output = bufio.NewWriter(w)
	h.interactive = interactive
	defer h.flush()

	if interactive {
		h.println()
	}

	h.displayPC()

	for {
		h.prompt()

		line, err := h.getLine()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		if strings.TrimSpace(line) != "" {
			n, args, err := cmds.Lookup(line)
			if err != nil {
				h.printf("%v.\n", err)
				continue
			}
			switch n := n.(type) {
			case *cmd.Tree:
				// A subtree name on its own lists its commands.
				n.DisplayHelp(h.output)
				h.flush()
				continue
			case *cmd.Command:
				h.lastCmd = &lastCommand{cmd: n, args: args}
			}
		}
		if h.lastCmd == nil {
			continue
		}

		c := h.lastCmd
		if err := c.cmd.Data.(handler)(h, c.cmd, c.args); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			return err
		}
	}
}

// Break interrupts a running CPU. It may be called from any goroutine,
// typically a signal handler.
func (h *Host) Break() {
	h.interrupted.Store(true)
}

func (h *Host) print(args ...any) {
	fmt.Fprint(h.output, args...)
}

func (h *Host) printf(format string, args ...any) {
	fmt.Fprintf(h.output, format, args...)
	h.flush()
}

func (h *Host) println(args ...any) {
	fmt.Fprintln(h.output, args...)
	h.flush()
}

func (h *Host) flush() {
	h.output.Flush()
}

func (h *Host) getLine() (string, error) {
	if h.input.Scan() {
		return h.input.Text(), nil
	}
	if h.input.Err() != nil {
		return "", h.input.Err()
	}
	return "", io.EOF
}

func (h *Host) prompt() {
	if h.interactive {
		h.print("* ")
		h.flush()
	}
}

func (h *Host) displayPC() {
	if h.interactive {
		d, _ := h.disassemble(h.cpu.Reg.PC, displayAll)
		h.println(d)
	}
}

// usage prints the usage line of a command given bad arguments.
func (h *Host) usage(c *cmd.Command) {
	c.DisplayUsage(h.output)
	h.flush()
}

// parseExpr evaluates an expression and truncates it to 16 bits.
func (h *Host) parseExpr(expr string) (uint16, error) {
	v, err := h.exprParser.Parse(expr, h)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		v = 0x10000 + v
	}
	return uint16(v), nil
}

// parseAddrArg parses an address argument. "$" continues from next and
// "." is the program counter.
func (h *Host) parseAddrArg(arg string, next uint16) (uint16, error) {
	switch arg {
	case "$":
		if next == 0 {
			return h.cpu.Reg.PC, nil
		}
		return next, nil
	case ".":
		return h.cpu.Reg.PC, nil
	}
	return h.parseExpr(arg)
}

func (h *Host) resolveIdentifier(s string) (int64, error) {
	switch strings.ToLower(s) {
	case "a":
		return int64(h.cpu.Reg.A), nil
	case "x":
		return int64(h.cpu.Reg.X), nil
	case "y":
		return int64(h.cpu.Reg.Y), nil
	case "s":
		return int64(h.cpu.Reg.SP), nil
	case "sp":
		return int64(h.cpu.Reg.SP) | 0x0100, nil
	case "p", "ps":
		return int64(h.cpu.Reg.PS), nil
	case ".", "pc":
		return int64(h.cpu.Reg.PC), nil
	}
	return 0, fmt.Errorf("identifier '%s' not found", s)
}

func (h *Host) onSettingsUpdate() {
	h.exprParser.hexMode = h.settings.HexMode
	switch {
	case h.settings.Trace && !h.tracing:
		log.EnableDebugModules(log.ModCPU.Mask())
		h.tracing = true
	case !h.settings.Trace && h.tracing:
		log.DisableDebugModules(log.ModCPU.Mask())
		h.tracing = false
	}
}

// load reads a memory image and stores it into memory. The format is
// "bin" or "hex"; an empty format picks "hex" for .hex files. Binary
// images are stored at addr, which must not be negative.
func (h *Host) load(filename, format string, addr int) ([]image.Segment, error) {
	if format == "" {
		format = "bin"
		if strings.EqualFold(filepath.Ext(filename), ".hex") {
			format = "hex"
		}
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var segs []image.Segment
	switch format {
	case "hex":
		segs, err = image.ParseHexDump(file)
	default:
		if addr < 0 {
			return nil, fmt.Errorf("'%s' is a raw binary and requires an address", filepath.Base(filename))
		}
		var seg image.Segment
		seg, err = image.ReadBinary(file, uint16(addr))
		segs = []image.Segment{seg}
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(filename), err)
	}

	n := image.Load(h.mem, segs...)
	log.ModHost.WithField("file", filename).Infof("loaded %d bytes in %d segments", n, len(segs))
	return segs, nil
}

// step executes one instruction, logging it first when the cpu module
// is traced. A step that leaves the program counter unchanged is
// reported as a trap.
func (h *Host) step() {
	c := h.cpu
	pc := c.Reg.PC
	if log.ModCPU.Enabled(log.DebugLevel) {
		line, _ := disasm.Disassemble(c.Mem, c.InstSet, pc)
		log.ModCPU.WithField("cycles", c.Cycles).
			WithDelayedFields(func() log.Fields {
				return log.Fields{"regs": disasm.GetCompactRegisterString(&c.Reg)}
			}).
			Debugf("%04X  %s", pc, line)
	}

	c.Step()

	if h.state == stateRunning && c.Reg.PC == pc {
		h.state = stateStopped
		h.printf("Trap at $%04X.\n", pc)
		h.displayPC()
	}
}

// execute runs stepFn until it returns false, the CPU stops on a
// breakpoint, BRK or trap, or Break is called.
func (h *Host) execute(stepFn func() bool) {
	h.interrupted.Store(false)
	h.state = stateRunning
	for h.state == stateRunning {
		if h.interrupted.Load() {
			h.state = stateStopped
			h.println()
			h.displayPC()
			break
		}
		if !stepFn() {
			break
		}
	}
	h.state = stateProcessingCommands
	h.settings.NextDisasmAddr = h.cpu.Reg.PC
}

// stepOver executes one instruction. A subroutine call is run until it
// returns to the instruction that follows it with the stack restored.
func (h *Host) stepOver() {
	c := h.cpu
	inst := c.GetInstruction(c.Reg.PC)
	if inst.Name != "JSR" {
		h.step()
		return
	}

	ret, sp := c.Reg.PC+uint16(inst.Length), c.Reg.SP
	h.step()
	for h.state == stateRunning && !(c.Reg.PC == ret && c.Reg.SP == sp) {
		if h.interrupted.Load() {
			return
		}
		h.step()
	}
}

// stepOut runs until the current subroutine returns. Nested calls are
// followed by counting JSR against RTS and RTI.
func (h *Host) stepOut() {
	c := h.cpu
	depth := 0
	for h.state == stateRunning && !h.interrupted.Load() {
		switch c.GetInstruction(c.Reg.PC).Name {
		case "JSR":
			depth++
		case "RTS", "RTI":
			if depth == 0 {
				h.step()
				return
			}
			depth--
		}
		h.step()
	}
}

func (h *Host) disassemble(addr uint16, flags displayFlags) (str string, next uint16) {
	c := h.cpu

	var line string
	line, next = disasm.Disassemble(c.Mem, c.InstSet, addr)

	b := make([]byte, next-addr)
	h.mem.LoadBytes(addr, b)

	str = fmt.Sprintf("%04X-   %-8s    %-15s", addr, codeString(b), line)

	if (flags & displayRegisters) != 0 {
		str += " " + disasm.GetRegisterString(&c.Reg)
	}

	if (flags & displayCycles) != 0 {
		str += fmt.Sprintf(" C=%d", c.Cycles)
	}

	return str, next
}

func (h *Host) dumpMemory(addr0, bytes uint16) {
	if bytes == 0 {
		return
	}

	addr1 := addr0 + bytes - 1
	if addr1 < addr0 {
		addr1 = 0xffff
	}

	buf := []byte("    -" + strings.Repeat(" ", 35))

	// Don't align display for short dumps.
	if addr1-addr0 < 8 {
		addrToBuf(addr0, buf[0:4])
		for a, c1, c2 := uint32(addr0), 6, 32; a <= uint32(addr1); a, c1, c2 = a+1, c1+3, c2+1 {
			m := h.mem.LoadByte(uint16(a))
			byteToBuf(m, buf[c1:c1+2])
			buf[c2] = toPrintableChar(m)
		}
		h.println(strings.TrimRight(string(buf), " "))
		return
	}

	// Align addr0 and addr1 to 8-byte boundaries.
	start := uint32(addr0) & 0xfff8
	stop := min((uint32(addr1)+8)&0xffff8, 0x10000)

	for r := start; r < stop; r += 8 {
		for i := range buf {
			buf[i] = ' '
		}
		buf[4] = '-'
		addrToBuf(uint16(r), buf[0:4])
		for a, c1, c2 := r, 6, 32; c1 < 29; a, c1, c2 = a+1, c1+3, c2+1 {
			if a >= uint32(addr0) && a <= uint32(addr1) {
				m := h.mem.LoadByte(uint16(a))
				byteToBuf(m, buf[c1:c1+2])
				buf[c2] = toPrintableChar(m)
			}
		}
		h.println(strings.TrimRight(string(buf), " "))
	}
}

func (h *Host) onBreakpoint(c *cpu.CPU, b *cpu.Breakpoint) {
	h.state = stateStopped
	h.printf("Breakpoint hit at $%04X.\n", b.Address)
	log.ModHost.WithField("hits", b.Hits).Debugf("breakpoint $%04X", b.Address)
	h.displayPC()
}

func (h *Host) onDataBreakpoint(c *cpu.CPU, b *cpu.DataBreakpoint) {
	h.state = stateStopped
	h.printf("Data breakpoint hit on address $%04X.\n", b.Address)
	log.ModHost.WithField("hits", b.Hits).Debugf("data breakpoint $%04X", b.Address)

	// The store happens mid-instruction; show the instruction that made it.
	if c.LastPC != c.Reg.PC {
		d, _ := h.disassemble(c.LastPC, displayAll)
		h.println(d)
	}
}

// onBrk stops execution with the program counter on the BRK. The program
// may be resumed by moving the program counter past it.
func (h *Host) onBrk(c *cpu.CPU) {
	h.state = stateStopped
	h.printf("BRK at $%04X.\n", c.Reg.PC)
	h.displayPC()
}
