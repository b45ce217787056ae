// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/beevik/cmd"

	"github.com/beevik/fake6502/cpu"
)

func (h *Host) cmdHelp(c *cmd.Command, args []string) error {
	if err := cmds.GetHelp(h.output, args); err != nil {
		h.printf("%v.\n", err)
	}
	h.flush()
	return nil
}

func (h *Host) cmdBreakpointList(c *cmd.Command, args []string) error {
	h.println("Addr  Enabled  Hits")
	h.println("----- -------  ----")
	for _, b := range h.debugger.GetBreakpoints() {
		h.printf("$%04X %-5v    %d\n", b.Address, !b.Disabled, b.Hits)
	}
	return nil
}

// breakpointArg parses the address argument shared by the breakpoint
// commands. It reports false after printing the problem.
func (h *Host) breakpointArg(c *cmd.Command, args []string) (uint16, bool) {
	if len(args) < 1 {
		h.usage(c)
		return 0, false
	}
	addr, err := h.parseExpr(args[0])
	if err != nil {
		h.printf("%v\n", err)
		return 0, false
	}
	return addr, true
}

func (h *Host) cmdBreakpointAdd(c *cmd.Command, args []string) error {
	addr, ok := h.breakpointArg(c, args)
	if !ok {
		return nil
	}
	h.debugger.AddBreakpoint(addr)
	h.printf("Breakpoint added at $%04X.\n", addr)
	return nil
}

func (h *Host) cmdBreakpointRemove(c *cmd.Command, args []string) error {
	addr, ok := h.breakpointArg(c, args)
	if !ok {
		return nil
	}
	if !h.debugger.RemoveBreakpoint(addr) {
		h.printf("No breakpoint was set on $%04X.\n", addr)
		return nil
	}
	h.printf("Breakpoint at $%04X removed.\n", addr)
	return nil
}

func (h *Host) cmdBreakpointEnable(c *cmd.Command, args []string) error {
	return h.enableBreakpoint(c, args, true)
}

func (h *Host) cmdBreakpointDisable(c *cmd.Command, args []string) error {
	return h.enableBreakpoint(c, args, false)
}

func (h *Host) enableBreakpoint(c *cmd.Command, args []string, enable bool) error {
	addr, ok := h.breakpointArg(c, args)
	if !ok {
		return nil
	}
	b := h.debugger.GetBreakpoint(addr)
	if b == nil {
		h.printf("No breakpoint was set on $%04X.\n", addr)
		return nil
	}
	b.Disabled = !enable
	h.printf("Breakpoint at $%04X %s.\n", addr, enabledString(enable))
	return nil
}

func (h *Host) cmdDataBreakpointList(c *cmd.Command, args []string) error {
	h.println("Addr  Enabled  Value  Hits")
	h.println("----- -------  -----  ----")
	for _, b := range h.debugger.GetDataBreakpoints() {
		if b.Conditional {
			h.printf("$%04X %-5v    $%02X    %d\n", b.Address, !b.Disabled, b.Value, b.Hits)
		} else {
			h.printf("$%04X %-5v    <none> %d\n", b.Address, !b.Disabled, b.Hits)
		}
	}
	return nil
}

func (h *Host) cmdDataBreakpointAdd(c *cmd.Command, args []string) error {
	addr, ok := h.breakpointArg(c, args)
	if !ok {
		return nil
	}

	if len(args) > 1 {
		value, err := h.parseExpr(args[1])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		h.debugger.AddConditionalDataBreakpoint(addr, byte(value))
		h.printf("Conditional data breakpoint added at $%04X for value $%02X.\n", addr, byte(value))
	} else {
		h.debugger.AddDataBreakpoint(addr)
		h.printf("Data breakpoint added at $%04X.\n", addr)
	}
	return nil
}

func (h *Host) cmdDataBreakpointRemove(c *cmd.Command, args []string) error {
	addr, ok := h.breakpointArg(c, args)
	if !ok {
		return nil
	}
	if !h.debugger.RemoveDataBreakpoint(addr) {
		h.printf("No data breakpoint was set on $%04X.\n", addr)
		return nil
	}
	h.printf("Data breakpoint at $%04X removed.\n", addr)
	return nil
}

func (h *Host) cmdDataBreakpointEnable(c *cmd.Command, args []string) error {
	return h.enableDataBreakpoint(c, args, true)
}

func (h *Host) cmdDataBreakpointDisable(c *cmd.Command, args []string) error {
	return h.enableDataBreakpoint(c, args, false)
}

func (h *Host) enableDataBreakpoint(c *cmd.Command, args []string, enable bool) error {
	addr, ok := h.breakpointArg(c, args)
	if !ok {
		return nil
	}
	b := h.debugger.GetDataBreakpoint(addr)
	if b == nil {
		h.printf("No data breakpoint was set on $%04X.\n", addr)
		return nil
	}
	b.Disabled = !enable
	h.printf("Data breakpoint at $%04X %s.\n", addr, enabledString(enable))
	return nil
}

func enabledString(enable bool) string {
	if enable {
		return "enabled"
	}
	return "disabled"
}

func (h *Host) cmdDisassemble(c *cmd.Command, args []string) error {
	if len(args) == 0 {
		args = []string{"$"}
	}

	addr, err := h.parseAddrArg(args[0], h.settings.NextDisasmAddr)
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	lines := h.settings.DisasmLines
	if len(args) > 1 {
		l, err := h.parseExpr(args[1])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		lines = int(l)
	}

	for range lines {
		d, next := h.disassemble(addr, 0)
		h.println(d)
		addr = next
	}

	h.settings.NextDisasmAddr = addr
	h.lastCmd.args = []string{"$", fmt.Sprintf("$%X", lines)}
	return nil
}

func (h *Host) cmdEvaluate(c *cmd.Command, args []string) error {
	if len(args) < 1 {
		h.usage(c)
		return nil
	}

	v, err := h.exprParser.Parse(strings.Join(args, " "), h)
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}
	h.printf("$%04X (%d)\n", uint16(v), v)
	return nil
}

func (h *Host) cmdIRQ(c *cmd.Command, args []string) error {
	if h.cpu.Reg.Test(cpu.InterruptDisableBit) {
		h.println("IRQ ignored: interrupts are disabled.")
		return nil
	}
	h.cpu.IRQ()
	h.printf("IRQ taken. PC=$%04X.\n", h.cpu.Reg.PC)
	h.settings.NextDisasmAddr = h.cpu.Reg.PC
	return nil
}

func (h *Host) cmdNMI(c *cmd.Command, args []string) error {
	h.cpu.NMI()
	h.printf("NMI taken. PC=$%04X.\n", h.cpu.Reg.PC)
	h.settings.NextDisasmAddr = h.cpu.Reg.PC
	return nil
}

func (h *Host) cmdLoad(c *cmd.Command, args []string) error {
	if len(args) < 1 {
		h.usage(c)
		return nil
	}

	filename := args[0]
	loadAddr := -1
	if len(args) >= 2 {
		addr, err := h.parseExpr(args[1])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		loadAddr = int(addr)
	}

	segs, err := h.load(filename, "", loadAddr)
	if err != nil {
		h.printf("Failed to load '%s': %v\n", filepath.Base(filename), err)
		return nil
	}

	var origin = -1
	for _, s := range segs {
		if len(s.Data) == 0 {
			continue
		}
		if origin < 0 {
			origin = int(s.Addr)
		}
		h.printf("Loaded '%s' to $%04X..$%04X.\n", filepath.Base(filename), s.Addr, s.End()-1)
	}
	if origin < 0 {
		h.printf("File '%s' contains no data.\n", filepath.Base(filename))
		return nil
	}

	h.cpu.SetPC(uint16(origin))
	h.settings.NextDisasmAddr = uint16(origin)
	return nil
}

func (h *Host) cmdMemoryDump(c *cmd.Command, args []string) error {
	if len(args) == 0 {
		args = []string{"$"}
	}

	addr, err := h.parseAddrArg(args[0], h.settings.NextMemDumpAddr)
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	bytes := uint16(h.settings.MemDumpBytes)
	if len(args) >= 2 {
		bytes, err = h.parseExpr(args[1])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
	}

	h.dumpMemory(addr, bytes)

	h.settings.NextMemDumpAddr = addr + bytes
	h.lastCmd.args = []string{"$", fmt.Sprintf("$%X", bytes)}
	return nil
}

func (h *Host) cmdMemorySet(c *cmd.Command, args []string) error {
	if len(args) < 2 {
		h.usage(c)
		return nil
	}

	addr, err := h.parseExpr(args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	values := make([]byte, 0, len(args)-1)
	for _, arg := range args[1:] {
		v, err := h.parseExpr(arg)
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		values = append(values, byte(v))
	}

	h.mem.StoreBytes(addr, values)
	h.dumpMemory(addr, uint16(len(values)))
	return nil
}

func (h *Host) cmdMemoryCopy(c *cmd.Command, args []string) error {
	if len(args) < 3 {
		h.usage(c)
		return nil
	}

	var a [3]uint16
	for i := range a {
		v, err := h.parseExpr(args[i])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		a[i] = v
	}
	dst, begin, end := a[0], a[1], a[2]
	if end < begin {
		h.println("Source range end precedes its beginning.")
		return nil
	}

	buf := make([]byte, int(end)-int(begin)+1)
	h.mem.LoadBytes(begin, buf)
	h.mem.StoreBytes(dst, buf)
	h.printf("Copied $%04X..$%04X to $%04X..$%04X.\n",
		begin, end, dst, dst+uint16(len(buf)-1))
	return nil
}

func (h *Host) cmdQuit(c *cmd.Command, args []string) error {
	return errQuit
}

// Status flags that may be changed with the register command.
var flagRegisters = map[string]byte{
	"n": cpu.SignBit, "sign": cpu.SignBit,
	"v": cpu.OverflowBit, "overflow": cpu.OverflowBit,
	"d": cpu.DecimalBit, "decimal": cpu.DecimalBit,
	"i": cpu.InterruptDisableBit, "interrupt": cpu.InterruptDisableBit,
	"z": cpu.ZeroBit, "zero": cpu.ZeroBit,
	"c": cpu.CarryBit, "carry": cpu.CarryBit,
}

func (h *Host) cmdRegister(c *cmd.Command, args []string) error {
	switch len(args) {
	case 0:
		d, _ := h.disassemble(h.cpu.Reg.PC, displayAll)
		h.println(d)
		return nil
	case 1:
		h.usage(c)
		return nil
	}

	key, value := strings.ToLower(args[0]), strings.Join(args[1:], " ")
	reg := &h.cpu.Reg

	if mask, ok := flagRegisters[key]; ok {
		on, err := stringToBool(value)
		if err != nil {
			v, verr := h.exprParser.Parse(value, h)
			if verr != nil {
				h.printf("%v\n", err)
				return nil
			}
			on = v != 0
		}
		reg.Put(mask, on)
		h.printf("Flag %s set to %v.\n", strings.ToUpper(key), on)
		return nil
	}

	v, err := h.parseExpr(value)
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	switch key {
	case "a":
		reg.A = byte(v)
	case "x":
		reg.X = byte(v)
	case "y":
		reg.Y = byte(v)
	case "s", "sp":
		key, reg.SP = "sp", byte(v)
	case "p", "ps":
		key, reg.PS = "ps", byte(v)|cpu.ReservedBit
	case ".", "pc":
		key, reg.PC = "pc", v
		h.settings.NextDisasmAddr = v
		h.printf("Register PC set to $%04X.\n", v)
		return nil
	default:
		h.printf("Unknown register '%s'.\n", args[0])
		return nil
	}
	h.printf("Register %s set to $%02X.\n", strings.ToUpper(key), byte(v))
	return nil
}

func (h *Host) cmdReset(c *cmd.Command, args []string) error {
	h.cpu.Reset()
	h.printf("CPU reset. PC=$%04X.\n", h.cpu.Reg.PC)
	h.settings.NextDisasmAddr = h.cpu.Reg.PC
	return nil
}

func (h *Host) cmdRun(c *cmd.Command, args []string) error {
	if len(args) > 0 {
		pc, err := h.parseExpr(args[0])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		h.cpu.SetPC(pc)
	}

	h.printf("Running from $%04X. Press ctrl-C to break.\n", h.cpu.Reg.PC)
	h.execute(func() bool {
		h.step()
		return true
	})
	return nil
}

func (h *Host) cmdSet(c *cmd.Command, args []string) error {
	switch len(args) {
	case 0:
		h.println("Variables:")
		h.settings.Display(h.output)
		h.flush()
		return nil
	case 1:
		h.usage(c)
		return nil
	}

	key, value := args[0], strings.Join(args[1:], " ")

	var err error
	switch h.settings.Kind(key) {
	case reflect.Invalid:
		err = fmt.Errorf("setting '%s' not found", key)
	case reflect.Bool:
		var b bool
		if b, err = stringToBool(value); err == nil {
			err = h.settings.Set(key, b)
		}
	default:
		var v int64
		if v, err = h.exprParser.Parse(value, h); err == nil {
			err = h.settings.Set(key, v)
		}
	}

	if err != nil {
		h.printf("%v\n", err)
		return nil
	}
	h.println("Setting updated.")
	h.onSettingsUpdate()
	return nil
}

// stepCount parses the optional count argument of the step commands.
func (h *Host) stepCount(args []string) int {
	if len(args) > 0 {
		if n, err := h.parseExpr(args[0]); err == nil && n > 0 {
			return int(n)
		}
	}
	return 1
}

// displayStep shows the instruction at PC after a step, leaving out all
// but the last max_step_lines lines of a long run.
func (h *Host) displayStep(remaining int) {
	flags := displayFlags(0)
	if h.settings.StepLineDisplay {
		flags = displayAll
	}
	switch {
	case remaining == h.settings.MaxStepLines:
		h.println("...")
	case remaining < h.settings.MaxStepLines:
		d, _ := h.disassemble(h.cpu.Reg.PC, flags)
		h.println(d)
	}
}

func (h *Host) cmdStepIn(c *cmd.Command, args []string) error {
	n := h.stepCount(args)
	h.execute(func() bool {
		h.step()
		n--
		h.displayStep(n)
		return n > 0
	})
	return nil
}

func (h *Host) cmdStepOver(c *cmd.Command, args []string) error {
	n := h.stepCount(args)
	h.execute(func() bool {
		h.stepOver()
		n--
		h.displayStep(n)
		return n > 0
	})
	return nil
}

func (h *Host) cmdStepOut(c *cmd.Command, args []string) error {
	h.execute(func() bool {
		h.stepOut()
		h.displayStep(0)
		return false
	})
	return nil
}

func (h *Host) cmdVariant(c *cmd.Command, args []string) error {
	if len(args) == 0 {
		for _, v := range cpu.Variants {
			mark := ' '
			if v == h.cpu.Variant() {
				mark = '*'
			}
			bcd := "decimal"
			if !v.Decimal {
				bcd = "no decimal"
			}
			h.printf("  %c %-6s %s, %s\n", mark, v.Name, v.Arch, bcd)
		}
		return nil
	}

	v, err := cpu.LookupVariant(args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	old := h.cpu
	nc := cpu.NewCPU(v, h.mem)
	nc.Reg = old.Reg
	nc.Cycles, nc.Instructions = old.Cycles, old.Instructions
	old.DetachDebugger()
	old.AttachBrkHandler(nil)
	h.attachCPU(nc)

	h.printf("CPU variant set to %s.\n", v.Name)
	return nil
}
