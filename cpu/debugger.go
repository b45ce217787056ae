// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

import (
	"cmp"
	"maps"
	"slices"
)

// A Debugger watches a CPU for breakpoint conditions. It is notified after
// every instruction and before every byte the CPU stores.
type Debugger struct {
	handler         BreakpointHandler
	breakpoints     map[uint16]*Breakpoint
	dataBreakpoints map[uint16]*DataBreakpoint
}

// BreakpointHandler is told when an enabled breakpoint fires.
type BreakpointHandler interface {
	OnBreakpoint(cpu *CPU, b *Breakpoint)
	OnDataBreakpoint(cpu *CPU, b *DataBreakpoint)
}

// A Breakpoint fires when the program counter lands on Address.
type Breakpoint struct {
	Address  uint16
	Disabled bool
	Hits     int
}

// A DataBreakpoint fires when the CPU writes to Address. A conditional
// one fires only for writes of Value.
type DataBreakpoint struct {
	Address     uint16
	Disabled    bool
	Conditional bool
	Value       byte
	Hits        int
}

// NewDebugger returns a debugger with no breakpoints that reports to
// handler.
func NewDebugger(handler BreakpointHandler) *Debugger {
	return &Debugger{
		handler:         handler,
		breakpoints:     make(map[uint16]*Breakpoint),
		dataBreakpoints: make(map[uint16]*DataBreakpoint),
	}
}

// GetBreakpoint returns the breakpoint on addr, or nil.
func (d *Debugger) GetBreakpoint(addr uint16) *Breakpoint {
	return d.breakpoints[addr]
}

// GetBreakpoints returns all breakpoints ordered by address.
func (d *Debugger) GetBreakpoints() []*Breakpoint {
	return slices.SortedFunc(maps.Values(d.breakpoints), func(a, b *Breakpoint) int {
		return cmp.Compare(a.Address, b.Address)
	})
}

// AddBreakpoint sets a breakpoint on addr, replacing any existing one.
func (d *Debugger) AddBreakpoint(addr uint16) *Breakpoint {
	b := &Breakpoint{Address: addr}
	d.breakpoints[addr] = b
	return b
}

// RemoveBreakpoint reports whether there was a breakpoint to remove.
func (d *Debugger) RemoveBreakpoint(addr uint16) bool {
	_, ok := d.breakpoints[addr]
	delete(d.breakpoints, addr)
	return ok
}

// GetDataBreakpoint returns the data breakpoint on addr, or nil.
func (d *Debugger) GetDataBreakpoint(addr uint16) *DataBreakpoint {
	return d.dataBreakpoints[addr]
}

// GetDataBreakpoints returns all data breakpoints ordered by address.
func (d *Debugger) GetDataBreakpoints() []*DataBreakpoint {
	return slices.SortedFunc(maps.Values(d.dataBreakpoints), func(a, b *DataBreakpoint) int {
		return cmp.Compare(a.Address, b.Address)
	})
}

// AddDataBreakpoint fires on every write to addr.
func (d *Debugger) AddDataBreakpoint(addr uint16) *DataBreakpoint {
	b := &DataBreakpoint{Address: addr}
	d.dataBreakpoints[addr] = b
	return b
}

// AddConditionalDataBreakpoint fires on writes of value to addr.
func (d *Debugger) AddConditionalDataBreakpoint(addr uint16, value byte) *DataBreakpoint {
	b := &DataBreakpoint{Address: addr, Conditional: true, Value: value}
	d.dataBreakpoints[addr] = b
	return b
}

// RemoveDataBreakpoint reports whether there was a data breakpoint to
// remove.
func (d *Debugger) RemoveDataBreakpoint(addr uint16) bool {
	_, ok := d.dataBreakpoints[addr]
	delete(d.dataBreakpoints, addr)
	return ok
}

func (d *Debugger) onUpdatePC(cpu *CPU, addr uint16) {
	b := d.breakpoints[addr]
	if b == nil || b.Disabled || d.handler == nil {
		return
	}
	b.Hits++
	d.handler.OnBreakpoint(cpu, b)
}

func (d *Debugger) onDataStore(cpu *CPU, addr uint16, v byte) {
	b := d.dataBreakpoints[addr]
	switch {
	case b == nil, b.Disabled, d.handler == nil:
		return
	case b.Conditional && b.Value != v:
		return
	}
	b.Hits++
	d.handler.OnDataBreakpoint(cpu, b)
}
