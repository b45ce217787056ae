// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import "github.com/beevik/fake6502/cpu"

// The debugHandler receives breakpoint and BRK notifications from the cpu
// and forwards them to the host.
type debugHandler struct {
	host *Host
}

func newDebugHandler(h *Host) *debugHandler {
	return &debugHandler{host: h}
}

func (d *debugHandler) OnBreakpoint(c *cpu.CPU, b *cpu.Breakpoint) {
	d.host.onBreakpoint(c, b)
}

func (d *debugHandler) OnDataBreakpoint(c *cpu.CPU, b *cpu.DataBreakpoint) {
	d.host.onDataBreakpoint(c, b)
}

func (d *debugHandler) OnBrk(c *cpu.CPU) {
	d.host.onBrk(c)
}
