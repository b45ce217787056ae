// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package runner executes independent 6502 programs concurrently. Every
// job gets its own cpu and memory, so jobs of different variants may run
// side by side.
package runner

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/beevik/fake6502/cpu"
	"github.com/beevik/fake6502/disasm"
	"github.com/beevik/fake6502/image"
	"github.com/beevik/fake6502/log"
)

// ErrStepLimit is returned for a job that sets FailOnLimit and executes
// MaxSteps instructions without stopping.
var ErrStepLimit = errors.New("step limit exceeded")

// StopReason tells why a job stopped.
type StopReason byte

const (
	StopBrk   StopReason = iota // a BRK instruction was reached
	StopTrap                    // an instruction left the program counter unchanged
	StopLimit                   // MaxSteps instructions were executed
)

func (r StopReason) String() string {
	switch r {
	case StopBrk:
		return "brk"
	case StopTrap:
		return "trap"
	case StopLimit:
		return "limit"
	}
	return fmt.Sprintf("StopReason(%d)", r)
}

// A Job describes one program run.
type Job struct {
	Name        string
	Variant     cpu.Variant
	Segments    []image.Segment
	Start       uint16 // initial PC when HasStart is set
	HasStart    bool   // false starts at the reset vector
	MaxSteps    uint64 // zero means no limit
	FailOnLimit bool
}

// Result is the machine state a job stopped in.
type Result struct {
	Name         string
	Reg          cpu.Registers
	Cycles       uint64
	Instructions uint64
	Reason       StopReason
}

func (r Result) String() string {
	return fmt.Sprintf("%-12s %-5s %s C=%d I=%d",
		r.Name, r.Reason, disasm.GetRegisterString(&r.Reg), r.Cycles, r.Instructions)
}

// how often a running job checks its context for cancellation
const ctxCheckInterval = 1024

type brkStop struct {
	hit bool
}

func (b *brkStop) OnBrk(c *cpu.CPU) {
	b.hit = true
}

// Run executes jobs with at most limit of them running at once; a limit
// of zero or less means no limit. Results are returned in job order. The
// first job error cancels the others and is returned along with the
// partial results.
func Run(ctx context.Context, jobs []Job, limit int) ([]Result, error) {
	results := make([]Result, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, job := range jobs {
		g.Go(func() error {
			r, err := runJob(ctx, job)
			results[i] = r
			return err
		})
	}

	err := g.Wait()
	return results, err
}

func runJob(ctx context.Context, job Job) (Result, error) {
	mem := cpu.NewFlatMemory()
	image.Load(mem, job.Segments...)

	c := cpu.NewCPU(job.Variant, mem)
	brk := &brkStop{}
	c.AttachBrkHandler(brk)
	c.Reset()
	if job.HasStart {
		c.SetPC(job.Start)
	}

	logger := log.ModRunner.WithField("job", job.Name)
	logger.Debugf("start %s at $%04X", job.Variant.Name, c.Reg.PC)

	result := func(reason StopReason) Result {
		return Result{
			Name:         job.Name,
			Reg:          c.Reg,
			Cycles:       c.Cycles,
			Instructions: c.Instructions,
			Reason:       reason,
		}
	}

	for steps := uint64(0); ; steps++ {
		if job.MaxSteps > 0 && steps >= job.MaxSteps {
			r := result(StopLimit)
			if job.FailOnLimit {
				return r, fmt.Errorf("%s: %w", job.Name, ErrStepLimit)
			}
			logger.Debugf("stopped after %d steps", steps)
			return r, nil
		}
		if steps%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return result(StopLimit), err
			}
		}

		pc := c.Reg.PC
		c.Step()

		switch {
		case brk.hit:
			logger.Debugf("brk at $%04X after %d cycles", pc, c.Cycles)
			return result(StopBrk), nil
		case c.Reg.PC == pc:
			logger.Debugf("trap at $%04X after %d cycles", pc, c.Cycles)
			return result(StopTrap), nil
		}
	}
}
