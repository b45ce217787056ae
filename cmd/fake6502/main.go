// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/beevik/term"
	"golang.org/x/sync/errgroup"

	"github.com/beevik/fake6502/cpu"
	"github.com/beevik/fake6502/harte"
	"github.com/beevik/fake6502/host"
	"github.com/beevik/fake6502/image"
	"github.com/beevik/fake6502/runner"
)

func main() {
	cli := parseArgs(os.Args[1:])
	cfg := hostConfig(&cli)

	switch cli.mode {
	case shellMode:
		runShell(&cli, cfg)
	case runMode:
		runImages(&cli, cfg, os.Stdout)
	case vectorsMode:
		runVectors(&cli, cfg, os.Stdout)
	}
}

// hostConfig merges the config file with the command line flags.
func hostConfig(cli *CLI) host.Config {
	cfg := host.DefaultConfig()
	if cli.Config != "" {
		var err error
		cfg, err = host.LoadConfig(cli.Config)
		checkf(err, "failed to load config")
	}
	if cli.Variant != "" {
		_, err := cpu.LookupVariant(cli.Variant)
		checkf(err, "invalid --variant")
		cfg.Variant = cli.Variant
	}
	if cli.Trace {
		cfg.Trace = true
	}
	return cfg
}

func runShell(cli *CLI, cfg host.Config) {
	h, err := host.New(cfg)
	checkf(err, "failed to start host")

	// Run commands contained in command-line files.
	for _, filename := range cli.Shell.Scripts {
		file, err := os.Open(filename)
		checkf(err, "failed to open script")
		err = h.RunCommands(file, os.Stdout, false)
		file.Close()
		checkf(err, "script %s failed", filename)
	}

	// Break on Ctrl-C.
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	go handleInterrupt(h, c)

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	checkf(h.RunCommands(os.Stdin, os.Stdout, interactive), "command input failed")
}

func handleInterrupt(h *host.Host, c chan os.Signal) {
	for {
		<-c
		h.Break()
	}
}

func runImages(cli *CLI, cfg host.Config, w io.Writer) {
	v, err := cpu.LookupVariant(cfg.Variant)
	checkf(err, "invalid variant")

	var jobs []runner.Job
	for _, path := range cli.Run.Images {
		segs, err := loadImage(path, cli.Run.Addr.addr)
		checkf(err, "failed to load image")
		job := runner.Job{
			Name:     filepath.Base(path),
			Variant:  v,
			Segments: segs,
			MaxSteps: cli.Run.MaxSteps,
		}
		switch {
		case cli.Run.Start.set:
			job.Start, job.HasStart = cli.Run.Start.addr, true
		case !isHexDump(path):
			// Raw binaries carry no vectors, so they start where they load.
			job.Start, job.HasStart = cli.Run.Addr.addr, true
		}
		jobs = append(jobs, job)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := runner.Run(ctx, jobs, cli.Run.Jobs)
	for _, r := range results {
		fmt.Fprintln(w, r)
	}
	checkf(err, "run failed")
}

func isHexDump(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".hex")
}

// loadImage reads a hex dump or, for any other extension, a raw binary
// stored at addr.
func loadImage(path string, addr uint16) ([]image.Segment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if isHexDump(path) {
		segs, err := image.ParseHexDump(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return segs, nil
	}
	seg, err := image.ReadBinary(f, addr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return []image.Segment{seg}, nil
}

type vectorReport struct {
	passed, total int
	failures      []error
}

func runVectors(cli *CLI, cfg host.Config, w io.Writer) {
	v, err := cpu.LookupVariant(cfg.Variant)
	checkf(err, "invalid variant")

	reports := make([]vectorReport, len(cli.Vectors.Files))

	var g errgroup.Group
	if cli.Vectors.Jobs > 0 {
		g.SetLimit(cli.Vectors.Jobs)
	}
	for i, path := range cli.Vectors.Files {
		g.Go(func() error {
			tests, err := harte.Load(path)
			if err != nil {
				return err
			}
			passed, err := harte.RunAll(tests, v)
			reports[i] = vectorReport{passed: passed, total: len(tests), failures: unjoin(err)}
			return nil
		})
	}
	checkf(g.Wait(), "failed to load test vectors")

	failed := false
	for i, r := range reports {
		fmt.Fprintf(w, "%s: %d/%d passed\n", cli.Vectors.Files[i], r.passed, r.total)
		for j, err := range r.failures {
			if j == cli.Vectors.Max {
				fmt.Fprintf(w, "    ... %d more\n", len(r.failures)-j)
				break
			}
			fmt.Fprintf(w, "    %v\n", err)
		}
		failed = failed || len(r.failures) > 0
	}
	if failed {
		fatalf("%s failed test vectors", v.Name)
	}
}

// unjoin splits an error created by errors.Join.
func unjoin(err error) []error {
	if err == nil {
		return nil
	}
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}
