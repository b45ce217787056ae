// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/beevik/fake6502/log"
)

type mode byte

const (
	shellMode   mode = iota // interactive monitor
	runMode                 // run images to completion
	vectorsMode             // check single-step test vectors
)

type (
	CLI struct {
		Shell   Shell   `cmd:"" help:"Start the interactive monitor. (default command)" default:"withargs"`
		Run     Run     `cmd:"" help:"Run memory images until they hit BRK or a trap."`
		Vectors Vectors `cmd:"" help:"Check the cpu against single-step test vectors."`

		Config  string     `name:"config" help:"TOML configuration file." type:"existingfile"`
		Variant string     `name:"variant" help:"${variant_help}"`
		Trace   bool       `name:"trace" help:"Log every executed instruction."`
		Log     logModMask `help:"${log_help}" placeholder:"mod0,mod1,..."`

		mode mode
	}

	Shell struct {
		Scripts []string `arg:"" optional:"" name:"script" help:"Command scripts to run before reading standard input." type:"existingfile"`
	}

	Run struct {
		Images   []string `arg:"" name:"image" help:"${image_help}" type:"existingfile"`
		Addr     hexAddr  `name:"addr" help:"Load address of binary images (hex)." default:"0600"`
		Start    hexAddr  `name:"start" help:"Initial program counter (hex). Defaults to the reset vector for hex dumps and to --addr for raw binaries."`
		MaxSteps uint64   `name:"max-steps" help:"Stop a job after this many instructions. 0 means no limit." default:"100000000"`
		Jobs     int      `name:"jobs" short:"j" help:"Maximum number of images run at once. 0 means no limit." default:"0"`
	}

	Vectors struct {
		Files []string `arg:"" name:"file" help:"JSON test vector files." type:"existingfile"`
		Jobs  int      `name:"jobs" short:"j" help:"Maximum number of files checked at once. 0 means no limit." default:"0"`
		Max   int      `name:"max-failures" help:"Failures reported per file." default:"5"`
	}
)

var vars = kong.Vars{
	"variant_help": "CPU variant: 6502, 65c02 or 2a03. Overrides the config file.",
	"image_help":   "Memory images. Files ending in .hex are hex dumps, anything else is raw binary.",
	"log_help":     "Enable debug logging for the specified modules.",
}

func newParser(cfg *CLI) (*kong.Kong, error) {
	return kong.New(cfg,
		kong.Name("fake6502"),
		kong.Description("Cycle-counting 6502 interpreter and monitor."),
		kong.UsageOnError(),
		kong.Help(printHelp),
		vars)
}

func parseArgs(args []string) CLI {
	var cfg CLI
	parser, err := newParser(&cfg)
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(args)
	checkf(err, "failed to parse command line")
	checkf(ctx.Error, "failed to parse command line")

	cfg.mode = commandMode(ctx.Command())
	return cfg
}

func commandMode(command string) mode {
	switch {
	case strings.HasPrefix(command, "run"):
		return runMode
	case strings.HasPrefix(command, "vectors"):
		return vectorsMode
	}
	return shellMode
}

func printHelp(options kong.HelpOptions, ctx *kong.Context) error {
	if err := kong.DefaultHelpPrinter(options, ctx); err != nil {
		return err
	}
	loggingHelp := `
Log modules:
  The --log flag accepts a comma-separated list of modules.

  Valid log modules are:
%s

  As a special case, the following values are accepted:
    - no                     Disable all logging.
    - all                    Enable all logs.
`
	var strs []string
	for _, m := range log.ModuleNames() {
		strs = append(strs, "    - "+m)
	}
	fmt.Fprintf(os.Stderr, loggingHelp, strings.Join(strs, "\n"))
	return nil
}

type logModMask log.ModuleMask

// Decode decodes a comma-separated list of module names into a module mask
// and enables debug logging for those modules.
//
// Implements kong.MapperValue interface.
func (lm *logModMask) Decode(ctx *kong.DecodeContext) error {
	nolog := false
	allLogs := false

	var mask logModMask
	tok := ctx.Scan.Pop()
	for _, v := range strings.Split(tok.Value.(string), ",") {
		switch v {
		case "all":
			allLogs = true
		case "no":
			nolog = true
		default:
			mod, ok := log.ModuleByName(v)
			if !ok {
				return fmt.Errorf("unknown log module %s", v)
			}
			mask |= logModMask(mod.Mask())
		}
	}

	if nolog {
		if allLogs {
			return fmt.Errorf("cannot use 'all' and 'no' together")
		}
		if mask != 0 {
			return fmt.Errorf("cannot combine 'no' with other log modules")
		}
		*lm = 0
		log.Disable()
		return nil
	}

	if allLogs {
		mask = logModMask(log.ModuleMaskAll)
	}

	*lm = mask
	log.EnableDebugModules(log.ModuleMask(mask))
	return nil
}

// hexAddr is a 16-bit address given in hex, with or without a leading $.
type hexAddr struct {
	addr uint16
	set  bool
}

// Implements kong.MapperValue interface.
func (a *hexAddr) Decode(ctx *kong.DecodeContext) error {
	tok := ctx.Scan.Pop()
	s, ok := tok.Value.(string)
	if !ok {
		return fmt.Errorf("expected an address, got %v", tok.Value)
	}
	v, err := strconv.ParseUint(strings.TrimPrefix(s, "$"), 16, 16)
	if err != nil {
		return fmt.Errorf("invalid address %q", s)
	}
	a.addr, a.set = uint16(v), true
	return nil
}

func checkf(err error, format string, args ...any) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "fatal error: ")
	fmt.Fprintf(os.Stderr, format, args...)
	fmt.Fprintf(os.Stderr, "\n\t%s\n", err)
	os.Exit(1)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "fatal error: ")
	fmt.Fprintf(os.Stderr, format, args...)
	fmt.Fprintln(os.Stderr)
	os.Exit(1)
}
