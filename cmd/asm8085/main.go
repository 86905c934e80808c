// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"

	"github.com/ezrec/asm8085/config"
	"github.com/ezrec/asm8085/export"
	"github.com/ezrec/asm8085/trace"
	"github.com/ezrec/asm8085/translate"
)

// defines collects -D NAME=VALUE flags.
type defines map[string]int

func (defs defines) String() string {
	var parts []string
	for name, value := range defs {
		parts = append(parts, fmt.Sprintf("%v=%v", name, value))
	}
	slices.Sort(parts)
	return strings.Join(parts, ",")
}

func (defs defines) Set(text string) (err error) {
	name, valueText, ok := strings.Cut(text, "=")
	if !ok || len(name) == 0 {
		err = ErrDefineSyntax
		return
	}

	value, err := strconv.ParseInt(valueText, 0, 32)
	if err != nil {
		return
	}

	defs[name] = int(value)
	return
}

// options are the settings shared by all commands.
type options struct {
	limit     trace.Limit
	defines   defines
	verbose   bool
	registers bool
	warnings  bool
	highlight bool
	guard     bool
	base      config.Base
	clock     float64
	runs      int
	format    export.Format
	output    string
}

type command struct {
	usage   string
	minArgs int
	maxArgs int // -1 for no maximum
	run     func(*app, context.Context, []string) error
}

var commands = map[string]command{
	"run":      {"run FILE", 1, 1, (*app).cmdRun},
	"asm":      {"asm FILE", 1, 1, (*app).cmdAsm},
	"disasm":   {"disasm FILE", 1, 1, (*app).cmdDisasm},
	"trace":    {"trace FILE", 1, 1, (*app).cmdTrace},
	"coverage": {"coverage FILE", 1, 1, (*app).cmdCoverage},
	"profile":  {"profile FILE", 1, 1, (*app).cmdProfile},
	"bench":    {"bench FILE...", 1, -1, (*app).cmdBench},
	"diff":     {"diff FILE_A FILE_B", 2, 2, (*app).cmdDiff},
	"debug":    {"debug FILE", 1, 1, (*app).cmdDebug},
	"symbols":  {"symbols FILE", 1, 1, (*app).cmdSymbols},
	"memmap":   {"memmap FILE", 1, 1, (*app).cmdMemmap},
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "usage: %v [flags] COMMAND FILE...\n\ncommands:\n", os.Args[0])
	var names []string
	for name := range commands {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %v\n", commands[name].usage)
	}
	fmt.Fprintf(out, "\nflags:\n")
	flag.PrintDefaults()
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("asm8085: ")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("%v", err)
	}

	opts := options{defines: defines{}}

	var limit int
	var binary bool
	var base string
	var format string
	var lang string

	flag.IntVar(&limit, "l", cfg.Defaults.Limit, "Step limit, -1 for unlimited")
	flag.Var(opts.defines, "D", "Predefine a constant, NAME=VALUE")
	flag.BoolVar(&opts.verbose, "v", cfg.Defaults.Verbose, "Verbose mode")
	flag.BoolVar(&opts.registers, "r", cfg.Defaults.ShowRegisters, "Show the final registers")
	flag.BoolVar(&opts.warnings, "W", cfg.Defaults.Warnings, "Show analysis warnings")
	flag.BoolVar(&opts.highlight, "H", cfg.Defaults.Highlight, "Show changed registers when tracing")
	flag.BoolVar(&binary, "b", cfg.Defaults.Binary, "Show registers in binary")
	flag.StringVar(&base, "base", string(cfg.Defaults.Base), "Register base: hex, dec or bin")
	flag.Float64Var(&opts.clock, "clock", cfg.Defaults.Clock, "Clock rate in MHz")
	flag.IntVar(&opts.runs, "runs", 3, "Benchmark runs per program")
	flag.StringVar(&format, "f", string(export.FORMAT_RAW), "Export format: raw, intel, c, json or yaml")
	flag.StringVar(&opts.output, "o", "-", "Export output file")
	flag.BoolVar(&opts.guard, "guard", false, "Fault when executing outside of assembled code")
	flag.StringVar(&lang, "lang", "", "Message language")

	flag.Usage = usage
	flag.Parse()

	if len(lang) != 0 {
		err = translate.SetLanguage(lang)
		if err != nil {
			log.Fatalf("-lang: %v", err)
		}
	}

	opts.limit = trace.Limit(limit)
	opts.format = export.Format(format)
	opts.base = config.Base(base)
	if binary {
		opts.base = config.BASE_BIN
	}
	if !opts.base.Valid() {
		log.Fatalf("-base: %v", config.ErrBaseInvalid)
	}

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	name, files := flag.Arg(0), flag.Args()[1:]
	cmd, ok := commands[name]
	if !ok {
		log.Printf("%v", ErrCommandUnknown(name))
		flag.Usage()
		os.Exit(2)
	}
	if len(files) < cmd.minArgs || (cmd.maxArgs >= 0 && len(files) > cmd.maxArgs) {
		log.Printf("%v: %v", cmd.usage, ErrArguments)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := &app{
		options: opts,
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}

	err = cmd.run(a, ctx, files)
	if err != nil {
		stop()
		log.Fatalf("%v", err)
	}
}
