package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ezrec/asm8085/cpu"
	"github.com/ezrec/asm8085/emulator"
	"github.com/ezrec/asm8085/export"
	ports "github.com/ezrec/asm8085/io"
	"github.com/ezrec/asm8085/trace"
)

const topN = 10

// cmdRun runs a program with the console on the standard streams.
func (a *app) cmdRun(ctx context.Context, files []string) (err error) {
	emu, err := a.load(files[0])
	if err != nil {
		return
	}

	emu.Console.Input = a.stdin
	emu.Console.Output = a.stdout

	var tt *ports.Terminal
	if file, ok := a.stdin.(*os.File); ok {
		tt = &ports.Terminal{Fd: int(file.Fd())}
		if tt.IsTerminal() {
			err = tt.Raw()
			if err != nil {
				return
			}
			emu.Console.Output = tt.Writer(a.stdout)
		} else {
			tt = nil
		}
	}

	summary, err := trace.Run(ctx, emu, a.limit)
	if tt != nil {
		err = restore(tt, err)
	}
	if err != nil {
		return
	}

	err = emu.Console.Err
	if err != nil {
		return
	}

	a.summarize(emu.Name, summary)
	if a.registers {
		a.printRegisters(a.stdout, emulator.Snapshot(emu.Cpu))
	}

	return
}

// restore returns a terminal to its saved state, keeping err.
func restore(tt interface{ Restore() error }, err error) error {
	return errors.Join(err, tt.Restore())
}

// cmdAsm assembles a program and exports the image.
func (a *app) cmdAsm(ctx context.Context, files []string) (err error) {
	if a.format.Extension() == "" {
		err = fmt.Errorf("-f: %w: %v", export.ErrFormatUnknown, a.format)
		return
	}

	prog, err := a.assemble(files[0])
	if err != nil {
		return
	}

	var w io.Writer = a.stdout
	if a.output != "-" {
		var file *os.File
		file, err = os.Create(a.output)
		if err != nil {
			return
		}
		defer func() {
			cerr := file.Close()
			if err == nil {
				err = cerr
			}
		}()
		w = file
	}

	err = export.Write(w, prog, a.format)
	return
}

// cmdDisasm lists the assembled image.
func (a *app) cmdDisasm(ctx context.Context, files []string) (err error) {
	prog, err := a.assemble(files[0])
	if err != nil {
		return
	}

	labels := map[uint16][]string{}
	for label, addr := range prog.Labels {
		labels[addr] = append(labels[addr], label)
	}

	for addr, line := range cpu.Disassemble(prog, prog.LoadOffset, prog.End()) {
		names := labels[addr]
		slices.Sort(names)
		for _, name := range names {
			fmt.Fprintf(a.stdout, "%v:\n", name)
		}

		text := line.String()
		if a.verbose {
			desc := cpu.Describe(line.Text)
			if desc != "" {
				text = fmt.Sprintf("%-40v ; %v", text, desc)
			}
		}
		fmt.Fprintln(a.stdout, text)
	}

	return
}

// cmdTrace shows every executed instruction.
func (a *app) cmdTrace(ctx context.Context, files []string) (err error) {
	emu, err := a.load(files[0])
	if err != nil {
		return
	}
	emu.Console.Input = a.stdin
	emu.Console.Output = a.stderr

	summary, err := trace.Run(ctx, emu, a.limit, trace.ObserverFunc(func(result emulator.StepResult) {
		fmt.Fprintln(a.stdout, a.traceLine(result))
	}))
	if err != nil {
		return
	}

	a.summarize(emu.Name, summary)
	if a.registers {
		a.printRegisters(a.stdout, emulator.Snapshot(emu.Cpu))
	}

	return
}

// cmdCoverage reports the executed lines and branch outcomes.
func (a *app) cmdCoverage(ctx context.Context, files []string) (err error) {
	emu, err := a.load(files[0])
	if err != nil {
		return
	}
	emu.Console.Input = a.stdin

	cov := trace.NewCoverage(emu.Program)
	summary, err := trace.Run(ctx, emu, a.limit, cov)
	if err != nil {
		return
	}
	a.summarize(emu.Name, summary)

	w := a.stdout
	stats := cov.Stats()

	fmt.Fprintf(w, "Coverage Report\n")
	if stats.LineTotal > 0 {
		fmt.Fprintf(w, "  Lines executed: %d/%d (%.1f%%)\n", stats.LineHit, stats.LineTotal, stats.LinePercent)
	} else {
		fmt.Fprintf(w, "  Lines executed: n/a (no executable lines)\n")
	}
	if stats.BranchTotal > 0 {
		fmt.Fprintf(w, "  Branch outcomes: %d/%d (%.1f%%)\n", stats.BranchHit, stats.BranchTotal, stats.BranchPercent)
	} else {
		fmt.Fprintf(w, "  Branch outcomes: n/a (no conditional branches)\n")
	}

	source := emu.Program.Source

	fmt.Fprintf(w, "\nUncovered code:\n")
	if len(stats.Uncovered) == 0 {
		fmt.Fprintf(w, "  (all executable lines covered)\n")
	}
	for _, lines := range trace.LineRanges(stats.Uncovered) {
		label := fmt.Sprintf("Line %d", lines[0])
		if lines[0] != lines[1] {
			label = fmt.Sprintf("Line %d-%d", lines[0], lines[1])
		}
		fmt.Fprintf(w, "  %v: %v\n", label, strings.TrimSpace(source[lines[0]-1]))
	}

	if len(stats.Incomplete) > 0 {
		fmt.Fprintf(w, "\nBranches missing outcomes:\n")
		for _, br := range stats.Incomplete {
			var missing []string
			if !br.Taken {
				missing = append(missing, "taken")
			}
			if !br.NotTaken {
				missing = append(missing, "not taken")
			}
			fmt.Fprintf(w, "  Line %d: %v (missing %v)\n", br.LineNo,
				strings.TrimSpace(source[br.LineNo-1]), strings.Join(missing, ", "))
		}
	}

	return
}

// heat marks hotspots by their share of all cycles.
func heat(percent float64) string {
	switch {
	case percent > trace.HOTSPOT_CRITICAL:
		return "***"
	case percent > trace.HOTSPOT_HIGH:
		return "**"
	case percent > trace.HOTSPOT_MEDIUM:
		return "*"
	}
	return ""
}

// cmdProfile reports where a program spends its cycles.
func (a *app) cmdProfile(ctx context.Context, files []string) (err error) {
	emu, err := a.load(files[0])
	if err != nil {
		return
	}
	emu.Console.Input = a.stdin

	prof := trace.NewProfile(emu.Program)
	summary, err := trace.Run(ctx, emu, a.limit, prof)
	if err != nil {
		return
	}
	a.summarize(emu.Name, summary)

	w := a.stdout

	fmt.Fprintf(w, "Performance Profile\n\n")
	fmt.Fprintf(w, "Execution Summary:\n")
	fmt.Fprintf(w, "  Total steps:  %d\n", prof.Steps)
	fmt.Fprintf(w, "  Total cycles: %d\n", prof.Cycles)
	if prof.Steps > 0 {
		fmt.Fprintf(w, "  Avg cycles/step: %.2f\n", float64(prof.Cycles)/float64(prof.Steps))
	}
	fmt.Fprintf(w, "  Simulated time: %v at %g MHz\n", trace.Duration(prof.Cycles, a.clock), a.clock)

	fmt.Fprintf(w, "\nTop %d Hotspot Lines (by total cycles):\n", topN)
	fmt.Fprintf(w, "%-6s %12s %12s %10s     %v\n", "Line", "Executions", "Cycles", "% Total", "Source")
	for _, spot := range prof.Hotspots(topN) {
		fmt.Fprintf(w, "%-6d %12d %12d %9.1f%% %-3s %v\n",
			spot.LineNo, spot.Hits, spot.Cycles, spot.Percent, heat(spot.Percent), spot.Source)
	}

	fmt.Fprintf(w, "\nTop %d Most Used Instructions:\n", topN)
	fmt.Fprintf(w, "%-15s %12s %10s\n", "Instruction", "Count", "% Total")
	for _, count := range prof.TopMnemonics(topN) {
		fmt.Fprintf(w, "%-15s %12d %9.1f%%\n", count.Mnemonic, count.Count, count.Percent)
	}

	return
}

// cmdBench runs each program several times and compares their cost.
func (a *app) cmdBench(ctx context.Context, files []string) (err error) {
	if a.runs < 1 {
		err = ErrBenchmarkRuns
		return
	}

	var benches []*trace.Bench
	for _, name := range files {
		var bench *trace.Bench
		bench, err = trace.Benchmark(ctx, name, func() (emu *emulator.Emulator, err error) {
			emu = a.emulator()
			err = emu.Load(name)
			return
		}, a.runs, a.limit)
		if err != nil {
			return
		}
		benches = append(benches, bench)
	}

	w := a.stdout
	fmt.Fprintf(w, "%-24s %12s %12s %12s %12s %12s %10s\n",
		"Program", "Avg cycles", "Min", "Max", "Wall", "Simulated", "Speedup")

	baseline := benches[0].AvgCycles()
	best := 0
	for n, bench := range benches {
		avg := bench.AvgCycles()
		if avg < benches[best].AvgCycles() {
			best = n
		}

		speedup := "baseline"
		if n > 0 && avg > 0 {
			speedup = fmt.Sprintf("%.2fx", baseline/avg)
		}

		note := ""
		if slices.Contains(bench.Halted, false) {
			note = " (step limit)"
		}

		fmt.Fprintf(w, "%-24s %12.0f %12d %12d %12v %12v %10v%v\n",
			filepath.Base(bench.Name), avg, bench.MinCycles(), bench.MaxCycles(),
			bench.AvgWall(), trace.Duration(int(avg), a.clock), speedup, note)
	}

	if len(benches) > 1 {
		fmt.Fprintf(w, "\nWinner: %v\n", filepath.Base(benches[best].Name))
	}

	return
}

// record runs a program to completion, keeping every step.
func (a *app) record(ctx context.Context, name string) (rec *trace.Recorder, summary trace.Summary, err error) {
	emu, err := a.load(name)
	if err != nil {
		return
	}

	rec = &trace.Recorder{}
	summary, err = trace.Run(ctx, emu, a.limit, rec)
	return
}

// cmdDiff compares the execution of two programs step by step.
func (a *app) cmdDiff(ctx context.Context, files []string) (err error) {
	recs := make([]*trace.Recorder, len(files))
	sums := make([]trace.Summary, len(files))

	group, ctx := errgroup.WithContext(ctx)
	for n, name := range files {
		group.Go(func() (err error) {
			recs[n], sums[n], err = a.record(ctx, name)
			return
		})
	}
	err = group.Wait()
	if err != nil {
		return
	}

	for n, name := range files {
		a.summarize(name, sums[n])
	}

	side := func(result *emulator.StepResult) string {
		if result == nil {
			return "<< halted >>"
		}
		return fmt.Sprintf("%04X %-14s", result.PC, result.Text)
	}

	w := a.stdout
	fmt.Fprintf(w, "  %-4s  %-20s  %-20s\n", "Step", filepath.Base(files[0]), filepath.Base(files[1]))

	rows := trace.Diff(recs[0].Steps, recs[1].Steps)
	for _, row := range rows {
		marker := " "
		note := ""
		if !row.Same() {
			marker = "*"
			if row.A != nil && row.B != nil {
				changed := row.A.After.Diff(row.B.After)
				if len(changed) > 0 {
					note = "  ; " + strings.Join(changed, ",")
				}
			}
		}
		fmt.Fprintf(w, "%v %-4d  %-20s  %-20s%v\n", marker, row.Step, side(row.A), side(row.B), note)
	}

	fmt.Fprintln(w)
	div := trace.Divergence(rows)
	if div < 0 {
		fmt.Fprintf(w, "identical over %d steps\n", len(rows))
	} else {
		fmt.Fprintf(w, "first difference at step %d\n", rows[div].Step)
	}
	fmt.Fprintf(w, "cycles: %d vs %d\n", sums[0].Cycles, sums[1].Cycles)

	return
}

// cmdDebug starts the interactive monitor.
func (a *app) cmdDebug(ctx context.Context, files []string) (err error) {
	emu, err := a.load(files[0])
	if err != nil {
		return
	}
	emu.Console.Output = a.stdout

	mon := newMonitor(a, emu)
	err = mon.Run(ctx)
	return
}
