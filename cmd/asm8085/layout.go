package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/ezrec/asm8085/cpu"
	"github.com/ezrec/asm8085/trace"
)

const (
	maxReferences = 5  // Referencing lines shown per label.
	barWidth      = 64 // Cells in the memory layout bar.
)

// cmdSymbols lists the labels with their cross references.
func (a *app) cmdSymbols(ctx context.Context, files []string) (err error) {
	name := files[0]
	prog, err := a.assemble(name)
	if err != nil {
		return
	}

	w := a.stdout
	syms := cpu.Symbols(prog)
	if len(syms) == 0 {
		fmt.Fprintf(w, "No labels found in %v\n", name)
		return
	}

	fmt.Fprintf(w, "Symbol Table for %v\n\n", name)
	fmt.Fprintf(w, "%-20s %-8s %v\n", "Label", "Address", "References")

	unused := 0
	for _, sym := range syms {
		var refs string
		switch len(sym.References) {
		case 0:
			refs = "(unused)"
			unused++
		case 1:
			refs = "1 reference"
		default:
			refs = fmt.Sprintf("%d references", len(sym.References))
		}
		fmt.Fprintf(w, "%-20s %04XH    %v\n", sym.Name, sym.Addr, refs)

		if !a.verbose {
			continue
		}
		for _, lineno := range sym.References[:min(len(sym.References), maxReferences)] {
			fmt.Fprintf(w, "  Line %3d: %v\n", lineno, strings.TrimSpace(prog.Source[lineno-1]))
		}
		if more := len(sym.References) - maxReferences; more > 0 {
			fmt.Fprintf(w, "  ... and %d more\n", more)
		}
	}

	fmt.Fprintf(w, "\nSummary:\n")
	fmt.Fprintf(w, "  Total labels: %d\n", len(syms))
	if unused > 0 {
		fmt.Fprintf(w, "  Unused labels: %d\n", unused)
	}

	return
}

// regionMark is the layout bar character of each region kind.
var regionMark = map[trace.RegionKind]byte{
	trace.REGION_CODE:  'C',
	trace.REGION_DATA:  'D',
	trace.REGION_STACK: 'S',
}

// cmdMemmap runs a program and shows its code, data and stack regions.
func (a *app) cmdMemmap(ctx context.Context, files []string) (err error) {
	emu, err := a.load(files[0])
	if err != nil {
		return
	}
	emu.Console.Input = a.stdin
	emu.Console.Output = a.stderr

	mm := trace.NewMemoryMap(emu.Program)
	summary, err := trace.Run(ctx, emu, a.limit, mm)
	if err != nil {
		return
	}
	a.summarize(emu.Name, summary)
	if summary.LimitReached {
		fmt.Fprintf(a.stderr, "%v: program did not halt, the memory map may be incomplete\n", emu.Name)
	}

	w := a.stdout
	regions := mm.Regions(&emu.Cpu.Memory)

	fmt.Fprintf(w, "Memory Map: %v\n\n", emu.Name)
	fmt.Fprintf(w, "%-8s %-6s %-6s %v\n", "Region", "Start", "End", "Size")

	bar := []byte(strings.Repeat(".", barWidth))
	used := 0
	for _, region := range regions {
		fmt.Fprintf(w, "%-8v %04XH  %04XH  %d bytes\n", region.Kind, region.Start, region.End, region.Size)
		used += region.Size

		for cell := int(region.Start) * barWidth / cpu.MEMORY_SIZE; cell <= int(region.End)*barWidth/cpu.MEMORY_SIZE; cell++ {
			bar[cell] = regionMark[region.Kind]
		}
	}

	fmt.Fprintf(w, "\nMemory Layout:\n")
	fmt.Fprintf(w, "0000H [%s] FFFFH\n", bar)
	fmt.Fprintf(w, "C code  D data  S stack\n")

	percent := float64(used) * 100 / cpu.MEMORY_SIZE
	fmt.Fprintf(w, "\nMemory Usage:\n")
	fmt.Fprintf(w, "  Used:  %6d bytes (%.2f%%)\n", used, percent)
	fmt.Fprintf(w, "  Free:  %6d bytes (%.2f%%)\n", cpu.MEMORY_SIZE-used, 100-percent)
	fmt.Fprintf(w, "  Total: %6d bytes\n", cpu.MEMORY_SIZE)

	for n, region := range regions {
		for _, other := range regions[n+1:] {
			if region.Overlaps(other) {
				fmt.Fprintf(w, "\nwarning: %v and %v overlap at %04XH\n",
					region.Kind, other.Kind, max(region.Start, other.Start))
			}
		}
	}

	return
}
