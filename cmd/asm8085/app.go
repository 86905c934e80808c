package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ezrec/asm8085/cpu"
	"github.com/ezrec/asm8085/emulator"
	"github.com/ezrec/asm8085/trace"
)

// app carries the options and standard streams of a command.
type app struct {
	options

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func readLines(name string) (lines []string, err error) {
	file, err := os.Open(name)
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	err = scanner.Err()
	return
}

func (a *app) assembler() (asm *cpu.Assembler) {
	asm = &cpu.Assembler{Verbose: a.verbose}
	for name, value := range a.defines {
		asm.Predefine(name, value)
	}
	return
}

func (a *app) emulator() (emu *emulator.Emulator) {
	emu = emulator.NewEmulator()
	emu.Verbose = a.verbose
	emu.Guard = a.guard
	emu.Defines = a.defines
	emu.Bus.Verbose = a.verbose
	return
}

// explain shows the first failing line in context.
func (a *app) explain(name string, lines []string) {
	if !a.verbose {
		return
	}

	asm := a.assembler()
	asm.Verbose = false
	diag := asm.FirstError(lines)
	if diag == nil {
		return
	}

	fmt.Fprintf(a.stderr, "%v: first error on line %d\n", name, diag.LineNo)
	for n := max(diag.LineNo-2, 1); n <= min(diag.LineNo+2, len(lines)); n++ {
		marker := "  "
		if n == diag.LineNo {
			marker = "> "
		}
		fmt.Fprintf(a.stderr, "%v%4d | %v\n", marker, n, lines[n-1])
	}
}

// warn shows the static analysis findings.
func (a *app) warn(name string, prog *cpu.Program) {
	if !a.warnings {
		return
	}

	for _, diag := range cpu.Analyze(prog) {
		fmt.Fprintf(a.stderr, "%v: %v\n", name, diag)
	}
}

// assemble a source file.
func (a *app) assemble(name string) (prog *cpu.Program, err error) {
	lines, err := readLines(name)
	if err != nil {
		err = &emulator.ErrLoad{Name: name, Err: err}
		return
	}

	prog, err = a.assembler().Assemble(lines)
	if err != nil {
		a.explain(name, lines)
		err = &emulator.ErrLoad{Name: name, Err: err}
		return
	}

	a.warn(name, prog)
	return
}

// load a source file into a new emulator.
func (a *app) load(name string) (emu *emulator.Emulator, err error) {
	lines, err := readLines(name)
	if err != nil {
		err = &emulator.ErrLoad{Name: name, Err: err}
		return
	}

	emu = a.emulator()
	err = emu.LoadSource(name, lines)
	if err != nil {
		a.explain(name, lines)
		return
	}

	a.warn(name, emu.Program)
	return
}

// flagString shows the flags as SZAPC, with - for clear flags.
func flagString(flags cpu.Flag) string {
	var text strings.Builder
	for _, fl := range []struct {
		flag cpu.Flag
		name byte
	}{
		{cpu.FLAG_S, 'S'},
		{cpu.FLAG_Z, 'Z'},
		{cpu.FLAG_AC, 'A'},
		{cpu.FLAG_P, 'P'},
		{cpu.FLAG_CY, 'C'},
	} {
		if flags.Has(fl.flag) {
			text.WriteByte(fl.name)
		} else {
			text.WriteByte('-')
		}
	}
	return text.String()
}

// regsLine formats registers on a single line.
func (a *app) regsLine(regs emulator.Registers) string {
	b := a.base
	return fmt.Sprintf("A=%v B=%v C=%v D=%v E=%v H=%v L=%v SP=%v %v",
		b.Byte(regs.A), b.Byte(regs.B), b.Byte(regs.C), b.Byte(regs.D),
		b.Byte(regs.E), b.Byte(regs.H), b.Byte(regs.L), b.Word(regs.SP),
		flagString(regs.Flags()))
}

func (a *app) printRegisters(w io.Writer, regs emulator.Registers) {
	b := a.base
	fmt.Fprintf(w, "A=%v B=%v C=%v D=%v E=%v H=%v L=%v\n",
		b.Byte(regs.A), b.Byte(regs.B), b.Byte(regs.C), b.Byte(regs.D),
		b.Byte(regs.E), b.Byte(regs.H), b.Byte(regs.L))
	fmt.Fprintf(w, "SP=%v PC=%v F=%v %v\n",
		b.Word(regs.SP), b.Word(regs.PC), b.Byte(regs.F), flagString(regs.Flags()))
}

// traceLine formats a step as PC, instruction, T-states and registers.
func (a *app) traceLine(result emulator.StepResult) (line string) {
	line = fmt.Sprintf("%04X  %-14s %2d  %v", result.PC, result.Text, result.Cycles, a.regsLine(result.After))
	if !a.highlight {
		return
	}

	var changed []string
	for _, name := range result.Before.Diff(result.After) {
		if name != "PC" {
			changed = append(changed, name)
		}
	}
	if len(changed) > 0 {
		line += "  ; " + strings.Join(changed, ",")
	}
	return
}

// summarize reports the end of a run.
func (a *app) summarize(name string, summary trace.Summary) {
	if summary.LimitReached {
		fmt.Fprintf(a.stderr, "%v: step limit %v reached\n", name, a.limit)
	}

	if a.verbose {
		fmt.Fprintf(a.stderr, "%v: %d steps, %d T-states, %v at %g MHz\n",
			name, summary.Steps, summary.Cycles, trace.Duration(summary.Cycles, a.clock), a.clock)
	}
}
