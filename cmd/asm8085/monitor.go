package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/beevik/prefixtree"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/asm8085/cpu"
	"github.com/ezrec/asm8085/emulator"
)

type monitorCommand struct {
	name    string
	args    string
	help    string
	handler func(mon *monitor, args []string) error
}

var monitorCommands = []monitorCommand{
	{"step", "[N]", "Execute N instructions", (*monitor).cmdStep},
	{"run", "", "Run to a breakpoint or halt", (*monitor).cmdRun},
	{"break", "ADDR", "Set a breakpoint", (*monitor).cmdBreak},
	{"delete", "[ADDR]", "Delete one or all breakpoints", (*monitor).cmdDelete},
	{"regs", "", "Show the registers", (*monitor).cmdRegs},
	{"mem", "ADDR [N]", "Dump N bytes of memory", (*monitor).cmdMem},
	{"disasm", "[ADDR] [N]", "Disassemble N instructions", (*monitor).cmdDisasm},
	{"list", "", "Show the source around the current line", (*monitor).cmdList},
	{"eval", "EXPR", "Evaluate an expression", (*monitor).cmdEval},
	{"reset", "", "Restart the program", (*monitor).cmdReset},
	{"help", "", "Show the commands", (*monitor).cmdHelp},
	{"quit", "", "Leave the monitor", (*monitor).cmdQuit},
	{"s", "", "", (*monitor).cmdStep},
}

// monitor is the interactive debugger.
type monitor struct {
	*app
	ctx context.Context
	emu *emulator.Emulator

	list        []monitorCommand
	commands    *prefixtree.Tree
	breakpoints map[uint16]bool
	quit        bool
}

func newMonitor(a *app, emu *emulator.Emulator) (mon *monitor) {
	mon = &monitor{
		app:         a,
		emu:         emu,
		list:        monitorCommands,
		commands:    prefixtree.New(),
		breakpoints: map[uint16]bool{},
	}

	for n := range mon.list {
		mon.commands.Add(mon.list[n].name, &mon.list[n])
	}

	return
}

// Run reads commands until end of input or quit. An empty line repeats
// the previous command.
func (mon *monitor) Run(ctx context.Context) (err error) {
	mon.ctx = ctx

	scanner := bufio.NewScanner(mon.stdin)
	var last []string
	for !mon.quit {
		fmt.Fprintf(mon.stdout, "%04X> ", mon.emu.Cpu.PC)
		if !scanner.Scan() {
			fmt.Fprintln(mon.stdout)
			break
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			fields = last
		}
		if len(fields) == 0 {
			continue
		}
		last = fields

		value, err := mon.commands.Find(strings.ToLower(fields[0]))
		switch {
		case errors.Is(err, prefixtree.ErrPrefixNotFound):
			fmt.Fprintf(mon.stdout, "command not found: %v\n", fields[0])
			continue
		case errors.Is(err, prefixtree.ErrPrefixAmbiguous):
			fmt.Fprintf(mon.stdout, "command ambiguous: %v\n", fields[0])
			continue
		case err != nil:
			fmt.Fprintf(mon.stdout, "%v\n", err)
			continue
		}

		cmd := value.(*monitorCommand)
		err = cmd.handler(mon, fields[1:])
		if err != nil {
			fmt.Fprintf(mon.stdout, "error: %v\n", err)
		}
	}

	err = scanner.Err()
	return
}

// predeclared returns the registers, labels and constants for evaluation.
func (mon *monitor) predeclared() (pred starlark.StringDict) {
	cp := mon.emu.Cpu
	prog := mon.emu.Program

	pred = starlark.StringDict{}
	for name, value := range prog.Constants {
		pred[name] = starlark.MakeInt(value)
	}
	for name, addr := range prog.Labels {
		pred[name] = starlark.MakeInt(int(addr))
	}

	for name, value := range map[string]int{
		"a": int(cp.A), "b": int(cp.B), "c": int(cp.C), "d": int(cp.D),
		"e": int(cp.E), "h": int(cp.H), "l": int(cp.L), "f": int(cp.F),
		"bc": int(cp.BC()), "de": int(cp.DE()), "hl": int(cp.HL()),
		"sp": int(cp.SP), "pc": int(cp.PC),
	} {
		pred[name] = starlark.MakeInt(value)
	}

	pred["mem"] = starlark.NewBuiltin("mem", func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (value starlark.Value, err error) {
		var addr int
		err = starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &addr)
		if err != nil {
			return
		}
		value = starlark.MakeInt(int(cp.Memory[uint16(addr)]))
		return
	})

	return
}

// eval evaluates an expression over the machine state.
func (mon *monitor) eval(expr string) (value starlark.Value, err error) {
	thread := starlark.Thread{Name: "monitor"}
	opts := syntax.FileOptions{}

	dict, err := starlark.ExecFileOptions(&opts, &thread, "eval", "rc="+expr+"\n", mon.predeclared())
	if err != nil {
		return
	}

	value = dict["rc"]
	return
}

// address parses a label, a hex number with an H suffix, or an expression.
func (mon *monitor) address(text string) (addr uint16, err error) {
	label, ok := mon.emu.Program.Labels[text]
	if ok {
		addr = label
		return
	}

	upper := strings.ToUpper(text)
	if strings.HasSuffix(upper, "H") {
		value, perr := strconv.ParseUint(upper[:len(upper)-1], 16, 16)
		if perr == nil {
			addr = uint16(value)
			return
		}
	}

	value, err := mon.eval(text)
	if err != nil {
		err = errors.Join(ErrAddress, err)
		return
	}
	number, ok := value.(starlark.Int)
	if !ok {
		err = fmt.Errorf("%w: %v", ErrAddress, value)
		return
	}
	n, ok := number.Int64()
	if !ok || n < 0 || n > 0xFFFF {
		err = fmt.Errorf("%w: %v", ErrAddress, value)
		return
	}

	addr = uint16(n)
	return
}

// count parses an optional positive count argument.
func count(args []string, index int, otherwise int) (n int, err error) {
	n = otherwise
	if len(args) <= index {
		return
	}
	n, err = strconv.Atoi(args[index])
	if err == nil && n < 1 {
		err = ErrArguments
	}
	return
}

// step executes one instruction and shows it.
func (mon *monitor) step() (result emulator.StepResult, err error) {
	result, err = mon.emu.Step()
	if err != nil {
		return
	}
	fmt.Fprintln(mon.stdout, mon.traceLine(result))
	return
}

func (mon *monitor) cmdStep(args []string) (err error) {
	n, err := count(args, 0, 1)
	if err != nil {
		return
	}

	for range n {
		if mon.emu.Halted() {
			break
		}
		_, err = mon.step()
		if err != nil {
			return
		}
	}

	if mon.emu.Halted() {
		fmt.Fprintln(mon.stdout, "halted")
	}
	return
}

func (mon *monitor) cmdRun(args []string) (err error) {
	steps := 0
	for !mon.emu.Halted() {
		if mon.limit.Reached(steps) {
			fmt.Fprintf(mon.stdout, "step limit %v reached\n", mon.limit)
			return
		}
		err = mon.ctx.Err()
		if err != nil {
			return
		}

		_, err = mon.step()
		if err != nil {
			return
		}
		steps++

		if mon.breakpoints[mon.emu.Cpu.PC] {
			fmt.Fprintf(mon.stdout, "breakpoint at %04XH\n", mon.emu.Cpu.PC)
			return
		}
	}

	fmt.Fprintln(mon.stdout, "halted")
	return
}

func (mon *monitor) cmdBreak(args []string) (err error) {
	if len(args) != 1 {
		err = ErrArguments
		return
	}

	addr, err := mon.address(args[0])
	if err != nil {
		return
	}

	mon.breakpoints[addr] = true
	fmt.Fprintf(mon.stdout, "breakpoint at %04XH\n", addr)
	return
}

func (mon *monitor) cmdDelete(args []string) (err error) {
	if len(args) == 0 {
		clear(mon.breakpoints)
		fmt.Fprintln(mon.stdout, "all breakpoints deleted")
		return
	}

	addr, err := mon.address(args[0])
	if err != nil {
		return
	}

	delete(mon.breakpoints, addr)
	fmt.Fprintf(mon.stdout, "breakpoint at %04XH deleted\n", addr)
	return
}

func (mon *monitor) cmdRegs(args []string) (err error) {
	mon.printRegisters(mon.stdout, emulator.Snapshot(mon.emu.Cpu))
	fmt.Fprintf(mon.stdout, "steps=%d cycles=%d line=%d\n", mon.emu.Steps, mon.emu.Cycles, mon.emu.LineNo())
	return
}

func (mon *monitor) cmdMem(args []string) (err error) {
	if len(args) < 1 {
		err = ErrArguments
		return
	}

	addr, err := mon.address(args[0])
	if err != nil {
		return
	}
	n, err := count(args, 1, 16)
	if err != nil {
		return
	}

	mem := &mon.emu.Cpu.Memory
	for offset := 0; offset < n; offset += 16 {
		var values []string
		for index := offset; index < min(offset+16, n); index++ {
			values = append(values, fmt.Sprintf("%02X", mem.Read(addr+uint16(index))))
		}
		fmt.Fprintf(mon.stdout, "%04X: %v\n", addr+uint16(offset), strings.Join(values, " "))
	}
	return
}

func (mon *monitor) cmdDisasm(args []string) (err error) {
	addr := mon.emu.Cpu.PC
	if len(args) > 0 {
		addr, err = mon.address(args[0])
		if err != nil {
			return
		}
	}
	n, err := count(args, 1, 8)
	if err != nil {
		return
	}

	for range n {
		line := cpu.DecodeLine(&mon.emu.Cpu.Memory, addr)
		marker := "  "
		if addr == mon.emu.Cpu.PC {
			marker = "=>"
		}
		if mon.breakpoints[addr] {
			marker = "*" + marker[1:]
		}
		fmt.Fprintf(mon.stdout, "%v %v\n", marker, line)
		addr += uint16(line.Size)
	}
	return
}

func (mon *monitor) cmdList(args []string) (err error) {
	source := mon.emu.Program.Source
	current := mon.emu.LineNo()
	if current == 0 {
		fmt.Fprintln(mon.stdout, "no source line")
		return
	}

	for n := max(current-3, 1); n <= min(current+3, len(source)); n++ {
		marker := "  "
		if n == current {
			marker = "=>"
		}
		fmt.Fprintf(mon.stdout, "%v %4d | %v\n", marker, n, source[n-1])
	}
	return
}

func (mon *monitor) cmdEval(args []string) (err error) {
	if len(args) == 0 {
		err = ErrArguments
		return
	}

	value, err := mon.eval(strings.Join(args, " "))
	if err != nil {
		return
	}

	number, ok := value.(starlark.Int)
	if ok {
		n, exact := number.Int64()
		if exact {
			fmt.Fprintf(mon.stdout, "%d (%XH)\n", n, n)
			return
		}
	}

	fmt.Fprintln(mon.stdout, value)
	return
}

func (mon *monitor) cmdReset(args []string) (err error) {
	mon.emu.Reset()
	fmt.Fprintf(mon.stdout, "reset, entry %04XH\n", mon.emu.Cpu.PC)
	return
}

func (mon *monitor) cmdHelp(args []string) (err error) {
	helps := slices.DeleteFunc(slices.Clone(mon.list), func(cmd monitorCommand) bool {
		return cmd.help == ""
	})
	for _, cmd := range helps {
		fmt.Fprintf(mon.stdout, "  %-20v %v\n", strings.TrimSpace(cmd.name+" "+cmd.args), cmd.help)
	}
	fmt.Fprintln(mon.stdout, "  Commands may be abbreviated to a unique prefix.")
	return
}

func (mon *monitor) cmdQuit(args []string) (err error) {
	mon.quit = true
	return
}
