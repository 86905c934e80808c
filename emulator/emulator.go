// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"bufio"
	"log"
	"os"

	"github.com/ezrec/asm8085/cpu"
	"github.com/ezrec/asm8085/io"
)

// StepResult is the telemetry of a single executed instruction.
type StepResult struct {
	PC      uint16    // Address of the instruction.
	Text    string    // Disassembled instruction.
	Size    int       // Instruction length in bytes.
	Cycles  int       // T-states, using the actual branch outcome.
	PCAfter uint16    // Program counter after execution.
	Taken   bool      // Set if PCAfter is not the fall-through address.
	Halted  bool      // Set if the CPU is halted after the step.
	Before  Registers // Registers before execution.
	After   Registers // Registers after execution.
}

// Emulator state. Assembled program, CPU and I/O ports.
type Emulator struct {
	Verbose bool           // If set, enables verbose logging.
	Guard   bool           // If set, fetches outside of assembled instructions fault.
	Defines map[string]int // Constants predefined for every assembly.

	Cpu     *cpu.Cpu     // Reference to the CPU simulation.
	Program *cpu.Program // Reference to the currently loaded program.
	Name    string       // Name of the currently loaded program.

	Console io.Console // Console on ports 0x00 and 0x01.
	Bus     io.Bus     // I/O port space.

	Steps  int // Instructions executed since the last reset.
	Cycles int // T-states executed since the last reset.
}

// NewEmulator creates a new emulator with an empty program.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(),
		Program: &cpu.Program{},
	}

	emu.Console.Attach(&emu.Bus)
	emu.Cpu.Ports = &emu.Bus

	return
}

// Load assembles and loads a source file.
func (emu *Emulator) Load(filename string) (err error) {
	file, err := os.Open(filename)
	if err != nil {
		err = &ErrLoad{Name: filename, Err: err}
		return
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	err = scanner.Err()
	if err != nil {
		err = &ErrLoad{Name: filename, Err: err}
		return
	}

	return emu.LoadSource(filename, lines)
}

// LoadSource assembles and loads source lines. On failure the assembler
// diagnostics are returned and the previously loaded program is kept.
func (emu *Emulator) LoadSource(name string, lines []string) (err error) {
	asm := &cpu.Assembler{Verbose: emu.Verbose}
	for define, value := range emu.Defines {
		asm.Predefine(define, value)
	}

	prog, err := asm.Assemble(lines)
	if err != nil {
		err = &ErrLoad{Name: name, Err: err}
		return
	}

	if emu.Verbose {
		log.Printf("emulator: loaded %v, entry %04XH", name, prog.LoadOffset)
	}

	emu.Name = name
	emu.Program = prog
	emu.Reset()

	return
}

// Reset reloads the program image into a fresh CPU state and zeros the
// counters.
func (emu *Emulator) Reset() {
	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Load(&emu.Program.Memory, emu.Program.LoadOffset)
	emu.Cpu.Ports = &emu.Bus

	emu.Cpu.Guard = nil
	if emu.Guard {
		emu.Cpu.Guard = emu.guard
	}

	emu.Steps = 0
	emu.Cycles = 0
}

// guard accepts only the first byte of an assembled instruction.
func (emu *Emulator) guard(pc uint16) bool {
	prog := emu.Program
	line, ok := prog.LineAt(pc)
	if !ok || line > len(prog.Code) {
		return false
	}
	return prog.Code[line-1] && prog.LineOffset[line-1] == pc
}

// Halted returns true if the CPU has stopped.
func (emu *Emulator) Halted() bool {
	return emu.Cpu.Halted
}

// LineNo returns the source line of the current instruction, or 0 if the
// program counter is outside of the assembled image.
func (emu *Emulator) LineNo() int {
	line, _ := emu.Program.LineAt(emu.Cpu.PC)
	return line
}

// fetched is a copy of the instruction bytes at addr.
type fetched struct {
	addr uint16
	data [3]uint8
}

func (ft *fetched) Read(addr uint16) uint8 {
	return ft.data[uint16(addr-ft.addr)%uint16(len(ft.data))]
}

// Step executes a single instruction. A halted emulator reports
// Halted with zero cycles.
func (emu *Emulator) Step() (result StepResult, err error) {
	cp := emu.Cpu
	cp.Verbose = emu.Verbose

	result.PC = cp.PC
	result.Before = Snapshot(cp)

	if cp.Halted {
		result.Text = "HLT"
		result.Size = 1
		result.PCAfter = cp.PC
		result.Halted = true
		result.After = result.Before
		return
	}

	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: lineno, Err: err}
		}
	}()

	// Decode before executing, the instruction may overwrite itself.
	inst := &fetched{addr: cp.PC}
	cp.Memory.Load(cp.PC, inst.data[:])
	result.Text, result.Size = cpu.Decode(inst, cp.PC)

	err = cp.Step()
	result.Halted = cp.Halted
	result.PCAfter = cp.PC
	result.After = Snapshot(cp)
	if err != nil {
		return
	}

	result.Taken = result.PCAfter != result.PC+uint16(result.Size)
	result.Cycles = cpu.Cycles(inst, result.PC, &result.Taken)

	emu.Steps++
	emu.Cycles += result.Cycles

	return
}
