// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"fmt"
	"log"
)

const (
	SP_RESET = uint16(0xFFFF) // Stack pointer after load or reset.
)

// Cpu is the simulation context of an 8085.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	A, B, C, D, E, H, L uint8  // 8-bit registers.
	F                   uint8  // Flag register, only FLAG_MASK bits are used.
	SP                  uint16 // Stack pointer.
	PC                  uint16 // Program counter.

	Memory Memory // Flat 64KiB memory.

	Halted     bool  // Set by HLT or a guard fault.
	Fault      bool  // Set when the guard rejected a fetch address.
	Interrupts bool  // Interrupt enable, toggled by EI and DI.
	Mask       uint8 // RST 7.5/6.5/5.5 mask bits, set by SIM.

	Ports Port                 // I/O space, nil floats high.
	Guard func(pc uint16) bool // When set, fetches it rejects halt the CPU.

	Ticks int // T-states executed.
}

// NewCpu creates a CPU in its reset state.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{}
	cpu.Reset()
	return
}

// clearRegisters clears the register file and execution state.
func (cpu *Cpu) clearRegisters() {
	cpu.A, cpu.B, cpu.C, cpu.D, cpu.E, cpu.H, cpu.L = 0, 0, 0, 0, 0, 0, 0
	cpu.F = 0
	cpu.SP = SP_RESET
	cpu.PC = 0
	cpu.Halted = false
	cpu.Fault = false
	cpu.Interrupts = false
	cpu.Mask = 0
	cpu.Ticks = 0
}

// Reset the CPU state.
// - Clears the registers and memory.
// - Sets SP to 0xFFFF and PC to 0.
// - Zeros the tick counter.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cpu.clearRegisters()
	clear(cpu.Memory[:])
}

// Load copies a memory image into the CPU and starts execution at pc.
func (cpu *Cpu) Load(image *Memory, pc uint16) {
	if cpu.Verbose {
		log.Printf("cpu: load, entry %04XH", pc)
	}

	cpu.clearRegisters()
	cpu.Memory = *image
	cpu.PC = pc
}

// BC returns the BC register pair.
func (cpu *Cpu) BC() uint16 {
	return uint16(cpu.B)<<8 | uint16(cpu.C)
}

// SetBC sets the BC register pair.
func (cpu *Cpu) SetBC(value uint16) {
	cpu.B, cpu.C = uint8(value>>8), uint8(value)
}

// DE returns the DE register pair.
func (cpu *Cpu) DE() uint16 {
	return uint16(cpu.D)<<8 | uint16(cpu.E)
}

// SetDE sets the DE register pair.
func (cpu *Cpu) SetDE(value uint16) {
	cpu.D, cpu.E = uint8(value>>8), uint8(value)
}

// HL returns the HL register pair.
func (cpu *Cpu) HL() uint16 {
	return uint16(cpu.H)<<8 | uint16(cpu.L)
}

// SetHL sets the HL register pair.
func (cpu *Cpu) SetHL(value uint16) {
	cpu.H, cpu.L = uint8(value>>8), uint8(value)
}

// PSW returns the processor status word, A and the flags.
func (cpu *Cpu) PSW() uint16 {
	return uint16(cpu.A)<<8 | uint16(cpu.F|flagFixed)
}

// SetPSW sets A and the flags. Undefined flag bits are discarded.
func (cpu *Cpu) SetPSW(value uint16) {
	cpu.A = uint8(value >> 8)
	cpu.F = uint8(value) & uint8(FLAG_MASK)
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	regs := []string{
		"pc", "sp",
		"a", "b", "c", "d", "e", "h", "l",
		"flags", "state",
	}
	for _, reg := range regs {
		var strval string
		switch reg {
		case "pc":
			strval = fmt.Sprintf("%04X", cpu.PC)
		case "sp":
			strval = fmt.Sprintf("%04X", cpu.SP)
		case "a", "b", "c", "d", "e", "h", "l":
			strval = fmt.Sprintf("%02X", *cpu.register8(reg))
		case "flags":
			strval = fmt.Sprintf("%02X [%v]", cpu.F, Flag(cpu.F))
		case "state":
			switch {
			case cpu.Fault:
				strval = "fault"
			case cpu.Halted:
				strval = "halted"
			default:
				strval = "running"
			}
		}
		text += fmt.Sprintf("% 5s: %v\n", reg, strval)
	}

	return
}

// register8 maps a lower case register name to its storage.
func (cpu *Cpu) register8(name string) *uint8 {
	switch name {
	case "a":
		return &cpu.A
	case "b":
		return &cpu.B
	case "c":
		return &cpu.C
	case "d":
		return &cpu.D
	case "e":
		return &cpu.E
	case "h":
		return &cpu.H
	case "l":
		return &cpu.L
	}
	return nil
}

// Step executes a single instruction.
// A halted CPU does nothing and returns nil. When the guard rejects the
// fetch address, the CPU halts with Fault set and returns ErrFault.
func (cpu *Cpu) Step() (err error) {
	if cpu.Halted {
		return
	}

	pc := cpu.PC
	if cpu.Guard != nil && !cpu.Guard(pc) {
		if cpu.Verbose {
			log.Printf("cpu: %04X: fault", pc)
		}
		cpu.Halted = true
		cpu.Fault = true
		err = ErrFault
		return
	}

	op := opcodeTable[cpu.Memory[pc]]
	if cpu.Verbose {
		text, _ := Decode(&cpu.Memory, pc)
		log.Printf("cpu: %04X: %v", pc, text)
	}

	cpu.execute()

	cpu.Ticks += op.Cost(cpu.PC != pc+uint16(op.Length()))

	return
}
