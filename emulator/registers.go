package emulator

import (
	"fmt"

	"github.com/ezrec/asm8085/cpu"
)

// Registers is a snapshot of the CPU register file.
type Registers struct {
	A, B, C, D, E, H, L uint8
	F                   uint8
	SP, PC              uint16
}

// Snapshot captures the register file of a CPU.
func Snapshot(cp *cpu.Cpu) Registers {
	return Registers{
		A: cp.A, B: cp.B, C: cp.C, D: cp.D, E: cp.E, H: cp.H, L: cp.L,
		F:  cp.F,
		SP: cp.SP,
		PC: cp.PC,
	}
}

// Flags decodes the flag register.
func (regs Registers) Flags() cpu.Flag {
	return cpu.Flag(regs.F)
}

// fields lists the registers in display order.
func (regs Registers) fields() []struct {
	name  string
	value int
} {
	return []struct {
		name  string
		value int
	}{
		{"A", int(regs.A)},
		{"B", int(regs.B)},
		{"C", int(regs.C)},
		{"D", int(regs.D)},
		{"E", int(regs.E)},
		{"H", int(regs.H)},
		{"L", int(regs.L)},
		{"F", int(regs.F)},
		{"SP", int(regs.SP)},
		{"PC", int(regs.PC)},
	}
}

// Diff returns the names of the registers that differ from other.
func (regs Registers) Diff(other Registers) (changed []string) {
	theirs := other.fields()
	for n, field := range regs.fields() {
		if field.value != theirs[n].value {
			changed = append(changed, field.name)
		}
	}
	return
}

func (regs Registers) String() string {
	return fmt.Sprintf("A=%02X B=%02X C=%02X D=%02X E=%02X H=%02X L=%02X F=%02X SP=%04X PC=%04X",
		regs.A, regs.B, regs.C, regs.D, regs.E, regs.H, regs.L, regs.F, regs.SP, regs.PC)
}
