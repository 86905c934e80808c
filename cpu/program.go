package cpu

import (
	"iter"
)

// Program is an assembled memory image and its debug information.
type Program struct {
	Memory     Memory            // Assembled image.
	LoadOffset uint16            // Address of the first emitted instruction.
	Written    [MEMORY_SIZE]bool // Addresses written by the assembler.
	Labels     map[string]uint16 // Label addresses.
	Constants  map[string]int    // EQU and predefined constants.
	LineOffset []uint16          // Per source line, address of its first byte.
	LineSize   []int             // Per source line, bytes emitted.
	Code       []bool            // Per source line, set if it is an instruction.
	Source     []string          // Source lines.

	lineIndex map[uint16]int
}

var _ MemoryReader = (*Program)(nil)

// Read a byte of the image.
func (prog *Program) Read(addr uint16) uint8 {
	return prog.Memory[addr]
}

// LineAt returns the 1-based source line that emitted the byte at addr.
func (prog *Program) LineAt(addr uint16) (line int, ok bool) {
	if prog.lineIndex == nil {
		prog.lineIndex = make(map[uint16]int)
		for n, size := range prog.LineSize {
			for offset := range size {
				prog.lineIndex[prog.LineOffset[n]+uint16(offset)] = n + 1
			}
		}
	}

	line, ok = prog.lineIndex[addr]
	return
}

// End returns one past the last written address at or above LoadOffset.
func (prog *Program) End() (end int) {
	end = int(prog.LoadOffset)
	for addr := int(prog.LoadOffset); addr < MEMORY_SIZE; addr++ {
		if prog.Written[addr] {
			end = addr + 1
		}
	}
	return
}

// Bytes returns a copy of the image in [start, end).
func (prog *Program) Bytes(start, end int) (data []uint8) {
	start = max(start, 0)
	end = min(end, MEMORY_SIZE)
	if start >= end {
		return
	}
	data = make([]uint8, end-start)
	copy(data, prog.Memory[start:end])
	return
}

// Instructions iterates over the source lines that emitted instructions,
// yielding the 1-based line number and its address.
func (prog *Program) Instructions() iter.Seq2[int, uint16] {
	return func(yield func(lineno int, addr uint16) bool) {
		for n, code := range prog.Code {
			if !code || prog.LineSize[n] == 0 {
				continue
			}
			if !yield(n+1, prog.LineOffset[n]) {
				return
			}
		}
	}
}
