package trace

import (
	"slices"
	"strings"

	"github.com/ezrec/asm8085/cpu"
	"github.com/ezrec/asm8085/emulator"
)

// RegionKind classifies a span of memory.
type RegionKind int

const (
	REGION_CODE  = RegionKind(iota) // Assembled image.
	REGION_DATA                     // Memory changed by the run.
	REGION_STACK                    // Memory below the stack top.
)

func (kind RegionKind) String() string {
	switch kind {
	case REGION_CODE:
		return "Code"
	case REGION_DATA:
		return "Data"
	case REGION_STACK:
		return "Stack"
	}
	return "Unknown"
}

// Region is an inclusive span of memory.
type Region struct {
	Kind  RegionKind
	Start uint16
	End   uint16 // Inclusive.
	Size  int    // Bytes in use within the span.
}

// Overlaps returns true if the spans of two regions intersect.
func (region Region) Overlaps(other Region) bool {
	return region.Start <= other.End && other.Start <= region.End
}

// MemoryMap observes a run to find how far the stack grew.
type MemoryMap struct {
	Program *cpu.Program

	stackTop int // SP before the stack first grew, -1 if it never did.
	stackLow int // Lowest SP since then.
}

var _ Observer = (*MemoryMap)(nil)

// NewMemoryMap creates a memory map for a program.
func NewMemoryMap(prog *cpu.Program) *MemoryMap {
	return &MemoryMap{
		Program:  prog,
		stackTop: -1,
		stackLow: cpu.MEMORY_SIZE,
	}
}

// pushes returns true for instructions that grow the stack.
func pushes(text string) bool {
	mnemonic, _, _ := strings.Cut(text, " ")
	switch mnemonic {
	case "PUSH", "CALL", "RST", "DCX",
		"CNZ", "CZ", "CNC", "CC", "CPO", "CPE", "CP", "CM":
		return true
	}
	return false
}

func (mm *MemoryMap) Record(result emulator.StepResult) {
	before, after := int(result.Before.SP), int(result.After.SP)
	if mm.stackTop < 0 && after < before && pushes(result.Text) {
		mm.stackTop = before
	}
	if mm.stackTop >= 0 {
		mm.stackLow = min(mm.stackLow, after)
	}
}

// Regions returns the code, data and stack regions of the memory after
// the run, ordered by start address. Data is every byte that differs
// from the assembled image outside of the stack.
func (mm *MemoryMap) Regions(mem *cpu.Memory) (regions []Region) {
	prog := mm.Program

	code := Region{Kind: REGION_CODE}
	data := Region{Kind: REGION_DATA}
	stack := Region{Kind: REGION_STACK}

	if mm.stackTop >= 0 && mm.stackLow < mm.stackTop {
		stack.Start = uint16(mm.stackLow)
		stack.End = uint16(mm.stackTop - 1)
		stack.Size = mm.stackTop - mm.stackLow
	}

	for addr := range cpu.MEMORY_SIZE {
		if prog.Written[addr] {
			if code.Size == 0 {
				code.Start = uint16(addr)
			}
			code.End = uint16(addr)
			code.Size++
		}

		if stack.Size > 0 && addr >= int(stack.Start) && addr <= int(stack.End) {
			continue
		}
		if mem[addr] != prog.Memory[addr] {
			if data.Size == 0 {
				data.Start = uint16(addr)
			}
			data.End = uint16(addr)
			data.Size++
		}
	}

	for _, region := range []Region{code, data, stack} {
		if region.Size > 0 {
			regions = append(regions, region)
		}
	}

	slices.SortStableFunc(regions, func(a, b Region) int {
		return int(a.Start) - int(b.Start)
	})

	return
}
