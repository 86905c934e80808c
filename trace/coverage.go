package trace

import (
	"slices"

	"github.com/ezrec/asm8085/cpu"
	"github.com/ezrec/asm8085/emulator"
)

// Branch is the outcome record of a conditional instruction.
type Branch struct {
	LineNo   int
	Taken    bool
	NotTaken bool
}

// Complete returns true if both outcomes were seen.
func (br Branch) Complete() bool {
	return br.Taken && br.NotTaken
}

// Coverage tracks which source lines were executed, and which outcomes
// each conditional branch, call and return took.
type Coverage struct {
	Program *cpu.Program

	executable []int
	hits       map[int]int
	branches   map[int]*Branch
}

var _ Observer = (*Coverage)(nil)

// NewCoverage creates a coverage tracker for a program.
// Every line that emitted bytes is executable.
func NewCoverage(prog *cpu.Program) (cov *Coverage) {
	cov = &Coverage{
		Program:  prog,
		hits:     map[int]int{},
		branches: map[int]*Branch{},
	}

	for n, size := range prog.LineSize {
		if size == 0 {
			continue
		}
		lineno := n + 1
		cov.executable = append(cov.executable, lineno)
		if n < len(prog.Code) && prog.Code[n] {
			op := cpu.Lookup(prog.Memory[prog.LineOffset[n]])
			if op.Conditional() {
				cov.branches[lineno] = &Branch{LineNo: lineno}
			}
		}
	}

	return
}

// Record a step.
func (cov *Coverage) Record(result emulator.StepResult) {
	lineno, ok := cov.Program.LineAt(result.PC)
	if !ok {
		return
	}

	cov.hits[lineno]++

	br, ok := cov.branches[lineno]
	if !ok {
		return
	}
	if result.Taken {
		br.Taken = true
	} else {
		br.NotTaken = true
	}
}

// Hits returns the number of times a line was executed.
func (cov *Coverage) Hits(lineno int) int {
	return cov.hits[lineno]
}

// CoverageStats are the totals of a coverage run.
type CoverageStats struct {
	LineTotal     int
	LineHit       int
	LinePercent   float64
	BranchTotal   int // Two outcomes per conditional line.
	BranchHit     int
	BranchPercent float64
	Uncovered     []int    // Executable lines never hit.
	Incomplete    []Branch // Conditional lines missing an outcome.
}

func percent(part, total int) float64 {
	if total == 0 {
		return 100
	}
	return float64(part) * 100 / float64(total)
}

// Stats computes the coverage totals.
func (cov *Coverage) Stats() (stats CoverageStats) {
	stats.LineTotal = len(cov.executable)
	for _, lineno := range cov.executable {
		if cov.hits[lineno] > 0 {
			stats.LineHit++
		} else {
			stats.Uncovered = append(stats.Uncovered, lineno)
		}
	}
	stats.LinePercent = percent(stats.LineHit, stats.LineTotal)

	stats.BranchTotal = len(cov.branches) * 2
	for _, br := range cov.branches {
		if br.Taken {
			stats.BranchHit++
		}
		if br.NotTaken {
			stats.BranchHit++
		}
		if !br.Complete() {
			stats.Incomplete = append(stats.Incomplete, *br)
		}
	}
	stats.BranchPercent = percent(stats.BranchHit, stats.BranchTotal)

	slices.SortFunc(stats.Incomplete, func(a, b Branch) int {
		return a.LineNo - b.LineNo
	})

	return
}

// LineRanges groups sorted line numbers into inclusive runs of
// consecutive lines.
func LineRanges(lines []int) (ranges [][2]int) {
	for _, lineno := range lines {
		last := len(ranges) - 1
		if last >= 0 && ranges[last][1]+1 == lineno {
			ranges[last][1] = lineno
			continue
		}
		ranges = append(ranges, [2]int{lineno, lineno})
	}
	return
}
