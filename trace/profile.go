package trace

import (
	"cmp"
	"slices"
	"strings"

	"github.com/ezrec/asm8085/cpu"
	"github.com/ezrec/asm8085/emulator"
)

// Hotspot thresholds, as a percentage of total cycles.
const (
	HOTSPOT_CRITICAL = 20.0
	HOTSPOT_HIGH     = 10.0
	HOTSPOT_MEDIUM   = 5.0
)

// Profile collects per-line and per-mnemonic execution counts.
type Profile struct {
	Program *cpu.Program

	Steps  int
	Cycles int

	LineHits   map[int]int    // Executions per source line.
	LineCycles map[int]int    // T-states per source line.
	Mnemonics  map[string]int // Executions per mnemonic.
}

var _ Observer = (*Profile)(nil)

// NewProfile creates a profile for a program.
func NewProfile(prog *cpu.Program) *Profile {
	return &Profile{
		Program:    prog,
		LineHits:   map[int]int{},
		LineCycles: map[int]int{},
		Mnemonics:  map[string]int{},
	}
}

// Record a step.
func (prof *Profile) Record(result emulator.StepResult) {
	prof.Steps++
	prof.Cycles += result.Cycles

	lineno, ok := prof.Program.LineAt(result.PC)
	if ok {
		prof.LineHits[lineno]++
		prof.LineCycles[lineno] += result.Cycles
	}

	mnemonic, _, _ := strings.Cut(result.Text, " ")
	if mnemonic != "" {
		prof.Mnemonics[mnemonic]++
	}
}

// Hotspot is a source line and its share of the run.
type Hotspot struct {
	LineNo  int
	Hits    int
	Cycles  int
	Percent float64 // Share of all cycles.
	Source  string
}

// Hotspots returns the n lines with the most cycles, most expensive first.
// A negative n returns every executed line.
func (prof *Profile) Hotspots(n int) (spots []Hotspot) {
	for lineno, cycles := range prof.LineCycles {
		spot := Hotspot{
			LineNo:  lineno,
			Hits:    prof.LineHits[lineno],
			Cycles:  cycles,
			Percent: percent(cycles, prof.Cycles),
		}
		if lineno <= len(prof.Program.Source) {
			spot.Source = strings.TrimSpace(prof.Program.Source[lineno-1])
		}
		spots = append(spots, spot)
	}

	slices.SortFunc(spots, func(a, b Hotspot) int {
		return cmp.Or(cmp.Compare(b.Cycles, a.Cycles), cmp.Compare(a.LineNo, b.LineNo))
	})

	if n >= 0 && len(spots) > n {
		spots = spots[:n]
	}

	return
}

// MnemonicCount is an instruction frequency.
type MnemonicCount struct {
	Mnemonic string
	Count    int
	Percent  float64 // Share of all steps.
}

// TopMnemonics returns the n most executed mnemonics.
// A negative n returns them all.
func (prof *Profile) TopMnemonics(n int) (counts []MnemonicCount) {
	for mnemonic, count := range prof.Mnemonics {
		counts = append(counts, MnemonicCount{
			Mnemonic: mnemonic,
			Count:    count,
			Percent:  percent(count, prof.Steps),
		})
	}

	slices.SortFunc(counts, func(a, b MnemonicCount) int {
		return cmp.Or(cmp.Compare(b.Count, a.Count), strings.Compare(a.Mnemonic, b.Mnemonic))
	})

	if n >= 0 && len(counts) > n {
		counts = counts[:n]
	}

	return
}
