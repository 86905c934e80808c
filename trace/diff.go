package trace

import (
	"github.com/ezrec/asm8085/emulator"
)

// DiffRow pairs the n-th step of two traces. A side whose trace has
// already ended is nil.
type DiffRow struct {
	Step int // 1-based step number.
	A, B *emulator.StepResult
}

// Same returns true if both sides executed the same instruction at the
// same address with the same resulting registers.
func (row DiffRow) Same() bool {
	if row.A == nil || row.B == nil {
		return false
	}
	return row.A.PC == row.B.PC && row.A.Text == row.B.Text && row.A.After == row.B.After
}

// Diff compares two traces step by step, up to the length of the
// longer one.
func Diff(a, b []emulator.StepResult) (rows []DiffRow) {
	for n := range max(len(a), len(b)) {
		row := DiffRow{Step: n + 1}
		if n < len(a) {
			row.A = &a[n]
		}
		if n < len(b) {
			row.B = &b[n]
		}
		rows = append(rows, row)
	}
	return
}

// Divergence returns the index of the first row that differs, or -1.
func Divergence(rows []DiffRow) int {
	for n, row := range rows {
		if !row.Same() {
			return n
		}
	}
	return -1
}
