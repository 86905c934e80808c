// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package trace drives an emulator and collects per-step telemetry:
// coverage, profiles, recordings, trace comparisons and benchmarks.
package trace

import (
	"context"
	"fmt"

	"github.com/ezrec/asm8085/emulator"
)

// Limit is a step budget.
type Limit int

const (
	DEFAULT_LIMIT = Limit(1000) // Default step budget.
	UNLIMITED     = Limit(-1)   // No step budget.
)

// Reached returns true if steps exhausts the budget.
func (limit Limit) Reached(steps int) bool {
	return limit >= 0 && steps >= int(limit)
}

func (limit Limit) String() string {
	if limit < 0 {
		return "unlimited"
	}
	return fmt.Sprintf("%d", int(limit))
}

// Observer receives every executed step.
type Observer interface {
	Record(result emulator.StepResult)
}

// ObserverFunc adapts a function to an Observer.
type ObserverFunc func(result emulator.StepResult)

func (fn ObserverFunc) Record(result emulator.StepResult) {
	fn(result)
}

// Summary of a run.
type Summary struct {
	Steps        int  // Instructions executed.
	Cycles       int  // T-states executed.
	Halted       bool // Set if the program halted.
	LimitReached bool // Set if the budget ran out first.
}

// Run steps the emulator until it halts, the budget is exhausted, or
// the context is done.
func Run(ctx context.Context, emu *emulator.Emulator, limit Limit, observers ...Observer) (summary Summary, err error) {
	for !emu.Halted() {
		if limit.Reached(summary.Steps) {
			summary.LimitReached = true
			break
		}

		err = ctx.Err()
		if err != nil {
			break
		}

		var result emulator.StepResult
		result, err = emu.Step()
		if err != nil {
			break
		}

		summary.Steps++
		summary.Cycles += result.Cycles

		for _, observer := range observers {
			observer.Record(result)
		}
	}

	summary.Halted = emu.Halted()

	return
}

// Recorder keeps every step.
type Recorder struct {
	Steps []emulator.StepResult
}

func (rec *Recorder) Record(result emulator.StepResult) {
	rec.Steps = append(rec.Steps, result)
}
