package trace

import (
	"context"
	"log"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ezrec/asm8085/emulator"
)

// Bench is the result of repeated runs of one program.
type Bench struct {
	Name   string
	Steps  []int
	Cycles []int
	Wall   []time.Duration
	Halted []bool
}

// MinCycles returns the fewest cycles of any run.
func (bench *Bench) MinCycles() int {
	if len(bench.Cycles) == 0 {
		return 0
	}
	return slices.Min(bench.Cycles)
}

// MaxCycles returns the most cycles of any run.
func (bench *Bench) MaxCycles() int {
	if len(bench.Cycles) == 0 {
		return 0
	}
	return slices.Max(bench.Cycles)
}

// AvgCycles returns the mean cycles per run.
func (bench *Bench) AvgCycles() float64 {
	if len(bench.Cycles) == 0 {
		return 0
	}
	total := 0
	for _, cycles := range bench.Cycles {
		total += cycles
	}
	return float64(total) / float64(len(bench.Cycles))
}

// AvgWall returns the mean wall clock time per run.
func (bench *Bench) AvgWall() time.Duration {
	if len(bench.Wall) == 0 {
		return 0
	}
	var total time.Duration
	for _, wall := range bench.Wall {
		total += wall
	}
	return total / time.Duration(len(bench.Wall))
}

// Benchmark runs a program several times. Every run loads its own
// emulator, so runs proceed in parallel.
func Benchmark(ctx context.Context, name string, load func() (*emulator.Emulator, error), runs int, limit Limit) (bench *Bench, err error) {
	bench = &Bench{
		Name:   name,
		Steps:  make([]int, runs),
		Cycles: make([]int, runs),
		Wall:   make([]time.Duration, runs),
		Halted: make([]bool, runs),
	}

	group, ctx := errgroup.WithContext(ctx)
	for run := range runs {
		group.Go(func() (err error) {
			emu, err := load()
			if err != nil {
				return
			}

			start := time.Now()
			summary, err := Run(ctx, emu, limit)
			if err != nil {
				return
			}

			bench.Steps[run] = summary.Steps
			bench.Cycles[run] = summary.Cycles
			bench.Wall[run] = time.Since(start)
			bench.Halted[run] = summary.Halted

			if emu.Verbose {
				log.Printf("trace: %v run %d: %d steps, %d cycles", name, run, summary.Steps, summary.Cycles)
			}
			return
		})
	}

	err = group.Wait()
	if err != nil {
		bench = nil
	}

	return
}

// Duration returns the simulated time of a cycle count at a clock rate
// in MHz.
func Duration(cycles int, mhz float64) time.Duration {
	if mhz <= 0 {
		return 0
	}
	return time.Duration(float64(cycles) * float64(time.Microsecond) / mhz)
}
