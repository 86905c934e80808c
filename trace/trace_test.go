package trace

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezrec/asm8085/emulator"
)

func load(t *testing.T, lines ...string) (emu *emulator.Emulator) {
	emu = emulator.NewEmulator()
	require.NoError(t, emu.LoadSource(t.Name(), lines))
	return
}

var scenario = []string{
	"        ORG 8000H",
	"        MVI A, 05H",
	"        MVI B, 03H",
	"        ADD B",
	"        HLT",
}

func TestLimit(t *testing.T) {
	assert := assert.New(t)

	assert.False(UNLIMITED.Reached(1 << 30))
	assert.True(Limit(0).Reached(0))
	assert.False(DEFAULT_LIMIT.Reached(999))
	assert.True(DEFAULT_LIMIT.Reached(1000))
	assert.Equal("unlimited", UNLIMITED.String())
	assert.Equal("1000", DEFAULT_LIMIT.String())
}

func TestRun(t *testing.T) {
	assert := assert.New(t)

	emu := load(t, scenario...)

	rec := &Recorder{}
	var texts []string
	summary, err := Run(context.Background(), emu, DEFAULT_LIMIT, rec, ObserverFunc(func(result emulator.StepResult) {
		texts = append(texts, result.Text)
	}))
	assert.NoError(err)
	assert.Equal(Summary{Steps: 4, Cycles: 23, Halted: true}, summary)
	assert.Equal([]string{"MVI A, 05H", "MVI B, 03H", "ADD B", "HLT"}, texts)
	assert.Equal(4, len(rec.Steps))
	assert.Equal(uint8(0x08), rec.Steps[3].After.A)
}

func TestRunLimit(t *testing.T) {
	assert := assert.New(t)

	emu := load(t, "LOOP:   JMP LOOP")

	summary, err := Run(context.Background(), emu, Limit(5))
	assert.NoError(err)
	assert.Equal(Summary{Steps: 5, Cycles: 50, LimitReached: true}, summary)

	emu.Reset()
	summary, err = Run(context.Background(), emu, Limit(0))
	assert.NoError(err)
	assert.Equal(0, summary.Steps)
	assert.True(summary.LimitReached)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	emu.Reset()
	summary, err = Run(ctx, emu, UNLIMITED)
	assert.ErrorIs(err, context.Canceled)
	assert.False(summary.Halted)
}

func TestRunFault(t *testing.T) {
	assert := assert.New(t)

	emu := emulator.NewEmulator()
	emu.Guard = true
	require.NoError(t, emu.LoadSource("fault", []string{
		"        JMP DATA",
		"DATA:   DB 0",
	}))

	summary, err := Run(context.Background(), emu, UNLIMITED)
	assert.Error(err)
	assert.Equal(1, summary.Steps)
	assert.True(summary.Halted)
}

func TestCoverage(t *testing.T) {
	assert := assert.New(t)

	emu := load(t,
		"        ORG 0",
		"        MVI A, 1",
		"        CPI 1",
		"        JZ DONE",
		"        MVI B, 2",
		"        MVI C, 3",
		"DONE:   HLT",
		"DATA:   DB 1, 2",
	)

	cov := NewCoverage(emu.Program)
	_, err := Run(context.Background(), emu, DEFAULT_LIMIT, cov)
	assert.NoError(err)

	stats := cov.Stats()
	assert.Equal(7, stats.LineTotal)
	assert.Equal(4, stats.LineHit)
	assert.InDelta(57.14, stats.LinePercent, 0.01)
	assert.Equal(2, stats.BranchTotal)
	assert.Equal(1, stats.BranchHit)
	assert.Equal(50.0, stats.BranchPercent)
	assert.Equal([]int{5, 6, 8}, stats.Uncovered)
	assert.Equal([]Branch{{LineNo: 4, Taken: true}}, stats.Incomplete)

	assert.Equal(1, cov.Hits(4))
	assert.Equal(0, cov.Hits(5))

	assert.Equal([][2]int{{5, 6}, {8, 8}}, LineRanges(stats.Uncovered))
	assert.Nil(LineRanges(nil))
}

func TestCoverageEmpty(t *testing.T) {
	assert := assert.New(t)

	emu := load(t, "; nothing here")
	stats := NewCoverage(emu.Program).Stats()
	assert.Equal(0, stats.LineTotal)
	assert.Equal(100.0, stats.LinePercent)
	assert.Equal(100.0, stats.BranchPercent)
}

func TestProfile(t *testing.T) {
	assert := assert.New(t)

	emu := load(t,
		"        ORG 0",
		"        MVI B, 3",
		"LOOP:   DCR B",
		"        JNZ LOOP",
		"        HLT",
	)

	prof := NewProfile(emu.Program)
	summary, err := Run(context.Background(), emu, DEFAULT_LIMIT, prof)
	assert.NoError(err)
	assert.Equal(8, prof.Steps)
	assert.Equal(51, prof.Cycles)
	assert.Equal(summary.Cycles, prof.Cycles)

	spots := prof.Hotspots(2)
	assert.Equal([]Hotspot{
		{LineNo: 4, Hits: 3, Cycles: 27, Percent: 27.0 * 100 / 51, Source: "JNZ LOOP"},
		{LineNo: 3, Hits: 3, Cycles: 12, Percent: 12.0 * 100 / 51, Source: "LOOP:   DCR B"},
	}, spots)
	assert.Equal(4, len(prof.Hotspots(-1)))

	assert.Equal([]MnemonicCount{
		{"DCR", 3, 37.5},
		{"JNZ", 3, 37.5},
	}, prof.TopMnemonics(2))
	assert.Equal(4, len(prof.TopMnemonics(-1)))
}

func TestDiff(t *testing.T) {
	assert := assert.New(t)

	trace := func(lines ...string) []emulator.StepResult {
		rec := &Recorder{}
		_, err := Run(context.Background(), load(t, lines...), DEFAULT_LIMIT, rec)
		require.NoError(t, err)
		return rec.Steps
	}

	a := trace("MVI A, 1", "MVI B, 2", "HLT")
	b := trace("MVI A, 1", "MVI B, 3", "NOP", "HLT")

	assert.Empty(cmp.Diff(a[0], b[0]))
	assert.NotEmpty(cmp.Diff(a[1], b[1]))

	rows := Diff(a, b)
	assert.Equal(4, len(rows))
	assert.True(rows[0].Same())
	assert.False(rows[1].Same())
	assert.Equal(2, rows[1].Step)
	assert.Nil(rows[3].A)
	assert.NotNil(rows[3].B)
	assert.False(rows[3].Same())
	assert.Equal(1, Divergence(rows))

	assert.Equal(-1, Divergence(Diff(a, a)))
	assert.Empty(Diff(nil, nil))
}

func TestBenchmark(t *testing.T) {
	assert := assert.New(t)

	bench, err := Benchmark(context.Background(), "scenario", func() (*emulator.Emulator, error) {
		emu := emulator.NewEmulator()
		err := emu.LoadSource("scenario", scenario)
		return emu, err
	}, 4, DEFAULT_LIMIT)
	require.NoError(t, err)

	assert.Equal("scenario", bench.Name)
	assert.Equal([]int{23, 23, 23, 23}, bench.Cycles)
	assert.Equal([]int{4, 4, 4, 4}, bench.Steps)
	assert.Equal([]bool{true, true, true, true}, bench.Halted)
	assert.Equal(23, bench.MinCycles())
	assert.Equal(23, bench.MaxCycles())
	assert.Equal(23.0, bench.AvgCycles())
	assert.GreaterOrEqual(bench.AvgWall(), time.Duration(0))

	errBroken := errors.New("broken")
	bench, err = Benchmark(context.Background(), "broken", func() (*emulator.Emulator, error) {
		return nil, errBroken
	}, 2, DEFAULT_LIMIT)
	assert.ErrorIs(err, errBroken)
	assert.Nil(bench)

	empty := &Bench{}
	assert.Equal(0, empty.MinCycles())
	assert.Equal(0.0, empty.AvgCycles())
}

func TestDuration(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(4600*time.Nanosecond, Duration(23, 5.0))
	assert.Equal(time.Millisecond, Duration(3000, 3.0))
	assert.Equal(time.Duration(0), Duration(100, 0))
}
