package cpu

import (
	"math/bits"
	"testing"

	"github.com/stretchr/testify/assert"
)

// newTestCpu loads code at 0x0000 into a fresh CPU.
func newTestCpu(code ...uint8) (cpu *Cpu) {
	var mem Memory
	mem.Store(0, code)

	cpu = NewCpu()
	cpu.Load(&mem, 0)
	return
}

// run steps until the CPU halts or the limit is reached.
func run(t *testing.T, cpu *Cpu, limit int) {
	for range limit {
		if cpu.Halted {
			return
		}
		err := cpu.Step()
		if err != nil {
			t.Fatal(err)
		}
	}
	t.Fatalf("cpu did not halt in %v steps", limit)
}

type testPort struct {
	in  map[uint8]uint8
	out map[uint8][]uint8
}

func (tp *testPort) In(port uint8) uint8 {
	return tp.in[port]
}

func (tp *testPort) Out(port uint8, value uint8) {
	if tp.out == nil {
		tp.out = make(map[uint8][]uint8)
	}
	tp.out[port] = append(tp.out[port], value)
}

func TestCpuReset(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	assert.Equal(uint16(0xFFFF), cpu.SP)
	assert.Equal(uint16(0), cpu.PC)
	assert.False(cpu.Halted)

	cpu.A = 5
	cpu.Memory[0x1234] = 0x56
	cpu.Halted = true
	cpu.Reset()
	assert.Equal(uint8(0), cpu.A)
	assert.Equal(uint8(0), cpu.Memory[0x1234])
	assert.False(cpu.Halted)
}

func TestCpuScenario(t *testing.T) {
	assert := assert.New(t)

	var mem Memory
	mem.Store(0x8000, []uint8{0x3E, 0x05, 0x06, 0x03, 0x80, 0x76})

	cpu := NewCpu()
	cpu.Load(&mem, 0x8000)
	run(t, cpu, 10)

	assert.Equal(uint8(0x08), cpu.A)
	assert.Equal(uint8(0x03), cpu.B)
	assert.Equal(23, cpu.Ticks)
	assert.True(cpu.Halted)
	assert.False(cpu.Fault)
	assert.Equal(uint16(0x8006), cpu.PC)
}

func TestCpuHaltedNoop(t *testing.T) {
	assert := assert.New(t)

	cpu := newTestCpu(0x76, 0x3C) // HLT, INR A
	assert.NoError(cpu.Step())
	assert.True(cpu.Halted)

	pc := cpu.PC
	ticks := cpu.Ticks
	assert.NoError(cpu.Step())
	assert.Equal(pc, cpu.PC)
	assert.Equal(ticks, cpu.Ticks)
	assert.Equal(uint8(0), cpu.A)
}

func TestCpuGuard(t *testing.T) {
	assert := assert.New(t)

	cpu := newTestCpu(0x00, 0x00, 0x00)
	cpu.Guard = func(pc uint16) bool { return pc < 2 }

	assert.NoError(cpu.Step())
	assert.NoError(cpu.Step())
	assert.ErrorIs(cpu.Step(), ErrFault)
	assert.True(cpu.Halted)
	assert.True(cpu.Fault)
	assert.Equal(uint16(2), cpu.PC)
	assert.Contains(cpu.String(), "fault")
}

func TestCpuWrapAround(t *testing.T) {
	assert := assert.New(t)

	// INX SP from 0xFFFF
	cpu := newTestCpu(0x33)
	cpu.SP = 0xFFFF
	assert.NoError(cpu.Step())
	assert.Equal(uint16(0x0000), cpu.SP)
	assert.Equal(6, cpu.Ticks)

	// DCR A from 0x00
	cpu = newTestCpu(0x3D)
	cpu.SetFlag(FLAG_CY, true)
	assert.NoError(cpu.Step())
	assert.Equal(uint8(0xFF), cpu.A)
	assert.True(cpu.Flag(FLAG_S))
	assert.False(cpu.Flag(FLAG_Z))
	assert.True(cpu.Flag(FLAG_P))
	assert.True(cpu.Flag(FLAG_CY), "DCR leaves carry alone")
	assert.Equal(uint8(0), cpu.F&^uint8(FLAG_MASK))

	// PC wraps at the top of memory.
	cpu = newTestCpu()
	cpu.Memory[0xFFFF] = 0x00
	cpu.PC = 0xFFFF
	assert.NoError(cpu.Step())
	assert.Equal(uint16(0x0000), cpu.PC)
}

func TestCpuStack(t *testing.T) {
	assert := assert.New(t)

	cpu := newTestCpu(
		0x31, 0x00, 0x90, // LXI SP, 9000H
		0x01, 0x34, 0x12, // LXI B, 1234H
		0xC5,             // PUSH B
		0xD1,             // POP D
		0xCD, 0x20, 0x00, // CALL 0020H
		0x76, // HLT
	)
	cpu.Memory[0x20] = 0xC9 // RET

	for range 4 {
		assert.NoError(cpu.Step())
	}
	assert.Equal(uint16(0x1234), cpu.DE())
	assert.Equal(uint16(0x9000), cpu.SP)
	assert.Equal(uint8(0x12), cpu.Memory[0x8FFF])
	assert.Equal(uint8(0x34), cpu.Memory[0x8FFE])

	assert.NoError(cpu.Step()) // CALL
	assert.Equal(uint16(0x0020), cpu.PC)
	assert.Equal(uint16(0x8FFE), cpu.SP)
	assert.Equal(uint16(0x000B), cpu.Peek())

	assert.NoError(cpu.Step()) // RET
	assert.Equal(uint16(0x000B), cpu.PC)
	assert.Equal(uint16(0x9000), cpu.SP)

	run(t, cpu, 2)
	assert.Equal(10+10+12+10+18+10+5, cpu.Ticks)
}

func TestCpuPushPsw(t *testing.T) {
	assert := assert.New(t)

	cpu := newTestCpu(
		0xF5, // PUSH PSW
		0xC1, // POP B
		0xC5, // PUSH B
		0xF1, // POP PSW
	)
	cpu.A = 0x42
	cpu.F = uint8(FLAG_Z | FLAG_CY)

	assert.NoError(cpu.Step())
	assert.NoError(cpu.Step())
	assert.Equal(uint8(0x42), cpu.B)
	assert.Equal(uint8(FLAG_Z|FLAG_CY)|0x02, cpu.C)

	cpu.B, cpu.C = 0x99, 0xFF
	assert.NoError(cpu.Step())
	assert.NoError(cpu.Step())
	assert.Equal(uint8(0x99), cpu.A)
	assert.Equal(uint8(FLAG_MASK), cpu.F)
	assert.Equal(uint16(0x99D7), cpu.PSW())
}

func TestCpuConditional(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		code   uint8
		flags  Flag
		taken  bool
		cycles int
	}){
		{0xC2, 0, true, 10},        // JNZ
		{0xC2, FLAG_Z, false, 7},   // JNZ
		{0xCA, FLAG_Z, true, 10},   // JZ
		{0xD2, FLAG_CY, false, 7},  // JNC
		{0xDA, FLAG_CY, true, 10},  // JC
		{0xE2, 0, true, 10},        // JPO
		{0xEA, FLAG_P, true, 10},   // JPE
		{0xF2, FLAG_S, false, 7},   // JP
		{0xFA, FLAG_S, true, 10},   // JM
		{0xCC, FLAG_Z, true, 18},   // CZ
		{0xCC, 0, false, 9},        // CZ
		{0xD8, FLAG_CY, true, 12},  // RC
		{0xD8, 0, false, 6},        // RC
	}

	for _, entry := range table {
		cpu := newTestCpu(entry.code, 0x00, 0x40)
		cpu.SP = 0x2000
		cpu.Memory.Write16(0x2000, 0x5000)
		cpu.F = uint8(entry.flags)

		assert.NoError(cpu.Step())
		size := uint16(Lookup(entry.code).Length())
		assert.Equal(entry.taken, cpu.PC != size, "%02X", entry.code)
		assert.Equal(entry.cycles, cpu.Ticks, "%02X", entry.code)
	}
}

func TestCpuArithmetic(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name  string
		code  []uint8
		a, b  uint8
		carry bool
		out   uint8
		flags Flag
	}){
		{"ADD", []uint8{0x80}, 0x05, 0x03, false, 0x08, 0},
		{"ADD carry", []uint8{0x80}, 0xFF, 0x01, false, 0x00, FLAG_Z | FLAG_AC | FLAG_P | FLAG_CY},
		{"ADC", []uint8{0x88}, 0x05, 0x03, true, 0x09, FLAG_P},
		{"SUB", []uint8{0x90}, 0x05, 0x03, false, 0x02, FLAG_AC},
		{"SUB borrow", []uint8{0x90}, 0x03, 0x05, false, 0xFE, FLAG_S | FLAG_CY},
		{"SBB", []uint8{0x98}, 0x05, 0x03, true, 0x01, FLAG_AC},
		{"ANA", []uint8{0xA0}, 0xF0, 0x3C, true, 0x30, FLAG_P},
		{"XRA", []uint8{0xA8}, 0xFF, 0x0F, true, 0xF0, FLAG_S | FLAG_P},
		{"ORA", []uint8{0xB0}, 0x01, 0x02, true, 0x03, FLAG_P},
		{"CMP equal", []uint8{0xB8}, 0x42, 0x42, false, 0x42, FLAG_Z | FLAG_AC | FLAG_P},
		{"CMP less", []uint8{0xB8}, 0x01, 0x02, false, 0x01, FLAG_S | FLAG_P | FLAG_CY},
		{"ADI", []uint8{0xC6, 0x0F}, 0x01, 0, false, 0x10, FLAG_AC},
		{"SUI", []uint8{0xD6, 0x01}, 0x00, 0, false, 0xFF, FLAG_S | FLAG_P | FLAG_CY},
		{"ANI", []uint8{0xE6, 0x0F}, 0xFF, 0, true, 0x0F, FLAG_P},
		{"CPI", []uint8{0xFE, 0x10}, 0x20, 0, false, 0x20, FLAG_AC},
		{"DAA", []uint8{0x27}, 0x0F, 0, false, 0x15, FLAG_AC},
		{"DAA carry", []uint8{0x27}, 0x9A, 0, false, 0x00, FLAG_Z | FLAG_AC | FLAG_P | FLAG_CY},
		{"RLC", []uint8{0x07}, 0x81, 0, false, 0x03, FLAG_CY},
		{"RRC", []uint8{0x0F}, 0x01, 0, false, 0x80, FLAG_CY},
		{"RAL", []uint8{0x17}, 0x80, 0, true, 0x01, FLAG_CY},
		{"RAR", []uint8{0x1F}, 0x01, 0, false, 0x00, FLAG_CY},
		{"CMA", []uint8{0x2F}, 0x55, 0, true, 0xAA, FLAG_CY},
		{"STC", []uint8{0x37}, 0x00, 0, false, 0x00, FLAG_CY},
		{"CMC", []uint8{0x3F}, 0x00, 0, true, 0x00, 0},
	}

	for _, entry := range table {
		cpu := newTestCpu(entry.code...)
		cpu.A = entry.a
		cpu.B = entry.b
		cpu.SetFlag(FLAG_CY, entry.carry)

		assert.NoError(cpu.Step(), entry.name)
		assert.Equal(entry.out, cpu.A, entry.name)
		assert.Equal(entry.flags.String(), Flag(cpu.F).String(), entry.name)
	}
}

func TestCpuDad(t *testing.T) {
	assert := assert.New(t)

	cpu := newTestCpu(0x09) // DAD B
	cpu.SetHL(0xFFFF)
	cpu.SetBC(0x0002)
	cpu.F = uint8(FLAG_Z)

	assert.NoError(cpu.Step())
	assert.Equal(uint16(0x0001), cpu.HL())
	assert.True(cpu.Flag(FLAG_CY))
	assert.True(cpu.Flag(FLAG_Z), "DAD only changes carry")
	assert.Equal(10, cpu.Ticks)
}

func TestCpuDataTransfer(t *testing.T) {
	assert := assert.New(t)

	cpu := newTestCpu(
		0x21, 0x00, 0x30, // LXI H, 3000H
		0x36, 0xAB, // MVI M, ABH
		0x7E,             // MOV A, M
		0x32, 0x01, 0x30, // STA 3001H
		0x2A, 0x00, 0x30, // LHLD 3000H
		0xEB,             // XCHG
		0x22, 0x10, 0x30, // SHLD 3010H
		0x11, 0x00, 0x30, // LXI D, 3000H
		0x1A,             // LDAX D
		0xE3,             // XTHL
		0xF9,             // SPHL
		0xE9,             // PCHL
	)
	cpu.SP = 0x4000
	cpu.Memory.Write16(0x4000, 0x0100)

	for range 6 {
		assert.NoError(cpu.Step())
	}
	assert.Equal(uint8(0xAB), cpu.A)
	assert.Equal(uint8(0xAB), cpu.Memory[0x3001])
	assert.Equal(uint16(0xABAB), cpu.DE())
	assert.Equal(uint16(0x0000), cpu.HL())

	for range 3 {
		assert.NoError(cpu.Step())
	}
	assert.Equal(uint16(0x0000), cpu.Memory.Read16(0x3010))
	assert.Equal(uint16(0x3000), cpu.DE())
	assert.Equal(uint8(0xAB), cpu.A)

	assert.NoError(cpu.Step()) // XTHL
	assert.Equal(uint16(0x0100), cpu.HL())
	assert.Equal(uint16(0x0000), cpu.Memory.Read16(0x4000))

	assert.NoError(cpu.Step()) // SPHL
	assert.Equal(uint16(0x0100), cpu.SP)
	assert.NoError(cpu.Step()) // PCHL
	assert.Equal(uint16(0x0100), cpu.PC)

	// Data transfer never touches the flags.
	assert.Equal(uint8(0x00), cpu.F)
}

func TestCpuIo(t *testing.T) {
	assert := assert.New(t)

	cpu := newTestCpu(
		0xDB, 0x00, // IN 00H
		0xD3, 0x01, // OUT 01H
		0xDB, 0x07, // IN 07H
	)

	port := &testPort{in: map[uint8]uint8{0x00: 'x', 0x07: 0x12}}
	cpu.Ports = port

	assert.NoError(cpu.Step())
	assert.Equal(uint8('x'), cpu.A)
	assert.NoError(cpu.Step())
	assert.Equal([]uint8{'x'}, port.out[0x01])
	assert.NoError(cpu.Step())
	assert.Equal(uint8(0x12), cpu.A)
	assert.Equal(30, cpu.Ticks)

	// Without ports the bus floats high.
	cpu = newTestCpu(0xDB, 0x00, 0xD3, 0x01)
	assert.NoError(cpu.Step())
	assert.Equal(uint8(0xFF), cpu.A)
	assert.NoError(cpu.Step())
}

func TestCpuInterruptState(t *testing.T) {
	assert := assert.New(t)

	cpu := newTestCpu(
		0xFB, // EI
		0x3E, 0x0D, // MVI A, 0DH
		0x30, // SIM
		0x3E, 0x02, // MVI A, 02H
		0x30, // SIM, ignored without bit 3
		0x20, // RIM
		0xF3, // DI
	)

	assert.NoError(cpu.Step())
	assert.True(cpu.Interrupts)
	assert.NoError(cpu.Step())
	assert.NoError(cpu.Step())
	assert.Equal(uint8(0x05), cpu.Mask)
	assert.NoError(cpu.Step())
	assert.NoError(cpu.Step())
	assert.Equal(uint8(0x05), cpu.Mask)
	assert.NoError(cpu.Step())
	assert.Equal(uint8(0x0D), cpu.A)
	assert.NoError(cpu.Step())
	assert.False(cpu.Interrupts)
}

func TestCpuUndefined(t *testing.T) {
	assert := assert.New(t)

	for _, code := range []uint8{0x08, 0x10, 0x18, 0x28, 0x38, 0xCB, 0xD9, 0xDD, 0xED, 0xFD} {
		cpu := newTestCpu(code)
		assert.NoError(cpu.Step())
		assert.Equal(uint16(1), cpu.PC)
		assert.Equal(4, cpu.Ticks)
		assert.False(cpu.Halted)
	}
}

func TestCpuRst(t *testing.T) {
	assert := assert.New(t)

	cpu := newTestCpu()
	cpu.PC = 0x1000
	cpu.Memory[0x1000] = 0xEF // RST 5
	assert.NoError(cpu.Step())
	assert.Equal(uint16(0x0028), cpu.PC)
	assert.Equal(uint16(0x1001), cpu.Peek())
	assert.Equal(12, cpu.Ticks)
}

func TestFlagString(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("", Flag(0).String())
	assert.Equal("S Z AC P CY", FLAG_MASK.String())
	assert.True(FLAG_MASK.Has(FLAG_Z | FLAG_CY))
	assert.False(FLAG_Z.Has(FLAG_Z | FLAG_CY))
}

func FuzzStep(f *testing.F) {
	f.Add(uint8(0x80), uint8(0x00), uint8(0x00), uint8(0x00))
	f.Add(uint8(0x27), uint8(0x9A), uint8(0x00), uint8(0x11))
	f.Add(uint8(0xF1), uint8(0xFF), uint8(0xFF), uint8(0xFF))

	f.Fuzz(func(t *testing.T, code, a, b, flags uint8) {
		assert := assert.New(t)

		cpu := newTestCpu(code, b, a)
		cpu.A = a
		cpu.B = b
		cpu.F = flags & uint8(FLAG_MASK)
		cpu.SP = 0x8000
		cpu.Memory[0x8000] = 0xFF
		cpu.Memory[0x8001] = 0xFF

		assert.NoError(cpu.Step())

		// Only the defined flag bits are ever held.
		assert.Equal(uint8(0), cpu.F&^uint8(FLAG_MASK))
		assert.Equal(uint16(0x02), cpu.PSW()&0x02)
		assert.Greater(cpu.Ticks, 0)

		op := Lookup(code)
		if op.Mnemonic == "ADD" || op.Mnemonic == "SUB" || op.Mnemonic == "ANA" ||
			op.Mnemonic == "XRA" || op.Mnemonic == "ORA" || op.Mnemonic == "INR" && op.Operands[0] == "A" {
			assert.Equal(cpu.A == 0, cpu.Flag(FLAG_Z))
			assert.Equal(cpu.A&0x80 != 0, cpu.Flag(FLAG_S))
			assert.Equal(bits.OnesCount8(cpu.A)%2 == 0, cpu.Flag(FLAG_P))
		}
	})
}
