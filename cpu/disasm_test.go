package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecode(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		bytes []uint8
		text  string
		size  int
	}){
		{[]uint8{0x41}, "MOV B, C", 1},
		{[]uint8{0x3E, 0x05}, "MVI A, 05H", 2},
		{[]uint8{0x21, 0x34, 0x12}, "LXI H, 1234H", 3},
		{[]uint8{0xC3, 0x00, 0x80}, "JMP 8000H", 3},
		{[]uint8{0xCF}, "RST 1", 1},
		{[]uint8{0xDB, 0x01}, "IN 01H", 2},
		{[]uint8{0xF5}, "PUSH PSW", 1},
		{[]uint8{0x76}, "HLT", 1},
		{[]uint8{0x08}, "DB 08H", 1},
		{[]uint8{0xFD}, "DB FDH", 1},
		{[]uint8{0x31, 0xFF, 0xFF}, "LXI SP, FFFFH", 3},
	}

	for _, entry := range table {
		var mem Memory
		mem.Store(0x100, entry.bytes)

		text, size := Decode(&mem, 0x100)
		assert.Equal(entry.text, text)
		assert.Equal(entry.size, size)
	}
}

func TestDecodeWrap(t *testing.T) {
	assert := assert.New(t)

	var mem Memory
	mem.Store(0xFFFF, []uint8{0xC3, 0x34, 0x12})
	assert.Equal(uint8(0x34), mem[0x0000])

	text, size := Decode(&mem, 0xFFFF)
	assert.Equal("JMP 1234H", text)
	assert.Equal(3, size)

	ln := DecodeLine(&mem, 0xFFFF)
	assert.True(ln.Branch)
	assert.Equal(uint16(0x1234), ln.Target)
	assert.Equal([]uint8{0xC3, 0x34, 0x12}, ln.Bytes)

	data := make([]uint8, 3)
	mem.Load(0xFFFF, data)
	assert.Equal([]uint8{0xC3, 0x34, 0x12}, data)
}

func TestCycles(t *testing.T) {
	assert := assert.New(t)

	var mem Memory
	mem.Store(0, []uint8{0xC2, 0x00, 0x00, 0x3E, 0x00})

	taken := true
	notTaken := false

	assert.Equal(10, Cycles(&mem, 0, nil))
	assert.Equal(10, Cycles(&mem, 0, &taken))
	assert.Equal(7, Cycles(&mem, 0, &notTaken))
	assert.Equal(7, Cycles(&mem, 3, &notTaken))
}

func TestDisassemble(t *testing.T) {
	assert := assert.New(t)

	var mem Memory
	mem.Store(0x8000, []uint8{
		0x3E, 0x05, // MVI A, 05H
		0xCA, 0x00, 0x80, // JZ 8000H
		0xCD, 0x10, 0x80, // CALL 8010H
		0xD9, // DB D9H
		0x76, // HLT
	})

	var lines []Line
	for addr, line := range Disassemble(&mem, 0x8000, 0x800A) {
		assert.Equal(addr, line.Addr)
		lines = append(lines, line)
	}

	assert.Equal(5, len(lines))
	assert.Equal("MVI A, 05H", lines[0].Text)
	assert.False(lines[0].Branch)
	assert.Equal([]uint8{0x3E, 0x05}, lines[0].Bytes)

	assert.True(lines[1].Branch)
	assert.Equal(uint16(0x8000), lines[1].Target)

	assert.True(lines[2].Branch)
	assert.Equal(uint16(0x8010), lines[2].Target)
	assert.Equal("8005  CD 10 80  CALL 8010H", lines[2].String())

	assert.Equal("DB D9H", lines[3].Text)
	assert.Equal(uint16(0x8009), lines[4].Addr)

	// Early termination
	count := 0
	for range Disassemble(&mem, 0x8000, 0x800A) {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(2, count)

	// Top of memory
	mem.Store(0xFFFE, []uint8{0x00, 0x76})
	var top []string
	for _, line := range Disassemble(&mem, 0xFFFE, MEMORY_SIZE) {
		top = append(top, line.Text)
	}
	assert.Equal([]string{"NOP", "HLT"}, top)
}

func TestDescribe(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("Copy register to register", Describe("MOV"))
	assert.Equal("Copy register to register", Describe("mov b, c"))
	assert.Equal("Halt execution", Describe("HLT"))
	assert.Equal("", Describe("DB 08H"))
	assert.Equal("", Describe(""))
}

func FuzzDecode(f *testing.F) {
	f.Add(uint8(0x00), uint8(0x00), uint8(0x00))
	f.Add(uint8(0xC3), uint8(0x34), uint8(0x12))
	f.Add(uint8(0xCB), uint8(0xFF), uint8(0xFF))

	f.Fuzz(func(t *testing.T, code, low, high uint8) {
		assert := assert.New(t)

		var mem Memory
		mem.Store(0xFFFE, []uint8{code, low, high})

		text, size := Decode(&mem, 0xFFFE)
		assert.NotEmpty(text)
		assert.Equal(Lookup(code).Length(), size)
		assert.Greater(Cycles(&mem, 0xFFFE, nil), 0)
	})
}
