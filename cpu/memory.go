package cpu

const (
	MEMORY_SIZE = 0x10000 // Size of the 8085 address space.
)

// MemoryReader is a byte addressable source of instructions.
type MemoryReader interface {
	Read(addr uint16) uint8
}

// Memory is the flat 64KiB memory of the 8085.
type Memory [MEMORY_SIZE]uint8

var _ MemoryReader = (*Memory)(nil)

// Read a byte from memory.
func (mem *Memory) Read(addr uint16) uint8 {
	return mem[addr]
}

// Write a byte to memory.
func (mem *Memory) Write(addr uint16, value uint8) {
	mem[addr] = value
}

// Read16 reads a little-endian word. The high byte address wraps.
func (mem *Memory) Read16(addr uint16) uint16 {
	return uint16(mem[addr]) | uint16(mem[addr+1])<<8
}

// Write16 writes a little-endian word. The high byte address wraps.
func (mem *Memory) Write16(addr uint16, value uint16) {
	mem[addr] = uint8(value)
	mem[addr+1] = uint8(value >> 8)
}

// Store copies data into memory starting at addr, wrapping at 0xFFFF.
func (mem *Memory) Store(addr uint16, data []uint8) {
	for n, value := range data {
		mem[addr+uint16(n)] = value
	}
}

// Load copies memory starting at addr into data, wrapping at 0xFFFF.
func (mem *Memory) Load(addr uint16, data []uint8) {
	for n := range data {
		data[n] = mem[addr+uint16(n)]
	}
}

// read16 reads a little-endian word from any memory reader.
func read16(mem MemoryReader, addr uint16) uint16 {
	return uint16(mem.Read(addr)) | uint16(mem.Read(addr+1))<<8
}
