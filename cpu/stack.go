package cpu

// Push a word onto the stack. The high byte is stored at SP-1, the
// low byte at SP-2.
func (cpu *Cpu) Push(value uint16) {
	cpu.SP--
	cpu.Memory[cpu.SP] = uint8(value >> 8)
	cpu.SP--
	cpu.Memory[cpu.SP] = uint8(value)
}

// Pop a word from the stack.
func (cpu *Cpu) Pop() (value uint16) {
	value = uint16(cpu.Memory[cpu.SP])
	cpu.SP++
	value |= uint16(cpu.Memory[cpu.SP]) << 8
	cpu.SP++
	return
}

// Peek returns the word on the top of the stack.
func (cpu *Cpu) Peek() uint16 {
	return cpu.Memory.Read16(cpu.SP)
}
