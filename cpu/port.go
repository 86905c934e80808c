package cpu

// Port is the I/O space of the CPU, reached by the IN and OUT instructions.
type Port interface {
	In(port uint8) uint8
	Out(port uint8, value uint8)
}

// in reads a port. Without ports attached, the bus floats high.
func (cpu *Cpu) in(port uint8) uint8 {
	if cpu.Ports == nil {
		return 0xFF
	}
	return cpu.Ports.In(port)
}

func (cpu *Cpu) out(port uint8, value uint8) {
	if cpu.Ports == nil {
		return
	}
	cpu.Ports.Out(port, value)
}
