package cpu

// fetch8 reads the byte at PC and advances PC.
func (cpu *Cpu) fetch8() (value uint8) {
	value = cpu.Memory[cpu.PC]
	cpu.PC++
	return
}

// fetch16 reads the little-endian word at PC and advances PC.
func (cpu *Cpu) fetch16() (value uint16) {
	value = uint16(cpu.fetch8())
	value |= uint16(cpu.fetch8()) << 8
	return
}

// reg reads the register selected by a 3-bit field. 6 is M, the byte at HL.
func (cpu *Cpu) reg(index uint8) uint8 {
	switch index & 7 {
	case 0:
		return cpu.B
	case 1:
		return cpu.C
	case 2:
		return cpu.D
	case 3:
		return cpu.E
	case 4:
		return cpu.H
	case 5:
		return cpu.L
	case 6:
		return cpu.Memory[cpu.HL()]
	}
	return cpu.A
}

// setReg writes the register selected by a 3-bit field.
func (cpu *Cpu) setReg(index uint8, value uint8) {
	switch index & 7 {
	case 0:
		cpu.B = value
	case 1:
		cpu.C = value
	case 2:
		cpu.D = value
	case 3:
		cpu.E = value
	case 4:
		cpu.H = value
	case 5:
		cpu.L = value
	case 6:
		cpu.Memory[cpu.HL()] = value
	case 7:
		cpu.A = value
	}
}

// pair reads the register pair selected by a 2-bit field: BC DE HL SP.
func (cpu *Cpu) pair(index uint8) uint16 {
	switch index & 3 {
	case 0:
		return cpu.BC()
	case 1:
		return cpu.DE()
	case 2:
		return cpu.HL()
	}
	return cpu.SP
}

// setPair writes the register pair selected by a 2-bit field.
func (cpu *Cpu) setPair(index uint8, value uint16) {
	switch index & 3 {
	case 0:
		cpu.SetBC(value)
	case 1:
		cpu.SetDE(value)
	case 2:
		cpu.SetHL(value)
	case 3:
		cpu.SP = value
	}
}

// call pushes the return address and jumps to target.
func (cpu *Cpu) call(target uint16) {
	cpu.Push(cpu.PC)
	cpu.PC = target
}

// execute fetches and executes the instruction at PC.
// PC advances past the whole instruction before any branch updates it.
func (cpu *Cpu) execute() {
	code := cpu.fetch8()

	if !opcodeTable[code].Defined() {
		// Undefined opcodes behave as NOP.
		return
	}

	ddd := (code >> 3) & 7
	sss := code & 7
	rp := (code >> 4) & 3

	switch {
	case code == 0x76: // HLT
		cpu.Halted = true
	case code&0xC0 == 0x40: // MOV
		cpu.setReg(ddd, cpu.reg(sss))
	case code&0xC0 == 0x80: // ALU r
		cpu.alu(ddd, cpu.reg(sss))
	case code&0xC7 == 0xC6: // ALU immediate
		cpu.alu(ddd, cpu.fetch8())
	case code&0xCF == 0x01: // LXI
		cpu.setPair(rp, cpu.fetch16())
	case code&0xCF == 0x03: // INX
		cpu.setPair(rp, cpu.pair(rp)+1)
	case code&0xCF == 0x0B: // DCX
		cpu.setPair(rp, cpu.pair(rp)-1)
	case code&0xCF == 0x09: // DAD
		sum := uint32(cpu.HL()) + uint32(cpu.pair(rp))
		cpu.SetHL(uint16(sum))
		cpu.SetFlag(FLAG_CY, sum > 0xFFFF)
	case code&0xC7 == 0x04: // INR
		cpu.setReg(ddd, cpu.inr(cpu.reg(ddd)))
	case code&0xC7 == 0x05: // DCR
		cpu.setReg(ddd, cpu.dcr(cpu.reg(ddd)))
	case code&0xC7 == 0x06: // MVI
		cpu.setReg(ddd, cpu.fetch8())
	case code&0xCF == 0xC1: // POP
		value := cpu.Pop()
		if rp == 3 {
			cpu.SetPSW(value)
		} else {
			cpu.setPair(rp, value)
		}
	case code&0xCF == 0xC5: // PUSH
		if rp == 3 {
			cpu.Push(cpu.PSW())
		} else {
			cpu.Push(cpu.pair(rp))
		}
	case code&0xC7 == 0xC0: // Rcc
		if cpu.condition(ddd) {
			cpu.PC = cpu.Pop()
		}
	case code&0xC7 == 0xC2: // Jcc
		target := cpu.fetch16()
		if cpu.condition(ddd) {
			cpu.PC = target
		}
	case code&0xC7 == 0xC4: // Ccc
		target := cpu.fetch16()
		if cpu.condition(ddd) {
			cpu.call(target)
		}
	case code&0xC7 == 0xC7: // RST
		cpu.call(uint16(ddd) << 3)
	default:
		cpu.executeSingle(code)
	}
}

// executeSingle handles the opcodes that do not belong to a family.
func (cpu *Cpu) executeSingle(code uint8) {
	switch code {
	case 0x00: // NOP
	case 0x02: // STAX B
		cpu.Memory[cpu.BC()] = cpu.A
	case 0x12: // STAX D
		cpu.Memory[cpu.DE()] = cpu.A
	case 0x0A: // LDAX B
		cpu.A = cpu.Memory[cpu.BC()]
	case 0x1A: // LDAX D
		cpu.A = cpu.Memory[cpu.DE()]
	case 0x22: // SHLD
		cpu.Memory.Write16(cpu.fetch16(), cpu.HL())
	case 0x2A: // LHLD
		cpu.SetHL(cpu.Memory.Read16(cpu.fetch16()))
	case 0x32: // STA
		cpu.Memory[cpu.fetch16()] = cpu.A
	case 0x3A: // LDA
		cpu.A = cpu.Memory[cpu.fetch16()]
	case 0x07: // RLC
		cy := cpu.A >> 7
		cpu.A = cpu.A<<1 | cy
		cpu.SetFlag(FLAG_CY, cy != 0)
	case 0x0F: // RRC
		cy := cpu.A & 1
		cpu.A = cpu.A>>1 | cy<<7
		cpu.SetFlag(FLAG_CY, cy != 0)
	case 0x17: // RAL
		cy := cpu.A >> 7
		cpu.A = cpu.A<<1 | cpu.carry()
		cpu.SetFlag(FLAG_CY, cy != 0)
	case 0x1F: // RAR
		cy := cpu.A & 1
		cpu.A = cpu.A>>1 | cpu.carry()<<7
		cpu.SetFlag(FLAG_CY, cy != 0)
	case 0x20: // RIM
		cpu.A = cpu.Mask & 0x07
		if cpu.Interrupts {
			cpu.A |= 0x08
		}
	case 0x30: // SIM
		if cpu.A&0x08 != 0 {
			cpu.Mask = cpu.A & 0x07
		}
	case 0x27: // DAA
		cpu.daa()
	case 0x2F: // CMA
		cpu.A = ^cpu.A
	case 0x37: // STC
		cpu.SetFlag(FLAG_CY, true)
	case 0x3F: // CMC
		cpu.SetFlag(FLAG_CY, !cpu.Flag(FLAG_CY))
	case 0xC3: // JMP
		cpu.PC = cpu.fetch16()
	case 0xC9: // RET
		cpu.PC = cpu.Pop()
	case 0xCD: // CALL
		cpu.call(cpu.fetch16())
	case 0xD3: // OUT
		cpu.out(cpu.fetch8(), cpu.A)
	case 0xDB: // IN
		cpu.A = cpu.in(cpu.fetch8())
	case 0xE3: // XTHL
		value := cpu.Memory.Read16(cpu.SP)
		cpu.Memory.Write16(cpu.SP, cpu.HL())
		cpu.SetHL(value)
	case 0xE9: // PCHL
		cpu.PC = cpu.HL()
	case 0xEB: // XCHG
		cpu.D, cpu.E, cpu.H, cpu.L = cpu.H, cpu.L, cpu.D, cpu.E
	case 0xF3: // DI
		cpu.Interrupts = false
	case 0xFB: // EI
		cpu.Interrupts = true
	case 0xF9: // SPHL
		cpu.SP = cpu.HL()
	}
}
