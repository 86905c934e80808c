package cpu

import (
	"math/bits"
	"strings"
)

// Flag is a bit of the 8085 flag register.
type Flag uint8

const (
	FLAG_CY = Flag(0x01) // Carry
	FLAG_P  = Flag(0x04) // Parity, set when even
	FLAG_AC = Flag(0x10) // Auxiliary carry out of bit 3
	FLAG_Z  = Flag(0x40) // Zero
	FLAG_S  = Flag(0x80) // Sign

	FLAG_MASK = FLAG_S | FLAG_Z | FLAG_AC | FLAG_P | FLAG_CY // All defined flags.

	// Bit 1 of the flag register always reads as set.
	flagFixed = uint8(0x02)
)

var flagNames = []struct {
	Flag Flag
	Name string
}{
	{FLAG_S, "S"},
	{FLAG_Z, "Z"},
	{FLAG_AC, "AC"},
	{FLAG_P, "P"},
	{FLAG_CY, "CY"},
}

// String returns the names of the set flags, ie "Z P CY".
func (flag Flag) String() string {
	var names []string
	for _, fn := range flagNames {
		if flag&fn.Flag != 0 {
			names = append(names, fn.Name)
		}
	}
	return strings.Join(names, " ")
}

// Has returns true if all the bits of other are set.
func (flag Flag) Has(other Flag) bool {
	return flag&other == other
}

// Flag returns true if the flag is set.
func (cpu *Cpu) Flag(flag Flag) bool {
	return Flag(cpu.F)&flag != 0
}

// SetFlag sets or clears a flag.
func (cpu *Cpu) SetFlag(flag Flag, on bool) {
	if on {
		cpu.F |= uint8(flag)
	} else {
		cpu.F &^= uint8(flag)
	}
}

// carry returns the carry flag as a bit.
func (cpu *Cpu) carry() uint8 {
	return cpu.F & uint8(FLAG_CY)
}

// Parity returns true if value has an even number of set bits.
func Parity(value uint8) bool {
	return bits.OnesCount8(value)%2 == 0
}

// setSZP updates the sign, zero and parity flags from a result.
func (cpu *Cpu) setSZP(value uint8) {
	cpu.SetFlag(FLAG_S, value&0x80 != 0)
	cpu.SetFlag(FLAG_Z, value == 0)
	cpu.SetFlag(FLAG_P, Parity(value))
}

// add sets A to A + value + carry.
func (cpu *Cpu) add(value uint8, carry uint8) {
	sum := uint16(cpu.A) + uint16(value) + uint16(carry)
	ac := (cpu.A&0x0F)+(value&0x0F)+carry > 0x0F

	cpu.A = uint8(sum)
	cpu.setSZP(cpu.A)
	cpu.SetFlag(FLAG_CY, sum > 0xFF)
	cpu.SetFlag(FLAG_AC, ac)
}

// sub returns A - value - borrow, updating flags. CY is the borrow.
// AC is the carry out of bit 3 of A + ^value + !borrow.
func (cpu *Cpu) sub(value uint8, borrow uint8) (result uint8) {
	diff := int(cpu.A) - int(value) - int(borrow)
	ac := (cpu.A&0x0F)+(^value&0x0F)+(1-borrow) > 0x0F

	result = uint8(diff)
	cpu.setSZP(result)
	cpu.SetFlag(FLAG_CY, diff < 0)
	cpu.SetFlag(FLAG_AC, ac)
	return
}

// logic stores a logical result in A. CY and AC are cleared.
func (cpu *Cpu) logic(result uint8) {
	cpu.A = result
	cpu.setSZP(result)
	cpu.SetFlag(FLAG_CY, false)
	cpu.SetFlag(FLAG_AC, false)
}

// inr returns value + 1. CY is unaffected.
func (cpu *Cpu) inr(value uint8) (result uint8) {
	result = value + 1
	cpu.setSZP(result)
	cpu.SetFlag(FLAG_AC, value&0x0F == 0x0F)
	return
}

// dcr returns value - 1. CY is unaffected.
func (cpu *Cpu) dcr(value uint8) (result uint8) {
	result = value - 1
	cpu.setSZP(result)
	cpu.SetFlag(FLAG_AC, value&0x0F != 0)
	return
}

// alu runs one of the eight accumulator operations selected by the
// 3-bit field of the ALU opcodes: ADD ADC SUB SBB ANA XRA ORA CMP.
func (cpu *Cpu) alu(op uint8, value uint8) {
	switch op & 7 {
	case 0:
		cpu.add(value, 0)
	case 1:
		cpu.add(value, cpu.carry())
	case 2:
		cpu.A = cpu.sub(value, 0)
	case 3:
		cpu.A = cpu.sub(value, cpu.carry())
	case 4:
		cpu.logic(cpu.A & value)
	case 5:
		cpu.logic(cpu.A ^ value)
	case 6:
		cpu.logic(cpu.A | value)
	case 7:
		cpu.sub(value, 0)
	}
}

// daa applies the BCD correction to A.
func (cpu *Cpu) daa() {
	a := cpu.A
	cy := cpu.Flag(FLAG_CY)

	var correction uint8
	if a&0x0F > 9 || cpu.Flag(FLAG_AC) {
		correction |= 0x06
	}
	if a>>4 > 9 || cy || (a>>4 >= 9 && a&0x0F > 9) {
		correction |= 0x60
		cy = true
	}

	ac := (a&0x0F)+(correction&0x0F) > 0x0F

	cpu.A = a + correction
	cpu.setSZP(cpu.A)
	cpu.SetFlag(FLAG_CY, cy)
	cpu.SetFlag(FLAG_AC, ac)
}

// condition evaluates the 3-bit condition field NZ Z NC C PO PE P M.
func (cpu *Cpu) condition(ccc uint8) bool {
	var set bool
	switch (ccc >> 1) & 3 {
	case 0:
		set = cpu.Flag(FLAG_Z)
	case 1:
		set = cpu.Flag(FLAG_CY)
	case 2:
		set = cpu.Flag(FLAG_P)
	case 3:
		set = cpu.Flag(FLAG_S)
	}
	return set == (ccc&1 == 1)
}
