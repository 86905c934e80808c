// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"strings"
)

// Form is the encoding of the bytes that trail an opcode.
type Form int

const (
	FORM_NONE   = Form(0) // No trailing bytes.
	FORM_DATA8  = Form(1) // One byte of immediate data or port.
	FORM_DATA16 = Form(2) // Two bytes, low byte first.
)

// String returns the operand placeholder for the form.
func (form Form) String() string {
	switch form {
	case FORM_DATA8:
		return "d8"
	case FORM_DATA16:
		return "d16"
	}
	return ""
}

// Size returns the number of trailing bytes of the form.
func (form Form) Size() int {
	return int(form)
}

// Opcode describes a single 8085 opcode byte.
type Opcode struct {
	Mnemonic string   // Instruction mnemonic, empty when undefined.
	Operands []string // Fixed register, pair or vector operands.
	Form     Form     // Trailing immediate bytes.
	Cycles   int      // T-states, taken cost for conditionals.
	NotTaken int      // T-states of a conditional that falls through.
}

// Defined returns true if the opcode is part of the 8085 instruction set.
func (op Opcode) Defined() bool {
	return len(op.Mnemonic) != 0
}

// Length returns the encoded length of the instruction in bytes.
func (op Opcode) Length() int {
	return 1 + op.Form.Size()
}

// Conditional returns true if the cost depends on a branch outcome.
func (op Opcode) Conditional() bool {
	return op.NotTaken != 0
}

// Cost returns the T-states of the instruction for a branch outcome.
func (op Opcode) Cost(taken bool) int {
	if op.Conditional() && !taken {
		return op.NotTaken
	}
	return op.Cycles
}

// Arity returns the number of source operands the instruction takes.
func (op Opcode) Arity() (arity int) {
	arity = len(op.Operands)
	if op.Form != FORM_NONE {
		arity++
	}
	return
}

// Key returns the assembler lookup key for the opcode, ie "MOV B,C" or "MVI A,d8".
func (op Opcode) Key() string {
	parts := append([]string{}, op.Operands...)
	if op.Form != FORM_NONE {
		parts = append(parts, op.Form.String())
	}
	if len(parts) == 0 {
		return op.Mnemonic
	}
	return op.Mnemonic + " " + strings.Join(parts, ",")
}

// Register names indexed by the 3-bit register field.
var Registers = [8]string{"B", "C", "D", "E", "H", "L", "M", "A"}

// Register pair names indexed by the 2-bit pair field.
var RegisterPairs = [4]string{"B", "D", "H", "SP"}

// Register pair names used by PUSH and POP.
var StackPairs = [4]string{"B", "D", "H", "PSW"}

// Condition names indexed by the 3-bit condition field.
var Conditions = [8]string{"NZ", "Z", "NC", "C", "PO", "PE", "P", "M"}

// Lookup returns the table entry for an opcode byte.
func Lookup(code uint8) Opcode {
	return opcodeTable[code]
}

// opcodeTable is the full 8085 opcode matrix.
var opcodeTable = [256]Opcode{
	0x00: {"NOP", nil, FORM_NONE, 4, 0},
	0x01: {"LXI", []string{"B"}, FORM_DATA16, 10, 0},
	0x02: {"STAX", []string{"B"}, FORM_NONE, 7, 0},
	0x03: {"INX", []string{"B"}, FORM_NONE, 6, 0},
	0x04: {"INR", []string{"B"}, FORM_NONE, 4, 0},
	0x05: {"DCR", []string{"B"}, FORM_NONE, 4, 0},
	0x06: {"MVI", []string{"B"}, FORM_DATA8, 7, 0},
	0x07: {"RLC", nil, FORM_NONE, 4, 0},
	0x08: {"", nil, FORM_NONE, 4, 0},
	0x09: {"DAD", []string{"B"}, FORM_NONE, 10, 0},
	0x0A: {"LDAX", []string{"B"}, FORM_NONE, 7, 0},
	0x0B: {"DCX", []string{"B"}, FORM_NONE, 6, 0},
	0x0C: {"INR", []string{"C"}, FORM_NONE, 4, 0},
	0x0D: {"DCR", []string{"C"}, FORM_NONE, 4, 0},
	0x0E: {"MVI", []string{"C"}, FORM_DATA8, 7, 0},
	0x0F: {"RRC", nil, FORM_NONE, 4, 0},
	0x10: {"", nil, FORM_NONE, 4, 0},
	0x11: {"LXI", []string{"D"}, FORM_DATA16, 10, 0},
	0x12: {"STAX", []string{"D"}, FORM_NONE, 7, 0},
	0x13: {"INX", []string{"D"}, FORM_NONE, 6, 0},
	0x14: {"INR", []string{"D"}, FORM_NONE, 4, 0},
	0x15: {"DCR", []string{"D"}, FORM_NONE, 4, 0},
	0x16: {"MVI", []string{"D"}, FORM_DATA8, 7, 0},
	0x17: {"RAL", nil, FORM_NONE, 4, 0},
	0x18: {"", nil, FORM_NONE, 4, 0},
	0x19: {"DAD", []string{"D"}, FORM_NONE, 10, 0},
	0x1A: {"LDAX", []string{"D"}, FORM_NONE, 7, 0},
	0x1B: {"DCX", []string{"D"}, FORM_NONE, 6, 0},
	0x1C: {"INR", []string{"E"}, FORM_NONE, 4, 0},
	0x1D: {"DCR", []string{"E"}, FORM_NONE, 4, 0},
	0x1E: {"MVI", []string{"E"}, FORM_DATA8, 7, 0},
	0x1F: {"RAR", nil, FORM_NONE, 4, 0},
	0x20: {"RIM", nil, FORM_NONE, 4, 0},
	0x21: {"LXI", []string{"H"}, FORM_DATA16, 10, 0},
	0x22: {"SHLD", nil, FORM_DATA16, 16, 0},
	0x23: {"INX", []string{"H"}, FORM_NONE, 6, 0},
	0x24: {"INR", []string{"H"}, FORM_NONE, 4, 0},
	0x25: {"DCR", []string{"H"}, FORM_NONE, 4, 0},
	0x26: {"MVI", []string{"H"}, FORM_DATA8, 7, 0},
	0x27: {"DAA", nil, FORM_NONE, 4, 0},
	0x28: {"", nil, FORM_NONE, 4, 0},
	0x29: {"DAD", []string{"H"}, FORM_NONE, 10, 0},
	0x2A: {"LHLD", nil, FORM_DATA16, 16, 0},
	0x2B: {"DCX", []string{"H"}, FORM_NONE, 6, 0},
	0x2C: {"INR", []string{"L"}, FORM_NONE, 4, 0},
	0x2D: {"DCR", []string{"L"}, FORM_NONE, 4, 0},
	0x2E: {"MVI", []string{"L"}, FORM_DATA8, 7, 0},
	0x2F: {"CMA", nil, FORM_NONE, 4, 0},
	0x30: {"SIM", nil, FORM_NONE, 4, 0},
	0x31: {"LXI", []string{"SP"}, FORM_DATA16, 10, 0},
	0x32: {"STA", nil, FORM_DATA16, 13, 0},
	0x33: {"INX", []string{"SP"}, FORM_NONE, 6, 0},
	0x34: {"INR", []string{"M"}, FORM_NONE, 10, 0},
	0x35: {"DCR", []string{"M"}, FORM_NONE, 10, 0},
	0x36: {"MVI", []string{"M"}, FORM_DATA8, 10, 0},
	0x37: {"STC", nil, FORM_NONE, 4, 0},
	0x38: {"", nil, FORM_NONE, 4, 0},
	0x39: {"DAD", []string{"SP"}, FORM_NONE, 10, 0},
	0x3A: {"LDA", nil, FORM_DATA16, 13, 0},
	0x3B: {"DCX", []string{"SP"}, FORM_NONE, 6, 0},
	0x3C: {"INR", []string{"A"}, FORM_NONE, 4, 0},
	0x3D: {"DCR", []string{"A"}, FORM_NONE, 4, 0},
	0x3E: {"MVI", []string{"A"}, FORM_DATA8, 7, 0},
	0x3F: {"CMC", nil, FORM_NONE, 4, 0},
	0x40: {"MOV", []string{"B", "B"}, FORM_NONE, 4, 0},
	0x41: {"MOV", []string{"B", "C"}, FORM_NONE, 4, 0},
	0x42: {"MOV", []string{"B", "D"}, FORM_NONE, 4, 0},
	0x43: {"MOV", []string{"B", "E"}, FORM_NONE, 4, 0},
	0x44: {"MOV", []string{"B", "H"}, FORM_NONE, 4, 0},
	0x45: {"MOV", []string{"B", "L"}, FORM_NONE, 4, 0},
	0x46: {"MOV", []string{"B", "M"}, FORM_NONE, 7, 0},
	0x47: {"MOV", []string{"B", "A"}, FORM_NONE, 4, 0},
	0x48: {"MOV", []string{"C", "B"}, FORM_NONE, 4, 0},
	0x49: {"MOV", []string{"C", "C"}, FORM_NONE, 4, 0},
	0x4A: {"MOV", []string{"C", "D"}, FORM_NONE, 4, 0},
	0x4B: {"MOV", []string{"C", "E"}, FORM_NONE, 4, 0},
	0x4C: {"MOV", []string{"C", "H"}, FORM_NONE, 4, 0},
	0x4D: {"MOV", []string{"C", "L"}, FORM_NONE, 4, 0},
	0x4E: {"MOV", []string{"C", "M"}, FORM_NONE, 7, 0},
	0x4F: {"MOV", []string{"C", "A"}, FORM_NONE, 4, 0},
	0x50: {"MOV", []string{"D", "B"}, FORM_NONE, 4, 0},
	0x51: {"MOV", []string{"D", "C"}, FORM_NONE, 4, 0},
	0x52: {"MOV", []string{"D", "D"}, FORM_NONE, 4, 0},
	0x53: {"MOV", []string{"D", "E"}, FORM_NONE, 4, 0},
	0x54: {"MOV", []string{"D", "H"}, FORM_NONE, 4, 0},
	0x55: {"MOV", []string{"D", "L"}, FORM_NONE, 4, 0},
	0x56: {"MOV", []string{"D", "M"}, FORM_NONE, 7, 0},
	0x57: {"MOV", []string{"D", "A"}, FORM_NONE, 4, 0},
	0x58: {"MOV", []string{"E", "B"}, FORM_NONE, 4, 0},
	0x59: {"MOV", []string{"E", "C"}, FORM_NONE, 4, 0},
	0x5A: {"MOV", []string{"E", "D"}, FORM_NONE, 4, 0},
	0x5B: {"MOV", []string{"E", "E"}, FORM_NONE, 4, 0},
	0x5C: {"MOV", []string{"E", "H"}, FORM_NONE, 4, 0},
	0x5D: {"MOV", []string{"E", "L"}, FORM_NONE, 4, 0},
	0x5E: {"MOV", []string{"E", "M"}, FORM_NONE, 7, 0},
	0x5F: {"MOV", []string{"E", "A"}, FORM_NONE, 4, 0},
	0x60: {"MOV", []string{"H", "B"}, FORM_NONE, 4, 0},
	0x61: {"MOV", []string{"H", "C"}, FORM_NONE, 4, 0},
	0x62: {"MOV", []string{"H", "D"}, FORM_NONE, 4, 0},
	0x63: {"MOV", []string{"H", "E"}, FORM_NONE, 4, 0},
	0x64: {"MOV", []string{"H", "H"}, FORM_NONE, 4, 0},
	0x65: {"MOV", []string{"H", "L"}, FORM_NONE, 4, 0},
	0x66: {"MOV", []string{"H", "M"}, FORM_NONE, 7, 0},
	0x67: {"MOV", []string{"H", "A"}, FORM_NONE, 4, 0},
	0x68: {"MOV", []string{"L", "B"}, FORM_NONE, 4, 0},
	0x69: {"MOV", []string{"L", "C"}, FORM_NONE, 4, 0},
	0x6A: {"MOV", []string{"L", "D"}, FORM_NONE, 4, 0},
	0x6B: {"MOV", []string{"L", "E"}, FORM_NONE, 4, 0},
	0x6C: {"MOV", []string{"L", "H"}, FORM_NONE, 4, 0},
	0x6D: {"MOV", []string{"L", "L"}, FORM_NONE, 4, 0},
	0x6E: {"MOV", []string{"L", "M"}, FORM_NONE, 7, 0},
	0x6F: {"MOV", []string{"L", "A"}, FORM_NONE, 4, 0},
	0x70: {"MOV", []string{"M", "B"}, FORM_NONE, 7, 0},
	0x71: {"MOV", []string{"M", "C"}, FORM_NONE, 7, 0},
	0x72: {"MOV", []string{"M", "D"}, FORM_NONE, 7, 0},
	0x73: {"MOV", []string{"M", "E"}, FORM_NONE, 7, 0},
	0x74: {"MOV", []string{"M", "H"}, FORM_NONE, 7, 0},
	0x75: {"MOV", []string{"M", "L"}, FORM_NONE, 7, 0},
	0x76: {"HLT", nil, FORM_NONE, 5, 0},
	0x77: {"MOV", []string{"M", "A"}, FORM_NONE, 7, 0},
	0x78: {"MOV", []string{"A", "B"}, FORM_NONE, 4, 0},
	0x79: {"MOV", []string{"A", "C"}, FORM_NONE, 4, 0},
	0x7A: {"MOV", []string{"A", "D"}, FORM_NONE, 4, 0},
	0x7B: {"MOV", []string{"A", "E"}, FORM_NONE, 4, 0},
	0x7C: {"MOV", []string{"A", "H"}, FORM_NONE, 4, 0},
	0x7D: {"MOV", []string{"A", "L"}, FORM_NONE, 4, 0},
	0x7E: {"MOV", []string{"A", "M"}, FORM_NONE, 7, 0},
	0x7F: {"MOV", []string{"A", "A"}, FORM_NONE, 4, 0},
	0x80: {"ADD", []string{"B"}, FORM_NONE, 4, 0},
	0x81: {"ADD", []string{"C"}, FORM_NONE, 4, 0},
	0x82: {"ADD", []string{"D"}, FORM_NONE, 4, 0},
	0x83: {"ADD", []string{"E"}, FORM_NONE, 4, 0},
	0x84: {"ADD", []string{"H"}, FORM_NONE, 4, 0},
	0x85: {"ADD", []string{"L"}, FORM_NONE, 4, 0},
	0x86: {"ADD", []string{"M"}, FORM_NONE, 7, 0},
	0x87: {"ADD", []string{"A"}, FORM_NONE, 4, 0},
	0x88: {"ADC", []string{"B"}, FORM_NONE, 4, 0},
	0x89: {"ADC", []string{"C"}, FORM_NONE, 4, 0},
	0x8A: {"ADC", []string{"D"}, FORM_NONE, 4, 0},
	0x8B: {"ADC", []string{"E"}, FORM_NONE, 4, 0},
	0x8C: {"ADC", []string{"H"}, FORM_NONE, 4, 0},
	0x8D: {"ADC", []string{"L"}, FORM_NONE, 4, 0},
	0x8E: {"ADC", []string{"M"}, FORM_NONE, 7, 0},
	0x8F: {"ADC", []string{"A"}, FORM_NONE, 4, 0},
	0x90: {"SUB", []string{"B"}, FORM_NONE, 4, 0},
	0x91: {"SUB", []string{"C"}, FORM_NONE, 4, 0},
	0x92: {"SUB", []string{"D"}, FORM_NONE, 4, 0},
	0x93: {"SUB", []string{"E"}, FORM_NONE, 4, 0},
	0x94: {"SUB", []string{"H"}, FORM_NONE, 4, 0},
	0x95: {"SUB", []string{"L"}, FORM_NONE, 4, 0},
	0x96: {"SUB", []string{"M"}, FORM_NONE, 7, 0},
	0x97: {"SUB", []string{"A"}, FORM_NONE, 4, 0},
	0x98: {"SBB", []string{"B"}, FORM_NONE, 4, 0},
	0x99: {"SBB", []string{"C"}, FORM_NONE, 4, 0},
	0x9A: {"SBB", []string{"D"}, FORM_NONE, 4, 0},
	0x9B: {"SBB", []string{"E"}, FORM_NONE, 4, 0},
	0x9C: {"SBB", []string{"H"}, FORM_NONE, 4, 0},
	0x9D: {"SBB", []string{"L"}, FORM_NONE, 4, 0},
	0x9E: {"SBB", []string{"M"}, FORM_NONE, 7, 0},
	0x9F: {"SBB", []string{"A"}, FORM_NONE, 4, 0},
	0xA0: {"ANA", []string{"B"}, FORM_NONE, 4, 0},
	0xA1: {"ANA", []string{"C"}, FORM_NONE, 4, 0},
	0xA2: {"ANA", []string{"D"}, FORM_NONE, 4, 0},
	0xA3: {"ANA", []string{"E"}, FORM_NONE, 4, 0},
	0xA4: {"ANA", []string{"H"}, FORM_NONE, 4, 0},
	0xA5: {"ANA", []string{"L"}, FORM_NONE, 4, 0},
	0xA6: {"ANA", []string{"M"}, FORM_NONE, 7, 0},
	0xA7: {"ANA", []string{"A"}, FORM_NONE, 4, 0},
	0xA8: {"XRA", []string{"B"}, FORM_NONE, 4, 0},
	0xA9: {"XRA", []string{"C"}, FORM_NONE, 4, 0},
	0xAA: {"XRA", []string{"D"}, FORM_NONE, 4, 0},
	0xAB: {"XRA", []string{"E"}, FORM_NONE, 4, 0},
	0xAC: {"XRA", []string{"H"}, FORM_NONE, 4, 0},
	0xAD: {"XRA", []string{"L"}, FORM_NONE, 4, 0},
	0xAE: {"XRA", []string{"M"}, FORM_NONE, 7, 0},
	0xAF: {"XRA", []string{"A"}, FORM_NONE, 4, 0},
	0xB0: {"ORA", []string{"B"}, FORM_NONE, 4, 0},
	0xB1: {"ORA", []string{"C"}, FORM_NONE, 4, 0},
	0xB2: {"ORA", []string{"D"}, FORM_NONE, 4, 0},
	0xB3: {"ORA", []string{"E"}, FORM_NONE, 4, 0},
	0xB4: {"ORA", []string{"H"}, FORM_NONE, 4, 0},
	0xB5: {"ORA", []string{"L"}, FORM_NONE, 4, 0},
	0xB6: {"ORA", []string{"M"}, FORM_NONE, 7, 0},
	0xB7: {"ORA", []string{"A"}, FORM_NONE, 4, 0},
	0xB8: {"CMP", []string{"B"}, FORM_NONE, 4, 0},
	0xB9: {"CMP", []string{"C"}, FORM_NONE, 4, 0},
	0xBA: {"CMP", []string{"D"}, FORM_NONE, 4, 0},
	0xBB: {"CMP", []string{"E"}, FORM_NONE, 4, 0},
	0xBC: {"CMP", []string{"H"}, FORM_NONE, 4, 0},
	0xBD: {"CMP", []string{"L"}, FORM_NONE, 4, 0},
	0xBE: {"CMP", []string{"M"}, FORM_NONE, 7, 0},
	0xBF: {"CMP", []string{"A"}, FORM_NONE, 4, 0},
	0xC0: {"RNZ", nil, FORM_NONE, 12, 6},
	0xC1: {"POP", []string{"B"}, FORM_NONE, 10, 0},
	0xC2: {"JNZ", nil, FORM_DATA16, 10, 7},
	0xC3: {"JMP", nil, FORM_DATA16, 10, 0},
	0xC4: {"CNZ", nil, FORM_DATA16, 18, 9},
	0xC5: {"PUSH", []string{"B"}, FORM_NONE, 12, 0},
	0xC6: {"ADI", nil, FORM_DATA8, 7, 0},
	0xC7: {"RST", []string{"0"}, FORM_NONE, 12, 0},
	0xC8: {"RZ", nil, FORM_NONE, 12, 6},
	0xC9: {"RET", nil, FORM_NONE, 10, 0},
	0xCA: {"JZ", nil, FORM_DATA16, 10, 7},
	0xCB: {"", nil, FORM_NONE, 4, 0},
	0xCC: {"CZ", nil, FORM_DATA16, 18, 9},
	0xCD: {"CALL", nil, FORM_DATA16, 18, 0},
	0xCE: {"ACI", nil, FORM_DATA8, 7, 0},
	0xCF: {"RST", []string{"1"}, FORM_NONE, 12, 0},
	0xD0: {"RNC", nil, FORM_NONE, 12, 6},
	0xD1: {"POP", []string{"D"}, FORM_NONE, 10, 0},
	0xD2: {"JNC", nil, FORM_DATA16, 10, 7},
	0xD3: {"OUT", nil, FORM_DATA8, 10, 0},
	0xD4: {"CNC", nil, FORM_DATA16, 18, 9},
	0xD5: {"PUSH", []string{"D"}, FORM_NONE, 12, 0},
	0xD6: {"SUI", nil, FORM_DATA8, 7, 0},
	0xD7: {"RST", []string{"2"}, FORM_NONE, 12, 0},
	0xD8: {"RC", nil, FORM_NONE, 12, 6},
	0xD9: {"", nil, FORM_NONE, 4, 0},
	0xDA: {"JC", nil, FORM_DATA16, 10, 7},
	0xDB: {"IN", nil, FORM_DATA8, 10, 0},
	0xDC: {"CC", nil, FORM_DATA16, 18, 9},
	0xDD: {"", nil, FORM_NONE, 4, 0},
	0xDE: {"SBI", nil, FORM_DATA8, 7, 0},
	0xDF: {"RST", []string{"3"}, FORM_NONE, 12, 0},
	0xE0: {"RPO", nil, FORM_NONE, 12, 6},
	0xE1: {"POP", []string{"H"}, FORM_NONE, 10, 0},
	0xE2: {"JPO", nil, FORM_DATA16, 10, 7},
	0xE3: {"XTHL", nil, FORM_NONE, 16, 0},
	0xE4: {"CPO", nil, FORM_DATA16, 18, 9},
	0xE5: {"PUSH", []string{"H"}, FORM_NONE, 12, 0},
	0xE6: {"ANI", nil, FORM_DATA8, 7, 0},
	0xE7: {"RST", []string{"4"}, FORM_NONE, 12, 0},
	0xE8: {"RPE", nil, FORM_NONE, 12, 6},
	0xE9: {"PCHL", nil, FORM_NONE, 6, 0},
	0xEA: {"JPE", nil, FORM_DATA16, 10, 7},
	0xEB: {"XCHG", nil, FORM_NONE, 4, 0},
	0xEC: {"CPE", nil, FORM_DATA16, 18, 9},
	0xED: {"", nil, FORM_NONE, 4, 0},
	0xEE: {"XRI", nil, FORM_DATA8, 7, 0},
	0xEF: {"RST", []string{"5"}, FORM_NONE, 12, 0},
	0xF0: {"RP", nil, FORM_NONE, 12, 6},
	0xF1: {"POP", []string{"PSW"}, FORM_NONE, 10, 0},
	0xF2: {"JP", nil, FORM_DATA16, 10, 7},
	0xF3: {"DI", nil, FORM_NONE, 4, 0},
	0xF4: {"CP", nil, FORM_DATA16, 18, 9},
	0xF5: {"PUSH", []string{"PSW"}, FORM_NONE, 12, 0},
	0xF6: {"ORI", nil, FORM_DATA8, 7, 0},
	0xF7: {"RST", []string{"6"}, FORM_NONE, 12, 0},
	0xF8: {"RM", nil, FORM_NONE, 12, 6},
	0xF9: {"SPHL", nil, FORM_NONE, 6, 0},
	0xFA: {"JM", nil, FORM_DATA16, 10, 7},
	0xFB: {"EI", nil, FORM_NONE, 4, 0},
	0xFC: {"CM", nil, FORM_DATA16, 18, 9},
	0xFD: {"", nil, FORM_NONE, 4, 0},
	0xFE: {"CPI", nil, FORM_DATA8, 7, 0},
	0xFF: {"RST", []string{"7"}, FORM_NONE, 12, 0},
}
