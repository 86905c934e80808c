package cpu

import (
	"fmt"
	"iter"
	"strings"
)

// Line is a single disassembled instruction.
type Line struct {
	Addr   uint16  // Address of the opcode.
	Bytes  []uint8 // Encoded instruction.
	Text   string  // Mnemonic and operands.
	Size   int     // Length in bytes.
	Branch bool    // Set for jumps and calls with a static target.
	Target uint16  // Static branch target.
}

// String returns the listing form of the line.
func (ln Line) String() string {
	hex := make([]string, len(ln.Bytes))
	for n, b := range ln.Bytes {
		hex[n] = fmt.Sprintf("%02X", b)
	}
	return fmt.Sprintf("%04X  %-8s  %v", ln.Addr, strings.Join(hex, " "), ln.Text)
}

// Decode decodes the instruction at addr into its text and length.
// Undefined opcodes decode as a single DB byte, so Decode always advances.
func Decode(mem MemoryReader, addr uint16) (text string, size int) {
	code := mem.Read(addr)
	op := opcodeTable[code]

	if !op.Defined() {
		return fmt.Sprintf("DB %02XH", code), 1
	}

	parts := append([]string{}, op.Operands...)
	switch op.Form {
	case FORM_DATA8:
		parts = append(parts, fmt.Sprintf("%02XH", mem.Read(addr+1)))
	case FORM_DATA16:
		// High byte follows the low byte.
		parts = append(parts, fmt.Sprintf("%02X%02XH", mem.Read(addr+2), mem.Read(addr+1)))
	}

	text = op.Mnemonic
	if len(parts) > 0 {
		text += " " + strings.Join(parts, ", ")
	}

	return text, op.Length()
}

// Cycles returns the T-states of the instruction at addr.
// For conditional instructions, taken selects the branch outcome; a nil
// taken returns the taken cost.
func Cycles(mem MemoryReader, addr uint16, taken *bool) int {
	op := opcodeTable[mem.Read(addr)]

	return op.Cost(taken == nil || *taken)
}

// Disassemble returns an iterator over the instructions in [start, end).
// An end of MEMORY_SIZE runs to the top of memory.
func Disassemble(mem MemoryReader, start uint16, end int) iter.Seq2[uint16, Line] {
	return func(yield func(uint16, Line) bool) {
		for addr := int(start); addr < end; {
			ln := DecodeLine(mem, uint16(addr))
			if !yield(ln.Addr, ln) {
				return
			}
			addr += ln.Size
		}
	}
}

// DecodeLine decodes the instruction at addr into a listing line.
func DecodeLine(mem MemoryReader, addr uint16) (ln Line) {
	text, size := Decode(mem, addr)

	ln = Line{
		Addr:  addr,
		Bytes: make([]uint8, size),
		Text:  text,
		Size:  size,
	}
	for n := range size {
		ln.Bytes[n] = mem.Read(addr + uint16(n))
	}

	op := opcodeTable[ln.Bytes[0]]
	switch {
	case op.Form != FORM_DATA16:
	case op.Mnemonic == "JMP", op.Mnemonic == "CALL",
		len(op.Mnemonic) > 1 && (op.Mnemonic[0] == 'J' || op.Mnemonic[0] == 'C') && op.Conditional():
		ln.Branch = true
		ln.Target = read16(mem, addr+1)
	}

	return
}

// descriptions maps mnemonics to a brief summary.
var descriptions = map[string]string{
	// Data transfer
	"MOV":  "Copy register to register",
	"MVI":  "Load immediate value",
	"LXI":  "Load register pair immediate",
	"LDA":  "Load accumulator direct",
	"STA":  "Store accumulator direct",
	"LHLD": "Load H and L direct",
	"SHLD": "Store H and L direct",
	"LDAX": "Load accumulator indirect",
	"STAX": "Store accumulator indirect",
	"XCHG": "Exchange DE and HL",

	// Arithmetic
	"ADD": "Add to accumulator",
	"ADI": "Add immediate to accumulator",
	"ADC": "Add with carry",
	"ACI": "Add immediate with carry",
	"SUB": "Subtract from accumulator",
	"SUI": "Subtract immediate",
	"SBB": "Subtract with borrow",
	"SBI": "Subtract immediate with borrow",
	"INR": "Increment register",
	"DCR": "Decrement register",
	"INX": "Increment register pair",
	"DCX": "Decrement register pair",
	"DAD": "Add register pair to HL",
	"DAA": "Decimal adjust accumulator",

	// Logical
	"ANA": "AND with accumulator",
	"ANI": "AND immediate",
	"ORA": "OR with accumulator",
	"ORI": "OR immediate",
	"XRA": "XOR with accumulator",
	"XRI": "XOR immediate",
	"CMP": "Compare with accumulator",
	"CPI": "Compare immediate",
	"RLC": "Rotate left",
	"RRC": "Rotate right",
	"RAL": "Rotate left through carry",
	"RAR": "Rotate right through carry",
	"CMA": "Complement accumulator",
	"CMC": "Complement carry flag",
	"STC": "Set carry flag",

	// Branch
	"JMP":  "Unconditional jump",
	"JC":   "Jump if carry",
	"JNC":  "Jump if no carry",
	"JZ":   "Jump if zero",
	"JNZ":  "Jump if not zero",
	"JP":   "Jump if positive",
	"JM":   "Jump if minus",
	"JPE":  "Jump if parity even",
	"JPO":  "Jump if parity odd",
	"CALL": "Unconditional call",
	"CC":   "Conditional call",
	"CNC":  "Conditional call",
	"CZ":   "Conditional call",
	"CNZ":  "Conditional call",
	"CP":   "Conditional call",
	"CM":   "Conditional call",
	"CPE":  "Conditional call",
	"CPO":  "Conditional call",
	"RET":  "Unconditional return",
	"RC":   "Conditional return",
	"RNC":  "Conditional return",
	"RZ":   "Conditional return",
	"RNZ":  "Conditional return",
	"RP":   "Conditional return",
	"RM":   "Conditional return",
	"RPE":  "Conditional return",
	"RPO":  "Conditional return",
	"RST":  "Restart (call to vector)",
	"PCHL": "Jump to address in HL",

	// Stack
	"PUSH": "Push register pair to stack",
	"POP":  "Pop stack to register pair",
	"XTHL": "Exchange stack top with HL",
	"SPHL": "Copy HL to stack pointer",

	// I/O and control
	"IN":  "Input from port",
	"OUT": "Output to port",
	"EI":  "Enable interrupts",
	"DI":  "Disable interrupts",
	"HLT": "Halt execution",
	"NOP": "No operation",
	"RIM": "Read interrupt mask",
	"SIM": "Set interrupt mask",
}

// Describe returns a brief description of an instruction. The text may be
// a bare mnemonic or a full disassembled instruction.
func Describe(instruction string) string {
	words := strings.Fields(instruction)
	if len(words) == 0 {
		return ""
	}

	desc, ok := descriptions[strings.ToUpper(words[0])]
	if !ok {
		return ""
	}

	return f(desc)
}
