package cpu

import (
	"slices"
	"strings"
)

// Opcodes that use the stack.
func usesStack(op Opcode) bool {
	switch op.Mnemonic {
	case "PUSH", "POP", "XTHL", "CALL", "RET", "RST":
		return true
	}
	if op.Conditional() {
		// Ccc and Rcc, but not Jcc.
		return op.Mnemonic[0] == 'C' || op.Mnemonic[0] == 'R'
	}
	return false
}

// Analyze returns the static warnings of an assembled program, ordered by
// line. Lines without a location, such as a missing HLT, sort first.
func Analyze(prog *Program) (diags Diagnostics) {
	warn := func(lineno int, sev Severity, err error) {
		diag := Diagnostic{
			LineNo:   lineno,
			Kind:     DIAG_ANALYSIS,
			Severity: sev,
			Err:      err,
		}
		if lineno > 0 && lineno <= len(prog.Source) {
			diag.Line = prog.Source[lineno-1]
		}
		diags = append(diags, diag)
	}

	labelled := map[uint16]bool{}
	for _, addr := range prog.Labels {
		labelled[addr] = true
	}

	// Addresses referenced by 16-bit operands and DW data.
	referenced := map[uint16]bool{}

	stackReady := false
	stackWarned := false
	terminated := false
	afterHalt := false
	lastJump := -1

	for lineno, addr := range prog.Instructions() {
		code := prog.Memory[addr]
		op := Lookup(code)
		data := prog.Bytes(int(addr)+1, int(addr)+op.Length())

		if op.Form == FORM_DATA16 {
			referenced[uint16(data[0])|uint16(data[1])<<8] = true
		}

		if afterHalt && !labelled[addr] {
			warn(lineno, SEVERITY_WARNING, ErrUnreachable)
		}
		afterHalt = false

		switch {
		case code == 0x31 || code == 0xF9: // LXI SP, SPHL
			stackReady = true
		case usesStack(op) && !stackReady && !stackWarned:
			warn(lineno, SEVERITY_WARNING, ErrStackUninitialized)
			stackWarned = true
		}

		switch op.Mnemonic {
		case "HLT":
			terminated = true
			afterHalt = true
		case "RET":
			terminated = true
		case "MOV":
			if op.Operands[0] == op.Operands[1] {
				warn(lineno, SEVERITY_HINT, ErrRedundantMove)
			}
		case "MVI":
			if op.Operands[0] == "A" && data[0] == 0 {
				warn(lineno, SEVERITY_HINT, ErrZeroAccumulator)
			}
		case "ADI", "ACI":
			if data[0] == 1 {
				warn(lineno, SEVERITY_HINT, ErrIncrementImmediate)
			}
		case "SUI", "SBI":
			if data[0] == 1 {
				warn(lineno, SEVERITY_HINT, ErrDecrementImmediate)
			}
		}

		if op.Mnemonic == "JMP" {
			target := int(data[0]) | int(data[1])<<8
			if target == lastJump {
				warn(lineno, SEVERITY_HINT, ErrJumpDuplicate)
			}
			lastJump = target
		} else {
			lastJump = -1
		}
		if op.Conditional() && op.Mnemonic[0] == 'R' {
			terminated = true
		}
	}

	for n, size := range prog.LineSize {
		if prog.Code[n] || size < 2 {
			continue
		}
		data := prog.Bytes(int(prog.LineOffset[n]), int(prog.LineOffset[n])+size)
		for offset := 0; offset+1 < len(data); offset += 2 {
			referenced[uint16(data[offset])|uint16(data[offset+1])<<8] = true
		}
	}

	for name, addr := range prog.Labels {
		if referenced[addr] {
			continue
		}
		warn(labelLine(prog, name), SEVERITY_INFO, ErrLabelUnused(name))
	}

	if !terminated {
		warn(0, SEVERITY_WARNING, ErrHaltMissing)
	}

	slices.SortStableFunc(diags, func(a, b Diagnostic) int {
		if a.LineNo != b.LineNo {
			return a.LineNo - b.LineNo
		}
		return strings.Compare(a.Error(), b.Error())
	})

	return
}

// labelLine finds the line defining a label.
func labelLine(prog *Program, name string) int {
	for n, line := range prog.Source {
		tokens, err := Lex(line)
		if err != nil {
			continue
		}
		for _, tok := range tokens {
			if tok.Is(TOKEN_LABEL, name) {
				return n + 1
			}
		}
	}
	return 0
}
