// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"errors"
	"io"
	"log"
	"maps"
	"slices"
	"strings"
)

var (
	mnemonicArity = map[string]int{}   // Operand count of each mnemonic.
	mnemonicForm  = map[string]Form{}  // Immediate form of each mnemonic.
	opcodeKeys    = map[string]uint8{} // Opcode byte of each instruction key.
)

func init() {
	for code, op := range opcodeTable {
		if !op.Defined() {
			continue
		}
		opcodeKeys[op.Key()] = uint8(code)
		mnemonicArity[op.Mnemonic] = max(mnemonicArity[op.Mnemonic], op.Arity())
		mnemonicForm[op.Mnemonic] = op.Form
	}
}

// Register pair spellings accepted by the pair instructions.
var pairAlias = map[string]string{
	"BC": "B",
	"DE": "D",
	"HL": "H",
}

var pairMnemonics = map[string]bool{
	"LXI":  true,
	"INX":  true,
	"DCX":  true,
	"DAD":  true,
	"PUSH": true,
	"POP":  true,
	"LDAX": true,
	"STAX": true,
}

// Assembler is a two pass assembler for the 8085.
type Assembler struct {
	Verbose bool // If set, verbosely logs the assembler actions.

	Labels    map[string]uint16 // Labels of the last assembly.
	Constants map[string]int    // Constants of the last assembly.

	predefine map[string]int // Predefines
}

// Predefine defines a constant before assembly. Predefined constants
// take precedence over EQU definitions of the same name.
func (asm *Assembler) Predefine(name string, value int) {
	if asm.predefine == nil {
		asm.predefine = map[string]int{name: value}
	} else {
		asm.predefine[name] = value
	}
}

// statement is a parsed source line.
type statement struct {
	lineNo    int       // 1-based line number.
	line      string    // Source text.
	tokens    []Token   // Lexed tokens.
	labels    []string  // Labels defined by the line.
	name      string    // Constant defined by EQU.
	keyword   string    // Mnemonic or directive, empty for label only lines.
	directive bool      // Set if keyword is a directive.
	operands  [][]Token // Comma separated operands.
	pc        int       // Location counter at the line.
	failed    bool      // Set once the line has a diagnostic.
}

// parse splits the tokens of the line into labels, keyword and operands.
func (stmt *statement) parse() (err error) {
	tokens := stmt.tokens

	for len(tokens) > 0 && tokens[0].Kind == TOKEN_LABEL {
		stmt.labels = append(stmt.labels, tokens[0].Text)
		tokens = tokens[1:]
	}

	// NAME EQU value, or NAME: EQU value
	switch {
	case len(tokens) >= 2 && tokens[0].Kind == TOKEN_SYMBOL && tokens[1].Is(TOKEN_DIRECTIVE, "EQU"):
		stmt.name = tokens[0].Text
		tokens = tokens[1:]
	case len(tokens) >= 2 && tokens[1].Is(TOKEN_DIRECTIVE, "EQU"):
		err = ErrLabelReserved(tokens[0].Text)
		return
	case len(tokens) >= 1 && tokens[0].Is(TOKEN_DIRECTIVE, "EQU") && len(stmt.labels) > 0:
		stmt.name = stmt.labels[len(stmt.labels)-1]
		stmt.labels = stmt.labels[:len(stmt.labels)-1]
	}

	if len(tokens) == 0 {
		return
	}

	head := tokens[0]
	arity := -1
	switch head.Kind {
	case TOKEN_DIRECTIVE:
		stmt.directive = true
	case TOKEN_OPCODE0, TOKEN_OPCODE1, TOKEN_OPCODE2:
		arity = int(head.Kind - TOKEN_OPCODE0)
	default:
		err = ErrInstructionInvalid
		return
	}
	stmt.keyword = head.Text

	rest := tokens[1:]
	if len(rest) > 0 {
		var group []Token
		for _, tok := range rest {
			if tok.Kind == TOKEN_COMMA {
				if len(group) == 0 {
					err = ErrOpcodeValueMissing
					return
				}
				stmt.operands = append(stmt.operands, group)
				group = nil
				continue
			}
			group = append(group, tok)
		}
		if len(group) == 0 {
			err = ErrOpcodeValueMissing
			return
		}
		stmt.operands = append(stmt.operands, group)
	}

	count := len(stmt.operands)
	if !stmt.directive {
		switch {
		case count < arity:
			err = ErrOpcodeValueMissing
		case count > arity:
			err = ErrOpcodeExtraArgs
		}
		return
	}

	switch stmt.keyword {
	case "EQU":
		if len(stmt.name) == 0 || count != 1 {
			err = ErrEquateSyntax
		}
	case "ORG", "DS":
		if count != 1 {
			err = ErrDirectiveSyntax
		}
	case "DB", "DW":
		if count == 0 {
			err = ErrOpcodeValueMissing
		}
	case "END":
		if count > 1 {
			err = ErrOpcodeExtraArgs
		}
	}

	return
}

// size returns the number of bytes the line emits.
func (stmt *statement) size() (size int) {
	if !stmt.directive {
		if len(stmt.keyword) == 0 {
			return
		}
		return 1 + mnemonicForm[stmt.keyword].Size()
	}

	switch stmt.keyword {
	case "DB":
		for _, group := range stmt.operands {
			if len(group) == 1 && group[0].Kind == TOKEN_STRING {
				size += len(group[0].Text)
			} else {
				size++
			}
		}
	case "DW":
		size = 2 * len(stmt.operands)
	}

	return
}

// resolve evaluates an expression that must be known in the first pass.
func (asm *Assembler) resolve(tokens []Token, pc int) (value int, err error) {
	value, missing, err := asm.evaluate(tokens, pc)
	if err != nil {
		return
	}
	if len(missing) > 0 {
		err = ErrLabelMissing(missing)
	}
	return
}

// define binds a label.
func (asm *Assembler) define(label string, pc int) (err error) {
	_, isLabel := asm.Labels[label]
	_, isConst := asm.Constants[label]
	if isLabel || isConst {
		err = ErrLabelDuplicate
		return
	}
	asm.Labels[label] = uint16(pc)
	return
}

// encode returns the bytes of an instruction, DB or DW line.
// Symbols that cannot be resolved are listed in missing.
func (asm *Assembler) encode(stmt *statement) (data []uint8, missing []string, err error) {
	value := func(group []Token, form Form) (v int, err error) {
		v, miss, err := asm.evaluate(group, stmt.pc)
		if err != nil {
			return
		}
		if len(miss) > 0 {
			for _, name := range miss {
				if !slices.Contains(missing, name) {
					missing = append(missing, name)
				}
			}
			return
		}
		err = checkRange(v, form)
		return
	}

	if stmt.directive {
		for _, group := range stmt.operands {
			if stmt.keyword == "DB" && len(group) == 1 && group[0].Kind == TOKEN_STRING {
				data = append(data, []uint8(group[0].Text)...)
				continue
			}
			form := FORM_DATA8
			if stmt.keyword == "DW" {
				form = FORM_DATA16
			}
			var v int
			v, err = value(group, form)
			if err != nil {
				return
			}
			data = append(data, uint8(v))
			if form == FORM_DATA16 {
				data = append(data, uint8(v>>8))
			}
		}
		return
	}

	keyword := stmt.keyword
	var parts []string
	var immediate []Token
	hasRegister := false
	for _, group := range stmt.operands {
		if len(group) == 1 && (group[0].Kind == TOKEN_REGISTER || group[0].Kind == TOKEN_PAIR) {
			name := group[0].Text
			if alias, ok := pairAlias[name]; ok && pairMnemonics[keyword] {
				name = alias
			}
			parts = append(parts, name)
			hasRegister = true
			continue
		}
		if immediate != nil {
			err = ErrInstructionInvalid
			return
		}
		immediate = group
	}

	if keyword == "RST" {
		if immediate == nil {
			err = ErrRangeRestart
			return
		}
		var vector int
		vector, missing, err = asm.evaluate(immediate, stmt.pc)
		if err != nil || len(missing) > 0 {
			return
		}
		if vector < 0 || vector > 7 {
			err = ErrRangeRestart
			return
		}
		data = []uint8{0xC7 | uint8(vector)<<3}
		return
	}

	form := mnemonicForm[keyword]
	if immediate != nil {
		parts = append(parts, form.String())
	}

	key := keyword
	if len(parts) > 0 {
		key += " " + strings.Join(parts, ",")
	}

	code, ok := opcodeKeys[key]
	if !ok {
		if hasRegister {
			err = ErrRegisterInvalid
		} else {
			err = ErrInstructionInvalid
		}
		return
	}

	data = []uint8{code}
	if immediate != nil {
		var v int
		v, err = value(immediate, form)
		if err != nil {
			return
		}
		data = append(data, uint8(v))
		if form == FORM_DATA16 {
			data = append(data, uint8(v>>8))
		}
	}

	return
}

// Assemble assembles source lines into a program.
// On failure, err is a Diagnostics holding every diagnostic found and prog is nil.
func (asm *Assembler) Assemble(lines []string) (prog *Program, err error) {
	var diags Diagnostics

	report := func(stmt *statement, kind DiagnosticKind, cause error) {
		if asm.Verbose {
			log.Printf("asm: %v: %v", stmt.lineNo, cause)
		}
		stmt.failed = true
		diags = append(diags, Diagnostic{
			LineNo:   stmt.lineNo,
			Line:     stmt.line,
			Kind:     kind,
			Severity: SEVERITY_ERROR,
			Err:      cause,
		})
	}

	asm.Labels = make(map[string]uint16)
	asm.Constants = maps.Clone(asm.predefine)
	if asm.Constants == nil {
		asm.Constants = make(map[string]int)
	}

	// Tokenize every line. Lexical diagnostics stop assembly.
	stmts := make([]*statement, len(lines))
	for n, line := range lines {
		stmt := &statement{lineNo: n + 1, line: line}
		stmts[n] = stmt

		stmt.tokens, err = Lex(line)
		if err != nil {
			report(stmt, DIAG_LEXICAL, err)
		}
	}
	err = nil

	if len(diags) > 0 {
		err = diags
		return
	}

	for _, stmt := range stmts {
		err = stmt.parse()
		if err != nil {
			report(stmt, DIAG_SEMANTIC, err)
		}
	}
	err = nil

	// Pass 1: bind labels and constants.
	pc := 0
	end := len(stmts)
	for n, stmt := range stmts {
		stmt.pc = pc

		if asm.Verbose {
			log.Printf("asm: pass 1: %04X %v: %v", pc, stmt.lineNo, stmt.line)
		}

		for _, label := range stmt.labels {
			err = asm.define(label, pc)
			if err != nil {
				if !stmt.failed {
					report(stmt, DIAG_SEMANTIC, err)
				}
				break
			}
		}
		err = nil

		if stmt.failed {
			continue
		}

		if stmt.keyword == "END" {
			end = n + 1
			break
		}

		var value int
		switch stmt.keyword {
		case "EQU":
			value, err = asm.resolve(stmt.operands[0], pc)
			if err != nil {
				if !errors.As(err, new(ErrLabelMissing)) {
					report(stmt, DIAG_SEMANTIC, err)
				} else {
					report(stmt, DIAG_SEMANTIC, errors.Join(ErrEquateUnresolved, err))
				}
				break
			}
			if _, ok := asm.predefine[stmt.name]; ok {
				if asm.Verbose {
					log.Printf("asm: %v: %v is predefined", stmt.lineNo, stmt.name)
				}
				break
			}
			if _, ok := asm.symbolValue(stmt.name); ok {
				report(stmt, DIAG_SEMANTIC, ErrEquateDuplicate)
				break
			}
			asm.Constants[stmt.name] = value
		case "ORG":
			value, err = asm.resolve(stmt.operands[0], pc)
			if err == nil && (value < 0 || value > 0xFFFF) {
				err = ErrRangeWord
			}
			if err != nil {
				report(stmt, DIAG_SEMANTIC, err)
				break
			}
			pc = value
			stmt.pc = pc
		case "DS":
			value, err = asm.resolve(stmt.operands[0], pc)
			if err == nil && (value < 0 || value > 0xFFFF) {
				err = ErrRangeWord
			}
			if err != nil {
				report(stmt, DIAG_SEMANTIC, err)
				break
			}
			if pc+value > MEMORY_SIZE {
				report(stmt, DIAG_CAPACITY, ErrOutOfMemory)
				break
			}
			pc += value
		default:
			pc += stmt.size()
		}
		err = nil
	}

	// Pass 2: emit.
	prog = &Program{
		Labels:     asm.Labels,
		Constants:  asm.Constants,
		LineOffset: make([]uint16, len(lines)),
		LineSize:   make([]int, len(lines)),
		Code:       make([]bool, len(lines)),
		Source:     slices.Clone(lines),
	}

	loaded := false
	first := -1
	for _, stmt := range stmts[:end] {
		if stmt.failed {
			continue
		}

		index := stmt.lineNo - 1
		prog.LineOffset[index] = uint16(stmt.pc)

		switch {
		case len(stmt.keyword) == 0:
			continue
		case stmt.directive && stmt.keyword != "DB" && stmt.keyword != "DW":
			continue
		}

		if asm.Verbose {
			log.Printf("asm: pass 2: %04X %v: %v", stmt.pc, stmt.lineNo, stmt.line)
		}

		var data []uint8
		var missing []string
		data, missing, err = asm.encode(stmt)
		switch {
		case err != nil:
			report(stmt, DIAG_SEMANTIC, err)
		case len(missing) > 0:
			report(stmt, DIAG_SEMANTIC, ErrLabelMissing(missing))
		case stmt.pc+len(data) > MEMORY_SIZE:
			report(stmt, DIAG_CAPACITY, ErrOutOfMemory)
		}
		err = nil
		if stmt.failed {
			continue
		}

		for n, value := range data {
			addr := stmt.pc + n
			prog.Memory[addr] = value
			prog.Written[addr] = true
		}
		prog.LineSize[index] = len(data)
		prog.Code[index] = !stmt.directive

		if len(data) == 0 {
			continue
		}
		if first < 0 {
			first = stmt.pc
		}
		if !loaded && !stmt.directive {
			prog.LoadOffset = uint16(stmt.pc)
			loaded = true
		}
	}

	if !loaded && first >= 0 {
		prog.LoadOffset = uint16(first)
	}

	if len(diags) > 0 {
		slices.SortStableFunc(diags, func(a, b Diagnostic) int {
			return a.LineNo - b.LineNo
		})
		prog = nil
		err = diags
		return
	}

	return
}

// Parse assembles an input stream.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	var lines []string

	scanner := bufio.NewScanner(input)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	err = scanner.Err()
	if err != nil {
		return
	}

	return asm.Assemble(lines)
}

// FirstError locates the first line that fails to assemble by assembling
// growing prefixes of the source. Unresolved labels in a prefix are
// ignored, as they may be defined later. Returns nil if the source
// assembles.
func (asm *Assembler) FirstError(lines []string) (diag *Diagnostic) {
	for n := 1; n <= len(lines); n++ {
		_, err := asm.Assemble(lines[:n])
		var diags Diagnostics
		if !errors.As(err, &diags) {
			continue
		}
		for _, d := range diags {
			if d.LineNo != n {
				continue
			}
			if errors.As(d.Err, new(ErrLabelMissing)) {
				continue
			}
			return &d
		}
	}

	_, err := asm.Assemble(lines)
	var diags Diagnostics
	if errors.As(err, &diags) && len(diags) > 0 {
		diag = &diags[0]
	}

	return
}
