package cpu

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assemble(t *testing.T, lines ...string) (prog *Program) {
	asm := &Assembler{}
	prog, err := asm.Assemble(lines)
	require.NoError(t, err)
	require.NotNil(t, prog)
	return
}

func diagnose(t *testing.T, lines ...string) (diags Diagnostics) {
	asm := &Assembler{}
	prog, err := asm.Assemble(lines)
	require.Error(t, err)
	assert.Nil(t, prog)
	require.True(t, errors.As(err, &diags))
	return
}

func TestAssemblerEmpty(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog, err := asm.Parse(strings.NewReader(""))
	assert.NoError(err)
	assert.Equal(uint16(0), prog.LoadOffset)
	assert.Equal(0, prog.End())
}

func TestAssemblerScenario(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t,
		"ORG 8000H",
		"MVI A, 05H",
		"MVI B, 03H",
		"ADD B",
		"HLT",
	)

	assert.Equal(uint16(0x8000), prog.LoadOffset)
	assert.Equal(0x8006, prog.End())
	assert.Equal([]uint8{0x3E, 0x05, 0x06, 0x03, 0x80, 0x76}, prog.Bytes(0x8000, 0x8006))
	assert.Equal([]int{0, 2, 2, 1, 1}, prog.LineSize)
	assert.Equal([]uint16{0x8000, 0x8000, 0x8002, 0x8004, 0x8005}, prog.LineOffset)
	assert.Equal([]bool{false, true, true, true, true}, prog.Code)
	assert.True(prog.Written[0x8005])
	assert.False(prog.Written[0x8006])

	line, ok := prog.LineAt(0x8003)
	assert.True(ok)
	assert.Equal(3, line)
	_, ok = prog.LineAt(0x8006)
	assert.False(ok)

	cpu := NewCpu()
	cpu.Load(&prog.Memory, prog.LoadOffset)
	run(t, cpu, 10)
	assert.Equal(uint8(0x08), cpu.A)
	assert.Equal(23, cpu.Ticks)
}

func TestAssemblerForwardReference(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t,
		"        ORG 8000H",
		"        JMP DONE",
		"        NOP",
		"LOOP:   DCR B",
		"        JNZ LOOP",
		"DONE:   HLT",
	)

	assert.Equal(uint16(0x8008), prog.Labels["DONE"])
	assert.Equal(uint16(0x8004), prog.Labels["LOOP"])
	assert.Equal([]uint8{0xC3, 0x08, 0x80}, prog.Bytes(0x8000, 0x8003))
	assert.Equal([]uint8{0xC2, 0x04, 0x80}, prog.Bytes(0x8005, 0x8008))
}

func TestAssemblerUndefinedLabel(t *testing.T) {
	assert := assert.New(t)

	diags := diagnose(t,
		"ORG 8000H",
		"JMP UNDEFINED",
		"HLT",
	)

	assert.Equal(1, len(diags))
	diag := diags[0]
	assert.Equal(2, diag.LineNo)
	assert.Equal("JMP UNDEFINED", diag.Line)
	assert.Equal(DIAG_SEMANTIC, diag.Kind)
	assert.Equal(SEVERITY_ERROR, diag.Severity)

	var missing ErrLabelMissing
	assert.True(errors.As(diags, &missing))
	assert.Equal(ErrLabelMissing{"UNDEFINED"}, missing)
	assert.Contains(diag.Error(), "unresolved label(s): UNDEFINED")
}

func TestAssemblerLexical(t *testing.T) {
	assert := assert.New(t)

	diags := diagnose(t,
		"MVI A, 05H",
		"MVI A, @",
		"JMP UNDEFINED",
		"DB 'x",
	)

	// Lexical diagnostics stop assembly before symbols are resolved.
	assert.Equal(2, len(diags))
	assert.Equal(2, diags[0].LineNo)
	assert.Equal(DIAG_LEXICAL, diags[0].Kind)
	assert.Equal(ErrTokenUnknown("@"), diags[0].Err)
	assert.Equal(4, diags[1].LineNo)
	assert.ErrorIs(diags[1], ErrQuoteUnterminated)
}

func TestAssemblerOneDiagnosticPerLine(t *testing.T) {
	assert := assert.New(t)

	diags := diagnose(t,
		"X: X: MOV A",
		"MOV A, B, C",
		"MVI A, 100H",
		"LXI H, 10000H",
		"RST 8",
		"MOV A, 5",
		"LXI PSW, 0",
		"ORG UNKNOWN",
		"X EQU 1",
	)

	lines := make([]int, len(diags))
	for n, diag := range diags {
		lines[n] = diag.LineNo
	}
	assert.Equal([]int{1, 2, 3, 4, 5, 6, 7, 8, 9}, lines)

	assert.ErrorIs(diags[0], ErrOpcodeValueMissing)
	assert.ErrorIs(diags[1], ErrOpcodeExtraArgs)
	assert.ErrorIs(diags[2], ErrRangeByte)
	assert.ErrorIs(diags[3], ErrRangeWord)
	assert.ErrorIs(diags[4], ErrRangeRestart)
	assert.ErrorIs(diags[5], ErrRegisterInvalid)
	assert.ErrorIs(diags[6], ErrRegisterInvalid)
	assert.ErrorIs(diags[8], ErrEquateDuplicate)
}

func TestAssemblerDirectives(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t,
		"COUNT   EQU 3",
		"BASE:   EQU 2000H",
		"        ORG BASE",
		"MSG:    DB \"Hi\", 0DH, 'x', -1",
		"TABLE:  DW 1234H, MSG",
		"        DS COUNT",
		"START:  LXI H, TABLE + 2",
		"        MVI A, COUNT - 1",
		"HERE:   JMP $",
		"        END",
		"        NOP",
	)

	assert.Equal(3, prog.Constants["COUNT"])
	assert.Equal(0x2000, prog.Constants["BASE"])
	assert.Equal(uint16(0x2000), prog.Labels["MSG"])
	assert.Equal(uint16(0x2005), prog.Labels["TABLE"])
	assert.Equal(uint16(0x200C), prog.Labels["START"])

	assert.Equal([]uint8{'H', 'i', 0x0D, 'x', 0xFF}, prog.Bytes(0x2000, 0x2005))
	assert.Equal([]uint8{0x34, 0x12, 0x00, 0x20}, prog.Bytes(0x2005, 0x2009))
	assert.False(prog.Written[0x2009])
	assert.Equal([]uint8{0x21, 0x07, 0x20}, prog.Bytes(0x200C, 0x200F))
	assert.Equal([]uint8{0x3E, 0x02}, prog.Bytes(0x200F, 0x2011))
	assert.Equal([]uint8{0xC3, 0x11, 0x20}, prog.Bytes(0x2011, 0x2014))

	// The first instruction, not the data, is the load offset.
	assert.Equal(uint16(0x200C), prog.LoadOffset)

	// Nothing after END is assembled.
	assert.Equal(0, prog.LineSize[10])
	assert.False(prog.Written[0x2014])
}

func TestAssemblerNumbers(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t,
		"DB 10, 0AH, 0x0A, #0A, $0A, 0b1010, 'A', '\\n', FFH",
	)
	assert.Equal([]uint8{10, 10, 10, 10, 10, 10, 'A', '\n', 0xFF}, prog.Bytes(0, 9))
	assert.Equal(uint16(0), prog.LoadOffset)
}

func TestAssemblerCase(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t,
		"org 100h",
		"loop: mvi a, 1",
		"Loop: jmp loop",
		"      jmp Loop",
		"      lxi bc, 1234h",
		"      push hl",
		"      dad de",
	)

	assert.NotEqual(prog.Labels["loop"], prog.Labels["Loop"])
	assert.Equal([]uint8{
		0x3E, 0x01,
		0xC3, 0x00, 0x01,
		0xC3, 0x02, 0x01,
		0x01, 0x34, 0x12,
		0xE5,
		0x19,
	}, prog.Bytes(0x100, 0x10D))
}

func TestAssemblerExpression(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("N", 4)
	prog, err := asm.Assemble([]string{
		"TABLE EQU 3000H",
		"N EQU 99",
		"      ORG 100H",
		"      LXI H, $(TABLE + 2*N)",
		"      MVI A, $(TABLE >> 8)",
		"      MVI B, -TABLE + TABLE - 2",
		"      LXI D, $(END_ADDR)",
		"END_ADDR:",
	})
	assert.NoError(err)

	assert.Equal(4, prog.Constants["N"])
	assert.Equal([]uint8{0x21, 0x08, 0x30}, prog.Bytes(0x100, 0x103))
	assert.Equal([]uint8{0x3E, 0x30}, prog.Bytes(0x103, 0x105))
	assert.Equal([]uint8{0x06, 0xFE}, prog.Bytes(0x105, 0x107))
	assert.Equal([]uint8{0x11, 0x0A, 0x01}, prog.Bytes(0x107, 0x10A))

	_, err = asm.Assemble([]string{"MVI A, $(1 +)"})
	var parse ErrParseExpression
	assert.True(errors.As(err, &parse))
}

func TestAssemblerOutOfMemory(t *testing.T) {
	assert := assert.New(t)

	diags := diagnose(t,
		"ORG 0FFFEH",
		"LXI H, 1234H",
		"NOP",
		"JMP MISSING",
	)

	assert.Equal(3, len(diags))
	assert.Equal(DIAG_CAPACITY, diags[0].Kind)
	assert.ErrorIs(diags[0], ErrOutOfMemory)
	assert.Equal(DIAG_CAPACITY, diags[1].Kind)
	assert.Equal(4, diags[2].LineNo)
}

func TestAssemblerStorageOverflow(t *testing.T) {
	assert := assert.New(t)

	diags := diagnose(t,
		"ORG 0FFF0H",
		"DS 100H",
	)
	assert.Equal(1, len(diags))
	assert.Equal(2, diags[0].LineNo)
	assert.Equal(DIAG_CAPACITY, diags[0].Kind)
	assert.ErrorIs(diags[0], ErrOutOfMemory)

	// Reserving up to the top of memory fits.
	prog := assemble(t,
		"ORG 0FFF0H",
		"DS 10H",
	)
	assert.Equal(0, len(prog.Labels))
}

func TestAssemblerReservedLabel(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		line string
		kind DiagnosticKind
		name string
	}){
		{"SUB: NOP", DIAG_LEXICAL, "SUB"},
		{"mov: NOP", DIAG_LEXICAL, "mov"},
		{"A: NOP", DIAG_LEXICAL, "A"},
		{"PSW: NOP", DIAG_LEXICAL, "PSW"},
		{"ORG: NOP", DIAG_LEXICAL, "ORG"},
		{"EACH: NOP", DIAG_LEXICAL, "EACH"},
		{"DEADH: NOP", DIAG_LEXICAL, "DEADH"},
		{"ADD EQU 5", DIAG_SEMANTIC, "ADD"},
		{"BACH EQU 5", DIAG_SEMANTIC, "BACH"},
	}

	for _, entry := range table {
		diags := diagnose(t, entry.line)
		if !assert.Equal(1, len(diags), entry.line) {
			continue
		}
		assert.Equal(entry.kind, diags[0].Kind, entry.line)
		assert.Equal(ErrLabelReserved(entry.name), diags[0].Err, entry.line)
		assert.Contains(diags[0].Error(), "reserved word used as label", entry.line)
	}

	// Names that merely contain a keyword or hex digits are symbols.
	prog := assemble(t,
		"        ORG 8000H",
		"EACHX:  NOP",
		"SUBR:   JMP EACHX",
		"        CALL SUBR",
		"        HLT",
	)
	assert.Equal(uint16(0x8000), prog.Labels["EACHX"])
	assert.Equal(uint16(0x8001), prog.Labels["SUBR"])
	assert.Equal([]uint8{0xC3, 0x00, 0x80, 0xCD, 0x01, 0x80}, prog.Bytes(0x8001, 0x8007))
}

func TestAssemblerRoundTrip(t *testing.T) {
	assert := assert.New(t)

	for code := range 256 {
		op := Lookup(uint8(code))
		if !op.Defined() {
			continue
		}

		var mem Memory
		mem.Store(0, []uint8{uint8(code), 0x34, 0x12})
		text, size := Decode(&mem, 0)

		prog, err := (&Assembler{}).Assemble([]string{text})
		if !assert.NoError(err, text) {
			continue
		}
		assert.Equal(mem[:size], prog.Memory[:size], text)

		again, again_size := Decode(prog, 0)
		assert.Equal(text, again)
		assert.Equal(size, again_size)
	}
}

func TestAssemblerFirstError(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	assert.Nil(asm.FirstError([]string{"JMP LATER", "LATER: HLT"}))

	diag := asm.FirstError([]string{
		"JMP LATER",
		"MVI A, 300H",
		"MOV Q",
	})
	assert.NotNil(diag)
	assert.Equal(2, diag.LineNo)

	diag = asm.FirstError([]string{"JMP NOWHERE", "HLT"})
	assert.NotNil(diag)
	assert.Equal(1, diag.LineNo)
}

func TestLex(t *testing.T) {
	assert := assert.New(t)

	tokens, err := Lex("start: MVI A, 'a' + $(N*2) ; comment, with 'quote")
	assert.NoError(err)

	kinds := make([]TokenKind, len(tokens))
	for n, tok := range tokens {
		kinds[n] = tok.Kind
	}
	assert.Equal([]TokenKind{
		TOKEN_LABEL, TOKEN_OPCODE2, TOKEN_REGISTER, TOKEN_COMMA,
		TOKEN_CHAR, TOKEN_PLUS, TOKEN_EXPRESSION,
	}, kinds)
	assert.Equal("start", tokens[0].Text)
	assert.Equal("MVI", tokens[1].Text)
	assert.Equal('a', rune(tokens[4].Value))
	assert.Equal("N*2", tokens[6].Text)

	tokens, err = Lex(`db "a;b, c", '\''`)
	assert.NoError(err)
	assert.Equal(4, len(tokens))
	assert.Equal(Token{Kind: TOKEN_STRING, Text: "a;b, c"}, tokens[1])
	assert.Equal(int('\''), tokens[3].Value)

	tokens, err = Lex("PUSH PSW")
	assert.NoError(err)
	assert.Equal(TOKEN_OPCODE1, tokens[0].Kind)
	assert.Equal(TOKEN_PAIR, tokens[1].Kind)

	tokens, err = Lex("NOP")
	assert.NoError(err)
	assert.Equal(TOKEN_OPCODE0, tokens[0].Kind)

	_, err = Lex("MVI A, $(1 + (2)")
	assert.ErrorIs(err, ErrParenUnbalanced)

	_, err = Lex("MVI A, 'ab'")
	assert.Equal(ErrParseCharacter("'ab'"), err)
}
