// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"errors"
	"strings"

	"github.com/ezrec/asm8085/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrFault = errors.New(f("execution outside of program"))

	// Lexical errors
	ErrQuoteUnterminated = errors.New(f("unterminated quote"))
	ErrParenUnbalanced   = errors.New(f("unbalanced $( expression"))

	// Assembler errors
	ErrOutOfMemory        = errors.New(f("out of memory"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrEquateDuplicate    = errors.New(f("constant duplicated"))
	ErrEquateSyntax       = errors.New(f("EQU syntax"))
	ErrEquateUnresolved   = errors.New(f("EQU value must be known in the first pass"))
	ErrDirectiveSyntax    = errors.New(f("directive syntax"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeValueMissing = errors.New(f("value missing"))
	ErrRegisterInvalid    = errors.New(f("register invalid"))
	ErrInstructionInvalid = errors.New(f("instruction invalid"))
	ErrExpressionSyntax   = errors.New(f("expression syntax"))
	ErrRangeByte          = errors.New(f("value out of 8-bit range"))
	ErrRangeWord          = errors.New(f("value out of 16-bit range"))
	ErrRangeRestart       = errors.New(f("RST vector must be 0..7"))

	// Analysis warnings
	ErrStackUninitialized = errors.New(f("stack pointer used before being initialized, add LXI SP"))
	ErrHaltMissing        = errors.New(f("program has no terminating instruction (HLT/RET)"))
	ErrUnreachable        = errors.New(f("code after HLT is unreachable"))
	ErrZeroAccumulator    = errors.New(f("XRA A is shorter than MVI A, 00H"))
	ErrIncrementImmediate = errors.New(f("INR A is faster than adding 01H when carry is not needed"))
	ErrDecrementImmediate = errors.New(f("DCR A is faster than subtracting 01H when borrow is not needed"))
	ErrRedundantMove      = errors.New(f("redundant MOV"))
	ErrJumpDuplicate      = errors.New(f("duplicate JMP, the previous jump already transfers control"))
)

// ErrLabelMissing lists the labels a line refers to that were never defined.
type ErrLabelMissing []string

func (el ErrLabelMissing) Error() string {
	return f("unresolved label(s): %v", strings.Join(el, ", "))
}

type ErrLabelUnused string

func (el ErrLabelUnused) Error() string {
	return f("label %v defined but never used", string(el))
}

// ErrLabelReserved is a label or constant name that spells a keyword or
// a hexadecimal number.
type ErrLabelReserved string

func (err ErrLabelReserved) Error() string {
	return f("reserved word used as label: %v", string(err))
}

type ErrTokenUnknown string

func (err ErrTokenUnknown) Error() string {
	return f("unknown token: %v", string(err))
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseCharacter string

func (err ErrParseCharacter) Error() string {
	return f("'%v' is not a character", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

// DiagnosticKind classifies a diagnostic.
type DiagnosticKind int

const (
	DIAG_LEXICAL  = DiagnosticKind(iota) // Tokenizer failure.
	DIAG_SEMANTIC                        // Symbol, operand or directive failure.
	DIAG_CAPACITY                        // Program does not fit in memory.
	DIAG_ANALYSIS                        // Static analysis finding.
)

func (kind DiagnosticKind) String() string {
	switch kind {
	case DIAG_LEXICAL:
		return f("lexical")
	case DIAG_SEMANTIC:
		return f("semantic")
	case DIAG_CAPACITY:
		return f("capacity")
	case DIAG_ANALYSIS:
		return f("analysis")
	}
	return f("unknown")
}

// Severity of a diagnostic.
type Severity int

const (
	SEVERITY_ERROR   = Severity(iota) // Assembly fails.
	SEVERITY_WARNING                  // Likely defect.
	SEVERITY_INFO                     // Informational.
	SEVERITY_HINT                     // Optimization hint.
)

func (sev Severity) String() string {
	switch sev {
	case SEVERITY_WARNING:
		return f("warning")
	case SEVERITY_INFO:
		return f("info")
	case SEVERITY_HINT:
		return f("hint")
	}
	return f("error")
}

// Diagnostic is an error attached to a source line.
type Diagnostic struct {
	LineNo   int            // 1-based line number, 0 if not tied to a line.
	Line     string         // Source text of the line.
	Kind     DiagnosticKind // Diagnostic class.
	Severity Severity       // Error or warning.
	Err      error          // Underlying cause.
}

func (diag Diagnostic) Error() string {
	if diag.LineNo == 0 {
		return f("%v: %v", diag.Severity, diag.Err)
	}
	return f("line %d '%v' %v: %v", diag.LineNo, diag.Line, diag.Severity, diag.Err)
}

func (diag Diagnostic) Unwrap() error {
	return diag.Err
}

// Diagnostics is the collected set of diagnostics of an assembly.
type Diagnostics []Diagnostic

func (diags Diagnostics) Error() string {
	text := make([]string, len(diags))
	for n, diag := range diags {
		text[n] = diag.Error()
	}
	return strings.Join(text, "\n")
}

func (diags Diagnostics) Unwrap() (errs []error) {
	errs = make([]error, len(diags))
	for n, diag := range diags {
		errs[n] = diag
	}
	return
}

// Errors returns only the diagnostics of error severity.
func (diags Diagnostics) Errors() (errs Diagnostics) {
	for _, diag := range diags {
		if diag.Severity == SEVERITY_ERROR {
			errs = append(errs, diag)
		}
	}
	return
}
