// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"errors"
	"slices"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// symbolValue looks up a label, then a constant.
func (asm *Assembler) symbolValue(name string) (value int, ok bool) {
	addr, ok := asm.Labels[name]
	if ok {
		value = int(addr)
		return
	}
	value, ok = asm.Constants[name]
	return
}

// parenEval does compile-time $(...) evaluations, with all known labels
// and constants predeclared.
func (asm *Assembler) parenEval(expr string) (value int, err error) {
	thread := starlark.Thread{Name: "asm"}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, addr := range asm.Labels {
		pred[key] = starlark.MakeInt(int(addr))
	}
	for key, val := range asm.Constants {
		pred[key] = starlark.MakeInt(val)
	}

	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = errors.Join(ErrParseExpression(expr), err)
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	var st_int starlark.Int
	switch rc := st_rc.(type) {
	case starlark.Int:
		st_int = rc
	case starlark.Bool:
		if rc {
			st_int = starlark.MakeInt(1)
		} else {
			st_int = starlark.MakeInt(0)
		}
	default:
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = int(st_int64)
	return
}

// evaluate computes an operand expression: terms joined by binary + and -,
// evaluated left to right, with an optional leading unary minus.
// Symbols that are not yet known evaluate as 0 and are listed in missing.
func (asm *Assembler) evaluate(tokens []Token, pc int) (value int, missing []string, err error) {
	if len(tokens) == 0 {
		err = ErrOpcodeValueMissing
		return
	}

	sign := 1
	expectTerm := true
	for n, tok := range tokens {
		if !expectTerm {
			switch tok.Kind {
			case TOKEN_PLUS:
				sign = 1
			case TOKEN_MINUS:
				sign = -1
			default:
				err = ErrExpressionSyntax
				return
			}
			expectTerm = true
			continue
		}

		var term int
		switch tok.Kind {
		case TOKEN_MINUS:
			if n != 0 {
				err = ErrExpressionSyntax
				return
			}
			sign = -1
			continue
		case TOKEN_NUMBER, TOKEN_CHAR:
			term = tok.Value
		case TOKEN_LOCATION:
			term = pc
		case TOKEN_SYMBOL:
			var ok bool
			term, ok = asm.symbolValue(tok.Text)
			if !ok && !slices.Contains(missing, tok.Text) {
				missing = append(missing, tok.Text)
			}
		case TOKEN_EXPRESSION:
			term, err = asm.parenEval(tok.Text)
			if err != nil {
				return
			}
		default:
			err = ErrExpressionSyntax
			return
		}

		value += sign * term
		expectTerm = false
	}

	if expectTerm {
		err = ErrExpressionSyntax
	}

	return
}

// checkRange validates a value against an operand form.
func checkRange(value int, form Form) (err error) {
	switch form {
	case FORM_DATA8:
		if value < -128 || value > 0xFF {
			err = ErrRangeByte
		}
	case FORM_DATA16:
		if value < -32768 || value > 0xFFFF {
			err = ErrRangeWord
		}
	}
	return
}
