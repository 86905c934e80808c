// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"regexp"
	"strconv"
	"strings"
)

// TokenKind is the lexical class of a token.
//
//go:generate go tool stringer -trimprefix=TOKEN_ -type=TokenKind
type TokenKind int

const (
	TOKEN_OPCODE0    = TokenKind(iota) // Mnemonic without operands.
	TOKEN_OPCODE1                      // Mnemonic with one operand.
	TOKEN_OPCODE2                      // Mnemonic with two operands.
	TOKEN_REGISTER                     // A B C D E H L M
	TOKEN_PAIR                         // SP PSW BC DE HL
	TOKEN_DIRECTIVE                    // ORG DB DW DS EQU END
	TOKEN_NUMBER                       // Numeric literal.
	TOKEN_CHAR                         // Character literal.
	TOKEN_STRING                       // String literal.
	TOKEN_LABEL                        // Label definition.
	TOKEN_SYMBOL                       // Label or constant reference.
	TOKEN_LOCATION                     // $, the location counter.
	TOKEN_EXPRESSION                   // $(...) compile-time expression.
	TOKEN_COMMA                        // ,
	TOKEN_PLUS                         // +
	TOKEN_MINUS                        // -
)

// Token is a classified word of a source line.
type Token struct {
	Kind  TokenKind // Lexical class.
	Text  string    // Canonical text: upper case for keywords, unquoted for strings.
	Value int       // Value of numbers and characters.
}

// Is returns true if the token is of the kind and text.
func (tok Token) Is(kind TokenKind, text string) bool {
	return tok.Kind == kind && tok.Text == text
}

var directives = map[string]bool{
	"ORG": true,
	"DB":  true,
	"DW":  true,
	"DS":  true,
	"EQU": true,
	"END": true,
}

var registerNames = map[string]bool{
	"A": true, "B": true, "C": true, "D": true,
	"E": true, "H": true, "L": true, "M": true,
}

var pairNames = map[string]bool{
	"SP":  true,
	"PSW": true,
	"BC":  true,
	"DE":  true,
	"HL":  true,
}

var (
	reSymbol  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	reHexH    = regexp.MustCompile(`^[0-9A-Fa-f]+[Hh]$`)
	reHex0x   = regexp.MustCompile(`^0[Xx][0-9A-Fa-f]+$`)
	reHexMark = regexp.MustCompile(`^[#$][0-9A-Fa-f]+$`)
	reBinary  = regexp.MustCompile(`^0[Bb][01]+$`)
	reDecimal = regexp.MustCompile(`^[0-9]+$`)
)

// split breaks a line into words. Comments are dropped, quoted text and
// $(...) expressions are kept whole, and ',' '+' '-' are words of their own.
func split(line string) (words []string, err error) {
	var word strings.Builder

	flush := func() {
		if word.Len() > 0 {
			words = append(words, word.String())
			word.Reset()
		}
	}

	for n := 0; n < len(line); n++ {
		ch := line[n]
		switch ch {
		case ';':
			flush()
			return
		case ' ', '\t', '\r':
			flush()
		case ',', '+', '-':
			flush()
			words = append(words, string(ch))
		case '\'', '"':
			end := n + 1
			for ; end < len(line); end++ {
				if line[end] == '\\' {
					end++
					continue
				}
				if line[end] == ch {
					break
				}
			}
			if end >= len(line) {
				err = ErrQuoteUnterminated
				return
			}
			word.WriteString(line[n : end+1])
			n = end
		case '$':
			if n+1 < len(line) && line[n+1] == '(' {
				depth := 0
				end := n + 1
				for ; end < len(line); end++ {
					if line[end] == '(' {
						depth++
					} else if line[end] == ')' {
						depth--
						if depth == 0 {
							break
						}
					}
				}
				if end >= len(line) {
					err = ErrParenUnbalanced
					return
				}
				flush()
				words = append(words, line[n:end+1])
				n = end
				continue
			}
			word.WriteByte(ch)
		default:
			word.WriteByte(ch)
		}
	}

	flush()

	return
}

// unescape replaces the backslash escapes of a quoted literal.
func unescape(text string) (out string, ok bool) {
	var sb strings.Builder
	for n := 0; n < len(text); n++ {
		ch := text[n]
		if ch != '\\' {
			sb.WriteByte(ch)
			continue
		}
		n++
		if n >= len(text) {
			return
		}
		switch text[n] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case '0':
			sb.WriteByte(0)
		case '\\', '\'', '"':
			sb.WriteByte(text[n])
		default:
			return
		}
	}
	return sb.String(), true
}

// parseNumber parses the numeric literal forms NNH, 0xNN, #NN, $NN, 0bNN and decimal.
func parseNumber(word string) (value int, ok bool) {
	var digits string
	base := 10

	switch {
	case reHexH.MatchString(word):
		digits, base = word[:len(word)-1], 16
	case reHex0x.MatchString(word):
		digits, base = word[2:], 16
	case reHexMark.MatchString(word):
		digits, base = word[1:], 16
	case reBinary.MatchString(word):
		digits, base = word[2:], 2
	case reDecimal.MatchString(word):
		digits = word
	default:
		return
	}

	v64, err := strconv.ParseInt(digits, base, 32)
	if err != nil {
		return
	}

	return int(v64), true
}

// reserved returns true if a name would not be read back as a symbol:
// keywords, and words that parse as NNH numbers.
func reserved(name string) bool {
	upper := strings.ToUpper(name)
	if _, ok := mnemonicArity[upper]; ok {
		return true
	}
	return registerNames[upper] || pairNames[upper] || directives[upper] || reHexH.MatchString(name)
}

// classify converts a word into a token.
func classify(word string) (tok Token, err error) {
	upper := strings.ToUpper(word)

	if arity, ok := mnemonicArity[upper]; ok {
		tok = Token{Kind: TOKEN_OPCODE0 + TokenKind(arity), Text: upper}
		return
	}

	switch {
	case registerNames[upper]:
		tok = Token{Kind: TOKEN_REGISTER, Text: upper}
	case pairNames[upper]:
		tok = Token{Kind: TOKEN_PAIR, Text: upper}
	case word == ",":
		tok = Token{Kind: TOKEN_COMMA, Text: word}
	case word == "+":
		tok = Token{Kind: TOKEN_PLUS, Text: word}
	case word == "-":
		tok = Token{Kind: TOKEN_MINUS, Text: word}
	case directives[upper]:
		tok = Token{Kind: TOKEN_DIRECTIVE, Text: upper}
	case strings.HasSuffix(word, ":") && reSymbol.MatchString(word[:len(word)-1]):
		name := word[:len(word)-1]
		if reserved(name) {
			err = ErrLabelReserved(name)
			return
		}
		tok = Token{Kind: TOKEN_LABEL, Text: name}
	case word == "$":
		tok = Token{Kind: TOKEN_LOCATION, Text: word}
	case strings.HasPrefix(word, "$(") && strings.HasSuffix(word, ")"):
		tok = Token{Kind: TOKEN_EXPRESSION, Text: word[2 : len(word)-1]}
	case len(word) >= 2 && word[0] == '\'' && word[len(word)-1] == '\'':
		text, ok := unescape(word[1 : len(word)-1])
		if !ok || len(text) != 1 {
			err = ErrParseCharacter(word)
			return
		}
		tok = Token{Kind: TOKEN_CHAR, Text: word, Value: int(text[0])}
	case len(word) >= 2 && word[0] == '"' && word[len(word)-1] == '"':
		text, ok := unescape(word[1 : len(word)-1])
		if !ok {
			err = ErrTokenUnknown(word)
			return
		}
		tok = Token{Kind: TOKEN_STRING, Text: text}
	default:
		if value, ok := parseNumber(word); ok {
			tok = Token{Kind: TOKEN_NUMBER, Text: word, Value: value}
			return
		}
		if reSymbol.MatchString(word) {
			tok = Token{Kind: TOKEN_SYMBOL, Text: word}
			return
		}
		err = ErrTokenUnknown(word)
	}

	return
}

// Lex tokenizes a single source line.
func Lex(line string) (tokens []Token, err error) {
	words, err := split(line)
	if err != nil {
		return
	}

	for _, word := range words {
		var tok Token
		tok, err = classify(word)
		if err != nil {
			tokens = nil
			return
		}
		tokens = append(tokens, tok)
	}

	return
}
