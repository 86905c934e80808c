package cpu

import (
	"cmp"
	"regexp"
	"slices"
	"strings"
)

// Symbol is a label and the source lines that refer to it.
type Symbol struct {
	Name       string // Label name.
	Addr       uint16 // Bound address.
	LineNo     int    // Line defining the label.
	References []int  // Lines referring to the label, in order.
}

// Unused returns true if nothing refers to the label.
func (sym Symbol) Unused() bool {
	return len(sym.References) == 0
}

var reIdentifier = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// Symbols returns the labels of a program ordered by address, then by
// name, with their cross references. References inside $(...)
// expressions are included.
func Symbols(prog *Program) (syms []Symbol) {
	defs := map[string]int{}
	refs := map[string][]int{}

	for n, line := range prog.Source {
		tokens, err := Lex(line)
		if err != nil {
			continue
		}

		seen := map[string]bool{}
		for _, tok := range tokens {
			var names []string
			switch tok.Kind {
			case TOKEN_LABEL:
				if _, ok := defs[tok.Text]; !ok {
					defs[tok.Text] = n + 1
				}
			case TOKEN_SYMBOL:
				names = []string{tok.Text}
			case TOKEN_EXPRESSION:
				names = reIdentifier.FindAllString(tok.Text, -1)
			}

			for _, name := range names {
				if _, ok := prog.Labels[name]; !ok || seen[name] {
					continue
				}
				seen[name] = true
				refs[name] = append(refs[name], n+1)
			}
		}
	}

	for name, addr := range prog.Labels {
		syms = append(syms, Symbol{
			Name:       name,
			Addr:       addr,
			LineNo:     defs[name],
			References: refs[name],
		})
	}

	slices.SortFunc(syms, func(a, b Symbol) int {
		return cmp.Or(cmp.Compare(a.Addr, b.Addr), strings.Compare(a.Name, b.Name))
	})

	return
}
