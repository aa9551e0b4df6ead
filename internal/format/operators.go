package format

import (
	"slices"
	"strings"
)

// operatorTable maps a leading character to every operator spelling that
// starts with it, longest first. '-' deliberately has no bare entry: a lone
// minus is resolved by the unary check in the dispatcher.
var operatorTable = buildOperatorTable(map[byte][]string{
	'+': {"+=<", "+=", "+++=", "+++", "+"},
	'-': {"->", "-=", "-<<"},
	'*': {"*=", "*"},
	'/': {"/=", "/"},
	'~': {"~=", "~~>", "~>"},
	'%': {"%=", "%"},
	'^': {"^="},
	'&': {"&&=", "&&&", "&&", "&=", "&+", "&-", "&*", "&/", "&%"},
	'<': {"<<<", "<<=", "<<", "<=", "<~~", "<~", "<--", "<-<", "<-", "<^>", "<|>", "<*>", "<||?", "<||", "<|?", "<|", "<"},
	'>': {">>>", ">>=", ">>-", ">>", ">=", ">->", ">"},
	'|': {"|||", "||=", "||", "|=", "|"},
	'!': {"!==", "!="},
	'=': {"===", "==", "="},
})

func buildOperatorTable(src map[byte][]string) map[byte][]string {
	out := make(map[byte][]string, len(src))
	for lead, ops := range src {
		sorted := slices.Clone(ops)
		slices.SortStableFunc(sorted, func(a, b string) int {
			return len(b) - len(a)
		})
		out[lead] = sorted
	}
	return out
}

// matchOperator returns the longest operator from the table that starts at
// src[pos:].
func matchOperator(src string, pos int) (string, bool) {
	if pos >= len(src) {
		return "", false
	}
	for _, op := range operatorTable[src[pos]] {
		if strings.HasPrefix(src[pos:], op) {
			return op, true
		}
	}
	return "", false
}

// Operators returns a copy of the operator spellings registered for lead,
// longest first.
func Operators(lead byte) []string {
	return slices.Clone(operatorTable[lead])
}

// negativeCheckSigns are the characters after which '-' is a sign, not a
// binary operator.
const negativeCheckSigns = "+-*/&|^<>:([{=,.?"

// negativeCheckKeys are the words that expect an expression next.
var negativeCheckKeys = []string{"case", "return", "if", "for", "while", "in"}
