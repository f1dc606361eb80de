// Package formula evaluates the small arithmetic expression language used by
// definitions for attack bonuses, save DCs, AC overrides and effect amounts.
// Expressions combine numbers, named game variables (ABILITY_MODIFIER:STR,
// PROFICIENCY_BONUS, TARGET_AC, ...) and the functions MAX, MIN, FLOOR,
// CEIL, ROUND and ABS with the four arithmetic operators and parentheses.
//
// Parsing is two-phase: a structured tokenizer, then shunting-yard to RPN
// and a stack evaluation.  Variable names are matched as whole tokens, never
// by substring substitution.
package formula

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokIdent
	tokOperator
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind  tokenKind
	text  string
	value float64
}

// tokenize splits an expression into tokens.  Identifiers are upper-case
// names with optional underscores and an optional ":QUALIFIER" suffix
// (e.g. ABILITY_MODIFIER:STR, CLASS_LEVEL:WIZARD).
func tokenize(expr string) ([]token, error) {
	var toks []token
	runes := []rune(expr)
	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r >= '0' && r <= '9' || r == '.':
			j := i
			for j < len(runes) && (runes[j] >= '0' && runes[j] <= '9' || runes[j] == '.') {
				j++
			}
			text := string(runes[i:j])
			v, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %q", ErrUnknownToken, text)
			}
			toks = append(toks, token{kind: tokNumber, text: text, value: v})
			i = j
		case unicode.IsLetter(r) || r == '_':
			j := i
			for j < len(runes) && (unicode.IsLetter(runes[j]) || unicode.IsDigit(runes[j]) || runes[j] == '_') {
				j++
			}
			// Optional qualifier: ABILITY_MODIFIER:STR
			if j < len(runes) && runes[j] == ':' {
				j++
				for j < len(runes) && (unicode.IsLetter(runes[j]) || unicode.IsDigit(runes[j]) || runes[j] == '_') {
					j++
				}
			}
			toks = append(toks, token{kind: tokIdent, text: strings.ToUpper(string(runes[i:j]))})
			i = j
		case r == '+' || r == '-' || r == '*' || r == '/':
			toks = append(toks, token{kind: tokOperator, text: string(r)})
			i++
		case r == '(':
			toks = append(toks, token{kind: tokLParen, text: "("})
			i++
		case r == ')':
			toks = append(toks, token{kind: tokRParen, text: ")"})
			i++
		case r == ',':
			toks = append(toks, token{kind: tokComma, text: ","})
			i++
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownToken, string(r))
		}
	}
	return toks, nil
}
