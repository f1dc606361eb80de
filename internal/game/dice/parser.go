package dice

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Notation is a parsed dice expression such as "2d6+3", "d20" or "10".
// A Notation with Count == 0 is a pure constant.
type Notation struct {
	Count    int
	Sides    int
	Modifier int
}

var notationPattern = regexp.MustCompile(`^(\d*)[dD](\d+)([+-]\d+)?$`)

// Parse parses standard dice notation.  Accepted forms:
//
//	"2d6", "d20" (implicit count of 1), "2d6+3", "1d8-1", "10" (constant)
//
// Postcondition: on success the Notation rerolls to the same distribution
// as the input expression; whitespace is ignored.
func Parse(expr string) (Notation, error) {
	s := strings.ReplaceAll(strings.TrimSpace(expr), " ", "")
	if s == "" {
		return Notation{}, fmt.Errorf("dice: empty expression")
	}
	if c, err := strconv.Atoi(s); err == nil {
		return Notation{Modifier: c}, nil
	}
	m := notationPattern.FindStringSubmatch(s)
	if m == nil {
		return Notation{}, fmt.Errorf("dice: malformed expression %q", expr)
	}
	count := 1
	if m[1] != "" {
		var err error
		count, err = strconv.Atoi(m[1])
		if err != nil {
			return Notation{}, fmt.Errorf("dice: malformed count in %q", expr)
		}
	}
	sides, err := strconv.Atoi(m[2])
	if err != nil || sides < 1 {
		return Notation{}, fmt.Errorf("dice: malformed sides in %q", expr)
	}
	modifier := 0
	if m[3] != "" {
		modifier, err = strconv.Atoi(m[3])
		if err != nil {
			return Notation{}, fmt.Errorf("dice: malformed modifier in %q", expr)
		}
	}
	return Notation{Count: count, Sides: sides, Modifier: modifier}, nil
}

// Roll resolves the notation against the given source.  Constants produce a
// RollResult with no dice.
func (n Notation) Roll(src Source) RollResult {
	if n.Count == 0 {
		return RollResult{Expression: strconv.Itoa(n.Modifier), Modifier: n.Modifier}
	}
	return Roll(src, n.Count, n.Sides, n.Modifier)
}

// String renders the notation back to canonical text.
func (n Notation) String() string {
	if n.Count == 0 {
		return strconv.Itoa(n.Modifier)
	}
	s := fmt.Sprintf("%dd%d", n.Count, n.Sides)
	if n.Modifier > 0 {
		s += fmt.Sprintf("+%d", n.Modifier)
	} else if n.Modifier < 0 {
		s += strconv.Itoa(n.Modifier)
	}
	return s
}
