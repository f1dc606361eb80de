package dice

import (
	"fmt"
	"strings"
)

// RollResult records a resolved dice expression: the individual die faces,
// the flat modifier, and the expression that produced them.
type RollResult struct {
	Expression string
	Dice       []int
	Modifier   int
}

// Total returns the sum of all dice plus the modifier.
func (r RollResult) Total() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// String renders the result for logs and combat transcripts,
// e.g. "2d6+3 → [4 5] +3 = 12".
func (r RollResult) String() string {
	var b strings.Builder
	b.WriteString(r.Expression)
	b.WriteString(" → [")
	for i, d := range r.Dice {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%d", d)
	}
	b.WriteByte(']')
	if r.Modifier > 0 {
		fmt.Fprintf(&b, " +%d", r.Modifier)
	} else if r.Modifier < 0 {
		fmt.Fprintf(&b, " %d", r.Modifier)
	}
	fmt.Fprintf(&b, " = %d", r.Total())
	return b.String()
}

// RollDie rolls a single die with the given number of sides.
// Postcondition: result in [1, sides]; a degenerate die (sides <= 0)
// always yields 0.
func RollDie(src Source, sides int) int {
	if sides < 1 {
		return 0
	}
	return src.Intn(sides) + 1
}

// Roll rolls count dice of the given sides and applies a flat modifier.
// Precondition: count >= 0 and sides >= 1.
func Roll(src Source, count, sides, modifier int) RollResult {
	faces := make([]int, 0, count)
	for i := 0; i < count; i++ {
		faces = append(faces, RollDie(src, sides))
	}
	expr := fmt.Sprintf("%dd%d", count, sides)
	if modifier > 0 {
		expr = fmt.Sprintf("%s+%d", expr, modifier)
	} else if modifier < 0 {
		expr = fmt.Sprintf("%s%d", expr, modifier)
	}
	return RollResult{Expression: expr, Dice: faces, Modifier: modifier}
}
