package dice

import (
	"go.uber.org/zap"
)

// Mode selects how a d20 is rolled.
type Mode int

const (
	Normal Mode = iota
	Advantage
	Disadvantage
)

func (m Mode) String() string {
	switch m {
	case Advantage:
		return "advantage"
	case Disadvantage:
		return "disadvantage"
	default:
		return "normal"
	}
}

// D20Result is a resolved d20 roll, preserving every face rolled so callers
// can report both dice under advantage or disadvantage.
type D20Result struct {
	Mode  Mode
	Rolls []int
	Value int
}

// Natural20 reports whether the kept die landed on 20.
func (r D20Result) Natural20() bool { return r.Value == 20 }

// Natural1 reports whether the kept die landed on 1.
func (r D20Result) Natural1() bool { return r.Value == 1 }

// Roller wraps a Source with structured logging so every roll in a combat
// leaves an audit trail.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewRoller builds a Roller.  A nil logger disables roll logging.
func NewRoller(src Source, logger *zap.Logger) *Roller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Roller{src: src, logger: logger}
}

// Source exposes the underlying randomness source for callers that roll
// raw dice pools directly.
func (r *Roller) Source() Source { return r.src }

// RollD20 rolls a d20 under the given mode.  Advantage keeps the higher of
// two dice, disadvantage the lower.  When a caller holds both advantage and
// disadvantage they cancel: pass Normal.
func (r *Roller) RollD20(mode Mode) D20Result {
	first := RollDie(r.src, 20)
	result := D20Result{Mode: mode, Rolls: []int{first}, Value: first}
	if mode != Normal {
		second := RollDie(r.src, 20)
		result.Rolls = append(result.Rolls, second)
		if mode == Advantage && second > first || mode == Disadvantage && second < first {
			result.Value = second
		}
	}
	r.logger.Debug("rolled d20",
		zap.String("mode", mode.String()),
		zap.Ints("rolls", result.Rolls),
		zap.Int("value", result.Value),
	)
	return result
}

// RollExpression parses and resolves standard dice notation.
func (r *Roller) RollExpression(expr string) (RollResult, error) {
	n, err := Parse(expr)
	if err != nil {
		return RollResult{}, err
	}
	result := n.Roll(r.src)
	r.logger.Debug("rolled expression",
		zap.String("expression", expr),
		zap.Ints("dice", result.Dice),
		zap.Int("modifier", result.Modifier),
		zap.Int("total", result.Total()),
	)
	return result, nil
}

// ResolveMode collapses advantage and disadvantage flags into a Mode.
// Holding both yields Normal: a single straight roll.
func ResolveMode(advantage, disadvantage bool) Mode {
	switch {
	case advantage == disadvantage:
		return Normal
	case advantage:
		return Advantage
	default:
		return Disadvantage
	}
}
