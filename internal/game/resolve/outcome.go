// Package resolve turns declared actions into rolled outcomes: attack rolls
// against AC, saving throws and skill checks against DCs, contested checks,
// and the damage-application pipeline with resistance, vulnerability and
// immunity stacking.
package resolve

// Outcome classifies an attack roll.
type Outcome int

const (
	CriticalMiss Outcome = iota
	Miss
	Hit
	CriticalHit
)

func (o Outcome) String() string {
	switch o {
	case CriticalMiss:
		return "CriticalMiss"
	case Miss:
		return "Miss"
	case Hit:
		return "Hit"
	case CriticalHit:
		return "CriticalHit"
	default:
		return "Unknown"
	}
}

// IsHit reports whether the outcome connects.
func (o Outcome) IsHit() bool { return o == Hit || o == CriticalHit }

// ContestOutcome classifies a contested check.
type ContestOutcome int

const (
	ContestLoss ContestOutcome = iota
	ContestTie
	ContestWin
)

func (o ContestOutcome) String() string {
	switch o {
	case ContestWin:
		return "Win"
	case ContestTie:
		return "Tie"
	default:
		return "Loss"
	}
}
