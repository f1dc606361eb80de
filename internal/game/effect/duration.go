// Package effect interprets the parsed effect union: damage, healing,
// conditions, stat bonuses, resistances, AC overrides and timed effects.  It
// owns effect application, condition lifecycles and end-of-turn duration
// expiry.
package effect

import (
	"regexp"
	"strconv"
	"strings"
)

// RoundsPer* convert clock durations to 6-second combat rounds.
const (
	RoundsPerMinute = 10
	RoundsPerHour   = 600
	RoundsPerDay    = 14400

	// DefaultConcentrationRounds applies when a concentration duration
	// names no explicit cap.
	DefaultConcentrationRounds = 10
)

var durationUnits = regexp.MustCompile(`(?i)^(\d+)\s*(round|minute|hour|day)s?$`)

// DurationRounds converts a definition's duration string to a
// remaining-rounds counter.  nil means indefinite (never auto-expired); a
// pointer to 0 means instantaneous (nothing is stored on the creature).
//
//	""                        -> indefinite
//	"instantaneous", "0"      -> 0
//	"3 rounds"                -> 3
//	"1 minute"                -> 10, "1 hour" -> 600, "1 day" -> 14400
//	"concentration"           -> 10 (default cap)
//	"concentration, up to 1 minute" -> 10
//	"until dispelled", "special"    -> indefinite
func DurationRounds(s string) *int {
	text := strings.ToLower(strings.TrimSpace(s))
	switch text {
	case "":
		return nil
	case "instantaneous", "0":
		zero := 0
		return &zero
	case "until dispelled", "special":
		return nil
	}

	if strings.HasPrefix(text, "concentration") {
		rest := strings.TrimPrefix(text, "concentration")
		rest = strings.TrimLeft(rest, " ,")
		rest = strings.TrimPrefix(rest, "up to")
		rest = strings.TrimSpace(rest)
		if rest == "" {
			v := DefaultConcentrationRounds
			return &v
		}
		return DurationRounds(rest)
	}

	if m := durationUnits.FindStringSubmatch(text); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return nil
		}
		switch m[2] {
		case "round":
		case "minute":
			n *= RoundsPerMinute
		case "hour":
			n *= RoundsPerHour
		case "day":
			n *= RoundsPerDay
		}
		return &n
	}

	// Unrecognized shorthand: safest reading is indefinite.
	return nil
}
