package stats

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/arbiterhq/arbiter/internal/content"
	"github.com/arbiterhq/arbiter/internal/game/creature"
	"github.com/arbiterhq/arbiter/internal/game/formula"
)

// Armor/shield slot names in the equipped-item map.
const (
	SlotArmor  = "armor"
	SlotShield = "shield"
)

// ACResult is the armor-class computation with its audit trail.
type ACResult struct {
	Base      int
	Final     int
	Breakdown string
}

// ComputeAC derives the creature's current armor class.
//
// Unarmored: 10 + DEX modifier.  Armored: the armor's base AC plus DEX
// capped at the armor's max-DEX bonus (nil cap = uncapped).  A shield adds
// its flat bonus.  Active ARMOR_CLASS bonus effects add on top.
// SET_BASE_AC effects apply only when unarmored and only when their value
// beats the current base; among several, the last higher value wins.
func ComputeAC(s *creature.State, store *content.Store, logger *zap.Logger) ACResult {
	dexMod, _ := s.AbilityMod("DEX")
	var trail []string

	base := 10 + dexMod
	armored := false
	trail = append(trail, fmt.Sprintf("unarmored 10%+d DEX", dexMod))

	if armorID, ok := s.EquippedItems[SlotArmor]; ok && armorID != "" {
		item, err := store.Item(armorID)
		if err != nil || item.Armor == nil {
			if logger != nil {
				logger.Warn("equipped armor has no armor definition",
					zap.String("creature", s.ID),
					zap.String("item", armorID),
				)
			}
		} else {
			armored = true
			dex := dexMod
			if limit := item.Armor.MaxDexBonus; limit != nil && dex > *limit {
				dex = *limit
			}
			base = item.Armor.BaseAC + dex
			trail = []string{fmt.Sprintf("%s %d%+d DEX", item.Name, item.Armor.BaseAC, dex)}
		}
	}

	if !armored {
		for i := range s.ActiveEffects {
			e := &s.ActiveEffects[i]
			if e.Effect.Type != content.EffectSetBaseAC || e.Effect.ACFormula == "" {
				continue
			}
			v, err := formula.EvalInt(e.Effect.ACFormula, &formula.Context{Actor: s})
			if err != nil {
				if logger != nil {
					logger.Warn("base AC formula failed, keeping current base",
						zap.String("creature", s.ID),
						zap.String("formula", e.Effect.ACFormula),
						zap.Error(err),
					)
				}
				continue
			}
			if v > base {
				base = v
				trail = []string{fmt.Sprintf("base AC override %d (%s)", v, e.SourceDefinitionID)}
			}
		}
	}

	final := base
	if shieldID, ok := s.EquippedItems[SlotShield]; ok && shieldID != "" {
		item, err := store.Item(shieldID)
		if err == nil && item.Shield != nil {
			final += item.Shield.ACBonus
			trail = append(trail, fmt.Sprintf("%s %+d", item.Name, item.Shield.ACBonus))
		}
	}

	if bonus := bonusEffectsFor(s, content.ScopeArmorClass); bonus != 0 {
		final += bonus
		trail = append(trail, fmt.Sprintf("effects %+d", bonus))
	}

	return ACResult{
		Base:      base,
		Final:     final,
		Breakdown: strings.Join(trail, ", "),
	}
}
