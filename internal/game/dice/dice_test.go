package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/arbiterhq/arbiter/internal/game/dice"
)

func TestRollDieBounds(t *testing.T) {
	src := dice.NewCryptoSource()
	rapid.Check(t, func(t *rapid.T) {
		sides := rapid.IntRange(1, 100).Draw(t, "sides")
		v := dice.RollDie(src, sides)
		assert.GreaterOrEqual(t, v, 1)
		assert.LessOrEqual(t, v, sides)
	})
}

func TestRollTotals(t *testing.T) {
	src := dice.NewSequenceSource(3, 4) // faces 4 and 5
	result := dice.Roll(src, 2, 6, 3)
	assert.Equal(t, []int{4, 5}, result.Dice)
	assert.Equal(t, 12, result.Total())
	assert.Equal(t, "2d6+3 → [4 5] +3 = 12", result.String())
}

func TestParse(t *testing.T) {
	cases := []struct {
		expr string
		want dice.Notation
	}{
		{"2d6+3", dice.Notation{Count: 2, Sides: 6, Modifier: 3}},
		{"d20", dice.Notation{Count: 1, Sides: 20}},
		{"1d8-1", dice.Notation{Count: 1, Sides: 8, Modifier: -1}},
		{"10", dice.Notation{Modifier: 10}},
		{" 2d6 + 3 ", dice.Notation{Count: 2, Sides: 6, Modifier: 3}},
	}
	for _, c := range cases {
		got, err := dice.Parse(c.expr)
		require.NoError(t, err, c.expr)
		assert.Equal(t, c.want, got, c.expr)
	}

	for _, bad := range []string{"", "d", "2d", "x", "2d6+", "d0"} {
		_, err := dice.Parse(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := dice.Notation{
			Count:    rapid.IntRange(1, 20).Draw(t, "count"),
			Sides:    rapid.IntRange(1, 100).Draw(t, "sides"),
			Modifier: rapid.IntRange(-10, 10).Draw(t, "modifier"),
		}
		parsed, err := dice.Parse(n.String())
		require.NoError(t, err)
		assert.Equal(t, n, parsed)
	})
}

func TestRollD20Advantage(t *testing.T) {
	roller := dice.NewRoller(dice.NewSequenceSource(2, 17), nil) // faces 3 and 18
	result := roller.RollD20(dice.Advantage)
	assert.Equal(t, []int{3, 18}, result.Rolls)
	assert.Equal(t, 18, result.Value)
}

func TestRollD20Disadvantage(t *testing.T) {
	roller := dice.NewRoller(dice.NewSequenceSource(2, 17), nil)
	result := roller.RollD20(dice.Disadvantage)
	assert.Equal(t, []int{3, 18}, result.Rolls)
	assert.Equal(t, 3, result.Value)
}

func TestRollD20Normal(t *testing.T) {
	roller := dice.NewRoller(dice.NewSequenceSource(19), nil)
	result := roller.RollD20(dice.Normal)
	assert.Equal(t, []int{20}, result.Rolls)
	assert.True(t, result.Natural20())
}

func TestResolveMode(t *testing.T) {
	assert.Equal(t, dice.Normal, dice.ResolveMode(false, false))
	assert.Equal(t, dice.Normal, dice.ResolveMode(true, true))
	assert.Equal(t, dice.Advantage, dice.ResolveMode(true, false))
	assert.Equal(t, dice.Disadvantage, dice.ResolveMode(false, true))
}

func TestAdvantageNeverWorse(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.IntRange(0, 19).Draw(t, "a")
		b := rapid.IntRange(0, 19).Draw(t, "b")
		adv := dice.NewRoller(dice.NewSequenceSource(a, b), nil).RollD20(dice.Advantage)
		dis := dice.NewRoller(dice.NewSequenceSource(a, b), nil).RollD20(dice.Disadvantage)
		assert.GreaterOrEqual(t, adv.Value, dis.Value)
	})
}
