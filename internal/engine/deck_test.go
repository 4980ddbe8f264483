package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeckComposition(t *testing.T) {
	deck := NewDeck(NewRNG(99))
	require.Len(t, deck, 85)

	paths, deadEnds, crystals, actions := 0, 0, 0, map[ActionKind]int{}
	for _, c := range deck {
		switch c.Kind {
		case KindPath:
			paths++
			if c.Shape.DeadEnd {
				deadEnds++
			}
			if c.HasCrystal {
				crystals++
			}
		case KindAction:
			actions[c.Action]++
		default:
			t.Fatalf("unexpected card kind %v in draw deck", c.Kind)
		}
	}

	assert.Equal(t, 58, paths, "49 regular plus 9 dead ends")
	assert.Equal(t, 9, deadEnds)
	assert.Equal(t, 12, crystals, "crystals land on path cards only")
	assert.Equal(t, 3, actions[ActionBreakPickaxe])
	assert.Equal(t, 3, actions[ActionBreakLantern])
	assert.Equal(t, 3, actions[ActionBreakCart])
	assert.Equal(t, 2, actions[ActionFixPickaxe])
	assert.Equal(t, 1, actions[ActionFixPickaxeLantern])
	assert.Equal(t, 1, actions[ActionFixAll])
	assert.Equal(t, 4, actions[ActionMap])
	assert.Equal(t, 4, actions[ActionRockfall])
}

func TestNewSpecialDeck(t *testing.T) {
	deck := NewSpecialDeck(DefaultSpecialCounts(), NewRNG(5))
	require.Len(t, deck, 10)

	counts := map[SpecialKind]int{}
	for _, c := range deck {
		require.Equal(t, KindSpecial, c.Kind)
		counts[c.Special]++
	}
	assert.Equal(t, 1, counts[SpecialDynamite])
	assert.Equal(t, 3, counts[SpecialOracle])
	assert.Equal(t, 2, counts[SpecialThief])
	assert.Equal(t, 2, counts[SpecialTrader])
	assert.Equal(t, 1, counts[SpecialScavenger])
	assert.Equal(t, 1, counts[SpecialDoubleAction])
}

func TestFixCoverage(t *testing.T) {
	assert.True(t, ActionFixPickaxeLantern.Fixes(Pickaxe))
	assert.True(t, ActionFixPickaxeLantern.Fixes(Lantern))
	assert.False(t, ActionFixPickaxeLantern.Fixes(Cart))
	assert.True(t, ActionFixAll.Fixes(Cart))
	assert.False(t, ActionBreakCart.Fixes(Cart))
	assert.Equal(t, Cart, ActionBreakCart.BreaksTool())
}
