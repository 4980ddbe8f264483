package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func horizontal() *Card {
	return NewPathCard(Shape{Left: true, Right: true, Center: true})
}

func vertical() *Card {
	return NewPathCard(Shape{Top: true, Bottom: true, Center: true})
}

func cross() *Card {
	return NewPathCard(Shape{Top: true, Bottom: true, Left: true, Right: true, Center: true})
}

// digCorridor places horizontal cards from (3,4) up to (toX,4).
func digCorridor(t *testing.T, b *Board, toX int) {
	t.Helper()
	for x := 3; x <= toX; x++ {
		require.NoError(t, b.Place(x, 4, horizontal(), false), "corridor segment at (%d,4) should be legal", x)
	}
}

func TestFreshBoardLayout(t *testing.T) {
	b := NewBoard(NewRNG(42))

	start := b.At(StartX, StartY)
	require.NotNil(t, start, "start cell must be pre-placed")
	assert.True(t, start.Card.IsStart)

	goldCount := 0
	for _, gy := range GoalYs {
		goal := b.At(GoalX, gy)
		require.NotNil(t, goal, "goal cell at (%d,%d) must be pre-placed", GoalX, gy)
		assert.True(t, goal.Card.IsGoal)
		assert.False(t, goal.Card.Revealed)
		if goal.Card.Goal == GoalGold {
			goldCount++
		}
	}
	assert.Equal(t, 1, goldCount, "exactly one goal must be bound to GOLD")

	occupied := 0
	for y := 0; y < BoardHeight; y++ {
		for x := 0; x < BoardWidth; x++ {
			if b.At(x, y) != nil {
				occupied++
			}
		}
	}
	assert.Equal(t, 4, occupied, "fresh board holds only start and goals")
}

func TestGoldAssignmentVariesWithSeed(t *testing.T) {
	seen := map[int]bool{}
	for seed := uint64(1); seed < 64; seed++ {
		b := NewBoard(NewRNG(seed))
		for i, gy := range GoalYs {
			if b.At(GoalX, gy).Card.Goal == GoalGold {
				seen[i] = true
			}
		}
	}
	assert.Len(t, seen, 3, "GOLD should land on every goal slot across seeds")
}

func TestValidateStraightConnection(t *testing.T) {
	b := NewBoard(NewRNG(1))

	assert.NoError(t, b.Validate(3, 4, horizontal(), false),
		"horizontal card adjacent to the start's open side must be legal")
	assert.ErrorIs(t, b.Validate(3, 4, vertical(), false), ErrMismatch,
		"closed side facing the start's open side must be rejected")
}

func TestValidateRejections(t *testing.T) {
	b := NewBoard(NewRNG(1))

	assert.ErrorIs(t, b.Validate(-1, 0, horizontal(), false), ErrOutOfBounds)
	assert.ErrorIs(t, b.Validate(StartX, StartY, horizontal(), false), ErrOccupied)
	assert.ErrorIs(t, b.Validate(6, 0, cross(), false), ErrNoNeighbor,
		"isolated placement must be rejected")
}

func TestReversedOrientation(t *testing.T) {
	b := NewBoard(NewRNG(1))

	// Curve open top+left: unrotated its open left side attaches to the
	// start; reversed it opens bottom+right, closing the side facing the
	// start.
	curve := NewPathCard(Shape{Top: true, Left: true, Center: true})
	assert.NoError(t, b.Validate(3, 4, curve, false))
	assert.ErrorIs(t, b.Validate(3, 4, curve, true), ErrMismatch,
		"reversed curve closes the side facing the start")

	// Curve open top+right reversed becomes bottom+left: left matches the
	// start, bottom faces empty space.
	curve2 := NewPathCard(Shape{Top: true, Right: true, Center: true})
	assert.NoError(t, b.Validate(3, 4, curve2, true))
}

func TestDeadEndBlocksTraversal(t *testing.T) {
	b := NewBoard(NewRNG(1))
	require.NoError(t, b.Place(3, 4, horizontal(), false))

	deadEnd := NewPathCard(Shape{Left: true, Right: true, DeadEnd: true})
	require.NoError(t, b.Place(4, 4, deadEnd, false), "dead end may be connected to")

	err := b.Validate(5, 4, horizontal(), false)
	assert.ErrorIs(t, err, ErrUnreachable,
		"a path continuing through a dead end's interior is not reachable from the start")
}

func TestPlaceDoesNotMutateOnFailure(t *testing.T) {
	b := NewBoard(NewRNG(1))
	require.Error(t, b.Place(5, 4, horizontal(), false))
	assert.Nil(t, b.At(5, 4), "rejected placement must leave the cell empty")
}

func TestOccupancyInvariant(t *testing.T) {
	b := NewBoard(NewRNG(1))
	require.NoError(t, b.Place(3, 4, horizontal(), false))
	assert.ErrorIs(t, b.Place(3, 4, horizontal(), false), ErrOccupied)
}

func TestCorridorReachesGoal(t *testing.T) {
	b := NewBoard(NewRNG(7))
	digCorridor(t, b, 9)

	reached := b.ReachableGoals()
	require.Len(t, reached, 1)
	assert.Equal(t, Point{GoalX, 4}, reached[0])
}

func TestRevealGoalForcesNeighborSides(t *testing.T) {
	b := NewBoard(NewRNG(7))
	digCorridor(t, b, 9)

	want, ok := b.PeekGoal(GoalX, 4)
	require.True(t, ok)

	got, ok := b.RevealGoal(GoalX, 4)
	require.True(t, ok)
	assert.Equal(t, want, got, "reveal must return the bound kind")

	goal := b.At(GoalX, 4)
	assert.True(t, goal.Card.Revealed)
	assert.True(t, goal.shape().Left, "side facing the corridor must be forced open")
	assert.True(t, goal.shape().Center, "revealed goal becomes passable tunnel")
}

func TestUnrevealedGoalIsNotATunnel(t *testing.T) {
	b := NewBoard(NewRNG(7))
	digCorridor(t, b, 9)

	// Attaching directly against the far side of the unrevealed goal is
	// legal (the goal itself counts as the reachable anchor), but the BFS
	// never traverses through it, so nothing beyond that card can build on.
	require.NoError(t, b.Place(11, 4, horizontal(), false))
	assert.ErrorIs(t, b.Validate(12, 4, horizontal(), false), ErrUnreachable,
		"unrevealed goal must block traversal to cells behind it")
}

func TestRemove(t *testing.T) {
	b := NewBoard(NewRNG(1))
	require.NoError(t, b.Place(3, 4, horizontal(), false))
	b.Remove(3, 4)
	assert.Nil(t, b.At(3, 4))
}

func TestCrystalCount(t *testing.T) {
	b := NewBoard(NewRNG(1))
	card := horizontal()
	card.HasCrystal = true
	require.NoError(t, b.Place(3, 4, card, false))
	assert.Equal(t, 1, b.CrystalCount())
}

func TestRotatedShape(t *testing.T) {
	s := Shape{Top: true, Left: true, Center: true}
	r := s.Rotated(true)
	assert.Equal(t, Shape{Bottom: true, Right: true, Center: true}, r)
	assert.Equal(t, s, s.Rotated(false))
}
