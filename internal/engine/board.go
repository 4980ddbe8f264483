package engine

import (
	"encoding/json"
	"errors"

	"github.com/google/uuid"
)

// Board geometry. The start cell sits near the left edge, the three goal
// cells in a column seven cards to its right.
const (
	BoardWidth  = 13
	BoardHeight = 9
	StartX      = 2
	StartY      = 4
	GoalX       = 10
)

// GoalYs are the rows of the three goal cells.
var GoalYs = [3]int{2, 4, 6}

// Placement validation failures. All are non-fatal: a rejected placement
// leaves the board untouched and the reason travels back to the player.
var (
	ErrOutOfBounds = errors.New("position is outside the board")
	ErrOccupied    = errors.New("a card is already placed there")
	ErrMismatch    = errors.New("tunnel sides do not match")
	ErrNoNeighbor  = errors.New("no adjacent card to attach to")
	ErrUnreachable = errors.New("not connected to the start tunnel")
)

// Point is a board coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Cell is one occupied grid position: a path card plus its orientation.
type Cell struct {
	Card     *Card `json:"card"`
	Reversed bool  `json:"isReversed"`
}

// shape returns the card's shape in board orientation.
func (c *Cell) shape() Shape {
	return c.Card.Shape.Rotated(c.Reversed)
}

// Board owns the grid, the start cell, and the three goal cells. All
// placement goes through Validate/Place; Remove is the unconditional
// clear used by rockfall and dynamite (start/goal protection is the
// caller's rule, not the board's).
type Board struct {
	cells [BoardWidth * BoardHeight]*Cell
	rng   *RNG
}

// NewBoard returns a board initialized for a fresh round: start card
// placed, goal bindings shuffled so exactly one of the three is GOLD.
func NewBoard(rng *RNG) *Board {
	b := &Board{rng: rng}
	b.Reset()
	return b
}

// Reset clears the grid and re-seeds the start and goal cells with a new
// random GOLD assignment.
func (b *Board) Reset() {
	for i := range b.cells {
		b.cells[i] = nil
	}

	start := &Card{
		ID:      uuid.New(),
		Kind:    KindPath,
		Shape:   Shape{Top: true, Bottom: true, Left: true, Right: true, Center: true},
		IsStart: true,
	}
	b.cells[StartX+StartY*BoardWidth] = &Cell{Card: start}

	goals := [3]GoalKind{GoalGold, GoalStone, GoalStone}
	b.rng.Shuffle(len(goals), func(i, j int) {
		goals[i], goals[j] = goals[j], goals[i]
	})

	for i, gy := range GoalYs {
		goal := &Card{
			ID:   uuid.New(),
			Kind: KindPath,
			// Placeholder shape until reveal; unrevealed goals accept any
			// adjacent connection.
			Shape:  Shape{Top: true, Bottom: true, Left: true, Right: true, Center: true},
			IsGoal: true,
			Goal:   goals[i],
		}
		b.cells[GoalX+gy*BoardWidth] = &Cell{Card: goal}
	}
}

func (b *Board) inBounds(x, y int) bool {
	return x >= 0 && x < BoardWidth && y >= 0 && y < BoardHeight
}

// At returns the cell at (x,y), or nil if empty or out of bounds.
func (b *Board) At(x, y int) *Cell {
	if !b.inBounds(x, y) {
		return nil
	}
	return b.cells[x+y*BoardWidth]
}

// Remove clears the cell at (x,y). No-op out of bounds.
func (b *Board) Remove(x, y int) {
	if !b.inBounds(x, y) {
		return
	}
	b.cells[x+y*BoardWidth] = nil
}

// Validate answers whether card can be legally placed at (x,y) with the
// given orientation. Check order: bounds, occupancy, side matching
// against every occupied neighbor (skipped for unrevealed goals, which
// stay plastic until reveal), must-attach, and finally the load-bearing
// rule — at least one mutually connected, passable neighbor that is
// itself reachable from the start.
func (b *Board) Validate(x, y int, card *Card, reversed bool) error {
	if !b.inBounds(x, y) {
		return ErrOutOfBounds
	}
	if b.At(x, y) != nil {
		return ErrOccupied
	}

	myShape := card.Shape.Rotated(reversed)
	hasNeighbor := false

	for _, dir := range Directions {
		dx, dy := dir.Delta()
		neighbor := b.At(x+dx, y+dy)
		if neighbor == nil {
			continue
		}
		hasNeighbor = true

		if neighbor.Card.IsGoal && !neighbor.Card.Revealed {
			continue
		}
		if myShape.Open(dir) != neighbor.shape().Open(dir.Opposite()) {
			return ErrMismatch
		}
	}

	if !hasNeighbor {
		return ErrNoNeighbor
	}

	for _, dir := range Directions {
		dx, dy := dir.Delta()
		nx, ny := x+dx, y+dy
		neighbor := b.At(nx, ny)
		if neighbor == nil {
			continue
		}
		nShape := neighbor.shape()
		if !myShape.Open(dir) || !nShape.Open(dir.Opposite()) {
			continue
		}
		// A dead end connects but cannot be extended through. The start
		// cell is always a valid anchor.
		if !nShape.Center && !neighbor.Card.IsStart {
			continue
		}
		if b.reachableFromStart(nx, ny) {
			return nil
		}
	}
	return ErrUnreachable
}

// Place validates and, on success, occupies (x,y) with the card.
func (b *Board) Place(x, y int, card *Card, reversed bool) error {
	if err := b.Validate(x, y, card, reversed); err != nil {
		return err
	}
	b.cells[x+y*BoardWidth] = &Cell{Card: card, Reversed: reversed}
	return nil
}

// reachableFromStart walks the placed tunnel network from the start cell
// and reports whether (tx,ty) is on it. Cells without a passable center
// block traversal unless they are the start or a goal; unrevealed goals
// are walls except when they are the target itself.
func (b *Board) reachableFromStart(tx, ty int) bool {
	if tx == StartX && ty == StartY {
		return true
	}

	queue := []Point{{StartX, StartY}}
	visited := map[Point]bool{{StartX, StartY}: true}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if cur.X == tx && cur.Y == ty {
			return true
		}

		cell := b.At(cur.X, cur.Y)
		if cell == nil {
			continue
		}
		shape := cell.shape()
		if !shape.Center && !cell.Card.IsStart && !cell.Card.IsGoal {
			continue
		}

		for _, dir := range Directions {
			if !shape.Open(dir) {
				continue
			}
			dx, dy := dir.Delta()
			n := Point{cur.X + dx, cur.Y + dy}
			if visited[n] || !b.inBounds(n.X, n.Y) {
				continue
			}
			neighbor := b.At(n.X, n.Y)
			if neighbor == nil {
				continue
			}

			if neighbor.Card.IsGoal && !neighbor.Card.Revealed {
				// Can reach an unrevealed goal, never pass through it.
				if n.X == tx && n.Y == ty && neighbor.shape().Open(dir.Opposite()) {
					return true
				}
				continue
			}

			if neighbor.shape().Open(dir.Opposite()) {
				visited[n] = true
				queue = append(queue, n)
			}
		}
	}
	return false
}

// ReachableGoals returns the unrevealed goal cells currently connected to
// the start network. Revealed goals are traversed like ordinary tunnel.
func (b *Board) ReachableGoals() []Point {
	queue := []Point{{StartX, StartY}}
	visited := map[Point]bool{{StartX, StartY}: true}
	var reached []Point

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		cell := b.At(cur.X, cur.Y)
		if cell == nil {
			continue
		}
		shape := cell.shape()
		if !shape.Center && !cell.Card.IsStart && !cell.Card.IsGoal {
			continue
		}

		for _, dir := range Directions {
			dx, dy := dir.Delta()
			n := Point{cur.X + dx, cur.Y + dy}
			if visited[n] || !b.inBounds(n.X, n.Y) {
				continue
			}
			neighbor := b.At(n.X, n.Y)
			if neighbor == nil {
				continue
			}
			if !shape.Open(dir) || !neighbor.shape().Open(dir.Opposite()) {
				continue
			}

			visited[n] = true
			if neighbor.Card.IsGoal && !neighbor.Card.Revealed {
				reached = append(reached, n)
			} else {
				queue = append(queue, n)
			}
		}
	}
	return reached
}

// PeekGoal returns the hidden binding of the goal at (x,y) without
// revealing it (the map card's private answer).
func (b *Board) PeekGoal(x, y int) (GoalKind, bool) {
	cell := b.At(x, y)
	if cell == nil || !cell.Card.IsGoal {
		return GoalStone, false
	}
	return cell.Card.Goal, true
}

// RevealGoal finalizes the goal at (x,y): its sides are forced to match
// every occupied neighbor, unconstrained sides are coin-flipped, and the
// cell becomes ordinary passable tunnel. Returns the bound kind.
func (b *Board) RevealGoal(x, y int) (GoalKind, bool) {
	cell := b.At(x, y)
	if cell == nil || !cell.Card.IsGoal {
		return GoalStone, false
	}

	shape := Shape{Center: true}
	for _, dir := range Directions {
		dx, dy := dir.Delta()
		neighbor := b.At(x+dx, y+dy)
		if neighbor != nil {
			if neighbor.shape().Open(dir.Opposite()) {
				shape.setOpen(dir, true)
			}
		} else if b.rng.Float64() > 0.5 {
			shape.setOpen(dir, true)
		}
	}

	cell.Card.Shape = shape
	cell.Reversed = false
	cell.Card.Revealed = true
	return cell.Card.Goal, true
}

// MarshalJSON emits the grid as a flat row-major array (index x+y*width),
// the layout the client renders directly.
func (b *Board) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Grid   []*Cell `json:"grid"`
		Width  int     `json:"gridWidth"`
		Height int     `json:"gridHeight"`
	}{b.cells[:], BoardWidth, BoardHeight})
}

// CrystalCount counts crystal-bearing cards currently placed on the
// board; the geologist reward is derived from it.
func (b *Board) CrystalCount() int {
	n := 0
	for _, cell := range b.cells {
		if cell != nil && cell.Card.HasCrystal {
			n++
		}
	}
	return n
}
