package bot

import (
	"math"

	"github.com/google/uuid"

	"github.com/umbrella2kasa/ojamamono-online-sub000/internal/engine"
	"github.com/umbrella2kasa/ojamamono-online-sub000/internal/models"
)

func evaluatePlacement(gs *models.GameState, player *models.Player, x, y int, card *engine.Card, reversed bool, difficulty models.BotDifficulty, rng *engine.RNG) float64 {
	switch difficulty {
	case models.DifficultyEasy:
		return rng.Float64() * 100
	case models.DifficultyNormal:
		return evaluateNormal(player, x, y, card, rng)
	default:
		return evaluateHard(gs, player, x, y, card, reversed, rng)
	}
}

// evaluateNormal is the mid-tier static heuristic: push right toward the
// goals, avoid (or as saboteur, prefer) dead ends, no board search.
func evaluateNormal(player *models.Player, x, y int, card *engine.Card, rng *engine.RNG) float64 {
	score := 0.0
	goalRow := y == 2 || y == 4 || y == 6

	switch player.Role {
	case models.RoleGoldDigger, models.RoleSelfishDwarf:
		score += float64(x) * 10
		if card.Shape.DeadEnd {
			score -= 50
		}
		if x >= 8 && goalRow {
			score += 100
		}
	case models.RoleSaboteur:
		score -= float64(x) * 10
		if card.Shape.DeadEnd {
			score += 50
		}
		if x >= 8 && goalRow {
			score += 50
		}
	case models.RoleGeologist:
		if card.HasCrystal {
			score += 50
		}
		score += float64(x) * 5
	}
	return score + rng.Float64()*5
}

// evaluateHard compares the board cost function before and after a
// hypothetical placement and weights the difference by role.
func evaluateHard(gs *models.GameState, player *models.Player, x, y int, card *engine.Card, reversed bool, rng *engine.RNG) float64 {
	cur := boardCost(gs.Board, nil)
	virtual := &virtualCard{x: x, y: y, shape: card.Shape.Rotated(reversed)}
	next := boardCost(gs.Board, virtual)

	score := 0.0
	scoreDiff := cur.minCost - next.minCost

	switch player.Role {
	case models.RoleGoldDigger:
		if !math.IsInf(scoreDiff, 0) && !math.IsNaN(scoreDiff) {
			if scoreDiff > 0 {
				score += scoreDiff * 100
			} else if scoreDiff < 0 {
				score -= 80
			}
		} else {
			switch {
			case math.IsInf(cur.minCost, 1) && math.IsInf(next.minCost, 1):
				heuristicDiff := cur.minHeuristic - next.minHeuristic
				if heuristicDiff > 0 {
					score += heuristicDiff*50 + 50
				} else if heuristicDiff < 0 {
					score -= 30
				} else if len(next.visited) > len(cur.visited) {
					score += 30
				}
			case math.IsInf(cur.minCost, 1):
				score += 2000 // newly reachable
			default:
				score -= 5000 // cut our own tunnel
			}
		}
		if next.minCost == 0 {
			score += 20000
		}
		if !math.IsInf(next.minCost, 1) || next.minHeuristic < cur.minHeuristic {
			if next.visited[engine.Point{X: x, Y: y}] && scoreDiff >= 0 {
				score += float64(x) * 10
			}
		}
		if card.Shape.DeadEnd {
			score -= 1000
		}

	case models.RoleSelfishDwarf:
		if next.minCost == 0 {
			score += selfishGoalScore(gs.Board, x, y)
		} else if scoreDiff > 0 && !math.IsInf(scoreDiff, 0) {
			score += scoreDiff * 30
		} else {
			score += float64(x) * 2
		}
		if card.Shape.DeadEnd {
			score -= 200
		}

	case models.RoleSaboteur:
		if !math.IsInf(scoreDiff, 0) && !math.IsNaN(scoreDiff) {
			if scoreDiff < 0 {
				score += math.Abs(scoreDiff) * 60
			} else if scoreDiff > 0 {
				score -= scoreDiff * 40
			}
		} else if !math.IsInf(cur.minCost, 1) && math.IsInf(next.minCost, 1) {
			score += 2000 // severed the diggers' route
		}
		if card.Shape.DeadEnd {
			score += 200
			if x >= 8 {
				score += 300
			}
		}
		if x >= 9 {
			score += 100
		}

	case models.RoleGeologist:
		if card.HasCrystal {
			score += 1000
		}
		if !math.IsInf(scoreDiff, 0) && !math.IsNaN(scoreDiff) {
			if scoreDiff > 0 {
				score += scoreDiff * 5
			} else if scoreDiff < 0 {
				score -= math.Abs(scoreDiff) * 5
			}
		} else if !math.IsInf(cur.minCost, 1) && math.IsInf(next.minCost, 1) {
			score -= 500
		} else if math.IsInf(cur.minCost, 1) && !math.IsInf(next.minCost, 1) {
			score += 500
		}
		if card.Shape.DeadEnd {
			score -= 500
		}
		if len(next.visited) > len(cur.visited) {
			score += 50
		}
		score += float64(x) * 3
	}

	return score + rng.Float64()*5
}

// selfishGoalScore inspects the goals adjacent to a round-completing
// placement: a revealed GOLD next door is the dwarf's solo win, anything
// else is assisting the table and gets refused.
func selfishGoalScore(b *engine.Board, x, y int) float64 {
	foundGoal := false
	goalScore := 0.0

	for _, dir := range engine.Directions {
		dx, dy := dir.Delta()
		n := b.At(x+dx, y+dy)
		if n == nil || !n.Card.IsGoal {
			continue
		}
		foundGoal = true
		if n.Card.Revealed {
			if n.Card.Goal == engine.GoalGold {
				return 20000
			}
			goalScore = -5000
		} else {
			// Unrevealed goals are a gamble the dwarf refuses to take.
			goalScore = -5000
		}
	}

	if foundGoal {
		return goalScore
	}
	return 1000
}

// ---------------------------------------------------------------------------
// Board cost search
// ---------------------------------------------------------------------------

type virtualCard struct {
	x, y  int
	shape Shape
}

type Shape = engine.Shape

type costResult struct {
	minCost      float64
	minHeuristic float64
	visited      map[engine.Point]bool
}

// boardCost runs a BFS from the start cell over the tunnel network
// (optionally with one hypothetical card overlaid) and returns the
// smallest distance-plus-Manhattan-heuristic toward a still-plausible
// GOLD column cell. An infinite minCost means no open route exists yet;
// minHeuristic then measures how close the network gets.
func boardCost(b *engine.Board, virtual *virtualCard) costResult {
	type node struct {
		p    engine.Point
		dist int
	}

	queue := []node{{engine.Point{X: engine.StartX, Y: engine.StartY}, 0}}
	visited := map[engine.Point]bool{{X: engine.StartX, Y: engine.StartY}: true}

	minCost := math.Inf(1)
	minHeuristic := math.Inf(1)

	goalRows := func() []int {
		var rows []int
		for _, gy := range engine.GoalYs {
			cell := b.At(engine.GoalX, gy)
			if cell != nil && cell.Card.Revealed && cell.Card.Goal == engine.GoalStone {
				continue
			}
			rows = append(rows, gy)
		}
		if len(rows) == 0 {
			rows = engine.GoalYs[:]
		}
		return rows
	}

	shapeAt := func(p engine.Point) (Shape, bool) {
		if virtual != nil && p.X == virtual.x && p.Y == virtual.y {
			return virtual.shape, true
		}
		cell := b.At(p.X, p.Y)
		if cell == nil {
			return Shape{}, false
		}
		return cell.Card.Shape.Rotated(cell.Reversed), true
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		rows := goalRows()
		distToGoalX := float64(engine.GoalX - cur.p.X)
		distToGoalY := math.Inf(1)
		for _, gy := range rows {
			if d := math.Abs(float64(gy - cur.p.Y)); d < distToGoalY {
				distToGoalY = d
			}
		}
		heuristic := distToGoalX + distToGoalY

		if total := float64(cur.dist) + heuristic; total < minCost {
			minCost = total
		}
		if heuristic < minHeuristic {
			minHeuristic = heuristic
		}

		// Reaching the goal column with no revealed-STONE conflict counts
		// as a completed route.
		if cur.p.X == engine.GoalX {
			cell := b.At(cur.p.X, cur.p.Y)
			if cell == nil || !cell.Card.Revealed || cell.Card.Goal == engine.GoalGold {
				return costResult{minCost: float64(cur.dist), visited: visited, minHeuristic: 0}
			}
		}

		shape, ok := shapeAt(cur.p)
		if !ok || !shape.Center || shape.DeadEnd {
			continue
		}

		for _, dir := range engine.Directions {
			if !shape.Open(dir) {
				continue
			}
			dx, dy := dir.Delta()
			n := engine.Point{X: cur.p.X + dx, Y: cur.p.Y + dy}
			if visited[n] || n.X < 0 || n.X >= engine.BoardWidth || n.Y < 0 || n.Y >= engine.BoardHeight {
				continue
			}

			nShape, nOK := shapeAt(n)
			if !nOK {
				continue
			}
			if !nShape.Open(dir.Opposite()) {
				continue
			}
			if !nShape.Center || nShape.DeadEnd {
				continue
			}

			visited[n] = true
			queue = append(queue, node{n, cur.dist + 1})
		}
	}

	return costResult{minCost: minCost, visited: visited, minHeuristic: minHeuristic}
}

// ---------------------------------------------------------------------------
// Special card scoring — one entry per kind, no string dispatch
// ---------------------------------------------------------------------------

type specialContext struct {
	gs      *models.GameState
	player  *models.Player
	enemies []*models.Player
	rng     *engine.RNG
}

type specialScorer func(*specialContext) (score float64, target uuid.UUID, pos *models.PlayPosition)

var specialScorers = map[engine.SpecialKind]specialScorer{
	engine.SpecialDynamite:     scoreDynamite,
	engine.SpecialOracle:       scoreOracle,
	engine.SpecialThief:        scoreThief,
	engine.SpecialTrader:       scoreTrader,
	engine.SpecialScavenger:    scoreScavenger,
	engine.SpecialDoubleAction: scoreDoubleAction,
}

func evaluateSpecial(gs *models.GameState, player *models.Player, kind engine.SpecialKind, difficulty models.BotDifficulty, rng *engine.RNG) (float64, uuid.UUID, *models.PlayPosition) {
	if difficulty == models.DifficultyEasy {
		return rng.Float64() * 50, uuid.Nil, nil
	}

	ctx := &specialContext{gs: gs, player: player, rng: rng}
	for _, p := range gs.Players {
		if p.ID != player.ID && p.Role != player.Role {
			ctx.enemies = append(ctx.enemies, p)
		}
	}

	scorer, ok := specialScorers[kind]
	if !ok {
		return 0, uuid.Nil, nil
	}
	return scorer(ctx)
}

func scoreDynamite(ctx *specialContext) (float64, uuid.UUID, *models.PlayPosition) {
	var best *models.PlayPosition
	maxScore := 0.0
	wantLiveTunnel := ctx.player.Role == models.RoleSaboteur || ctx.player.Role == models.RoleGeologist

	for y := 0; y < engine.BoardHeight; y++ {
		for x := 0; x < engine.BoardWidth; x++ {
			cell := ctx.gs.Board.At(x, y)
			if cell == nil || cell.Card.IsStart || cell.Card.IsGoal {
				continue
			}
			score := 0.0
			if wantLiveTunnel {
				if !cell.Card.Shape.DeadEnd && cell.Card.Shape.Center {
					score = 150 + float64(x)*10
				}
			} else if cell.Card.Shape.DeadEnd {
				score = 200 + float64(x)*10
			}
			if score > maxScore {
				maxScore = score
				best = &models.PlayPosition{X: x, Y: y}
			}
		}
	}

	if best == nil {
		return 0, uuid.Nil, nil
	}
	if maxScore > 100 {
		return 180, uuid.Nil, best
	}
	return 20, uuid.Nil, best
}

func scoreOracle(ctx *specialContext) (float64, uuid.UUID, *models.PlayPosition) {
	if len(ctx.enemies) == 0 {
		return 0, uuid.Nil, nil
	}
	return 150, ctx.enemies[0].ID, nil
}

func scoreThief(ctx *specialContext) (float64, uuid.UUID, *models.PlayPosition) {
	if len(ctx.enemies) == 0 {
		return 0, uuid.Nil, nil
	}
	richest := ctx.enemies[0]
	for _, e := range ctx.enemies[1:] {
		if ctx.gs.Scores[e.ID] > ctx.gs.Scores[richest.ID] {
			richest = e
		}
	}
	return 130, richest.ID, nil
}

func scoreTrader(ctx *specialContext) (float64, uuid.UUID, *models.PlayPosition) {
	badCards := 0
	for _, c := range ctx.player.Hand {
		if c.Kind == engine.KindPath && c.Shape.DeadEnd {
			badCards++
		}
	}
	if badCards < 2 && !ctx.player.Tools.Any() {
		return 0, uuid.Nil, nil
	}
	if len(ctx.enemies) == 0 {
		return 0, uuid.Nil, nil
	}
	handiest := ctx.enemies[0]
	for _, e := range ctx.enemies[1:] {
		if len(e.Hand) > len(handiest.Hand) {
			handiest = e
		}
	}
	return 250, handiest.ID, nil
}

func scoreScavenger(ctx *specialContext) (float64, uuid.UUID, *models.PlayPosition) {
	top := ctx.gs.DiscardTop
	if top == nil {
		return 0, uuid.Nil, nil
	}

	diggerSide := ctx.player.Role == models.RoleGoldDigger || ctx.player.Role == models.RoleSelfishDwarf
	switch top.Kind {
	case engine.KindPath:
		if diggerSide && !top.Shape.DeadEnd && top.Shape.Center {
			return 190, uuid.Nil, nil
		}
		if !diggerSide && top.Shape.DeadEnd {
			return 190, uuid.Nil, nil
		}
	case engine.KindAction:
		if diggerSide && top.Action.IsFix() {
			return 200, uuid.Nil, nil
		}
		if !diggerSide && top.Action.IsBreak() {
			return 200, uuid.Nil, nil
		}
	}
	return 0, uuid.Nil, nil
}

func scoreDoubleAction(ctx *specialContext) (float64, uuid.UUID, *models.PlayPosition) {
	if len(ctx.player.Hand) >= 4 {
		return 220, uuid.Nil, nil
	}
	return 40, uuid.Nil, nil
}
