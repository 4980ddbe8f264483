// Package bot implements the automated-player decision engine. Decide is
// a pure function over a game snapshot: it enumerates every legal move
// for one seat's hand, scores each with a role- and difficulty-aware
// heuristic, and returns the best one or a discard. It never mutates the
// snapshot, so the session engine can call it inline or speculatively.
package bot

import (
	"math"

	"github.com/google/uuid"

	"github.com/umbrella2kasa/ojamamono-online-sub000/internal/engine"
	"github.com/umbrella2kasa/ojamamono-online-sub000/internal/models"
)

// Action is a bot's chosen move: either play hand card CardIndex (with an
// optional board position and target seat) or discard it.
type Action struct {
	Discard   bool
	CardIndex int
	Pos       *models.PlayPosition
	TargetID  uuid.UUID
}

// Decide picks the best move for the given seat. The hand must be
// non-empty; an empty hand is the caller's responsibility.
func Decide(gs *models.GameState, seat int, rng *engine.RNG) Action {
	player := gs.Players[seat]
	difficulty := player.Difficulty
	if difficulty == "" {
		difficulty = gs.Options.BotDifficulty
	}
	if difficulty == "" {
		difficulty = models.DifficultyNormal
	}

	var best *Action
	bestScore := math.Inf(-1)
	consider := func(score float64, a Action) {
		if score > bestScore {
			bestScore = score
			best = &a
		}
	}

	for idx, card := range player.Hand {
		switch card.Kind {
		case engine.KindPath:
			if player.Tools.Any() {
				continue
			}
			for y := 0; y < engine.BoardHeight; y++ {
				for x := 0; x < engine.BoardWidth; x++ {
					for _, reversed := range [2]bool{false, true} {
						if gs.Board.Validate(x, y, card, reversed) != nil {
							continue
						}
						score := evaluatePlacement(gs, player, x, y, card, reversed, difficulty, rng)
						consider(score, Action{
							CardIndex: idx,
							Pos:       &models.PlayPosition{X: x, Y: y, Reversed: reversed},
						})
					}
				}
			}

		case engine.KindAction:
			if card.Action == engine.ActionRockfall {
				pos, targetScore := bestRockfallTarget(gs.Board, player.Role)
				if pos == nil {
					continue
				}
				base := evaluateAction(gs, player, card.Action, difficulty)
				consider(base+targetScore, Action{CardIndex: idx, Pos: pos})
				continue
			}

			score := evaluateAction(gs, player, card.Action, difficulty)
			target := findTarget(gs, player, card.Action, difficulty, rng)
			if target == uuid.Nil {
				continue
			}
			if card.Action == engine.ActionMap {
				pos := randomUnrevealedGoal(gs.Board, rng)
				if pos == nil {
					continue
				}
				consider(score, Action{CardIndex: idx, TargetID: target, Pos: pos})
				continue
			}
			consider(score, Action{CardIndex: idx, TargetID: target})

		case engine.KindSpecial:
			score, target, pos := evaluateSpecial(gs, player, card.Special, difficulty, rng)
			consider(score, Action{CardIndex: idx, TargetID: target, Pos: pos})
		}
	}

	if best != nil {
		return *best
	}
	return chooseDiscard(player, difficulty, rng)
}

// bestRockfallTarget scans placed cells for the most valuable removal.
// Digger-side roles clear dead ends (the closer to the goals the better);
// saboteurs demolish live tunnel instead.
func bestRockfallTarget(b *engine.Board, role models.Role) (*models.PlayPosition, float64) {
	var best *models.PlayPosition
	bestScore := 0.0

	for y := 0; y < engine.BoardHeight; y++ {
		for x := 0; x < engine.BoardWidth; x++ {
			cell := b.At(x, y)
			if cell == nil || cell.Card.IsStart || cell.Card.IsGoal {
				continue
			}

			score := 0.0
			if role == models.RoleSaboteur {
				if !cell.Card.Shape.DeadEnd && cell.Card.Shape.Center {
					score = 100 + float64(x)*20
				}
			} else {
				if cell.Card.Shape.DeadEnd {
					score = 150 + float64(x)*10
				}
			}

			if score > bestScore {
				bestScore = score
				best = &models.PlayPosition{X: x, Y: y}
			}
		}
	}
	return best, bestScore
}

func randomUnrevealedGoal(b *engine.Board, rng *engine.RNG) *models.PlayPosition {
	var goals []engine.Point
	for _, gy := range engine.GoalYs {
		cell := b.At(engine.GoalX, gy)
		if cell != nil && cell.Card.IsGoal && !cell.Card.Revealed {
			goals = append(goals, engine.Point{X: engine.GoalX, Y: gy})
		}
	}
	if len(goals) == 0 {
		return nil
	}
	g := goals[rng.IntN(len(goals))]
	return &models.PlayPosition{X: g.X, Y: g.Y}
}

// evaluateAction scores a non-rockfall action card before targeting.
func evaluateAction(gs *models.GameState, player *models.Player, kind engine.ActionKind, difficulty models.BotDifficulty) float64 {
	score := 0.0

	switch {
	case kind.IsBreak():
		if player.Role == models.RoleSaboteur {
			score = 80
		} else {
			score = 20
		}
	case kind.IsFix():
		score = 100
	case kind == engine.ActionMap:
		if goldRevealed(gs.Board) {
			score = 0
		} else {
			score = 150
		}
	case kind == engine.ActionRockfall:
		score = 50
		if player.Role == models.RoleGoldDigger && difficulty == models.DifficultyHard {
			score += 300
		}
	}

	if difficulty == models.DifficultyHard && kind.IsFix() {
		if fixCoversBroken(kind, &player.Tools) {
			score += 500
		} else if player.Role == models.RoleGoldDigger {
			score += 450
		}
	}
	return score
}

func fixCoversBroken(kind engine.ActionKind, tools *models.ToolState) bool {
	for t := engine.Tool(0); t < engine.NumTools; t++ {
		if kind.Fixes(t) && tools.IsBroken(t) {
			return true
		}
	}
	return false
}

func goldRevealed(b *engine.Board) bool {
	for _, gy := range engine.GoalYs {
		cell := b.At(engine.GoalX, gy)
		if cell != nil && cell.Card.IsGoal && cell.Card.Revealed && cell.Card.Goal == engine.GoalGold {
			return true
		}
	}
	return false
}

// findTarget picks a seat for a break/fix/map card. Heuristic except at
// the lowest tier, which targets anyone at random.
func findTarget(gs *models.GameState, me *models.Player, kind engine.ActionKind, difficulty models.BotDifficulty, rng *engine.RNG) uuid.UUID {
	var enemies, friends []*models.Player
	for _, p := range gs.Players {
		if p.ID == me.ID {
			continue
		}
		if p.Role != me.Role {
			enemies = append(enemies, p)
		} else {
			friends = append(friends, p)
		}
	}

	if difficulty == models.DifficultyEasy {
		others := append(append([]*models.Player{}, enemies...), friends...)
		if len(others) == 0 {
			return uuid.Nil
		}
		return others[rng.IntN(len(others))].ID
	}

	switch {
	case kind.IsBreak():
		for _, e := range enemies {
			if !e.Tools.Any() {
				return e.ID
			}
		}
		return uuid.Nil
	case kind.IsFix():
		for _, p := range append(append([]*models.Player{}, friends...), me) {
			if fixCoversBroken(kind, &p.Tools) {
				return p.ID
			}
		}
		return uuid.Nil
	case kind == engine.ActionMap:
		return me.ID
	}
	return uuid.Nil
}

// chooseDiscard picks the least valuable hand card via a role-aware value
// table, breaking ties pseudo-randomly.
func chooseDiscard(player *models.Player, difficulty models.BotDifficulty, rng *engine.RNG) Action {
	if difficulty == models.DifficultyEasy || len(player.Hand) == 0 {
		return Action{Discard: true, CardIndex: 0}
	}

	bestIdx, bestValue := 0, math.Inf(1)
	for idx, card := range player.Hand {
		value := 50.0
		switch card.Kind {
		case engine.KindPath:
			if player.Role == models.RoleSaboteur {
				if card.Shape.DeadEnd {
					value = 95
				} else if card.Shape.Center {
					value = 15
				}
			} else {
				switch {
				case card.Shape.DeadEnd:
					value = 5
				case card.Shape.Center && card.Shape.Top && card.Shape.Bottom && card.Shape.Left && card.Shape.Right:
					value = 95
				case card.Shape.Center:
					value = 75
				default:
					value = 35
				}
			}
		case engine.KindAction:
			if player.Role == models.RoleSaboteur {
				switch {
				case card.Action.IsBreak():
					value = 110
				case card.Action.IsFix():
					value = 50
				case card.Action == engine.ActionMap:
					value = 10
				case card.Action == engine.ActionRockfall:
					value = 100
				}
			} else {
				switch {
				case card.Action.IsBreak():
					value = 40
				case card.Action.IsFix():
					value = 120
				case card.Action == engine.ActionMap:
					value = 90
				case card.Action == engine.ActionRockfall:
					value = 85
				}
			}
		case engine.KindSpecial:
			value = 150
		}

		value += rng.Float64() * 10
		if value < bestValue {
			bestValue = value
			bestIdx = idx
		}
	}
	return Action{Discard: true, CardIndex: bestIdx}
}

// StoneDecision is the bonus action chosen after a stone-goal reveal.
type StoneDecision struct {
	Fix      bool
	Tool     engine.Tool
	TargetID uuid.UUID
}

// DecideStoneAction resolves the stone bonus for a bot seat. Priority:
// repair own tools, repair teammates (selfish dwarves help nobody), break
// an intact enemy, otherwise a harmless self-fix.
func DecideStoneAction(gs *models.GameState, seat int, rng *engine.RNG) StoneDecision {
	player := gs.Players[seat]

	for t := engine.Tool(0); t < engine.NumTools; t++ {
		if player.Tools.IsBroken(t) {
			return StoneDecision{Fix: true, Tool: t, TargetID: player.ID}
		}
	}

	if player.Role != models.RoleSelfishDwarf {
		for _, p := range gs.Players {
			if p.ID == player.ID || p.Role != player.Role {
				continue
			}
			for t := engine.Tool(0); t < engine.NumTools; t++ {
				if p.Tools.IsBroken(t) {
					return StoneDecision{Fix: true, Tool: t, TargetID: p.ID}
				}
			}
		}
	}

	var intact []*models.Player
	for _, p := range gs.Players {
		if p.ID != player.ID && p.Role != player.Role && !p.Tools.Any() {
			intact = append(intact, p)
		}
	}
	if len(intact) > 0 {
		target := intact[rng.IntN(len(intact))]
		tool := engine.Tool(rng.IntN(int(engine.NumTools)))
		return StoneDecision{Fix: false, Tool: tool, TargetID: target.ID}
	}

	return StoneDecision{Fix: true, Tool: engine.Pickaxe, TargetID: player.ID}
}
