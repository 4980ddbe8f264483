// internal/game/actions.go
package game

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/umbrella2kasa/ojamamono-online-sub000/internal/engine"
	"github.com/umbrella2kasa/ojamamono-online-sub000/internal/models"
)

// handleActionCard resolves a break, fix, map, or rockfall card. Assumes
// lock is held by caller.
func (r *Room) handleActionCard(player *models.Player, card *engine.Card, targetID uuid.UUID, pos *models.PlayPosition) (*PlayResult, error) {
	switch {
	case card.Action.IsBreak():
		return r.handleBreak(player, card.Action, targetID)
	case card.Action.IsFix():
		return r.handleFix(player, card.Action, targetID)
	case card.Action == engine.ActionMap:
		return r.handleMap(player, pos)
	case card.Action == engine.ActionRockfall:
		return r.handleRockfall(player, pos)
	default:
		return nil, fmt.Errorf("unknown action %v", card.Action)
	}
}

// handleBreak sabotages one of the target's intact tools. Assumes lock
// is held.
func (r *Room) handleBreak(player *models.Player, kind engine.ActionKind, targetID uuid.UUID) (*PlayResult, error) {
	if targetID == uuid.Nil {
		return nil, ErrTargetRequired
	}
	target := r.state.PlayerByID(targetID)
	if target == nil {
		return nil, ErrTargetNotFound
	}

	tool := kind.BreaksTool()
	if target.Tools.IsBroken(tool) {
		return nil, fmt.Errorf("%s's %s is already broken", target.Name, tool)
	}
	target.Tools.Break(tool, player.Name)

	return &PlayResult{
		Message:  fmt.Sprintf("%s broke %s's %s!", player.Name, target.Name, tool),
		TargetID: targetID,
	}, nil
}

// handleFix repairs every broken tool the card covers. Assumes lock is
// held.
func (r *Room) handleFix(player *models.Player, kind engine.ActionKind, targetID uuid.UUID) (*PlayResult, error) {
	if targetID == uuid.Nil {
		return nil, ErrTargetRequired
	}
	target := r.state.PlayerByID(targetID)
	if target == nil {
		return nil, ErrTargetNotFound
	}

	var fixed []string
	for t := engine.Tool(0); t < engine.NumTools; t++ {
		if kind.Fixes(t) && target.Tools.IsBroken(t) {
			target.Tools.Fix(t)
			fixed = append(fixed, t.String())
		}
	}
	if len(fixed) == 0 {
		return nil, fmt.Errorf("this card cannot repair anything %s has", target.Name)
	}

	return &PlayResult{
		Message:  fmt.Sprintf("%s repaired %s's %s.", player.Name, target.Name, strings.Join(fixed, " and ")),
		TargetID: targetID,
	}, nil
}

// handleMap privately reveals a goal card's face to the player. Assumes
// lock is held.
func (r *Room) handleMap(player *models.Player, pos *models.PlayPosition) (*PlayResult, error) {
	if pos == nil {
		return nil, ErrPositionRequired
	}
	cell := r.board.At(pos.X, pos.Y)
	if cell == nil || !cell.Card.IsGoal {
		return nil, fmt.Errorf("no goal card at (%d,%d)", pos.X, pos.Y)
	}
	kind, ok := r.board.PeekGoal(pos.X, pos.Y)
	if !ok {
		return nil, fmt.Errorf("no goal card at (%d,%d)", pos.X, pos.Y)
	}

	return &PlayResult{
		Message:        fmt.Sprintf("%s studied the map.", player.Name),
		PrivateMessage: fmt.Sprintf("The goal at (%d,%d) hides: %s", pos.X, pos.Y, kind),
		MapResult:      kind.String(),
	}, nil
}

// handleRockfall removes one placed path card. Start and goal cards are
// indestructible. Assumes lock is held.
func (r *Room) handleRockfall(player *models.Player, pos *models.PlayPosition) (*PlayResult, error) {
	if pos == nil {
		return nil, ErrPositionRequired
	}
	cell := r.board.At(pos.X, pos.Y)
	if cell == nil {
		return nil, fmt.Errorf("nothing to demolish at (%d,%d)", pos.X, pos.Y)
	}
	if cell.Card.IsStart || cell.Card.IsGoal {
		return nil, fmt.Errorf("start and goal cards cannot be demolished")
	}
	r.board.Remove(pos.X, pos.Y)

	return &PlayResult{
		Message: fmt.Sprintf("%s triggered a rockfall at (%d,%d)!", player.Name, pos.X, pos.Y),
	}, nil
}
