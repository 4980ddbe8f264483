// internal/game/special.go
package game

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/umbrella2kasa/ojamamono-online-sub000/internal/engine"
	"github.com/umbrella2kasa/ojamamono-online-sub000/internal/models"
)

// handleSpecialCard resolves a treasure chest card. Trader and scavenger
// manage the hand themselves and set skipConsume. Assumes lock is held
// by caller.
func (r *Room) handleSpecialCard(player *models.Player, card *engine.Card, pos *models.PlayPosition, targetID uuid.UUID, cardIndex int) (*PlayResult, error) {
	switch card.Special {
	case engine.SpecialDynamite:
		return r.specialDynamite(player, pos)
	case engine.SpecialOracle:
		return r.specialOracle(player, targetID)
	case engine.SpecialThief:
		return r.specialThief(player, targetID)
	case engine.SpecialTrader:
		return r.specialTrader(player, targetID, cardIndex)
	case engine.SpecialDoubleAction:
		return r.specialDoubleAction(player)
	case engine.SpecialScavenger:
		return r.specialScavenger(player, cardIndex)
	default:
		return nil, fmt.Errorf("unknown special card %v", card.Special)
	}
}

// specialDynamite clears the 3x3 area around pos, sparing start and goal
// cards. Assumes lock is held.
func (r *Room) specialDynamite(player *models.Player, pos *models.PlayPosition) (*PlayResult, error) {
	if pos == nil {
		return nil, ErrPositionRequired
	}

	destroyed := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			tx, ty := pos.X+dx, pos.Y+dy
			cell := r.board.At(tx, ty)
			if cell == nil || cell.Card.IsStart || cell.Card.IsGoal {
				continue
			}
			r.board.Remove(tx, ty)
			destroyed++
		}
	}

	msg := fmt.Sprintf("%s set off dynamite, but nothing happened.", player.Name)
	if destroyed > 0 {
		msg = fmt.Sprintf("%s set off dynamite and destroyed %d tunnel cards!", player.Name, destroyed)
	}
	return &PlayResult{Message: msg}, nil
}

// specialOracle privately reveals the target's role. Assumes lock is
// held.
func (r *Room) specialOracle(player *models.Player, targetID uuid.UUID) (*PlayResult, error) {
	if targetID == uuid.Nil {
		return nil, ErrTargetRequired
	}
	target := r.state.PlayerByID(targetID)
	if target == nil {
		return nil, ErrTargetNotFound
	}
	if target.ID == player.ID {
		return nil, ErrSelfTarget
	}

	return &PlayResult{
		Message:        fmt.Sprintf("%s held the mirror of truth up to %s!", player.Name, target.Name),
		PrivateMessage: fmt.Sprintf("%s is a %s.", target.Name, target.Role),
		TargetID:       targetID,
	}, nil
}

// specialThief steals one point from the target's score when they have
// any. Assumes lock is held.
func (r *Room) specialThief(player *models.Player, targetID uuid.UUID) (*PlayResult, error) {
	if targetID == uuid.Nil {
		return nil, ErrTargetRequired
	}
	target := r.state.PlayerByID(targetID)
	if target == nil {
		return nil, ErrTargetNotFound
	}
	if target.ID == player.ID {
		return nil, ErrSelfTarget
	}

	if r.state.Scores[target.ID] > 0 {
		r.state.Scores[target.ID]--
		r.state.Scores[player.ID]++
		return &PlayResult{
			Message:  fmt.Sprintf("%s stole a gold nugget from %s!", player.Name, target.Name),
			TargetID: targetID,
		}, nil
	}
	return &PlayResult{
		Message:  fmt.Sprintf("%s tried to rob %s, but found empty pockets.", player.Name, target.Name),
		TargetID: targetID,
	}, nil
}

// specialTrader discards the trader card, draws a replacement, and swaps
// hands with the target. Assumes lock is held.
func (r *Room) specialTrader(player *models.Player, targetID uuid.UUID, cardIndex int) (*PlayResult, error) {
	if targetID == uuid.Nil {
		return nil, ErrTargetRequired
	}
	target := r.state.PlayerByID(targetID)
	if target == nil {
		return nil, ErrTargetNotFound
	}
	if target.ID == player.ID {
		return nil, ErrSelfTarget
	}

	if cardIndex >= 0 && cardIndex < len(player.Hand) {
		used := player.Hand[cardIndex]
		player.Hand = append(player.Hand[:cardIndex], player.Hand[cardIndex+1:]...)
		r.discard = append(r.discard, used)
		r.state.DiscardTop = used
	}
	if len(r.deck) > 0 {
		player.Hand = append(player.Hand, r.drawCard())
		r.state.DeckCount = len(r.deck)
	}
	player.Hand, target.Hand = target.Hand, player.Hand

	return &PlayResult{
		Message:     fmt.Sprintf("%s swapped hands with %s!", player.Name, target.Name),
		TargetID:    targetID,
		skipConsume: true,
	}, nil
}

// specialDoubleAction rewinds the turn pointer so the player acts again
// after the normal advance. Assumes lock is held.
func (r *Room) specialDoubleAction(player *models.Player) (*PlayResult, error) {
	n := len(r.state.Players)
	r.state.CurrentPlayerIndex = (r.state.CurrentPlayerIndex - 1 + n) % n
	return &PlayResult{
		Message: fmt.Sprintf("%s takes another turn!", player.Name),
	}, nil
}

// specialScavenger takes the top of the discard pile into the hand and
// discards the scavenger card in its place. Assumes lock is held.
func (r *Room) specialScavenger(player *models.Player, cardIndex int) (*PlayResult, error) {
	if len(r.discard) == 0 {
		return nil, fmt.Errorf("the discard pile is empty")
	}

	scavenged := r.discard[len(r.discard)-1]
	r.discard = r.discard[:len(r.discard)-1]
	player.Hand = append(player.Hand, scavenged)

	if cardIndex >= 0 && cardIndex < len(player.Hand) {
		used := player.Hand[cardIndex]
		player.Hand = append(player.Hand[:cardIndex], player.Hand[cardIndex+1:]...)
		r.discard = append(r.discard, used)
		r.state.DiscardTop = used
	}

	return &PlayResult{
		Message:     fmt.Sprintf("%s scavenged a card from the discard pile!", player.Name),
		skipConsume: true,
	}, nil
}
