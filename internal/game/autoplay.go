// internal/game/autoplay.go
package game

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/umbrella2kasa/ojamamono-online-sub000/internal/bot"
	"github.com/umbrella2kasa/ojamamono-online-sub000/internal/models"
)

// SimulationResult is the outcome of one synchronous all-bot game.
type SimulationResult struct {
	Winner     models.Role
	Scores     map[uuid.UUID]int
	RoleOf     map[uuid.UUID]models.Role
	Turns      int
	Stuck      bool
	FinalState *models.GameState
}

// maxSimulationTurns bounds a run; several rounds of a full table finish
// well under this.
const maxSimulationTurns = 1500

// Simulate plays a complete all-bot game synchronously and returns the
// final standings. Useful for balance checks and as an end-to-end
// exercise of the whole rule set.
func Simulate(seed uint64, numBots int, opts models.GameOptions, difficulty models.BotDifficulty) (*SimulationResult, error) {
	if numBots < 3 {
		return nil, fmt.Errorf("need at least 3 bots, got %d", numBots)
	}

	room := NewRoom(fmt.Sprintf("SIM%03d", seed%1000), seed)
	room.options = opts
	if room.options.MaxRounds <= 0 {
		room.options.MaxRounds = models.DefaultOptions().MaxRounds
	}

	for i := 0; i < numBots; i++ {
		if _, err := room.AddBot(difficulty); err != nil {
			return nil, err
		}
	}
	// Drive turns from this loop instead of timers.
	room.autoBot = false

	if err := room.StartGame(uuid.Nil); err != nil {
		return nil, err
	}

	turns := 0
	for turns < maxSimulationTurns {
		room.mu.Lock()
		st := room.state
		if st == nil || st.Status == models.StatusGameEnd {
			room.mu.Unlock()
			break
		}

		switch st.Status {
		case models.StatusPlaying:
			cur := st.CurrentPlayer()
			room.processBotTurn(cur)
		case models.StatusStoneAction:
			cur := st.CurrentPlayer()
			decision := bot.DecideStoneAction(st, st.CurrentPlayerIndex, room.rng)
			if err := room.handleStoneAction(cur.ID, decision.TargetID, decision.Fix, decision.Tool); err != nil {
				st.Status = models.StatusPlaying
				room.advanceTurn()
			}
		case models.StatusRoundEnd:
			room.startRound(st.CurrentRound+1, st.Scores)
		}
		room.mu.Unlock()
		turns++
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	res := &SimulationResult{
		Scores:     room.state.Scores,
		RoleOf:     make(map[uuid.UUID]models.Role, len(room.players)),
		Turns:      turns,
		FinalState: room.state,
	}
	for _, p := range room.players {
		res.RoleOf[p.ID] = p.Role
	}
	if room.state.Status == models.StatusGameEnd {
		res.Winner = room.state.Winner
	} else {
		res.Stuck = true
	}
	return res, nil
}
