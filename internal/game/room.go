// internal/game/room.go
package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/umbrella2kasa/ojamamono-online-sub000/internal/bot"
	"github.com/umbrella2kasa/ojamamono-online-sub000/internal/cache"
	"github.com/umbrella2kasa/ojamamono-online-sub000/internal/database"
	"github.com/umbrella2kasa/ojamamono-online-sub000/internal/engine"
	"github.com/umbrella2kasa/ojamamono-online-sub000/internal/models"
)

// Request validation errors returned to the acting client.
var (
	ErrNotInProgress    = errors.New("game is not in progress")
	ErrPlayerNotFound   = errors.New("player not found")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrInvalidCard      = errors.New("invalid card index")
	ErrToolsBroken      = errors.New("cannot place paths with a broken tool")
	ErrTargetRequired   = errors.New("target player required")
	ErrTargetNotFound   = errors.New("target player not found")
	ErrSelfTarget       = errors.New("cannot target yourself")
	ErrPositionRequired = errors.New("position required")
	ErrRoomFull         = errors.New("room is full")
	ErrNotHost          = errors.New("only the host may do that")
	ErrNoStoneAction    = errors.New("no bonus action pending")
)

// MaxPlayers caps a room's seat count.
const MaxPlayers = 10

var seatColors = [...]string{
	"#e6194b", "#3cb44b", "#ffe119", "#4363d8", "#f58231",
	"#911eb4", "#46f0f0", "#f032e6", "#bcf60c", "#fabebe",
}

var botNamePool = [...]string{
	"Rustbucket", "Tunneler Tom", "Slacker", "Drill Sergeant", "Boomer",
	"Mole Senior", "Pick Pete", "Lantern Lou", "Cart Crasher", "Nugget Hound",
}

// Room is one game session: lobby roster, live round state, decks, and
// the turn loop. All exported methods lock; lowercase helpers assume the
// lock is held by the caller.
type Room struct {
	Code   string
	HostID uuid.UUID

	mu      sync.Mutex
	players []*models.Player
	state   *models.GameState
	options models.GameOptions
	rng     *engine.RNG
	board   *engine.Board

	deck        []*engine.Card
	specialDeck []*engine.Card
	discard     []*engine.Card

	actionIndex int
	botSeq      int  // Invalidates stale bot timers.
	autoBot     bool // Schedule bot turns asynchronously.
	BotDelay    time.Duration

	CreatedAt time.Time

	// Communication callbacks, set by the transport layer.
	BroadcastFn         func(ev GameEvent)
	BroadcastToPlayerFn func(playerID uuid.UUID, ev GameEvent)
	OnGameEnd           OnGameEndFunc
}

// NewRoom creates an empty lobby with the given join code.
func NewRoom(code string, seed uint64) *Room {
	rng := engine.NewRNG(seed)
	return &Room{
		Code:      code,
		options:   models.DefaultOptions(),
		rng:       rng,
		board:     engine.NewBoard(rng),
		BotDelay:  time.Second,
		CreatedAt: time.Now(),
	}
}

// AddPlayer seats a human player. The first player becomes host.
func (r *Room) AddPlayer(name string) (*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.players) >= MaxPlayers {
		return nil, ErrRoomFull
	}

	p := &models.Player{
		ID:    uuid.New(),
		Name:  name,
		Color: seatColors[len(r.players)%len(seatColors)],
		Role:  models.RoleGoldDigger,
	}
	if len(r.players) == 0 {
		r.HostID = p.ID
	}
	r.players = append(r.players, p)

	r.broadcastRoom()
	return p, nil
}

// AddBot seats an automated player and enables the bot turn loop. Bot
// names come from a fixed pool, least-used first, numbered on reuse.
func (r *Room) AddBot(difficulty models.BotDifficulty) (*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.players) >= MaxPlayers {
		return nil, ErrRoomFull
	}
	if difficulty == "" {
		difficulty = models.DifficultyNormal
	}

	used := make(map[string]int)
	for _, p := range r.players {
		for _, base := range botNamePool {
			if len(p.Name) >= len(base) && p.Name[:len(base)] == base {
				used[base]++
			}
		}
	}
	minCount := int(^uint(0) >> 1)
	for _, base := range botNamePool {
		if used[base] < minCount {
			minCount = used[base]
		}
	}
	var candidates []string
	for _, base := range botNamePool {
		if used[base] == minCount {
			candidates = append(candidates, base)
		}
	}
	name := candidates[r.rng.IntN(len(candidates))]
	if minCount > 0 {
		name = fmt.Sprintf("%s %d", name, minCount+1)
	}
	switch difficulty {
	case models.DifficultyHard:
		name += " (pro)"
	case models.DifficultyEasy:
		name += " (rookie)"
	}

	p := &models.Player{
		ID:         uuid.New(),
		Name:       name,
		Color:      seatColors[len(r.players)%len(seatColors)],
		Role:       models.RoleGoldDigger,
		IsBot:      true,
		Difficulty: difficulty,
	}
	if len(r.players) == 0 {
		r.HostID = p.ID
	}
	r.players = append(r.players, p)
	r.autoBot = true

	r.broadcastRoom()
	return p, nil
}

// RemovePlayer drops a seat, adjusting the turn index so play continues
// with the next seat. Host hands over to the oldest remaining player.
func (r *Room) RemovePlayer(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != nil && r.state.Status == models.StatusPlaying {
		for i, p := range r.players {
			if p.ID != id {
				continue
			}
			if r.state.CurrentPlayerIndex > i {
				r.state.CurrentPlayerIndex--
			} else if r.state.CurrentPlayerIndex == i && r.state.CurrentPlayerIndex >= len(r.players)-1 {
				r.state.CurrentPlayerIndex = 0
			}
			break
		}
	}

	kept := r.players[:0]
	for _, p := range r.players {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	r.players = kept

	if r.state != nil {
		r.state.Players = r.players
	}
	if r.HostID == id && len(r.players) > 0 {
		r.HostID = r.players[0].ID
	}

	r.broadcastRoom()
	if r.state != nil && r.state.Status == models.StatusPlaying {
		r.broadcastState()
		r.scheduleBotTurn()
	}
}

// PlayerCount returns the current roster size.
func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

// Players returns a snapshot of the roster.
func (r *Room) Players() []*models.Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Player, len(r.players))
	copy(out, r.players)
	return out
}

// UpdateOptions replaces the session configuration. Host only.
func (r *Room) UpdateOptions(requesterID uuid.UUID, opts models.GameOptions) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if requesterID != r.HostID {
		return ErrNotHost
	}
	if opts.MaxRounds <= 0 {
		opts.MaxRounds = models.DefaultOptions().MaxRounds
	}
	r.options = opts
	r.broadcastRoom()
	return nil
}

// Options returns the current configuration.
func (r *Room) Options() models.GameOptions {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.options
}

// StartGame begins round one, carrying no scores in.
func (r *Room) StartGame(requesterID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if requesterID != uuid.Nil && requesterID != r.HostID {
		return ErrNotHost
	}
	if len(r.players) < 1 {
		return errors.New("no players seated")
	}

	scores := make(map[uuid.UUID]int)
	if r.state != nil && r.state.Scores != nil {
		scores = r.state.Scores
	}
	for _, p := range r.players {
		if _, ok := scores[p.ID]; !ok {
			scores[p.ID] = 0
		}
	}

	r.startRound(1, scores)
	return nil
}

// NextRound advances to the following round after a ROUND_END.
func (r *Room) NextRound() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == nil || r.state.CurrentRound >= r.state.MaxRounds {
		return
	}
	r.startRound(r.state.CurrentRound+1, r.state.Scores)
}

// startRound deals a fresh round. Assumes lock is held by caller.
func (r *Room) startRound(round int, scores map[uuid.UUID]int) {
	r.assignRoles()

	r.deck = engine.NewDeck(r.rng)
	r.specialDeck = engine.NewSpecialDeck(r.options.Specials, r.rng)
	r.discard = nil

	handSize := 6
	switch n := len(r.players); {
	case n >= 8:
		handSize = 4
	case n >= 6:
		handSize = 5
	}

	for _, p := range r.players {
		p.Hand = nil
		for i := 0; i < handSize && len(r.deck) > 0; i++ {
			p.Hand = append(p.Hand, r.drawCard())
		}
		p.Tools.Reset()
	}

	r.board.Reset()

	for _, p := range r.players {
		if _, ok := scores[p.ID]; !ok {
			scores[p.ID] = 0
		}
	}

	var ready []uuid.UUID
	for _, p := range r.players {
		if p.IsBot {
			ready = append(ready, p.ID)
		}
	}

	r.state = &models.GameState{
		Players:            r.players,
		Board:              r.board,
		DeckCount:          len(r.deck),
		CurrentPlayerIndex: r.rng.IntN(len(r.players)),
		Status:             models.StatusPlaying,
		CurrentRound:       round,
		MaxRounds:          r.options.MaxRounds,
		Scores:             scores,
		Options:            r.options,
		TreasureLocs:       r.spawnTreasures(),
		ReadyPlayers:       ready,
	}

	r.logAction(uuid.Nil, "round_start", map[string]interface{}{"round": round})
	r.broadcast(GameEvent{Type: EventGameStarted, Data: r.stateJSON()})
	r.scheduleBotTurn()
}

// assignRoles deals hidden roles for the round. Fixed slots are
// guaranteed, the random pool fills remaining seats, shortfalls pad with
// gold diggers, surpluses are shuffled away. Assumes lock is held.
func (r *Room) assignRoles() {
	n := len(r.players)
	cfg := r.options.Roles

	var roles []models.Role
	push := func(role models.Role, count int) {
		for i := 0; i < count; i++ {
			roles = append(roles, role)
		}
	}

	if !cfg.Fixed.IsZero() || !cfg.Random.IsZero() {
		push(models.RoleGoldDigger, cfg.Fixed.GoldDiggers)
		push(models.RoleSaboteur, cfg.Fixed.Saboteurs)
		push(models.RoleSelfishDwarf, cfg.Fixed.SelfishDwarves)
		push(models.RoleGeologist, cfg.Fixed.Geologists)

		if needed := n - len(roles); needed > 0 {
			var pool []models.Role
			appendPool := func(role models.Role, count int) {
				for i := 0; i < count; i++ {
					pool = append(pool, role)
				}
			}
			appendPool(models.RoleGoldDigger, cfg.Random.GoldDiggers)
			appendPool(models.RoleSaboteur, cfg.Random.Saboteurs)
			appendPool(models.RoleSelfishDwarf, cfg.Random.SelfishDwarves)
			appendPool(models.RoleGeologist, cfg.Random.Geologists)

			r.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
			if len(pool) > needed {
				pool = pool[:needed]
			}
			roles = append(roles, pool...)
			for len(roles) < n {
				roles = append(roles, models.RoleGoldDigger)
			}
		}
	} else {
		type dist struct{ diggers, saboteurs int }
		table := map[int]dist{
			3: {3, 1}, 4: {4, 1}, 5: {4, 2}, 6: {5, 2},
			7: {5, 3}, 8: {6, 3}, 9: {7, 3}, 10: {7, 4},
		}
		d, ok := table[n]
		if !ok {
			d = dist{diggers: maxInt(1, n-1), saboteurs: 1}
		}
		push(models.RoleSaboteur, d.saboteurs)
		push(models.RoleGoldDigger, d.diggers)
	}

	r.rng.Shuffle(len(roles), func(i, j int) { roles[i], roles[j] = roles[j], roles[i] })

	for i, p := range r.players {
		if i < len(roles) {
			p.Role = roles[i]
		} else {
			p.Role = models.RoleGoldDigger
		}
	}
}

// HandlePlayCard applies one card play: path placement, action card, or
// special card. On success the card is consumed and the turn advances,
// unless a stone goal pauses the turn for a bonus action.
func (r *Room) HandlePlayCard(playerID uuid.UUID, cardIndex int, pos *models.PlayPosition, targetID uuid.UUID) (*PlayResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.handlePlayCard(playerID, cardIndex, pos, targetID)
}

// handlePlayCard is the lock-held body of HandlePlayCard.
func (r *Room) handlePlayCard(playerID uuid.UUID, cardIndex int, pos *models.PlayPosition, targetID uuid.UUID) (*PlayResult, error) {
	if r.state == nil || r.state.Status != models.StatusPlaying {
		return nil, ErrNotInProgress
	}
	player := r.state.PlayerByID(playerID)
	if player == nil {
		return nil, ErrPlayerNotFound
	}
	if cur := r.state.CurrentPlayer(); cur == nil || cur.ID != playerID {
		return nil, ErrNotYourTurn
	}
	if cardIndex < 0 || cardIndex >= len(player.Hand) {
		return nil, ErrInvalidCard
	}
	card := player.Hand[cardIndex]

	var result *PlayResult
	switch card.Kind {
	case engine.KindPath:
		if player.Tools.Any() {
			return nil, ErrToolsBroken
		}
		if pos == nil {
			return nil, ErrPositionRequired
		}
		if err := r.board.Place(pos.X, pos.Y, card, pos.Reversed); err != nil {
			return nil, fmt.Errorf("cannot place card: %w", err)
		}
		result = &PlayResult{}
		for _, goal := range r.board.ReachableGoals() {
			kind, ok := r.board.RevealGoal(goal.X, goal.Y)
			if !ok {
				continue
			}
			result.MapResult = kind.String()
			if kind == engine.GoalGold {
				if player.Role == models.RoleSelfishDwarf {
					r.finishRound(models.RoleSelfishDwarf)
				} else {
					r.finishRound(models.RoleGoldDigger)
				}
				result.Message = fmt.Sprintf("%s struck gold!", player.Name)
			}
		}
		r.logAction(playerID, "play_path", map[string]interface{}{"x": pos.X, "y": pos.Y, "reversed": pos.Reversed})

	case engine.KindAction:
		var err error
		result, err = r.handleActionCard(player, card, targetID, pos)
		if err != nil {
			return nil, err
		}
		r.logAction(playerID, "play_action", map[string]interface{}{"action": card.Action.String()})

	case engine.KindSpecial:
		var err error
		result, err = r.handleSpecialCard(player, card, pos, targetID, cardIndex)
		if err != nil {
			return nil, err
		}
		r.logAction(playerID, "play_special", map[string]interface{}{"special": card.Special.String()})

	default:
		return nil, ErrInvalidCard
	}

	if !result.skipConsume {
		used := r.consumeCardAndDraw(player, cardIndex)
		if used != nil && card.Kind != engine.KindPath {
			r.discard = append(r.discard, used)
			r.state.DiscardTop = used
		}
	}

	if card.Kind == engine.KindPath && pos != nil {
		if special := r.checkTreasure(pos.X, pos.Y, player); special != nil {
			result.PrivateMessage = appendLine(result.PrivateMessage,
				fmt.Sprintf("The chest held a special card: %s. Check your hand.", special.Special))
		}
	}

	if result.Message != "" {
		r.sendSystemMessage(result.Message)
	}
	if result.PrivateMessage != "" {
		r.sendPrivateMessage(playerID, result.PrivateMessage)
	}

	// A round already resolved by a gold reveal stops here.
	if r.state.Status != models.StatusPlaying {
		return result, nil
	}

	// Stone goal bonus: score a point and pause for a tool action.
	if card.Kind == engine.KindPath && result.MapResult == engine.GoalStone.String() {
		r.state.Scores[playerID]++
		r.sendSystemMessage(fmt.Sprintf("%s uncovered coal! Bonus point and a free tool action.", player.Name))
		r.state.Status = models.StatusStoneAction
		r.broadcastState()
		r.broadcast(GameEvent{Type: EventStoneActionRequired, Data: map[string]interface{}{"playerId": playerID}})
		r.scheduleBotTurn()
		return result, nil
	}

	r.advanceTurn()
	r.broadcastState()
	return result, nil
}

// DiscardCard throws a card away face down and draws a replacement.
func (r *Room) DiscardCard(playerID uuid.UUID, cardIndex int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.discardCard(playerID, cardIndex)
}

// discardCard is the lock-held body of DiscardCard.
func (r *Room) discardCard(playerID uuid.UUID, cardIndex int) error {
	if r.state == nil || r.state.Status != models.StatusPlaying {
		return ErrNotInProgress
	}
	player := r.state.PlayerByID(playerID)
	if player == nil {
		return ErrPlayerNotFound
	}
	if cur := r.state.CurrentPlayer(); cur == nil || cur.ID != playerID {
		return ErrNotYourTurn
	}
	if cardIndex < 0 || cardIndex >= len(player.Hand) {
		return ErrInvalidCard
	}

	if used := r.consumeCardAndDraw(player, cardIndex); used != nil {
		r.discard = append(r.discard, used)
		r.state.DiscardTop = used
	}
	r.logAction(playerID, "discard", nil)
	r.advanceTurn()
	r.broadcastState()
	return nil
}

// consumeCardAndDraw removes the played card from the hand and draws a
// replacement while the deck lasts. Assumes lock is held.
func (r *Room) consumeCardAndDraw(player *models.Player, cardIndex int) *engine.Card {
	if cardIndex < 0 || cardIndex >= len(player.Hand) {
		return nil
	}
	used := player.Hand[cardIndex]
	player.Hand = append(player.Hand[:cardIndex], player.Hand[cardIndex+1:]...)

	if len(r.deck) > 0 {
		player.Hand = append(player.Hand, r.drawCard())
	}
	r.state.DeckCount = len(r.deck)
	return used
}

// drawCard pops the top of the deck. Assumes lock is held and deck is
// non-empty.
func (r *Room) drawCard() *engine.Card {
	card := r.deck[len(r.deck)-1]
	r.deck = r.deck[:len(r.deck)-1]
	return card
}

// advanceTurn passes play to the next seat, ending the round for the
// saboteurs when the deck and every hand are exhausted. Assumes lock is
// held.
func (r *Room) advanceTurn() {
	if r.state == nil || r.state.Status != models.StatusPlaying {
		return
	}
	r.state.CurrentPlayerIndex = (r.state.CurrentPlayerIndex + 1) % len(r.state.Players)

	allEmpty := true
	for _, p := range r.state.Players {
		if len(p.Hand) > 0 {
			allEmpty = false
			break
		}
	}
	if len(r.deck) == 0 && allEmpty {
		r.finishRound(models.RoleSaboteur)
		return
	}
	r.scheduleBotTurn()
}

// finishRound resolves a round: rewards, scores, stats, and either the
// next-round gate or the final standings. Assumes lock is held.
func (r *Room) finishRound(winner models.Role) {
	if r.state == nil {
		return
	}

	rewards := make(map[uuid.UUID]int)
	var diggers, saboteurs, dwarves, geologists []*models.Player
	for _, p := range r.state.Players {
		rewards[p.ID] = 0
		switch p.Role {
		case models.RoleGoldDigger:
			diggers = append(diggers, p)
		case models.RoleSaboteur:
			saboteurs = append(saboteurs, p)
		case models.RoleSelfishDwarf:
			dwarves = append(dwarves, p)
		case models.RoleGeologist:
			geologists = append(geologists, p)
		}
	}

	switch winner {
	case models.RoleSelfishDwarf:
		// The dwarf who revealed the gold wins alone.
		if cur := r.state.CurrentPlayer(); cur != nil && cur.Role == models.RoleSelfishDwarf {
			rewards[cur.ID] = 5
		} else {
			for _, p := range dwarves {
				rewards[p.ID] = 5
			}
		}
	case models.RoleGoldDigger:
		for _, p := range diggers {
			rewards[p.ID] = 3
		}
	default:
		points := 3
		if len(saboteurs) == 1 {
			points = 4
		}
		for _, p := range saboteurs {
			rewards[p.ID] = points
		}
	}

	// Geologists cash in the crystals left on the board regardless of the
	// round winner.
	if crystals := r.board.CrystalCount(); len(geologists) > 0 && crystals > 0 {
		perGeologist := (crystals / 2) / len(geologists)
		if perGeologist > 0 {
			for _, p := range geologists {
				rewards[p.ID] = perGeologist
			}
		}
	}

	for id, points := range rewards {
		r.state.Scores[id] += points
	}

	for _, p := range r.state.Players {
		if p.IsBot {
			continue
		}
		name, won, gold := p.Name, rewards[p.ID] > 0, rewards[p.ID]
		go func() {
			ctx, cancel := database.WithTimeout()
			defer cancel()
			if err := database.RecordRoundResult(ctx, name, won, gold); err != nil {
				logrus.Warnf("Room %s: failed recording round stats for %s: %v", r.Code, name, err)
			}
		}()
	}

	r.state.Status = models.StatusRoundEnd
	r.state.Winner = winner
	r.state.RoundResult = &models.RoundResult{
		Winner:          winner,
		Rewards:         rewards,
		GoldDiggerCount: len(diggers),
	}
	r.logAction(uuid.Nil, "round_end", map[string]interface{}{"winner": string(winner)})

	isFinal := r.state.CurrentRound >= r.state.MaxRounds
	if isFinal {
		r.state.Status = models.StatusGameEnd
		r.broadcastState()

		maxScore := 0
		for _, s := range r.state.Scores {
			if s > maxScore {
				maxScore = s
			}
		}
		if maxScore > 0 {
			for _, p := range r.state.Players {
				if p.IsBot {
					continue
				}
				name, won := p.Name, r.state.Scores[p.ID] == maxScore
				go func() {
					ctx, cancel := database.WithTimeout()
					defer cancel()
					if err := database.RecordGameResult(ctx, name, won); err != nil {
						logrus.Warnf("Room %s: failed recording game stats for %s: %v", r.Code, name, err)
					}
				}()
			}
		}

		r.broadcast(GameEvent{Type: EventGameEnded, Data: map[string]interface{}{
			"winner":  winner,
			"scores":  r.state.Scores,
			"isFinal": true,
		}})
		if r.OnGameEnd != nil {
			r.OnGameEnd(r.Code, string(winner), r.state.Scores)
		}
		return
	}

	r.broadcastState()
	r.broadcast(GameEvent{Type: EventRoundEnded, Data: map[string]interface{}{
		"winner":    winner,
		"rewards":   rewards,
		"nextRound": r.state.CurrentRound + 1,
	}})
}

// HandleStoneAction spends the coal bonus on a tool fix or break, then
// resumes the turn order.
func (r *Room) HandleStoneAction(playerID, targetID uuid.UUID, fix bool, tool engine.Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.handleStoneAction(playerID, targetID, fix, tool)
}

// handleStoneAction is the lock-held body of HandleStoneAction.
func (r *Room) handleStoneAction(playerID, targetID uuid.UUID, fix bool, tool engine.Tool) error {
	if r.state == nil || r.state.Status != models.StatusStoneAction {
		return ErrNoStoneAction
	}
	cur := r.state.CurrentPlayer()
	if cur == nil || cur.ID != playerID {
		return ErrNotYourTurn
	}
	target := r.state.PlayerByID(targetID)
	if target == nil {
		return ErrTargetNotFound
	}

	if fix {
		if !target.Tools.IsBroken(tool) {
			return fmt.Errorf("%s's %s is not broken", target.Name, tool)
		}
		target.Tools.Fix(tool)
		r.sendSystemMessage(fmt.Sprintf("%s repaired %s's %s with the bonus action.", cur.Name, target.Name, tool))
	} else {
		if target.ID == cur.ID {
			return ErrSelfTarget
		}
		if target.Tools.IsBroken(tool) {
			return fmt.Errorf("%s's %s is already broken", target.Name, tool)
		}
		target.Tools.Break(tool, cur.Name)
		r.sendSystemMessage(fmt.Sprintf("%s broke %s's %s with the bonus action.", cur.Name, target.Name, tool))
	}

	r.logAction(playerID, "stone_action", map[string]interface{}{
		"fix": fix, "tool": tool.String(), "target": targetID.String(),
	})
	r.state.Status = models.StatusPlaying
	r.advanceTurn()
	r.broadcastState()
	return nil
}

// SkipStoneAction declines the coal bonus.
func (r *Room) SkipStoneAction(playerID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == nil || r.state.Status != models.StatusStoneAction {
		return ErrNoStoneAction
	}
	cur := r.state.CurrentPlayer()
	if cur == nil || cur.ID != playerID {
		return ErrNotYourTurn
	}

	r.state.Status = models.StatusPlaying
	r.sendSystemMessage(fmt.Sprintf("%s declined the bonus action.", cur.Name))
	r.advanceTurn()
	r.broadcastState()
	return nil
}

// ToggleSuspicion flips the voter's suspicion mark on the target.
func (r *Room) ToggleSuspicion(voterID, targetID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == nil || r.state.Status != models.StatusPlaying {
		return
	}
	if r.state.Suspicions == nil {
		r.state.Suspicions = make(map[uuid.UUID][]uuid.UUID)
	}
	voters := r.state.Suspicions[targetID]
	for i, v := range voters {
		if v == voterID {
			r.state.Suspicions[targetID] = append(voters[:i], voters[i+1:]...)
			r.broadcastState()
			return
		}
	}
	r.state.Suspicions[targetID] = append(voters, voterID)
	r.broadcastState()
}

// ConfirmRole marks a player as having seen their role card.
func (r *Room) ConfirmRole(playerID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == nil || r.state.Status != models.StatusPlaying {
		return
	}
	for _, id := range r.state.ReadyPlayers {
		if id == playerID {
			return
		}
	}
	r.state.ReadyPlayers = append(r.state.ReadyPlayers, playerID)
	r.broadcastState()
}

// spawnTreasures scatters one or two chests in the middle columns, off
// the start row and at least Manhattan distance 3 apart. Assumes lock is
// held.
func (r *Room) spawnTreasures() []engine.Point {
	var treasures []engine.Point

	count := 1
	if r.rng.Float64() >= 0.6 {
		count = 2
	}

	for attempts := 0; len(treasures) < count && attempts < 100; attempts++ {
		x := 4 + r.rng.IntN(6)
		y := r.rng.IntN(engine.BoardHeight)
		if y == engine.StartY {
			continue
		}
		tooClose := false
		for _, t := range treasures {
			if absInt(t.X-x)+absInt(t.Y-y) < 3 {
				tooClose = true
				break
			}
		}
		if tooClose {
			continue
		}
		treasures = append(treasures, engine.Point{X: x, Y: y})
	}
	return treasures
}

// checkTreasure hands out a special card when a path lands on a chest.
// Assumes lock is held.
func (r *Room) checkTreasure(x, y int, player *models.Player) *engine.Card {
	for i, t := range r.state.TreasureLocs {
		if t.X == x && t.Y == y {
			r.state.TreasureLocs = append(r.state.TreasureLocs[:i], r.state.TreasureLocs[i+1:]...)
			return r.drawSpecialCard(player)
		}
	}
	return nil
}

// drawSpecialCard deals from the special deck, enforcing the one special
// card per hand limit. Assumes lock is held.
func (r *Room) drawSpecialCard(player *models.Player) *engine.Card {
	for _, c := range player.Hand {
		if c.Kind == engine.KindSpecial {
			r.sendSystemMessage(fmt.Sprintf("%s already holds a special card; the chest stays shut.", player.Name))
			return nil
		}
	}
	if len(r.specialDeck) == 0 {
		return nil
	}
	card := r.specialDeck[len(r.specialDeck)-1]
	r.specialDeck = r.specialDeck[:len(r.specialDeck)-1]
	player.Hand = append(player.Hand, card)
	r.sendSystemMessage(fmt.Sprintf("%s opened a treasure chest!", player.Name))
	r.broadcastState()
	return card
}

// ---------------------------------------------------------------------------
// Bot scheduling
// ---------------------------------------------------------------------------

// scheduleBotTurn queues the current seat's bot move after BotDelay when
// the turn loop is automated. The sequence counter invalidates timers
// left over from earlier turns. Assumes lock is held.
func (r *Room) scheduleBotTurn() {
	if !r.autoBot || r.state == nil {
		return
	}
	if r.state.Status != models.StatusPlaying && r.state.Status != models.StatusStoneAction {
		return
	}
	cur := r.state.CurrentPlayer()
	if cur == nil || !cur.IsBot {
		return
	}

	r.botSeq++
	seq := r.botSeq
	time.AfterFunc(r.BotDelay, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.botSeq != seq || r.state == nil {
			return
		}
		cur := r.state.CurrentPlayer()
		if cur == nil || !cur.IsBot {
			return
		}
		switch r.state.Status {
		case models.StatusPlaying:
			r.processBotTurn(cur)
		case models.StatusStoneAction:
			r.processBotStoneAction(cur)
		}
	})
}

// processBotTurn runs one bot move. Failures fall back to discarding and
// the turn never stalls. Assumes lock is held.
func (r *Room) processBotTurn(botPlayer *models.Player) {
	defer func() {
		if rec := recover(); rec != nil {
			logrus.Errorf("Room %s: bot %s turn panicked: %v", r.Code, botPlayer.Name, rec)
			r.advanceTurn()
			r.broadcastState()
		}
	}()

	if r.state == nil || r.state.Status != models.StatusPlaying {
		return
	}
	if len(botPlayer.Hand) == 0 {
		r.advanceTurn()
		return
	}

	seat := r.state.CurrentPlayerIndex
	action := bot.Decide(r.state, seat, r.rng)

	if action.Discard {
		if err := r.discardCard(botPlayer.ID, action.CardIndex); err != nil {
			r.advanceTurn()
			r.broadcastState()
		}
		return
	}

	if _, err := r.handlePlayCard(botPlayer.ID, action.CardIndex, action.Pos, action.TargetID); err != nil {
		logrus.Debugf("Room %s: bot %s play failed (%v), discarding", r.Code, botPlayer.Name, err)
		if derr := r.discardCard(botPlayer.ID, 0); derr != nil {
			r.advanceTurn()
			r.broadcastState()
		}
	}
}

// processBotStoneAction resolves the coal bonus for a bot seat. Assumes
// lock is held.
func (r *Room) processBotStoneAction(botPlayer *models.Player) {
	seat := r.state.CurrentPlayerIndex
	decision := bot.DecideStoneAction(r.state, seat, r.rng)
	if err := r.handleStoneAction(botPlayer.ID, decision.TargetID, decision.Fix, decision.Tool); err != nil {
		logrus.Debugf("Room %s: bot %s stone action failed (%v), skipping", r.Code, botPlayer.Name, err)
		r.state.Status = models.StatusPlaying
		r.advanceTurn()
		r.broadcastState()
	}
}

// ---------------------------------------------------------------------------
// Broadcast and logging helpers
// ---------------------------------------------------------------------------

// State returns the current round state, or nil in the lobby. The
// returned pointer is shared; use StateJSON for transport snapshots.
func (r *Room) State() *models.GameState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// StateJSON marshals the round state under the room lock.
func (r *Room) StateJSON() (json.RawMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == nil {
		return nil, ErrNotInProgress
	}
	return json.Marshal(r.state)
}

// stateJSON snapshots the state for a broadcast payload. Assumes lock is
// held.
func (r *Room) stateJSON() json.RawMessage {
	raw, err := json.Marshal(r.state)
	if err != nil {
		logrus.Errorf("Room %s: failed marshaling state: %v", r.Code, err)
		return nil
	}
	return raw
}

// broadcast delivers an event to every connected client. Assumes lock is
// held; payloads must already be snapshots.
func (r *Room) broadcast(ev GameEvent) {
	if r.BroadcastFn != nil {
		r.BroadcastFn(ev)
	}
}

// broadcastState pushes a full state snapshot. Assumes lock is held.
func (r *Room) broadcastState() {
	r.broadcast(GameEvent{Type: EventGameStateUpdated, Data: r.stateJSON()})
}

// broadcastRoom pushes the lobby roster and options. Assumes lock is
// held.
func (r *Room) broadcastRoom() {
	r.broadcast(GameEvent{Type: EventRoomUpdated, Data: map[string]interface{}{
		"code":    r.Code,
		"hostId":  r.HostID,
		"players": playerSummaries(r.players),
		"options": r.options,
	}})
}

// playerSummaries strips hands and roles from the roster for lobby
// payloads.
func playerSummaries(players []*models.Player) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(players))
	for _, p := range players {
		out = append(out, map[string]interface{}{
			"id":    p.ID,
			"name":  p.Name,
			"color": p.Color,
			"isBot": p.IsBot,
		})
	}
	return out
}

// sendSystemMessage broadcasts a server chat line. Assumes lock is held.
func (r *Room) sendSystemMessage(text string) {
	r.broadcast(GameEvent{Type: EventSystemMessage, Data: models.ChatMessage{
		ID:        uuid.NewString(),
		Text:      text,
		Timestamp: time.Now().UnixMilli(),
		System:    true,
	}})
}

// sendPrivateMessage delivers a line to a single player. Assumes lock is
// held.
func (r *Room) sendPrivateMessage(playerID uuid.UUID, text string) {
	if r.BroadcastToPlayerFn == nil {
		return
	}
	r.BroadcastToPlayerFn(playerID, GameEvent{Type: EventPrivateMessage, Data: models.ChatMessage{
		ID:        uuid.NewString(),
		Text:      text,
		Timestamp: time.Now().UnixMilli(),
		System:    true,
	}})
}

// logAction publishes the action to the Redis history list
// asynchronously. Assumes lock is held.
func (r *Room) logAction(actorID uuid.UUID, actionType string, payload map[string]interface{}) {
	r.actionIndex++
	if payload == nil {
		payload = make(map[string]interface{})
	}
	rec := cache.GameActionRecord{
		RoomCode:      r.Code,
		ActionIndex:   r.actionIndex,
		ActorID:       actorID,
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	}
	go func(rec cache.GameActionRecord) {
		if cache.Rdb == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := cache.PublishGameAction(ctx, rec); err != nil {
			logrus.Warnf("Room %s: failed publishing action %d (%s): %v", r.Code, rec.ActionIndex, rec.ActionType, err)
		}
	}(rec)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func absInt(a int) int {
	if a < 0 {
		return -a
	}
	return a
}

func appendLine(base, line string) string {
	if base == "" {
		return line
	}
	return base + "\n" + line
}
