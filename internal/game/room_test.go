// internal/game/room_test.go
package game

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umbrella2kasa/ojamamono-online-sub000/internal/engine"
	"github.com/umbrella2kasa/ojamamono-online-sub000/internal/models"
)

// mockBroadcaster captures room events for assertions.
type mockBroadcaster struct {
	mu           sync.Mutex
	allEvents    []GameEvent
	playerEvents map[uuid.UUID][]GameEvent
}

func newMockBroadcaster() *mockBroadcaster {
	return &mockBroadcaster{playerEvents: make(map[uuid.UUID][]GameEvent)}
}

func (mb *mockBroadcaster) broadcastFn(ev GameEvent) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.allEvents = append(mb.allEvents, ev)
}

func (mb *mockBroadcaster) broadcastToPlayerFn(playerID uuid.UUID, ev GameEvent) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.playerEvents[playerID] = append(mb.playerEvents[playerID], ev)
}

func (mb *mockBroadcaster) findEventByType(eventType GameEventType) *GameEvent {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	for i := len(mb.allEvents) - 1; i >= 0; i-- {
		if mb.allEvents[i].Type == eventType {
			return &mb.allEvents[i]
		}
	}
	return nil
}

func (mb *mockBroadcaster) lastPlayerEvent(playerID uuid.UUID) *GameEvent {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	events := mb.playerEvents[playerID]
	if len(events) == 0 {
		return nil
	}
	return &events[len(events)-1]
}

// setupTestRoom seats n human players and wires the mock broadcaster.
func setupTestRoom(t *testing.T, n int) (*Room, *mockBroadcaster) {
	t.Helper()
	room := NewRoom("TEST42", 99)
	mb := newMockBroadcaster()
	room.BroadcastFn = mb.broadcastFn
	room.BroadcastToPlayerFn = mb.broadcastToPlayerFn
	names := []string{"alice", "bob", "carol", "dave", "erin", "frank", "grace", "henry"}
	for i := 0; i < n; i++ {
		_, err := room.AddPlayer(names[i])
		require.NoError(t, err)
	}
	return room, mb
}

// startedRoom starts a round and pins the turn to seat 0 for
// deterministic assertions.
func startedRoom(t *testing.T, n int) (*Room, *mockBroadcaster) {
	t.Helper()
	room, mb := setupTestRoom(t, n)
	require.NoError(t, room.StartGame(uuid.Nil))
	room.mu.Lock()
	room.state.CurrentPlayerIndex = 0
	room.mu.Unlock()
	return room, mb
}

func giveCard(room *Room, seat int, card *engine.Card) int {
	room.mu.Lock()
	defer room.mu.Unlock()
	p := room.players[seat]
	p.Hand = append(p.Hand, card)
	return len(p.Hand) - 1
}

func TestAddPlayerAssignsHost(t *testing.T) {
	room, _ := setupTestRoom(t, 2)
	players := room.Players()
	assert.Equal(t, players[0].ID, room.HostID)
	assert.NotEqual(t, players[0].Color, players[1].Color)
}

func TestAddBotNamesAreUnique(t *testing.T) {
	room, _ := setupTestRoom(t, 0)
	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		b, err := room.AddBot(models.DifficultyNormal)
		require.NoError(t, err)
		require.True(t, b.IsBot)
		assert.False(t, seen[b.Name], "duplicate bot name %q", b.Name)
		seen[b.Name] = true
	}
}

func TestRoomCapacity(t *testing.T) {
	room, _ := setupTestRoom(t, 8)
	_, err := room.AddBot(models.DifficultyEasy)
	require.NoError(t, err)
	_, err = room.AddBot(models.DifficultyEasy)
	require.NoError(t, err)
	_, err = room.AddPlayer("overflow")
	assert.ErrorIs(t, err, ErrRoomFull)
}

func TestUpdateOptionsHostOnly(t *testing.T) {
	room, _ := setupTestRoom(t, 2)
	players := room.Players()

	opts := models.DefaultOptions()
	opts.MaxRounds = 5
	assert.ErrorIs(t, room.UpdateOptions(players[1].ID, opts), ErrNotHost)
	require.NoError(t, room.UpdateOptions(players[0].ID, opts))
	assert.Equal(t, 5, room.Options().MaxRounds)
}

func TestStartRoundDealsHands(t *testing.T) {
	room, mb := startedRoom(t, 5)

	st := room.State()
	require.NotNil(t, st)
	assert.Equal(t, models.StatusPlaying, st.Status)
	assert.Equal(t, 1, st.CurrentRound)

	for _, p := range st.Players {
		assert.Len(t, p.Hand, 6)
		assert.False(t, p.Tools.Any())
	}
	assert.Equal(t, 85-5*6, st.DeckCount)
	assert.NotNil(t, mb.findEventByType(EventGameStarted))

	diggers, saboteurs := 0, 0
	for _, p := range st.Players {
		switch p.Role {
		case models.RoleGoldDigger:
			diggers++
		case models.RoleSaboteur:
			saboteurs++
		}
	}
	assert.Equal(t, 4, diggers)
	assert.Equal(t, 2, saboteurs)
}

func TestHandSizeShrinksWithTable(t *testing.T) {
	room, _ := startedRoom(t, 7)
	for _, p := range room.State().Players {
		assert.Len(t, p.Hand, 5)
	}

	big, _ := startedRoom(t, 8)
	for _, p := range big.State().Players {
		assert.Len(t, p.Hand, 4)
	}
}

func TestAssignRolesFixedConfig(t *testing.T) {
	room, _ := setupTestRoom(t, 6)
	opts := models.DefaultOptions()
	opts.Roles = models.RoleConfig{
		Fixed: models.RoleQuota{GoldDiggers: 3, Saboteurs: 1, SelfishDwarves: 1, Geologists: 1},
	}
	require.NoError(t, room.UpdateOptions(room.HostID, opts))
	require.NoError(t, room.StartGame(uuid.Nil))

	counts := map[models.Role]int{}
	for _, p := range room.State().Players {
		counts[p.Role]++
	}
	assert.Equal(t, 3, counts[models.RoleGoldDigger])
	assert.Equal(t, 1, counts[models.RoleSaboteur])
	assert.Equal(t, 1, counts[models.RoleSelfishDwarf])
	assert.Equal(t, 1, counts[models.RoleGeologist])
}

func TestDiscardAdvancesTurn(t *testing.T) {
	room, _ := startedRoom(t, 3)
	st := room.State()
	first := st.CurrentPlayer()

	require.NoError(t, room.DiscardCard(first.ID, 0))
	assert.Equal(t, 1, st.CurrentPlayerIndex)
	assert.NotNil(t, st.DiscardTop)
	assert.Len(t, first.Hand, 6, "discard draws a replacement")
}

func TestPlayOutOfTurnRejected(t *testing.T) {
	room, _ := startedRoom(t, 3)
	other := room.State().Players[1]
	err := room.DiscardCard(other.ID, 0)
	assert.ErrorIs(t, err, ErrNotYourTurn)
}

func TestPathPlacementBlockedByBrokenTool(t *testing.T) {
	room, _ := startedRoom(t, 3)
	st := room.State()
	cur := st.CurrentPlayer()
	cur.Tools.Break(engine.Pickaxe, "somebody")

	idx := giveCard(room, 0, engine.NewPathCard(engine.Shape{Left: true, Right: true, Center: true}))
	_, err := room.HandlePlayCard(cur.ID, idx, &models.PlayPosition{X: 3, Y: 4}, uuid.Nil)
	assert.ErrorIs(t, err, ErrToolsBroken)
}

func TestInvalidPlacementDoesNotConsume(t *testing.T) {
	room, _ := startedRoom(t, 3)
	cur := room.State().CurrentPlayer()
	idx := giveCard(room, 0, engine.NewPathCard(engine.Shape{Top: true, Bottom: true, Center: true}))
	handLen := len(cur.Hand)

	_, err := room.HandlePlayCard(cur.ID, idx, &models.PlayPosition{X: 3, Y: 4}, uuid.Nil)
	require.Error(t, err)
	assert.Len(t, cur.Hand, handLen)
	assert.Equal(t, 0, room.State().CurrentPlayerIndex, "turn must not advance on failure")
}

func TestBreakAndFixActions(t *testing.T) {
	room, _ := startedRoom(t, 3)
	st := room.State()
	actor := st.Players[0]
	victim := st.Players[1]

	idx := giveCard(room, 0, engine.NewActionCard(engine.ActionBreakLantern))
	_, err := room.HandlePlayCard(actor.ID, idx, nil, victim.ID)
	require.NoError(t, err)
	assert.True(t, victim.Tools.IsBroken(engine.Lantern))
	assert.Equal(t, actor.Name, victim.Tools.BrokenBy[engine.Lantern])

	// Wrap the turn back to the victim and let them repair themselves.
	room.mu.Lock()
	room.state.CurrentPlayerIndex = 1
	room.mu.Unlock()
	idx = giveCard(room, 1, engine.NewActionCard(engine.ActionFixLanternCart))
	_, err = room.HandlePlayCard(victim.ID, idx, nil, victim.ID)
	require.NoError(t, err)
	assert.False(t, victim.Tools.IsBroken(engine.Lantern))
}

func TestFixWithNothingBrokenRejected(t *testing.T) {
	room, _ := startedRoom(t, 3)
	actor := room.State().Players[0]
	idx := giveCard(room, 0, engine.NewActionCard(engine.ActionFixPickaxe))
	_, err := room.HandlePlayCard(actor.ID, idx, nil, actor.ID)
	assert.Error(t, err)
}

func TestMapPeeksGoalPrivately(t *testing.T) {
	room, mb := startedRoom(t, 3)
	actor := room.State().Players[0]
	idx := giveCard(room, 0, engine.NewActionCard(engine.ActionMap))

	res, err := room.HandlePlayCard(actor.ID, idx, &models.PlayPosition{X: engine.GoalX, Y: 4}, actor.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, res.MapResult)

	cell := room.State().Board.At(engine.GoalX, 4)
	assert.False(t, cell.Card.Revealed, "map must not flip the goal for everyone")
	require.NotNil(t, mb.lastPlayerEvent(actor.ID))
}

func TestRockfallRemovesPathNotGoal(t *testing.T) {
	room, _ := startedRoom(t, 3)
	actor := room.State().Players[0]

	room.mu.Lock()
	require.NoError(t, room.board.Place(3, 4, engine.NewPathCard(engine.Shape{Left: true, Right: true, Center: true}), false))
	room.mu.Unlock()

	idx := giveCard(room, 0, engine.NewActionCard(engine.ActionRockfall))
	_, err := room.HandlePlayCard(actor.ID, idx, &models.PlayPosition{X: engine.GoalX, Y: 4}, uuid.Nil)
	assert.Error(t, err, "goals are indestructible")

	room.mu.Lock()
	room.state.CurrentPlayerIndex = 0
	room.mu.Unlock()
	_, err = room.HandlePlayCard(actor.ID, idx, &models.PlayPosition{X: 3, Y: 4}, uuid.Nil)
	require.NoError(t, err)
	assert.Nil(t, room.State().Board.At(3, 4))
}

// digToGoalColumn lays a straight corridor from the start toward the
// middle goal, leaving the final cell for the test to place.
func digToGoalColumn(t *testing.T, room *Room) {
	t.Helper()
	room.mu.Lock()
	defer room.mu.Unlock()
	h := engine.Shape{Left: true, Right: true, Center: true}
	for x := engine.StartX + 1; x < engine.GoalX-1; x++ {
		require.NoError(t, room.board.Place(x, engine.StartY, engine.NewPathCard(h), false))
	}
}

func setGoal(room *Room, y int, kind engine.GoalKind) {
	room.mu.Lock()
	defer room.mu.Unlock()
	for _, gy := range engine.GoalYs {
		cell := room.board.At(engine.GoalX, gy)
		if gy == y {
			cell.Card.Goal = kind
		} else if kind == engine.GoalGold {
			cell.Card.Goal = engine.GoalStone
		}
	}
}

func TestGoldRevealEndsRoundForDiggers(t *testing.T) {
	room, mb := startedRoom(t, 4)
	st := room.State()
	actor := st.Players[0]
	actor.Role = models.RoleGoldDigger
	digToGoalColumn(t, room)
	setGoal(room, engine.StartY, engine.GoalGold)

	idx := giveCard(room, 0, engine.NewPathCard(engine.Shape{Left: true, Right: true, Center: true}))
	_, err := room.HandlePlayCard(actor.ID, idx, &models.PlayPosition{X: engine.GoalX - 1, Y: engine.StartY}, uuid.Nil)
	require.NoError(t, err)

	assert.Equal(t, models.StatusRoundEnd, st.Status)
	assert.Equal(t, models.RoleGoldDigger, st.Winner)
	require.NotNil(t, st.RoundResult)

	for _, p := range st.Players {
		if p.Role == models.RoleGoldDigger {
			assert.Equal(t, 3, st.RoundResult.Rewards[p.ID], "digger %s", p.Name)
			assert.Equal(t, 3, st.Scores[p.ID])
		} else {
			assert.Equal(t, 0, st.RoundResult.Rewards[p.ID])
		}
	}
	assert.NotNil(t, mb.findEventByType(EventRoundEnded))
}

func TestGoldRevealBySelfishDwarfWinsAlone(t *testing.T) {
	room, _ := startedRoom(t, 4)
	st := room.State()
	actor := st.Players[0]
	actor.Role = models.RoleSelfishDwarf
	digToGoalColumn(t, room)
	setGoal(room, engine.StartY, engine.GoalGold)

	idx := giveCard(room, 0, engine.NewPathCard(engine.Shape{Left: true, Right: true, Center: true}))
	_, err := room.HandlePlayCard(actor.ID, idx, &models.PlayPosition{X: engine.GoalX - 1, Y: engine.StartY}, uuid.Nil)
	require.NoError(t, err)

	assert.Equal(t, models.RoleSelfishDwarf, st.Winner)
	assert.Equal(t, 5, st.Scores[actor.ID])
	for _, p := range st.Players[1:] {
		assert.Equal(t, 0, st.RoundResult.Rewards[p.ID])
	}
}

func TestStoneRevealGrantsBonusAction(t *testing.T) {
	room, mb := startedRoom(t, 4)
	st := room.State()
	actor := st.Players[0]
	victim := st.Players[1]
	digToGoalColumn(t, room)
	setGoal(room, engine.StartY, engine.GoalStone)

	idx := giveCard(room, 0, engine.NewPathCard(engine.Shape{Left: true, Right: true, Center: true}))
	_, err := room.HandlePlayCard(actor.ID, idx, &models.PlayPosition{X: engine.GoalX - 1, Y: engine.StartY}, uuid.Nil)
	require.NoError(t, err)

	assert.Equal(t, models.StatusStoneAction, st.Status)
	assert.Equal(t, 1, st.Scores[actor.ID], "coal pays one point")
	assert.Equal(t, 0, st.CurrentPlayerIndex, "turn waits for the bonus action")
	assert.NotNil(t, mb.findEventByType(EventStoneActionRequired))

	require.NoError(t, room.HandleStoneAction(actor.ID, victim.ID, false, engine.Cart))
	assert.True(t, victim.Tools.IsBroken(engine.Cart))
	assert.Equal(t, models.StatusPlaying, st.Status)
	assert.Equal(t, 1, st.CurrentPlayerIndex)
}

func TestSkipStoneAction(t *testing.T) {
	room, _ := startedRoom(t, 3)
	st := room.State()
	actor := st.Players[0]
	digToGoalColumn(t, room)
	setGoal(room, engine.StartY, engine.GoalStone)

	idx := giveCard(room, 0, engine.NewPathCard(engine.Shape{Left: true, Right: true, Center: true}))
	_, err := room.HandlePlayCard(actor.ID, idx, &models.PlayPosition{X: engine.GoalX - 1, Y: engine.StartY}, uuid.Nil)
	require.NoError(t, err)
	require.Equal(t, models.StatusStoneAction, st.Status)

	assert.ErrorIs(t, room.SkipStoneAction(st.Players[1].ID), ErrNotYourTurn)
	require.NoError(t, room.SkipStoneAction(actor.ID))
	assert.Equal(t, models.StatusPlaying, st.Status)
	assert.Equal(t, 1, st.CurrentPlayerIndex)
}

func TestExhaustionEndsRoundForSaboteurs(t *testing.T) {
	room, _ := startedRoom(t, 4)
	room.mu.Lock()
	st := room.state
	st.Players[2].Role = models.RoleSaboteur
	for _, p := range st.Players {
		if p.Role == models.RoleSaboteur {
			p.Role = models.RoleGoldDigger
		}
	}
	st.Players[2].Role = models.RoleSaboteur
	r0 := st.Players[0]
	r0.Hand = r0.Hand[:1]
	for _, p := range st.Players[1:] {
		p.Hand = nil
	}
	room.deck = nil
	st.DeckCount = 0
	room.mu.Unlock()

	require.NoError(t, room.DiscardCard(r0.ID, 0))

	assert.Equal(t, models.StatusRoundEnd, st.Status)
	assert.Equal(t, models.RoleSaboteur, st.Winner)
	assert.Equal(t, 4, st.RoundResult.Rewards[st.Players[2].ID], "lone saboteur earns four")
}

func TestGeologistsSplitCrystals(t *testing.T) {
	room, _ := startedRoom(t, 4)
	room.mu.Lock()
	st := room.state
	st.Players[2].Role = models.RoleGeologist
	st.Players[3].Role = models.RoleGeologist
	crystal := engine.Shape{Left: true, Right: true, Center: true}
	for _, x := range []int{3, 4, 5, 6, 7} {
		c := engine.NewPathCard(crystal)
		c.HasCrystal = true
		require.NoError(t, room.board.Place(x, engine.StartY, c, false))
	}
	room.finishRound(models.RoleSaboteur)
	room.mu.Unlock()

	// floor(floor(5*0.5)/2) = 1 each.
	assert.Equal(t, 1, st.RoundResult.Rewards[st.Players[2].ID])
	assert.Equal(t, 1, st.RoundResult.Rewards[st.Players[3].ID])
}

func TestThiefMovesOnePoint(t *testing.T) {
	room, _ := startedRoom(t, 3)
	st := room.State()
	actor, target := st.Players[0], st.Players[1]
	st.Scores[target.ID] = 2

	idx := giveCard(room, 0, engine.NewSpecialCard(engine.SpecialThief))
	_, err := room.HandlePlayCard(actor.ID, idx, nil, target.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Scores[target.ID])
	assert.Equal(t, 1, st.Scores[actor.ID])
}

func TestTraderSwapsHands(t *testing.T) {
	room, _ := startedRoom(t, 3)
	st := room.State()
	actor, target := st.Players[0], st.Players[1]
	targetHand := append([]*engine.Card{}, target.Hand...)

	idx := giveCard(room, 0, engine.NewSpecialCard(engine.SpecialTrader))
	_, err := room.HandlePlayCard(actor.ID, idx, nil, target.ID)
	require.NoError(t, err)

	assert.Equal(t, targetHand, actor.Hand, "actor now holds the target's old hand")
	for _, c := range target.Hand {
		assert.NotEqual(t, engine.KindSpecial, c.Kind, "the trader card itself was discarded, not traded")
	}
}

func TestDoubleActionRepeatsTurn(t *testing.T) {
	room, _ := startedRoom(t, 3)
	st := room.State()
	actor := st.Players[0]

	idx := giveCard(room, 0, engine.NewSpecialCard(engine.SpecialDoubleAction))
	_, err := room.HandlePlayCard(actor.ID, idx, nil, uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, 0, st.CurrentPlayerIndex, "same player acts again")
}

func TestScavengerTakesDiscardTop(t *testing.T) {
	room, _ := startedRoom(t, 3)
	st := room.State()
	actor := st.Players[0]

	require.NoError(t, room.DiscardCard(actor.ID, 0))
	wanted := st.DiscardTop
	room.mu.Lock()
	room.state.CurrentPlayerIndex = 0
	room.mu.Unlock()

	idx := giveCard(room, 0, engine.NewSpecialCard(engine.SpecialScavenger))
	_, err := room.HandlePlayCard(actor.ID, idx, nil, uuid.Nil)
	require.NoError(t, err)

	found := false
	for _, c := range actor.Hand {
		if c == wanted {
			found = true
		}
	}
	assert.True(t, found, "scavenged card joined the hand")
}

func TestOracleRejectsSelf(t *testing.T) {
	room, _ := startedRoom(t, 3)
	actor := room.State().Players[0]
	idx := giveCard(room, 0, engine.NewSpecialCard(engine.SpecialOracle))
	_, err := room.HandlePlayCard(actor.ID, idx, nil, actor.ID)
	assert.ErrorIs(t, err, ErrSelfTarget)
}

func TestTreasurePickupDealsSpecialCard(t *testing.T) {
	room, _ := startedRoom(t, 3)
	st := room.State()
	actor := st.Players[0]
	actor.Role = models.RoleGoldDigger

	room.mu.Lock()
	st.TreasureLocs = []engine.Point{{X: 3, Y: 4}}
	room.mu.Unlock()

	idx := giveCard(room, 0, engine.NewPathCard(engine.Shape{Left: true, Right: true, Center: true}))
	_, err := room.HandlePlayCard(actor.ID, idx, &models.PlayPosition{X: 3, Y: 4}, uuid.Nil)
	require.NoError(t, err)

	specials := 0
	for _, c := range actor.Hand {
		if c.Kind == engine.KindSpecial {
			specials++
		}
	}
	assert.Equal(t, 1, specials)
	assert.Empty(t, st.TreasureLocs)
}

func TestConsumeDrawsFromDeck(t *testing.T) {
	room, _ := startedRoom(t, 3)
	st := room.State()
	before := st.DeckCount

	require.NoError(t, room.DiscardCard(st.Players[0].ID, 0))
	assert.Equal(t, before-1, st.DeckCount)
}

func TestRemovePlayerAdjustsTurn(t *testing.T) {
	room, _ := startedRoom(t, 4)
	st := room.State()
	room.mu.Lock()
	room.state.CurrentPlayerIndex = 2
	room.mu.Unlock()

	room.RemovePlayer(st.Players[1].ID)
	assert.Equal(t, 1, room.State().CurrentPlayerIndex, "index shifts with the roster")
	assert.Len(t, room.Players(), 3)
}

func TestHostHandoverOnLeave(t *testing.T) {
	room, _ := setupTestRoom(t, 3)
	players := room.Players()
	room.RemovePlayer(players[0].ID)
	assert.Equal(t, players[1].ID, room.HostID)
}

func TestToggleSuspicion(t *testing.T) {
	room, _ := startedRoom(t, 3)
	st := room.State()
	voter, target := st.Players[0].ID, st.Players[1].ID

	room.ToggleSuspicion(voter, target)
	assert.Equal(t, []uuid.UUID{voter}, st.Suspicions[target])
	room.ToggleSuspicion(voter, target)
	assert.Empty(t, st.Suspicions[target])
}

func TestConfirmRole(t *testing.T) {
	room, _ := startedRoom(t, 3)
	st := room.State()
	id := st.Players[1].ID

	room.ConfirmRole(id)
	room.ConfirmRole(id)
	count := 0
	for _, r := range st.ReadyPlayers {
		if r == id {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestNextRoundKeepsScores(t *testing.T) {
	room, _ := startedRoom(t, 3)
	st := room.State()
	first := st.Players[0]
	room.mu.Lock()
	st.Scores[first.ID] = 7
	room.finishRound(models.RoleSaboteur)
	room.mu.Unlock()

	room.NextRound()
	st2 := room.State()
	assert.Equal(t, 2, st2.CurrentRound)
	assert.Equal(t, models.StatusPlaying, st2.Status)
	assert.GreaterOrEqual(t, st2.Scores[first.ID], 7, "scores carry across rounds")
}

func TestFinalRoundEndsGame(t *testing.T) {
	room, mb := setupTestRoom(t, 3)
	opts := models.DefaultOptions()
	opts.MaxRounds = 1
	require.NoError(t, room.UpdateOptions(room.HostID, opts))
	require.NoError(t, room.StartGame(uuid.Nil))

	var endedCode string
	room.OnGameEnd = func(code string, winner string, scores map[uuid.UUID]int) {
		endedCode = code
	}

	room.mu.Lock()
	room.finishRound(models.RoleSaboteur)
	room.mu.Unlock()

	assert.Equal(t, models.StatusGameEnd, room.State().Status)
	assert.NotNil(t, mb.findEventByType(EventGameEnded))
	assert.Equal(t, "TEST42", endedCode)
}
