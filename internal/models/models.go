// Package models holds the value types shared between the session
// engine, the bot decision engine, and the transport layer.
package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/umbrella2kasa/ojamamono-online-sub000/internal/engine"
)

// Role is a seat's hidden win-condition affiliation. Reassigned every
// round.
type Role string

const (
	RoleGoldDigger   Role = "GOLD_DIGGER"
	RoleSaboteur     Role = "SABOTEUR"
	RoleSelfishDwarf Role = "SELFISH_DWARF"
	RoleGeologist    Role = "GEOLOGIST"
)

// GameStatus is the session state machine's current state.
type GameStatus string

const (
	StatusLobby       GameStatus = "LOBBY"
	StatusPlaying     GameStatus = "PLAYING"
	StatusStoneAction GameStatus = "WAITING_FOR_STONE_ACTION"
	StatusRoundEnd    GameStatus = "ROUND_END"
	StatusGameEnd     GameStatus = "GAME_END"
)

// BotDifficulty selects the decision engine tier for an automated seat.
type BotDifficulty string

const (
	DifficultyEasy   BotDifficulty = "EASY"
	DifficultyNormal BotDifficulty = "NORMAL"
	DifficultyHard   BotDifficulty = "HARD"
)

// ToolState tracks the three breakable tools of one player, with the
// display name of whoever broke each (shown on the player board).
type ToolState struct {
	Broken   [engine.NumTools]bool   `json:"broken"`
	BrokenBy [engine.NumTools]string `json:"brokenBy"`
}

// Any reports whether at least one tool is broken; a player with any
// broken tool cannot place path cards.
func (ts *ToolState) Any() bool {
	return ts.Broken[engine.Pickaxe] || ts.Broken[engine.Lantern] || ts.Broken[engine.Cart]
}

// IsBroken reports whether the given tool is broken.
func (ts *ToolState) IsBroken(tool engine.Tool) bool {
	return ts.Broken[tool]
}

// Break marks a tool broken and records who did it.
func (ts *ToolState) Break(tool engine.Tool, by string) {
	ts.Broken[tool] = true
	ts.BrokenBy[tool] = by
}

// Fix repairs a tool and clears the attribution.
func (ts *ToolState) Fix(tool engine.Tool) {
	ts.Broken[tool] = false
	ts.BrokenBy[tool] = ""
}

// Reset repairs everything (round start).
func (ts *ToolState) Reset() {
	*ts = ToolState{}
}

// Player is one seat, human or bot. The persistent ID survives
// reconnects; bots are flagged and carry their own difficulty.
type Player struct {
	ID         uuid.UUID      `json:"id"`
	Name       string         `json:"name"`
	Color      string         `json:"color"`
	Role       Role           `json:"role"`
	Hand       []*engine.Card `json:"hand"`
	Tools      ToolState      `json:"tools"`
	IsBot      bool           `json:"isBot"`
	Difficulty BotDifficulty  `json:"difficulty,omitempty"`
}

// RoleQuota counts seats per role for one slot group.
type RoleQuota struct {
	GoldDiggers    int `json:"goldDiggers"`
	Saboteurs      int `json:"saboteurs"`
	SelfishDwarves int `json:"selfishDwarves"`
	Geologists     int `json:"geologists"`
}

// Total sums the quota.
func (q RoleQuota) Total() int {
	return q.GoldDiggers + q.Saboteurs + q.SelfishDwarves + q.Geologists
}

// IsZero reports whether every count is zero.
func (q RoleQuota) IsZero() bool {
	return q.Total() == 0
}

// RoleConfig is the two-tier role assignment: Fixed slots are guaranteed,
// Random slots form the pool that fills the remaining seats.
type RoleConfig struct {
	Fixed  RoleQuota `json:"fixed"`
	Random RoleQuota `json:"random"`
}

// GameOptions is the host-tunable session configuration.
type GameOptions struct {
	MaxRounds     int                  `json:"maxRounds"`
	BotDifficulty BotDifficulty        `json:"botDifficulty"`
	Roles         RoleConfig           `json:"roleConfig"`
	Specials      engine.SpecialCounts `json:"specialCardConfig"`
}

// DefaultOptions returns the standard three-round configuration.
func DefaultOptions() GameOptions {
	return GameOptions{
		MaxRounds:     3,
		BotDifficulty: DifficultyNormal,
		Specials:      engine.DefaultSpecialCounts(),
	}
}

// RoundResult summarizes one resolved round.
type RoundResult struct {
	Winner          Role              `json:"winner"`
	Rewards         map[uuid.UUID]int `json:"rewards"`
	GoldDiggerCount int               `json:"goldDiggerCount"`
}

// GameState is one round's live state, replaced wholesale at round start.
// Scores persist across rounds and are carried over.
type GameState struct {
	Players            []*Player           `json:"players"`
	Board              *engine.Board       `json:"board"`
	DeckCount          int                 `json:"deckCount"`
	CurrentPlayerIndex int                 `json:"currentPlayerIndex"`
	Winner             Role                `json:"winner,omitempty"`
	Status             GameStatus          `json:"status"`
	CurrentRound       int                 `json:"currentRound"`
	MaxRounds          int                 `json:"maxRounds"`
	Scores             map[uuid.UUID]int   `json:"scores"`
	RoundResult        *RoundResult        `json:"roundResult,omitempty"`
	Options            GameOptions         `json:"options"`
	Suspicions         map[uuid.UUID][]uuid.UUID `json:"suspicions,omitempty"`
	ReadyPlayers       []uuid.UUID         `json:"readyPlayers,omitempty"`
	TreasureLocs       []engine.Point      `json:"treasureLocs,omitempty"`
	DiscardTop         *engine.Card        `json:"discardPileTop,omitempty"`
}

// CurrentPlayer returns the seat whose turn it is, or nil on an empty
// table.
func (gs *GameState) CurrentPlayer() *Player {
	if len(gs.Players) == 0 || gs.CurrentPlayerIndex < 0 || gs.CurrentPlayerIndex >= len(gs.Players) {
		return nil
	}
	return gs.Players[gs.CurrentPlayerIndex]
}

// PlayerByID finds a seat by persistent id.
func (gs *GameState) PlayerByID(id uuid.UUID) *Player {
	for _, p := range gs.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// PlayPosition is a placement request: coordinate plus orientation.
type PlayPosition struct {
	X        int  `json:"x"`
	Y        int  `json:"y"`
	Reversed bool `json:"isReversed"`
}

// ChatMessage is a lobby/table chat line; system lines carry System=true.
type ChatMessage struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	SenderName string    `json:"senderName"`
	Text       string    `json:"text"`
	Timestamp  int64     `json:"timestamp"`
	System     bool      `json:"system,omitempty"`
}

// PlayerStats is the cross-session record kept per display name. Bots are
// never recorded.
type PlayerStats struct {
	Name        string    `json:"name"`
	RoundWins   int       `json:"roundWins"`
	RoundPlayed int       `json:"roundPlayed"`
	GameWins    int       `json:"gameWins"`
	GamePlayed  int       `json:"gamePlayed"`
	TotalGold   int       `json:"totalGold"`
	LastSeen    time.Time `json:"lastSeen"`
}

// ParseTool maps the wire name of a tool to its engine value.
func ParseTool(s string) (engine.Tool, bool) {
	switch s {
	case "PICKAXE":
		return engine.Pickaxe, true
	case "LANTERN":
		return engine.Lantern, true
	case "CART":
		return engine.Cart, true
	}
	return engine.Pickaxe, false
}
