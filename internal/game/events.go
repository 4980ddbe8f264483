// internal/game/events.go
package game

import (
	"github.com/google/uuid"
)

// OnGameEndFunc runs when a room's game reaches its final round.
// It receives the room code, the winning role, and the final scores.
type OnGameEndFunc func(roomCode string, winner string, scores map[uuid.UUID]int)

// GameEventType labels an event broadcast to room clients.
type GameEventType string

// Event types pushed over the room's websocket connections.
const (
	EventRoomUpdated         GameEventType = "roomUpdated"         // Lobby roster or options changed.
	EventGameStarted         GameEventType = "gameStarted"         // A round began; payload is the full state.
	EventGameStateUpdated    GameEventType = "gameStateUpdated"    // Public: state changed mid-round.
	EventRoundEnded          GameEventType = "roundEnded"          // Public: round finished, more rounds remain.
	EventGameEnded           GameEventType = "gameEnded"           // Public: final round finished.
	EventStoneActionRequired GameEventType = "stoneActionRequired" // Public: mover must pick a bonus tool action.
	EventSystemMessage       GameEventType = "systemMessage"       // Public: server chat line.
	EventPrivateMessage      GameEventType = "privateMessage"      // Private: e.g. map peek, oracle result.
	EventChatMessage         GameEventType = "chatMessage"         // Public: player chat line.
	EventError               GameEventType = "error"               // Private: a request was rejected.
	EventRoomCreated         GameEventType = "roomCreated"         // Private: reply to createRoom.
	EventRoomJoined          GameEventType = "roomJoined"          // Private: reply to joinRoom.
	EventRejoinSuccess       GameEventType = "rejoinSuccess"       // Private: reply to rejoinRoom.
	EventPlayerRoleInfo      GameEventType = "playerRoleInfo"      // Private: the player's secret role.
	EventActionResult        GameEventType = "actionResult"        // Private: reply to playCard/discardCard.
	EventEmoteReceived       GameEventType = "emoteReceived"       // Public: a player's emote.
	EventStatsReceived       GameEventType = "statsReceived"       // Private: reply to fetchStats.
	EventAllStatsReceived    GameEventType = "allStatsReceived"    // Private: reply to fetchAllStats.
)

// GameEvent is the envelope for everything a room pushes to clients.
type GameEvent struct {
	Type GameEventType `json:"type"`
	Data interface{}   `json:"data,omitempty"`
}

// PlayResult reports the outcome of a successfully played card.
type PlayResult struct {
	Message        string          // Public announcement, empty when nothing to say.
	PrivateMessage string          // Delivered only to the acting player.
	MapResult      string          // Peeked goal kind for map cards and goal reveals.
	skipConsume    bool            // Card already left the hand (trader, scavenger).
	TargetID       uuid.UUID       // Resolved target, when the card had one.
}
