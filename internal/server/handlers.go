// internal/server/handlers.go
package server

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/umbrella2kasa/ojamamono-online-sub000/internal/database"
	"github.com/umbrella2kasa/ojamamono-online-sub000/internal/game"
	"github.com/umbrella2kasa/ojamamono-online-sub000/internal/models"
)

func (s *Server) dispatch(ctx context.Context, c *client, env Envelope) {
	switch env.Type {
	case "createRoom":
		s.handleCreateRoom(c, env.Data)
	case "joinRoom":
		s.handleJoinRoom(c, env.Data)
	case "rejoinRoom":
		s.handleRejoinRoom(c, env.Data)
	case "joinSpectator":
		s.handleJoinSpectator(c, env.Data)
	case "addBot":
		s.handleAddBot(c, env.Data)
	case "updateOptions":
		s.handleUpdateOptions(c, env.Data)
	case "startGame":
		s.handleStartGame(c)
	case "nextRound":
		s.handleNextRound(c)
	case "playCard":
		s.handlePlayCard(c, env.Data)
	case "discardCard":
		s.handleDiscardCard(c, env.Data)
	case "stoneAction":
		s.handleStoneAction(c, env.Data)
	case "skipStoneAction":
		s.handleSkipStoneAction(c)
	case "voteSuspicion":
		s.handleVoteSuspicion(c, env.Data)
	case "roleConfirmed":
		s.handleRoleConfirmed(c)
	case "chatMessage":
		s.handleChatMessage(c, env.Data)
	case "sendEmote":
		s.handleSendEmote(c, env.Data)
	case "fetchStats":
		s.handleFetchStats(ctx, c, env.Data)
	case "fetchAllStats":
		s.handleFetchAllStats(ctx, c)
	case "leaveRoom":
		s.handleLeaveRoom(c)
	default:
		s.sendError(c, "Unknown message type.")
	}
}

// room resolves the client's current room, or reports an error.
func (s *Server) room(c *client) (*game.Room, bool) {
	if c.roomCode == "" {
		s.sendError(c, "You are not in a room.")
		return nil, false
	}
	room, ok := s.registry.Get(c.roomCode)
	if !ok {
		s.sendError(c, "Room no longer exists.")
		return nil, false
	}
	return room, true
}

func (s *Server) handleCreateRoom(c *client, data json.RawMessage) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &req); err != nil || req.Name == "" {
		s.sendError(c, "A player name is required.")
		return
	}

	room := s.registry.CreateRoom()
	if s.BotDelay > 0 {
		room.BotDelay = s.BotDelay
	}
	hub := s.hubFor(room)

	p, err := room.AddPlayer(req.Name)
	if err != nil {
		s.closeRoom(room.Code)
		s.sendError(c, err.Error())
		return
	}
	c.playerID = p.ID
	c.roomCode = room.Code
	hub.attach(c)

	s.send(c, game.GameEvent{Type: game.EventRoomCreated, Data: map[string]interface{}{
		"code":     room.Code,
		"playerId": p.ID,
		"players":  room.Players(),
		"options":  room.Options(),
		"hostId":   room.HostID,
	}})
	logrus.Infof("Room %s created by %s", room.Code, req.Name)
}

func (s *Server) handleJoinRoom(c *client, data json.RawMessage) {
	var req struct {
		Code string `json:"code"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &req); err != nil || req.Name == "" {
		s.sendError(c, "A room code and player name are required.")
		return
	}

	room, ok := s.registry.Get(req.Code)
	if !ok {
		s.sendError(c, "Room not found.")
		return
	}
	if state := room.State(); state != nil && state.Status != models.StatusLobby {
		s.sendError(c, "That game is already in progress.")
		return
	}
	for _, p := range room.Players() {
		if p.Name == req.Name {
			s.sendError(c, "That name is already taken in this room.")
			return
		}
	}

	p, err := room.AddPlayer(req.Name)
	if err != nil {
		s.sendError(c, err.Error())
		return
	}
	c.playerID = p.ID
	c.roomCode = room.Code
	s.hubFor(room).attach(c)

	s.send(c, game.GameEvent{Type: game.EventRoomJoined, Data: map[string]interface{}{
		"code":     room.Code,
		"playerId": p.ID,
		"players":  room.Players(),
		"options":  room.Options(),
		"hostId":   room.HostID,
	}})
}

func (s *Server) handleRejoinRoom(c *client, data json.RawMessage) {
	var req struct {
		Code     string    `json:"code"`
		PlayerID uuid.UUID `json:"playerId"`
	}
	if err := json.Unmarshal(data, &req); err != nil {
		s.sendError(c, "Malformed rejoin request.")
		return
	}

	room, ok := s.registry.Get(req.Code)
	if !ok {
		s.sendError(c, "Room not found.")
		return
	}
	var seat *models.Player
	for _, p := range room.Players() {
		if p.ID == req.PlayerID {
			seat = p
			break
		}
	}
	if seat == nil || seat.IsBot {
		s.sendError(c, "No such seat to rejoin.")
		return
	}

	c.playerID = seat.ID
	c.roomCode = room.Code
	s.hubFor(room).attach(c)

	payload := map[string]interface{}{
		"code":     room.Code,
		"playerId": seat.ID,
		"players":  room.Players(),
		"options":  room.Options(),
		"hostId":   room.HostID,
	}
	if stateJSON, err := room.StateJSON(); err == nil && stateJSON != nil {
		payload["state"] = stateJSON
	}
	s.send(c, game.GameEvent{Type: game.EventRejoinSuccess, Data: payload})

	if state := room.State(); state != nil && state.Status != models.StatusLobby {
		s.send(c, game.GameEvent{Type: game.EventPlayerRoleInfo, Data: map[string]interface{}{
			"role": seat.Role,
		}})
	}
	logrus.Infof("Player %s rejoined room %s", seat.Name, room.Code)
}

func (s *Server) handleJoinSpectator(c *client, data json.RawMessage) {
	var req struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(data, &req); err != nil {
		s.sendError(c, "Malformed spectate request.")
		return
	}
	room, ok := s.registry.Get(req.Code)
	if !ok {
		s.sendError(c, "Room not found.")
		return
	}

	// Spectators get a synthetic id so the hub can track the socket.
	c.playerID = uuid.New()
	c.roomCode = room.Code
	s.hubFor(room).attach(c)

	payload := map[string]interface{}{
		"code":    room.Code,
		"players": room.Players(),
		"options": room.Options(),
	}
	if stateJSON, err := room.StateJSON(); err == nil && stateJSON != nil {
		payload["state"] = stateJSON
	}
	s.send(c, game.GameEvent{Type: game.EventRoomJoined, Data: payload})
}

func (s *Server) handleAddBot(c *client, data json.RawMessage) {
	room, ok := s.room(c)
	if !ok {
		return
	}
	if room.HostID != c.playerID {
		s.sendError(c, "Only the host can add bots.")
		return
	}
	var req struct {
		Difficulty models.BotDifficulty `json:"difficulty"`
	}
	_ = json.Unmarshal(data, &req)
	if req.Difficulty == "" {
		req.Difficulty = room.Options().BotDifficulty
	}
	if _, err := room.AddBot(req.Difficulty); err != nil {
		s.sendError(c, err.Error())
	}
}

func (s *Server) handleUpdateOptions(c *client, data json.RawMessage) {
	room, ok := s.room(c)
	if !ok {
		return
	}
	var req struct {
		Options models.GameOptions `json:"options"`
	}
	if err := json.Unmarshal(data, &req); err != nil {
		s.sendError(c, "Malformed options.")
		return
	}
	if err := room.UpdateOptions(c.playerID, req.Options); err != nil {
		s.sendError(c, err.Error())
	}
}

func (s *Server) handleStartGame(c *client) {
	room, ok := s.room(c)
	if !ok {
		return
	}
	if err := room.StartGame(c.playerID); err != nil {
		s.sendError(c, err.Error())
		return
	}
	s.sendRoleInfo(room)
}

func (s *Server) handleNextRound(c *client) {
	room, ok := s.room(c)
	if !ok {
		return
	}
	if room.HostID != c.playerID {
		s.sendError(c, "Only the host can start the next round.")
		return
	}
	room.NextRound()
	s.sendRoleInfo(room)
}

// sendRoleInfo delivers each human player their secret role privately.
func (s *Server) sendRoleInfo(room *game.Room) {
	hub := s.hubFor(room)
	for _, p := range room.Players() {
		if p.IsBot {
			continue
		}
		hub.sendTo(p.ID, game.GameEvent{Type: game.EventPlayerRoleInfo, Data: map[string]interface{}{
			"role": p.Role,
		}})
	}
}

func (s *Server) handlePlayCard(c *client, data json.RawMessage) {
	room, ok := s.room(c)
	if !ok {
		return
	}
	var req struct {
		CardIndex int                  `json:"cardIndex"`
		Pos       *models.PlayPosition `json:"pos"`
		TargetID  uuid.UUID            `json:"targetPlayerId"`
	}
	if err := json.Unmarshal(data, &req); err != nil {
		s.sendError(c, "Malformed play request.")
		return
	}

	result, err := room.HandlePlayCard(c.playerID, req.CardIndex, req.Pos, req.TargetID)
	if err != nil {
		s.sendError(c, playErrorMessage(err))
		return
	}
	s.send(c, game.GameEvent{Type: game.EventActionResult, Data: map[string]interface{}{
		"ok":        true,
		"mapResult": result.MapResult,
	}})
}

func (s *Server) handleDiscardCard(c *client, data json.RawMessage) {
	room, ok := s.room(c)
	if !ok {
		return
	}
	var req struct {
		CardIndex int `json:"cardIndex"`
	}
	if err := json.Unmarshal(data, &req); err != nil {
		s.sendError(c, "Malformed discard request.")
		return
	}
	if err := room.DiscardCard(c.playerID, req.CardIndex); err != nil {
		s.sendError(c, playErrorMessage(err))
		return
	}
	s.send(c, game.GameEvent{Type: game.EventActionResult, Data: map[string]interface{}{"ok": true}})
}

func (s *Server) handleStoneAction(c *client, data json.RawMessage) {
	room, ok := s.room(c)
	if !ok {
		return
	}
	var req struct {
		TargetID   uuid.UUID `json:"targetId"`
		ActionType string    `json:"actionType"`
		ToolType   string    `json:"toolType"`
	}
	if err := json.Unmarshal(data, &req); err != nil {
		s.sendError(c, "Malformed stone action.")
		return
	}
	tool, ok2 := models.ParseTool(req.ToolType)
	if !ok2 {
		s.sendError(c, "Unknown tool type.")
		return
	}
	var fix bool
	switch req.ActionType {
	case "FIX":
		fix = true
	case "BREAK":
		fix = false
	default:
		s.sendError(c, "Action type must be FIX or BREAK.")
		return
	}
	if err := room.HandleStoneAction(c.playerID, req.TargetID, fix, tool); err != nil {
		s.sendError(c, playErrorMessage(err))
	}
}

func (s *Server) handleSkipStoneAction(c *client) {
	room, ok := s.room(c)
	if !ok {
		return
	}
	if err := room.SkipStoneAction(c.playerID); err != nil {
		s.sendError(c, playErrorMessage(err))
	}
}

func (s *Server) handleVoteSuspicion(c *client, data json.RawMessage) {
	room, ok := s.room(c)
	if !ok {
		return
	}
	var req struct {
		TargetID uuid.UUID `json:"targetId"`
	}
	if err := json.Unmarshal(data, &req); err != nil {
		s.sendError(c, "Malformed vote.")
		return
	}
	room.ToggleSuspicion(c.playerID, req.TargetID)
}

func (s *Server) handleRoleConfirmed(c *client) {
	room, ok := s.room(c)
	if !ok {
		return
	}
	room.ConfirmRole(c.playerID)
}

func (s *Server) handleChatMessage(c *client, data json.RawMessage) {
	room, ok := s.room(c)
	if !ok {
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &req); err != nil || req.Text == "" {
		return
	}
	var sender *models.Player
	for _, p := range room.Players() {
		if p.ID == c.playerID {
			sender = p
			break
		}
	}
	if sender == nil {
		return
	}
	msg := models.ChatMessage{
		ID:         uuid.NewString(),
		SenderID:   sender.ID.String(),
		SenderName: sender.Name,
		Text:       req.Text,
		Timestamp:  time.Now().UnixMilli(),
	}
	s.hubFor(room).broadcast(game.GameEvent{Type: game.EventChatMessage, Data: msg})
}

func (s *Server) handleSendEmote(c *client, data json.RawMessage) {
	room, ok := s.room(c)
	if !ok {
		return
	}
	var req struct {
		EmoteID string `json:"emoteId"`
	}
	if err := json.Unmarshal(data, &req); err != nil || req.EmoteID == "" {
		return
	}
	s.hubFor(room).broadcast(game.GameEvent{Type: game.EventEmoteReceived, Data: map[string]interface{}{
		"playerId": c.playerID,
		"emoteId":  req.EmoteID,
	}})
}

func (s *Server) handleFetchStats(ctx context.Context, c *client, data json.RawMessage) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &req); err != nil || req.Name == "" {
		s.sendError(c, "A player name is required.")
		return
	}
	stats, err := database.GetStats(ctx, req.Name)
	if err != nil {
		logrus.Warnf("Failed fetching stats for %s: %v", req.Name, err)
		s.sendError(c, "Stats are unavailable right now.")
		return
	}
	s.send(c, game.GameEvent{Type: game.EventStatsReceived, Data: stats})
}

func (s *Server) handleFetchAllStats(ctx context.Context, c *client) {
	stats, err := database.GetAllStats(ctx)
	if err != nil {
		logrus.Warnf("Failed fetching leaderboard: %v", err)
		s.sendError(c, "Stats are unavailable right now.")
		return
	}
	s.send(c, game.GameEvent{Type: game.EventAllStatsReceived, Data: stats})
}

func (s *Server) handleLeaveRoom(c *client) {
	room, ok := s.room(c)
	if !ok {
		return
	}
	s.hubFor(room).detach(c)
	room.RemovePlayer(c.playerID)
	if humanCount(room) == 0 {
		s.closeRoom(room.Code)
	}
	c.roomCode = ""
	c.playerID = uuid.Nil
}

func humanCount(room *game.Room) int {
	n := 0
	for _, p := range room.Players() {
		if !p.IsBot {
			n++
		}
	}
	return n
}

// playErrorMessage maps session errors to client-facing text.
func playErrorMessage(err error) string {
	switch {
	case errors.Is(err, game.ErrNotYourTurn):
		return "It is not your turn."
	case errors.Is(err, game.ErrToolsBroken):
		return "You cannot build paths while your tools are broken."
	case errors.Is(err, game.ErrInvalidCard):
		return "Invalid card selection."
	case errors.Is(err, game.ErrNotInProgress):
		return "The game is not in progress."
	default:
		return err.Error()
	}
}
