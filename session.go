/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"sync"
)

// leaderAction is a privileged operation a lobby leader may perform.
type leaderAction int

const (
	actionKick leaderAction = iota + 1
	actionTransferLeadership
)

func parseLeaderAction(s string) (leaderAction, bool) {
	switch s {
	case "kick":
		return actionKick, true
	case "leader":
		return actionTransferLeadership, true
	default:
		return 0, false
	}
}

type joinRequest struct {
	ID       string `json:"id"`
	Spectate bool   `json:"spectate,omitempty"`
}

type createRequest struct {
	Name        any `json:"name"`
	PlayerCount any `json:"playerCount"`
	Map         any `json:"map"`
}

type leaderRequest struct {
	Target string `json:"target"`
	Action string `json:"action"`
}

// Session binds one transport connection to one Player. Events for a
// session are handled one at a time, in arrival order.
type Session struct {
	srv    *Server
	conn   Conn
	player *Player

	mu     sync.Mutex
	joined bool
	closed bool
}

// newSession registers a player for conn and tells the client its id.
func (s *Server) newSession(conn Conn) *Session {
	p := newPlayer(conn)
	s.players.Register(p)

	logf(s.cfg, "CONN: Player %s connected as %q", p.ID(), p.Name())

	p.emit("assigned-id", p.ID())

	return &Session{
		srv:    s,
		conn:   conn,
		player: p,
	}
}

func (s *Session) Player() *Player {
	return s.player
}

// Handle dispatches one inbound event. Malformed payloads and unknown
// events are rejected without touching shared state.
func (s *Session) Handle(event string, data json.RawMessage) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return InvalidState
	}

	switch event {
	case "request-name":
		return s.handleRequestName(data)
	case "chat-message":
		return s.handleChat(data)
	case "join-lobby":
		return s.handleJoin(data)
	case "leave-lobby":
		return s.handleLeave()
	case "create-lobby":
		return s.handleCreate(data)
	case "toggle-role":
		return s.handleToggle()
	case "leader-action":
		return s.handleLeaderAction(data)
	case "start-lobby":
		return s.handleStart()
	case "submit-action":
		return s.handleAction(data)
	case "list-lobbies":
		s.player.emit("lobby-list", s.srv.lobbies.Snapshots())
		return Ok
	case "ping":
		s.player.emit("ping", data)
		return Ok
	case "disconnect":
		s.closeLocked()
		return Ok
	default:
		return InvalidState
	}
}

// Close tears the session down. Calling it more than once is harmless.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closeLocked()
}

func (s *Session) closeLocked() {
	if s.closed {
		return
	}
	s.closed = true

	p := s.player
	if !s.srv.players.Unregister(p.ID()) {
		return
	}
	s.srv.chat.Leave(p.ID())

	s.leaveLobby()

	if s.joined {
		s.srv.router.Announce(p.Name()+" left the server.", p.ID())
	}

	logf(s.srv.cfg, "CONN: Player %q disconnected", p.Name())
}

// handleRequestName answers a name query or claim on first call, and treats
// every later call as a rename.
func (s *Session) handleRequestName(data json.RawMessage) Result {
	var name *string
	if len(data) > 0 {
		if err := json.Unmarshal(data, &name); err != nil {
			name = nil
		}
	}

	p := s.player

	if !s.joined {
		res := Ok
		if name != nil {
			if _, ok := s.srv.players.Rename(p, *name); !ok {
				res = Denied
			}
		}
		p.emit("name-confirmed", p.Name())

		s.srv.router.Announce(p.Name()+" joined the server.", p.ID())
		s.srv.chat.Join(p.ID(), s.conn)
		p.emit("lobby-list", s.srv.lobbies.Snapshots())
		s.joined = true

		logf(s.srv.cfg, "CONN: Player %s joined chat as %q", p.ID(), p.Name())

		return res
	}

	if name == nil {
		p.emit("name-confirmed", p.Name())
		return Ok
	}

	old, ok := s.srv.players.Rename(p, *name)
	if !ok {
		s.srv.router.Tell(p, msgNoName)
		return Denied
	}

	s.srv.router.Announce(old+" changed their name to "+*name+".", p.ID())
	p.emit("name-confirmed", *name)

	if l, ok := s.currentLobby(); ok {
		l.SendUpdate()
	}

	return Ok
}

func (s *Session) handleChat(data json.RawMessage) Result {
	var req chatRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return InvalidState
	}

	return s.srv.router.Route(s.player, req.To, sanitizeChat(req.Text))
}

func (s *Session) handleJoin(data json.RawMessage) Result {
	if s.player.LobbyID() != "" {
		return InvalidState
	}

	var req joinRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return InvalidState
	}

	l, ok := s.srv.lobbies.FindByID(req.ID)
	if !ok {
		s.srv.router.Tell(s.player, msgNoLobby)
		return NotFound
	}

	res := l.AddPlayer(s.player, req.Spectate)
	if res == NotFound {
		s.srv.router.Tell(s.player, msgNoLobby)
	}

	return res
}

func (s *Session) handleLeave() Result {
	if s.player.LobbyID() == "" {
		return InvalidState
	}

	return s.leaveLobby()
}

// leaveLobby removes the player from its lobby, if any, and sweeps.
func (s *Session) leaveLobby() Result {
	l, ok := s.currentLobby()
	if !ok {
		return NotFound
	}

	res := l.RemovePlayer(s.player)
	s.srv.lobbies.SweepEmpty()

	return res
}

func (s *Session) handleCreate(data json.RawMessage) Result {
	if s.player.LobbyID() != "" {
		return InvalidState
	}

	var req createRequest
	if len(data) > 0 {
		if err := json.Unmarshal(data, &req); err != nil {
			return InvalidState
		}
	}

	lc := filterLobbyConfig(req.Name, req.PlayerCount, req.Map, s.srv.lobbies)

	_, res := s.srv.lobbies.Create(lc, s.player)

	return res
}

func (s *Session) handleToggle() Result {
	l, ok := s.currentLobby()
	if !ok {
		return InvalidState
	}

	return l.ToggleJoinType(s.player)
}

// handleLeaderAction applies kick or leadership transfer. Authorization
// failures are silent to the client.
func (s *Session) handleLeaderAction(data json.RawMessage) Result {
	var req leaderRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return InvalidState
	}

	action, ok := parseLeaderAction(req.Action)
	if !ok {
		return InvalidState
	}

	l, ok := s.currentLobby()
	if !ok || !l.IsLeader(s.player.ID()) {
		return Denied
	}

	target, ok := s.srv.players.FindByName(req.Target)
	if !ok {
		return NotFound
	}
	if target.LobbyID() != l.ID() {
		return Denied
	}

	switch action {
	case actionKick:
		res := l.RemovePlayer(target)
		s.srv.lobbies.SweepEmpty()

		if res == Ok {
			logf(s.srv.cfg, "LOBBY: %q kicked %q from %s", s.player.Name(), target.Name(), l.ID())
		}

		return res
	case actionTransferLeadership:
		return l.ChangeLeader(target)
	}

	return InvalidState
}

func (s *Session) handleStart() Result {
	l, ok := s.currentLobby()
	if !ok || !l.IsLeader(s.player.ID()) {
		return Denied
	}

	return l.StartGame()
}

// handleAction forwards an in-game action and returns the game's answer to
// this connection only.
func (s *Session) handleAction(data json.RawMessage) Result {
	l, ok := s.currentLobby()
	if !ok || !l.Started() {
		return InvalidState
	}

	update, res := l.MakeAction(data, s.player.ID())
	if res != Ok {
		return res
	}

	s.player.emit("game-update", update)

	return Ok
}

func (s *Session) currentLobby() (*Lobby, bool) {
	id := s.player.LobbyID()
	if id == "" {
		return nil, false
	}

	return s.srv.lobbies.FindByID(id)
}
