/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"slices"
	"sync"
	"time"

	"github.com/Seednode/lobbybox/games"
)

const (
	minCapacity     = 2
	maxCapacity     = 8
	defaultCapacity = 2
)

// LobbyConfig is the filtered, creation-time configuration of a lobby.
type LobbyConfig struct {
	Name     string
	Capacity int
	Map      string
}

// LobbySnapshot is the transmissible view of a lobby. It never carries
// the embedded game's state.
type LobbySnapshot struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Players    []string `json:"players"`
	Spectators []string `json:"spectators"`
	Leader     string   `json:"leader"`
	Started    bool     `json:"started"`
	Capacity   int      `json:"playerCount"`
	Map        string   `json:"map"`
}

// Lobby is one session: its members, leader, and (once started) the game.
// Members are held by player id and resolved through the player registry.
type Lobby struct {
	id       string
	name     string
	capacity int
	mapName  string

	cfg     *Config
	players *PlayerRegistry
	newGame games.Factory

	mu         sync.Mutex
	members    []string // join order
	spectators []string
	leader     string
	started    bool
	destroyed  bool
	game       games.Game
	lastActive time.Time
}

func newLobby(cfg *Config, id string, lc LobbyConfig, players *PlayerRegistry, newGame games.Factory) *Lobby {
	return &Lobby{
		id:         id,
		name:       lc.Name,
		capacity:   lc.Capacity,
		mapName:    lc.Map,
		cfg:        cfg,
		players:    players,
		newGame:    newGame,
		lastActive: time.Now(),
	}
}

func (l *Lobby) ID() string {
	return l.id
}

func (l *Lobby) Name() string {
	return l.name
}

func (l *Lobby) Started() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.started
}

func (l *Lobby) Leader() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.leader
}

func (l *Lobby) IsLeader(playerID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return !l.destroyed && l.leader != "" && l.leader == playerID
}

// Members returns the player member ids in join order.
func (l *Lobby) Members() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return slices.Clone(l.members)
}

func (l *Lobby) Spectators() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return slices.Clone(l.spectators)
}

// Contains reports whether playerID is a member or spectator.
func (l *Lobby) Contains(playerID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return slices.Contains(l.members, playerID) || slices.Contains(l.spectators, playerID)
}

// AddPlayer joins p as a member, or as a spectator when spectate is set.
// Spectators are not bound by capacity.
func (l *Lobby) AddPlayer(p *Player, spectate bool) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.addPlayerLocked(p, spectate)
}

func (l *Lobby) addPlayerLocked(p *Player, spectate bool) Result {
	switch {
	case l.destroyed:
		return NotFound
	case l.started:
		return InvalidState
	case !spectate && len(l.members) >= l.capacity:
		return InvalidState
	}

	if !p.claimLobby(l.id) {
		return InvalidState
	}

	if spectate {
		l.spectators = append(l.spectators, p.id)
	} else {
		l.members = append(l.members, p.id)
	}
	l.electLocked()
	l.touchLocked()

	logf(l.cfg, "LOBBY: %q joined %s (spectator: %t)", p.Name(), l.id, spectate)

	l.sendUpdateLocked()

	return Ok
}

// RemovePlayer detaches p from whichever set it occupies. A departing leader
// hands over to the earliest-joined remaining member.
func (l *Lobby) RemovePlayer(p *Player) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.destroyed {
		return NotFound
	}

	switch {
	case slices.Contains(l.members, p.id):
		l.members = slices.DeleteFunc(l.members, func(id string) bool { return id == p.id })
	case slices.Contains(l.spectators, p.id):
		l.spectators = slices.DeleteFunc(l.spectators, func(id string) bool { return id == p.id })
	default:
		return NotFound
	}

	p.releaseLobby(l.id)
	p.emit("lobby-update", nil)

	l.electLocked()
	l.touchLocked()

	logf(l.cfg, "LOBBY: %q left %s", p.Name(), l.id)

	l.sendUpdateLocked()

	return Ok
}

// ToggleJoinType moves p between members and spectators. Moving into the
// member set honours capacity.
func (l *Lobby) ToggleJoinType(p *Player) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch {
	case l.destroyed:
		return NotFound
	case l.started:
		return InvalidState
	}

	switch {
	case slices.Contains(l.members, p.id):
		l.members = slices.DeleteFunc(l.members, func(id string) bool { return id == p.id })
		l.spectators = append(l.spectators, p.id)
	case slices.Contains(l.spectators, p.id):
		if len(l.members) >= l.capacity {
			return InvalidState
		}
		l.spectators = slices.DeleteFunc(l.spectators, func(id string) bool { return id == p.id })
		l.members = append(l.members, p.id)
	default:
		return NotFound
	}

	l.electLocked()
	l.touchLocked()
	l.sendUpdateLocked()

	return Ok
}

// ChangeLeader hands leadership to p, who must be a player member.
func (l *Lobby) ChangeLeader(p *Player) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch {
	case l.destroyed:
		return NotFound
	case slices.Contains(l.spectators, p.id):
		return InvalidState
	case !slices.Contains(l.members, p.id):
		return NotFound
	}

	l.leader = p.id
	l.touchLocked()

	logf(l.cfg, "LOBBY: %q now leads %s", p.Name(), l.id)

	l.sendUpdateLocked()

	return Ok
}

// StartGame builds the embedded game from the current members. It can only
// happen once.
func (l *Lobby) StartGame() Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch {
	case l.destroyed:
		return NotFound
	case l.started:
		return InvalidState
	}

	l.game = l.newGame(games.Config{
		Map:     l.mapName,
		Players: slices.Clone(l.members),
	})
	l.started = true
	l.touchLocked()

	logf(l.cfg, "LOBBY: %s started with %d players", l.id, len(l.members))

	l.sendUpdateLocked()

	return Ok
}

// DoGameStep advances the embedded game by one step and returns its output.
func (l *Lobby) DoGameStep() (any, Result) {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch {
	case l.destroyed:
		return nil, NotFound
	case !l.started || l.game == nil:
		return nil, InvalidState
	}

	return l.game.Step(), Ok
}

// MakeAction forwards an action to the game on behalf of playerID and
// returns the game's answer unchanged.
func (l *Lobby) MakeAction(action json.RawMessage, playerID string) (any, Result) {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch {
	case l.destroyed:
		return nil, NotFound
	case !l.started || l.game == nil:
		return nil, InvalidState
	}

	l.touchLocked()

	return l.game.MakeAction(action, playerID), Ok
}

func (l *Lobby) Serialize() LobbySnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.serializeLocked()
}

// Broadcast emits to every member and spectator.
func (l *Lobby) Broadcast(event string, payload any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.destroyed {
		return
	}

	l.players.emitTo(l.participantsLocked(), event, payload)
}

// SendUpdate broadcasts the current snapshot to every participant.
func (l *Lobby) SendUpdate() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.destroyed {
		return
	}

	l.sendUpdateLocked()
}

func (l *Lobby) empty() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.members) == 0 && len(l.spectators) == 0
}

func (l *Lobby) idleSince() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.lastActive
}

// destroy releases the game and detaches every participant. Only the lobby
// registry calls it, while removing the lobby.
func (l *Lobby) destroy() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.destroyed {
		return
	}
	l.destroyed = true

	if l.game != nil {
		l.game.Close()
		l.game = nil
	}

	for _, id := range l.participantsLocked() {
		if p, ok := l.players.Get(id); ok {
			p.releaseLobby(l.id)
			p.emit("lobby-update", nil)
		}
	}
	l.members = nil
	l.spectators = nil
	l.leader = ""
}

func (l *Lobby) serializeLocked() LobbySnapshot {
	leader := ""
	if names := l.players.names([]string{l.leader}); l.leader != "" && len(names) == 1 {
		leader = names[0]
	}

	return LobbySnapshot{
		ID:         l.id,
		Name:       l.name,
		Players:    l.players.names(l.members),
		Spectators: l.players.names(l.spectators),
		Leader:     leader,
		Started:    l.started,
		Capacity:   l.capacity,
		Map:        l.mapName,
	}
}

// electLocked keeps the leader inside the member set: the earliest-joined
// member takes over whenever the current leader is not a member.
func (l *Lobby) electLocked() {
	if slices.Contains(l.members, l.leader) {
		return
	}

	l.leader = ""
	if len(l.members) > 0 {
		l.leader = l.members[0]
	}
}

func (l *Lobby) participantsLocked() []string {
	return append(slices.Clone(l.members), l.spectators...)
}

func (l *Lobby) sendUpdateLocked() {
	l.players.emitTo(l.participantsLocked(), "lobby-update", l.serializeLocked())
}

func (l *Lobby) touchLocked() {
	l.lastActive = time.Now()
}
