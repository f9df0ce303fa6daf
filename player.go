/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// Conn is the outbound half of a transport connection. Emit must not block;
// it reports false once the connection can no longer deliver.
type Conn interface {
	Emit(event string, payload any) bool
}

// Player is one connected participant. It only references its lobby by id;
// the lobby registry owns the lobby itself.
type Player struct {
	id   string
	conn Conn

	mu      sync.Mutex
	name    string
	lobbyID string
}

func newPlayer(conn Conn) *Player {
	return &Player{
		id:   uuid.NewString(),
		conn: conn,
	}
}

func (p *Player) ID() string {
	return p.id
}

func (p *Player) Name() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.name
}

func (p *Player) LobbyID() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.lobbyID
}

func (p *Player) emit(event string, payload any) bool {
	if p.conn == nil {
		return false
	}

	return p.conn.Emit(event, payload)
}

// claimLobby sets the lobby back-reference if the player is in no lobby.
func (p *Player) claimLobby(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.lobbyID != "" {
		return false
	}
	p.lobbyID = id

	return true
}

// releaseLobby clears the back-reference only if it still points at id.
func (p *Player) releaseLobby(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.lobbyID == id {
		p.lobbyID = ""
	}
}

func (p *Player) setName(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.name = name
}

// PlayerRegistry holds every connected player for the lifetime of the process.
type PlayerRegistry struct {
	mu      sync.RWMutex
	players map[string]*Player
	guests  uint64
}

func newPlayerRegistry() *PlayerRegistry {
	return &PlayerRegistry{
		players: make(map[string]*Player),
	}
}

// Register adds p, assigning it a fresh guest name if its current name is
// empty or already in use.
func (r *PlayerRegistry) Register(p *Player) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.Name()
	for name == "" || r.nameTakenLocked(name) {
		r.guests++
		name = "Guest" + strconv.FormatUint(r.guests, 10)
	}
	p.setName(name)

	r.players[p.id] = p
}

// Unregister removes the player with the given id. It reports whether the
// player was present; a repeated call is a no-op.
func (r *PlayerRegistry) Unregister(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.players[id]; !ok {
		return false
	}
	delete(r.players, id)

	return true
}

func (r *PlayerRegistry) Get(id string) (*Player, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.players[id]

	return p, ok
}

func (r *PlayerRegistry) FindByName(name string) (*Player, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.players {
		if p.Name() == name {
			return p, true
		}
	}

	return nil, false
}

func (r *PlayerRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.players)
}

// Rename validates name and assigns it to p in one critical section, so two
// concurrent claims for the same name cannot both succeed.
func (r *PlayerRegistry) Rename(p *Player, name string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	old := p.Name()
	if _, ok := r.players[p.id]; !ok {
		return old, false
	}
	if !isPlayerNameValid(name, lockedPlayerNames{r}) {
		return old, false
	}
	p.setName(name)

	return old, true
}

// names resolves ids to display names, skipping ids that are no longer registered.
func (r *PlayerRegistry) names(ids []string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.players[id]; ok {
			out = append(out, p.Name())
		}
	}

	return out
}

func (r *PlayerRegistry) emitTo(ids []string, event string, payload any) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range ids {
		if p, ok := r.players[id]; ok {
			p.emit(event, payload)
		}
	}
}

func (r *PlayerRegistry) nameTaken(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.nameTakenLocked(name)
}

func (r *PlayerRegistry) nameTakenLocked(name string) bool {
	for _, p := range r.players {
		if p.Name() == name {
			return true
		}
	}

	return false
}

// lockedPlayerNames is a nameSet view for callers already holding r.mu.
type lockedPlayerNames struct {
	r *PlayerRegistry
}

func (l lockedPlayerNames) nameTaken(name string) bool {
	return l.r.nameTakenLocked(name)
}
