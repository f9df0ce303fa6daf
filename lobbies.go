/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"crypto/rand"
	"slices"
	"sync"
	"time"

	"github.com/Seednode/lobbybox/games"
)

const lobbyIDLength = 8

// LobbyRegistry owns every live lobby. Callers only see copies of its
// contents, never the backing storage.
type LobbyRegistry struct {
	cfg     *Config
	players *PlayerRegistry
	newGame games.Factory

	mu      sync.RWMutex
	lobbies map[string]*Lobby
	order   []string // creation order
}

func newLobbyRegistry(cfg *Config, players *PlayerRegistry, newGame games.Factory) *LobbyRegistry {
	if newGame == nil {
		newGame = games.NewArena
	}

	return &LobbyRegistry{
		cfg:     cfg,
		players: players,
		newGame: newGame,
		lobbies: make(map[string]*Lobby),
	}
}

// filterLobbyConfig turns client-supplied options into a safe config.
// An unusable name is left empty so that Create assigns a default one.
func filterLobbyConfig(name any, capacity any, mapName any, existing nameSet) LobbyConfig {
	lc := LobbyConfig{
		Capacity: defaultCapacity,
		Map:      games.RandomMap,
	}

	if isLobbyNameValid(name, existing) {
		lc.Name = name.(string)
	}

	if n, ok := capacity.(float64); ok && n == float64(int(n)) && n >= minCapacity && n <= maxCapacity {
		lc.Capacity = int(n)
	}

	if m, ok := mapName.(string); ok && m != "" {
		lc.Map = m
	}

	return lc
}

// Create registers a new lobby and joins creator as its first member and
// leader in the same critical section, so a concurrent sweep can never see
// the lobby empty.
func (r *LobbyRegistry) Create(lc LobbyConfig, creator *Player) (*Lobby, Result) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if creator.LobbyID() != "" {
		return nil, InvalidState
	}

	if lc.Capacity < minCapacity || lc.Capacity > maxCapacity {
		lc.Capacity = defaultCapacity
	}
	if lc.Map == "" {
		lc.Map = games.RandomMap
	}

	id := r.newLobbyIDLocked()

	// Re-check the name now that the registry is locked.
	if lc.Name != "" && !isLobbyNameValid(lc.Name, lockedLobbyNames{r}) {
		lc.Name = ""
	}
	if lc.Name == "" {
		lc.Name = "Game " + id
	}

	l := newLobby(r.cfg, id, lc, r.players, r.newGame)

	if res := l.AddPlayer(creator, false); res != Ok {
		return nil, res
	}

	r.lobbies[id] = l
	r.order = append(r.order, id)

	logf(r.cfg, "LOBBY: Created %s (%q, capacity %d, map %s)", id, lc.Name, lc.Capacity, lc.Map)

	return l, Ok
}

func (r *LobbyRegistry) FindByID(id string) (*Lobby, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.lobbies[id]

	return l, ok
}

// Delete destroys the lobby with the given id, releasing its game and
// detaching its participants before removal.
func (r *LobbyRegistry) Delete(id string) Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.lobbies[id]; !ok {
		return NotFound
	}
	r.deleteLocked(id)

	return Ok
}

// SweepEmpty destroys every lobby with neither members nor spectators and
// returns how many were removed.
func (r *LobbyRegistry) SweepEmpty() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	swept := 0
	for _, id := range slices.Clone(r.order) {
		if r.lobbies[id].empty() {
			r.deleteLocked(id)
			swept++
		}
	}

	return swept
}

// List returns the live lobbies in creation order.
func (r *LobbyRegistry) List() []*Lobby {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Lobby, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.lobbies[id])
	}

	return out
}

func (r *LobbyRegistry) Snapshots() []LobbySnapshot {
	lobbies := r.List()

	out := make([]LobbySnapshot, 0, len(lobbies))
	for _, l := range lobbies {
		out = append(out, l.Serialize())
	}

	return out
}

func (r *LobbyRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.lobbies)
}

func (r *LobbyRegistry) nameTaken(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.nameTakenLocked(name)
}

func (r *LobbyRegistry) nameTakenLocked(name string) bool {
	for _, l := range r.lobbies {
		if l.name == name {
			return true
		}
	}

	return false
}

func (r *LobbyRegistry) deleteLocked(id string) {
	l, ok := r.lobbies[id]
	if !ok {
		return
	}

	l.destroy()

	delete(r.lobbies, id)
	r.order = slices.DeleteFunc(r.order, func(v string) bool { return v == id })

	logf(r.cfg, "LOBBY: Destroyed %s", id)
}

// newLobbyIDLocked generates a crypto-random lobby id that does not collide
// with any live lobby.
func (r *LobbyRegistry) newLobbyIDLocked() string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	for {
		buf := make([]byte, lobbyIDLength)
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		out := make([]byte, lobbyIDLength)
		for i := range out {
			out[i] = letters[int(buf[i])%len(letters)]
		}
		id := string(out)

		if _, exists := r.lobbies[id]; !exists {
			return id
		}
	}
}

// reapIdle deletes lobbies that have seen no activity since cutoff.
func (r *LobbyRegistry) reapIdle(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	reaped := 0
	for _, id := range slices.Clone(r.order) {
		if r.lobbies[id].idleSince().Before(cutoff) {
			r.deleteLocked(id)
			reaped++
		}
	}

	return reaped
}

// reaperLoop periodically removes lobbies idle longer than timeout.
func (r *LobbyRegistry) reaperLoop(ctx context.Context, timeout time.Duration) {
	ticker := time.NewTicker(timeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := r.reapIdle(now.Add(-timeout)); n > 0 {
				logf(r.cfg, "LOBBY: Reaped %d idle lobbies", n)
			}
		}
	}
}

// lockedLobbyNames is a nameSet view for callers already holding r.mu.
type lockedLobbyNames struct {
	r *LobbyRegistry
}

func (l lockedLobbyNames) nameTaken(name string) bool {
	return l.r.nameTakenLocked(name)
}
