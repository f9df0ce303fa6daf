/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/Seednode/lobbybox/games"
)

type emitted struct {
	event   string
	payload any
}

type fakeConn struct {
	mu     sync.Mutex
	events []emitted
	dead   bool
}

func (c *fakeConn) Emit(event string, payload any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dead {
		return false
	}
	c.events = append(c.events, emitted{event: event, payload: payload})

	return true
}

func (c *fakeConn) count(event string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, e := range c.events {
		if e.event == event {
			n++
		}
	}

	return n
}

func (c *fakeConn) last(event string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := len(c.events) - 1; i >= 0; i-- {
		if c.events[i].event == event {
			return c.events[i].payload, true
		}
	}

	return nil, false
}

func (c *fakeConn) chats() []ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []ChatMessage
	for _, e := range c.events {
		if msg, ok := e.payload.(ChatMessage); ok && e.event == "chat-message" {
			out = append(out, msg)
		}
	}

	return out
}

func (c *fakeConn) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.events = nil
}

type fakeGame struct {
	mu      sync.Mutex
	cfg     games.Config
	steps   int
	actions []string
	closed  bool
}

func (g *fakeGame) MakeAction(action json.RawMessage, playerID string) any {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.actions = append(g.actions, playerID)

	return map[string]string{"player": playerID, "action": string(action)}
}

func (g *fakeGame) Step() any {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.steps++

	return g.steps
}

func (g *fakeGame) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.closed = true
}

func (g *fakeGame) stepCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.steps
}

func (g *fakeGame) isClosed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.closed
}

type fakeFactory struct {
	mu    sync.Mutex
	games []*fakeGame
}

func (f *fakeFactory) New(cfg games.Config) games.Game {
	f.mu.Lock()
	defer f.mu.Unlock()

	g := &fakeGame{cfg: cfg}
	f.games = append(f.games, g)

	return g
}

func (f *fakeFactory) created() []*fakeGame {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]*fakeGame(nil), f.games...)
}

func testConfig() *Config {
	return &Config{
		port:           8080,
		sendBuffer:     8,
		stepsPerSecond: 10,
	}
}

func newTestServer(t *testing.T) (*Server, *fakeFactory) {
	t.Helper()

	factory := &fakeFactory{}

	return newServer(testConfig(), factory.New), factory
}

func raw(t *testing.T, v any) json.RawMessage {
	t.Helper()

	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal %v: %v", v, err)
	}

	return data
}

// connect opens a session and claims name through the normal handshake.
func connect(t *testing.T, srv *Server, name string) (*Session, *fakeConn) {
	t.Helper()

	conn := &fakeConn{}
	s := srv.newSession(conn)

	if res := s.Handle("request-name", raw(t, name)); res != Ok {
		t.Fatalf("claim %q: got %v", name, res)
	}
	if got := s.Player().Name(); got != name {
		t.Fatalf("expected name %q, got %q", name, got)
	}

	return s, conn
}

func createLobby(t *testing.T, s *Session, name string, capacity int) *Lobby {
	t.Helper()

	res := s.Handle("create-lobby", raw(t, map[string]any{"name": name, "playerCount": capacity}))
	if res != Ok {
		t.Fatalf("create lobby %q: got %v", name, res)
	}

	l, ok := s.currentLobby()
	if !ok {
		t.Fatalf("creator is not in lobby %q", name)
	}

	return l
}

func joinLobby(t *testing.T, s *Session, l *Lobby, spectate bool) Result {
	t.Helper()

	return s.Handle("join-lobby", raw(t, map[string]any{"id": l.ID(), "spectate": spectate}))
}
