/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"html"
	"sync"
)

const (
	chatRoom   = "chat"
	tagInfo    = "info"
	labelInfo  = "Info"
	labelPM    = "PM"
	msgNoName  = "That name is not available."
	msgNoPeer  = "Player not found."
	msgNoLobby = "Lobby not found."
)

type ChatTag struct {
	Type string `json:"type,omitempty"`
	Text string `json:"text"`
}

type ChatMessage struct {
	Tags []ChatTag `json:"tags"`
	Text string    `json:"text"`
}

type chatRequest struct {
	To   string `json:"to,omitempty"`
	Text string `json:"text"`
}

func infoMessage(text string) ChatMessage {
	return ChatMessage{
		Tags: []ChatTag{{Type: tagInfo, Text: labelInfo}},
		Text: text,
	}
}

// sanitizeChat escapes markup before text reaches any other client.
func sanitizeChat(text string) string {
	return html.EscapeString(text)
}

// Room is a named broadcast group of connections.
type Room struct {
	name string

	mu      sync.RWMutex
	members map[string]Conn
}

func newRoom(name string) *Room {
	return &Room{
		name:    name,
		members: make(map[string]Conn),
	}
}

func (r *Room) Join(id string, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.members[id] = conn
}

func (r *Room) Leave(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.members, id)
}

func (r *Room) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.members[id]

	return ok
}

// Broadcast emits to every member except the one with id except, and
// returns the number of connections that accepted the message.
func (r *Room) Broadcast(event string, payload any, except string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sent := 0
	for id, conn := range r.members {
		if id == except {
			continue
		}
		if conn.Emit(event, payload) {
			sent++
		}
	}

	return sent
}

// Router decides where a chat message goes. Text must already be sanitized.
type Router struct {
	cfg     *Config
	players *PlayerRegistry
	chat    *Room
}

func newRouter(cfg *Config, players *PlayerRegistry, chat *Room) *Router {
	return &Router{
		cfg:     cfg,
		players: players,
		chat:    chat,
	}
}

// Route delivers a message from sender. A non-empty to selects a direct
// message; an unknown recipient produces one info error to the sender only.
func (r *Router) Route(sender *Player, to, text string) Result {
	if to != "" {
		target, ok := r.players.FindByName(to)
		if !ok {
			r.Tell(sender, msgNoPeer)

			return NotFound
		}

		target.emit("chat-message", ChatMessage{
			Tags: []ChatTag{{Text: sender.Name()}, {Type: tagInfo, Text: labelPM}},
			Text: text,
		})

		logf(r.cfg, "CHAT: %q whispered to %q", sender.Name(), target.Name())

		return Ok
	}

	r.chat.Broadcast("chat-message", ChatMessage{
		Tags: []ChatTag{{Text: sender.Name()}},
		Text: text,
	}, sender.ID())

	return Ok
}

// Announce broadcasts a sender-less info notice to the chat scope.
func (r *Router) Announce(text, except string) {
	r.chat.Broadcast("chat-message", infoMessage(text), except)
}

// Tell sends a sender-less info notice to one player.
func (r *Router) Tell(p *Player, text string) {
	p.emit("chat-message", infoMessage(text))
}
