/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

const (
	writeWait  = 10 * time.Second
	maxMessage = 64 << 10
)

// envelope is the wire format in both directions.
type envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one websocket connection. Outbound messages are queued on send
// and written by writePump; a client whose queue fills up is dropped rather
// than allowed to stall the sender.
type Client struct {
	conn *websocket.Conn

	mu     sync.Mutex
	send   chan envelope
	closed bool
}

func newClient(conn *websocket.Conn, buffer int) *Client {
	return &Client{
		conn: conn,
		send: make(chan envelope, buffer),
	}
}

func (c *Client) Emit(event string, payload any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.send <- envelope{Event: event, Data: payload}:
		return true
	default:
		c.closeLocked()
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closeLocked()
}

func (c *Client) closeLocked() {
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *Client) readPump(cfg *Config, session *Session) {
	defer func() {
		session.Close()
		c.close()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessage)

	for {
		if cfg.playerTimeout > 0 {
			_ = c.conn.SetReadDeadline(time.Now().Add(cfg.playerTimeout))
		}

		var msg inbound
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		session.Handle(msg.Event, msg.Data)

		if msg.Event == "disconnect" {
			return
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(msg); err != nil {
			c.close()
			return
		}
	}

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

func serveWS(cfg *Config, srv *Server) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "CONN: %v", fmt.Errorf("upgrade %s: %w", realIP(r), err))
			return
		}

		client := newClient(conn, cfg.sendBuffer)
		session := srv.newSession(client)

		logf(cfg, "CONN: %s attached to player %s", realIP(r), session.Player().ID())

		go client.writePump()
		client.readPump(cfg, session)
	}
}
