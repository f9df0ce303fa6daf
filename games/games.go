// Package games holds the game engines a lobby can embed. The lobby layer
// treats a Game as opaque: it forwards actions, asks for steps, and relays
// whatever payloads come back.
package games

import (
	"encoding/json"
)

// StepsPerSecond is the default simulation rate for embedded games.
const StepsPerSecond = 10

// RandomMap asks the engine to pick a map on its own.
const RandomMap = "random"

// Config is what a lobby knows at start time.
type Config struct {
	Map     string
	Players []string // player ids, in lobby join order
}

// Game is a single running match. Implementations need not be safe for
// concurrent use; the owning lobby serializes every call.
type Game interface {
	MakeAction(action json.RawMessage, playerID string) any
	Step() any
	Close()
}

// Factory builds a Game for a lobby that is starting.
type Factory func(cfg Config) Game
