package games

import (
	"encoding/json"
	"math/rand"
	"slices"
)

type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Maps lists the arenas a lobby may select by name.
var Maps = map[string]Size{
	"courtyard": {Width: 16, Height: 12},
	"crossroad": {Width: 24, Height: 24},
	"gauntlet":  {Width: 40, Height: 8},
}

const (
	HeadingStop  = "stop"
	HeadingUp    = "up"
	HeadingDown  = "down"
	HeadingLeft  = "left"
	HeadingRight = "right"
)

var headings = map[string][2]int{
	HeadingStop:  {0, 0},
	HeadingUp:    {0, -1},
	HeadingDown:  {0, 1},
	HeadingLeft:  {-1, 0},
	HeadingRight: {1, 0},
}

type Position struct {
	ID      string `json:"id"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Heading string `json:"heading"`
}

// Update is the payload of one arena step.
type Update struct {
	Step    uint64     `json:"step"`
	Map     string     `json:"map"`
	Size    Size       `json:"size"`
	Players []Position `json:"players"`
}

// ActionResult answers a single submitted action.
type ActionResult struct {
	Accepted bool   `json:"accepted"`
	Heading  string `json:"heading,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

type action struct {
	Heading string `json:"heading"`
}

// Arena is a small grid game: every player walks one cell per step in the
// heading they last chose, and stops at the walls.
type Arena struct {
	mapName string
	size    Size
	step    uint64
	order   []string
	players map[string]*Position
}

// NewArena is the default Factory.
func NewArena(cfg Config) Game {
	name, size := pickMap(cfg.Map)

	a := &Arena{
		mapName: name,
		size:    size,
		order:   slices.Clone(cfg.Players),
		players: make(map[string]*Position, len(cfg.Players)),
	}

	cells := size.Width * size.Height
	for i, id := range a.order {
		cell := i * cells / len(a.order)
		a.players[id] = &Position{
			ID:      id,
			X:       cell % size.Width,
			Y:       cell / size.Width,
			Heading: HeadingStop,
		}
	}

	return a
}

func pickMap(name string) (string, Size) {
	if size, ok := Maps[name]; ok {
		return name, size
	}

	names := make([]string, 0, len(Maps))
	for n := range Maps {
		names = append(names, n)
	}
	slices.Sort(names)

	chosen := names[rand.Intn(len(names))]

	return chosen, Maps[chosen]
}

func (a *Arena) MakeAction(raw json.RawMessage, playerID string) any {
	p, ok := a.players[playerID]
	if !ok {
		return ActionResult{Reason: "not playing"}
	}

	var act action
	if err := json.Unmarshal(raw, &act); err != nil {
		return ActionResult{Reason: "malformed action"}
	}

	if _, ok := headings[act.Heading]; !ok {
		return ActionResult{Reason: "unknown heading"}
	}
	p.Heading = act.Heading

	return ActionResult{Accepted: true, Heading: act.Heading}
}

func (a *Arena) Step() any {
	a.step++

	for _, id := range a.order {
		p := a.players[id]
		d := headings[p.Heading]
		p.X = min(max(p.X+d[0], 0), a.size.Width-1)
		p.Y = min(max(p.Y+d[1], 0), a.size.Height-1)
	}

	return a.snapshot()
}

func (a *Arena) Close() {
	a.players = nil
	a.order = nil
}

func (a *Arena) snapshot() Update {
	players := make([]Position, 0, len(a.order))
	for _, id := range a.order {
		if p, ok := a.players[id]; ok {
			players = append(players, *p)
		}
	}

	return Update{
		Step:    a.step,
		Map:     a.mapName,
		Size:    a.size,
		Players: players,
	}
}
