package overcooked

import (
	"fmt"
	"strings"
)

// Cell of the grid. Extra is only used by pots and counts the remaining cook time.
type Cell struct {
	Static  StaticObject `json:"static"`
	Dynamic Inventory    `json:"dynamic"`
	Extra   int          `json:"extra"`
}

// Grid is stored row major
type Grid struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Cells  []Cell `json:"cells"`
}

func NewGrid(width, height int) Grid {
	return Grid{
		Width:  width,
		Height: height,
		Cells:  make([]Cell, width*height),
	}
}

func (g *Grid) InBounds(p Position) bool {
	return p.X >= 0 && p.X < g.Width && p.Y >= 0 && p.Y < g.Height
}

func (g *Grid) At(p Position) Cell {
	return g.Cells[p.Y*g.Width+p.X]
}

func (g *Grid) Set(p Position, c Cell) {
	g.Cells[p.Y*g.Width+p.X] = c
}

// Clone returns a grid that shares no memory with g
func (g Grid) Clone() Grid {
	cells := make([]Cell, len(g.Cells))
	copy(cells, g.Cells)
	return Grid{
		Width:  g.Width,
		Height: g.Height,
		Cells:  cells,
	}
}

// Pots lists the positions of every pot, in row major order
func (g *Grid) Pots() []Position {
	pots := make([]Position, 0)
	for i, c := range g.Cells {
		if c.Static == Pot {
			pots = append(pots, Position{X: i % g.Width, Y: i / g.Width})
		}
	}
	return pots
}

type Agent struct {
	Pos       Position  `json:"pos"`
	Dir       Direction `json:"dir"`
	Inventory Inventory `json:"inventory"`
}

// FwdPos is the cell the agent interacts with
func (a Agent) FwdPos(width, height int) Position {
	return a.Pos.MoveInBounds(a.Dir, width, height)
}

// State is the complete simulation state handed back and forth between
// the caller and the Engine
type State struct {
	Agents   [NumAgents]Agent `json:"agents"`
	Grid     Grid             `json:"grid"`
	Time     int              `json:"time"`
	Terminal bool             `json:"terminal"`
}

func (s State) Clone() State {
	return State{
		Agents:   s.Agents,
		Grid:     s.Grid.Clone(),
		Time:     s.Time,
		Terminal: s.Terminal,
	}
}

// Hash identifies the configuration of agents and items.
// Time is left out so that equal configurations at different steps collapse.
func (s State) Hash() string {
	var b strings.Builder
	for i, a := range s.Agents {
		if i > 0 {
			b.WriteString("|")
		}
		fmt.Fprintf(&b, "a%d:%d,%d,%d,%d", i, a.Pos.X, a.Pos.Y, a.Dir, a.Inventory)
	}
	for i, c := range s.Grid.Cells {
		if c.Dynamic == 0 && c.Extra == 0 {
			continue
		}
		fmt.Fprintf(&b, "|c%d:%d,%d", i, c.Dynamic, c.Extra)
	}
	return b.String()
}

// Occupied reports the index of the agent at p
func (s State) Occupied(p Position) (int, bool) {
	for i, a := range s.Agents {
		if a.Pos == p {
			return i, true
		}
	}
	return -1, false
}
