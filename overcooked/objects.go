package overcooked

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// NumAgents is fixed by the game
	NumAgents = 2
	// DeliveryReward is given for every dish delivered at a goal
	DeliveryReward = 20
	// PotCookTime is the number of steps a pot takes to cook
	PotCookTime = 20
	// PotCapacity is the maximum number of ingredients a pot holds
	PotCapacity = 3
	// DefaultMaxSteps is the episode length used when none is configured
	DefaultMaxSteps = 400
)

// StaticObject is the terrain tag of a cell.
// AgentObject and SelfAgent only appear in observations.
type StaticObject int

const (
	Empty              StaticObject = 0
	Wall               StaticObject = 1
	AgentObject        StaticObject = 2
	SelfAgent          StaticObject = 3
	Goal               StaticObject = 4
	Pot                StaticObject = 5
	PlatePile          StaticObject = 9
	IngredientPileBase StaticObject = 10
)

// IngredientPile returns the pile object for ingredient idx
func IngredientPile(idx int) StaticObject {
	return IngredientPileBase + StaticObject(idx)
}

func (s StaticObject) IsIngredientPile() bool {
	return s >= IngredientPileBase
}

func (s StaticObject) IsPile() bool {
	return s == PlatePile || s.IsIngredientPile()
}

// Ingredient returns the item handed out by an ingredient pile, zero for any other object
func (s StaticObject) Ingredient() Inventory {
	if !s.IsIngredientPile() {
		return 0
	}
	return IngredientBit(int(s - IngredientPileBase))
}

func (s StaticObject) String() string {
	switch s {
	case Empty:
		return "empty"
	case Wall:
		return "wall"
	case AgentObject:
		return "agent"
	case SelfAgent:
		return "self"
	case Goal:
		return "goal"
	case Pot:
		return "pot"
	case PlatePile:
		return "plate_pile"
	}
	if s.IsIngredientPile() {
		return fmt.Sprintf("ingredient_pile_%d", int(s-IngredientPileBase))
	}
	return fmt.Sprintf("static(%d)", int(s))
}

// Direction an agent faces
type Direction int

const (
	Up Direction = iota
	Down
	Right
	Left
)

var AllDirections = []Direction{Up, Down, Right, Left}

// Vec returns the (dx, dy) offset, y grows downwards
func (d Direction) Vec() (int, int) {
	switch d {
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	case Right:
		return 1, 0
	case Left:
		return -1, 0
	}
	return 0, 0
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Right:
		return "right"
	case Left:
		return "left"
	}
	return fmt.Sprintf("direction(%d)", int(d))
}

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Position) Move(d Direction) Position {
	dx, dy := d.Vec()
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// MoveInBounds moves one step in d, clamping to the grid
func (p Position) MoveInBounds(d Direction, width, height int) Position {
	n := p.Move(d)
	return Position{
		X: clamp(n.X, 0, width-1),
		Y: clamp(n.Y, 0, height-1),
	}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Action is one of the six per-agent actions
type Action int

const (
	ActionRight Action = iota
	ActionDown
	ActionLeft
	ActionUp
	ActionStay
	ActionInteract
)

// NumActions is the size of the per-agent action set
const NumActions = 6

var AllActions = []Action{ActionRight, ActionDown, ActionLeft, ActionUp, ActionStay, ActionInteract}

var actionNames = [NumActions]string{"right", "down", "left", "up", "stay", "interact"}

// Direction returns the movement direction of the action, false for stay and interact
func (a Action) Direction() (Direction, bool) {
	switch a {
	case ActionRight:
		return Right, true
	case ActionDown:
		return Down, true
	case ActionLeft:
		return Left, true
	case ActionUp:
		return Up, true
	}
	return 0, false
}

func (a Action) Valid() bool {
	return a >= 0 && int(a) < NumActions
}

func (a Action) String() string {
	if !a.Valid() {
		return fmt.Sprintf("action(%d)", int(a))
	}
	return actionNames[a]
}

// ParseAction accepts the action name or its index
func ParseAction(s string) (Action, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range actionNames {
		if n == s {
			return Action(i), nil
		}
	}
	if idx, err := strconv.Atoi(s); err == nil && Action(idx).Valid() {
		return Action(idx), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidAction, s)
}
