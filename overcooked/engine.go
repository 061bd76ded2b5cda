package overcooked

import (
	"fmt"
	"io"
	"log"
)

// Engine computes state transitions of a single layout. It keeps no state
// between calls, the caller owns the State values.
type Engine struct {
	layout   *Layout
	maxSteps int
	logger   *log.Logger
}

type Option func(*Engine)

func WithMaxSteps(maxSteps int) Option {
	return func(e *Engine) {
		if maxSteps > 0 {
			e.maxSteps = maxSteps
		}
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func New(layout *Layout, opts ...Option) *Engine {
	e := &Engine{
		layout:   layout,
		maxSteps: DefaultMaxSteps,
		logger:   log.New(io.Discard, "", 0),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Engine) Layout() *Layout {
	return e.layout
}

func (e *Engine) MaxSteps() int {
	return e.maxSteps
}

// StepResult bundles the outputs of a transition. The reward is shared so
// Rewards holds the same value for every agent, as does Dones.
type StepResult struct {
	Observations [NumAgents]Observation `json:"observations"`
	State        State                  `json:"state"`
	Reward       float64                `json:"reward"`
	Rewards      [NumAgents]float64     `json:"rewards"`
	Dones        [NumAgents]bool        `json:"dones"`
	AllDone      bool                   `json:"all_done"`
}

// Reset builds the initial state of the layout
func (e *Engine) Reset() (State, [NumAgents]Observation) {
	grid := NewGrid(e.layout.Width, e.layout.Height)
	for i, s := range e.layout.StaticObjects {
		grid.Cells[i] = Cell{Static: s}
	}
	var agents [NumAgents]Agent
	for i, p := range e.layout.AgentPositions {
		agents[i] = Agent{Pos: p, Dir: Up}
	}
	state := State{
		Agents: agents,
		Grid:   grid,
	}
	return state, BuildObservations(state)
}

// Validate checks that every action belongs to the action set
func (e *Engine) Validate(actions [NumAgents]Action) error {
	for i, a := range actions {
		if !a.Valid() {
			return fmt.Errorf("%w: agent %d sent %d", ErrInvalidAction, i, int(a))
		}
	}
	return nil
}

// Step performs one timestep. state is left untouched.
func (e *Engine) Step(state State, actions [NumAgents]Action) StepResult {
	grid := state.Grid.Clone()

	var old, moved [NumAgents]Position
	var agents [NumAgents]Agent
	for i, a := range state.Agents {
		agents[i] = resolveMove(&grid, a, actions[i])
		old[i] = a.Pos
		moved[i] = agents[i].Pos
	}

	final := resolveCollisions(grid.Width, grid.Height, old[:], moved[:])
	for i := range agents {
		agents[i].Pos = final[i]
	}

	// interactions run in agent order, later agents see earlier mutations
	reward := 0.0
	for i := range agents {
		if actions[i] != ActionInteract {
			continue
		}
		agent, r, result := interact(&grid, agents[i])
		if result != noEffect {
			e.logger.Printf("t=%d agent %d %s at %s: %s", state.Time, i, result, agent.FwdPos(grid.Width, grid.Height), agent.Inventory)
		}
		agents[i] = agent
		reward += r
	}

	cook(&grid)

	next := State{
		Agents: agents,
		Grid:   grid,
		Time:   state.Time + 1,
	}
	next.Terminal = e.isTerminal(next, state.Terminal)

	result := StepResult{
		Observations: BuildObservations(next),
		State:        next,
		Reward:       reward,
		AllDone:      next.Terminal,
	}
	for i := range result.Rewards {
		result.Rewards[i] = reward
		result.Dones[i] = next.Terminal
	}
	return result
}

func (e *Engine) isTerminal(s State, wasTerminal bool) bool {
	return s.Time >= e.maxSteps || wasTerminal
}
