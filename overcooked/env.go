package overcooked

import (
	"fmt"
	"strings"

	"github.com/zeu5/overcooked-rl/types"
)

// JointAction is the pair of per-agent actions applied in one timestep
type JointAction struct {
	Actions [NumAgents]Action
}

var _ types.Action = JointAction{}

func (j JointAction) Hash() string {
	names := make([]string, NumAgents)
	for i, a := range j.Actions {
		names[i] = a.String()
	}
	return strings.Join(names, "|")
}

var allJointActions = func() []types.Action {
	out := make([]types.Action, 0, NumActions*NumActions)
	for _, a := range AllActions {
		for _, b := range AllActions {
			out = append(out, JointAction{Actions: [NumAgents]Action{a, b}})
		}
	}
	return out
}()

// AllJointActions returns every combination of per-agent actions
func AllJointActions() []types.Action {
	out := make([]types.Action, len(allJointActions))
	copy(out, allJointActions)
	return out
}

// EnvState wraps the engine state for the RL harness.
// Reward is the reward of the transition that produced the state.
type EnvState struct {
	State
	Reward float64
}

var _ types.State = &EnvState{}

func (e *EnvState) Hash() string {
	return e.State.Hash()
}

// Actions is empty once the episode is over
func (e *EnvState) Actions() []types.Action {
	if e.Terminal {
		return nil
	}
	return AllJointActions()
}

// Environment exposes an Engine as a single-learner environment
// over joint actions
type Environment struct {
	engine *Engine
}

var _ types.Environment = &Environment{}

func NewEnvironment(engine *Engine) *Environment {
	return &Environment{engine: engine}
}

func (e *Environment) Engine() *Engine {
	return e.engine
}

func (e *Environment) Reset(_ *types.EpisodeContext) (types.State, error) {
	state, _ := e.engine.Reset()
	return &EnvState{State: state}, nil
}

func (e *Environment) Step(action types.Action, sCtx *types.StepContext) (types.State, error) {
	joint, ok := action.(JointAction)
	if !ok {
		return nil, fmt.Errorf("%w: expected a joint action, got %T", ErrInvalidAction, action)
	}
	cur, ok := sCtx.State.(*EnvState)
	if !ok {
		return nil, fmt.Errorf("unexpected state type %T", sCtx.State)
	}
	if err := e.engine.Validate(joint.Actions); err != nil {
		return nil, err
	}
	result := e.engine.Step(cur.State, joint.Actions)
	sCtx.Reward = result.Reward
	if result.Reward > 0 && sCtx.Episode != nil && sCtx.Episode.Report != nil {
		sCtx.Episode.Report.AddEntry(result.Reward, "delivery", "overcooked")
	}
	return &EnvState{State: result.State, Reward: result.Reward}, nil
}
