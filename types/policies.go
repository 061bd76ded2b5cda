package types

import (
	"math/rand"
	"time"
)

type Policy interface {
	// UpdateIteration is called with the trace at the end of every episode
	UpdateIteration(int, *Trace)
	NextAction(int, State, []Action) (Action, bool)
	// Update is called after every step
	Update(*StepContext)
	Reset()
	// Record stores the learned values under the given path prefix
	Record(string)
}

type RandomPolicy struct {
	rand *rand.Rand
}

var _ Policy = &RandomPolicy{}

func NewRandomPolicy() *RandomPolicy {
	return NewRandomPolicyWithSeed(time.Now().UnixNano())
}

func NewRandomPolicyWithSeed(seed int64) *RandomPolicy {
	return &RandomPolicy{
		rand: rand.New(rand.NewSource(seed)),
	}
}

func (r *RandomPolicy) Reset() {}

func (r *RandomPolicy) Record(_ string) {}

func (r *RandomPolicy) UpdateIteration(_ int, _ *Trace) {}

func (r *RandomPolicy) NextAction(step int, state State, actions []Action) (Action, bool) {
	if len(actions) == 0 {
		return nil, false
	}
	i := r.rand.Intn(len(actions))
	return actions[i], true
}

func (r *RandomPolicy) Update(_ *StepContext) {}
