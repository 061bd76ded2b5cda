package policies

import (
	"math"
	"time"

	"github.com/zeu5/overcooked-rl/types"
	"golang.org/x/exp/rand"
)

// BonusPolicyGreedy explores by rewarding rarely taken (state, action) pairs
// with a 1/visits bonus, the environment reward is ignored
type BonusPolicyGreedy struct {
	qTable   *QTable
	alpha    float64
	discount float64
	visits   *QTable
	epsilon  float64
	rand     *rand.Rand

	max bool
}

var _ types.Policy = &BonusPolicyGreedy{}

func NewBonusPolicyGreedy(alpha, discount, epsilon float64, max bool) *BonusPolicyGreedy {
	return &BonusPolicyGreedy{
		qTable:   NewQTable(),
		alpha:    alpha,
		discount: discount,
		visits:   NewQTable(),
		epsilon:  epsilon,
		rand:     rand.New(rand.NewSource(uint64(time.Now().UnixNano()))),
		max:      max,
	}
}

func (b *BonusPolicyGreedy) Record(path string) {
	b.qTable.Record(path + "_qtable.json")
	b.visits.Record(path + "_visits.json")
}

func (b *BonusPolicyGreedy) Reset() {
	b.qTable = NewQTable()
	b.visits = NewQTable()
}

func (b *BonusPolicyGreedy) NextAction(step int, state types.State, actions []types.Action) (types.Action, bool) {
	if len(actions) == 0 {
		return nil, false
	}
	if b.rand.Float64() < b.epsilon {
		return actions[b.rand.Intn(len(actions))], true
	}
	return greedy(b.qTable, state, actions, 1)
}

func (b *BonusPolicyGreedy) Update(_ *types.StepContext) {}

func (b *BonusPolicyGreedy) updateInternal(state types.State, action types.Action, nextState types.State, last bool) {
	stateHash := state.Hash()
	actionHash := action.Hash()
	t := b.visits.Get(stateHash, actionHash, 0) + 1
	b.visits.Set(stateHash, actionHash, t)

	nextStateVal := 0.0
	// the value of the next state only counts if the episode went on from there
	if !last {
		_, nextStateVal = b.qTable.Max(nextState.Hash(), 1)
	}
	curVal := b.qTable.Get(stateHash, actionHash, 1)

	newVal := 0.0
	if b.max {
		newVal = (1-b.alpha)*curVal + b.alpha*math.Max(1/t, b.discount*nextStateVal)
	} else {
		newVal = (1-b.alpha)*curVal + b.alpha*(1/t+b.discount*nextStateVal)
	}
	b.qTable.Set(stateHash, actionHash, newVal)
}

// UpdateIteration replays the trace backwards so bonuses propagate in one pass
func (b *BonusPolicyGreedy) UpdateIteration(_ int, trace *types.Trace) {
	lastIndex := trace.Len() - 1
	for i := lastIndex; i > -1; i-- {
		state, action, nextState, ok := trace.Get(i)
		if ok {
			b.updateInternal(state, action, nextState, i == lastIndex)
		}
	}
}
