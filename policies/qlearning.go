package policies

import (
	"time"

	"github.com/zeu5/overcooked-rl/types"
	"golang.org/x/exp/rand"
)

// QLearningPolicy is epsilon-greedy tabular Q-learning on the environment reward
type QLearningPolicy struct {
	qTable   *QTable
	alpha    float64
	discount float64
	epsilon  float64
	rand     *rand.Rand
}

var _ types.Policy = &QLearningPolicy{}

func NewQLearningPolicy(alpha, discount, epsilon float64) *QLearningPolicy {
	return NewQLearningPolicyWithSeed(alpha, discount, epsilon, uint64(time.Now().UnixNano()))
}

func NewQLearningPolicyWithSeed(alpha, discount, epsilon float64, seed uint64) *QLearningPolicy {
	return &QLearningPolicy{
		qTable:   NewQTable(),
		alpha:    alpha,
		discount: discount,
		epsilon:  epsilon,
		rand:     rand.New(rand.NewSource(seed)),
	}
}

func (q *QLearningPolicy) Record(path string) {
	q.qTable.Record(path + "_qtable.json")
}

func (q *QLearningPolicy) Reset() {
	q.qTable = NewQTable()
}

func (q *QLearningPolicy) NextAction(step int, state types.State, actions []types.Action) (types.Action, bool) {
	if len(actions) == 0 {
		return nil, false
	}
	if q.rand.Float64() < q.epsilon {
		return actions[q.rand.Intn(len(actions))], true
	}
	return greedy(q.qTable, state, actions, 0)
}

func (q *QLearningPolicy) Update(sCtx *types.StepContext) {
	stateHash := sCtx.State.Hash()
	actionHash := sCtx.Action.Hash()

	nextVal := 0.0
	if len(sCtx.NextState.Actions()) > 0 {
		_, nextVal = q.qTable.Max(sCtx.NextState.Hash(), 0)
	}
	curVal := q.qTable.Get(stateHash, actionHash, 0)
	newVal := (1-q.alpha)*curVal + q.alpha*(sCtx.Reward+q.discount*nextVal)
	q.qTable.Set(stateHash, actionHash, newVal)
}

func (q *QLearningPolicy) UpdateIteration(_ int, _ *types.Trace) {}

// greedy picks the action with the highest value, unknown actions count as def
func greedy(table *QTable, state types.State, actions []types.Action, def float64) (types.Action, bool) {
	actionsMap := make(map[string]types.Action)
	available := make([]string, len(actions))
	for i, a := range actions {
		aHash := a.Hash()
		actionsMap[aHash] = a
		available[i] = aHash
	}
	maxAction, _ := table.MaxAmong(state.Hash(), available, def)
	if maxAction == "" {
		return nil, false
	}
	return actionsMap[maxAction], true
}
