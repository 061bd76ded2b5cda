package policies

import (
	"math"
	"time"

	"github.com/zeu5/overcooked-rl/types"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// SoftMaxNegFreqPolicy learns with a reward of minus the number of visits to the
// next state, pushing towards rarely seen states
type SoftMaxNegFreqPolicy struct {
	qTable      *QTable
	freq        map[string]int
	alpha       float64
	gamma       float64
	temperature float64
	max         bool // update with max instead of plus
	rand        rand.Source
}

var _ types.Policy = &SoftMaxNegFreqPolicy{}

func NewSoftMaxNegFreqPolicy(alpha, gamma, temperature float64, max bool) *SoftMaxNegFreqPolicy {
	return &SoftMaxNegFreqPolicy{
		qTable:      NewQTable(),
		freq:        make(map[string]int),
		alpha:       alpha,
		gamma:       gamma,
		temperature: temperature,
		max:         max,
		rand:        rand.NewSource(uint64(time.Now().UnixNano())),
	}
}

func (t *SoftMaxNegFreqPolicy) Record(path string) {
	t.qTable.Record(path + "_qtable.json")
}

func (t *SoftMaxNegFreqPolicy) Reset() {
	t.qTable = NewQTable()
	t.freq = make(map[string]int)
}

func (t *SoftMaxNegFreqPolicy) UpdateIteration(_ int, _ *types.Trace) {}

func (t *SoftMaxNegFreqPolicy) NextAction(step int, state types.State, actions []types.Action) (types.Action, bool) {
	if len(actions) == 0 {
		return nil, false
	}
	stateHash := state.Hash()
	vals := make([]float64, len(actions))
	for i, action := range actions {
		vals[i] = t.qTable.Get(stateHash, action.Hash(), 0) / t.temperature
	}
	i, ok := sampleuv.NewWeighted(softmax(vals), t.rand).Take()
	if !ok {
		return nil, false
	}
	return actions[i], true
}

func (t *SoftMaxNegFreqPolicy) Update(sCtx *types.StepContext) {
	stateHash := sCtx.State.Hash()
	nextStateHash := sCtx.NextState.Hash()
	actionKey := sCtx.Action.Hash()

	curVal := t.qTable.Get(stateHash, actionKey, 0)
	max := 0.0
	if t.qTable.HasState(nextStateHash) {
		_, max = t.qTable.Max(nextStateHash, 0)
	}
	t.freq[nextStateHash] += 1
	reward := float64(-1 * t.freq[nextStateHash])

	nextVal := 0.0
	if t.max {
		nextVal = (1-t.alpha)*curVal + t.alpha*math.Max(reward, t.gamma*max)
	} else {
		nextVal = (1-t.alpha)*curVal + t.alpha*(reward+t.gamma*max)
	}
	t.qTable.Set(stateHash, actionKey, nextVal)
}
