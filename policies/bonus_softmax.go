package policies

import (
	"math"
	"time"

	"github.com/zeu5/overcooked-rl/types"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// BonusPolicySoftMax samples actions from a softmax over the bonus values
type BonusPolicySoftMax struct {
	*BonusPolicyGreedy
	temperature float64
	rand        rand.Source
}

var _ types.Policy = &BonusPolicySoftMax{}

func NewBonusPolicySoftMax(alpha, discount, temperature float64) *BonusPolicySoftMax {
	return &BonusPolicySoftMax{
		BonusPolicyGreedy: NewBonusPolicyGreedy(alpha, discount, 0, false),
		temperature:       temperature,
		rand:              rand.NewSource(uint64(time.Now().UnixNano())),
	}
}

func (b *BonusPolicySoftMax) NextAction(step int, state types.State, actions []types.Action) (types.Action, bool) {
	if len(actions) == 0 {
		return nil, false
	}
	stateHash := state.Hash()
	vals := make([]float64, len(actions))
	for i, action := range actions {
		vals[i] = b.qTable.Get(stateHash, action.Hash(), 1) / b.temperature
	}
	i, ok := sampleuv.NewWeighted(softmax(vals), b.rand).Take()
	if !ok {
		return nil, false
	}
	return actions[i], true
}

// softmax with the max subtracted for numerical stability
func softmax(vals []float64) []float64 {
	weights := make([]float64, len(vals))
	if len(vals) == 0 {
		return weights
	}
	maxVal := vals[0]
	for _, v := range vals {
		maxVal = math.Max(maxVal, v)
	}
	sum := 0.0
	for i, v := range vals {
		weights[i] = math.Exp(v - maxVal)
		sum += weights[i]
	}
	for i := range weights {
		weights[i] /= sum
	}
	return weights
}
