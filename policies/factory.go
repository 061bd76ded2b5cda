package policies

import (
	"fmt"

	"github.com/zeu5/overcooked-rl/config"
	"github.com/zeu5/overcooked-rl/types"
)

// NewPolicy creates the policy described by the experiment configuration
func NewPolicy(c config.PolicyConfig) (types.Policy, error) {
	switch c.Policy {
	case config.PolicyRandom:
		return types.NewRandomPolicy(), nil
	case config.PolicyQLearning:
		return NewQLearningPolicy(c.Alpha, c.Gamma, c.Epsilon), nil
	case config.PolicyBonus:
		return NewBonusPolicyGreedy(c.Alpha, c.Gamma, c.Epsilon, false), nil
	case config.PolicyBonusMax:
		return NewBonusPolicyGreedy(c.Alpha, c.Gamma, c.Epsilon, true), nil
	case config.PolicyBonusSoftMax:
		return NewBonusPolicySoftMax(c.Alpha, c.Gamma, c.Temperature), nil
	case config.PolicyNegFreq:
		return NewSoftMaxNegFreqPolicy(c.Alpha, c.Gamma, c.Temperature, false), nil
	}
	return nil, fmt.Errorf("unknown policy kind %q", c.Policy)
}
