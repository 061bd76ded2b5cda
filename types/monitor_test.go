package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func chainTrace(max int) *Trace {
	trace := NewTrace()
	for i := 0; i < max; i++ {
		reward := 0.0
		if i == max-1 {
			reward = 1
		}
		trace.Append(i, &chainState{n: i, max: max}, chainAction("inc"), &chainState{n: i + 1, max: max}, reward)
	}
	return trace
}

func atLeast(n int) RewardFuncSingle {
	return func(s State) bool { return s.(*chainState).n >= n }
}

func nextState(pred RewardFuncSingle) MonitorCondition {
	return func(_ State, _ Action, ns State) bool { return pred(ns) }
}

func TestMonitorShortestPrefix(t *testing.T) {
	m := NewMonitor()
	m.Build().
		On(nextState(atLeast(2)), "Two").
		On(nextState(atLeast(4)), "Four").
		MarkSuccess()

	prefix, ok := m.Check(chainTrace(6))
	require.True(t, ok)
	require.Equal(t, 4, prefix.Len())

	_, ok = m.Check(chainTrace(3))
	require.False(t, ok)
}

func TestMonitorTransitionOrder(t *testing.T) {
	// both transitions hold, the first one added wins
	m := NewMonitor()
	b := m.Build()
	b.On(nextState(atLeast(1)), "Stuck")
	b.On(nextState(atLeast(1)), "Done").MarkSuccess()

	_, ok := m.Check(chainTrace(5))
	require.False(t, ok)
}

func TestPredicateCombinators(t *testing.T) {
	s := &chainState{n: 3}
	require.True(t, atLeast(2).And(atLeast(3))(s))
	require.False(t, atLeast(2).And(atLeast(4))(s))
	require.True(t, atLeast(5).Or(atLeast(1))(s))
	require.True(t, atLeast(5).Not()(s))

	c := nextState(atLeast(5))
	require.True(t, c.Not()(nil, nil, s))
	require.True(t, c.Or(nextState(atLeast(3)))(nil, nil, s))
	require.False(t, c.And(nextState(atLeast(3)))(nil, nil, s))
}

func TestTrace(t *testing.T) {
	trace := chainTrace(4)
	require.Equal(t, 4, trace.Len())
	require.Equal(t, 1.0, trace.Return())

	s, a, ns, ok := trace.Last()
	require.True(t, ok)
	require.Equal(t, "3", s.Hash())
	require.Equal(t, "inc", a.Hash())
	require.Equal(t, "4", ns.Hash())

	sliced := trace.Slice(1, 3)
	require.Equal(t, 2, sliced.Len())
	s, _, _, _ = sliced.Get(0)
	require.Equal(t, "1", s.Hash())

	_, ok = trace.GetPrefix(5)
	require.False(t, ok)
	_, _, _, ok = trace.Get(-1)
	require.False(t, ok)

	bs, err := trace.MarshalJSON()
	require.NoError(t, err)
	require.Contains(t, string(bs), `{"state":"3","action":"inc","next_state":"4","reward":1}`)
}
