package overcooked

import "github.com/zeu5/overcooked-rl/types"

func asState(s types.State) (*EnvState, bool) {
	es, ok := s.(*EnvState)
	return es, ok
}

func anyPot(s types.State, cond func(Cell) bool) bool {
	es, ok := asState(s)
	if !ok {
		return false
	}
	for _, p := range es.Grid.Pots() {
		if cond(es.Grid.At(p)) {
			return true
		}
	}
	return false
}

// AnyPotCooking is true when some pot is counting down
func AnyPotCooking() types.RewardFuncSingle {
	return func(s types.State) bool {
		return anyPot(s, func(c Cell) bool { return c.Extra > 0 })
	}
}

// AnyPotCooked is true when some pot holds a finished dish
func AnyPotCooked() types.RewardFuncSingle {
	return func(s types.State) bool {
		return anyPot(s, func(c Cell) bool { return c.Dynamic.IsDish() })
	}
}

func AgentHoldsDish() types.RewardFuncSingle {
	return func(s types.State) bool {
		es, ok := asState(s)
		if !ok {
			return false
		}
		for _, a := range es.Agents {
			if a.Inventory.IsDish() {
				return true
			}
		}
		return false
	}
}

// Delivered holds on transitions that earned a delivery reward
func Delivered() types.MonitorCondition {
	return func(_ types.State, _ types.Action, ns types.State) bool {
		es, ok := asState(ns)
		return ok && es.Reward > 0
	}
}

// Reaches lifts a state predicate to a transition condition on the next state
func Reaches(pred types.RewardFuncSingle) types.MonitorCondition {
	return func(_ types.State, _ types.Action, ns types.State) bool {
		return pred(ns)
	}
}

// DeliveryMonitor tracks the milestones of a full recipe
func DeliveryMonitor() *types.Monitor {
	m := types.NewMonitor()
	m.Build().
		On(Reaches(AnyPotCooking()), "PotStarted").
		On(Reaches(AnyPotCooked().Or(AgentHoldsDish())), "DishReady").
		On(Delivered(), "Delivered").
		MarkSuccess()
	return m
}

// Milestones returns named single step monitors used as experiment properties
func Milestones() map[string]*types.Monitor {
	return map[string]*types.Monitor{
		"PotStarted": milestone(Reaches(AnyPotCooking())),
		"DishPlated": milestone(Reaches(AgentHoldsDish())),
		"Delivered":  DeliveryMonitor(),
	}
}

func milestone(cond types.MonitorCondition) *types.Monitor {
	m := types.NewMonitor()
	m.Build().On(cond, "Reached").MarkSuccess()
	return m
}
