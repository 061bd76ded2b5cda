package overcooked

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// cramped_room:
//
//	WWPWW
//	OA AO
//	W   W
//	WBWXW
var (
	crampedPot   = Position{X: 2, Y: 0}
	crampedOnion = Position{X: 0, Y: 1}
	crampedGoal  = Position{X: 3, Y: 3}
)

func newTestEngine(t *testing.T, name string, maxSteps int) (*Engine, State) {
	t.Helper()
	layout, err := LayoutByName(name)
	require.NoError(t, err)
	e := New(layout, WithMaxSteps(maxSteps))
	state, _ := e.Reset()
	return e, state
}

func step(e *Engine, s State, a0, a1 Action) StepResult {
	return e.Step(s, [NumAgents]Action{a0, a1})
}

func TestResetState(t *testing.T) {
	e, s := newTestEngine(t, "cramped_room", 400)
	require.Equal(t, 400, e.MaxSteps())
	require.Equal(t, Position{X: 1, Y: 1}, s.Agents[0].Pos)
	require.Equal(t, Position{X: 3, Y: 1}, s.Agents[1].Pos)
	for _, a := range s.Agents {
		require.Equal(t, Up, a.Dir)
		require.True(t, a.Inventory.IsEmpty())
	}
	require.Equal(t, 0, s.Time)
	require.False(t, s.Terminal)
	require.Equal(t, []Position{crampedPot}, s.Grid.Pots())
}

func TestMoveIntoNonEmptyTerrainOnlyTurns(t *testing.T) {
	e, s := newTestEngine(t, "cramped_room", 400)

	// pile on the left, wall above
	next := step(e, s, ActionLeft, ActionRight).State
	require.Equal(t, s.Agents[0].Pos, next.Agents[0].Pos)
	require.Equal(t, Left, next.Agents[0].Dir)
	require.Equal(t, s.Agents[1].Pos, next.Agents[1].Pos)
	require.Equal(t, Right, next.Agents[1].Dir)

	next = step(e, next, ActionUp, ActionStay).State
	require.Equal(t, s.Agents[0].Pos, next.Agents[0].Pos)
	require.Equal(t, Up, next.Agents[0].Dir)
	require.Equal(t, Right, next.Agents[1].Dir)

	next = step(e, next, ActionDown, ActionDown).State
	require.Equal(t, Position{X: 1, Y: 2}, next.Agents[0].Pos)
	require.Equal(t, Position{X: 3, Y: 2}, next.Agents[1].Pos)
	require.Equal(t, Down, next.Agents[0].Dir)

	// goal below agent 1, plate pile below agent 0
	next = step(e, next, ActionDown, ActionDown).State
	require.Equal(t, Position{X: 1, Y: 2}, next.Agents[0].Pos)
	require.Equal(t, Position{X: 3, Y: 2}, next.Agents[1].Pos)
}

func TestMoveIntoOtherAgentReverts(t *testing.T) {
	e, s := newTestEngine(t, "cramped_room", 400)
	s.Agents[1].Pos = Position{X: 2, Y: 1}

	next := step(e, s, ActionRight, ActionStay).State
	require.Equal(t, Position{X: 1, Y: 1}, next.Agents[0].Pos)
	require.Equal(t, Right, next.Agents[0].Dir)
	require.Equal(t, Position{X: 2, Y: 1}, next.Agents[1].Pos)
}

func TestSameTargetCollisionRevertsBoth(t *testing.T) {
	e, s := newTestEngine(t, "cramped_room", 400)

	next := step(e, s, ActionRight, ActionLeft).State
	require.Equal(t, s.Agents[0].Pos, next.Agents[0].Pos)
	require.Equal(t, s.Agents[1].Pos, next.Agents[1].Pos)
	require.Equal(t, Right, next.Agents[0].Dir)
	require.Equal(t, Left, next.Agents[1].Dir)
	require.NotEqual(t, next.Agents[0].Pos, next.Agents[1].Pos)
}

func TestCollisionChainUndoes(t *testing.T) {
	old := []Position{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}}
	moved := []Position{{X: 1, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 0}}
	require.Equal(t, old, resolveCollisions(3, 1, old, moved))

	// no conflict keeps every move
	old = []Position{{X: 0, Y: 0}, {X: 2, Y: 0}}
	moved = []Position{{X: 1, Y: 0}, {X: 2, Y: 0}}
	require.Equal(t, moved, resolveCollisions(3, 1, old, moved))
}

func TestSwapIsNotPrevented(t *testing.T) {
	e, s := newTestEngine(t, "cramped_room", 400)
	s.Agents[0].Pos = Position{X: 1, Y: 2}
	s.Agents[1].Pos = Position{X: 2, Y: 2}

	next := step(e, s, ActionRight, ActionLeft).State
	require.Equal(t, Position{X: 2, Y: 2}, next.Agents[0].Pos)
	require.Equal(t, Position{X: 1, Y: 2}, next.Agents[1].Pos)
}

func TestIngredientPileIsInexhaustible(t *testing.T) {
	e, s := newTestEngine(t, "cramped_room", 400)
	s.Agents[0].Dir = Left

	next := step(e, s, ActionInteract, ActionStay).State
	require.Equal(t, Ingredients(0), next.Agents[0].Inventory)
	require.Equal(t, Cell{Static: IngredientPile(0)}, next.Grid.At(crampedOnion))

	// holding something, the pile does nothing
	again := step(e, next, ActionInteract, ActionStay).State
	require.Equal(t, Ingredients(0), again.Agents[0].Inventory)

	grid := s.Grid.Clone()
	agent := s.Agents[0]
	for i := 0; i < 10; i++ {
		got, reward, result := interact(&grid, agent)
		require.Equal(t, pickedUp, result)
		require.Equal(t, 0.0, reward)
		require.Equal(t, 1, got.Inventory.CountOf(0))
		require.Equal(t, Cell{Static: IngredientPile(0)}, grid.At(crampedOnion))
	}
}

func TestPlatePile(t *testing.T) {
	_, s := newTestEngine(t, "cramped_room", 400)
	grid := s.Grid.Clone()
	agent := Agent{Pos: Position{X: 1, Y: 2}, Dir: Down}
	got, _, result := interact(&grid, agent)
	require.Equal(t, pickedUp, result)
	require.True(t, got.Inventory.IsPlate())
}

func TestPotAcceptsUpToCapacity(t *testing.T) {
	_, s := newTestEngine(t, "cramped_room", 400)
	grid := s.Grid.Clone()
	agent := Agent{Pos: Position{X: 2, Y: 1}, Dir: Up, Inventory: Ingredients(0)}

	for i := 1; i <= PotCapacity; i++ {
		got, _, result := interact(&grid, agent)
		require.Equal(t, dropped, result)
		require.True(t, got.Inventory.IsEmpty())
		require.Equal(t, i, grid.At(crampedPot).Dynamic.IngredientCount())
		require.Equal(t, 0, grid.At(crampedPot).Extra)
	}

	before := grid.At(crampedPot)
	got, reward, result := interact(&grid, agent)
	require.Equal(t, noEffect, result)
	require.Equal(t, 0.0, reward)
	require.Equal(t, agent, got)
	require.Equal(t, before, grid.At(crampedPot))
}

func TestCookStartAndCountdown(t *testing.T) {
	_, s := newTestEngine(t, "cramped_room", 400)
	grid := s.Grid.Clone()
	grid.Set(crampedPot, Cell{Static: Pot, Dynamic: Ingredients(0)})
	agent := Agent{Pos: Position{X: 2, Y: 1}, Dir: Up}

	got, _, result := interact(&grid, agent)
	require.Equal(t, noEffect, result)
	require.Equal(t, agent, got)
	require.Equal(t, PotCookTime, grid.At(crampedPot).Extra)

	// busy pot ignores further ingredients
	_, _, result = interact(&grid, Agent{Pos: agent.Pos, Dir: Up, Inventory: Ingredients(0)})
	require.Equal(t, noEffect, result)
	require.Equal(t, 1, grid.At(crampedPot).Dynamic.IngredientCount())

	for i := 1; i < PotCookTime; i++ {
		cook(&grid)
		require.Equal(t, PotCookTime-i, grid.At(crampedPot).Extra)
		require.False(t, grid.At(crampedPot).Dynamic.IsDish())
	}
	cook(&grid)
	require.Equal(t, 0, grid.At(crampedPot).Extra)
	require.True(t, grid.At(crampedPot).Dynamic.IsDish())

	// a cooked pot stays cooked
	cook(&grid)
	require.Equal(t, 0, grid.At(crampedPot).Extra)
	require.True(t, grid.At(crampedPot).Dynamic.IsDish())
}

func TestCookThroughEngine(t *testing.T) {
	e, s := newTestEngine(t, "cramped_room", 400)
	s.Grid.Set(crampedPot, Cell{Static: Pot, Dynamic: Ingredients(0, 0)})
	s.Agents[0].Pos = Position{X: 2, Y: 1}

	// the pot cooks in the step that starts it
	next := step(e, s, ActionInteract, ActionStay).State
	require.Equal(t, PotCookTime-1, next.Grid.At(crampedPot).Extra)
	for i := 2; i < PotCookTime; i++ {
		next = step(e, next, ActionStay, ActionStay).State
	}
	require.Equal(t, 1, next.Grid.At(crampedPot).Extra)
	require.False(t, next.Grid.At(crampedPot).Dynamic.IsDish())

	next = step(e, next, ActionStay, ActionStay).State
	require.Equal(t, 0, next.Grid.At(crampedPot).Extra)
	require.True(t, next.Grid.At(crampedPot).Dynamic.IsDish())
	require.Equal(t, 2, next.Grid.At(crampedPot).Dynamic.IngredientCount())
}

func TestEmptyPotDoesNotCook(t *testing.T) {
	_, s := newTestEngine(t, "cramped_room", 400)
	grid := s.Grid.Clone()
	_, _, result := interact(&grid, Agent{Pos: Position{X: 2, Y: 1}, Dir: Up})
	require.Equal(t, noEffect, result)
	require.Equal(t, Cell{Static: Pot}, grid.At(crampedPot))
}

func TestPlatePicksUpCookedDish(t *testing.T) {
	_, s := newTestEngine(t, "cramped_room", 400)
	grid := s.Grid.Clone()
	soup := Ingredients(0, 0, 0).WithCooked()
	grid.Set(crampedPot, Cell{Static: Pot, Dynamic: soup})

	// empty hands cannot take the dish
	empty := Agent{Pos: Position{X: 2, Y: 1}, Dir: Up}
	got, _, result := interact(&grid, empty)
	require.Equal(t, noEffect, result)
	require.Equal(t, empty, got)
	require.Equal(t, soup, grid.At(crampedPot).Dynamic)

	got, _, result = interact(&grid, Agent{Pos: empty.Pos, Dir: Up, Inventory: Plate})
	require.Equal(t, pickedUp, result)
	require.True(t, got.Inventory.IsDish())
	require.True(t, got.Inventory.HasPlate())
	require.Equal(t, 3, got.Inventory.CountOf(0))
	require.Equal(t, Cell{Static: Pot}, grid.At(crampedPot))
}

func TestDelivery(t *testing.T) {
	e, s := newTestEngine(t, "cramped_room", 400)
	s.Agents[1].Pos = Position{X: 3, Y: 2}
	s.Agents[1].Dir = Down
	s.Agents[1].Inventory = Plate.Union(Ingredients(0, 0, 0).WithCooked())

	result := step(e, s, ActionStay, ActionInteract)
	require.Equal(t, float64(DeliveryReward), result.Reward)
	require.Equal(t, [NumAgents]float64{DeliveryReward, DeliveryReward}, result.Rewards)
	require.True(t, result.State.Agents[1].Inventory.IsEmpty())
	require.Equal(t, Cell{Static: Goal}, result.State.Grid.At(crampedGoal))

	// raw ingredients are not accepted
	s.Agents[1].Inventory = Ingredients(0)
	result = step(e, s, ActionStay, ActionInteract)
	require.Equal(t, 0.0, result.Reward)
	require.Equal(t, Ingredients(0), result.State.Agents[1].Inventory)
	require.Equal(t, s.Grid, result.State.Grid)
}

func TestCounterDropAndPickup(t *testing.T) {
	e, s := newTestEngine(t, "cramped_room", 400)
	s.Agents[0].Pos = Position{X: 1, Y: 2}
	s.Agents[0].Dir = Left
	s.Agents[0].Inventory = Plate
	counter := Position{X: 0, Y: 2}

	next := step(e, s, ActionInteract, ActionStay).State
	require.True(t, next.Agents[0].Inventory.IsEmpty())
	require.Equal(t, Plate, next.Grid.At(counter).Dynamic)

	next = step(e, next, ActionInteract, ActionStay).State
	require.Equal(t, Plate, next.Agents[0].Inventory)
	require.True(t, next.Grid.At(counter).Dynamic.IsEmpty())
}

func TestInteractionsAreSequential(t *testing.T) {
	e, s := newTestEngine(t, "forced_coord", 400)
	// both agents face the same counter, agent 0 drops and agent 1 takes it in the same step
	counter := Position{X: 2, Y: 2}
	s.Agents[0].Pos = Position{X: 1, Y: 2}
	s.Agents[0].Dir = Right
	s.Agents[0].Inventory = Ingredients(0)
	s.Agents[1].Pos = Position{X: 3, Y: 2}
	s.Agents[1].Dir = Left
	require.Equal(t, Wall, s.Grid.At(counter).Static)

	next := step(e, s, ActionInteract, ActionInteract).State
	require.True(t, next.Agents[0].Inventory.IsEmpty())
	require.Equal(t, Ingredients(0), next.Agents[1].Inventory)
	require.True(t, next.Grid.At(counter).Dynamic.IsEmpty())
}

func TestTimeAndTerminal(t *testing.T) {
	e, s := newTestEngine(t, "cramped_room", 3)
	for i := 1; i <= 3; i++ {
		result := step(e, s, ActionStay, ActionStay)
		s = result.State
		require.Equal(t, i, s.Time)
		require.Equal(t, i == 3, s.Terminal)
		require.Equal(t, i == 3, result.AllDone)
		require.Equal(t, [NumAgents]bool{i == 3, i == 3}, result.Dones)
	}
	s = step(e, s, ActionStay, ActionStay).State
	require.Equal(t, 4, s.Time)
	require.True(t, s.Terminal)
}

func TestStepDoesNotMutateInput(t *testing.T) {
	e, s := newTestEngine(t, "cramped_room", 400)
	s.Agents[0].Dir = Left
	before := s.Clone()

	_ = step(e, s, ActionInteract, ActionDown)
	require.Equal(t, before, s)

	s.Grid.Set(crampedPot, Cell{Static: Pot, Dynamic: Ingredients(0), Extra: 5})
	before = s.Clone()
	_ = step(e, s, ActionStay, ActionStay)
	require.Equal(t, before, s)
}

func TestValidate(t *testing.T) {
	e, _ := newTestEngine(t, "cramped_room", 400)
	require.NoError(t, e.Validate([NumAgents]Action{ActionRight, ActionInteract}))
	require.ErrorIs(t, e.Validate([NumAgents]Action{ActionStay, Action(6)}), ErrInvalidAction)
	require.ErrorIs(t, e.Validate([NumAgents]Action{Action(-1), ActionStay}), ErrInvalidAction)
}

func TestObservationStaticRoundTrip(t *testing.T) {
	for _, name := range LayoutNames() {
		e, s := newTestEngine(t, name, 400)
		s = step(e, s, ActionDown, ActionRight).State
		obs := BuildObservations(s)

		for i := range obs {
			require.Len(t, obs[i], s.Grid.Height, name)
			for y := 0; y < s.Grid.Height; y++ {
				require.Len(t, obs[i][y], s.Grid.Width, name)
				for x := 0; x < s.Grid.Width; x++ {
					p := Position{X: x, Y: y}
					got := obs[i].At(p)
					if j, ok := s.Occupied(p); ok {
						expected := AgentObject
						if j == i {
							expected = SelfAgent
						}
						require.Equal(t, int(expected), got[ChannelStatic], name)
						require.Equal(t, int(s.Agents[j].Inventory), got[ChannelDynamic], name)
						require.Equal(t, int(s.Agents[j].Dir), got[ChannelExtra], name)
						continue
					}
					require.Equal(t, int(s.Grid.At(p).Static), got[ChannelStatic], name)
				}
			}
		}
	}
}

func TestObservationsAreIndependent(t *testing.T) {
	_, s := newTestEngine(t, "cramped_room", 400)
	obs := BuildObservations(s)
	obs[0][0][0][ChannelStatic] = 99
	require.Equal(t, int(Wall), obs[1][0][0][ChannelStatic])
}
