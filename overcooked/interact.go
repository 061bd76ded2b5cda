package overcooked

// interactResult is what happened when an agent interacted
type interactResult int

const (
	noEffect interactResult = iota
	pickedUp
	dropped
	delivered
)

func (r interactResult) String() string {
	switch r {
	case pickedUp:
		return "pickup"
	case dropped:
		return "drop"
	case delivered:
		return "delivery"
	}
	return "none"
}

// interact applies the interact action of agent to the cell it faces. The
// grid is mutated in place so that the next agent sees the outcome.
func interact(grid *Grid, agent Agent) (Agent, float64, interactResult) {
	fwd := agent.FwdPos(grid.Width, grid.Height)
	cell := grid.At(fwd)
	inventory := agent.Inventory

	isPlatePile := cell.Static == PlatePile
	isIngredientPile := cell.Static.IsIngredientPile()
	isPile := isPlatePile || isIngredientPile
	isPot := cell.Static == Pot
	isGoal := cell.Static == Goal
	isWall := cell.Static == Wall

	cellEmpty := cell.Dynamic.IsEmpty()

	potCooking := isPot && cell.Extra > 0
	potCooked := isPot && cell.Dynamic.IsDish()
	potIdle := isPot && !potCooking && !potCooked
	potFull := cell.Dynamic.IngredientCount() >= PotCapacity

	pickup := (isPile && inventory.IsEmpty()) ||
		(potCooked && inventory.IsPlate()) ||
		(isWall && !cellEmpty && inventory.IsEmpty())
	drop := (isWall && cellEmpty && !inventory.IsEmpty()) ||
		(potIdle && inventory.HoldsIngredient() && !potFull)
	delivery := isGoal && inventory.IsDish()

	// an empty handed agent starts a pot that has something in it
	if potIdle && !cellEmpty && inventory.IsEmpty() {
		cell.Extra = PotCookTime
	}

	result := noEffect
	reward := 0.0
	switch {
	case pickup:
		var pileItem Inventory
		if isPlatePile {
			pileItem = Plate
		} else if isIngredientPile {
			pileItem = cell.Static.Ingredient()
		}
		agent.Inventory = pileItem.Union(cell.Dynamic.Union(inventory))
		cell.Dynamic = 0
		result = pickedUp
	case drop:
		cell.Dynamic = cell.Dynamic.Union(inventory)
		agent.Inventory = 0
		result = dropped
	case delivery:
		agent.Inventory = 0
		reward = DeliveryReward
		result = delivered
	}

	grid.Set(fwd, cell)
	return agent, reward, result
}
