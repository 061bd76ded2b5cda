package overcooked

// resolveMove applies a single agent's action against the grid as it was
// before anyone moved. The agent always turns towards the attempted
// direction, it only advances onto empty terrain.
func resolveMove(grid *Grid, agent Agent, action Action) Agent {
	dir, ok := action.Direction()
	if !ok {
		return agent
	}
	next := agent.Pos.MoveInBounds(dir, grid.Width, grid.Height)
	if grid.At(next).Static == Empty {
		agent.Pos = next
	}
	agent.Dir = dir
	return agent
}
