package overcooked

// resolveCollisions returns the final positions after simultaneous moves.
// Any agent sharing a cell with another one goes back to where it started,
// which can push the conflict onto whoever moved into that cell, so the
// check repeats until nobody new is sent back.
//
// Each round that finds a collision undoes at least one more agent (undone
// agents sit on their distinct starting cells and cannot collide among
// themselves), so the loop runs at most len(old) rounds.
//
// Agents swapping cells pass through each other, that case is not detected.
func resolveCollisions(width, height int, old, moved []Position) []Position {
	undo := make([]bool, len(old))
	for round := 0; round < len(old); round++ {
		positions := effectivePositions(old, moved, undo)
		occupancy := make([]int, width*height)
		for _, p := range positions {
			occupancy[p.Y*width+p.X] += 1
		}
		changed := false
		for i, p := range positions {
			if occupancy[p.Y*width+p.X] > 1 && !undo[i] {
				undo[i] = true
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return effectivePositions(old, moved, undo)
}

func effectivePositions(old, moved []Position, undo []bool) []Position {
	positions := make([]Position, len(old))
	for i := range old {
		if undo[i] {
			positions[i] = old[i]
		} else {
			positions[i] = moved[i]
		}
	}
	return positions
}
