package overcooked

// cook advances every pot that is cooking, contents become a dish when the
// countdown reaches zero
func cook(grid *Grid) {
	for i, c := range grid.Cells {
		if c.Static != Pot || c.Extra <= 0 {
			continue
		}
		c.Extra -= 1
		if c.Extra == 0 {
			c.Dynamic = c.Dynamic.WithCooked()
		}
		grid.Cells[i] = c
	}
}
