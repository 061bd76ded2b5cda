package overcooked

// NumChannels of an observation: static object, dynamic contents, extra
const NumChannels = 3

const (
	ChannelStatic  = 0
	ChannelDynamic = 1
	ChannelExtra   = 2
)

// Observation is a full view of the grid indexed [y][x][channel]. Cells
// occupied by agents carry (AgentObject, inventory, direction), the
// observer's own cell carries SelfAgent instead of AgentObject.
type Observation [][][NumChannels]int

func (o Observation) At(p Position) [NumChannels]int {
	return o[p.Y][p.X]
}

// BuildObservations projects the state into one observation per agent
func BuildObservations(state State) [NumAgents]Observation {
	base := gridObservation(&state.Grid)
	for _, a := range state.Agents {
		base[a.Pos.Y][a.Pos.X] = [NumChannels]int{int(AgentObject), int(a.Inventory), int(a.Dir)}
	}

	var obs [NumAgents]Observation
	for i, a := range state.Agents {
		view := copyObservation(base)
		view[a.Pos.Y][a.Pos.X][ChannelStatic] = int(SelfAgent)
		obs[i] = view
	}
	return obs
}

func gridObservation(grid *Grid) Observation {
	obs := make(Observation, grid.Height)
	for y := 0; y < grid.Height; y++ {
		obs[y] = make([][NumChannels]int, grid.Width)
		for x := 0; x < grid.Width; x++ {
			c := grid.At(Position{X: x, Y: y})
			obs[y][x] = [NumChannels]int{int(c.Static), int(c.Dynamic), c.Extra}
		}
	}
	return obs
}

func copyObservation(o Observation) Observation {
	out := make(Observation, len(o))
	for y := range o {
		out[y] = make([][NumChannels]int, len(o[y]))
		copy(out[y], o[y])
	}
	return out
}
