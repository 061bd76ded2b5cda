package overcooked

import (
	"fmt"
	"strings"
)

var dirGlyphs = map[Direction]byte{Up: '^', Down: 'v', Right: '>', Left: '<'}

// Render draws the state as text. Pots show the number of ingredients
// while idle, '~' while cooking and '*' once cooked. Items on counters are
// drawn lower case: b plate, d dish, o ingredients.
func Render(s State) string {
	var b strings.Builder
	for y := 0; y < s.Grid.Height; y++ {
		for x := 0; x < s.Grid.Width; x++ {
			p := Position{X: x, Y: y}
			if i, ok := s.Occupied(p); ok {
				b.WriteByte(dirGlyphs[s.Agents[i].Dir])
				continue
			}
			b.WriteByte(cellGlyph(s.Grid.At(p)))
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "t=%d terminal=%t\n", s.Time, s.Terminal)
	for i, a := range s.Agents {
		fmt.Fprintf(&b, "agent %d %s %s holding %s\n", i, a.Pos, a.Dir, a.Inventory)
	}
	return b.String()
}

func cellGlyph(c Cell) byte {
	switch c.Static {
	case Empty:
		return ' '
	case Wall:
		switch {
		case c.Dynamic.IsEmpty():
			return 'W'
		case c.Dynamic.IsDish():
			return 'd'
		case c.Dynamic.HasPlate():
			return 'b'
		}
		return 'o'
	case Goal:
		return 'X'
	case PlatePile:
		return 'B'
	case Pot:
		switch {
		case c.Extra > 0:
			return '~'
		case c.Dynamic.IsDish():
			return '*'
		case c.Dynamic.IsEmpty():
			return 'P'
		}
		return byte('0' + c.Dynamic.IngredientCount())
	}
	if c.Static == IngredientPile(0) {
		return 'O'
	}
	if c.Static.IsIngredientPile() {
		return 'I'
	}
	return '?'
}
