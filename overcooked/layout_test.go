package overcooked

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuiltinLayouts(t *testing.T) {
	names := LayoutNames()
	require.Equal(t, []string{"asymm_advantages", "coord_ring", "counter_circuit", "cramped_room", "forced_coord"}, names)
	for _, name := range names {
		l, err := LayoutByName(name)
		require.NoError(t, err, name)
		require.Len(t, l.StaticObjects, l.Width*l.Height, name)
		for _, p := range l.AgentPositions {
			require.Equal(t, Empty, l.At(p), name)
		}
		require.NotEqual(t, l.AgentPositions[0], l.AgentPositions[1], name)
	}

	_, err := LayoutByName("missing")
	require.ErrorIs(t, err, ErrUnknownLayout)
}

func TestParseLayout(t *testing.T) {
	l, err := ParseLayout("small", "WPXW\nA  A\nB3OW\n")
	require.NoError(t, err)
	require.Equal(t, 4, l.Width)
	require.Equal(t, 3, l.Height)
	require.Equal(t, Pot, l.At(Position{X: 1, Y: 0}))
	require.Equal(t, Goal, l.At(Position{X: 2, Y: 0}))
	require.Equal(t, PlatePile, l.At(Position{X: 0, Y: 2}))
	require.Equal(t, IngredientPile(3), l.At(Position{X: 1, Y: 2}))
	require.Equal(t, IngredientPile(0), l.At(Position{X: 2, Y: 2}))
	require.Equal(t, [NumAgents]Position{{X: 0, Y: 1}, {X: 3, Y: 1}}, l.AgentPositions)
}

func TestParseLayoutErrors(t *testing.T) {
	bad := map[string]string{
		"ragged":      "WWW\nA A\nWW",
		"symbol":      "WWW\nAZA",
		"one agent":   "WWW\nA  ",
		"three agent": "AAA",
		"empty":       "",
	}
	for name, grid := range bad {
		_, err := ParseLayout(name, grid)
		require.ErrorIs(t, err, ErrBadLayout, name)
	}
}

func TestLoadLayoutFile(t *testing.T) {
	dir := t.TempDir()
	rows := filepath.Join(dir, "rows.yaml")
	require.NoError(t, os.WriteFile(rows, []byte(`name: tiny
rows:
  - "WPW"
  - "A A"
  - "BXO"
`), 0644))
	l, err := LoadLayoutFile(rows)
	require.NoError(t, err)
	require.Equal(t, "tiny", l.Name)
	require.Equal(t, 3, l.Width)

	block := filepath.Join(dir, "block.yaml")
	require.NoError(t, os.WriteFile(block, []byte("grid: |\n  WPW\n  A A\n  BXO\n"), 0644))
	l, err = LoadLayoutFile(block)
	require.NoError(t, err)
	require.Equal(t, block, l.Name)
	require.Equal(t, 3, l.Height)

	_, err = LoadLayoutFile(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}

func TestRender(t *testing.T) {
	e, s := newTestEngine(t, "cramped_room", 400)
	out := Render(s)
	lines := strings.Split(out, "\n")
	require.Equal(t, "WWPWW", lines[0])
	require.Equal(t, "O^ ^O", lines[1])
	require.Equal(t, "WBWXW", lines[3])
	require.Contains(t, out, "t=0 terminal=false")

	s.Grid.Set(crampedPot, Cell{Static: Pot, Dynamic: Ingredients(0, 0)})
	s.Grid.Set(Position{X: 0, Y: 2}, Cell{Static: Wall, Dynamic: Plate})
	require.Equal(t, "WW2WW", strings.Split(Render(s), "\n")[0])
	require.Equal(t, "b   W", strings.Split(Render(s), "\n")[2])

	s.Agents[0].Pos = Position{X: 2, Y: 1}
	next := step(e, s, ActionInteract, ActionStay).State
	require.Equal(t, "WW~WW", strings.Split(Render(next), "\n")[0])
}
