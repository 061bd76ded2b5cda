package overcooked

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Layout is the static description of a kitchen: terrain and where the
// agents start
type Layout struct {
	Name           string              `json:"name"`
	Width          int                 `json:"width"`
	Height         int                 `json:"height"`
	StaticObjects  []StaticObject      `json:"static_objects"`
	AgentPositions [NumAgents]Position `json:"agent_positions"`
}

func (l *Layout) At(p Position) StaticObject {
	return l.StaticObjects[p.Y*l.Width+p.X]
}

// ParseLayout reads an ASCII kitchen.
//
//	W wall, space empty, A agent start, P pot, X goal, B plate pile,
//	O onion (ingredient 0), 0-9 ingredient pile of that index
func ParseLayout(name, grid string) (*Layout, error) {
	rows := strings.Split(strings.Trim(grid, "\n"), "\n")
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrBadLayout, name)
	}
	width := len(rows[0])
	layout := &Layout{
		Name:          name,
		Width:         width,
		Height:        len(rows),
		StaticObjects: make([]StaticObject, 0, width*len(rows)),
	}
	agents := 0
	for y, row := range rows {
		row = strings.TrimSuffix(row, "\r")
		if len(row) != width {
			return nil, fmt.Errorf("%w: %s row %d has width %d, expected %d", ErrBadLayout, name, y, len(row), width)
		}
		for x, ch := range row {
			obj := Empty
			switch {
			case ch == ' ':
			case ch == 'W':
				obj = Wall
			case ch == 'P':
				obj = Pot
			case ch == 'X':
				obj = Goal
			case ch == 'B':
				obj = PlatePile
			case ch == 'O':
				obj = IngredientPile(0)
			case ch >= '0' && ch <= '9':
				obj = IngredientPile(int(ch - '0'))
			case ch == 'A':
				if agents >= NumAgents {
					return nil, fmt.Errorf("%w: %s has more than %d agents", ErrBadLayout, name, NumAgents)
				}
				layout.AgentPositions[agents] = Position{X: x, Y: y}
				agents += 1
			default:
				return nil, fmt.Errorf("%w: %s has unknown symbol %q at (%d, %d)", ErrBadLayout, name, ch, x, y)
			}
			layout.StaticObjects = append(layout.StaticObjects, obj)
		}
	}
	if agents != NumAgents {
		return nil, fmt.Errorf("%w: %s has %d agents, expected %d", ErrBadLayout, name, agents, NumAgents)
	}
	return layout, nil
}

var builtinLayouts = map[string][]string{
	"cramped_room": {
		"WWPWW",
		"OA AO",
		"W   W",
		"WBWXW",
	},
	"asymm_advantages": {
		"WWWWWWWWW",
		"O WXWOW X",
		"W   P   W",
		"W A PA  W",
		"WWWBWBWWW",
	},
	"coord_ring": {
		"WWWPW",
		"W A P",
		"BAW W",
		"O   W",
		"WOXWW",
	},
	"forced_coord": {
		"WWWPW",
		"O WAP",
		"OAW W",
		"B W W",
		"WWWXW",
	},
	"counter_circuit": {
		"WWWPPWWW",
		"W A    W",
		"B WWWW X",
		"W     AW",
		"WWWOOWWW",
	},
}

// LayoutNames lists the built in layouts
func LayoutNames() []string {
	names := make([]string, 0, len(builtinLayouts))
	for n := range builtinLayouts {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func LayoutByName(name string) (*Layout, error) {
	rows, ok := builtinLayouts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLayout, name)
	}
	return ParseLayout(name, strings.Join(rows, "\n"))
}

type layoutFile struct {
	Name string   `yaml:"name"`
	Grid string   `yaml:"grid"`
	Rows []string `yaml:"rows"`
}

// LoadLayoutFile reads a layout from YAML, either as a `grid` block or as a
// list of `rows`
func LoadLayoutFile(path string) (*Layout, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var lf layoutFile
	if err := yaml.Unmarshal(raw, &lf); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if lf.Name == "" {
		lf.Name = path
	}
	grid := lf.Grid
	if len(lf.Rows) > 0 {
		grid = strings.Join(lf.Rows, "\n")
	}
	return ParseLayout(lf.Name, grid)
}
