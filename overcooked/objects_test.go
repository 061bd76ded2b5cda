package overcooked

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestActions(t *testing.T) {
	require.Len(t, AllActions, NumActions)
	expected := map[Action]Direction{ActionRight: Right, ActionDown: Down, ActionLeft: Left, ActionUp: Up}
	for _, a := range AllActions {
		d, ok := a.Direction()
		want, isMove := expected[a]
		require.Equal(t, isMove, ok, a.String())
		if ok {
			require.Equal(t, want, d)
		}
	}

	for i, name := range []string{"right", "down", "left", "up", "stay", "interact"} {
		a, err := ParseAction(name)
		require.NoError(t, err)
		require.Equal(t, Action(i), a)
		a, err = ParseAction(string(rune('0' + i)))
		require.NoError(t, err)
		require.Equal(t, Action(i), a)
	}
	a, err := ParseAction(" Interact ")
	require.NoError(t, err)
	require.Equal(t, ActionInteract, a)

	for _, bad := range []string{"jump", "6", "-1", ""} {
		_, err := ParseAction(bad)
		require.ErrorIs(t, err, ErrInvalidAction, bad)
	}
}

func TestMoveInBounds(t *testing.T) {
	p := Position{X: 0, Y: 0}
	require.Equal(t, p, p.MoveInBounds(Up, 3, 3))
	require.Equal(t, p, p.MoveInBounds(Left, 3, 3))
	require.Equal(t, Position{X: 1, Y: 0}, p.MoveInBounds(Right, 3, 3))
	require.Equal(t, Position{X: 0, Y: 1}, p.MoveInBounds(Down, 3, 3))
	require.Equal(t, Position{X: 2, Y: 2}, Position{X: 2, Y: 2}.MoveInBounds(Down, 3, 3))
}

func TestInventory(t *testing.T) {
	onions := Ingredients(0, 0)
	require.Equal(t, 2, onions.CountOf(0))
	require.Equal(t, 2, onions.IngredientCount())
	require.True(t, onions.HoldsIngredient())
	require.False(t, onions.IsDish())

	mixed := onions.Union(Ingredients(1))
	require.Equal(t, 3, mixed.IngredientCount())
	require.Equal(t, 1, mixed.CountOf(1))

	dish := Plate.Union(mixed.WithCooked())
	require.True(t, dish.IsDish())
	require.True(t, dish.HasPlate())
	require.False(t, dish.IsPlate())
	require.False(t, dish.HoldsIngredient())
	require.Equal(t, "plate+cooked+0x2+1x1", dish.String())

	require.True(t, Plate.IsPlate())
	require.False(t, Inventory(0).HoldsIngredient())
	require.Equal(t, "empty", Inventory(0).String())

	require.Equal(t, IngredientBit(0), IngredientPile(0).Ingredient())
	require.Equal(t, IngredientBit(2), IngredientPile(2).Ingredient())
	require.Equal(t, Inventory(0), Pot.Ingredient())
	require.True(t, PlatePile.IsPile())
	require.False(t, Goal.IsPile())
}
