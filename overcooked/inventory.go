package overcooked

import (
	"fmt"
	"strings"
)

// Inventory describes the contents of a cell or of an agent's hands.
// Bit 0 marks a plate, bit 1 marks cooked contents and every ingredient
// owns a two bit count field starting at bit 2.
type Inventory uint32

const (
	Plate  Inventory = 1 << 0
	Cooked Inventory = 1 << 1

	ingredientShift = 2
	ingredientWidth = 2
	ingredientMask  = 1<<ingredientWidth - 1
	// MaxIngredients is the number of distinct ingredient kinds that fit the encoding
	MaxIngredients = (32 - ingredientShift) / ingredientWidth
)

// IngredientBit is a single unit of ingredient idx
func IngredientBit(idx int) Inventory {
	return Inventory(1) << (ingredientShift + ingredientWidth*idx)
}

// Ingredients builds an inventory holding the listed ingredient indices
func Ingredients(idx ...int) Inventory {
	var inv Inventory
	for _, i := range idx {
		inv = inv.Union(IngredientBit(i))
	}
	return inv
}

// Union merges two contents. Ingredient fields add up, which is why a pot
// never accepts more than PotCapacity ingredients.
func (i Inventory) Union(other Inventory) Inventory {
	return i + other
}

// IngredientCount is the total number of ingredients across all kinds
func (i Inventory) IngredientCount() int {
	count := 0
	for rest := i >> ingredientShift; rest > 0; rest >>= ingredientWidth {
		count += int(rest & ingredientMask)
	}
	return count
}

// CountOf returns how many units of ingredient idx are held
func (i Inventory) CountOf(idx int) int {
	return int((i >> (ingredientShift + ingredientWidth*idx)) & ingredientMask)
}

func (i Inventory) IsEmpty() bool {
	return i == 0
}

// IsPlate is true only for an empty plate
func (i Inventory) IsPlate() bool {
	return i == Plate
}

func (i Inventory) HasPlate() bool {
	return i&Plate != 0
}

func (i Inventory) IsDish() bool {
	return i&Cooked != 0
}

// HoldsIngredient is true for raw ingredients carried without a plate
func (i Inventory) HoldsIngredient() bool {
	return !i.IsEmpty() && !i.HasPlate()
}

func (i Inventory) WithCooked() Inventory {
	return i | Cooked
}

func (i Inventory) String() string {
	if i.IsEmpty() {
		return "empty"
	}
	parts := make([]string, 0)
	if i.HasPlate() {
		parts = append(parts, "plate")
	}
	if i.IsDish() {
		parts = append(parts, "cooked")
	}
	for idx := 0; idx < MaxIngredients; idx++ {
		if c := i.CountOf(idx); c > 0 {
			parts = append(parts, fmt.Sprintf("%dx%d", idx, c))
		}
	}
	return strings.Join(parts, "+")
}
