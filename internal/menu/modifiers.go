package menu

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// ModifierGroup tags a MenuEntry with its add-on list. The tag is set when
// the entry is defined, never inferred from the entry's name.
type ModifierGroup string

const (
	GroupNone     ModifierGroup = ""
	GroupBurger   ModifierGroup = "burger"
	GroupSandwich ModifierGroup = "sandwich"
	GroupGyro     ModifierGroup = "gyro"
	GroupSalad    ModifierGroup = "salad"
)

// CustomAddOnName is the display name for free-form priced add-ons.
const CustomAddOnName = "Custom Add-On"

var modifierCatalog = map[ModifierGroup][]Modifier{
	GroupBurger: {
		{Name: "Extra Patty", Price: decimal.NewFromFloat(2.50)},
		{Name: "Extra Cheese", Price: decimal.NewFromFloat(0.75)},
		{Name: "Bacon", Price: decimal.NewFromFloat(1.50)},
		{Name: "Fried Egg", Price: decimal.NewFromFloat(1.25)},
	},
	GroupSandwich: {
		{Name: "Extra Cheese", Price: decimal.NewFromFloat(0.75)},
		{Name: "Extra Meat", Price: decimal.NewFromFloat(2.00)},
		{Name: "Avocado", Price: decimal.NewFromFloat(1.50)},
		{Name: "Toasted", Price: decimal.Zero},
	},
	GroupGyro: {
		{Name: "Extra Meat", Price: decimal.NewFromFloat(2.50)},
		{Name: "Extra Tzatziki", Price: decimal.NewFromFloat(0.50)},
		{Name: "Feta", Price: decimal.NewFromFloat(1.00)},
	},
	GroupSalad: {
		{Name: "Grilled Chicken", Price: decimal.NewFromFloat(3.00)},
		{Name: "Extra Dressing", Price: decimal.NewFromFloat(0.50)},
		{Name: "Croutons", Price: decimal.Zero},
	},
}

// ModifiersFor returns the add-on list for a group. GroupNone has none.
func ModifiersFor(group ModifierGroup) []Modifier {
	return modifierCatalog[group]
}

func modifierPrice(group ModifierGroup, name string) (decimal.Decimal, bool) {
	for _, m := range modifierCatalog[group] {
		if strings.EqualFold(m.Name, name) {
			return m.Price, true
		}
	}
	return decimal.Zero, false
}

// ApplyModifiers replaces item's modifiers with one flattened entry per
// selected unit (3× Extra Cheese becomes three entries), so downstream code
// sums and displays them uniformly. A customPrice, when non-nil, is appended
// as a single free-form add-on. Unknown names for the group are rejected.
func ApplyModifiers(item *Item, group ModifierGroup, counts map[string]int, customPrice *decimal.Decimal) error {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	flat := make([]Modifier, 0, len(counts))
	for _, name := range names {
		price, ok := modifierPrice(group, name)
		if !ok {
			return fmt.Errorf("menu: modifier %q not available for group %q", name, group)
		}
		for i := 0; i < counts[name]; i++ {
			flat = append(flat, Modifier{Name: name, Price: price})
		}
	}
	if customPrice != nil {
		flat = append(flat, Modifier{Name: CustomAddOnName, Price: *customPrice})
	}
	item.Modifiers = flat
	return nil
}

// ModifierTotal sums the flattened modifier prices.
func (it *Item) ModifierTotal() decimal.Decimal {
	total := decimal.Zero
	for _, m := range it.Modifiers {
		total = total.Add(m.Price)
	}
	return total
}

// ModifierSummary collapses repeated modifiers into an "Nx " prefixed list,
// stable across application order. Empty when the item has no modifiers.
func ModifierSummary(mods []Modifier) string {
	if len(mods) == 0 {
		return ""
	}
	counts := make(map[string]int)
	order := make([]string, 0, len(mods))
	for _, m := range mods {
		if counts[m.Name] == 0 {
			order = append(order, m.Name)
		}
		counts[m.Name]++
	}
	sort.Strings(order)

	parts := make([]string, 0, len(order))
	for _, name := range order {
		if n := counts[name]; n > 1 {
			parts = append(parts, fmt.Sprintf("%dx %s", n, name))
		} else {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, ", ")
}
