package menu

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Option group definitions, keyed by kind. One config per kind keeps the
// resolver table and the composer honest about what a selection means.
var optionConfigs = map[OptionKind]*OptionConfig{
	KindSize: {
		Title:   "Size",
		Kind:    KindSize,
		Options: []string{"Small", "Large"},
	},
	KindBread: {
		Title:   "Bread",
		Kind:    KindBread,
		Options: []string{"White", "Wheat", "Rye", "Roll", "Wrap"},
	},
	KindDressing: {
		Title:   "Dressing",
		Kind:    KindDressing,
		Options: []string{"Ranch", "Caesar", "Balsamic", "Oil & Vinegar"},
	},
	KindJuiceSize: {
		Title:   "Juice Size",
		Kind:    KindJuiceSize,
		Options: []string{"Small", "Medium", "Large"},
	},
	KindIngredients: {
		Title:       "Ingredients",
		Kind:        KindIngredients,
		Options:     []string{"Apple", "Orange", "Carrot", "Celery", "Ginger", "Kale", "Beet", "Lemon"},
		MultiSelect: true,
		MaxFree:     3,
		ExtraCharge: decimal.NewFromFloat(1.50),
	},
}

// ConfigFor returns the option group for a kind.
func ConfigFor(kind OptionKind) (*OptionConfig, error) {
	cfg, ok := optionConfigs[kind]
	if !ok {
		return nil, fmt.Errorf("menu: no option config for kind %q", kind)
	}
	return cfg, nil
}

// Category groups menu entries for display.
type Category struct {
	Name    string
	Entries []MenuEntry
}

// DefaultMenu is the built-in deli food menu. Stores override nothing yet;
// the definitions live in code the same way the option groups do.
func DefaultMenu() []Category {
	return []Category{
		{
			Name: "Sandwiches",
			Entries: []MenuEntry{
				{Name: "Italian Combo", Category: "Sandwiches", Price: decimal.NewFromFloat(9.50), RequiresOptions: true, OptionKind: KindBread, ModifierGroup: GroupSandwich},
				{Name: "Turkey Club", Category: "Sandwiches", Price: decimal.NewFromFloat(8.75), RequiresOptions: true, OptionKind: KindBread, ModifierGroup: GroupSandwich},
				{Name: "BLT", Category: "Sandwiches", Price: decimal.NewFromFloat(7.25), RequiresOptions: true, OptionKind: KindBread, ModifierGroup: GroupSandwich},
			},
		},
		{
			Name: "Burgers",
			Entries: []MenuEntry{
				{Name: "Cheeseburger", Category: "Burgers", Price: decimal.NewFromFloat(8.50), ModifierGroup: GroupBurger},
				{Name: "Deli Burger Deluxe", Category: "Burgers", Price: decimal.NewFromFloat(10.00), ModifierGroup: GroupBurger},
			},
		},
		{
			Name: "Gyros",
			Entries: []MenuEntry{
				{
					Name: "Lamb Gyro", Category: "Gyros", RequiresOptions: true, OptionKind: KindSize,
					Price:         decimal.NewFromFloat(8.00),
					Prices:        map[string]decimal.Decimal{"small": decimal.NewFromFloat(8.00), "large": decimal.NewFromFloat(11.00)},
					ModifierGroup: GroupGyro,
				},
				{
					Name: "Chicken Gyro", Category: "Gyros", RequiresOptions: true, OptionKind: KindSize,
					Price:         decimal.NewFromFloat(7.50),
					Prices:        map[string]decimal.Decimal{"small": decimal.NewFromFloat(7.50), "large": decimal.NewFromFloat(10.50)},
					ModifierGroup: GroupGyro,
				},
			},
		},
		{
			Name: "Salads",
			Entries: []MenuEntry{
				{Name: "Garden Salad", Category: "Salads", Price: decimal.NewFromFloat(6.50), RequiresOptions: true, OptionKind: KindDressing, ModifierGroup: GroupSalad},
				{Name: "Greek Salad", Category: "Salads", Price: decimal.NewFromFloat(7.75), RequiresOptions: true, OptionKind: KindDressing, ModifierGroup: GroupSalad},
			},
		},
		{
			Name: "Juice Bar",
			Entries: []MenuEntry{
				{
					Name: "Custom Juice", Category: "Juice Bar", RequiresOptions: true, OptionKind: KindJuiceSize,
					Price: decimal.NewFromFloat(5.00),
					Prices: map[string]decimal.Decimal{
						"small":  decimal.NewFromFloat(5.00),
						"medium": decimal.NewFromFloat(6.50),
						"large":  decimal.NewFromFloat(8.00),
					},
				},
			},
		},
		{
			Name: "Deli Counter",
			Entries: []MenuEntry{
				{Name: "Potato Salad", Category: "Deli Counter", ByWeight: true, PerPound: decimal.NewFromFloat(4.99)},
				{Name: "Macaroni Salad", Category: "Deli Counter", ByWeight: true, PerPound: decimal.NewFromFloat(4.49)},
				{Name: "Roast Beef", Category: "Deli Counter", ByWeight: true, PerPound: decimal.NewFromFloat(12.99)},
				{Name: "Swiss Cheese", Category: "Deli Counter", ByWeight: true, PerPound: decimal.NewFromFloat(9.49)},
			},
		},
	}
}

// FindEntry looks an entry up by name across all categories.
func FindEntry(name string) (*MenuEntry, error) {
	for _, cat := range DefaultMenu() {
		for i := range cat.Entries {
			if strings.EqualFold(cat.Entries[i].Name, name) {
				e := cat.Entries[i]
				return &e, nil
			}
		}
	}
	return nil, fmt.Errorf("menu: entry %q not found", name)
}
