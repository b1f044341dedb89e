// Package menu holds the static composed-item definitions for the food
// counter: categories, option groups, and modifier groups, plus the
// composition logic that turns a selection into a finalized line name and
// price. Composition is pure — persistence and rendering live elsewhere.
package menu

import (
	"github.com/shopspring/decimal"
)

// OptionKind keys the resolver table. Each kind owns its price resolution
// and display-name formatting; there is no string sniffing on option names.
type OptionKind string

const (
	KindSize        OptionKind = "size"        // variant-priced, e.g. small/large
	KindBread       OptionKind = "bread"       // names only, flat price
	KindDressing    OptionKind = "dressing"    // names only, flat price
	KindJuiceSize   OptionKind = "juice-size"  // two-stage: size then ingredients
	KindIngredients OptionKind = "ingredients" // multi-select with free quota
)

// MenuEntry is one orderable item on the food menu.
type MenuEntry struct {
	Name     string
	Category string

	// Price is the flat price. Prices, when non-empty, maps a lower-cased
	// variant name to its price and takes precedence for variant-priced kinds.
	Price  decimal.Decimal
	Prices map[string]decimal.Decimal

	RequiresOptions bool
	OptionKind      OptionKind

	// ModifierGroup is tagged at definition time; add-on lists are looked up
	// here rather than inferred from the entry name.
	ModifierGroup ModifierGroup

	// ByWeight entries are priced per pound; the weight-entry flow produces
	// the line, not the option composer.
	ByWeight bool
	PerPound decimal.Decimal
}

// OptionConfig describes one option group.
type OptionConfig struct {
	Title       string
	Kind        OptionKind
	Options     []string
	MultiSelect bool
	// MaxFree selections are included in the base price; each selected unit
	// beyond that adds ExtraCharge.
	MaxFree     int
	ExtraCharge decimal.Decimal
}

// Modifier is a priced add-on layered onto an already-committed item.
type Modifier struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// Item is a finalized composed item, ready to become a cart line.
// Name deterministically encodes every selected option so that identical
// selections merge to the same cart line.
type Item struct {
	Name      string
	Price     decimal.Decimal
	Modifiers []Modifier
}

// ComboUpcharge is the flat fee for upgrading a composed item to a combo.
// The combo is a separate synthetic cart line so it stays independently
// removable.
var ComboUpcharge = decimal.NewFromFloat(3.99)

// ComboName returns the display name of the synthetic combo line for parent.
func ComboName(parent string) string {
	return "  → Combo for " + parent
}
