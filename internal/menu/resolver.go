package menu

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// optionResolver resolves the committed price and display name for a
// single-select option. The table below replaces the old convention of
// branching on substrings of the option-type string.
type optionResolver interface {
	Price(entry *MenuEntry, option string) decimal.Decimal
	DisplayName(entry *MenuEntry, option string) string
}

// variantPriced looks the option up in entry.Prices (case-folded); entries
// without a matching variant fall back to the flat price.
type variantPriced struct{}

func (variantPriced) Price(entry *MenuEntry, option string) decimal.Decimal {
	if p, ok := entry.Prices[strings.ToLower(option)]; ok {
		return p
	}
	return entry.Price
}

func (variantPriced) DisplayName(entry *MenuEntry, option string) string {
	return fmt.Sprintf("%s (%s)", entry.Name, option)
}

// flatPriced options only affect the name (bread choice, dressing choice).
type flatPriced struct{}

func (flatPriced) Price(entry *MenuEntry, _ string) decimal.Decimal {
	return entry.Price
}

func (flatPriced) DisplayName(entry *MenuEntry, option string) string {
	return fmt.Sprintf("%s (%s)", entry.Name, option)
}

var resolvers = map[OptionKind]optionResolver{
	KindSize:      variantPriced{},
	KindJuiceSize: variantPriced{},
	KindBread:     flatPriced{},
	KindDressing:  flatPriced{},
}

func resolverFor(kind OptionKind) (optionResolver, error) {
	r, ok := resolvers[kind]
	if !ok {
		return nil, fmt.Errorf("menu: no resolver for option kind %q", kind)
	}
	return r, nil
}
