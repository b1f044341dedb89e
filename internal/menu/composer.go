package menu

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Composer walks a MenuEntry through option selection and produces the
// finalized Item. Single-select kinds commit on the first selection;
// multi-select kinds accumulate counts until Confirm. The juice-size kind
// is two-stage: the size selection prices the item and hands off to the
// ingredient multi-select instead of committing.
type Composer struct {
	entry *MenuEntry
	cfg   *OptionConfig

	multi     bool
	sizeLabel string // chosen size for the two-stage flow
	basePrice decimal.Decimal
	counts    map[string]int
}

var (
	ErrNoSelection    = errors.New("menu: nothing selected")
	ErrAlreadyMulti   = errors.New("menu: composer is in multi-select stage")
	ErrUnknownOption  = errors.New("menu: option not in group")
	ErrOptionRequired = errors.New("menu: entry does not require options")
)

// NewComposer starts composition for an entry that requires options.
func NewComposer(entry *MenuEntry, cfg *OptionConfig) (*Composer, error) {
	if !entry.RequiresOptions {
		return nil, ErrOptionRequired
	}
	if cfg.Kind != entry.OptionKind {
		return nil, fmt.Errorf("menu: config kind %q does not match entry kind %q", cfg.Kind, entry.OptionKind)
	}
	c := &Composer{
		entry:     entry,
		cfg:       cfg,
		basePrice: entry.Price,
		counts:    make(map[string]int),
	}
	c.multi = cfg.MultiSelect
	return c, nil
}

// MultiSelect reports whether the composer is accumulating counts and needs
// an explicit Confirm.
func (c *Composer) MultiSelect() bool { return c.multi }

func (c *Composer) hasOption(option string) bool {
	for _, o := range c.cfg.Options {
		if strings.EqualFold(o, option) {
			return true
		}
	}
	return false
}

// SelectOption handles a single-select choice. For most kinds the act of
// choosing is the commit action and the finalized Item is returned. For the
// juice-size kind it prices the chosen size, transitions into the ingredient
// multi-select, and returns nil — the caller must continue with Increment /
// Confirm.
func (c *Composer) SelectOption(option string) (*Item, error) {
	if c.multi {
		return nil, ErrAlreadyMulti
	}
	if !c.hasOption(option) {
		return nil, ErrUnknownOption
	}

	r, err := resolverFor(c.cfg.Kind)
	if err != nil {
		return nil, err
	}

	if c.cfg.Kind == KindJuiceSize {
		ingredients, err := ConfigFor(KindIngredients)
		if err != nil {
			return nil, err
		}
		c.sizeLabel = option
		c.basePrice = r.Price(c.entry, option)
		c.cfg = ingredients
		c.multi = true
		return nil, nil
	}

	return &Item{
		Name:  r.DisplayName(c.entry, option),
		Price: r.Price(c.entry, option),
	}, nil
}

// Increment adds one unit of option. No upper bound is enforced at
// selection time; excess over MaxFree is charged at Confirm.
func (c *Composer) Increment(option string) error {
	if !c.multi {
		return ErrAlreadyMulti
	}
	if !c.hasOption(option) {
		return ErrUnknownOption
	}
	c.counts[strings.ToLower(option)]++
	return nil
}

// Decrement removes one unit of option, deleting it at zero.
func (c *Composer) Decrement(option string) error {
	if !c.multi {
		return ErrAlreadyMulti
	}
	key := strings.ToLower(option)
	if c.counts[key] == 0 {
		return nil
	}
	c.counts[key]--
	if c.counts[key] == 0 {
		delete(c.counts, key)
	}
	return nil
}

// Seed pre-loads selection counts — used when re-opening an already
// committed item for customization. Unknown options are ignored.
func (c *Composer) Seed(counts map[string]int) {
	for option, n := range counts {
		if n > 0 && c.hasOption(option) {
			c.counts[strings.ToLower(option)] = n
		}
	}
}

// TotalSelected is the sum of all selected units.
func (c *Composer) TotalSelected() int {
	total := 0
	for _, n := range c.counts {
		total += n
	}
	return total
}

// Confirm finalizes a multi-select composition.
// Price = base + max(0, totalSelected − maxFree) × extraCharge.
func (c *Composer) Confirm() (*Item, error) {
	if !c.multi {
		return nil, ErrAlreadyMulti
	}
	total := c.TotalSelected()
	if total == 0 {
		return nil, ErrNoSelection
	}

	price := c.basePrice
	if excess := total - c.cfg.MaxFree; excess > 0 {
		price = price.Add(c.cfg.ExtraCharge.Mul(decimal.NewFromInt(int64(excess))))
	}

	return &Item{
		Name:  c.displayName(),
		Price: price,
	}, nil
}

// displayName lists selections in the option group's declared order so the
// same selections always produce the same name, whatever the tap order.
func (c *Composer) displayName() string {
	parts := make([]string, 0, len(c.counts))
	for _, option := range c.cfg.Options {
		n := c.counts[strings.ToLower(option)]
		switch {
		case n == 1:
			parts = append(parts, option)
		case n > 1:
			parts = append(parts, fmt.Sprintf("%dx %s", n, option))
		}
	}
	selection := strings.Join(parts, ", ")
	if c.sizeLabel != "" {
		return fmt.Sprintf("%s (%s: %s)", c.entry.Name, c.sizeLabel, selection)
	}
	return fmt.Sprintf("%s (%s)", c.entry.Name, selection)
}
