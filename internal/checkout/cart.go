// Package checkout implements the in-memory transaction engine for one
// register: the cart aggregate, the pricing rules, the barcode scan state
// machine, and the payment flow state machine. Everything here is
// independent of HTTP, storage, and rendering.
package checkout

import (
	"context"
	"fmt"

	"delipos/internal/menu"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// LineKind distinguishes how a line is priced and merged.
type LineKind string

const (
	LineUnit     LineKind = "unit"     // scanned or manual, per-unit price × quantity
	LineWeighed  LineKind = "weighed"  // per-pound price × weight, quantity fixed at 1
	LineComposed LineKind = "composed" // finalized food-menu item
	LineOpen     LineKind = "open"     // arbitrary keyed-in price
	LineCombo    LineKind = "combo"    // synthetic combo upcharge for a parent line
)

// ProductRef is the catalog snapshot a line is built from. Inventory is nil
// when the catalog does not track stock for the item.
type ProductRef struct {
	UPC       string          `json:"upc"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Inventory *int            `json:"inventory,omitempty"`
}

// Line is one cart entry. UnitPrice, Weight, and PerPound are distinct
// fields — a line's total is always derived, never stored pre-multiplied.
type Line struct {
	Kind      LineKind        `json:"kind"`
	UPC       string          `json:"upc,omitempty"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Weight    decimal.Decimal `json:"weight,omitempty"`
	PerPound  decimal.Decimal `json:"per_pound,omitempty"`
	Modifiers []menu.Modifier `json:"modifiers,omitempty"`
	Inventory *int            `json:"inventory,omitempty"`
}

// Key is the merge identity: UPC for catalog items, the fully-qualified
// display name (options and modifier summary included) for everything else.
// Weighed lines carry a "lb:" prefix so a by-the-pound item never collides
// with an open or composed line of the same name.
func (l *Line) Key() string {
	if l.Kind == LineWeighed {
		return "lb:" + l.Name
	}
	if l.UPC != "" {
		return l.UPC
	}
	if summary := menu.ModifierSummary(l.Modifiers); summary != "" {
		return l.Name + " + " + summary
	}
	return l.Name
}

// Total derives the line total.
func (l *Line) Total() decimal.Decimal {
	if l.Kind == LineWeighed {
		return l.PerPound.Mul(l.Weight)
	}
	unit := l.UnitPrice
	for _, m := range l.Modifiers {
		unit = unit.Add(m.Price)
	}
	return unit.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartStore is the write-through persistence collaborator. Saving an empty
// cart must remove the key so "no saved cart" and "empty cart" read the same.
type CartStore interface {
	Load(ctx context.Context, storeID string) ([]Line, error)
	Save(ctx context.Context, storeID string, lines []Line) error
	Clear(ctx context.Context, storeID string) error
}

// Cart is the mutable line collection for the current transaction. It is
// not safe for concurrent use; the owning session serializes access.
type Cart struct {
	storeID string
	lines   []*Line
	store   CartStore // nil disables persistence (unit tests)
}

func NewCart(storeID string, store CartStore) *Cart {
	return &Cart{storeID: storeID, store: store}
}

// Rehydrate replaces the cart contents with the persisted snapshot, if any.
func (c *Cart) Rehydrate(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	lines, err := c.store.Load(ctx, c.storeID)
	if err != nil {
		return err
	}
	c.lines = c.lines[:0]
	for i := range lines {
		l := lines[i]
		c.lines = append(c.lines, &l)
	}
	return nil
}

// persist writes the full cart through after every mutation. Failures are
// logged, not surfaced — losing the snapshot must never block a sale.
func (c *Cart) persist(ctx context.Context) {
	if c.store == nil {
		return
	}
	var err error
	if len(c.lines) == 0 {
		err = c.store.Clear(ctx, c.storeID)
	} else {
		snapshot := make([]Line, len(c.lines))
		for i, l := range c.lines {
			snapshot[i] = *l
		}
		err = c.store.Save(ctx, c.storeID, snapshot)
	}
	if err != nil {
		log.Error().Err(err).Str("store_id", c.storeID).Msg("cart: persist failed")
	}
}

func (c *Cart) find(key string) (int, *Line) {
	for i, l := range c.lines {
		if l.Key() == key {
			return i, l
		}
	}
	return -1, nil
}

// AddProduct adds a catalog item, incrementing quantity when the UPC is
// already in the cart. New lines are prepended. The add is never blocked by
// inventory; callers use StockAdvice for messaging.
func (c *Cart) AddProduct(ctx context.Context, p ProductRef) *Line {
	if _, l := c.find(p.UPC); l != nil {
		l.Quantity++
		c.persist(ctx)
		return l
	}
	l := &Line{
		Kind:      LineUnit,
		UPC:       p.UPC,
		Name:      p.Name,
		UnitPrice: p.Price,
		Quantity:  1,
		Inventory: p.Inventory,
	}
	c.lines = append([]*Line{l}, c.lines...)
	c.persist(ctx)
	return l
}

// AddComposed merges by fully-qualified name: a matching key increments the
// existing line, distinct option combinations stay distinct.
func (c *Cart) AddComposed(ctx context.Context, item *menu.Item) *Line {
	l := &Line{
		Kind:      LineComposed,
		Name:      item.Name,
		UnitPrice: item.Price,
		Quantity:  1,
		Modifiers: item.Modifiers,
	}
	if _, existing := c.find(l.Key()); existing != nil {
		existing.Quantity++
		c.persist(ctx)
		return existing
	}
	c.lines = append([]*Line{l}, c.lines...)
	c.persist(ctx)
	return l
}

// ReplaceComposed swaps the line identified by key with a re-customized
// item, keeping its quantity and position.
func (c *Cart) ReplaceComposed(ctx context.Context, key string, item *menu.Item) (*Line, error) {
	i, existing := c.find(key)
	if existing == nil {
		return nil, fmt.Errorf("checkout: no cart line %q", key)
	}
	l := &Line{
		Kind:      LineComposed,
		Name:      item.Name,
		UnitPrice: item.Price,
		Quantity:  existing.Quantity,
		Modifiers: item.Modifiers,
	}
	c.lines[i] = l
	c.persist(ctx)
	return l, nil
}

// AddWeighed adds a by-the-pound line. Re-weighing the same item replaces
// the weight — putting the tub back on the scale supersedes the prior
// reading, it does not stack.
func (c *Cart) AddWeighed(ctx context.Context, name string, perPound, weight decimal.Decimal) *Line {
	l := &Line{
		Kind:     LineWeighed,
		Name:     name,
		PerPound: perPound,
		Weight:   weight,
		Quantity: 1,
	}
	if _, existing := c.find(l.Key()); existing != nil {
		existing.PerPound = perPound
		existing.Weight = weight
		c.persist(ctx)
		return existing
	}
	c.lines = append([]*Line{l}, c.lines...)
	c.persist(ctx)
	return l
}

// AddOpen adds an arbitrary-price keyed-in item.
func (c *Cart) AddOpen(ctx context.Context, name string, price decimal.Decimal) *Line {
	l := &Line{Kind: LineOpen, Name: name, UnitPrice: price, Quantity: 1}
	if _, existing := c.find(l.Key()); existing != nil {
		existing.Quantity++
		c.persist(ctx)
		return existing
	}
	c.lines = append([]*Line{l}, c.lines...)
	c.persist(ctx)
	return l
}

// AddCombo inserts the synthetic combo upcharge directly after its parent
// so the pair reads together while staying independently removable.
func (c *Cart) AddCombo(ctx context.Context, parentKey string) (*Line, error) {
	i, parent := c.find(parentKey)
	if parent == nil {
		return nil, fmt.Errorf("checkout: no cart line %q", parentKey)
	}
	l := &Line{
		Kind:      LineCombo,
		Name:      menu.ComboName(parent.Name),
		UnitPrice: menu.ComboUpcharge,
		Quantity:  1,
	}
	c.lines = append(c.lines[:i+1], append([]*Line{l}, c.lines[i+1:]...)...)
	c.persist(ctx)
	return l, nil
}

// UpdateQuantity applies a delta; a result of zero or less removes the line
// entirely — no zero-quantity lines ever persist.
func (c *Cart) UpdateQuantity(ctx context.Context, key string, delta int) error {
	i, l := c.find(key)
	if l == nil {
		return fmt.Errorf("checkout: no cart line %q", key)
	}
	l.Quantity += delta
	if l.Quantity <= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
	c.persist(ctx)
	return nil
}

// Remove deletes a line outright.
func (c *Cart) Remove(ctx context.Context, key string) error {
	i, l := c.find(key)
	if l == nil {
		return fmt.Errorf("checkout: no cart line %q", key)
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	c.persist(ctx)
	return nil
}

// Clear empties the cart and removes the persisted snapshot.
func (c *Cart) Clear(ctx context.Context) {
	c.lines = c.lines[:0]
	c.persist(ctx)
}

// Lines returns a copy of the current lines in display order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	for i, l := range c.lines {
		out[i] = *l
	}
	return out
}

func (c *Cart) Empty() bool { return len(c.lines) == 0 }

// QuantityOf returns the current quantity for a key, zero when absent.
func (c *Cart) QuantityOf(key string) int {
	if _, l := c.find(key); l != nil {
		return l.Quantity
	}
	return 0
}
