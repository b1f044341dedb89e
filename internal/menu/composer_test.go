package menu

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustEntry(t *testing.T, name string) *MenuEntry {
	t.Helper()
	e, err := FindEntry(name)
	require.NoError(t, err)
	return e
}

func mustComposer(t *testing.T, entryName string) *Composer {
	t.Helper()
	e := mustEntry(t, entryName)
	cfg, err := ConfigFor(e.OptionKind)
	require.NoError(t, err)
	c, err := NewComposer(e, cfg)
	require.NoError(t, err)
	return c
}

func TestComposerFlatPricedBread(t *testing.T) {
	c := mustComposer(t, "Italian Combo")

	item, err := c.SelectOption("Rye")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "Italian Combo (Rye)", item.Name)
	assert.True(t, item.Price.Equal(decimal.NewFromFloat(9.50)))
}

func TestComposerVariantPricedSize(t *testing.T) {
	c := mustComposer(t, "Lamb Gyro")

	item, err := c.SelectOption("Large")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "Lamb Gyro (Large)", item.Name)
	assert.True(t, item.Price.Equal(decimal.NewFromFloat(11.00)))
}

func TestComposerUnknownOption(t *testing.T) {
	c := mustComposer(t, "Italian Combo")
	_, err := c.SelectOption("Sourdough")
	assert.True(t, errors.Is(err, ErrUnknownOption))
}

func TestComposerOptionCaseInsensitive(t *testing.T) {
	c := mustComposer(t, "Garden Salad")
	item, err := c.SelectOption("ranch")
	require.NoError(t, err)
	assert.Equal(t, "Garden Salad (ranch)", item.Name)
	assert.True(t, item.Price.Equal(decimal.NewFromFloat(6.50)))
}

func TestComposerRequiresOptions(t *testing.T) {
	e := mustEntry(t, "Cheeseburger") // no options, modifiers only
	cfg, err := ConfigFor(KindBread)
	require.NoError(t, err)
	_, err = NewComposer(e, cfg)
	assert.True(t, errors.Is(err, ErrOptionRequired))
}

// The juice flow is two-stage: picking the size prices the drink and hands
// off to the ingredient multi-select instead of committing.
func TestComposerJuiceTwoStage(t *testing.T) {
	c := mustComposer(t, "Custom Juice")
	assert.False(t, c.MultiSelect())

	item, err := c.SelectOption("Medium")
	require.NoError(t, err)
	assert.Nil(t, item, "size selection must not commit")
	assert.True(t, c.MultiSelect())

	require.NoError(t, c.Increment("Apple"))
	require.NoError(t, c.Increment("Carrot"))
	require.NoError(t, c.Increment("Kale"))

	item, err = c.Confirm()
	require.NoError(t, err)
	// Three ingredients fit the free quota: medium base price only.
	assert.True(t, item.Price.Equal(decimal.NewFromFloat(6.50)), "price %s", item.Price)
	assert.Equal(t, "Custom Juice (Medium: Apple, Carrot, Kale)", item.Name)
}

func TestComposerJuiceExtraIngredientCharge(t *testing.T) {
	c := mustComposer(t, "Custom Juice")
	_, err := c.SelectOption("Small")
	require.NoError(t, err)

	// Five units with MaxFree 3 → two extra at 1.50 each.
	require.NoError(t, c.Increment("Apple"))
	require.NoError(t, c.Increment("Apple"))
	require.NoError(t, c.Increment("Ginger"))
	require.NoError(t, c.Increment("Beet"))
	require.NoError(t, c.Increment("Lemon"))
	assert.Equal(t, 5, c.TotalSelected())

	item, err := c.Confirm()
	require.NoError(t, err)
	assert.True(t, item.Price.Equal(decimal.NewFromFloat(8.00)), "price %s", item.Price)
	assert.Equal(t, "Custom Juice (Small: 2x Apple, Ginger, Beet, Lemon)", item.Name)
}

// Display names list selections in the option group's declared order so the
// same ingredients always merge to the same cart line, whatever the tap order.
func TestComposerDisplayNameIsOrderIndependent(t *testing.T) {
	compose := func(order []string) string {
		c := mustComposer(t, "Custom Juice")
		_, err := c.SelectOption("Large")
		require.NoError(t, err)
		for _, ing := range order {
			require.NoError(t, c.Increment(ing))
		}
		item, err := c.Confirm()
		require.NoError(t, err)
		return item.Name
	}

	a := compose([]string{"Kale", "Apple", "Carrot"})
	b := compose([]string{"Carrot", "Kale", "Apple"})
	assert.Equal(t, a, b)
	assert.Equal(t, "Custom Juice (Large: Apple, Carrot, Kale)", a)
}

func TestComposerConfirmRequiresSelection(t *testing.T) {
	c := mustComposer(t, "Custom Juice")
	_, err := c.SelectOption("Small")
	require.NoError(t, err)

	_, err = c.Confirm()
	assert.True(t, errors.Is(err, ErrNoSelection))
}

func TestComposerDecrementDeletesAtZero(t *testing.T) {
	c := mustComposer(t, "Custom Juice")
	_, err := c.SelectOption("Small")
	require.NoError(t, err)

	require.NoError(t, c.Increment("Apple"))
	require.NoError(t, c.Decrement("Apple"))
	require.NoError(t, c.Decrement("Apple")) // already zero, no-op
	assert.Zero(t, c.TotalSelected())
}

func TestComposerSeedIgnoresUnknown(t *testing.T) {
	c := mustComposer(t, "Custom Juice")
	_, err := c.SelectOption("Small")
	require.NoError(t, err)

	c.Seed(map[string]int{"apple": 2, "plutonium": 4, "kale": 0})
	assert.Equal(t, 2, c.TotalSelected())
}

func TestComposerStageGuards(t *testing.T) {
	c := mustComposer(t, "Custom Juice")
	// Multi-select ops before the size is chosen.
	assert.True(t, errors.Is(c.Increment("Apple"), ErrAlreadyMulti))
	_, err := c.Confirm()
	assert.True(t, errors.Is(err, ErrAlreadyMulti))

	_, err = c.SelectOption("Small")
	require.NoError(t, err)
	// Single-select op after the hand-off.
	_, err = c.SelectOption("Large")
	assert.True(t, errors.Is(err, ErrAlreadyMulti))
}
