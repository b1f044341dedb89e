package checkout

import (
	"context"
	"testing"

	"delipos/internal/menu"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddProductMergesByUPC(t *testing.T) {
	ctx := context.Background()
	c := NewCart("store-1", nil)
	p := ProductRef{UPC: "012345678905", Name: "Cola 2L", Price: decimal.NewFromFloat(2.99)}

	c.AddProduct(ctx, p)
	line := c.AddProduct(ctx, p)

	require.Len(t, c.Lines(), 1)
	assert.Equal(t, 2, line.Quantity)
	assert.True(t, line.Total().Equal(decimal.NewFromFloat(5.98)))
}

func TestAddProductPrepends(t *testing.T) {
	ctx := context.Background()
	c := NewCart("store-1", nil)
	c.AddProduct(ctx, ProductRef{UPC: "1", Name: "First", Price: decimal.NewFromFloat(1)})
	c.AddProduct(ctx, ProductRef{UPC: "2", Name: "Second", Price: decimal.NewFromFloat(2)})

	lines := c.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "Second", lines[0].Name)
	assert.Equal(t, "First", lines[1].Name)
}

func TestAddComposedMergesByFullName(t *testing.T) {
	ctx := context.Background()
	c := NewCart("store-1", nil)
	rye := &menu.Item{Name: "Italian Combo (Rye)", Price: decimal.NewFromFloat(9.50)}
	wheat := &menu.Item{Name: "Italian Combo (Wheat)", Price: decimal.NewFromFloat(9.50)}

	c.AddComposed(ctx, rye)
	merged := c.AddComposed(ctx, rye)
	c.AddComposed(ctx, wheat)

	// Same selections merge; a different bread stays its own line.
	require.Len(t, c.Lines(), 2)
	assert.Equal(t, 2, merged.Quantity)
}

func TestComposedWithModifiersMergeKey(t *testing.T) {
	ctx := context.Background()
	c := NewCart("store-1", nil)
	plain := &menu.Item{Name: "Cheeseburger", Price: decimal.NewFromFloat(8.50)}
	bacon := &menu.Item{
		Name:      "Cheeseburger",
		Price:     decimal.NewFromFloat(8.50),
		Modifiers: []menu.Modifier{{Name: "Bacon", Price: decimal.NewFromFloat(1.50)}},
	}

	c.AddComposed(ctx, plain)
	c.AddComposed(ctx, bacon)
	c.AddComposed(ctx, bacon)

	require.Len(t, c.Lines(), 2)
	assert.Equal(t, 2, c.QuantityOf("Cheeseburger + Bacon"))
	assert.Equal(t, 1, c.QuantityOf("Cheeseburger"))
}

func TestAddWeighedReplacesWeight(t *testing.T) {
	ctx := context.Background()
	c := NewCart("store-1", nil)
	perPound := decimal.NewFromFloat(4.99)

	c.AddWeighed(ctx, "Potato Salad", perPound, decimal.NewFromFloat(0.75))
	line := c.AddWeighed(ctx, "Potato Salad", perPound, decimal.NewFromFloat(1.20))

	// Re-weighing supersedes the prior reading, it does not stack.
	require.Len(t, c.Lines(), 1)
	assert.True(t, line.Weight.Equal(decimal.NewFromFloat(1.20)))
	assert.True(t, line.Total().Equal(decimal.NewFromFloat(5.988)), "total %s", line.Total())
}

// A by-the-pound line and an open item may share a display name; their keys
// must stay distinct so key-addressed mutations hit the right line.
func TestWeighedLineDoesNotCollideWithOpenItem(t *testing.T) {
	ctx := context.Background()
	c := NewCart("store-1", nil)

	open := c.AddOpen(ctx, "Potato Salad", decimal.NewFromFloat(3.00))
	weighed := c.AddWeighed(ctx, "Potato Salad", decimal.NewFromFloat(4.99), decimal.NewFromFloat(0.80))

	require.Len(t, c.Lines(), 2)
	assert.NotEqual(t, open.Key(), weighed.Key())

	// Re-weighing still replaces the weighed line, not the open item.
	c.AddWeighed(ctx, "Potato Salad", decimal.NewFromFloat(4.99), decimal.NewFromFloat(1.10))
	require.Len(t, c.Lines(), 2)
	assert.Equal(t, 1, c.QuantityOf(open.Key()))

	require.NoError(t, c.Remove(ctx, weighed.Key()))
	require.Len(t, c.Lines(), 1)
	assert.Equal(t, "Potato Salad", c.Lines()[0].Name)
	assert.Equal(t, LineOpen, c.Lines()[0].Kind)
}

func TestUpdateQuantityRemovesAtZero(t *testing.T) {
	ctx := context.Background()
	c := NewCart("store-1", nil)
	c.AddProduct(ctx, ProductRef{UPC: "1", Name: "Milk", Price: decimal.NewFromFloat(3.49)})

	require.NoError(t, c.UpdateQuantity(ctx, "1", 2))
	assert.Equal(t, 3, c.QuantityOf("1"))

	require.NoError(t, c.UpdateQuantity(ctx, "1", -3))
	assert.True(t, c.Empty())
}

func TestUpdateQuantityUnknownKey(t *testing.T) {
	c := NewCart("store-1", nil)
	assert.Error(t, c.UpdateQuantity(context.Background(), "missing", 1))
}

func TestAddComboInsertsAfterParent(t *testing.T) {
	ctx := context.Background()
	c := NewCart("store-1", nil)
	c.AddProduct(ctx, ProductRef{UPC: "1", Name: "Chips", Price: decimal.NewFromFloat(1.99)})
	parent := c.AddComposed(ctx, &menu.Item{Name: "BLT (White)", Price: decimal.NewFromFloat(7.25)})
	c.AddProduct(ctx, ProductRef{UPC: "2", Name: "Soda", Price: decimal.NewFromFloat(1.50)})

	combo, err := c.AddCombo(ctx, parent.Key())
	require.NoError(t, err)

	lines := c.Lines()
	require.Len(t, lines, 4)
	// Parent sits at index 1 after the later Soda prepend; combo right after it.
	assert.Equal(t, "BLT (White)", lines[1].Name)
	assert.Equal(t, combo.Name, lines[2].Name)
	assert.True(t, lines[2].UnitPrice.Equal(menu.ComboUpcharge))
	assert.Equal(t, LineCombo, lines[2].Kind)

	// The combo line stays independently removable.
	require.NoError(t, c.Remove(ctx, combo.Key()))
	assert.Len(t, c.Lines(), 3)
}

func TestAddComboUnknownParent(t *testing.T) {
	c := NewCart("store-1", nil)
	_, err := c.AddCombo(context.Background(), "nope")
	assert.Error(t, err)
}

func TestReplaceComposedKeepsQuantityAndPosition(t *testing.T) {
	ctx := context.Background()
	c := NewCart("store-1", nil)
	c.AddProduct(ctx, ProductRef{UPC: "1", Name: "Gum", Price: decimal.NewFromFloat(0.99)})
	orig := &menu.Item{Name: "Garden Salad (Ranch)", Price: decimal.NewFromFloat(6.50)}
	c.AddComposed(ctx, orig)
	c.AddComposed(ctx, orig)

	replacement := &menu.Item{Name: "Garden Salad (Caesar)", Price: decimal.NewFromFloat(6.50)}
	line, err := c.ReplaceComposed(ctx, "Garden Salad (Ranch)", replacement)
	require.NoError(t, err)

	assert.Equal(t, 2, line.Quantity)
	lines := c.Lines()
	assert.Equal(t, "Garden Salad (Caesar)", lines[0].Name)
	assert.Equal(t, 0, c.QuantityOf("Garden Salad (Ranch)"))
}

func TestClearEmptiesCart(t *testing.T) {
	ctx := context.Background()
	c := NewCart("store-1", nil)
	c.AddOpen(ctx, "Misc", decimal.NewFromFloat(1.00))
	c.Clear(ctx)
	assert.True(t, c.Empty())
	assert.Empty(t, c.Lines())
}

func TestOpenItemsMergeByName(t *testing.T) {
	ctx := context.Background()
	c := NewCart("store-1", nil)
	c.AddOpen(ctx, "Loose Candy", decimal.NewFromFloat(0.75))
	line := c.AddOpen(ctx, "Loose Candy", decimal.NewFromFloat(0.75))

	require.Len(t, c.Lines(), 1)
	assert.Equal(t, 2, line.Quantity)
}

func TestLineTotalIncludesModifiers(t *testing.T) {
	l := Line{
		Kind:      LineComposed,
		Name:      "Cheeseburger",
		UnitPrice: decimal.NewFromFloat(8.50),
		Quantity:  2,
		Modifiers: []menu.Modifier{
			{Name: "Bacon", Price: decimal.NewFromFloat(1.50)},
			{Name: "Extra Cheese", Price: decimal.NewFromFloat(0.75)},
		},
	}
	// (8.50 + 1.50 + 0.75) × 2
	assert.True(t, l.Total().Equal(decimal.NewFromFloat(21.50)), "total %s", l.Total())
}
