package menu

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindEntryCaseInsensitive(t *testing.T) {
	e, err := FindEntry("lamb gyro")
	require.NoError(t, err)
	assert.Equal(t, "Lamb Gyro", e.Name)

	_, err = FindEntry("Pastrami on Mars")
	assert.Error(t, err)
}

func TestFindEntryReturnsCopy(t *testing.T) {
	e, err := FindEntry("BLT")
	require.NoError(t, err)
	e.Price = decimal.NewFromInt(999)

	again, err := FindEntry("BLT")
	require.NoError(t, err)
	assert.True(t, again.Price.Equal(decimal.NewFromFloat(7.25)))
}

func TestConfigForUnknownKind(t *testing.T) {
	_, err := ConfigFor(OptionKind("toppings"))
	assert.Error(t, err)
}

func TestByWeightEntriesCarryPerPound(t *testing.T) {
	e, err := FindEntry("Roast Beef")
	require.NoError(t, err)
	assert.True(t, e.ByWeight)
	assert.False(t, e.RequiresOptions)
	assert.True(t, e.PerPound.Equal(decimal.NewFromFloat(12.99)))
}

func TestComboName(t *testing.T) {
	assert.Contains(t, ComboName("BLT (Rye)"), "BLT (Rye)")
}
