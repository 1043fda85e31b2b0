package pricing

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTable(t *testing.T) *PriceTable {
	t.Helper()

	data, err := os.ReadFile("testdata/prices.json")
	require.NoError(t, err)

	table, err := ParseTable(data)
	require.NoError(t, err)
	return table
}

func TestParseTable(t *testing.T) {
	t.Run("object", func(t *testing.T) {
		table := loadTable(t)
		assert.Equal(t, Meta{Updated: "2025-09-01", Version: "3"}, table.Meta())
	})

	t.Run("not an object", func(t *testing.T) {
		for _, raw := range []string{"[]", "null", "42", "{broken"} {
			_, err := ParseTable([]byte(raw))
			assert.Error(t, err, raw)
		}
	})

	t.Run("meta is optional", func(t *testing.T) {
		table, err := ParseTable([]byte(`{"shared":{}}`))
		require.NoError(t, err)
		assert.Equal(t, Meta{}, table.Meta())
	})
}

func TestResolve(t *testing.T) {
	table := loadTable(t)

	t.Run("nil table", func(t *testing.T) {
		assert.Nil(t, Resolve(nil, ProductLeaflets))
	})

	t.Run("strategy per product", func(t *testing.T) {
		assert.IsType(t, &FlyerConfig{}, Resolve(table, ProductLeaflets))
		assert.IsType(t, &CardConfig{}, Resolve(table, ProductBusinessCards))
		assert.IsType(t, &LegacyConfig{}, Resolve(table, ProductFlyers))
		assert.IsType(t, &SharedConfig{}, Resolve(table, Product("stickers")))
	})

	t.Run("shared fields are inherited", func(t *testing.T) {
		cfg := Resolve(table, ProductLeaflets).(*FlyerConfig)
		assert.Equal(t, 1.2, cfg.UrgencyK[UrgencyOneDay])
		assert.Equal(t, 500.0, cfg.DesignFee["simple"])
	})

	t.Run("product fields win", func(t *testing.T) {
		cfg := Resolve(table, ProductBusinessCards).(*CardConfig)
		assert.Equal(t, 1.1, cfg.UrgencyK[UrgencyOneDay])
		assert.Equal(t, 1500.0, cfg.DesignFee["complex"])

		legacy := Resolve(table, ProductFlyers).(*LegacyConfig)
		assert.Equal(t, 300.0, legacy.DesignFee["simple"])
		_, inherited := legacy.DesignFee["complex"]
		assert.False(t, inherited)
	})

	t.Run("flat legacy document", func(t *testing.T) {
		flat, err := ParseTable([]byte(`{"basePerItem_A6": 7, "sizeK": {"A6": 1}, "vat": 0.2}`))
		require.NoError(t, err)

		cfg := Resolve(flat, ProductFlyers).(*LegacyConfig)
		assert.Equal(t, 7.0, cfg.BasePerItemA6)
		assert.Equal(t, 0.2, cfg.VAT)
	})

	t.Run("bad leaves fall back to defaults", func(t *testing.T) {
		odd, err := ParseTable([]byte(`{"products": {"leaflets": {
			"options": {"laminationMultiplier": "abc", "doubleSidedMultiplier": -2},
			"discountByAmount": {"capRate": "x"}
		}}}`))
		require.NoError(t, err)

		cfg := Resolve(odd, ProductLeaflets).(*FlyerConfig)
		assert.Equal(t, 1.0, cfg.LaminationMultiplier)
		assert.Equal(t, 1.0, cfg.DoubleSidedMultiplier)
		assert.Equal(t, DefaultAmountCurve(), cfg.Discount)
		assert.Equal(t, "A4", cfg.Floor.ReferenceSize)
	})

	t.Run("resolution does not touch the table", func(t *testing.T) {
		before, err := table.MarshalJSON()
		require.NoError(t, err)

		for _, p := range Products {
			Resolve(table, p)
		}

		after, err := table.MarshalJSON()
		require.NoError(t, err)
		assert.JSONEq(t, string(before), string(after))
	})
}

func TestValidate(t *testing.T) {
	table := loadTable(t)

	for _, p := range Products {
		assert.Empty(t, Validate(table, p), p)
	}

	empty, err := ParseTable([]byte(`{}`))
	require.NoError(t, err)

	assert.Len(t, Validate(empty, ProductLeaflets), 5)
	assert.Len(t, Validate(empty, ProductFlyers), 4)
	assert.NotEmpty(t, Validate(nil, ProductBusinessCards))
}

func TestChoices(t *testing.T) {
	table := loadTable(t)

	leaflets := Resolve(table, ProductLeaflets).Choices()
	assert.Equal(t, []string{"A3", "A4", "A5", "A6", "DL"}, leaflets.Sizes)
	assert.Equal(t, []string{"130", "300"}, leaflets.GSMs)
	assert.Equal(t, []string{"gloss", "matte", "premium"}, leaflets.Stocks)
	assert.Equal(t, []string{"express", "oneday", "standard", "urgent"}, leaflets.Urgencies)

	cards := Resolve(table, ProductBusinessCards).Choices()
	assert.Equal(t, []string{"designer", "paper300", "plastic"}, cards.Stocks)
	assert.Empty(t, cards.GSMs)

	legacy := Resolve(table, ProductFlyers).Choices()
	assert.Equal(t, []string{"double", "single"}, legacy.Prints)
	assert.Equal(t, []string{"none", "simple"}, legacy.Designs)

	bare, err := ParseTable([]byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"90x50"}, Resolve(bare, ProductBusinessCards).Choices().Sizes)
}
