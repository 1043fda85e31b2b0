package pricing

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeQuantity(t *testing.T) {
	rule := QuantityRule{Min: 120, Step: 24, Fallback: 120}

	tests := []struct {
		name     string
		raw      string
		want     int
		adjusted bool
	}{
		{"below minimum", "1", 120, true},
		{"exact pack", "144", 144, false},
		{"rounded up to pack", "130", 144, true},
		{"garbage", "abc", 120, true},
		{"empty", "", 120, true},
		{"negative", "-5", 120, true},
		{"spaces and units", " 2 40 шт", 240, false},
		{"too many digits", "99999999999999", 10000000008, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeQuantity(tt.raw, rule)
			assert.Equal(t, tt.want, got.Quantity)
			assert.Equal(t, tt.adjusted, got.Adjusted)
			if tt.adjusted {
				assert.NotEmpty(t, got.Message)
			}
		})
	}
}

func TestNormalizeQuantityIdempotent(t *testing.T) {
	rules := []QuantityRule{
		{Min: 120, Step: 24, Fallback: 120},
		{Min: 30, Step: 1, Fallback: 30},
		{Min: 130, Step: 24, Fallback: 100},
		{Min: 50, Step: 50, Fallback: 500},
		{},
	}
	inputs := []string{"", "0", "1", "-3", "29", "31", "119", "121", "145", "1000", "abc", "1e3", "12 000"}

	for _, rule := range rules {
		for _, raw := range inputs {
			first := NormalizeQuantity(raw, rule)
			second := NormalizeQuantity(strconv.Itoa(first.Quantity), rule)

			assert.Equal(t, first.Quantity, second.Quantity, "rule %+v input %q", rule, raw)
			assert.False(t, second.Adjusted, "rule %+v input %q", rule, raw)
		}
	}
}

func TestNormalizeBusinessCards(t *testing.T) {
	cfg := Resolve(loadTable(t), ProductBusinessCards)
	require.NotNil(t, cfg)

	o, adj := Normalize(cfg, Order{Stock: MaterialPaper300}, "1")
	assert.Equal(t, 120, o.Quantity)
	assert.True(t, adj.Adjusted)

	o, adj = Normalize(cfg, Order{Stock: MaterialPlastic}, "1")
	assert.Equal(t, 30, o.Quantity)
	assert.True(t, adj.Adjusted)

	o, adj = Normalize(cfg, Order{Stock: MaterialPlastic}, "abc")
	assert.Equal(t, 120, o.Quantity)
	assert.True(t, adj.Adjusted)

	o, adj = Normalize(cfg, Order{Stock: MaterialPlastic}, "")
	assert.Equal(t, 120, o.Quantity)
	assert.True(t, adj.Adjusted)

	o, _ = Normalize(cfg, Order{Stock: MaterialPlastic, Lamination: true, RoundedCorners: true}, "30")
	assert.False(t, o.Lamination)
	assert.False(t, o.RoundedCorners)
	assert.Equal(t, ProductBusinessCards, o.Product)
}

func TestQuantityRulesOverride(t *testing.T) {
	table, err := ParseTable([]byte(`{"products": {"business-cards": {
		"quantityRules": {"plastic": {"min": 50, "step": 10}}
	}}}`))
	require.NoError(t, err)

	cfg := Resolve(table, ProductBusinessCards)
	assert.Equal(t, QuantityRule{Min: 50, Step: 10, Fallback: 120}, cfg.QuantityRule(Order{Stock: MaterialPlastic}))
	assert.Equal(t, QuantityRule{Min: 120, Step: 24, Fallback: 120}, cfg.QuantityRule(Order{Stock: MaterialDesigner}))
}
