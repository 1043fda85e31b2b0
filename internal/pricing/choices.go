package pricing

import (
	"sort"

	"github.com/samber/lo"
)

// Choices lists the option values a price table can price for a product.
type Choices struct {
	Sizes     []string
	Prints    []string
	Stocks    []string
	GSMs      []string
	Urgencies []string
	Designs   []string
}

func keys[V any](maps ...map[string]V) []string {
	var out []string
	for _, m := range maps {
		out = lo.Union(out, lo.Keys(m))
	}
	sort.Strings(out)
	return out
}

func sortedUnion(lists ...[]string) []string {
	out := lo.Union(lists...)
	sort.Strings(out)
	return out
}

func orDefault(values []string, def string) []string {
	if len(values) == 0 && def != "" {
		return []string{def}
	}
	return values
}

func (c *FlyerConfig) Choices() Choices {
	gsms := lo.Uniq(lo.FlatMap(lo.Values(c.Base), func(row map[string]float64, _ int) []string {
		return lo.Keys(row)
	}))
	sort.Strings(gsms)
	def := c.Defaults()
	return Choices{
		Sizes:     orDefault(sortedUnion(keys(c.Base), keys(c.Floor.UnitsPerReference)), def.Size),
		Prints:    []string{PrintSingle, PrintDouble},
		Stocks:    orDefault(keys(c.StockMultiplier, c.StockSurcharge), def.Stock),
		GSMs:      orDefault(gsms, def.GSM),
		Urgencies: orDefault(keys(c.UrgencyK), def.Urgency),
		Designs:   orDefault(keys(c.DesignFee), def.Design),
	}
}

func (c *CardConfig) Choices() Choices {
	def := c.Defaults()
	return Choices{
		Sizes:     orDefault(keys(c.SizeMultiplier), def.Size),
		Prints:    []string{PrintSingle, PrintDouble},
		Stocks:    orDefault(keys(c.Base), def.Stock),
		Urgencies: orDefault(keys(c.UrgencyK), def.Urgency),
		Designs:   orDefault(keys(c.DesignFee), def.Design),
	}
}

func (c *LegacyConfig) Choices() Choices {
	def := c.Defaults()
	return Choices{
		Sizes:     orDefault(keys(c.SizeK), def.Size),
		Prints:    orDefault(keys(c.PrintK), def.Print),
		Stocks:    orDefault(keys(c.StockSurcharge), def.Stock),
		GSMs:      orDefault(keys(c.GSMSurcharge), def.GSM),
		Urgencies: orDefault(keys(c.UrgencyK), def.Urgency),
		Designs:   orDefault(keys(c.DesignFee), def.Design),
	}
}

func (c *SharedConfig) Choices() Choices {
	return Choices{
		Urgencies: keys(c.UrgencyK),
		Designs:   keys(c.DesignFee),
	}
}
