package pricing

// LegacyConfig prices the original flyers product: a flat A6 base scaled by
// size and print factors, quantity step discounts and a trailing VAT line.
type LegacyConfig struct {
	BasePerItemA6         float64
	SizeK                 map[string]float64
	PrintK                map[string]float64
	StockSurcharge        map[string]float64
	GSMSurcharge          map[string]float64
	LaminationPerItem     float64
	CreasingPerItem       float64
	RoundedCornersPerItem float64
	UrgencyK              map[string]float64
	DesignFee             map[string]float64
	VAT                   float64
	Steps                 QuantitySteps
	Rule                  QuantityRule
}

func decodeLegacy(m map[string]any) *LegacyConfig {
	rules := decodeQuantityRules(m, map[string]QuantityRule{
		string(ProductFlyers): {Min: 50, Step: 50, Fallback: 500},
	})
	return &LegacyConfig{
		BasePerItemA6:         number(m, "basePerItem_A6", 0),
		SizeK:                 numberMap(m, "sizeK"),
		PrintK:                numberMap(m, "printK"),
		StockSurcharge:        numberMap(m, "stockSurchargePerItem"),
		GSMSurcharge:          numberMap(m, "gsmSurchargePerItem"),
		LaminationPerItem:     number(m, "laminationPerItem", 0),
		CreasingPerItem:       number(m, "creasingPerItem", 0),
		RoundedCornersPerItem: number(m, "roundedCornersPerItem", 0),
		UrgencyK:              numberMap(m, "urgencyK"),
		DesignFee:             numberMap(m, "designFee"),
		VAT:                   number(m, "vat", 0),
		Steps:                 decodeQuantitySteps(m),
		Rule:                  rules[string(ProductFlyers)],
	}
}

func (c *LegacyConfig) Product() Product { return ProductFlyers }

func (c *LegacyConfig) Defaults() Order {
	return Order{
		Product:  ProductFlyers,
		Size:     "A6",
		Print:    PrintSingle,
		Stock:    "gloss",
		GSM:      "130",
		Quantity: 500,
		Urgency:  UrgencyStandard,
		Design:   DesignNone,
	}
}

func (c *LegacyConfig) QuantityRule(Order) QuantityRule { return c.Rule }

func (c *LegacyConfig) loaded() bool { return c != nil }

func (c *LegacyConfig) compute(o Order) Breakdown {
	base := c.BasePerItemA6 * lookup(c.SizeK, o.Size, 1) * lookup(c.PrintK, o.Print, 1)

	adds := Surcharges{
		Stock:      lookup(c.StockSurcharge, o.Stock, 0),
		GSM:        lookup(c.GSMSurcharge, o.GSM, 0),
		Lamination: boolAdd(o.Lamination, c.LaminationPerItem),
		Creasing:   c.CreasingPerItem * float64(o.CreasingLines),
		Rounded:    boolAdd(o.RoundedCorners, c.RoundedCornersPerItem),
	}

	b := Breakdown{
		Product:    ProductFlyers,
		Quantity:   o.Quantity,
		Surcharges: adds,
		PerItem:    base + adds.Stock + adds.GSM + adds.Lamination + adds.Creasing + adds.Rounded,
	}
	b.Gross = b.PerItem * float64(b.Quantity)

	b.DiscountRate = c.Steps.Rate(b.Quantity)
	b.DiscountValue = b.Gross * b.DiscountRate
	b.AfterDiscount = b.Gross - b.DiscountValue

	// the design fee is added after urgency and is not multiplied by it
	b.UrgencyK = lookup(c.UrgencyK, o.Urgency, 1)
	b.AfterUrgency = b.AfterDiscount * b.UrgencyK
	b.DesignFee = lookup(c.DesignFee, o.Design, 0)
	b.Subtotal = b.AfterUrgency + b.DesignFee

	b.VATRate = c.VAT
	b.VATValue = b.Subtotal * b.VATRate
	b.Total = b.Subtotal + b.VATValue
	return b
}
