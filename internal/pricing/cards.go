package pricing

// CardConfig is the effective config of the business cards product.
type CardConfig struct {
	Base                  map[string]map[string]float64 // material -> print -> per item
	SizeMultiplier        map[string]float64
	DoubleSidedMultiplier float64
	LaminationMultiplier  float64
	RoundedCornersPerItem float64
	Discount              AmountCurve
	UrgencyK              map[string]float64
	DesignFee             map[string]float64
	Rules                 map[string]QuantityRule
}

func decodeCard(m map[string]any) *CardConfig {
	opts := section(m, "options")
	return &CardConfig{
		Base:                  numberMatrix(section(m, "base"), "basePerItem"),
		SizeMultiplier:        numberMap(opts, "sizeMultiplier"),
		DoubleSidedMultiplier: number(opts, "doubleSidedMultiplier", 1),
		LaminationMultiplier:  number(opts, "laminationMultiplier", 1),
		RoundedCornersPerItem: number(opts, "roundedCornersPerItem", 0),
		Discount:              decodeAmountCurve(m),
		UrgencyK:              numberMap(m, "urgencyK"),
		DesignFee:             numberMap(m, "designFee"),
		Rules: decodeQuantityRules(m, map[string]QuantityRule{
			MaterialPaper300: {Min: 120, Step: 24, Fallback: 120},
			MaterialDesigner: {Min: 120, Step: 24, Fallback: 120},
			MaterialPlastic:  {Min: 30, Step: 1, Fallback: 120},
		}),
	}
}

func (c *CardConfig) Product() Product { return ProductBusinessCards }

func (c *CardConfig) Defaults() Order {
	return Order{
		Product:  ProductBusinessCards,
		Size:     "90x50",
		Print:    PrintDouble,
		Stock:    MaterialPaper300,
		Quantity: 120,
		Urgency:  UrgencyOneDay,
		Design:   DesignNone,
	}
}

// QuantityRule picks the pack rule of the order's material. Unknown materials
// get a plain minimum of one with the card fallback.
func (c *CardConfig) QuantityRule(o Order) QuantityRule {
	if r, ok := c.Rules[o.Stock]; ok {
		return r
	}
	return QuantityRule{Min: 1, Step: 1, Fallback: 120}
}

func (c *CardConfig) basePerItem(material, side string) float64 {
	row := c.Base[material]
	if v, ok := row[side]; ok {
		return v
	}
	if side == PrintDouble {
		return lookup(row, PrintSingle, 0) * c.DoubleSidedMultiplier
	}
	return 0
}

func (c *CardConfig) loaded() bool { return c != nil }

func (c *CardConfig) compute(o Order) Breakdown {
	unit := c.basePerItem(o.Stock, o.Print) * lookup(c.SizeMultiplier, o.Size, 1)
	unit *= boolFactor(o.Lamination, c.LaminationMultiplier)

	adds := Surcharges{Rounded: boolAdd(o.RoundedCorners, c.RoundedCornersPerItem)}

	b := Breakdown{
		Product:    ProductBusinessCards,
		PerItem:    unit + adds.Rounded,
		Quantity:   o.Quantity,
		Surcharges: adds,
	}
	b.Gross = b.PerItem * float64(b.Quantity)

	return finish(b, c.Discount,
		lookup(c.DesignFee, o.Design, 0),
		lookup(c.UrgencyK, o.Urgency, 1))
}
