package pricing

// FlyerConfig is the effective config of the leaflets product.
type FlyerConfig struct {
	Base                  map[string]map[string]float64 // size -> gsm -> per item
	DoubleSidedMultiplier float64
	LaminationMultiplier  float64
	StockMultiplier       map[string]float64
	RoundedCornersPerItem float64
	CreasingPerLine       float64
	StockSurcharge        map[string]float64
	GSMSurcharge          map[string]float64
	Floor                 FloorRule
	Discount              AmountCurve
	UrgencyK              map[string]float64
	DesignFee             map[string]float64
	Rule                  QuantityRule
}

func decodeFlyer(m map[string]any) *FlyerConfig {
	opts := section(m, "options")
	rules := decodeQuantityRules(m, map[string]QuantityRule{
		string(ProductLeaflets): {Min: 1, Step: 1, Fallback: 100},
	})

	return &FlyerConfig{
		Base:                  numberMatrix(section(m, "base"), "basePerItem"),
		DoubleSidedMultiplier: number(opts, "doubleSidedMultiplier", 1),
		LaminationMultiplier:  number(opts, "laminationMultiplier", 1),
		StockMultiplier:       numberMap(opts, "stockMultiplier"),
		RoundedCornersPerItem: number(opts, "roundedCornersPerItem", 0),
		CreasingPerLine:       number(opts, "creasingPerLine", 0),
		StockSurcharge:        numberMap(opts, "stockSurchargePerItem"),
		GSMSurcharge:          numberMap(opts, "gsmSurchargePerItem"),
		Floor:                 decodeFloor(m),
		Discount:              decodeAmountCurve(m),
		UrgencyK:              numberMap(m, "urgencyK"),
		DesignFee:             numberMap(m, "designFee"),
		Rule:                  rules[string(ProductLeaflets)],
	}
}

func (c *FlyerConfig) Product() Product { return ProductLeaflets }

func (c *FlyerConfig) Defaults() Order {
	return Order{
		Product:  ProductLeaflets,
		Size:     "A6",
		Print:    PrintSingle,
		Stock:    "gloss",
		GSM:      "300",
		Quantity: 100,
		Urgency:  UrgencyOneDay,
		Design:   DesignNone,
	}
}

func (c *FlyerConfig) QuantityRule(Order) QuantityRule { return c.Rule }

// basePerItem returns the matrix cell, deriving a missing one from the
// reference size.
func (c *FlyerConfig) basePerItem(size, gsm string) float64 {
	if v, ok := c.Base[size][gsm]; ok {
		return v
	}
	ref, ok := c.Base[c.Floor.ReferenceSize][gsm]
	if !ok {
		return 0
	}
	units := lookup(c.Floor.UnitsPerReference, size, 1)
	if units <= 0 {
		units = 1
	}
	return ref / units
}

func (c *FlyerConfig) perItem(o Order) (float64, Surcharges) {
	unit := c.basePerItem(o.Size, o.GSM)
	if o.Print == PrintDouble {
		unit *= c.DoubleSidedMultiplier
	}
	unit *= boolFactor(o.Lamination, c.LaminationMultiplier)
	unit *= lookup(c.StockMultiplier, o.Stock, 1)

	adds := Surcharges{
		Rounded:  boolAdd(o.RoundedCorners, c.RoundedCornersPerItem),
		Creasing: c.CreasingPerLine * float64(o.CreasingLines),
		Stock:    lookup(c.StockSurcharge, o.Stock, 0),
		GSM:      lookup(c.GSMSurcharge, o.GSM, 0),
	}
	return unit + adds.Rounded + adds.Creasing + adds.Stock + adds.GSM, adds
}

func (c *FlyerConfig) loaded() bool { return c != nil }

func (c *FlyerConfig) compute(o Order) Breakdown {
	perItem, adds := c.perItem(o)

	b := Breakdown{
		Product:    ProductLeaflets,
		PerItem:    perItem,
		Quantity:   o.Quantity,
		Surcharges: adds,
		Gross:      perItem * float64(o.Quantity),
	}

	if !c.Floor.Exempt(o.Size) {
		sheet := o
		sheet.Size = c.Floor.ReferenceSize
		oneSheet, _ := c.perItem(sheet)
		b.Gross, b.FloorApplied = c.Floor.apply(o.Size, b.Gross, oneSheet)
	}

	return finish(b, c.Discount,
		lookup(c.DesignFee, o.Design, 0),
		lookup(c.UrgencyK, o.Urgency, 1))
}
