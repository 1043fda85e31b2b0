package pricing

import "maps"

// Config is the effective per-product configuration: shared settings merged
// with the product section and decoded with defaults applied. Implementations
// are immutable.
type Config interface {
	Product() Product
	// Defaults returns the order a fresh, untouched form produces.
	Defaults() Order
	// QuantityRule returns the pack rule for the order's material variant.
	QuantityRule(o Order) QuantityRule
	// Choices lists the option values the table prices.
	Choices() Choices
}

// Strategy is implemented by configs that can price an order.
type Strategy interface {
	Config
	compute(o Order) Breakdown
	// loaded is false for a nil config behind a non-nil interface.
	loaded() bool
}

// merge copies shared fields into a fresh map and overlays the product
// section. Product fields win on collision.
func merge(table *PriceTable, key Product) map[string]any {
	out := make(map[string]any)

	shared := table.shared()
	for k, v := range shared {
		if k == "fees" {
			continue
		}
		out[k] = v
	}
	if fee, ok := section(shared, "fees")["designFee"]; ok {
		out["designFee"] = fee
	}

	product, ok := table.product(key)
	if !ok && key == ProductFlyers && table.isFlatLegacy() {
		product, ok = table.doc, true
	}
	if ok {
		maps.Copy(out, product)
	}
	return out
}

// Resolve builds the effective config of a product. It returns nil only when
// the table itself is absent; unknown product keys yield a SharedConfig.
func Resolve(table *PriceTable, key Product) Config {
	if table == nil {
		return nil
	}

	m := merge(table, key)
	switch key {
	case ProductLeaflets:
		return decodeFlyer(m)
	case ProductBusinessCards:
		return decodeCard(m)
	case ProductFlyers:
		return decodeLegacy(m)
	default:
		return decodeShared(key, m)
	}
}

// Validate performs the advisory presence check used for manually supplied
// price files. An empty result means the file is acceptable.
func Validate(table *PriceTable, key Product) []string {
	if table == nil {
		return []string{"Файл цен отсутствует."}
	}

	m := merge(table, key)
	var errs []string

	if key == ProductFlyers {
		if !has(m, "basePerItem_A6") {
			errs = append(errs, "Нет basePerItem_A6.")
		}
		if !has(m, "sizeK") {
			errs = append(errs, "Нет секции sizeK.")
		}
		if !has(m, "printK") {
			errs = append(errs, "Нет секции printK.")
		}
		if !has(m, "urgencyK") {
			errs = append(errs, "Нет секции urgencyK.")
		}
		return errs
	}

	if !has(m, "base") {
		errs = append(errs, "Нет секции base.")
	}
	if !has(section(m, "base"), "basePerItem") {
		errs = append(errs, "Нет base.basePerItem (матрица базовых цен).")
	}
	if !has(m, "options") {
		errs = append(errs, "Нет секции options (доплаты).")
	}
	if !has(m, "urgencyK") {
		errs = append(errs, "Нет секции urgencyK.")
	}
	if !has(m, "discountByAmount") {
		errs = append(errs, "Нет секции discountByAmount (скидки по сумме).")
	}
	return errs
}

// SharedConfig is what an unknown product key resolves to: shared settings
// only, with no pricing strategy behind it.
type SharedConfig struct {
	Key       Product
	UrgencyK  map[string]float64
	DesignFee map[string]float64
}

func decodeShared(key Product, m map[string]any) *SharedConfig {
	return &SharedConfig{
		Key:       key,
		UrgencyK:  numberMap(m, "urgencyK"),
		DesignFee: numberMap(m, "designFee"),
	}
}

func (c *SharedConfig) Product() Product {
	if c == nil {
		return ""
	}
	return c.Key
}

func (c *SharedConfig) Defaults() Order {
	return Order{Product: c.Key, Quantity: 1, Urgency: UrgencyStandard, Design: DesignNone}
}

func (c *SharedConfig) QuantityRule(Order) QuantityRule {
	return QuantityRule{Min: 1, Step: 1, Fallback: 1}
}
