package pricing

import (
	"errors"
	"fmt"
)

var (
	// ErrPricesNotLoaded means the engine was called before a price table
	// was resolved.
	ErrPricesNotLoaded = errors.New("prices not loaded")
	// ErrUnknownProduct means the config has no pricing strategy behind it.
	ErrUnknownProduct = errors.New("unknown product")
)

// Surcharges are the additive per-unit amounts included in PerItem.
type Surcharges struct {
	Lamination float64 `json:"lamination"`
	Creasing   float64 `json:"creasing"`
	Rounded    float64 `json:"rounded"`
	Stock      float64 `json:"stock"`
	GSM        float64 `json:"gsm"`
}

// Breakdown records every intermediate amount of one computation. Values are
// unrounded; rounding happens only when they are displayed.
type Breakdown struct {
	Product       Product    `json:"product"`
	PerItem       float64    `json:"perItem"`
	Quantity      int        `json:"quantity"`
	Surcharges    Surcharges `json:"surcharges"`
	Gross         float64    `json:"gross"`
	FloorApplied  bool       `json:"floorApplied"`
	DiscountRate  float64    `json:"discountRate"`
	DiscountValue float64    `json:"discountValue"`
	AfterDiscount float64    `json:"afterDiscount"`
	DesignFee     float64    `json:"designFee"`
	UrgencyK      float64    `json:"urgencyK"`
	AfterUrgency  float64    `json:"afterUrgency"`
	Subtotal      float64    `json:"subtotal"`
	VATRate       float64    `json:"vatRate"`
	VATValue      float64    `json:"vatValue"`
	Total         float64    `json:"total"`
}

// Compute prices an already normalized order. It never mutates cfg and keeps
// no state between calls.
func Compute(cfg Config, o Order) (Breakdown, error) {
	const operation = "pricing.Compute"

	if cfg == nil {
		return Breakdown{}, fmt.Errorf("%s: %w", operation, ErrPricesNotLoaded)
	}
	s, ok := cfg.(Strategy)
	if ok && !s.loaded() {
		return Breakdown{}, fmt.Errorf("%s: %w", operation, ErrPricesNotLoaded)
	}
	if !ok {
		return Breakdown{}, fmt.Errorf("%s: %q: %w", operation, cfg.Product(), ErrUnknownProduct)
	}

	o.Product = cfg.Product()
	o = applyMaterialRules(o)
	if o.Quantity < 1 {
		o.Quantity = 1
	}
	return s.compute(o), nil
}

// finish runs the shared tail of the current products' pipeline: discount on
// the gross amount, design fee on top, urgency over everything.
func finish(b Breakdown, curve AmountCurve, designFee, urgencyK float64) Breakdown {
	b.DiscountRate = curve.Rate(b.Gross)
	b.DiscountValue = b.Gross * b.DiscountRate
	b.AfterDiscount = b.Gross - b.DiscountValue
	b.DesignFee = designFee
	b.UrgencyK = urgencyK
	b.Subtotal = (b.AfterDiscount + b.DesignFee) * b.UrgencyK
	b.AfterUrgency = b.Subtotal
	b.Total = b.Subtotal
	return b
}

func boolFactor(on bool, factor float64) float64 {
	if on {
		return factor
	}
	return 1
}

func boolAdd(on bool, amount float64) float64 {
	if on {
		return amount
	}
	return 0
}
