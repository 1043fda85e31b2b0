package pricing

import (
	"math"
	"sort"
	"strconv"
)

// AmountCurve is a three-segment piecewise linear discount over the gross
// amount of an order.
type AmountCurve struct {
	StartAmount float64 `json:"startAmount"`
	StartRate   float64 `json:"startRate"`
	MidAmount   float64 `json:"midAmount"`
	MidRate     float64 `json:"midRate"`
	CapAmount   float64 `json:"capAmount"`
	CapRate     float64 `json:"capRate"`
}

func DefaultAmountCurve() AmountCurve {
	return AmountCurve{
		StartAmount: 1500,
		StartRate:   0.05,
		MidAmount:   4000,
		MidRate:     0.15,
		CapAmount:   20000,
		CapRate:     0.30,
	}
}

func decodeAmountCurve(m map[string]any) AmountCurve {
	d := section(m, "discountByAmount")
	def := DefaultAmountCurve()
	return AmountCurve{
		StartAmount: number(d, "startAmount", def.StartAmount),
		StartRate:   number(d, "startRate", def.StartRate),
		MidAmount:   number(d, "midAmount", def.MidAmount),
		MidRate:     number(d, "midRate", def.MidRate),
		CapAmount:   number(d, "capAmount", def.CapAmount),
		CapRate:     number(d, "capRate", def.CapRate),
	}
}

// Rate returns the discount rate for a gross amount, within [0, CapRate].
func (c AmountCurve) Rate(amount float64) float64 {
	var r float64
	switch {
	case amount >= c.CapAmount:
		return c.CapRate
	case amount < c.StartAmount:
		return 0
	case amount <= c.MidAmount:
		t := (amount - c.StartAmount) / math.Max(1, c.MidAmount-c.StartAmount)
		r = c.StartRate + t*(c.MidRate-c.StartRate)
	default:
		t := (amount - c.MidAmount) / math.Max(1, c.CapAmount-c.MidAmount)
		r = c.MidRate + t*(c.CapRate-c.MidRate)
	}
	return math.Min(math.Max(r, 0), c.CapRate)
}

type QuantityStep struct {
	MinQuantity int     `json:"minQty"`
	Rate        float64 `json:"rate"`
}

// QuantitySteps is a discrete discount table indexed by quantity.
type QuantitySteps []QuantityStep

func DefaultQuantitySteps() QuantitySteps {
	return QuantitySteps{
		{MinQuantity: 1000, Rate: 0.15},
		{MinQuantity: 700, Rate: 0.12},
		{MinQuantity: 500, Rate: 0.10},
		{MinQuantity: 300, Rate: 0.07},
		{MinQuantity: 200, Rate: 0.05},
		{MinQuantity: 100, Rate: 0.03},
	}
}

// decodeQuantitySteps reads an optional "discountByQty" object of
// threshold -> rate pairs.
func decodeQuantitySteps(m map[string]any) QuantitySteps {
	src := numberMap(m, "discountByQty")
	if len(src) == 0 {
		return DefaultQuantitySteps()
	}
	steps := make(QuantitySteps, 0, len(src))
	for k, rate := range src {
		minQty, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		steps = append(steps, QuantityStep{MinQuantity: minQty, Rate: rate})
	}
	sort.Slice(steps, func(i, j int) bool { return steps[i].MinQuantity > steps[j].MinQuantity })
	return steps
}

// Rate returns the rate of the highest threshold not above qty.
func (s QuantitySteps) Rate(qty int) float64 {
	best, bestMin := 0.0, -1
	for _, step := range s {
		if qty >= step.MinQuantity && step.MinQuantity > bestMin {
			best, bestMin = step.Rate, step.MinQuantity
		}
	}
	return best
}
