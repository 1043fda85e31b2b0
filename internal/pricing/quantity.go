package pricing

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// maxQuantityDigits matches the input limit of the quantity field.
const maxQuantityDigits = 10

// QuantityRule is the minimum and pack size for one material or product
// variant. Fallback is used when the raw input is not a number.
type QuantityRule struct {
	Min      int `json:"min"`
	Step     int `json:"step"`
	Fallback int `json:"fallback"`
}

// Adjustment is the result of normalizing a raw quantity.
type Adjustment struct {
	Quantity int
	Adjusted bool
	Message  string
}

func (r QuantityRule) normalized() QuantityRule {
	if r.Min < 1 {
		r.Min = 1
	}
	if r.Step < 1 {
		r.Step = 1
	}
	if r.Fallback < 1 {
		r.Fallback = r.Min
	}
	return r
}

// round lifts n to the minimum and then up to a whole number of packs.
func (r QuantityRule) round(n int) int {
	if n < r.Min {
		n = r.Min
	}
	if r.Step <= 1 {
		return n
	}
	packs := int(math.Ceil(float64(n) / float64(r.Step)))
	return packs * r.Step
}

func (r QuantityRule) stepText(prefix string) string {
	if r.Step > 1 {
		return fmt.Sprintf(", %s %d", prefix, r.Step)
	}
	return ""
}

// NormalizeQuantity turns raw user input into a billable quantity.
func NormalizeQuantity(raw string, rule QuantityRule) Adjustment {
	rule = rule.normalized()

	n, ok := parseQuantity(raw)
	if !ok {
		q := rule.round(rule.Fallback)
		return Adjustment{
			Quantity: q,
			Adjusted: true,
			Message: fmt.Sprintf("Некорректное значение, расчёт выполнен как %d шт (минимум %d%s).",
				q, rule.Min, rule.stepText("кратно")),
		}
	}

	if n < rule.Min || (rule.Step > 1 && n%rule.Step != 0) {
		q := rule.round(n)
		return Adjustment{
			Quantity: q,
			Adjusted: true,
			Message: fmt.Sprintf("Тираж скорректирован для расчёта до %d шт (минимум %d%s).",
				q, rule.Min, rule.stepText("шаг")),
		}
	}

	var hint string
	if rule.Step > 1 {
		hint = fmt.Sprintf("Кратно %d.", rule.Step)
	}
	return Adjustment{Quantity: n, Message: hint}
}

// parseQuantity keeps digits and minus signs and reads the leading integer,
// the way a browser's parseInt would after the same cleanup.
func parseQuantity(raw string) (int, bool) {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return -1
	}, raw)

	start := 0
	if strings.HasPrefix(cleaned, "-") {
		start = 1
	}
	end := start
	for end < len(cleaned) && end-start < maxQuantityDigits && cleaned[end] >= '0' && cleaned[end] <= '9' {
		end++
	}

	n, err := strconv.Atoi(cleaned[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Normalize applies material restrictions and the quantity rule to an order.
// rawQty is the quantity as typed or as restored from a link.
func Normalize(cfg Config, o Order, rawQty string) (Order, Adjustment) {
	o.Product = cfg.Product()
	o = applyMaterialRules(o)
	adj := NormalizeQuantity(rawQty, cfg.QuantityRule(o))
	o.Quantity = adj.Quantity
	return o, adj
}

func decodeQuantityRules(m map[string]any, defaults map[string]QuantityRule) map[string]QuantityRule {
	out := make(map[string]QuantityRule, len(defaults))
	for k, v := range defaults {
		out[k] = v
	}
	src := section(m, "quantityRules")
	for k := range src {
		r := section(src, k)
		base := out[k]
		out[k] = QuantityRule{
			Min:      int(number(r, "min", float64(base.Min))),
			Step:     int(number(r, "step", float64(base.Step))),
			Fallback: int(number(r, "fallback", float64(base.Fallback))),
		}.normalized()
	}
	return out
}
