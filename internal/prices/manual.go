package prices

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/tailscale/hujson"

	"printcalc/internal/pricing"
)

// ParseManual parses a hand-edited price file. Comments and trailing commas
// are tolerated, any other deviation from JSON is rejected. Every product
// present in the file must pass validation.
func ParseManual(data []byte) (*pricing.PriceTable, error) {
	const operation = "prices.ParseManual"

	standard, err := hujson.Standardize(append([]byte(nil), data...))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", operation, ErrTableMalformed, err)
	}
	table, err := pricing.ParseTable(standard)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", operation, ErrTableMalformed, err)
	}

	present := lo.Filter(pricing.Products, func(p pricing.Product, _ int) bool {
		return table.Has(p)
	})
	if len(present) == 0 {
		return nil, fmt.Errorf("%s: %w", operation, &ValidationError{
			Problems: []string{"В файле нет ни одного продукта."},
		})
	}

	problems := lo.FlatMap(present, func(p pricing.Product, _ int) []string {
		return lo.Map(pricing.Validate(table, p), func(msg string, _ int) string {
			return string(p) + ": " + msg
		})
	})
	if len(problems) > 0 {
		return nil, fmt.Errorf("%s: %w", operation, &ValidationError{Problems: problems})
	}

	return table, nil
}
