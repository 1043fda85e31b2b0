package bot

import (
	"net/url"
	"strings"

	"printcalc/internal/pricing"
	"printcalc/internal/share"
)

// keyAliases maps what users type in /set to share query keys.
var keyAliases = map[string]string{
	"size":      "size",
	"формат":    "size",
	"print":     "print",
	"печать":    "print",
	"stock":     "stock",
	"material":  "stock",
	"бумага":    "stock",
	"материал":  "stock",
	"gsm":       "gsm",
	"плотность": "gsm",
	"qty":       "qty",
	"quantity":  "qty",
	"тираж":     "qty",
	"urgency":   "urgency",
	"срочность": "urgency",
	"design":    "design",
	"дизайн":    "design",
	"lam":       "lam",
	"ламинация": "lam",
	"rnd":       "rnd",
	"углы":      "rnd",
	"cr":        "cr",
	"биговка":   "cr",
}

var falseValues = map[string]bool{"0": true, "no": true, "off": true, "false": true, "нет": true}

// parseAssignments reads "key=value" pairs of a /set command. It returns the
// query updates and the pairs it could not understand.
func parseAssignments(p pricing.Product, args string) (url.Values, []string) {
	updates := url.Values{}
	var invalid []string

	for _, field := range strings.Fields(args) {
		key, value, ok := strings.Cut(field, "=")
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		canonical, known := keyAliases[key]
		if !ok || !known || value == "" {
			invalid = append(invalid, field)
			continue
		}
		if canonical == "stock" {
			canonical = share.StockKey(p)
		}
		if (canonical == "lam" || canonical == "rnd") && falseValues[strings.ToLower(value)] {
			value = ""
		}
		updates[canonical] = []string{value}
	}
	return updates, invalid
}

// apply merges updates into q. Empty values remove the key.
func apply(q url.Values, updates url.Values) url.Values {
	out := url.Values{}
	for k, v := range q {
		out[k] = append([]string(nil), v...)
	}
	for k, v := range updates {
		if len(v) == 0 || v[0] == "" {
			out.Del(k)
			continue
		}
		out.Set(k, v[0])
	}
	return out
}
