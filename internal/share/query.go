// Package share encodes orders into the short query strings used for
// shareable links and restores them back.
package share

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"printcalc/internal/pricing"
)

const (
	keySize     = "size"
	keyPrint    = "print"
	keyStock    = "stock"
	keyMaterial = "material"
	keyGSM      = "gsm"
	keyQuantity = "qty"
	keyUrgency  = "urgency"
	keyDesign   = "design"
	keyLam      = "lam"
	keyRounded  = "rnd"
	keyCreasing = "cr"
)

var truthyValues = []string{"1", "true", "yes"}

// StockKey is "material" for business cards and "stock" for paper products.
func StockKey(p pricing.Product) string {
	if p == pricing.ProductBusinessCards {
		return keyMaterial
	}
	return keyStock
}

// Values encodes o. Fields equal to the product default are left out; the
// quantity is always written.
func Values(cfg pricing.Config, o pricing.Order) url.Values {
	def := cfg.Defaults()
	q := url.Values{}

	setIfChanged := func(key, value, defValue string) {
		if value != "" && value != defValue {
			q.Set(key, value)
		}
	}
	setIfChanged(keySize, o.Size, def.Size)
	setIfChanged(keyPrint, o.Print, def.Print)
	setIfChanged(StockKey(cfg.Product()), o.Stock, def.Stock)
	setIfChanged(keyGSM, o.GSM, def.GSM)
	setIfChanged(keyUrgency, o.Urgency, def.Urgency)
	setIfChanged(keyDesign, o.Design, def.Design)

	q.Set(keyQuantity, strconv.Itoa(max(1, o.Quantity)))

	if o.Lamination {
		q.Set(keyLam, "1")
	}
	if o.RoundedCorners {
		q.Set(keyRounded, "1")
	}
	if o.CreasingLines > 0 {
		q.Set(keyCreasing, strconv.Itoa(o.CreasingLines))
	}
	return q
}

func Encode(cfg pricing.Config, o pricing.Order) string {
	return Values(cfg, o).Encode()
}

// FromValues restores an order the way a fresh form would: every missing
// field takes the product default, then the quantity is normalized.
func FromValues(cfg pricing.Config, q url.Values) (pricing.Order, pricing.Adjustment) {
	o := cfg.Defaults()

	pick := func(key, def string) string {
		if v := strings.TrimSpace(q.Get(key)); v != "" {
			return v
		}
		return def
	}
	o.Size = pick(keySize, o.Size)
	o.Print = pick(keyPrint, o.Print)
	o.Stock = pick(StockKey(cfg.Product()), o.Stock)
	o.GSM = pick(keyGSM, o.GSM)
	o.Urgency = pick(keyUrgency, o.Urgency)
	o.Design = pick(keyDesign, o.Design)

	o.Lamination = truthy(q.Get(keyLam))
	o.RoundedCorners = truthy(q.Get(keyRounded))
	if cr, err := strconv.Atoi(q.Get(keyCreasing)); err == nil && cr > 0 {
		o.CreasingLines = cr
	}

	rawQty := q.Get(keyQuantity)
	if rawQty == "" {
		rawQty = strconv.Itoa(o.Quantity)
	}
	return pricing.Normalize(cfg, o, rawQty)
}

// Decode parses a query string, with or without the leading "?".
func Decode(cfg pricing.Config, raw string) (pricing.Order, pricing.Adjustment, error) {
	const operation = "share.Decode"

	q, err := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	if err != nil {
		return pricing.Order{}, pricing.Adjustment{}, fmt.Errorf("%s: %w", operation, err)
	}
	o, adj := FromValues(cfg, q)
	return o, adj, nil
}

// Link joins a base URL, the product path and the encoded order.
func Link(baseURL string, cfg pricing.Config, o pricing.Order) string {
	return strings.TrimRight(baseURL, "/") + "/" + string(cfg.Product()) + "?" + Encode(cfg, o)
}

func truthy(v string) bool {
	return lo.Contains(truthyValues, strings.ToLower(strings.TrimSpace(v)))
}
