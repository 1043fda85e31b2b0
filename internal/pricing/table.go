package pricing

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cast"
)

type Product string

const (
	ProductFlyers        Product = "flyers"
	ProductLeaflets      Product = "leaflets"
	ProductBusinessCards Product = "business-cards"
)

// Products lists the product lines the engine knows how to price.
var Products = []Product{ProductLeaflets, ProductBusinessCards, ProductFlyers}

func ParseProduct(s string) (Product, bool) {
	for _, p := range Products {
		if string(p) == s {
			return p, true
		}
	}
	return "", false
}

// PriceTable is the loaded price document. It is never mutated after Parse.
type PriceTable struct {
	doc map[string]any
}

type Meta struct {
	Updated string
	Version string
}

func ParseTable(data []byte) (*PriceTable, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("pricing.ParseTable: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("pricing.ParseTable: document is not an object")
	}
	return &PriceTable{doc: doc}, nil
}

func (t *PriceTable) Meta() Meta {
	if t == nil {
		return Meta{}
	}
	m := section(t.doc, "meta")
	return Meta{
		Updated: cast.ToString(m["updated"]),
		Version: cast.ToString(m["version"]),
	}
}

// MarshalJSON returns the document as loaded, for dev inspection and storage.
func (t *PriceTable) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("null"), nil
	}
	return json.Marshal(t.doc)
}

func (t *PriceTable) shared() map[string]any {
	return section(t.doc, "shared")
}

func (t *PriceTable) product(key Product) (map[string]any, bool) {
	products := section(t.doc, "products")
	raw, ok := products[string(key)]
	if !ok {
		return nil, false
	}
	m, err := cast.ToStringMapE(raw)
	if err != nil {
		return nil, false
	}
	return m, true
}

// Has reports whether the document carries pricing for p, either as a product
// section or, for flyers, as the flat legacy layout.
func (t *PriceTable) Has(p Product) bool {
	if t == nil {
		return false
	}
	if _, ok := t.product(p); ok {
		return true
	}
	return p == ProductFlyers && t.isFlatLegacy()
}

// isFlatLegacy reports whether the document is the single-product legacy
// layout with pricing fields at the root.
func (t *PriceTable) isFlatLegacy() bool {
	_, ok := t.doc["basePerItem_A6"]
	return ok
}

// lenient accessors over the decoded JSON document

func section(m map[string]any, key string) map[string]any {
	v, ok := m[key]
	if !ok || v == nil {
		return map[string]any{}
	}
	s, err := cast.ToStringMapE(v)
	if err != nil {
		return map[string]any{}
	}
	return s
}

func has(m map[string]any, key string) bool {
	v, ok := m[key]
	return ok && v != nil
}

// number reads a non-negative numeric leaf, falling back to def when the leaf
// is missing, malformed or negative.
func number(m map[string]any, key string, def float64) float64 {
	v, ok := m[key]
	if !ok || v == nil {
		return def
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || f < 0 {
		return def
	}
	return f
}

func numberMap(m map[string]any, key string) map[string]float64 {
	src := section(m, key)
	out := make(map[string]float64, len(src))
	for k := range src {
		if f := number(src, k, -1); f >= 0 {
			out[k] = f
		}
	}
	return out
}

func numberMatrix(m map[string]any, key string) map[string]map[string]float64 {
	src := section(m, key)
	out := make(map[string]map[string]float64, len(src))
	for k := range src {
		out[k] = numberMap(src, k)
	}
	return out
}

func lookup(m map[string]float64, key string, def float64) float64 {
	if v, ok := m[key]; ok {
		return v
	}
	return def
}
