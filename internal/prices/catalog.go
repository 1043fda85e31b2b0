package prices

import (
	"fmt"
	"net/url"
	"sync"
	"time"

	"printcalc/internal/pricing"
	"printcalc/internal/share"
)

// Catalog is an immutable snapshot of one loaded price table together with
// the effective config of every product.
type Catalog struct {
	Table    *pricing.PriceTable
	Source   string
	LoadedAt time.Time

	configs map[pricing.Product]pricing.Config
}

func NewCatalog(table *pricing.PriceTable, source string, loadedAt time.Time) *Catalog {
	configs := make(map[pricing.Product]pricing.Config, len(pricing.Products))
	for _, p := range pricing.Products {
		configs[p] = pricing.Resolve(table, p)
	}
	return &Catalog{
		Table:    table,
		Source:   source,
		LoadedAt: loadedAt,
		configs:  configs,
	}
}

// Config returns the effective config of a known product.
func (c *Catalog) Config(p pricing.Product) (pricing.Config, error) {
	cfg, ok := c.configs[p]
	if !ok || cfg == nil {
		return nil, fmt.Errorf("prices.Config: %q: %w", p, pricing.ErrUnknownProduct)
	}
	return cfg, nil
}

// Holder keeps the current catalog. Readers take a snapshot per request;
// a reload replaces it wholesale.
type Holder struct {
	mu      sync.RWMutex
	current *Catalog
	lastErr error
}

func NewHolder() *Holder {
	return &Holder{}
}

// Current returns the catalog in use. Without one, the error explains why
// the calculator is blocked.
func (h *Holder) Current() (*Catalog, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.current != nil {
		return h.current, nil
	}
	if h.lastErr != nil {
		return nil, h.lastErr
	}
	return nil, pricing.ErrPricesNotLoaded
}

func (h *Holder) Set(c *Catalog) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.current = c
	h.lastErr = nil
}

// Fail records a failed acquisition. A previously loaded catalog stays in use.
func (h *Holder) Fail(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastErr = err
}

// LastError returns the error of the latest failed acquisition, if any.
func (h *Holder) LastError() error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.lastErr
}

// Quote is a priced order ready for rendering.
type Quote struct {
	Order      pricing.Order
	Adjustment pricing.Adjustment
	Breakdown  pricing.Breakdown
}

// Quote restores an order from share query values, normalizes and prices it.
func (c *Catalog) Quote(p pricing.Product, q url.Values) (Quote, error) {
	cfg, err := c.Config(p)
	if err != nil {
		return Quote{}, err
	}
	o, adj := share.FromValues(cfg, q)
	b, err := pricing.Compute(cfg, o)
	if err != nil {
		return Quote{}, err
	}
	return Quote{Order: o, Adjustment: adj, Breakdown: b}, nil
}
