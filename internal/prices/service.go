package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"printcalc/internal/pricing"
	"printcalc/internal/storage"
)

// Service acquires price tables and publishes them to a Holder.
type Service struct {
	source Source
	store  TableStore
	holder *Holder
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a source to a holder. store may be nil, in which case
// uploaded tables are not versioned.
func NewService(source Source, store TableStore, holder *Holder, logger *zap.Logger) *Service {
	return &Service{
		source: source,
		store:  store,
		holder: holder,
		logger: logger,
		now:    time.Now,
	}
}

func (s *Service) Holder() *Holder {
	return s.holder
}

// Reload acquires the table from the configured source. On failure the
// previous catalog, if any, stays in use.
func (s *Service) Reload(ctx context.Context) (*Catalog, error) {
	const operation = "prices.Reload"

	start := s.now()
	table, err := s.source.Load(ctx)
	if err != nil {
		s.holder.Fail(err)
		s.logger.Error("Failed to load price table",
			zap.String("source", s.source.Name()),
			zap.Error(err))
		return nil, fmt.Errorf("%s: %w", operation, err)
	}

	catalog := NewCatalog(table, s.source.Name(), s.now())
	s.holder.Set(catalog)

	meta := table.Meta()
	s.logger.Info("Price table loaded",
		zap.String("source", catalog.Source),
		zap.String("version", meta.Version),
		zap.String("updated", meta.Updated),
		zap.Duration("took", catalog.LoadedAt.Sub(start)))
	return catalog, nil
}

// Upload installs a manually supplied file. Malformed files are rejected and
// leave the current catalog untouched.
func (s *Service) Upload(ctx context.Context, data []byte, author string) (*Catalog, error) {
	const operation = "prices.Upload"

	table, err := ParseManual(data)
	if err != nil {
		s.logger.Warn("Rejected price file", zap.String("author", author), zap.Error(err))
		return nil, fmt.Errorf("%s: %w", operation, err)
	}

	source := "upload"
	if s.store != nil {
		body, err := json.Marshal(table)
		if err != nil {
			return nil, fmt.Errorf("%s: marshal table: %w", operation, err)
		}
		version, err := s.store.SavePriceTable(ctx, body, source, author)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", operation, err)
		}
		source = fmt.Sprintf("upload v%d", version)
	}

	catalog := NewCatalog(table, source, s.now())
	s.holder.Set(catalog)

	s.logger.Info("Price table uploaded",
		zap.String("author", author),
		zap.String("source", source),
		zap.String("version", table.Meta().Version))
	return catalog, nil
}

// Quote prices an order against the current catalog.
func (s *Service) Quote(p pricing.Product, q url.Values) (Quote, *Catalog, error) {
	catalog, err := s.holder.Current()
	if err != nil {
		return Quote{}, nil, err
	}
	quote, err := catalog.Quote(p, q)
	return quote, catalog, err
}

// TableHistory is implemented by stores that can list their versions.
type TableHistory interface {
	PriceTableHistory(ctx context.Context, limit int) ([]storage.PriceTableRecord, error)
}

// History lists the latest stored versions. Without a versioning store it
// returns nothing.
func (s *Service) History(ctx context.Context, limit int) ([]storage.PriceTableRecord, error) {
	h, ok := s.store.(TableHistory)
	if !ok {
		return nil, nil
	}
	records, err := h.PriceTableHistory(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("prices.History: %w", err)
	}
	return records, nil
}
