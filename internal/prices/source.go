package prices

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"printcalc/internal/pricing"
	"printcalc/internal/storage"
)

const maxTableSize = 4 << 20

// Source acquires the raw price table.
type Source interface {
	Name() string
	Load(ctx context.Context) (*pricing.PriceTable, error)
}

// HTTPSource fetches prices.json (prices.dev.json in dev mode) next to the
// calculator pages, bypassing caches.
type HTTPSource struct {
	baseURL    string
	dev        bool
	httpClient *http.Client
	logger     *zap.Logger
	maxElapsed time.Duration
}

func NewHTTPSource(baseURL string, dev bool, timeout time.Duration, logger *zap.Logger) *HTTPSource {
	return &HTTPSource{
		baseURL:    strings.TrimRight(baseURL, "/"),
		dev:        dev,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		maxElapsed: time.Minute,
	}
}

func (s *HTTPSource) Name() string { return "http" }

func (s *HTTPSource) URL() string {
	if s.dev {
		return s.baseURL + "/prices.dev.json"
	}
	return s.baseURL + "/prices.json"
}

func (s *HTTPSource) Load(ctx context.Context) (*pricing.PriceTable, error) {
	const operation = "prices.FetchHTTP"

	retryPolicy := backoff.NewExponentialBackOff()
	retryPolicy.MaxElapsedTime = s.maxElapsed
	retryPolicy.MaxInterval = 10 * time.Second

	var table *pricing.PriceTable
	err := backoff.RetryNotify(
		func() error {
			var err error
			table, err = s.fetch(ctx)
			return err
		},
		backoff.WithContext(retryPolicy, ctx),
		func(err error, next time.Duration) {
			s.logger.Warn("Price table fetch failed, retrying...",
				zap.String("url", s.URL()),
				zap.Error(err),
				zap.Duration("next_attempt_in", next))
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", operation, ErrTableUnavailable, err)
	}
	return table, nil
}

func (s *HTTPSource) fetch(ctx context.Context) (*pricing.PriceTable, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL(), nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, backoff.Permanent(fmt.Errorf("unexpected status: %d", resp.StatusCode))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxTableSize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	table, err := pricing.ParseTable(data)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("decode response: %w", err))
	}
	return table, nil
}

// FileSource reads a manually maintained price file from disk.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Name() string { return "file" }

func (s *FileSource) Load(ctx context.Context) (*pricing.PriceTable, error) {
	const operation = "prices.LoadFile"

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", operation, ErrTableUnavailable, err)
	}
	table, err := ParseManual(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", operation, s.path, err)
	}
	return table, nil
}

// TableStore is the versioned storage of price tables.
type TableStore interface {
	LatestPriceTable(ctx context.Context) (storage.PriceTableRecord, error)
	SavePriceTable(ctx context.Context, body json.RawMessage, source, author string) (int64, error)
}

// StoreSource loads the newest stored version.
type StoreSource struct {
	store TableStore
}

func NewStoreSource(store TableStore) *StoreSource {
	return &StoreSource{store: store}
}

func (s *StoreSource) Name() string { return "postgres" }

func (s *StoreSource) Load(ctx context.Context) (*pricing.PriceTable, error) {
	const operation = "prices.LoadStore"

	rec, err := s.store.LatestPriceTable(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w: no stored versions", operation, ErrTableUnavailable)
		}
		return nil, fmt.Errorf("%s: %w: %v", operation, ErrTableUnavailable, err)
	}

	table, err := pricing.ParseTable(rec.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: version %d: %w: %v", operation, rec.Version, ErrTableUnavailable, err)
	}
	return table, nil
}
