package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"printcalc/internal/prices"
	"printcalc/internal/pricing"
	"printcalc/internal/receipt"
	"printcalc/internal/share"
)

const maxUploadSize = 4 << 20

type Server struct {
	svc           *prices.Service
	logger        *zap.Logger
	dev           bool
	publicBaseURL string
	corsOrigins   []string
	now           func() time.Time
}

func New(svc *prices.Service, publicBaseURL string, dev bool, logger *zap.Logger) *Server {
	return &Server{
		svc:           svc,
		logger:        logger,
		dev:           dev,
		publicBaseURL: publicBaseURL,
		now:           time.Now,
	}
}

// WithCORS allows browsers on the given origins to call the API.
func (s *Server) WithCORS(origins []string) *Server {
	s.corsOrigins = origins
	return s
}

func (s *Server) Handler() http.Handler {
	if !s.dev {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), accessLog(s.logger))
	if len(s.corsOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  s.corsOrigins,
			AllowMethods:  []string{http.MethodGet, http.MethodPost},
			AllowHeaders:  []string{"Origin", "Content-Type"},
			ExposeHeaders: []string{"Content-Disposition"},
			MaxAge:        12 * time.Hour,
		}))
	}

	r.GET("/health", s.health)

	api := r.Group("/api")
	api.GET("/products", s.products)
	api.GET("/quote/:product", s.quote)
	api.GET("/quote/:product/xlsx", s.quoteXLSX)

	dev := api.Group("/prices", devOnly(s.dev))
	dev.POST("", s.uploadPrices)
	dev.POST("/reload", s.reloadPrices)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	const operation = "api.Run"

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP API listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("%s: %w", operation, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("%s: shutdown: %w", operation, err)
	}
	s.logger.Info("HTTP API stopped")
	return nil
}

type healthResponse struct {
	Status   string    `json:"status"`
	Source   string    `json:"source,omitempty"`
	Version  string    `json:"version,omitempty"`
	Updated  string    `json:"updated,omitempty"`
	LoadedAt time.Time `json:"loadedAt,omitzero"`
	Error    string    `json:"error,omitempty"`
}

func (s *Server) health(c *gin.Context) {
	catalog, err := s.svc.Holder().Current()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Error: err.Error()})
		return
	}

	meta := catalog.Table.Meta()
	resp := healthResponse{
		Status:   "ok",
		Source:   catalog.Source,
		Version:  meta.Version,
		Updated:  meta.Updated,
		LoadedAt: catalog.LoadedAt,
	}
	if lastErr := s.svc.Holder().LastError(); lastErr != nil {
		resp.Status = "stale"
		resp.Error = lastErr.Error()
	}
	c.JSON(http.StatusOK, resp)
}

type productResponse struct {
	Key      pricing.Product `json:"key"`
	Title    string          `json:"title"`
	Defaults pricing.Order   `json:"defaults"`
}

func (s *Server) products(c *gin.Context) {
	catalog, err := s.svc.Holder().Current()
	if err != nil {
		s.fail(c, err)
		return
	}

	resp := lo.FilterMap(pricing.Products, func(p pricing.Product, _ int) (productResponse, bool) {
		cfg, err := catalog.Config(p)
		if err != nil || !catalog.Table.Has(p) {
			return productResponse{}, false
		}
		return productResponse{Key: p, Title: receipt.ProductTitle(p), Defaults: cfg.Defaults()}, true
	})
	c.JSON(http.StatusOK, gin.H{"products": resp})
}

type lineResponse struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type quoteResponse struct {
	Product   pricing.Product   `json:"product"`
	Title     string            `json:"title"`
	Order     pricing.Order     `json:"order"`
	Adjusted  bool              `json:"adjusted"`
	Notice    string            `json:"notice,omitempty"`
	Breakdown pricing.Breakdown `json:"breakdown"`
	Lines     []lineResponse    `json:"lines"`
	ETA       time.Time         `json:"eta"`
	Link      string            `json:"link"`
	Query     string            `json:"query"`
}

func (s *Server) priceRequest(c *gin.Context) (prices.Quote, *prices.Catalog, bool) {
	p, ok := pricing.ParseProduct(c.Param("product"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "неизвестный продукт"})
		return prices.Quote{}, nil, false
	}

	quote, catalog, err := s.svc.Quote(p, c.Request.URL.Query())
	if err != nil {
		s.fail(c, err)
		return prices.Quote{}, nil, false
	}
	return quote, catalog, true
}

func (s *Server) quote(c *gin.Context) {
	quote, catalog, ok := s.priceRequest(c)
	if !ok {
		return
	}

	cfg, _ := catalog.Config(quote.Order.Product)
	lines := lo.Map(receipt.PriceLines(quote.Breakdown), func(l receipt.Line, _ int) lineResponse {
		return lineResponse{Label: l.Label, Value: l.Value}
	})

	c.JSON(http.StatusOK, quoteResponse{
		Product:   quote.Order.Product,
		Title:     receipt.ProductTitle(quote.Order.Product),
		Order:     quote.Order,
		Adjusted:  quote.Adjustment.Adjusted,
		Notice:    quote.Adjustment.Message,
		Breakdown: quote.Breakdown,
		Lines:     lines,
		ETA:       pricing.ETA(quote.Order.Urgency, s.now()),
		Link:      share.Link(s.publicBaseURL, cfg, quote.Order),
		Query:     share.Encode(cfg, quote.Order),
	})
}

func (s *Server) quoteXLSX(c *gin.Context) {
	quote, catalog, ok := s.priceRequest(c)
	if !ok {
		return
	}

	cfg, _ := catalog.Config(quote.Order.Product)
	now := s.now()
	r := receipt.Receipt{
		Order:        quote.Order,
		Breakdown:    quote.Breakdown,
		ETA:          pricing.ETA(quote.Order.Urgency, now),
		Link:         share.Link(s.publicBaseURL, cfg, quote.Order),
		PriceVersion: catalog.Table.Meta().Version,
		CreatedAt:    now,
	}

	data, err := receipt.Bytes(r)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, receipt.FileName(r)))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func (s *Server) uploadPrices(c *gin.Context) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxUploadSize))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	catalog, err := s.svc.Upload(c.Request.Context(), data, "api:"+c.ClientIP())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"source": catalog.Source, "version": catalog.Table.Meta().Version})
}

func (s *Server) reloadPrices(c *gin.Context) {
	catalog, err := s.svc.Reload(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"source": catalog.Source, "version": catalog.Table.Meta().Version})
}

// fail maps domain errors to responses with a human-readable hint.
func (s *Server) fail(c *gin.Context, err error) {
	_ = c.Error(err)

	var verr *prices.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Файл цен не прошёл проверку.", "problems": verr.Problems})
	case errors.Is(err, prices.ErrTableMalformed):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Файл цен повреждён: проверьте JSON."})
	case errors.Is(err, prices.ErrTableUnavailable), errors.Is(err, pricing.ErrPricesNotLoaded):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Цены не загружены. Повторите попытку позже."})
	case errors.Is(err, pricing.ErrUnknownProduct):
		c.JSON(http.StatusNotFound, gin.H{"error": "неизвестный продукт"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "внутренняя ошибка"})
	}
}
