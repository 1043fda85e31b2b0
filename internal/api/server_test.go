package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"printcalc/internal/prices"
	"printcalc/internal/pricing"
)

type staticSource struct {
	data []byte
}

func (s staticSource) Name() string { return "static" }

func (s staticSource) Load(context.Context) (*pricing.PriceTable, error) {
	return pricing.ParseTable(s.data)
}

func newServer(t *testing.T, dev, loaded bool) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	data, err := os.ReadFile("../pricing/testdata/prices.json")
	require.NoError(t, err)

	svc := prices.NewService(staticSource{data: data}, nil, prices.NewHolder(), zap.NewNop())
	if loaded {
		_, err := svc.Reload(context.Background())
		require.NoError(t, err)
	}

	s := New(svc, "https://calc.example", dev, zap.NewNop())
	s.now = func() time.Time { return time.Date(2025, time.October, 10, 12, 0, 0, 0, time.UTC) }
	return s
}

func do(s *Server, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := do(newServer(t, false, false), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = do(newServer(t, false, true), http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp healthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "static", resp.Source)
	assert.Equal(t, "3", resp.Version)
}

func TestProducts(t *testing.T) {
	w := do(newServer(t, false, true), http.MethodGet, "/api/products", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Products []productResponse `json:"products"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Products, 3)
	assert.Equal(t, pricing.ProductLeaflets, resp.Products[0].Key)
	assert.Equal(t, "Листовки", resp.Products[0].Title)
	assert.Equal(t, 100, resp.Products[0].Defaults.Quantity)
}

func TestQuote(t *testing.T) {
	s := newServer(t, false, true)

	t.Run("normalized quantity", func(t *testing.T) {
		w := do(s, http.MethodGet, "/api/quote/business-cards?material=plastic&qty=1&lam=1", "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp quoteResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 30, resp.Order.Quantity)
		assert.False(t, resp.Order.Lamination)
		assert.True(t, resp.Adjusted)
		assert.NotEmpty(t, resp.Notice)
		assert.Equal(t, "material=plastic&qty=30", resp.Query)
		assert.Equal(t, "https://calc.example/business-cards?material=plastic&qty=30", resp.Link)
		assert.Equal(t, time.Date(2025, time.October, 13, 12, 0, 0, 0, time.UTC), resp.ETA)
		assert.NotEmpty(t, resp.Lines)
	})

	t.Run("legacy flyers", func(t *testing.T) {
		w := do(s, http.MethodGet, "/api/quote/flyers?qty=100", "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp quoteResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.InDelta(t, 1164, resp.Breakdown.Total, 1e-9)
	})

	t.Run("unknown product", func(t *testing.T) {
		w := do(s, http.MethodGet, "/api/quote/posters", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("prices not loaded", func(t *testing.T) {
		w := do(newServer(t, false, false), http.MethodGet, "/api/quote/leaflets", "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("xlsx", func(t *testing.T) {
		w := do(s, http.MethodGet, "/api/quote/leaflets/xlsx?size=A5", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Disposition"), "leaflets_100_")
		assert.NotZero(t, w.Body.Len())
	})
}

func TestUploadPrices(t *testing.T) {
	t.Run("hidden outside dev", func(t *testing.T) {
		w := do(newServer(t, false, true), http.MethodPost, "/api/prices", "{}")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("rejects incomplete file", func(t *testing.T) {
		w := do(newServer(t, true, false), http.MethodPost, "/api/prices", `{"products": {"leaflets": {}}}`)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "problems")
	})

	t.Run("accepts commented file", func(t *testing.T) {
		s := newServer(t, true, false)
		body := `{
			// dev prices
			"meta": {"version": "dev-1"},
			"products": {"flyers": {"basePerItem_A6": 12, "sizeK": {}, "printK": {}, "urgencyK": {},}},
		}`
		w := do(s, http.MethodPost, "/api/prices", body)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "dev-1")

		w = do(s, http.MethodGet, "/api/quote/flyers?qty=50", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestCORS(t *testing.T) {
	s := newServer(t, false, true).WithCORS([]string{"https://shop.example"})

	req := httptest.NewRequest(http.MethodOptions, "/api/quote/leaflets", nil)
	req.Header.Set("Origin", "https://shop.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://shop.example", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
