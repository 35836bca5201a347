package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/shopcapital/internal/currency"
	"github.com/mamadbah2/shopcapital/internal/ledger"
	"github.com/mamadbah2/shopcapital/internal/server/handlers"
	"github.com/mamadbah2/shopcapital/internal/service/metrics"
	"github.com/mamadbah2/shopcapital/internal/service/reporting"
)

func newEngine(t *testing.T) http.Handler {
	t.Helper()

	conv, err := currency.NewConverter(currency.USD, currency.DefaultExchangeRate)
	require.NoError(t, err)

	engine := metrics.NewEngine(nil)
	shop := handlers.NewShopHandler(ledger.New(nil, nil), engine, reporting.NewService(engine, nil), conv, time.UTC, nil)
	return New(shop, nil, nil)
}

func TestHealthz(t *testing.T) {
	w := httptest.NewRecorder()
	newEngine(t).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestShopRoutesMounted(t *testing.T) {
	w := httptest.NewRecorder()
	newEngine(t).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWebhookRoutesAbsentWithoutWhatsApp(t *testing.T) {
	w := httptest.NewRecorder()
	newEngine(t).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/webhook", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
