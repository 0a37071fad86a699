package mid_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/ardanlabs/ledger/business/sys/metrics"
	"github.com/ardanlabs/ledger/business/web/errs"
	"github.com/ardanlabs/ledger/business/web/mid"
	"github.com/ardanlabs/ledger/foundation/logger"
	"github.com/ardanlabs/ledger/foundation/web"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(m *metrics.Metrics) *web.App {
	log := logger.NewTest("TEST")
	shutdown := make(chan os.Signal, 1)

	return web.NewApp(
		shutdown,
		mid.Logger(log),
		mid.Errors(log),
		mid.Metrics(m),
		mid.Cors("http://viewer.local"),
		mid.Panics(m),
	)
}

func TestMiddleware(t *testing.T) {
	m := metrics.New()
	app := newApp(m)

	app.Handle(http.MethodGet, "v1", "/ok", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return web.Respond(ctx, w, map[string]string{"note": "ok"}, http.StatusOK)
	})
	app.Handle(http.MethodGet, "v1", "/conflict", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return errs.NewTrusted(errors.New("rejected"), http.StatusConflict)
	})
	app.Handle(http.MethodGet, "v1", "/panic", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		panic("boom")
	})

	r := httptest.NewRequest(http.MethodGet, "/v1/ok", nil)
	r.Header.Set("Origin", "http://viewer.local")
	w := httptest.NewRecorder()
	app.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://viewer.local", w.Header().Get("Access-Control-Allow-Origin"))

	r = httptest.NewRequest(http.MethodGet, "/v1/conflict", nil)
	w = httptest.NewRecorder()
	app.ServeHTTP(w, r)

	require.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"error":"rejected"}`, w.Body.String())
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	r = httptest.NewRequest(http.MethodGet, "/v1/panic", nil)
	w = httptest.NewRecorder()
	app.ServeHTTP(w, r)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Panics))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Requests))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Errors))
}
