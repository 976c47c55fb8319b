package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveImport(t *testing.T) {
	m := New()
	m.ObserveImport(2, 1)
	m.ObserveImport(3, 0)

	assert.Equal(t, 5.0, testutil.ToFloat64(m.importRows.WithLabelValues("imported")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.importRows.WithLabelValues("skipped")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.importRuns))
}

func TestRequestStarted(t *testing.T) {
	m := New()
	done := m.RequestStarted()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpInFlight))
	done("GET", "/assets", 200)

	assert.Equal(t, 0.0, testutil.ToFloat64(m.httpInFlight))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/assets", "200")))
}

func TestHandler_ExposesCollectors(t *testing.T) {
	m := New()
	m.AssetMutation("create")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `patrimonio_asset_mutations_total{op="create"} 1`)
}
