package prom_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/adapter/metrics/prom"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/usecase/rentaluc"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ rentaluc.Metrics = (*prom.Metrics)(nil)

func TestCounters(t *testing.T) {
	m := prom.New()
	m.RentalCreated()
	m.RentalCreated()
	m.RentalConflicted()
	m.RentalReturned()
	m.RentalCancelled()
	m.ProjectionFailed("append")

	n, err := testutil.GatherAndCount(m.Registry(),
		"rental_created_total",
		"rental_conflicts_total",
		"rental_returned_total",
		"rental_cancelled_total",
		"rental_history_projection_failures_total",
	)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	body := scrape(t, m)
	for _, line := range []string{
		"rental_created_total 2",
		"rental_conflicts_total 1",
		"rental_returned_total 1",
		"rental_cancelled_total 1",
		`rental_history_projection_failures_total{op="append"} 1`,
	} {
		assert.Contains(t, body, line)
	}
}

func scrape(t *testing.T, m *prom.Metrics) string {
	t.Helper()
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestHandlerExposesRequests(t *testing.T) {
	m := prom.New()
	m.RentalCreated()
	m.ObserveRequest(http.MethodGet, "/api/car/:id", 200, 15*time.Millisecond)

	body := scrape(t, m)
	assert.Contains(t, body, "rental_created_total 1")
	assert.Contains(t, body,
		`http_request_duration_seconds_count{method="GET",route="/api/car/:id",status="200"} 1`,
	)
}
