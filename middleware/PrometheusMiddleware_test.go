package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/research-marketplace/account-deletion-service/metrics"
	"github.com/stretchr/testify/assert"
)

func TestPrometheusMiddlewareLabelsByRouteTemplate(t *testing.T) {
	r := mux.NewRouter()
	r.HandleFunc("/api/v1/users/{userId}/deletion", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}).Methods(http.MethodPost)
	r.Use(PrometheusMiddleware)

	counter := metrics.TotalRequests.WithLabelValues("/api/v1/users/{userId}/deletion", "202", http.MethodPost)
	before := testutil.ToFloat64(counter)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/users/u1/deletion", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/users/u2/deletion", nil))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, before+2, testutil.ToFloat64(counter))
}
