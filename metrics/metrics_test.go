package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware_RecordsRouteTemplate(t *testing.T) {
	router := mux.NewRouter()
	router.Use(Middleware)
	router.HandleFunc("/movie/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods("GET")

	before := testutil.ToFloat64(HTTPRequests.WithLabelValues("GET", "/movie/{id}", "404"))

	req := httptest.NewRequest("GET", "/movie/abc", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	after := testutil.ToFloat64(HTTPRequests.WithLabelValues("GET", "/movie/{id}", "404"))
	assert.Equal(t, before+1, after)
}

func TestHandler_ExposesCollectors(t *testing.T) {
	MetadataLookups.WithLabelValues(LookupFound).Inc()

	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "catalog_metadata_lookups_total")
}
