// Package metrics provides Prometheus instrumentation for the catalog.
//
// Collectors:
//
//	catalog_http_requests_total            counter by method/route/status
//	catalog_http_request_duration_seconds  histogram by method/route
//	catalog_metadata_lookups_total         counter by outcome
//	catalog_enrichments_total              counter by whether a lookup ran
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metadata lookup outcomes
const (
	LookupFound    = "found"
	LookupNotFound = "not_found"
	LookupError    = "error"
	LookupDisabled = "disabled"
)

// HTTPRequests counts HTTP requests by method, route template and status code.
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "catalog_http_requests_total",
	Help: "Total HTTP requests handled.",
}, []string{"method", "route", "status"})

// HTTPDuration tracks HTTP request latency.
var HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "catalog_http_request_duration_seconds",
	Help:    "HTTP request latency in seconds.",
	Buckets: prometheus.DefBuckets,
}, []string{"method", "route"})

// MetadataLookups counts metadata provider lookups by outcome.
var MetadataLookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "catalog_metadata_lookups_total",
	Help: "Metadata provider lookups by outcome.",
}, []string{"outcome"})

// Enrichments counts prepared submissions by whether the provider was consulted.
var Enrichments = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "catalog_enrichments_total",
	Help: "Prepared content submissions by whether a metadata lookup ran.",
}, []string{"lookup"})

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records request counts and latency. It must be installed with
// Router.Use so the matched route template is available.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := "unmatched"
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
