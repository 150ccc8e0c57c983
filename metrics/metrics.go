// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce sync.Once

	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "voting_http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voting_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "voting_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// BallotsCast counts ballots by outcome ("recorded", "already_voted")
	BallotsCast = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voting_ballots_cast_total",
			Help: "Ballots submitted, by outcome.",
		},
		[]string{"outcome"},
	)

	// VerifierResults counts identity verifier calls by result
	VerifierResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voting_verifier_results_total",
			Help: "Identity verifier outcomes.",
		},
		[]string{"result"},
	)

	// AccessAttempts counts code logins by resolved tier ("none" on failure)
	AccessAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voting_access_attempts_total",
			Help: "Access code logins, by resolved tier.",
		},
		[]string{"tier"},
	)

	// RateLimited counts requests rejected by the login throttle
	RateLimited = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "voting_rate_limited_total",
		Help: "Requests rejected by the rate limiter.",
	})
)

// Init registers every collector with the default registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpInFlight,
			httpRequestsTotal,
			httpRequestDuration,
			BallotsCast,
			VerifierResults,
			AccessAttempts,
			RateLimited,
		)
	})
}

// Handler serves the Prometheus exposition format
func Handler() http.Handler {
	return promhttp.Handler()
}

// Instrument records count, latency and in-flight requests for one route.
// route is the registered pattern, so path parameters do not explode label cardinality.
func Instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)

		status := strconv.Itoa(sw.code)
		httpRequestDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
		httpRequestsTotal.WithLabelValues(r.Method, route, status).Inc()
	})
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
