// Copyright (c) 2026 Hunt360. All rights reserved.
// Author: dev@hunt360.app

// Package metrics provides Prometheus collection and exposition for the API.
//
// # Architecture
//
// A single [Collector] is created at startup and injected where counters are
// recorded (the auth orchestrator and the HTTP chain). The /metrics endpoint
// is served from the same registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// # Label Values

// Flow labels for auth-attempt counters.
const (
	FlowSignup = "signup"
	FlowLogin  = "login"
	FlowReset  = "reset"
)

// Outcome labels for auth-attempt counters.
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeRejected = "rejected"
	OutcomeLocked   = "locked"
)

// Recorder is the interface consumed by the auth orchestrator.
//
// Keeping it minimal lets tests pass a no-op implementation.
type Recorder interface {
	RecordAuthAttempt(flow, outcome string)
	RecordOTPIssued(purpose string)
}

// Collector gathers Prometheus metrics for the authentication service.
type Collector struct {
	registry     *prometheus.Registry
	authAttempts *prometheus.CounterVec
	otpIssued    *prometheus.CounterVec
	httpStatus   *prometheus.CounterVec
	httpLatency  prometheus.Histogram
}

// NewCollector creates a Collector with its own registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		authAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hunt360_auth_attempts_total",
			Help: "Authentication attempts by flow (signup, login, forgot, reset) and outcome.",
		}, []string{"flow", "outcome"}),
		otpIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hunt360_otp_issued_total",
			Help: "One-time codes issued by purpose.",
		}, []string{"purpose"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hunt360_http_responses_total",
			Help: "HTTP responses by status code.",
		}, []string{"status_code"}),
		httpLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "hunt360_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	c.registry.MustRegister(
		c.authAttempts,
		c.otpIssued,
		c.httpStatus,
		c.httpLatency,
	)

	return c
}

// RecordAuthAttempt counts one orchestrator-level authentication attempt.
func (c *Collector) RecordAuthAttempt(flow, outcome string) {
	c.authAttempts.WithLabelValues(flow, outcome).Inc()
}

// RecordOTPIssued counts one issued one-time code.
func (c *Collector) RecordOTPIssued(purpose string) {
	c.otpIssued.WithLabelValues(purpose).Inc()
}

// Handler returns the /metrics exposition handler for this collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Instrument is HTTP middleware recording status codes and latency.
func (c *Collector) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: writer, status: http.StatusOK}

		next.ServeHTTP(recorder, request)

		c.httpStatus.WithLabelValues(strconv.Itoa(recorder.status)).Inc()
		c.httpLatency.Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (recorder *statusRecorder) WriteHeader(code int) {
	recorder.status = code
	recorder.ResponseWriter.WriteHeader(code)
}

// # No-op Recorder

// Noop is a Recorder that discards every observation. Used in tests and in
// wiring paths where metrics are disabled.
type Noop struct{}

func (Noop) RecordAuthAttempt(flow, outcome string) {}
func (Noop) RecordOTPIssued(purpose string)         {}
