// Copyright (c) 2025 The Car-Retal-Api Authors
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package prom exports the rental events and the HTTP request
// latencies as Prometheus metrics. Each Metrics instance has its own
// registry, so tests and multiple servers in one process do not
// collide.
package prom

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics implements the rentaluc.Metrics interface and keeps the
// HTTP request duration histogram.
type Metrics struct {
	reg *prometheus.Registry

	created    prometheus.Counter
	conflicts  prometheus.Counter
	returned   prometheus.Counter
	cancelled  prometheus.Counter
	projection *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// New creates and registers all collectors, including the Go runtime
// and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		created: f.NewCounter(prometheus.CounterOpts{
			Name: "rental_created_total",
			Help: "Count of created rentals.",
		}),
		conflicts: f.NewCounter(prometheus.CounterOpts{
			Name: "rental_conflicts_total",
			Help: "Count of rental creations rejected due to an overlap.",
		}),
		returned: f.NewCounter(prometheus.CounterOpts{
			Name: "rental_returned_total",
			Help: "Count of returned rentals.",
		}),
		cancelled: f.NewCounter(prometheus.CounterOpts{
			Name: "rental_cancelled_total",
			Help: "Count of cancelled rentals.",
		}),
		projection: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rental_history_projection_failures_total",
			Help: "Count of failed rental history updates by operation.",
		}, []string{"op"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latency of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

func (m *Metrics) RentalCreated()    { m.created.Inc() }
func (m *Metrics) RentalConflicted() { m.conflicts.Inc() }
func (m *Metrics) RentalReturned()   { m.returned.Inc() }
func (m *Metrics) RentalCancelled()  { m.cancelled.Inc() }

// ProjectionFailed counts a failed rental history update. The op is
// either "append" or "patch".
func (m *Metrics) ProjectionFailed(op string) {
	m.projection.WithLabelValues(op).Inc()
}

// ObserveRequest records the latency of one HTTP request. The route
// must be the route template (like /api/rental/:id), not the actual
// path, so the label cardinality stays bounded.
func (m *Metrics) ObserveRequest(
	method, route string, status int, d time.Duration,
) {
	m.duration.WithLabelValues(
		method, route, strconv.Itoa(status),
	).Observe(d.Seconds())
}

// Handler serves the registered metrics in the exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}
