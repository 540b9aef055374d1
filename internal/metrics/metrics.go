// Package metrics declares the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

var (
	FetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_source_fetch_total",
		Help: "Attendance source reads by source and outcome.",
	}, []string{"source", "outcome"})

	FetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "attendance_source_fetch_duration_seconds",
		Help:    "Time spent reading the attendance source.",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})

	SessionRecords = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "attendance_session_records",
		Help:    "Records loaded per view session.",
		Buckets: prometheus.ExponentialBuckets(10, 2, 10),
	})

	FilterRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_filter_requests_total",
		Help: "Filtered views served, by surface.",
	}, []string{"surface"})

	ExportTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_export_total",
		Help: "Spreadsheet exports by outcome.",
	}, []string{"outcome"})

	ExportRows = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "attendance_export_rows",
		Help:    "Rows written per spreadsheet export.",
		Buckets: prometheus.ExponentialBuckets(10, 2, 10),
	})
)
