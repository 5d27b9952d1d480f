// Package metrics defines the Prometheus collectors for the server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReceiptsParsed counts assembled receipts by outcome status.
	ReceiptsParsed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scanpay_receipts_parsed_total",
		Help: "Receipts assembled from scans, labeled by status (complete/empty).",
	}, []string{"status"})

	// ParseDuration observes how long one parse pass takes.
	ParseDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "scanpay_parse_duration_seconds",
		Help:    "Duration of one receipt parse pass.",
		Buckets: prometheus.DefBuckets,
	})

	// LinesClassified counts OCR lines by the role the classifier assigned.
	LinesClassified = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scanpay_lines_classified_total",
		Help: "OCR lines seen by the classifier, labeled by assigned role.",
	}, []string{"role"})

	// HTTPRequests counts requests by method, route and status code.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scanpay_http_requests_total",
		Help: "HTTP requests handled, labeled by method, route and status.",
	}, []string{"method", "route", "status"})
)
