// Package metrics defines the custom Prometheus metrics for Natours. It is
// the single source of truth for metric names, labels, and help strings;
// promauto registers everything with the default registry at init. It sits
// outside the api and core trees so both may record to it without either
// depending on the other.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "natours"

// RequestDuration measures handler latency per route and status class.
var RequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests by route and status code.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "path", "status"},
)

// BookingsCreatedTotal counts recorded bookings, whatever the entry path
// (payment redirect or explicit admin write).
var BookingsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bookings_created_total",
		Help:      "Total number of bookings recorded.",
	},
)

// CheckoutSessionsTotal counts payment sessions successfully created.
var CheckoutSessionsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkout_sessions_total",
		Help:      "Total number of checkout sessions created with the payment provider.",
	},
)

// RatingRecalcTotal counts rating-aggregate recomputations.
// Label:
//   - result: "ok" or "error"
var RatingRecalcTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rating_recalc_total",
		Help:      "Total number of tour rating recomputations, by result.",
	},
	[]string{"result"},
)

// EmailsSentTotal counts outbound emails.
// Labels:
//   - template: "welcome" or "password_reset"
//   - result:   "ok" or "error"
var EmailsSentTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "emails_sent_total",
		Help:      "Total number of outbound emails, by template and result.",
	},
	[]string{"template", "result"},
)

// RateLimitedTotal counts requests rejected by the per-IP rate limiter.
var RateLimitedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_requests_total",
		Help:      "Total number of requests rejected by the rate limiter.",
	},
)
