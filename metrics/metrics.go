package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "foodgram_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	RateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "foodgram_rate_limited_requests_total",
			Help: "Requests rejected by the per-IP rate limiter",
		},
	)

	// Shopping cart report metrics
	ShoppingCartReportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_shopping_cart_reports_total",
			Help: "Shopping cart reports generated, by cart source",
		},
		[]string{"source"}, // "user", "session"
	)

	ShoppingCartReportLines = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "foodgram_shopping_cart_report_lines",
			Help:    "Number of aggregated lines per shopping cart report",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
		},
	)

	// Realtime metrics
	FeedConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "foodgram_feed_connections",
			Help: "Open realtime feed websocket connections",
		},
	)

	FeedNotificationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "foodgram_feed_notifications_total",
			Help: "Recipe notifications delivered to followers",
		},
	)
)

// RecordAPIRequest records one served request.
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordShoppingCartReport records a generated report.
func RecordShoppingCartReport(source string, lines int) {
	ShoppingCartReportsTotal.WithLabelValues(source).Inc()
	ShoppingCartReportLines.Observe(float64(lines))
}
