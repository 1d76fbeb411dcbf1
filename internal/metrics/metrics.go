package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	OrdersCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_orders_created_total",
			Help: "Orders successfully placed at checkout",
		},
	)

	CheckoutOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_checkout_outcomes_total",
			Help: "Checkout submissions by outcome",
		},
		[]string{"outcome"},
	)

	NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_notifications_total",
			Help: "Order notifications by transport and result",
		},
		[]string{"transport", "result"},
	)

	PersistFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_persist_failures_total",
			Help: "Swallowed session snapshot failures by operation",
		},
		[]string{"op"},
	)

	StockDecrementConflictsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_stock_decrement_conflicts_total",
			Help: "Order confirmations rejected for insufficient stock",
		},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDurationSeconds,
		OrdersCreatedTotal,
		CheckoutOutcomesTotal,
		NotificationsTotal,
		PersistFailuresTotal,
		StockDecrementConflictsTotal,
	)
}

// GinMiddleware records request count and latency keyed by route template.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPRequestDurationSeconds.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// RegisterCartSessions exposes the number of cart engines held in memory.
func RegisterCartSessions(reg prometheus.Registerer, resident func() int) {
	reg.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "storefront_cart_sessions_resident",
			Help: "Cart engines currently cached in memory",
		},
		func() float64 { return float64(resident()) },
	))
}
