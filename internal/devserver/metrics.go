package devserver

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors exported on /metrics.
type Metrics struct {
	requests   *prometheus.CounterVec
	generated  prometheus.Counter
	markedRead prometheus.Counter
}

// NewMetrics registers the server collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "notifeed",
			Subsystem: "devserver",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		generated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "notifeed",
			Subsystem: "devserver",
			Name:      "notifications_generated_total",
			Help:      "Notifications synthesised by generate-dynamic.",
		}),
		markedRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "notifeed",
			Subsystem: "devserver",
			Name:      "notifications_marked_read_total",
			Help:      "Notifications changed from unread to read.",
		}),
	}
	reg.MustRegister(m.requests, m.generated, m.markedRead)
	return m
}

// Middleware counts every request by its route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
	}
}
