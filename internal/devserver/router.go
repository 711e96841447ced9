// Package devserver is a local implementation of the notifications
// service, used for development and end-to-end tests of the client.
package devserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewRouter builds the gin engine. Notification routes require the bearer
// token; /health and /metrics do not.
func NewRouter(h *Handler, token string, reg *prometheus.Registry, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(ZapLogger(logger), ZapRecovery(logger), h.metrics.Middleware())

	router.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	api := router.Group("/notifications", BearerAuth(token))
	api.GET("", h.ListAll)
	api.GET("/unread", h.ListUnread)
	api.GET("/type/:type", h.ListByType)
	api.GET("/type/:type/unread", h.ListByTypeUnread)
	api.PUT("/read-all", h.MarkAllRead)
	api.PUT("/:id/read", h.MarkRead)
	api.POST("/generate-dynamic", h.GenerateDynamic)

	return router
}
