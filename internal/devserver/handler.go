package devserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nhle/notifeed/internal/model"
	"github.com/nhle/notifeed/internal/store"
)

type errorResponse struct {
	Message string `json:"message"`
}

// Handler serves the notifications contract from a Store.
type Handler struct {
	store   store.Store
	gen     *Generator
	metrics *Metrics
	log     *zap.Logger
}

// NewHandler wires the handler dependencies.
func NewHandler(s store.Store, gen *Generator, metrics *Metrics, logger *zap.Logger) *Handler {
	return &Handler{store: s, gen: gen, metrics: metrics, log: logger}
}

func (h *Handler) list(c *gin.Context, filter model.Filter) {
	if err := filter.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Message: err.Error()})
		return
	}

	items, err := h.store.ListNotifications(c.Request.Context(), filter)
	if err != nil {
		h.log.Error("list notifications failed", zap.String("filter", filter.Label()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorResponse{Message: "failed to list notifications"})
		return
	}
	c.JSON(http.StatusOK, items)
}

// ListAll serves GET /notifications.
func (h *Handler) ListAll(c *gin.Context) {
	h.list(c, model.Filter{})
}

// ListUnread serves GET /notifications/unread.
func (h *Handler) ListUnread(c *gin.Context) {
	h.list(c, model.Filter{UnreadOnly: true})
}

// ListByType serves GET /notifications/type/:type.
func (h *Handler) ListByType(c *gin.Context) {
	h.list(c, model.Filter{Type: model.Type(c.Param("type"))})
}

// ListByTypeUnread serves GET /notifications/type/:type/unread.
func (h *Handler) ListByTypeUnread(c *gin.Context) {
	h.list(c, model.Filter{Type: model.Type(c.Param("type")), UnreadOnly: true})
}

// MarkRead serves PUT /notifications/:id/read.
func (h *Handler) MarkRead(c *gin.Context) {
	id := model.ID(c.Param("id"))
	changed, err := h.store.MarkRead(c.Request.Context(), id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Message: "notification not found"})
		return
	case err != nil:
		h.log.Error("mark read failed", zap.String("id", string(id)), zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorResponse{Message: "failed to mark notification as read"})
		return
	}
	if changed {
		h.metrics.markedRead.Inc()
	}
	c.Status(http.StatusNoContent)
}

// MarkAllRead serves PUT /notifications/read-all.
func (h *Handler) MarkAllRead(c *gin.Context) {
	changed, err := h.store.MarkAllRead(c.Request.Context())
	if err != nil {
		h.log.Error("mark all read failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorResponse{Message: "failed to mark notifications as read"})
		return
	}
	h.metrics.markedRead.Add(float64(changed))
	c.Status(http.StatusNoContent)
}

// GenerateDynamic serves POST /notifications/generate-dynamic.
func (h *Handler) GenerateDynamic(c *gin.Context) {
	created, err := h.store.CreateNotifications(c.Request.Context(), h.gen.Generate())
	if err != nil {
		h.log.Error("generate notifications failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorResponse{Message: "failed to generate notifications"})
		return
	}
	h.metrics.generated.Add(float64(len(created)))
	h.log.Info("generated notifications", zap.Int("count", len(created)))
	c.JSON(http.StatusCreated, created)
}
