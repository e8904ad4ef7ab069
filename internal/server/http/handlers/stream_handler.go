package handlers

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/courieragent/internal/server/ws"
)

// Stream message types.
const (
	TypeSnapshot = "snapshot"
)

// StreamHandler upgrades UI connections to websocket streams.
type StreamHandler struct {
	hub    *ws.Hub
	orders OrderFacade
	logger *slog.Logger
}

// NewStreamHandler constructs StreamHandler.
func NewStreamHandler(hub *ws.Hub, orders OrderFacade, logger *slog.Logger) *StreamHandler {
	return &StreamHandler{hub: hub, orders: orders, logger: logger}
}

// Feed handles GET /api/feed.
func (h *StreamHandler) Feed(c *gin.Context) {
	if _, err := h.hub.ServeWS(c.Writer, c.Request, ws.TopicFeed); err != nil {
		h.logger.Warn("feed stream rejected", slog.String("error", err.Error()))
	}
}

// Order handles GET /api/orders/:id/stream. The current view is sent as the
// first frame; later frames carry order updates.
func (h *StreamHandler) Order(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}
	view, err := h.orders.OrderView(orderID)
	if err != nil {
		writeError(c, err)
		return
	}

	client, err := h.hub.ServeWS(c.Writer, c.Request, ws.OrderTopic(orderID))
	if err != nil {
		h.logger.Warn("order stream rejected", slog.Int64("order", orderID), slog.String("error", err.Error()))
		return
	}
	if err := client.Send(TypeSnapshot, view); err != nil {
		h.logger.Warn("order snapshot not sent", slog.Int64("order", orderID), slog.String("error", err.Error()))
	}
}
