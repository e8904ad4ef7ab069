package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/courieragent/internal/server/http/dto"
)

// OrderHandler manages the open order session.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Current handles GET /api/orders/current.
func (h *OrderHandler) Current(c *gin.Context) {
	snapshot := h.facade.CurrentOrder(c.Request.Context(), CurrentDriverID(c))
	if snapshot == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// Open handles POST /api/orders/:id/open.
func (h *OrderHandler) Open(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}
	view, err := h.facade.OpenOrder(c.Request.Context(), orderID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}
	view, err := h.facade.OrderView(orderID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// UpdateStatus handles PATCH /api/orders/:id/status.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}
	var req dto.OrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Status) == "" {
		badRequest(c, "status is required")
		return
	}

	order, err := h.facade.UpdateOrderStatus(c.Request.Context(), orderID, strings.ToUpper(strings.TrimSpace(req.Status)))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// Confirm handles POST /api/orders/:id/confirm.
func (h *OrderHandler) Confirm(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}
	var req dto.LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Latitude == nil || req.Longitude == nil {
		badRequest(c, "latitude and longitude are required")
		return
	}

	view, err := h.facade.ConfirmDelivery(c.Request.Context(), orderID, *req.Latitude, *req.Longitude)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Close handles DELETE /api/orders/:id.
func (h *OrderHandler) Close(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}
	if err := h.facade.CloseOrder(orderID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
