package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/courieragent/internal/notify"
	"github.com/polkiloo/courieragent/internal/server/http/dto"
)

// NotificationHandler turns push messages into popups.
type NotificationHandler struct {
	facade NotificationFacade
}

// NewNotificationHandler constructs NotificationHandler.
func NewNotificationHandler(facade NotificationFacade) *NotificationHandler {
	return &NotificationHandler{facade: facade}
}

// Push handles POST /api/notifications.
func (h *NotificationHandler) Push(c *gin.Context) {
	var req dto.PushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	popup := h.facade.ShowPush(notify.PushMessage{Title: req.Title, Body: req.Body, Data: req.Data})
	c.JSON(http.StatusCreated, popup)
}

// Dismiss handles DELETE /api/notifications/:id.
func (h *NotificationHandler) Dismiss(c *gin.Context) {
	if !h.facade.DismissPopup(c.Param("id")) {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "popup is not shown"})
		return
	}
	c.Status(http.StatusNoContent)
}
