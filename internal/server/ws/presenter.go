package ws

import (
	"log/slog"

	"github.com/polkiloo/courieragent/internal/notify"
)

// Feed message types.
const (
	TypePopup          = "popup"
	TypePopupDismissed = "popup_dismissed"
	TypeDismiss        = "dismiss"
)

// ShowPopup renders p on every feed client.
func (h *Hub) ShowPopup(p notify.Popup) {
	if err := h.Publish(TopicFeed, TypePopup, p); err != nil {
		h.logger.Warn("publish popup", slog.String("error", err.Error()))
	}
}

// DismissPopup removes popup id from every feed client.
func (h *Hub) DismissPopup(id string) {
	if err := h.Publish(TopicFeed, TypePopupDismissed, map[string]string{"id": id}); err != nil {
		h.logger.Warn("publish popup dismissal", slog.String("error", err.Error()))
	}
}

var _ notify.Presenter = (*Hub)(nil)
