package notify

import (
	"fmt"
	"strings"
)

// Fallback texts for push messages without a notification block.
const (
	DefaultTitle = "QTI Driver"
	DefaultBody  = "You have a new notification"
)

// PushMessage is a remote push as delivered to the device.
type PushMessage struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data"`
}

// FromPush builds the popup for a push message. DELIVERY and ORDER types
// with an order id become order popups; TOPUP and WITHDRAWAL become wallet
// popups; everything else is generic.
func FromPush(msg PushMessage) Popup {
	title := firstNonEmpty(msg.Title, msg.Data["title"], DefaultTitle)
	body := firstNonEmpty(msg.Body, msg.Data["body"], DefaultBody)
	kind := strings.ToUpper(firstNonEmpty(msg.Data["notificationType"], msg.Data["type"]))
	orderID := firstNonEmpty(msg.Data["orderId"], msg.Data["order_id"])

	p := Popup{Kind: KindGeneric, Title: title, Message: body}
	switch kind {
	case "DELIVERY", "ORDER":
		if orderID != "" {
			p.Kind = KindOrder
			p.OrderID = orderID
		}
	case "TOPUP", "WITHDRAWAL":
		p.Kind = KindWallet
		p.WalletType = kind
	}
	return p
}

// NewOrderPopup is shown when the feed assigns a new order to the driver.
func NewOrderPopup(orderID int64, address string) Popup {
	msg := fmt.Sprintf("Order #%d is waiting for pickup", orderID)
	if address != "" {
		msg += ": " + address
	}
	return Popup{
		Kind:    KindOrder,
		Title:   "New order",
		Message: msg,
		OrderID: fmt.Sprint(orderID),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
