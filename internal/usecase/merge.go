package usecase

import (
	"strings"
	"time"

	"github.com/polkiloo/courieragent/internal/domain/model"
)

// OrderSources are the independently arriving inputs of one order view.
// Any of the pointers may be nil.
type OrderSources struct {
	OrderID  int64
	Prior    *model.Order
	Detail   *model.OrderDetail
	Tracking *model.TrackingSnapshot
	Address  *model.Address
	// Live marks a merge driven by a tracking update. Only then does the
	// assignment time replace the creation time of a loaded detail.
	Live bool
}

// MergeOrder builds the order view. Customer and address fields resolve
// address > tracking > prior > default; the amount comes from the detail and
// the status from tracking, then detail, then prior. A blank value never
// overrides a non-blank one.
func MergeOrder(src OrderSources, now time.Time) model.Order {
	order := model.Order{ID: src.OrderID}

	var prior model.Order
	if src.Prior != nil {
		prior = *src.Prior
		if order.ID == 0 {
			order.ID = prior.ID
		}
	}
	var tracking model.TrackingSnapshot
	if src.Tracking != nil {
		tracking = *src.Tracking
		if order.ID == 0 {
			order.ID = tracking.OrderID
		}
	}
	var address model.Address
	if src.Address != nil {
		address = *src.Address
	}

	order.CustomerName = firstNonBlank(address.Receiver, tracking.CustomerName, prior.CustomerName, model.DefaultCustomerName)
	order.CustomerPhone = firstNonBlank(address.Phone, tracking.CustomerPhone, prior.CustomerPhone)
	order.PickupAddress = firstNonBlank(tracking.StoreAddress, prior.PickupAddress)
	order.DeliveryAddress = firstNonBlank(address.Address, tracking.ShippingAddress, prior.DeliveryAddress)

	var detailStatus string
	switch {
	case src.Detail != nil:
		if order.ID == 0 {
			order.ID = src.Detail.ID
		}
		order.TotalAmount = src.Detail.TotalAmount
		detailStatus = src.Detail.OrderStatus
	case src.Prior != nil:
		order.TotalAmount = prior.TotalAmount
	}

	rawStatus := firstNonBlank(tracking.Status, detailStatus)
	switch {
	case rawStatus != "":
		order.Status = model.MapOrderStatus(rawStatus)
	case prior.Status != "":
		order.Status = prior.Status
	default:
		order.Status = model.OrderStatusPending
	}

	assigned := strings.TrimSpace(tracking.AssignedAt) != ""
	switch {
	case assigned && (src.Live || src.Detail == nil):
		order.CreatedAt = model.ParseFlexibleDate(tracking.AssignedAt, now)
	case src.Detail != nil:
		order.CreatedAt = model.ParseISOMillis(src.Detail.CreatedAt, now)
	case prior.CreatedAt != 0:
		order.CreatedAt = prior.CreatedAt
	default:
		order.CreatedAt = now.UnixMilli()
	}

	return order
}

// OrderFromDetail builds the view from the REST record alone.
func OrderFromDetail(detail model.OrderDetail, now time.Time) model.Order {
	return MergeOrder(OrderSources{OrderID: detail.ID, Detail: &detail}, now)
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
